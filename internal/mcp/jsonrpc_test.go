package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// newEmptyServer creates a Server with no backing service. Only protocol
// methods that never reach a tool handler may be exercised with it.
func newEmptyServer() *Server {
	return NewServer(nil, "", nil)
}

// session feeds lines to s until EOF and returns one decoded response per
// output line.
func session(t *testing.T, s *Server, lines ...string) []map[string]any {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	if err := s.Run(t.Context(), in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var resps []map[string]any
	for _, line := range strings.Split(strings.TrimRight(out.String(), "\n"), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, line)
		}
		resps = append(resps, m)
	}
	return resps
}

func errorCode(resp map[string]any) int {
	e, ok := resp["error"].(map[string]any)
	if !ok {
		return 0
	}
	code, _ := e["code"].(float64)
	return int(code)
}

func TestRun_Initialize(t *testing.T) {
	resps := session(t, newEmptyServer(), `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	if len(resps) != 1 {
		t.Fatalf("got %d responses, want 1", len(resps))
	}
	result := resps[0]["result"].(map[string]any)
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]any)
	if info["name"] != "clauderank" || info["version"] != Version {
		t.Errorf("serverInfo = %v", info)
	}
	if _, ok := result["capabilities"].(map[string]any)["tools"]; !ok {
		t.Error("capabilities should advertise tools")
	}
}

func TestRun_ToolsList(t *testing.T) {
	s := newEmptyServer()
	s.registerTool(toolDef{
		Name:        "test_tool",
		Description: "A test tool",
		InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
		Handler: func(_ context.Context, args json.RawMessage) (any, error) {
			return map[string]string{"ok": "true"}, nil
		},
	})

	resps := session(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	tools := resps[0]["result"].(map[string]any)["tools"].([]any)

	var names []string
	for _, tool := range tools {
		entry := tool.(map[string]any)
		names = append(names, entry["name"].(string))
		if entry["inputSchema"] == nil {
			t.Errorf("%s has no inputSchema", entry["name"])
		}
	}
	want := []string{"get_rank", "get_achievements", "get_wrapped", "get_badge", "test_tool"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("tools = %v, want %v", names, want)
	}
}

func TestRun_ToolsCallRegistered(t *testing.T) {
	s := newEmptyServer()
	s.registerTool(toolDef{
		Name: "echo",
		Handler: func(_ context.Context, args json.RawMessage) (any, error) {
			var in struct{ Say string }
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, err
			}
			if in.Say == "" {
				return nil, errors.New("nothing to say")
			}
			return map[string]string{"said": in.Say}, nil
		},
	})

	resps := session(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo","arguments":{"say":"hi"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"echo"}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":"bad"}`,
	)
	if len(resps) != 3 {
		t.Fatalf("got %d responses, want 3", len(resps))
	}

	ok := resps[0]["result"].(map[string]any)
	if ok["isError"] != false {
		t.Errorf("isError = %v, want false", ok["isError"])
	}
	text := ok["content"].([]any)[0].(map[string]any)["text"]
	if text != `{"said":"hi"}` {
		t.Errorf("text = %v", text)
	}

	// Missing arguments reach the handler as {} and its error is a result.
	failed := resps[1]["result"].(map[string]any)
	if failed["isError"] != true {
		t.Errorf("handler error should set isError: %v", failed)
	}

	if code := errorCode(resps[2]); code != codeInvalidParams {
		t.Errorf("error code = %d, want %d", code, codeInvalidParams)
	}
}

func TestRun_ErrorsAndNotifications(t *testing.T) {
	resps := session(t, newEmptyServer(),
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{not json`,
		`{"jsonrpc":"2.0","id":3,"method":"nonexistent/method"}`,
		`{"jsonrpc":"2.0","id":"p1","method":"ping"}`,
	)
	// The notification gets no response and the session survives the bad line.
	if len(resps) != 3 {
		t.Fatalf("got %d responses, want 3: %v", len(resps), resps)
	}
	if code := errorCode(resps[0]); code != codeParseError {
		t.Errorf("bad line: error code = %d, want %d", code, codeParseError)
	}
	if code := errorCode(resps[1]); code != codeMethodNotFound {
		t.Errorf("unknown method: error code = %d, want %d", code, codeMethodNotFound)
	}
	if resps[2]["id"] != "p1" || resps[2]["error"] != nil {
		t.Errorf("ping response = %v", resps[2])
	}
	if _, ok := resps[2]["result"].(map[string]any); !ok {
		t.Errorf("ping should return an empty result object: %v", resps[2])
	}
}

func TestRun_EOFClean(t *testing.T) {
	if resps := session(t, newEmptyServer()); len(resps) != 0 {
		t.Errorf("empty input produced %v", resps)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	done := make(chan error, 1)
	go func() { done <- newEmptyServer().Run(ctx, pr, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v on cancel, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stdin closed badly") }

func TestRun_ReadError(t *testing.T) {
	err := newEmptyServer().Run(t.Context(), failingReader{}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "stdin closed badly") {
		t.Errorf("Run = %v, want the read error", err)
	}
}
