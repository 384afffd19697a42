// Package mcp serves rank data to Claude Code over the Model Context
// Protocol: newline-delimited JSON-RPC 2.0 on stdio.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/blackwell-systems/clauderank/internal/logger"
	"github.com/blackwell-systems/clauderank/internal/ranker"
)

// Version is reported in serverInfo.
const Version = "0.1.0"

const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// maxLine bounds one request line.
const maxLine = 1 << 20

// Server answers MCP requests with tools backed by a ranker.Service.
type Server struct {
	tools   []toolDef
	svc     *ranker.Service
	dataDir string
	log     *slog.Logger
}

type toolDef struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     toolHandler
}

// toolHandler returns a value that is marshalled into the text content of
// the tools/call result.
type toolHandler func(ctx context.Context, args json.RawMessage) (any, error)

type request struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type response struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Result  any              `json:"result,omitempty"`
	Error   *rpcError        `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type callResult struct {
	Content []content `json:"content"`
	IsError bool      `json:"isError"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolListEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// NewServer returns a Server with the rank tools registered. dataDir holds
// rank.json, which get_rank prefers over the store. A nil log discards.
func NewServer(svc *ranker.Service, dataDir string, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{svc: svc, dataDir: dataDir, log: log}
	addTools(s)
	return s
}

func (s *Server) registerTool(def toolDef) {
	s.tools = append(s.tools, def)
}

func (s *Server) tool(name string) *toolDef {
	for i := range s.tools {
		if s.tools[i].Name == name {
			return &s.tools[i]
		}
	}
	return nil
}

// Run serves requests read from r until r reaches EOF or ctx is done. Both
// end the session cleanly; only read and write failures are returned.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	out := bufio.NewWriter(w)
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			readErr <- err
		}
	}()

	s.log.Debug("mcp session started", "tools", len(s.tools))
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return fmt.Errorf("reading request: %w", err)
				default:
					s.log.Debug("mcp session ended")
					return nil
				}
			}
			if err := s.handle(ctx, line, out); err != nil {
				return fmt.Errorf("writing response: %w", err)
			}
		}
	}
}

// handle answers one request line. Blank lines and notifications get no
// response.
func (s *Server) handle(ctx context.Context, line []byte, out *bufio.Writer) error {
	if len(bytes.TrimSpace(line)) == 0 {
		return nil
	}
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.log.Debug("mcp parse error", "err", err)
		return write(out, response{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "Parse error"}})
	}
	if req.ID == nil {
		s.log.Debug("mcp notification", "method", req.Method)
		return nil
	}

	resp := response{JSONRPC: "2.0", ID: req.ID}
	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": "clauderank", "version": Version},
		}
	case "ping":
		resp.Result = map[string]any{}
	case "tools/list":
		entries := make([]toolListEntry, 0, len(s.tools))
		for _, t := range s.tools {
			entries = append(entries, toolListEntry{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
		}
		resp.Result = map[string]any{"tools": entries}
	case "tools/call":
		var params callParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &rpcError{Code: codeInvalidParams, Message: "Invalid params"}
			break
		}
		resp.Result = s.call(ctx, params)
	default:
		resp.Error = &rpcError{Code: codeMethodNotFound, Message: "Method not found"}
	}
	return write(out, resp)
}

// call runs one tool. Tool failures become error results, not JSON-RPC
// errors.
func (s *Server) call(ctx context.Context, params callParams) callResult {
	t := s.tool(params.Name)
	if t == nil {
		return textResult(fmt.Sprintf("unknown tool: %s", params.Name), true)
	}
	args := params.Arguments
	if args == nil {
		args = json.RawMessage(`{}`)
	}

	v, err := t.Handler(ctx, args)
	if err != nil {
		s.log.Debug("mcp tool failed", "tool", t.Name, "err", err)
		return textResult(err.Error(), true)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return textResult(err.Error(), true)
	}
	s.log.Debug("mcp tool called", "tool", t.Name)
	return textResult(string(data), false)
}

func textResult(text string, isError bool) callResult {
	return callResult{Content: []content{{Type: "text", Text: text}}, IsError: isError}
}

// write encodes resp as one line and flushes.
func write(out *bufio.Writer, resp response) error {
	if err := json.NewEncoder(out).Encode(resp); err != nil {
		return err
	}
	return out.Flush()
}
