package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/ranker"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "PostToolUse hook: sync XP after every tool call",
	Long: `Read a Claude Code PostToolUse event from stdin and run an incremental
sync. Read-only tools are skipped. The hook always exits 0 so it never
blocks the tool call that triggered it.

Add to ~/.claude/settings.json:
  {"hooks":{"PostToolUse":[{"hooks":[{"type":"command","command":"clauderank hook"}]}]}}`,
	// Config errors must not fail the hook either.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd, args); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "clauderank hook:", err)
			appCfg = nil
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		runHook(cmd.Context(), cmd.InOrStdin())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

// readOnlyTools never change anything worth syncing for.
var readOnlyTools = map[string]bool{
	"Read":      true,
	"Glob":      true,
	"Grep":      true,
	"WebFetch":  true,
	"WebSearch": true,
}

// hookEvent is the part of the PostToolUse payload the hook reads.
type hookEvent struct {
	ToolName string `json:"tool_name"`
}

// shouldSync reports whether a PostToolUse payload warrants a sync. A
// payload that cannot be decoded still syncs.
func shouldSync(payload []byte) bool {
	var ev hookEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return true
	}
	return !readOnlyTools[ev.ToolName]
}

// runHook handles one PostToolUse event and reports whether a sync ran.
// Errors are logged, never returned.
func runHook(ctx context.Context, r io.Reader) bool {
	payload, err := io.ReadAll(r)
	if err != nil {
		appLog.Warn("hook: reading stdin", "err", err)
	}
	if !shouldSync(payload) {
		return false
	}
	if appCfg == nil {
		return false
	}

	svc, closeDB, err := openService()
	if err != nil {
		appLog.Warn("hook: opening store", "err", err)
		return false
	}
	defer closeDB()

	res, err := svc.IncrementalSync(ctx)
	switch {
	case errors.Is(err, ranker.ErrNoData):
		appLog.Debug("hook: no usage data yet", "claude_home", appCfg.ClaudeHome)
		return false
	case err != nil:
		appLog.Warn("hook: sync failed", "err", err)
		return false
	}
	appLog.Debug("hook: synced", "days", res.DaysSynced, "total_xp", res.TotalXP, "level", res.Level)
	return true
}
