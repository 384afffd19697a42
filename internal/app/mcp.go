package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server for use with Claude Code",
	Long: `Start a Model Context Protocol stdio server that Claude Code can
query during a session. The server exposes four tools:

  get_rank          Level, tier, XP progress, streak and engagement rating
  get_achievements  Every achievement with progress
  get_wrapped       Month, year or all-time summary
  get_badge         SVG rank badge

Add to your Claude Code MCP configuration (~/.claude/settings.json):
  {"mcpServers":{"clauderank":{"command":"clauderank","args":["mcp"]}}}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openService()
	if err != nil {
		return err
	}
	defer closeDB()

	srv := mcp.NewServer(svc, appCfg.DataDir, appLog)
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
