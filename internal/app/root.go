// Package app contains the Cobra command tree for clauderank.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/config"
	"github.com/blackwell-systems/clauderank/internal/logger"
	"github.com/blackwell-systems/clauderank/internal/output"
	"github.com/blackwell-systems/clauderank/internal/ranker"
	"github.com/blackwell-systems/clauderank/internal/store"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

// Loaded once per invocation by the root PersistentPreRunE.
var (
	appCfg *config.Config
	appLog = logger.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "clauderank",
	Short: "Levels, streaks and achievements for your Claude Code usage",
	Long: `clauderank turns your local Claude Code activity into XP, levels, tiers,
daily streaks, an engagement rating and achievements. It reads the data
Claude Code already keeps in ~/.claude and never sends it anywhere.

Run 'clauderank sync' once, then 'clauderank' with no arguments to see
your dashboard.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runDashboard,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/clauderank/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging on stderr")
}

// setup loads the config and configures logging and color for every command.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appCfg = cfg

	level := logger.ParseLevel(cfg.Log.Level)
	if flagVerbose {
		level = slog.LevelDebug
	}
	appLog = logger.New(logger.Config{Format: cfg.Log.Format, Level: level})

	output.AutoColor(os.Stdout)
	if flagNoColor {
		output.SetNoColor(true)
	}
	appLog.Debug("config loaded", "claude_home", cfg.ClaudeHome, "data_dir", cfg.DataDir, "command", cmd.Name())
	return nil
}

// openService opens the rank database and returns a service over it. The
// returned func closes the database.
func openService() (*ranker.Service, func(), error) {
	db, err := store.Open(appCfg.DBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	svc := ranker.New(db, ranker.Options{
		ClaudeHome: appCfg.ClaudeHome,
		DataDir:    appCfg.DataDir,
		Recovery:   appCfg.Streak.Recovery,
		Logger:     appLog,
	})
	return svc, func() { _ = db.Close() }, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printField writes one aligned label/value line.
func printField(w io.Writer, label, value string) {
	_, _ = fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render(label), value)
}

// printNoData tells the user to sync first.
func printNoData(w io.Writer) {
	_, _ = fmt.Fprintln(w, output.Section("CLAUDE RANK"))
	_, _ = fmt.Fprintf(w, " No rank yet. Run %s first to read your Claude Code data.\n\n",
		output.StyleBold.Render("clauderank sync"))
}
