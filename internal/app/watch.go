package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/config"
	"github.com/blackwell-systems/clauderank/internal/logger"
	"github.com/blackwell-systems/clauderank/internal/watcher"
)

var (
	watchDaemon bool
	watchStop   bool
	watchQuiet  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync automatically and alert on level-ups and achievements",
	Long: `Watch the Claude Code data directory and run an incremental sync shortly
after stats-cache.json or history.jsonl change. Level-ups, tier promotions
and new achievements are sent as desktop notifications and printed to the
terminal.

Examples:
  clauderank watch                 # run in foreground (ctrl-c to stop)
  clauderank watch --daemon        # run in background, write PID file
  clauderank watch --stop          # stop the background daemon`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon(cmd.OutOrStdout())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	if watchDaemon {
		return runDaemon(ctx)
	}
	return runForeground(ctx, cmd.OutOrStdout())
}

func watchOptions() watcher.Options {
	return watcher.Options{
		ClaudeHome:  appCfg.ClaudeHome,
		Debounce:    appCfg.Watch.Debounce,
		MinInterval: appCfg.Sync.MinInterval,
		Logger:      appLog,
	}
}

// runForeground runs the watcher with live terminal output.
func runForeground(ctx context.Context, out io.Writer) error {
	svc, closeDB, err := openService()
	if err != nil {
		return err
	}
	defer closeDB()

	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)
		if !watchQuiet {
			printAlert(out, a)
		}
	}

	if !watchQuiet {
		_, _ = fmt.Fprintf(out, "clauderank watching %s... (ctrl-c to stop)\n", appCfg.ClaudeHome)
	}

	w := watcher.New(svc, watchOptions(), alertFn)
	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		if !watchQuiet {
			_, _ = fmt.Fprintln(out, "\nStopped.")
		}
		return nil
	}
	return err
}

// runDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(ctx context.Context) error {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file.
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	// The daemon has no terminal, so everything goes to the log file at
	// info level or lower.
	appLog = logger.New(logger.Config{
		Writer: logFile,
		Format: appCfg.Log.Format,
		Level:  min(logger.ParseLevel(appCfg.Log.Level), slog.LevelInfo),
	})

	svc, closeDB, err := openService()
	if err != nil {
		return err
	}
	defer closeDB()

	appLog.Info("daemon started", "pid", pid, "claude_home", appCfg.ClaudeHome)

	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)
		appLog.Info(a.Title, "level", a.Level, "message", a.Message)
	}

	w := watcher.New(svc, watchOptions(), alertFn)
	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		appLog.Info("daemon stopped")
		return nil
	}
	return err
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// printAlert formats and prints an alert to the terminal.
func printAlert(out io.Writer, a watcher.Alert) {
	_, _ = fmt.Fprintf(out, "[%s] %s %s\n", a.Time.Format("15:04:05"), alertIcon(a.Level), a.Title)
	if a.Message != "" {
		_, _ = fmt.Fprintf(out, "         %s\n", a.Message)
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case "warning":
		return "\xe2\x9a\xa0\xef\xb8\x8f" // warning sign
	case "info":
		return "\xe2\x9c\x93" // check mark
	default:
		return " "
	}
}
