package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/config"
	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/leaderboard"
	"github.com/blackwell-systems/clauderank/internal/output"
)

var (
	lbUsername string
	lbDir      string
	lbOutput   string
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Share and compare ranks through a shared directory",
	Long: `The leaderboard is a directory of <username>.leaderboard.json files, one
per person. Point every machine at the same directory (a synced drive, a
git repository) and each user exports their own entry.

Examples:
  clauderank leaderboard setup --username alice --dir ~/team/leaderboard
  clauderank leaderboard export
  clauderank leaderboard show`,
}

var leaderboardSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Choose the username (and directory) you publish under",
	RunE:  runLeaderboardSetup,
}

var leaderboardExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write your current rank to the leaderboard directory",
	RunE:  runLeaderboardExport,
}

var leaderboardShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Rank every entry in the leaderboard directory",
	RunE:  runLeaderboardShow,
}

func init() {
	leaderboardSetupCmd.Flags().StringVar(&lbUsername, "username", "", "Name to publish under (required)")
	leaderboardSetupCmd.Flags().StringVar(&lbDir, "dir", "", "Shared leaderboard directory")
	_ = leaderboardSetupCmd.MarkFlagRequired("username")
	leaderboardExportCmd.Flags().StringVarP(&lbOutput, "output", "o", "", "Write the entry to this file instead of the leaderboard directory")

	leaderboardCmd.AddCommand(leaderboardSetupCmd, leaderboardExportCmd, leaderboardShowCmd)
	rootCmd.AddCommand(leaderboardCmd)
}

// leaderboardDir returns the configured directory, defaulting to a
// leaderboard folder inside the data directory.
func leaderboardDir(cfg *config.Config) string {
	if cfg.Leaderboard.Dir != "" {
		return cfg.Leaderboard.Dir
	}
	return filepath.Join(cfg.DataDir, "leaderboard")
}

func runLeaderboardSetup(cmd *cobra.Command, args []string) error {
	candidate := *appCfg
	candidate.Leaderboard.Username = lbUsername
	if lbDir != "" {
		candidate.Leaderboard.Dir = lbDir
	}
	if err := config.Validate(&candidate); err != nil {
		return err
	}

	path, err := config.Set(flagConfig, "leaderboard.username", lbUsername)
	if err != nil {
		return err
	}
	if lbDir != "" {
		if _, err := config.Set(flagConfig, "leaderboard.dir", lbDir); err != nil {
			return err
		}
	}
	appLog.Debug("leaderboard configured", "config", path, "username", lbUsername)

	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, map[string]string{
			"username":        lbUsername,
			"leaderboard_dir": candidate.Leaderboard.Dir,
			"config":          path,
		})
	}
	_, _ = fmt.Fprintln(out, output.Section("Leaderboard Setup"))
	printField(out, "Username", output.StyleBold.Render(lbUsername))
	if lbDir != "" {
		printField(out, "Directory", lbDir)
	}
	printField(out, "Saved to", path)
	_, _ = fmt.Fprintf(out, "\n Next: %s to publish, %s to compare.\n\n",
		output.StyleBold.Render("clauderank leaderboard export"),
		output.StyleBold.Render("clauderank leaderboard show"))
	return nil
}

func runLeaderboardExport(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openService()
	if err != nil {
		return err
	}
	defer closeDB()

	p, err := svc.Profile(cmd.Context())
	if err != nil {
		return err
	}
	if !p.Synced() {
		return fmt.Errorf("no rank to export yet: run clauderank sync first")
	}
	entry, err := leaderboard.Build(appCfg.Leaderboard.Username, p, time.Now())
	if errors.Is(err, leaderboard.ErrNoUsername) {
		return fmt.Errorf("%w: run clauderank leaderboard setup --username <name>", err)
	}
	if err != nil {
		return err
	}

	path := lbOutput
	if path == "" {
		dir := leaderboardDir(appCfg)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating leaderboard dir: %w", err)
		}
		path = leaderboard.DefaultPath(dir, entry.Username)
	}
	if err := leaderboard.Write(path, entry); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, map[string]any{"output": path, "entry": entry})
	}
	_, _ = fmt.Fprintln(out, output.Section("Leaderboard Entry Exported"))
	printField(out, "Exported to", output.StyleBold.Render(path))
	printField(out, "Rank", fmt.Sprintf("Level %d - %s", entry.Level, entry.Tier))
	printField(out, "Total XP", output.FormatNumber(entry.TotalXP))
	printField(out, "Streak", fmt.Sprintf("%d days", entry.CurrentStreak))
	printField(out, "Achievements", fmt.Sprintf("%d", entry.AchievementsCount))
	_, _ = fmt.Fprintln(out)
	return nil
}

func runLeaderboardShow(cmd *cobra.Command, args []string) error {
	dir := leaderboardDir(appCfg)
	entries, err := leaderboard.LoadAll(dir, appLog)
	if err != nil {
		return fmt.Errorf("reading leaderboard: %w", err)
	}
	ranked := leaderboard.Rank(entries)

	out := cmd.OutOrStdout()
	if flagJSON {
		if ranked == nil {
			ranked = []leaderboard.Entry{}
		}
		return printJSON(out, ranked)
	}
	renderLeaderboard(out, ranked, appCfg.Leaderboard.Username, dir)
	return nil
}

func renderLeaderboard(out io.Writer, ranked []leaderboard.Entry, me, dir string) {
	_, _ = fmt.Fprintln(out, output.Section("Team Leaderboard"))
	if len(ranked) == 0 {
		_, _ = fmt.Fprintf(out, " No entries in %s. Ask your team to run %s.\n\n", dir,
			output.StyleBold.Render("clauderank leaderboard export"))
		return
	}

	tbl := output.NewTable("#", "Username", "Level", "Tier", "Total XP", "Streak", "Ach.").AlignRight(0, 4, 5, 6)
	for _, e := range ranked {
		name := e.Username
		if name == me {
			name = output.StyleBold.Render(name + " (you)")
		}
		level := fmt.Sprintf("%d", e.Level)
		if e.PrestigeCount > 0 {
			level += " " + engine.PrestigeStars(e.PrestigeCount)
		}
		tbl.AddRow(
			fmt.Sprintf("%d", e.Rank),
			name,
			level,
			output.TierStyle(e.TierColor).Render(e.Tier),
			output.FormatNumber(e.TotalXP),
			fmt.Sprintf("%d", e.CurrentStreak),
			fmt.Sprintf("%d", e.AchievementsCount),
		)
	}
	_, _ = fmt.Fprintln(out, tbl.Render())
}
