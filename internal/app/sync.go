package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/output"
	"github.com/blackwell-systems/clauderank/internal/ranker"
)

var syncIncremental bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-read Claude Code data and update your rank",
	Long: `Read stats-cache.json, history.jsonl and session transcripts from the
Claude Code data directory, replay every day's XP and engagement rating,
and store the result.

A full sync rebuilds everything from scratch. --incremental only replays
from the most recent stored day onward, which is what the hook and the
watcher use.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncIncremental, "incremental", false, "Only replay days from the latest stored day onward")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openService()
	if err != nil {
		return err
	}
	defer closeDB()

	var res *ranker.SyncResult
	if syncIncremental {
		res, err = svc.IncrementalSync(cmd.Context())
	} else {
		res, err = svc.Sync(cmd.Context())
	}
	if errors.Is(err, ranker.ErrNoData) {
		return fmt.Errorf("%w in %s", err, appCfg.ClaudeHome)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, res)
	}
	renderSyncResult(out, res)
	return nil
}

func renderSyncResult(w io.Writer, res *ranker.SyncResult) {
	_, _ = fmt.Fprintln(w, output.Section("Sync Complete"))

	printField(w, "Days synced", output.StyleBold.Render(fmt.Sprintf("%d", res.DaysSynced)))
	xp := output.StyleBold.Render(output.FormatNumber(res.TotalXP))
	if gained := res.TotalXP - res.PreviousXP; gained != 0 {
		xp += " " + output.Delta(gained)
	}
	printField(w, "Total XP", xp)

	level := output.StyleBold.Render(fmt.Sprintf("%d", res.Level))
	if res.LeveledUp() {
		level += " " + output.StyleSuccess.Render(fmt.Sprintf("(up from %d)", res.PreviousLevel))
	}
	printField(w, "Level", level)
	printField(w, "Tier", res.TierName)
	if res.ERMu > 0 {
		printField(w, "Engagement rating", fmt.Sprintf("%.0f (%s)", res.ERMu, res.ERTier))
	}
	printField(w, "Streak", fmt.Sprintf("%d days", res.Streak.CurrentStreak))
	printField(w, "Achievements", fmt.Sprintf("%d unlocked", res.TotalUnlocked))

	if len(res.NewAchievements) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, " %s\n", output.StyleBold.Render("New achievements"))
		for _, a := range res.NewAchievements {
			_, _ = fmt.Fprintf(w, "   %s %s %s\n", output.StyleSuccess.Render("🏆"), a.Name,
				output.StyleMuted.Render("- "+a.Description))
		}
	}
	_, _ = fmt.Fprintln(w)
}
