package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/output"
)

var wrappedPeriod string

var wrappedCmd = &cobra.Command{
	Use:   "wrapped",
	Short: "Your Claude Code year (or month) in review",
	Long: `Summarize XP, activity, streaks and favorite tools over a period.

Examples:
  clauderank wrapped                    # this month
  clauderank wrapped --period year
  clauderank wrapped --period all-time`,
	RunE: runWrapped,
}

func init() {
	wrappedCmd.Flags().StringVar(&wrappedPeriod, "period", engine.PeriodMonth, "Period to summarize: month, year or all-time")
	rootCmd.AddCommand(wrappedCmd)
}

func runWrapped(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openService()
	if err != nil {
		return err
	}
	defer closeDB()

	w, err := svc.Wrapped(cmd.Context(), wrappedPeriod)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, w)
	}
	renderWrapped(out, w)
	return nil
}

func renderWrapped(out io.Writer, w *engine.Wrapped) {
	_, _ = fmt.Fprintln(out, output.Section(fmt.Sprintf("Wrapped: %s (%s to %s)", w.Period, w.Start, w.End)))
	printField(out, "XP earned", output.StyleBold.Render(output.FormatNumber(w.TotalXPEarned)))
	printField(out, "Sessions", output.FormatNumber(w.TotalSessions))
	printField(out, "Messages", output.FormatNumber(w.TotalMessages))
	printField(out, "Tool calls", output.FormatNumber(w.TotalToolCalls))
	printField(out, "Active days", fmt.Sprintf("%d/%d", w.ActiveDays, w.TotalDays))
	printField(out, "Avg XP per active day", output.FormatNumber(w.AvgXPPerDay))

	_, _ = fmt.Fprintln(out, output.Section("Highlights"))
	if w.BusiestDay != "" {
		printField(out, "Busiest day", fmt.Sprintf("%s (%s XP)", w.BusiestDay, output.FormatNumber(w.BusiestDayXP)))
	}
	if w.BusiestHour != nil {
		printField(out, "Peak hour", fmt.Sprintf("%02d:00", *w.BusiestHour))
	}
	printField(out, "Best streak", fmt.Sprintf("%d days", w.PeriodStreak))
	printField(out, "Projects", fmt.Sprintf("%d", w.ProjectsCount))

	if len(w.TopTools) > 0 {
		_, _ = fmt.Fprintln(out, output.Section("Top Tools"))
		top := w.TopTools[0].Count
		for _, t := range w.TopTools {
			_, _ = fmt.Fprintf(out, " %-14s %s %s\n", t.Name,
				output.StyleSuccess.Render(output.ProgressBar(float64(t.Count)/float64(top), 15)),
				output.FormatNumber(t.Count))
		}
	}

	_, _ = fmt.Fprintln(out, output.Section("All-Time"))
	level := fmt.Sprintf("%d", w.CurrentLevel)
	if w.PrestigeCount > 0 {
		level += " " + engine.PrestigeStars(w.PrestigeCount)
	}
	printField(out, "Level", level)
	printField(out, "Lifetime XP", output.FormatNumber(w.LifetimeXP))
	printField(out, "Longest streak", fmt.Sprintf("%d days", w.LongestStreak))
	printField(out, "Member since", w.MemberSince)
	_, _ = fmt.Fprintln(out)
}
