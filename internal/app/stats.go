package app

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/claude"
	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/output"
	"github.com/blackwell-systems/clauderank/internal/ranker"
	"github.com/blackwell-systems/clauderank/internal/store"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Detailed lifetime stats, engagement rating and recent days",
	Long: `Show lifetime counters, the engagement rating with its deviation and
volatility, model token usage from stats-cache.json, and a per-day XP
breakdown for the most recent days.

Examples:
  clauderank stats             # last 7 days
  clauderank stats --days 30   # last 30 days
  clauderank stats --json`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 7, "Number of recent days to list")
	rootCmd.AddCommand(statsCmd)
}

// statsView is the JSON shape of the stats command.
type statsView struct {
	Profile                ranker.Profile           `json:"profile"`
	LongestSessionMessages int                      `json:"longest_session_messages"`
	PeakHour               *int                     `json:"peak_hour"`
	ModelTokens            map[string]int64         `json:"model_tokens"`
	Days                   []store.DailyStat        `json:"days"`
	Engagement             []store.EngagementRecord `json:"engagement"`
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsDays <= 0 {
		return fmt.Errorf("--days must be positive, got %d", statsDays)
	}
	svc, closeDB, err := openService()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx := cmd.Context()
	p, err := svc.Profile(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !p.Synced() {
		if flagJSON {
			return printJSON(out, statsView{Profile: p})
		}
		printNoData(out)
		return nil
	}

	start := engine.FormatDate(time.Now().AddDate(0, 0, -(statsDays - 1)))
	days, err := svc.History(ctx, start, "")
	if err != nil {
		return err
	}
	er, err := svc.EngagementHistory(ctx, start, "")
	if err != nil {
		return err
	}

	view := statsView{Profile: p, Days: days, Engagement: er, ModelTokens: map[string]int64{}}
	// The stats cache adds figures the store does not keep. Missing is fine.
	sc, err := claude.ParseStatsCache(appCfg.ClaudeHome)
	if err != nil {
		appLog.Warn("reading stats cache", "error", err)
	}
	if sc != nil {
		view.LongestSessionMessages = sc.LongestSession.MessageCount
		view.PeakHour = engine.BusiestHour(sc.HourCounts)
		for model, u := range sc.ModelUsage {
			view.ModelTokens[model] = u.InputTokens + u.OutputTokens + u.CacheReadInputTokens + u.CacheCreationInputTokens
		}
	}

	if flagJSON {
		return printJSON(out, view)
	}
	renderStats(out, view)
	return nil
}

func renderStats(w io.Writer, v statsView) {
	p := v.Profile
	_, _ = fmt.Fprintln(w, output.Section("Lifetime"))
	printField(w, "Total XP", output.FormatNumber(p.TotalXP))
	printField(w, "Level", fmt.Sprintf("%d %s", p.Level, output.TierStyle(p.TierColor).Render(p.TierName)))
	if p.PrestigeCount > 0 {
		printField(w, "Prestige", fmt.Sprintf("%d %s", p.PrestigeCount, engine.PrestigeStars(p.PrestigeCount)))
	}
	printField(w, "Sessions", output.FormatNumber(p.TotalSessions))
	printField(w, "Messages", output.FormatNumber(p.TotalMessages))
	printField(w, "Tool calls", output.FormatNumber(p.TotalToolCalls))
	printField(w, "Unique projects", output.FormatNumber(p.UniqueProjects))
	printField(w, "Current streak", fmt.Sprintf("%d days", p.CurrentStreak))
	printField(w, "Longest streak", fmt.Sprintf("%d days", p.LongestStreak))
	printField(w, "Days synced", output.FormatNumber(p.DaysSynced))
	if v.LongestSessionMessages > 0 {
		printField(w, "Longest session", fmt.Sprintf("%s messages", output.FormatNumber(v.LongestSessionMessages)))
	}
	if v.PeakHour != nil {
		printField(w, "Most active hour", fmt.Sprintf("%02d:00", *v.PeakHour))
	}

	_, _ = fmt.Fprintln(w, output.Section("Engagement Rating"))
	printField(w, "Rating (mu)", fmt.Sprintf("%.0f", p.ERMu))
	printField(w, "Deviation (phi)", fmt.Sprintf("%.0f", p.ERPhi))
	printField(w, "Volatility (sigma)", fmt.Sprintf("%.4f", p.ERSigma))
	printField(w, "Tier", p.ERTier)

	if len(v.ModelTokens) > 0 {
		_, _ = fmt.Fprintln(w, output.Section("Model Tokens"))
		models := make([]string, 0, len(v.ModelTokens))
		for m := range v.ModelTokens {
			models = append(models, m)
		}
		sort.Slice(models, func(i, j int) bool {
			return v.ModelTokens[models[i]] > v.ModelTokens[models[j]]
		})
		tbl := output.NewTable("Model", "Tokens").AlignRight(1)
		for _, m := range models {
			tbl.AddRow(m, output.FormatNumber(int(v.ModelTokens[m])))
		}
		_, _ = fmt.Fprint(w, tbl.Render())
	}

	_, _ = fmt.Fprintln(w, output.Section("Recent Days"))
	if len(v.Days) == 0 {
		_, _ = fmt.Fprintln(w, output.StyleMuted.Render(" No activity in this range."))
		_, _ = fmt.Fprintln(w)
		return
	}
	ratedMu := make(map[string]float64, len(v.Engagement))
	for _, e := range v.Engagement {
		ratedMu[e.Date] = e.Mu
	}
	tbl := output.NewTable("Date", "XP", "Mult", "Sessions", "Messages", "Tools", "Streak", "ER").AlignRight(1, 2, 3, 4, 5, 6, 7)
	for i := len(v.Days) - 1; i >= 0; i-- {
		d := v.Days[i]
		streak := ""
		if d.StreakDay {
			streak = output.StyleSuccess.Render("✓")
		}
		er := ""
		if mu, ok := ratedMu[d.Date]; ok {
			er = fmt.Sprintf("%.0f", mu)
		}
		tbl.AddRow(d.Date,
			output.FormatNumber(d.TotalXP),
			fmt.Sprintf("%.2fx", d.Multiplier),
			fmt.Sprintf("%d", d.Sessions),
			output.FormatNumber(d.Messages),
			output.FormatNumber(d.ToolCalls),
			streak, er)
	}
	_, _ = fmt.Fprintln(w, tbl.Render())
}
