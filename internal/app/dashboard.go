package app

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/output"
	"github.com/blackwell-systems/clauderank/internal/ranker"
	"github.com/blackwell-systems/clauderank/internal/rating"
)

// dashboardListSize is how many recent and closest achievements are shown.
const dashboardListSize = 3

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show level, XP, streak and achievements (default command)",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// dashboardView is the JSON shape of the dashboard.
type dashboardView struct {
	Profile ranker.Profile             `json:"profile"`
	Stars   string                     `json:"stars,omitempty"`
	Recent  []engine.AchievementStatus `json:"recent_achievements"`
	Closest []engine.AchievementStatus `json:"closest_achievements"`
}

func runDashboard(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openService()
	if err != nil {
		return err
	}
	defer closeDB()

	p, err := svc.Profile(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !p.Synced() {
		if flagJSON {
			return printJSON(out, dashboardView{Profile: p})
		}
		printNoData(out)
		return nil
	}

	all, err := svc.Achievements(cmd.Context())
	if err != nil {
		return err
	}
	view := dashboardView{
		Profile: p,
		Stars:   engine.PrestigeStars(p.PrestigeCount),
		Recent:  recentUnlocks(all, dashboardListSize),
		Closest: engine.ClosestAchievements(all, dashboardListSize),
	}
	if flagJSON {
		return printJSON(out, view)
	}
	renderDashboard(out, view)
	return nil
}

// recentUnlocks returns up to n unlocked achievements, newest first.
func recentUnlocks(all []engine.AchievementStatus, n int) []engine.AchievementStatus {
	var unlocked []engine.AchievementStatus
	for _, a := range all {
		if a.Unlocked {
			unlocked = append(unlocked, a)
		}
	}
	sort.SliceStable(unlocked, func(i, j int) bool {
		return unlocked[i].UnlockedAt > unlocked[j].UnlockedAt
	})
	if len(unlocked) > n {
		unlocked = unlocked[:n]
	}
	return unlocked
}

func renderDashboard(w io.Writer, v dashboardView) {
	p := v.Profile
	_, _ = fmt.Fprintln(w, output.Section("CLAUDE RANK"))

	tier := output.TierStyle(p.TierColor).Render(p.TierName)
	title := fmt.Sprintf(" %s  %s", output.StyleBold.Render(fmt.Sprintf("Level %d", p.Level)), tier)
	if v.Stars != "" {
		title += " " + output.TierStyle("gold").Render(v.Stars)
	}
	_, _ = fmt.Fprintln(w, title)
	_, _ = fmt.Fprintf(w, " %s\n\n", output.XPBar(p.XPInLevel, p.XPForNext, 30))

	printField(w, "Total XP", output.StyleBold.Render(output.FormatNumber(p.TotalXP)))
	streak := fmt.Sprintf("%d days (best %d)", p.CurrentStreak, p.LongestStreak)
	if p.FreezeCount > 0 {
		streak += output.StyleMuted.Render(fmt.Sprintf("  %d freeze(s)", p.FreezeCount))
	}
	printField(w, "Streak", streak)
	erTier := rating.TierByName(p.ERTier)
	printField(w, "Engagement rating", fmt.Sprintf("%.0f %s", p.ERMu, output.TierStyle(erTier.Color).Render(p.ERTier)))
	printField(w, "Sessions", output.FormatNumber(p.TotalSessions))
	printField(w, "Messages", output.FormatNumber(p.TotalMessages))
	printField(w, "Member since", memberSince(p.MemberSince))

	if len(v.Recent) > 0 {
		_, _ = fmt.Fprintln(w, output.Section("Recent Achievements"))
		for _, a := range v.Recent {
			_, _ = fmt.Fprintf(w, " %s %s %s\n", output.StyleSuccess.Render("🏆"), a.Def.Name,
				output.StyleMuted.Render(a.UnlockedAt))
		}
	}
	if len(v.Closest) > 0 {
		_, _ = fmt.Fprintln(w, output.Section("Closest Achievements"))
		for _, a := range v.Closest {
			_, _ = fmt.Fprintf(w, " %s %s %s\n", output.StyleLabel.Render(a.Def.Name),
				output.AchievementBar(a.Progress, 20),
				output.StyleMuted.Render(fmt.Sprintf("%d/%d", a.CurrentValue(), a.Def.Target)))
		}
	}
	_, _ = fmt.Fprintln(w)
}

func memberSince(date string) string {
	if date == "" {
		return "unknown"
	}
	return date
}
