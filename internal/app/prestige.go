package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/output"
)

var prestigeYes bool

var prestigeCmd = &cobra.Command{
	Use:   "prestige",
	Short: "Reset to level 1 at max level and earn a prestige star",
	Long: `Once your XP reaches the max-level threshold for the current prestige
cycle, prestige starts a new cycle at level 1 and adds a star to your badge.
Your XP history is kept; only the level is recomputed.

Prestige cannot be undone, so it requires --yes.`,
	RunE: runPrestige,
}

func init() {
	prestigeCmd.Flags().BoolVar(&prestigeYes, "yes", false, "Confirm the prestige")
	rootCmd.AddCommand(prestigeCmd)
}

// prestigeStatus is reported when prestige is not possible or not confirmed.
type prestigeStatus struct {
	Ready         bool `json:"ready"`
	Level         int  `json:"current_level"`
	MaxLevel      int  `json:"max_level"`
	PrestigeCount int  `json:"prestige_count"`
	XPNeeded      int  `json:"xp_needed"`
}

func runPrestige(cmd *cobra.Command, args []string) error {
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
	threshold := engine.PrestigeThreshold * (p.PrestigeCount + 1)
	status := prestigeStatus{
		Ready:         engine.CanPrestige(p.TotalXP, p.PrestigeCount),
		Level:         p.Level,
		MaxLevel:      engine.MaxLevel,
		PrestigeCount: p.PrestigeCount,
		XPNeeded:      max(threshold-p.TotalXP, 0),
	}

	if !status.Ready || !prestigeYes {
		if flagJSON {
			return printJSON(out, status)
		}
		renderPrestigeStatus(out, status)
		return nil
	}

	res, err := svc.Prestige(cmd.Context())
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(out, res)
	}
	_, _ = fmt.Fprintln(out, output.Section(fmt.Sprintf("PRESTIGE %d ACHIEVED", res.PrestigeCount)))
	printField(out, "Stars", output.TierStyle("gold").Render(res.Stars))
	printField(out, "New level", fmt.Sprintf("%d", res.Level))
	printField(out, "Tier", output.TierStyle(engine.TierFromLevel(res.Level).Color).Render(res.TierName))
	printField(out, "Historical XP", output.FormatNumber(p.TotalXP))
	_, _ = fmt.Fprintln(out)
	return nil
}

func renderPrestigeStatus(out io.Writer, s prestigeStatus) {
	if !s.Ready {
		_, _ = fmt.Fprintln(out, output.Section("Not Ready to Prestige"))
		printField(out, "Current level", fmt.Sprintf("%d", s.Level))
		printField(out, "Max level", fmt.Sprintf("%d", s.MaxLevel))
		printField(out, "XP needed", output.FormatNumber(s.XPNeeded))
		_, _ = fmt.Fprintf(out, "\n Reach max level to prestige and earn a star.\n\n")
		return
	}
	_, _ = fmt.Fprintln(out, output.Section("Ready to Prestige"))
	_, _ = fmt.Fprintf(out, " You are at max level. Run %s to start prestige %d.\n\n",
		output.StyleBold.Render("clauderank prestige --yes"), s.PrestigeCount+1)
}
