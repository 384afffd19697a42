package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/engine"
	"github.com/blackwell-systems/clauderank/internal/output"
)

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List every achievement with progress",
	RunE:  runAchievements,
}

func init() {
	rootCmd.AddCommand(achievementsCmd)
}

func runAchievements(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openService()
	if err != nil {
		return err
	}
	defer closeDB()

	all, err := svc.Achievements(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, all)
	}
	renderAchievements(out, all)
	return nil
}

// rarityStyle colors a rarity label.
func rarityStyle(r engine.Rarity) string {
	switch r {
	case engine.RarityLegendary:
		return output.TierStyle("legendary").Render(string(r))
	case engine.RarityEpic:
		return output.TierStyle("purple").Render(string(r))
	case engine.RarityRare:
		return output.TierStyle("blue").Render(string(r))
	default:
		return output.StyleMuted.Render(string(r))
	}
}

func renderAchievements(w io.Writer, all []engine.AchievementStatus) {
	unlocked := 0
	for _, a := range all {
		if a.Unlocked {
			unlocked++
		}
	}
	_, _ = fmt.Fprintln(w, output.Section(fmt.Sprintf("Achievements (%d/%d)", unlocked, len(all))))

	tbl := output.NewTable("", "Achievement", "Rarity", "Progress", "", "Unlocked").AlignRight(4)
	for _, a := range all {
		mark := output.StyleMuted.Render("·")
		if a.Unlocked {
			mark = output.StyleSuccess.Render("✓")
		}
		tbl.AddRow(mark,
			a.Def.Name,
			rarityStyle(a.Def.Rarity),
			output.AchievementBar(a.Progress, 15),
			output.StyleMuted.Render(fmt.Sprintf("%d/%d", a.CurrentValue(), a.Def.Target)),
			a.UnlockedAt)
	}
	_, _ = fmt.Fprint(w, tbl.Render())

	_, _ = fmt.Fprintln(w)
	for _, a := range all {
		if !a.Unlocked {
			_, _ = fmt.Fprintf(w, " %s %s\n", output.StyleBold.Render(a.Def.Name+":"), output.StyleMuted.Render(a.Def.Description))
		}
	}
	_, _ = fmt.Fprintln(w)
}
