package app

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/clauderank/internal/export"
	"github.com/blackwell-systems/clauderank/internal/output"
)

var badgeOutput string

var badgeCmd = &cobra.Command{
	Use:   "badge",
	Short: "Render a shields-style SVG badge of your rank",
	Long: `Render the rank badge as SVG. Without --output the SVG is printed to
stdout; with it the badge is written to that file. A copy is always kept
current in the data directory after every sync.

Examples:
  clauderank badge > badge.svg
  clauderank badge --output docs/claude-rank.svg`,
	RunE: runBadge,
}

func init() {
	badgeCmd.Flags().StringVarP(&badgeOutput, "output", "o", "", "Write the SVG to this file")
	rootCmd.AddCommand(badgeCmd)
}

// badgeResult is the JSON shape of the badge command.
type badgeResult struct {
	Level    int    `json:"level"`
	TierName string `json:"tier_name"`
	Output   string `json:"output,omitempty"`
	SVG      string `json:"svg"`
}

func runBadge(cmd *cobra.Command, args []string) error {
	svc, closeDB, err := openService()
	if err != nil {
		return err
	}
	defer closeDB()

	p, err := svc.Profile(cmd.Context())
	if err != nil {
		return err
	}
	svg, err := export.BadgeSVG(p.Level, p.TierName, p.TierColor, p.PrestigeCount, p.TotalXP)
	if err != nil {
		return err
	}

	res := badgeResult{Level: p.Level, TierName: p.TierName, SVG: svg}
	if badgeOutput != "" {
		if err := export.WriteFileAtomic(badgeOutput, []byte(svg)); err != nil {
			return fmt.Errorf("writing badge: %w", err)
		}
		res.Output = badgeOutput
	}

	out := cmd.OutOrStdout()
	switch {
	case flagJSON:
		return printJSON(out, res)
	case badgeOutput == "":
		_, err := fmt.Fprintln(out, svg)
		return err
	}
	_, _ = fmt.Fprintln(out, output.Section("Badge Generated"))
	printField(out, "Saved to", output.StyleBold.Render(badgeOutput))
	printField(out, "Rank", fmt.Sprintf("Level %d - %s", p.Level, p.TierName))
	_, _ = fmt.Fprintf(out, "\n Add to your README:\n   ![Claude Rank](%s)\n\n", filepath.ToSlash(badgeOutput))
	return nil
}
