package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ProgressBar renders a fraction in [0, 1] as a bar of the given width.
// Example: "████████░░"
func ProgressBar(fraction float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int(fraction * float64(width))
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// XPBar renders progress through the current level.
// Example: "██████░░░░ 420/700 XP". At max level forNext is 0 and the bar
// is full.
func XPBar(inLevel, forNext, width int) string {
	if forNext <= 0 {
		return StyleSuccess.Render(ProgressBar(1, width)) + " " + StyleMuted.Render("MAX")
	}
	bar := ProgressBar(float64(inLevel)/float64(forNext), width)
	return fmt.Sprintf("%s %s", StyleSuccess.Render(bar),
		StyleMuted.Render(fmt.Sprintf("%s/%s XP", FormatNumber(inLevel), FormatNumber(forNext))))
}

// AchievementBar renders achievement progress with a percentage.
func AchievementBar(progress float64, width int) string {
	bar := ProgressBar(progress, width)
	style := StyleWarning
	if progress >= 1 {
		style = StyleSuccess
	}
	return fmt.Sprintf("%s %s", style.Render(bar), StyleMuted.Render(fmt.Sprintf("%3.0f%%", progress*100)))
}

// Delta returns a styled signed change, e.g. "+330" or "-12".
func Delta(n int) string {
	switch {
	case n > 0:
		return StyleSuccess.Render("+" + FormatNumber(n))
	case n < 0:
		return StyleError.Render(FormatNumber(n))
	default:
		return StyleMuted.Render("─")
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

var numberPrinter = message.NewPrinter(language.English)

// FormatNumber formats n with comma thousands separators.
func FormatNumber(n int) string {
	return numberPrinter.Sprintf("%d", n)
}
