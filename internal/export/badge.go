package export

import (
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/blackwell-systems/clauderank/internal/output"
)

const (
	badgeLabel   = "claude-rank"
	labelBG      = "555555"
	defaultHex   = "6b7280"
	badgePadding = 10
	badgeHeight  = 20
)

// tierHex maps level tier color names to badge fill colors.
var tierHex = map[string]string{
	"bronze":      "b45309",
	"silver":      "9ca3af",
	"gold":        "d97706",
	"teal":        "0d9488",
	"diamond":     "0891b2",
	"purple":      "7c3aed",
	"deep_purple": "5b21b6",
	"crimson":     "be123c",
	"amber":       "ca8a04",
	"legendary":   "a21caf",
}

// narrow and wide glyph widths in pixels at 11px DejaVu Sans; other
// characters count as 7.
var glyphWidth = map[rune]int{
	'f': 4, 'i': 4, 'j': 4, 'l': 4, 'r': 4, 't': 5,
	'm': 10, 'w': 9, 'W': 10, 'M': 10,
	' ': 4, '.': 4, ',': 4, ':': 4, '/': 5,
}

func textWidth(s string) int {
	w := 0
	for _, r := range s {
		if gw, ok := glyphWidth[r]; ok {
			w += gw
		} else {
			w += 7
		}
	}
	return w
}

var badgeTmpl = template.Must(template.New("badge").Funcs(template.FuncMap{
	"esc": html.EscapeString,
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="{{.Total}}" height="{{.Height}}" role="img" aria-label="{{esc .Tooltip}}">
  <title>{{esc .Tooltip}}</title>
  <linearGradient id="s" x2="0" y2="100%">
    <stop offset="0" stop-color="#bbb" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
  </linearGradient>
  <clipPath id="r">
    <rect width="{{.Total}}" height="{{.Height}}" rx="3" fill="#fff"/>
  </clipPath>
  <g clip-path="url(#r)">
    <rect width="{{.LabelW}}" height="{{.Height}}" fill="#{{.LabelBG}}"/>
    <rect x="{{.LabelW}}" width="{{.ValueW}}" height="{{.Height}}" fill="#{{.ValueBG}}"/>
    <rect width="{{.Total}}" height="{{.Height}}" fill="url(#s)"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="DejaVu Sans,Verdana,Geneva,sans-serif" text-rendering="geometricPrecision" font-size="11">
    <text aria-hidden="true" x="{{.LabelX}}.5" y="15" fill="#010101" fill-opacity=".3">{{esc .Label}}</text>
    <text x="{{.LabelX}}.5" y="14">{{esc .Label}}</text>
    <text aria-hidden="true" x="{{.ValueX}}.5" y="15" fill="#010101" fill-opacity=".3">{{esc .Value}}</text>
    <text x="{{.ValueX}}.5" y="14">{{esc .Value}}</text>
  </g>
</svg>
`))

type badgeData struct {
	Label, Value, Tooltip string
	LabelBG, ValueBG      string
	LabelW, ValueW, Total int
	LabelX, ValueX        int
	Height                int
}

// BadgeSVG renders a shields.io flat-style badge: [claude-rank | Lv.12 Gold ★].
// Unknown tier colors fall back to grey.
func BadgeSVG(level int, tierName, tierColor string, prestigeCount, totalXP int) (string, error) {
	value := fmt.Sprintf("Lv.%d %s", level, tierName)
	if prestigeCount > 0 {
		value += " " + strings.Repeat("★", prestigeCount)
	}

	tooltip := fmt.Sprintf("%s: Level %d %s", badgeLabel, level, tierName)
	if prestigeCount > 0 {
		tooltip += fmt.Sprintf(" (Prestige %d)", prestigeCount)
	}
	if totalXP > 0 {
		tooltip += " - " + output.FormatNumber(totalXP) + " XP"
	}

	valueBG, ok := tierHex[tierColor]
	if !ok {
		valueBG = defaultHex
	}

	d := badgeData{
		Label:   badgeLabel,
		Value:   value,
		Tooltip: tooltip,
		LabelBG: labelBG,
		ValueBG: valueBG,
		LabelW:  textWidth(badgeLabel) + badgePadding*2,
		ValueW:  textWidth(value) + badgePadding*2,
		Height:  badgeHeight,
	}
	d.Total = d.LabelW + d.ValueW
	d.LabelX = d.LabelW / 2
	d.ValueX = d.LabelW + d.ValueW/2

	var b strings.Builder
	if err := badgeTmpl.Execute(&b, d); err != nil {
		return "", fmt.Errorf("rendering badge: %w", err)
	}
	return b.String(), nil
}
