package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colGap = "  "

// Table renders rows under a header and a rule. Widths are measured after
// ANSI styling, so styled cells stay aligned.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
	right   []bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	t := &Table{
		headers: headers,
		widths:  make([]int, len(headers)),
		right:   make([]bool, len(headers)),
	}
	for i, h := range headers {
		t.widths[i] = visualLen(h)
	}
	return t
}

// AlignRight right-aligns the given columns, for numbers.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		if c >= 0 && c < len(t.right) {
			t.right[c] = true
		}
	}
	return t
}

// AddRow appends a row. Missing values render empty and extra values are
// dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	for i, cell := range row {
		t.widths[i] = max(t.widths[i], visualLen(cell))
	}
	t.rows = append(t.rows, row)
}

// Render returns the formatted table.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	var sb strings.Builder

	headers := make([]string, len(t.headers))
	rule := make([]string, len(t.headers))
	for i, h := range t.headers {
		headers[i] = StyleHeader.Render(t.cell(i, h))
		rule[i] = StyleMuted.Render(strings.Repeat("─", t.widths[i]))
	}
	t.writeLine(&sb, headers)
	t.writeLine(&sb, rule)

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = t.cell(i, v)
		}
		t.writeLine(&sb, cells)
	}
	return sb.String()
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	return t.Render()
}

func (t *Table) cell(col int, s string) string {
	if t.right[col] {
		return padLeft(s, t.widths[col])
	}
	return pad(s, t.widths[col])
}

func (t *Table) writeLine(sb *strings.Builder, cells []string) {
	sb.WriteString(strings.TrimRight(strings.Join(cells, colGap), " "))
	sb.WriteByte('\n')
}

// visualLen returns the printed width of s, ignoring ANSI escapes.
func visualLen(s string) int {
	return lipgloss.Width(s)
}

// pad right-pads s to the given printed width. Longer strings are kept.
func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(width-visualLen(s), 0))
}

// padLeft left-pads s to the given printed width.
func padLeft(s string, width int) string {
	return strings.Repeat(" ", max(width-visualLen(s), 0)) + s
}
