package cli

import (
	"strings"
)

// columnGap separates adjacent columns.
const columnGap = "  "

// Table is a plain-text table with dynamic column widths. Cells may contain
// ANSI colour sequences; widths are measured on the visible text.
type Table struct {
	headers   []string
	rows      [][]string
	maxWidths map[int]int
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:   headers,
		maxWidths: make(map[int]int),
	}
}

// SetColumnMaxWidth wraps cells of column col at width visible characters.
func (t *Table) SetColumnMaxWidth(col, width int) {
	t.maxWidths[col] = width
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(t.headers))
	copy(cells, row)
	t.rows = append(t.rows, cells)
}

// Render formats the table.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	// Each row becomes one or more lines once wrapped.
	var lines [][]string
	for _, row := range t.rows {
		lines = append(lines, t.wrapRow(row)...)
	}

	widths := make([]int, len(t.headers))
	for _, line := range append([][]string{t.headers}, lines...) {
		for i, cell := range line {
			widths[i] = max(widths[i], visibleLen(cell))
		}
	}

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}

	var b strings.Builder
	writeLine(&b, t.headers, widths)
	writeLine(&b, rule, widths)
	for _, line := range lines {
		writeLine(&b, line, widths)
	}
	return b.String()
}

// wrapRow splits row into physical lines, wrapping limited columns.
func (t *Table) wrapRow(row []string) [][]string {
	cols := make([][]string, len(row))
	height := 1
	for i, cell := range row {
		if w := t.maxWidths[i]; w > 0 {
			cols[i] = wrapText(cell, w)
		} else {
			cols[i] = []string{cell}
		}
		height = max(height, len(cols[i]))
	}

	lines := make([][]string, height)
	for n := range lines {
		lines[n] = make([]string, len(row))
		for i, col := range cols {
			if n < len(col) {
				lines[n][i] = col[n]
			}
		}
	}
	return lines
}

func writeLine(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(columnGap)
		}
		b.WriteString(padRight(cell, widths[i]))
	}
	b.WriteByte('\n')
}

// padRight pads s with spaces up to width visible columns.
func padRight(s string, width int) string {
	n := visibleLen(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// visibleLen counts the runes of s that are not part of an ANSI CSI sequence.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case inEscape:
			if b >= 0x40 && b <= 0x7e && b != '[' {
				inEscape = false
			}
		case b == 0x1b:
			inEscape = true
		case b&0xc0 != 0x80:
			n++
		}
	}
	return n
}

// wrapText breaks text into lines of at most width runes at spaces. Words
// longer than width are split.
func wrapText(text string, width int) []string {
	if width <= 0 || visibleLen(text) <= width {
		return []string{text}
	}

	var lines []string
	var line []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > width {
			if len(line) > 0 {
				lines = append(lines, string(line))
				line = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(line) == 0:
			line = w
		case len(line)+1+len(w) <= width:
			line = append(append(line, ' '), w...)
		default:
			lines = append(lines, string(line))
			line = w
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}
