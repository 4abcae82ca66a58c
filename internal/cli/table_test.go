package cli

import (
	"strings"
	"testing"
)

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"HEX", "SOURCE"})
	table.AddRow([]string{"#6366F1", "heuristic"})
	table.AddRow([]string{"#000", "ai"})

	want := "HEX      SOURCE   \n" +
		"-------  ---------\n" +
		"#6366F1  heuristic\n" +
		"#000     ai       \n"
	if got := table.Render(); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestTableRenderEmpty(t *testing.T) {
	if got := NewTable(nil).Render(); got != "" {
		t.Errorf("Render() with no headers = %q, want empty", got)
	}

	got := NewTable([]string{"HEX"}).Render()
	if got != "HEX\n---\n" {
		t.Errorf("Render() with no rows = %q", got)
	}
}

func TestTableAddRowFitsHeaders(t *testing.T) {
	table := NewTable([]string{"A", "B"})
	table.AddRow([]string{"1"})
	table.AddRow([]string{"1", "2", "3"})

	for i, row := range table.rows {
		if len(row) != 2 {
			t.Errorf("row %d has %d cells, want 2", i, len(row))
		}
	}
	if table.rows[0][1] != "" {
		t.Errorf("padded cell = %q, want empty", table.rows[0][1])
	}
}

func TestTableWrapsLimitedColumn(t *testing.T) {
	table := NewTable([]string{"HEX", "NOTES"})
	table.SetColumnMaxWidth(1, 10)
	table.AddRow([]string{"#000000", "rich black for deep solids"})

	lines := strings.Split(strings.TrimRight(table.Render(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	for _, want := range []string{"rich black", "for deep", "solids"} {
		found := false
		for _, l := range lines[2:] {
			if strings.TrimSpace(l[9:]) == want {
				found = true
			}
		}
		if !found {
			t.Errorf("no wrapped line %q in\n%s", want, strings.Join(lines, "\n"))
		}
	}
	if !strings.HasPrefix(lines[3], strings.Repeat(" ", 9)) {
		t.Errorf("continuation line should leave HEX blank: %q", lines[3])
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  []string
	}{
		{in: "short", width: 10, want: []string{"short"}},
		{in: "one two three", width: 7, want: []string{"one two", "three"}},
		{in: "abcdefghij", width: 4, want: []string{"abcd", "efgh", "ij"}},
		{in: "anything", width: 0, want: []string{"anything"}},
		{in: "café crème brûlée", width: 10, want: []string{"café crème", "brûlée"}},
	}

	for _, tt := range tests {
		got := wrapText(tt.in, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestVisibleLen(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"plain", 5},
		{"", 0},
		{"\x1b[32mai\x1b[0m", 2},
		{"\x1b[48;2;99;102;241m    \x1b[0m", 4},
		{"→ ★", 3},
	}

	for _, tt := range tests {
		if got := visibleLen(tt.input); got != tt.want {
			t.Errorf("visibleLen(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestTableAlignsColouredCells(t *testing.T) {
	table := NewTable([]string{"SOURCE", "HEX"})
	table.AddRow([]string{"\x1b[33mheuristic\x1b[0m", "#6366F1"})
	table.AddRow([]string{"ai", "#000000"})

	lines := strings.Split(table.Render(), "\n")
	coloured := strings.Index(lines[2], "#6366F1") - (len(lines[2]) - visibleLen(lines[2]))
	plain := strings.Index(lines[3], "#000000")
	if coloured != plain {
		t.Errorf("HEX column starts at %d and %d, want equal", coloured, plain)
	}
}
