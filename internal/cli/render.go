package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/jmylchreest/swatchbook/internal/colour"
)

var provenanceColours = map[colour.Provenance]*color.Color{
	colour.ProvenanceAI:        color.New(color.FgGreen, color.Bold),
	colour.ProvenanceCache:     color.New(color.FgCyan),
	colour.ProvenanceHeuristic: color.New(color.FgYellow),
}

// isStyled reports whether w is a terminal that should get colour output.
func isStyled(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// contrastThreshold is the luminance where black and white text have equal
// contrast against a background.
const contrastThreshold = 0.179

// textColourFor picks black or white text for a background of rgb.
func textColourFor(rgb colour.RGB) colour.RGB {
	if colour.Luminance(rgb) > contrastThreshold {
		return colour.RGB{}
	}
	return colour.RGB{R: 255, G: 255, B: 255}
}

// swatch renders label on a truecolour background of rgb.
func swatch(rgb colour.RGB, label string) string {
	fg := textColourFor(rgb)
	return color.BgRGB(int(rgb.R), int(rgb.G), int(rgb.B)).
		AddRGB(int(fg.R), int(fg.G), int(fg.B)).
		Sprint(label)
}

func provenanceLabel(p colour.Provenance, styled bool) string {
	if c, ok := provenanceColours[p]; ok && styled {
		return c.Sprint(p.String())
	}
	return p.String()
}

// renderResults formats results as a table. styled paints the hex on its
// screen colour, adds a PRINT column previewing the smart recipe's ink mix and
// colours the provenance.
func renderResults(results []colour.Result, styled bool) string {
	headers := []string{"HEX", "STANDARD", "SMART", "INK", "SOURCE", "PAPER", "NOTES"}
	if styled {
		headers = append([]string{"HEX", "PRINT"}, headers[1:]...)
	}
	table := NewTable(headers)
	table.SetColumnMaxWidth(len(headers)-1, 48)

	for _, r := range results {
		smart := r.SmartPrintRecipe
		row := []string{
			r.Hex.String(),
			r.StandardAuto.CMYK.String(),
			smart.CMYK.String(),
			fmt.Sprintf("%d%%", smart.TotalInk()),
			provenanceLabel(r.Provenance, styled),
			smart.Paper,
			smart.Explanation,
		}
		if styled {
			row = append([]string{
				swatch(r.Hex.RGB(), " "+r.Hex.String()+" "),
				swatch(smart.CMYK.ToRGB(), "         "),
			}, row[1:]...)
		}
		table.AddRow(row)
	}
	return table.Render()
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
