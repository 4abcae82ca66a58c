package remote

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/swatchbook/internal/colour"
)

// systemInstruction frames every request.
const systemInstruction = "You are a prepress colour specialist. You write CMYK ink recipes for printing on uncoated and coated paper stock."

// BuildPrompt writes the instruction for one batch. The model is asked for a
// bare JSON array with one element per colour.
func BuildPrompt(hexes []colour.HexColor) string {
	list := make([]string, len(hexes))
	for i, h := range hexes {
		list[i] = string(h)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Give a print-optimised CMYK recipe for each of these %d colours: %s.\n", len(hexes), strings.Join(list, ", "))
	b.WriteString("Correct for common print problems: muddy warm tones from excess cyan or black, blues shifting purple, and out-of-gamut colours clipping flat.\n")
	b.WriteString("Respond with only a JSON array, no prose. Each element must be an object with exactly these fields:\n")
	b.WriteString(`{"hex": "#RRGGBB", "c": 0-100, "m": 0-100, "y": 0-100, "k": 0-100, "explanation": "one sentence", "paper": "recommended paper stock"}`)
	b.WriteString("\nUse integer ink percentages and echo each hex exactly as given.")
	return b.String()
}
