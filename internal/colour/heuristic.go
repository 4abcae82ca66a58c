package colour

import "math"

// Rationale strings attached by the heuristic engine, one per rule.
const (
	RationaleRichBlack = "Rich black: adds cyan, magenta and yellow under full black for a deep, even solid instead of a flat grey-black."
	RationaleWarm      = "Warm tone: removes cyan and black to stop reds, oranges and yellows turning muddy, and boosts magenta and yellow to keep them vivid."
	RationaleBlue      = "Blue: forces full cyan and caps magenta so blues don't drift purple, with a touch of black for depth."
	RationaleGreen     = "Green: removes magenta and black that dull greens, trims cyan slightly and runs yellow at full strength."
	RationaleNeutral   = "No correction needed: the standard conversion already prints cleanly for this hue."
)

// Hue bands, inclusive on both ends.
const (
	warmHueMax      = 50.0
	warmHueWrapMin  = 330.0
	blueHueMin      = 190.0
	blueHueMax      = 260.0
	greenHueMin     = 70.0
	greenHueMax     = 165.0
	blueKMin        = 5
	blueKMax        = 15
	blueMagentaCap  = 70
	warmMagentaGain = 1.2
	warmYellowGain  = 1.15
	greenCyanScale  = 0.9
)

var richBlack = CMYK{C: 60, M: 40, Y: 40, K: 100}

// Heuristic derives a smart print recipe from the colour and its standard
// conversion. The first matching rule wins:
//
//  1. pure black          -> rich black 60/40/40/100
//  2. warm  (0-50, 330-360) -> C=0, K=0, M*1.2, Y*1.15
//  3. blue  (190-260)     -> C=100, M<=70, K=clamp(K+5, 5, 15)
//  4. green (70-165)      -> M=0, K=0, C*0.9, Y=100
//  5. anything else       -> standard values unchanged
func Heuristic(h HexColor, std CMYK) SmartRecipe {
	std = std.Clamp()
	rgb := h.RGB()

	if rgb == (RGB{}) {
		return SmartRecipe{CMYK: richBlack, Explanation: RationaleRichBlack, Paper: DefaultPaper}
	}

	hue := Hue(rgb)
	switch {
	case hue <= warmHueMax || hue >= warmHueWrapMin:
		return SmartRecipe{
			CMYK: CMYK{
				C: 0,
				M: ClampInk(float64(std.M) * warmMagentaGain),
				Y: ClampInk(float64(std.Y) * warmYellowGain),
				K: 0,
			},
			Explanation: RationaleWarm,
			Paper:       DefaultPaper,
		}
	case hue >= blueHueMin && hue <= blueHueMax:
		return SmartRecipe{
			CMYK: CMYK{
				C: 100,
				M: min(blueMagentaCap, std.M),
				Y: std.Y,
				K: clampInt(std.K+5, blueKMin, blueKMax),
			},
			Explanation: RationaleBlue,
			Paper:       DefaultPaper,
		}
	case hue >= greenHueMin && hue <= greenHueMax:
		return SmartRecipe{
			CMYK: CMYK{
				C: ClampInk(math.Round(float64(std.C) * greenCyanScale)),
				M: 0,
				Y: 100,
				K: 0,
			},
			Explanation: RationaleGreen,
			Paper:       DefaultPaper,
		}
	}

	return SmartRecipe{CMYK: std, Explanation: RationaleNeutral, Paper: DefaultPaper}
}

// HeuristicConversion builds a complete recipe for s without any remote call.
// It never fails; invalid input is treated as FallbackHex.
func HeuristicConversion(s string) PrintConversion {
	h := NormalizeHex(s)
	std := StandardAutoFor(h)
	return PrintConversion{
		Hex:              h,
		StandardAuto:     std,
		SmartPrintRecipe: Heuristic(h, std.CMYK),
	}
}

// HeuristicResult is HeuristicConversion tagged with ProvenanceHeuristic.
func HeuristicResult(s string) Result {
	return Result{PrintConversion: HeuristicConversion(s), Provenance: ProvenanceHeuristic}
}
