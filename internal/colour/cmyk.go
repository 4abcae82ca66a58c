package colour

import (
	"fmt"
	"math"
)

// StandardNote is attached to every deterministic conversion.
const StandardNote = "Mathematical conversion. Colours may print duller than an optimised print recipe."

// CMYK holds ink percentages, each in [0,100].
type CMYK struct {
	C int `json:"c"`
	M int `json:"m"`
	Y int `json:"y"`
	K int `json:"k"`
}

// NewCMYK builds a CMYK value from raw percentages, rounding and clamping each channel.
func NewCMYK(c, m, y, k float64) CMYK {
	return CMYK{C: ClampInk(c), M: ClampInk(m), Y: ClampInk(y), K: ClampInk(k)}
}

// ClampInk rounds v to the nearest integer and clamps it into [0,100].
// NaN is treated as zero ink.
func ClampInk(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return int(r)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp returns a copy with every channel forced into [0,100].
func (c CMYK) Clamp() CMYK {
	return CMYK{
		C: clampInt(c.C, 0, 100),
		M: clampInt(c.M, 0, 100),
		Y: clampInt(c.Y, 0, 100),
		K: clampInt(c.K, 0, 100),
	}
}

// TotalInk returns the summed coverage of all four channels (0-400).
func (c CMYK) TotalInk() int {
	return c.C + c.M + c.Y + c.K
}

// String returns the values as "C/M/Y/K".
func (c CMYK) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", c.C, c.M, c.Y, c.K)
}

// ToRGB approximates the on-screen colour of the ink mix.
func (c CMYK) ToRGB() RGB {
	k := float64(c.K) / 100
	conv := func(v int) uint8 {
		return uint8(math.Round(255 * (1 - float64(v)/100) * (1 - k)))
	}
	return RGB{R: conv(c.C), G: conv(c.M), B: conv(c.Y)}
}

// Standard converts RGB to CMYK with the classical subtractive formula.
//
//	K = 1 - max(R', G', B')
//	C = (1 - R' - K) / (1 - K)   (0 when K == 1), M and Y likewise
func Standard(rgb RGB) CMYK {
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	k := 1 - math.Max(r, math.Max(g, b))
	if k == 1 {
		return CMYK{K: 100}
	}

	c := (1 - r - k) / (1 - k)
	m := (1 - g - k) / (1 - k)
	y := (1 - b - k) / (1 - k)

	return NewCMYK(c*100, m*100, y*100, k*100)
}

// StandardAutoFor returns the deterministic conversion for a normalized hex colour.
func StandardAutoFor(h HexColor) StandardAuto {
	return StandardAuto{
		CMYK: Standard(h.RGB()),
		Note: StandardNote,
	}
}
