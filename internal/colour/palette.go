// Package colour provides hex normalisation and CMYK print recipe generation.
package colour

import "fmt"

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a canonical hex colour (e.g., "#1A2B3C").
func (rgb RGB) Hex() HexColor {
	return HexColor(fmt.Sprintf("#%02X%02X%02X", rgb.R, rgb.G, rgb.B))
}
