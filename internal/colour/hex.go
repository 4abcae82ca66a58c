package colour

import (
	"strconv"
	"strings"
)

// FallbackHex is the value NormalizeHex returns for anything that is not a hex colour.
const FallbackHex HexColor = "#FFFFFF"

// HexColor is a normalized "#RRGGBB" colour string.
// Values produced by NormalizeHex are always seven characters and uppercase.
type HexColor string

// String implements fmt.Stringer.
func (h HexColor) String() string {
	return string(h)
}

// RGB decodes the colour into its components.
func (h HexColor) RGB() RGB {
	return ParseHex(string(h))
}

// IsValidHex reports whether s is exactly 3 or 6 hex digits, optionally
// prefixed with '#'. Whitespace makes it invalid.
func IsValidHex(s string) bool {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 3 && len(digits) != 6 {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return false
		}
	}
	return true
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// NormalizeHex returns the canonical "#RRGGBB" form of s.
// Shorthand "#RGB" is expanded. Invalid input yields FallbackHex; it never errors.
func NormalizeHex(s string) HexColor {
	if !IsValidHex(s) {
		return FallbackHex
	}
	digits := expandShorthand(strings.TrimPrefix(s, "#"))
	return HexColor("#" + strings.ToUpper(digits))
}

// NormalizeAll normalizes every input and drops duplicates, keeping first-seen order.
func NormalizeAll(in []string) []HexColor {
	seen := make(map[HexColor]struct{}, len(in))
	out := make([]HexColor, 0, len(in))
	for _, s := range in {
		h := NormalizeHex(s)
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

// ParseHex decodes a hex colour into RGB. Shorthand digits are duplicated
// ("#abc" -> AA BB CC). Invalid input decodes as white.
func ParseHex(s string) RGB {
	if !IsValidHex(s) {
		return RGB{R: 255, G: 255, B: 255}
	}
	digits := expandShorthand(strings.TrimPrefix(s, "#"))

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return RGB{R: 255, G: 255, B: 255}
	}
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}
}

func expandShorthand(digits string) string {
	if len(digits) != 3 {
		return digits
	}
	var b strings.Builder
	b.Grow(6)
	for i := 0; i < 3; i++ {
		b.WriteByte(digits[i])
		b.WriteByte(digits[i])
	}
	return b.String()
}
