package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmylchreest/swatchbook/internal/colour"
)

// wireRecipe mirrors one array element of the model's answer. Pointers let
// the decoder tell a missing field from a zero value.
type wireRecipe struct {
	Hex         *string  `json:"hex"`
	C           *float64 `json:"c"`
	M           *float64 `json:"m"`
	Y           *float64 `json:"y"`
	K           *float64 `json:"k"`
	Explanation *string  `json:"explanation"`
	Paper       *string  `json:"paper"`
}

func (w wireRecipe) missing() []string {
	var fields []string
	if w.Hex == nil {
		fields = append(fields, "hex")
	}
	if w.C == nil {
		fields = append(fields, "c")
	}
	if w.M == nil {
		fields = append(fields, "m")
	}
	if w.Y == nil {
		fields = append(fields, "y")
	}
	if w.K == nil {
		fields = append(fields, "k")
	}
	if w.Explanation == nil {
		fields = append(fields, "explanation")
	}
	if w.Paper == nil {
		fields = append(fields, "paper")
	}
	return fields
}

// StripFences removes Markdown code fences (```json ... ```) and surrounding
// whitespace from a model answer.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence and any language tag on the same line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeRecipes parses a model answer into validated recipes.
//
// The whole payload is rejected with ErrMalformedPayload if it is not a JSON
// array or if any element is missing a field or has a wrongly typed one. Ink
// values are rounded and clamped into [0,100]. Elements whose hex is invalid,
// was not requested, or repeats an earlier element are returned in ignored
// rather than attributed to some other colour.
func DecodeRecipes(text string, requested []colour.HexColor) (recipes []Recipe, ignored []string, err error) {
	body := StripFences(text)
	if body == "" {
		return nil, nil, ErrEmptyResponse
	}

	var wire []wireRecipe
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	if err := dec.Decode(&wire); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if dec.More() {
		return nil, nil, fmt.Errorf("%w: trailing data after JSON array", ErrMalformedPayload)
	}
	if wire == nil {
		return nil, nil, fmt.Errorf("%w: null instead of JSON array", ErrMalformedPayload)
	}

	want := make(map[colour.HexColor]struct{}, len(requested))
	for _, h := range requested {
		want[colour.NormalizeHex(string(h))] = struct{}{}
	}

	seen := make(map[colour.HexColor]struct{}, len(wire))
	for i, w := range wire {
		if missing := w.missing(); len(missing) > 0 {
			return nil, nil, fmt.Errorf("%w: element %d missing %s", ErrMalformedPayload, i, strings.Join(missing, ", "))
		}

		raw := strings.TrimSpace(*w.Hex)
		if !colour.IsValidHex(raw) {
			ignored = append(ignored, *w.Hex)
			continue
		}
		hex := colour.NormalizeHex(raw)
		if _, ok := want[hex]; !ok {
			ignored = append(ignored, *w.Hex)
			continue
		}
		if _, dup := seen[hex]; dup {
			ignored = append(ignored, *w.Hex)
			continue
		}
		seen[hex] = struct{}{}

		paper := strings.TrimSpace(*w.Paper)
		if paper == "" {
			paper = colour.DefaultPaper
		}

		recipes = append(recipes, Recipe{
			Hex:         hex,
			CMYK:        colour.NewCMYK(*w.C, *w.M, *w.Y, *w.K),
			Explanation: strings.TrimSpace(*w.Explanation),
			Paper:       paper,
		})
	}

	return recipes, ignored, nil
}
