package remote

import (
	"errors"
	"strings"
	"testing"

	"github.com/jmylchreest/swatchbook/internal/colour"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"a":1}]`, `[{"a":1}]`},
		{"whitespace", "  \n[1]\n ", "[1]"},
		{"json fence", "```json\n[1]\n```", "[1]"},
		{"bare fence", "```\n[1]\n```", "[1]"},
		{"fence with padding", "\n```json\n  [1]  \n```\n", "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeRecipes(t *testing.T) {
	requested := []colour.HexColor{"#6366F1", "#E11D48"}

	text := "```json\n" + `[
  {"hex": "#6366f1", "c": 100, "m": 58, "y": 0, "k": 10, "explanation": "Pure cyan base.", "paper": "Coated Gloss"},
  {"hex": "#E11D48", "c": -4, "m": 130.7, "y": 62.4, "k": 0, "explanation": " Warm red. ", "paper": "  "}
]` + "\n```"

	recipes, ignored, err := DecodeRecipes(text, requested)
	if err != nil {
		t.Fatalf("DecodeRecipes() error = %v", err)
	}
	if len(ignored) != 0 {
		t.Errorf("ignored = %v, want none", ignored)
	}
	if len(recipes) != 2 {
		t.Fatalf("len(recipes) = %d, want 2", len(recipes))
	}

	first := recipes[0]
	if first.Hex != "#6366F1" {
		t.Errorf("Hex = %q, want #6366F1", first.Hex)
	}
	if want := (colour.CMYK{C: 100, M: 58, Y: 0, K: 10}); first.CMYK != want {
		t.Errorf("CMYK = %v, want %v", first.CMYK, want)
	}
	if first.Paper != "Coated Gloss" {
		t.Errorf("Paper = %q", first.Paper)
	}

	second := recipes[1]
	if want := (colour.CMYK{C: 0, M: 100, Y: 62, K: 0}); second.CMYK != want {
		t.Errorf("clamped CMYK = %v, want %v", second.CMYK, want)
	}
	if second.Explanation != "Warm red." {
		t.Errorf("Explanation = %q, want trimmed", second.Explanation)
	}
	if second.Paper != colour.DefaultPaper {
		t.Errorf("blank Paper = %q, want %q", second.Paper, colour.DefaultPaper)
	}
}

func TestDecodeRecipesIgnoresUnattributable(t *testing.T) {
	requested := []colour.HexColor{"#000000"}
	text := `[
  {"hex": "#000000", "c": 60, "m": 40, "y": 40, "k": 100, "explanation": "Rich black.", "paper": "Matte"},
  {"hex": "#000000", "c": 0, "m": 0, "y": 0, "k": 100, "explanation": "Duplicate.", "paper": "Matte"},
  {"hex": "#123456", "c": 1, "m": 2, "y": 3, "k": 4, "explanation": "Not asked for.", "paper": "Matte"},
  {"hex": "navy", "c": 1, "m": 2, "y": 3, "k": 4, "explanation": "Not a hex.", "paper": "Matte"}
]`

	recipes, ignored, err := DecodeRecipes(text, requested)
	if err != nil {
		t.Fatalf("DecodeRecipes() error = %v", err)
	}
	if len(recipes) != 1 || recipes[0].CMYK.K != 100 || recipes[0].CMYK.C != 60 {
		t.Errorf("recipes = %+v, want only the first #000000 element", recipes)
	}
	if len(ignored) != 3 {
		t.Errorf("ignored = %v, want 3 entries", ignored)
	}
}

func TestDecodeRecipesErrors(t *testing.T) {
	requested := []colour.HexColor{"#FFFFFF"}

	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", ErrEmptyResponse},
		{"only fences", "```json\n```", ErrEmptyResponse},
		{"prose", "Here are your recipes!", ErrMalformedPayload},
		{"object not array", `{"hex": "#FFFFFF"}`, ErrMalformedPayload},
		{"missing field", `[{"hex": "#FFFFFF", "c": 0, "m": 0, "y": 0, "explanation": "x", "paper": "y"}]`, ErrMalformedPayload},
		{"null field", `[{"hex": "#FFFFFF", "c": null, "m": 0, "y": 0, "k": 0, "explanation": "x", "paper": "y"}]`, ErrMalformedPayload},
		{"wrong type", `[{"hex": "#FFFFFF", "c": "0", "m": 0, "y": 0, "k": 0, "explanation": "x", "paper": "y"}]`, ErrMalformedPayload},
		{"trailing data", `[] []`, ErrMalformedPayload},
		{"null", `null`, ErrMalformedPayload},
		{"fenced null", "```json\nnull\n```", ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes, _, err := DecodeRecipes(tt.text, requested)
			if !errors.Is(err, tt.want) {
				t.Fatalf("DecodeRecipes() error = %v, want %v", err, tt.want)
			}
			if recipes != nil {
				t.Errorf("recipes = %+v, want nil on error", recipes)
			}
		})
	}
}

func TestBuildPromptListsEveryColour(t *testing.T) {
	prompt := BuildPrompt([]colour.HexColor{"#6366F1", "#000000"})
	for _, want := range []string{"#6366F1", "#000000", "2 colours", "JSON array"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
