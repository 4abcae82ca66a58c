// Package remote asks a generative model for smart print recipes.
package remote

import (
	"context"
	"errors"

	"github.com/jmylchreest/swatchbook/internal/colour"
)

// Sentinel errors. Any error from a Source means the whole batch failed.
var (
	ErrNoCredential     = errors.New("remote: no credential configured")
	ErrEmptyResponse    = errors.New("remote: empty response")
	ErrMalformedPayload = errors.New("remote: malformed payload")
)

// Recipe is one validated element of a model response.
type Recipe struct {
	Hex         colour.HexColor
	CMYK        colour.CMYK
	Explanation string
	Paper       string
}

// Source resolves smart recipes for a batch of colours with one remote call.
//
// A returned error means nothing in the batch was resolved. A nil error with
// fewer recipes than requested is a partial answer; callers fill the gaps.
type Source interface {
	FetchRecipes(ctx context.Context, hexes []colour.HexColor) ([]Recipe, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, hexes []colour.HexColor) ([]Recipe, error)

// FetchRecipes calls f.
func (f SourceFunc) FetchRecipes(ctx context.Context, hexes []colour.HexColor) ([]Recipe, error) {
	return f(ctx, hexes)
}
