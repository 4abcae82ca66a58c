package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/jmylchreest/swatchbook/internal/colour"
	"github.com/jmylchreest/swatchbook/internal/config"
	httputil "github.com/jmylchreest/swatchbook/internal/util/http"
)

// generator is the slice of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAI is a Source backed by Google Gen AI (Gemini API or Vertex AI).
type GenAI struct {
	models          generator
	model           string
	temperature     float32
	maxOutputTokens int32
	timeout         time.Duration
	limiter         *rate.Limiter
	logger          hclog.Logger
}

// Option configures GenAI.
type Option func(*GenAI)

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(g *GenAI) {
		if l != nil {
			g.logger = l
		}
	}
}

// withGenerator swaps the SDK for tests.
func withGenerator(m generator) Option {
	return func(g *GenAI) {
		g.models = m
	}
}

// NewGenAI creates a client from cfg. It returns ErrNoCredential when cfg has
// no usable credential; callers should then run heuristic-only.
func NewGenAI(ctx context.Context, cfg config.Remote, opts ...Option) (*GenAI, error) {
	g := &GenAI{
		model:           cfg.Model,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		timeout:         cfg.Timeout,
		logger:          hclog.NewNullLogger(),
	}
	if cfg.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.models != nil {
		return g, nil
	}

	if !cfg.Enabled() {
		return nil, ErrNoCredential
	}

	clientConfig := &genai.ClientConfig{
		HTTPClient: httputil.NewClient(httputil.ClientOptions{Timeout: cfg.Timeout}),
	}
	if cfg.Backend == config.RemoteBackendVertex {
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = cfg.Project
		clientConfig.Location = cfg.Location
	} else {
		clientConfig.Backend = genai.BackendGeminiAPI
		clientConfig.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}
	g.models = client.Models

	backendName := "Gemini API"
	if client.ClientConfig().Backend == genai.BackendVertexAI {
		backendName = "Vertex AI"
	}
	g.logger.Debug("gen ai client ready", "backend", backendName, "model", g.model)
	return g, nil
}

// FetchRecipes makes exactly one GenerateContent call for the whole batch.
func (g *GenAI) FetchRecipes(ctx context.Context, hexes []colour.HexColor) ([]Recipe, error) {
	if len(hexes) == 0 {
		return nil, nil
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(g.temperature),
		MaxOutputTokens:   g.maxOutputTokens,
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	start := time.Now()
	response, err := g.models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(hexes)), genConfig)
	if err != nil {
		return nil, fmt.Errorf("recipe generation failed: %w", err)
	}
	if response == nil || len(response.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	recipes, ignored, err := DecodeRecipes(response.Text(), hexes)
	if err != nil {
		return nil, err
	}
	if len(ignored) > 0 {
		g.logger.Warn("ignored recipes for colours that were not requested", "hexes", ignored)
	}
	g.logger.Debug("gen ai batch complete",
		"requested", len(hexes), "resolved", len(recipes), "duration", time.Since(start))

	return recipes, nil
}

var _ Source = (*GenAI)(nil)
