package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jmylchreest/swatchbook/internal/colour"
)

// maxWait caps the ?wait= parameter on GET /v1/view.
const maxWait = 60 * time.Second

// ViewRequest is the body of PUT /v1/view.
type ViewRequest struct {
	Hexes []string `json:"hexes"`
}

// ViewResponse describes the colour set in view.
type ViewResponse struct {
	Key        string          `json:"key"`
	Generation uint64          `json:"generation"`
	Loading    bool            `json:"loading"`
	Results    []colour.Result `json:"results"`
}

// BatchRequest is the body of POST /v1/recipes.
type BatchRequest struct {
	Hexes []string `json:"hexes"`
}

// BatchResponse carries resolved recipes in request order.
type BatchResponse struct {
	Results []colour.Result `json:"results"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	Remote        bool   `json:"remote"`
	CacheEntries  int    `json:"cache_entries"`
	CacheDegraded bool   `json:"cache_degraded"`
}

// ErrorResponse is returned on client errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) viewResponse() ViewResponse {
	v := s.view.Snapshot()
	return ViewResponse{
		Key:        v.Key,
		Generation: v.Generation,
		Loading:    v.Loading,
		Results:    v.Results,
	}
}

// HandleHealth handles GET /healthz.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "ok",
		Remote:        s.coordinator.RemoteEnabled(),
		CacheEntries:  s.cache.Len(),
		CacheDegraded: s.cache.Degraded(),
	})
}

// HandleGetView handles GET /v1/view.
//
// With ?wait=<duration> it blocks until the current refresh settles or the
// duration elapses, then answers with whatever is available.
func (s *Server) HandleGetView(c *gin.Context) {
	if raw := c.Query("wait"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "wait must be a non-negative duration"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), min(d, maxWait))
		defer cancel()
		_ = s.view.Wait(ctx)
	}
	c.JSON(http.StatusOK, s.viewResponse())
}

// HandleSetView handles PUT /v1/view. The refresh runs in the background.
func (s *Server) HandleSetView(c *gin.Context) {
	var req ViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	s.view.SetColours(req.Hexes)
	c.JSON(http.StatusAccepted, s.viewResponse())
}

// HandleRecipe handles GET /v1/recipes/:hex. The leading '#' is optional.
// Invalid colours resolve to the white fallback like everywhere else.
func (s *Server) HandleRecipe(c *gin.Context) {
	c.JSON(http.StatusOK, s.view.Result(c.Param("hex")))
}

// HandleBatch handles POST /v1/recipes, resolving the colours synchronously
// through the batch coordinator.
func (s *Server) HandleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	resolved := s.coordinator.FetchBatch(c.Request.Context(), req.Hexes)
	hexes := colour.NormalizeAll(req.Hexes)
	out := make([]colour.Result, 0, len(hexes))
	for _, h := range hexes {
		out = append(out, resolved[h])
	}
	c.JSON(http.StatusOK, BatchResponse{Results: out})
}
