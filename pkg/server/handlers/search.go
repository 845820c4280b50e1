// Package handlers implements the HTTP request handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	concordia "github.com/lusotexts/concordia"
	"github.com/lusotexts/concordia/pkg/server/dto"
	"github.com/lusotexts/concordia/pkg/types"
)

// SearchHandler handles corpus search requests.
type SearchHandler struct {
	client concordia.Concordia
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(client concordia.Concordia) *SearchHandler {
	return &SearchHandler{client: client}
}

// Search handles GET and POST /api/v1/search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	var err error
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(&req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.client.Search(c.Request.Context(), req.Query, req.Limit, types.Category(req.Category))
	if err != nil {
		writeError(c, err)
		return
	}

	hits := make([]dto.SearchHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		hits = append(hits, dto.SearchHit{
			ID:          r.Entry.ID,
			Name:        r.Entry.CanonicalName(),
			Names:       r.Entry.Names,
			Category:    string(r.Entry.Category),
			Subcategory: r.Entry.Subcategory,
			Books:       r.Entry.Books,
			Mentions:    r.Entry.Mentions,
			Score:       r.Composite,
			Semantic:    r.Semantic,
			Lexical:     r.Lexical,
		})
	}
	c.JSON(http.StatusOK, dto.SearchResponse{
		Results: hits,
		Total:   resp.Total,
		Mode:    resp.Mode,
	})
}

// Stats handles GET /api/v1/stats.
func (h *SearchHandler) Stats(c *gin.Context) {
	reg, err := h.client.Store().Registry()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatsResponse{
		Books:    reg.Counts.Books,
		Entities: reg.Counts.Entities,
		Mentions: reg.Counts.Mentions,
	})
}

// writeError maps domain errors onto the uniform error body.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrQueryTooShort),
		errors.Is(err, types.ErrQuestionEmpty),
		errors.Is(err, types.ErrQuestionTooLong):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrUnknownBook),
		errors.Is(err, types.ErrUnknownEntity):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrMissingCredentials),
		errors.Is(err, types.ErrProviderUnavailable):
		status = http.StatusInternalServerError
	}
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}
