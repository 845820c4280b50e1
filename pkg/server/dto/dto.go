// Package dto defines the request and response bodies of the HTTP API.
package dto

import (
	"errors"
	"strings"

	"github.com/lusotexts/concordia/pkg/types"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SearchRequest is the POST body of /api/v1/search. GET requests carry the
// same fields as query parameters.
type SearchRequest struct {
	Query    string `json:"query" form:"q" binding:"required"`
	Limit    int    `json:"limit" form:"limit"`
	Category string `json:"category" form:"category"`
}

// Validate checks the request beyond binding.
func (r *SearchRequest) Validate() error {
	if len(strings.TrimSpace(r.Query)) < 2 {
		return types.ErrQueryTooShort
	}
	if r.Category != "" && !types.Category(r.Category).Valid() {
		return errors.New("unknown category filter")
	}
	return nil
}

// SearchHit is one ranked search result.
type SearchHit struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Names       []string `json:"names,omitempty"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	Books       []string `json:"books,omitempty"`
	Mentions    int      `json:"mentions"`
	Score       float64  `json:"score"`
	Semantic    float64  `json:"semantic_score"`
	Lexical     float64  `json:"lexical_score"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Results []SearchHit `json:"results"`
	Total   int         `json:"total"`
	Mode    string      `json:"mode"` // "hybrid" or "lexical"
}

// ConsultRequest is the POST body of /api/v1/consult.
type ConsultRequest struct {
	BookID   string `json:"book_id" binding:"required"`
	Question string `json:"question" binding:"required"`
}

// StatsResponse reports the registry's aggregate counts.
type StatsResponse struct {
	Books    int `json:"books"`
	Entities int `json:"entities"`
	Mentions int `json:"mentions"`
}
