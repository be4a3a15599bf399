package dto

import (
	"errors"
	"strings"
)

// MaxDocuments bounds a single rerank request.
const MaxDocuments = 1000

// RerankRequest is the body for POST /api/v1/rerank
type RerankRequest struct {
	Query     string   `json:"query" binding:"required"`
	Documents []string `json:"documents" binding:"required"`
	TopK      int      `json:"top_k,omitempty"`
	Normalize bool     `json:"normalize,omitempty"`
}

// Validate performs validation on RerankRequest
func (r *RerankRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query cannot be empty")
	}
	if len(r.Documents) == 0 {
		return errors.New("documents cannot be empty")
	}
	if len(r.Documents) > MaxDocuments {
		return errors.New("too many documents")
	}
	if r.TopK < 0 {
		return errors.New("top_k cannot be negative")
	}
	return nil
}

// RankedDocument is one entry of a rerank response, in descending score
// order
type RankedDocument struct {
	Document string  `json:"document"`
	Score    float64 `json:"score"`
	Index    int     `json:"index"`
}

// RerankResponse is the response for POST /api/v1/rerank
type RerankResponse struct {
	Results []RankedDocument `json:"results"`
	Total   int              `json:"total"`
}

// ScorePair is one query-document pair to score
type ScorePair struct {
	Query    string `json:"query" binding:"required"`
	Document string `json:"document" binding:"required"`
}

// ScoreRequest is the body for POST /api/v1/score
type ScoreRequest struct {
	Pairs     []ScorePair `json:"pairs" binding:"required"`
	Normalize bool        `json:"normalize,omitempty"`
}

// Validate performs validation on ScoreRequest
func (r *ScoreRequest) Validate() error {
	if len(r.Pairs) == 0 {
		return errors.New("pairs cannot be empty")
	}
	if len(r.Pairs) > MaxDocuments {
		return errors.New("too many pairs")
	}
	for _, p := range r.Pairs {
		if strings.TrimSpace(p.Query) == "" {
			return errors.New("pair query cannot be empty")
		}
	}
	return nil
}

// ScoreResponse is the response for POST /api/v1/score
type ScoreResponse struct {
	Scores []float64 `json:"scores"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
