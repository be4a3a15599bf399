package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/retrievals/pkg/reranker"
	"github.com/soundprediction/retrievals/pkg/server/dto"
	"github.com/soundprediction/retrievals/pkg/telemetry"
)

// RerankHandler handles rerank and score requests
type RerankHandler struct {
	client   reranker.Client
	scores   *telemetry.ScoreWriter // optional
	logger   *slog.Logger
	provider string
	model    string
}

// NewRerankHandler creates a new rerank handler. scores may be nil to
// disable telemetry.
func NewRerankHandler(client reranker.Client, scores *telemetry.ScoreWriter, logger *slog.Logger, provider, model string) *RerankHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RerankHandler{
		client:   client,
		scores:   scores,
		logger:   logger,
		provider: provider,
		model:    model,
	}
}

// Rerank handles POST /api/v1/rerank
func (h *RerankHandler) Rerank(c *gin.Context) {
	var req dto.RerankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	opts := &reranker.RerankOptions{Normalize: req.Normalize}

	start := time.Now()
	result, err := h.client.Rerank(c.Request.Context(), req.Query, req.Documents, opts)
	if err != nil {
		h.logger.Error("rerank failed", "error", err, "documents", len(req.Documents))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "rerank_failed", Message: err.Error()})
		return
	}
	duration := time.Since(start)

	total := len(result.Documents)
	limit := total
	if req.TopK > 0 && req.TopK < limit {
		limit = req.TopK
	}

	results := make([]dto.RankedDocument, limit)
	for i := 0; i < limit; i++ {
		results[i] = dto.RankedDocument{
			Document: result.Documents[i],
			Score:    result.Scores[i],
			Index:    result.Indices[i],
		}
	}

	h.recordScores(req.Query, result, duration)

	c.JSON(http.StatusOK, dto.RerankResponse{Results: results, Total: total})
}

// ComputeScore handles POST /api/v1/score
func (h *RerankHandler) ComputeScore(c *gin.Context) {
	var req dto.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	pairs := make([]reranker.Pair, len(req.Pairs))
	for i, p := range req.Pairs {
		pairs[i] = reranker.Pair{Query: p.Query, Document: p.Document}
	}

	scores, err := h.client.ComputeScore(c.Request.Context(), pairs, &reranker.ScoreOptions{Normalize: req.Normalize})
	if err != nil {
		h.logger.Error("score failed", "error", err, "pairs", len(pairs))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "score_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ScoreResponse{Scores: scores})
}

func (h *RerankHandler) recordScores(query string, result *reranker.Result, duration time.Duration) {
	if h.scores == nil {
		return
	}

	records := make([]telemetry.ScoreRecord, len(result.Documents))
	for rank := range result.Documents {
		// ChunkCounts may be absent on third-party Client implementations.
		chunkCount := 0
		if rank < len(result.ChunkCounts) {
			chunkCount = result.ChunkCounts[rank]
		}
		records[rank] = telemetry.ScoreRecord{
			Provider:      h.provider,
			Model:         h.model,
			Query:         query,
			DocumentIndex: result.Indices[rank],
			Rank:          rank,
			Score:         result.Scores[rank],
			ChunkCount:    chunkCount,
			DurationMs:    duration.Milliseconds(),
		}
	}
	if err := h.scores.Record(records...); err != nil {
		h.logger.Warn("failed to record score telemetry", "error", err)
	}
}
