package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/equitylens/equitylens/internal/contracts"
	"github.com/equitylens/equitylens/internal/snapshot"
	"github.com/equitylens/equitylens/pkg/logger"
)

// ScoringService is the service surface the handlers need.
type ScoringService interface {
	Score(ctx context.Context, ticker string, includeOpportunity bool) (contracts.ScorePayload, error)
	Opportunity(ctx context.Context, ticker string) ([]contracts.OpportunityPoint, error)
	Diagnostics(ctx context.Context, ticker string) (contracts.BundleDiagnostic, error)
	History(ctx context.Context, ticker string, limit int) ([]snapshot.Record, error)
	Scores(ctx context.Context, limit int) ([]snapshot.Record, error)
}

// ScoreHandler handles scoring API endpoints.
type ScoreHandler struct {
	service ScoringService
	logger  *logger.Logger
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(service ScoringService, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		service: service,
		logger:  log,
	}
}

// GetScore returns the score payload for a ticker.
// GET /api/score/{ticker}?opportunity=true
func (h *ScoreHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]

	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	includeOpportunity := r.URL.Query().Get("opportunity") == "true"

	payload, err := h.service.Score(ctx, ticker, includeOpportunity)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to score ticker")
		respondError(w, http.StatusBadGateway, "Failed to score ticker")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    payload,
	})
}

// GetOpportunity returns only the opportunity series for a ticker.
// GET /api/score/{ticker}/opportunity
func (h *ScoreHandler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]

	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	series, err := h.service.Opportunity(ctx, ticker)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to build opportunity series")
		respondError(w, http.StatusBadGateway, "Failed to build opportunity series")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    series,
	})
}

// GetDiagnostics returns the normalized bundle with provenance tags.
// GET /api/score/{ticker}/diag
func (h *ScoreHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]

	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	diag, err := h.service.Diagnostics(ctx, ticker)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to build diagnostics")
		respondError(w, http.StatusBadGateway, "Failed to build diagnostics")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    diag,
	})
}

// GetHistory returns persisted score snapshots for a ticker.
// GET /api/score/{ticker}/history?limit=30
func (h *ScoreHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]

	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	records, err := h.service.History(ctx, ticker, queryLimit(r, 30))
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to get score history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve score history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    records,
	})
}

// GetScores returns the newest persisted snapshot per ticker.
// GET /api/scores?limit=100
func (h *ScoreHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.service.Scores(ctx, queryLimit(r, 100))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list scores")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve scores")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    records,
	})
}

func queryLimit(r *http.Request, def int) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
