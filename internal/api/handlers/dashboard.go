// Package handlers holds the read-only HTTP handlers over the pipeline's
// persisted outputs.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/jayliu/stratwatch/internal/contracts"
	"github.com/jayliu/stratwatch/internal/snapshot"
	"github.com/jayliu/stratwatch/pkg/logger"
)

// DashboardHandler serves the dashboard projection and its parts.
type DashboardHandler struct {
	builder      *snapshot.Builder
	scoreRepo    contracts.ScoreRepository
	behaviorRepo contracts.BehaviorRepository
	alertRepo    contracts.AlertRepository
	logger       *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(
	builder *snapshot.Builder,
	scoreRepo contracts.ScoreRepository,
	behaviorRepo contracts.BehaviorRepository,
	alertRepo contracts.AlertRepository,
	log *logger.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		builder:      builder,
		scoreRepo:    scoreRepo,
		behaviorRepo: behaviorRepo,
		alertRepo:    alertRepo,
		logger:       log.WithComponent("api"),
	}
}

// GetDashboard returns the full dashboard snapshot document.
// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	doc, err := h.builder.Get(r.Context())
	if err != nil {
		h.fail(w, err, "build dashboard snapshot")
		return
	}
	h.writeJSON(w, doc)
}

// GetScores returns the latest cohort scores with ranks.
// GET /api/scores
func (h *DashboardHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.scoreRepo.GetLatestScores(r.Context())
	if err != nil {
		h.fail(w, err, "load scores")
		return
	}
	h.writeJSON(w, scores)
}

// GetBehavior returns one strategy's latest behavior summary.
// GET /api/behavior/{code}
func (h *DashboardHandler) GetBehavior(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	summary, err := h.behaviorRepo.GetSummary(r.Context(), code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "no behavior summary for "+code)
			return
		}
		h.fail(w, err, "load behavior summary")
		return
	}
	h.writeJSON(w, summary)
}

// GetAlerts returns one strategy's recent threshold alerts.
// GET /api/alerts/{code}?days=30
func (h *DashboardHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}

	from := time.Now().AddDate(0, 0, -days)
	alerts, err := h.alertRepo.GetAlerts(r.Context(), code, from)
	if err != nil {
		h.fail(w, err, "load alerts")
		return
	}
	h.writeJSON(w, alerts)
}

func (h *DashboardHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *DashboardHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *DashboardHandler) fail(w http.ResponseWriter, err error, msg string) {
	h.logger.WithError(err).Error("Request failed: " + msg)
	h.writeError(w, http.StatusInternalServerError, msg+" failed")
}
