package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bindinc/agentdesk/internal/auth"
	"github.com/bindinc/agentdesk/internal/storage"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/bindinc/agentdesk/internal/workstation"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AdminHandler serves reporting data and destructive maintenance endpoints
type AdminHandler struct {
	station *workstation.Workstation
	store   storage.Store
	logger  zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(station *workstation.Workstation, store storage.Store, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		station: station,
		store:   store,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// RequireAdmin middleware — only admin role allowed
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || !auth.HasRole(claims, "admin") {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSupervisorOrAdmin middleware — supervisor or admin role allowed
func RequireSupervisorOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || (claims.Role != "admin" && claims.Role != "supervisor") {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"supervisor or admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetCallRecords returns call records for a date, optionally filtered by
// service number
// GET /api/reports/calls?date=YYYY-MM-DD&service=AVROBODE
func (h *AdminHandler) GetCallRecords(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, `{"error":"date query parameter is required (YYYY-MM-DD)"}`, http.StatusBadRequest)
		return
	}

	var records []types.CallRecord
	var err error
	if service := r.URL.Query().Get("service"); service != "" {
		records, err = h.store.GetCallRecordsByService(date, service)
	} else {
		records, err = h.store.GetCallRecords(date)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to get call records")
		http.Error(w, `{"error":"failed to retrieve call records"}`, http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []types.CallRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// GetAgentHistory returns persisted daily stats for an agent
// GET /api/reports/agents/{agentId}/history
func (h *AdminHandler) GetAgentHistory(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if agentID == "" {
		http.Error(w, `{"error":"agentId is required"}`, http.StatusBadRequest)
		return
	}

	stats, err := h.store.GetAgentDailyStats(agentID)
	if err != nil {
		h.logger.Error().Err(err).Str("agent_id", agentID).Msg("failed to get agent daily stats")
		http.Error(w, `{"error":"failed to retrieve history"}`, http.StatusInternalServerError)
		return
	}

	if stats == nil {
		stats = []types.AgentDailyStats{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GetTodayStats returns the in-memory rollup for the current date
// GET /api/reports/today
func (h *AdminHandler) GetTodayStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.station.DailyStats())
}

// WipeStore truncates all DynamoDB tables
// POST /internal/wipe
func (h *AdminHandler) WipeStore(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TruncateAll(); err != nil {
		h.logger.Error().Err(err).Msg("failed to truncate DynamoDB tables")
		http.Error(w, fmt.Sprintf(`{"error":"failed to truncate: %s"}`, err), http.StatusInternalServerError)
		return
	}

	h.logger.Info().Msg("DynamoDB tables truncated")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "DynamoDB tables truncated",
	})
}
