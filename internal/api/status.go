package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bindinc/agentdesk/internal/agentstatus"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/bindinc/agentdesk/internal/workstation"
	"github.com/rs/zerolog"
)

// StatusHandler provides REST endpoints for agent presence
type StatusHandler struct {
	station *workstation.Workstation
	logger  zerolog.Logger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(station *workstation.Workstation, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		station: station,
		logger:  logger.With().Str("component", "status_handler").Logger(),
	}
}

// GetStatus returns the current presence snapshot
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.station.Status.Snapshot())
}

// GetCatalog returns the display metadata per status, so clients render
// labels and colors without hardcoding them.
// GET /api/status/catalog
func (h *StatusHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(types.StatusCatalog)
}

// SetStatus applies a manually chosen presence status
// PUT /api/status
func (h *StatusHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := h.station.SetStatus(req.Status); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, agentstatus.ErrTransientStatus) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.station.Status.Snapshot())
}

// GetSnapshot returns the combined workstation state, same shape as the
// WebSocket push.
// GET /api/snapshot
func (h *StatusHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.station.Snapshot())
}

// GetNotifications returns the retained notification backlog
// GET /api/notifications
func (h *StatusHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	notifications := h.station.Notifications()
	if notifications == nil {
		notifications = []workstation.Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}

// writeError renders an error as a JSON body with the given status
func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
