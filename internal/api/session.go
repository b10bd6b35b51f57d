package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bindinc/agentdesk/internal/callsession"
	"github.com/bindinc/agentdesk/internal/directory"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/bindinc/agentdesk/internal/workstation"
	"github.com/rs/zerolog"
)

// SessionHandler provides REST endpoints for the active call session
type SessionHandler struct {
	station *workstation.Workstation
	logger  zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(station *workstation.Workstation, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		station: station,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// sessionView is the session payload with the running duration resolved
type sessionView struct {
	Session types.CallSession      `json:"session"`
	Elapsed float64                `json:"elapsed"`
	Last    *types.LastCallSession `json:"lastCallSession,omitempty"`
}

// GetSession returns the active session and the last finished one
// GET /api/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view := sessionView{
		Session: h.station.Session.Session(),
		Elapsed: h.station.Session.Elapsed(),
	}
	if last := h.station.Session.LastSession(); last != nil {
		view.Last = last
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// StartCall starts a new call session
// POST /api/session/start
func (h *SessionHandler) StartCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServiceNumber string  `json:"serviceNumber"`
		WaitTime      float64 `json:"waitTime"`
		CustomerID    int     `json:"customerId"`
		CustomerName  string  `json:"customerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	err := h.station.Start(callsession.StartOptions{
		ServiceNumber: req.ServiceNumber,
		WaitTime:      req.WaitTime,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, callsession.ErrSessionActive) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.station.Session.Session())
}

// IdentifyCaller links the active call to a known customer
// POST /api/session/identify
func (h *SessionHandler) IdentifyCaller(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID int `json:"customerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.CustomerID <= 0 {
		http.Error(w, `{"error":"customerId is required"}`, http.StatusBadRequest)
		return
	}

	if err := h.station.IdentifyCaller(r.Context(), req.CustomerID); err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, callsession.ErrOperationInFlight):
			status = http.StatusConflict
		case errors.Is(err, directory.ErrNotFound):
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.station.Session.Session())
}

// ConfirmRecordingConsent records the caller's consent to being recorded,
// activating the recording indicator.
// POST /api/session/recording-consent
func (h *SessionHandler) ConfirmRecordingConsent(w http.ResponseWriter, r *http.Request) {
	h.station.Session.ConfirmRecordingConsent()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.station.Session.Session())
}

// ToggleHold flips the hold state of the active call
// POST /api/session/hold
func (h *SessionHandler) ToggleHold(w http.ResponseWriter, r *http.Request) {
	if err := h.station.ToggleHold(r.Context()); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, callsession.ErrOperationInFlight) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.station.Session.Session())
}

// EndCall ends the active call. The forced flag marks a caller-initiated
// disconnect.
// POST /api/session/end
func (h *SessionHandler) EndCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ForcedByCustomer bool `json:"forcedByCustomer"`
	}
	// Body is optional; an empty body means a normal agent-initiated end
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.station.EndCall(r.Context(), req.ForcedByCustomer); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, callsession.ErrOperationInFlight) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	view := sessionView{
		Session: h.station.Session.Session(),
		Elapsed: 0,
	}
	if last := h.station.Session.LastSession(); last != nil {
		view.Last = last
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}
