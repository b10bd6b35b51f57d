package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bindinc/agentdesk/internal/callqueue"
	"github.com/bindinc/agentdesk/internal/directory"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/rs/zerolog"
)

// QueueHandler provides REST endpoints for the call queue
type QueueHandler struct {
	queue     *callqueue.Controller
	directory *directory.Directory
	logger    zerolog.Logger
}

// NewQueueHandler creates a new QueueHandler
func NewQueueHandler(queue *callqueue.Controller, dir *directory.Directory, logger zerolog.Logger) *QueueHandler {
	return &QueueHandler{
		queue:     queue,
		directory: dir,
		logger:    logger.With().Str("component", "queue_handler").Logger(),
	}
}

// GetQueue returns the queue snapshot with live wait times
// GET /api/queue
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.queue.Snapshot())
}

// UpdateSettings toggles queue mode and auto-advance. Omitted fields keep
// their current value.
// PUT /api/queue/settings
func (h *QueueHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled     *bool `json:"enabled"`
		AutoAdvance *bool `json:"autoAdvance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if req.Enabled != nil {
		h.queue.SetEnabled(*req.Enabled)
	}
	if req.AutoAdvance != nil {
		h.queue.SetAutoAdvance(*req.AutoAdvance)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.queue.Snapshot())
}

// Enqueue appends a waiting caller, as reported by the telephony platform.
// Callers offered while the queue is disabled are rejected.
// POST /api/queue/enqueue
func (h *QueueHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServiceNumber string  `json:"serviceNumber"`
		CustomerID    int     `json:"customerId"`
		CustomerName  string  `json:"customerName"`
		WaitTime      float64 `json:"waitTime"`
		Priority      int     `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.ServiceNumber == "" {
		http.Error(w, `{"error":"serviceNumber is required"}`, http.StatusBadRequest)
		return
	}

	entry := types.QueueEntry{
		CallerKind:    types.CallerKindAnonymous,
		ServiceNumber: req.ServiceNumber,
		BaseWaitTime:  req.WaitTime,
		Priority:      req.Priority,
	}
	if req.CustomerID > 0 {
		entry.CallerKind = types.CallerKindKnown
		entry.CustomerID = req.CustomerID
		entry.CustomerName = req.CustomerName
	}

	queued := h.queue.Enqueue(entry)
	if queued == nil {
		writeError(w, http.StatusConflict, errors.New("queue is disabled"))
		return
	}

	h.logger.Info().
		Str("entry_id", queued.ID).
		Str("service_number", queued.ServiceNumber).
		Msg("caller enqueued")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(queued)
}

// PullNext promotes the next waiting caller into a call session
// POST /api/queue/next
func (h *QueueHandler) PullNext(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.PullNext(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.queue.Snapshot())
}

// Generate fills the queue with synthetic callers for demos and testing
// POST /api/queue/generate
func (h *QueueHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size int    `json:"size"`
		Mix  string `json:"mix"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	snap := h.queue.DebugGenerate(req.Size, req.Mix, h.directory.Customers())

	h.logger.Info().
		Int("size", len(snap.Entries)).
		Str("mix", req.Mix).
		Msg("queue generated")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// Clear wipes all waiting callers
// POST /api/queue/clear
func (h *QueueHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cleared := h.queue.Clear()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"cleared": cleared})
}
