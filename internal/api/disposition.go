package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bindinc/agentdesk/internal/disposition"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/rs/zerolog"
)

// DispositionHandler provides REST endpoints for the after-call
// disposition workflow
type DispositionHandler struct {
	workflow *disposition.Workflow
	logger   zerolog.Logger
}

// NewDispositionHandler creates a new DispositionHandler
func NewDispositionHandler(workflow *disposition.Workflow, logger zerolog.Logger) *DispositionHandler {
	return &DispositionHandler{
		workflow: workflow,
		logger:   logger.With().Str("component", "disposition_handler").Logger(),
	}
}

// GetCategories returns the fixed disposition taxonomy
// GET /api/disposition/categories
func (h *DispositionHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(disposition.Categories())
}

// GetForm returns the current disposition form state
// GET /api/disposition
func (h *DispositionHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.workflow.Form())
}

// Open starts disposition capture, prefilled from the contact moments
// recorded during the call
// POST /api/disposition/open
func (h *DispositionHandler) Open(w http.ResponseWriter, r *http.Request) {
	form, err := h.workflow.Open()
	if err != nil {
		writeError(w, dispositionStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(form)
}

// SelectCategory picks a disposition category
// PUT /api/disposition/category
func (h *DispositionHandler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := h.workflow.SelectCategory(types.DispositionCategory(req.Category)); err != nil {
		writeError(w, dispositionStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.workflow.Form())
}

// SelectOutcome picks an outcome within the selected category
// PUT /api/disposition/outcome
func (h *DispositionHandler) SelectOutcome(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := h.workflow.SelectOutcome(req.Outcome); err != nil {
		writeError(w, dispositionStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.workflow.Form())
}

// SetNotes updates the free-text notes on the form
// PUT /api/disposition/notes
func (h *DispositionHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	h.workflow.SetNotes(req.Notes)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.workflow.Form())
}

// SetFollowUp updates the follow-up fields on the form
// PUT /api/disposition/follow-up
func (h *DispositionHandler) SetFollowUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Required bool   `json:"required"`
		Date     string `json:"date"`
		Notes    string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	h.workflow.SetFollowUp(req.Required, req.Date, req.Notes)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.workflow.Form())
}

// Commit finalizes the disposition and ends after-call work
// POST /api/disposition/commit
func (h *DispositionHandler) Commit(w http.ResponseWriter, r *http.Request) {
	record, err := h.workflow.Commit()
	if err != nil {
		writeError(w, dispositionStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if record == nil {
		// ACW already resolved, nothing was written
		json.NewEncoder(w).Encode(map[string]bool{"committed": false})
		return
	}
	json.NewEncoder(w).Encode(record)
}

// dispositionStatus maps workflow errors onto HTTP statuses
func dispositionStatus(err error) int {
	switch {
	case errors.Is(err, disposition.ErrNotInACW),
		errors.Is(err, disposition.ErrNoLastSession):
		return http.StatusConflict
	case errors.Is(err, disposition.ErrUnknownCategory),
		errors.Is(err, disposition.ErrOutcomeNotInCategory),
		errors.Is(err, disposition.ErrNoCategorySelected),
		errors.Is(err, disposition.ErrIncomplete):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
