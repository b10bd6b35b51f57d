package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bindinc/agentdesk/internal/directory"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CustomerHandler provides REST endpoints for the customer directory
type CustomerHandler struct {
	directory *directory.Directory
	logger    zerolog.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(dir *directory.Directory, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{
		directory: dir,
		logger:    logger.With().Str("component", "customer_handler").Logger(),
	}
}

// ListCustomers returns all customers in the directory
// GET /api/customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers := h.directory.Customers()
	if customers == nil {
		customers = []types.Customer{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customers)
}

// GetCustomer returns a single customer by id
// GET /api/customers/{customerId}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "customerId"))
	if err != nil || id <= 0 {
		http.Error(w, `{"error":"invalid customer id"}`, http.StatusBadRequest)
		return
	}

	customer, err := h.directory.LookupCustomer(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customer)
}

// GetHistory returns the contact moments recorded for a customer
// GET /api/customers/{customerId}/history
func (h *CustomerHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "customerId"))
	if err != nil || id <= 0 {
		http.Error(w, `{"error":"invalid customer id"}`, http.StatusBadRequest)
		return
	}

	history := h.directory.History(id)
	if history == nil {
		history = []types.ContactMoment{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}
