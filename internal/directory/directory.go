package directory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bindinc/agentdesk/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a customer id is unknown
var ErrNotFound = errors.New("customer not found")

// Directory is the in-process customer collaborator: a narrow lookup plus
// the per-customer contact-history log. The full customer subsystem lives
// elsewhere; the workstation only needs these two capabilities.
type Directory struct {
	mu        sync.RWMutex
	customers map[int]types.Customer
	history   map[int][]types.ContactMoment
	logger    zerolog.Logger
}

// New creates an empty directory
func New(logger zerolog.Logger) *Directory {
	return &Directory{
		customers: make(map[int]types.Customer),
		history:   make(map[int][]types.ContactMoment),
		logger:    logger.With().Str("component", "directory").Logger(),
	}
}

// Seed loads an initial customer set
func (d *Directory) Seed(customers []types.Customer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range customers {
		d.customers[c.ID] = c
	}
}

// LookupCustomer resolves a customer by id
func (d *Directory) LookupCustomer(_ context.Context, id int) (types.Customer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	customer, ok := d.customers[id]
	if !ok {
		return types.Customer{}, ErrNotFound
	}
	return customer, nil
}

// AddContactMoment appends a contact-history entry for a customer. Unknown
// customers are ignored, matching the forgiving behavior of the customer
// subsystem.
func (d *Directory) AddContactMoment(customerID int, momentType types.ContactMomentType, description string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.customers[customerID]; !ok {
		d.logger.Debug().Int("customer_id", customerID).Msg("contact moment for unknown customer dropped")
		return
	}

	moment := types.ContactMoment{
		ID:          uuid.New().String(),
		CustomerID:  customerID,
		Type:        momentType,
		Description: description,
		Timestamp:   time.Now(),
	}
	d.history[customerID] = append(d.history[customerID], moment)

	d.logger.Debug().
		Int("customer_id", customerID).
		Str("type", string(momentType)).
		Msg("contact moment recorded")
}

// History returns all contact moments for a customer, oldest first
func (d *Directory) History(customerID int) []types.ContactMoment {
	d.mu.RLock()
	defer d.mu.RUnlock()

	moments := d.history[customerID]
	out := make([]types.ContactMoment, len(moments))
	copy(out, moments)
	return out
}

// HistorySince returns the contact moments recorded at or after the cutoff
func (d *Directory) HistorySince(customerID int, cutoff time.Time) []types.ContactMoment {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []types.ContactMoment
	for _, m := range d.history[customerID] {
		if !m.Timestamp.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

// Customers returns all known customers
func (d *Directory) Customers() []types.Customer {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]types.Customer, 0, len(d.customers))
	for _, c := range d.customers {
		out = append(out, c)
	}
	return out
}

// Count returns the number of known customers
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.customers)
}
