package disposition

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bindinc/agentdesk/internal/types"
	"github.com/rs/zerolog"
)

var (
	// ErrNotInACW is returned when the disposition form is opened outside
	// after-call work
	ErrNotInACW = errors.New("disposition only available during after-call work")
	// ErrNoLastSession is returned when no finished call is available
	ErrNoLastSession = errors.New("no finished call session to disposition")
	// ErrUnknownCategory rejects a category outside the closed taxonomy
	ErrUnknownCategory = errors.New("unknown disposition category")
	// ErrOutcomeNotInCategory rejects an outcome outside the selected
	// category's fixed list
	ErrOutcomeNotInCategory = errors.New("outcome not in selected category")
	// ErrNoCategorySelected is returned when an outcome is chosen first
	ErrNoCategorySelected = errors.New("select a category before an outcome")
	// ErrIncomplete rejects a commit without both category and outcome
	ErrIncomplete = errors.New("disposition requires category and outcome")
)

// SessionReader exposes the snapshot of the call being dispositioned
type SessionReader interface {
	LastSession() *types.LastCallSession
}

// StatusResolver is the slice of the agent status controller the workflow
// uses to end after-call work.
type StatusResolver interface {
	Current() types.AgentStatus
	ResolveACW() bool
}

// ContactLog records contact-history entries on a customer
type ContactLog interface {
	AddContactMoment(customerID int, momentType types.ContactMomentType, description string)
}

// Notifier surfaces user-visible signals
type Notifier interface {
	Notify(message string, severity types.Severity)
}

// Form is the current state of the disposition capture
type Form struct {
	Open             bool                      `json:"open"`
	Category         types.DispositionCategory `json:"category,omitempty"`
	Outcome          string                    `json:"outcome,omitempty"`
	Notes            string                    `json:"notes,omitempty"`
	FollowUpRequired bool                      `json:"followUpRequired"`
	FollowUpDate     string                    `json:"followUpDate,omitempty"`
	FollowUpNotes    string                    `json:"followUpNotes,omitempty"`
}

// Workflow forces a categorized outcome to be captured before the agent
// leaves after-call work.
type Workflow struct {
	mu   sync.Mutex
	form Form

	sessions SessionReader
	status   StatusResolver
	contacts ContactLog
	notifier Notifier
	history  HistorySource
	logger   zerolog.Logger

	onCommitted func(record types.DispositionRecord, last types.LastCallSession)
}

// NewWorkflow creates a disposition workflow
func NewWorkflow(
	sessions SessionReader,
	status StatusResolver,
	contacts ContactLog,
	notifier Notifier,
	history HistorySource,
	logger zerolog.Logger,
) *Workflow {
	return &Workflow{
		sessions: sessions,
		status:   status,
		contacts: contacts,
		notifier: notifier,
		history:  history,
		logger:   logger.With().Str("component", "disposition").Logger(),
	}
}

// SetOnCommitted registers a hook invoked after every committed disposition
func (w *Workflow) SetOnCommitted(fn func(record types.DispositionRecord, last types.LastCallSession)) {
	w.mu.Lock()
	w.onCommitted = fn
	w.mu.Unlock()
}

// Open starts disposition capture. Only available while the agent is in
// after-call work with a finished call to describe. The form is prefilled
// from the contact moments recorded during the call.
func (w *Workflow) Open() (Form, error) {
	if w.status.Current() != types.StatusACW {
		return Form{}, ErrNotInACW
	}
	last := w.sessions.LastSession()
	if last == nil {
		return Form{}, ErrNoLastSession
	}

	suggestion := w.Suggest(last)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.form = Form{
		Open:     true,
		Category: suggestion.Category,
		Outcome:  suggestion.Outcome,
		Notes:    suggestion.Notes,
	}
	return w.form, nil
}

// SelectCategory picks a category and clears any outcome from a previous
// category.
func (w *Workflow) SelectCategory(code types.DispositionCategory) error {
	if _, ok := FindCategory(code); !ok {
		return ErrUnknownCategory
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.form.Category != code {
		w.form.Outcome = ""
	}
	w.form.Category = code
	return nil
}

// SelectOutcome picks an outcome from the selected category's fixed list
func (w *Workflow) SelectOutcome(code string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.form.Category == "" {
		return ErrNoCategorySelected
	}
	if !OutcomeAllowed(w.form.Category, code) {
		return ErrOutcomeNotInCategory
	}
	w.form.Outcome = code
	return nil
}

// SetNotes attaches free-form notes
func (w *Workflow) SetNotes(notes string) {
	w.mu.Lock()
	w.form.Notes = notes
	w.mu.Unlock()
}

// SetFollowUp captures an optional follow-up appointment
func (w *Workflow) SetFollowUp(required bool, date, notes string) {
	w.mu.Lock()
	w.form.FollowUpRequired = required
	w.form.FollowUpDate = date
	w.form.FollowUpNotes = notes
	w.mu.Unlock()
}

// Form returns the current form state
func (w *Workflow) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// Commit records the disposition and resolves after-call work. Committing
// without both selections fails and leaves the agent in acw. A commit after
// the ACW countdown already resolved is a no-op: the returned record is nil
// and nothing is written.
func (w *Workflow) Commit() (*types.DispositionRecord, error) {
	if w.status.Current() != types.StatusACW {
		w.logger.Debug().Msg("late disposition commit ignored, acw already resolved")
		return nil, nil
	}

	w.mu.Lock()
	form := w.form
	w.mu.Unlock()

	if form.Category == "" || form.Outcome == "" {
		return nil, ErrIncomplete
	}
	if !OutcomeAllowed(form.Category, form.Outcome) {
		return nil, ErrOutcomeNotInCategory
	}

	last := w.sessions.LastSession()
	if last == nil {
		return nil, ErrNoLastSession
	}

	// The countdown can fire between the entry check and here. Whoever
	// resolves acw wins; the loser writes nothing.
	if !w.status.ResolveACW() {
		w.logger.Debug().Msg("late disposition commit ignored, acw already resolved")
		return nil, nil
	}

	record := types.DispositionRecord{
		Category:         form.Category,
		Outcome:          form.Outcome,
		Notes:            form.Notes,
		FollowUpRequired: form.FollowUpRequired,
		FollowUpDate:     form.FollowUpDate,
		FollowUpNotes:    form.FollowUpNotes,
		CallDuration:     last.CallDuration,
		Timestamp:        time.Now(),
	}

	// Anonymous calls record no customer-scoped history
	if last.CustomerID != 0 {
		category, _ := FindCategory(form.Category)
		description := fmt.Sprintf("%s: %s", category.Label, OutcomeLabel(form.Category, form.Outcome))
		if form.Notes != "" {
			description += " - " + form.Notes
		}
		w.contacts.AddContactMoment(last.CustomerID, types.MomentCallDisposition, description)

		if form.FollowUpRequired && form.FollowUpDate != "" {
			followUpNotes := form.FollowUpNotes
			if followUpNotes == "" {
				followUpNotes = "Geen notities"
			}
			w.contacts.AddContactMoment(last.CustomerID, types.MomentFollowUpScheduled,
				fmt.Sprintf("Follow-up gepland voor %s: %s", form.FollowUpDate, followUpNotes))
		}
	}

	w.mu.Lock()
	w.form = Form{}
	onCommitted := w.onCommitted
	w.mu.Unlock()

	w.notifier.Notify("Gesprek succesvol afgerond", types.SeveritySuccess)
	w.logger.Info().
		Str("category", string(record.Category)).
		Str("outcome", record.Outcome).
		Msg("disposition committed")

	if onCommitted != nil {
		onCommitted(record, *last)
	}
	return &record, nil
}
