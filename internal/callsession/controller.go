package callsession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bindinc/agentdesk/internal/agentstatus"
	"github.com/bindinc/agentdesk/internal/directory"
	"github.com/bindinc/agentdesk/internal/scheduler"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrSessionActive is returned when a call start races an active session
	ErrSessionActive = errors.New("a call session is already active")
	// ErrOperationInFlight is returned when a session operation is rejected
	// because another operation has not completed its round trip yet
	ErrOperationInFlight = errors.New("session operation already in flight")
)

// CustomerLookup resolves callers against the customer subsystem
type CustomerLookup interface {
	LookupCustomer(ctx context.Context, id int) (types.Customer, error)
}

// ContactLog records contact-history entries on a customer
type ContactLog interface {
	AddContactMoment(customerID int, momentType types.ContactMomentType, description string)
}

// Notifier surfaces user-visible signals; the controller never renders UI
type Notifier interface {
	Notify(message string, severity types.Severity)
}

// RecordingConfig controls the call-recording indicator. With
// RequireConsent set, recording waits for ConfirmRecordingConsent instead
// of starting with the call.
type RecordingConfig struct {
	Enabled        bool
	RequireConsent bool
	AutoStart      bool
}

// StartOptions seeds a new call session
type StartOptions struct {
	ServiceNumber string
	WaitTime      float64 // seconds waited in queue before answer
	CustomerID    int     // non-zero when the caller is already known
	CustomerName  string
}

// Controller owns the lifecycle of the single active call, local-first with
// best-effort backend reconciliation.
type Controller struct {
	mu       sync.Mutex
	session  types.CallSession
	last     *types.LastCallSession
	callID   string
	elapsed  float64 // presentation-only running duration, seconds
	inflight string  // name of the operation holding the single-flight slot

	durationHandle scheduler.Handle

	backend   Backend
	customers CustomerLookup
	contacts  ContactLog
	notifier  Notifier
	status    *agentstatus.Controller
	recording RecordingConfig
	sched     scheduler.Scheduler
	logger    zerolog.Logger

	onEnded func(forcedByCustomer bool) // invoked after a call fully ends
}

// NewController creates a call session controller
func NewController(
	backend Backend,
	customers CustomerLookup,
	contacts ContactLog,
	notifier Notifier,
	status *agentstatus.Controller,
	recording RecordingConfig,
	sched scheduler.Scheduler,
	logger zerolog.Logger,
) *Controller {
	return &Controller{
		session:   types.NewCallSession(),
		backend:   backend,
		customers: customers,
		contacts:  contacts,
		notifier:  notifier,
		status:    status,
		recording: recording,
		sched:     sched,
		logger:    logger.With().Str("component", "call_session").Logger(),
	}
}

// SetOnEnded registers the hook invoked after every completed call end
func (c *Controller) SetOnEnded(fn func(forcedByCustomer bool)) {
	c.mu.Lock()
	c.onEnded = fn
	c.mu.Unlock()
}

// Start answers a call. Fails with ErrSessionActive when a session is
// already active, leaving that session untouched.
func (c *Controller) Start(opts StartOptions) error {
	c.mu.Lock()
	if c.session.Active {
		c.mu.Unlock()
		return ErrSessionActive
	}

	now := time.Now()
	session := types.NewCallSession()
	session.Active = true
	session.ServiceNumber = opts.ServiceNumber
	session.WaitTime = opts.WaitTime
	session.StartTime = &now
	if opts.CustomerID != 0 {
		session.CallerType = types.CallerIdentified
		session.CustomerID = opts.CustomerID
		session.CustomerName = opts.CustomerName
	}
	if c.recording.Enabled && c.recording.AutoStart && !c.recording.RequireConsent {
		session.RecordingActive = true
	}

	c.session = session
	c.last = nil
	c.callID = uuid.New().String()
	c.elapsed = 0
	c.durationHandle = c.sched.Every(1*time.Second, c.tickDuration)
	c.mu.Unlock()

	c.status.AutoSet(agentstatus.EventCallStarted)

	c.logger.Info().
		Str("service_number", opts.ServiceNumber).
		Float64("wait_time", opts.WaitTime).
		Bool("identified", opts.CustomerID != 0).
		Msg("call session started")
	return nil
}

// ConfirmRecordingConsent activates recording after the caller agreed to
// it. Safe no-op when no call is active, recording is disabled, or the
// recording already runs.
func (c *Controller) ConfirmRecordingConsent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.session.Active || !c.recording.Enabled || c.session.RecordingActive {
		return
	}
	c.session.RecordingActive = true
	c.logger.Info().Msg("recording started after caller consent")
}

// tickDuration refreshes the displayed call duration once per second. It
// only reads clock and start time; correctness never depends on it.
func (c *Controller) tickDuration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.session.Active || c.session.StartTime == nil {
		return
	}
	c.elapsed = time.Since(*c.session.StartTime).Seconds()
}

// Identify links the anonymous caller to a customer. Safe no-op when no
// session is active or the caller was already identified; a failed lookup
// or backend sync leaves the session anonymous.
func (c *Controller) Identify(ctx context.Context, customerID int) error {
	c.mu.Lock()
	if !c.session.Active || c.session.CallerType != types.CallerAnonymous {
		c.mu.Unlock()
		return nil
	}
	if c.inflight != "" {
		c.mu.Unlock()
		return ErrOperationInFlight
	}
	c.inflight = "identify"
	serviceNumber := c.session.ServiceNumber
	c.mu.Unlock()
	defer c.clearInflight()

	customer, err := c.customers.LookupCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			c.notifier.Notify("Klant niet gevonden", types.SeverityWarning)
			return err
		}
		return err
	}

	server, err := c.backend.IdentifyCaller(ctx, customerID)
	if err != nil {
		syncErr := &SyncError{Op: "identify-caller", Err: err}
		c.logger.Warn().Err(err).Int("customer_id", customerID).Msg("identification sync failed")
		c.notifier.Notify("Identificatie via backend mislukt", types.SeverityError)
		return syncErr
	}

	c.mu.Lock()
	if server != nil {
		c.session = *server
	} else {
		c.session.CallerType = types.CallerIdentified
		c.session.CustomerID = customerID
		c.session.CustomerName = customer.DisplayName()
	}
	if c.session.CustomerName == "" {
		c.session.CustomerName = customer.DisplayName()
	}
	name := c.session.CustomerName
	c.mu.Unlock()

	if !c.backend.Authoritative() {
		c.contacts.AddContactMoment(customerID, types.MomentCallIdentified,
			fmt.Sprintf("Beller geïdentificeerd tijdens %s call", serviceNumber))
	}

	c.notifier.Notify(fmt.Sprintf("Beller geïdentificeerd als %s", name), types.SeveritySuccess)
	c.logger.Info().Int("customer_id", customerID).Msg("caller identified")
	return nil
}

// ToggleHold flips the hold state. On resume the elapsed hold time is added
// to the session's total.
func (c *Controller) ToggleHold(ctx context.Context) error {
	c.mu.Lock()
	if !c.session.Active {
		c.mu.Unlock()
		return nil
	}
	if c.inflight != "" {
		c.mu.Unlock()
		return ErrOperationInFlight
	}
	c.inflight = "hold"
	willHold := !c.session.OnHold
	previousHoldStart := c.session.HoldStartTime
	customerID := c.session.CustomerID
	c.mu.Unlock()
	defer c.clearInflight()

	server, err := c.backend.SetHold(ctx, willHold)
	if err != nil {
		syncErr := &SyncError{Op: "hold", Err: err}
		c.logger.Warn().Err(err).Bool("hold", willHold).Msg("hold sync failed")
		c.notifier.Notify("Call hold/resume via backend mislukt", types.SeverityError)
		return syncErr
	}

	var holdDuration float64
	c.mu.Lock()
	if server != nil {
		c.session = *server
	} else if willHold {
		now := time.Now()
		c.session.OnHold = true
		c.session.HoldStartTime = &now
	} else {
		if previousHoldStart != nil {
			holdDuration = time.Since(*previousHoldStart).Seconds()
			c.session.TotalHoldTime += holdDuration
		}
		c.session.OnHold = false
		c.session.HoldStartTime = nil
	}
	c.mu.Unlock()

	if willHold {
		if customerID != 0 {
			c.contacts.AddContactMoment(customerID, types.MomentCallHold, "Gesprek in wacht gezet")
		}
		c.notifier.Notify("Gesprek in wacht gezet", types.SeverityInfo)
	} else {
		if customerID != 0 {
			c.contacts.AddContactMoment(customerID, types.MomentCallResumed,
				fmt.Sprintf("Gesprek hervat na %s wachttijd", formatSeconds(holdDuration)))
		}
		c.notifier.Notify(fmt.Sprintf("Gesprek hervat (wacht: %s)", formatSeconds(holdDuration)), types.SeveritySuccess)
	}
	return nil
}

// End tears down the active session. The call always ends from the agent's
// point of view: a failed backend reconciliation degrades to the local
// computation instead of aborting. Ending an inactive session is a no-op.
func (c *Controller) End(ctx context.Context, forcedByCustomer bool) error {
	c.mu.Lock()
	if !c.session.Active {
		c.mu.Unlock()
		return nil
	}
	if c.inflight != "" {
		c.mu.Unlock()
		return ErrOperationInFlight
	}
	c.inflight = "end"

	now := time.Now()
	var callDuration float64
	if c.session.StartTime != nil {
		callDuration = now.Sub(*c.session.StartTime).Seconds()
	}
	localLast := &types.LastCallSession{
		CustomerID:    c.session.CustomerID,
		CustomerName:  c.session.CustomerName,
		ServiceNumber: c.session.ServiceNumber,
		WaitTime:      c.session.WaitTime,
		StartTime:     c.session.StartTime,
		CallDuration:  callDuration,
		TotalHoldTime: c.session.TotalHoldTime,
	}
	customerID := c.session.CustomerID
	serviceNumber := c.session.ServiceNumber
	waitTime := c.session.WaitTime
	c.mu.Unlock()
	defer c.clearInflight()

	c.status.IncrementCallsHandled()

	if !c.backend.Authoritative() && customerID != 0 {
		moment := types.MomentCallEndedByAgent
		if forcedByCustomer {
			moment = types.MomentCallEndedByCustomer
		}
		c.contacts.AddContactMoment(customerID, moment,
			fmt.Sprintf("%s call beëindigd (duur: %s, wacht: %s)",
				serviceNumber, formatSeconds(callDuration), formatSeconds(waitTime)))
	}

	last := localLast
	result, err := c.backend.EndCall(ctx, forcedByCustomer)
	if err != nil {
		// Degrade to the local computation; the session still ends
		c.logger.Warn().Err(err).Msg("end-of-call sync failed, keeping local result")
		c.notifier.Notify("Kon beëindigde call niet naar backend syncen", types.SeverityWarning)
	} else if result != nil && result.LastCallSession != nil {
		last = result.LastCallSession
	}

	c.mu.Lock()
	if c.durationHandle != nil {
		c.durationHandle.Cancel()
		c.durationHandle = nil
	}
	c.last = last
	c.session = types.NewCallSession()
	c.elapsed = 0
	onEnded := c.onEnded
	c.mu.Unlock()

	// Disposition capture must observe the reconciled snapshot, so the
	// status transition runs strictly after the backend attempt completed.
	c.status.AutoSet(agentstatus.EventCallEnded)

	c.logger.Info().
		Float64("call_duration", last.CallDuration).
		Bool("forced_by_customer", forcedByCustomer).
		Msg("call session ended")

	if !forcedByCustomer {
		c.notifier.Notify("Gesprek beëindigd", types.SeveritySuccess)
	}

	if onEnded != nil {
		onEnded(forcedByCustomer)
	}
	return nil
}

func (c *Controller) clearInflight() {
	c.mu.Lock()
	c.inflight = ""
	c.mu.Unlock()
}

// Active reports whether a call session is in progress
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Active
}

// Session returns a copy of the live session
func (c *Controller) Session() types.CallSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// LastSession returns the snapshot of the most recently ended call, or nil
// when no call has ended since the last start.
func (c *Controller) LastSession() *types.LastCallSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	snapshot := *c.last
	return &snapshot
}

// CallID returns the id assigned to the current or most recent call
func (c *Controller) CallID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callID
}

// Elapsed returns the displayed call duration in seconds
func (c *Controller) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// formatSeconds renders a duration as mm:ss for contact-history text
func formatSeconds(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
