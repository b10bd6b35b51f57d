package workstation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/bindinc/agentdesk/internal/agentstatus"
	"github.com/bindinc/agentdesk/internal/alerts"
	"github.com/bindinc/agentdesk/internal/callqueue"
	"github.com/bindinc/agentdesk/internal/callsession"
	"github.com/bindinc/agentdesk/internal/directory"
	"github.com/bindinc/agentdesk/internal/disposition"
	"github.com/bindinc/agentdesk/internal/metrics"
	"github.com/bindinc/agentdesk/internal/scheduler"
	"github.com/bindinc/agentdesk/internal/storage"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxNotifications bounds the in-memory notification history
const maxNotifications = 50

// The workstation is what the queue hands promoted callers to, so starting
// metrics and status changes are recorded on every path into a session.
var _ callqueue.SessionStarter = (*Workstation)(nil)

// Broadcaster pushes messages to connected clients
type Broadcaster interface {
	Broadcast(message []byte)
}

// Notification is one user-visible signal kept for late-joining clients
type Notification struct {
	ID        string         `json:"id"`
	Message   string         `json:"message"`
	Severity  types.Severity `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
}

// Config tunes the workstation
type Config struct {
	AgentID         string
	AgentName       string
	ACWDuration     time.Duration
	QueueGraceDelay time.Duration
	BackendBaseURL  string // empty runs local-only
	Recording       callsession.RecordingConfig
}

// Workstation wires the presence, session, queue and disposition controllers
// into one agent desk and owns the cross-cutting concerns: persistence,
// metrics, notifications and the combined snapshot pushed to clients.
type Workstation struct {
	Status      *agentstatus.Controller
	Session     *callsession.Controller
	Queue       *callqueue.Controller
	Disposition *disposition.Workflow
	Directory   *directory.Directory

	agentID   string
	agentName string
	store     storage.Store
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	mu            sync.Mutex
	broadcaster   Broadcaster
	notifications []Notification
	lastForced    bool
	daily         types.AgentDailyStats
}

// New assembles a workstation. An empty BackendBaseURL selects the
// local-only session backend; otherwise every session operation reconciles
// against the call-agent server at that URL.
func New(cfg Config, dir *directory.Directory, store storage.Store, sched scheduler.Scheduler, logger zerolog.Logger) *Workstation {
	w := &Workstation{
		Directory: dir,
		agentID:   cfg.AgentID,
		agentName: cfg.AgentName,
		store:     store,
		metrics:   metrics.Get(),
		logger:    logger.With().Str("component", "workstation").Logger(),
	}
	w.daily = types.AgentDailyStats{
		AgentID:          cfg.AgentID,
		Date:             time.Now().Format("2006-01-02"),
		CategoryCounts:   make(map[string]int),
		SessionStartTime: time.Now().Format(time.RFC3339),
	}

	w.Status = agentstatus.NewController(agentstatus.Config{ACWDuration: cfg.ACWDuration}, sched, logger)

	var backend callsession.Backend
	if cfg.BackendBaseURL != "" {
		backend = callsession.NewHTTPBackend(cfg.BackendBaseURL)
	} else {
		backend = callsession.NewNullBackend()
	}
	w.Session = callsession.NewController(backend, dir, dir, w, w.Status, cfg.Recording, sched, logger)

	w.Queue = callqueue.NewController(callqueue.Config{GraceDelay: cfg.QueueGraceDelay}, w, sched, logger)
	w.Disposition = disposition.NewWorkflow(w.Session, w.Status, dir, w, dir, logger)

	w.Session.SetOnEnded(w.handleCallEnded)
	w.Disposition.SetOnCommitted(w.handleDispositionCommitted)
	w.Status.SetOnACWExpired(w.handleACWExpired)

	return w
}

// SetBroadcaster attaches the client push channel
func (w *Workstation) SetBroadcaster(b Broadcaster) {
	w.mu.Lock()
	w.broadcaster = b
	w.mu.Unlock()
}

// SetStatus applies a manual status change
func (w *Workstation) SetStatus(raw string) error {
	if err := w.Status.SetStatus(raw, types.OriginManual); err != nil {
		return err
	}
	w.metrics.RecordStatusChange(w.Status.Current())
	return nil
}

// Start answers a call, either direct inbound or promoted from the
// queue. Implements the queue's session starter.
func (w *Workstation) Start(opts callsession.StartOptions) error {
	if err := w.Session.Start(opts); err != nil {
		return err
	}
	w.metrics.RecordCallStarted()
	w.metrics.RecordStatusChange(w.Status.Current())
	return nil
}

// IdentifyCaller links the anonymous caller to a customer record
func (w *Workstation) IdentifyCaller(ctx context.Context, customerID int) error {
	err := w.Session.Identify(ctx, customerID)
	var syncErr *callsession.SyncError
	switch {
	case err == nil:
		w.metrics.RecordIdentification()
	case errors.As(err, &syncErr):
		w.metrics.RecordSyncError()
	}
	return err
}

// ToggleHold flips the hold state of the active call
func (w *Workstation) ToggleHold(ctx context.Context) error {
	err := w.Session.ToggleHold(ctx)
	var syncErr *callsession.SyncError
	if errors.As(err, &syncErr) {
		w.metrics.RecordSyncError()
	}
	return err
}

// EndCall tears down the active call. The forced flag marks a customer
// hang-up.
func (w *Workstation) EndCall(ctx context.Context, forcedByCustomer bool) error {
	w.mu.Lock()
	w.lastForced = forcedByCustomer
	w.mu.Unlock()
	return w.Session.End(ctx, forcedByCustomer)
}

// handleCallEnded runs after every completed call end: persist the call,
// roll up the daily stats and let the queue offer the next caller.
func (w *Workstation) handleCallEnded(forcedByCustomer bool) {
	w.metrics.RecordCallEnded(forcedByCustomer)
	w.metrics.RecordStatusChange(w.Status.Current())

	last := w.Session.LastSession()
	if last != nil {
		record := w.callRecord(*last, forcedByCustomer)
		w.persistCallRecord(record)

		w.mu.Lock()
		w.rollDateLocked()
		w.daily.CallsHandled++
		w.daily.TotalTalkTime += last.CallDuration
		w.daily.TotalHoldTime += last.TotalHoldTime
		w.daily.TotalWaitTime += last.WaitTime
		stats := w.dailyCopyLocked()
		w.mu.Unlock()
		w.persistDailyStats(stats)
	}

	w.Queue.Advance()
}

// handleDispositionCommitted overwrites the call record with the captured
// category and outcome.
func (w *Workstation) handleDispositionCommitted(record types.DispositionRecord, last types.LastCallSession) {
	w.metrics.RecordDisposition(record.Category)
	w.metrics.RecordStatusChange(w.Status.Current())

	w.mu.Lock()
	forced := w.lastForced
	w.rollDateLocked()
	w.daily.Dispositions++
	w.daily.CategoryCounts[string(record.Category)]++
	stats := w.dailyCopyLocked()
	w.mu.Unlock()

	callRecord := w.callRecord(last, forced)
	callRecord.Category = string(record.Category)
	callRecord.Outcome = record.Outcome
	w.persistCallRecord(callRecord)
	w.persistDailyStats(stats)
}

// handleACWExpired counts wrap-up countdowns that resolved without a
// disposition. The gap stays visible: the persisted call record keeps its
// empty category.
func (w *Workstation) handleACWExpired() {
	w.metrics.RecordACWExpiry()
	w.metrics.RecordStatusChange(w.Status.Current())
	w.Notify("Naverwerking verlopen zonder afhandelcode", types.SeverityWarning)

	w.mu.Lock()
	w.rollDateLocked()
	w.daily.ACWExpiries++
	stats := w.dailyCopyLocked()
	w.mu.Unlock()
	w.persistDailyStats(stats)
}

func (w *Workstation) callRecord(last types.LastCallSession, forcedByCustomer bool) types.CallRecord {
	now := time.Now()
	record := types.CallRecord{
		DateKey:          now.Format("2006-01-02"),
		CallID:           w.Session.CallID(),
		AgentID:          w.agentID,
		ServiceNumber:    last.ServiceNumber,
		CustomerID:       last.CustomerID,
		CustomerName:     last.CustomerName,
		EndTime:          now.Format(time.RFC3339),
		WaitTime:         last.WaitTime,
		CallDuration:     last.CallDuration,
		HoldTime:         last.TotalHoldTime,
		ForcedByCustomer: forcedByCustomer,
	}
	if last.StartTime != nil {
		record.StartTime = last.StartTime.Format(time.RFC3339)
	}
	return record
}

// persistCallRecord writes asynchronously so call teardown is never blocked
// on storage.
func (w *Workstation) persistCallRecord(record types.CallRecord) {
	go func() {
		if err := w.store.SaveCallRecord(record); err != nil {
			w.logger.Error().Err(err).Str("call_id", record.CallID).Msg("failed to persist call record")
		}
	}()
}

func (w *Workstation) persistDailyStats(stats types.AgentDailyStats) {
	go func() {
		if err := w.store.SaveAgentDailyStats(stats); err != nil {
			w.logger.Error().Err(err).Str("date", stats.Date).Msg("failed to persist daily stats")
		}
	}()
}

// rollDateLocked resets the rollup when the calendar day changed
func (w *Workstation) rollDateLocked() {
	today := time.Now().Format("2006-01-02")
	if w.daily.Date == today {
		return
	}
	w.daily = types.AgentDailyStats{
		AgentID:          w.agentID,
		Date:             today,
		CategoryCounts:   make(map[string]int),
		SessionStartTime: time.Now().Format(time.RFC3339),
	}
}

func (w *Workstation) dailyCopyLocked() types.AgentDailyStats {
	stats := w.daily
	stats.CategoryCounts = make(map[string]int, len(w.daily.CategoryCounts))
	for k, v := range w.daily.CategoryCounts {
		stats.CategoryCounts[k] = v
	}
	return stats
}

// DailyStats returns the current day's rollup
func (w *Workstation) DailyStats() types.AgentDailyStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rollDateLocked()
	return w.dailyCopyLocked()
}

// Notify records a user-visible signal and pushes it to connected clients
func (w *Workstation) Notify(message string, severity types.Severity) {
	notification := Notification{
		ID:        uuid.New().String(),
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now(),
	}

	w.mu.Lock()
	w.notifications = append(w.notifications, notification)
	if len(w.notifications) > maxNotifications {
		w.notifications = w.notifications[len(w.notifications)-maxNotifications:]
	}
	broadcaster := w.broadcaster
	w.mu.Unlock()

	w.logger.Info().
		Str("severity", string(severity)).
		Str("message", message).
		Msg("notification")

	if broadcaster != nil {
		payload, err := json.Marshal(struct {
			Type string `json:"type"`
			Notification
		}{Type: "notification", Notification: notification})
		if err == nil {
			broadcaster.Broadcast(payload)
		}
	}
}

// Notifications returns the recent notification history, newest last
func (w *Workstation) Notifications() []Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Notification, len(w.notifications))
	copy(out, w.notifications)
	return out
}

// Snapshot is the combined workstation state pushed to clients once per
// second and served on the REST surface.
type Snapshot struct {
	Type        string                    `json:"type"`
	Timestamp   string                    `json:"timestamp"`
	AgentID     string                    `json:"agent_id"`
	AgentName   string                    `json:"agent_name"`
	AgentStatus types.AgentStatusSnapshot `json:"agent_status"`
	CallSession types.CallSession         `json:"call_session"`
	CallElapsed float64                   `json:"call_elapsed"`
	LastCall    *types.LastCallSession    `json:"last_call_session,omitempty"`
	Disposition disposition.Form          `json:"disposition"`
	Queue       types.QueueSnapshot       `json:"call_queue"`
	Alerts      []alerts.Alert            `json:"alerts,omitempty"`
}

// Snapshot assembles the live state of all controllers
func (w *Workstation) Snapshot() Snapshot {
	status := w.Status.Snapshot()
	session := w.Session.Session()
	queue := w.Queue.Snapshot()
	return Snapshot{
		Type:        "workstation_snapshot",
		Timestamp:   time.Now().Format(time.RFC3339),
		AgentID:     w.agentID,
		AgentName:   w.agentName,
		AgentStatus: status,
		CallSession: session,
		CallElapsed: w.Session.Elapsed(),
		LastCall:    w.Session.LastSession(),
		Disposition: w.Disposition.Form(),
		Queue:       queue,
		Alerts:      alerts.Check(status, session, queue),
	}
}
