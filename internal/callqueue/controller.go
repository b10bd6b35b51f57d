package callqueue

import (
	"errors"
	"sync"
	"time"

	"github.com/bindinc/agentdesk/internal/callsession"
	"github.com/bindinc/agentdesk/internal/metrics"
	"github.com/bindinc/agentdesk/internal/scheduler"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultGraceDelay is the pause between a call ending and the next queued
// caller being promoted, so the after-call screen can render first.
const DefaultGraceDelay = 1 * time.Second

// SessionStarter is the subset of the call session controller the queue
// needs to hand over the next caller.
type SessionStarter interface {
	Start(opts callsession.StartOptions) error
}

// Config tunes the queue controller
type Config struct {
	GraceDelay time.Duration
}

// Controller owns the ordered sequence of waiting callers and promotes the
// head into a new call session when the agent becomes free.
type Controller struct {
	mu              sync.Mutex
	enabled         bool
	autoAdvance     bool
	currentPosition int
	entries         []types.QueueEntry

	advanceHandle scheduler.Handle // pending grace-delay advance, nil when idle

	sessions SessionStarter
	sched    scheduler.Scheduler
	grace    time.Duration
	logger   zerolog.Logger
}

// NewController creates a queue controller. The queue starts disabled with
// auto-advance on, matching a fresh agent login.
func NewController(cfg Config, sessions SessionStarter, sched scheduler.Scheduler, logger zerolog.Logger) *Controller {
	grace := cfg.GraceDelay
	if grace <= 0 {
		grace = DefaultGraceDelay
	}
	return &Controller{
		autoAdvance: true,
		sessions:    sessions,
		sched:       sched,
		grace:       grace,
		logger:      logger.With().Str("component", "call_queue").Logger(),
	}
}

// Enqueue appends a waiting caller. No-op returning nil when the queue is
// disabled.
func (c *Controller) Enqueue(entry types.QueueEntry) *types.QueueEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		c.logger.Debug().Str("service_number", entry.ServiceNumber).Msg("queue disabled, ignoring caller")
		return nil
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.QueuedAt.IsZero() {
		entry.QueuedAt = time.Now()
	}
	if entry.CustomerName == "" {
		entry.CustomerName = "Anonieme Beller"
	}
	c.entries = append(c.entries, entry)
	metrics.Get().RecordCallerEnqueued()

	c.logger.Debug().
		Str("entry_id", entry.ID).
		Str("service_number", entry.ServiceNumber).
		Int("queue_depth", len(c.entries)).
		Msg("caller enqueued")
	return &entry
}

// Advance schedules promotion of the head entry after the grace delay. It is
// invoked after a call session has fully ended; nothing happens when the
// queue is disabled, empty, or auto-advance is off.
func (c *Controller) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || len(c.entries) == 0 || !c.autoAdvance {
		return
	}
	if c.advanceHandle != nil {
		return
	}
	c.advanceHandle = c.sched.After(c.grace, c.advanceNow)
}

func (c *Controller) advanceNow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceHandle = nil

	if !c.enabled || len(c.entries) == 0 {
		return
	}
	c.promoteHeadLocked()
}

// PullNext promotes the head entry immediately, regardless of auto-advance.
// Used when the agent manually takes the next caller.
func (c *Controller) PullNext() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || len(c.entries) == 0 {
		return errors.New("no waiting callers")
	}
	return c.promoteHeadLocked()
}

// promoteHeadLocked hands the head entry to the session controller. When a
// session is already active (direct inbound call won the race) the entry
// stays at the head for the next attempt — no caller is silently dropped.
func (c *Controller) promoteHeadLocked() error {
	head := c.entries[0]

	opts := callsession.StartOptions{
		ServiceNumber: head.ServiceNumber,
		WaitTime:      head.EffectiveWait(time.Now()),
	}
	if head.CallerKind == types.CallerKindKnown && head.CustomerID != 0 {
		opts.CustomerID = head.CustomerID
		opts.CustomerName = head.CustomerName
	}

	if err := c.sessions.Start(opts); err != nil {
		c.logger.Warn().Err(err).Str("entry_id", head.ID).Msg("could not promote queued caller, keeping at head")
		return err
	}

	c.entries = c.entries[1:]
	c.currentPosition++
	metrics.Get().RecordCallerPromoted()

	c.logger.Info().
		Str("entry_id", head.ID).
		Str("customer_name", head.CustomerName).
		Float64("wait_time", opts.WaitTime).
		Int("remaining", len(c.entries)).
		Msg("queued caller promoted to call session")
	return nil
}

// SetEnabled toggles queue mode. Disabling cancels a pending auto-advance.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled = enabled
	if !enabled && c.advanceHandle != nil {
		c.advanceHandle.Cancel()
		c.advanceHandle = nil
	}
}

// SetAutoAdvance toggles automatic promotion after a call ends
func (c *Controller) SetAutoAdvance(auto bool) {
	c.mu.Lock()
	c.autoAdvance = auto
	c.mu.Unlock()
}

// Clear wipes all waiting callers, returning how many were dropped
func (c *Controller) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := len(c.entries)
	c.entries = nil
	c.currentPosition = 0
	if c.advanceHandle != nil {
		c.advanceHandle.Cancel()
		c.advanceHandle = nil
	}

	metrics.Get().RecordCallersCleared(dropped)
	c.logger.Info().Int("cleared", dropped).Msg("queue wiped")
	return dropped
}

// Len returns the number of waiting callers
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// LongestWaitSecs returns the effective wait of the head entry
func (c *Controller) LongestWaitSecs() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) == 0 {
		return 0
	}
	return c.entries[0].EffectiveWait(time.Now())
}

// Snapshot returns the queue state with live wait times resolved
func (c *Controller) Snapshot() types.QueueSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	views := make([]types.QueueEntryView, 0, len(c.entries))
	for _, entry := range c.entries {
		views = append(views, types.QueueEntryView{
			QueueEntry:  entry,
			WaitSeconds: entry.EffectiveWait(now),
		})
	}
	return types.QueueSnapshot{
		Enabled:         c.enabled,
		AutoAdvance:     c.autoAdvance,
		CurrentPosition: c.currentPosition,
		Entries:         views,
	}
}
