package agentstatus

import (
	"errors"
	"sync"
	"time"

	"github.com/bindinc/agentdesk/internal/scheduler"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/rs/zerolog"
)

// DefaultACWDuration is the after-call-work countdown used when the
// configuration does not specify one.
const DefaultACWDuration = 120 * time.Second

// ErrTransientStatus is returned when a manual status change targets a
// status that only the call lifecycle may set.
var ErrTransientStatus = errors.New("transient status can only be set by call lifecycle events")

// CallEvent drives the automatic status transitions
type CallEvent string

const (
	EventCallStarted CallEvent = "call_started"
	EventCallEnded   CallEvent = "call_ended"
)

// Config tunes the status controller
type Config struct {
	ACWDuration time.Duration
}

// Controller owns the agent's presence state. Only externally-initiated
// changes are remembered as the agent's intent (preferred); the in_call and
// acw statuses are transient and always resolve back to it.
type Controller struct {
	mu               sync.Mutex
	current          types.AgentStatus
	preferred        types.AgentStatus
	statusBeforeCall types.AgentStatus // snapshot taken when a call starts, "" when idle
	canReceiveCalls  bool
	sessionStart     time.Time
	callsHandled     int

	acwDuration time.Duration
	acwHandle   scheduler.Handle
	acwDeadline time.Time

	sched  scheduler.Scheduler
	logger zerolog.Logger

	onACWExpired func() // fired when the countdown resolves acw without a commit
}

// NewController creates a status controller starting in ready
func NewController(cfg Config, sched scheduler.Scheduler, logger zerolog.Logger) *Controller {
	acw := cfg.ACWDuration
	if acw <= 0 {
		acw = DefaultACWDuration
	}
	return &Controller{
		current:         types.StatusReady,
		preferred:       types.StatusReady,
		canReceiveCalls: true,
		sessionStart:    time.Now(),
		acwDuration:     acw,
		sched:           sched,
		logger:          logger.With().Str("component", "agent_status").Logger(),
	}
}

// SetStatus applies an externally-chosen status. Unknown statuses are a
// silent no-op (after alias normalization); transient statuses are rejected
// because only AutoSet may reach them. A manual, non-transient status is
// remembered as preferred.
func (c *Controller) SetStatus(raw string, origin types.StatusOrigin) error {
	status, ok := types.ParseAgentStatus(raw)
	if !ok {
		c.logger.Debug().Str("status", raw).Msg("ignoring unknown status")
		return nil
	}
	if status.Transient() && origin != types.OriginAuto {
		return ErrTransientStatus
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(status, origin)
	return nil
}

// AutoSet runs the call-lifecycle transitions. On call start the current
// status is snapshotted so the agent's intent survives the call/ACW cycle;
// on call end the controller enters acw and schedules the countdown.
func (c *Controller) AutoSet(event CallEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch event {
	case EventCallStarted:
		// A new call retires any pending ACW countdown
		c.cancelACWLocked()
		restore := c.current
		if restore.Transient() || restore == "" {
			restore = c.preferred
		}
		c.statusBeforeCall = restore
		c.apply(types.StatusInCall, types.OriginAuto)

	case EventCallEnded:
		c.apply(types.StatusACW, types.OriginAuto)
		c.acwDeadline = time.Now().Add(c.acwDuration)
		c.acwHandle = c.sched.After(c.acwDuration, c.expireACW)

	default:
		c.logger.Warn().Str("event", string(event)).Msg("ignoring unknown call event")
	}
}

// expireACW fires when the countdown elapses. Whoever resolves ACW first
// wins; a late expiry observes current != acw and does nothing.
func (c *Controller) expireACW() {
	c.mu.Lock()
	if c.current != types.StatusACW {
		c.mu.Unlock()
		return
	}
	c.logger.Info().Msg("acw countdown expired")
	c.resolveACWLocked()
	onExpired := c.onACWExpired
	c.mu.Unlock()

	if onExpired != nil {
		onExpired()
	}
}

// SetOnACWExpired registers a hook fired when the acw countdown expires
// before a disposition commit
func (c *Controller) SetOnACWExpired(fn func()) {
	c.mu.Lock()
	c.onACWExpired = fn
	c.mu.Unlock()
}

// ResolveACW ends after-call work early, typically on disposition commit.
// Returns false when the agent is no longer in acw (the countdown already
// resolved it), which makes the race between timer and commit a no-op for
// the loser.
func (c *Controller) ResolveACW() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != types.StatusACW {
		return false
	}
	c.resolveACWLocked()
	return true
}

func (c *Controller) resolveACWLocked() {
	c.cancelACWLocked()
	target := c.statusBeforeCall
	if target == "" || target.Transient() {
		target = c.preferred
	}
	if target == "" {
		target = types.StatusReady
	}
	c.statusBeforeCall = ""
	c.apply(target, types.OriginAuto)
}

func (c *Controller) cancelACWLocked() {
	if c.acwHandle != nil {
		c.acwHandle.Cancel()
		c.acwHandle = nil
	}
	c.acwDeadline = time.Time{}
}

// apply must be called with the lock held
func (c *Controller) apply(status types.AgentStatus, origin types.StatusOrigin) {
	previous := c.current
	c.current = status
	c.canReceiveCalls = status.CanReceiveCalls()
	if origin == types.OriginManual && !status.Transient() {
		c.preferred = status
	}

	c.logger.Debug().
		Str("from", string(previous)).
		Str("to", string(status)).
		Str("origin", string(origin)).
		Msg("agent status changed")
}

// IncrementCallsHandled bumps the observational calls-handled counter
func (c *Controller) IncrementCallsHandled() {
	c.mu.Lock()
	c.callsHandled++
	c.mu.Unlock()
}

// Current returns the live status
func (c *Controller) Current() types.AgentStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Preferred returns the last manually-chosen, non-transient status
func (c *Controller) Preferred() types.AgentStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preferred
}

// CanReceiveCalls reports whether the agent may be offered a call
func (c *Controller) CanReceiveCalls() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canReceiveCalls
}

// CallsHandled returns the number of calls handled this session
func (c *Controller) CallsHandled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callsHandled
}

// Snapshot returns a read-only view of the controller state
func (c *Controller) Snapshot() types.AgentStatusSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	snap := types.AgentStatusSnapshot{
		Current:          c.current,
		Preferred:        c.preferred,
		CanReceiveCalls:  c.canReceiveCalls,
		CallsHandled:     c.callsHandled,
		SessionStartTime: c.sessionStart.UnixMilli(),
		SessionSeconds:   now.Sub(c.sessionStart).Seconds(),
	}
	if c.current == types.StatusACW && !c.acwDeadline.IsZero() {
		remaining := c.acwDeadline.Sub(now).Seconds()
		if remaining < 0 {
			remaining = 0
		}
		snap.ACWRemaining = remaining
	}
	return snap
}
