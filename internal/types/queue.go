package types

import "time"

// CallerKind classifies a queued caller before answer
type CallerKind string

const (
	CallerKindKnown     CallerKind = "known"
	CallerKindAnonymous CallerKind = "anonymous"
)

// QueueEntry represents one waiting caller
type QueueEntry struct {
	ID            string     `json:"id"`
	CallerKind    CallerKind `json:"callerType"`
	CustomerID    int        `json:"customerId,omitempty"`
	CustomerName  string     `json:"customerName"`
	ServiceNumber string     `json:"serviceNumber"`
	BaseWaitTime  float64    `json:"waitTime"` // seconds already waited when enqueued
	QueuedAt      time.Time  `json:"queuedAt"`
	Priority      int        `json:"priority"`
}

// EffectiveWait returns the caller's total wait so far. Not persisted until
// the entry is dequeued, when it seeds the new session's wait time.
func (e QueueEntry) EffectiveWait(now time.Time) float64 {
	wait := e.BaseWaitTime + now.Sub(e.QueuedAt).Seconds()
	if wait < 0 {
		return 0
	}
	return wait
}

// QueueEntryView is a QueueEntry with its wait time resolved for display
type QueueEntryView struct {
	QueueEntry
	WaitSeconds float64 `json:"waitSeconds"`
}

// QueueSnapshot is the read-only view of the call queue
type QueueSnapshot struct {
	Enabled         bool             `json:"enabled"`
	AutoAdvance     bool             `json:"autoAdvance"`
	CurrentPosition int              `json:"currentPosition"`
	Entries         []QueueEntryView `json:"queue"`
}
