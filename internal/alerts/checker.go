package alerts

import (
	"fmt"
	"time"

	"github.com/bindinc/agentdesk/internal/types"
)

// Hold and queue thresholds before the desk starts flagging
const (
	holdWarnAfter      = 2 * time.Minute
	holdCritAfter      = 5 * time.Minute
	queueDepthWarn     = 5
	queueDepthCrit     = 10
	queueWaitWarnSecs  = 300.0
	queueWaitCritSecs  = 600.0
	acwEndingThreshold = 15.0 // seconds left in the countdown
)

// Alert is a rule violation surfaced on the workstation snapshot
type Alert struct {
	Rule     string         `json:"rule"`
	Severity types.Severity `json:"severity"`
	Message  string         `json:"message"`
}

// Check evaluates alert rules against the live workstation state. The
// returned slice is nil when nothing needs attention.
func Check(status types.AgentStatusSnapshot, session types.CallSession, queue types.QueueSnapshot) []Alert {
	now := time.Now()
	var alerts []Alert

	if session.Active && session.OnHold && session.HoldStartTime != nil {
		dur := now.Sub(*session.HoldStartTime)
		switch {
		case dur > holdCritAfter:
			alerts = append(alerts, Alert{
				Rule:     "hold_long",
				Severity: types.SeverityError,
				Message:  fmt.Sprintf("Caller on hold for %s", formatDuration(dur)),
			})
		case dur > holdWarnAfter:
			alerts = append(alerts, Alert{
				Rule:     "hold_long",
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("Caller on hold for %s", formatDuration(dur)),
			})
		}
	}

	if status.Current == types.StatusACW && status.ACWRemaining > 0 && status.ACWRemaining < acwEndingThreshold {
		alerts = append(alerts, Alert{
			Rule:     "acw_ending",
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("After-call work expires in %.0fs", status.ACWRemaining),
		})
	}

	if queue.Enabled {
		depth := len(queue.Entries)
		switch {
		case depth >= queueDepthCrit:
			alerts = append(alerts, Alert{
				Rule:     "queue_backlog",
				Severity: types.SeverityError,
				Message:  fmt.Sprintf("%d callers waiting", depth),
			})
		case depth >= queueDepthWarn:
			alerts = append(alerts, Alert{
				Rule:     "queue_backlog",
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("%d callers waiting", depth),
			})
		}

		if depth > 0 {
			head := queue.Entries[0].WaitSeconds
			switch {
			case head > queueWaitCritSecs:
				alerts = append(alerts, Alert{
					Rule:     "queue_wait_long",
					Severity: types.SeverityError,
					Message:  fmt.Sprintf("Longest wait %s", formatDuration(time.Duration(head)*time.Second)),
				})
			case head > queueWaitWarnSecs:
				alerts = append(alerts, Alert{
					Rule:     "queue_wait_long",
					Severity: types.SeverityWarning,
					Message:  fmt.Sprintf("Longest wait %s", formatDuration(time.Duration(head)*time.Second)),
				})
			}
		}
	}

	return alerts
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if mins >= 60 {
		hours := mins / 60
		mins = mins % 60
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
	return fmt.Sprintf("%dm%ds", mins, secs)
}
