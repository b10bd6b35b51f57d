package types

import "time"

// CallerType indicates whether the caller on the active session is known
type CallerType string

const (
	CallerAnonymous  CallerType = "anonymous"
	CallerIdentified CallerType = "identified"
)

// CallSession represents the single active call. At most one session is
// active process-wide; the zero value is the neutral "no call" template.
type CallSession struct {
	Active          bool       `json:"active"`
	CallerType      CallerType `json:"callerType"`
	CustomerID      int        `json:"customerId,omitempty"`
	CustomerName    string     `json:"customerName,omitempty"`
	ServiceNumber   string     `json:"serviceNumber,omitempty"`
	WaitTime        float64    `json:"waitTime"` // seconds spent in queue before answer
	StartTime       *time.Time `json:"startTime,omitempty"`
	OnHold          bool       `json:"onHold"`
	HoldStartTime   *time.Time `json:"holdStartTime,omitempty"` // non-nil only while on hold
	TotalHoldTime   float64    `json:"totalHoldTime"`           // seconds
	RecordingActive bool       `json:"recordingActive"`
}

// NewCallSession returns the neutral session template
func NewCallSession() CallSession {
	return CallSession{CallerType: CallerAnonymous}
}

// LastCallSession is an immutable snapshot of a just-ended call, read by the
// disposition workflow and retired when the next call starts.
type LastCallSession struct {
	CustomerID    int        `json:"customerId,omitempty"`
	CustomerName  string     `json:"customerName,omitempty"`
	ServiceNumber string     `json:"serviceNumber,omitempty"`
	WaitTime      float64    `json:"waitTime"`
	StartTime     *time.Time `json:"startTime,omitempty"`
	CallDuration  float64    `json:"callDuration"` // seconds
	TotalHoldTime float64    `json:"totalHoldTime"`
}

// EndCallResult is the payload returned by the session backend for an
// end-of-call reconciliation.
type EndCallResult struct {
	CallSession     *CallSession     `json:"call_session"`
	LastCallSession *LastCallSession `json:"last_call_session"`
}
