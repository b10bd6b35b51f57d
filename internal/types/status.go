package types

// AgentStatus represents the presence state of the agent
type AgentStatus string

const (
	StatusReady   AgentStatus = "ready"
	StatusInCall  AgentStatus = "in_call"
	StatusBusy    AgentStatus = "busy"
	StatusDND     AgentStatus = "dnd"
	StatusBRB     AgentStatus = "brb"
	StatusAway    AgentStatus = "away"
	StatusOffline AgentStatus = "offline"
	StatusACW     AgentStatus = "acw"
)

// AllStatuses is the closed set of valid agent statuses
var AllStatuses = []AgentStatus{
	StatusReady,
	StatusInCall,
	StatusBusy,
	StatusDND,
	StatusBRB,
	StatusAway,
	StatusOffline,
	StatusACW,
}

// statusAliases maps legacy status names onto the closed set
var statusAliases = map[string]AgentStatus{
	"break": StatusAway,
}

// ParseAgentStatus normalizes a raw status string. Returns false when the
// value is not in the closed set and has no alias.
func ParseAgentStatus(raw string) (AgentStatus, bool) {
	if alias, ok := statusAliases[raw]; ok {
		return alias, true
	}
	candidate := AgentStatus(raw)
	for _, s := range AllStatuses {
		if s == candidate {
			return s, true
		}
	}
	return "", false
}

// Transient reports whether the status is only reachable through automatic
// call-lifecycle transitions and must never be remembered as agent intent.
func (s AgentStatus) Transient() bool {
	return s == StatusInCall || s == StatusACW
}

// CanReceiveCalls reports whether an agent in this status may be offered calls
func (s AgentStatus) CanReceiveCalls() bool {
	return s != StatusOffline && s != StatusDND
}

// StatusOrigin identifies who initiated a status change
type StatusOrigin string

const (
	// OriginManual is an explicit agent choice from the status menu
	OriginManual StatusOrigin = "manual"
	// OriginAuto is a call-lifecycle transition (call start/end, ACW expiry)
	OriginAuto StatusOrigin = "auto"
	// OriginSync is a status adopted from the backend at startup
	OriginSync StatusOrigin = "sync"
)

// StatusMeta carries static display metadata for a status. Resolved at
// presentation time only, never consulted by the state machine.
type StatusMeta struct {
	Label     string `json:"label"`
	Color     string `json:"color"`
	Badge     string `json:"badge"`
	TextColor string `json:"textColor"`
}

// StatusCatalog holds the display metadata per status
var StatusCatalog = map[AgentStatus]StatusMeta{
	StatusReady:   {Label: "Beschikbaar", Color: "#4ade80", Badge: "✓", TextColor: "#052e16"},
	StatusInCall:  {Label: "In gesprek", Color: "#ef4444", Badge: "●", TextColor: "#7f1d1d"},
	StatusBusy:    {Label: "Bezet", Color: "#ef4444", Badge: "●", TextColor: "#7f1d1d"},
	StatusDND:     {Label: "Niet storen", Color: "#dc2626", Badge: "⛔", TextColor: "#7f1d1d"},
	StatusBRB:     {Label: "Ben zo terug", Color: "#f59e0b", Badge: "↺", TextColor: "#78350f"},
	StatusAway:    {Label: "Als afwezig weergeven", Color: "#fbbf24", Badge: "◔", TextColor: "#713f12"},
	StatusOffline: {Label: "Offline", Color: "#9ca3af", Badge: "−", TextColor: "#111827"},
	StatusACW:     {Label: "Nabewerkingstijd", Color: "#facc15", Badge: "~", TextColor: "#422006"},
}

// AgentStatusSnapshot is the read-only view of the status controller state
type AgentStatusSnapshot struct {
	Current          AgentStatus `json:"current"`
	Preferred        AgentStatus `json:"preferred"`
	CanReceiveCalls  bool        `json:"canReceiveCalls"`
	CallsHandled     int         `json:"callsHandled"`
	SessionStartTime int64       `json:"sessionStartTime"`        // unix millis
	SessionSeconds   float64     `json:"sessionSeconds"`          // elapsed since login
	ACWRemaining     float64     `json:"acwRemaining,omitempty"`  // seconds left in countdown
}
