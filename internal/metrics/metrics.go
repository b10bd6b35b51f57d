package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bindinc/agentdesk/internal/types"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Call metrics
	CallsStartedTotal    int64
	CallsEndedTotal      int64
	CallsForcedTotal     int64
	IdentificationsTotal int64
	SyncErrorsTotal      int64

	// After-call work metrics
	DispositionsTotal      int64
	ACWExpiriesTotal       int64
	dispositionsByCategory map[types.DispositionCategory]int64

	// Queue metrics
	CallersEnqueuedTotal int64
	CallersPromotedTotal int64
	CallersClearedTotal  int64
	queueDepth           int

	// Status metrics
	StatusChangesTotal int64
	currentStatus      types.AgentStatus

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	WebSocketMessagesTotal       int64
	WebSocketErrorsTotal         int64
	activeConnections            int64

	// Broadcast metrics
	SnapshotBroadcastsTotal int64
	lastBroadcastDuration   time.Duration

	// HTTP metrics
	httpRequestsTotal    map[string]map[int]int64 // endpoint -> status -> count
	httpRequestDurations map[string][]float64     // endpoint -> durations

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			dispositionsByCategory: make(map[types.DispositionCategory]int64),
			httpRequestsTotal:      make(map[string]map[int]int64),
			httpRequestDurations:   make(map[string][]float64),
			currentStatus:          types.StatusReady,
			startTime:              time.Now(),
		}
	})
	return instance
}

// RecordCallStarted increments the calls started counter
func (m *Metrics) RecordCallStarted() {
	m.mu.Lock()
	m.CallsStartedTotal++
	m.mu.Unlock()
}

// RecordCallEnded increments the calls ended counter
func (m *Metrics) RecordCallEnded(forcedByCustomer bool) {
	m.mu.Lock()
	m.CallsEndedTotal++
	if forcedByCustomer {
		m.CallsForcedTotal++
	}
	m.mu.Unlock()
}

// RecordIdentification increments the caller identification counter
func (m *Metrics) RecordIdentification() {
	m.mu.Lock()
	m.IdentificationsTotal++
	m.mu.Unlock()
}

// RecordSyncError increments the backend reconciliation error counter
func (m *Metrics) RecordSyncError() {
	m.mu.Lock()
	m.SyncErrorsTotal++
	m.mu.Unlock()
}

// RecordDisposition counts a committed disposition by category
func (m *Metrics) RecordDisposition(category types.DispositionCategory) {
	m.mu.Lock()
	m.DispositionsTotal++
	m.dispositionsByCategory[category]++
	m.mu.Unlock()
}

// RecordACWExpiry counts a wrap-up countdown that expired without a commit
func (m *Metrics) RecordACWExpiry() {
	m.mu.Lock()
	m.ACWExpiriesTotal++
	m.mu.Unlock()
}

// RecordCallerEnqueued increments the queue intake counter
func (m *Metrics) RecordCallerEnqueued() {
	m.mu.Lock()
	m.CallersEnqueuedTotal++
	m.mu.Unlock()
}

// RecordCallerPromoted counts a queued caller handed to a call session
func (m *Metrics) RecordCallerPromoted() {
	m.mu.Lock()
	m.CallersPromotedTotal++
	m.mu.Unlock()
}

// RecordCallersCleared counts callers dropped by a queue wipe
func (m *Metrics) RecordCallersCleared(n int) {
	m.mu.Lock()
	m.CallersClearedTotal += int64(n)
	m.mu.Unlock()
}

// UpdateQueueDepth records the current number of waiting callers
func (m *Metrics) UpdateQueueDepth(depth int) {
	m.mu.Lock()
	m.queueDepth = depth
	m.mu.Unlock()
}

// RecordStatusChange records the agent's current status
func (m *Metrics) RecordStatusChange(status types.AgentStatus) {
	m.mu.Lock()
	m.StatusChangesTotal++
	m.currentStatus = status
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordWebSocketMessage increments message counter
func (m *Metrics) RecordWebSocketMessage() {
	m.mu.Lock()
	m.WebSocketMessagesTotal++
	m.mu.Unlock()
}

// RecordWebSocketError increments WebSocket error counter
func (m *Metrics) RecordWebSocketError() {
	m.mu.Lock()
	m.WebSocketErrorsTotal++
	m.mu.Unlock()
}

// RecordSnapshotBroadcast records a workstation snapshot push
func (m *Metrics) RecordSnapshotBroadcast(duration time.Duration) {
	m.mu.Lock()
	m.SnapshotBroadcastsTotal++
	m.lastBroadcastDuration = duration
	m.mu.Unlock()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++

	// Keep last 100 durations for percentile calculation
	if len(m.httpRequestDurations[endpoint]) >= 100 {
		m.httpRequestDurations[endpoint] = m.httpRequestDurations[endpoint][1:]
	}
	m.httpRequestDurations[endpoint] = append(m.httpRequestDurations[endpoint], duration.Seconds())
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("agentdesk_uptime_seconds", time.Since(m.startTime).Seconds())

		// Call metrics
		write("agentdesk_calls_started_total", m.CallsStartedTotal)
		write("agentdesk_calls_ended_total", m.CallsEndedTotal)
		write("agentdesk_calls_forced_total", m.CallsForcedTotal)
		write("agentdesk_identifications_total", m.IdentificationsTotal)
		write("agentdesk_sync_errors_total", m.SyncErrorsTotal)

		// After-call work metrics
		write("agentdesk_dispositions_total", m.DispositionsTotal)
		write("agentdesk_acw_expiries_total", m.ACWExpiriesTotal)
		for category, count := range m.dispositionsByCategory {
			write("agentdesk_dispositions_by_category", count, "category", string(category))
		}

		// Queue metrics
		write("agentdesk_callers_enqueued_total", m.CallersEnqueuedTotal)
		write("agentdesk_callers_promoted_total", m.CallersPromotedTotal)
		write("agentdesk_callers_cleared_total", m.CallersClearedTotal)
		write("agentdesk_queue_depth", m.queueDepth)

		// Status metrics
		write("agentdesk_status_changes_total", m.StatusChangesTotal)
		write("agentdesk_agent_status", 1, "status", string(m.currentStatus))

		// WebSocket metrics
		write("agentdesk_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("agentdesk_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("agentdesk_websocket_active_connections", m.activeConnections)
		write("agentdesk_websocket_messages_total", m.WebSocketMessagesTotal)
		write("agentdesk_websocket_errors_total", m.WebSocketErrorsTotal)

		// Broadcast metrics
		write("agentdesk_snapshot_broadcasts_total", m.SnapshotBroadcastsTotal)
		write("agentdesk_broadcast_duration_seconds", m.lastBroadcastDuration.Seconds())

		// HTTP metrics
		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("agentdesk_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
	}
}
