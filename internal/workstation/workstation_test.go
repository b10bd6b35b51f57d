package workstation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bindinc/agentdesk/internal/callsession"
	"github.com/bindinc/agentdesk/internal/directory"
	"github.com/bindinc/agentdesk/internal/scheduler"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/rs/zerolog"
)

// recordingStore captures persisted writes so tests can assert on them.
// Writes arrive from background goroutines, so access is mutex-guarded.
type recordingStore struct {
	mu      sync.Mutex
	records map[string]types.CallRecord // latest write per call id
	stats   []types.AgentDailyStats
}

func newRecordingStore() *recordingStore {
	return &recordingStore{records: make(map[string]types.CallRecord)}
}

func (s *recordingStore) SaveCallRecord(record types.CallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.CallID] = record
	return nil
}

func (s *recordingStore) SaveAgentDailyStats(stats types.AgentDailyStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = append(s.stats, stats)
	return nil
}

func (s *recordingStore) GetCallRecords(_ string) ([]types.CallRecord, error) { return nil, nil }
func (s *recordingStore) GetCallRecordsByService(_, _ string) ([]types.CallRecord, error) {
	return nil, nil
}
func (s *recordingStore) GetAgentDailyStats(_ string) ([]types.AgentDailyStats, error) {
	return nil, nil
}
func (s *recordingStore) TruncateAll() error { return nil }

// record polls for the persisted record of a call, waiting out the async
// write.
func (s *recordingStore) record(t *testing.T, callID string) types.CallRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		record, ok := s.records[callID]
		s.mu.Unlock()
		if ok {
			return record
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no call record persisted for %s", callID)
	return types.CallRecord{}
}

func (s *recordingStore) waitForCategory(t *testing.T, callID, category string) types.CallRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		record, ok := s.records[callID]
		s.mu.Unlock()
		if ok && record.Category == category {
			return record
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("record for %s never got category %q", callID, category)
	return types.CallRecord{}
}

type captureBroadcaster struct {
	mu       sync.Mutex
	messages [][]byte
}

func (b *captureBroadcaster) Broadcast(message []byte) {
	b.mu.Lock()
	b.messages = append(b.messages, message)
	b.mu.Unlock()
}

func newTestStation(t *testing.T, cfg Config) (*Workstation, *recordingStore) {
	t.Helper()
	if cfg.AgentID == "" {
		cfg.AgentID = "agent-1"
		cfg.AgentName = "Test Agent"
	}
	if cfg.ACWDuration == 0 {
		cfg.ACWDuration = time.Hour
	}
	if cfg.QueueGraceDelay == 0 {
		cfg.QueueGraceDelay = 10 * time.Millisecond
	}

	dir := directory.New(zerolog.Nop())
	dir.Seed([]types.Customer{
		{ID: 1, Initials: "J.", FirstName: "Jan", LastName: "Jansen"},
		{ID: 2, Initials: "P.", FirstName: "Petra", MiddleName: "van der", LastName: "Berg"},
	})

	store := newRecordingStore()
	return New(cfg, dir, store, scheduler.New(), zerolog.Nop()), store
}

func TestFullCallCycle(t *testing.T) {
	w, store := newTestStation(t, Config{})
	ctx := context.Background()

	if err := w.Start(callsession.StartOptions{ServiceNumber: "AVROBODE", WaitTime: 12}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if w.Status.Current() != types.StatusInCall {
		t.Errorf("expected in_call, got %s", w.Status.Current())
	}

	if err := w.IdentifyCaller(ctx, 1); err != nil {
		t.Fatalf("identify failed: %v", err)
	}
	session := w.Session.Session()
	if session.CallerType != types.CallerIdentified || session.CustomerID != 1 {
		t.Errorf("caller not identified: %+v", session)
	}

	if err := w.ToggleHold(ctx); err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	if err := w.ToggleHold(ctx); err != nil {
		t.Fatalf("resume failed: %v", err)
	}

	callID := w.Session.CallID()
	if err := w.EndCall(ctx, false); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	if w.Status.Current() != types.StatusACW {
		t.Errorf("expected acw after end, got %s", w.Status.Current())
	}
	if w.Session.LastSession() == nil {
		t.Fatal("expected last session after end")
	}

	record := store.record(t, callID)
	if record.CustomerID != 1 {
		t.Errorf("expected customer 1 on record, got %d", record.CustomerID)
	}
	if record.ServiceNumber != "AVROBODE" {
		t.Errorf("expected service AVROBODE, got %s", record.ServiceNumber)
	}
	if record.Category != "" {
		t.Errorf("record should have no category before disposition, got %s", record.Category)
	}

	stats := w.DailyStats()
	if stats.CallsHandled != 1 {
		t.Errorf("expected 1 call handled, got %d", stats.CallsHandled)
	}
	if stats.TotalWaitTime != 12 {
		t.Errorf("expected 12s wait rolled up, got %.1f", stats.TotalWaitTime)
	}
}

func TestDispositionCommitOverwritesRecord(t *testing.T) {
	w, store := newTestStation(t, Config{})
	ctx := context.Background()

	if err := w.Start(callsession.StartOptions{ServiceNumber: "AVROBODE", CustomerID: 1, CustomerName: "J. Jansen"}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	callID := w.Session.CallID()
	if err := w.EndCall(ctx, false); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	if _, err := w.Disposition.Open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := w.Disposition.SelectCategory(types.CategoryGeneral); err != nil {
		t.Fatalf("select category failed: %v", err)
	}
	if err := w.Disposition.SelectOutcome("info_provided"); err != nil {
		t.Fatalf("select outcome failed: %v", err)
	}
	record, err := w.Disposition.Commit()
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if record == nil {
		t.Fatal("expected a committed record")
	}

	if w.Status.Current() != types.StatusReady {
		t.Errorf("expected ready after commit, got %s", w.Status.Current())
	}

	persisted := store.waitForCategory(t, callID, string(types.CategoryGeneral))
	if persisted.Outcome != "info_provided" {
		t.Errorf("expected outcome info_provided, got %s", persisted.Outcome)
	}

	stats := w.DailyStats()
	if stats.Dispositions != 1 {
		t.Errorf("expected 1 disposition, got %d", stats.Dispositions)
	}
	if stats.CategoryCounts[string(types.CategoryGeneral)] != 1 {
		t.Errorf("expected category count 1, got %v", stats.CategoryCounts)
	}
}

func TestQueueAutoAdvanceAfterEnd(t *testing.T) {
	w, _ := newTestStation(t, Config{QueueGraceDelay: 10 * time.Millisecond})
	ctx := context.Background()

	w.Queue.SetEnabled(true)
	w.Queue.Enqueue(types.QueueEntry{
		CallerKind:    types.CallerKindKnown,
		CustomerID:    1,
		CustomerName:  "J. Jansen",
		ServiceNumber: "AVROBODE",
	})
	w.Queue.Enqueue(types.QueueEntry{
		CallerKind:    types.CallerKindKnown,
		CustomerID:    2,
		CustomerName:  "P. van der Berg",
		ServiceNumber: "MAXGIDS",
	})

	if err := w.Queue.PullNext(); err != nil {
		t.Fatalf("pull next failed: %v", err)
	}
	if w.Session.Session().CustomerID != 1 {
		t.Fatalf("expected first caller on session, got %+v", w.Session.Session())
	}

	if err := w.EndCall(ctx, false); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	// The grace delay must elapse before the next caller is promoted
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.Session.Session().CustomerID == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	session := w.Session.Session()
	if !session.Active || session.CustomerID != 2 {
		t.Fatalf("expected second caller promoted, got %+v", session)
	}
	if w.Queue.Len() != 0 {
		t.Errorf("expected empty queue, got %d", w.Queue.Len())
	}
}

func TestACWExpiryLeavesRecordWithoutCategory(t *testing.T) {
	w, store := newTestStation(t, Config{ACWDuration: 30 * time.Millisecond})
	ctx := context.Background()

	if err := w.Start(callsession.StartOptions{ServiceNumber: "AVROBODE", CustomerID: 1, CustomerName: "J. Jansen"}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	callID := w.Session.CallID()
	if err := w.EndCall(ctx, false); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.Status.Current() != types.StatusACW {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if w.Status.Current() != types.StatusReady {
		t.Fatalf("expected ready after acw expiry, got %s", w.Status.Current())
	}

	record := store.record(t, callID)
	if record.Category != "" {
		t.Errorf("expired acw must leave the record without category, got %s", record.Category)
	}

	found := false
	for _, n := range w.Notifications() {
		if strings.Contains(n.Message, "Naverwerking verlopen") {
			found = true
		}
	}
	if !found {
		t.Error("expected acw expiry notification")
	}

	stats := w.DailyStats()
	if stats.ACWExpiries != 1 {
		t.Errorf("expected 1 acw expiry, got %d", stats.ACWExpiries)
	}
}

func TestForcedEndStaysForcedOnDispositionOverwrite(t *testing.T) {
	w, store := newTestStation(t, Config{})
	ctx := context.Background()

	if err := w.Start(callsession.StartOptions{ServiceNumber: "AVROBODE", CustomerID: 1, CustomerName: "J. Jansen"}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	callID := w.Session.CallID()
	if err := w.EndCall(ctx, true); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	if _, err := w.Disposition.Open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := w.Disposition.SelectCategory(types.CategoryGeneral); err != nil {
		t.Fatalf("select category failed: %v", err)
	}
	if err := w.Disposition.SelectOutcome("info_provided"); err != nil {
		t.Fatalf("select outcome failed: %v", err)
	}
	if _, err := w.Disposition.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	persisted := store.waitForCategory(t, callID, string(types.CategoryGeneral))
	if !persisted.ForcedByCustomer {
		t.Error("disposition overwrite lost the forced-by-customer flag")
	}
}

func TestNotifyBroadcastsAndTrims(t *testing.T) {
	w, _ := newTestStation(t, Config{})
	broadcaster := &captureBroadcaster{}
	w.SetBroadcaster(broadcaster)

	for i := 0; i < maxNotifications+10; i++ {
		w.Notify("test melding", types.SeverityInfo)
	}

	notifications := w.Notifications()
	if len(notifications) != maxNotifications {
		t.Errorf("expected history trimmed to %d, got %d", maxNotifications, len(notifications))
	}

	broadcaster.mu.Lock()
	sent := len(broadcaster.messages)
	first := string(broadcaster.messages[0])
	broadcaster.mu.Unlock()

	if sent != maxNotifications+10 {
		t.Errorf("expected every notification broadcast, got %d", sent)
	}
	if !strings.Contains(first, `"type":"notification"`) {
		t.Errorf("unexpected payload: %s", first)
	}
}

func TestSnapshotCombinesControllers(t *testing.T) {
	w, _ := newTestStation(t, Config{AgentID: "agent-7", AgentName: "Test Agent"})

	snap := w.Snapshot()
	if snap.Type != "workstation_snapshot" {
		t.Errorf("unexpected snapshot type %s", snap.Type)
	}
	if snap.AgentID != "agent-7" {
		t.Errorf("unexpected agent id %s", snap.AgentID)
	}
	if snap.AgentStatus.Current != types.StatusReady {
		t.Errorf("expected ready status, got %s", snap.AgentStatus.Current)
	}
	if snap.CallSession.Active {
		t.Error("expected no active session on a fresh station")
	}
	if len(snap.Alerts) != 0 {
		t.Errorf("expected no alerts on a fresh station, got %v", snap.Alerts)
	}
}
