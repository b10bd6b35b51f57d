package disposition

import (
	"testing"
	"time"

	"github.com/bindinc/agentdesk/internal/types"
	"github.com/rs/zerolog"
)

type stubSessions struct {
	last *types.LastCallSession
}

func (s *stubSessions) LastSession() *types.LastCallSession { return s.last }

type stubStatus struct {
	current  types.AgentStatus
	resolved int
}

func (s *stubStatus) Current() types.AgentStatus { return s.current }

func (s *stubStatus) ResolveACW() bool {
	if s.current != types.StatusACW {
		return false
	}
	s.current = types.StatusReady
	s.resolved++
	return true
}

type stubContacts struct {
	moments []types.ContactMoment
}

func (s *stubContacts) AddContactMoment(customerID int, momentType types.ContactMomentType, description string) {
	s.moments = append(s.moments, types.ContactMoment{
		Type:        momentType,
		Description: description,
	})
}

type stubHistory struct {
	moments []types.ContactMoment
}

func (s *stubHistory) HistorySince(_ int, _ time.Time) []types.ContactMoment {
	return s.moments
}

type silentNotifier struct{}

func (silentNotifier) Notify(string, types.Severity) {}

func finishedCall(customerID int) *types.LastCallSession {
	start := time.Now().Add(-3 * time.Minute)
	return &types.LastCallSession{
		CustomerID:    customerID,
		CustomerName:  "J. Jansen",
		ServiceNumber: "AVROBODE",
		WaitTime:      25,
		StartTime:     &start,
		CallDuration:  180,
	}
}

func newTestWorkflow(last *types.LastCallSession, status *stubStatus, history []types.ContactMoment) (*Workflow, *stubContacts) {
	contacts := &stubContacts{}
	w := NewWorkflow(&stubSessions{last: last}, status, contacts, silentNotifier{},
		&stubHistory{moments: history}, zerolog.Nop())
	return w, contacts
}

func TestOpenRequiresACW(t *testing.T) {
	w, _ := newTestWorkflow(finishedCall(1), &stubStatus{current: types.StatusReady}, nil)

	if _, err := w.Open(); err != ErrNotInACW {
		t.Fatalf("expected ErrNotInACW, got %v", err)
	}
}

func TestOpenRequiresLastSession(t *testing.T) {
	w, _ := newTestWorkflow(nil, &stubStatus{current: types.StatusACW}, nil)

	if _, err := w.Open(); err != ErrNoLastSession {
		t.Fatalf("expected ErrNoLastSession, got %v", err)
	}
}

func TestOpenPrefillsFromHistory(t *testing.T) {
	history := []types.ContactMoment{
		{Type: "subscription_cancelled", Description: "Abonnement opgezegd per 01-10"},
	}
	w, _ := newTestWorkflow(finishedCall(1), &stubStatus{current: types.StatusACW}, history)

	form, err := w.Open()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !form.Open {
		t.Fatal("expected open form")
	}
	if form.Category != types.CategorySubscription {
		t.Errorf("expected subscription prefill, got %s", form.Category)
	}
	if form.Outcome != "subscription_cancelled" {
		t.Errorf("expected cancellation outcome, got %s", form.Outcome)
	}
	if form.Notes == "" {
		t.Error("expected prefilled notes")
	}
}

func TestSelectOutcomeRequiresCategory(t *testing.T) {
	w, _ := newTestWorkflow(finishedCall(1), &stubStatus{current: types.StatusACW}, nil)

	if err := w.SelectOutcome("info_provided"); err != ErrNoCategorySelected {
		t.Fatalf("expected ErrNoCategorySelected, got %v", err)
	}
}

func TestSelectOutcomeValidatesMembership(t *testing.T) {
	w, _ := newTestWorkflow(finishedCall(1), &stubStatus{current: types.StatusACW}, nil)

	if err := w.SelectCategory(types.CategoryDelivery); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.SelectOutcome("new_subscription"); err != ErrOutcomeNotInCategory {
		t.Fatalf("expected ErrOutcomeNotInCategory, got %v", err)
	}
	if err := w.SelectOutcome("magazine_resent"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCategoryChangeClearsOutcome(t *testing.T) {
	w, _ := newTestWorkflow(finishedCall(1), &stubStatus{current: types.StatusACW}, nil)

	w.SelectCategory(types.CategoryGeneral)
	w.SelectOutcome("info_provided")
	w.SelectCategory(types.CategoryPayment)

	if got := w.Form().Outcome; got != "" {
		t.Errorf("outcome survived a category change: %s", got)
	}
}

func TestSelectUnknownCategory(t *testing.T) {
	w, _ := newTestWorkflow(finishedCall(1), &stubStatus{current: types.StatusACW}, nil)

	if err := w.SelectCategory("retention"); err != ErrUnknownCategory {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestCommitRequiresCompleteForm(t *testing.T) {
	status := &stubStatus{current: types.StatusACW}
	w, _ := newTestWorkflow(finishedCall(1), status, nil)
	w.Open()
	w.SelectCategory(types.CategoryGeneral)

	if _, err := w.Commit(); err != ErrIncomplete {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if status.current != types.StatusACW {
		t.Error("failed commit must leave the agent in acw")
	}
}

func TestCommitWritesHistoryAndResolvesACW(t *testing.T) {
	status := &stubStatus{current: types.StatusACW}
	w, contacts := newTestWorkflow(finishedCall(1), status, nil)

	w.Open()
	w.SelectCategory(types.CategoryComplaint)
	w.SelectOutcome("complaint_resolved")
	w.SetNotes("Dubbele incasso teruggeboekt")

	var committed *types.DispositionRecord
	w.SetOnCommitted(func(record types.DispositionRecord, _ types.LastCallSession) {
		committed = &record
	})

	record, err := w.Commit()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record == nil || record.Category != types.CategoryComplaint {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.CallDuration != 180 {
		t.Errorf("expected call duration carried over, got %f", record.CallDuration)
	}
	if status.current != types.StatusReady {
		t.Errorf("acw not resolved, status %s", status.current)
	}
	if len(contacts.moments) != 1 || contacts.moments[0].Type != types.MomentCallDisposition {
		t.Errorf("expected one disposition moment, got %+v", contacts.moments)
	}
	if committed == nil {
		t.Error("expected onCommitted hook to fire")
	}
	if w.Form().Open {
		t.Error("form must reset after commit")
	}
}

func TestCommitSchedulesFollowUp(t *testing.T) {
	status := &stubStatus{current: types.StatusACW}
	w, contacts := newTestWorkflow(finishedCall(1), status, nil)

	w.Open()
	w.SelectCategory(types.CategoryPayment)
	w.SelectOutcome("payment_plan_arranged")
	w.SetFollowUp(true, "2026-09-15", "Regeling bevestigen")

	if _, err := w.Commit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contacts.moments) != 2 {
		t.Fatalf("expected disposition and follow-up moments, got %d", len(contacts.moments))
	}
	if contacts.moments[1].Type != types.MomentFollowUpScheduled {
		t.Errorf("expected follow-up moment, got %s", contacts.moments[1].Type)
	}
}

func TestCommitAnonymousCallSkipsHistory(t *testing.T) {
	status := &stubStatus{current: types.StatusACW}
	w, contacts := newTestWorkflow(finishedCall(0), status, nil)

	w.SelectCategory(types.CategoryGeneral)
	w.SelectOutcome("customer_hung_up")

	record, err := w.Commit()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record == nil {
		t.Fatal("expected a record")
	}
	if len(contacts.moments) != 0 {
		t.Errorf("anonymous call must not write customer history: %+v", contacts.moments)
	}
}

// expiredMidCommitStatus reports acw at entry but the countdown has
// resolved it by the time commit reaches the resolve step.
type expiredMidCommitStatus struct{}

func (expiredMidCommitStatus) Current() types.AgentStatus { return types.StatusACW }
func (expiredMidCommitStatus) ResolveACW() bool           { return false }

func TestCommitLosingExpiryRaceWritesNothing(t *testing.T) {
	contacts := &stubContacts{}
	w := NewWorkflow(&stubSessions{last: finishedCall(1)}, expiredMidCommitStatus{}, contacts,
		silentNotifier{}, &stubHistory{}, zerolog.Nop())

	w.SelectCategory(types.CategoryGeneral)
	w.SelectOutcome("info_provided")

	hookFired := false
	w.SetOnCommitted(func(types.DispositionRecord, types.LastCallSession) { hookFired = true })

	record, err := w.Commit()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != nil {
		t.Errorf("commit after expiry produced a record: %+v", record)
	}
	if len(contacts.moments) != 0 {
		t.Errorf("commit after expiry wrote customer history: %+v", contacts.moments)
	}
	if hookFired {
		t.Error("commit hook fired after acw was already resolved")
	}
}

func TestLateCommitIsNoop(t *testing.T) {
	status := &stubStatus{current: types.StatusReady}
	w, contacts := newTestWorkflow(finishedCall(1), status, nil)

	w.SelectCategory(types.CategoryGeneral)
	w.SelectOutcome("info_provided")

	record, err := w.Commit()
	if err != nil {
		t.Fatalf("late commit must not error: %v", err)
	}
	if record != nil {
		t.Errorf("late commit produced a record: %+v", record)
	}
	if len(contacts.moments) != 0 {
		t.Error("late commit wrote history")
	}
}

func TestSuggestAnonymousIsEmpty(t *testing.T) {
	w, _ := newTestWorkflow(finishedCall(0), &stubStatus{current: types.StatusACW}, nil)

	if got := w.Suggest(finishedCall(0)); got != (Suggestion{}) {
		t.Errorf("expected empty suggestion, got %+v", got)
	}
}

func TestSuggestDefaultsToGeneral(t *testing.T) {
	history := []types.ContactMoment{
		{Type: types.MomentCallIdentified, Description: "Beller geïdentificeerd tijdens AVROBODE call"},
	}
	w, _ := newTestWorkflow(finishedCall(1), &stubStatus{current: types.StatusACW}, history)

	got := w.Suggest(finishedCall(1))
	if got.Category != types.CategoryGeneral || got.Outcome != "info_provided" {
		t.Errorf("expected general fallback, got %+v", got)
	}
}

func TestSuggestMatchesDeliveryKeyword(t *testing.T) {
	history := []types.ContactMoment{
		{Type: "note", Description: "Klacht over bezorging besproken"},
	}
	w, _ := newTestWorkflow(finishedCall(1), &stubStatus{current: types.StatusACW}, history)

	got := w.Suggest(finishedCall(1))
	if got.Category != types.CategoryDelivery || got.Outcome != "delivery_prefs_updated" {
		t.Errorf("expected delivery suggestion, got %+v", got)
	}
}
