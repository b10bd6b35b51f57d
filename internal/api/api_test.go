package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bindinc/agentdesk/internal/auth"
	"github.com/bindinc/agentdesk/internal/callsession"
	"github.com/bindinc/agentdesk/internal/directory"
	"github.com/bindinc/agentdesk/internal/disposition"
	"github.com/bindinc/agentdesk/internal/scheduler"
	"github.com/bindinc/agentdesk/internal/storage"
	"github.com/bindinc/agentdesk/internal/types"
	"github.com/bindinc/agentdesk/internal/workstation"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func newTestRouter(t *testing.T) (*workstation.Workstation, *chi.Mux) {
	t.Helper()

	dir := directory.New(zerolog.Nop())
	dir.Seed([]types.Customer{
		{ID: 1, Initials: "J.", FirstName: "Jan", LastName: "Jansen"},
		{ID: 2, Initials: "P.", FirstName: "Petra", MiddleName: "van der", LastName: "Berg"},
	})

	station := workstation.New(workstation.Config{
		AgentID:         "agent-1",
		AgentName:       "Test Agent",
		ACWDuration:     time.Hour,
		QueueGraceDelay: 10 * time.Millisecond,
		Recording:       callsession.RecordingConfig{Enabled: true, AutoStart: true, RequireConsent: true},
	}, dir, storage.NewNoopStore(), scheduler.New(), zerolog.Nop())

	statusHandler := NewStatusHandler(station, zerolog.Nop())
	sessionHandler := NewSessionHandler(station, zerolog.Nop())
	queueHandler := NewQueueHandler(station.Queue, dir, zerolog.Nop())
	dispositionHandler := NewDispositionHandler(station.Disposition, zerolog.Nop())
	customerHandler := NewCustomerHandler(dir, zerolog.Nop())

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", statusHandler.GetSnapshot)
		r.Get("/notifications", statusHandler.GetNotifications)
		r.Get("/status", statusHandler.GetStatus)
		r.Get("/status/catalog", statusHandler.GetCatalog)
		r.Put("/status", statusHandler.SetStatus)
		r.Get("/session", sessionHandler.GetSession)
		r.Post("/session/start", sessionHandler.StartCall)
		r.Post("/session/identify", sessionHandler.IdentifyCaller)
		r.Post("/session/recording-consent", sessionHandler.ConfirmRecordingConsent)
		r.Post("/session/hold", sessionHandler.ToggleHold)
		r.Post("/session/end", sessionHandler.EndCall)
		r.Get("/queue", queueHandler.GetQueue)
		r.Put("/queue/settings", queueHandler.UpdateSettings)
		r.Post("/queue/enqueue", queueHandler.Enqueue)
		r.Post("/queue/next", queueHandler.PullNext)
		r.Post("/queue/generate", queueHandler.Generate)
		r.Post("/queue/clear", queueHandler.Clear)
		r.Get("/disposition", dispositionHandler.GetForm)
		r.Get("/disposition/categories", dispositionHandler.GetCategories)
		r.Post("/disposition/open", dispositionHandler.Open)
		r.Put("/disposition/category", dispositionHandler.SelectCategory)
		r.Put("/disposition/outcome", dispositionHandler.SelectOutcome)
		r.Post("/disposition/commit", dispositionHandler.Commit)
		r.Get("/customers", customerHandler.ListCustomers)
		r.Get("/customers/{customerId}", customerHandler.GetCustomer)
		r.Get("/customers/{customerId}/history", customerHandler.GetHistory)
	})
	return station, r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSetStatusEndpoint(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPut, "/api/status", map[string]string{"status": "busy"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var snap types.AgentStatusSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if snap.Current != types.StatusBusy {
		t.Errorf("expected busy, got %s", snap.Current)
	}
}

func TestSetStatusRejectsTransient(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPut, "/api/status", map[string]string{"status": "in_call"})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for transient status, got %d", rec.Code)
	}
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	station, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/session/start", map[string]interface{}{
		"serviceNumber": "AVROBODE",
		"waitTime":      8,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Second start conflicts with the active session
	rec = doJSON(t, r, http.MethodPost, "/api/session/start", map[string]interface{}{
		"serviceNumber": "MAXGIDS",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("second start: expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/session/identify", map[string]int{"customerId": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("identify: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var session types.CallSession
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("parse session: %v", err)
	}
	if session.CallerType != types.CallerIdentified {
		t.Errorf("expected identified caller, got %s", session.CallerType)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/session/hold", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("hold: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/session/end", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("end: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if station.Status.Current() != types.StatusACW {
		t.Errorf("expected acw after end, got %s", station.Status.Current())
	}
}

func TestIdentifyRequiresCustomerID(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/session/identify", map[string]int{"customerId": 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestQueueEndpoints(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPut, "/api/queue/settings", map[string]bool{"enabled": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("settings: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/queue/generate", map[string]interface{}{
		"size": 5,
		"mix":  "all_known",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var snap types.QueueSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	if len(snap.Entries) != 5 {
		t.Errorf("expected 5 entries, got %d", len(snap.Entries))
	}

	rec = doJSON(t, r, http.MethodPost, "/api/queue/next", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("next: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPost, "/api/queue/clear", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", rec.Code)
	}

	var cleared map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &cleared); err != nil {
		t.Fatalf("parse clear response: %v", err)
	}
	if cleared["cleared"] != 4 {
		t.Errorf("expected 4 cleared, got %d", cleared["cleared"])
	}
}

func TestPullNextOnEmptyQueueConflicts(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/queue/next", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 on empty queue, got %d", rec.Code)
	}
}

func TestDispositionEndpoints(t *testing.T) {
	station, r := newTestRouter(t)

	// Opening outside ACW conflicts
	rec := doJSON(t, r, http.MethodPost, "/api/disposition/open", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("open outside acw: expected 409, got %d", rec.Code)
	}

	if err := station.Start(callsession.StartOptions{ServiceNumber: "AVROBODE", CustomerID: 1, CustomerName: "J. Jansen"}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := station.EndCall(context.Background(), false); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/disposition/open", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("open: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPut, "/api/disposition/category", map[string]string{"category": "general"})
	if rec.Code != http.StatusOK {
		t.Fatalf("category: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPut, "/api/disposition/outcome", map[string]string{"outcome": "not_in_category"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid outcome: expected 422, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPut, "/api/disposition/outcome", map[string]string{"outcome": "info_provided"})
	if rec.Code != http.StatusOK {
		t.Fatalf("outcome: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPost, "/api/disposition/commit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("commit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if station.Status.Current() != types.StatusReady {
		t.Errorf("expected ready after commit, got %s", station.Status.Current())
	}
}

func TestGetCategories(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/disposition/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var categories []disposition.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &categories); err != nil {
		t.Fatalf("parse categories: %v", err)
	}
	if len(categories) == 0 {
		t.Error("expected a non-empty taxonomy")
	}
}

func TestCustomerEndpoints(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/customers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}

	var customers []types.Customer
	if err := json.Unmarshal(rec.Body.Bytes(), &customers); err != nil {
		t.Fatalf("parse customers: %v", err)
	}
	if len(customers) != 2 {
		t.Errorf("expected 2 customers, got %d", len(customers))
	}

	rec = doJSON(t, r, http.MethodGet, "/api/customers/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/customers/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown customer: expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/customers/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/customers/1/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", rec.Code)
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/snapshot", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var snap workstation.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	if snap.Type != "workstation_snapshot" {
		t.Errorf("unexpected snapshot type %s", snap.Type)
	}
	if snap.AgentID != "agent-1" {
		t.Errorf("unexpected agent id %s", snap.AgentID)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// No claims in context
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("no claims: expected 403, got %d", rec.Code)
	}

	// Agent role
	ctx := context.WithValue(req.Context(), auth.UserContextKey, &auth.Claims{Role: "agent"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Errorf("agent role: expected 403, got %d", rec.Code)
	}

	// Admin role
	ctx = context.WithValue(req.Context(), auth.UserContextKey, &auth.Claims{Role: "admin"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Errorf("admin role: expected 200, got %d", rec.Code)
	}
}

func TestEnqueueEndpoint(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/queue/enqueue", map[string]interface{}{
		"serviceNumber": "AVROBODE",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("disabled queue: expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPut, "/api/queue/settings", map[string]bool{"enabled": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("settings: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/queue/enqueue", map[string]interface{}{
		"serviceNumber": "AVROBODE",
		"customerId":    1,
		"customerName":  "J. Jansen",
		"waitTime":      30,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("enqueue: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var entry types.QueueEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("parse entry: %v", err)
	}
	if entry.ID == "" {
		t.Error("expected a generated entry id")
	}
	if entry.CallerKind != types.CallerKindKnown {
		t.Errorf("expected known caller, got %s", entry.CallerKind)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/queue/enqueue", map[string]interface{}{
		"customerName": "Naamloos",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing serviceNumber: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/queue", nil)
	var snap types.QueueSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	if len(snap.Entries) != 1 {
		t.Errorf("expected 1 waiting caller, got %d", len(snap.Entries))
	}
}

func TestStatusCatalogEndpoint(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/status/catalog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var catalog map[types.AgentStatus]types.StatusMeta
	if err := json.Unmarshal(rec.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	if catalog[types.StatusReady].Label != "Beschikbaar" {
		t.Errorf("unexpected ready label: %q", catalog[types.StatusReady].Label)
	}
	if catalog[types.StatusACW].Color == "" {
		t.Error("expected a color for acw")
	}
}

func TestRecordingConsentEndpoint(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/session/start", map[string]interface{}{
		"serviceNumber": "AVROBODE",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var session types.CallSession
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("parse session: %v", err)
	}
	if session.RecordingActive {
		t.Fatal("recording must wait for consent")
	}

	rec = doJSON(t, r, http.MethodPost, "/api/session/recording-consent", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("consent: expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("parse session: %v", err)
	}
	if !session.RecordingActive {
		t.Error("expected recording active after consent")
	}
}

func TestIdentifyUnknownCustomerReturnsNotFound(t *testing.T) {
	_, r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/session/start", map[string]interface{}{
		"serviceNumber": "AVROBODE",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/session/identify", map[string]int{"customerId": 999})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown customer, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequireSupervisorOrAdmin(t *testing.T) {
	handler := RequireSupervisorOrAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), auth.UserContextKey, &auth.Claims{Role: "supervisor"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Errorf("supervisor role: expected 200, got %d", rec.Code)
	}

	ctx = context.WithValue(req.Context(), auth.UserContextKey, &auth.Claims{Role: "agent"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Errorf("agent role: expected 403, got %d", rec.Code)
	}
}
