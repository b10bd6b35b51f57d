package callsession

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bindinc/agentdesk/internal/types"
)

// Backend reconciles call-session operations with an authoritative server.
// A nil payload means "no server override": the caller keeps its locally
// computed result.
type Backend interface {
	// IdentifyCaller reconciles a caller identification and returns the
	// authoritative session
	IdentifyCaller(ctx context.Context, customerID int) (*types.CallSession, error)
	// EndCall reconciles an end-of-call event
	EndCall(ctx context.Context, forcedByCustomer bool) (*types.EndCallResult, error)
	// SetHold reconciles a hold or resume
	SetHold(ctx context.Context, onHold bool) (*types.CallSession, error)
	// Authoritative reports whether the backend records side effects such
	// as contact moments itself. False means the workstation runs in
	// local-only mode and records them client-side.
	Authoritative() bool
}

// SyncError wraps a failed backend reconciliation
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s sync failed: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NullBackend is the local-only strategy: all semantics are computed
// client-side and no server override is ever produced.
type NullBackend struct{}

func NewNullBackend() *NullBackend { return &NullBackend{} }

func (b *NullBackend) IdentifyCaller(_ context.Context, _ int) (*types.CallSession, error) {
	return nil, nil
}

func (b *NullBackend) EndCall(_ context.Context, _ bool) (*types.EndCallResult, error) {
	return nil, nil
}

func (b *NullBackend) SetHold(_ context.Context, _ bool) (*types.CallSession, error) {
	return nil, nil
}

func (b *NullBackend) Authoritative() bool { return false }

// HTTPBackend reconciles against the call-agent REST backend
type HTTPBackend struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPBackend creates an HTTP session backend rooted at baseURL
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (b *HTTPBackend) IdentifyCaller(ctx context.Context, customerID int) (*types.CallSession, error) {
	var session types.CallSession
	err := b.post(ctx, "/call-session/identify-caller", map[string]int{"customerId": customerID}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (b *HTTPBackend) EndCall(ctx context.Context, forcedByCustomer bool) (*types.EndCallResult, error) {
	var result types.EndCallResult
	err := b.post(ctx, "/call-session/end", map[string]bool{"forcedByCustomer": forcedByCustomer}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *HTTPBackend) SetHold(ctx context.Context, onHold bool) (*types.CallSession, error) {
	path := "/call-session/resume"
	if onHold {
		path = "/call-session/hold"
	}
	var session types.CallSession
	if err := b.post(ctx, path, struct{}{}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (b *HTTPBackend) Authoritative() bool { return true }

func (b *HTTPBackend) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
