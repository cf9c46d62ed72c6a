package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

// TransportCall records one request issued through MockTransport.
type TransportCall struct {
	Request ports.Request
	Public  bool
}

// MockTransport answers requests from Responses keyed by "METHOD path".
// A registered error is returned as is; any other value is round-tripped
// through JSON into out, the way the real transport decodes a body.
type MockTransport struct {
	mu        sync.Mutex
	Calls     []TransportCall
	Responses map[string]any
	Errors    map[string]error

	// Hook, when set, runs before the canned response is used. It may
	// block to hold a request in flight.
	Hook func(ctx context.Context, call TransportCall) error
}

var _ ports.Transport = (*MockTransport)(nil)

func NewMockTransport() *MockTransport {
	return &MockTransport{
		Responses: make(map[string]any),
		Errors:    make(map[string]error),
	}
}

// On registers the body returned for method and path.
func (m *MockTransport) On(method, path string, body any) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[method+" "+path] = body
	delete(m.Errors, method+" "+path)
	return m
}

// Fail registers the error returned for method and path.
func (m *MockTransport) Fail(method, path string, err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[method+" "+path] = err
	return m
}

func (m *MockTransport) Do(ctx context.Context, req ports.Request, out any) error {
	return m.handle(ctx, TransportCall{Request: req}, out)
}

func (m *MockTransport) DoPublic(ctx context.Context, req ports.Request, out any) error {
	return m.handle(ctx, TransportCall{Request: req, Public: true}, out)
}

func (m *MockTransport) handle(ctx context.Context, call TransportCall, out any) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	hook := m.Hook
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, call); err != nil {
			return err
		}
	}

	key := call.Request.Method + " " + call.Request.Path
	m.mu.Lock()
	err, failing := m.Errors[key]
	body, ok := m.Responses[key]
	m.mu.Unlock()

	if failing {
		return err
	}
	if !ok || out == nil {
		return nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// CallCount returns how many requests were issued.
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// CallsTo returns the requests issued to method and path.
func (m *MockTransport) CallsTo(method, path string) []TransportCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []TransportCall
	for _, call := range m.Calls {
		if call.Request.Method == method && call.Request.Path == path {
			calls = append(calls, call)
		}
	}
	return calls
}
