package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockBackend.
type MockResponse struct {
	Text  string
	Usage Usage
	Err   error
}

// MockBackend is a deterministic Backend for testing. It returns canned
// responses in FIFO order and records all requests.
type MockBackend struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockBackend creates a MockBackend with the given canned responses.
func NewMockBackend(responses ...MockResponse) *MockBackend {
	return &MockBackend{responses: responses}
}

// Complete returns the next canned response, or an ErrInferenceFailure when
// the queue is empty.
func (m *MockBackend) Complete(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrInferenceFailure{Message: "mock: no canned responses left"}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Text:       resp.Text,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockBackend) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockBackend) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Complete calls made.
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
