package llm

import (
	"context"
	"sync"
)

// MockClient is a test double for the generator port. Responses are served
// in order; the last one repeats once the queue drains.
type MockClient struct {
	mu        sync.Mutex
	Responses [][]byte
	Err       error
	Prompts   []string
	calls     int
}

func NewMockClient(responses ...[]byte) *MockClient {
	return &MockClient{Responses: responses}
}

func (m *MockClient) GenerateJSON(_ context.Context, prompt string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return []byte("{}"), nil
	}
	idx := m.calls - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// GenerateText serves the same response queue as GenerateJSON, as a string.
func (m *MockClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	out, err := m.GenerateJSON(ctx, prompt)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Calls returns how many times the generator was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
