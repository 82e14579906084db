// internal/classifier/mock.go
package classifier

import (
	"context"
	"sync"
)

// MockClassifier is a canned-response classifier for tests and local runs.
type MockClassifier struct {
	mu        sync.Mutex
	Responses map[string]*Result
	Default   *Result
	Err       error
	Calls     []string
}

func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		Responses: make(map[string]*Result),
		Default: &Result{
			Intent:     IntentNotUnderstood,
			Confidence: 0.0,
			Reason:     "mock default",
		},
	}
}

func (m *MockClassifier) Classify(_ context.Context, text string, _ string) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, text)
	if m.Err != nil {
		return nil, m.Err
	}
	if r, ok := m.Responses[text]; ok {
		out := *r
		return &out, nil
	}
	out := *m.Default
	return &out, nil
}
