package ai

import "context"

// MockClassifier is a canned Classifier for tests and local development.
// Result and Err are returned verbatim; Calls counts invocations.
type MockClassifier struct {
	Result IntentResult
	Err    error
	Calls  int
}

// Classify returns the canned result.
func (m *MockClassifier) Classify(_ context.Context, _ []Turn) (IntentResult, error) {
	m.Calls++
	if m.Err != nil {
		return UnknownResult(), m.Err
	}
	return m.Result, nil
}

// MockDrafter is a canned Drafter for tests. When Reply is empty and Err is
// nil, it echoes a deterministic body derived from the action.
type MockDrafter struct {
	Reply string
	Err   error
	Calls int

	// LastAction and LastTone record the most recent call for assertions.
	LastAction string
	LastTone   string
}

// GenerateReply returns the canned reply.
func (m *MockDrafter) GenerateReply(_ context.Context, action, _ string, tone string) (string, error) {
	m.Calls++
	m.LastAction = action
	m.LastTone = tone
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	return "Draft reply for action: " + action, nil
}
