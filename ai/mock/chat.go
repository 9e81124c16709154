package mock

import (
	"context"
	"strings"
)

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields.
type MockChatModel struct {
	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, system, prompt string) (string, error)

	// GenerateJSONFunc is called by GenerateJSON if set.
	GenerateJSONFunc func(ctx context.Context, system, prompt string) (string, error)

	// GenerateStreamFunc is called by GenerateStream if set.
	GenerateStreamFunc func(ctx context.Context, system, prompt string, fn func(chunk string) error) error

	// Response is the canned reply used by the default implementations.
	Response string

	callCount int
}

// NewMockChatModel creates a mock chat model with a canned response.
// Note: Returns concrete type to allow test assertions.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{
		Response: "This is a mock response.",
	}
}

// Generate returns the canned response.
func (m *MockChatModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.callCount++

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, prompt)
	}
	return m.Response, nil
}

// GenerateJSON returns the canned response.
// Tests that exercise JSON parsing should set GenerateJSONFunc or Response
// to a JSON document.
func (m *MockChatModel) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	m.callCount++

	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, system, prompt)
	}
	return m.Response, nil
}

// GenerateStream delivers the canned response word by word.
func (m *MockChatModel) GenerateStream(ctx context.Context, system, prompt string, fn func(chunk string) error) error {
	m.callCount++

	if m.GenerateStreamFunc != nil {
		return m.GenerateStreamFunc(ctx, system, prompt, fn)
	}

	words := strings.SplitAfter(m.Response, " ")
	for _, word := range words {
		if err := fn(word); err != nil {
			return err
		}
	}
	return nil
}

// CallCount returns the number of times any method was called.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockChatModel) Reset() {
	m.callCount = 0
	m.GenerateFunc = nil
	m.GenerateJSONFunc = nil
	m.GenerateStreamFunc = nil
}
