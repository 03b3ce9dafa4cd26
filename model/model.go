// Package model defines the provider-agnostic completion interface used by
// LLM-backed agents, along with a mock implementation for tests. Provider
// adapters live in subpackages (anthropic, openai).
package model

import "context"

// Request is a single-turn completion request. Differential prompts are
// stateless; conversation history is carried inside the prompt text.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int64
}

// Response is the text produced for a Request.
type Response struct {
	Text         string
	FinishReason string
}

// Info describes a model implementation.
type Info struct {
	Name     string
	Provider string
}

// Model is the minimal surface an LLM provider must implement.
type Model interface {
	// Complete generates a response for the given request. It must honor
	// ctx cancellation and deadlines.
	Complete(ctx context.Context, req Request) (Response, error)

	// Info returns metadata describing the underlying model.
	Info() Info
}

// MockModel returns canned responses in order, recording every request.
// Intended for tests; the zero value returns empty responses.
type MockModel struct {
	Responses []string
	Err       error
	Requests  []Request

	next int
}

var _ Model = (*MockModel)(nil)

// Complete returns the next canned response, or Err if set.
func (m *MockModel) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return Response{}, m.Err
	}
	if m.next >= len(m.Responses) {
		return Response{FinishReason: "stop"}, nil
	}
	text := m.Responses[m.next]
	m.next++
	return Response{Text: text, FinishReason: "stop"}, nil
}

// Info identifies the mock.
func (m *MockModel) Info() Info {
	return Info{Name: "mock", Provider: "mock"}
}
