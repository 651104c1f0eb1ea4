// Package model abstracts the language-model collaborator behind a minimal
// synchronous interface. The core imposes an at-most-one-attempt contract per
// Generate call; callers that want retries or per-call deadlines opt in via
// the WithRetry / WithTimeout decorators.
package model

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Request captures one normalized model call: a system prompt, a user prompt
// and a sampling temperature.
type Request struct {
	System      string  `json:"system"`
	User        string  `json:"user"`
	Temperature float64 `json:"temperature"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required to drive generation. Generate
// returns the completion text or an error on any provider failure; no retry
// or backoff behavior is implied.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are matched by substring against the user prompt in registration
// order; unmatched prompts receive a generic echo completion.
type MockModel struct {
	info    Info
	matches []mockResponse
	err     error
	calls   int
}

type mockResponse struct{ match, response string }

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{info: Info{Name: name, Provider: "mock"}}
}

// AddResponse registers a canned completion returned when match is a
// substring of the user prompt.
func (m *MockModel) AddResponse(match, response string) {
	m.matches = append(m.matches, mockResponse{match: match, response: response})
}

// FailWith makes every subsequent Generate call return err.
func (m *MockModel) FailWith(err error) { m.err = err }

// Calls returns how many times Generate has been invoked.
func (m *MockModel) Calls() int { return m.calls }

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (string, error) {
	m.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.err != nil {
		return "", m.err
	}
	for _, r := range m.matches {
		if strings.Contains(req.User, r.match) {
			return r.response, nil
		}
	}
	return fmt.Sprintf("Mock response to: %s", req.User), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

// WithTimeout wraps a Model so every Generate call runs under a per-call
// deadline. A non-positive duration returns the model unchanged.
func WithTimeout(m Model, d time.Duration) Model {
	if d <= 0 {
		return m
	}
	return &timeoutModel{inner: m, timeout: d}
}

type timeoutModel struct {
	inner   Model
	timeout time.Duration
}

func (t *timeoutModel) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *timeoutModel) Info() Info { return t.inner.Info() }
