package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/probelab/recallbench/core"
)

// Request captures a single-shot generation input. System carries optional
// instructions kept separate so providers can map them onto their native
// system-message mechanism.
type Request struct {
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
}

// Response is the completed generation output plus optional usage metadata.
type Response struct {
	Text  string           `json:"text"`
	Usage *core.TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required to drive content generation.
// Generate is synchronous from the caller's point of view; implementations
// must honor context cancellation since calls are network bound.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests. Responses can
// be keyed by prompt, queued as a scripted sequence, or injected as errors.
type MockModel struct {
	info      Info
	responses map[string]string
	script    []scriptStep
	calls     []Request
	mu        sync.Mutex
}

type scriptStep struct {
	text string
	err  error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// QueueResponse appends a scripted completion consumed in FIFO order,
// taking precedence over prompt-keyed responses.
func (m *MockModel) QueueResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scriptStep{text: text})
}

// QueueError appends a scripted failure consumed in FIFO order.
func (m *MockModel) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scriptStep{err: err})
}

// Calls returns a copy of all requests seen so far.
func (m *MockModel) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if len(m.script) > 0 {
		step := m.script[0]
		m.script = m.script[1:]
		if step.err != nil {
			return nil, step.err
		}
		return &Response{Text: step.text, Usage: &core.TokenUsage{TotalTokens: len(step.text)}}, nil
	}

	text, ok := m.responses[req.Prompt]
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", req.Prompt)
	}

	return &Response{Text: text, Usage: &core.TokenUsage{TotalTokens: len(text)}}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
