package ai

import (
	"context"
	"strings"
	"sync/atomic"
)

// MockClient replies with a fixed answer or error and counts calls.
type MockClient struct {
	Answer string
	Err    error
	Model  string

	calls atomic.Int32
}

func (m *MockClient) Query(ctx context.Context, req Request) (Response, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if m.Err != nil {
		return Response{}, m.Err
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = m.Model
	}
	if model == "" {
		model = "gpt-5-mini"
	}
	return Response{
		Answer:   m.Answer,
		Model:    model,
		Attempts: 1,
		Usage: Usage{
			PromptTokens:     len(req.UserPrompt) / 4,
			CompletionTokens: len(m.Answer) / 4,
			TotalTokens:      (len(req.UserPrompt) + len(m.Answer)) / 4,
		},
	}, nil
}

func (m *MockClient) Calls() int {
	return int(m.calls.Load())
}

// ClientFunc adapts a plain function to Client.
type ClientFunc func(ctx context.Context, req Request) (Response, error)

func (f ClientFunc) Query(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
