package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camelguard/camelguard/internal/llm"
)

type stubProvider struct {
	content string
	err     error
	lastReq llm.ChatRequest
}

func (s *stubProvider) Complete(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Content: s.content}, nil
}

func (s *stubProvider) StreamComplete(ctx context.Context, req llm.ChatRequest, cb func(string) error) error {
	return cb(s.content)
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func TestPlanner_PlanReturnsProgramAndListsCatalogue(t *testing.T) {
	provider := &stubProvider{content: "result = send_email(to=recipient, body=reply)\nreturn result"}
	planner := NewPlanner(provider)

	catalogue := ToolCatalogue{
		"send_email": {
			Description: "sends an email",
			Params:      map[string]string{"to": "string", "body": "string"},
			Returns:     "string",
		},
	}

	program, err := planner.Plan(context.Background(), "reply to the last email", catalogue)
	require.NoError(t, err)
	assert.Contains(t, program, "send_email(to=recipient, body=reply)")
	assert.Contains(t, provider.lastReq.SystemPrompt, "send_email(")
	assert.Contains(t, provider.lastReq.SystemPrompt, "query_quarantined_llm")
	assert.Contains(t, provider.lastReq.SystemPrompt, "require_user_approval")
}

func TestPlanner_StripsCodeFence(t *testing.T) {
	provider := &stubProvider{content: "```\nx = 1\nreturn x\n```"}
	planner := NewPlanner(provider)

	program, err := planner.Plan(context.Background(), "do something", ToolCatalogue{})
	require.NoError(t, err)
	assert.Equal(t, "x = 1\nreturn x", program)
}

func TestPlanner_EmptyProgramIsModelFailure(t *testing.T) {
	provider := &stubProvider{content: "   "}
	planner := NewPlanner(provider)

	_, err := planner.Plan(context.Background(), "do something", ToolCatalogue{})
	require.Error(t, err)
}
