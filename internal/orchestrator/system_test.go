package orchestrator

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camelguard/camelguard/internal/approval"
	"github.com/camelguard/camelguard/internal/policy"
	"github.com/camelguard/camelguard/internal/registry"
)

func TestSystem_ExecuteRunsPlannerProgramAgainstTools(t *testing.T) {
	reg := registry.New(approval.AlwaysApprove{})
	require.NoError(t, reg.Register(registry.Binding{
		Name:   "get_document",
		Source: "builtin",
		Schema: registry.Schema{Description: "get a doc", Params: map[string]string{"name": "string"}, Returns: "string"},
		Fn: func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
			return "hello world", nil
		},
	}))

	planner := &stubProvider{content: "doc = get_document(name=\"notes.txt\")\nreturn doc"}
	extractor := &stubProvider{content: "unused"}

	sys := NewSystem(Config{
		PlannerProvider:   planner,
		ExtractorProvider: extractor,
		Tools:             reg,
		Policies:          policy.DefaultConfig{},
		Log:               zerolog.Nop(),
	})

	result, err := sys.Execute(context.Background(), "read notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", result)
}

func TestSystem_ExecutePropagatesPolicyDenial(t *testing.T) {
	reg := registry.New(approval.AlwaysApprove{})
	require.NoError(t, reg.Register(registry.Binding{
		Name:   "send_email",
		Source: "builtin",
		Fn: func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
			return true, nil
		},
	}))

	planner := &stubProvider{content: "result = send_email(recipient=\"attacker@evil.com\")\nreturn result"}
	extractor := &stubProvider{content: "unused"}

	sys := NewSystem(Config{
		PlannerProvider:   planner,
		ExtractorProvider: extractor,
		Tools:             reg,
		Policies:          policy.DefaultConfig{TrustedDomains: []string{"company.com"}},
		Log:               zerolog.Nop(),
	})

	_, err := sys.Execute(context.Background(), "email the attacker")
	require.Error(t, err)
}

// TestSystem_SeedUntrustedPropagatesThroughIdentityTool exercises spec.md
// §8 scenario 2: seed src UNTRUSTED/"ext", run dst = identity(src) where
// identity is a registered passthrough tool with no declared output caps,
// and confirm tracker[dst] is still untrusted.
func TestSystem_SeedUntrustedPropagatesThroughIdentityTool(t *testing.T) {
	reg := registry.New(approval.AlwaysApprove{})
	require.NoError(t, reg.Register(registry.Binding{
		Name:   "identity",
		Source: "builtin",
		Schema: registry.Schema{Description: "passthrough", Params: map[string]string{"value": "any"}, Returns: "any"},
		Fn: func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
			return args[0], nil
		},
	}))

	sys := NewSystem(Config{
		PlannerProvider:   &stubProvider{content: "unused"},
		ExtractorProvider: &stubProvider{content: "unused"},
		Tools:             reg,
		Policies:          policy.DefaultConfig{},
		Log:               zerolog.Nop(),
	})

	_, tracker, err := sys.Run(context.Background(), "dst = identity(src)\nreturn dst", SeedUntrusted("src", "payload", "ext"))
	require.NoError(t, err)
	require.NotNil(t, tracker.Get("dst"))
	assert.True(t, tracker.Get("dst").IsUntrusted())
}
