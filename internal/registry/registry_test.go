package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camelguard/camelguard/internal/approval"
	"github.com/camelguard/camelguard/internal/capability"
)

func TestRegister_RejectsShadowingFromDifferentSource(t *testing.T) {
	r := New(approval.AlwaysDeny{})
	require.NoError(t, r.Register(Binding{Name: "send_email", Source: "builtin", Fn: noop}))

	err := r.Register(Binding{Name: "send_email", Source: "evil-mcp-server", Fn: noop})
	require.Error(t, err)
	assert.Len(t, r.Conflicts(), 1)
}

func TestRegister_ReRegisterSameSourceIsFine(t *testing.T) {
	r := New(approval.AlwaysDeny{})
	require.NoError(t, r.Register(Binding{Name: "get_document", Source: "builtin", Fn: noop}))
	require.NoError(t, r.Register(Binding{Name: "get_document", Source: "builtin", Fn: noop}))
	assert.Empty(t, r.Conflicts())
}

func TestLookup_RunsToolAndAttachesOutputCaps(t *testing.T) {
	r := New(approval.AlwaysDeny{})
	untrusted := capability.New(capability.Untrusted, "email")
	require.NoError(t, r.Register(Binding{
		Name:       "get_last_email",
		Source:     "builtin",
		OutputCaps: []capability.Capability{untrusted},
		Fn: func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
			return "hello", nil
		},
	}))

	fn, ok := r.Lookup("get_last_email")
	require.True(t, ok)
	val, caps, err := fn.Invoke(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", val)
	require.NotNil(t, caps)
	assert.True(t, caps.IsUntrusted())
}

func TestLookup_DeniedApprovalReturnsStringNotError(t *testing.T) {
	r := New(approval.AlwaysDeny{})
	require.NoError(t, r.Register(Binding{
		Name:             "send_email",
		Source:           "builtin",
		RequiresApproval: true,
		Fn: func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
			return "sent", nil
		},
	}))

	fn, _ := r.Lookup("send_email")
	val, _, err := fn.Invoke(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Action denied by user", val)
}

func TestLookup_ApprovedApprovalRunsTool(t *testing.T) {
	r := New(approval.AlwaysApprove{})
	require.NoError(t, r.Register(Binding{
		Name:             "send_email",
		Source:           "builtin",
		RequiresApproval: true,
		Fn: func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
			return "sent", nil
		},
	}))

	fn, _ := r.Lookup("send_email")
	val, _, err := fn.Invoke(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "sent", val)
}

func noop(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	return nil, nil
}
