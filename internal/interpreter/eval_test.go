package interpreter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camelguard/camelguard/internal/camelerr"
	"github.com/camelguard/camelguard/internal/capability"
)

type stubTool struct {
	value      any
	originCaps *capability.Set
	err        error
	calls      int
}

func (s *stubTool) Invoke(ctx context.Context, args []any, kwargs map[string]any) (any, *capability.Set, error) {
	s.calls++
	return s.value, s.originCaps, s.err
}

func TestExecute_SimpleAssignAndReturn(t *testing.T) {
	tr := capability.NewTracker()
	it := New(tr, MapRegistry{})
	result, err := it.Execute(context.Background(), "x = 1 + 2\nreturn x\n")
	require.NoError(t, err)
	assert.Equal(t, float64(3), result)
	assert.Equal(t, StateCompleted, it.State())
}

func TestExecute_ForbiddenConstructDeniesBeforeEval(t *testing.T) {
	tr := capability.NewTracker()
	calledTool := &stubTool{value: "never"}
	it := New(tr, MapRegistry{"dangerous": calledTool})

	_, err := it.Execute(context.Background(), "import os\ndangerous()\n")
	require.Error(t, err)
	assert.True(t, camelerr.Is(err, camelerr.KindParse))
	assert.Equal(t, 0, calledTool.calls, "no statement should run once validation fails")
	assert.Equal(t, StateError, it.State())
}

func TestExecute_DerivesCapabilitiesThroughCallChain(t *testing.T) {
	// P1: a value computed from an untrusted input is itself untrusted.
	tr := capability.NewTracker()
	email := capability.NewSet()
	email.Add(capability.New(capability.Untrusted, "email"))

	getLastEmail := &stubTool{value: "meeting notes: ...", originCaps: email}
	it := New(tr, MapRegistry{"get_last_email": getLastEmail})

	_, err := it.Execute(context.Background(), "body = get_last_email()\nsummary = body\n")
	require.NoError(t, err)

	require.NotNil(t, tr.Get("summary"))
	assert.True(t, tr.Get("summary").IsUntrusted())
}

func TestExecute_PolicyDenialStopsExecution(t *testing.T) {
	tr := capability.NewTracker()
	tr.AddPolicy(denyAll{})
	tool := &stubTool{value: "sent"}
	it := New(tr, MapRegistry{"send_email": tool})

	_, err := it.Execute(context.Background(), "send_email(recipient=\"bob@company.com\")\n")
	require.Error(t, err)
	assert.True(t, camelerr.Is(err, camelerr.KindPolicyDenied))
	assert.Equal(t, 0, tool.calls)
	assert.Equal(t, StateDenied, it.State())
}

func TestExecute_IfElseBranches(t *testing.T) {
	tr := capability.NewTracker()
	it := New(tr, MapRegistry{})
	result, err := it.Execute(context.Background(), "x = 5\nif x > 3:\n    y = 1\nelse:\n    y = 2\nreturn y\n")
	require.NoError(t, err)
	assert.Equal(t, float64(1), result)
}

func TestExecute_UndefinedVariableIsLookupError(t *testing.T) {
	tr := capability.NewTracker()
	it := New(tr, MapRegistry{})
	_, err := it.Execute(context.Background(), "return missing\n")
	require.Error(t, err)
	assert.True(t, camelerr.Is(err, camelerr.KindLookup))
}

func TestExecute_UnknownFunctionIsLookupError(t *testing.T) {
	tr := capability.NewTracker()
	it := New(tr, MapRegistry{})
	_, err := it.Execute(context.Background(), "nonexistent_tool()\n")
	require.Error(t, err)
	assert.True(t, camelerr.Is(err, camelerr.KindLookup))
}

func TestExecute_ToolFailureWraps(t *testing.T) {
	tr := capability.NewTracker()
	tool := &stubTool{err: assertErr("boom")}
	it := New(tr, MapRegistry{"flaky": tool})
	_, err := it.Execute(context.Background(), "flaky()\n")
	require.Error(t, err)
	assert.True(t, camelerr.Is(err, camelerr.KindToolFailure))
}

func TestExecute_ListAndSubscript(t *testing.T) {
	tr := capability.NewTracker()
	it := New(tr, MapRegistry{})
	result, err := it.Execute(context.Background(), "items = [1, 2, 3]\nreturn items[1]\n")
	require.NoError(t, err)
	assert.Equal(t, float64(2), result)
}

type denyAll struct{}

func (denyAll) Name() string { return "denyAll" }
func (denyAll) Check(ctx *capability.CheckContext, tracker *capability.Tracker) (bool, string) {
	return false, "denied for test"
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
