package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowPolicy struct{ name string }

func (p allowPolicy) Name() string { return p.name }
func (p allowPolicy) Check(ctx *CheckContext, tracker *Tracker) (bool, string) {
	return true, ""
}

type denyPolicy struct {
	name   string
	reason string
}

func (p denyPolicy) Name() string { return p.name }
func (p denyPolicy) Check(ctx *CheckContext, tracker *Tracker) (bool, string) {
	return false, p.reason
}

func TestTracker_AssignGet(t *testing.T) {
	tr := NewTracker()
	caps := NewSet()
	caps.Add(New(Trusted, "user"))

	tr.Assign("x", caps)
	assert.Same(t, caps, tr.Get("x"))
	assert.Nil(t, tr.Get("unbound"))
}

func TestTracker_Derive(t *testing.T) {
	tr := NewTracker()
	src := NewSet()
	src.Add(New(Untrusted, "email"))
	tr.Assign("a", src)

	tr.Derive("b", "a")

	require.NotNil(t, tr.Get("b"))
	assert.True(t, tr.Get("b").IsUntrusted())
}

func TestTracker_DeriveFromUnboundLeavesResultUnbound(t *testing.T) {
	tr := NewTracker()
	tr.Derive("result", "never_assigned")
	assert.Nil(t, tr.Get("result"))
}

func TestTracker_CheckShortCircuitsOnFirstDenial(t *testing.T) {
	// P3: policies run in registration order and stop at the first denial.
	var ran []string
	tr := NewTracker()
	tr.AddPolicy(recordingPolicy{"first", &ran, true})
	tr.AddPolicy(recordingPolicy{"second", &ran, false})
	tr.AddPolicy(recordingPolicy{"third", &ran, true})

	ok, reason := tr.Check(&CheckContext{Op: "send_email"})

	assert.False(t, ok)
	assert.Contains(t, reason, "second")
	assert.Equal(t, []string{"first", "second"}, ran)
}

func TestTracker_CheckAllowsWhenEveryPolicyAllows(t *testing.T) {
	tr := NewTracker()
	tr.AddPolicy(allowPolicy{"a"})
	tr.AddPolicy(allowPolicy{"b"})

	ok, reason := tr.Check(&CheckContext{Op: "noop"})
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestTracker_PoliciesPreservesRegistrationOrder(t *testing.T) {
	tr := NewTracker()
	p1 := allowPolicy{"one"}
	p2 := allowPolicy{"two"}
	tr.AddPolicy(p1)
	tr.AddPolicy(p2)

	got := tr.Policies()
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Name())
	assert.Equal(t, "two", got[1].Name())
}

type recordingPolicy struct {
	name string
	log  *[]string
	ok   bool
}

func (p recordingPolicy) Name() string { return p.name }
func (p recordingPolicy) Check(ctx *CheckContext, tracker *Tracker) (bool, string) {
	*p.log = append(*p.log, p.name)
	if p.ok {
		return true, ""
	}
	return false, "denied by " + p.name
}
