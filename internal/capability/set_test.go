package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_AddHasDedup(t *testing.T) {
	s := NewSet()
	s.Add(New(Read, "inbox"))
	s.Add(New(Read, "inbox"))

	assert.True(t, s.Has(Read, "inbox"))
	assert.False(t, s.Has(Write, "inbox"))
	assert.Len(t, s.All(), 1)
}

func TestSet_TrustedUntrusted(t *testing.T) {
	trusted := NewSet()
	trusted.Add(New(Trusted, "user"))
	assert.True(t, trusted.IsTrusted())
	assert.False(t, trusted.IsUntrusted())

	untrusted := NewSet()
	untrusted.Add(New(Untrusted, "email"))
	assert.True(t, untrusted.IsUntrusted())
}

func TestDeriveFrom_MonotoneTaint(t *testing.T) {
	// P1: any value computed from an untrusted input is itself untrusted,
	// and never loses a capability its inputs carried.
	a := NewSet()
	a.Add(New(Read, "inbox"))
	a.Add(New(Untrusted, "email"))

	b := NewSet()
	b.Add(New(Trusted, "user"))

	derived := DeriveFrom(a, b)

	require.True(t, derived.IsUntrusted())
	assert.True(t, derived.Has(Read, "inbox"))
	assert.True(t, derived.Has(Trusted, "user"))
}

func TestDeriveFrom_NeverInfersTrust(t *testing.T) {
	// I2: TRUSTED is never synthesized by derivation, only asserted at
	// origin — deriving from two trusted sources does not itself assert a
	// *new* trusted capability beyond what was already present.
	a := NewSet()
	a.Add(New(Trusted, "user"))
	b := NewSet()
	b.Add(New(Trusted, "user"))

	derived := DeriveFrom(a, b)

	assert.True(t, derived.IsTrusted())
	assert.False(t, derived.IsUntrusted())
	// still just one distinct capability, not a derived-trust duplicate
	assert.Len(t, derived.All(), 1)
}

func TestDeriveFrom_NilSourcesSkipped(t *testing.T) {
	derived := DeriveFrom(nil, nil)
	assert.Empty(t, derived.All())
	assert.False(t, derived.IsUntrusted())
}

func TestSet_DataIDUniquePerSet(t *testing.T) {
	a := NewSet()
	b := NewSet()
	assert.NotEqual(t, a.DataID, b.DataID)
}

func TestSet_Sources(t *testing.T) {
	s := NewSet()
	s.Add(New(Read, "inbox"))
	s.Add(New(Untrusted, "inbox"))
	s.Add(New(Write, "disk"))

	assert.ElementsMatch(t, []string{"inbox", "disk"}, s.Sources())
}
