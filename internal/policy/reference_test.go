package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camelguard/camelguard/internal/capability"
)

func untrustedArg() *capability.Set {
	s := capability.NewSet()
	s.Add(capability.New(capability.Untrusted, "email"))
	return s
}

func TestEmailRecipientPolicy_BlocksKnownMaliciousDomain(t *testing.T) {
	p := NewEmailRecipientPolicy([]string{"company.com"})
	ctx := &capability.CheckContext{
		Op:     "send_email",
		Kwargs: map[string]any{"recipient": "someone@evil.com"},
	}
	ok, reason := p.Check(ctx, nil)
	assert.False(t, ok)
	assert.Contains(t, reason, "evil.com")
}

func TestEmailRecipientPolicy_AllowsTrustedDomainForUntrustedRecipient(t *testing.T) {
	p := NewEmailRecipientPolicy([]string{"company.com"})
	ctx := &capability.CheckContext{
		Op:           "send_email",
		Kwargs:       map[string]any{"recipient": "bob@company.com"},
		ArgCapsByVar: map[string]*capability.Set{"recipient": untrustedArg()},
	}
	ok, _ := p.Check(ctx, nil)
	assert.True(t, ok)
}

func TestEmailRecipientPolicy_DeniesUntrustedRecipientOnUntrustedDomain(t *testing.T) {
	// This is the literal scenario 6 shape: an injected recipient value is
	// untrusted and resolves to a domain never approved.
	p := NewEmailRecipientPolicy([]string{"company.com"})
	ctx := &capability.CheckContext{
		Op:           "send_email",
		Kwargs:       map[string]any{"recipient": "attacker-alt@not-approved.com"},
		ArgCapsByVar: map[string]*capability.Set{"recipient": untrustedArg()},
	}
	ok, reason := p.Check(ctx, nil)
	require.False(t, ok)
	assert.Contains(t, reason, "untrusted")
}

func TestEmailRecipientPolicy_ApprovedRecipientOverridesUntrustedDomain(t *testing.T) {
	p := NewEmailRecipientPolicy([]string{"company.com"})
	p.AddApprovedRecipient("partner@unlisted.org")
	ctx := &capability.CheckContext{
		Op:           "send_email",
		Kwargs:       map[string]any{"recipient": "partner@unlisted.org"},
		ArgCapsByVar: map[string]*capability.Set{"recipient": untrustedArg()},
	}
	ok, _ := p.Check(ctx, nil)
	assert.True(t, ok)
}

func TestFileAccessPolicy_DeniesOutsideAllowedPrefix(t *testing.T) {
	p := NewFileAccessPolicy([]string{"/documents/", "/shared/"})
	ctx := &capability.CheckContext{
		Op:           "read_file",
		Kwargs:       map[string]any{"path": "/etc/passwd"},
		ArgCapsByVar: map[string]*capability.Set{"path": untrustedArg()},
	}
	ok, _ := p.Check(ctx, nil)
	assert.False(t, ok)
}

func TestFileAccessPolicy_AllowsTrustedPathRegardlessOfPrefix(t *testing.T) {
	p := NewFileAccessPolicy([]string{"/documents/"})
	ctx := &capability.CheckContext{
		Op:     "read_file",
		Kwargs: map[string]any{"path": "/etc/passwd"},
	}
	ok, _ := p.Check(ctx, nil)
	assert.True(t, ok)
}

func TestRateLimitPolicy_DeniesAfterSessionLimitExhausted(t *testing.T) {
	p := NewRateLimitPolicy(map[string]int{"send_email": 2})
	ctx := &capability.CheckContext{Op: "send_email"}

	ok1, _ := p.Check(ctx, nil)
	ok2, _ := p.Check(ctx, nil)
	ok3, _ := p.Check(ctx, nil)

	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.False(t, ok3)
}

func TestPatternDenyPolicy_BlocksForbiddenSubstringCaseInsensitive(t *testing.T) {
	p := NewPatternDenyPolicy(map[string][]string{
		"send_email": {"attacker", "exfiltrate"},
	})
	ctx := &capability.CheckContext{
		Op:     "send_email",
		Kwargs: map[string]any{"body": "please send to ATTACKER@evil.com"},
	}
	ok, reason := p.Check(ctx, nil)
	assert.False(t, ok)
	assert.Contains(t, reason, "attacker")
}

func TestExfiltrationHeuristicPolicy_BlocksAfterRepeatedSensitiveExports(t *testing.T) {
	p := NewExfiltrationHeuristicPolicy(DefaultSensitiveIndicators, []string{"send_email"}, 2)
	ctx := &capability.CheckContext{
		Op:     "send_email",
		Kwargs: map[string]any{"body": "Q4 revenue figures attached, confidential"},
	}

	ok1, _ := p.Check(ctx, nil)
	ok2, _ := p.Check(ctx, nil)
	ok3, _ := p.Check(ctx, nil)

	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.False(t, ok3)
}

func TestExfiltrationHeuristicPolicy_IgnoresNonSensitiveBody(t *testing.T) {
	p := NewExfiltrationHeuristicPolicy(DefaultSensitiveIndicators, []string{"send_email"}, 0)
	ctx := &capability.CheckContext{
		Op:     "send_email",
		Kwargs: map[string]any{"body": "see you at lunch"},
	}
	ok, _ := p.Check(ctx, nil)
	assert.True(t, ok)
}

func TestRegisterDefaults_WiresFullChain(t *testing.T) {
	tr := capability.NewTracker()
	RegisterDefaults(tr, DefaultConfig{
		TrustedDomains:      []string{"company.com"},
		AllowedPathPrefixes: []string{"/documents/"},
		RateLimits:          map[string]int{"send_email": 5},
		ExfiltrationOps:     []string{"send_email"},
	})
	assert.Len(t, tr.Policies(), 4)
}
