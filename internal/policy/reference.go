// Package policy provides the reference capability.Policy implementations
// named in the runtime's policy engine: recipient allow/deny lists, file
// path confinement, rate limiting, pattern denial, and a heuristic
// exfiltration detector. Each is grounded in the original Python reference
// implementation's camel/capabilities.py and camel/mcp_security.py, split
// out into one policy per concern the way this runtime's spec calls for.
package policy

import (
	"fmt"
	"strings"
	"sync"

	"github.com/camelguard/camelguard/internal/capability"
)

// stringArg extracts a named string argument from a check context,
// tolerating both a literal value and a capability-tracked variable whose
// literal value the interpreter also passed through in Kwargs.
func stringArg(ctx *capability.CheckContext, name string) (string, bool) {
	v, ok := ctx.Kwargs[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// EmailRecipientPolicy blocks known-malicious recipient domains outright,
// always allows explicitly approved recipients, and otherwise requires
// that an untrusted recipient value resolve to a trusted domain.
// Grounded in camel/capabilities.py:EmailSecurityPolicy.
type EmailRecipientPolicy struct {
	mu                sync.RWMutex
	trustedDomains    map[string]struct{}
	blockedDomains    map[string]struct{}
	approvedRecipient map[string]struct{}
}

// defaultBlockedDomains mirrors the reference implementation's hardcoded
// known-malicious domains used across its demo scenarios.
var defaultBlockedDomains = []string{"evil.com", "malicious.com", "attacker.com", "hacker.com"}

func NewEmailRecipientPolicy(trustedDomains []string) *EmailRecipientPolicy {
	p := &EmailRecipientPolicy{
		trustedDomains:    toSet(trustedDomains),
		blockedDomains:    toSet(defaultBlockedDomains),
		approvedRecipient: make(map[string]struct{}),
	}
	return p
}

func (p *EmailRecipientPolicy) Name() string { return "EmailRecipientPolicy" }

func (p *EmailRecipientPolicy) AddApprovedRecipient(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.approvedRecipient[strings.ToLower(email)] = struct{}{}
}

func (p *EmailRecipientPolicy) Check(ctx *capability.CheckContext, tracker *capability.Tracker) (bool, string) {
	if ctx.Op != "send_email" {
		return true, ""
	}
	recipient, ok := stringArg(ctx, "recipient")
	if !ok {
		return true, ""
	}
	domain := domainOf(recipient)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if _, blocked := p.blockedDomains[domain]; blocked {
		return false, fmt.Sprintf("recipient domain %q is on the blocked list", domain)
	}
	if _, approved := p.approvedRecipient[strings.ToLower(recipient)]; approved {
		return true, ""
	}

	recipientCaps := ctx.ArgCapsByVar["recipient"]
	if recipientCaps != nil && recipientCaps.IsUntrusted() {
		if _, trusted := p.trustedDomains[domain]; !trusted {
			return false, fmt.Sprintf("untrusted recipient %q resolves to untrusted domain %q", recipient, domain)
		}
	}
	return true, ""
}

func domainOf(email string) string {
	idx := strings.LastIndex(email, "@")
	if idx < 0 {
		return email
	}
	return strings.ToLower(email[idx+1:])
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, s := range items {
		out[strings.ToLower(s)] = struct{}{}
	}
	return out
}

// FileAccessPolicy confines untrusted path values to an allow-listed set
// of prefixes. Grounded in camel/capabilities.py:FileAccessPolicy.
type FileAccessPolicy struct {
	allowedPrefixes []string
}

func NewFileAccessPolicy(allowedPrefixes []string) *FileAccessPolicy {
	return &FileAccessPolicy{allowedPrefixes: allowedPrefixes}
}

func (p *FileAccessPolicy) Name() string { return "FileAccessPolicy" }

func (p *FileAccessPolicy) Check(ctx *capability.CheckContext, tracker *capability.Tracker) (bool, string) {
	path, ok := stringArg(ctx, "path")
	if !ok {
		return true, ""
	}
	pathCaps := ctx.ArgCapsByVar["path"]
	if pathCaps == nil || !pathCaps.IsUntrusted() {
		return true, ""
	}
	for _, prefix := range p.allowedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true, ""
		}
	}
	return false, fmt.Sprintf("untrusted path %q is outside the allowed prefixes", path)
}

// RateLimitPolicy caps how many times a given operation may run within one
// execution's lifetime using a plain monotonic counter per operation name
// — a single execution runs synchronously and briefly, so "per session"
// here means "for the life of this Tracker," with no refill: once an
// operation has been called max times, every further call is denied for
// the rest of the run. Grounded in
// camel/mcp_security.py:MCPToolRule.max_calls_per_session, split out as
// its own policy per the runtime's design.
type RateLimitPolicy struct {
	mu    sync.Mutex
	max   map[string]int
	calls map[string]int
}

// NewRateLimitPolicy builds a policy keyed by operation name. limits maps
// an operation to the maximum number of times it may be called in one
// execution.
func NewRateLimitPolicy(limits map[string]int) *RateLimitPolicy {
	max := make(map[string]int, len(limits))
	for op, n := range limits {
		max[op] = n
	}
	return &RateLimitPolicy{max: max, calls: make(map[string]int)}
}

func (p *RateLimitPolicy) Name() string { return "RateLimitPolicy" }

func (p *RateLimitPolicy) Check(ctx *capability.CheckContext, tracker *capability.Tracker) (bool, string) {
	max, ok := p.max[ctx.Op]
	if !ok {
		return true, ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls[ctx.Op] >= max {
		return false, fmt.Sprintf("operation %q exceeded its session call limit of %d", ctx.Op, max)
	}
	p.calls[ctx.Op]++
	return true, ""
}

// PatternDenyPolicy blocks operations whose string arguments contain any
// of a configured set of forbidden substrings, matched case-insensitively.
// Grounded in camel/mcp_security.py:MCPToolRule.blocked_patterns.
type PatternDenyPolicy struct {
	patternsByOp map[string][]string
}

func NewPatternDenyPolicy(patternsByOp map[string][]string) *PatternDenyPolicy {
	return &PatternDenyPolicy{patternsByOp: patternsByOp}
}

func (p *PatternDenyPolicy) Name() string { return "PatternDenyPolicy" }

func (p *PatternDenyPolicy) Check(ctx *capability.CheckContext, tracker *capability.Tracker) (bool, string) {
	patterns, ok := p.patternsByOp[ctx.Op]
	if !ok {
		return true, ""
	}
	for _, v := range ctx.Kwargs {
		s, ok := v.(string)
		if !ok {
			continue
		}
		lower := strings.ToLower(s)
		for _, pat := range patterns {
			if strings.Contains(lower, strings.ToLower(pat)) {
				return false, fmt.Sprintf("argument matched forbidden pattern %q for operation %q", pat, ctx.Op)
			}
		}
	}
	return true, ""
}

// ExfiltrationHeuristicPolicy flags operations whose body argument looks like
// it is shipping sensitive data out, and denies once a session has
// tripped the heuristic more than a small number of times. Grounded in
// camel/mcp_security.py:MCPSecurityPolicy.detect_data_exfiltration_pattern.
type ExfiltrationHeuristicPolicy struct {
	mu          sync.Mutex
	indicators  []string
	watchedOps  map[string]struct{}
	exportCount int
	maxExports  int
}

func NewExfiltrationHeuristicPolicy(indicators []string, watchedOps []string, maxExports int) *ExfiltrationHeuristicPolicy {
	watched := make(map[string]struct{}, len(watchedOps))
	for _, op := range watchedOps {
		watched[op] = struct{}{}
	}
	return &ExfiltrationHeuristicPolicy{indicators: indicators, watchedOps: watched, maxExports: maxExports}
}

func (p *ExfiltrationHeuristicPolicy) Name() string { return "ExfiltrationHeuristicPolicy" }

func (p *ExfiltrationHeuristicPolicy) Check(ctx *capability.CheckContext, tracker *capability.Tracker) (bool, string) {
	if _, watched := p.watchedOps[ctx.Op]; !watched {
		return true, ""
	}
	body, _ := stringArg(ctx, "body")
	if !p.looksSensitive(body) {
		return true, ""
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.exportCount++
	if p.exportCount > p.maxExports {
		return false, fmt.Sprintf("operation %q exceeded %d sensitive-looking exports this session", ctx.Op, p.maxExports)
	}
	return true, ""
}

func (p *ExfiltrationHeuristicPolicy) looksSensitive(body string) bool {
	lower := strings.ToLower(body)
	for _, ind := range p.indicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// Reset clears session-scoped counters, for use between independent
// executions that share a policy instance.
func (p *ExfiltrationHeuristicPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exportCount = 0
}

// DefaultSensitiveIndicators mirrors the reference implementation's
// hardcoded exfiltration heuristics.
var DefaultSensitiveIndicators = []string{
	"api_key", "password", "token", "secret", "credential",
	"financial", "revenue", "profit", "confidential", "internal",
	"proprietary", "ssn", "credit_card",
}
