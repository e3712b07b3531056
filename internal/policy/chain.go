package policy

import "github.com/camelguard/camelguard/internal/capability"

// DefaultConfig bundles the tunables the reference policy set needs,
// sourced from configuration rather than hardcoded as the Python reference
// implementation does.
type DefaultConfig struct {
	TrustedDomains     []string
	AllowedPathPrefixes []string
	RateLimits          map[string]int
	DenyPatterns        map[string][]string
	ExfiltrationOps     []string
	SensitiveIndicators []string
	MaxExfiltrations    int
}

// RegisterDefaults builds and registers the reference policy set on
// tracker in one call, mirroring camel/mcp_security.py's MCPSecurityManager,
// which bundles rate limiting, pattern denial, and exfiltration detection
// under a single façade rather than requiring callers to wire each policy
// by hand. The email-recipient and file-access policies are always
// registered; the rate-limit, pattern-deny and exfiltration policies are
// registered only when their config entries are non-empty.
func RegisterDefaults(tracker *capability.Tracker, cfg DefaultConfig) {
	if len(cfg.SensitiveIndicators) == 0 {
		cfg.SensitiveIndicators = DefaultSensitiveIndicators
	}
	if cfg.MaxExfiltrations == 0 {
		cfg.MaxExfiltrations = 2
	}

	tracker.AddPolicy(NewEmailRecipientPolicy(cfg.TrustedDomains))
	tracker.AddPolicy(NewFileAccessPolicy(cfg.AllowedPathPrefixes))
	if len(cfg.RateLimits) > 0 {
		tracker.AddPolicy(NewRateLimitPolicy(cfg.RateLimits))
	}
	if len(cfg.DenyPatterns) > 0 {
		tracker.AddPolicy(NewPatternDenyPolicy(cfg.DenyPatterns))
	}
	if len(cfg.ExfiltrationOps) > 0 {
		tracker.AddPolicy(NewExfiltrationHeuristicPolicy(cfg.SensitiveIndicators, cfg.ExfiltrationOps, cfg.MaxExfiltrations))
	}
}
