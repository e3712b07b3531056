package tools

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
)

// NetworkTool mirrors camel/tools.py:NetworkTool. Both operations are
// gated behind approval by their registry.Binding, since outbound network
// calls are a prime exfiltration vector for a prompt-injected planner.
// Outbound calls are additionally paced by a token bucket, independent of
// the capability-policy layer, the way a real HTTP client would throttle
// itself against a downstream service regardless of who is asking.
type NetworkTool struct {
	allowedDomains []string
	limiter        *rate.Limiter
}

// NewNetworkTool builds a tool that permits up to ratePerSecond outbound
// calls per second (burst 1). ratePerSecond <= 0 defaults to 5/s.
func NewNetworkTool(allowedDomains []string, ratePerSecond float64) *NetworkTool {
	if len(allowedDomains) == 0 {
		allowedDomains = []string{"api.company.com", "trusted-service.com"}
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	return &NetworkTool{
		allowedDomains: allowedDomains,
		limiter:        rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

func (t *NetworkTool) isAllowed(url string) bool {
	for _, domain := range t.allowedDomains {
		if strings.Contains(url, domain) {
			return true
		}
	}
	return false
}

func (t *NetworkTool) HTTPGet(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	if !t.limiter.Allow() {
		return "BLOCKED: outbound call rate exceeded", nil
	}
	url := stringArg(args, kwargs, 0, "url", "")
	status := "BLOCKED"
	if t.isAllowed(url) {
		status = "OK"
	}
	return fmt.Sprintf("Response from %s: %s", url, status), nil
}

func (t *NetworkTool) HTTPPost(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	if !t.limiter.Allow() {
		return "BLOCKED: outbound call rate exceeded", nil
	}
	url := stringArg(args, kwargs, 0, "url", "")
	if t.isAllowed(url) {
		return fmt.Sprintf("Posted to %s: Success", url), nil
	}
	return "BLOCKED: Domain not allowed", nil
}
