package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is a declarative policy document for a single deployment,
// grounded in ArangoGutierrez-agent-identity-protocol/proxy/pkg/policy/
// engine.go's agent.yaml shape (apiVersion/kind/metadata/spec), adapted
// from "allowed/denied tools" to the tunables DefaultConfig needs.
//
// Example:
//
//	apiVersion: camelguard/v1
//	kind: PolicyManifest
//	metadata:
//	  name: production
//	spec:
//	  trustedDomains: [company.com, trusted-partner.com]
//	  allowedPathPrefixes: [/documents/, /shared/]
//	  rateLimits:
//	    send_email: 5
//	  denyPatterns:
//	    send_email: ["wire transfer", "bank account"]
//	  exfiltrationOps: [send_email, http_post, create_followup_task]
//	  maxExfiltrations: 2
type Manifest struct {
	APIVersion string         `yaml:"apiVersion"`
	Kind       string         `yaml:"kind"`
	Metadata   ManifestMeta   `yaml:"metadata"`
	Spec       ManifestSpec   `yaml:"spec"`
}

type ManifestMeta struct {
	Name string `yaml:"name"`
}

type ManifestSpec struct {
	TrustedDomains      []string            `yaml:"trustedDomains"`
	AllowedPathPrefixes []string            `yaml:"allowedPathPrefixes"`
	RateLimits          map[string]int      `yaml:"rateLimits"`
	DenyPatterns        map[string][]string `yaml:"denyPatterns"`
	ExfiltrationOps     []string            `yaml:"exfiltrationOps"`
	SensitiveIndicators []string            `yaml:"sensitiveIndicators"`
	MaxExfiltrations    int                 `yaml:"maxExfiltrations"`
}

// LoadManifest reads and parses a policy manifest file into a
// DefaultConfig ready for RegisterDefaults.
func LoadManifest(path string) (DefaultConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig{}, fmt.Errorf("failed to read policy manifest %q: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return DefaultConfig{}, fmt.Errorf("failed to parse policy manifest %q: %w", path, err)
	}
	if m.Kind != "" && m.Kind != "PolicyManifest" {
		return DefaultConfig{}, fmt.Errorf("policy manifest %q: unexpected kind %q, want PolicyManifest", path, m.Kind)
	}

	return DefaultConfig{
		TrustedDomains:      m.Spec.TrustedDomains,
		AllowedPathPrefixes: m.Spec.AllowedPathPrefixes,
		RateLimits:          m.Spec.RateLimits,
		DenyPatterns:        m.Spec.DenyPatterns,
		ExfiltrationOps:     m.Spec.ExfiltrationOps,
		SensitiveIndicators: m.Spec.SensitiveIndicators,
		MaxExfiltrations:    m.Spec.MaxExfiltrations,
	}, nil
}
