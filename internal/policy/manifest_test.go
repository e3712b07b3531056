package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest_ParsesSpecIntoDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
apiVersion: camelguard/v1
kind: PolicyManifest
metadata:
  name: test
spec:
  trustedDomains: [company.com]
  allowedPathPrefixes: [/documents/]
  rateLimits:
    send_email: 3
  exfiltrationOps: [send_email]
  maxExfiltrations: 1
`), 0o644))

	cfg, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"company.com"}, cfg.TrustedDomains)
	assert.Equal(t, 3, cfg.RateLimits["send_email"])
	assert.Equal(t, 1, cfg.MaxExfiltrations)
}

func TestLoadManifest_RejectsWrongKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind: SomethingElse\n"), 0o644))

	_, err := LoadManifest(path)
	require.Error(t, err)
}
