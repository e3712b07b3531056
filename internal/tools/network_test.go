package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkTool_HTTPGet_AllowsTrustedDomain(t *testing.T) {
	net := NewNetworkTool(nil, 0)
	val, err := net.HTTPGet(context.Background(), []any{"https://api.company.com/status"}, nil)
	require.NoError(t, err)
	assert.Contains(t, val.(string), "OK")
}

func TestNetworkTool_HTTPGet_BlocksUnlistedDomain(t *testing.T) {
	net := NewNetworkTool(nil, 0)
	val, err := net.HTTPGet(context.Background(), []any{"https://attacker.com/exfil"}, nil)
	require.NoError(t, err)
	assert.Contains(t, val.(string), "BLOCKED")
}

func TestNetworkTool_HTTPGet_DeniesOnceOutboundRateExceeded(t *testing.T) {
	net := NewNetworkTool(nil, 1)

	first, err := net.HTTPGet(context.Background(), []any{"https://api.company.com/status"}, nil)
	require.NoError(t, err)
	assert.Contains(t, first.(string), "OK")

	second, err := net.HTTPGet(context.Background(), []any{"https://api.company.com/status"}, nil)
	require.NoError(t, err)
	assert.Contains(t, second.(string), "rate exceeded")
}
