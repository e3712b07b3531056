package interpreter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camelguard/camelguard/internal/lang"
)

func TestValidate_AcceptsRestrictedProgram(t *testing.T) {
	mod, err := lang.Parse("x = get_document(name=\"a\")\nif x:\n    return x\n")
	require.NoError(t, err)
	assert.NoError(t, Validate(mod))
}

func TestValidate_RejectsExcessiveNesting(t *testing.T) {
	var sb strings.Builder
	depth := maxDepth + 5
	sb.WriteString("x = ")
	for i := 0; i < depth; i++ {
		sb.WriteString("-")
	}
	sb.WriteString("1\n")

	mod, err := lang.Parse(sb.String())
	require.NoError(t, err)
	assert.Error(t, Validate(mod))
}
