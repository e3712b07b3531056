// Package orchestrator implements the dual-principal protocol: a
// privileged Planner that only ever sees tool schemas and emits restricted
// -language programs, and a quarantined Extractor that sees untrusted data
// and may only return a scalar validated against one of a small set of
// schemas. Grounded in camel/llm.py:PrivilegedLLM/QuarantinedLLM and
// camel/core.py:CaMeLSystem.
package orchestrator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/camelguard/camelguard/internal/camelerr"
)

// Schema names the shape an extracted value must conform to. Email,
// String, and Filename are grounded directly in
// camel/llm.py:QuarantinedLLM._validate_output; Integer is an addition
// this runtime's grammar needs that the Python reference did not have.
type Schema string

const (
	SchemaEmail    Schema = "email"
	SchemaString   Schema = "string"
	SchemaFilename Schema = "filename"
	SchemaInteger  Schema = "integer"
)

// maxStringLength mirrors the reference implementation's 1000-character
// ceiling on free-form extracted strings.
const maxStringLength = 1000

// forbiddenFilenameChars mirrors the reference implementation's rejected
// path/filename metacharacters.
const forbiddenFilenameChars = `<>:"/\|?*`

// Validate checks output against schema, returning a *camelerr.Error with
// KindSchemaViolation describing the first mismatch found.
func Validate(schema Schema, output string) error {
	switch schema {
	case SchemaEmail:
		if !strings.Contains(output, "@") || !strings.Contains(output, ".") {
			return violation(schema, output, "not a valid email address")
		}
		return nil
	case SchemaString:
		if len(output) > maxStringLength {
			return violation(schema, output, fmt.Sprintf("exceeds maximum length of %d characters", maxStringLength))
		}
		return nil
	case SchemaFilename:
		if strings.ContainsAny(output, forbiddenFilenameChars) {
			return violation(schema, output, "contains forbidden filename characters")
		}
		return nil
	case SchemaInteger:
		if _, err := strconv.Atoi(strings.TrimSpace(output)); err != nil {
			return violation(schema, output, "not a valid integer")
		}
		return nil
	default:
		return violation(schema, output, "unknown extractor schema")
	}
}

func violation(schema Schema, output, reason string) error {
	return camelerr.New(camelerr.KindSchemaViolation, string(schema), reason)
}
