package orchestrator

import (
	"context"
	"fmt"

	"github.com/camelguard/camelguard/internal/approval"
	"github.com/camelguard/camelguard/internal/capability"
	"github.com/camelguard/camelguard/internal/interpreter"
)

// SpecialFunctions builds the two functions every planner program may call
// beyond the registered tools: query_quarantined_llm and
// require_user_approval. They are not tools — they have no Schema entry in
// the tool registry's catalogue and no shadowing concerns — so they are
// wired into the interpreter as their own interpreter.Registry, chained
// alongside the tool registry via interpreter.ChainRegistry.
func SpecialFunctions(extractor *Extractor, oracle approval.Oracle) interpreter.MapRegistry {
	return interpreter.MapRegistry{
		"query_quarantined_llm": quarantinedLLMCall{extractor: extractor},
		"require_user_approval": requireApprovalCall{oracle: oracle},
	}
}

// quarantinedLLMCall invokes the Extractor against the caller-chosen output
// schema and always stamps its output UNTRUSTED, regardless of the
// capabilities of its arguments — the whole point of routing data through a
// quarantined model is that its answer carries the taint of "came out of an
// LLM that read untrusted data," not the taint of whatever was passed in.
// Grounded in camel/core.py:_query_quarantined_llm(prompt, data,
// output_schema) and camel/llm.py:QuarantinedLLM.query.
type quarantinedLLMCall struct {
	extractor *Extractor
}

func (q quarantinedLLMCall) Invoke(ctx context.Context, args []any, kwargs map[string]any) (any, *capability.Set, error) {
	prompt, _ := stringPositional(args, kwargs, 0, "prompt")
	data, _ := stringPositional(args, kwargs, 1, "data")
	schemaName, _ := stringPositional(args, kwargs, 2, "output_schema")
	schema, err := parseSchema(schemaName)
	if err != nil {
		return nil, nil, err
	}

	answer, err := q.extractor.Query(ctx, prompt, data, schema)
	if err != nil {
		return nil, nil, err
	}

	caps := capability.NewSet()
	caps.Add(capability.New(capability.Untrusted, "quarantined_llm"))
	return answer, caps, nil
}

// parseSchema maps the output_schema argument query_quarantined_llm was
// called with onto one of the declared Schema constants, defaulting to
// SchemaString when the planner omitted it (matching the reference's own
// "string" default) and rejecting anything else outright — a planner
// program cannot launder a free-form string into a schema-validated email
// or filename just by misspelling the schema name.
func parseSchema(name string) (Schema, error) {
	switch Schema(name) {
	case "":
		return SchemaString, nil
	case SchemaEmail, SchemaString, SchemaFilename, SchemaInteger:
		return Schema(name), nil
	default:
		return "", fmt.Errorf("query_quarantined_llm: unknown output_schema %q", name)
	}
}

// requireApprovalCall asks the approval oracle whether action may proceed,
// returning a plain bool the planner program can branch on.
type requireApprovalCall struct {
	oracle approval.Oracle
}

func (r requireApprovalCall) Invoke(ctx context.Context, args []any, kwargs map[string]any) (any, *capability.Set, error) {
	action, _ := stringPositional(args, kwargs, 0, "action")
	approved, err := r.oracle.Approve(ctx, fmt.Sprintf("planner requests approval for: %s", action), action)
	if err != nil {
		return nil, nil, err
	}
	return approved, nil, nil
}

// stringPositional reads an argument either by position or, failing that,
// by keyword name, coercing it to a string.
func stringPositional(args []any, kwargs map[string]any, pos int, name string) (string, bool) {
	if pos < len(args) {
		if s, ok := args[pos].(string); ok {
			return s, true
		}
	}
	if v, ok := kwargs[name]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}
