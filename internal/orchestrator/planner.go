package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/camelguard/camelguard/internal/camelerr"
	"github.com/camelguard/camelguard/internal/llm"
)

// ToolCatalogue is the subset of the tool registry the Planner is allowed to
// see: names and schemas only, never the underlying implementation or any
// data the tools might return. Grounded in camel/llm.py:PrivilegedLLM, which
// is built from the same "schema, not data" principle.
type ToolCatalogue map[string]ToolSchema

// ToolSchema mirrors registry.Schema without importing the registry
// package, so orchestrator has no dependency on the concrete tool
// implementations it is planning calls against.
type ToolSchema struct {
	Description string
	Params      map[string]string
	Returns     string
}

// Planner is the privileged principal: it only ever sees the user's request
// and the tool catalogue, and it emits a restricted-language program for the
// interpreter to run. It never sees quarantined data. Grounded in
// camel/llm.py:PrivilegedLLM.plan.
type Planner struct {
	provider llm.Provider
}

func NewPlanner(provider llm.Provider) *Planner {
	return &Planner{provider: provider}
}

// Plan asks the planning model to produce a restricted-language program
// that accomplishes query using only the tools in catalogue.
func (p *Planner) Plan(ctx context.Context, query string, catalogue ToolCatalogue) (string, error) {
	resp, err := p.provider.Complete(ctx, llm.ChatRequest{
		SystemPrompt: plannerSystemPrompt(catalogue),
		Messages: []llm.Message{
			{Role: "user", Content: query},
		},
	})
	if err != nil {
		return "", camelerr.Wrap(camelerr.KindModelFailure, "planner.Plan", err)
	}
	program := extractProgram(resp.Content)
	if strings.TrimSpace(program) == "" {
		return "", camelerr.New(camelerr.KindModelFailure, "planner.Plan", "planner returned an empty program")
	}
	return program, nil
}

// plannerSystemPrompt lists every tool's schema and the two special
// functions every planner program may additionally call
// (query_quarantined_llm, require_user_approval), followed by a single
// worked example, mirroring the system prompt camel/llm.py builds for the
// privileged model.
func plannerSystemPrompt(catalogue ToolCatalogue) string {
	var b strings.Builder
	b.WriteString("You are the planning component of a capability-aware agent runtime.\n")
	b.WriteString("You never see the contents of any document, email, or tool result — only\n")
	b.WriteString("their schemas. Respond with nothing but a program in the restricted\n")
	b.WriteString("language described below: assignments, if/else, return, and calls to the\n")
	b.WriteString("functions listed here. Loops, imports, classes, and lambdas do not exist\n")
	b.WriteString("in this language and will be rejected before anything runs.\n\n")
	b.WriteString("Available functions:\n")

	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := catalogue[name]
		b.WriteString(fmt.Sprintf("  %s(%s) -> %s\n", name, formatParams(s.Params), s.Returns))
		if s.Description != "" {
			b.WriteString(fmt.Sprintf("    %s\n", s.Description))
		}
	}
	b.WriteString("  query_quarantined_llm(prompt, data, output_schema) -> string\n")
	b.WriteString("    Ask a separate, untrusted-data-only model a question about data, and\n")
	b.WriteString("    validate its answer against output_schema (one of \"string\", \"email\",\n")
	b.WriteString("    \"filename\", \"integer\"). Its answer is always treated as untrusted,\n")
	b.WriteString("    regardless of the question.\n")
	b.WriteString("  require_user_approval(action) -> bool\n")
	b.WriteString("    Ask the human operator to approve a sensitive action before taking it.\n\n")
	b.WriteString("Example:\n")
	b.WriteString("  last_email = get_last_email()\n")
	b.WriteString("  recipient = query_quarantined_llm(\"what address should I reply to?\", last_email, \"email\")\n")
	b.WriteString("  reply = query_quarantined_llm(\"draft a one-line reply\", last_email, \"string\")\n")
	b.WriteString("  result = send_email(recipient=recipient, body=reply)\n")
	b.WriteString("  return result\n")
	return b.String()
}

func formatParams(params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, params[name]))
	}
	return strings.Join(parts, ", ")
}

// extractProgram strips a surrounding ```...``` fence if the model wrapped
// its program in one, since chat models reliably do this even when told
// not to.
func extractProgram(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) >= 2 {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
