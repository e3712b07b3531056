// Package registry implements the tool registry: named, schema-declared
// functions the interpreter may call, each carrying a declared output
// capability and an optional human-approval gate, with every registration
// checked against shadowing by a prior registration from a different
// source. Grounded in camel/tools.py:CaMeLToolRegistry and
// camel/mcp_security.py:ToolShadowingDetector.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/camelguard/camelguard/internal/approval"
	"github.com/camelguard/camelguard/internal/capability"
	"github.com/camelguard/camelguard/internal/interpreter"
)

// Schema describes a tool's call shape for the planner's benefit — it is
// never enforced by the interpreter itself (the policy engine and
// capability tracker are the enforcement layer); it exists so the
// orchestrator can hand the planner LLM a precise tool catalogue.
type Schema struct {
	Description string
	Params      map[string]string // param name -> human-readable type/description
	Returns     string
}

// Func is the actual Go implementation behind a tool binding.
type Func func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

// Binding is one registered tool.
type Binding struct {
	Name             string
	Source           string // which plugin/MCP server/package contributed this tool
	Schema           Schema
	OutputCaps       []capability.Capability
	RequiresApproval bool
	Fn               Func
}

// Registry holds every bound tool and enforces shadow detection and
// approval gating at call time. It implements interpreter.Registry so it
// can be handed straight to an Interpreter.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]*Binding
	shadow   *ShadowDetector
	oracle   approval.Oracle
}

func New(oracle approval.Oracle) *Registry {
	if oracle == nil {
		oracle = approval.AlwaysDeny{}
	}
	return &Registry{
		bindings: make(map[string]*Binding),
		shadow:   NewShadowDetector(),
		oracle:   oracle,
	}
}

// Register adds a tool binding. It fails closed: if ShadowDetector flags
// the name as already registered from a different source, the new
// binding is rejected and the previously registered one keeps serving
// calls for that name.
func (r *Registry) Register(b Binding) error {
	if b.Name == "" {
		return fmt.Errorf("tool binding must have a name")
	}
	if !r.shadow.Register(b.Name, b.Source) {
		return fmt.Errorf("tool %q rejected: already registered from a different source (shadowing attempt from %q)", b.Name, b.Source)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	bound := b
	r.bindings[b.Name] = &bound
	return nil
}

// Conflicts exposes every shadowing attempt the registry has rejected.
func (r *Registry) Conflicts() []Conflict {
	return r.shadow.Conflicts()
}

// Schemas returns the declared schema for every registered tool, for the
// orchestrator to hand to the planner.
func (r *Registry) Schemas() map[string]Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Schema, len(r.bindings))
	for name, b := range r.bindings {
		out[name] = b.Schema
	}
	return out
}

// Lookup implements interpreter.Registry.
func (r *Registry) Lookup(name string) (interpreter.Callable, bool) {
	r.mu.RLock()
	b, ok := r.bindings[name]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return boundCallable{binding: b, oracle: r.oracle}, true
}

type boundCallable struct {
	binding *Binding
	oracle  approval.Oracle
}

// Invoke gates on approval before running the tool. Denial is reported as
// a plain string result rather than an error, mirroring
// camel/tools.py:_wrap_tool, which returns "Action denied by user" so the
// planner program can branch on the outcome instead of crashing.
func (c boundCallable) Invoke(ctx context.Context, args []any, kwargs map[string]any) (any, *capability.Set, error) {
	if c.binding.RequiresApproval {
		approved, err := c.oracle.Approve(ctx, fmt.Sprintf("tool %q requests approval", c.binding.Name), c.binding.Name)
		if err != nil {
			return nil, nil, err
		}
		if !approved {
			return "Action denied by user", nil, nil
		}
	}

	val, err := c.binding.Fn(ctx, args, kwargs)
	if err != nil {
		return nil, nil, err
	}

	if len(c.binding.OutputCaps) == 0 {
		return val, nil, nil
	}
	caps := capability.NewSet()
	for _, cap_ := range c.binding.OutputCaps {
		caps.Add(cap_)
	}
	return val, caps, nil
}
