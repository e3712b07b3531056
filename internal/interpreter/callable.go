package interpreter

import (
	"context"

	"github.com/camelguard/camelguard/internal/capability"
)

// Callable is anything the interpreter can invoke by name: a registered
// tool, a special orchestrator-provided function such as
// query_quarantined_llm, or a test stub. Invoke returns the raw result
// value and, optionally, the capability set the result should carry by
// virtue of its origin (e.g. "this came out of the email inbox, so it is
// UNTRUSTED regardless of what arguments were passed in") — nil means the
// interpreter should rely purely on deriving capabilities from the call's
// argument variables.
type Callable interface {
	Invoke(ctx context.Context, args []any, kwargs map[string]any) (value any, originCaps *capability.Set, err error)
}

// FuncCallable adapts a plain Go function into a Callable with no declared
// origin capability, for simple/pure helper functions.
type FuncCallable func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

func (f FuncCallable) Invoke(ctx context.Context, args []any, kwargs map[string]any) (any, *capability.Set, error) {
	v, err := f(ctx, args, kwargs)
	return v, nil, err
}

// Registry resolves a function name to something callable. The tool
// registry, the dual-principal orchestrator's special functions, and test
// doubles all implement this.
type Registry interface {
	Lookup(name string) (Callable, bool)
}

// MapRegistry is the simplest Registry: a fixed name-to-Callable map.
type MapRegistry map[string]Callable

func (m MapRegistry) Lookup(name string) (Callable, bool) {
	c, ok := m[name]
	return c, ok
}

// ChainRegistry looks up a name across multiple registries in order,
// returning the first match — used to combine the tool registry with the
// orchestrator's special functions without either needing to know about
// the other.
type ChainRegistry []Registry

func (c ChainRegistry) Lookup(name string) (Callable, bool) {
	for _, r := range c {
		if fn, ok := r.Lookup(name); ok {
			return fn, true
		}
	}
	return nil, false
}
