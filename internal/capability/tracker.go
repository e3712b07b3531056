package capability

import "fmt"

// CheckContext carries everything a Policy needs to judge an operation:
// the raw arguments as the interpreter evaluated them, and — for every
// argument that came from a tracked variable — its capability set, keyed
// by argument name (positional arguments are keyed by their source
// variable name when known, keyword arguments by their keyword).
type CheckContext struct {
	Op           string
	Args         []any
	Kwargs       map[string]any
	ArgCapsByVar map[string]*Set
}

// Policy is a pluggable predicate over an operation and its arguments. It
// must be side-effect-free with respect to the decision itself; policies
// that need session state (rate limiting, exfiltration tallies) own that
// state internally, keyed by whatever the implementation considers a
// session.
type Policy interface {
	Name() string
	Check(ctx *CheckContext, tracker *Tracker) (bool, string)
}

// Tracker is the shadow environment mapping variable names to capability
// sets, plus the ordered list of policies consulted on every operation.
// A Tracker is scoped to a single execution; it is not safe for concurrent
// use by multiple executions.
type Tracker struct {
	vars     map[string]*Set
	policies []Policy
}

// NewTracker returns an empty tracker with no bound variables or policies.
func NewTracker() *Tracker {
	return &Tracker{vars: make(map[string]*Set)}
}

// Assign binds a variable name to an explicit capability set, overwriting
// any previous binding.
func (t *Tracker) Assign(name string, caps *Set) {
	t.vars[name] = caps
}

// Get returns the capability set bound to name, or nil if the variable is
// unbound (e.g. it was assigned a bare literal with no derivation).
func (t *Tracker) Get(name string) *Set {
	return t.vars[name]
}

// Derive computes the result variable's capability set from the capability
// sets of its source variables and binds it. Source variables that are
// unbound are simply skipped — an expression built entirely from untracked
// literals leaves the result unbound too, mirroring the reference
// interpreter's behavior of only tracking capabilities once something
// tracked enters the computation.
func (t *Tracker) Derive(result string, sourceVars ...string) {
	var sources []*Set
	for _, v := range sourceVars {
		if caps := t.vars[v]; caps != nil {
			sources = append(sources, caps)
		}
	}
	if len(sources) == 0 {
		return
	}
	t.vars[result] = DeriveFrom(sources...)
}

// AddPolicy appends a policy to the end of the tracker's policy chain.
// Registration order is preserved and determines check order.
func (t *Tracker) AddPolicy(p Policy) {
	t.policies = append(t.policies, p)
}

// Policies returns the tracker's policy chain in registration order.
func (t *Tracker) Policies() []Policy {
	return append([]Policy(nil), t.policies...)
}

// Check runs every registered policy against ctx in registration order and
// stops at the first denial (P3: policy short-circuit). It returns true
// with no reason if every policy allows the operation, or false with the
// denying policy's reason otherwise.
func (t *Tracker) Check(ctx *CheckContext) (bool, string) {
	for _, p := range t.policies {
		ok, reason := p.Check(ctx, t)
		if !ok {
			if reason == "" {
				reason = fmt.Sprintf("denied by policy %q", p.Name())
			}
			return false, reason
		}
	}
	return true, ""
}
