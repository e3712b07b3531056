package orchestrator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/camelguard/camelguard/internal/approval"
	"github.com/camelguard/camelguard/internal/audit"
	"github.com/camelguard/camelguard/internal/camelerr"
	"github.com/camelguard/camelguard/internal/capability"
	"github.com/camelguard/camelguard/internal/interpreter"
	"github.com/camelguard/camelguard/internal/llm"
	"github.com/camelguard/camelguard/internal/policy"
	"github.com/camelguard/camelguard/internal/registry"
)

// System wires a Planner, an Extractor, a tool registry, and a capability
// tracker into the single entry point an operator actually calls: give it a
// user query, get back either a result or a *camelerr.Error explaining why
// the run was refused. Grounded in camel/core.py:CaMeLSystem, which plays
// the same role for the Python reference.
type System struct {
	planner   *Planner
	extractor *Extractor
	tools     *registry.Registry
	approval  approval.Oracle
	auditSink *audit.Sink
	policyCfg policy.DefaultConfig
}

// Config bundles everything needed to construct a System.
type Config struct {
	PlannerProvider   llm.Provider
	ExtractorProvider llm.Provider
	Tools             *registry.Registry
	Approval          approval.Oracle
	Audit             *audit.Sink
	Policies          policy.DefaultConfig
	Log               zerolog.Logger
}

func NewSystem(cfg Config) *System {
	oracle := cfg.Approval
	if oracle == nil {
		oracle = approval.AlwaysDeny{}
	}
	return &System{
		planner:   NewPlanner(cfg.PlannerProvider),
		extractor: NewExtractor(cfg.ExtractorProvider),
		tools:     cfg.Tools,
		approval:  oracle,
		auditSink: cfg.Audit,
		policyCfg: cfg.Policies,
	}
}

// Seed is a variable binding injected into an execution's environment
// before its program runs, letting a caller reproduce a trust boundary
// mid-program (a pre-labelled argument, a value handed in out of band)
// rather than only at a tool call's return. Grounded in
// camel/core.py:CaMeLSystem.set_trusted_data/set_untrusted_data, named
// seed_trusted/seed_untrusted in spec.md §6's programmatic entry points.
type Seed struct {
	Name  string
	Value any
	Caps  *capability.Set
}

// SeedTrusted seeds name with value and no capabilities: the caller
// vouches for it directly, the same trust a literal argument carries.
// Mirrors camel/core.py:CaMeLSystem.set_trusted_data.
func SeedTrusted(name string, value any) Seed {
	return Seed{Name: name, Value: value}
}

// SeedUntrusted seeds name with value carrying an UNTRUSTED capability
// attributed to source. Mirrors camel/core.py:CaMeLSystem.set_untrusted_data.
func SeedUntrusted(name string, value any, source string) Seed {
	caps := capability.NewSet()
	caps.Add(capability.New(capability.Untrusted, source))
	return Seed{Name: name, Value: value, Caps: caps}
}

// newExecution builds the tracker, registry, and interpreter one execution
// needs and applies seeds, matching the concurrency model of one tracker
// per execution: runs never share taint state with one another.
func (s *System) newExecution(seeds []Seed) *interpreter.Interpreter {
	tracker := capability.NewTracker()
	policy.RegisterDefaults(tracker, s.policyCfg)

	reg := ChainRegistryFrom(s.tools, SpecialFunctions(s.extractor, s.approval))
	interp := interpreter.New(tracker, reg)
	for _, seed := range seeds {
		interp.Seed(seed.Name, seed.Value, seed.Caps)
	}
	return interp
}

// Execute runs one end-to-end planner -> restricted-program -> interpreter
// cycle for query, optionally seeding variables into the program's
// environment before it runs.
func (s *System) Execute(ctx context.Context, query string, seeds ...Seed) (any, error) {
	interp := s.newExecution(seeds)

	program, err := s.planner.Plan(ctx, query, catalogueFrom(s.tools))
	if err != nil {
		s.record(ctx, audit.SeverityCritical, "plan", err, query)
		return nil, err
	}

	result, err := interp.Execute(ctx, program)
	if err != nil {
		severity := audit.SeverityWarning
		if camelerr.Is(err, camelerr.KindPolicyDenied) {
			severity = audit.SeverityCritical
		}
		s.record(ctx, severity, "execute", err, query)
		return nil, err
	}
	return result, nil
}

// Run executes program directly against the tool registry and special
// functions, bypassing the Planner — for callers that already have a
// program in hand (tests, the CLI's capability-trace demo, spec.md §8's
// end-to-end scenarios) and want to drive the interpreter/tracker/policy
// pipeline without a live planning model. It returns the program's result
// alongside the Tracker so the caller can inspect the capability labels a
// seeded or derived variable ended up with.
func (s *System) Run(ctx context.Context, program string, seeds ...Seed) (any, *capability.Tracker, error) {
	interp := s.newExecution(seeds)

	result, err := interp.Execute(ctx, program)
	if err != nil {
		severity := audit.SeverityWarning
		if camelerr.Is(err, camelerr.KindPolicyDenied) {
			severity = audit.SeverityCritical
		}
		s.record(ctx, severity, "execute", err, program)
		return nil, interp.Tracker(), err
	}
	return result, interp.Tracker(), nil
}

func (s *System) record(ctx context.Context, severity audit.Severity, op string, err error, subject string) {
	if s.auditSink == nil {
		return
	}
	s.auditSink.Record(ctx, audit.Event{
		Severity: severity,
		Op:       op,
		Reason:   err.Error(),
		Subject:  subject,
	})
}

// ChainRegistryFrom combines the tool registry with any number of
// additional interpreter.Registry sources (the orchestrator's special
// functions, in particular) into one interpreter.Registry.
func ChainRegistryFrom(tools interpreter.Registry, extras ...interpreter.Registry) interpreter.Registry {
	chain := make(interpreter.ChainRegistry, 0, len(extras)+1)
	chain = append(chain, tools)
	chain = append(chain, extras...)
	return chain
}

// catalogueFrom converts a tool registry's schemas into the ToolCatalogue
// shape the Planner consumes, keeping the orchestrator package's public
// surface decoupled from the concrete registry.Schema type.
func catalogueFrom(tools *registry.Registry) ToolCatalogue {
	schemas := tools.Schemas()
	catalogue := make(ToolCatalogue, len(schemas))
	for name, s := range schemas {
		catalogue[name] = ToolSchema{
			Description: s.Description,
			Params:      s.Params,
			Returns:     s.Returns,
		}
	}
	return catalogue
}
