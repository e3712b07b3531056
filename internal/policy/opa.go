package policy

import (
	"context"

	"github.com/camelguard/camelguard/internal/capability"
	"github.com/camelguard/camelguard/pkg/opa"
)

// OPARegoPolicy adapts an OPA Rego policy bundle into a capability.Policy,
// so a declarative policy can sit in the same chain as the Go-native
// reference policies. Grounded in pkg/opa/engine.go, which this runtime
// keeps as its Rego evaluation engine; only the input shape is new.
type OPARegoPolicy struct {
	engine     *opa.Engine
	policyPath string
}

func NewOPARegoPolicy(engine *opa.Engine, policyPath string) *OPARegoPolicy {
	if policyPath == "" {
		policyPath = "default"
	}
	return &OPARegoPolicy{engine: engine, policyPath: policyPath}
}

func (p *OPARegoPolicy) Name() string { return "OPARegoPolicy" }

func (p *OPARegoPolicy) Check(ctx *capability.CheckContext, tracker *capability.Tracker) (bool, string) {
	if p.engine == nil || !p.engine.Ready() {
		return true, ""
	}

	params := make(map[string]any, len(ctx.Kwargs))
	for k, v := range ctx.Kwargs {
		params[k] = v
	}

	input := &opa.EvaluationInput{
		Agent: opa.AgentContext{ID: "camel-interpreter"},
		Tool: &opa.ToolContext{
			Name:       ctx.Op,
			Parameters: params,
		},
	}

	decision, err := p.engine.Evaluate(context.Background(), p.policyPath, input)
	if err != nil {
		return false, "OPA policy evaluation failed: " + err.Error()
	}
	if !decision.Allow {
		if len(decision.Reasons) > 0 {
			return false, decision.Reasons[0]
		}
		return false, "denied by OPA policy " + p.policyPath
	}
	return true, ""
}
