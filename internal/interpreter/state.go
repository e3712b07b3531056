// Package interpreter validates and evaluates restricted-language programs
// produced by lang.Parse against a capability tracker and a registry of
// callable tools, enforcing the validate-before-eval gate and the
// execution state machine: Parsed -> Validated -> Evaluating ->
// {Completed, Denied, Error}.
package interpreter

// State is a point in an execution's lifecycle.
type State string

const (
	StateParsed     State = "parsed"
	StateValidated  State = "validated"
	StateEvaluating State = "evaluating"
	StateCompleted  State = "completed"
	StateDenied     State = "denied"
	StateError      State = "error"
)
