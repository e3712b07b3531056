package interpreter

import (
	"context"
	"fmt"

	"github.com/camelguard/camelguard/internal/camelerr"
	"github.com/camelguard/camelguard/internal/capability"
	"github.com/camelguard/camelguard/internal/lang"
)

// Interpreter evaluates a single parsed, validated program against a
// capability tracker and a function registry. An Interpreter is scoped to
// one execution and is not safe for concurrent use — the concurrency
// model gives each execution its own tracker and interpreter instance.
type Interpreter struct {
	tracker  *capability.Tracker
	registry Registry
	vars     map[string]any
	state    State
}

func New(tracker *capability.Tracker, registry Registry) *Interpreter {
	return &Interpreter{
		tracker:  tracker,
		registry: registry,
		vars:     make(map[string]any),
		state:    StateParsed,
	}
}

func (it *Interpreter) State() State { return it.state }

// Seed binds name to value in the variable environment before Execute
// runs and, if caps is non-nil, assigns it in the tracker too — the
// mechanism seed_trusted/seed_untrusted use to inject a pre-labelled
// binding, matching camel/core.py:CaMeLSystem.set_trusted_data/
// set_untrusted_data. A nil caps leaves the variable unbound in the
// tracker (trusted-by-default, the same state a plain literal assignment
// produces).
func (it *Interpreter) Seed(name string, value any, caps *capability.Set) {
	it.vars[name] = value
	if caps != nil {
		it.tracker.Assign(name, caps)
	}
}

// Tracker exposes the interpreter's capability tracker for callers that
// want to inspect capability state after execution (tests, audit logging).
func (it *Interpreter) Tracker() *capability.Tracker { return it.tracker }

// Execute parses, validates, and evaluates src, returning the program's
// result (from its last expression statement or an explicit return) or a
// *camelerr.Error describing why it did not complete.
func (it *Interpreter) Execute(ctx context.Context, src string) (any, error) {
	mod, err := lang.Parse(src)
	if err != nil {
		it.state = StateError
		if fe, ok := asForbidden(err); ok {
			return nil, camelerr.Wrap(camelerr.KindParse, fe.Construct, fe)
		}
		return nil, camelerr.Wrap(camelerr.KindParse, "", err)
	}
	it.state = StateParsed

	if err := Validate(mod); err != nil {
		it.state = StateError
		return nil, err
	}
	it.state = StateValidated

	it.state = StateEvaluating
	result, err := it.execBlock(ctx, mod.Body)
	if err != nil {
		if camelerr.Is(err, camelerr.KindPolicyDenied) {
			it.state = StateDenied
		} else {
			it.state = StateError
		}
		return nil, err
	}
	it.state = StateCompleted
	return result, nil
}

func asForbidden(err error) (*lang.ForbiddenConstructError, bool) {
	fe, ok := err.(*lang.ForbiddenConstructError)
	return fe, ok
}

// controlReturn signals an executed `return` statement unwinding out of
// nested if/else blocks to the top of execBlock.
type controlReturn struct{ value any }

func (it *Interpreter) execBlock(ctx context.Context, stmts []lang.Stmt) (any, error) {
	var last any
	for _, stmt := range stmts {
		val, ret, err := it.execStmt(ctx, stmt)
		if err != nil {
			return nil, err
		}
		if ret != nil {
			return ret.value, nil
		}
		last = val
	}
	return last, nil
}

func (it *Interpreter) execStmt(ctx context.Context, stmt lang.Stmt) (any, *controlReturn, error) {
	switch s := stmt.(type) {
	case *lang.ExprStmt:
		val, err := it.evalExpr(ctx, s.Value)
		return val, nil, err
	case *lang.Assign:
		_, err := it.execAssign(ctx, s)
		return nil, nil, err
	case *lang.If:
		test, err := it.evalExpr(ctx, s.Test)
		if err != nil {
			return nil, nil, err
		}
		body := s.Orelse
		if truthy(test) {
			body = s.Body
		}
		var last any
		for _, inner := range body {
			val, ret, err := it.execStmt(ctx, inner)
			if err != nil {
				return nil, nil, err
			}
			if ret != nil {
				return nil, ret, nil
			}
			last = val
		}
		return last, nil, nil
	case *lang.Return:
		if s.Value == nil {
			return nil, &controlReturn{}, nil
		}
		val, err := it.evalExpr(ctx, s.Value)
		if err != nil {
			return nil, nil, err
		}
		return nil, &controlReturn{value: val}, nil
	default:
		return nil, nil, camelerr.New(camelerr.KindParse, stmt.Kind(), "unknown/disallowed construct")
	}
}

// execAssign mirrors the original reference interpreter's _execute_Assign:
// a Call result's capabilities are derived from whichever argument
// variables were tracked, a bare Name copies its source's capability set
// directly (same provenance, not a new derivation), and any other
// expression leaves the target unbound in the tracker.
func (it *Interpreter) execAssign(ctx context.Context, a *lang.Assign) (any, error) {
	switch v := a.Value.(type) {
	case *lang.Call:
		val, originCaps, sourceVars, err := it.evalCall(ctx, v)
		if err != nil {
			return nil, err
		}
		it.vars[a.Target] = val
		it.tracker.Derive(a.Target, sourceVars...)
		if originCaps != nil {
			if existing := it.tracker.Get(a.Target); existing != nil {
				existing.Merge(originCaps)
			} else {
				it.tracker.Assign(a.Target, originCaps)
			}
		}
		return val, nil
	case *lang.Name:
		val, err := it.evalExpr(ctx, v)
		if err != nil {
			return nil, err
		}
		it.vars[a.Target] = val
		if caps := it.tracker.Get(v.Id); caps != nil {
			copied := capability.NewSet()
			copied.Merge(caps)
			it.tracker.Assign(a.Target, copied)
		}
		return val, nil
	default:
		val, err := it.evalExpr(ctx, a.Value)
		if err != nil {
			return nil, err
		}
		it.vars[a.Target] = val
		return val, nil
	}
}

func (it *Interpreter) evalExpr(ctx context.Context, e lang.Expr) (any, error) {
	switch n := e.(type) {
	case *lang.Constant:
		switch n.ConstKind {
		case lang.ConstNone:
			return nil, nil
		case lang.ConstBool:
			return n.Bool, nil
		case lang.ConstNumber:
			return n.Number, nil
		case lang.ConstString:
			return n.Str, nil
		}
		return nil, nil
	case *lang.Name:
		val, ok := it.vars[n.Id]
		if !ok {
			return nil, camelerr.New(camelerr.KindLookup, n.Id, fmt.Sprintf("undefined variable %q", n.Id))
		}
		return val, nil
	case *lang.UnaryOp:
		operand, err := it.evalExpr(ctx, n.Operand)
		if err != nil {
			return nil, err
		}
		return evalUnary(n.Op, operand)
	case *lang.BinOp:
		left, err := it.evalExpr(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := it.evalExpr(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		return evalBinOp(n.Op, left, right)
	case *lang.BoolOp:
		return it.evalBoolOp(ctx, n)
	case *lang.Compare:
		return it.evalCompare(ctx, n)
	case *lang.Call:
		val, _, _, err := it.evalCall(ctx, n)
		return val, err
	case *lang.Attribute:
		val, err := it.evalExpr(ctx, n.Value)
		if err != nil {
			return nil, err
		}
		return evalAttribute(val, n.Attr)
	case *lang.Subscript:
		val, err := it.evalExpr(ctx, n.Value)
		if err != nil {
			return nil, err
		}
		return it.evalSubscript(ctx, val, n.Index)
	case *lang.ListExpr:
		return it.evalExprList(ctx, n.Elts)
	case *lang.TupleExpr:
		return it.evalExprList(ctx, n.Elts)
	case *lang.DictExpr:
		out := make(map[string]any, len(n.Keys))
		for i, k := range n.Keys {
			kv, err := it.evalExpr(ctx, k)
			if err != nil {
				return nil, err
			}
			ks, ok := kv.(string)
			if !ok {
				return nil, camelerr.New(camelerr.KindToolFailure, "Dict", "dict keys must be strings")
			}
			vv, err := it.evalExpr(ctx, n.Values[i])
			if err != nil {
				return nil, err
			}
			out[ks] = vv
		}
		return out, nil
	default:
		return nil, camelerr.New(camelerr.KindParse, e.Kind(), "unknown/disallowed construct")
	}
}

func (it *Interpreter) evalExprList(ctx context.Context, elts []lang.Expr) ([]any, error) {
	out := make([]any, 0, len(elts))
	for _, el := range elts {
		v, err := it.evalExpr(ctx, el)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (it *Interpreter) evalBoolOp(ctx context.Context, n *lang.BoolOp) (any, error) {
	var result any
	for i, v := range n.Values {
		val, err := it.evalExpr(ctx, v)
		if err != nil {
			return nil, err
		}
		result = val
		if n.Op == "or" && truthy(val) {
			return val, nil
		}
		if n.Op == "and" && !truthy(val) {
			return val, nil
		}
		_ = i
	}
	return result, nil
}

func (it *Interpreter) evalCompare(ctx context.Context, n *lang.Compare) (any, error) {
	left, err := it.evalExpr(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	for i, op := range n.Ops {
		right, err := it.evalExpr(ctx, n.Comparators[i])
		if err != nil {
			return nil, err
		}
		ok, err := compareOne(op, left, right)
		if err != nil {
			return nil, err
		}
		if !ok {
			return false, nil
		}
		left = right
	}
	return true, nil
}

// evalCall resolves the callee, evaluates arguments, runs the capability
// policy check, and invokes the registered function. It returns the
// result value, the function's declared origin capabilities (if any), and
// the names of any argument variables that were bound in the tracker
// (used by execAssign to derive the result's capabilities).
func (it *Interpreter) evalCall(ctx context.Context, call *lang.Call) (any, *capability.Set, []string, error) {
	funcName, err := functionName(call.Func)
	if err != nil {
		return nil, nil, nil, err
	}

	args := make([]any, 0, len(call.Args))
	argCaps := make(map[string]*capability.Set)
	var sourceVars []string
	for i, a := range call.Args {
		v, err := it.evalExpr(ctx, a)
		if err != nil {
			return nil, nil, nil, err
		}
		args = append(args, v)
		if nameExpr, ok := a.(*lang.Name); ok {
			sourceVars = append(sourceVars, nameExpr.Id)
			if caps := it.tracker.Get(nameExpr.Id); caps != nil {
				argCaps[fmt.Sprintf("arg%d", i)] = caps
				argCaps[nameExpr.Id] = caps
			}
		}
	}

	kwargs := make(map[string]any, len(call.Keywords))
	for _, kw := range call.Keywords {
		v, err := it.evalExpr(ctx, kw.Value)
		if err != nil {
			return nil, nil, nil, err
		}
		kwargs[kw.Name] = v
		if nameExpr, ok := kw.Value.(*lang.Name); ok {
			sourceVars = append(sourceVars, nameExpr.Id)
			if caps := it.tracker.Get(nameExpr.Id); caps != nil {
				argCaps[kw.Name] = caps
			}
		}
	}

	checkCtx := &capability.CheckContext{
		Op:           funcName,
		Args:         args,
		Kwargs:       kwargs,
		ArgCapsByVar: argCaps,
	}
	if ok, reason := it.tracker.Check(checkCtx); !ok {
		return nil, nil, nil, camelerr.New(camelerr.KindPolicyDenied, funcName, reason)
	}

	fn, ok := it.registry.Lookup(funcName)
	if !ok {
		return nil, nil, nil, camelerr.New(camelerr.KindLookup, funcName, fmt.Sprintf("no such function %q", funcName))
	}

	val, originCaps, err := fn.Invoke(ctx, args, kwargs)
	if err != nil {
		return nil, nil, nil, camelerr.Wrap(camelerr.KindToolFailure, funcName, err)
	}
	return val, originCaps, sourceVars, nil
}

// functionName resolves the callee expression to a dotted name, mirroring
// the original reference interpreter's _get_function_name, which recurses
// through attribute access for method-style tool dispatch.
func functionName(e lang.Expr) (string, error) {
	switch n := e.(type) {
	case *lang.Name:
		return n.Id, nil
	case *lang.Attribute:
		base, err := functionName(n.Value)
		if err != nil {
			return "", err
		}
		return base + "." + n.Attr, nil
	default:
		return "", camelerr.New(camelerr.KindParse, e.Kind(), "call target must be a name or attribute chain")
	}
}
