package interpreter

import (
	"fmt"

	"github.com/camelguard/camelguard/internal/camelerr"
	"github.com/camelguard/camelguard/internal/lang"
)

// maxDepth bounds recursion in both the AST walk and the evaluator,
// guarding against pathological nesting in a planner-generated program.
const maxDepth = 64

// Validate performs the validate-before-eval gate: every node the parser
// produced is already grammar-restricted by construction, but Validate
// re-walks the tree as a second, independent check — the same belt-and-
// suspenders structure the original reference interpreter uses, where
// parsing (full Python grammar) and validation (the restricted node
// allowlist) are deliberately separate passes — and additionally bounds
// nesting depth, which the grammar alone does not limit.
func Validate(mod *lang.Module) error {
	for _, stmt := range mod.Body {
		if err := validateStmt(stmt, 0); err != nil {
			return err
		}
	}
	return nil
}

func tooDeep(depth int, line int) error {
	return camelerr.New(camelerr.KindParse, "", fmt.Sprintf("line %d: expression nesting exceeds limit of %d", line, maxDepth))
}

func validateStmt(s lang.Stmt, depth int) error {
	if depth > maxDepth {
		return tooDeep(depth, s.Pos())
	}
	switch n := s.(type) {
	case *lang.ExprStmt:
		return validateExpr(n.Value, depth+1)
	case *lang.Assign:
		if n.Target == "" {
			return camelerr.New(camelerr.KindParse, "Assign", "assignment target must be a simple name")
		}
		return validateExpr(n.Value, depth+1)
	case *lang.If:
		if err := validateExpr(n.Test, depth+1); err != nil {
			return err
		}
		for _, st := range n.Body {
			if err := validateStmt(st, depth+1); err != nil {
				return err
			}
		}
		for _, st := range n.Orelse {
			if err := validateStmt(st, depth+1); err != nil {
				return err
			}
		}
		return nil
	case *lang.Return:
		if n.Value == nil {
			return nil
		}
		return validateExpr(n.Value, depth+1)
	default:
		return camelerr.New(camelerr.KindParse, s.Kind(), "unknown/disallowed construct")
	}
}

func validateExpr(e lang.Expr, depth int) error {
	if depth > maxDepth {
		return tooDeep(depth, e.Pos())
	}
	switch n := e.(type) {
	case *lang.Name, *lang.Constant:
		return nil
	case *lang.UnaryOp:
		return validateExpr(n.Operand, depth+1)
	case *lang.BinOp:
		if err := validateExpr(n.Left, depth+1); err != nil {
			return err
		}
		return validateExpr(n.Right, depth+1)
	case *lang.BoolOp:
		for _, v := range n.Values {
			if err := validateExpr(v, depth+1); err != nil {
				return err
			}
		}
		return nil
	case *lang.Compare:
		if err := validateExpr(n.Left, depth+1); err != nil {
			return err
		}
		for _, c := range n.Comparators {
			if err := validateExpr(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	case *lang.Call:
		if err := validateExpr(n.Func, depth+1); err != nil {
			return err
		}
		for _, a := range n.Args {
			if err := validateExpr(a, depth+1); err != nil {
				return err
			}
		}
		for _, kw := range n.Keywords {
			if err := validateExpr(kw.Value, depth+1); err != nil {
				return err
			}
		}
		return nil
	case *lang.Attribute:
		return validateExpr(n.Value, depth+1)
	case *lang.Subscript:
		if err := validateExpr(n.Value, depth+1); err != nil {
			return err
		}
		return validateExpr(n.Index, depth+1)
	case *lang.Slice:
		if n.Lower != nil {
			if err := validateExpr(n.Lower, depth+1); err != nil {
				return err
			}
		}
		if n.Upper != nil {
			return validateExpr(n.Upper, depth+1)
		}
		return nil
	case *lang.ListExpr:
		for _, el := range n.Elts {
			if err := validateExpr(el, depth+1); err != nil {
				return err
			}
		}
		return nil
	case *lang.TupleExpr:
		for _, el := range n.Elts {
			if err := validateExpr(el, depth+1); err != nil {
				return err
			}
		}
		return nil
	case *lang.DictExpr:
		for i, k := range n.Keys {
			if err := validateExpr(k, depth+1); err != nil {
				return err
			}
			if err := validateExpr(n.Values[i], depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return camelerr.New(camelerr.KindParse, e.Kind(), "unknown/disallowed construct")
	}
}
