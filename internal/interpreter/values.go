package interpreter

import (
	"context"
	"fmt"

	"github.com/camelguard/camelguard/internal/camelerr"
	"github.com/camelguard/camelguard/internal/lang"
)

// truthy implements the grammar's notion of a boolean-context value:
// nil, false, zero, and empty strings/collections are falsy; everything
// else is truthy — matching Python's truthiness rules the planner's
// generated programs are written against.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func evalUnary(op string, v any) (any, error) {
	switch op {
	case "not":
		return !truthy(v), nil
	case "-":
		n, ok := v.(float64)
		if !ok {
			return nil, camelerr.New(camelerr.KindToolFailure, "UnaryOp", "unary - requires a number")
		}
		return -n, nil
	case "+":
		n, ok := v.(float64)
		if !ok {
			return nil, camelerr.New(camelerr.KindToolFailure, "UnaryOp", "unary + requires a number")
		}
		return n, nil
	default:
		return nil, camelerr.New(camelerr.KindParse, "UnaryOp", fmt.Sprintf("unknown unary operator %q", op))
	}
}

func evalBinOp(op string, left, right any) (any, error) {
	if op == "+" {
		if ls, ok := left.(string); ok {
			rs, ok := right.(string)
			if !ok {
				return nil, camelerr.New(camelerr.KindToolFailure, "BinOp", "cannot concatenate string with non-string")
			}
			return ls + rs, nil
		}
		if la, ok := left.([]any); ok {
			ra, ok := right.([]any)
			if !ok {
				return nil, camelerr.New(camelerr.KindToolFailure, "BinOp", "cannot concatenate list with non-list")
			}
			out := make([]any, 0, len(la)+len(ra))
			out = append(out, la...)
			out = append(out, ra...)
			return out, nil
		}
	}

	ln, lok := left.(float64)
	rn, rok := right.(float64)
	if !lok || !rok {
		return nil, camelerr.New(camelerr.KindToolFailure, "BinOp", fmt.Sprintf("operator %q requires numeric operands", op))
	}
	switch op {
	case "+":
		return ln + rn, nil
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/":
		if rn == 0 {
			return nil, camelerr.New(camelerr.KindToolFailure, "BinOp", "division by zero")
		}
		return ln / rn, nil
	default:
		return nil, camelerr.New(camelerr.KindParse, "BinOp", fmt.Sprintf("unknown binary operator %q", op))
	}
}

func compareOne(op string, left, right any) (bool, error) {
	if op == "==" {
		return valuesEqual(left, right), nil
	}
	if op == "!=" {
		return !valuesEqual(left, right), nil
	}

	ln, lok := left.(float64)
	rn, rok := right.(float64)
	if lok && rok {
		return numericCompare(op, ln, rn)
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		return stringCompare(op, ls, rs)
	}
	return false, camelerr.New(camelerr.KindToolFailure, "Compare", fmt.Sprintf("operator %q requires comparable operands of the same type", op))
}

func numericCompare(op string, l, r float64) (bool, error) {
	switch op {
	case "<":
		return l < r, nil
	case "<=":
		return l <= r, nil
	case ">":
		return l > r, nil
	case ">=":
		return l >= r, nil
	}
	return false, camelerr.New(camelerr.KindParse, "Compare", fmt.Sprintf("unknown comparison operator %q", op))
}

func stringCompare(op string, l, r string) (bool, error) {
	switch op {
	case "<":
		return l < r, nil
	case "<=":
		return l <= r, nil
	case ">":
		return l > r, nil
	case ">=":
		return l >= r, nil
	}
	return false, camelerr.New(camelerr.KindParse, "Compare", fmt.Sprintf("unknown comparison operator %q", op))
}

func valuesEqual(l, r any) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	switch lv := l.(type) {
	case float64:
		rv, ok := r.(float64)
		return ok && lv == rv
	case string:
		rv, ok := r.(string)
		return ok && lv == rv
	case bool:
		rv, ok := r.(bool)
		return ok && lv == rv
	default:
		return false
	}
}

func evalAttribute(v any, attr string) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, camelerr.New(camelerr.KindLookup, attr, "attribute access requires an object value")
	}
	val, ok := m[attr]
	if !ok {
		return nil, camelerr.New(camelerr.KindLookup, attr, fmt.Sprintf("no such attribute %q", attr))
	}
	return val, nil
}

func (it *Interpreter) evalSubscript(ctx context.Context, v any, indexExpr lang.Expr) (any, error) {
	if sl, ok := indexExpr.(*lang.Slice); ok {
		return it.evalSlice(ctx, v, sl)
	}
	idx, err := it.evalExpr(ctx, indexExpr)
	if err != nil {
		return nil, err
	}
	switch coll := v.(type) {
	case []any:
		i, err := indexOf(idx, len(coll))
		if err != nil {
			return nil, err
		}
		return coll[i], nil
	case string:
		i, err := indexOf(idx, len(coll))
		if err != nil {
			return nil, err
		}
		return string(coll[i]), nil
	case map[string]any:
		key, ok := idx.(string)
		if !ok {
			return nil, camelerr.New(camelerr.KindLookup, "Subscript", "map keys must be strings")
		}
		val, ok := coll[key]
		if !ok {
			return nil, camelerr.New(camelerr.KindLookup, key, fmt.Sprintf("no such key %q", key))
		}
		return val, nil
	default:
		return nil, camelerr.New(camelerr.KindToolFailure, "Subscript", "value is not subscriptable")
	}
}

func indexOf(idx any, length int) (int, error) {
	n, ok := idx.(float64)
	if !ok {
		return 0, camelerr.New(camelerr.KindLookup, "Subscript", "index must be a number")
	}
	i := int(n)
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, camelerr.New(camelerr.KindLookup, "Subscript", "index out of range")
	}
	return i, nil
}

func (it *Interpreter) evalSlice(ctx context.Context, v any, sl *lang.Slice) (any, error) {
	length, err := sliceable(v)
	if err != nil {
		return nil, err
	}
	lower, err := sliceBound(ctx, it, sl.Lower, 0, length)
	if err != nil {
		return nil, err
	}
	upper, err := sliceBound(ctx, it, sl.Upper, length, length)
	if err != nil {
		return nil, err
	}
	if lower > upper {
		lower = upper
	}
	switch coll := v.(type) {
	case []any:
		return append([]any{}, coll[lower:upper]...), nil
	case string:
		return coll[lower:upper], nil
	default:
		return nil, camelerr.New(camelerr.KindToolFailure, "Slice", "value is not sliceable")
	}
}

func sliceable(v any) (int, error) {
	switch coll := v.(type) {
	case []any:
		return len(coll), nil
	case string:
		return len(coll), nil
	default:
		return 0, camelerr.New(camelerr.KindToolFailure, "Slice", "value is not sliceable")
	}
}

func sliceBound(ctx context.Context, it *Interpreter, e lang.Expr, def, length int) (int, error) {
	if e == nil {
		return clamp(def, length), nil
	}
	v, err := it.evalExpr(ctx, e)
	if err != nil {
		return 0, err
	}
	n, ok := v.(float64)
	if !ok {
		return 0, camelerr.New(camelerr.KindLookup, "Slice", "slice bounds must be numbers")
	}
	i := int(n)
	if i < 0 {
		i += length
	}
	return clamp(i, length), nil
}

func clamp(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}
