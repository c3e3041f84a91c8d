package tools

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
)

// mathEnv holds the only names an expression can reference besides the
// functions registered in arithmetic.options.
var mathEnv = map[string]any{
	"pi": math.Pi,
	"e":  math.E,
}

var mathFuncs = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"ln":    math.Log,
	"log":   math.Log10,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"round": math.Round,
	"floor": math.Floor,
	"ceil":  math.Ceil,
}

// Evaluate computes an arithmetic expression over float64. Supported:
// + - * / % ^ and ** (right-associative power), parentheses, unary signs,
// decimal literals, the constants pi and e, and the functions sqrt, abs, ln,
// log, sin, cos, tan, round, floor and ceil.
func Evaluate(input string) (float64, error) {
	src := normalizeExpr(input)
	if src == "" {
		return 0, errors.New("empty expression")
	}

	var a arithmetic
	program, err := expr.Compile(src, a.options()...)
	if err != nil {
		return 0, fmt.Errorf("invalid expression: %w", err)
	}

	out, err := expr.Run(program, mathEnv)
	if a.err != nil {
		return 0, a.err
	}
	if err != nil {
		return 0, err
	}

	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("expression produced %T, not a number", out)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("result is not a finite number")
	}
	return v, nil
}

// normalizeExpr tolerates the phrasing planners and users send along with
// the expression itself.
func normalizeExpr(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	for _, prefix := range []string{"what is", "what's", "calculate", "compute", "evaluate", "solve"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}
	s = strings.TrimRight(s, "?= ")
	s = strings.ReplaceAll(s, "×", "*")
	s = strings.ReplaceAll(s, "÷", "/")
	// Thousands separators; no function takes more than one argument.
	return strings.ReplaceAll(s, ",", "")
}

// arithmetic compiles one expression. Integer literals become floats so
// products cannot overflow, and / and % are routed through div and mod so
// a zero divisor is reported instead of producing Inf.
type arithmetic struct {
	err error
}

func (a *arithmetic) options() []expr.Option {
	opts := []expr.Option{
		expr.Env(mathEnv),
		expr.AsFloat64(),
		expr.DisableAllBuiltins(),
		expr.Patch(floatArithmetic{}),
		expr.Function("div", a.binary(func(x, y float64) float64 { return x / y })),
		expr.Function("mod", a.binary(math.Mod)),
	}
	for name, fn := range mathFuncs {
		opts = append(opts, expr.Function(name, unary(name, fn)))
	}
	return opts
}

func (a *arithmetic) binary(fn func(x, y float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("expected 2 operands, got %d", len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		y, err := toFloat(params[1])
		if err != nil {
			return nil, err
		}
		if y == 0 {
			a.err = ErrDivisionByZero
			return nil, ErrDivisionByZero
		}
		return fn(x, y), nil
	}
}

func unary(name string, fn func(float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s takes one argument, got %d", name, len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%v is not a number", v)
	}
}

// floatArithmetic rewrites the tree before type checking.
type floatArithmetic struct{}

func (floatArithmetic) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IntegerNode:
		ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
	case *ast.BinaryNode:
		var fn string
		switch n.Operator {
		case "/":
			fn = "div"
		case "%":
			fn = "mod"
		default:
			return
		}
		ast.Patch(node, &ast.CallNode{
			Callee:    &ast.IdentifierNode{Value: fn},
			Arguments: []ast.Node{n.Left, n.Right},
		})
	}
}

// formatNumber prints v without exponent noise: integral values as integers,
// everything else rounded to ten decimal places.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	rounded := math.Round(v*1e10) / 1e10
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
