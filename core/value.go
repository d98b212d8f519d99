package lazo

import (
	"math"
	"strconv"
	"strings"
)

type ValueKind int

const (
	ValNumber ValueKind = iota
	ValString
	ValBool
	ValSymbol
	ValList
	ValExpr
	ValFn
	ValNull
)

// Builtin is a function implemented in Go. It receives its arguments
// unevaluated together with the caller's scope, and decides for itself which
// arguments to evaluate and when.
type Builtin func(args []Value, scope Scope) (Value, error)

// Function is either a built-in (Native set) or a user-defined closure.
type Function struct {
	Name   string
	Native Builtin
	Params []Value
	Body   []Value
}

func (f *Function) IsBuiltin() bool {
	return f.Native != nil
}

type Value struct {
	Kind   ValueKind
	Num    float64
	Str    string
	Bool   bool
	Quoted bool // symbol written as 'name; never resolved against a scope
	Elems  []Value
	Fn     *Function
}

func NumberVal(n float64) Value { return Value{Kind: ValNumber, Num: n} }
func StringVal(s string) Value  { return Value{Kind: ValString, Str: s} }
func BoolVal(b bool) Value      { return Value{Kind: ValBool, Bool: b} }
func SymbolVal(s string) Value  { return Value{Kind: ValSymbol, Str: s} }
func NullVal() Value            { return Value{Kind: ValNull} }

func QuotedSymbolVal(s string) Value {
	return Value{Kind: ValSymbol, Str: s, Quoted: true}
}

func ListVal(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: ValList, Elems: elems}
}

func ExprVal(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: ValExpr, Elems: elems}
}

func BuiltinVal(name string, fn Builtin) Value {
	return Value{Kind: ValFn, Fn: &Function{Name: name, Native: fn}}
}

func LambdaVal(params, body []Value) Value {
	return Value{Kind: ValFn, Fn: &Function{Params: params, Body: body}}
}

// String renders the canonical textual form. Parsing the rendering of a parsed
// value yields a structurally equal value.
func (v Value) String() string {
	switch v.Kind {
	case ValNumber:
		return formatNumber(v.Num)
	case ValString:
		return `"` + v.Str + `"`
	case ValBool:
		return strconv.FormatBool(v.Bool)
	case ValSymbol:
		if v.Quoted {
			return "'" + v.Str
		}
		return v.Str
	case ValList:
		return "[" + joinValues(v.Elems) + "]"
	case ValExpr:
		return "(" + joinValues(v.Elems) + ")"
	case ValFn:
		if v.Fn.IsBuiltin() {
			return "function(" + v.Fn.Name + ")"
		}
		return "(lambda (" + joinValues(v.Fn.Params) + ") " + joinValues(v.Fn.Body) + ")"
	case ValNull:
		return "null"
	default:
		return "<unknown>"
	}
}

// KindName is the type name reported by the type built-in.
func (v Value) KindName() string {
	switch v.Kind {
	case ValNumber:
		return "number"
	case ValString:
		return "string"
	case ValBool:
		return "bool"
	case ValSymbol:
		return "symbol"
	case ValList:
		return "list"
	case ValExpr:
		return "expr"
	case ValFn:
		return "function"
	case ValNull:
		return "null"
	default:
		return "unknown"
	}
}

func joinValues(vs []Value) string {
	parts := make([]string, len(vs))
	for i, e := range vs {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "NaN"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// --- Coercions ---
//
// The coercions are total: every variant maps to some result, and built-ins
// rely on that instead of reporting type mismatches.

func (v Value) AsNumber() float64 {
	switch v.Kind {
	case ValNumber:
		return v.Num
	case ValString, ValSymbol:
		if n, ok := parseNumber(strings.TrimSpace(v.Str)); ok {
			return n
		}
		return 0
	case ValBool:
		if v.Bool {
			return 1
		}
		return 0
	case ValList, ValExpr:
		if len(v.Elems) == 0 {
			return 0
		}
		return v.Elems[0].AsNumber()
	default:
		return 0
	}
}

func (v Value) AsString() string {
	switch v.Kind {
	case ValNumber:
		return formatNumber(v.Num)
	case ValString, ValSymbol:
		return v.Str
	case ValBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.String()
	}
}

func (v Value) AsBool() bool {
	switch v.Kind {
	case ValNumber:
		return v.Num != 0
	case ValString, ValSymbol:
		return v.Str != ""
	case ValList, ValExpr:
		return len(v.Elems) != 0
	case ValBool:
		return v.Bool
	default:
		return false
	}
}

// AsList returns a fresh slice, so callers may modify it freely.
func (v Value) AsList() []Value {
	switch v.Kind {
	case ValList, ValExpr:
		out := make([]Value, len(v.Elems))
		copy(out, v.Elems)
		return out
	default:
		return []Value{v}
	}
}

// ValuesEqual compares two Values structurally. Functions are equal when
// their renderings are.
func ValuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValNumber:
		return a.Num == b.Num || (math.IsNaN(a.Num) && math.IsNaN(b.Num))
	case ValString:
		return a.Str == b.Str
	case ValBool:
		return a.Bool == b.Bool
	case ValSymbol:
		return a.Str == b.Str && a.Quoted == b.Quoted
	case ValList, ValExpr:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !ValuesEqual(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case ValFn:
		return a.String() == b.String()
	case ValNull:
		return true
	}
	return false
}
