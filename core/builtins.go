package lazo

import (
	"maps"
	"math"
	"slices"
	"strings"
)

// Version is reported by the CLI and the REPL banner.
const Version = "0.1.0"

var coreBuiltins = map[string]Builtin{
	// Arithmetic
	"+": foldNumbers(func(a, b float64) float64 { return a + b }),
	"-": builtinSub,
	"*": foldNumbers(func(a, b float64) float64 { return a * b }),
	"/": foldNumbers(func(a, b float64) float64 { return a / b }),
	"%": foldNumbers(math.Mod),
	"^": foldNumbers(math.Pow),
	// Comparison
	"=":  builtinEq,
	"!=": builtinNotEq,
	">":  compareNumbers(func(a, b float64) bool { return a > b }),
	">=": compareNumbers(func(a, b float64) bool { return a >= b }),
	"<":  compareNumbers(func(a, b float64) bool { return a < b }),
	"<=": compareNumbers(func(a, b float64) bool { return a <= b }),
	// Logic
	"&": builtinAnd,
	"|": builtinOr,
	"!": builtinNot,
	// Strings
	"concat": builtinConcat,
	"format": builtinFormat,
	"repeat": builtinRepeat,
	"join":   builtinJoin,
	"split":  builtinSplit,
	// Introspection
	"type": builtinType,
	"cast": builtinCast,
	// Lists
	"car":     builtinCar,
	"cdr":     builtinCdr,
	"len":     builtinLen,
	"reverse": builtinReverse,
	"range":   builtinRange,
	"map":     builtinMap,
	"filter":  builtinFilter,
	"for":     builtinFor,
	"reduce":  builtinReduce,
	// Forms
	"if":     builtinIf,
	"cond":   builtinCond,
	"define": builtinDefine,
	"lambda": builtinLambda,
	"eval":   builtinEval,
	"try":    builtinTry,
	"error":  builtinError,
}

var constants = map[string]Value{
	"new-line":     StringVal("\n"),
	"tab":          StringVal("\t"),
	"double-quote": StringVal(`"`),
}

// CoreBuiltins returns the built-ins that never touch the Host.
func CoreBuiltins() map[string]Builtin {
	return maps.Clone(coreBuiltins)
}

// NewScope builds a root scope: the core built-ins, the I/O built-ins bound
// to h, the constant strings, then each module in order (later names win).
// A nil Host means DefaultHost.
func NewScope(h *Host, modules ...map[string]Builtin) Scope {
	if h == nil {
		h = DefaultHost()
	}
	s := make(Scope, len(coreBuiltins)+len(constants)+8)
	s.Register(coreBuiltins)
	s.Register(h.Builtins())
	for name, v := range constants {
		s.Define(name, v)
	}
	for _, m := range modules {
		s.Register(m)
	}
	return s
}

// --- Arithmetic ---

// foldNumbers evaluates every argument and folds op left to right over their
// numeric coercions.
func foldNumbers(op func(a, b float64) float64) Builtin {
	return func(args []Value, scope Scope) (Value, error) {
		vals, err := EvalArgs(args, scope)
		if err != nil {
			return Value{}, err
		}
		if len(vals) == 0 {
			return Value{}, arityError(0, 2)
		}
		acc := vals[0].AsNumber()
		for _, v := range vals[1:] {
			acc = op(acc, v.AsNumber())
		}
		return NumberVal(acc), nil
	}
}

// builtinSub: (- x) negates, (- x y ...) subtracts left to right.
func builtinSub(args []Value, scope Scope) (Value, error) {
	vals, err := EvalArgs(args, scope)
	if err != nil {
		return Value{}, err
	}
	switch len(vals) {
	case 0:
		return Value{}, arityError(0, 2)
	case 1:
		return NumberVal(-vals[0].AsNumber()), nil
	}
	acc := vals[0].AsNumber()
	for _, v := range vals[1:] {
		acc -= v.AsNumber()
	}
	return NumberVal(acc), nil
}

// --- Comparison ---

// compareNumbers checks cmp over every adjacent pair of arguments.
func compareNumbers(cmp func(a, b float64) bool) Builtin {
	return func(args []Value, scope Scope) (Value, error) {
		if len(args) < 2 {
			return Value{}, arityError(len(args), 2)
		}
		vals, err := EvalArgs(args, scope)
		if err != nil {
			return Value{}, err
		}
		for i := 1; i < len(vals); i++ {
			if !cmp(vals[i-1].AsNumber(), vals[i].AsNumber()) {
				return BoolVal(false), nil
			}
		}
		return BoolVal(true), nil
	}
}

// renderedArgs evaluates at least two arguments and renders each one.
func renderedArgs(args []Value, scope Scope) ([]string, error) {
	if len(args) < 2 {
		return nil, arityError(len(args), 2)
	}
	vals, err := EvalArgs(args, scope)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out, nil
}

// builtinEq compares canonical renderings, so 1 and "1" differ.
func builtinEq(args []Value, scope Scope) (Value, error) {
	rs, err := renderedArgs(args, scope)
	if err != nil {
		return Value{}, err
	}
	for i := 1; i < len(rs); i++ {
		if rs[i-1] != rs[i] {
			return BoolVal(false), nil
		}
	}
	return BoolVal(true), nil
}

// builtinNotEq is true when every adjacent pair differs.
func builtinNotEq(args []Value, scope Scope) (Value, error) {
	rs, err := renderedArgs(args, scope)
	if err != nil {
		return Value{}, err
	}
	for i := 1; i < len(rs); i++ {
		if rs[i-1] == rs[i] {
			return BoolVal(false), nil
		}
	}
	return BoolVal(true), nil
}

// --- Logic ---

// builtinAnd stops evaluating at the first falsy argument.
func builtinAnd(args []Value, scope Scope) (Value, error) {
	if len(args) < 2 {
		return Value{}, arityError(len(args), 2)
	}
	for _, arg := range args {
		v, err := arg.Eval(scope)
		if err != nil {
			return Value{}, err
		}
		if !v.AsBool() {
			return BoolVal(false), nil
		}
	}
	return BoolVal(true), nil
}

// builtinOr stops evaluating at the first truthy argument.
func builtinOr(args []Value, scope Scope) (Value, error) {
	if len(args) < 2 {
		return Value{}, arityError(len(args), 2)
	}
	for _, arg := range args {
		v, err := arg.Eval(scope)
		if err != nil {
			return Value{}, err
		}
		if v.AsBool() {
			return BoolVal(true), nil
		}
	}
	return BoolVal(false), nil
}

func builtinNot(args []Value, scope Scope) (Value, error) {
	v, err := evalOne(args, scope)
	if err != nil {
		return Value{}, err
	}
	return BoolVal(!v.AsBool()), nil
}

// evalOne checks for exactly one argument and evaluates it.
func evalOne(args []Value, scope Scope) (Value, error) {
	if len(args) != 1 {
		return Value{}, arityError(len(args), 1)
	}
	return args[0].Eval(scope)
}

// evalTwo checks for exactly two arguments and evaluates both.
func evalTwo(args []Value, scope Scope) (Value, Value, error) {
	if len(args) != 2 {
		return Value{}, Value{}, arityError(len(args), 2)
	}
	vals, err := EvalArgs(args, scope)
	if err != nil {
		return Value{}, Value{}, err
	}
	return vals[0], vals[1], nil
}

// --- Strings ---

func builtinConcat(args []Value, scope Scope) (Value, error) {
	var sb strings.Builder
	for _, arg := range args {
		v, err := arg.Eval(scope)
		if err != nil {
			return Value{}, err
		}
		sb.WriteString(v.AsString())
	}
	return StringVal(sb.String()), nil
}

// builtinFormat: (format "x = {}" x) replaces every {} with x.
func builtinFormat(args []Value, scope Scope) (Value, error) {
	tmpl, arg, err := evalTwo(args, scope)
	if err != nil {
		return Value{}, err
	}
	return StringVal(strings.ReplaceAll(tmpl.AsString(), "{}", arg.AsString())), nil
}

func builtinRepeat(args []Value, scope Scope) (Value, error) {
	s, n, err := evalTwo(args, scope)
	if err != nil {
		return Value{}, err
	}
	str, count := s.AsString(), n.AsNumber()
	if str == "" || math.IsNaN(count) || count < 1 {
		return StringVal(""), nil
	}
	if math.IsInf(count, 1) || float64(len(str))*count > math.MaxInt32 {
		return Value{}, runtimeErrorf("repeated string is too long")
	}
	return StringVal(strings.Repeat(str, int(count))), nil
}

// builtinJoin: (join list separator)
func builtinJoin(args []Value, scope Scope) (Value, error) {
	list, sep, err := evalTwo(args, scope)
	if err != nil {
		return Value{}, err
	}
	elems := list.AsList()
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.AsString()
	}
	return StringVal(strings.Join(parts, sep.AsString())), nil
}

// builtinSplit: (split string separator). An empty separator yields every
// character surrounded by empty strings.
func builtinSplit(args []Value, scope Scope) (Value, error) {
	s, sep, err := evalTwo(args, scope)
	if err != nil {
		return Value{}, err
	}
	parts := strings.Split(s.AsString(), sep.AsString())
	if sep.AsString() == "" {
		parts = append(append([]string{""}, parts...), "")
	}
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = StringVal(p)
	}
	return ListVal(out), nil
}

// --- Introspection ---

func builtinType(args []Value, scope Scope) (Value, error) {
	v, err := evalOne(args, scope)
	if err != nil {
		return Value{}, err
	}
	return StringVal(v.KindName()), nil
}

// builtinCast: (cast value type-name) where type-name is number, string, bool or list.
func builtinCast(args []Value, scope Scope) (Value, error) {
	v, typ, err := evalTwo(args, scope)
	if err != nil {
		return Value{}, err
	}
	switch name := typ.AsString(); name {
	case "number":
		return NumberVal(v.AsNumber()), nil
	case "string":
		return StringVal(v.AsString()), nil
	case "bool":
		return BoolVal(v.AsBool()), nil
	case "list":
		return ListVal(v.AsList()), nil
	default:
		return Value{}, runtimeErrorf("unknown type name `%s`", name)
	}
}

// --- Lists ---

func builtinCar(args []Value, scope Scope) (Value, error) {
	v, err := evalOne(args, scope)
	if err != nil {
		return Value{}, err
	}
	elems := v.AsList()
	if len(elems) == 0 {
		return NullVal(), nil
	}
	return elems[0], nil
}

func builtinCdr(args []Value, scope Scope) (Value, error) {
	v, err := evalOne(args, scope)
	if err != nil {
		return Value{}, err
	}
	elems := v.AsList()
	if len(elems) == 0 {
		return ListVal(nil), nil
	}
	return ListVal(elems[1:]), nil
}

func builtinLen(args []Value, scope Scope) (Value, error) {
	v, err := evalOne(args, scope)
	if err != nil {
		return Value{}, err
	}
	return NumberVal(float64(len(v.AsList()))), nil
}

func builtinReverse(args []Value, scope Scope) (Value, error) {
	v, err := evalOne(args, scope)
	if err != nil {
		return Value{}, err
	}
	elems := v.AsList()
	slices.Reverse(elems)
	return ListVal(elems), nil
}

// builtinRange: (range end), (range start end) or (range start end step).
func builtinRange(args []Value, scope Scope) (Value, error) {
	if len(args) < 1 || len(args) > 3 {
		return Value{}, arityError(len(args), 3)
	}
	vals, err := EvalArgs(args, scope)
	if err != nil {
		return Value{}, err
	}
	start, end, step := 0.0, 0.0, 1.0
	switch len(vals) {
	case 1:
		end = vals[0].AsNumber()
	case 2:
		start, end = vals[0].AsNumber(), vals[1].AsNumber()
	case 3:
		start, end, step = vals[0].AsNumber(), vals[1].AsNumber(), vals[2].AsNumber()
	}
	// a step that cannot reach end is only a problem when the range is non-empty
	if !(step > 0) && start < end {
		return Value{}, runtimeErrorf("range step must be positive, got %s", formatNumber(step))
	}
	if math.IsInf(end, 1) && start < end {
		return Value{}, runtimeErrorf("range end must be finite")
	}
	out := []Value{}
	for cur := start; cur < end; cur += step {
		out = append(out, NumberVal(cur))
	}
	return ListVal(out), nil
}

// iterArgs evaluates (list function) argument pairs shared by map, filter and for.
func iterArgs(args []Value, scope Scope) ([]Value, Value, error) {
	if len(args) != 2 {
		return nil, Value{}, arityError(len(args), 2)
	}
	fn, err := args[1].Eval(scope)
	if err != nil {
		return nil, Value{}, err
	}
	list, err := args[0].Eval(scope)
	if err != nil {
		return nil, Value{}, err
	}
	return list.AsList(), fn, nil
}

// builtinMap: (map list function)
func builtinMap(args []Value, scope Scope) (Value, error) {
	elems, fn, err := iterArgs(args, scope)
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, 0, len(elems))
	for _, e := range elems {
		v, err := ExprVal([]Value{fn, e}).Eval(scope)
		if err != nil {
			return Value{}, err
		}
		out = append(out, v)
	}
	return ListVal(out), nil
}

// builtinFilter: (filter list predicate)
func builtinFilter(args []Value, scope Scope) (Value, error) {
	elems, fn, err := iterArgs(args, scope)
	if err != nil {
		return Value{}, err
	}
	out := []Value{}
	for _, e := range elems {
		keep, err := ExprVal([]Value{fn, e}).Eval(scope)
		if err != nil {
			return Value{}, err
		}
		if keep.AsBool() {
			out = append(out, e)
		}
	}
	return ListVal(out), nil
}

// builtinFor: (for list function) runs function for its effects.
func builtinFor(args []Value, scope Scope) (Value, error) {
	elems, fn, err := iterArgs(args, scope)
	if err != nil {
		return Value{}, err
	}
	for _, e := range elems {
		if _, err := ExprVal([]Value{fn, e}).Eval(scope); err != nil {
			return Value{}, err
		}
	}
	return NullVal(), nil
}

// builtinReduce: (reduce list function). The function expression is spliced
// in unevaluated and every step runs in a private copy of the scope.
func builtinReduce(args []Value, scope Scope) (Value, error) {
	if len(args) != 2 {
		return Value{}, arityError(len(args), 2)
	}
	fn := args[1]
	list, err := args[0].Eval(scope)
	if err != nil {
		return Value{}, err
	}
	elems := list.AsList()
	if len(elems) == 0 {
		return Value{}, runtimeErrorf("passed list is empty")
	}
	local := scope.Clone()
	acc := elems[0]
	for _, e := range elems[1:] {
		acc, err = ExprVal([]Value{fn, acc, e}).Eval(local)
		if err != nil {
			return Value{}, err
		}
	}
	return acc, nil
}
