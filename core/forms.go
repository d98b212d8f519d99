package lazo

// Special forms. These decide for themselves which of their arguments are
// evaluated, so they cannot be written as ordinary user functions.

// builtinIf: (if cond then [else]). Only the taken branch is evaluated.
func builtinIf(args []Value, scope Scope) (Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return Value{}, arityError(len(args), 3)
	}
	cond, err := args[0].Eval(scope)
	if err != nil {
		return Value{}, err
	}
	if cond.AsBool() {
		return args[1].Eval(scope)
	}
	if len(args) > 2 {
		return args[2].Eval(scope)
	}
	return NullVal(), nil
}

// builtinCond: (cond (test value) ...) evaluates the value of the first
// clause whose test is truthy.
func builtinCond(args []Value, scope Scope) (Value, error) {
	for _, clause := range args {
		parts := clause.AsList()
		if len(parts) < 2 {
			return Value{}, syntaxErrorf("cond clause should be (condition value), but provided `%s` is not", clause.String())
		}
		test, err := parts[0].Eval(scope)
		if err != nil {
			return Value{}, err
		}
		if test.AsBool() {
			return parts[1].Eval(scope)
		}
	}
	return NullVal(), nil
}

// builtinDefine binds a name in the current scope.
//
//	(define name value)          value is bound unevaluated
//	(define (name params...) body...)
//
// A value bound by name is evaluated again wherever the name is evaluated.
func builtinDefine(args []Value, scope Scope) (Value, error) {
	if len(args) < 2 {
		return Value{}, arityError(len(args), 2)
	}
	target := args[0]
	if target.Kind == ValExpr || target.Kind == ValList {
		if len(target.Elems) == 0 {
			return Value{}, syntaxErrorf("function definition needs a name")
		}
		fn := LambdaVal(clone(target.Elems[1:]), clone(args[1:]))
		scope.Define(target.Elems[0].AsString(), fn)
		return fn, nil
	}
	val := args[1]
	scope.Define(target.AsString(), val)
	return val, nil
}

// builtinLambda: (lambda (params...) body...)
func builtinLambda(args []Value, scope Scope) (Value, error) {
	if len(args) < 2 {
		return Value{}, arityError(len(args), 2)
	}
	return LambdaVal(args[0].AsList(), clone(args[1:])), nil
}

// builtinEval evaluates each argument and returns the last result.
func builtinEval(args []Value, scope Scope) (Value, error) {
	result := NullVal()
	for _, arg := range args {
		v, err := arg.Eval(scope)
		if err != nil {
			return Value{}, err
		}
		result = v
	}
	return result, nil
}

// builtinTry: (try expr handler). Any error from expr is discarded and the
// handler is evaluated instead.
func builtinTry(args []Value, scope Scope) (Value, error) {
	if len(args) != 2 {
		return Value{}, arityError(len(args), 2)
	}
	v, err := args[0].Eval(scope)
	if err == nil {
		return v, nil
	}
	return args[1].Eval(scope)
}

func builtinError(args []Value, scope Scope) (Value, error) {
	if len(args) == 0 {
		return Value{}, runtimeErrorf("Something went wrong")
	}
	msg, err := args[0].Eval(scope)
	if err != nil {
		return Value{}, err
	}
	return Value{}, runtimeErrorf("%s", msg.AsString())
}

func clone(vs []Value) []Value {
	out := make([]Value, len(vs))
	copy(out, vs)
	return out
}
