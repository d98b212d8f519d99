package lazo

// Load substitutes a bound symbol with its value in scope. It does not
// evaluate any further, so a symbol bound to an Expr loads as that Expr.
func (v Value) Load(scope Scope) Value {
	if v.Kind == ValSymbol && !v.Quoted {
		if val, ok := scope.Lookup(v.Str); ok {
			return val
		}
	}
	return v
}

// Eval evaluates v in scope. An Expr is applied: its head is evaluated to a
// function and the remaining elements are handed to it unevaluated. Every
// other value evaluates to itself once loaded.
func (v Value) Eval(scope Scope) (Value, error) {
	loaded := v.Load(scope)
	if loaded.Kind != ValExpr {
		return loaded, nil
	}
	if len(loaded.Elems) == 0 {
		return Value{}, syntaxErrorf("empty expression can't be evaluated")
	}

	head := loaded.Elems[0]
	fn, err := head.Eval(scope)
	if err != nil {
		return Value{}, err
	}
	if fn.Kind != ValFn {
		return Value{}, syntaxErrorf("first atom in expression should be function, but provided `%s` is not function", head.String())
	}
	return Apply(fn.Fn, loaded.Elems[1:], scope)
}

// Apply calls fn with raw argument expressions from the caller's scope.
func Apply(fn *Function, args []Value, scope Scope) (Value, error) {
	if fn.IsBuiltin() {
		return fn.Native(args, scope)
	}

	if len(args) != len(fn.Params) {
		return Value{}, arityError(len(args), len(fn.Params))
	}

	// Arguments are loaded in the caller's scope but not evaluated: an Expr
	// argument is bound as an Expr and runs wherever the body evaluates it.
	local := scope.Clone()
	for i, param := range fn.Params {
		local.Define(param.AsString(), args[i].Load(scope))
	}

	result := NullVal()
	for _, expr := range fn.Body {
		val, err := expr.Eval(local)
		if err != nil {
			return Value{}, err
		}
		result = val
	}
	return result, nil
}

// EvalArgs evaluates each raw argument left to right, stopping at the first error.
func EvalArgs(args []Value, scope Scope) ([]Value, error) {
	out := make([]Value, len(args))
	for i, arg := range args {
		val, err := arg.Eval(scope)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// Run tokenizes, parses and evaluates every top-level form in src, returning
// the value of the last one. It stops at the first error.
func Run(src string, scope Scope) (Value, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return Value{}, err
	}
	result := NullVal()
	for _, tok := range tokens {
		form, err := Parse(tok)
		if err != nil {
			return Value{}, err
		}
		result, err = form.Eval(scope)
		if err != nil {
			return Value{}, err
		}
	}
	return result, nil
}
