package lazo

import "maps"

// Scope maps names to values. It is flat: a call does not chain to its
// caller's scope, it works on a full copy of it.
type Scope map[string]Value

// Clone copies every binding. Values themselves are shared, which is safe
// because evaluation never mutates a Value in place.
func (s Scope) Clone() Scope {
	c := make(Scope, len(s))
	maps.Copy(c, s)
	return c
}

func (s Scope) Lookup(name string) (Value, bool) {
	v, ok := s[name]
	return v, ok
}

func (s Scope) Define(name string, v Value) {
	s[name] = v
}

// Register binds each built-in under its name.
func (s Scope) Register(builtins map[string]Builtin) {
	for name, fn := range builtins {
		s[name] = BuiltinVal(name, fn)
	}
}
