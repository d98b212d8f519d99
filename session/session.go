// Package session runs Lazo source against a persistent root scope. It is the
// piece the REPL, the script runner and the MCP server share.
package session

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/jcgregorio/logger"
	"github.com/pkg/errors"

	lazo "github.com/KajizukaTaichi/lazo/core"
)

// Mode decides what happens after a top-level form fails.
type Mode int

const (
	// Continue evaluates every form and reports all failures together.
	Continue Mode = iota
	// Stop returns at the first failing form.
	Stop
)

func (m Mode) String() string {
	switch m {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

const defaultMaxTraces = 1000

// Result is the outcome of one top-level form.
type Result struct {
	Source string
	Value  lazo.Value
	Err    error
}

type Session struct {
	host      *lazo.Host
	log       *logger.Logger
	mode      Mode
	modules   []map[string]lazo.Builtin
	scope     lazo.Scope
	initial   lazo.Scope
	traces    []Trace
	maxTraces int
}

type Option func(*Session)

// WithHost sets where print, input, debug and exit are wired.
func WithHost(h *lazo.Host) Option {
	return func(s *Session) { s.host = h }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithMode(m Mode) Option {
	return func(s *Session) { s.mode = m }
}

// WithModules adds module built-ins to the root scope, after the standard library.
func WithModules(mods ...map[string]lazo.Builtin) Option {
	return func(s *Session) { s.modules = append(s.modules, mods...) }
}

func WithMaxTraces(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxTraces = n
		}
	}
}

// discard is a logger.SyncWriter that drops everything.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
func (discard) Sync() error                 { return nil }

func New(opts ...Option) *Session {
	s := &Session{
		mode:      Continue,
		maxTraces: defaultMaxTraces,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.host == nil {
		s.host = lazo.DefaultHost()
	}
	if s.log == nil {
		s.log = logger.NewFromOptions(&logger.Options{SyncWriter: discard{}})
	}
	s.Reset()
	return s
}

// Reset drops every user binding and all traces.
func (s *Session) Reset() {
	s.scope = lazo.NewScope(s.host, s.modules...)
	s.initial = s.scope.Clone()
	s.traces = nil
}

func (s *Session) Mode() Mode { return s.mode }

// Eval runs every top-level form in src against the session scope. A source
// that does not tokenize fails as a whole. Otherwise there is one Result per
// form evaluated; in Continue mode the returned error joins every failure.
func (s *Session) Eval(src string) ([]Result, error) {
	tokens, err := lazo.Tokenize(src)
	if err != nil {
		s.log.Debugf("tokenize failed: %s", err)
		s.appendTrace(newTrace(strings.TrimSpace(src), lazo.Value{}, err))
		return nil, err
	}

	results := make([]Result, 0, len(tokens))
	var errs *multierror.Error
	for _, tok := range tokens {
		r := s.evalForm(tok)
		results = append(results, r)
		if r.Err == nil {
			continue
		}
		if s.mode == Stop {
			return results, r.Err
		}
		errs = multierror.Append(errs, r.Err)
	}
	return results, errs.ErrorOrNil()
}

func (s *Session) evalForm(tok string) Result {
	s.log.Debugf("eval %s", tok)
	r := Result{Source: tok}

	form, err := lazo.Parse(tok)
	if err == nil {
		r.Value, err = form.Eval(s.scope)
	}
	if err != nil {
		s.log.Debugf("form %s failed: %s", tok, err)
		r.Err = err
		r.Value = lazo.Value{}
	}
	s.appendTrace(newTrace(tok, r.Value, r.Err))
	return r
}

// Define evaluates a single expression and binds its value to name. Unlike
// the define builtin, which binds its argument unevaluated, the value is
// computed once here.
func (s *Session) Define(name, expr string) (lazo.Value, error) {
	name = strings.TrimSpace(name)
	sym, err := lazo.Parse(name)
	if err != nil || sym.Kind != lazo.ValSymbol || sym.Quoted || strings.ContainsAny(name, " \t\n\r") {
		return lazo.Value{}, errors.Errorf("invalid name %q", name)
	}
	forms, err := lazo.ParseAll(expr)
	if err != nil {
		return lazo.Value{}, err
	}
	if len(forms) != 1 {
		return lazo.Value{}, errors.Errorf("expected exactly one expression, got %d", len(forms))
	}

	entry := fmt.Sprintf("(define %s %s)", name, strings.TrimSpace(expr))
	val, err := forms[0].Eval(s.scope)
	if err != nil {
		s.appendTrace(newTrace(entry, lazo.Value{}, err))
		return lazo.Value{}, err
	}
	s.scope.Define(name, val)
	s.appendTrace(newTrace(entry, val, nil))
	s.log.Debugf("defined %s = %s", name, val)
	return val, nil
}

// RunFile evaluates the contents of a script file.
func (s *Session) RunFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading script %s", path)
	}
	s.log.Debugf("running %s", path)
	_, err = s.Eval(string(b))
	return err
}

// Lookup returns the current binding for name.
func (s *Session) Lookup(name string) (lazo.Value, bool) {
	return s.scope.Lookup(name)
}

// Symbols lists, sorted, the names bound or rebound since the last Reset.
func (s *Session) Symbols() []string {
	var names []string
	for name, v := range s.scope {
		if orig, ok := s.initial[name]; ok && lazo.ValuesEqual(orig, v) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
