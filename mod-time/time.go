// Package timemod gives Lazo programs wall-clock time. Times are unix seconds
// and layouts are Go reference layouts such as "2006-01-02".
package timemod

import (
	"fmt"
	"time"

	lazo "github.com/KajizukaTaichi/lazo/core"
)

const manual = `time: unix-second timestamps and Go layouts

  (time-now)               current unix time
  (time-iso t)             t as RFC 3339 in UTC
  (time-format t layout)   t formatted with a Go layout, e.g. "2006-01-02"
  (time-parse value layout) unix time of value read with layout
  (time-add t duration)    t plus a Go duration such as "2h30m" or "-24h"
  (time-diff from to)      seconds from from to to`

type Module struct {
	now func() time.Time
}

func New() *Module {
	return &Module{now: time.Now}
}

func (m *Module) Builtins() map[string]lazo.Builtin {
	return map[string]lazo.Builtin{
		"time-help":   handleManual,
		"time-now":    m.handleNow,
		"time-iso":    handleISO,
		"time-format": handleFormat,
		"time-parse":  handleParse,
		"time-add":    handleAdd,
		"time-diff":   handleDiff,
	}
}

// --- Handlers ---

func handleManual(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	return lazo.StringVal(manual), nil
}

func (m *Module) handleNow(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	if len(args) != 0 {
		return lazo.Value{}, &lazo.FunctionArityError{Got: len(args), Want: 0}
	}
	return lazo.NumberVal(float64(m.now().Unix())), nil
}

func handleISO(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	vals, err := fields(args, scope, 1)
	if err != nil {
		return lazo.Value{}, err
	}
	t, err := getTime(vals[0], "time")
	if err != nil {
		return lazo.Value{}, err
	}
	return lazo.StringVal(t.Format(time.RFC3339)), nil
}

func handleFormat(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	vals, err := fields(args, scope, 2)
	if err != nil {
		return lazo.Value{}, err
	}
	t, err := getTime(vals[0], "time")
	if err != nil {
		return lazo.Value{}, err
	}
	layout, err := getString(vals[1], "layout")
	if err != nil {
		return lazo.Value{}, err
	}
	return lazo.StringVal(t.Format(layout)), nil
}

func handleParse(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	vals, err := fields(args, scope, 2)
	if err != nil {
		return lazo.Value{}, err
	}
	value, err := getString(vals[0], "value")
	if err != nil {
		return lazo.Value{}, err
	}
	layout, err := getString(vals[1], "layout")
	if err != nil {
		return lazo.Value{}, err
	}
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return lazo.Value{}, fail("parse error: %v", err)
	}
	return lazo.NumberVal(float64(parsed.Unix())), nil
}

func handleAdd(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	vals, err := fields(args, scope, 2)
	if err != nil {
		return lazo.Value{}, err
	}
	t, err := getTime(vals[0], "time")
	if err != nil {
		return lazo.Value{}, err
	}
	durStr, err := getString(vals[1], "duration")
	if err != nil {
		return lazo.Value{}, err
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		return lazo.Value{}, fail("invalid duration: %v", err)
	}
	return lazo.NumberVal(float64(t.Add(dur).Unix())), nil
}

func handleDiff(args []lazo.Value, scope lazo.Scope) (lazo.Value, error) {
	vals, err := fields(args, scope, 2)
	if err != nil {
		return lazo.Value{}, err
	}
	from, err := getTime(vals[0], "from")
	if err != nil {
		return lazo.Value{}, err
	}
	to, err := getTime(vals[1], "to")
	if err != nil {
		return lazo.Value{}, err
	}
	return lazo.NumberVal(to.Sub(from).Seconds()), nil
}

// --- Field helpers ---

func fail(format string, args ...any) error {
	return &lazo.RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// fields checks the argument count and evaluates every argument.
func fields(args []lazo.Value, scope lazo.Scope, n int) ([]lazo.Value, error) {
	if len(args) != n {
		return nil, &lazo.FunctionArityError{Got: len(args), Want: n}
	}
	return lazo.EvalArgs(args, scope)
}

func getTime(v lazo.Value, name string) (time.Time, error) {
	if v.Kind != lazo.ValNumber {
		return time.Time{}, fail("%s must be a number, got %s", name, v.KindName())
	}
	return time.Unix(int64(v.Num), 0).UTC(), nil
}

func getString(v lazo.Value, name string) (string, error) {
	if v.Kind != lazo.ValString {
		return "", fail("%s must be a string, got %s", name, v.KindName())
	}
	return v.Str, nil
}
