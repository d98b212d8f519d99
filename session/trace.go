package session

import (
	"time"

	lazo "github.com/KajizukaTaichi/lazo/core"
)

// Trace records one top-level evaluation: the form as written, its result or
// error, and when it ran.
type Trace struct {
	Entry     string     // source text of the form
	Result    lazo.Value // final result value
	Error     string     // non-empty on error
	Timestamp string     // RFC 3339, UTC
}

func newTrace(entry string, result lazo.Value, err error) Trace {
	t := Trace{
		Entry:     entry,
		Result:    result,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		t.Error = err.Error()
		t.Result = lazo.NullVal()
	}
	return t
}

// ToMap converts a Trace to plain data for JSON output. Results that have no
// data form (expressions, functions) are rendered as text.
func (t Trace) ToMap() map[string]any {
	m := map[string]any{
		"entry":     t.Entry,
		"timestamp": t.Timestamp,
	}

	result, err := lazo.ValueToGo(t.Result)
	if err != nil {
		result = t.Result.String()
	}
	m["result"] = result

	if t.Error != "" {
		m["error"] = t.Error
	} else {
		m["error"] = nil
	}
	return m
}

// appendTrace adds a trace and enforces the maxTraces cap.
func (s *Session) appendTrace(t Trace) {
	s.traces = append(s.traces, t)
	if len(s.traces) > s.maxTraces {
		// Drop oldest traces
		excess := len(s.traces) - s.maxTraces
		s.traces = s.traces[excess:]
	}
}

// Traces returns up to n of the most recent traces, oldest first. n <= 0
// returns all of them.
func (s *Session) Traces(n int) []Trace {
	if n <= 0 || n > len(s.traces) {
		n = len(s.traces)
	}
	out := make([]Trace, n)
	copy(out, s.traces[len(s.traces)-n:])
	return out
}
