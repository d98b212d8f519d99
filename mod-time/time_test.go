package timemod

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	lazo "github.com/KajizukaTaichi/lazo/core"
)

func testScope(m *Module) lazo.Scope {
	host := lazo.NewHost(strings.NewReader(""), &bytes.Buffer{}, nil)
	return lazo.NewScope(host, m.Builtins())
}

func TestNow(t *testing.T) {
	before := time.Now().Unix()
	v, err := lazo.Run("(time-now)", testScope(New()))
	after := time.Now().Unix()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	unix := int64(v.AsNumber())
	if unix < before || unix > after {
		t.Errorf("unix %d not in [%d, %d]", unix, before, after)
	}
}

func TestNowFixedClock(t *testing.T) {
	m := &Module{now: func() time.Time { return time.Unix(1709078400, 0) }}
	v, err := lazo.Run("(time-iso (time-now))", testScope(m))
	if err != nil {
		t.Fatal(err)
	}
	if got := v.AsString(); got != "2024-02-28T00:00:00Z" {
		t.Errorf("got %q", got)
	}
}

func TestHandlers(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"format date", `(time-format 1709078400 "2006-01-02")`, `"2024-02-28"`},
		{"format rfc3339", `(time-format 1709078400 "2006-01-02T15:04:05Z07:00")`, `"2024-02-28T00:00:00Z"`},
		{"parse date", `(time-parse "2024-02-28" "2006-01-02")`, "1709078400"},
		{"add", `(time-add 1709078400 "2h30m")`, "1709087400"},
		{"add negative", `(time-add 1709078400 "-24h")`, "1708992000"},
		{"diff", `(time-diff 1709078400 1709164800)`, "86400"},
		{"diff negative", `(time-diff 1709164800 1709078400)`, "-86400"},
		{"iso", `(time-iso 0)`, `"1970-01-01T00:00:00Z"`},
		{"round trip", `(time-format (time-parse "2024-03-01" "2006-01-02") "Jan 2, 2006")`, `"Mar 1, 2024"`},
	}
	scope := testScope(New())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := lazo.Run(tt.src, scope)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHandlerErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		arity   bool
		wantMsg string
	}{
		{"missing layout", `(time-format 1709078400)`, true, ""},
		{"missing time", `(time-add)`, true, ""},
		{"time not a number", `(time-format "now" "2006")`, false, "time must be a number, got string"},
		{"layout not a string", `(time-format 0 2006)`, false, "layout must be a string, got number"},
		{"bad parse", `(time-parse "not a date" "2006-01-02")`, false, ""},
		{"bad duration", `(time-add 0 "soon")`, false, ""},
		{"now takes nothing", `(time-now 1)`, true, ""},
	}
	scope := testScope(New())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lazo.Run(tt.src, scope)
			if err == nil {
				t.Fatal("expected error")
			}
			var fe *lazo.FunctionArityError
			var re *lazo.RuntimeError
			switch {
			case tt.arity:
				if !errors.As(err, &fe) {
					t.Fatalf("expected arity error, got %v", err)
				}
			case !errors.As(err, &re):
				t.Fatalf("expected runtime error, got %v", err)
			case tt.wantMsg != "" && re.Msg != tt.wantMsg:
				t.Errorf("got %q, want %q", re.Msg, tt.wantMsg)
			}
		})
	}
}

func TestManual(t *testing.T) {
	v, err := lazo.Run("(time-help)", testScope(New()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(v.AsString(), "time-diff") {
		t.Errorf("manual does not mention time-diff: %s", v.AsString())
	}
}
