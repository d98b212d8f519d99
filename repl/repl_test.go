package repl

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lazo "github.com/KajizukaTaichi/lazo/core"
	"github.com/KajizukaTaichi/lazo/session"
)

// fakeReader replays scripted input. An entry of "^C" simulates Ctrl-C.
type fakeReader struct {
	lines   []string
	prompts []string
	history []string
}

func (f *fakeReader) Prompt(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	if line == "^C" {
		return "", ErrAborted
	}
	return line, nil
}

func (f *fakeReader) AppendHistory(item string) {
	f.history = append(f.history, item)
}

func runREPL(t *testing.T, lines ...string) (string, *fakeReader) {
	t.Helper()
	out := &bytes.Buffer{}
	host := lazo.NewHost(strings.NewReader(""), out, nil)
	s := session.New(session.WithHost(host))
	in := &fakeReader{lines: lines}
	require.NoError(t, New(s, in, out, Options{}).Run())
	return out.String(), in
}

func TestREPLBannerAndResults(t *testing.T) {
	out, _ := runREPL(t, "(+ 1 2 3)", `(define x 10) (+ x 5)`)
	assert.Equal(t, "Lazo 0.1.0\n6\n10\n15\n\n", out)
}

func TestREPLErrorsDoNotEndSession(t *testing.T) {
	out, _ := runREPL(t, `(error "boom")`, "(+ 1 1)")
	assert.Equal(t, "Lazo 0.1.0\nRuntime Error! boom\n2\n\n", out)
}

func TestREPLContinuation(t *testing.T) {
	out, in := runREPL(t, "(define (sq n)", "  (* n n))", "(sq 5)")
	assert.Contains(t, out, "25\n")
	assert.Equal(t, []string{"> ", ".. ", "> ", "> "}, in.prompts)
	assert.Equal(t, []string{"(define (sq n)   (* n n))", "(sq 5)"}, in.history)
}

func TestREPLCtrlCDiscardsBuffer(t *testing.T) {
	out, _ := runREPL(t, "(+ 1", "^C", "(+ 2 2)")
	assert.Equal(t, "Lazo 0.1.0\n4\n\n", out)
}

func TestREPLUnfinishedAtEOF(t *testing.T) {
	out, _ := runREPL(t, `(print "a`)
	assert.Contains(t, out, "Syntax Error! unterminated quote")
}

func TestREPLQuit(t *testing.T) {
	out, _ := runREPL(t, "1", ":quit", "2")
	assert.Equal(t, "Lazo 0.1.0\n1\n", out)
}

func TestREPLCommands(t *testing.T) {
	out, _ := runREPL(t, "(define x 1)", ":symbols", ":reset", ":symbols", ":bogus", ":help")
	assert.Contains(t, out, "x = 1\n")
	assert.Contains(t, out, "session reset.\n")
	assert.Contains(t, out, "unknown command")
	assert.Contains(t, out, ":load <file>")
}

func TestREPLLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.lazo")
	require.NoError(t, os.WriteFile(path, []byte("(define (inc n) (+ n 1))"), 0o644))
	out, _ := runREPL(t, ":load "+path, "(inc 41)", ":load", ":load /does/not/exist")
	assert.Contains(t, out, "42\n")
	assert.Contains(t, out, "usage: :load <file>")
	assert.Contains(t, out, "cannot read /does/not/exist")
}

func TestPlainReader(t *testing.T) {
	r := NewPlainReader(strings.NewReader("one\ntwo\n"))
	line, err := r.Prompt("> ")
	require.NoError(t, err)
	assert.Equal(t, "one", line)
	line, err = r.Prompt("> ")
	require.NoError(t, err)
	assert.Equal(t, "two", line)
	_, err = r.Prompt("> ")
	assert.Equal(t, io.EOF, err)
}
