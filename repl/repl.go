// Package repl is the interactive read-eval-print loop.
package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	lazo "github.com/KajizukaTaichi/lazo/core"
	"github.com/KajizukaTaichi/lazo/session"
)

const helpText = `Commands:
  :help           show this help
  :quit, :exit    leave the REPL
  :reset          drop every definition
  :symbols        list names defined in this session
  :load <file>    evaluate a script into this session
`

type Options struct {
	Prompt             string
	ContinuationPrompt string
	Color              bool
}

type REPL struct {
	s    *session.Session
	in   LineReader
	out  io.Writer
	opts Options

	errColor    *color.Color
	resultColor *color.Color
}

func New(s *session.Session, in LineReader, out io.Writer, opts Options) *REPL {
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	if opts.ContinuationPrompt == "" {
		opts.ContinuationPrompt = ".. "
	}
	r := &REPL{
		s:           s,
		in:          in,
		out:         out,
		opts:        opts,
		errColor:    color.New(color.FgRed),
		resultColor: color.New(color.FgCyan),
	}
	if opts.Color {
		r.errColor.EnableColor()
		r.resultColor.EnableColor()
	} else {
		r.errColor.DisableColor()
		r.resultColor.DisableColor()
	}
	return r
}

// Run prints the banner and loops until :quit or end of input.
func (r *REPL) Run() error {
	fmt.Fprintf(r.out, "Lazo %s\n", lazo.Version)
	for {
		code, err := r.readForm()
		if err == io.EOF {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading input")
		}
		if strings.TrimSpace(code) == "" {
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			if done := r.command(code); done {
				return nil
			}
			continue
		}

		r.in.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		r.eval(code)
	}
}

// readForm reads lines until the buffer tokenizes or fails for a reason other
// than running out of input. Ctrl-C discards the buffer.
func (r *REPL) readForm() (string, error) {
	var b strings.Builder
	for {
		prompt := r.opts.Prompt
		if b.Len() > 0 {
			prompt = r.opts.ContinuationPrompt
		}
		line, err := r.in.Prompt(prompt)
		if err == ErrAborted {
			return "", nil
		}
		if err == io.EOF && b.Len() > 0 {
			// hand the unfinished form over so its error gets reported
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, nil
		}
		if _, err := lazo.Tokenize(src); lazo.IsIncomplete(err) {
			continue
		}
		return src, nil
	}
}

func (r *REPL) eval(code string) {
	results, err := r.s.Eval(code)
	if results == nil && err != nil {
		r.errColor.Fprintln(r.out, err)
		return
	}
	for _, res := range results {
		if res.Err != nil {
			r.errColor.Fprintln(r.out, res.Err)
			continue
		}
		r.resultColor.Fprintln(r.out, res.Value.String())
	}
}

// command handles a ':' line and reports whether the REPL should exit.
func (r *REPL) command(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":exit":
		return true
	case ":help":
		fmt.Fprint(r.out, helpText)
	case ":reset":
		r.s.Reset()
		fmt.Fprintln(r.out, "session reset.")
	case ":symbols":
		for _, name := range r.s.Symbols() {
			v, _ := r.s.Lookup(name)
			fmt.Fprintf(r.out, "%s = %s\n", name, v)
		}
	case ":load":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, "usage: :load <file>")
			return false
		}
		b, err := os.ReadFile(fields[1])
		if err != nil {
			r.errColor.Fprintln(r.out, errors.Wrapf(err, "cannot read %s", fields[1]))
			return false
		}
		r.in.AppendHistory(line)
		r.eval(string(b))
	default:
		fmt.Fprintln(r.out, "unknown command. Type :help for help.")
	}
	return false
}
