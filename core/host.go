package lazo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Host is where the I/O built-ins read from, write to and exit through.
type Host struct {
	In   *bufio.Reader
	Out  io.Writer
	Exit func(code int)
}

func NewHost(in io.Reader, out io.Writer, exit func(code int)) *Host {
	if exit == nil {
		exit = func(int) {}
	}
	return &Host{In: bufio.NewReader(in), Out: out, Exit: exit}
}

// DefaultHost uses the process's stdin and stdout and exits the process.
func DefaultHost() *Host {
	return NewHost(os.Stdin, os.Stdout, os.Exit)
}

// Builtins returns print, input, debug and exit bound to h.
func (h *Host) Builtins() map[string]Builtin {
	return map[string]Builtin{
		"print": h.print,
		"input": h.input,
		"debug": h.debug,
		"exit":  h.exit,
	}
}

func (h *Host) print(args []Value, scope Scope) (Value, error) {
	for _, arg := range args {
		v, err := arg.Eval(scope)
		if err != nil {
			return Value{}, err
		}
		if _, err := io.WriteString(h.Out, v.AsString()); err != nil {
			return Value{}, runtimeErrorf("failed to write output: %v", err)
		}
	}
	return NullVal(), nil
}

// input: (input [prompt]) prints the prompt and reads one trimmed line.
func (h *Host) input(args []Value, scope Scope) (Value, error) {
	if len(args) > 1 {
		return Value{}, arityError(len(args), 1)
	}
	if len(args) == 1 {
		prompt, err := args[0].Eval(scope)
		if err != nil {
			return Value{}, err
		}
		if _, err := io.WriteString(h.Out, prompt.AsString()); err != nil {
			return Value{}, runtimeErrorf("failed to write output: %v", err)
		}
	}
	line, err := h.In.ReadString('\n')
	if err != nil && err != io.EOF {
		return Value{}, runtimeErrorf("reading line was fault")
	}
	return StringVal(strings.TrimSpace(line)), nil
}

// debug prints each argument next to what it loads to, without evaluating it.
func (h *Host) debug(args []Value, scope Scope) (Value, error) {
	for _, arg := range args {
		if _, err := fmt.Fprintf(h.Out, "Debug: %s = %s\n", arg.String(), arg.Load(scope).String()); err != nil {
			return Value{}, runtimeErrorf("failed to write output: %v", err)
		}
	}
	return NullVal(), nil
}

func (h *Host) exit(args []Value, scope Scope) (Value, error) {
	code := 0
	if len(args) > 0 {
		v, err := args[0].Eval(scope)
		if err != nil {
			return Value{}, err
		}
		code = int(v.AsNumber())
	}
	h.Exit(code)
	return NullVal(), nil
}
