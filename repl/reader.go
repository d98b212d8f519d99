package repl

import (
	"bufio"
	"io"
	"os"

	"github.com/peterh/liner"
)

// LineReader reads one line after showing a prompt. It returns io.EOF when
// input ends and ErrAborted when the user cancels the current line.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// ErrAborted is what a LineReader returns for Ctrl-C.
var ErrAborted = liner.ErrPromptAborted

// TerminalReader is a line editor with persistent history.
type TerminalReader struct {
	*liner.State
	historyFile string
}

// NewTerminalReader puts the terminal in raw mode and loads history from
// historyFile (best effort). Close must be called to restore the terminal.
func NewTerminalReader(historyFile string) *TerminalReader {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	return &TerminalReader{State: ln, historyFile: historyFile}
}

// Close saves history and restores the terminal.
func (t *TerminalReader) Close() error {
	if t.historyFile != "" {
		if f, err := os.Create(t.historyFile); err == nil {
			_, _ = t.WriteHistory(f)
			_ = f.Close()
		}
	}
	return t.State.Close()
}

// plainReader reads lines from a non-terminal source without echoing prompts.
type plainReader struct {
	sc *bufio.Scanner
}

// NewPlainReader reads lines from r, for piped input.
func NewPlainReader(r io.Reader) LineReader {
	return &plainReader{sc: bufio.NewScanner(r)}
}

func (p *plainReader) Prompt(string) (string, error) {
	if p.sc.Scan() {
		return p.sc.Text(), nil
	}
	if err := p.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (p *plainReader) AppendHistory(string) {}
