// Package prompt implements the interactive identity prompt shown at commit
// time and the line prompts used by setup.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TTYPath is the controlling terminal device.
const TTYPath = "/dev/tty"

// ErrNoTerminal indicates the process has no controlling terminal to prompt on.
var ErrNoTerminal = errors.New("no controlling terminal")

// ErrInterrupted is returned when the user presses ctrl+c at a prompt.
var ErrInterrupted = errors.New("interrupted")

// Terminal is an interactive input/output pair. Git runs hooks with stdin
// already redirected, so the hook talks to the user through the controlling
// terminal device instead of the process's standard streams.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
	file   *os.File
}

// NewTerminal wraps an arbitrary reader/writer pair.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{In: in, Out: out}
}

// OpenTTY opens the controlling terminal for both reading and writing.
func OpenTTY() (*Terminal, error) {
	f, err := os.OpenFile(TTYPath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTerminal, err)
	}
	t := NewTerminal(f, f)
	t.file = f
	return t, nil
}

// Interactive reports whether input comes from a real terminal.
func (t *Terminal) Interactive() bool {
	f, ok := t.In.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ReadLine blocks until a full line is typed and returns it without
// surrounding whitespace. A final line without a newline is returned
// normally; io.EOF is only returned when nothing was read.
func (t *Terminal) ReadLine() (string, error) {
	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}
	line, err := t.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Printf writes formatted output to the terminal.
func (t *Terminal) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.Out, format, args...)
}

// Println writes a line to the terminal.
func (t *Terminal) Println(args ...any) {
	_, _ = fmt.Fprintln(t.Out, args...)
}

// Close releases the terminal device when it was opened by OpenTTY.
func (t *Terminal) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}
