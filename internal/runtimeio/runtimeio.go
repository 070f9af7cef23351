package runtimeio

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

var ErrInputClosed = errors.New("input closed")

type fder interface {
	Fd() uintptr
}

// IsInteractive reports whether v is a file attached to a terminal.
func IsInteractive(v any) bool {
	f, ok := v.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of out, or DefaultWidth.
func Width(out io.Writer) int {
	f, ok := out.(fder)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return DefaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// ReadLine reads one line without its terminator. A final line without a
// newline is returned before ErrInputClosed.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line != "" {
				return strings.TrimRight(line, "\r\n"), nil
			}
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Columns lays names out in as many left-aligned columns as fit in width.
func Columns(names []string, width int) string {
	if len(names) == 0 {
		return ""
	}
	longest := 0
	for _, n := range names {
		if len(n) > longest {
			longest = len(n)
		}
	}
	cell := longest + 2
	cols := width / cell
	if cols < 1 {
		cols = 1
	}
	rows := (len(names) + cols - 1) / cols

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := c*rows + r
			if i >= len(names) {
				break
			}
			last := c == cols-1 || (c+1)*rows+r >= len(names)
			b.WriteString(names[i])
			if !last {
				b.WriteString(strings.Repeat(" ", cell-len(names[i])))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
