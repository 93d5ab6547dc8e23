package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Style represents a log message style.
type Style string

const (
	StyleInfo    Style = "info"
	StyleSuccess Style = "success"
	StyleWarning Style = "warning"
	StyleError   Style = "error"
	StyleDim     Style = "dim"
)

// Logger provides styled logging to stderr.
type Logger struct {
	out     io.Writer
	verbose bool
}

// NewLogger creates a new logger writing to stderr.
func NewLogger(verbose bool) *Logger {
	return &Logger{out: os.Stderr, verbose: verbose}
}

// NewLoggerTo creates a logger writing to w. Used by tests.
func NewLoggerTo(w io.Writer, verbose bool) *Logger {
	return &Logger{out: w, verbose: verbose}
}

// Log prints a styled log message.
func (l *Logger) Log(msg string, style Style) {
	styleColor := Cyan
	switch style {
	case StyleInfo:
		styleColor = Cyan
	case StyleSuccess:
		styleColor = Green
	case StyleWarning:
		styleColor = Yellow
	case StyleError:
		styleColor = Red
	case StyleDim:
		styleColor = Dim
	}

	tag := fmt.Sprintf("%s[%s%sadr%s%s]%s",
		Color(Dim), Color(Reset), Color(styleColor), Color(Reset), Color(Dim), Color(Reset))
	fmt.Fprintf(l.out, "%s %s\n", tag, msg)
}

// Logf prints a formatted styled log message.
func (l *Logger) Logf(style Style, format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...), style)
}

// Debugf prints a dim message only when verbose logging is enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if l.verbose {
		l.Log(fmt.Sprintf(format, args...), StyleDim)
	}
}

// Raw dumps a block of text (prompt, backend stdout, ...) verbatim when
// verbose logging is enabled. The block is framed so it stands apart from
// the tagged log lines.
func (l *Logger) Raw(label, body string) {
	if !l.verbose {
		return
	}
	fmt.Fprintf(l.out, "%s--- %s ---%s\n", Color(Dim), label, Color(Reset))
	fmt.Fprintln(l.out, strings.TrimRight(body, "\n"))
	fmt.Fprintf(l.out, "%s--- end %s ---%s\n", Color(Dim), label, Color(Reset))
}
