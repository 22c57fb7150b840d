package msg

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Output is where every message is written. It defaults to a colorable stdout.
var Output io.Writer = color.Output

// exit is swapped out by tests that exercise Fatal.
var exit = os.Exit

func emit(level string, format string, a ...any) {
	fmt.Fprint(Output, level)
	fmt.Fprint(Output, ": ")
	fmt.Fprintf(Output, format, a...)
	fmt.Fprint(Output, "\n")
}

func Error(format string, a ...any) {
	emit(color.HiRedString("error"), format, a...)
}

func Warn(format string, a ...any) {
	emit(color.YellowString("warn"), format, a...)
}

func Fatal(format string, a ...any) {
	emit(color.RedString("fatal"), format, a...)
	exit(1)
}

func Info(format string, a ...any) {
	emit(color.HiGreenString("info"), format, a...)
}

// Hint prints an indented follow-up line for the previous message.
func Hint(format string, a ...any) {
	fmt.Fprint(Output, "  ")
	fmt.Fprintf(Output, format, a...)
	fmt.Fprint(Output, "\n")
}

const statusWidth = 12

// Status prints a right-aligned green verb followed by a message, e.g.
//
//	 Configuring with cmake ..
func Status(verb, format string, a ...any) {
	pad := max(statusWidth-len(verb), 0)
	fmt.Fprint(Output, strings.Repeat(" ", pad))
	fmt.Fprint(Output, color.HiGreenString(verb))
	fmt.Fprint(Output, " ")
	fmt.Fprintf(Output, format, a...)
	fmt.Fprint(Output, "\n")
}

// Rule prints a horizontal separator around program output.
func Rule() {
	fmt.Fprintln(Output, strings.Repeat("-", 40))
}

type IndentWriter struct {
	Indent    string
	W         io.Writer
	didIndent bool
}

func (w *IndentWriter) Write(p []byte) (n int, err error) {
	var buf []byte
	for _, c := range p {
		if !w.didIndent {
			buf = append(buf, w.Indent...)
			w.didIndent = true
		}
		buf = append(buf, c)
		if c == '\n' || c == '\r' {
			w.didIndent = false
		}
	}
	if _, err := w.W.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
