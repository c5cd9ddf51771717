package interp

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// consoleFormatter renders RVMError traces and REPL-style value dumps with
// ANSI color when enabled (spec.md §7's console formatter, specified only
// at interface level — colorization is the one concrete implementation
// this module supplies). Disabled, every method degrades to plain
// Sprintf so piped/non-TTY output stays readable.
type consoleFormatter struct {
	enabled bool
	title   *color.Color
	pos     *color.Color
	errc    *color.Color
	hint    *color.Color
}

func newConsoleFormatter(enabled bool) *consoleFormatter {
	return &consoleFormatter{
		enabled: enabled,
		title:   color.New(color.FgRed, color.Bold),
		pos:     color.New(color.FgCyan),
		errc:    color.New(color.FgYellow),
		hint:    color.New(color.FgGreen),
	}
}

func (f *consoleFormatter) colorize(c *color.Color, s string) string {
	if !f.enabled {
		return s
	}
	return c.Sprint(s)
}

// FormatError renders an RVMError the way the Debug/Testing profiles print
// an uncaught error at program exit (spec.md §7): the summary line, then
// the hints, then the full trace, most-recent frame first.
func (f *consoleFormatter) FormatError(e *RVMError) string {
	out := f.colorize(f.title, string(e.Kind)) + strings.TrimPrefix(e.Summary(), string(e.Kind)) + "\n"
	for _, h := range e.Hints {
		out += "  " + f.colorize(f.hint, "hint: "+h) + "\n"
	}
	for i := len(e.Trace) - 1; i >= 0; i-- {
		fr := e.Trace[i]
		out += fmt.Sprintf("  %s: %s\n", f.colorize(f.pos, fr.ScopeLeaderPos), fr.ScopeLeaderCode)
		out += fmt.Sprintf("  %s: %s\n", f.colorize(f.pos, fr.ErrorPos), f.colorize(f.errc, fr.ErrorCode))
	}
	return out
}

// FormatSummary renders only the error title and one-line summary, the
// Release-and-above form of spec.md §7.
func (f *consoleFormatter) FormatSummary(e *RVMError) string {
	return f.colorize(f.title, string(e.Kind)) + strings.TrimPrefix(e.Summary(), string(e.Kind)) + "\n"
}

// FormatValue renders a Value for interactive debugger output
// (spec.md §7).
func (f *consoleFormatter) FormatValue(v Value) string {
	return f.colorize(f.hint, v.Kind().String()) + " " + v.EscapedString()
}
