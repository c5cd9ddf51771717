package interp

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// Debugger is the interactive stepper behind --debug (spec.md §6.1 -d/-db,
// §7's debugger interface). It is deliberately thin: breakpoint tracking
// plus a read-eval loop over scope inspection, since the spec only commits
// to the debugger's contract (break on a line, inspect a slot, resume) and
// leaves its UI unspecified.
type Debugger struct {
	rl          *readline.Instance
	breakpoints map[string]bool
	out         io.Writer
	fmt         *consoleFormatter
	running     bool
}

// NewDebugger opens the readline-backed REPL used once execution pauses.
func NewDebugger(vm *VM) (*Debugger, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "(rvm-dbg) ",
		Stdin:       io.NopCloser(vm.opt.Stdin),
		Stdout:      vm.opt.Stdout,
		Stderr:      vm.opt.Stderr,
		HistoryFile: "",
	})
	if err != nil {
		return nil, err
	}
	return &Debugger{rl: rl, breakpoints: map[string]bool{}, out: vm.opt.Stdout, fmt: vm.fmt}, nil
}

// AddBreakpoint arms a pause at file:line.
func (d *Debugger) AddBreakpoint(file string, line int) {
	d.breakpoints[fmt.Sprintf("%s:%d", file, line)] = true
}

func (d *Debugger) shouldBreak(ins *Ins) bool {
	if d.running {
		return false
	}
	return d.breakpoints[fmt.Sprintf("%s:%d", ins.Pos.Filepath, ins.Pos.Line)]
}

// step prints the paused instruction and drives the REPL until the user
// steps, continues, or quits.
func (d *Debugger) step(vm *VM, ins *Ins) {
	fmt.Fprintf(d.out, "break at %s: %s\n", ins.Pos.String(), ins.RawSrc)
	for {
		line, err := d.rl.Readline()
		if err != nil {
			return
		}
		cmd := strings.TrimSpace(line)
		switch {
		case cmd == "" || cmd == "s" || cmd == "step":
			return
		case cmd == "c" || cmd == "continue":
			d.running = true
			return
		case strings.HasPrefix(cmd, "p ") || strings.HasPrefix(cmd, "print "):
			name := strings.TrimSpace(strings.SplitN(cmd, " ", 2)[1])
			if sl, ok := vm.scopes.findByName(name); ok {
				fmt.Fprintln(d.out, d.fmt.FormatValue(sl.value))
			} else {
				fmt.Fprintln(d.out, "no such slot:", name)
			}
		case cmd == "q" || cmd == "quit":
			os.Exit(0)
		default:
			fmt.Fprintln(d.out, "commands: step|continue|print <name>|quit")
		}
	}
}
