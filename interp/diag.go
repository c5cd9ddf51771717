package interp

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newDiagLogger builds the dispatcher's structured per-instruction tracer.
// At Debug off it sits at WarnLevel, so the per-opcode Debug record built
// in executeInsSet is dropped rather than written; --debug (spec.md §6.1
// -d/-db) drops it to DebugLevel. Warn records go to stderr either way.
func newDiagLogger(debug bool) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// SetDiagOutput redirects the diagnostic logger's output. The CLI's
// --output-redirect flag redirects program stdout only and does not call it.
func (vm *VM) SetDiagOutput(w io.Writer) {
	vm.diag.SetOutput(w)
}
