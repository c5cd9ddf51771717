package interp

import (
	"fmt"
	"strings"
)

// ErrorKind enumerates the error taxonomy of spec.md §4.5. Behavior, not
// wire names, is what matters: each kind only changes the title printed to
// the user. For ATMP/DETECT every engine-raised kind matches as the
// built-in root type "Error"; the kind does not select a subtype.
type ErrorKind string

const (
	ErrSyntax             ErrorKind = "SyntaxError"
	ErrArgument           ErrorKind = "ArgumentError"
	ErrArgumentNumber     ErrorKind = "ArgumentNumberError"
	ErrArgTypeMismatch    ErrorKind = "ArgTypeMismatchError"
	ErrDataTypeMismatch   ErrorKind = "DataTypeMismatchError"
	ErrMemory             ErrorKind = "MemoryError"
	ErrDuplicateKey       ErrorKind = "DuplicateKeyError"
	ErrKeyNotFound        ErrorKind = "KeyNotFoundError"
	ErrFieldNotFound      ErrorKind = "FieldNotFoundError"
	ErrRange              ErrorKind = "RangeError"
	ErrLink               ErrorKind = "LinkError"
	ErrFileRead           ErrorKind = "FileReadError"
	ErrFileWrite          ErrorKind = "FileWriteError"
	ErrDivideByZero       ErrorKind = "DivideByZeroError"
	ErrRuntime            ErrorKind = "RuntimeError"
	ErrExposed            ErrorKind = "ExposedError"
	ErrLabelUndefined     ErrorKind = "LabelUndefinedError"
)

// TraceFragment is the two-block structure spec.md §4.5 describes: the
// scope leader position/code above the error position/code, with an
// optional file-change banner when the error crossed a file boundary.
type TraceFragment struct {
	ScopeLeaderPos  string
	ScopeLeaderCode string
	ErrorPos        string
	ErrorCode       string
	FileChanged     bool
	FromFile        string
	ToFile          string
}

func (f TraceFragment) String() string {
	var b strings.Builder
	if f.FileChanged {
		fmt.Fprintf(&b, "--- entering %s from %s ---\n", f.ToFile, f.FromFile)
	}
	fmt.Fprintf(&b, "%s: %s\n", f.ScopeLeaderPos, f.ScopeLeaderCode)
	fmt.Fprintf(&b, "%s: %s\n", f.ErrorPos, f.ErrorCode)
	return b.String()
}

// RVMError is the single error type flowing through handler returns, the
// dispatcher's trace accumulation, and ATMP/DETECT matching. Spec.md §9
// asks that the source's exception-driven control flow become explicit
// Result-typed handler returns; RVMError is the Err payload carried by
// ExecutionStatus-returning handlers instead of a thrown C++ exception.
type RVMError struct {
	Kind        ErrorKind
	Pos         Pos
	RawLine     string
	Details     []string
	Hints       []string
	Trace       []TraceFragment
	wrapped     error
	ThrownType  *CustomType // the belongs_to type EXPOSE raised, nil for built-in engine errors
	ThrownValue Value       // the raw EXPOSE payload, when the thrower supplied one
}

func NewRVMError(kind ErrorKind, pos Pos, rawLine string, details ...string) *RVMError {
	return &RVMError{Kind: kind, Pos: pos, RawLine: rawLine, Details: details}
}

func (e *RVMError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s at %s: %s", e.Kind, e.Pos, strings.Join(e.Details, "; "))
	return b.String()
}

func (e *RVMError) Unwrap() error { return e.wrapped }

// Summary is the one-line form printed at profile >= Release (spec.md §7).
func (e *RVMError) Summary() string {
	if len(e.Details) == 0 {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Details[0])
}

// FullTrace is the uncolored annotated multi-fragment form. At profile <
// Release the VM prints the console formatter's FormatError, which has the
// same layout; nothing in the engine calls FullTrace itself.
func (e *RVMError) FullTrace() string {
	var b strings.Builder
	b.WriteString(e.Summary())
	b.WriteString("\n")
	for _, h := range e.Hints {
		fmt.Fprintf(&b, "  hint: %s\n", h)
	}
	for i := len(e.Trace) - 1; i >= 0; i-- {
		b.WriteString(e.Trace[i].String())
	}
	return b.String()
}

// PrependTrace records one more frame the error traversed, called by the
// dispatcher each time an inner InsSet.execute leaks an error to its caller
// (spec.md §4.5 "Trace accumulation").
func (e *RVMError) PrependTrace(f TraceFragment) {
	e.Trace = append([]TraceFragment{f}, e.Trace...)
}

// ErrorValue is the Value-model wrapper (spec.md §3.2's Error variant)
// around an RVMError, carrying trace-info chain, message lines and repair
// hints as first-class VM data so EXPOSE/ATMP/DETECT can operate on it.
type ErrorValue struct {
	Err *RVMError
}

func (e ErrorValue) Kind() Kind  { return KindError }
func (e ErrorValue) Copy() Value { cp := *e.Err; return ErrorValue{Err: &cp} }
func (e ErrorValue) DisplayString() string {
	return e.Err.Summary()
}
func (e ErrorValue) EscapedString() string { return escapeString(e.DisplayString()) }
func (e ErrorValue) Bool() bool            { return true }
