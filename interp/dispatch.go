package interp

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Options configures a VM, mirroring the teacher's Options struct: I/O
// streams default to os.Std* exactly as the teacher's New() does.
type Options struct {
	Stdin          io.Reader
	Stdout, Stderr io.Writer
	WorkDir        string
	Profile        SerializationProfile
	Debug          bool
	Color          bool
	PrecompLinkDir string
}

// VM is the engine context: the single place that owns the opcode table,
// the root scope and the global execution stacks. Spec.md §9 asks that the
// source's several file-scope singletons (scope pool, opcode registry, I/O
// facade) become one explicit context threaded through the parser and
// dispatcher instead of static globals with implicit init order — VM is
// that context, built once by New and torn down at process exit.
type VM struct {
	opt Options

	mint    *idMinter
	ops     *opcodeTable
	scopes  *scopeManager
	diag    *logrus.Logger
	fmt     *consoleFormatter
	debugger *Debugger

	insStack  []*InsSet // execution stack of active InsSets (innermost last)
	atmpStack []*atmpBlock
	callDepth int

	srID, seID, sSeID ID // well-known global slot IDs captured at init
	errRoot           *CustomType

	loader *loader

	breakArmed bool

	stdinScanner *bufio.Scanner
}

func New(opt Options) *VM {
	if opt.Stdin == nil {
		opt.Stdin = os.Stdin
	}
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}

	vm := &VM{opt: opt, mint: newIDMinter()}
	vm.ops = newOpcodeTable(vm.mint)
	registerAllOpcodes(vm.ops)
	vm.scopes = newScopeManager(vm.mint)
	vm.diag = newDiagLogger(opt.Debug)
	vm.fmt = newConsoleFormatter(opt.Color)
	vm.loader = newLoader(vm)
	vm.installBuiltins()
	return vm
}

// installBuiltins seeds the root scope with the well-known names of
// spec.md §6.4: SR, SE, _SE, SN, SS, true, false, null, and one DType per
// built-in kind.
func (vm *VM) installBuiltins() {
	root := vm.scopes.root
	add := func(name string, v Value) ID {
		sl, _ := root.add(vm.mint, name, v)
		return sl.id
	}
	vm.srID = add("SR", Null)
	vm.seID = add("SE", Null)
	vm.sSeID = add("_SE", Null)
	add("SN", StringValue("\n"))
	add("SS", StringValue(" "))
	add("true", BoolValue(true))
	add("false", BoolValue(false))
	add("null", Null)

	builtins := []struct {
		name string
		kind Kind
	}{
		{"tp-int", KindInt}, {"tp-float", KindFloat}, {"tp-char", KindChar},
		{"tp-bool", KindBool}, {"tp-str", KindString}, {"tp-null", KindNull},
		{"tp-list", KindList}, {"tp-dict", KindDict}, {"tp-series", KindSeries},
		{"tp-pair", KindPair}, {"tp-time", KindTime}, {"tp-qot", KindQuote},
	}
	for _, b := range builtins {
		add(b.name, DType{Name: b.name, Built: b.kind})
	}
	add("tp", DType{Name: "tp", Built: KindDType})

	// Root of the built-in error CustomType hierarchy; every EXPOSE-able
	// instance belongs_to this unless the program defines its own root via
	// TP_DEF with no parent (spec.md §4.5, §8 scenario 3).
	errRoot := NewCustomType("Error", nil)
	vm.errRoot = errRoot
	add("Error", errRoot.AsDType())
}

func (vm *VM) armBreakpoint() { vm.breakArmed = true }

// Result returns the well-known SR ("single return") slot's current value,
// the program status --run reports on exit (spec.md §6.1, §3.2's
// RetFunction note).
func (vm *VM) Result() Value {
	v, _ := vm.scopes.findByID(vm.srID)
	return v
}

// ParseSource parses RA source text against vm's opcode table, the entry
// point cmd/rvm uses for both --run and --comp against a .ra target
// (spec.md §4.6).
func (vm *VM) ParseSource(src, path string) (*InsSet, error) {
	return Parse(src, vm.ops, path)
}

// WriteRSI serializes root at profile into w, --comp's write side
// (spec.md §6.1 -c, §4.6).
func (vm *VM) WriteRSI(root *InsSet, profile SerializationProfile, extensions []string, w io.Writer) error {
	return Serialize(root, profile, extensions, w)
}

// ReadRSI deserializes an RSI stream against vm's opcode table, --run's
// load path when --target is an .rsi file (spec.md §4.6).
func (vm *VM) ReadRSI(r io.Reader) (root *InsSet, extensions []string, err error) {
	return Deserialize(r, vm.ops)
}

// AttachDebugger wires an interactive stepper into the dispatch loop,
// used by cmd/rvm when --debug accompanies --run (spec.md §6.1 -d/-db).
func (vm *VM) AttachDebugger(d *Debugger) { vm.debugger = d }

// FormatError renders an *RVMError through the VM's console formatter,
// honoring --enable-colorful-output (spec.md §6.1 -clr). At profile
// Release and above only the title and one-line summary print; below that
// the full annotated trace does (spec.md §7).
func (vm *VM) FormatError(err *RVMError) string {
	if vm.opt.Profile >= ProfileRelease {
		return vm.fmt.FormatSummary(err)
	}
	return vm.fmt.FormatError(err)
}

// FormatValue renders a Value through the VM's console formatter, the same
// rendering the debugger's print command uses.
func (vm *VM) FormatValue(v Value) string { return vm.fmt.FormatValue(v) }

// SetDebugBreakpoint arms a pause at file:line for the attached debugger;
// it does nothing when no debugger is attached.
func (vm *VM) SetDebugBreakpoint(file string, line int) {
	if vm.debugger != nil {
		vm.debugger.AddBreakpoint(file, line)
	}
}

// Execute runs root to completion, the engine's single public entry point
// (analogous to the teacher's Interpreter.Eval). On return, the SE slot
// (if non-Null) becomes a thrown *RVMError back to the caller, matching
// spec.md §4.3 step 6: "if this was the outermost execute, propagate the
// SE error slot as a thrown RVM_Error."
func (vm *VM) Execute(root *InsSet) (status ExecutionStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = vm.Panic(r)
		}
	}()
	status, rerr := vm.executeInsSet(root)
	if rerr != nil {
		return status, rerr
	}
	if se, ok := vm.scopes.findByID(vm.seID); ok {
		if ev, ok := se.(ErrorValue); ok {
			vm.scopes.updateByID(vm.seID, Null)
			return StatusFailedWithError, ev.Err
		}
	}
	return status, nil
}

// Panic wraps a recovered Go panic from an opcode handler as an *RVMError,
// mirroring the teacher's Panic/GetOldestPanicForErr machinery for
// surfacing a host-language panic as interpreter-level error data.
func (vm *VM) Panic(r interface{}) *RVMError {
	return NewRVMError(ErrRuntime, Pos{}, "", fmt.Sprintf("internal error: %v", r))
}

// executeInsSet is the dispatcher's core loop (spec.md §4.3). It pushes the
// InsSet, walks it instruction by instruction, and on error-leak augments
// the trace chain before propagating.
func (vm *VM) executeInsSet(s *InsSet) (ExecutionStatus, *RVMError) {
	vm.insStack = append(vm.insStack, s)
	defer func() {
		vm.insStack = vm.insStack[:len(vm.insStack)-1]
	}()

	// Spec.md §4.3 step 2: an InsSet whose first instruction carries an
	// extension tag runs with that extension's scope appended to the active
	// chain, unmounted again when this execute returns.
	if len(s.Ins) > 0 && s.Ins[0].ExtensionTag != "" {
		if ext, ok := vm.scopes.findScopeByName(s.Ins[0].ExtensionTag); ok {
			vm.scopes.pushExisting(ext)
			defer vm.scopes.popCurrent()
		}
	}

	ptr := 0
	status := StatusSuccess
	var herr *RVMError
	for ptr < len(s.Ins) {
		ins := s.Ins[ptr]
		if vm.breakArmed || (vm.debugger != nil && vm.debugger.shouldBreak(ins)) {
			vm.breakArmed = false
			if vm.debugger != nil {
				vm.debugger.step(vm, ins)
			}
		}
		vm.diag.WithFields(logrus.Fields{"op": ins.RI.Name, "pos": ins.Pos.String()}).Debug("exec")
		status, herr = ins.RI.Exec(vm, ins, &ptr)
		if herr != nil {
			herr.PrependTrace(TraceFragment{
				ScopeLeaderPos:  s.ScopeLeaderPos.String(),
				ScopeLeaderCode: s.ScopeLeader,
				ErrorPos:        ins.Pos.String(),
				ErrorCode:       ins.RawSrc,
			})
			return StatusFailedWithError, herr
		}
		if status == StatusAborted || status == StatusAbortedLoop || status == StatusAbortedFunction || status == StatusExposedError {
			break
		}
		ptr++
	}
	return status, nil
}

// resolveArg materializes the Value an Arg denotes: identifiers/keywords
// resolve through the scope chain; number/string literals are materialized
// as transient values (observable side effect per spec.md §5's
// left-to-right argument evaluation note).
func (vm *VM) resolveArg(a Arg) (Value, *RVMError) {
	switch a.Kind {
	case ArgNumber:
		return parseNumberLiteral(a.Literal), nil
	case ArgString:
		return StringValue(unescapeString(a.Literal)), nil
	case ArgIdentifier, ArgKeyword:
		sl, ok := vm.scopes.findByName(a.Literal)
		if !ok {
			return nil, NewRVMError(ErrMemory, a.Pos, a.Literal, "nonexistent space: "+a.Literal)
		}
		return derefIfQuote(vm, sl.value)
	default:
		return nil, NewRVMError(ErrArgument, a.Pos, a.Literal, "unresolvable argument")
	}
}

// rawResolveArg is resolveArg without the automatic Quote dereference, used
// by QOT_VAL to distinguish "give me the Quote itself" from the ambient
// auto-deref every other opcode gets on identifier access (spec.md §3.2).
func (vm *VM) rawResolveArg(a Arg) (Value, *RVMError) {
	switch a.Kind {
	case ArgIdentifier, ArgKeyword:
		sl, ok := vm.scopes.findByName(a.Literal)
		if !ok {
			return nil, NewRVMError(ErrMemory, a.Pos, a.Literal, "nonexistent space: "+a.Literal)
		}
		return sl.value, nil
	default:
		return vm.resolveArg(a)
	}
}

// derefIfQuote resolves one level of Quote indirection when a slot holds
// one, per spec.md §3.2 ("Quote... dereferences lazily").
func derefIfQuote(vm *VM, v Value) (Value, *RVMError) {
	if q, ok := v.(QuoteValue); ok {
		target, ok := vm.scopes.findByID(q.Target)
		if !ok {
			return nil, NewRVMError(ErrMemory, Pos{}, "", "quote target released")
		}
		return target, nil
	}
	return v, nil
}

func parseNumberLiteral(lit string) Value {
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return IntValue(i)
	}
	f, _ := strconv.ParseFloat(lit, 64)
	return FloatValue(f)
}

// slotIDOf returns the slot ID a destination Arg names, creating no new
// slot (ALLOT already having run is the caller's responsibility).
func (vm *VM) slotIDOf(a Arg) (ID, *RVMError) {
	sl, ok := vm.scopes.findByName(a.Literal)
	if !ok {
		return ID{}, NewRVMError(ErrMemory, a.Pos, a.Literal, "nonexistent space: "+a.Literal)
	}
	return sl.id, nil
}

func (vm *VM) randIntn(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return rand.Int63n(n)
}

func (vm *VM) randFloat() float64 {
	return rand.Float64()
}
