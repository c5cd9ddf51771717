package interp

// ExecutionStatus is the dispatcher's control-flow signal, returned by
// every handler alongside a possible *RVMError. Spec.md §5 names the same
// enum; it replaces the source's exception-driven unwinding (spec.md §9)
// since Go handlers return explicit values instead of throwing.
type ExecutionStatus int

const (
	StatusSuccess ExecutionStatus = iota
	StatusAborted
	StatusAbortedLoop
	StatusAbortedFunction
	StatusExposedError
	StatusFailedWithError
)

// Executor is the uniform handler signature: (ins, &ptr, vm) -> status, err.
// The dispatcher passes the raw Ins; each handler resolves its own args
// (spec.md §4.4).
type Executor func(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError)

// RI ("RVM Instruction") describes one opcode: its mnemonic, arity
// contract, executor, and whether it opens a nested scope. Spec.md §3.4,
// §4.4. Arity -1 means variadic; the handler checks its own argument count.
type RI struct {
	ID               ID
	Name             string
	Arity            int
	Exec             Executor
	HasScope         bool
	IsDelayedRelease bool
}

// opcodeTable is the process-wide-in-spirit, VM-instance-in-practice
// registry that replaces the source's self-registering static RI globals
// (spec.md §9 "Singletons with init order"): registerAllOpcodes(&table)
// runs once from New, instead of relying on static initialization order.
type opcodeTable struct {
	mint *idMinter
	byName map[string]*RI
}

func newOpcodeTable(mint *idMinter) *opcodeTable {
	return &opcodeTable{mint: mint, byName: map[string]*RI{}}
}

func (t *opcodeTable) register(name string, arity int, hasScope, delayed bool, exec Executor) *RI {
	ri := &RI{ID: t.mint.Mint(TagRI), Name: name, Arity: arity, Exec: exec, HasScope: hasScope, IsDelayedRelease: delayed}
	t.byName[name] = ri
	return ri
}

func (t *opcodeTable) Lookup(name string) (*RI, bool) {
	ri, ok := t.byName[name]
	return ri, ok
}

// registerAllOpcodes fills the table. Grouped by category exactly as
// rvm_ris.h's `ris` namespace groups them (memory / arithmetic / compare /
// control / jumps / functions / loops / IO / files / types / scope /
// quotes / errors / iteration / random / time / modules / relation flags).
func registerAllOpcodes(t *opcodeTable) {
	// Flag / no-op opcodes.
	t.register("PASS", 0, false, false, riPass)
	t.register("UNKNOWN", -1, false, false, riUnknown)
	t.register("BREAKPOINT", 0, false, false, riBreakpoint)

	// Relation keywords are not independently executable; CREL/JR/UNTIL
	// consume them as argument literals, matching the source treating
	// ris::RE etc. as flag RIs that are never dispatched on their own.
	for _, rel := range []string{"RE", "RNE", "RG", "RGE", "RL", "RLE", "AND", "OR"} {
		t.register(rel, 0, false, false, riFlagOnly)
	}

	// Memory.
	t.register("ALLOT", -1, false, false, riAllot)
	t.register("DELETE", -1, false, false, riDelete)
	t.register("PUT", 2, false, false, riPut)
	t.register("COPY", 2, false, false, riCopy)
	t.register("SET", 1, false, false, riSet)

	// Arithmetic.
	t.register("ADD", 3, false, false, riAdd)
	t.register("OPP", 2, false, false, riOpp)
	t.register("MUL", 3, false, false, riMul)
	t.register("DIV", 3, false, false, riDiv)
	t.register("POW", 3, false, false, riPow)
	t.register("ROOT", 3, false, false, riRoot)

	// Comparison.
	t.register("CMP", 3, false, false, riCmp)
	t.register("CREL", 3, false, false, riCalcRel)

	// Control.
	t.register("END", 1, false, false, riEnd)
	t.register("EXIT", -1, false, false, riExit)

	// Jumps.
	t.register("JMP", 1, false, false, riJmp)
	t.register("JR", -1, false, false, riJr)
	t.register("JT", 2, false, false, riJt)
	t.register("JF", 2, false, false, riJf)

	// Functions.
	t.register("FUNC", -1, true, false, riFunc)
	t.register("FUNI", -1, true, false, riFuni)
	t.register("CALL", -1, false, false, riCall)
	t.register("IVOK", -1, false, false, riIvok)
	t.register("RET", -1, false, false, riRet)

	// Loops.
	t.register("REPEAT", -1, true, true, riRepeat)
	t.register("UNTIL", -1, true, true, riUntil)

	// IO.
	t.register("SOUT", -1, false, false, riSout)
	t.register("SIN", -1, false, false, riSin)

	// Files.
	t.register("FILE_GET", 3, false, false, riFileGet)
	t.register("FILE_READ", 2, false, false, riFileRead)
	t.register("FILE_WRITE", 2, false, false, riFileWrite)
	t.register("FILE_GET_PATH", 2, false, false, riFileGetPath)
	t.register("FILE_GET_MODE", 2, false, false, riFileGetMode)
	t.register("FILE_GET_SIZE", 2, false, false, riFileGetSize)
	t.register("FILE_SET_MODE", 2, false, false, riFileSetMode)
	t.register("FILE_SET_PATH", 2, false, false, riFileSetPath)

	// Types.
	t.register("TP_GET", 2, false, false, riTpGet)
	t.register("TP_SET", 2, false, false, riTpSet)
	t.register("TP_DEF", -1, false, false, riTpDef)
	t.register("TP_NEW", 2, false, false, riTpNew)
	t.register("TP_ADD_INST_FIELD", -1, false, false, riTpAddInstField)
	t.register("TP_ADD_TP_FIELD", -1, false, false, riTpAddTpField)
	t.register("TP_SET_FIELD", 3, false, false, riTpSetField)
	t.register("TP_GET_FIELD", 3, false, false, riTpGetField)
	t.register("TP_GET_SUPER_FIELD", 4, false, false, riTpGetSuperField)
	t.register("TP_DERIVE", 2, false, false, riTpDerive)

	// Scope.
	t.register("SP_SET", 1, false, false, riSpSet)
	t.register("SP_GET", 1, false, false, riSpGet)
	t.register("SP_NEW", 1, false, false, riSpNew)
	t.register("SP_DEL", 1, false, false, riSpDel)

	// Quotes.
	t.register("QOT", 2, false, false, riQot)
	t.register("QOT_VAL", 2, false, false, riQotVal)

	// Error handling.
	t.register("ATMP", -1, true, false, riAtmp)
	t.register("DETECT", -1, true, false, riDetect)
	t.register("EXPOSE", 1, false, false, riExpose)

	// Iteration.
	t.register("ITER_APND", -1, false, false, riIterApnd)
	t.register("ITER_SUB", 4, false, false, riIterSub)
	t.register("ITER_SIZE", 2, false, false, riIterSize)
	t.register("ITER_GET", 3, false, false, riIterGet)
	t.register("ITER_TRAV", -1, true, true, riIterTrav)
	t.register("ITER_REV_TRAV", -1, true, true, riIterRevTrav)
	t.register("ITER_SET", 3, false, false, riIterSet)
	t.register("ITER_DEL", -1, false, false, riIterDel)
	t.register("ITER_INSERT", 3, false, false, riIterInsert)
	t.register("ITER_UNPACK", -1, false, false, riIterUnpack)

	// Random.
	t.register("RAND_INT", 3, false, false, riRandInt)
	t.register("RAND_FLOAT", 3, false, false, riRandFloat)

	// Time.
	t.register("TIME_NOW", 1, false, false, riTimeNow)

	// Inline execution.
	t.register("EXE_RASM", -1, false, false, riExeRasm)

	// Modules.
	t.register("LOADIN", -1, false, false, riLoadin)
	t.register("LINK", -1, false, false, riLink)

	// Pair accessors (spec.md SUPPLEMENTED FEATURES #2).
	t.register("PAIR_NEW", 3, false, false, riPairNew)
	t.register("PAIR_SET_KEY", 2, false, false, riPairSetKey)
	t.register("PAIR_SET_VALUE", 2, false, false, riPairSetValue)
	t.register("PAIR_GET_KEY", 2, false, false, riPairGetKey)
	t.register("PAIR_GET_VALUE", 2, false, false, riPairGetValue)

	// Registered but unimplemented, matching the original's own "待完成"
	// (to-be-completed) TODO list for these opcodes.
	t.register("THREAD_NEW", -1, false, false, riNotImplemented)
	t.register("THREAD_RUN", -1, false, false, riNotImplemented)
	t.register("DLL_CALL", -1, false, false, riNotImplemented)
	t.register("DLL_LOADIN", -1, false, false, riNotImplemented)
	t.register("DLL_LINK", -1, false, false, riNotImplemented)
	t.register("DLL_UNLOAD", -1, false, false, riNotImplemented)
}

func riNotImplemented(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return StatusFailedWithError, NewRVMError(ErrRuntime, ins.Pos, ins.RawSrc, "opcode not implemented: "+ins.RI.Name)
}

func riFlagOnly(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return StatusSuccess, nil
}

func riPass(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return StatusSuccess, nil
}

func riUnknown(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return StatusFailedWithError, NewRVMError(ErrRuntime, ins.Pos, ins.RawSrc, "unknown opcode")
}

func riBreakpoint(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	vm.armBreakpoint()
	return StatusSuccess, nil
}
