package interp

// riEnd marks the final instruction of an InsSet (spec.md §4.4); the END
// opcode itself has no runtime effect beyond letting the dispatcher fall off
// the loop naturally, since the label index was already populated by the
// parser when it emitted the InsSet.
func riEnd(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return StatusSuccess, nil
}

// riExit aborts the innermost loop/function body, or with a labelled
// argument jumps straight to that label's END before aborting (spec.md
// §4.4's EXIT contract). With no arguments it aborts the current InsSet.
func riExit(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) == 0 {
		return StatusAborted, nil
	}
	cur := vm.currentInsSet()
	label := ins.Args[0].Literal
	idx, ok := cur.Label(label)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrLabelUndefined, ins.Pos, ins.RawSrc, "undefined label: "+label)
	}
	*ptr = idx
	return StatusAborted, nil
}

func (vm *VM) currentInsSet() *InsSet {
	return vm.insStack[len(vm.insStack)-1]
}
