package interp

// riCmp packages two operands into a CompareGroup and stores it in dst
// (spec.md §3.2, §4.1). The group holds copies of the two resolved values,
// not slot IDs, so writes to those slots after CMP are not seen by it.
// The relation keyword is supplied later, at CREL/JR/UNTIL time.
func riCmp(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	a, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	b, err := vm.resolveArg(ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	dst := ins.Args[2]
	group := CompareGroup{Left: a.Copy(), Right: b.Copy()}
	if err := writeResult(vm, dst, group, ins.RawSrc); err != nil {
		return StatusFailedWithError, err
	}
	return StatusSuccess, nil
}

// riCalcRel evaluates a CompareGroup (produced by CMP) against a relation
// keyword and stores the boolean result in dst (spec.md §4.1).
func riCalcRel(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	groupVal, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	group, ok := groupVal.(CompareGroup)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "CREL requires a CompareGroup operand")
	}
	relArg := ins.Args[1]
	res, err := evaluateRelation(group.Left, group.Right, Relation(relArg.Literal), ins.Pos, ins.RawSrc)
	if err != nil {
		return StatusFailedWithError, err
	}
	if err := writeResult(vm, ins.Args[2], BoolValue(res), ins.RawSrc); err != nil {
		return StatusFailedWithError, err
	}
	return StatusSuccess, nil
}
