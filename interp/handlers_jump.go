package interp

func jumpToLabel(vm *VM, label string, pos Pos, raw string, ptr *int) *RVMError {
	cur := vm.currentInsSet()
	idx, ok := cur.Label(label)
	if !ok {
		return NewRVMError(ErrLabelUndefined, pos, raw, "undefined label: "+label)
	}
	*ptr = idx
	return nil
}

// riJmp is an unconditional jump to a label within the current InsSet
// (spec.md §4.4).
func riJmp(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if err := jumpToLabel(vm, ins.Args[0].Literal, ins.Pos, ins.RawSrc, ptr); err != nil {
		return StatusFailedWithError, err
	}
	return StatusSuccess, nil
}

// riJr is the relational branch (spec.md §4.1, §4.4) in either of its two
// shapes: `JR cmp, rel, L` evaluates a CompareGroup produced by CMP, and
// the fused `JR a, rel, b, L` compares two operands directly.
func riJr(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	var left, right Value
	var rel Relation
	var label string
	switch len(ins.Args) {
	case 3:
		gv, err := vm.resolveArg(ins.Args[0])
		if err != nil {
			return StatusFailedWithError, err
		}
		group, ok := gv.(CompareGroup)
		if !ok {
			return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "JR's three-argument form requires a CompareGroup operand")
		}
		left, right = group.Left, group.Right
		rel = Relation(ins.Args[1].Literal)
		label = ins.Args[2].Literal
	case 4:
		a, err := vm.resolveArg(ins.Args[0])
		if err != nil {
			return StatusFailedWithError, err
		}
		b, err := vm.resolveArg(ins.Args[2])
		if err != nil {
			return StatusFailedWithError, err
		}
		left, right = a, b
		rel = Relation(ins.Args[1].Literal)
		label = ins.Args[3].Literal
	default:
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "JR takes cmp, rel, label or a, rel, b, label")
	}
	ok, err := evaluateRelation(left, right, rel, ins.Pos, ins.RawSrc)
	if err != nil {
		return StatusFailedWithError, err
	}
	if !ok {
		return StatusSuccess, nil
	}
	if err := jumpToLabel(vm, label, ins.Pos, ins.RawSrc, ptr); err != nil {
		return StatusFailedWithError, err
	}
	return StatusSuccess, nil
}

// riJt jumps to a label when the tested operand is truthy (spec.md §4.4).
func riJt(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	v, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	if !v.Bool() {
		return StatusSuccess, nil
	}
	if jerr := jumpToLabel(vm, ins.Args[1].Literal, ins.Pos, ins.RawSrc, ptr); jerr != nil {
		return StatusFailedWithError, jerr
	}
	return StatusSuccess, nil
}

// riJf jumps to a label when the tested operand is falsy (spec.md §4.4).
func riJf(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	v, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	if v.Bool() {
		return StatusSuccess, nil
	}
	if jerr := jumpToLabel(vm, ins.Args[1].Literal, ins.Pos, ins.RawSrc, ptr); jerr != nil {
		return StatusFailedWithError, jerr
	}
	return StatusSuccess, nil
}
