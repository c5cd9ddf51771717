package interp

// riRepeat runs its body a fixed number of times in one delayed-release
// scope, re-cleared each pass so slot values inside the body don't survive
// across iterations while their slot IDs and the scope's own identity do
// (spec.md §3.3, §4.4). A second, assignable argument names a per-iteration counter slot.
func riRepeat(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 1 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "REPEAT requires an iteration count")
	}
	countVal, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	n, ok := asNumeric(countVal)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "REPEAT count must be Numeric")
	}
	count := numericToInt64(n)

	var counterName string
	if len(ins.Args) > 1 && ins.Args[1].IsAssignable() {
		counterName = ins.Args[1].Literal
	}

	s := vm.scopes.acquire("REPEAT-body", true)
	defer vm.scopes.release(s)

	for i := int64(0); i < count; i++ {
		s.clearLocals()
		if counterName != "" {
			s.add(vm.mint, counterName, IntValue(i))
		}
		status, herr := vm.executeInsSet(ins.Body)
		if herr != nil {
			return StatusFailedWithError, herr
		}
		if status == StatusAborted || status == StatusAbortedLoop {
			break
		}
		if status == StatusAbortedFunction || status == StatusExposedError {
			return status, nil
		}
	}
	return StatusSuccess, nil
}

// riUntil is a pre-test loop: the condition is evaluated before every pass
// (so a condition that is already true runs the body zero times), repeating
// while it is false (spec.md §4.1 "body runs while !evaluate(cmp, rel)").
// The test is either `UNTIL cmp, rel` against a CompareGroup slot — which
// must therefore hold a CompareGroup before the loop is entered, re-read
// each pass so a CMP inside the body drives the loop — or the fused
// `UNTIL a, rel, b`.
func riUntil(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) != 2 && len(ins.Args) != 3 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "UNTIL takes cmp, rel or a, rel, b")
	}
	test := func() (bool, *RVMError) {
		if len(ins.Args) == 2 {
			gv, err := vm.resolveArg(ins.Args[0])
			if err != nil {
				return false, err
			}
			group, ok := gv.(CompareGroup)
			if !ok {
				return false, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "UNTIL's two-argument form requires a CompareGroup operand")
			}
			return evaluateRelation(group.Left, group.Right, Relation(ins.Args[1].Literal), ins.Pos, ins.RawSrc)
		}
		a, err := vm.resolveArg(ins.Args[0])
		if err != nil {
			return false, err
		}
		b, err := vm.resolveArg(ins.Args[2])
		if err != nil {
			return false, err
		}
		return evaluateRelation(a, b, Relation(ins.Args[1].Literal), ins.Pos, ins.RawSrc)
	}

	s := vm.scopes.acquire("UNTIL-body", true)
	defer vm.scopes.release(s)

	for {
		done, err := test()
		if err != nil {
			return StatusFailedWithError, err
		}
		if done {
			break
		}
		s.clearLocals()
		status, herr := vm.executeInsSet(ins.Body)
		if herr != nil {
			return StatusFailedWithError, herr
		}
		if status == StatusAborted || status == StatusAbortedLoop {
			break
		}
		if status == StatusAbortedFunction || status == StatusExposedError {
			return status, nil
		}
	}
	return StatusSuccess, nil
}
