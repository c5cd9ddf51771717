package interp

// writeResult stores an opcode's computed result under dst. Unlike PUT/COPY
// (which require the destination to have been ALLOT'd, spec.md §3.3), result
// destinations are among the opcodes that insert into a scope themselves: a
// missing name is created fresh in the current scope, the way function-arg
// binding and DETECT's error slot do.
func writeResult(vm *VM, dst Arg, v Value, rawSrc string) *RVMError {
	if !dst.IsAssignable() {
		return NewRVMError(ErrArgument, dst.Pos, rawSrc, "destination must be a name slot")
	}
	if !vm.scopes.updateByName(dst.Literal, v) {
		if _, ok := vm.scopes.add(dst.Literal, v); !ok {
			return NewRVMError(ErrMemory, dst.Pos, rawSrc, "nonexistent space: "+dst.Literal)
		}
	}
	return nil
}

func binaryArith(vm *VM, ins *Ins, op func(a, b Value, pos Pos, raw string) (Value, *RVMError)) (ExecutionStatus, *RVMError) {
	a, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	b, err := vm.resolveArg(ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	res, err := op(a, b, ins.Pos, ins.RawSrc)
	if err != nil {
		return StatusFailedWithError, err
	}
	if err := writeResult(vm, ins.Args[2], res, ins.RawSrc); err != nil {
		return StatusFailedWithError, err
	}
	return StatusSuccess, nil
}

func riAdd(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return binaryArith(vm, ins, addValues)
}

func riMul(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return binaryArith(vm, ins, func(a, b Value, pos Pos, raw string) (Value, *RVMError) {
		return arithOp(a, b, pos, raw, "MUL", func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
	})
}

func riDiv(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return binaryArith(vm, ins, divValues)
}

func riPow(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return binaryArith(vm, ins, powValue)
}

func riRoot(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return binaryArith(vm, ins, rootValue)
}

func riOpp(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	a, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	res, err := oppValue(a, ins.Pos, ins.RawSrc)
	if err != nil {
		return StatusFailedWithError, err
	}
	if err := writeResult(vm, ins.Args[1], res, ins.RawSrc); err != nil {
		return StatusFailedWithError, err
	}
	return StatusSuccess, nil
}
