package interp

import "time"

// riRandInt writes a random Int in [lo, hi) into dst (spec.md §4.2).
func riRandInt(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	lo, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	hi, err := vm.resolveArg(ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	nlo, ok := asNumeric(lo)
	nhi, ok2 := asNumeric(hi)
	if !ok || !ok2 {
		return StatusFailedWithError, NewRVMError(ErrArgTypeMismatch, ins.Pos, ins.RawSrc, "RAND_INT bounds must be Numeric")
	}
	l, h := numericToInt64(nlo), numericToInt64(nhi)
	if h <= l {
		return StatusFailedWithError, NewRVMError(ErrRange, ins.Pos, ins.RawSrc, "RAND_INT requires lo < hi")
	}
	v := l + vm.randIntn(h-l)
	if werr := writeResult(vm, ins.Args[2], IntValue(v), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riRandFloat writes a random Float in [lo, hi) into dst (spec.md §4.2).
func riRandFloat(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	lo, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	hi, err := vm.resolveArg(ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	nlo, ok := asNumeric(lo)
	nhi, ok2 := asNumeric(hi)
	if !ok || !ok2 {
		return StatusFailedWithError, NewRVMError(ErrArgTypeMismatch, ins.Pos, ins.RawSrc, "RAND_FLOAT bounds must be Numeric")
	}
	span := nhi.Float64() - nlo.Float64()
	if span <= 0 {
		return StatusFailedWithError, NewRVMError(ErrRange, ins.Pos, ins.RawSrc, "RAND_FLOAT requires lo < hi")
	}
	v := nlo.Float64() + vm.randFloat()*span
	if werr := writeResult(vm, ins.Args[2], FloatValue(v), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riTimeNow writes the current instant into dst as an ISO-formatted Time
// (spec.md §4.2).
func riTimeNow(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	tv := TimeValue{T: time.Now().UTC(), Format: TimeISO}
	if werr := writeResult(vm, ins.Args[0], tv, ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riExeRasm compiles and runs an inline RA source fragment in the current
// scope, the EXE_RASM "eval" opcode (spec.md §4.6). Its string argument is
// parsed fresh each call since RA carries no precompiled-fragment cache.
func riExeRasm(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 1 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "EXE_RASM requires a source String")
	}
	srcVal, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	src, ok := srcVal.(StringValue)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "EXE_RASM requires a String")
	}
	set, perr := Parse(string(src), vm.ops, "<exe_rasm>")
	if perr != nil {
		return StatusFailedWithError, NewRVMError(ErrSyntax, ins.Pos, ins.RawSrc, perr.Error())
	}
	status, herr := vm.executeInsSet(set)
	if herr != nil {
		return StatusFailedWithError, herr
	}
	return status, nil
}
