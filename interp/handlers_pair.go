package interp

func pairOf(vm *VM, a Arg) (KeyValuePair, *RVMError) {
	v, err := vm.resolveArg(a)
	if err != nil {
		return KeyValuePair{}, err
	}
	kv, ok := v.(KeyValuePair)
	if !ok {
		return KeyValuePair{}, NewRVMError(ErrDataTypeMismatch, a.Pos, a.Literal, "expected a Pair")
	}
	return kv, nil
}

// riPairNew constructs a key/value Pair into dst (spec.md SUPPLEMENTED
// FEATURES #2).
func riPairNew(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	k, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	v, err := vm.resolveArg(ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	pair := KeyValuePair{KeyVal: k.Copy(), Val: v.Copy()}
	if werr := writeResult(vm, ins.Args[2], pair, ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riPairSetKey overwrites a Pair's key in place (spec.md SUPPLEMENTED
// FEATURES #2).
func riPairSetKey(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	dst := ins.Args[0]
	kv, err := pairOf(vm, dst)
	if err != nil {
		return StatusFailedWithError, err
	}
	k, kerr := vm.resolveArg(ins.Args[1])
	if kerr != nil {
		return StatusFailedWithError, kerr
	}
	kv.KeyVal = k.Copy()
	if werr := writeResult(vm, dst, kv, ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riPairSetValue overwrites a Pair's value in place (spec.md SUPPLEMENTED
// FEATURES #2).
func riPairSetValue(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	dst := ins.Args[0]
	kv, err := pairOf(vm, dst)
	if err != nil {
		return StatusFailedWithError, err
	}
	v, verr := vm.resolveArg(ins.Args[1])
	if verr != nil {
		return StatusFailedWithError, verr
	}
	kv.Val = v.Copy()
	if werr := writeResult(vm, dst, kv, ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riPairGetKey reads a Pair's key into dst (spec.md SUPPLEMENTED FEATURES #2).
func riPairGetKey(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	kv, err := pairOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	if werr := writeResult(vm, ins.Args[1], kv.KeyVal.Copy(), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riPairGetValue reads a Pair's value into dst (spec.md SUPPLEMENTED
// FEATURES #2).
func riPairGetValue(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	kv, err := pairOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	if werr := writeResult(vm, ins.Args[1], kv.Val.Copy(), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}
