package interp

// riAllot creates slots with the given names in the current scope, valued
// Null. A duplicate name is a DuplicateKeyError (spec.md §4.4).
func riAllot(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	for _, a := range ins.Args {
		if !a.IsAssignable() {
			return StatusFailedWithError, NewRVMError(ErrArgument, a.Pos, ins.RawSrc, "ALLOT requires identifier arguments")
		}
		if _, ok := vm.scopes.add(a.Literal, Null); !ok {
			return StatusFailedWithError, NewRVMError(ErrDuplicateKey, a.Pos, ins.RawSrc, "slot already exists: "+a.Literal)
		}
	}
	return StatusSuccess, nil
}

// riDelete removes slots; a missing name is a MemoryError (spec.md §4.4).
func riDelete(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	for _, a := range ins.Args {
		if !vm.scopes.removeByName(a.Literal) {
			return StatusFailedWithError, NewRVMError(ErrMemory, a.Pos, ins.RawSrc, "nonexistent space: "+a.Literal)
		}
	}
	return StatusSuccess, nil
}

// riPut aliases src into dst if src holds an Iterable (shared semantics);
// otherwise deep-copies. dst must already be an identifier slot (spec.md
// §4.4).
func riPut(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	dst := ins.Args[1]
	if !dst.IsAssignable() {
		return StatusFailedWithError, NewRVMError(ErrArgument, dst.Pos, ins.RawSrc, "PUT destination must be a name slot")
	}
	src, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	var out Value
	if _, ok := asIterable(src); ok {
		out = src // alias: share the same backing storage
	} else {
		out = src.Copy()
	}
	if !vm.scopes.updateByName(dst.Literal, out) {
		return StatusFailedWithError, NewRVMError(ErrMemory, dst.Pos, ins.RawSrc, "nonexistent space: "+dst.Literal)
	}
	return StatusSuccess, nil
}

// riCopy always deep-copies src into dst (spec.md §4.4).
func riCopy(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	dst := ins.Args[1]
	if !dst.IsAssignable() {
		return StatusFailedWithError, NewRVMError(ErrArgument, dst.Pos, ins.RawSrc, "COPY destination must be a name slot")
	}
	src, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	if !vm.scopes.updateByName(dst.Literal, src.Copy()) {
		return StatusFailedWithError, NewRVMError(ErrMemory, dst.Pos, ins.RawSrc, "nonexistent space: "+dst.Literal)
	}
	return StatusSuccess, nil
}

// riSet is a label marker at parse time (spec.md §4.6); at execution it has
// no runtime effect of its own, matching PASS's no-op contract.
func riSet(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return StatusSuccess, nil
}
