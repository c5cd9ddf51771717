package interp

// spNewPrefix is the acquire prefix for every scope SP_NEW mints,
// mirroring the original source's internal pre_SP_NEW constant
// (rvm_ris.cpp ri_sp_new). riSpNew then renames the scope to its ID
// string, so the prefix does not appear in the final name — the caller
// never supplies the scope's name.
const spNewPrefix = "SP_NEW-"

// riSpNew mints a fresh, independently addressable scope and writes its
// generated ID string into n (spec.md §3.3: "SP_NEW n — acquire new named
// scope, store its ID string into n"). n is a destination, not the new
// scope's name.
func riSpNew(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	s := vm.scopes.acquire(spNewPrefix, false)
	s.name = s.id.String()
	// SP_NEW only mints; SP_SET is the explicit switch (spec.md §3.3), so
	// the freshly acquired scope must not stay current.
	vm.scopes.popCurrent()
	if werr := writeResult(vm, ins.Args[0], StringValue(s.name), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riSpSet switches the current scope to the one named by n's resolved
// string value, without creating it (spec.md §3.3). n holds an ID string
// previously produced by SP_NEW or SP_GET — it is resolved like any other
// argument, not read as a literal.
func riSpSet(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	v, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	sv, ok := v.(StringValue)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrArgTypeMismatch, ins.Pos, ins.RawSrc, "SP_SET requires a String scope ID")
	}
	s, ok := vm.scopes.findScopeByName(string(sv))
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrMemory, ins.Pos, ins.RawSrc, "nonexistent scope: "+string(sv))
	}
	vm.scopes.pushExisting(s)
	return StatusSuccess, nil
}

// riSpGet writes the current scope's name into dst (spec.md §3.3). For a
// scope minted by SP_NEW that name is its ID string; for any other scope
// (the root, a loop or function body) it is the prefixed name, not the ID
// string.
func riSpGet(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	name := vm.scopes.top().name
	if werr := writeResult(vm, ins.Args[0], StringValue(name), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riSpDel releases the scope named by n's resolved string value, dropping
// every slot it owns (spec.md §3.3). Like SP_SET, n is resolved, not read
// as a literal.
func riSpDel(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	v, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	sv, ok := v.(StringValue)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrArgTypeMismatch, ins.Pos, ins.RawSrc, "SP_DEL requires a String scope ID")
	}
	s, ok := vm.scopes.findScopeByName(string(sv))
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrMemory, ins.Pos, ins.RawSrc, "nonexistent scope: "+string(sv))
	}
	vm.scopes.release(s)
	return StatusSuccess, nil
}
