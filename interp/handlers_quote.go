package interp

// riQot binds a Quote to dst referencing src's slot identity, not its
// current value (spec.md §3.2, §9 "Shared-pointer graphs" rewrite).
func riQot(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	src := ins.Args[0]
	if !src.IsAssignable() {
		return StatusFailedWithError, NewRVMError(ErrArgument, src.Pos, ins.RawSrc, "QOT source must be a name slot")
	}
	id, err := vm.slotIDOf(src)
	if err != nil {
		return StatusFailedWithError, err
	}
	if werr := writeResult(vm, ins.Args[1], QuoteValue{Target: id}, ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riQotVal writes v through the quote q into its referent slot, the
// write-direction counterpart to ordinary identifier access's auto-deref
// read (spec.md §4.4: "QOT_VAL v, q — write v through the quote into the
// referent"). v is resolved normally (literals materialize); q is resolved
// raw so we see the QuoteValue itself rather than auto-dereferencing it.
func riQotVal(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	v, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	raw, err := vm.rawResolveArg(ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	q, ok := raw.(QuoteValue)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "QOT_VAL requires a Quote operand")
	}
	// A same-kind container referent updates in place so aliased views of
	// it observe the write; anything else replaces the slot's occupant
	// (spec.md §3.2's update_in_place / UpdateOutcome contract).
	if cur, found := vm.scopes.findByID(q.Target); found {
		if up, isUp := cur.(Updatable); isUp && cur.Kind() == v.Kind() {
			if up.UpdateInPlace(v.Copy()) == InPlace {
				return StatusSuccess, nil
			}
		}
	}
	if !vm.scopes.updateByID(q.Target, v.Copy()) {
		return StatusFailedWithError, NewRVMError(ErrMemory, ins.Pos, ins.RawSrc, "quote target released")
	}
	return StatusSuccess, nil
}
