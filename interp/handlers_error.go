package interp

// atmpBlock tracks one ATMP's caught error across the DETECT instructions
// that follow it in the same InsSet, replacing the source's C++
// try/catch-block nesting (spec.md §4.5, §9 "exception-driven control
// flow" rewrite). ATMP pushes one; each DETECT peeks it, runs its handler
// at most once, and an unhandled block's error surfaces into SE when the
// enclosing InsSet finishes (spec.md §4.3 step 6).
type atmpBlock struct {
	err     *RVMError
	handled bool
}

// riAtmp drives its body's three sections directly instead of delegating
// wholesale to executeInsSet, because spec.md §4.5's own description of
// ATMP's body ("instructions before [the first DETECT] form the try body;
// DETECT and its siblings form handlers; instructions after the last
// DETECT form finally") requires that a try-body failure *not* unwind the
// whole block the way an ordinary propagating error would: execution must
// still reach the DETECT chain so it can claim the error, and the finally
// section must run exactly once regardless (spec.md §8 "ATMP
// completeness"). A plain executeInsSet call would return as soon as the
// first try instruction failed, skipping straight past every DETECT.
func riAtmp(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	body := ins.Body

	firstDetect := -1
	for idx, sub := range body.Ins {
		if sub.RI.Name == "DETECT" {
			firstDetect = idx
			break
		}
	}
	tryEnd := len(body.Ins)
	if firstDetect >= 0 {
		tryEnd = firstDetect
	}

	blk := &atmpBlock{}
	vm.atmpStack = append(vm.atmpStack, blk)
	vm.insStack = append(vm.insStack, body)
	defer func() {
		vm.insStack = vm.insStack[:len(vm.insStack)-1]
		vm.popAtmpBlock(blk)
	}()

	i := 0
	pendingStatus := StatusSuccess
	for i < len(body.Ins) {
		idx := i
		sub := body.Ins[idx]
		status, herr := sub.RI.Exec(vm, sub, &i)
		if herr != nil {
			if idx < tryEnd {
				// try-body instruction failed: hold the error for the
				// DETECT chain to inspect and jump past the rest of try.
				blk.err = herr
				i = tryEnd
				continue
			}
			herr.PrependTrace(TraceFragment{
				ScopeLeaderPos:  body.ScopeLeaderPos.String(),
				ScopeLeaderCode: body.ScopeLeader,
				ErrorPos:        sub.Pos.String(),
				ErrorCode:       sub.RawSrc,
			})
			return StatusFailedWithError, herr
		}
		if status == StatusAborted || status == StatusAbortedLoop || status == StatusAbortedFunction || status == StatusExposedError {
			if idx < tryEnd {
				// RET/EXIT inside the try body: not an error DETECT can
				// claim, but finally must still run before we propagate.
				pendingStatus = status
				i = tryEnd
				continue
			}
			return status, nil
		}
		i++
	}
	if blk.err != nil && !blk.handled {
		vm.scopes.updateByID(vm.seID, ErrorValue{Err: blk.err})
	}
	return pendingStatus, nil
}

// riDetect runs its body only when the nearest pending atmpBlock holds an
// unhandled error whose thrown type belongs_to the named CustomType (an
// absent ThrownType falls back to the built-in Error root, so DETECT
// against Error catches every engine-raised error kind too). Spec.md §4.5.
func riDetect(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(vm.atmpStack) == 0 {
		return StatusFailedWithError, NewRVMError(ErrRuntime, ins.Pos, ins.RawSrc, "DETECT outside of ATMP")
	}
	blk := vm.atmpStack[len(vm.atmpStack)-1]
	if blk.handled || blk.err == nil {
		if !nextIsDetect(vm, *ptr) {
			vm.popAtmpBlock(blk)
		}
		return StatusSuccess, nil
	}
	if len(ins.Args) < 1 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "DETECT requires a type argument")
	}
	tv, terr := vm.resolveArg(ins.Args[0])
	if terr != nil {
		return StatusFailedWithError, terr
	}
	target, cerr := customTypeOf(tv, ins.Pos, ins.RawSrc)
	if cerr != nil {
		return StatusFailedWithError, cerr
	}
	thrown := blk.err.ThrownType
	if thrown == nil {
		thrown = vm.errRoot
	}
	if !thrown.BelongsTo(target) {
		if !nextIsDetect(vm, *ptr) {
			vm.popAtmpBlock(blk)
		}
		return StatusSuccess, nil
	}

	blk.handled = true
	vm.scopes.updateByID(vm.seID, Null)

	// The matched handler body always runs in a fresh scope, with the
	// caught payload bound into it when an error slot was named
	// (spec.md §4.5).
	s := vm.scopes.acquire("DETECT-body", false)
	defer vm.scopes.release(s)
	if len(ins.Args) > 1 && ins.Args[1].IsAssignable() {
		payload := blk.err.ThrownValue
		if payload == nil {
			payload = ErrorValue{Err: blk.err}
		}
		s.add(vm.mint, ins.Args[1].Literal, payload.Copy())
	}

	status, herr := vm.executeInsSet(ins.Body)
	if herr != nil {
		return StatusFailedWithError, herr
	}
	if !nextIsDetect(vm, *ptr) {
		vm.popAtmpBlock(blk)
	}
	return status, nil
}

// nextIsDetect reports whether the instruction right after ptr in the
// current InsSet is itself a DETECT, i.e. whether the ATMP/DETECT chain
// continues (spec.md §4.5).
func nextIsDetect(vm *VM, ptr int) bool {
	s := vm.currentInsSet()
	if ptr+1 >= len(s.Ins) {
		return false
	}
	return s.Ins[ptr+1].RI.Name == "DETECT"
}

func (vm *VM) popAtmpBlock(blk *atmpBlock) {
	for i := len(vm.atmpStack) - 1; i >= 0; i-- {
		if vm.atmpStack[i] == blk {
			vm.atmpStack = append(vm.atmpStack[:i], vm.atmpStack[i+1:]...)
			return
		}
	}
}

// riExpose raises an error: a bare EXPOSE re-throws the innermost pending
// atmpBlock's error (propagating past an ATMP whose DETECTs didn't match);
// EXPOSE with a CustomInst argument throws a fresh user-defined error whose
// belongs_to chain is the instance's own type (spec.md §4.5).
func riExpose(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) == 0 {
		if len(vm.atmpStack) == 0 {
			return StatusFailedWithError, NewRVMError(ErrExposed, ins.Pos, ins.RawSrc, "EXPOSE outside of ATMP with no pending error")
		}
		blk := vm.atmpStack[len(vm.atmpStack)-1]
		if blk.err == nil {
			return StatusFailedWithError, NewRVMError(ErrExposed, ins.Pos, ins.RawSrc, "no pending error to re-expose")
		}
		return StatusExposedError, blk.err
	}

	v, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	rverr := NewRVMError(ErrExposed, ins.Pos, ins.RawSrc, v.DisplayString())
	rverr.ThrownValue = v
	if inst, ok := v.(*CustomInst); ok {
		rverr.ThrownType = inst.Type
	}
	return StatusExposedError, rverr
}
