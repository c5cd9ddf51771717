package interp

import "strconv"

func iterableOf(vm *VM, a Arg) (Iterable, *RVMError) {
	v, err := vm.resolveArg(a)
	if err != nil {
		return nil, err
	}
	it, ok := asIterable(v)
	if !ok {
		return nil, NewRVMError(ErrDataTypeMismatch, a.Pos, a.Literal, "expected an Iterable (String/List/Series/Dict)")
	}
	return it, nil
}

func indexArg(vm *VM, a Arg) (int, *RVMError) {
	v, err := vm.resolveArg(a)
	if err != nil {
		return 0, err
	}
	n, ok := asNumeric(v)
	if !ok {
		return 0, NewRVMError(ErrArgTypeMismatch, a.Pos, a.Literal, "index must be Numeric")
	}
	return int(numericToInt64(n)), nil
}

// riIterApnd appends one or more values onto an iterable slot in place
// (spec.md §4.2).
func riIterApnd(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 2 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "ITER_APND requires a target and at least one value")
	}
	it, err := iterableOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	for _, a := range ins.Args[1:] {
		v, verr := vm.resolveArg(a)
		if verr != nil {
			return StatusFailedWithError, verr
		}
		// Iterables alias into the target; scalars are deep-copied
		// (spec.md §4.4 ITER_APND contract).
		if _, isIter := asIterable(v); isIter {
			it.Append(v)
		} else {
			it.Append(v.Copy())
		}
	}
	return StatusSuccess, nil
}

// riIterSub extracts the [begin, end) subrange into dst (spec.md §4.2).
func riIterSub(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	it, err := iterableOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	begin, err := indexArg(vm, ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	end, err := indexArg(vm, ins.Args[2])
	if err != nil {
		return StatusFailedWithError, err
	}
	sub, ok := it.Subpart(begin, end)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrRange, ins.Pos, ins.RawSrc, "subrange out of bounds")
	}
	if werr := writeResult(vm, ins.Args[3], sub, ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riIterSize writes the element count into dst (spec.md §4.2).
func riIterSize(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	it, err := iterableOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	if werr := writeResult(vm, ins.Args[1], IntValue(int64(it.Size())), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riIterGet reads the keyed element into dst (spec.md §4.2): an integer
// index for Lists/Strings/Series, and either an integer index or a String
// key for Dicts.
func riIterGet(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	it, err := iterableOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	if d, isDict := it.(DictValue); isDict {
		kv, kerr := vm.resolveArg(ins.Args[1])
		if kerr != nil {
			return StatusFailedWithError, kerr
		}
		if key, isStr := kv.(StringValue); isStr {
			v, ok := d.GetByKey(key.EscapedString())
			if !ok {
				return StatusFailedWithError, NewRVMError(ErrKeyNotFound, ins.Pos, ins.RawSrc, "no such key: "+string(key))
			}
			if werr := writeResult(vm, ins.Args[2], v.Copy(), ins.RawSrc); werr != nil {
				return StatusFailedWithError, werr
			}
			return StatusSuccess, nil
		}
	}
	i, err := indexArg(vm, ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	v, ok := it.Get(i)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrRange, ins.Pos, ins.RawSrc, "index out of range: "+strconv.Itoa(i))
	}
	if werr := writeResult(vm, ins.Args[2], v.Copy(), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

func iterTraverse(vm *VM, ins *Ins, reverse bool) (ExecutionStatus, *RVMError) {
	it, err := iterableOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	var elemName, idxName string
	if len(ins.Args) > 1 && ins.Args[1].IsAssignable() {
		elemName = ins.Args[1].Literal
	}
	if len(ins.Args) > 2 && ins.Args[2].IsAssignable() {
		idxName = ins.Args[2].Literal
	}

	s := vm.scopes.acquire("ITER-body", true)
	defer vm.scopes.release(s)

	n := it.Size()
	for k := 0; k < n; k++ {
		i := k
		if reverse {
			i = n - 1 - k
		}
		v, ok := it.Get(i)
		if !ok {
			break
		}
		s.clearLocals()
		if elemName != "" {
			s.add(vm.mint, elemName, v.Copy())
		}
		if idxName != "" {
			s.add(vm.mint, idxName, IntValue(int64(i)))
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

// riIterTrav walks an iterable front-to-back, binding element (and
// optionally index) into slots that are reset each pass and keep their
// slot IDs across passes (spec.md §4.2, §3.3).
func riIterTrav(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return iterTraverse(vm, ins, false)
}

// riIterRevTrav is ITER_TRAV's back-to-front sibling (spec.md §4.2).
func riIterRevTrav(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	return iterTraverse(vm, ins, true)
}

// riIterSet overwrites the i-th element in place (spec.md §4.2).
func riIterSet(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	it, err := iterableOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	i, err := indexArg(vm, ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	v, verr := vm.resolveArg(ins.Args[2])
	if verr != nil {
		return StatusFailedWithError, verr
	}
	if !it.Set(i, v.Copy()) {
		return StatusFailedWithError, NewRVMError(ErrRange, ins.Pos, ins.RawSrc, "index out of range: "+strconv.Itoa(i))
	}
	return StatusSuccess, nil
}

// riIterDel removes every named element from an iterable in one call
// (spec.md §4.2). Index arguments address the iterable's layout as it was
// before this instruction ran and must be given in ascending order: each
// erase after the first is shifted left by the number already removed, the
// original's per-erase correction.
func riIterDel(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 2 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "ITER_DEL requires a target and at least one index")
	}
	it, err := iterableOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	removed := 0
	for _, a := range ins.Args[1:] {
		i, ierr := indexArg(vm, a)
		if ierr != nil {
			return StatusFailedWithError, ierr
		}
		if !it.Erase(i - removed) {
			return StatusFailedWithError, NewRVMError(ErrRange, ins.Pos, ins.RawSrc, "index out of range: "+strconv.Itoa(i))
		}
		removed++
	}
	return StatusSuccess, nil
}

// riIterInsert inserts a value at position i, shifting subsequent elements
// (spec.md §4.2).
func riIterInsert(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	it, err := iterableOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	i, err := indexArg(vm, ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	v, verr := vm.resolveArg(ins.Args[2])
	if verr != nil {
		return StatusFailedWithError, verr
	}
	if !it.Insert(i, v.Copy()) {
		return StatusFailedWithError, NewRVMError(ErrRange, ins.Pos, ins.RawSrc, "index out of range: "+strconv.Itoa(i))
	}
	return StatusSuccess, nil
}

// riIterUnpack spreads a Series' elements into the destination arguments
// positionally (spec.md §3.2's Series unpack contract); a non-Series
// operand is a DataTypeMismatchError.
func riIterUnpack(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 1 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "ITER_UNPACK requires a Series source")
	}
	v, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	sv, ok := v.(SeriesValue)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "ITER_UNPACK requires a Series")
	}
	items := sv.Unpack()
	dests := ins.Args[1:]
	if len(items) != len(dests) {
		return StatusFailedWithError, NewRVMError(ErrArgument, ins.Pos, ins.RawSrc,
			"ITER_UNPACK requires exactly as many destinations as the Series has elements")
	}
	for i, d := range dests {
		if werr := writeResult(vm, d, items[i].Copy(), ins.RawSrc); werr != nil {
			return StatusFailedWithError, werr
		}
	}
	return StatusSuccess, nil
}
