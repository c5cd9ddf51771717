package interp

import "strconv"

// riFunc defines a no-return function: the first argument names the slot
// it is bound into, the remainder are formal parameter names, and the
// scope-carrying body is the function's InsSet (spec.md §4.3).
func riFunc(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 1 || !ins.Args[0].IsAssignable() {
		return StatusFailedWithError, NewRVMError(ErrArgument, ins.Pos, ins.RawSrc, "FUNC requires a name argument")
	}
	name := ins.Args[0].Literal
	formals := make([]string, 0, len(ins.Args)-1)
	for _, a := range ins.Args[1:] {
		formals = append(formals, a.Literal)
	}
	fn := FunctionValue{Name: name, FormalArg: formals, Body: ins.Body}
	if _, ok := vm.scopes.add(name, fn); !ok {
		vm.scopes.updateByName(name, fn)
	}
	return StatusSuccess, nil
}

// riFuni is FUNC's return-carrying sibling (spec.md §4.3): the same binding
// contract, but invocations (IVOK) copy SR into their destination argument.
func riFuni(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 1 || !ins.Args[0].IsAssignable() {
		return StatusFailedWithError, NewRVMError(ErrArgument, ins.Pos, ins.RawSrc, "FUNI requires a name argument")
	}
	name := ins.Args[0].Literal
	formals := make([]string, 0, len(ins.Args)-1)
	for _, a := range ins.Args[1:] {
		formals = append(formals, a.Literal)
	}
	fn := RetFunctionValue{Name: name, FormalArg: formals, Body: ins.Body}
	if _, ok := vm.scopes.add(name, fn); !ok {
		vm.scopes.updateByName(name, fn)
	}
	return StatusSuccess, nil
}

// invoke runs a function body in a fresh scope with formals bound
// positionally to actuals, absorbing the body's StatusAbortedFunction
// signal from RET (spec.md §4.3's call contract). A Series actual spreads
// element-by-element into the positional argument list before binding
// (spec.md §3.2's Series unpack contract at call sites).
func (vm *VM) invoke(name string, formals []string, body *InsSet, actuals []Arg, ins *Ins) (ExecutionStatus, *RVMError) {
	if body == nil {
		return StatusFailedWithError, NewRVMError(ErrRuntime, ins.Pos, ins.RawSrc, "function has no body: "+name)
	}
	values := make([]Value, 0, len(actuals))
	for _, a := range actuals {
		v, err := vm.resolveArg(a)
		if err != nil {
			return StatusFailedWithError, err
		}
		if series, ok := v.(SeriesValue); ok {
			values = append(values, series.Unpack()...)
			continue
		}
		values = append(values, v)
	}
	if len(values) != len(formals) {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc,
			name+" expects "+strconv.Itoa(len(formals))+" argument(s), got "+strconv.Itoa(len(values)))
	}
	s := vm.scopes.acquire("FUNC-"+name, false)
	for i, formal := range formals {
		s.add(vm.mint, formal, values[i].Copy())
	}
	vm.callDepth++
	status, err := vm.executeInsSet(body)
	vm.callDepth--
	vm.scopes.release(s)
	if err != nil {
		return StatusFailedWithError, err
	}
	if status == StatusAbortedFunction || status == StatusAborted {
		status = StatusSuccess
	}
	return status, nil
}

// riCall invokes a no-return FunctionValue; its actual arguments are every
// argument after the target name (spec.md §4.3).
func riCall(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 1 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "CALL requires a function name")
	}
	fnVal, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	fn, ok := fnVal.(FunctionValue)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "CALL target is not a Function")
	}
	return vm.invoke(fn.Name, fn.FormalArg, fn.Body, ins.Args[1:], ins)
}

// riIvok invokes a RetFunctionValue and copies its SR result into the final
// argument, the destination slot (spec.md §4.3).
func riIvok(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 2 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "IVOK requires a function name and a destination")
	}
	fnVal, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	fn, ok := fnVal.(RetFunctionValue)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "IVOK target is not a RetFunction")
	}
	dst := ins.Args[len(ins.Args)-1]
	actuals := ins.Args[1 : len(ins.Args)-1]
	status, err := vm.invoke(fn.Name, fn.FormalArg, fn.Body, actuals, ins)
	if err != nil {
		return StatusFailedWithError, err
	}
	retVal, ok := vm.scopes.findByID(vm.srID)
	if !ok || retVal == nil {
		retVal = Null
	}
	if werr := writeResult(vm, dst, retVal.Copy(), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return status, nil
}

// riRet records the return value into SR and aborts the enclosing function
// body (spec.md §4.3, §4.4). A bare RET leaves SR untouched, so an earlier
// RET's value (or an outer call's) survives.
func riRet(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) > 0 {
		rv, err := vm.resolveArg(ins.Args[0])
		if err != nil {
			return StatusFailedWithError, err
		}
		vm.scopes.updateByID(vm.srID, rv.Copy())
	}
	return StatusAbortedFunction, nil
}
