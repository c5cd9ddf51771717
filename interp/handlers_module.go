package interp

// riLoadin loads one RA module file and binds it as an Extension under an
// explicit alias (the second argument) or the file's base name (spec.md
// §4.6, SUPPLEMENTED FEATURES #1).
func riLoadin(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 1 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "LOADIN requires a module path")
	}
	pathVal, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	path := pathVal.DisplayString()
	set, lerr := vm.loader.load(path)
	if lerr != nil {
		return StatusFailedWithError, lerr
	}
	name := moduleNameOf(path)
	if len(ins.Args) > 1 && ins.Args[1].IsAssignable() {
		name = ins.Args[1].Literal
	}
	if berr := vm.bindModule(name, set); berr != nil {
		return StatusFailedWithError, berr
	}
	return StatusSuccess, nil
}

// riLink loads every path given and binds each as its own Extension named
// after its file base name, the multi-file counterpart to LOADIN (spec.md
// §4.6).
func riLink(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) == 0 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "LINK requires at least one module path")
	}
	for _, a := range ins.Args {
		pathVal, err := vm.resolveArg(a)
		if err != nil {
			return StatusFailedWithError, err
		}
		path := pathVal.DisplayString()
		set, lerr := vm.loader.load(path)
		if lerr != nil {
			return StatusFailedWithError, lerr
		}
		if berr := vm.bindModule(moduleNameOf(path), set); berr != nil {
			return StatusFailedWithError, berr
		}
	}
	return StatusSuccess, nil
}
