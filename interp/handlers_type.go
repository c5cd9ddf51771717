package interp

func dtypeOf(v Value) DType {
	switch t := v.(type) {
	case DType:
		return t
	case *CustomInst:
		return t.Type.AsDType()
	default:
		return DType{Name: v.Kind().String(), Built: v.Kind()}
	}
}

func customTypeOf(v Value, pos Pos, raw string) (*CustomType, *RVMError) {
	d, ok := v.(DType)
	if !ok || !d.IsCustom {
		return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "expected a custom type")
	}
	return d.Custom, nil
}

// riTpGet reads the DType descriptor of a value into dst (spec.md §4.4).
func riTpGet(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	v, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	if werr := writeResult(vm, ins.Args[1], dtypeOf(v), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riTpSet converts the slot's current value to the given built-in type in
// place; the target DType is the first argument, the slot to convert is
// the second (spec.md §4.1, §8 scenario 2: "TP_SET : tp-int, a").
func riTpSet(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	target, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	dst := ins.Args[1]
	cur, err := vm.resolveArg(dst)
	if err != nil {
		return StatusFailedWithError, err
	}
	d, ok := target.(DType)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "TP_SET target must be a DType")
	}
	out, cerr := convertTo(cur, d, ins.Pos, ins.RawSrc)
	if cerr != nil {
		return StatusFailedWithError, cerr
	}
	if werr := writeResult(vm, dst, out, ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riTpDef declares a user type bound into name, with an optional parent
// type for single inheritance (spec.md §3.2, §4.5).
func riTpDef(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 1 || !ins.Args[0].IsAssignable() {
		return StatusFailedWithError, NewRVMError(ErrArgument, ins.Pos, ins.RawSrc, "TP_DEF requires a name argument")
	}
	var parent *CustomType
	if len(ins.Args) > 1 {
		pv, err := vm.resolveArg(ins.Args[1])
		if err != nil {
			return StatusFailedWithError, err
		}
		pt, perr := customTypeOf(pv, ins.Pos, ins.RawSrc)
		if perr != nil {
			return StatusFailedWithError, perr
		}
		parent = pt
	}
	name := ins.Args[0].Literal
	ct := NewCustomType(name, parent)
	if _, ok := vm.scopes.add(name, ct.AsDType()); !ok {
		return StatusFailedWithError, NewRVMError(ErrDuplicateKey, ins.Pos, ins.RawSrc, "type already exists: "+name)
	}
	return StatusSuccess, nil
}

// riTpNew instantiates a user type into dst, seeded with its full
// ancestor-merged instance-field template (spec.md §3.2).
func riTpNew(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	tv, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	ct, cerr := customTypeOf(tv, ins.Pos, ins.RawSrc)
	if cerr != nil {
		return StatusFailedWithError, cerr
	}
	inst := NewCustomInst(vm.mint, ct)
	if werr := writeResult(vm, ins.Args[1], inst, ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riTpAddInstField registers a default-valued instance field template on a
// type, consumed by future TP_NEW calls (spec.md §3.2). A duplicate field
// name is a DuplicateKeyError.
func riTpAddInstField(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 2 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "TP_ADD_INST_FIELD requires type and field name")
	}
	tv, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	ct, cerr := customTypeOf(tv, ins.Pos, ins.RawSrc)
	if cerr != nil {
		return StatusFailedWithError, cerr
	}
	field := ins.Args[1].Literal
	if _, exists := ct.InstTemplates[field]; exists {
		return StatusFailedWithError, NewRVMError(ErrDuplicateKey, ins.Pos, ins.RawSrc, "field already exists: "+field)
	}
	var def Value = Null
	if len(ins.Args) > 2 {
		dv, derr := vm.resolveArg(ins.Args[2])
		if derr != nil {
			return StatusFailedWithError, derr
		}
		def = dv
	}
	ct.InstTemplates[field] = def
	ct.templateOrder = append(ct.templateOrder, field)
	return StatusSuccess, nil
}

// riTpAddTpField registers a type-level (shared, not per-instance) field
// (spec.md §3.2).
func riTpAddTpField(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) < 2 {
		return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "TP_ADD_TP_FIELD requires type and field name")
	}
	tv, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	ct, cerr := customTypeOf(tv, ins.Pos, ins.RawSrc)
	if cerr != nil {
		return StatusFailedWithError, cerr
	}
	field := ins.Args[1].Literal
	if _, exists := ct.TypeFields[field]; exists {
		return StatusFailedWithError, NewRVMError(ErrDuplicateKey, ins.Pos, ins.RawSrc, "field already exists: "+field)
	}
	var def Value = Null
	if len(ins.Args) > 2 {
		dv, derr := vm.resolveArg(ins.Args[2])
		if derr != nil {
			return StatusFailedWithError, derr
		}
		def = dv
	}
	ct.TypeFields[field] = def
	return StatusSuccess, nil
}

func instOf(vm *VM, a Arg) (*CustomInst, *RVMError) {
	v, err := vm.resolveArg(a)
	if err != nil {
		return nil, err
	}
	inst, ok := v.(*CustomInst)
	if !ok {
		return nil, NewRVMError(ErrDataTypeMismatch, a.Pos, a.Literal, "expected a custom type instance")
	}
	return inst, nil
}

// typeFieldOwner walks t's parent chain to the nearest ancestor declaring
// field at the type level, backing TP_SET_FIELD/TP_GET_FIELD when their
// first operand is a type rather than an instance (spec.md §4.4: "on type:
// sets type-level").
func typeFieldOwner(t *CustomType, field string) (*CustomType, bool) {
	for cur := t; cur != nil; cur = cur.Parent {
		if _, ok := cur.TypeFields[field]; ok {
			return cur, true
		}
	}
	return nil, false
}

// riTpSetField writes a field on its first operand: type-level when given a
// type, instance-level when given an instance (spec.md §4.4); a missing
// field is a FieldNotFoundError either way.
func riTpSetField(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	obj, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	field := ins.Args[1].Literal
	v, verr := vm.resolveArg(ins.Args[2])
	if verr != nil {
		return StatusFailedWithError, verr
	}
	if d, ok := obj.(DType); ok && d.IsCustom {
		owner, found := typeFieldOwner(d.Custom, field)
		if !found {
			return StatusFailedWithError, NewRVMError(ErrFieldNotFound, ins.Pos, ins.RawSrc, "no such field: "+field)
		}
		owner.TypeFields[field] = v.Copy()
		return StatusSuccess, nil
	}
	inst, ok := obj.(*CustomInst)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "expected a custom type or instance")
	}
	if _, ok := inst.Fields[field]; !ok {
		return StatusFailedWithError, NewRVMError(ErrFieldNotFound, ins.Pos, ins.RawSrc, "no such field: "+field)
	}
	inst.Fields[field] = v.Copy()
	return StatusSuccess, nil
}

// riTpGetField reads a field into dst: a type resolves its type-level field
// (walking the parent chain), an instance its instance field (spec.md §4.4).
func riTpGetField(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	obj, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	field := ins.Args[1].Literal
	if d, ok := obj.(DType); ok && d.IsCustom {
		owner, found := typeFieldOwner(d.Custom, field)
		if !found {
			return StatusFailedWithError, NewRVMError(ErrFieldNotFound, ins.Pos, ins.RawSrc, "no such field: "+field)
		}
		if werr := writeResult(vm, ins.Args[2], owner.TypeFields[field].Copy(), ins.RawSrc); werr != nil {
			return StatusFailedWithError, werr
		}
		return StatusSuccess, nil
	}
	inst, ok := obj.(*CustomInst)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "expected a custom type or instance")
	}
	v, found := inst.GetField(field)
	if !found {
		return StatusFailedWithError, NewRVMError(ErrFieldNotFound, ins.Pos, ins.RawSrc, "no such field: "+field)
	}
	if werr := writeResult(vm, ins.Args[2], v.Copy(), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riTpGetSuperField reads a field only after confirming the instance
// belongs_to the named ancestor type, the spec's narrow ancestor-scoped
// field accessor (spec.md §4.4).
func riTpGetSuperField(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	inst, err := instOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	av, aerr := vm.resolveArg(ins.Args[1])
	if aerr != nil {
		return StatusFailedWithError, aerr
	}
	ancestor, cerr := customTypeOf(av, ins.Pos, ins.RawSrc)
	if cerr != nil {
		return StatusFailedWithError, cerr
	}
	if !inst.Type.BelongsTo(ancestor) {
		return StatusFailedWithError, NewRVMError(ErrDataTypeMismatch, ins.Pos, ins.RawSrc, "instance does not belong to "+ancestor.Name)
	}
	field := ins.Args[2].Literal
	v, ok := inst.GetField(field)
	if !ok {
		return StatusFailedWithError, NewRVMError(ErrFieldNotFound, ins.Pos, ins.RawSrc, "no such field: "+field)
	}
	if werr := writeResult(vm, ins.Args[3], v.Copy(), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riTpDerive re-classifies an instance to a child type in place, merging in
// any newly-templated fields (spec.md §4.4).
func riTpDerive(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	inst, err := instOf(vm, ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	cv, cerr := vm.resolveArg(ins.Args[1])
	if cerr != nil {
		return StatusFailedWithError, cerr
	}
	childT, terr := customTypeOf(cv, ins.Pos, ins.RawSrc)
	if terr != nil {
		return StatusFailedWithError, terr
	}
	inst.Derive(childT)
	return StatusSuccess, nil
}
