package interp

import (
	"bufio"
	"strconv"
)

type flusher interface {
	Flush() error
}

// riSout writes operands to Stdout; args[0] is a mandatory mode keyword
// ("s-l": no per-value terminator, "s-m": append "\n" after each printed
// value), grounded on the original source's ri_sout (S_L/S_M end_sign
// selection). Remaining operands are printed in order; an inline "s-f"
// flushes, "s-n" prints a bare newline, and "s-unpack" spreads the
// following Iterable operand element-by-element instead of printing its
// aggregate display form (spec.md §6.4, §8 scenarios 1/2/4).
func riSout(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) == 0 || ins.Args[0].Kind != ArgKeyword || (ins.Args[0].Literal != "s-l" && ins.Args[0].Literal != "s-m") {
		return StatusFailedWithError, NewRVMError(ErrSyntax, ins.Pos, ins.RawSrc, "SOUT requires an 's-l' or 's-m' mode keyword as its first argument")
	}
	endSign := ""
	if ins.Args[0].Literal == "s-m" {
		endSign = "\n"
	}
	write := func(s string) *RVMError {
		if _, werr := vm.opt.Stdout.Write([]byte(s)); werr != nil {
			return NewRVMError(ErrFileWrite, ins.Pos, ins.RawSrc, werr.Error())
		}
		return nil
	}
	for i := 1; i < len(ins.Args); i++ {
		a := ins.Args[i]
		if a.Kind == ArgKeyword {
			switch a.Literal {
			case "s-f":
				if fl, ok := vm.opt.Stdout.(flusher); ok {
					_ = fl.Flush()
				}
				continue
			case "s-n":
				if err := write("\n"); err != nil {
					return StatusFailedWithError, err
				}
				continue
			case "s-unpack":
				if i+1 >= len(ins.Args) {
					return StatusFailedWithError, NewRVMError(ErrArgumentNumber, ins.Pos, ins.RawSrc, "s-unpack requires a following operand")
				}
				i++
				v, err := vm.resolveArg(ins.Args[i])
				if err != nil {
					return StatusFailedWithError, err
				}
				if it, ok := asIterable(v); ok {
					for j := 0; j < it.Size(); j++ {
						elem, _ := it.Get(j)
						if werr := write(elem.DisplayString() + endSign); werr != nil {
							return StatusFailedWithError, werr
						}
					}
				} else if werr := write(v.DisplayString() + endSign); werr != nil {
					return StatusFailedWithError, werr
				}
				continue
			}
		}
		v, err := vm.resolveArg(a)
		if err != nil {
			return StatusFailedWithError, err
		}
		if werr := write(v.DisplayString() + endSign); werr != nil {
			return StatusFailedWithError, werr
		}
	}
	return StatusSuccess, nil
}

// riSin reads input into destination slots; args[0] is the same 's-l'/'s-m'
// mode keyword SOUT takes (spec.md §6.4, §9 Open Question on SIN's exact
// type-conversion shapes — this pins the ambiguity by accepting an inline
// DType operand, e.g. tp-int, that changes the conversion applied to the
// destinations that follow it, defaulting to String). Conversion failure on
// a numeric target reports ArgTypeMismatchError naming the destination.
func riSin(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	if len(ins.Args) == 0 || ins.Args[0].Kind != ArgKeyword || (ins.Args[0].Literal != "s-l" && ins.Args[0].Literal != "s-m") {
		return StatusFailedWithError, NewRVMError(ErrSyntax, ins.Pos, ins.RawSrc, "SIN requires an 's-l' or 's-m' mode keyword as its first argument")
	}
	if vm.stdinScanner == nil {
		vm.stdinScanner = bufio.NewScanner(vm.opt.Stdin)
	}
	curKind := KindString
	for i := 1; i < len(ins.Args); i++ {
		a := ins.Args[i]
		if a.Kind == ArgKeyword && a.Literal == "s-f" {
			continue
		}
		if a.Kind == ArgIdentifier || a.Kind == ArgKeyword {
			if dv, ok := tryResolveDType(vm, a); ok {
				curKind = dv.Built
				continue
			}
		}
		if !a.IsAssignable() {
			return StatusFailedWithError, NewRVMError(ErrArgument, a.Pos, ins.RawSrc, "SIN requires a name destination")
		}
		line := ""
		if vm.stdinScanner.Scan() {
			line = vm.stdinScanner.Text()
		}
		v, cerr := convertInputLine(line, curKind, a.Pos, ins.RawSrc)
		if cerr != nil {
			return StatusFailedWithError, cerr
		}
		if err := writeResult(vm, a, v, ins.RawSrc); err != nil {
			return StatusFailedWithError, err
		}
	}
	return StatusSuccess, nil
}

// tryResolveDType reports whether a names a currently-bound DType slot
// (e.g. the built-in tp-int) without raising an error when it does not —
// SIN uses this to detect an inline type-selector operand.
func tryResolveDType(vm *VM, a Arg) (DType, bool) {
	sl, ok := vm.scopes.findByName(a.Literal)
	if !ok {
		return DType{}, false
	}
	dv, ok := sl.value.(DType)
	return dv, ok
}

func convertInputLine(line string, kind Kind, pos Pos, raw string) (Value, *RVMError) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, NewRVMError(ErrArgTypeMismatch, pos, raw, "input is not a valid Int: "+line)
		}
		return IntValue(n), nil
	case KindFloat:
		f, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, NewRVMError(ErrArgTypeMismatch, pos, raw, "input is not a valid Float: "+line)
		}
		return FloatValue(f), nil
	case KindChar:
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, NewRVMError(ErrArgTypeMismatch, pos, raw, "input is not a valid Char: "+line)
		}
		return CharValue(rune(n)), nil
	case KindBool:
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, NewRVMError(ErrArgTypeMismatch, pos, raw, "input is not a valid Bool: "+line)
		}
		return BoolValue(n != 0), nil
	case KindNull:
		return Null, nil
	default:
		return StringValue(line), nil
	}
}
