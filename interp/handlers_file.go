package interp

import (
	"io"
	"os"
)

func openFileMode(path string, mode FileMode) (*os.File, *RVMError) {
	var flag int
	switch mode {
	case FileRead:
		flag = os.O_RDONLY
	case FileWrite:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case FileAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, NewRVMError(ErrFileRead, Pos{}, "", err.Error())
	}
	return f, nil
}

func fileModeOf(v Value, pos Pos, raw string) (FileMode, *RVMError) {
	n, ok := asNumeric(v)
	if !ok {
		return 0, NewRVMError(ErrArgTypeMismatch, pos, raw, "file mode must be Numeric")
	}
	switch numericToInt64(n) {
	case 0:
		return FileRead, nil
	case 1:
		return FileWrite, nil
	case 2:
		return FileAppend, nil
	}
	return 0, NewRVMError(ErrRange, pos, raw, "unknown file mode")
}

// riFileGet opens path under mode and stores the File handle in dst
// (spec.md §3.2, §4.3's File variant).
func riFileGet(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	pathVal, err := vm.resolveArg(ins.Args[0])
	if err != nil {
		return StatusFailedWithError, err
	}
	modeVal, err := vm.resolveArg(ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	mode, merr := fileModeOf(modeVal, ins.Pos, ins.RawSrc)
	if merr != nil {
		return StatusFailedWithError, merr
	}
	path := pathVal.DisplayString()
	handle, oerr := openFileMode(path, mode)
	if oerr != nil {
		return StatusFailedWithError, oerr
	}
	fv := FileValue{Path: path, Mode: mode, Handle: handle}
	if werr := writeResult(vm, ins.Args[2], fv, ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

func resolveFile(vm *VM, a Arg) (FileValue, *RVMError) {
	v, err := vm.resolveArg(a)
	if err != nil {
		return FileValue{}, err
	}
	fv, ok := v.(FileValue)
	if !ok {
		return FileValue{}, NewRVMError(ErrDataTypeMismatch, a.Pos, a.Literal, "expected a File value")
	}
	return fv, nil
}

// riFileRead slurps the whole remaining content of the handle into dst as a
// String (spec.md §4.3).
func riFileRead(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	fv, ferr := resolveFile(vm, ins.Args[0])
	if ferr != nil {
		return StatusFailedWithError, ferr
	}
	if fv.Handle == nil {
		return StatusFailedWithError, NewRVMError(ErrFileRead, ins.Pos, ins.RawSrc, "file handle is closed")
	}
	data, err := io.ReadAll(fv.Handle)
	if err != nil {
		return StatusFailedWithError, NewRVMError(ErrFileRead, ins.Pos, ins.RawSrc, err.Error())
	}
	if werr := writeResult(vm, ins.Args[1], StringValue(data), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riFileWrite writes the display string of its second argument to the
// handle (spec.md §4.3).
func riFileWrite(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	fv, ferr := resolveFile(vm, ins.Args[0])
	if ferr != nil {
		return StatusFailedWithError, ferr
	}
	if fv.Handle == nil {
		return StatusFailedWithError, NewRVMError(ErrFileWrite, ins.Pos, ins.RawSrc, "file handle is closed")
	}
	data, err := vm.resolveArg(ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	if _, werr := fv.Handle.WriteString(data.DisplayString()); werr != nil {
		return StatusFailedWithError, NewRVMError(ErrFileWrite, ins.Pos, ins.RawSrc, werr.Error())
	}
	return StatusSuccess, nil
}

func riFileGetPath(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	fv, ferr := resolveFile(vm, ins.Args[0])
	if ferr != nil {
		return StatusFailedWithError, ferr
	}
	if werr := writeResult(vm, ins.Args[1], StringValue(fv.Path), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

func riFileGetMode(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	fv, ferr := resolveFile(vm, ins.Args[0])
	if ferr != nil {
		return StatusFailedWithError, ferr
	}
	if werr := writeResult(vm, ins.Args[1], IntValue(int64(fv.Mode)), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

func riFileGetSize(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	fv, ferr := resolveFile(vm, ins.Args[0])
	if ferr != nil {
		return StatusFailedWithError, ferr
	}
	info, err := os.Stat(fv.Path)
	if err != nil {
		return StatusFailedWithError, NewRVMError(ErrFileRead, ins.Pos, ins.RawSrc, err.Error())
	}
	if werr := writeResult(vm, ins.Args[1], IntValue(info.Size()), ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riFileSetMode reopens the handle under a new mode, replacing dst in place
// (spec.md §4.3).
func riFileSetMode(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	dst := ins.Args[0]
	fv, ferr := resolveFile(vm, dst)
	if ferr != nil {
		return StatusFailedWithError, ferr
	}
	modeVal, err := vm.resolveArg(ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	mode, merr := fileModeOf(modeVal, ins.Pos, ins.RawSrc)
	if merr != nil {
		return StatusFailedWithError, merr
	}
	if fv.Handle != nil {
		fv.Handle.Close()
	}
	handle, oerr := openFileMode(fv.Path, mode)
	if oerr != nil {
		return StatusFailedWithError, oerr
	}
	fv.Mode = mode
	fv.Handle = handle
	if werr := writeResult(vm, dst, fv, ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}

// riFileSetPath reopens the handle at a new path under its current mode
// (spec.md §4.3).
func riFileSetPath(vm *VM, ins *Ins, ptr *int) (ExecutionStatus, *RVMError) {
	dst := ins.Args[0]
	fv, ferr := resolveFile(vm, dst)
	if ferr != nil {
		return StatusFailedWithError, ferr
	}
	pathVal, err := vm.resolveArg(ins.Args[1])
	if err != nil {
		return StatusFailedWithError, err
	}
	if fv.Handle != nil {
		fv.Handle.Close()
	}
	path := pathVal.DisplayString()
	handle, oerr := openFileMode(path, fv.Mode)
	if oerr != nil {
		return StatusFailedWithError, oerr
	}
	fv.Path = path
	fv.Handle = handle
	if werr := writeResult(vm, dst, fv, ins.RawSrc); werr != nil {
		return StatusFailedWithError, werr
	}
	return StatusSuccess, nil
}
