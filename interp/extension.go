package interp

import (
	"os"
	"path/filepath"
	"strings"
)

// loader resolves LOADIN/LINK module paths against the VM's configured
// work directory and caches each file's parsed InsSet so repeated LOADIN
// calls for the same path don't re-parse it (spec.md §4.6, SUPPLEMENTED
// FEATURES #1's module-loading surface).
type loader struct {
	vm     *VM
	cache  map[string]*InsSet
}

func newLoader(vm *VM) *loader {
	return &loader{vm: vm, cache: map[string]*InsSet{}}
}

func (l *loader) resolve(path string) string {
	if filepath.IsAbs(path) || l.vm.opt.WorkDir == "" {
		return path
	}
	return filepath.Join(l.vm.opt.WorkDir, path)
}

func (l *loader) load(path string) (*InsSet, *RVMError) {
	full := l.resolve(path)
	if set, ok := l.cache[full]; ok {
		return set, nil
	}
	src, err := os.ReadFile(full)
	if err != nil {
		return nil, NewRVMError(ErrLink, Pos{}, "", "cannot read module "+full+": "+err.Error())
	}
	set, perr := Parse(string(src), l.vm.ops, full)
	if perr != nil {
		return nil, NewRVMError(ErrSyntax, Pos{}, "", perr.Error())
	}
	l.cache[full] = set
	if l.vm.opt.PrecompLinkDir != "" {
		l.writePrecompiled(full, set)
	}
	return set, nil
}

func moduleNameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ResolveExtensions re-mounts each named extension an RSI file recorded,
// the load-time counterpart to LOADIN's binding, for deserialized InsSets
// whose extension_tag references scopes by name only (spec.md §4.6, §6.3:
// "a list of extension names that must be re-resolved at load time"). It
// looks for `<name>.ra` then `<name>.rsi` under the VM's work directory.
func (vm *VM) ResolveExtensions(names []string) *RVMError {
	for _, name := range names {
		var set *InsSet
		var lerr *RVMError
		if set, lerr = vm.loader.load(name + ".ra"); lerr != nil {
			raErr := lerr
			f, oerr := os.Open(vm.loader.resolve(name + ".rsi"))
			if oerr != nil {
				return raErr
			}
			defer f.Close()
			var rerr error
			set, _, rerr = Deserialize(f, vm.ops)
			if rerr != nil {
				return NewRVMError(ErrLink, Pos{}, "", "cannot resolve extension "+name+": "+rerr.Error())
			}
		}
		if berr := vm.bindModule(name, set); berr != nil {
			return berr
		}
	}
	return nil
}

// bindModule runs set's top-level instructions in a fresh scope and exposes
// that scope as an ExtensionValue bound into name (spec.md §3.2's
// Extension variant, LOADIN's `name` form).
func (vm *VM) bindModule(name string, set *InsSet) *RVMError {
	s := vm.scopes.acquire(name, false)
	// The extension scope keeps the exact module name so deserialized
	// extension tags and SP_SET can find it by that string; once bound it
	// is pinned (never releasable, spec.md §3.3).
	s.name = name
	_, herr := vm.executeInsSet(set)
	if herr != nil {
		vm.scopes.release(s)
		return herr
	}
	vm.scopes.popCurrent()
	s.releasable = false
	if _, ok := vm.scopes.add(name, ExtensionValue{Scope: s}); !ok {
		vm.scopes.updateByName(name, ExtensionValue{Scope: s})
	}
	return nil
}
