package interp

import (
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// writePrecompiled serializes a freshly parsed module to
// <PrecompLinkDir>/<base>.rsi at the VM's configured profile, the
// precompiled-link side effect of loading a linked file (spec.md §4.6,
// §6.1 -pcl). Failures are reported through the diagnostic logger rather
// than failing the load: the parsed InsSet is already usable.
func (l *loader) writePrecompiled(srcPath string, set *InsSet) {
	out := filepath.Join(l.vm.opt.PrecompLinkDir, moduleNameOf(srcPath)+".rsi")
	f, err := os.Create(out)
	if err != nil {
		l.vm.diag.Warnf("precompile %s: %v", out, err)
		return
	}
	defer f.Close()
	if err := Serialize(set, l.vm.opt.Profile, nil, f); err != nil {
		l.vm.diag.Warnf("precompile %s: %v", out, err)
	}
}

// precompile parses every path in paths concurrently (compile-time only —
// the resulting InsSets are cached but not executed here, so this never
// touches the single-threaded execution model of spec.md §5). It backs the
// --precomp-link CLI flag's batch-warm use case for LINK-heavy programs with
// many module dependencies.
func (l *loader) precompile(paths []string) *RVMError {
	var g errgroup.Group
	results := make([]*InsSet, len(paths))
	errs := make([]*RVMError, len(paths))
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			full := l.resolve(p)
			src, err := os.ReadFile(full)
			if err != nil {
				errs[i] = NewRVMError(ErrLink, Pos{}, "", "cannot read module "+full+": "+err.Error())
				return nil
			}
			set, perr := Parse(string(src), l.vm.ops, full)
			if perr != nil {
				errs[i] = NewRVMError(ErrSyntax, Pos{}, "", perr.Error())
				return nil
			}
			results[i] = set
			return nil
		})
	}
	_ = g.Wait()
	for i, p := range paths {
		if errs[i] != nil {
			return errs[i]
		}
		full := l.resolve(p)
		l.cache[full] = results[i]
		if l.vm.opt.PrecompLinkDir != "" {
			l.writePrecompiled(full, results[i])
		}
	}
	return nil
}

// PrecompileLink warms the loader's cache for every path concurrently,
// cmd/rvm's entry point for --precomp-link (spec.md §6.1 -pcl).
func (vm *VM) PrecompileLink(paths []string) *RVMError {
	return vm.loader.precompile(paths)
}
