package interp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTryDetectTypeHierarchy is spec.md §8 scenario 3: EXPOSE an instance
// of a derived CustomType E2, an outer DETECT against the parent type E
// still matches via BelongsTo's parent-chain walk.
func TestTryDetectTypeHierarchy(t *testing.T) {
	src := `
TP_DEF : E
TP_DEF : E2, E
ALLOT : inst, caught, result
TP_NEW : E2, inst
PUT : 0, result
ATMP :
  EXPOSE : inst
  DETECT : E, caught
    PUT : 1, result
  END : DETECT
END : ATMP
SOUT : s-m, result
`
	_, out := mustRun(t, src)
	require.Equal(t, "1\n", out)
}

// TestDetectNoMatchFallsThrough: a DETECT naming an unrelated type doesn't
// claim the error, which then surfaces on the SE slot.
func TestDetectNoMatchFallsThrough(t *testing.T) {
	var out bytes.Buffer
	vm := New(Options{Stdout: &out})
	root, err := vm.ParseSource(`
TP_DEF : E
TP_DEF : Unrelated
ALLOT : inst, caught
TP_NEW : E, inst
ATMP :
  EXPOSE : inst
  DETECT : Unrelated, caught
    SOUT : s-l, "should not run"
  END : DETECT
END : ATMP
SOUT : s-l, "after"
`, "test.ra")
	require.NoError(t, err)
	_, rerr := vm.Execute(root)
	require.Error(t, rerr)
	rverr, ok := rerr.(*RVMError)
	require.True(t, ok)
	require.Equal(t, ErrExposed, rverr.Kind)
}

// TestDetectBaseCatchesEverything: DETECT against the built-in root
// "Error" type catches an EXPOSE of an instance whose type derives from
// it, exercising BelongsTo's walk all the way to the engine's root type.
func TestDetectBaseCatchesEverything(t *testing.T) {
	src := `
TP_DEF : Boom, Error
ALLOT : inst, caught, result
TP_NEW : Boom, inst
PUT : 0, result
ATMP :
  EXPOSE : inst
  DETECT : Error, caught
    PUT : 1, result
  END : DETECT
END : ATMP
SOUT : s-m, result
`
	_, out := mustRun(t, src)
	require.Equal(t, "1\n", out)
}

// TestAtmpFinallyAlwaysRuns is spec.md §8's "ATMP completeness" invariant:
// the finally section (instructions after the last DETECT) runs exactly
// once whether or not a DETECT matched.
func TestAtmpFinallyAlwaysRuns(t *testing.T) {
	src := `
TP_DEF : E
ALLOT : inst, caught, result, fin
PUT : 0, result
PUT : 0, fin
TP_NEW : E, inst
ATMP :
  EXPOSE : inst
  DETECT : E, caught
    PUT : 1, result
  END : DETECT
  PUT : 1, fin
END : ATMP
SOUT : s-m, result
SOUT : s-m, fin
`
	_, out := mustRun(t, src)
	require.Equal(t, "1\n1\n", out)
}
