package interp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// mustRun parses and executes src against a fresh VM, returning the
// captured stdout and the VM for post-run inspection (SR slot, etc.).
// Fatal on any parse or execute error, since most tests assert on
// successful end-to-end behavior per spec.md §8's scenarios.
func mustRun(t *testing.T, src string) (*VM, string) {
	t.Helper()
	var out bytes.Buffer
	vm := New(Options{Stdout: &out})
	root, err := vm.ParseSource(src, "test.ra")
	require.NoError(t, err, "parse: %s", src)
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr, "execute: %s", src)
	return vm, out.String()
}

// runExpectErr parses and executes src, asserting execution fails and
// returning the *RVMError for inspection.
func runExpectErr(t *testing.T, src string) *RVMError {
	t.Helper()
	var out bytes.Buffer
	vm := New(Options{Stdout: &out})
	root, err := vm.ParseSource(src, "test.ra")
	require.NoError(t, err, "parse: %s", src)
	_, rerr := vm.Execute(root)
	require.Error(t, rerr)
	rverr, ok := rerr.(*RVMError)
	require.True(t, ok, "expected *RVMError, got %T", rerr)
	return rverr
}

// TestHelloWorld is spec.md §8 scenario 1.
func TestHelloWorld(t *testing.T) {
	_, out := mustRun(t, `SOUT : s-l, "Hello, world!\n"`)
	require.Equal(t, "Hello, world!\n", out)
}

// TestFibonacciRepeat is spec.md §8 scenario 2.
func TestFibonacciRepeat(t *testing.T) {
	src := `
ALLOT : a, b, t, i
TP_SET : tp-int, a
TP_SET : tp-int, b
PUT : 0, a
PUT : 1, b
REPEAT : 9, i
  ADD : a, b, t
  PUT : b, a
  PUT : t, b
END : REPEAT
SOUT : s-m, b
`
	_, out := mustRun(t, src)
	require.Equal(t, "55\n", out)
}

// TestFunctionWithReturn is spec.md §8 scenario 4.
func TestFunctionWithReturn(t *testing.T) {
	src := `
FUNI : square, x
  MUL : x, x, r
  RET : r
END : FUNI
ALLOT : out
IVOK : square, 7, out
SOUT : s-m, out
`
	_, out := mustRun(t, src)
	require.Equal(t, "49\n", out)
}

// TestFunctionNoReturnBindsArgs exercises CALL/FUNC (no return value),
// the sibling of scenario 4's FUNI/IVOK/RET path.
func TestFunctionNoReturnBindsArgs(t *testing.T) {
	src := `
ALLOT : acc
PUT : 0, acc
FUNC : bump, n
  ADD : acc, n, acc
END : FUNC
CALL : bump, 5
CALL : bump, 3
SOUT : s-m, acc
`
	_, out := mustRun(t, src)
	require.Equal(t, "8\n", out)
}

// TestQuoteCoherence is spec.md §8 scenario 5 and the "Quote coherence"
// invariant of §8: QOT_VAL writing through a quote mutates the referent.
func TestQuoteCoherence(t *testing.T) {
	src := `
ALLOT : x, q
PUT : 10, x
QOT : x, q
QOT_VAL : 42, q
SOUT : s-m, x
`
	_, out := mustRun(t, src)
	require.Equal(t, "42\n", out)
}

// TestAddConcatenationInvariant is spec.md §8's "ADD concatenation"
// invariant: size(z) == size(x) + size(y), elements in x++y order.
func TestAddConcatenationInvariant(t *testing.T) {
	vm := New(Options{Stdout: &bytes.Buffer{}})
	root, err := vm.ParseSource(`
ALLOT : x, y, z
PUT : 0, x
`, "test.ra")
	require.NoError(t, err)
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)

	xSlot, ok := vm.scopes.findByName("x")
	require.True(t, ok)
	vm.scopes.updateByID(xSlot.id, NewList(IntValue(1), IntValue(2)))
	ySlot, ok := vm.scopes.findByName("y")
	require.True(t, ok)
	vm.scopes.updateByID(ySlot.id, NewList(IntValue(3), IntValue(4), IntValue(5)))

	zArg := Arg{Kind: ArgIdentifier, Literal: "z"}
	xArg := Arg{Kind: ArgIdentifier, Literal: "x"}
	yArg := Arg{Kind: ArgIdentifier, Literal: "y"}
	status, herr := riAdd(vm, &Ins{RI: &RI{Name: "ADD"}, Args: []Arg{xArg, yArg, zArg}}, new(int))
	require.Nil(t, herr)
	require.Equal(t, StatusSuccess, status)

	zVal, ok := vm.scopes.findByName("z")
	require.True(t, ok)
	z, ok := zVal.value.(Iterable)
	require.True(t, ok)
	require.Equal(t, 5, z.Size())
	for i, want := range []int64{1, 2, 3, 4, 5} {
		v, ok := z.Get(i)
		require.True(t, ok)
		require.Equal(t, IntValue(want), v)
	}
}

// TestScopeBalanceInvariant is spec.md §8's "Scope balance" invariant: a
// successful execute leaves the scope-stack depth unchanged from entry.
func TestScopeBalanceInvariant(t *testing.T) {
	vm := New(Options{Stdout: &bytes.Buffer{}})
	depthBefore := vm.scopes.depth()
	root, err := vm.ParseSource(`
ALLOT : i
REPEAT : 3, i
  ALLOT : tmp
  PUT : i, tmp
END : REPEAT
`, "test.ra")
	require.NoError(t, err)
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)
	require.Equal(t, depthBefore, vm.scopes.depth())
}

// TestSlotStabilityAcrossLoopIterations is spec.md §8's "Slot stability"
// invariant: a name's slot ID persists across REPEAT's delayed-release
// iterations.
func TestSlotStabilityAcrossLoopIterations(t *testing.T) {
	vm := New(Options{Stdout: &bytes.Buffer{}})
	root, err := vm.ParseSource(`
ALLOT : i
REPEAT : 3, i
  ALLOT : tmp
END : REPEAT
`, "test.ra")
	require.NoError(t, err)
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)

	// The same invariant at the scope level: clearing a delayed-release
	// scope in place hands the same slot ID back to the next pass's ALLOT.
	s := vm.scopes.acquire("LOOP-", true)
	defer vm.scopes.release(s)
	first, ok := s.add(vm.mint, "tmp", Null)
	require.True(t, ok)
	s.clearLocals()
	second, ok := s.add(vm.mint, "tmp", IntValue(1))
	require.True(t, ok)
	require.True(t, first.id.Equal(second.id))
}

// TestDivideByZero exercises the DivideByZero error path.
func TestDivideByZero(t *testing.T) {
	rverr := runExpectErr(t, `
ALLOT : a, b, c
PUT : 1, a
PUT : 0, b
DIV : a, b, c
`)
	require.Equal(t, ErrDivideByZero, rverr.Kind)
}

// TestMemoryErrorOnUnallottedAssignment: assigning to a name that was
// never ALLOT'd is a MemoryError ("nonexistent space"), per spec.md §3.3.
func TestMemoryErrorOnUnallottedAssignment(t *testing.T) {
	rverr := runExpectErr(t, `PUT : 1, nope`)
	require.Equal(t, ErrMemory, rverr.Kind)
}
