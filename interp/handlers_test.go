package interp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCmpCrelEvaluatesRelation exercises CMP packaging two operands into a
// CompareGroup and CREL evaluating it against a relation keyword (spec.md
// §4.1).
func TestCmpCrelEvaluatesRelation(t *testing.T) {
	src := `
ALLOT : a, b, grp, lt, eq
PUT : 3, a
PUT : 7, b
CMP : a, b, grp
CREL : grp, RL, lt
CREL : grp, RE, eq
SOUT : s-m, lt
SOUT : s-m, eq
`
	_, out := mustRun(t, src)
	require.Equal(t, "true\nfalse\n", out)
}

// TestJrFusedCompareAndBranch is the fused compare+jump opcode (spec.md
// §4.1, §4.4): a true relation jumps past the instruction that would
// otherwise run.
func TestJrFusedCompareAndBranch(t *testing.T) {
	src := `
ALLOT : a, b, result
PUT : 1, a
PUT : 2, b
PUT : 0, result
JR : a, RL, b, skip
PUT : 99, result
SET : skip
SOUT : s-m, result
`
	_, out := mustRun(t, src)
	require.Equal(t, "0\n", out)
}

// TestJtJfBranchOnBoolean exercises the truthy/falsy single-operand jumps.
func TestJtJfBranchOnBoolean(t *testing.T) {
	src := `
ALLOT : flag, result
PUT : true, flag
PUT : 0, result
JT : flag, taken
PUT : 99, result
SET : taken
JF : flag, untaken
PUT : 1, result
SET : untaken
SOUT : s-m, result
`
	_, out := mustRun(t, src)
	require.Equal(t, "1\n", out)
}

// TestIterAppendGetSetDel walks ITER_APND/ITER_GET/ITER_SET/ITER_DEL against
// a List built up through direct slot manipulation, mirroring the
// TestAddConcatenationInvariant pattern for constructing list fixtures
// without a dedicated literal-list opcode (spec.md §4.2).
func TestIterAppendGetSetDel(t *testing.T) {
	vm := New(Options{Stdout: &bytes.Buffer{}})
	root, err := vm.ParseSource(`ALLOT : xs, got`, "test.ra")
	require.NoError(t, err)
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)

	slot, ok := vm.scopes.findByName("xs")
	require.True(t, ok)
	vm.scopes.updateByID(slot.id, NewList(IntValue(10), IntValue(20), IntValue(30)))

	var out bytes.Buffer
	vm.opt.Stdout = &out
	root2, err := vm.ParseSource(`
ITER_APND : xs, 40
ITER_SET : xs, 0, 99
ITER_DEL : xs, 1
ITER_GET : xs, 0, got
SOUT : s-m, got
ITER_SIZE : xs, got
SOUT : s-m, got
`, "test2.ra")
	require.NoError(t, err)
	_, rerr = vm.Execute(root2)
	require.NoError(t, rerr)
	require.Equal(t, "99\n3\n", out.String())
}

// TestIterTravBindsElementAndIndex exercises ITER_TRAV's fresh per-pass
// bindings (spec.md §4.2, §3.3).
func TestIterTravBindsElementAndIndex(t *testing.T) {
	vm := New(Options{Stdout: &bytes.Buffer{}})
	root, err := vm.ParseSource(`ALLOT : xs, sum`, "test.ra")
	require.NoError(t, err)
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)

	slot, ok := vm.scopes.findByName("xs")
	require.True(t, ok)
	vm.scopes.updateByID(slot.id, NewList(IntValue(1), IntValue(2), IntValue(3)))

	var out bytes.Buffer
	vm.opt.Stdout = &out
	root2, err := vm.ParseSource(`
PUT : 0, sum
ITER_TRAV : xs, elem, idx
  ADD : sum, elem, sum
END : ITER_TRAV
SOUT : s-m, sum
`, "test2.ra")
	require.NoError(t, err)
	_, rerr = vm.Execute(root2)
	require.NoError(t, rerr)
	require.Equal(t, "6\n", out.String())
}

// TestPairAccessors exercises PAIR_NEW/PAIR_GET_KEY/PAIR_GET_VALUE/
// PAIR_SET_VALUE (spec.md SUPPLEMENTED FEATURES #2).
func TestPairAccessors(t *testing.T) {
	src := `
ALLOT : p, k, v
PAIR_NEW : "id", 1, p
PAIR_SET_VALUE : p, 2
PAIR_GET_KEY : p, k
PAIR_GET_VALUE : p, v
SOUT : s-m, k
SOUT : s-m, v
`
	_, out := mustRun(t, src)
	require.Equal(t, "id\n2\n", out)
}

// TestAddStringConcatenation: ADD on two Strings concatenates, and a
// String plus a scalar appends the scalar onto the String side (spec.md
// §4.1's iterable ADD contract applied to the immutable String variant).
func TestAddStringConcatenation(t *testing.T) {
	src := `
ALLOT : a, b, c
PUT : "foo", a
PUT : "bar", b
ADD : a, b, c
SOUT : s-m, c
ADD : c, "!", c
SOUT : s-m, c
`
	_, out := mustRun(t, src)
	require.Equal(t, "foobar\nfoobar!\n", out)
}

// TestIterGetDictByStringKey: ITER_GET against a Dict accepts a String key
// in place of an integer index (spec.md §4.1/§4.2); a missing key is a
// KeyNotFoundError.
func TestIterGetDictByStringKey(t *testing.T) {
	vm := New(Options{Stdout: &bytes.Buffer{}})
	root, err := vm.ParseSource(`ALLOT : d, got`, "test.ra")
	require.NoError(t, err)
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)

	d := NewDict()
	d.SetByKey(StringValue("k").EscapedString(), KeyValuePair{KeyVal: StringValue("k"), Val: IntValue(5)})
	slot, ok := vm.scopes.findByName("d")
	require.True(t, ok)
	vm.scopes.updateByID(slot.id, d)

	var out bytes.Buffer
	vm.opt.Stdout = &out
	root2, err := vm.ParseSource(`
ITER_GET : d, "k", got
SOUT : s-m, got
`, "test2.ra")
	require.NoError(t, err)
	_, rerr = vm.Execute(root2)
	require.NoError(t, rerr)
	require.Equal(t, "5\n", out.String())

	root3, err := vm.ParseSource(`ITER_GET : d, "missing", got`, "test3.ra")
	require.NoError(t, err)
	_, rerr = vm.Execute(root3)
	require.Error(t, rerr)
	require.Equal(t, ErrKeyNotFound, rerr.(*RVMError).Kind)
}

// TestSeriesSpreadsIntoCall: a Series actual unpacks into the positional
// argument list at a call site (spec.md §3.2 "Series ... unpacks when used
// as a call argument").
func TestSeriesSpreadsIntoCall(t *testing.T) {
	vm := New(Options{Stdout: &bytes.Buffer{}})
	root, err := vm.ParseSource(`
ALLOT : args, got
FUNI : sum2, x, y
  ADD : x, y, r
  RET : r
END : FUNI
`, "test.ra")
	require.NoError(t, err)
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)

	slot, ok := vm.scopes.findByName("args")
	require.True(t, ok)
	vm.scopes.updateByID(slot.id, NewSeries(IntValue(4), IntValue(5)))

	var out bytes.Buffer
	vm.opt.Stdout = &out
	root2, err := vm.ParseSource(`
IVOK : sum2, args, got
SOUT : s-m, got
`, "test2.ra")
	require.NoError(t, err)
	_, rerr = vm.Execute(root2)
	require.NoError(t, rerr)
	require.Equal(t, "9\n", out.String())
}

// TestUntilCompareGroupForm: UNTIL's two-argument form re-reads a
// CompareGroup slot before each pass (spec.md §4.1 "CREL/JR/UNTIL evaluate
// a CompareGroup", "body runs while !evaluate(cmp, rel)"), so the slot
// must be seeded by a CMP ahead of the loop and refreshed by the CMP
// inside the body.
func TestUntilCompareGroupForm(t *testing.T) {
	src := `
ALLOT : n, grp
PUT : 0, n
CMP : n, 3, grp
UNTIL : grp, RE
  ADD : n, 1, n
  CMP : n, 3, grp
END : UNTIL
SOUT : s-m, n
`
	_, out := mustRun(t, src)
	require.Equal(t, "3\n", out)
}

// TestUntilPreTestSkipsBody: UNTIL tests before the first pass, so a
// condition that already holds runs the body zero times.
func TestUntilPreTestSkipsBody(t *testing.T) {
	src := `
ALLOT : n, grp
PUT : 3, n
CMP : n, 3, grp
UNTIL : grp, RE
  PUT : 99, n
END : UNTIL
SOUT : s-m, n
`
	_, out := mustRun(t, src)
	require.Equal(t, "3\n", out)
}

// TestBareRetLeavesSRUntouched: `RET` with no argument signals the return
// without stomping SR (spec.md §4.4 "write v (or leave SR untouched)"), so
// a value an earlier RET deposited survives a later bare RET.
func TestBareRetLeavesSRUntouched(t *testing.T) {
	src := `
FUNI : seed, x
  RET : x
END : FUNI
FUNI : passthrough
  RET :
END : FUNI
ALLOT : first, second
IVOK : seed, 11, first
IVOK : passthrough, second
SOUT : s-m, first
SOUT : s-m, second
`
	_, out := mustRun(t, src)
	require.Equal(t, "11\n11\n", out)
}

// TestIterDelMultipleIndices pins ITER_DEL's variadic form: every index
// argument addresses the pre-deletion layout (ascending order), with each
// erase shifted left by the number already removed.
func TestIterDelMultipleIndices(t *testing.T) {
	vm := New(Options{Stdout: &bytes.Buffer{}})
	root, err := vm.ParseSource(`ALLOT : xs, got`, "test.ra")
	require.NoError(t, err)
	_, rerr := vm.Execute(root)
	require.NoError(t, rerr)

	slot, ok := vm.scopes.findByName("xs")
	require.True(t, ok)
	vm.scopes.updateByID(slot.id, NewList(IntValue(10), IntValue(20), IntValue(30), IntValue(40)))

	var out bytes.Buffer
	vm.opt.Stdout = &out
	root2, err := vm.ParseSource(`
ITER_DEL : xs, 1, 2
ITER_GET : xs, 0, got
SOUT : s-m, got
ITER_GET : xs, 1, got
SOUT : s-m, got
ITER_SIZE : xs, got
SOUT : s-m, got
`, "test2.ra")
	require.NoError(t, err)
	_, rerr = vm.Execute(root2)
	require.NoError(t, rerr)
	require.Equal(t, "10\n40\n2\n", out.String())
}

// TestTypeLevelFields: TP_ADD_TP_FIELD declares a shared type-level field,
// TP_SET_FIELD/TP_GET_FIELD on the type itself read and write it, and a
// derived type resolves it through the parent chain (spec.md §4.4).
func TestTypeLevelFields(t *testing.T) {
	src := `
TP_DEF : Shape
TP_ADD_TP_FIELD : Shape, count, 0
TP_DEF : Circle, Shape
ALLOT : got
TP_SET_FIELD : Shape, count, 7
TP_GET_FIELD : Circle, count, got
SOUT : s-m, got
`
	_, out := mustRun(t, src)
	require.Equal(t, "7\n", out)
}

// TestSpNewSetGet exercises named scope creation/access (spec.md
// SUPPLEMENTED FEATURES behind SP_NEW/SP_SET/SP_GET): a scope minted by
// SP_NEW and entered by SP_SET reports its own ID string back out through
// SP_GET, and slots allotted after entering it are reachable.
func TestSpNewSetGet(t *testing.T) {
	src := `
ALLOT : box, id2, inner
SP_NEW : box
SP_SET : box
ALLOT : inner2
PUT : 7, inner2
SP_GET : id2
SOUT : s-m, inner2
`
	vm, out := mustRun(t, src)
	boxSlot, ok := vm.scopes.findByName("box")
	require.True(t, ok)
	id2Slot, ok := vm.scopes.findByName("id2")
	require.True(t, ok)
	require.Equal(t, boxSlot.value, id2Slot.value)
	require.Equal(t, "7\n", out)
}
