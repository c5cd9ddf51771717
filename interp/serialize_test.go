package interp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRoundTripSerializationDebug is spec.md §8 scenario 6 / the "Round
// trip" invariant: deserialize(serialize(parse(S), Debug)) executes
// identically to parse(S) directly.
func TestRoundTripSerializationDebug(t *testing.T) {
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
	vm1 := New(Options{Stdout: &bytes.Buffer{}})
	root1, err := vm1.ParseSource(src, "test.ra")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, vm1.WriteRSI(root1, ProfileDebug, nil, &buf))

	vm2 := New(Options{Stdout: &bytes.Buffer{}})
	root2, extensions, err := vm2.ReadRSI(&buf)
	require.NoError(t, err)
	require.Empty(t, extensions)

	var out1, out2 bytes.Buffer
	vm1.opt.Stdout = &out1
	_, rerr1 := vm1.Execute(root1)
	require.NoError(t, rerr1)

	vm2.opt.Stdout = &out2
	_, rerr2 := vm2.Execute(root2)
	require.NoError(t, rerr2)

	require.Equal(t, out1.String(), out2.String())
	require.Equal(t, "55\n", out2.String())
}

// TestRoundTripAcrossProfiles checks every serialization profile still
// round-trips to an executable, correct InsSet even though higher
// profiles strip debug-only metadata (spec.md §4.6 profile table).
func TestRoundTripAcrossProfiles(t *testing.T) {
	src := `SOUT : s-l, "Hello, world!\n"`
	for _, profile := range []SerializationProfile{ProfileDebug, ProfileTesting, ProfileRelease, ProfileMinified} {
		profile := profile
		t.Run(profile.String(), func(t *testing.T) {
			vm := New(Options{Stdout: &bytes.Buffer{}})
			root, err := vm.ParseSource(src, "test.ra")
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, vm.WriteRSI(root, profile, nil, &buf))

			root2, _, err := vm.ReadRSI(&buf)
			require.NoError(t, err)

			var out bytes.Buffer
			vm2 := New(Options{Stdout: &out})
			_, rerr := vm2.Execute(root2)
			require.NoError(t, rerr)
			require.Equal(t, "Hello, world!\n", out.String())
		})
	}
}

// TestPeekRSIHeader exercises --vs-check's read path against a Debug-profile
// archive (every profile below Minified carries a header, spec.md §6.3/§4.6).
func TestPeekRSIHeader(t *testing.T) {
	vm := New(Options{Stdout: &bytes.Buffer{}})
	root, err := vm.ParseSource(`SOUT : s-l, "hi\n"`, "test.ra")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, vm.WriteRSI(root, ProfileDebug, []string{"mathlib"}, &buf))

	header, herr := PeekRSIHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, herr)
	require.Equal(t, ProfileDebug, header.Profile)
}
