package interp

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// SerializationProfile is the RSI verbosity tier (spec.md §4.6, §6.3):
// each step strips more debug-only metadata than the last.
type SerializationProfile int

const (
	ProfileDebug SerializationProfile = iota
	ProfileTesting
	ProfileRelease
	ProfileMinified
)

func (p SerializationProfile) String() string {
	switch p {
	case ProfileDebug:
		return "debug"
	case ProfileTesting:
		return "testing"
	case ProfileRelease:
		return "release"
	case ProfileMinified:
		return "minified"
	default:
		return "unknown"
	}
}

// ParseProfile resolves a --comp-level flag value to a SerializationProfile.
func ParseProfile(s string) (SerializationProfile, error) {
	switch s {
	case "debug", "Debug":
		return ProfileDebug, nil
	case "testing", "Testing":
		return ProfileTesting, nil
	case "release", "Release":
		return ProfileRelease, nil
	case "minified", "Minified":
		return ProfileMinified, nil
	default:
		return 0, fmt.Errorf("unknown serialization profile %q", s)
	}
}

const rsiMagic uint32 = 0x52534931 // "RSI1"

// rsiFormatVersion is the RSI container format's own version, independent
// of the rvm binary's --version; --vs-check (spec.md §6.1 -vc) compares it
// via golang.org/x/mod/semver.
const rsiFormatVersion = "v1.0.0"

// RSIHeader is the decoded first section of an RSI file, everything
// --vs-check needs without walking the whole InsSet.
type RSIHeader struct {
	Profile    SerializationProfile
	Version    string
	HasVersion bool
}

type rsiWriter struct {
	w   *bufio.Writer
	err error
}

func (sw *rsiWriter) fail(err error) {
	if sw.err == nil {
		sw.err = err
	}
}

func (sw *rsiWriter) writeUint8(v uint8) {
	if sw.err != nil {
		return
	}
	sw.fail(sw.w.WriteByte(v))
}

func (sw *rsiWriter) writeUint32(v uint32) {
	if sw.err != nil {
		return
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := sw.w.Write(buf[:])
	sw.fail(err)
}

func (sw *rsiWriter) writeInt64(v int64) {
	if sw.err != nil {
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, err := sw.w.Write(buf[:])
	sw.fail(err)
}

func (sw *rsiWriter) writeBool(v bool) {
	if v {
		sw.writeUint8(1)
	} else {
		sw.writeUint8(0)
	}
}

func (sw *rsiWriter) writeString(s string) {
	if sw.err != nil {
		return
	}
	sw.writeUint32(uint32(len(s)))
	if sw.err != nil {
		return
	}
	_, err := sw.w.WriteString(s)
	sw.fail(err)
}

func (sw *rsiWriter) writeStrings(ss []string) {
	sw.writeUint32(uint32(len(ss)))
	for _, s := range ss {
		sw.writeString(s)
	}
}

// Serialize writes root as RSI at the given profile, per spec.md §6.3:
// "[header][extension list][root InsSet]". extensions lists the module
// names LOADIN/LINK must re-resolve on load.
func Serialize(root *InsSet, profile SerializationProfile, extensions []string, w io.Writer) error {
	sw := &rsiWriter{w: bufio.NewWriter(w)}
	if profile < ProfileMinified {
		sw.writeUint32(rsiMagic)
		sw.writeUint8(uint8(profile))
		sw.writeString(rsiFormatVersion)
	}
	sw.writeStrings(extensions)
	sw.writeInsSet(root, profile)
	if sw.err != nil {
		return sw.err
	}
	return sw.w.Flush()
}

func (sw *rsiWriter) writePos(p Pos, profile SerializationProfile) {
	sw.writeInt64(int64(p.Line))
	sw.writeInt64(int64(p.Column))
	if profile < ProfileRelease {
		sw.writeString(p.Filepath)
	}
}

func (sw *rsiWriter) writeArg(a Arg) {
	sw.writeUint8(uint8(a.Kind))
	sw.writeString(a.Literal)
}

// writeIns follows the order spec.md §4.6 pins: Pos, RI (by mnemonic
// string), args, body flag + body, raw_code (profile-gated),
// is_delayed_release_scope, extension tag.
func (sw *rsiWriter) writeIns(ins *Ins, profile SerializationProfile) {
	sw.writePos(ins.Pos, profile)
	sw.writeString(ins.RI.Name)
	sw.writeUint32(uint32(len(ins.Args)))
	for _, a := range ins.Args {
		sw.writeArg(a)
	}
	sw.writeBool(ins.Body != nil)
	if ins.Body != nil {
		sw.writeInsSet(ins.Body, profile)
	}
	if profile < ProfileTesting {
		sw.writeString(ins.RawSrc)
	}
	sw.writeBool(ins.IsDelayedRelease)
	sw.writeString(ins.ExtensionTag)
}

func (sw *rsiWriter) writeInsSet(s *InsSet, profile SerializationProfile) {
	sw.writeBool(s.IsDelayedScope)
	sw.writeInt64(int64(s.EndPointer))
	if profile < ProfileTesting {
		sw.writeString(s.ScopePrefix)
		sw.writeString(s.ScopeLeader)
	}
	if profile < ProfileRelease {
		sw.writePos(s.ScopeLeaderPos, profile)
	}
	sw.writeUint32(uint32(len(s.Ins)))
	for _, ins := range s.Ins {
		sw.writeIns(ins, profile)
	}
	sw.writeUint32(uint32(len(s.Labels)))
	for label, idx := range s.Labels {
		sw.writeString(label)
		sw.writeInt64(int64(idx))
	}
}

type rsiReader struct {
	r   *bufio.Reader
	err error
}

func (sr *rsiReader) fail(err error) {
	if sr.err == nil && err != nil {
		sr.err = err
	}
}

func (sr *rsiReader) readUint8() uint8 {
	if sr.err != nil {
		return 0
	}
	b, err := sr.r.ReadByte()
	sr.fail(err)
	return b
}

func (sr *rsiReader) readUint32() uint32 {
	if sr.err != nil {
		return 0
	}
	var buf [4]byte
	_, err := io.ReadFull(sr.r, buf[:])
	sr.fail(err)
	return binary.LittleEndian.Uint32(buf[:])
}

func (sr *rsiReader) readInt64() int64 {
	if sr.err != nil {
		return 0
	}
	var buf [8]byte
	_, err := io.ReadFull(sr.r, buf[:])
	sr.fail(err)
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

func (sr *rsiReader) readBool() bool { return sr.readUint8() != 0 }

func (sr *rsiReader) readString() string {
	n := sr.readUint32()
	if sr.err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	_, err := io.ReadFull(sr.r, buf)
	sr.fail(err)
	return string(buf)
}

func (sr *rsiReader) readStrings() []string {
	n := sr.readUint32()
	out := make([]string, 0, n)
	for i := uint32(0); i < n && sr.err == nil; i++ {
		out = append(out, sr.readString())
	}
	return out
}

// PeekRSIHeader decodes just the header, for --vs-check (spec.md §6.1 -vc)
// without materializing the rest of the file.
func PeekRSIHeader(r io.Reader) (*RSIHeader, error) {
	sr := &rsiReader{r: bufio.NewReader(r)}
	magic := sr.readUint32()
	if sr.err != nil {
		return nil, sr.err
	}
	if magic != rsiMagic {
		return &RSIHeader{Profile: ProfileMinified, HasVersion: false}, nil
	}
	profile := SerializationProfile(sr.readUint8())
	version := sr.readString()
	if sr.err != nil {
		return nil, sr.err
	}
	return &RSIHeader{Profile: profile, Version: version, HasVersion: true}, nil
}

// Deserialize reads an RSI stream back into an InsSet, resolving each
// instruction's RI by mnemonic against ops (spec.md §4.6: "unknown
// mnemonic -> fatal"). extensions receives the re-resolvable module name
// list a loader must bind before the returned InsSet can run.
func Deserialize(r io.Reader, ops *opcodeTable) (root *InsSet, extensions []string, err error) {
	sr := &rsiReader{r: bufio.NewReader(r)}
	first := sr.readUint32()
	profile := ProfileMinified
	if first == rsiMagic {
		profile = SerializationProfile(sr.readUint8())
		sr.readString() // version, informational only here
		extensions = sr.readStrings()
	} else {
		// Minified: no header, first uint32 we read was actually the
		// extension-list count. Re-synthesize that read.
		n := first
		extensions = make([]string, 0, n)
		for i := uint32(0); i < n && sr.err == nil; i++ {
			extensions = append(extensions, sr.readString())
		}
	}
	root, rerr := sr.readInsSet(profile, ops)
	if rerr != nil {
		return nil, nil, rerr
	}
	if sr.err != nil {
		return nil, nil, sr.err
	}
	return root, extensions, nil
}

func (sr *rsiReader) readPos(profile SerializationProfile) Pos {
	p := Pos{Line: int(sr.readInt64()), Column: int(sr.readInt64())}
	if profile < ProfileRelease {
		p.Filepath = sr.readString()
	}
	return p
}

func (sr *rsiReader) readArg() Arg {
	return Arg{Kind: ArgKind(sr.readUint8()), Literal: sr.readString()}
}

func (sr *rsiReader) readIns(profile SerializationProfile, ops *opcodeTable) (*Ins, error) {
	pos := sr.readPos(profile)
	mnemonic := sr.readString()
	ri, ok := ops.Lookup(mnemonic)
	if !ok {
		return nil, fmt.Errorf("rsi: unknown opcode %q", mnemonic)
	}
	argc := sr.readUint32()
	args := make([]Arg, 0, argc)
	for i := uint32(0); i < argc; i++ {
		args = append(args, sr.readArg())
	}
	ins := &Ins{Pos: pos, RI: ri, Args: args}
	hasBody := sr.readBool()
	if hasBody {
		body, berr := sr.readInsSet(profile, ops)
		if berr != nil {
			return nil, berr
		}
		ins.Body = body
	}
	if profile < ProfileTesting {
		ins.RawSrc = sr.readString()
	}
	ins.IsDelayedRelease = sr.readBool()
	ins.ExtensionTag = sr.readString()
	if sr.err != nil {
		return nil, sr.err
	}
	return ins, nil
}

func (sr *rsiReader) readInsSet(profile SerializationProfile, ops *opcodeTable) (*InsSet, error) {
	s := NewInsSet("")
	s.IsDelayedScope = sr.readBool()
	s.EndPointer = int(sr.readInt64())
	if profile < ProfileTesting {
		s.ScopePrefix = sr.readString()
		s.ScopeLeader = sr.readString()
	}
	if profile < ProfileRelease {
		s.ScopeLeaderPos = sr.readPos(profile)
	}
	count := sr.readUint32()
	for i := uint32(0); i < count && sr.err == nil; i++ {
		ins, err := sr.readIns(profile, ops)
		if err != nil {
			return nil, err
		}
		s.Add(ins)
	}
	labelCount := sr.readUint32()
	for i := uint32(0); i < labelCount && sr.err == nil; i++ {
		label := sr.readString()
		idx := sr.readInt64()
		s.Labels[label] = int(idx)
	}
	if sr.err != nil {
		return nil, sr.err
	}
	return s, nil
}
