package interp

import "fmt"

// ID is the identifier every addressable entity in the VM carries: scopes,
// values, types and instructions each mint one from their own tag space.
// Two IDs compare structurally equal iff both Tag and Index match; indexes
// never recycle within a process.
type ID struct {
	Tag   string
	Index int64
}

// String returns the display form "tag-index" used throughout trace output
// and SP_GET/SP_SET string encodings.
func (id ID) String() string {
	return fmt.Sprintf("%s-%d", id.Tag, id.Index)
}

// Equal reports structural equality: same tag, same index.
func (id ID) Equal(other ID) bool {
	return id.Tag == other.Tag && id.Index == other.Index
}

// IsZero reports whether id was never minted (the zero value).
func (id ID) IsZero() bool {
	return id.Tag == "" && id.Index == 0
}

// Well-known ID tags, one per addressable entity kind.
const (
	TagData  = "data"  // value slots
	TagScope = "scope" // scopes
	TagInst  = "inst"  // CustomType/CustomInst instances
	TagRI    = "ri"    // RI opcode registrations
	TagIns   = "inst"  // Ins (same tag family as instance IDs, original source reused "inst")
)

// idMinter hands out monotonically increasing indexes for a single tag.
// It is the Go replacement for the source's process-wide static counters:
// one minter per tag, held by the VM context instead of file-scope globals.
type idMinter struct {
	next map[string]int64
}

func newIDMinter() *idMinter {
	return &idMinter{next: map[string]int64{}}
}

// Mint returns a fresh ID for tag. Not safe for concurrent use — the VM
// is single-threaded cooperative per spec.md §5.
func (m *idMinter) Mint(tag string) ID {
	idx := m.next[tag]
	m.next[tag] = idx + 1
	return ID{Tag: tag, Index: idx}
}
