package interp

// QuoteValue is a first-class reference to another slot by ID; it never
// owns the referent and dereferences lazily against the VM's scope pool
// (spec.md §3.2, §9 "Shared-pointer graphs of values" rewrite).
type QuoteValue struct {
	Target ID
}

func (q QuoteValue) Kind() Kind            { return KindQuote }
func (q QuoteValue) Copy() Value           { return q }
func (q QuoteValue) DisplayString() string { return "&" + q.Target.String() }
func (q QuoteValue) EscapedString() string { return q.DisplayString() }
func (q QuoteValue) Bool() bool            { return true }

// CompareGroup packages two operand values for CMP's two-step protocol
// with CREL (spec.md §3.2: "two value IDs... Produced by CMP; consumed
// by CREL/JR/UNTIL"). It holds copies of the compared values rather than
// live slot IDs: a CompareGroup outlives the instant of comparison (it can
// be stored, passed around and tested later), so it must not observe
// further mutation of the slots that produced it.
type CompareGroup struct {
	Left, Right Value
}

func (c CompareGroup) Kind() Kind  { return KindCompareGroup }
func (c CompareGroup) Copy() Value { return CompareGroup{Left: c.Left.Copy(), Right: c.Right.Copy()} }
func (c CompareGroup) DisplayString() string {
	return "<cmp " + c.Left.DisplayString() + "," + c.Right.DisplayString() + ">"
}
func (c CompareGroup) EscapedString() string { return c.DisplayString() }
func (c CompareGroup) Bool() bool            { return true }
