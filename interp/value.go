package interp

import (
	"strconv"
)

// Kind tags a Value's runtime variant. The teacher's node.kind (nkind) plays
// the analogous role for AST nodes; here it tags data instead.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindChar
	KindString
	KindList
	KindSeries
	KindDict
	KindPair
	KindDType
	KindTime
	KindQuote
	KindFunction
	KindRetFunction
	KindCustomType
	KindCustomInst
	KindExtension
	KindError
	KindCompareGroup
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "tp-null"
	case KindBool:
		return "tp-bool"
	case KindInt:
		return "tp-int"
	case KindFloat:
		return "tp-float"
	case KindChar:
		return "tp-char"
	case KindString:
		return "tp-str"
	case KindList:
		return "tp-list"
	case KindSeries:
		return "tp-series"
	case KindDict:
		return "tp-dict"
	case KindPair:
		return "tp-pair"
	case KindDType:
		return "tp"
	case KindTime:
		return "tp-time"
	case KindQuote:
		return "tp-qot"
	case KindFunction:
		return "tp-func"
	case KindRetFunction:
		return "tp-retfunc"
	case KindCustomType:
		return "tp-custom-type"
	case KindCustomInst:
		return "tp-custom-inst"
	case KindExtension:
		return "tp-ext"
	case KindError:
		return "tp-error"
	case KindCompareGroup:
		return "tp-cmpgrp"
	case KindFile:
		return "tp-file"
	default:
		return "tp-unknown"
	}
}

// Value is the dynamic-value capability every RVM datum implements. It
// replaces the source's deep Callable/Iterable class hierarchies (spec.md §9
// REDESIGN FLAGS) with a flat tagged variant plus small capability
// interfaces (Numeric, Iterable, Updatable) implemented by the variants
// that support them.
type Value interface {
	Kind() Kind
	Copy() Value
	DisplayString() string
	EscapedString() string
	Bool() bool
}

// UpdateOutcome distinguishes whether an in-place update mutated the
// existing value (preserving identity across aliased Quotes) or forced a
// slot replacement. Spec.md §9 calls out the source's updateData bool
// return as a pattern to make explicit; this enum is that.
type UpdateOutcome int

const (
	ReplaceSlot UpdateOutcome = iota
	InPlace
)

// Updatable is implemented by variants whose contents can be mutated in
// place. QOT_VAL uses it to write through a Quote without replacing the
// referent's value (spec.md §3.2 invariants); PUT does not consult it.
type Updatable interface {
	UpdateInPlace(other Value) UpdateOutcome
}

// Numeric unifies Bool/Char/Int/Float for arithmetic and ordered comparison,
// per spec.md §4.1.
type Numeric interface {
	Value
	Float64() float64
	IsFloatValue() bool
}

// ---- Null ----

type NullValue struct{}

var Null = NullValue{}

func (NullValue) Kind() Kind            { return KindNull }
func (NullValue) Copy() Value           { return Null }
func (NullValue) DisplayString() string { return "null" }
func (NullValue) EscapedString() string { return "null" }
func (NullValue) Bool() bool            { return false }

// ---- Bool ----

type BoolValue bool

func (b BoolValue) Kind() Kind            { return KindBool }
func (b BoolValue) Copy() Value           { return b }
func (b BoolValue) DisplayString() string { return strconv.FormatBool(bool(b)) }
func (b BoolValue) EscapedString() string { return b.DisplayString() }
func (b BoolValue) Bool() bool            { return bool(b) }
func (b BoolValue) Float64() float64 {
	if b {
		return 1
	}
	return 0
}
func (b BoolValue) IsFloatValue() bool { return false }

// ---- Int ----

type IntValue int64

func (i IntValue) Kind() Kind            { return KindInt }
func (i IntValue) Copy() Value           { return i }
func (i IntValue) DisplayString() string { return strconv.FormatInt(int64(i), 10) }
func (i IntValue) EscapedString() string { return i.DisplayString() }
func (i IntValue) Bool() bool            { return i != 0 }
func (i IntValue) Float64() float64      { return float64(i) }
func (i IntValue) IsFloatValue() bool    { return false }

// ---- Float ----

type FloatValue float64

func (f FloatValue) Kind() Kind  { return KindFloat }
func (f FloatValue) Copy() Value { return f }
func (f FloatValue) DisplayString() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}
func (f FloatValue) EscapedString() string { return f.DisplayString() }
func (f FloatValue) Bool() bool            { return f != 0 }
func (f FloatValue) Float64() float64      { return float64(f) }
func (f FloatValue) IsFloatValue() bool    { return true }

// ---- Char ----

// CharValue is a single code unit, interchangeable with Int in arithmetic
// and comparison per spec.md §3.2.
type CharValue rune

func (c CharValue) Kind() Kind            { return KindChar }
func (c CharValue) Copy() Value           { return c }
func (c CharValue) DisplayString() string { return string(rune(c)) }
func (c CharValue) EscapedString() string { return escapeString(string(rune(c))) }
func (c CharValue) Bool() bool            { return c != 0 }
func (c CharValue) Float64() float64      { return float64(c) }
func (c CharValue) IsFloatValue() bool    { return false }

// asNumeric returns v as a Numeric, or false if v is not one of
// Bool/Char/Int/Float (spec.md §4.1's "Numeric super-tag").
func asNumeric(v Value) (Numeric, bool) {
	switch t := v.(type) {
	case BoolValue:
		return t, true
	case IntValue:
		return t, true
	case FloatValue:
		return t, true
	case CharValue:
		return t, true
	}
	return nil, false
}

// combineNumeric applies op to the 64-bit int or float64 representations of
// a and b, widening to Float if either operand is a Float (spec.md §4.1).
func combineNumeric(a, b Numeric, intOp func(x, y int64) int64, floatOp func(x, y float64) float64) Value {
	if a.IsFloatValue() || b.IsFloatValue() {
		return FloatValue(floatOp(a.Float64(), b.Float64()))
	}
	return IntValue(intOp(int64(a.Float64()), int64(b.Float64())))
}

func numericToInt64(n Numeric) int64 {
	return int64(n.Float64())
}

// copyValue deep-copies any Value, recursing into iterables and dicts.
func copyValue(v Value) Value {
	return v.Copy()
}

