package interp

import (
	"math"
	"strconv"
	"strings"
)

// asIterable returns v as an Iterable, or false.
func asIterable(v Value) (Iterable, bool) {
	switch t := v.(type) {
	case StringValue:
		return t, true
	case ListValue:
		return t, true
	case SeriesValue:
		return t, true
	case DictValue:
		return t, true
	}
	return nil, false
}

// addValues implements ADD's full contract (spec.md §4.1): numeric+numeric
// arithmetic; same-kind-iterable concatenation; exactly-one-iterable
// scalar append; anything else is a DataTypeMismatchError.
func addValues(a, b Value, pos Pos, raw string) (Value, *RVMError) {
	if na, ok := asNumeric(a); ok {
		if nb, ok := asNumeric(b); ok {
			return combineNumeric(na, nb,
				func(x, y int64) int64 { return x + y },
				func(x, y float64) float64 { return x + y }), nil
		}
	}
	// Strings are immutable in place (their Iterable mutators are no-ops),
	// so their concatenation/append paths build a fresh StringValue instead
	// of going through Splice/Append.
	if sa, ok := a.(StringValue); ok {
		if sb, ok := b.(StringValue); ok {
			return sa + sb, nil
		}
		if _, isIter := asIterable(b); !isIter {
			return stringAppendCopy(sa, b), nil
		}
		return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "cannot concatenate mismatched iterables")
	}
	if sb, ok := b.(StringValue); ok {
		if _, isIter := asIterable(a); !isIter {
			return StringValue(a.DisplayString()) + sb, nil
		}
		return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "cannot concatenate mismatched iterables")
	}

	ia, aIsIter := asIterable(a)
	ib, bIsIter := asIterable(b)
	switch {
	case aIsIter && bIsIter && a.Kind() == b.Kind():
		out := copyValue(a).(Iterable)
		if !out.Splice(ib) {
			return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "cannot concatenate mismatched iterables")
		}
		return out, nil
	case aIsIter && !bIsIter:
		out := copyValue(a).(Iterable)
		out.Append(b.Copy())
		return out, nil
	case bIsIter && !aIsIter:
		out := copyValue(b).(Iterable)
		// Prepend: the scalar is the left operand here, so it goes in
		// front of the iterable's elements, keeping the left-to-right
		// operand order of "ADD a, b, dst".
		out.Insert(0, a.Copy())
		return out, nil
	}
	_ = ia
	return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "ADD requires numerics or a compatible iterable pairing")
}

func arithOp(a, b Value, pos Pos, raw string, name string,
	intOp func(x, y int64) int64, floatOp func(x, y float64) float64) (Value, *RVMError) {
	na, aok := asNumeric(a)
	nb, bok := asNumeric(b)
	if !aok || !bok {
		return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, name+" requires Numeric operands")
	}
	return combineNumeric(na, nb, intOp, floatOp), nil
}

func divValues(a, b Value, pos Pos, raw string) (Value, *RVMError) {
	na, aok := asNumeric(a)
	nb, bok := asNumeric(b)
	if !aok || !bok {
		return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "DIV requires Numeric operands")
	}
	if nb.Float64() == 0 {
		return nil, NewRVMError(ErrDivideByZero, pos, raw, "division by zero")
	}
	if na.IsFloatValue() || nb.IsFloatValue() {
		return FloatValue(na.Float64() / nb.Float64()), nil
	}
	return IntValue(numericToInt64(na) / numericToInt64(nb)), nil
}

func oppValue(a Value, pos Pos, raw string) (Value, *RVMError) {
	na, ok := asNumeric(a)
	if !ok {
		return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "OPP requires a Numeric operand")
	}
	if na.IsFloatValue() {
		return FloatValue(-na.Float64()), nil
	}
	return IntValue(-numericToInt64(na)), nil
}

func powValue(a, b Value, pos Pos, raw string) (Value, *RVMError) {
	na, aok := asNumeric(a)
	nb, bok := asNumeric(b)
	if !aok || !bok {
		return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "POW requires Numeric operands")
	}
	r := math.Pow(na.Float64(), nb.Float64())
	if !na.IsFloatValue() && !nb.IsFloatValue() && r == math.Trunc(r) {
		return IntValue(int64(r)), nil
	}
	return FloatValue(r), nil
}

func rootValue(a, b Value, pos Pos, raw string) (Value, *RVMError) {
	na, aok := asNumeric(a)
	nb, bok := asNumeric(b)
	if !aok || !bok {
		return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "ROOT requires Numeric operands")
	}
	if nb.Float64() == 0 {
		return nil, NewRVMError(ErrDivideByZero, pos, raw, "zeroth root is undefined")
	}
	return FloatValue(math.Pow(na.Float64(), 1/nb.Float64())), nil
}

// Relation is the CREL/JR/UNTIL relation keyword (spec.md §4.1).
type Relation string

const (
	RelEQ  Relation = "RE"
	RelNE  Relation = "RNE"
	RelGT  Relation = "RG"
	RelGE  Relation = "RGE"
	RelLT  Relation = "RL"
	RelLE  Relation = "RLE"
	RelAND Relation = "AND"
	RelOR  Relation = "OR"
)

// evaluateRelation compares a and b under rel, per spec.md §4.1: numeric
// comparison is arithmetic, string comparison is lexicographic, and for
// all other pairings only RE/RNE/AND/OR are defined.
func evaluateRelation(a, b Value, rel Relation, pos Pos, raw string) (bool, *RVMError) {
	switch rel {
	case RelAND:
		return a.Bool() && b.Bool(), nil
	case RelOR:
		return a.Bool() || b.Bool(), nil
	}

	na, aNum := asNumeric(a)
	nb, bNum := asNumeric(b)
	if aNum && bNum {
		return compareOrdered(na.Float64(), nb.Float64(), rel, pos, raw)
	}

	sa, aStr := a.(StringValue)
	sb, bStr := b.(StringValue)
	if aStr && bStr {
		return compareOrdered(float64(strings.Compare(string(sa), string(sb))), 0, rel, pos, raw)
	}

	switch rel {
	case RelEQ:
		return valuesEqual(a, b), nil
	case RelNE:
		return !valuesEqual(a, b), nil
	default:
		return false, NewRVMError(ErrArgTypeMismatch, pos, raw, "relation "+string(rel)+" is only defined for Numeric or String operands")
	}
}

func compareOrdered(x, y float64, rel Relation, pos Pos, raw string) (bool, *RVMError) {
	switch rel {
	case RelEQ:
		return x == y, nil
	case RelNE:
		return x != y, nil
	case RelGT:
		return x > y, nil
	case RelGE:
		return x >= y, nil
	case RelLT:
		return x < y, nil
	case RelLE:
		return x <= y, nil
	default:
		return false, NewRVMError(ErrArgTypeMismatch, pos, raw, "unknown relation "+string(rel))
	}
}

// valuesEqual implements RE/RNE for arbitrary value pairs: Null equals
// only Null; Function/RetFunction compare by identity of their defining
// InsSet pointer (the closest Go analogue to "type ID identity" for those
// variants); everything else falls back to EscapedString equality, which
// is exact for every other variant's canonical representation.
func valuesEqual(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case NullValue:
		return true
	case FunctionValue:
		bv := b.(FunctionValue)
		return av.Body == bv.Body
	case RetFunctionValue:
		bv := b.(RetFunctionValue)
		return av.Body == bv.Body
	default:
		return a.EscapedString() == b.EscapedString()
	}
}

// convertTo implements TP_SET's conversion matrix (spec.md §4.1).
func convertTo(v Value, target DType, pos Pos, raw string) (Value, *RVMError) {
	if target.IsCustom {
		return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "TP_SET cannot target a custom type")
	}
	switch target.Built {
	case KindInt:
		return convertToInt(v, pos, raw)
	case KindFloat:
		return convertToFloat(v, pos, raw)
	case KindBool:
		return BoolValue(v.Bool()), nil
	case KindChar:
		return convertToChar(v, pos, raw)
	case KindString:
		return StringValue(v.DisplayString()), nil
	case KindList:
		return convertToList(v, pos, raw)
	case KindSeries:
		l, err := convertToList(v, pos, raw)
		if err != nil {
			return nil, err
		}
		lv := l.(ListValue)
		return SeriesValue{items: lv.items}, nil
	case KindDict:
		return convertToDict(v, pos, raw)
	case KindTime:
		s, ok := v.(StringValue)
		if !ok {
			return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "TP_SET to Time requires a String source")
		}
		t, perr := ParseTime(string(s), TimeISO)
		if perr != nil {
			return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "malformed time literal: "+perr.Error())
		}
		return t, nil
	case KindNull:
		return Null, nil
	}
	return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "unsupported TP_SET target "+target.DisplayString())
}

func convertToInt(v Value, pos Pos, raw string) (Value, *RVMError) {
	switch t := v.(type) {
	case NullValue:
		return IntValue(0), nil
	case IntValue, BoolValue, CharValue, FloatValue:
		n, _ := asNumeric(t)
		return IntValue(numericToInt64(n)), nil
	case StringValue:
		i, err := strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
		if err != nil {
			return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "cannot parse Int from "+string(t))
		}
		return IntValue(i), nil
	}
	return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "cannot convert to Int")
}

func convertToFloat(v Value, pos Pos, raw string) (Value, *RVMError) {
	if _, ok := v.(NullValue); ok {
		return FloatValue(0), nil
	}
	if n, ok := asNumeric(v); ok {
		return FloatValue(n.Float64()), nil
	}
	if s, ok := v.(StringValue); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
		if err != nil {
			return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "cannot parse Float from "+string(s))
		}
		return FloatValue(f), nil
	}
	return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "cannot convert to Float")
}

func convertToChar(v Value, pos Pos, raw string) (Value, *RVMError) {
	switch t := v.(type) {
	case NullValue:
		return CharValue(0), nil
	case CharValue:
		return t, nil
	case IntValue:
		return CharValue(rune(t)), nil
	case StringValue:
		r := []rune(string(t))
		if len(r) != 1 {
			return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "Char conversion requires a single-rune String")
		}
		return CharValue(r[0]), nil
	}
	return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "cannot convert to Char")
}

func convertToList(v Value, pos Pos, raw string) (Value, *RVMError) {
	switch t := v.(type) {
	case NullValue:
		return NewList(), nil
	case StringValue:
		rs := []rune(string(t))
		items := make([]Value, len(rs))
		for i, r := range rs {
			items[i] = CharValue(r)
		}
		return NewList(items...), nil
	case ListValue:
		return t.Copy(), nil
	case SeriesValue:
		return NewList((*t.items)...), nil
	case DictValue:
		items := make([]Value, 0, t.Size())
		for _, k := range *t.order {
			items = append(items, (*t.entries)[k])
		}
		return NewList(items...), nil
	}
	return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "cannot convert to List")
}

func convertToDict(v Value, pos Pos, raw string) (Value, *RVMError) {
	switch t := v.(type) {
	case NullValue:
		return NewDict(), nil
	case DictValue:
		return t.Copy(), nil
	case ListValue:
		d := NewDict()
		for i, item := range *t.items {
			kv, ok := item.(KeyValuePair)
			if !ok {
				kv = KeyValuePair{KeyVal: IntValue(i), Val: item}
			}
			d.SetByKey(kv.KeyVal.EscapedString(), kv)
		}
		return d, nil
	}
	return nil, NewRVMError(ErrDataTypeMismatch, pos, raw, "cannot convert to Dict")
}
