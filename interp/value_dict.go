package interp

// KeyValuePair is a (key, value) pair; the key's EscapedString indexes it
// into a Dict (spec.md §3.2).
type KeyValuePair struct {
	KeyVal Value
	Val    Value
}

func (p KeyValuePair) Kind() Kind  { return KindPair }
func (p KeyValuePair) Copy() Value { return KeyValuePair{KeyVal: p.KeyVal.Copy(), Val: p.Val.Copy()} }
func (p KeyValuePair) DisplayString() string {
	return p.KeyVal.DisplayString() + ": " + p.Val.DisplayString()
}
func (p KeyValuePair) EscapedString() string {
	return p.KeyVal.EscapedString() + ": " + p.Val.EscapedString()
}
func (p KeyValuePair) Bool() bool { return true }

// DictValue maps an escaped key string to a KeyValuePair, per spec.md §3.2.
// Iteration order is not required to preserve insertion order by spec, but
// we keep one for deterministic SOUT/display output, same way Go's own
// map-ordering-is-unspecified forces most interpreters in the pack to carry
// an explicit key-order slice alongside their map (e.g. funxy's OP_MAKE_MAP
// construction order).
type DictValue struct {
	entries *map[string]KeyValuePair
	order   *[]string
}

func NewDict() DictValue {
	e := map[string]KeyValuePair{}
	o := []string{}
	return DictValue{entries: &e, order: &o}
}

func (d DictValue) Kind() Kind { return KindDict }

func (d DictValue) Copy() Value {
	nd := NewDict()
	for _, k := range *d.order {
		kv := (*d.entries)[k]
		(*nd.entries)[k] = KeyValuePair{KeyVal: kv.KeyVal.Copy(), Val: kv.Val.Copy()}
		*nd.order = append(*nd.order, k)
	}
	return nd
}

func (d DictValue) DisplayString() string {
	s := "{"
	for i, k := range *d.order {
		if i > 0 {
			s += ", "
		}
		s += (*d.entries)[k].DisplayString()
	}
	return s + "}"
}
func (d DictValue) EscapedString() string {
	s := "{"
	for i, k := range *d.order {
		if i > 0 {
			s += ", "
		}
		s += (*d.entries)[k].EscapedString()
	}
	return s + "}"
}
func (d DictValue) Bool() bool { return len(*d.order) > 0 }
func (d DictValue) Size() int  { return len(*d.order) }

// GetByKey looks an entry's value up by the key's escaped string form, the
// path ITER_GET takes for a String key in place of an integer index
// (spec.md §4.1).
func (d DictValue) GetByKey(key string) (Value, bool) {
	kv, ok := (*d.entries)[key]
	if !ok {
		return nil, false
	}
	return kv.Val, true
}

func (d DictValue) Get(i int) (Value, bool) {
	if i < 0 || i >= len(*d.order) {
		return nil, false
	}
	return (*d.entries)[(*d.order)[i]], true
}

func (d DictValue) SetByKey(key string, kv KeyValuePair) {
	if _, exists := (*d.entries)[key]; !exists {
		*d.order = append(*d.order, key)
	}
	(*d.entries)[key] = kv
}

func (d DictValue) Set(i int, v Value) bool {
	if i < 0 || i >= len(*d.order) {
		return false
	}
	kv, ok := v.(KeyValuePair)
	if !ok {
		return false
	}
	(*d.entries)[(*d.order)[i]] = kv
	return true
}

func (d DictValue) Insert(i int, v Value) bool {
	kv, ok := v.(KeyValuePair)
	if !ok {
		return false
	}
	d.SetByKey(kv.KeyVal.EscapedString(), kv)
	return true
}

func (d DictValue) Erase(i int) bool {
	if i < 0 || i >= len(*d.order) {
		return false
	}
	key := (*d.order)[i]
	delete(*d.entries, key)
	*d.order = append((*d.order)[:i], (*d.order)[i+1:]...)
	return true
}

func (d DictValue) EraseKey(key string) bool {
	if _, ok := (*d.entries)[key]; !ok {
		return false
	}
	delete(*d.entries, key)
	for i, k := range *d.order {
		if k == key {
			*d.order = append((*d.order)[:i], (*d.order)[i+1:]...)
			break
		}
	}
	return true
}

func (d DictValue) Append(v Value) {
	kv, ok := v.(KeyValuePair)
	if !ok {
		return
	}
	d.SetByKey(kv.KeyVal.EscapedString(), kv)
}

func (d DictValue) Splice(other Iterable) bool {
	o, ok := other.(DictValue)
	if !ok {
		return false
	}
	for _, k := range *o.order {
		d.SetByKey(k, (*o.entries)[k])
	}
	return true
}

func (d DictValue) UpdateInPlace(other Value) UpdateOutcome {
	o, ok := other.(DictValue)
	if !ok {
		return ReplaceSlot
	}
	ne := map[string]KeyValuePair{}
	no := make([]string, 0, len(*o.order))
	for _, k := range *o.order {
		ne[k] = (*o.entries)[k]
		no = append(no, k)
	}
	*d.entries = ne
	*d.order = no
	return InPlace
}

func (d DictValue) Subpart(begin, end int) (Iterable, bool) {
	if begin < 0 || begin > len(*d.order) || begin > end || end > len(*d.order) {
		return nil, false
	}
	nd := NewDict()
	for _, k := range (*d.order)[begin:end] {
		nd.SetByKey(k, (*d.entries)[k])
	}
	return nd, true
}
