package interp

// DType is the first-class representation of a type, used by TP_SET/TP_GET
// (spec.md §3.2). For built-ins it names a Kind; for user types it points
// at the CustomType.
type DType struct {
	Name     string
	Built    Kind
	IsCustom bool
	Custom   *CustomType
}

func (d DType) Kind() Kind  { return KindDType }
func (d DType) Copy() Value { return d }
func (d DType) DisplayString() string {
	if d.IsCustom {
		return d.Name
	}
	return d.Built.String()
}
func (d DType) EscapedString() string { return d.DisplayString() }
func (d DType) Bool() bool            { return true }

// CustomType is a user-defined type with single inheritance: a name, an
// optional parent, type-level fields and instance-field templates. Spec.md
// §3.2.
type CustomType struct {
	Name           string
	Parent         *CustomType
	TypeFields     map[string]Value
	InstTemplates  map[string]Value // field name -> default value
	templateOrder  []string
}

func NewCustomType(name string, parent *CustomType) *CustomType {
	return &CustomType{
		Name:          name,
		Parent:        parent,
		TypeFields:    map[string]Value{},
		InstTemplates: map[string]Value{},
	}
}

// BelongsTo walks the parent chain checking each type against target by
// identity or by equal name,
// powering ATMP/DETECT type matching (spec.md §4.5) and TP_GET_SUPER_FIELD.
func (t *CustomType) BelongsTo(target *CustomType) bool {
	for cur := t; cur != nil; cur = cur.Parent {
		if cur == target || cur.Name == target.Name {
			return true
		}
	}
	return false
}

// AllInstTemplates walks the ancestor chain root-first so that every
// ancestor's template appears in a new instance's field map at creation
// (spec.md §3.2 invariant), with the most-derived type's default winning
// ties (TP_ADD_INST_FIELD rejects a duplicate only within one type, so a
// child may redeclare an ancestor's field).
func (t *CustomType) AllInstTemplates() map[string]Value {
	chain := []*CustomType{}
	for cur := t; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	out := map[string]Value{}
	for i := len(chain) - 1; i >= 0; i-- {
		for name, v := range chain[i].InstTemplates {
			out[name] = v.Copy()
		}
	}
	return out
}

func (t *CustomType) AsDType() DType {
	return DType{Name: t.Name, IsCustom: true, Custom: t}
}

func (t *CustomType) Kind() Kind            { return KindCustomType }
func (t *CustomType) Copy() Value           { return t } // type descriptors are shared, not copied
func (t *CustomType) DisplayString() string { return t.Name }
func (t *CustomType) EscapedString() string { return t.Name }
func (t *CustomType) Bool() bool            { return true }

// CustomInst is an instance of a CustomType; field lookup walks the parent
// chain to find the nearest defining type (spec.md §4.4 TP_GET_FIELD).
type CustomInst struct {
	ID     ID
	Type   *CustomType
	Fields map[string]Value
}

func NewCustomInst(mint *idMinter, t *CustomType) *CustomInst {
	return &CustomInst{ID: mint.Mint(TagInst), Type: t, Fields: t.AllInstTemplates()}
}

func (c *CustomInst) Kind() Kind { return KindCustomInst }
func (c *CustomInst) Copy() Value {
	out := map[string]Value{}
	for k, v := range c.Fields {
		out[k] = v.Copy()
	}
	return &CustomInst{ID: c.ID, Type: c.Type, Fields: out}
}
func (c *CustomInst) DisplayString() string { return c.Type.Name + "{...}" }
func (c *CustomInst) EscapedString() string { return c.DisplayString() }
func (c *CustomInst) Bool() bool            { return true }

// Derive re-classifies inst in place to childT, merging childT's template
// atop inst's existing fields (TP_DERIVE, spec.md §4.4).
func (c *CustomInst) Derive(childT *CustomType) {
	c.Type = childT
	for name, def := range childT.InstTemplates {
		if _, exists := c.Fields[name]; !exists {
			c.Fields[name] = def.Copy()
		}
	}
}

// GetField resolves field in c.Fields. All ancestor fields already live in
// c.Fields per the creation invariant, so no parent walk is needed: this
// simply checks presence and returns it.
func (c *CustomInst) GetField(field string) (Value, bool) {
	v, ok := c.Fields[field]
	return v, ok
}
