package interp

import "strconv"

// slot is a named occupant inside a scope: a stable ID plus its current
// value. The slot ID never changes across reassignment (spec.md §3.2
// invariant: "A slot's type tag may change on assignment; its slot ID does
// not"), which is what lets a Quote keep resolving correctly.
type slot struct {
	id    ID
	value Value
}

// scope is a named mapping from identifier to slot. Scopes form both a
// stack (the "current scope" chain used for name resolution) and a pool
// keyed by scope ID (SP_SET/SP_DEL look scopes up in it by name).
// This is the Go replacement for the source's shared_ptr<Scope> graph
// (spec.md §9): scopes own slots, values never own scopes, so cycles are
// structurally impossible.
type scope struct {
	id         ID
	name       string
	parent     *scope // enclosing scope at acquire time
	releasable bool
	order      []string // local slot names in insertion order, for release-order/introspection
	slots      map[string]*slot
	cleared    map[string]bool // names dropped by clearLocals, slot ID held for reuse
}

func newScope(id ID, name string, parent *scope, releasable bool) *scope {
	return &scope{
		id:         id,
		name:       name,
		parent:     parent,
		releasable: releasable,
		slots:      map[string]*slot{},
		cleared:    map[string]bool{},
	}
}

// find resolves name in this scope then walks parent chain outward.
func (s *scope) find(name string) (*slot, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sl, ok := cur.slots[name]; ok {
			return sl, true
		}
	}
	return nil, false
}

func (s *scope) add(mint *idMinter, name string, v Value) (*slot, bool) {
	if sl, exists := s.slots[name]; exists {
		// Re-creating a name that a delayed-release pass cleared reuses
		// its slot, keeping the slot ID stable across iterations
		// (spec.md §3.3, §8 "Slot stability").
		if s.cleared[name] {
			delete(s.cleared, name)
			sl.value = v
			return sl, true
		}
		return nil, false
	}
	sl := &slot{id: mint.Mint(TagData), value: v}
	s.slots[name] = sl
	s.order = append(s.order, name)
	return sl, true
}

func (s *scope) remove(name string) bool {
	if _, ok := s.slots[name]; !ok {
		return false
	}
	delete(s.slots, name)
	delete(s.cleared, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// clearLocals drops all local slot values without removing the scope itself
// — used by delayed-release scopes (REPEAT/UNTIL/iteration bodies). The
// (name, slot ID) bindings are kept, marked cleared so the next pass's
// ALLOT reuses them instead of colliding; this is what keeps slot IDs
// stable across iterations (spec.md §3.3 "Lifecycle", §8 "Slot stability").
func (s *scope) clearLocals() {
	for name, sl := range s.slots {
		sl.value = Null
		s.cleared[name] = true
	}
}

// scopeManager is the Scope & memory component (C): scope pool, current
// scope stack, and name/ID-based resolution across ancestor scopes.
type scopeManager struct {
	mint    *idMinter
	pool    map[ID]*scope
	current []*scope // stack; last element is "current"
	root    *scope
}

func newScopeManager(mint *idMinter) *scopeManager {
	m := &scopeManager{mint: mint, pool: map[ID]*scope{}}
	root := newScope(mint.Mint(TagScope), "root", nil, false)
	m.pool[root.id] = root
	m.root = root
	m.current = []*scope{root}
	return m
}

func (m *scopeManager) top() *scope { return m.current[len(m.current)-1] }

// acquire mints a fresh scope named prefix+counter (the counter guarantees
// name uniqueness within the pool, spec.md §3.3) and pushes it current.
func (m *scopeManager) acquire(prefix string, delayedRelease bool) *scope {
	id := m.mint.Mint(TagScope)
	s := newScope(id, prefix+strconv.FormatInt(id.Index, 10), m.top(), true)
	m.pool[s.id] = s
	m.current = append(m.current, s)
	return s
}

// release removes s from the pool and, if it is the current scope, pops it.
// Pinned scopes (the root, mounted extensions) refuse release (spec.md §3.3).
func (m *scopeManager) release(s *scope) {
	if !s.releasable {
		return
	}
	delete(m.pool, s.id)
	for i := len(m.current) - 1; i >= 0; i-- {
		if m.current[i] == s {
			m.current = append(m.current[:i], m.current[i+1:]...)
			return
		}
	}
}

func (m *scopeManager) findByName(name string) (*slot, bool) {
	return m.top().find(name)
}

func (m *scopeManager) findByID(id ID) (Value, bool) {
	for _, s := range m.pool {
		for _, sl := range s.slots {
			if sl.id.Equal(id) {
				return sl.value, true
			}
		}
	}
	return nil, false
}

func (m *scopeManager) updateByID(id ID, v Value) bool {
	for _, s := range m.pool {
		for _, sl := range s.slots {
			if sl.id.Equal(id) {
				sl.value = v
				return true
			}
		}
	}
	return false
}

func (m *scopeManager) add(name string, v Value) (*slot, bool) {
	return m.top().add(m.mint, name, v)
}

func (m *scopeManager) updateByName(name string, v Value) bool {
	sl, ok := m.top().find(name)
	if !ok {
		return false
	}
	sl.value = v
	return true
}

func (m *scopeManager) removeByName(name string) bool {
	return m.top().remove(name)
}

// setCurrentByID pushes the pooled scope with the given ID as current,
// reporting false when no such scope is in the pool.
func (m *scopeManager) setCurrentByID(id ID) bool {
	s, ok := m.pool[id]
	if !ok {
		return false
	}
	m.current = append(m.current, s)
	return true
}

// findScopeByName scans the pool for a scope with the given display name,
// used by SP_SET/SP_DEL's string-keyed lookup (spec.md §3.3).
func (m *scopeManager) findScopeByName(name string) (*scope, bool) {
	for _, s := range m.pool {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

func (m *scopeManager) pushExisting(s *scope) {
	m.current = append(m.current, s)
}

func (m *scopeManager) popCurrent() *scope {
	if len(m.current) <= 1 {
		return nil
	}
	s := m.current[len(m.current)-1]
	m.current = m.current[:len(m.current)-1]
	return s
}

// depth is used by the scope-balance invariant test (spec.md §8).
func (m *scopeManager) depth() int { return len(m.current) }
