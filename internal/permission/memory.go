package permission

import (
	"sync"
)

type parentLink struct {
	parent  string
	inherit bool
}

// Memory is an in-process Store. Explicit grants win, then parent links,
// then the permission's default policy.
type Memory struct {
	mu      sync.RWMutex
	perms   map[string]*Permission
	parents map[string][]parentLink
	grants  map[string]map[string]bool
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		perms:   make(map[string]*Permission),
		parents: make(map[string][]parentLink),
		grants:  make(map[string]map[string]bool),
	}
}

// Create implements Store.
func (m *Memory) Create(name string, def Default) *Permission {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.perms[name]; ok {
		return p
	}
	p := &Permission{Name: name, Default: def}
	m.perms[name] = p
	return p
}

// Lookup returns the permission registered under name.
func (m *Memory) Lookup(name string) (*Permission, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.perms[name]
	return p, ok
}

// DeclareParent implements Store. Declaring the same link twice updates it.
func (m *Memory) DeclareParent(child, parent *Permission, inherit bool) {
	if child == nil || parent == nil || child.Name == parent.Name {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	links := m.parents[child.Name]
	for i, l := range links {
		if l.parent == parent.Name {
			links[i].inherit = inherit
			return
		}
	}
	m.parents[child.Name] = append(links, parentLink{parent: parent.Name, inherit: inherit})
}

// Grant sets an explicit value of name for the subject id.
func (m *Memory) Grant(id, name string, value bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.grants[id]
	if !ok {
		g = make(map[string]bool)
		m.grants[id] = g
	}
	g[name] = value
}

// Revoke removes an explicit grant, falling back to inheritance and defaults.
func (m *Memory) Revoke(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.grants[id], name)
}

// Has implements Store.
func (m *Memory) Has(subject Subject, p *Permission) bool {
	if p == nil {
		return true
	}
	if subject == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolve(subject, p.Name, p.Default, map[string]bool{})
}

func (m *Memory) resolve(subject Subject, name string, def Default, seen map[string]bool) bool {
	if seen[name] {
		return false
	}
	seen[name] = true

	if v, ok := m.grants[subject.ID()][name]; ok {
		return v
	}
	for _, l := range m.parents[name] {
		parentDef := DefaultOp
		if pp, ok := m.perms[l.parent]; ok {
			parentDef = pp.Default
		}
		if m.resolve(subject, l.parent, parentDef, seen) {
			return l.inherit
		}
	}
	if p, ok := m.perms[name]; ok {
		def = p.Default
	}
	return def.Allows(subject.Operator())
}
