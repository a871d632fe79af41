package permission

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subject struct {
	id string
	op bool
}

func (s subject) ID() string     { return s.id }
func (s subject) Operator() bool { return s.op }

func TestParseDefault(t *testing.T) {
	cases := map[string]Default{
		"op":     DefaultOp,
		"":       DefaultOp,
		"TRUE":   DefaultTrue,
		"false":  DefaultFalse,
		"not_op": DefaultNotOp,
	}
	for in, want := range cases {
		got, err := ParseDefault(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDefault("sometimes")
	require.Error(t, err)
}

func TestDefaultRoundTripsThroughString(t *testing.T) {
	for _, d := range []Default{DefaultOp, DefaultTrue, DefaultFalse, DefaultNotOp} {
		got, err := ParseDefault(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}

func TestMemory_CreateIsIdempotent(t *testing.T) {
	m := NewMemory()
	a := m.Create("demo.add", DefaultTrue)
	b := m.Create("demo.add", DefaultFalse)

	assert.Same(t, a, b)
	assert.Equal(t, DefaultTrue, b.Default)

	got, ok := m.Lookup("demo.add")
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestMemory_DefaultPolicies(t *testing.T) {
	m := NewMemory()
	op := subject{id: "admin", op: true}
	user := subject{id: "user"}

	opOnly := m.Create("op", DefaultOp)
	everyone := m.Create("all", DefaultTrue)
	none := m.Create("none", DefaultFalse)
	notOp := m.Create("notop", DefaultNotOp)

	assert.True(t, m.Has(op, opOnly))
	assert.False(t, m.Has(user, opOnly))
	assert.True(t, m.Has(user, everyone))
	assert.False(t, m.Has(op, none))
	assert.False(t, m.Has(op, notOp))
	assert.True(t, m.Has(user, notOp))
}

func TestMemory_NilPermissionIsAlwaysHeld(t *testing.T) {
	m := NewMemory()
	assert.True(t, m.Has(subject{id: "x"}, nil))
	assert.False(t, m.Has(nil, m.Create("p", DefaultTrue)))
}

func TestMemory_GrantsOverrideDefaults(t *testing.T) {
	m := NewMemory()
	p := m.Create("demo.remove", DefaultOp)
	user := subject{id: "user"}

	m.Grant("user", "demo.remove", true)
	assert.True(t, m.Has(user, p))

	m.Grant("user", "demo.remove", false)
	assert.False(t, m.Has(user, p))

	m.Revoke("user", "demo.remove")
	assert.False(t, m.Has(user, p))
}

func TestMemory_ParentInheritance(t *testing.T) {
	m := NewMemory()
	parent := m.Create("demo.*", DefaultFalse)
	child := m.Create("demo.add", DefaultFalse)
	denied := m.Create("demo.secret", DefaultFalse)
	m.DeclareParent(child, parent, true)
	m.DeclareParent(denied, parent, false)

	user := subject{id: "user"}
	assert.False(t, m.Has(user, child))

	m.Grant("user", "demo.*", true)
	assert.True(t, m.Has(user, child))
	assert.False(t, m.Has(user, denied))

	// Explicit grant on the child still wins over the parent link.
	m.Grant("user", "demo.secret", true)
	assert.True(t, m.Has(user, denied))
}

func TestMemory_ParentCycleTerminates(t *testing.T) {
	m := NewMemory()
	a := m.Create("a", DefaultFalse)
	b := m.Create("b", DefaultFalse)
	m.DeclareParent(a, b, true)
	m.DeclareParent(b, a, true)
	m.DeclareParent(a, a, true)

	assert.False(t, m.Has(subject{id: "u"}, a))
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory()
	p := m.Create("p", DefaultTrue)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Grant("u", "p", true)
		}()
		go func() {
			defer wg.Done()
			_ = m.Has(subject{id: "u"}, p)
		}()
	}
	wg.Wait()
	assert.True(t, m.Has(subject{id: "u"}, p))
}
