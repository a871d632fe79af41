package command

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/cmdgrid/internal/args"
	"github.com/vk/cmdgrid/internal/permission"
)

type stubCaller struct {
	msgs []string
}

func (s *stubCaller) ID() string          { return "stub" }
func (s *stubCaller) Operator() bool      { return false }
func (s *stubCaller) Send(message string) { s.msgs = append(s.msgs, message) }

type provider struct {
	calls int
}

func (p *provider) Plain(c Caller, a *Args)             { p.calls++ }
func (p *provider) Decline(c Caller, a *Args) bool      { p.calls++; return false }
func (p *provider) Fails(c Caller, a *Args) error       { return errors.New("disk on fire") }
func (p *provider) Rejects(c Caller, a *Args) error     { return Errorf("bad value %q", a.String(0, "")) }
func (p *provider) Both(c Caller, a *Args) (bool, error) { return false, nil }
func (p *provider) Wrong(c Caller) error                { return nil }
func (p *provider) WrongArgs(c Caller, a *args.Args)    {}
func (p *provider) Extra(c Caller, a *Args) (int, error) { return 0, nil }

type namedHandler func(Caller, *Args) bool

func newArgs(tokens ...string) *Args {
	return &Args{Args: args.MustParse(tokens...)}
}

func TestNewDescriptor_AcceptedShapes(t *testing.T) {
	p := &provider{}
	handlers := map[string]any{
		"plain":   p.Plain,
		"decline": p.Decline,
		"fails":   p.Fails,
		"both":    p.Both,
		"func":    HandlerFunc(func(Caller, *Args) (bool, error) { return true, nil }),
		"named":   namedHandler(func(Caller, *Args) bool { return false }),
	}
	for name, h := range handlers {
		d, err := NewDescriptor(p, Meta{Name: name}, h, nil)
		require.NoError(t, err, name)
		assert.Equal(t, name, d.Name())
	}
}

func TestNewDescriptor_RejectsWrongShapes(t *testing.T) {
	p := &provider{}
	handlers := map[string]any{
		"nil":      nil,
		"nilfunc":  (func(Caller, *Args))(nil),
		"notfunc":  42,
		"arity":    p.Wrong,
		"argtype":  p.WrongArgs,
		"results":  p.Extra,
		"variadic": func(c Caller, a ...*Args) {},
		"swapped":  func(a *Args, c Caller) {},
	}
	for name, h := range handlers {
		d, err := NewDescriptor(p, Meta{Name: name}, h, nil)
		require.Error(t, err, name)
		assert.Nil(t, d)

		var shape *ShapeError
		require.True(t, errors.As(err, &shape), name)
		assert.Equal(t, name, shape.Command)
	}
}

func TestNewDescriptor_EmptyName(t *testing.T) {
	_, err := NewDescriptor(nil, Meta{}, func(Caller, *Args) {}, nil)
	var shape *ShapeError
	require.ErrorAs(t, err, &shape)
}

func TestNewDescriptor_Metadata(t *testing.T) {
	perm := &permission.Permission{Name: "demo.add"}
	aliases := []string{"a", "plus"}
	d, err := NewDescriptor("owner", Meta{
		Name:        "ADD",
		Aliases:     aliases,
		Usage:       "-x <n>",
		Description: "Adds numbers",
		Permission:  &PermissionSpec{AttachParent: true},
	}, func(Caller, *Args) {}, perm)
	require.NoError(t, err)

	assert.Equal(t, "add", d.Name())
	assert.Equal(t, []string{"a", "plus"}, d.Aliases())
	assert.Equal(t, "-x <n>", d.Usage())
	assert.Equal(t, "Adds numbers", d.Description())
	assert.Same(t, perm, d.Permission())
	assert.True(t, d.AttachParent())
	assert.Equal(t, "owner", d.Owner())

	aliases[0] = "mutated"
	assert.Equal(t, "a", d.Aliases()[0])
}

func TestExecute_Results(t *testing.T) {
	p := &provider{}
	caller := &stubCaller{}

	plain, err := NewDescriptor(p, Meta{Name: "plain"}, p.Plain, nil)
	require.NoError(t, err)
	handled, err := plain.Execute(caller, newArgs("plain"))
	require.NoError(t, err)
	assert.True(t, handled)

	decline, err := NewDescriptor(p, Meta{Name: "decline"}, p.Decline, nil)
	require.NoError(t, err)
	handled, err = decline.Execute(caller, newArgs("decline"))
	require.NoError(t, err)
	assert.False(t, handled)

	named, err := NewDescriptor(p, Meta{Name: "named"}, namedHandler(func(Caller, *Args) bool { return false }), nil)
	require.NoError(t, err)
	handled, err = named.Execute(caller, newArgs("named"))
	require.NoError(t, err)
	assert.False(t, handled)

	assert.Equal(t, 2, p.calls)
}

func TestExecute_DomainFailurePropagatesUnchanged(t *testing.T) {
	p := &provider{}
	d, err := NewDescriptor(p, Meta{Name: "rejects"}, p.Rejects, nil)
	require.NoError(t, err)

	_, err = d.Execute(&stubCaller{}, newArgs("rejects", "x"))
	var domain *Error
	require.ErrorAs(t, err, &domain)
	assert.Equal(t, `bad value "x"`, domain.Message)
}

func TestExecute_WrappedDomainFailureIsUnwrapped(t *testing.T) {
	inner := Errorf("nope")
	d, err := NewDescriptor(nil, Meta{Name: "w"}, func(Caller, *Args) error {
		return fmt.Errorf("context: %w", inner)
	}, nil)
	require.NoError(t, err)

	_, err = d.Execute(&stubCaller{}, newArgs("w"))
	assert.Same(t, inner, err)
}

func TestExecute_InternalFaultIsWrapped(t *testing.T) {
	p := &provider{}
	d, err := NewDescriptor(p, Meta{Name: "fails"}, p.Fails, nil)
	require.NoError(t, err)

	handled, err := d.Execute(&stubCaller{}, newArgs("fails"))
	assert.True(t, handled)

	var internal *InternalError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, "fails", internal.Command)
	assert.EqualError(t, internal.Cause, "disk on fire")
}

func TestExecute_PanicsAreRecovered(t *testing.T) {
	boom, err := NewDescriptor(nil, Meta{Name: "boom"}, func(Caller, *Args) { panic("boom") }, nil)
	require.NoError(t, err)

	_, err = boom.Execute(&stubCaller{}, newArgs("boom"))
	var internal *InternalError
	require.ErrorAs(t, err, &internal)
	var p *PanicError
	require.ErrorAs(t, err, &p)
	assert.Equal(t, "boom", p.Value)

	domain, err := NewDescriptor(nil, Meta{Name: "reject"}, func(Caller, *Args) { panic(Errorf("go away")) }, nil)
	require.NoError(t, err)
	_, err = domain.Execute(&stubCaller{}, newArgs("reject"))
	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "go away", de.Message)
}

func TestExecute_NilCallerIsPassedThrough(t *testing.T) {
	var got Caller = &stubCaller{}
	d, err := NewDescriptor(nil, Meta{Name: "n"}, namedHandler(func(c Caller, a *Args) bool {
		got = c
		return true
	}), nil)
	require.NoError(t, err)

	_, err = d.Execute(nil, newArgs("n"))
	require.NoError(t, err)
	assert.Nil(t, got)
}
