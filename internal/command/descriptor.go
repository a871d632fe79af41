package command

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/cmdgrid/internal/permission"
)

var (
	callerType = reflect.TypeOf((*Caller)(nil)).Elem()
	argsType   = reflect.TypeOf((*Args)(nil))
	boolType   = reflect.TypeOf(true)
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// Descriptor is a validated, invocable command.
type Descriptor struct {
	owner        any
	name         string
	aliases      []string
	usage        string
	description  string
	permission   *permission.Permission
	attachParent bool
	invoke       HandlerFunc
}

// NewDescriptor validates handler and wraps it together with its metadata.
// perm is the already-resolved permission, or nil for an open command.
func NewDescriptor(owner any, meta Meta, handler any, perm *permission.Permission) (*Descriptor, error) {
	name := strings.ToLower(meta.Name)
	if name == "" {
		return nil, &ShapeError{Command: meta.Name, Reason: "name must not be empty"}
	}

	invoke, err := adapt(handler)
	if err != nil {
		return nil, &ShapeError{Command: name, Reason: err.Error()}
	}

	aliases := make([]string, len(meta.Aliases))
	copy(aliases, meta.Aliases)

	return &Descriptor{
		owner:        owner,
		name:         name,
		aliases:      aliases,
		usage:        meta.Usage,
		description:  meta.Description,
		permission:   perm,
		attachParent: meta.Permission != nil && meta.Permission.AttachParent,
		invoke:       invoke,
	}, nil
}

// adapt checks the handler's signature and turns it into a HandlerFunc.
func adapt(handler any) (HandlerFunc, error) {
	if handler == nil {
		return nil, errors.New("handler is nil")
	}

	t := reflect.TypeOf(handler)
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("handler must be a function, got %s", t)
	}
	if reflect.ValueOf(handler).IsNil() {
		return nil, errors.New("handler is nil")
	}
	if t.IsVariadic() || t.NumIn() != 2 {
		return nil, fmt.Errorf("handler must take exactly (command.Caller, *command.Args), got %s", t)
	}
	if t.In(0) != callerType || t.In(1) != argsType {
		return nil, fmt.Errorf("handler must take exactly (command.Caller, *command.Args), got %s", t)
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if out := t.Out(0); out != boolType && out != errorType {
			return nil, fmt.Errorf("handler may only return bool, error or (bool, error), got %s", t)
		}
	case 2:
		if t.Out(0) != boolType || t.Out(1) != errorType {
			return nil, fmt.Errorf("handler may only return bool, error or (bool, error), got %s", t)
		}
	default:
		return nil, fmt.Errorf("handler may only return bool, error or (bool, error), got %s", t)
	}

	switch fn := handler.(type) {
	case HandlerFunc:
		return fn, nil
	case func(Caller, *Args) (bool, error):
		return fn, nil
	case func(Caller, *Args) bool:
		return func(c Caller, a *Args) (bool, error) { return fn(c, a), nil }, nil
	case func(Caller, *Args) error:
		return func(c Caller, a *Args) (bool, error) { return true, fn(c, a) }, nil
	case func(Caller, *Args):
		return func(c Caller, a *Args) (bool, error) { fn(c, a); return true, nil }, nil
	}

	// Named func types with an accepted shape end up here.
	v := reflect.ValueOf(handler)
	return func(c Caller, a *Args) (bool, error) {
		out := v.Call([]reflect.Value{reflect.ValueOf(&c).Elem(), reflect.ValueOf(a)})
		handled := true
		var err error
		for _, o := range out {
			switch o.Type() {
			case boolType:
				handled = o.Bool()
			case errorType:
				if !o.IsNil() {
					err = o.Interface().(error)
				}
			}
		}
		return handled, err
	}, nil
}

// Execute runs the handler. A domain failure comes back as *Error exactly as
// raised; any other error or panic comes back as *InternalError.
func (d *Descriptor) Execute(caller Caller, a *Args) (handled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = &PanicError{Value: r}
			}
			handled, err = true, d.classify(cause)
		}
	}()

	handled, err = d.invoke(caller, a)
	if err != nil {
		return true, d.classify(err)
	}
	return handled, nil
}

func (d *Descriptor) classify(err error) error {
	var domain *Error
	if errors.As(err, &domain) {
		return domain
	}
	return &InternalError{Command: d.name, Cause: err}
}

// Name returns the canonical, lower-cased name.
func (d *Descriptor) Name() string { return d.name }

// Aliases returns a copy of the declared aliases.
func (d *Descriptor) Aliases() []string {
	out := make([]string, len(d.aliases))
	copy(out, d.aliases)
	return out
}

// Usage returns the usage line shown by help.
func (d *Descriptor) Usage() string { return d.usage }

// Description returns the description shown by help.
func (d *Descriptor) Description() string { return d.description }

// Permission returns the guarding permission, or nil.
func (d *Descriptor) Permission() *permission.Permission { return d.permission }

// AttachParent reports whether the permission was attached under the
// registry's parent permission.
func (d *Descriptor) AttachParent() bool { return d.attachParent }

// Owner returns the provider this command was registered from.
func (d *Descriptor) Owner() any { return d.owner }
