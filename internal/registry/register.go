package registry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/permission"
)

// ErrNilProvider is returned when Register or UnregisterProvider get nil.
var ErrNilProvider = errors.New("registry: provider must not be nil")

// funcs owns commands added one by one through Add.
type funcs struct{}

// Register adds every command declared by provider. A declaration with an
// invalid handler is logged and skipped; the others are still registered.
// The returned error is only about the provider itself.
func (r *Registry) Register(provider command.Provider) error {
	if provider == nil || isNilPointer(provider) {
		return ErrNilProvider
	}
	owner := ownerOf(provider)
	if !isComparable(owner) {
		return fmt.Errorf("registry: provider of type %T cannot be used as a map key", owner)
	}

	descriptors, _ := r.build(owner, provider.Declare())

	r.mu.Lock()
	defer r.mu.Unlock()

	names, ok := r.owners[owner]
	if !ok {
		names = make(map[string]struct{})
		r.owners[owner] = names
	}
	for _, d := range descriptors {
		r.insertLocked(d)
		names[d.Name()] = struct{}{}
	}

	r.logger.Debug("Provider registered.", "provider", fmt.Sprintf("%T", owner), "commands", len(descriptors))
	return nil
}

// Add registers a single handler under the registry's own function group.
func (r *Registry) Add(meta command.Meta, fn command.HandlerFunc) error {
	if fn == nil {
		return &command.ShapeError{Command: meta.Name, Reason: "handler is nil"}
	}
	descriptors, errs := r.build(funcs{}, []command.Declaration{{Meta: meta, Handler: fn}})
	if len(errs) > 0 {
		return errs[0]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names, ok := r.owners[funcs{}]
	if !ok {
		names = make(map[string]struct{})
		r.owners[funcs{}] = names
	}
	d := descriptors[0]
	r.insertLocked(d)
	names[d.Name()] = struct{}{}
	return nil
}

// build resolves names and permissions and validates every handler.
func (r *Registry) build(owner any, decls []command.Declaration) ([]*command.Descriptor, []error) {
	out := make([]*command.Descriptor, 0, len(decls))
	var errs []error
	for _, decl := range decls {
		meta := decl.Meta
		if meta.Name == "" {
			meta.Name = decl.Ident
		}
		meta.Name = strings.ToLower(meta.Name)

		d, err := command.NewDescriptor(owner, meta, decl.Handler, r.permissionFor(meta.Name, meta.Permission))
		if err != nil {
			r.logger.Error("Skipping command with invalid handler.", "command", meta.Name, "error", err)
			errs = append(errs, err)
			continue
		}
		out = append(out, d)
	}
	return out, errs
}

// permissionFor creates the permission a command asked for, if any.
func (r *Registry) permissionFor(name string, spec *command.PermissionSpec) *permission.Permission {
	if spec == nil {
		return nil
	}
	permName := spec.Name
	if permName == "" && r.permissionBase != "" {
		permName = r.permissionBase + name
	}
	if permName == "" {
		return nil
	}

	p := r.store.Create(permName, spec.Default)
	if r.parent != nil && spec.AttachParent {
		r.store.DeclareParent(p, r.parent, true)
	}
	return p
}

// insertLocked stores d and its aliases. Later registrations win; every
// overwrite is logged.
func (r *Registry) insertLocked(d *command.Descriptor) {
	name := d.Name()

	if prev, ok := r.commands[name]; ok {
		r.logger.Warn("Command conflict: overwriting existing command.", "command", name,
			"previous_provider", fmt.Sprintf("%T", prev.Owner()), "new_provider", fmt.Sprintf("%T", d.Owner()))
		if prevOwner := prev.Owner(); isComparable(prevOwner) {
			delete(r.owners[prevOwner], name)
		}
		r.pruneAliasesLocked(name)
	}
	if target, ok := r.aliases[name]; ok && target != name {
		r.logger.Warn("Command name is shadowed by an alias of another command.", "command", name, "alias_target", target)
	}

	r.commands[name] = d

	for _, alias := range d.Aliases() {
		alias = strings.ToLower(alias)
		if alias == "" {
			continue
		}
		if target, ok := r.aliases[alias]; ok && target != name {
			r.logger.Warn("Alias conflict: rebinding alias.", "alias", alias, "previous_command", target, "new_command", name)
		}
		if _, ok := r.commands[alias]; ok && alias != name {
			r.logger.Warn("Alias shadows the canonical name of another command.", "alias", alias, "command", name)
		}
		r.aliases[alias] = name
	}
}

// Unregister removes a command and every alias pointing at it. Unknown
// names are ignored.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(strings.ToLower(name))
}

// UnregisterProvider removes every command provider contributed.
func (r *Registry) UnregisterProvider(provider any) error {
	if provider == nil || isNilPointer(provider) {
		return ErrNilProvider
	}
	owner := ownerOf(provider)
	if !isComparable(owner) {
		return fmt.Errorf("registry: provider of type %T cannot be used as a map key", owner)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names := r.owners[owner]
	for name := range names {
		r.removeLocked(name)
	}
	delete(r.owners, owner)

	r.logger.Debug("Provider unregistered.", "provider", fmt.Sprintf("%T", owner), "commands", len(names))
	return nil
}

// Clear drops every command, alias and provider record, built-ins included.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = make(map[string]*command.Descriptor)
	r.aliases = make(map[string]string)
	r.owners = make(map[any]map[string]struct{})
}

func (r *Registry) removeLocked(name string) {
	d, ok := r.commands[name]
	if !ok {
		return
	}
	delete(r.commands, name)
	r.pruneAliasesLocked(name)
	if owner := d.Owner(); isComparable(owner) {
		delete(r.owners[owner], name)
	}
}

func (r *Registry) pruneAliasesLocked(name string) {
	for alias, target := range r.aliases {
		if target == name {
			delete(r.aliases, alias)
		}
	}
}

func ownerOf(provider any) any {
	if o, ok := provider.(command.Owned); ok {
		if owner := o.Owner(); owner != nil {
			return owner
		}
	}
	return provider
}

func isComparable(v any) bool {
	return v != nil && reflect.TypeOf(v).Comparable()
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
