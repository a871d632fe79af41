package manifest

import (
	"reflect"

	"github.com/vk/cmdgrid/internal/command"
)

// Bound is a command.Provider whose handlers are methods of another value.
// It reports that value as its owner, so the original can be passed to
// Registry.UnregisterProvider.
type Bound struct {
	owner any
	decls []command.Declaration
}

// Bind looks every definition's method up on provider. A method that does
// not exist yields a declaration with a nil handler, which the registry
// rejects as a shape error.
func Bind(provider any, defs []Definition) *Bound {
	v := reflect.ValueOf(provider)

	decls := make([]command.Declaration, 0, len(defs))
	for _, def := range defs {
		decl := command.Declaration{Meta: def.Meta, Ident: def.Method}
		if v.IsValid() {
			if m := v.MethodByName(def.Method); m.IsValid() {
				decl.Handler = m.Interface()
			}
		}
		decls = append(decls, decl)
	}
	return &Bound{owner: provider, decls: decls}
}

// Owner implements command.Owned.
func (b *Bound) Owner() any { return b.owner }

// Declare implements command.Provider.
func (b *Bound) Declare() []command.Declaration {
	out := make([]command.Declaration, len(b.decls))
	copy(out, b.decls)
	return out
}
