// Package command holds the types shared between command providers and the
// registry: the caller contract, the argument bundle handed to handlers, the
// declarative metadata a provider publishes, and the Descriptor that wraps a
// validated handler.
//
// Handlers are plain Go functions (usually methods on a provider) with the
// shape
//
//	func(command.Caller, *command.Args)
//	func(command.Caller, *command.Args) bool
//	func(command.Caller, *command.Args) error
//	func(command.Caller, *command.Args) (bool, error)
//
// The shape is checked once, when the Descriptor is built. A returned bool of
// false tells the host it may fall back to other handling; every other
// outcome counts as handled.
package command

import (
	"github.com/vk/cmdgrid/internal/args"
	"github.com/vk/cmdgrid/internal/permission"
)

// Caller is whoever issued the command line.
type Caller interface {
	permission.Subject
	Send(message string)
}

// Directory is the read side of a registry, as seen from inside a handler.
type Directory interface {
	Resolve(label string) *Descriptor
	Commands() []*Descriptor
	Allowed(caller Caller, d *Descriptor) bool
}

// Args is the per-dispatch argument bundle. It is created by the registry,
// never mutated, and dropped once the handler returns.
type Args struct {
	*args.Args

	// BaseLabel is the label the host used for the base command.
	BaseLabel string
	// Command is the descriptor being executed.
	Command *Descriptor
	// Directory is the registry that dispatched this command.
	Directory Directory
}

// PermissionSpec asks the registry to guard a command with a permission.
// An empty Name lets the registry derive one from its permission base.
type PermissionSpec struct {
	Name         string
	Default      permission.Default
	AttachParent bool
}

// Meta is the declarative description of one command.
type Meta struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Permission  *PermissionSpec
}

// Declaration pairs metadata with the handler it describes. Handler is
// validated by NewDescriptor.
type Declaration struct {
	Meta    Meta
	Handler any
	// Ident is the handler's own identifier, used when Meta.Name is empty.
	Ident string
}

// Provider contributes commands to a registry. Declare is called once per
// registration.
type Provider interface {
	Declare() []Declaration
}

// Owned is implemented by providers that register on behalf of another
// value. The registry keys bulk unregistration on Owner().
type Owned interface {
	Owner() any
}

// HandlerFunc is the canonical handler signature.
type HandlerFunc func(Caller, *Args) (bool, error)
