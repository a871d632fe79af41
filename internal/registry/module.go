package registry

import "context"

// Module is a compiled-in bundle of commands. Register is called once at
// startup; ctx carries the application logger.
type Module interface {
	Register(ctx context.Context, r *Registry) error
}
