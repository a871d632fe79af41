// Package registry is the command directory and dispatcher.
//
// A Registry maps canonical command names to validated descriptors, maps
// aliases to canonical names, and remembers which provider contributed which
// commands so a provider can be removed in one call. Dispatch resolves the
// first token of a command line, checks the caller's permission, parses the
// remaining tokens and runs the handler, turning every handler failure into
// a message for the caller. It never panics because of a handler.
//
// The registry is itself a provider: the built-in "help" and "version"
// commands are registered through the same path as every other command.
package registry
