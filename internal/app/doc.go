// Package app wires the command registry to its collaborators: the
// permission store, the translator, the compiled-in modules and the host
// that feeds it command lines. It is decoupled from any specific entrypoint
// like a CLI.
package app
