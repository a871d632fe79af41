package registry

import (
	"errors"

	"github.com/vk/cmdgrid/internal/args"
	"github.com/vk/cmdgrid/internal/command"
)

// Status tags the result of a dispatch.
type Status int

const (
	// StatusHandled means the handler ran to completion.
	StatusHandled Status = iota
	// StatusNotFound means no command or alias matched the label.
	StatusNotFound
	// StatusPermissionDenied means the caller lacks the command's permission.
	StatusPermissionDenied
	// StatusFailed means the handler rejected the request with a domain failure.
	StatusFailed
	// StatusInternal means the handler failed unexpectedly.
	StatusInternal
)

func (s Status) String() string {
	switch s {
	case StatusHandled:
		return "handled"
	case StatusNotFound:
		return "not_found"
	case StatusPermissionDenied:
		return "permission_denied"
	case StatusFailed:
		return "failed"
	case StatusInternal:
		return "internal_error"
	}
	return "unknown"
}

// Outcome describes what happened to one command line.
type Outcome struct {
	Status Status
	// Handled is what the host should be told; it is only false when a
	// handler explicitly returned false.
	Handled bool
	// Command is the canonical name that was resolved, if any.
	Command string
	// Err is the domain failure or internal error, if any.
	Err error
}

// Handle is the host entry point: it dispatches and reports whether the
// command line was handled.
func (r *Registry) Handle(caller command.Caller, label string, tokens []string) bool {
	return r.Dispatch(caller, label, tokens).Handled
}

// Dispatch runs one command line. label is the base label the host used;
// tokens[0] names the command. An empty tokens runs the default command.
// caller must not be nil.
func (r *Registry) Dispatch(caller command.Caller, label string, tokens []string) Outcome {
	if len(tokens) == 0 {
		tokens = []string{r.defaultName()}
	}

	d := r.Resolve(tokens[0])
	if d == nil {
		r.logger.Debug("Command not found.", "label", tokens[0], "caller", caller.ID())
		caller.Send(r.Translate("command_notfound", "Command not found!"))
		return Outcome{Status: StatusNotFound, Handled: true}
	}

	if !r.Allowed(caller, d) {
		r.logger.Debug("Permission denied.", "command", d.Name(), "caller", caller.ID())
		caller.Send(r.Translate("command_permdenied", "Permission denied!"))
		return Outcome{Status: StatusPermissionDenied, Handled: true, Command: d.Name()}
	}

	parsed, err := args.Parse(tokens)
	if err != nil {
		// tokens is never empty here.
		panic(err)
	}
	bundle := &command.Args{
		Args:      parsed,
		BaseLabel: label,
		Command:   d,
		Directory: r,
	}

	handled, err := d.Execute(caller, bundle)
	if err == nil {
		return Outcome{Status: StatusHandled, Handled: handled, Command: d.Name()}
	}

	var domain *command.Error
	if errors.As(err, &domain) {
		caller.Send(domain.Message)
		return Outcome{Status: StatusFailed, Handled: true, Command: d.Name(), Err: err}
	}

	caller.Send(r.Translate("command_internalerror", "&4An internal error occurred!"))
	r.logger.Error("Command failed with an internal error.", "command", d.Name(), "caller", caller.ID(), "error", err)
	return Outcome{Status: StatusInternal, Handled: true, Command: d.Name(), Err: err}
}
