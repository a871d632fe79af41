// Package echo provides a couple of chat utilities declared with a static
// command table.
package echo

import (
	"context"
	"strings"

	"github.com/vk/cmdgrid/internal/chat"
	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/ctxlog"
	"github.com/vk/cmdgrid/internal/permission"
	"github.com/vk/cmdgrid/internal/registry"
)

// maxRepeat caps -repeat so a single line cannot flood the caller.
const maxRepeat = 10

// Module implements the registry.Module interface for this package.
type Module struct {
	echo *Echo
}

// Register registers the echo commands.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	m.echo = &Echo{}
	if err := r.Register(m.echo); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Echo commands registered.", "module", "echo")
	return nil
}

// Echo is the command provider.
type Echo struct{}

// Declare implements command.Provider.
func (e *Echo) Declare() []command.Declaration {
	return []command.Declaration{
		{
			Ident:   "Echo",
			Handler: e.Echo,
			Meta: command.Meta{
				Name:        "echo",
				Aliases:     []string{"say"},
				Usage:       "<text>... [-repeat n]",
				Description: "Repeats the text back, '&' color codes included",
				Permission:  &command.PermissionSpec{Default: permission.DefaultTrue},
			},
		},
		{
			Ident:   "Ping",
			Handler: e.Ping,
			Meta: command.Meta{
				Name:        "ping",
				Usage:       "[silent]",
				Description: "Answers with pong",
			},
		},
	}
}

func (e *Echo) Echo(caller command.Caller, a *command.Args) error {
	words := a.Flags()
	if len(words) == 0 {
		return command.Errorf("§cNothing to echo.")
	}

	text := chat.TranslateAlternateCodes(chat.AltMarker, strings.Join(words, " "))
	n := a.IntParam("repeat", 1)
	if n < 1 {
		n = 1
	}
	if n > maxRepeat {
		n = maxRepeat
	}
	for i := 0; i < n; i++ {
		caller.Send(text)
	}
	return nil
}

// Ping reports the command as unhandled when asked to stay silent.
func (e *Echo) Ping(caller command.Caller, a *command.Args) bool {
	if a.HasFlag("silent") {
		return false
	}
	caller.Send("§apong")
	return true
}
