package registry

import (
	"strings"

	"github.com/vk/cmdgrid/internal/command"
)

// Declare implements command.Provider with the built-in commands.
func (r *Registry) Declare() []command.Declaration {
	return []command.Declaration{
		{
			Ident:   "helpCommand",
			Handler: r.helpCommand,
			Meta: command.Meta{
				Name:        "help",
				Usage:       "[command]",
				Description: "Prints the help page",
			},
		},
		{
			Ident:   "versionCommand",
			Handler: r.versionCommand,
			Meta: command.Meta{
				Name:        "version",
				Description: "Prints the plugin's version",
			},
		},
	}
}

func (r *Registry) helpCommand(caller command.Caller, a *command.Args) {
	dir := a.Directory
	if dir == nil {
		dir = r
	}

	if label := a.String(0, ""); label != "" {
		d := dir.Resolve(label)
		if d == nil {
			caller.Send(r.Translate("help_cmdnotfound", "&cThe command %s was not found!", label))
			return
		}
		caller.Send(usageLine(a.BaseLabel, label, d.Usage()))
		caller.Send("    " + r.Translate(d.Name()+"_description", d.Description()))
		return
	}

	caller.Send(r.Translate("help_listofcommands", "Here is a list of the available commands and their usage:"))
	caller.Send(" ")

	for _, d := range dir.Commands() {
		if !dir.Allowed(caller, d) {
			continue
		}
		caller.Send(usageLine(a.BaseLabel, d.Name(), d.Usage()))
		caller.Send("    " + r.Translate(d.Name()+"_description", d.Description()))
		caller.Send(" ")
	}
}

func (r *Registry) versionCommand(caller command.Caller, a *command.Args) {
	caller.Send(r.Translate("version_pluginversion", "The plugin version: %s", r.version))
	caller.Send(" ")
}

func usageLine(base, name, usage string) string {
	return strings.TrimRight("/"+base+" "+name+" "+usage, " ")
}
