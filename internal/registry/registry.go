package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/vk/cmdgrid/internal/chat"
	"github.com/vk/cmdgrid/internal/command"
	"github.com/vk/cmdgrid/internal/permission"
)

// DefaultCommand is the command run when a dispatch carries no tokens.
const DefaultCommand = "help"

// Translator maps a message key to display text. ok is false when the key
// is unknown, in which case the registry uses its literal default.
type Translator interface {
	Translate(key string, args ...any) (text string, ok bool)
}

// Config holds everything a Registry needs from its owning application.
type Config struct {
	// Version is reported by the built-in version command.
	Version string
	// ParentPermission, when set, is created in Store and commands that ask
	// for it are attached underneath.
	ParentPermission string
	// PermissionBase is prefixed to the command name for commands that
	// request a permission without naming one.
	PermissionBase string

	Store      permission.Store
	Translator Translator
	Logger     *slog.Logger
}

// Registry holds all registered commands for a single application instance.
type Registry struct {
	mu             sync.RWMutex
	commands       map[string]*command.Descriptor
	aliases        map[string]string
	owners         map[any]map[string]struct{}
	defaultCommand string

	version        string
	parent         *permission.Permission
	permissionBase string
	store          permission.Store
	translator     Translator
	logger         *slog.Logger
}

// New creates a Registry and registers the built-in commands on it.
func New(cfg Config) *Registry {
	r := &Registry{
		commands:       make(map[string]*command.Descriptor),
		aliases:        make(map[string]string),
		owners:         make(map[any]map[string]struct{}),
		defaultCommand: DefaultCommand,
		version:        cfg.Version,
		permissionBase: cfg.PermissionBase,
		store:          cfg.Store,
		translator:     cfg.Translator,
		logger:         cfg.Logger,
	}
	if r.store == nil {
		r.store = permission.NewMemory()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if cfg.ParentPermission != "" {
		r.parent = r.store.Create(cfg.ParentPermission, permission.DefaultOp)
	}

	if err := r.Register(r); err != nil {
		// Built-ins are fixed at compile time, so this is a programming error.
		panic(err)
	}
	return r
}

// ParentPermission returns the permission commands may be attached under.
func (r *Registry) ParentPermission() *permission.Permission { return r.parent }

// Resolve looks label up as an alias first and as a canonical name second.
func (r *Registry) Resolve(label string) *command.Descriptor {
	label = strings.ToLower(label)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := r.aliases[label]; ok {
		return r.commands[name]
	}
	return r.commands[label]
}

// Command looks up a canonical name, ignoring aliases.
func (r *Registry) Command(name string) *command.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[strings.ToLower(name)]
}

// Commands returns every registered command sorted by name.
func (r *Registry) Commands() []*command.Descriptor {
	r.mu.RLock()
	list := make([]*command.Descriptor, 0, len(r.commands))
	for _, d := range r.commands {
		list = append(list, d)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Aliases returns a copy of the alias table.
func (r *Registry) Aliases() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// Registered returns the sorted canonical names contributed by provider.
func (r *Registry) Registered(provider any) []string {
	owner := ownerOf(provider)
	if !isComparable(owner) {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.owners[owner]))
	for n := range r.owners[owner] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetDefault changes the command run for an empty command line. label may
// be an alias; it must resolve, otherwise nothing changes.
func (r *Registry) SetDefault(label string) bool {
	d := r.Resolve(label)
	if d == nil {
		return false
	}
	r.mu.Lock()
	r.defaultCommand = d.Name()
	r.mu.Unlock()
	return true
}

// Default returns the default command, or nil if it is not registered.
func (r *Registry) Default() *command.Descriptor {
	return r.Command(r.defaultName())
}

func (r *Registry) defaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultCommand
}

// Allowed reports whether caller may run d.
func (r *Registry) Allowed(caller command.Caller, d *command.Descriptor) bool {
	p := d.Permission()
	if p == nil {
		return true
	}
	return r.store.Has(caller, p)
}

// Translate returns the translation of key, or def with '&' markers turned
// into style markers and args applied.
func (r *Registry) Translate(key, def string, args ...any) string {
	if r.translator != nil {
		if text, ok := r.translator.Translate(key, args...); ok {
			return text
		}
	}
	def = chat.TranslateAlternateCodes(chat.AltMarker, def)
	if len(args) == 0 {
		return def
	}
	return fmt.Sprintf(def, args...)
}
