package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/cmdgrid/internal/ctxlog"
	"github.com/vk/cmdgrid/internal/i18n"
	"github.com/vk/cmdgrid/internal/permission"
	"github.com/vk/cmdgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	registry   *registry.Registry
	store      *permission.Memory
	translator *i18n.Catalog
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Startup failures panic.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	translator, err := loadTranslator(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("failed to load translations: %w", err))
	}
	logger.Debug("Translations loaded.", "locales", translator.Locales(), "active", translator.Locale())

	store := permission.NewMemory()
	grants, err := ParseGrants(cfg.Grants)
	if err != nil {
		panic(err)
	}
	for _, g := range grants {
		store.Grant(g.Subject, g.Permission, g.Value)
	}
	logger.Debug("Permission grants applied.", "count", len(grants))

	reg := registry.New(registry.Config{
		Version:          cfg.Version,
		ParentPermission: cfg.ParentPermission,
		PermissionBase:   cfg.PermissionBase,
		Store:            store,
		Translator:       translator,
		Logger:           logger,
	})

	if len(modules) == 0 {
		modules = coreModules(cfg)
	}
	for _, mod := range modules {
		if err := mod.Register(ctx, reg); err != nil {
			panic(fmt.Errorf("failed to register module: %w", err))
		}
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "commands", len(reg.Commands()))

	return &App{
		outW:       outW,
		logger:     logger,
		ctx:        ctx,
		config:     cfg,
		registry:   reg,
		store:      store,
		translator: translator,
	}
}

// loadTranslator builds the bundled catalog, adds cfg.LocalesPath on top
// and activates cfg.Locale.
func loadTranslator(ctx context.Context, cfg *Config) (*i18n.Catalog, error) {
	catalog, err := i18n.Builtin()
	if err != nil {
		return nil, err
	}
	if cfg.LocalesPath != "" {
		if err := catalog.LoadDir(ctx, cfg.LocalesPath); err != nil {
			return nil, err
		}
	}
	if cfg.Locale != "" && !catalog.SetLocale(cfg.Locale) {
		return nil, fmt.Errorf("invalid locale %q", cfg.Locale)
	}
	return catalog, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Permissions returns the application's permission store.
func (a *App) Permissions() *permission.Memory {
	return a.store
}
