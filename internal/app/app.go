// Package app wires the application together: logger, registry, document
// loader, compiler, and the run/watch lifecycle.
package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vectorlab/vectograph/internal/compiler"
	"github.com/vectorlab/vectograph/internal/ctxlog"
	"github.com/vectorlab/vectograph/internal/hcldoc"
	"github.com/vectorlab/vectograph/internal/registry"
)

// Config holds everything an App instance needs to run.
type Config struct {
	DocPath    string
	Watch      bool
	BridgePort int
	LogFormat  string
	LogLevel   string
}

// App encapsulates the application's dependencies and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	compiler *compiler.Compiler
	loader   *hcldoc.Loader
	config   *Config
}

// New is the constructor for the main application. It returns a fully
// initialized App with its own isolated logger and registry; the registry
// is populated from the given modules (or the builtin set when none are
// given) and is read-only afterwards.
func New(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg, outW)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.NewWithModules(modules...)
	logger.Debug("All node modules registered.", "modules", len(modules), "implementations", reg.Len())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		compiler: compiler.New(reg),
		loader:   hcldoc.NewLoader(),
		config:   cfg,
	}
}

// Registry returns the application's registry. Primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Compiler returns the application's compiler. Primarily for testing.
func (a *App) Compiler() *compiler.Compiler {
	return a.compiler
}

// context returns a base context carrying the app's logger.
func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
