package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/specialistvlad/opgraph/internal/config"
	"github.com/specialistvlad/opgraph/internal/ctxlog"
	"github.com/specialistvlad/opgraph/internal/hcl_adapter"
	"github.com/specialistvlad/opgraph/internal/publish"
	"github.com/specialistvlad/opgraph/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	config    *Config
	logger    *slog.Logger
	ctx       context.Context
	registry  *registry.Registry
	loader    config.Loader
	converter config.Converter
	publisher publish.Publisher

	phase      atomic.Value // string
	httpServer *http.Server
}

// NewApp builds an App with its own logger and registry. With no modules
// the core modules are registered. A registry that fails validation is a
// programming error and panics.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	reg.RegisterModules(modules...)
	logger.Debug("Modules registered.", "modules", len(modules), "types", reg.Len())

	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.", "types", reg.Names())

	publishers := publish.Multi{publish.LogPublisher{}}
	if cfg.PublishURL != "" {
		publishers = append(publishers, publish.NewSocketIO(publish.SocketIOConfig{
			URL:   cfg.PublishURL,
			Event: cfg.PublishEvent,
		}))
	}

	a := &App{
		outW:      outW,
		config:    cfg,
		logger:    logger,
		ctx:       ctx,
		registry:  reg,
		loader:    hcl_adapter.NewLoader(reg),
		converter: hcl_adapter.NewConverter(),
		publisher: publishers,
	}
	a.setPhase("idle")
	return a
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

func (a *App) setPhase(p string) {
	a.phase.Store(p)
	a.logger.Debug("App phase changed.", "phase", p)
}

func (a *App) currentPhase() string {
	p, _ := a.phase.Load().(string)
	return p
}
