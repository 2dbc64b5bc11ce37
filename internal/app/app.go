package app

import (
	"time"

	"github.com/neekaru/washgate/internal/config"
	"github.com/neekaru/washgate/internal/events"
	"github.com/rs/zerolog"
)

// Version is reported by the health endpoints.
const Version = "1.0.0"

// App holds shared application state and resources
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Bus       *events.Bus
	StartTime time.Time // Track startup time for health checks
}

// NewApp creates a new App instance with initialized resources
func NewApp(cfg *config.Config, logger zerolog.Logger, bus *events.Bus) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		Bus:       bus,
		StartTime: time.Now(),
	}
}

// Component returns a logger tagged with the component name.
func (a *App) Component(name string) zerolog.Logger {
	return a.Logger.With().Str("component", name).Logger()
}
