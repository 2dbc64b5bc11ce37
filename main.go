package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neekaru/washgate/internal/access"
	"github.com/neekaru/washgate/internal/app"
	"github.com/neekaru/washgate/internal/camera"
	"github.com/neekaru/washgate/internal/config"
	"github.com/neekaru/washgate/internal/console"
	"github.com/neekaru/washgate/internal/engine"
	"github.com/neekaru/washgate/internal/events"
	"github.com/neekaru/washgate/internal/history"
	"github.com/neekaru/washgate/internal/live"
	"github.com/neekaru/washgate/internal/location"
	"github.com/neekaru/washgate/internal/presenter"
	"github.com/neekaru/washgate/internal/scanner"
	"github.com/neekaru/washgate/internal/server"
	"github.com/neekaru/washgate/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("WASHGATE_CONFIG"), "path to YAML config file")
	withConsole := flag.Bool("console", false, "show the operator console in this terminal")
	noAutostart := flag.Bool("no-autostart", false, "do not start scanning at boot")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "washgate: %v\n", err)
		os.Exit(1)
	}

	logging, err := logger.SetupLogging(cfg.LogDir, cfg.LogLevel, *withConsole)
	if err != nil {
		logging = logger.SetupFallbackLogger()
	}
	defer logging.Close()
	log := logging.Logger

	if err := run(cfg, logging, *withConsole, !*noAutostart); err != nil {
		log.Error().Err(err).Msg("Fatal error")
		logging.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logging *logger.Logging, withConsole, autostart bool) error {
	log := logging.Logger

	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus(256, log.With().Str("component", "events").Logger())
	defer bus.Close()
	bus.Subscribe(events.NewLoggingObserver(log.With().Str("component", "events").Logger()), events.AllTypes...)

	application := app.NewApp(cfg, log, bus)

	journal, err := history.Open(ctx, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open scan journal: %w", err)
	}
	defer journal.Close()

	cameras := camera.NewEnumerator(cfg.Camera.SysfsRoot)
	eng := engine.NewFFmpegEngine(cameras, engine.Options{
		FFmpegPath: cfg.Camera.FFmpegPath,
		FPS:        cfg.Camera.FPS,
		Width:      cfg.Camera.Width,
		Height:     cfg.Camera.Height,
		TorchLED:   cfg.Camera.TorchLED,
	}, log)

	backend := access.NewClient(cfg.APIBaseURL, cfg.VerifyTimeout)

	locations := location.NewStore(backend)
	loadLocations(ctx, application, locations)

	pres := presenter.New(bus)
	controller := scanner.New(scanner.Deps{
		Engine:    eng,
		Cameras:   cameras,
		Verifier:  backend,
		Locations: locations,
		Presenter: pres,
		Journal:   journal,
		Bus:       bus,
		Logger:    application.Component("scanner"),
	})

	hub := live.NewHub(func() interface{} { return controller.Status() }, application.Component("live"))
	bus.Subscribe(hub, events.AllTypes...)
	defer hub.Close()

	srv := server.NewServer(application, logging.Writer)
	srv.SetupRoutes(server.Components{
		Scanner:   controller,
		Locations: locations,
		Journal:   journal,
		Hub:       hub,
	})
	if err := srv.Start(); err != nil {
		return err
	}

	if autostart {
		if err := controller.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("Scanner did not start at boot")
		}
	}

	if withConsole {
		if err := console.Run(ctx, controller, bus); err != nil {
			log.Error().Err(err).Msg("Console exited with error")
		}
		stop()
	} else {
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := controller.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Camera did not stop cleanly")
	}
	return srv.Shutdown(shutdownCtx)
}

// loadLocations fetches the location list and applies the configured default.
// The backend being down at boot is not fatal; the list can be refreshed later.
func loadLocations(ctx context.Context, application *app.App, store *location.Store) {
	log := application.Logger

	locs, err := store.Refresh(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not load locations at startup")
		return
	}
	log.Info().Int("count", len(locs)).Msg("Locations loaded")

	id := application.Config.DefaultLocationID
	if id == "" {
		if len(locs) == 1 {
			id = locs[0].ID
		} else {
			return
		}
	}
	if err := store.Select(id); err != nil {
		log.Warn().Err(err).Str("location", id).Msg("Default location not available")
		return
	}
	log.Info().Str("location", id).Msg("Location selected")
}
