package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-image/internal/api/http"
	"github.com/i474232898/weather-image/internal/chart"
	"github.com/i474232898/weather-image/internal/config"
	"github.com/i474232898/weather-image/internal/logging"
	"github.com/i474232898/weather-image/internal/report"
	"github.com/i474232898/weather-image/internal/scheduler"
	"github.com/i474232898/weather-image/internal/store"
	"github.com/i474232898/weather-image/internal/weather"
	"github.com/i474232898/weather-image/internal/weather/providers"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <location> <output>\n       %s -serve\n\n", os.Args[0], os.Args[0])
	flag.PrintDefaults()
}

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup happens before exit.
func run() int {
	width := flag.Int("w", 640, "image width in pixels")
	height := flag.Int("v", 360, "image height in pixels")
	dpi := flag.Float64("d", 72, "image resolution (PNG only)")
	keyFile := flag.String("k", "", "file holding the OpenWeatherMap API key")
	hours := flag.Int("hours", 0, "hours to chart (default WINDOW_HOURS)")
	serve := flag.Bool("serve", false, "run the HTTP service instead of writing files")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.AppEnv, cfg.LogLevel))

	if !*serve && flag.NArg() != 2 {
		flag.Usage()
		return 2
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	zoned := cfg.TimezoneEnabled(weather.ProbeTimezoneSupport)
	if !zoned {
		slog.Warn("timezone database unavailable; times stay in the local zone")
	}
	norm := weather.NewNormalizer(time.Local, zoned)

	apiKey, err := cfg.ResolveAPIKey(*keyFile)
	if err != nil {
		slog.Error("no OpenWeatherMap API key", "error", err)
		return 1
	}
	provider := providers.NewOpenWeatherProvider(httpClient, apiKey, cfg.OpenWeatherBaseURL)

	geocoder, closeGeocoder, err := newGeocoder(cfg, httpClient)
	if err != nil {
		slog.Error("failed to set up geocoder", "error", err)
		return 1
	}
	defer closeGeocoder()

	service := weather.NewService(provider, geocoder, norm)
	builder := report.NewBuilder(service, cfg.WindowHours)
	renderer := chart.NewRenderer(chart.RenderOptions{Width: *width, Height: *height, DPI: *dpi})

	if *serve {
		if err := runServer(cfg, builder, renderer); err != nil {
			slog.Error("server failed", "error", err)
			return 1
		}
		return 0
	}

	if err := runOnce(builder, renderer, flag.Arg(0), flag.Arg(1), *hours, cfg.HTTPTimeout); err != nil {
		slog.Error("failed to build charts", "location", flag.Arg(0), "error", err)
		return 1
	}
	return 0
}

// newGeocoder picks Google when a key is configured and Nominatim otherwise,
// optionally fronted by the SQLite cache.
func newGeocoder(cfg *config.AppConfig, client *http.Client) (weather.Geocoder, func(), error) {
	var geocoder weather.Geocoder
	if cfg.GoogleGeocoderAPIKey != "" {
		geocoder = providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey)
	} else {
		geocoder = providers.NewNominatimGeocoder(client, cfg.NominatimBaseURL)
	}

	if cfg.GeocodeCachePath == "" {
		return geocoder, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := store.OpenSQLite(ctx, cfg.GeocodeCachePath)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.Warn("closing geocode cache", "error", err)
		}
	}
	return store.NewGeocodeCache(db, geocoder, cfg.GeocodeCacheTTL), closeDB, nil
}

func runOnce(builder *report.Builder, renderer *chart.Renderer, location, output string, hours int, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Forecast, pollution and geocoding each get the HTTP timeout.
	ctx, cancel := context.WithTimeout(ctx, 3*timeout)
	defer cancel()

	r, err := builder.Build(ctx, location, hours)
	if err != nil {
		return err
	}

	paths, err := renderer.WriteFiles(output, r.Charts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	if len(paths) == 0 {
		slog.Warn("no forecast data; nothing written", "location", location)
	}
	return nil
}

func runServer(cfg *config.AppConfig, builder *report.Builder, renderer *chart.Renderer) error {
	memStore := store.NewMemoryStore(cfg.ReportMaxAge)

	// Scheduler that periodically rebuilds reports for LOCATIONS.
	sched := scheduler.New(cfg.Locations, cfg.RefreshInterval, builder, memStore, renderer, cfg.OutputDir)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-image",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout * 4,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-image",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Builder:  builder,
		Store:    memStore,
		Renderer: renderer,
		Timeout:  3 * cfg.HTTPTimeout,
	})

	go func() {
		slog.Info("listening", "port", cfg.Port, "locations", len(cfg.Locations))
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
