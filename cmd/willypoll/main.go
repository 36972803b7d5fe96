package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/ozweather/willypoll/internal/api/http"
	"github.com/ozweather/willypoll/internal/config"
	"github.com/ozweather/willypoll/internal/scheduler"
	"github.com/ozweather/willypoll/internal/station"
	"github.com/ozweather/willypoll/internal/store"
	"github.com/ozweather/willypoll/internal/weather"
	"github.com/ozweather/willypoll/internal/weather/fetchers"
	"github.com/ozweather/willypoll/internal/willy"
)

func main() {
	// Load configuration (.env included).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	client := willy.NewClient(httpClient, cfg.APIKey)

	// Resolve the station once; it stays fixed until reconfiguration.
	resolver := station.NewResolver(client)
	st, err := resolver.Resolve(ctx, cfg.Latitude, cfg.Longitude, cfg.StationID)
	if err != nil {
		log.Fatalf("failed to resolve station: %v", err)
	}
	log.Printf("polling station %s (%s)", st.ID, st.Name)

	// Snapshot cache with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Warnings share the observational cadence.
	obsPolicy := scheduler.IntervalPolicy{
		Day:            cfg.Observational.Day,
		Night:          cfg.Observational.Night,
		NightStartHour: cfg.NightStartHour,
		NightEndHour:   cfg.NightEndHour,
	}
	fcPolicy := scheduler.IntervalPolicy{
		Day:            cfg.Forecast.Day,
		Night:          cfg.Forecast.Night,
		NightStartHour: cfg.NightStartHour,
		NightEndHour:   cfg.NightEndHour,
	}
	policies := map[weather.Domain]scheduler.IntervalPolicy{
		weather.DomainObservational: obsPolicy,
		weather.DomainForecast:      fcPolicy,
		weather.DomainWarnings:      obsPolicy,
	}

	coordinator := scheduler.New(
		st,
		scheduler.Fetchers{
			Observational: fetchers.NewObservational(client),
			Forecast:      fetchers.NewForecast(client),
			Warnings:      fetchers.NewWarnings(client),
		},
		scheduler.FetchOptions{
			Observational: weather.ObservationalOptions{ExtendedText: cfg.ExtendedText},
			Forecast: weather.ForecastOptions{
				Days:       cfg.ForecastDays,
				HourlyDays: cfg.HourlyDays,
				UV:         cfg.IncludeUV,
				Tides:      cfg.IncludeTides,
				Swell:      cfg.IncludeSwell,
				Sunrise:    cfg.IncludeSunrise,
			},
			WarningsEnabled: cfg.IncludeWarnings,
		},
		policies,
		memStore,
		cfg.FetchTimeout,
	)

	coordinator.Subscribe(func(snap weather.Snapshot) {
		log.Printf("snapshot published as of %s", snap.AsOf.Format(time.RFC3339))
	})

	if err := coordinator.Start(ctx); err != nil {
		log.Fatalf("failed to start coordinator: %v", err)
	}
	defer coordinator.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "willypoll",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "willypoll",
			"station": st.ID,
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Store:        memStore,
		Coordinator:  coordinator,
		Enabled:      cfg.EnabledSensorSet(),
		ForecastDays: cfg.ForecastDays,
		Sensors: weather.EnumerateSensors(
			enabledOrAll(cfg),
			cfg.ForecastDays,
			cfg.HourlyDays,
			cfg.IncludeWarnings,
		),
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

func enabledOrAll(cfg *config.AppConfig) []weather.SensorField {
	if len(cfg.EnabledSensors) > 0 {
		return cfg.EnabledSensors
	}
	return weather.ScalarSensorFields()
}
