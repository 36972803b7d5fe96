package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ozweather/willypoll/internal/scheduler"
	"github.com/ozweather/willypoll/internal/store"
	"github.com/ozweather/willypoll/internal/weather"
)

var validate = validator.New()

// Deps carries everything the read-only consumer surface needs. Handlers
// never trigger fetches; they only render the published snapshot.
type Deps struct {
	Store        *store.MemoryStore
	Coordinator  *scheduler.Coordinator
	Enabled      map[weather.SensorField]bool
	ForecastDays int
	Sensors      []weather.SensorSpec
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		snap, err := deps.Store.Latest()
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no snapshot published yet")
		}
		summary, err := weather.Summarize(snap, deps.ForecastDays)
		if err != nil {
			return unavailable(err, "current conditions not yet available")
		}
		return c.JSON(summary)
	})

	v1.Get("/sensors", func(c *fiber.Ctx) error {
		snap, err := deps.Store.Latest()
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no snapshot published yet")
		}

		values := make(map[string]any)
		for _, field := range weather.ScalarSensorFields() {
			v, err := weather.SensorValue(snap, field, deps.Enabled)
			if err != nil {
				continue
			}
			values[string(field)] = v
		}
		if len(values) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "observational data not yet available")
		}
		return c.JSON(fiber.Map{
			"station": snap.Station,
			"asOf":    snap.AsOf,
			"sensors": values,
		})
	})

	v1.Get("/sensors/:field", func(c *fiber.Ctx) error {
		field := c.Params("field")
		if !weather.IsScalarSensorField(field) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown sensor field")
		}

		snap, err := deps.Store.Latest()
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no snapshot published yet")
		}
		v, err := weather.SensorValue(snap, weather.SensorField(field), deps.Enabled)
		if err != nil {
			return unavailable(err, "sensor unavailable")
		}
		return c.JSON(fiber.Map{"field": field, "value": v, "asOf": snap.AsOf})
	})

	v1.Get("/forecast/days/:index", func(c *fiber.Ctx) error {
		idx, err := strconv.Atoi(c.Params("index"))
		if err != nil || idx < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "index must be a non-negative integer")
		}

		snap, err := deps.Store.Latest()
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no snapshot published yet")
		}
		day, err := weather.ForecastDay(snap, idx)
		if err != nil {
			return unavailable(err, "forecast day unavailable")
		}
		return c.JSON(fiber.Map{
			"index":     idx,
			"condition": weather.ConditionForPrecis(day.PrecisCode),
			"day":       day,
		})
	})

	v1.Get("/forecast/hours/:index", func(c *fiber.Ctx) error {
		idx, err := strconv.Atoi(c.Params("index"))
		if err != nil || idx < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "index must be a non-negative integer")
		}

		snap, err := deps.Store.Latest()
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no snapshot published yet")
		}
		hour, err := weather.ForecastHour(snap, idx)
		if err != nil {
			return unavailable(err, "forecast hour unavailable")
		}
		return c.JSON(fiber.Map{"index": idx, "hour": hour})
	})

	v1.Get("/tides/next", func(c *fiber.Ctx) error {
		tideType := c.Query("type", "high")
		if tideType != "high" && tideType != "low" {
			return fiber.NewError(fiber.StatusBadRequest, "type must be high or low")
		}

		snap, err := deps.Store.Latest()
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no snapshot published yet")
		}
		tide, err := weather.NextTide(snap, tideType, time.Now().UTC())
		if err != nil {
			return unavailable(err, "no upcoming tide data")
		}
		return c.JSON(tide)
	})

	v1.Get("/warnings", func(c *fiber.Ctx) error {
		snap, err := deps.Store.Latest()
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no snapshot published yet")
		}
		states, err := weather.WarningStates(snap)
		if err != nil {
			return unavailable(err, "warnings not yet available")
		}
		return c.JSON(fiber.Map{"asOf": snap.AsOf, "warnings": states})
	})

	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"domains": deps.Coordinator.Status()})
	})

	v1.Get("/catalogue", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"sensors": deps.Sensors})
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshots, err := deps.Store.Range(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no snapshots in requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch snapshot history")
		}
		return c.JSON(fiber.Map{
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})
}

func unavailable(err error, msg string) error {
	if errors.Is(err, weather.ErrUnavailable) {
		return fiber.NewError(fiber.StatusNotFound, msg)
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
