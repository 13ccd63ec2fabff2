package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"cafe-api/internal/infrastructure/logger"
	"cafe-api/internal/infrastructure/metrics"
	controller "cafe-api/internal/interfaces/controller/coffees"
	"cafe-api/internal/usecase"
)

// MetricsRegistry is the sink the router exposes on GET /metrics
type MetricsRegistry interface {
	metrics.Sink
	Snapshot() []metrics.CounterValue
}

// NewRouter wires the HTTP routes onto a new echo instance
func NewRouter(cafeUsecase usecase.CafeUsecase, registry MetricsRegistry, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger(log))
	e.Use(middleware.Recover())

	coffeeHandler := controller.NewCoffeeHandler(cafeUsecase, registry, log)

	e.GET("/coffees", coffeeHandler.GetCoffees)
	e.POST("/coffees", coffeeHandler.CreateCoffee)
	e.GET("/coffees/:id", coffeeHandler.GetCoffee)
	e.DELETE("/coffees/:id", coffeeHandler.DeleteCoffee)
	e.PUT("/coffees/:id/buy", coffeeHandler.BuyCoffee)

	e.GET("/healthz", coffeeHandler.Health)
	e.GET("/metrics", func(c echo.Context) error {
		return c.JSON(http.StatusOK, registry.Snapshot())
	})

	return e
}
