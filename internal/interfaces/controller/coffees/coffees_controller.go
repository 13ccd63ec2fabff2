package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "cafe-api/internal/domain/errors"
	"cafe-api/internal/infrastructure/metrics"
	"cafe-api/internal/usecase"
)

const (
	GetAllCoffeesCounter            = "getAllCoffees.invocations"
	getAllCoffeesCounterDescription = "Counts the number of times getAllCoffees is invoked"
)

type CoffeeHandler struct {
	cafeUsecase usecase.CafeUsecase
	metrics     metrics.Sink
	logger      *zap.Logger
}

// NewCoffeeHandler registers the handler's counters on sink
func NewCoffeeHandler(cafeUsecase usecase.CafeUsecase, sink metrics.Sink, logger *zap.Logger) *CoffeeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	sink.Register(GetAllCoffeesCounter, getAllCoffeesCounterDescription, "1")

	return &CoffeeHandler{
		cafeUsecase: cafeUsecase,
		metrics:     sink,
		logger:      logger,
	}
}

// ErrorResponse is the JSON body of every 4xx and 5xx answer
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// GetCoffees returns the catalog view: every coffee with its sold count
func (h *CoffeeHandler) GetCoffees(c echo.Context) error {
	h.metrics.Increment(GetAllCoffeesCounter)

	coffees, err := h.cafeUsecase.BuildCatalogView(c.Request().Context())
	if err != nil {
		return h.respondError(c, err, "failed to retrieve coffees")
	}

	return c.JSON(http.StatusOK, coffees)
}

func (h *CoffeeHandler) CreateCoffee(c echo.Context) error {
	var input usecase.CreateCoffeeInput
	if err := c.Bind(&input); err != nil {
		return h.respondError(c, fmt.Errorf("%w: %v", domainErrors.ErrInvalidInput, err), "invalid request format")
	}

	coffee, err := h.cafeUsecase.CreateCoffee(c.Request().Context(), input)
	if err != nil {
		return h.respondError(c, err, "failed to create coffee")
	}

	return c.JSON(http.StatusCreated, coffee)
}

func (h *CoffeeHandler) GetCoffee(c echo.Context) error {
	id, err := parseCoffeeID(c)
	if err != nil {
		return h.respondError(c, err, "invalid coffee ID")
	}

	coffee, err := h.cafeUsecase.FindCoffeeByID(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err, "failed to retrieve coffee")
	}

	return c.JSON(http.StatusOK, coffee)
}

// DeleteCoffee answers 204 whether or not the coffee existed
func (h *CoffeeHandler) DeleteCoffee(c echo.Context) error {
	id, err := parseCoffeeID(c)
	if err != nil {
		return h.respondError(c, err, "invalid coffee ID")
	}

	if err := h.cafeUsecase.RemoveCoffeeByID(c.Request().Context(), id); err != nil {
		return h.respondError(c, err, "failed to delete coffee")
	}

	return c.NoContent(http.StatusNoContent)
}

// BuyCoffee increments the sold counter of the coffee
func (h *CoffeeHandler) BuyCoffee(c echo.Context) error {
	id, err := parseCoffeeID(c)
	if err != nil {
		return h.respondError(c, err, "invalid coffee ID")
	}

	sold, err := h.cafeUsecase.IncrementSoldCount(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err, "failed to buy coffee")
	}

	return c.JSON(http.StatusOK, sold)
}

func (h *CoffeeHandler) Health(c echo.Context) error {
	if err := h.cafeUsecase.CheckHealth(c.Request().Context()); err != nil {
		h.logger.Error("store unavailable", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "store unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// respondError maps domain errors onto HTTP statuses. message is used for
// validation failures and for unexpected errors, which are also logged.
func (h *CoffeeHandler) respondError(c echo.Context, err error, message string) error {
	switch {
	case domainErrors.IsValidationError(err):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
	case domainErrors.IsNotFoundError(err):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "coffee not found"})
	case domainErrors.IsConflictError(err):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "coffee already exists"})
	}

	h.logger.Error(message, zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}

func parseCoffeeID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domainErrors.ErrInvalidInput, err)
	}
	return id, nil
}
