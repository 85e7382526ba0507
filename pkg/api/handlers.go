package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/hexlake/cir/pkg/resolver"
)

// ResolveRequest is the body of POST /api/v1/resolve. A nil strategy
// uses the server's configured default.
type ResolveRequest struct {
	Rows     []resolver.Row     `json:"rows"`
	Strategy *resolver.Strategy `json:"strategy,omitempty"`
}

// ResolveResponse carries the aligned identifiers and the run statistics
type ResolveResponse struct {
	IDs        []string             `json:"ids"`
	Statistics *resolver.Statistics `json:"statistics"`
}

// handlers implements the HTTP endpoints
type handlers struct {
	log             logrus.FieldLogger
	resolver        *resolver.Resolver
	defaultStrategy resolver.Strategy
	maxBatchSize    int
}

func newHandlers(log logrus.FieldLogger, res *resolver.Resolver, defaultStrategy resolver.Strategy, maxBatchSize int) *handlers {
	return &handlers{
		log:             log.WithField("component", "api-handlers"),
		resolver:        res,
		defaultStrategy: defaultStrategy,
		maxBatchSize:    maxBatchSize,
	}
}

func (h *handlers) register(app *fiber.App) {
	app.Get("/healthz", h.health)

	v1 := app.Group("/api/v1")
	v1.Post("/resolve", h.resolve)
}

func (h *handlers) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *handlers) resolve(c fiber.Ctx) error {
	var req ResolveRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Rows) > h.maxBatchSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "batch exceeds maximum size")
	}

	strategy := h.defaultStrategy
	if req.Strategy != nil {
		strategy = *req.Strategy
	}

	ids, stats, err := h.resolver.ResolveBatch(c.Context(), req.Rows, strategy)
	if err != nil {
		if isStrategyError(err) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		h.log.WithError(err).Error("Resolution failed")
		return fiber.NewError(fiber.StatusInternalServerError, "resolution failed")
	}

	return c.JSON(ResolveResponse{IDs: ids, Statistics: stats})
}

func isStrategyError(err error) bool {
	return errors.Is(err, resolver.ErrOutputColumnRequired) ||
		errors.Is(err, resolver.ErrColumnCollision) ||
		errors.Is(err, resolver.ErrNegativeBudget) ||
		errors.Is(err, resolver.ErrTempIDGeneratorRequired)
}
