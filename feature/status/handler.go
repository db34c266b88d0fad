package status

import (
	"errors"

	"floorplan-sync/core/logger"
	"floorplan-sync/core/reconcile"
	"floorplan-sync/feature/report"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for run status.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the status routes. Archive routes are only added when history is available.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)

	group := app.Group("/runs")
	group.Get("/last", h.HandleLastRun)
	group.Post("/", h.HandleTriggerRun)
	if h.service.History() != nil {
		group.Get("/", h.HandleListRuns)
		group.Get("/:id", h.HandleGetRun)
	}
}

// HandleHealth reports liveness and whether a run is in progress.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"running": h.service.Running(),
	})
}

// HandleLastRun returns the report of the most recent run.
func (h *Handler) HandleLastRun(c *fiber.Ctx) error {
	last := h.service.Last()
	if last == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no run has finished yet"})
	}
	return c.JSON(last)
}

// HandleTriggerRun runs a reconciliation and returns its report.
func (h *Handler) HandleTriggerRun(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.logger, c)
	l.Info("Run requested")

	rep, shared, err := h.service.Trigger(c.UserContext())
	if shared {
		l.Info("Joined run already in progress")
	}
	if errors.Is(err, ErrShuttingDown) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Requested run failed", zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, reconcile.ErrTransientIO) {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{
			"error":  err.Error(),
			"report": rep,
		})
	}
	return c.JSON(rep)
}

// HandleListRuns lists archived reports, newest first.
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.logger, c)

	limit := c.QueryInt("limit", 20)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be >= 0"})
	}
	entries, err := h.service.History().List(c.UserContext(), limit)
	if err != nil {
		l.Error("Listing archived runs failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	if entries == nil {
		entries = []report.Entry{}
	}
	return c.JSON(entries)
}

// HandleGetRun returns one archived report.
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	l := logger.WithRequestID(h.logger, c)

	rep, err := h.service.History().Get(c.UserContext(), c.Params("id"))
	switch {
	case errors.Is(err, report.ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, report.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Loading archived run failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rep)
}
