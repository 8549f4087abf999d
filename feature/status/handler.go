package status

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"calblock/core/logger"
)

// Handler handles the status HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the status routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/healthz", h.HandleHealth)
	app.Get("/status", h.HandleStatus)
	app.Post("/sync", h.HandleTriggerSync)
	app.Get("/passes", h.HandlePasses)
	app.Get("/passes/:id/actions", h.HandlePassActions)
}

// HandleHealth is the liveness probe.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleStatus reports uptime, schedule and the last pass.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleTriggerSync starts a pass outside the schedule and returns
// immediately; the pass outcome lands in /status and the journal.
func (h *Handler) HandleTriggerSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Sync pass triggered via API")

	h.service.TriggerSync()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "triggered"})
}

// HandlePasses lists recent passes from the journal.
func (h *Handler) HandlePasses(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 200 {
		limit = 20
	}

	passes, err := h.service.RecentPasses(c.Context(), limit)
	if err != nil {
		if errors.Is(err, ErrJournalDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "journal disabled"})
		}
		l.Error("Pass history read failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(passes)
}

// HandlePassActions lists the recorded actions of one pass.
func (h *Handler) HandlePassActions(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid pass id"})
	}

	actions, err := h.service.PassActions(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, ErrJournalDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "journal disabled"})
		}
		l.Error("Pass actions read failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(actions)
}
