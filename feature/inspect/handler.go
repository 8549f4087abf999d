package inspect

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"calblock/core/calendar"
	"calblock/core/logger"
)

// Handler handles the inspect HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the inspect routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/inspect")
	group.Get("/accounts", h.HandleAccounts)
	group.Get("/snapshot", h.HandleSnapshot)
}

// HandleAccounts lists the configured accounts without credentials.
func (h *Handler) HandleAccounts(c *fiber.Ctx) error {
	return c.JSON(h.service.Accounts())
}

// HandleSnapshot peeks into one account's live calendar window.
func (h *Handler) HandleSnapshot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	account := c.Query("account")
	if account == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "account query parameter is required"})
	}
	days := c.QueryInt("days", 30)
	if days < 1 || days > 365 {
		days = 30
	}

	peek, err := h.service.Snapshot(c.Context(), account, days)
	if err != nil {
		if errors.Is(err, calendar.ErrUnknownAccount) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown account " + account})
		}
		l.Error("Snapshot peek failed", zap.String("account", account), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(peek)
}
