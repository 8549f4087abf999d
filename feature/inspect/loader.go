package inspect

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"calblock/core/config"
	"calblock/core/snapshot"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the inspect feature.
func NewFeature(accounts []config.Account, loader *snapshot.Loader, logger *zap.Logger) *Feature {
	svc := NewService(accounts, loader, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "inspect"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
