package status

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"calblock/core/journal"
	"calblock/core/worker"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the status feature. journal may be nil, which
// turns the history endpoints into 503s.
func NewFeature(w *worker.Worker, j *journal.Journal, schedule string, logger *zap.Logger) *Feature {
	svc := NewService(w, j, schedule, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "status"
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
