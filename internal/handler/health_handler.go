package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/campushub/integrity-api/internal/utils"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler builds a health handler instance.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Register attaches the routes to the provided router group.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.check)
}

func (h *HealthHandler) check(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok"}

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil || sqlDB.PingContext(c.Context()) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			return utils.SendSuccessWithStatus(c, fiber.StatusServiceUnavailable, "health degraded", status)
		}
		status["database"] = "ok"
	}

	return utils.SendSuccess(c, "service healthy", status)
}
