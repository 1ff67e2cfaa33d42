package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db         *gorm.DB
	categories *catalog.Registry
}

func NewHealthHandler(db *gorm.DB, categories *catalog.Registry) *HealthHandler {
	return &HealthHandler{db: db, categories: categories}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy"
	}

	return c.JSON(dto.HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DB:         dbStatus,
		Categories: len(h.categories.All()),
	})
}

type CategoryHandler struct {
	categories *catalog.Registry
}

func NewCategoryHandler(categories *catalog.Registry) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": h.categories.All()})
}
