package upload

import (
	"github.com/gofiber/fiber/v3"

	"github.com/obmenka/obmenka-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для загрузки изображений
func (s *UploadService) SetupRoutes(app *fiber.App) {
	app.Get("/api/upload/params", s.GenerateUploadParams, middleware.AuthMiddleware(s.jwtService))
}
