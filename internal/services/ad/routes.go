package ad

import (
	"github.com/gofiber/fiber/v3"

	"github.com/obmenka/obmenka-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API объявлений
func (s *AdService) SetupRoutes(app *fiber.App) {
	// Публичный список регистрируется до группы с авторизацией:
	// просматривать объявления можно без входа
	app.Get("/api/ads", s.GetAds)

	// Защищенные маршруты (требуют авторизации)
	api := app.Group("/api/ads")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateAd)
	api.Get("/:id", s.GetAd)
	api.Put("/:id", s.UpdateAd)
	api.Delete("/:id", s.DeleteAd)
}
