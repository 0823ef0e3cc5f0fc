package auth

import (
	"github.com/gofiber/fiber/v3"

	"github.com/obmenka/obmenka-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты авторизации
func (s *AuthService) SetupRoutes(app *fiber.App) {
	app.Post("/api/auth/telegram", s.TelegramAuthHandler)

	app.Get("/api/profile", s.ProfileHandler, middleware.AuthMiddleware(s.jwtService))
}
