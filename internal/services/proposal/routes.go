package proposal

import (
	"github.com/gofiber/fiber/v3"

	"github.com/obmenka/obmenka-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API предложений обмена
func (s *ProposalService) SetupRoutes(app *fiber.App) {
	authMiddleware := middleware.AuthMiddleware(s.jwtService)

	// Создание предложения привязано к объявлению-получателю
	app.Post("/api/ads/:id/propose", s.CreateProposal, authMiddleware)

	api := app.Group("/api/proposals")
	api.Use(authMiddleware)

	api.Get("/", s.GetMyProposals)
	api.Get("/:id", s.GetProposal)
	api.Post("/:id/accept", s.AcceptProposal)
	api.Post("/:id/reject", s.RejectProposal)
}
