package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/obmenka/obmenka-api/internal/config"
	"github.com/obmenka/obmenka-api/internal/db"
	"github.com/obmenka/obmenka-api/internal/repository"
	"github.com/obmenka/obmenka-api/internal/services/ad"
	"github.com/obmenka/obmenka-api/internal/services/auth"
	"github.com/obmenka/obmenka-api/internal/services/proposal"
	"github.com/obmenka/obmenka-api/internal/services/upload"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	// Создаём репозитории
	adRepo := repository.NewPostgresAdRepository(db.Pool)
	proposalRepo := repository.NewPostgresProposalRepository(db.Pool)
	userRepo := repository.NewPostgresUserRepository(db.Pool)

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Obmenka API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	authService := auth.NewAuthService(cfg, userRepo)
	uploadService, err := upload.NewUploadService(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации Cloudinary: %v", err)
	}
	adService := ad.NewAdService(cfg, adRepo, uploadService)
	proposalService := proposal.NewProposalService(cfg, adRepo, proposalRepo)

	// Регистрируем маршруты
	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "obmenka-api", "status": "ok"})
	})
	authService.SetupRoutes(app)
	adService.SetupRoutes(app)
	proposalService.SetupRoutes(app)
	uploadService.SetupRoutes(app)

	// Запускаем сервер
	log.Printf("✅ Obmenka API запущен на порту %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
