package ad

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/obmenka/obmenka-api/internal/auth"
	"github.com/obmenka/obmenka-api/internal/config"
	"github.com/obmenka/obmenka-api/internal/db"
	"github.com/obmenka/obmenka-api/internal/models"
	"github.com/obmenka/obmenka-api/internal/repository"
	"github.com/obmenka/obmenka-api/internal/utils"
)

// ImageDestroyer удаляет загруженное изображение из внешнего хранилища
type ImageDestroyer interface {
	Destroy(ctx context.Context, publicID string) error
}

// AdService представляет сервис для работы с объявлениями
type AdService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	ads        repository.AdRepository
	images     ImageDestroyer // может быть nil, если Cloudinary не настроен
}

// NewAdService создает новый экземпляр AdService
func NewAdService(cfg *config.Config, ads repository.AdRepository, images ImageDestroyer) *AdService {
	return &AdService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		ads:        ads,
		images:     images,
	}
}

// adRequest описывает тело запроса создания и обновления объявления
type adRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Condition     string `json:"condition"`
	ImageURL      string `json:"image_url"`
	ImagePublicID string `json:"image_public_id"`
}

// CreateAd обрабатывает создание нового объявления
func (s *AdService) CreateAd(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData adRequest
	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	// Валидация обязательных полей
	if requestData.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Название обязательно"})
	}
	if requestData.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Укажите категорию"})
	}
	if !models.IsValidCondition(requestData.Condition) {
		requestData.Condition = models.ConditionNew // По умолчанию - новое
	}

	ad := models.Ad{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         requestData.Title,
		Description:   requestData.Description,
		Category:      requestData.Category,
		Condition:     requestData.Condition,
		ImageURL:      requestData.ImageURL,
		ImagePublicID: requestData.ImagePublicID,
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if err := s.ads.Create(ctx, &ad); err != nil {
		log.Printf("Ошибка создания объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения объявления"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"ad_id":   ad.ID,
		"message": "Объявление успешно создано",
	})
}

// GetAds возвращает публичный список объявлений с фильтрацией и пагинацией
func (s *AdService) GetAds(c fiber.Ctx) error {
	filter := repository.AdFilter{
		Query:     c.Query("q"),
		Category:  c.Query("category"),
		Condition: c.Query("condition"),
	}
	page := utils.ParsePage(c.Query("page", "1"))

	ctx, cancel := db.GetContext()
	defer cancel()

	total, err := s.ads.Count(ctx, filter)
	if err != nil {
		log.Printf("Ошибка подсчета объявлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявлений"})
	}

	// Страница за пределами последней возвращает последнюю
	page, totalPages := utils.ClampPage(page, total, s.cfg.AdsPageSize)
	filter.Limit = s.cfg.AdsPageSize
	filter.Offset = (page - 1) * s.cfg.AdsPageSize

	ads, err := s.ads.List(ctx, filter)
	if err != nil {
		log.Printf("Ошибка запроса объявлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявлений"})
	}
	if ads == nil {
		ads = []models.Ad{}
	}

	return c.JSON(fiber.Map{
		"ads":         ads,
		"total":       total,
		"page":        page,
		"total_pages": totalPages,
		"page_size":   s.cfg.AdsPageSize,
	})
}

// GetAd возвращает детальную информацию об объявлении
func (s *AdService) GetAd(c fiber.Ctx) error {
	adID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	userID, _ := uuid.Parse(c.Locals("userID").(string))

	ctx, cancel := db.GetContext()
	defer cancel()

	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		if err == repository.ErrAdNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	return c.JSON(fiber.Map{
		"ad":       ad,
		"is_owner": ad.UserID == userID,
	})
}

// UpdateAd обновляет существующее объявление
func (s *AdService) UpdateAd(c fiber.Ctx) error {
	adID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData adRequest
	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Название обязательно"})
	}
	if requestData.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Укажите категорию"})
	}
	if !models.IsValidCondition(requestData.Condition) {
		requestData.Condition = models.ConditionNew
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		if err == repository.ErrAdNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	// Проверка, что пользователь является владельцем объявления
	if !auth.CanModifyAd(userID, ad) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет прав на редактирование этого объявления"})
	}

	// При замене изображения удаляем старое из Cloudinary
	oldPublicID := ad.ImagePublicID
	if oldPublicID != "" && oldPublicID != requestData.ImagePublicID {
		s.destroyImage(oldPublicID)
	}

	ad.Title = requestData.Title
	ad.Description = requestData.Description
	ad.Category = requestData.Category
	ad.Condition = requestData.Condition
	ad.ImageURL = requestData.ImageURL
	ad.ImagePublicID = requestData.ImagePublicID

	if err := s.ads.Update(ctx, ad); err != nil {
		log.Printf("Ошибка обновления объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления объявления"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"ad_id":   ad.ID,
		"message": "Объявление успешно обновлено",
	})
}

// DeleteAd удаляет объявление вместе со связанными предложениями обмена
func (s *AdService) DeleteAd(c fiber.Ctx) error {
	adID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		if err == repository.ErrAdNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	if !auth.CanModifyAd(userID, ad) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет прав на удаление этого объявления"})
	}

	if err := s.ads.Delete(ctx, adID); err != nil {
		log.Printf("Ошибка удаления объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления объявления"})
	}

	if ad.ImagePublicID != "" {
		s.destroyImage(ad.ImagePublicID)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Объявление успешно удалено",
	})
}

// destroyImage удаляет изображение из Cloudinary.
// Ошибка не прерывает запрос: запись уже изменена.
func (s *AdService) destroyImage(publicID string) {
	if s.images == nil {
		return
	}
	ctx, cancel := db.GetContext()
	defer cancel()

	if err := s.images.Destroy(ctx, publicID); err != nil {
		log.Printf("Ошибка удаления изображения %s: %v", publicID, err)
	}
}
