package proposal

import (
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

// ProposalService представляет сервис для работы с предложениями обмена
type ProposalService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	ads        repository.AdRepository
	proposals  repository.ProposalRepository
}

// NewProposalService создает новый экземпляр ProposalService
func NewProposalService(cfg *config.Config, ads repository.AdRepository, proposals repository.ProposalRepository) *ProposalService {
	return &ProposalService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		ads:        ads,
		proposals:  proposals,
	}
}

// CreateProposal создает предложение обмена на объявление из URL
func (s *ProposalService) CreateProposal(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	adReceiverID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	var requestData struct {
		SenderAdID string `json:"sender_ad_id"`
		Comment    string `json:"comment"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.Comment == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Напишите комментарий к предложению обмена"})
	}

	adSenderID, err := uuid.Parse(requestData.SenderAdID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления отправителя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	adReceiver, err := s.ads.GetByID(ctx, adReceiverID)
	if err != nil {
		if err == repository.ErrAdNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление получателя не найдено"})
		}
		log.Printf("Ошибка запроса объявления получателя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки объявления"})
	}

	adSender, err := s.ads.GetByID(ctx, adSenderID)
	if err != nil {
		if err == repository.ErrAdNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление отправителя не найдено"})
		}
		log.Printf("Ошибка запроса объявления отправителя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки объявления"})
	}

	// Предложить к обмену можно только свое объявление
	if adSender.UserID != userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Можно предложить к обмену только свое объявление"})
	}

	// Обмен между объявлениями одного владельца запрещен
	if adReceiver.UserID == adSender.UserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя предложить обмен самому себе"})
	}

	proposal := models.ExchangeProposal{
		ID:           uuid.New(),
		AdSenderID:   adSender.ID,
		AdReceiverID: adReceiver.ID,
		SenderID:     adSender.UserID,
		ReceiverID:   adReceiver.UserID,
		Comment:      requestData.Comment,
		Status:       models.ProposalStatusAwaits,
	}

	if err := s.proposals.Create(ctx, &proposal); err != nil {
		log.Printf("Ошибка создания предложения обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения предложения обмена"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"proposal_id": proposal.ID,
		"message":     "Предложение обмена успешно создано",
	})
}

// GetMyProposals возвращает предложения обмена с участием пользователя
func (s *ProposalService) GetMyProposals(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	filter := repository.ProposalFilter{ParticipantID: userID}

	// Дополнительные фильтры по отправителю, получателю и статусу
	if sender := c.Query("sender"); sender != "" {
		senderID, err := uuid.Parse(sender)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID отправителя"})
		}
		filter.SenderID = senderID
	}
	if receiver := c.Query("receiver"); receiver != "" {
		receiverID, err := uuid.Parse(receiver)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID получателя"})
		}
		filter.ReceiverID = receiverID
	}
	if status := c.Query("status"); status != "" {
		if !models.IsValidProposalStatus(status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус предложения обмена"})
		}
		filter.Status = status
	}

	page := utils.ParsePage(c.Query("page", "1"))

	ctx, cancel := db.GetContext()
	defer cancel()

	total, err := s.proposals.Count(ctx, filter)
	if err != nil {
		log.Printf("Ошибка подсчета предложений обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложений обмена"})
	}

	page, totalPages := utils.ClampPage(page, total, s.cfg.ProposalsPageSize)
	filter.Limit = s.cfg.ProposalsPageSize
	filter.Offset = (page - 1) * s.cfg.ProposalsPageSize

	proposals, err := s.proposals.List(ctx, filter)
	if err != nil {
		log.Printf("Ошибка запроса предложений обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложений обмена"})
	}
	if proposals == nil {
		proposals = []models.ExchangeProposal{}
	}

	return c.JSON(fiber.Map{
		"proposals":   proposals,
		"total":       total,
		"page":        page,
		"total_pages": totalPages,
		"page_size":   s.cfg.ProposalsPageSize,
	})
}

// GetProposal возвращает детальную информацию о предложении обмена
func (s *ProposalService) GetProposal(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения обмена"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		if err == repository.ErrProposalNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение обмена не найдено"})
		}
		log.Printf("Ошибка запроса предложения обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложения обмена"})
	}

	// Детали видят только участники предложения
	if !auth.IsProposalParticipant(userID, proposal) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Доступ запрещен"})
	}

	// Подгружаем объявления с обеих сторон
	if adSender, err := s.ads.GetByID(ctx, proposal.AdSenderID); err == nil {
		proposal.AdSender = adSender
	}
	if adReceiver, err := s.ads.GetByID(ctx, proposal.AdReceiverID); err == nil {
		proposal.AdReceiver = adReceiver
	}

	return c.JSON(fiber.Map{"proposal": proposal})
}

// AcceptProposal принимает предложение обмена
func (s *ProposalService) AcceptProposal(c fiber.Ctx) error {
	return s.respond(c, models.ProposalStatusTaken)
}

// RejectProposal отклоняет предложение обмена
func (s *ProposalService) RejectProposal(c fiber.Ctx) error {
	return s.respond(c, models.ProposalStatusRejected)
}

// respond переводит предложение в конечный статус от имени получателя
func (s *ProposalService) respond(c fiber.Ctx, target string) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения обмена"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		if err == repository.ErrProposalNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение обмена не найдено"})
		}
		log.Printf("Ошибка запроса предложения обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложения обмена"})
	}

	// Принять или отклонить предложение может только получатель
	if !auth.CanRespondToProposal(userID, proposal) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Только получатель предложения может его принять или отклонить"})
	}

	// Конечный статус не меняется
	if !models.CanTransition(proposal.Status, target) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Нельзя изменить статус предложения, которое уже не находится в ожидании",
		})
	}

	if err := s.proposals.UpdateStatus(ctx, proposalID, target); err != nil {
		log.Printf("Ошибка обновления статуса предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления статуса предложения"})
	}

	message := "Предложение обмена принято"
	if target == models.ProposalStatusRejected {
		message = "Предложение обмена отклонено"
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"proposal_id": proposalID,
		"status":      target,
		"message":     message,
	})
}
