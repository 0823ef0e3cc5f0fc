package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/obmenka/obmenka-api/internal/models"
)

// Ошибки уровня хранилища
var (
	ErrAdNotFound       = errors.New("объявление не найдено")
	ErrProposalNotFound = errors.New("предложение обмена не найдено")
	ErrUserNotFound     = errors.New("пользователь не найден")
)

// AdFilter задает условия выборки объявлений.
// Пустые поля не участвуют в фильтрации.
type AdFilter struct {
	Query     string // подстрока в названии или описании, без учета регистра
	Category  string // точное совпадение
	Condition string // точное совпадение
	Limit     int
	Offset    int
}

// ProposalFilter задает условия выборки предложений обмена.
// ParticipantID обязателен: выборка всегда ограничена предложениями,
// где пользователь является отправителем или получателем.
type ProposalFilter struct {
	ParticipantID uuid.UUID
	SenderID      uuid.UUID // uuid.Nil — не фильтровать
	ReceiverID    uuid.UUID // uuid.Nil — не фильтровать
	Status        string
	Limit         int
	Offset        int
}

// AdRepository описывает хранилище объявлений
type AdRepository interface {
	Create(ctx context.Context, ad *models.Ad) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Ad, error)
	Update(ctx context.Context, ad *models.Ad) error
	// Delete удаляет объявление вместе со всеми предложениями обмена,
	// где оно участвует как отправляемое или получаемое
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter AdFilter) ([]models.Ad, error)
	Count(ctx context.Context, filter AdFilter) (int, error)
}

// ProposalRepository описывает хранилище предложений обмена
type ProposalRepository interface {
	Create(ctx context.Context, proposal *models.ExchangeProposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ExchangeProposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, filter ProposalFilter) ([]models.ExchangeProposal, error)
	Count(ctx context.Context, filter ProposalFilter) (int, error)
}

// UserRepository описывает хранилище пользователей
type UserRepository interface {
	UpsertTelegramUser(ctx context.Context, profile models.TelegramProfile) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
