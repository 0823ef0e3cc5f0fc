package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/obmenka/obmenka-api/internal/models"
)

// MemoryStore — потокобезопасное хранилище в памяти, реализующее
// AdRepository, ProposalRepository и UserRepository. Используется в тестах
// вместо PostgreSQL; семантика фильтров и порядок выборки совпадают.
type MemoryStore struct {
	mu            sync.RWMutex
	ads           map[uuid.UUID]models.Ad
	adOrder       []uuid.UUID
	proposals     map[uuid.UUID]models.ExchangeProposal
	proposalOrder []uuid.UUID
	users         map[uuid.UUID]models.User
}

// NewMemoryStore создает новое хранилище в памяти
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ads:       make(map[uuid.UUID]models.Ad),
		proposals: make(map[uuid.UUID]models.ExchangeProposal),
		users:     make(map[uuid.UUID]models.User),
	}
}

// Create сохраняет новое объявление
func (s *MemoryStore) Create(ctx context.Context, ad *models.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	ad.CreatedAt = now
	ad.UpdatedAt = now
	s.ads[ad.ID] = *ad
	s.adOrder = append(s.adOrder, ad.ID)
	return nil
}

// GetByID возвращает объявление по идентификатору
func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Ad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ad, ok := s.ads[id]
	if !ok {
		return nil, ErrAdNotFound
	}
	return &ad, nil
}

// Update обновляет объявление
func (s *MemoryStore) Update(ctx context.Context, ad *models.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.ads[ad.ID]
	if !ok {
		return ErrAdNotFound
	}
	ad.CreatedAt = stored.CreatedAt
	ad.UpdatedAt = time.Now()
	s.ads[ad.ID] = *ad
	return nil
}

// Delete удаляет объявление вместе со связанными предложениями обмена
func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ads[id]; !ok {
		return ErrAdNotFound
	}
	delete(s.ads, id)
	s.adOrder = removeID(s.adOrder, id)

	// Каскадное удаление предложений с участием объявления
	for pid, proposal := range s.proposals {
		if proposal.AdSenderID == id || proposal.AdReceiverID == id {
			delete(s.proposals, pid)
			s.proposalOrder = removeID(s.proposalOrder, pid)
		}
	}
	return nil
}

// List возвращает объявления по фильтру в порядке создания
func (s *MemoryStore) List(ctx context.Context, filter AdFilter) ([]models.Ad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Ad
	for _, id := range s.adOrder {
		ad := s.ads[id]
		if matchAd(ad, filter) {
			matched = append(matched, ad)
		}
	}
	return slicePage(matched, filter.Limit, filter.Offset), nil
}

// Count возвращает общее число объявлений по фильтру
func (s *MemoryStore) Count(ctx context.Context, filter AdFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, ad := range s.ads {
		if matchAd(ad, filter) {
			total++
		}
	}
	return total, nil
}

// CreateProposal сохраняет новое предложение обмена
func (s *MemoryStore) CreateProposal(ctx context.Context, proposal *models.ExchangeProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	proposal.CreatedAt = now
	proposal.UpdatedAt = now
	s.proposals[proposal.ID] = *proposal
	s.proposalOrder = append(s.proposalOrder, proposal.ID)
	return nil
}

// GetProposalByID возвращает предложение обмена по идентификатору
func (s *MemoryStore) GetProposalByID(ctx context.Context, id uuid.UUID) (*models.ExchangeProposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proposal, ok := s.proposals[id]
	if !ok {
		return nil, ErrProposalNotFound
	}
	return &proposal, nil
}

// UpdateProposalStatus записывает новый статус предложения
func (s *MemoryStore) UpdateProposalStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, ok := s.proposals[id]
	if !ok {
		return ErrProposalNotFound
	}
	proposal.Status = status
	proposal.UpdatedAt = time.Now()
	s.proposals[id] = proposal
	return nil
}

// ListProposals возвращает предложения обмена по фильтру, сначала новые
func (s *MemoryStore) ListProposals(ctx context.Context, filter ProposalFilter) ([]models.ExchangeProposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.ExchangeProposal
	for i := len(s.proposalOrder) - 1; i >= 0; i-- {
		proposal := s.proposals[s.proposalOrder[i]]
		if matchProposal(proposal, filter) {
			matched = append(matched, proposal)
		}
	}
	return slicePage(matched, filter.Limit, filter.Offset), nil
}

// CountProposals возвращает общее число предложений по фильтру
func (s *MemoryStore) CountProposals(ctx context.Context, filter ProposalFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, proposal := range s.proposals {
		if matchProposal(proposal, filter) {
			total++
		}
	}
	return total, nil
}

// UpsertTelegramUser создает или обновляет пользователя по Telegram-профилю
func (s *MemoryStore) UpsertTelegramUser(ctx context.Context, profile models.TelegramProfile) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, user := range s.users {
		if user.TelegramID == profile.TelegramID {
			user.Username = profile.Username
			user.FirstName = profile.FirstName
			user.LastName = profile.LastName
			user.AvatarURL = profile.PhotoURL
			user.LastLoginAt = now
			s.users[id] = user
			return &user, nil
		}
	}

	user := models.User{
		ID:          uuid.New(),
		TelegramID:  profile.TelegramID,
		Username:    profile.Username,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		AvatarURL:   profile.PhotoURL,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	s.users[user.ID] = user
	return &user, nil
}

// GetUserByID возвращает пользователя по идентификатору
func (s *MemoryStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// MemoryProposalRepository адаптирует MemoryStore к интерфейсу ProposalRepository
type MemoryProposalRepository struct {
	store *MemoryStore
}

// ProposalRepo возвращает представление хранилища как ProposalRepository
func (s *MemoryStore) ProposalRepo() *MemoryProposalRepository {
	return &MemoryProposalRepository{store: s}
}

func (r *MemoryProposalRepository) Create(ctx context.Context, proposal *models.ExchangeProposal) error {
	return r.store.CreateProposal(ctx, proposal)
}

func (r *MemoryProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExchangeProposal, error) {
	return r.store.GetProposalByID(ctx, id)
}

func (r *MemoryProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.store.UpdateProposalStatus(ctx, id, status)
}

func (r *MemoryProposalRepository) List(ctx context.Context, filter ProposalFilter) ([]models.ExchangeProposal, error) {
	return r.store.ListProposals(ctx, filter)
}

func (r *MemoryProposalRepository) Count(ctx context.Context, filter ProposalFilter) (int, error) {
	return r.store.CountProposals(ctx, filter)
}

// MemoryUserRepository адаптирует MemoryStore к интерфейсу UserRepository
type MemoryUserRepository struct {
	store *MemoryStore
}

// UserRepo возвращает представление хранилища как UserRepository
func (s *MemoryStore) UserRepo() *MemoryUserRepository {
	return &MemoryUserRepository{store: s}
}

func (r *MemoryUserRepository) UpsertTelegramUser(ctx context.Context, profile models.TelegramProfile) (*models.User, error) {
	return r.store.UpsertTelegramUser(ctx, profile)
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.store.GetUserByID(ctx, id)
}

func matchAd(ad models.Ad, filter AdFilter) bool {
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		if !strings.Contains(strings.ToLower(ad.Title), q) &&
			!strings.Contains(strings.ToLower(ad.Description), q) {
			return false
		}
	}
	if filter.Category != "" && ad.Category != filter.Category {
		return false
	}
	if filter.Condition != "" && ad.Condition != filter.Condition {
		return false
	}
	return true
}

func matchProposal(proposal models.ExchangeProposal, filter ProposalFilter) bool {
	if proposal.SenderID != filter.ParticipantID && proposal.ReceiverID != filter.ParticipantID {
		return false
	}
	if filter.SenderID != uuid.Nil && proposal.SenderID != filter.SenderID {
		return false
	}
	if filter.ReceiverID != uuid.Nil && proposal.ReceiverID != filter.ReceiverID {
		return false
	}
	if filter.Status != "" && proposal.Status != filter.Status {
		return false
	}
	return true
}

func slicePage[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
