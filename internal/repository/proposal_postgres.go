package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obmenka/obmenka-api/internal/models"
)

// PostgresProposalRepository реализует ProposalRepository поверх PostgreSQL
type PostgresProposalRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProposalRepository создает новый экземпляр PostgresProposalRepository
func NewPostgresProposalRepository(pool *pgxpool.Pool) *PostgresProposalRepository {
	return &PostgresProposalRepository{pool: pool}
}

// Create сохраняет новое предложение обмена
func (r *PostgresProposalRepository) Create(ctx context.Context, proposal *models.ExchangeProposal) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO exchange_proposals (id, ad_sender_id, ad_receiver_id, sender_id, receiver_id, comment, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, proposal.ID, proposal.AdSenderID, proposal.AdReceiverID, proposal.SenderID,
		proposal.ReceiverID, proposal.Comment, proposal.Status).Scan(&proposal.CreatedAt, &proposal.UpdatedAt)

	if err != nil {
		return fmt.Errorf("ошибка вставки предложения обмена: %w", err)
	}
	return nil
}

// GetByID возвращает предложение обмена по идентификатору
func (r *PostgresProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExchangeProposal, error) {
	var proposal models.ExchangeProposal
	err := r.pool.QueryRow(ctx, `
		SELECT id, ad_sender_id, ad_receiver_id, sender_id, receiver_id, comment, status, created_at, updated_at
		FROM exchange_proposals
		WHERE id = $1
	`, id).Scan(
		&proposal.ID,
		&proposal.AdSenderID,
		&proposal.AdReceiverID,
		&proposal.SenderID,
		&proposal.ReceiverID,
		&proposal.Comment,
		&proposal.Status,
		&proposal.CreatedAt,
		&proposal.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("ошибка запроса предложения обмена: %w", err)
	}
	return &proposal, nil
}

// UpdateStatus записывает новый статус предложения
func (r *PostgresProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE exchange_proposals
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)

	if err != nil {
		return fmt.Errorf("ошибка обновления статуса предложения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProposalNotFound
	}
	return nil
}

// List возвращает предложения обмена по фильтру, сначала новые
func (r *PostgresProposalRepository) List(ctx context.Context, filter ProposalFilter) ([]models.ExchangeProposal, error) {
	where, args := buildProposalWhere(filter)

	query := `
		SELECT id, ad_sender_id, ad_receiver_id, sender_id, receiver_id, comment, status, created_at, updated_at
		FROM exchange_proposals
	` + where + fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса предложений обмена: %w", err)
	}
	defer rows.Close()

	var proposals []models.ExchangeProposal
	for rows.Next() {
		var proposal models.ExchangeProposal
		if err := rows.Scan(
			&proposal.ID,
			&proposal.AdSenderID,
			&proposal.AdReceiverID,
			&proposal.SenderID,
			&proposal.ReceiverID,
			&proposal.Comment,
			&proposal.Status,
			&proposal.CreatedAt,
			&proposal.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		proposals = append(proposals, proposal)
	}
	return proposals, rows.Err()
}

// Count возвращает общее число предложений по фильтру
func (r *PostgresProposalRepository) Count(ctx context.Context, filter ProposalFilter) (int, error) {
	where, args := buildProposalWhere(filter)

	var total int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM exchange_proposals"+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета предложений обмена: %w", err)
	}
	return total, nil
}

// buildProposalWhere собирает условие WHERE по заполненным полям фильтра.
// Ограничение по участнику присутствует всегда.
func buildProposalWhere(filter ProposalFilter) (string, []interface{}) {
	args := []interface{}{filter.ParticipantID}
	conds := []string{"(sender_id = $1 OR receiver_id = $1)"}

	if filter.SenderID != uuid.Nil {
		args = append(args, filter.SenderID)
		conds = append(conds, fmt.Sprintf("sender_id = $%d", len(args)))
	}
	if filter.ReceiverID != uuid.Nil {
		args = append(args, filter.ReceiverID)
		conds = append(conds, fmt.Sprintf("receiver_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}
