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

// PostgresAdRepository реализует AdRepository поверх PostgreSQL
type PostgresAdRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAdRepository создает новый экземпляр PostgresAdRepository
func NewPostgresAdRepository(pool *pgxpool.Pool) *PostgresAdRepository {
	return &PostgresAdRepository{pool: pool}
}

// Create сохраняет новое объявление
func (r *PostgresAdRepository) Create(ctx context.Context, ad *models.Ad) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO ads (id, user_id, title, description, image_url, image_public_id, category, condition)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, ad.ID, ad.UserID, ad.Title, ad.Description, ad.ImageURL, ad.ImagePublicID,
		ad.Category, ad.Condition).Scan(&ad.CreatedAt, &ad.UpdatedAt)

	if err != nil {
		return fmt.Errorf("ошибка вставки объявления: %w", err)
	}
	return nil
}

// GetByID возвращает объявление по идентификатору
func (r *PostgresAdRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Ad, error) {
	var ad models.Ad
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, image_url, image_public_id, category, condition, created_at, updated_at
		FROM ads
		WHERE id = $1
	`, id).Scan(
		&ad.ID,
		&ad.UserID,
		&ad.Title,
		&ad.Description,
		&ad.ImageURL,
		&ad.ImagePublicID,
		&ad.Category,
		&ad.Condition,
		&ad.CreatedAt,
		&ad.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdNotFound
		}
		return nil, fmt.Errorf("ошибка запроса объявления: %w", err)
	}
	return &ad, nil
}

// Update обновляет объявление. Владелец объявления не меняется.
func (r *PostgresAdRepository) Update(ctx context.Context, ad *models.Ad) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE ads
		SET title = $1, description = $2, image_url = $3, image_public_id = $4,
		    category = $5, condition = $6, updated_at = NOW()
		WHERE id = $7
	`, ad.Title, ad.Description, ad.ImageURL, ad.ImagePublicID, ad.Category, ad.Condition, ad.ID)

	if err != nil {
		return fmt.Errorf("ошибка обновления объявления: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAdNotFound
	}
	return nil
}

// Delete удаляет объявление вместе со связанными предложениями обмена
func (r *PostgresAdRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Сначала удаляем предложения, где объявление участвует с любой стороны
	_, err = tx.Exec(ctx, `
		DELETE FROM exchange_proposals
		WHERE ad_sender_id = $1 OR ad_receiver_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления предложений обмена: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM ads WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("ошибка удаления объявления: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAdNotFound
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// List возвращает объявления по фильтру в порядке создания
func (r *PostgresAdRepository) List(ctx context.Context, filter AdFilter) ([]models.Ad, error) {
	where, args := buildAdWhere(filter)

	query := `
		SELECT id, user_id, title, description, image_url, image_public_id, category, condition, created_at, updated_at
		FROM ads
	` + where + fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса объявлений: %w", err)
	}
	defer rows.Close()

	var ads []models.Ad
	for rows.Next() {
		var ad models.Ad
		if err := rows.Scan(
			&ad.ID,
			&ad.UserID,
			&ad.Title,
			&ad.Description,
			&ad.ImageURL,
			&ad.ImagePublicID,
			&ad.Category,
			&ad.Condition,
			&ad.CreatedAt,
			&ad.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}

// Count возвращает общее число объявлений по фильтру
func (r *PostgresAdRepository) Count(ctx context.Context, filter AdFilter) (int, error) {
	where, args := buildAdWhere(filter)

	var total int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ads"+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета объявлений: %w", err)
	}
	return total, nil
}

// buildAdWhere собирает условие WHERE по заполненным полям фильтра
func buildAdWhere(filter AdFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Condition != "" {
		args = append(args, filter.Condition)
		conds = append(conds, fmt.Sprintf("condition = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
