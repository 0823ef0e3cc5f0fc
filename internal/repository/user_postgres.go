package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obmenka/obmenka-api/internal/models"
)

// PostgresUserRepository реализует UserRepository поверх PostgreSQL
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository создает новый экземпляр PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// UpsertTelegramUser создает пользователя при первом входе через Telegram
// или обновляет его профиль и время последнего входа
func (r *PostgresUserRepository) UpsertTelegramUser(ctx context.Context, profile models.TelegramProfile) (*models.User, error) {
	var user models.User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, telegram_id, username, first_name, last_name, avatar_url, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    avatar_url = EXCLUDED.avatar_url,
		    last_login_at = NOW()
		RETURNING id, telegram_id, username, first_name, last_name, avatar_url, created_at, last_login_at
	`, uuid.New(), profile.TelegramID, profile.Username, profile.FirstName,
		profile.LastName, profile.PhotoURL).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.LastLoginAt,
	)

	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения пользователя: %w", err)
	}
	return &user, nil
}

// GetByID возвращает пользователя по идентификатору
func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, telegram_id, username, first_name, last_name, avatar_url, created_at, last_login_at
		FROM users
		WHERE id = $1
	`, id).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.LastLoginAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка запроса пользователя: %w", err)
	}
	return &user, nil
}
