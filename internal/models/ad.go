package models

import (
	"time"

	"github.com/google/uuid"
)

// Состояния товара в объявлении
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// Ad представляет объявление об обмене
type Ad struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url,omitempty"`
	ImagePublicID string    `json:"image_public_id,omitempty"`
	Category      string    `json:"category"`
	Condition     string    `json:"condition"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsValidCondition проверяет допустимость состояния товара
func IsValidCondition(condition string) bool {
	return condition == ConditionNew || condition == ConditionUsed
}
