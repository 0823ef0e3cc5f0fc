package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы предложения обмена
const (
	ProposalStatusAwaits   = "awaits"   // ожидает ответа получателя
	ProposalStatusTaken    = "taken"    // принято
	ProposalStatusRejected = "rejected" // отклонено
)

// ExchangeProposal представляет предложение обмена между двумя объявлениями.
// SenderID и ReceiverID дублируют владельцев объявлений, чтобы проверять
// права и фильтровать списки без дополнительных запросов.
type ExchangeProposal struct {
	ID           uuid.UUID `json:"id"`
	AdSenderID   uuid.UUID `json:"ad_sender_id"`
	AdReceiverID uuid.UUID `json:"ad_receiver_id"`
	SenderID     uuid.UUID `json:"sender_id"`
	ReceiverID   uuid.UUID `json:"receiver_id"`
	Comment      string    `json:"comment"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Дополнительные поля для API
	AdSender   *Ad `json:"ad_sender,omitempty"`
	AdReceiver *Ad `json:"ad_receiver,omitempty"`
}

// IsValidProposalStatus проверяет допустимость статуса предложения
func IsValidProposalStatus(status string) bool {
	return status == ProposalStatusAwaits ||
		status == ProposalStatusTaken ||
		status == ProposalStatusRejected
}

// CanTransition сообщает, допустим ли переход статуса предложения.
// Менять статус можно только из awaits; taken и rejected — конечные.
func CanTransition(from, to string) bool {
	if from != ProposalStatusAwaits {
		return false
	}
	return to == ProposalStatusTaken || to == ProposalStatusRejected
}
