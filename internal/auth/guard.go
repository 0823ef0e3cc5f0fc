package auth

import (
	"github.com/google/uuid"

	"github.com/obmenka/obmenka-api/internal/models"
)

// Проверки прав доступа к ресурсам. Каждый обработчик вызывает их явно
// перед изменением объявления или ответом на предложение обмена.

// CanModifyAd сообщает, может ли пользователь редактировать или удалять объявление.
// Право есть только у владельца.
func CanModifyAd(userID uuid.UUID, ad *models.Ad) bool {
	if ad == nil || userID == uuid.Nil {
		return false
	}
	return ad.UserID == userID
}

// CanRespondToProposal сообщает, может ли пользователь принять или отклонить
// предложение обмена. Право есть только у владельца объявления-получателя.
func CanRespondToProposal(userID uuid.UUID, proposal *models.ExchangeProposal) bool {
	if proposal == nil || userID == uuid.Nil {
		return false
	}
	return proposal.ReceiverID == userID
}

// IsProposalParticipant сообщает, является ли пользователь участником
// предложения обмена — отправителем или получателем.
func IsProposalParticipant(userID uuid.UUID, proposal *models.ExchangeProposal) bool {
	if proposal == nil || userID == uuid.Nil {
		return false
	}
	return proposal.SenderID == userID || proposal.ReceiverID == userID
}
