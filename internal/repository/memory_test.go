package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/obmenka/obmenka-api/internal/models"
)

func seedAd(t *testing.T, store *MemoryStore, userID uuid.UUID, title, category, condition string) *models.Ad {
	t.Helper()
	ad := &models.Ad{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Category:  category,
		Condition: condition,
	}
	require.NoError(t, store.Create(context.Background(), ad))
	return ad
}

func TestMemoryStore_AdFilters(t *testing.T) {
	store := NewMemoryStore()
	user := uuid.New()
	ctx := context.Background()

	bike := seedAd(t, store, user, "Горный велосипед", "Спорт", models.ConditionUsed)
	bike.Description = "Отличный Trek для гор"
	require.NoError(t, store.Update(ctx, bike))
	seedAd(t, store, user, "Книга по Go", "Книги", models.ConditionNew)
	seedAd(t, store, user, "Шлем велосипедный", "Спорт", models.ConditionNew)

	tests := []struct {
		name     string
		filter   AdFilter
		expected []string
	}{
		{
			name:     "no_filters",
			filter:   AdFilter{Limit: 10},
			expected: []string{"Горный велосипед", "Книга по Go", "Шлем велосипедный"},
		},
		{
			name:     "query_case_insensitive",
			filter:   AdFilter{Query: "ВЕЛОСИПЕД", Limit: 10},
			expected: []string{"Горный велосипед", "Шлем велосипедный"},
		},
		{
			name:     "query_matches_description",
			filter:   AdFilter{Query: "trek", Limit: 10},
			expected: []string{"Горный велосипед"},
		},
		{
			name:     "category_exact",
			filter:   AdFilter{Category: "Спорт", Limit: 10},
			expected: []string{"Горный велосипед", "Шлем велосипедный"},
		},
		{
			name:     "filters_are_anded",
			filter:   AdFilter{Category: "Спорт", Condition: models.ConditionNew, Limit: 10},
			expected: []string{"Шлем велосипедный"},
		},
		{
			name:     "no_match",
			filter:   AdFilter{Category: "Электроника", Limit: 10},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ads, err := store.List(ctx, tt.filter)
			require.NoError(t, err)

			var titles []string
			for _, ad := range ads {
				titles = append(titles, ad.Title)
			}
			require.Equal(t, tt.expected, titles)

			total, err := store.Count(ctx, tt.filter)
			require.NoError(t, err)
			require.Equal(t, len(tt.expected), total)
		})
	}
}

func TestMemoryStore_DeleteCascadesProposals(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	u1, u2, u3 := uuid.New(), uuid.New(), uuid.New()

	adA := seedAd(t, store, u1, "A", "Спорт", models.ConditionNew)
	adB := seedAd(t, store, u2, "B", "Книги", models.ConditionNew)
	adC := seedAd(t, store, u3, "C", "Книги", models.ConditionNew)

	// adA участвует как отправляемое и как получаемое
	asSender := &models.ExchangeProposal{
		ID: uuid.New(), AdSenderID: adA.ID, AdReceiverID: adB.ID,
		SenderID: u1, ReceiverID: u2, Comment: "обмен?", Status: models.ProposalStatusAwaits,
	}
	asReceiver := &models.ExchangeProposal{
		ID: uuid.New(), AdSenderID: adC.ID, AdReceiverID: adA.ID,
		SenderID: u3, ReceiverID: u1, Comment: "обмен?", Status: models.ProposalStatusAwaits,
	}
	unrelated := &models.ExchangeProposal{
		ID: uuid.New(), AdSenderID: adC.ID, AdReceiverID: adB.ID,
		SenderID: u3, ReceiverID: u2, Comment: "обмен?", Status: models.ProposalStatusAwaits,
	}
	require.NoError(t, store.CreateProposal(ctx, asSender))
	require.NoError(t, store.CreateProposal(ctx, asReceiver))
	require.NoError(t, store.CreateProposal(ctx, unrelated))

	require.NoError(t, store.Delete(ctx, adA.ID))

	_, err := store.GetByID(ctx, adA.ID)
	require.ErrorIs(t, err, ErrAdNotFound)
	_, err = store.GetProposalByID(ctx, asSender.ID)
	require.ErrorIs(t, err, ErrProposalNotFound)
	_, err = store.GetProposalByID(ctx, asReceiver.ID)
	require.ErrorIs(t, err, ErrProposalNotFound)

	// Предложение без участия adA остается
	_, err = store.GetProposalByID(ctx, unrelated.ID)
	require.NoError(t, err)
}

func TestMemoryStore_ProposalParticipantRestriction(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	u1, u2, outsider := uuid.New(), uuid.New(), uuid.New()

	adA := seedAd(t, store, u1, "A", "Спорт", models.ConditionNew)
	adB := seedAd(t, store, u2, "B", "Книги", models.ConditionNew)

	proposal := &models.ExchangeProposal{
		ID: uuid.New(), AdSenderID: adA.ID, AdReceiverID: adB.ID,
		SenderID: u1, ReceiverID: u2, Comment: "обмен?", Status: models.ProposalStatusAwaits,
	}
	require.NoError(t, store.CreateProposal(ctx, proposal))

	// Участники видят предложение
	for _, participant := range []uuid.UUID{u1, u2} {
		proposals, err := store.ListProposals(ctx, ProposalFilter{ParticipantID: participant, Limit: 10})
		require.NoError(t, err)
		require.Len(t, proposals, 1)
	}

	// Посторонний — нет
	proposals, err := store.ListProposals(ctx, ProposalFilter{ParticipantID: outsider, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, proposals)

	// Фильтр по статусу
	proposals, err = store.ListProposals(ctx, ProposalFilter{
		ParticipantID: u2, Status: models.ProposalStatusTaken, Limit: 10,
	})
	require.NoError(t, err)
	require.Empty(t, proposals)

	require.NoError(t, store.UpdateProposalStatus(ctx, proposal.ID, models.ProposalStatusTaken))
	proposals, err = store.ListProposals(ctx, ProposalFilter{
		ParticipantID: u2, Status: models.ProposalStatusTaken, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, proposals, 1)
}
