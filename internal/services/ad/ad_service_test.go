package ad

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/obmenka/obmenka-api/internal/config"
	"github.com/obmenka/obmenka-api/internal/models"
	"github.com/obmenka/obmenka-api/internal/repository"
	"github.com/obmenka/obmenka-api/internal/utils"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, *repository.MemoryStore) {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret, AdsPageSize: 10, ProposalsPageSize: 5}
	store := repository.NewMemoryStore()
	app := fiber.New()
	NewAdService(cfg, store, nil).SetupRoutes(app)
	return app, store
}

func bearerToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := utils.NewJWTService(testSecret).GenerateToken(userID.String())
	require.NoError(t, err)
	return "Bearer " + token
}

func jsonRequest(t *testing.T, method, target string, body interface{}, auth string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func seedAd(t *testing.T, store *repository.MemoryStore, userID uuid.UUID, title, category, condition string) *models.Ad {
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

func TestCreateAd(t *testing.T) {
	app, store := newTestApp(t)
	user := uuid.New()

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/api/ads", map[string]string{
		"title":       "Велосипед",
		"description": "Горный, почти новый",
		"category":    "Спорт",
		"condition":   "used",
	}, bearerToken(t, user)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	adID, err := uuid.Parse(body["ad_id"].(string))
	require.NoError(t, err)

	ad, err := store.GetByID(context.Background(), adID)
	require.NoError(t, err)
	require.Equal(t, user, ad.UserID)
	require.Equal(t, "used", ad.Condition)
	require.False(t, ad.CreatedAt.IsZero())
}

func TestCreateAd_Validation(t *testing.T) {
	app, _ := newTestApp(t)
	user := uuid.New()

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "empty_title", body: map[string]string{"category": "Спорт"}},
		{name: "empty_category", body: map[string]string{"title": "Велосипед"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/api/ads", tt.body, bearerToken(t, user)))
			require.NoError(t, err)
			require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCreateAd_Unauthenticated(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, fiber.MethodPost, "/api/ads", map[string]string{"title": "X"}, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestPublicListAndProtectedDetail(t *testing.T) {
	app, store := newTestApp(t)
	owner := uuid.New()
	ad := seedAd(t, store, owner, "Велосипед", "Спорт", models.ConditionUsed)

	// Список доступен без авторизации
	resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/api/ads", nil, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, float64(1), body["total"])

	// Детальная страница без авторизации недоступна
	resp, err = app.Test(jsonRequest(t, fiber.MethodGet, "/api/ads/"+ad.ID.String(), nil, ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// С авторизацией — доступна любому вошедшему пользователю
	resp, err = app.Test(jsonRequest(t, fiber.MethodGet, "/api/ads/"+ad.ID.String(), nil, bearerToken(t, uuid.New())))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	require.Equal(t, false, body["is_owner"])
}

func TestUpdateAd_OwnerOnly(t *testing.T) {
	app, store := newTestApp(t)
	owner := uuid.New()
	other := uuid.New()
	ad := seedAd(t, store, owner, "Велосипед", "Спорт", models.ConditionUsed)

	update := map[string]string{"title": "Самокат", "category": "Спорт", "condition": "used"}

	// Чужой пользователь получает отказ, объявление не меняется
	resp, err := app.Test(jsonRequest(t, fiber.MethodPut, "/api/ads/"+ad.ID.String(), update, bearerToken(t, other)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	stored, err := store.GetByID(context.Background(), ad.ID)
	require.NoError(t, err)
	require.Equal(t, "Велосипед", stored.Title)

	// Владелец обновляет успешно
	resp, err = app.Test(jsonRequest(t, fiber.MethodPut, "/api/ads/"+ad.ID.String(), update, bearerToken(t, owner)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored, err = store.GetByID(context.Background(), ad.ID)
	require.NoError(t, err)
	require.Equal(t, "Самокат", stored.Title)
	require.Equal(t, owner, stored.UserID)
}

func TestDeleteAd_OwnerOnlyAndCascade(t *testing.T) {
	app, store := newTestApp(t)
	ctx := context.Background()
	u1, u2 := uuid.New(), uuid.New()

	adA := seedAd(t, store, u1, "Велосипед", "Спорт", models.ConditionUsed)
	adB := seedAd(t, store, u2, "Книга", "Книги", models.ConditionNew)

	proposal := &models.ExchangeProposal{
		ID: uuid.New(), AdSenderID: adA.ID, AdReceiverID: adB.ID,
		SenderID: u1, ReceiverID: u2, Comment: "обмен?", Status: models.ProposalStatusAwaits,
	}
	require.NoError(t, store.CreateProposal(ctx, proposal))

	// Чужой пользователь удалить не может
	resp, err := app.Test(jsonRequest(t, fiber.MethodDelete, "/api/ads/"+adA.ID.String(), nil, bearerToken(t, u2)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Владелец удаляет, предложение каскадно исчезает
	resp, err = app.Test(jsonRequest(t, fiber.MethodDelete, "/api/ads/"+adA.ID.String(), nil, bearerToken(t, u1)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, err = store.GetByID(ctx, adA.ID)
	require.ErrorIs(t, err, repository.ErrAdNotFound)
	_, err = store.GetProposalByID(ctx, proposal.ID)
	require.ErrorIs(t, err, repository.ErrProposalNotFound)
}

func TestDeleteAd_NotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, fiber.MethodDelete, "/api/ads/"+uuid.New().String(), nil, bearerToken(t, uuid.New())))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListAds_Filters(t *testing.T) {
	app, store := newTestApp(t)
	user := uuid.New()

	seedAd(t, store, user, "Велосипед Trek", "Спорт", models.ConditionUsed)
	seedAd(t, store, user, "Книга по Go", "Книги", models.ConditionNew)
	seedAd(t, store, user, "Гантели", "Спорт", models.ConditionNew)

	tests := []struct {
		name     string
		query    url.Values
		expected []string
	}{
		{name: "by_category", query: url.Values{"category": {"Спорт"}}, expected: []string{"Велосипед Trek", "Гантели"}},
		{name: "by_condition", query: url.Values{"condition": {"new"}}, expected: []string{"Книга по Go", "Гантели"}},
		{name: "by_text_case_insensitive", query: url.Values{"q": {"ВЕЛОСИПЕД"}}, expected: []string{"Велосипед Trek"}},
		{name: "category_and_condition", query: url.Values{"category": {"Спорт"}, "condition": {"new"}}, expected: []string{"Гантели"}},
		{name: "category_regardless_of_query", query: url.Values{"q": {"Trek"}, "category": {"Спорт"}}, expected: []string{"Велосипед Trek"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/api/ads?" + tt.query.Encode()
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
			require.NoError(t, err)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			body := decodeBody(t, resp)
			ads := body["ads"].([]interface{})

			var titles []string
			for _, raw := range ads {
				titles = append(titles, raw.(map[string]interface{})["title"].(string))
			}
			require.Equal(t, tt.expected, titles)
		})
	}
}

func TestListAds_Pagination(t *testing.T) {
	app, store := newTestApp(t)
	user := uuid.New()

	for i := 0; i < 12; i++ {
		seedAd(t, store, user, fmt.Sprintf("Объявление %02d", i), "Разное", models.ConditionNew)
	}

	tests := []struct {
		name          string
		page          string
		expectedPage  float64
		expectedCount int
	}{
		{name: "first_page_full", page: "1", expectedPage: 1, expectedCount: 10},
		{name: "second_page_rest", page: "2", expectedPage: 2, expectedCount: 2},
		{name: "beyond_last_returns_last", page: "9999", expectedPage: 2, expectedCount: 2},
		{name: "not_a_number_returns_first", page: "abc", expectedPage: 1, expectedCount: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/ads?page="+tt.page, nil))
			require.NoError(t, err)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			body := decodeBody(t, resp)
			require.Equal(t, tt.expectedPage, body["page"])
			require.Equal(t, float64(12), body["total"])
			require.Equal(t, float64(2), body["total_pages"])
			require.Len(t, body["ads"].([]interface{}), tt.expectedCount)
		})
	}
}
