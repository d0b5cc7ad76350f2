package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vaidya/internal/config"
	"vaidya/internal/live"
	"vaidya/internal/models"
	"vaidya/internal/notify"
	"vaidya/internal/repositories"
	"vaidya/internal/seed"
	"vaidya/internal/services"
)

// MockEventPublisher stands in for the RabbitMQ client.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	args := m.Called(ctx, routingKey, body)
	return args.Error(0)
}

type testEnv struct {
	app       *fiber.App
	db        *gorm.DB
	publisher *MockEventPublisher
	auth      *services.AuthService
	cfg       *config.Config
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		AppPort:           ":8081",
		DatabaseDriver:    "sqlite",
		DatabaseDSN:       "file:" + t.Name() + "?mode=memory&cache=shared",
		StoreBackend:      config.BackendGORM,
		JWTSecret:         "test_jwt_secret",
		AdminEmails:       []string{"owner@vaidya.in"},
		FreeGiftThreshold: 1149,
		MailProvider:      "log",
		OTELServiceName:   "vaidya-test",
	}
	require.NoError(t, cfg.Validate())

	db, err := openDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))

	store := repositories.NewGORMStore(db)
	file, err := seed.Load("seed/catalog.yaml")
	require.NoError(t, err)
	require.NoError(t, seed.Apply(context.Background(), file, store))

	publisher := new(MockEventPublisher)
	users := repositories.NewGORMUserRepository(db)
	sessions := repositories.NewMemorySessionStore()
	app := setupApp(cfg, appDeps{
		Store:     store,
		Users:     users,
		Carts:     sessions.Carts(),
		Checkouts: sessions.Checkouts(),
		Hub:       live.NewHub(),
		Publisher: publisher,
		Notifier:  notify.NewNotifier(notify.LogMailer{}),
		Payments:  services.NewSimulatedAuthorizer(0),
		Health: func(ctx context.Context) fiber.Map {
			return fiber.Map{"store": cfg.StoreBackend}
		},
	})

	return &testEnv{
		app:       app,
		db:        db,
		publisher: publisher,
		auth:      services.NewAuthService(users, cfg.JWTSecret),
		cfg:       cfg,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, config.BackendGORM, body["store"])
}

func TestCheckoutPublishesOrderCreated(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.On("Publish", mock.Anything, services.RoutingKeyOrderCreated, mock.AnythingOfType("[]uint8")).Return(nil).Once()

	var products []models.Product
	require.NoError(t, env.db.Find(&products).Error)
	require.NotEmpty(t, products)

	resp, _ := env.do(t, http.MethodGet, "/api/v1/cart", nil, nil)
	session := map[string]string{"X-Session-ID": resp.Header.Get("X-Session-ID")}
	require.NotEmpty(t, session["X-Session-ID"])

	resp, _ = env.do(t, http.MethodPost, "/api/v1/cart/items", fiber.Map{"product_id": products[0].ID, "quantity": 2}, session)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/checkout", nil, session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/v1/checkout/identify", fiber.Map{"phone": "9876543210"}, session)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/v1/checkout/address", fiber.Map{
		"name": "Asha Verma", "postal_code": "411001", "city": "Pune, MH", "street": "12 MG Road",
	}, session)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/v1/checkout/payment", fiber.Map{"method": "online"}, session)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := body["order"].(map[string]interface{})
	assert.Equal(t, models.OrderStatusPending, order["status"])
	assert.NotEmpty(t, order["payment_reference"])

	env.publisher.AssertExpectations(t)
}

func TestAdminRoutesRequireAllowList(t *testing.T) {
	env := newTestEnv(t)

	owner := &models.User{ID: "owner-1", Name: "Owner", Email: "owner@vaidya.in"}
	shopper := &models.User{ID: "shopper-1", Name: "Shopper", Email: "shopper@example.com"}
	ownerToken, err := env.auth.IssueToken(owner)
	require.NoError(t, err)
	shopperToken, err := env.auth.IssueToken(shopper)
	require.NoError(t, err)

	resp, _ := env.do(t, http.MethodGet, "/api/v1/admin/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/admin/orders", nil, map[string]string{"Authorization": "Bearer " + shopperToken})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/admin/orders", nil, map[string]string{"Authorization": "Bearer " + ownerToken})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/admin/live/unknown", nil, map[string]string{"Authorization": "Bearer " + ownerToken})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := openDatabase(&config.Config{DatabaseDriver: "oracle"})
	assert.Error(t, err)
}
