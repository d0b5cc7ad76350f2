package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"vaidya/internal/handlers"
	"vaidya/internal/live"
	"vaidya/internal/middleware"
	"vaidya/internal/models"
	"vaidya/internal/notify"
	"vaidya/internal/repositories"
	"vaidya/internal/seed"
	"vaidya/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testJWTSecret = "test_jwt_secret"
	adminEmail    = "owner@vaidya.in"
)

type testApp struct {
	app  *fiber.App
	auth *services.AuthService
	hub  *live.Hub
}

// setupApp sets up a Fiber app backed by in-memory SQLite and in-memory sessions.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to connect to in-memory database")
	require.NoError(t, repositories.AutoMigrate(db))

	store := repositories.NewGORMStore(db)
	users := repositories.NewGORMUserRepository(db)
	sessions := repositories.NewMemorySessionStore()
	hub := live.NewHub()
	notifier := notify.NewNotifier(notify.LogMailer{})

	orderService := services.NewOrderService(store.Orders, services.InlinePublisher{
		Handler: services.NewOrderEventHandler(store.Orders, notifier),
	}, hub, nil)
	productService := services.NewProductService(store.Products, hub, nil)
	authService := services.NewAuthService(users, testJWTSecret)
	cartService := services.NewCartService(sessions.Carts(), store.Products, 1149, nil)
	checkoutService := services.NewCheckoutService(sessions.Checkouts(), sessions.Carts(), users, orderService, services.NewSimulatedAuthorizer(0), nil)
	reviewService := services.NewReviewService(store.Reviews, productService, hub)
	blogService := services.NewBlogService(store.Blogs, hub)
	appointmentService := services.NewAppointmentService(store.Appointments, notifier, hub)
	subscriberService := services.NewSubscriberService(store.Subscribers, hub)

	productHandler := handlers.NewProductHandler(productService, reviewService, authService)
	orderHandler := handlers.NewOrderHandler(orderService, authService)
	contentHandler := handlers.NewContentHandler(blogService, appointmentService, subscriberService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1", middleware.Session())
	handlers.NewAuthHandler(authService, orderService).RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(checkoutService, authService).RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	contentHandler.RegisterRoutes(apiV1)

	isAdmin := func(email string) bool { return email == adminEmail }
	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired(isAdmin))
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	contentHandler.RegisterAdminRoutes(admin)

	seedForTest(t, store)

	return &testApp{app: app, auth: authService, hub: hub}
}

func seedForTest(t *testing.T, store *repositories.Store) {
	t.Helper()
	original := 650.0
	require.NoError(t, seed.Apply(context.Background(), &seed.File{
		Products: []seed.Product{
			{Name: "Arthovita Oil", Category: "Joint Care", Price: 499, OriginalPrice: &original, Images: []string{"/img/arthovita.jpg"}},
			{Name: "Gasex Tablets", Category: "Digestive Care", Price: 120},
			{Name: "Triphala Churna", Category: "Digestive Care", Price: 180},
		},
		Blogs: []seed.Blog{
			{Title: "Ayurveda for Joint Pain", Author: "Dr. Rao", Body: "Warm oil massage helps."},
		},
	}, store))
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type call struct {
	method  string
	path    string
	body    interface{}
	session string
	token   string
}

func (a *testApp) do(t *testing.T, c call) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.session != "" {
		req.Header.Set(middleware.SessionHeader, c.session)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func (a *testApp) newSession(t *testing.T) string {
	t.Helper()
	resp, _ := a.do(t, call{method: http.MethodGet, path: "/api/v1/cart"})
	session := resp.Header.Get(middleware.SessionHeader)
	require.NotEmpty(t, session)
	return session
}

func (a *testApp) productID(t *testing.T, slug string) string {
	t.Helper()
	resp, raw := a.do(t, call{method: http.MethodGet, path: "/api/v1/products/" + slug})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[handlers.ProductView](t, raw).ID
}

func (a *testApp) register(t *testing.T, name, email string) string {
	t.Helper()
	resp, raw := a.do(t, call{method: http.MethodPost, path: "/api/v1/auth/register", body: fiber.Map{
		"name": name, "email": email, "password": "password123", "phone": "9876543210",
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	return decode[map[string]interface{}](t, raw)["token"].(string)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	a := setupApp(t)

	a.register(t, "Test User", "Test@Example.com")

	// Duplicate registration, different case
	resp, _ := a.do(t, call{method: http.MethodPost, path: "/api/v1/auth/register", body: fiber.Map{
		"name": "Other", "email": "test@example.com", "password": "password123",
	}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, raw := a.do(t, call{method: http.MethodPost, path: "/api/v1/auth/register", body: fiber.Map{
		"name": "X", "email": "not-an-email", "password": "1",
	}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errs := decode[map[string]interface{}](t, raw)["errors"].(map[string]interface{})
	assert.Contains(t, errs, "Email")
	assert.Contains(t, errs, "Password")

	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/auth/login", body: fiber.Map{
		"email": "test@example.com", "password": "wrong-password",
	}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, raw = a.do(t, call{method: http.MethodPost, path: "/api/v1/auth/login", body: fiber.Map{
		"email": "test@example.com", "password": "password123",
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[map[string]interface{}](t, raw)
	token := login["token"].(string)
	assert.NotContains(t, login["user"], "password")

	claims, err := a.auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "Test User", claims.Name)

	resp, raw = a.do(t, call{method: http.MethodGet, path: "/api/v1/me", token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[models.User](t, raw)
	assert.Equal(t, claims.UserID, me.ID)
	assert.Empty(t, me.Password)

	resp, _ = a.do(t, call{method: http.MethodGet, path: "/api/v1/me"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCatalogBrowse(t *testing.T) {
	a := setupApp(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"Arthovita Oil", "Gasex Tablets", "Triphala Churna"}},
		{"category", "?category=Digestive%20Care", []string{"Gasex Tablets", "Triphala Churna"}},
		{"search is case-insensitive", "?q=GAS", []string{"Gasex Tablets"}},
		{"category and search", "?category=Joint%20Care&q=gas", []string{}},
		{"unknown category", "?category=Skin", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := a.do(t, call{method: http.MethodGet, path: "/api/v1/products" + tt.query})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			names := []string{}
			for _, p := range decode[[]handlers.ProductView](t, raw) {
				names = append(names, p.Name)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}

	resp, raw := a.do(t, call{method: http.MethodGet, path: "/api/v1/products/arthovita-oil"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	product := decode[handlers.ProductView](t, raw)
	assert.Equal(t, 23, product.DiscountPercent)
	assert.Equal(t, "/img/arthovita.jpg", product.PrimaryImage)

	resp, _ = a.do(t, call{method: http.MethodGet, path: "/api/v1/products/does-not-exist"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = a.do(t, call{method: http.MethodGet, path: "/api/v1/categories"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{services.CategoryAll, "Digestive Care", "Joint Care"}, decode[[]string](t, raw))
}

func TestCartLifecycle(t *testing.T) {
	a := setupApp(t)
	session := a.newSession(t)
	oil := a.productID(t, "arthovita-oil")

	resp, raw := a.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", session: session, body: fiber.Map{"product_id": oil, "quantity": 2}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[services.CartView](t, raw)
	assert.Equal(t, 998.0, view.Total)
	assert.InDelta(t, 151.0, view.FreeGift.Remaining, 1e-9)
	assert.False(t, view.FreeGift.Unlocked)

	// Omitted quantity adds one unit
	_, raw = a.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", session: session, body: fiber.Map{"product_id": oil}})
	view = decode[services.CartView](t, raw)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.True(t, view.FreeGift.Unlocked)

	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", session: session, body: fiber.Map{"product_id": oil, "quantity": 0}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", session: session, body: fiber.Map{"product_id": "missing"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, raw = a.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items/" + oil + "/decrease", session: session})
	assert.Equal(t, 2, decode[services.CartView](t, raw).Items[0].Quantity)

	// Another session sees its own cart
	other := a.newSession(t)
	_, raw = a.do(t, call{method: http.MethodGet, path: "/api/v1/cart", session: other})
	assert.Empty(t, decode[services.CartView](t, raw).Items)

	_, raw = a.do(t, call{method: http.MethodDelete, path: "/api/v1/cart/items/" + oil, session: session})
	assert.Empty(t, decode[services.CartView](t, raw).Items)

	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items/" + oil + "/decrease", session: session})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGuestCheckout(t *testing.T) {
	a := setupApp(t)
	session := a.newSession(t)
	gasex := a.productID(t, "gasex-tablets")

	// Empty cart goes back to the catalog
	resp, _ := a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", session: session})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, handlers.CatalogPath, resp.Header.Get("Location"))

	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/identify", session: session, body: fiber.Map{"phone": "9876543210"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	a.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", session: session, body: fiber.Map{"product_id": gasex, "quantity": 3}})

	resp, raw := a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", session: session})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StepIdentify, decode[models.CheckoutSession](t, raw).Step)

	// Steps out of order are refused and leave the state alone
	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/payment", session: session, body: fiber.Map{"method": "cod"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/identify", session: session, body: fiber.Map{"phone": "12ab"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/identify", session: session, body: fiber.Map{"phone": "9876543210", "email": "asha@example.com"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/address", session: session, body: fiber.Map{
		"name": "Asha Verma", "postal_code": "411001", "city": "Pune, MH",
	}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/address", session: session, body: fiber.Map{
		"name": "Asha Verma", "postal_code": "411001", "city": "Pune, MH", "street": "12 MG Road",
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	checkout := decode[models.CheckoutSession](t, raw)
	assert.Equal(t, models.StepPayment, checkout.Step)

	resp, raw = a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/payment", session: session, body: fiber.Map{"method": "cod"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	placed := decode[struct {
		Order    models.Order `json:"order"`
		Redirect string       `json:"redirect"`
	}](t, raw)
	assert.Equal(t, 360.0, placed.Order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, placed.Order.Status)
	assert.Equal(t, checkout.IdempotencyKey, placed.Order.IdempotencyKey)
	assert.Equal(t, "Asha Verma", placed.Order.Customer.Name)
	assert.Equal(t, "/orders/"+placed.Order.ID, placed.Redirect)

	// Resubmitting returns the same order
	resp, raw = a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/payment", session: session, body: fiber.Map{"method": "cod"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	again := decode[struct {
		Order models.Order `json:"order"`
	}](t, raw)
	assert.Equal(t, placed.Order.ID, again.Order.ID)

	_, raw = a.do(t, call{method: http.MethodGet, path: "/api/v1/cart", session: session})
	assert.Empty(t, decode[services.CartView](t, raw).Items)

	resp, raw = a.do(t, call{method: http.MethodGet, path: "/api/v1/orders/" + placed.Order.ID, session: session})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, placed.Order.ID, decode[models.Order](t, raw).ID)

	// The receipt is hidden from every other session
	resp, raw = a.do(t, call{method: http.MethodGet, path: "/api/v1/orders/" + placed.Order.ID, session: a.newSession(t)})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotContains(t, string(raw), "9876543210")
	resp, _ = a.do(t, call{method: http.MethodGet, path: "/api/v1/orders/" + placed.Order.ID})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSignedInCheckoutSkipsIdentify(t *testing.T) {
	a := setupApp(t)
	token := a.register(t, "Ravi Kumar", "ravi@example.com")
	session := a.newSession(t)
	triphala := a.productID(t, "triphala-churna")

	a.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", session: session, body: fiber.Map{"product_id": triphala}})

	resp, raw := a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", session: session, token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	checkout := decode[models.CheckoutSession](t, raw)
	assert.Equal(t, models.StepAddress, checkout.Step)
	assert.Equal(t, "ravi@example.com", checkout.Customer.Email)

	a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/address", session: session, token: token, body: fiber.Map{
		"name": "Ravi Kumar", "postal_code": "560001", "city": "Bengaluru", "street": "4 Residency Road",
	}})
	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/payment", session: session, token: token, body: fiber.Map{"method": "online"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw = a.do(t, call{method: http.MethodGet, path: "/api/v1/me/orders", token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	orders := decode[[]models.Order](t, raw)
	require.Len(t, orders, 1)
	assert.Equal(t, models.PaymentMethodOnline, orders[0].PaymentMethod)

	// The account sees its receipt from any session, another account does not
	resp, _ = a.do(t, call{method: http.MethodGet, path: "/api/v1/orders/" + orders[0].ID, session: a.newSession(t), token: token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	other := a.register(t, "Meera Iyer", "meera@example.com")
	resp, _ = a.do(t, call{method: http.MethodGet, path: "/api/v1/orders/" + orders[0].ID, session: a.newSession(t), token: other})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReviewsUpdateRating(t *testing.T) {
	a := setupApp(t)
	token := a.register(t, "Meera", "meera@example.com")
	oil := a.productID(t, "arthovita-oil")

	resp, _ := a.do(t, call{method: http.MethodPost, path: "/api/v1/products/" + oil + "/reviews", body: fiber.Map{"rating": 5, "comment": "Great"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/products/" + oil + "/reviews", token: token, body: fiber.Map{"rating": 9, "comment": "Great"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for _, rating := range []int{5, 4} {
		resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/products/" + oil + "/reviews", token: token, body: fiber.Map{"rating": rating, "comment": "Helped my knees"}})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	_, raw := a.do(t, call{method: http.MethodGet, path: "/api/v1/products/" + oil + "/reviews"})
	reviews := decode[[]models.Review](t, raw)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Meera", reviews[0].Author)

	_, raw = a.do(t, call{method: http.MethodGet, path: "/api/v1/products/" + oil})
	product := decode[handlers.ProductView](t, raw)
	assert.Equal(t, 4.5, product.Rating)
	assert.Equal(t, 2, product.ReviewCount)
}

func TestAdminRoutes(t *testing.T) {
	a := setupApp(t)
	shopper := a.register(t, "Shopper", "shopper@example.com")
	owner := a.register(t, "Owner", adminEmail)

	resp, _ := a.do(t, call{method: http.MethodGet, path: "/api/v1/admin/products", token: shopper})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	events, unsubscribe := a.hub.Subscribe(repositories.CollectionProducts)
	defer unsubscribe()

	resp, raw := a.do(t, call{method: http.MethodPost, path: "/api/v1/admin/products", token: owner, body: fiber.Map{
		"name": "Kesh Amrit Hair Oil", "category": "Hair Care", "price": 299, "images": []string{"/img/kesh.jpg"},
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	created := decode[models.Product](t, raw)
	assert.Equal(t, "kesh-amrit-hair-oil", created.Slug)

	event := <-events
	assert.Equal(t, live.ActionCreated, event.Action)
	assert.Equal(t, created.ID, event.ID)

	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/admin/products", token: owner, body: fiber.Map{
		"name": "X", "category": "Hair Care", "price": -1,
	}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = a.do(t, call{method: http.MethodPut, path: "/api/v1/admin/products/" + created.ID, token: owner, body: fiber.Map{
		"name": "Kesh Amrit Hair Oil", "category": "Hair Care", "price": 279, "images": []string{"/img/kesh.jpg"},
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, 279.0, decode[models.Product](t, raw).Price)

	resp, _ = a.do(t, call{method: http.MethodDelete, path: "/api/v1/admin/products/" + created.ID, token: owner})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = a.do(t, call{method: http.MethodDelete, path: "/api/v1/admin/products/" + created.ID, token: owner})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = a.do(t, call{method: http.MethodPost, path: "/api/v1/admin/blogs", token: owner, body: fiber.Map{
		"title": "Monsoon Digestion", "body": "Eat light.", "author": "Dr. Rao",
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	post := decode[models.BlogPost](t, raw)
	resp, _ = a.do(t, call{method: http.MethodGet, path: "/api/v1/blogs/" + post.Slug})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = a.do(t, call{method: http.MethodPut, path: "/api/v1/admin/blogs/" + post.ID, token: owner, body: fiber.Map{
		"title": "Monsoon Digestion", "body": "Eat light. Sip ginger water.", "author": "Dr. Rao",
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	updated := decode[models.BlogPost](t, raw)
	assert.Equal(t, "Eat light. Sip ginger water.", updated.Body)
	assert.False(t, updated.CreatedAt.IsZero())
	assert.WithinDuration(t, post.CreatedAt, updated.CreatedAt, time.Second)

	resp, _ = a.do(t, call{method: http.MethodPut, path: "/api/v1/admin/blogs/missing", token: owner, body: fiber.Map{
		"title": "Ghost", "body": "x", "author": "Dr. Rao",
	}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminOrderStatus(t *testing.T) {
	a := setupApp(t)
	owner := a.register(t, "Owner", adminEmail)
	session := a.newSession(t)
	gasex := a.productID(t, "gasex-tablets")

	a.do(t, call{method: http.MethodPost, path: "/api/v1/cart/items", session: session, body: fiber.Map{"product_id": gasex}})
	a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout", session: session})
	a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/identify", session: session, body: fiber.Map{"phone": "9876543210"}})
	a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/address", session: session, body: fiber.Map{
		"name": "Asha", "postal_code": "411001", "city": "Pune", "street": "12 MG Road",
	}})
	_, raw := a.do(t, call{method: http.MethodPost, path: "/api/v1/checkout/payment", session: session, body: fiber.Map{"method": "cod"}})
	orderID := decode[struct {
		Order models.Order `json:"order"`
	}](t, raw).Order.ID
	require.NotEmpty(t, orderID)

	resp, raw := a.do(t, call{method: http.MethodPost, path: "/api/v1/admin/orders/" + orderID + "/toggle", token: owner})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.OrderStatusDelivered, decode[models.Order](t, raw).Status)

	resp, _ = a.do(t, call{method: http.MethodPatch, path: "/api/v1/admin/orders/" + orderID + "/status", token: owner, body: fiber.Map{"status": "Shipped"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, call{method: http.MethodPatch, path: "/api/v1/admin/orders/" + orderID + "/status", token: owner, body: fiber.Map{"status": models.OrderStatusPending}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/admin/orders/missing/toggle", token: owner})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAppointmentsAndSubscribers(t *testing.T) {
	a := setupApp(t)
	owner := a.register(t, "Owner", adminEmail)

	resp, _ := a.do(t, call{method: http.MethodPost, path: "/api/v1/subscribers", body: fiber.Map{"email": "Reader@Example.com"}})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/subscribers", body: fiber.Map{"email": "reader@example.com"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/subscribers", body: fiber.Map{"email": "nope"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, call{method: http.MethodPost, path: "/api/v1/appointments", body: fiber.Map{
		"patient_name": "Kavya", "phone": "9876543210", "requested_date": "next week", "problem": "Acidity",
	}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw := a.do(t, call{method: http.MethodPost, path: "/api/v1/appointments", body: fiber.Map{
		"patient_name": "Kavya", "phone": "9876543210", "requested_date": "2026-11-02", "problem": "Acidity",
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	booked := decode[struct {
		Appointment models.Appointment `json:"appointment"`
	}](t, raw).Appointment
	assert.Equal(t, models.AppointmentStatusPending, booked.Status)

	resp, raw = a.do(t, call{method: http.MethodPost, path: "/api/v1/admin/appointments/" + booked.ID + "/toggle", token: owner})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.AppointmentStatusCompleted, decode[models.Appointment](t, raw).Status)

	_, raw = a.do(t, call{method: http.MethodGet, path: "/api/v1/admin/subscribers", token: owner})
	subscribers := decode[[]models.Subscriber](t, raw)
	require.Len(t, subscribers, 1)
	assert.Equal(t, "reader@example.com", subscribers[0].Email)

	resp, _ = a.do(t, call{method: http.MethodDelete, path: "/api/v1/admin/subscribers/" + subscribers[0].ID, token: owner})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
