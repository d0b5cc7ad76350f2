package middleware_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"vaidya/internal/middleware"
	"vaidya/internal/models"
	"vaidya/internal/repositories"
	"vaidya/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) (*services.AuthService, string, string) {
	t.Helper()
	auth := services.NewAuthService(repositories.NewMockUserRepository(), "secret")
	admin, err := auth.IssueToken(&models.User{ID: "u-admin", Email: "owner@vaidya.in", Name: "Owner"})
	require.NoError(t, err)
	shopper, err := auth.IssueToken(&models.User{ID: "u-shop", Email: "shopper@example.com", Name: "Shopper"})
	require.NoError(t, err)
	return auth, admin, shopper
}

func TestAuthRequiredAndAdminRequired(t *testing.T) {
	auth, adminToken, shopperToken := newAuth(t)
	isAdmin := func(email string) bool { return strings.EqualFold(email, "owner@vaidya.in") }

	app := fiber.New()
	app.Get("/admin", middleware.AuthRequired(auth), middleware.AdminRequired(isAdmin), func(c *fiber.Ctx) error {
		return c.SendString(middleware.UserName(c))
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Token " + adminToken, fiber.StatusUnauthorized},
		{"bad token", "Bearer nope", fiber.StatusUnauthorized},
		{"not allow-listed", "Bearer " + shopperToken, fiber.StatusForbidden},
		{"admin", "Bearer " + adminToken, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	auth, _, shopperToken := newAuth(t)

	app := fiber.New()
	app.Get("/me", middleware.OptionalAuth(auth), func(c *fiber.Ctx) error {
		return c.SendString(middleware.UserID(c))
	})

	for header, want := range map[string]string{
		"":                       "",
		"Bearer garbage":         "",
		"Bearer " + shopperToken: "u-shop",
	} {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, want, string(body))
	}
}

func TestSession(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.Session(), func(c *fiber.Ctx) error {
		return c.SendString(middleware.SessionID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	issued := resp.Header.Get(middleware.SessionHeader)
	_, err = uuid.Parse(issued)
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(middleware.SessionHeader, issued)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, issued, resp.Header.Get(middleware.SessionHeader))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(middleware.SessionHeader, "../../etc/passwd")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.NotEqual(t, "../../etc/passwd", resp.Header.Get(middleware.SessionHeader))
}
