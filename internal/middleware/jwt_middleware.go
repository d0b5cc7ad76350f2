package middleware

import (
	"log"
	"strings"

	"vaidya/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth middleware.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalName   = "name"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		setClaims(c, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the claims of a valid token and lets anonymous requests through.
// An invalid token is treated as anonymous.
func OptionalAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString, ok := bearerToken(c.Get("Authorization")); ok {
			if claims, err := authService.ValidateToken(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		return c.Next()
	}
}

// AdminRequired rejects signed-in users whose email is not on the allow-list.
// It must run after AuthRequired.
func AdminRequired(isAdmin func(email string) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := UserEmail(c)
		if email == "" || !isAdmin(email) {
			log.Printf("Admin access denied for %q on %s", email, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's ID, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// UserEmail returns the authenticated user's email, or "".
func UserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalEmail).(string)
	return email
}

// UserName returns the authenticated user's display name, or "".
func UserName(c *fiber.Ctx) string {
	name, _ := c.Locals(LocalName).(string)
	return name
}

func bearerToken(header string) (string, bool) {
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setClaims(c *fiber.Ctx, claims *services.Claims) {
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalEmail, claims.Email)
	c.Locals(LocalName, claims.Name)
}
