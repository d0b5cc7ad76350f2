package handlers

import (
	"log"

	"vaidya/internal/middleware"
	"vaidya/internal/models"
	"vaidya/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication and the signed-in profile.
type AuthHandler struct {
	authService  *services.AuthService
	orderService *services.OrderService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, orderService *services.OrderService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		orderService: orderService,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)

	me := router.Group("/me", middleware.AuthRequired(h.authService))
	me.Get("/", h.HandleMe)
	me.Get("/orders", h.HandleMyOrders)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return badBody(c, err)
	}

	if err := services.Validate(user); err != nil {
		return respondError(c, err, "Validation failed")
	}

	if err := h.authService.RegisterUser(c.UserContext(), &user); err != nil {
		log.Printf("Error registering user: %v", err)
		return respondError(c, err, "Registration failed")
	}

	token, err := h.authService.IssueToken(&user)
	if err != nil {
		return respondError(c, err, "Could not issue token")
	}

	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	if err := services.Validate(req); err != nil {
		return respondError(c, err, "Validation failed")
	}

	token, user, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		log.Printf("Error during login for %s: %v", req.Email, err)
		return respondError(c, err, "Authentication failed")
	}

	user.Password = ""
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// HandleMe returns the signed-in account.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.authService.GetUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve account")
	}
	return c.JSON(user)
}

// HandleMyOrders lists the orders placed by the signed-in account.
func (h *AuthHandler) HandleMyOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.GetOrdersForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}
