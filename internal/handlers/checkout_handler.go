package handlers

import (
	"errors"
	"log"

	"vaidya/internal/middleware"
	"vaidya/internal/services"

	"github.com/gofiber/fiber/v2"
)

// IdempotencyHeader lets a client pin the key of its checkout attempt.
const IdempotencyHeader = "Idempotency-Key"

// CheckoutHandler drives the multi-step checkout of the session cart.
type CheckoutHandler struct {
	service     *services.CheckoutService
	authService *services.AuthService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService, authService *services.AuthService) *CheckoutHandler {
	return &CheckoutHandler{
		service:     service,
		authService: authService,
	}
}

// RegisterRoutes registers the checkout routes. The router must run the session middleware.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout", middleware.OptionalAuth(h.authService))
	checkoutRoutes.Post("/", h.HandleBegin)
	checkoutRoutes.Get("/", h.HandleGet)
	checkoutRoutes.Post("/identify", h.HandleIdentify)
	checkoutRoutes.Post("/address", h.HandleAddress)
	checkoutRoutes.Post("/payment", h.HandlePayment)
}

// HandleBegin starts or resumes checkout. An empty cart is sent back to the catalog.
func (h *CheckoutHandler) HandleBegin(c *fiber.Ctx) error {
	checkout, err := h.service.Begin(c.UserContext(), middleware.SessionID(c), middleware.UserID(c))
	if errors.Is(err, services.ErrEmptyCart) {
		return c.Redirect(CatalogPath, fiber.StatusSeeOther)
	}
	if err != nil {
		return respondError(c, err, "Could not start checkout")
	}
	return c.JSON(checkout)
}

// HandleGet returns the current checkout state.
func (h *CheckoutHandler) HandleGet(c *fiber.Ctx) error {
	checkout, err := h.service.Get(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve checkout")
	}
	return c.JSON(checkout)
}

// HandleIdentify records the guest contact.
func (h *CheckoutHandler) HandleIdentify(c *fiber.Ctx) error {
	var in services.IdentifyInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	checkout, err := h.service.Identify(c.UserContext(), middleware.SessionID(c), in)
	if err != nil {
		return respondError(c, err, "Could not record contact")
	}
	return c.JSON(checkout)
}

// HandleAddress records the shipping address.
func (h *CheckoutHandler) HandleAddress(c *fiber.Ctx) error {
	var in services.AddressInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	checkout, err := h.service.SubmitAddress(c.UserContext(), middleware.SessionID(c), in)
	if err != nil {
		return respondError(c, err, "Could not record address")
	}
	return c.JSON(checkout)
}

// HandlePayment confirms payment and places the order. Repeating the request for the
// same attempt returns the order already placed with 200 instead of 201.
func (h *CheckoutHandler) HandlePayment(c *fiber.Ctx) error {
	var in services.PaymentInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}

	order, created, err := h.service.ConfirmPayment(c.UserContext(), middleware.SessionID(c), in, c.Get(IdempotencyHeader))
	if err != nil {
		if order == nil {
			return respondError(c, err, "Could not place order")
		}
		log.Printf("Order %s placed with a follow-up error: %v", order.ID, err)
	}

	status := fiber.StatusOK
	message := "Order already placed"
	if created {
		status = fiber.StatusCreated
		message = "Order placed successfully"
	}
	return c.Status(status).JSON(fiber.Map{
		"message":  message,
		"order":    order,
		"redirect": "/orders/" + order.ID,
	})
}
