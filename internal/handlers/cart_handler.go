package handlers

import (
	"vaidya/internal/middleware"
	"vaidya/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles the session cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes. The router must run the session middleware.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Post("/items/:productId/decrease", h.HandleDecreaseItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

// AddItemRequest adds a product to the cart. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

// HandleGetCart returns the cart with totals and free-gift progress.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	view, err := h.service.View(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve cart")
	}
	return c.JSON(view)
}

// HandleAddItem adds units of a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  map[string]string{"ProductID": "Field 'ProductID' failed on the 'required' tag"},
		})
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	view, err := h.service.AddItem(c.UserContext(), middleware.SessionID(c), req.ProductID, qty)
	if err != nil {
		return respondError(c, err, "Could not add item")
	}
	return c.JSON(view)
}

// HandleDecreaseItem removes one unit of a product.
func (h *CartHandler) HandleDecreaseItem(c *fiber.Ctx) error {
	view, err := h.service.DecreaseItem(c.UserContext(), middleware.SessionID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err, "Could not decrease item")
	}
	return c.JSON(view)
}

// HandleRemoveItem drops a product line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	view, err := h.service.RemoveItem(c.UserContext(), middleware.SessionID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err, "Could not remove item")
	}
	return c.JSON(view)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	view, err := h.service.Clear(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return respondError(c, err, "Could not clear cart")
	}
	return c.JSON(view)
}
