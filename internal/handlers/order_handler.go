package handlers

import (
	"fmt"

	"vaidya/internal/middleware"
	"vaidya/internal/models"
	"vaidya/internal/repositories"
	"vaidya/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service     *services.OrderService
	authService *services.AuthService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, authService *services.AuthService) *OrderHandler {
	return &OrderHandler{
		service:     service,
		authService: authService,
	}
}

// RegisterRoutes registers the order receipt route.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/orders/:id", middleware.OptionalAuth(h.authService), h.HandleGetReceipt)
}

// RegisterAdminRoutes registers order management under an admin-only router.
func (h *OrderHandler) RegisterAdminRoutes(admin fiber.Router) {
	orderRoutes := admin.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/toggle", h.HandleToggleOrderStatus)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleGetOrders retrieves all orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(c.UserContext(), orderID)
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not retrieve order %s", orderID))
	}
	return c.JSON(order)
}

// HandleGetReceipt returns an order to the session that placed it or to the account
// it belongs to. Anyone else gets a 404.
func (h *OrderHandler) HandleGetReceipt(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(c.UserContext(), orderID)
	if err == nil && !ownsOrder(c, order) {
		err = fmt.Errorf("order %s: %w", orderID, repositories.ErrNotFound)
	}
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not retrieve order %s", orderID))
	}
	return c.JSON(order)
}

func ownsOrder(c *fiber.Ctx, order *models.Order) bool {
	if userID := middleware.UserID(c); userID != "" && order.UserID == userID {
		return true
	}
	return order.SessionID != "" && order.SessionID == middleware.SessionID(c)
}

// HandleToggleOrderStatus flips an order between Pending and Delivered.
func (h *OrderHandler) HandleToggleOrderStatus(c *fiber.Ctx) error {
	order, err := h.service.ToggleOrderStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not toggle order status")
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus sets the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		return badBody(c, err)
	}

	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	if err := h.service.UpdateOrderStatus(c.UserContext(), orderID, updateData.Status); err != nil {
		return respondError(c, err, "Could not update order status")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, updateData.Status),
	})
}
