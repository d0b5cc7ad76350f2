package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"vaidya/internal/live"
	"vaidya/internal/metrics"
	"vaidya/internal/models"
	"vaidya/internal/repositories"
)

// RoutingKeyOrderCreated is the routing key of the event published after an order is stored.
const RoutingKeyOrderCreated = "order.created"

// OrderCreatedEvent is the message body published for a new order.
type OrderCreatedEvent struct {
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id,omitempty"`
	Status        string    `json:"status"`
	Total         float64   `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventPublisher delivers a message to the order event bus.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher EventPublisher
	events    live.Publisher
	metrics   *metrics.AppMetrics
}

// NewOrderService creates a new OrderService. publisher may be nil when no event bus is configured.
func NewOrderService(orderRepo repositories.OrderRepository, publisher EventPublisher, events live.Publisher, m *metrics.AppMetrics) *OrderService {
	if events == nil {
		events = live.Noop{}
	}
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		events:    events,
		metrics:   m,
	}
}

// GetAllOrders retrieves all orders, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// GetOrdersForUser lists the orders a signed-in shopper placed.
func (s *OrderService) GetOrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(ctx, userID)
}

// FindByIdempotencyKey returns the order a checkout attempt already produced, if any.
func (s *OrderService) FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	return s.orderRepo.GetByIdempotencyKey(ctx, key)
}

// PlaceOrder stores an order once per idempotency key. A repeated key returns the
// stored order and created=false.
func (s *OrderService) PlaceOrder(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	if order.IdempotencyKey != "" {
		existing, err := s.orderRepo.GetByIdempotencyKey(ctx, order.IdempotencyKey)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, false, err
		}
	}

	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) && order.IdempotencyKey != "" {
			existing, getErr := s.orderRepo.GetByIdempotencyKey(ctx, order.IdempotencyKey)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.metrics.RecordOrder(ctx, order.PaymentMethod, order.TotalAmount)
	s.publishChange(live.ActionCreated, order)
	s.publishCreated(ctx, order)
	return order, true, nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		log.Println("Order event publisher is not configured. Skipping message publication.")
		return
	}
	body, err := json.Marshal(OrderCreatedEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		Total:         order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
	})
	if err != nil {
		log.Printf("Failed to marshal order to JSON: %v", err)
		return
	}
	if err := s.publisher.Publish(ctx, RoutingKeyOrderCreated, body); err != nil {
		log.Printf("Warning: Failed to publish order created event for order %s: %v", order.ID, err)
		return
	}
	log.Printf("Successfully published order created event for order %s", order.ID)
}

// ToggleOrderStatus flips an order between Pending and Delivered.
func (s *OrderService) ToggleOrderStatus(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.UpdateOrderStatus(ctx, id, models.ToggleOrderStatus(order.Status)); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, id)
}

// UpdateOrderStatus sets the status of an existing order.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status string) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("order status %q: %w", status, ErrInvalidStatus)
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	s.events.Publish(live.ChangeEvent{
		Collection: repositories.CollectionOrders,
		Action:     live.ActionUpdated,
		ID:         id,
		Data:       map[string]string{"status": status},
	})
	return nil
}

func (s *OrderService) publishChange(action string, order *models.Order) {
	s.events.Publish(live.ChangeEvent{
		Collection: repositories.CollectionOrders,
		Action:     action,
		ID:         order.ID,
		Data:       order,
	})
}

// OrderNotifier sends the customer-facing confirmation of an order.
type OrderNotifier interface {
	OrderConfirmation(ctx context.Context, order models.Order) error
}

// OrderEventHandler processes order.created messages from the event bus.
type OrderEventHandler struct {
	orderRepo repositories.OrderRepository
	notifier  OrderNotifier
}

// NewOrderEventHandler creates the consumer side of order events.
func NewOrderEventHandler(orderRepo repositories.OrderRepository, notifier OrderNotifier) *OrderEventHandler {
	return &OrderEventHandler{orderRepo: orderRepo, notifier: notifier}
}

// Handle decodes one order.created message and mails the confirmation.
func (h *OrderEventHandler) Handle(ctx context.Context, body []byte) error {
	var event OrderCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode order event: %w", err)
	}
	order, err := h.orderRepo.GetByID(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s for notification: %w", event.OrderID, err)
	}
	if err := h.notifier.OrderConfirmation(ctx, *order); err != nil {
		return fmt.Errorf("failed to send confirmation for order %s: %w", order.ID, err)
	}
	log.Printf("Sent confirmation for order %s", order.ID)
	return nil
}

// InlinePublisher hands events straight to the handler. Used when no broker is configured.
type InlinePublisher struct {
	Handler *OrderEventHandler
}

func (p InlinePublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	if routingKey != RoutingKeyOrderCreated {
		return nil
	}
	go func() {
		if err := p.Handler.Handle(context.Background(), body); err != nil {
			log.Printf("Order event handling failed: %v", err)
		}
	}()
	return nil
}
