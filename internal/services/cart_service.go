package services

import (
	"context"
	"fmt"

	"vaidya/internal/metrics"
	"vaidya/internal/models"
	"vaidya/internal/repositories"
)

// CartView is the read model returned after every cart operation.
type CartView struct {
	SessionID string                  `json:"session_id"`
	Items     []models.CartItem       `json:"items"`
	Total     float64                 `json:"total"`
	ItemCount int                     `json:"item_count"`
	FreeGift  models.FreeGiftProgress `json:"free_gift"`
}

// CartService loads the session cart, applies one mutation and persists the whole cart.
type CartService struct {
	carts             repositories.CartRepository
	products          repositories.ProductRepository
	freeGiftThreshold float64
	metrics           *metrics.AppMetrics
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, freeGiftThreshold float64, m *metrics.AppMetrics) *CartService {
	return &CartService{
		carts:             carts,
		products:          products,
		freeGiftThreshold: freeGiftThreshold,
		metrics:           m,
	}
}

// Load returns the persisted cart for a session.
func (s *CartService) Load(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for session %s: %w", sessionID, err)
	}
	return cart, nil
}

// View returns the current cart snapshot.
func (s *CartService) View(ctx context.Context, sessionID string) (*CartView, error) {
	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// AddItem adds qty units of a catalog product to the cart.
func (s *CartService) AddItem(ctx context.Context, sessionID, productID string, qty int) (*CartView, error) {
	if qty < 1 {
		return nil, models.ErrInvalidQuantity
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, "add", func(cart *models.Cart) error {
		return cart.Add(*product, qty)
	})
}

// DecreaseItem lowers a line by one unit.
func (s *CartService) DecreaseItem(ctx context.Context, sessionID, productID string) (*CartView, error) {
	return s.mutate(ctx, sessionID, "decrease", func(cart *models.Cart) error {
		return cart.Decrease(productID)
	})
}

// RemoveItem drops a line regardless of quantity.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (*CartView, error) {
	return s.mutate(ctx, sessionID, "remove", func(cart *models.Cart) error {
		cart.Remove(productID)
		return nil
	})
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) (*CartView, error) {
	return s.mutate(ctx, sessionID, "clear", func(cart *models.Cart) error {
		cart.Clear()
		return nil
	})
}

func (s *CartService) mutate(ctx context.Context, sessionID, action string, apply func(*models.Cart) error) (*CartView, error) {
	cart, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := apply(cart); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart for session %s: %w", sessionID, err)
	}
	s.metrics.RecordCartMutation(ctx, action)
	return s.view(cart), nil
}

func (s *CartService) view(cart *models.Cart) *CartView {
	return &CartView{
		SessionID: cart.SessionID,
		Items:     cart.Snapshot(),
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
		FreeGift:  cart.FreeGift(s.freeGiftThreshold),
	}
}
