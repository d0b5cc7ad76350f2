package repositories

import (
	"context"
	"fmt"
	"sync"

	"vaidya/internal/models"
)

// MemorySessionStore is an in-process CartRepository and CheckoutRepository.
// State is lost on restart.
type MemorySessionStore struct {
	mu        sync.RWMutex
	carts     map[string][]models.CartItem
	checkouts map[string]models.CheckoutSession
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		carts:     make(map[string][]models.CartItem),
		checkouts: make(map[string]models.CheckoutSession),
	}
}

// Carts returns the CartRepository view of the store.
func (s *MemorySessionStore) Carts() CartRepository { return memoryCartRepository{s} }

// Checkouts returns the CheckoutRepository view of the store.
func (s *MemorySessionStore) Checkouts() CheckoutRepository { return memoryCheckoutRepository{s} }

type memoryCartRepository struct{ s *MemorySessionStore }

func (r memoryCartRepository) Load(ctx context.Context, sessionID string) (*models.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cart := models.NewCart(sessionID)
	if items, ok := r.s.carts[sessionID]; ok {
		cart.Items = append(cart.Items, items...)
	}
	return cart, nil
}

func (r memoryCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.carts[cart.SessionID] = cart.Snapshot()
	return nil
}

func (r memoryCartRepository) Delete(ctx context.Context, sessionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.carts, sessionID)
	return nil
}

type memoryCheckoutRepository struct{ s *MemorySessionStore }

func (r memoryCheckoutRepository) Get(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	checkout, ok := r.s.checkouts[sessionID]
	if !ok {
		return nil, fmt.Errorf("checkout for session %s: %w", sessionID, ErrNotFound)
	}
	return &checkout, nil
}

func (r memoryCheckoutRepository) Save(ctx context.Context, checkout *models.CheckoutSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.checkouts[checkout.SessionID] = *checkout
	return nil
}
