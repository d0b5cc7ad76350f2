package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vaidya/internal/models"

	"github.com/go-redis/redis/v8"
)

// RedisSessionStore keeps carts and checkout sessions as JSON values keyed by session id.
// Every write refreshes the key's TTL.
type RedisSessionStore struct {
	client      *redis.Client
	namespace   string
	cartTTL     time.Duration
	checkoutTTL time.Duration
}

// NewRedisSessionStore connects to redisURL and verifies the connection with a ping.
func NewRedisSessionStore(redisURL, namespace string, cartTTL, checkoutTTL time.Duration) (*RedisSessionStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisSessionStoreWithClient(client, namespace, cartTTL, checkoutTTL), nil
}

// NewRedisSessionStoreWithClient wraps an existing client.
func NewRedisSessionStoreWithClient(client *redis.Client, namespace string, cartTTL, checkoutTTL time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client:      client,
		namespace:   namespace,
		cartTTL:     cartTTL,
		checkoutTTL: checkoutTTL,
	}
}

// Close closes the underlying client.
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

// Carts returns the CartRepository view of the store.
func (s *RedisSessionStore) Carts() CartRepository {
	return redisCartRepository{s}
}

// Checkouts returns the CheckoutRepository view of the store.
func (s *RedisSessionStore) Checkouts() CheckoutRepository {
	return redisCheckoutRepository{s}
}

func (s *RedisSessionStore) key(kind, sessionID string) string {
	return fmt.Sprintf("%s:%s:%s", s.namespace, kind, sessionID)
}

func (s *RedisSessionStore) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisSessionStore) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

type redisCartRepository struct{ s *RedisSessionStore }

func (r redisCartRepository) Load(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart := models.NewCart(sessionID)
	var items []models.CartItem
	found, err := r.s.getJSON(ctx, r.s.key("cart", sessionID), &items)
	if err != nil {
		return nil, err
	}
	if found && items != nil {
		cart.Items = items
	}
	return cart, nil
}

func (r redisCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	return r.s.setJSON(ctx, r.s.key("cart", cart.SessionID), cart.Items, r.s.cartTTL)
}

func (r redisCartRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.s.client.Del(ctx, r.s.key("cart", sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", sessionID, err)
	}
	return nil
}

type redisCheckoutRepository struct{ s *RedisSessionStore }

func (r redisCheckoutRepository) Get(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	var checkout models.CheckoutSession
	found, err := r.s.getJSON(ctx, r.s.key("checkout", sessionID), &checkout)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("checkout for session %s: %w", sessionID, ErrNotFound)
	}
	return &checkout, nil
}

func (r redisCheckoutRepository) Save(ctx context.Context, checkout *models.CheckoutSession) error {
	return r.s.setJSON(ctx, r.s.key("checkout", checkout.SessionID), checkout, r.s.checkoutTTL)
}
