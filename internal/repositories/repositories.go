package repositories

import (
	"context"

	"vaidya/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository defines the interface for order data access.
// Orders are never deleted.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status string) error
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	GetAll(ctx context.Context) ([]models.Review, error)
	GetByProductID(ctx context.Context, productID string) ([]models.Review, error)
	GetByID(ctx context.Context, id string) (*models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id string) error
}

// BlogRepository defines the interface for blog post data access.
type BlogRepository interface {
	GetAll(ctx context.Context) ([]models.BlogPost, error)
	GetByID(ctx context.Context, id string) (*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Create(ctx context.Context, post *models.BlogPost) error
	Update(ctx context.Context, post *models.BlogPost) error
	Delete(ctx context.Context, id string) error
}

// AppointmentRepository defines the interface for consultation request data access.
type AppointmentRepository interface {
	GetAll(ctx context.Context) ([]models.Appointment, error)
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appointment *models.Appointment) error
	UpdateStatus(ctx context.Context, id string, status string) error
}

// SubscriberRepository defines the interface for newsletter subscriber data access.
type SubscriberRepository interface {
	GetAll(ctx context.Context) ([]models.Subscriber, error)
	Create(ctx context.Context, subscriber *models.Subscriber) error
	Delete(ctx context.Context, id string) error
}

// CartRepository persists the full cart of a session. A missing cart loads as empty.
type CartRepository interface {
	Load(ctx context.Context, sessionID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// CheckoutRepository persists the in-progress checkout of a session.
type CheckoutRepository interface {
	Get(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
	Save(ctx context.Context, checkout *models.CheckoutSession) error
}

// Store bundles the document collections so the backend can be chosen at startup.
type Store struct {
	Products     ProductRepository
	Orders       OrderRepository
	Reviews      ReviewRepository
	Blogs        BlogRepository
	Appointments AppointmentRepository
	Subscribers  SubscriberRepository
}
