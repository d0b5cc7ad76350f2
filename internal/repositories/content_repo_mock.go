package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"vaidya/internal/models"

	"github.com/google/uuid"
)

// MockReviewRepository is an in-memory implementation of ReviewRepository.
type MockReviewRepository struct {
	reviews map[string]models.Review
	mu      sync.RWMutex
}

// NewMockReviewRepository creates a new instance of MockReviewRepository.
func NewMockReviewRepository() *MockReviewRepository {
	return &MockReviewRepository{reviews: make(map[string]models.Review)}
}

func (r *MockReviewRepository) GetAll(ctx context.Context) ([]models.Review, error) {
	return r.filter(func(models.Review) bool { return true }), nil
}

func (r *MockReviewRepository) GetByProductID(ctx context.Context, productID string) ([]models.Review, error) {
	return r.filter(func(rv models.Review) bool { return rv.ProductID == productID }), nil
}

func (r *MockReviewRepository) filter(keep func(models.Review) bool) []models.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Review, 0, len(r.reviews))
	for _, rv := range r.reviews {
		if keep(rv) {
			out = append(out, rv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MockReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review with ID %s: %w", id, ErrNotFound)
	}
	return &review, nil
}

func (r *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	review.CreatedAt = time.Now()
	r.reviews[review.ID] = *review
	return nil
}

func (r *MockReviewRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return fmt.Errorf("review with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.reviews, id)
	return nil
}

// MockBlogRepository is an in-memory implementation of BlogRepository.
type MockBlogRepository struct {
	posts map[string]models.BlogPost
	mu    sync.RWMutex
}

// NewMockBlogRepository creates a new instance of MockBlogRepository.
func NewMockBlogRepository() *MockBlogRepository {
	return &MockBlogRepository{posts: make(map[string]models.BlogPost)}
}

func (r *MockBlogRepository) GetAll(ctx context.Context) ([]models.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]models.BlogPost, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p)
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (r *MockBlogRepository) GetByID(ctx context.Context, id string) (*models.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("blog post with ID %s: %w", id, ErrNotFound)
	}
	return &post, nil
}

func (r *MockBlogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("blog post with slug %s: %w", slug, ErrNotFound)
}

func (r *MockBlogRepository) Create(ctx context.Context, post *models.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	r.posts[post.ID] = *post
	return nil
}

func (r *MockBlogRepository) Update(ctx context.Context, post *models.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.posts[post.ID]
	if !ok {
		return fmt.Errorf("blog post with ID %s for update: %w", post.ID, ErrNotFound)
	}
	post.CreatedAt = existing.CreatedAt
	post.UpdatedAt = time.Now()
	r.posts[post.ID] = *post
	return nil
}

func (r *MockBlogRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("blog post with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.posts, id)
	return nil
}

// MockAppointmentRepository is an in-memory implementation of AppointmentRepository.
type MockAppointmentRepository struct {
	appointments map[string]models.Appointment
	mu           sync.RWMutex
}

// NewMockAppointmentRepository creates a new instance of MockAppointmentRepository.
func NewMockAppointmentRepository() *MockAppointmentRepository {
	return &MockAppointmentRepository{appointments: make(map[string]models.Appointment)}
}

func (r *MockAppointmentRepository) GetAll(ctx context.Context) ([]models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment with ID %s: %w", id, ErrNotFound)
	}
	return &a, nil
}

func (r *MockAppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	r.appointments[appointment.ID] = *appointment
	return nil
}

func (r *MockAppointmentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return fmt.Errorf("appointment with ID %s for status update: %w", id, ErrNotFound)
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	r.appointments[id] = a
	return nil
}

// MockSubscriberRepository is an in-memory implementation of SubscriberRepository.
type MockSubscriberRepository struct {
	subscribers map[string]models.Subscriber
	mu          sync.RWMutex
}

// NewMockSubscriberRepository creates a new instance of MockSubscriberRepository.
func NewMockSubscriberRepository() *MockSubscriberRepository {
	return &MockSubscriberRepository{subscribers: make(map[string]models.Subscriber)}
}

func (r *MockSubscriberRepository) GetAll(ctx context.Context) ([]models.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Subscriber, 0, len(r.subscribers))
	for _, s := range r.subscribers {
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MockSubscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subscriber.Email = strings.ToLower(subscriber.Email)
	for _, s := range r.subscribers {
		if s.Email == subscriber.Email {
			return fmt.Errorf("subscriber with email %s: %w", subscriber.Email, ErrDuplicate)
		}
	}
	if subscriber.ID == "" {
		subscriber.ID = uuid.New().String()
	}
	subscriber.CreatedAt = time.Now()
	r.subscribers[subscriber.ID] = *subscriber
	return nil
}

func (r *MockSubscriberRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subscribers[id]; !ok {
		return fmt.Errorf("subscriber with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.subscribers, id)
	return nil
}

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]models.User)}
}

func (r *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

func (r *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return &u, nil
}

// NewMockStore returns a Store backed entirely by in-memory repositories.
func NewMockStore() *Store {
	return &Store{
		Products:     NewMockProductRepository(),
		Orders:       NewMockOrderRepository(),
		Reviews:      NewMockReviewRepository(),
		Blogs:        NewMockBlogRepository(),
		Appointments: NewMockAppointmentRepository(),
		Subscribers:  NewMockSubscriberRepository(),
	}
}
