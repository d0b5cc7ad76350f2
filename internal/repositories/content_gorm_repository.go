package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vaidya/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

func (r *GORMReviewRepository) GetAll(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get all reviews: %w", err)
	}
	return reviews, nil
}

func (r *GORMReviewRepository) GetByProductID(ctx context.Context, productID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at desc").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews for product %s: %w", productID, err)
	}
	return reviews, nil
}

func (r *GORMReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, gormLookupError(err, fmt.Sprintf("review with ID %s", id))
	}
	return &review, nil
}

func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return gormWriteError(err, "create review")
	}
	return nil
}

func (r *GORMReviewRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	return gormAffected(res, "delete review", fmt.Sprintf("review with ID %s", id))
}

// GORMBlogRepository is a GORM implementation of BlogRepository.
type GORMBlogRepository struct {
	db *gorm.DB
}

// NewGORMBlogRepository creates a new instance of GORMBlogRepository.
func NewGORMBlogRepository(db *gorm.DB) *GORMBlogRepository {
	return &GORMBlogRepository{db: db}
}

func (r *GORMBlogRepository) GetAll(ctx context.Context) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all blog posts: %w", err)
	}
	return posts, nil
}

func (r *GORMBlogRepository) GetByID(ctx context.Context, id string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, gormLookupError(err, fmt.Sprintf("blog post with ID %s", id))
	}
	return &post, nil
}

func (r *GORMBlogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.WithContext(ctx).First(&post, "slug = ?", slug).Error; err != nil {
		return nil, gormLookupError(err, fmt.Sprintf("blog post with slug %s", slug))
	}
	return &post, nil
}

func (r *GORMBlogRepository) Create(ctx context.Context, post *models.BlogPost) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return gormWriteError(err, "create blog post")
	}
	return nil
}

func (r *GORMBlogRepository) Update(ctx context.Context, post *models.BlogPost) error {
	post.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.BlogPost{}).
		Where("id = ?", post.ID).
		Select("*").Omit("id", "created_at").
		Updates(post)
	return gormAffected(res, "update blog post", fmt.Sprintf("blog post with ID %s", post.ID))
}

func (r *GORMBlogRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.BlogPost{}, "id = ?", id)
	return gormAffected(res, "delete blog post", fmt.Sprintf("blog post with ID %s", id))
}

// GORMAppointmentRepository is a GORM implementation of AppointmentRepository.
type GORMAppointmentRepository struct {
	db *gorm.DB
}

// NewGORMAppointmentRepository creates a new instance of GORMAppointmentRepository.
func NewGORMAppointmentRepository(db *gorm.DB) *GORMAppointmentRepository {
	return &GORMAppointmentRepository{db: db}
}

func (r *GORMAppointmentRepository) GetAll(ctx context.Context) ([]models.Appointment, error) {
	var appointments []models.Appointment
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to get all appointments: %w", err)
	}
	return appointments, nil
}

func (r *GORMAppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.WithContext(ctx).First(&appointment, "id = ?", id).Error; err != nil {
		return nil, gormLookupError(err, fmt.Sprintf("appointment with ID %s", id))
	}
	return &appointment, nil
}

func (r *GORMAppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return gormWriteError(err, "create appointment")
	}
	return nil
}

func (r *GORMAppointmentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	return gormAffected(res, "update appointment status", fmt.Sprintf("appointment with ID %s", id))
}

// GORMSubscriberRepository is a GORM implementation of SubscriberRepository.
type GORMSubscriberRepository struct {
	db *gorm.DB
}

// NewGORMSubscriberRepository creates a new instance of GORMSubscriberRepository.
func NewGORMSubscriberRepository(db *gorm.DB) *GORMSubscriberRepository {
	return &GORMSubscriberRepository{db: db}
}

func (r *GORMSubscriberRepository) GetAll(ctx context.Context) ([]models.Subscriber, error) {
	var subscribers []models.Subscriber
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&subscribers).Error; err != nil {
		return nil, fmt.Errorf("failed to get all subscribers: %w", err)
	}
	return subscribers, nil
}

func (r *GORMSubscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) error {
	if subscriber.ID == "" {
		subscriber.ID = uuid.New().String()
	}
	subscriber.Email = strings.ToLower(subscriber.Email)
	if err := r.db.WithContext(ctx).Create(subscriber).Error; err != nil {
		return gormWriteError(err, "create subscriber")
	}
	return nil
}

func (r *GORMSubscriberRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Subscriber{}, "id = ?", id)
	return gormAffected(res, "delete subscriber", fmt.Sprintf("subscriber with ID %s", id))
}

// NewGORMStore wires every document collection to the same database.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Products:     NewGORMProductRepository(db),
		Orders:       NewGORMOrderRepository(db),
		Reviews:      NewGORMReviewRepository(db),
		Blogs:        NewGORMBlogRepository(db),
		Appointments: NewGORMAppointmentRepository(db),
		Subscribers:  NewGORMSubscriberRepository(db),
	}
}

// AutoMigrate creates or updates the tables for every model stored through GORM.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.User{},
		&models.Review{},
		&models.BlogPost{},
		&models.Appointment{},
		&models.Subscriber{},
	)
}
