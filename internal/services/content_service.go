package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"vaidya/internal/live"
	"vaidya/internal/models"
	"vaidya/internal/repositories"

	"github.com/gosimple/slug"
)

// ReviewService handles product reviews and keeps product ratings in step with them.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	products *ProductService
	events   live.Publisher
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews repositories.ReviewRepository, products *ProductService, events live.Publisher) *ReviewService {
	if events == nil {
		events = live.Noop{}
	}
	return &ReviewService{reviews: reviews, products: products, events: events}
}

// GetAllReviews lists every review, newest first.
func (s *ReviewService) GetAllReviews(ctx context.Context) ([]models.Review, error) {
	return s.reviews.GetAll(ctx)
}

// GetProductReviews lists the reviews of one product.
func (s *ReviewService) GetProductReviews(ctx context.Context, productID string) ([]models.Review, error) {
	return s.reviews.GetByProductID(ctx, productID)
}

// CreateReview stores a review for an existing product and refreshes its rating.
func (s *ReviewService) CreateReview(ctx context.Context, review *models.Review) error {
	if err := Validate(review); err != nil {
		return err
	}
	if _, err := s.products.GetProductByID(ctx, review.ProductID); err != nil {
		return err
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	s.publish(live.ActionCreated, review.ID, review)
	s.refresh(ctx, review.ProductID)
	return nil
}

// DeleteReview permanently removes a review and refreshes the product rating.
func (s *ReviewService) DeleteReview(ctx context.Context, id string) error {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(live.ActionDeleted, id, nil)
	s.refresh(ctx, review.ProductID)
	return nil
}

// refresh is best-effort: a missing product only means the review outlived it.
func (s *ReviewService) refresh(ctx context.Context, productID string) {
	reviews, err := s.reviews.GetByProductID(ctx, productID)
	if err == nil {
		err = s.products.RefreshRating(ctx, productID, reviews)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		log.Printf("Failed to refresh rating for product %s: %v", productID, err)
	}
}

func (s *ReviewService) publish(action, id string, data interface{}) {
	s.events.Publish(live.ChangeEvent{Collection: repositories.CollectionReviews, Action: action, ID: id, Data: data})
}

// BlogService handles blog posts.
type BlogService struct {
	repo   repositories.BlogRepository
	events live.Publisher
}

// NewBlogService creates a new BlogService.
func NewBlogService(repo repositories.BlogRepository, events live.Publisher) *BlogService {
	if events == nil {
		events = live.Noop{}
	}
	return &BlogService{repo: repo, events: events}
}

// GetAllPosts lists posts, newest first.
func (s *BlogService) GetAllPosts(ctx context.Context) ([]models.BlogPost, error) {
	return s.repo.GetAll(ctx)
}

// GetPost resolves a post by ID, then by slug.
func (s *BlogService) GetPost(ctx context.Context, idOrSlug string) (*models.BlogPost, error) {
	post, err := s.repo.GetByID(ctx, idOrSlug)
	if errors.Is(err, repositories.ErrNotFound) {
		return s.repo.GetBySlug(ctx, idOrSlug)
	}
	return post, err
}

// CreatePost stores a post, deriving the slug from the title when missing.
func (s *BlogService) CreatePost(ctx context.Context, post *models.BlogPost) error {
	if post.Slug == "" {
		post.Slug = slug.Make(post.Title)
	}
	if err := Validate(post); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return fmt.Errorf("failed to create blog post: %w", err)
	}
	s.publish(live.ActionCreated, post.ID, post)
	return nil
}

// UpdatePost replaces an existing post.
func (s *BlogService) UpdatePost(ctx context.Context, post *models.BlogPost) error {
	existing, err := s.repo.GetByID(ctx, post.ID)
	if err != nil {
		return err
	}
	if post.Slug == "" {
		post.Slug = slug.Make(post.Title)
	}
	post.CreatedAt = existing.CreatedAt
	if err := Validate(post); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, post); err != nil {
		return err
	}
	s.publish(live.ActionUpdated, post.ID, post)
	return nil
}

// DeletePost permanently removes a post.
func (s *BlogService) DeletePost(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(live.ActionDeleted, id, nil)
	return nil
}

func (s *BlogService) publish(action, id string, data interface{}) {
	s.events.Publish(live.ChangeEvent{Collection: repositories.CollectionBlogs, Action: action, ID: id, Data: data})
}

// AppointmentNotifier acknowledges consultation requests.
type AppointmentNotifier interface {
	AppointmentReceived(ctx context.Context, appointment models.Appointment) error
}

// AppointmentService handles consultation requests.
type AppointmentService struct {
	repo     repositories.AppointmentRepository
	notifier AppointmentNotifier
	events   live.Publisher
}

// NewAppointmentService creates a new AppointmentService. notifier may be nil.
func NewAppointmentService(repo repositories.AppointmentRepository, notifier AppointmentNotifier, events live.Publisher) *AppointmentService {
	if events == nil {
		events = live.Noop{}
	}
	return &AppointmentService{repo: repo, notifier: notifier, events: events}
}

// GetAllAppointments lists requests, newest first.
func (s *AppointmentService) GetAllAppointments(ctx context.Context) ([]models.Appointment, error) {
	return s.repo.GetAll(ctx)
}

// BookAppointment stores a pending request and sends the acknowledgement.
// A failed e-mail does not fail the booking.
func (s *AppointmentService) BookAppointment(ctx context.Context, appointment *models.Appointment) error {
	appointment.PatientName = strings.TrimSpace(appointment.PatientName)
	appointment.Phone = strings.TrimSpace(appointment.Phone)
	if err := Validate(appointment); err != nil {
		return err
	}
	appointment.Status = models.AppointmentStatusPending
	if err := s.repo.Create(ctx, appointment); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	s.events.Publish(live.ChangeEvent{Collection: repositories.CollectionAppointments, Action: live.ActionCreated, ID: appointment.ID, Data: appointment})

	if s.notifier != nil {
		if err := s.notifier.AppointmentReceived(ctx, *appointment); err != nil {
			log.Printf("Warning: failed to acknowledge appointment %s: %v", appointment.ID, err)
		}
	}
	return nil
}

// ToggleAppointmentStatus flips a request between Pending and Completed.
func (s *AppointmentService) ToggleAppointmentStatus(ctx context.Context, id string) (*models.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	status := models.ToggleAppointmentStatus(appointment.Status)
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	appointment.Status = status
	s.events.Publish(live.ChangeEvent{Collection: repositories.CollectionAppointments, Action: live.ActionUpdated, ID: id, Data: appointment})
	return appointment, nil
}

// SubscriberService handles newsletter sign-ups.
type SubscriberService struct {
	repo   repositories.SubscriberRepository
	events live.Publisher
}

// NewSubscriberService creates a new SubscriberService.
func NewSubscriberService(repo repositories.SubscriberRepository, events live.Publisher) *SubscriberService {
	if events == nil {
		events = live.Noop{}
	}
	return &SubscriberService{repo: repo, events: events}
}

// GetAllSubscribers lists sign-ups, newest first.
func (s *SubscriberService) GetAllSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	return s.repo.GetAll(ctx)
}

// Subscribe adds an e-mail to the newsletter. A repeated e-mail yields repositories.ErrDuplicate.
func (s *SubscriberService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	subscriber := &models.Subscriber{Email: strings.ToLower(strings.TrimSpace(email))}
	if err := Validate(subscriber); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, subscriber); err != nil {
		return nil, err
	}
	s.events.Publish(live.ChangeEvent{Collection: repositories.CollectionSubscribers, Action: live.ActionCreated, ID: subscriber.ID, Data: subscriber})
	return subscriber, nil
}

// Unsubscribe permanently removes a sign-up.
func (s *SubscriberService) Unsubscribe(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Publish(live.ChangeEvent{Collection: repositories.CollectionSubscribers, Action: live.ActionDeleted, ID: id})
	return nil
}
