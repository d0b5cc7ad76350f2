package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"vaidya/internal/live"
	"vaidya/internal/metrics"
	"vaidya/internal/models"
	"vaidya/internal/repositories"

	"github.com/gosimple/slug"
)

// CategoryAll is the filter value that matches every category.
const CategoryAll = "All"

// FilterProducts keeps products whose category matches (or the filter is All/empty)
// and whose name contains search, both case-insensitive. Input order is preserved.
func FilterProducts(products []models.Product, category, search string) []models.Product {
	category = strings.TrimSpace(category)
	allCategories := category == "" || strings.EqualFold(category, CategoryAll)
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !allCategories && !strings.EqualFold(p.Category, category) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo    repositories.ProductRepository
	events  live.Publisher
	metrics *metrics.AppMetrics
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, events live.Publisher, m *metrics.AppMetrics) *ProductService {
	if events == nil {
		events = live.Noop{}
	}
	return &ProductService{
		repo:    repo,
		events:  events,
		metrics: m,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// Browse returns the catalog narrowed by category and name search.
func (s *ProductService) Browse(ctx context.Context, category, search string) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterProducts(products, category, search), nil
}

// Categories lists the distinct product categories, sorted.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var categories []string
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProduct resolves a product by ID first, then by slug, and counts the view.
func (s *ProductService) GetProduct(ctx context.Context, idOrSlug string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, idOrSlug)
	if errors.Is(err, repositories.ErrNotFound) {
		product, err = s.repo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	s.metrics.RecordProductView(ctx, product.Category)
	return product, nil
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.Slug == "" {
		product.Slug = slug.Make(product.Name)
	}
	if err := Validate(product); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	s.publish(live.ActionCreated, product.ID, product)
	return nil
}

// UpdateProduct replaces an existing product. Rating and review count are kept,
// they are owned by the review flow.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	existing, err := s.repo.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	if product.Slug == "" {
		product.Slug = slug.Make(product.Name)
	}
	product.Rating = existing.Rating
	product.ReviewCount = existing.ReviewCount
	product.CreatedAt = existing.CreatedAt
	if err := Validate(product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}
	s.publish(live.ActionUpdated, product.ID, product)
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(live.ActionDeleted, id, nil)
	return nil
}

// RefreshRating stores a product's rating and review count from its reviews.
func (s *ProductService) RefreshRating(ctx context.Context, productID string, reviews []models.Review) error {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	product.Rating, product.ReviewCount = AverageRating(reviews)
	if err := s.repo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to refresh rating for product %s: %w", productID, err)
	}
	s.publish(live.ActionUpdated, product.ID, product)
	return nil
}

func (s *ProductService) publish(action, id string, data interface{}) {
	s.events.Publish(live.ChangeEvent{
		Collection: repositories.CollectionProducts,
		Action:     action,
		ID:         id,
		Data:       data,
	})
}

// AverageRating returns the mean rating rounded to one decimal and the review count.
func AverageRating(reviews []models.Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return float64(int(avg*10+0.5)) / 10, len(reviews)
}
