// Package seed loads an initial catalog and blog set from a YAML file.
package seed

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"vaidya/internal/models"
	"vaidya/internal/repositories"
)

// File is the layout of a seed document.
type File struct {
	Products []Product `yaml:"products"`
	Blogs    []Blog    `yaml:"blogs"`
}

// Product is a catalog entry in the seed file.
type Product struct {
	Name          string   `yaml:"name"`
	Slug          string   `yaml:"slug"`
	Category      string   `yaml:"category"`
	Price         float64  `yaml:"price"`
	OriginalPrice *float64 `yaml:"original_price"`
	Rating        float64  `yaml:"rating"`
	ReviewCount   int      `yaml:"review_count"`
	Images        []string `yaml:"images"`
	Benefits      []string `yaml:"benefits"`
	Dosage        string   `yaml:"dosage"`
	Indication    string   `yaml:"indication"`
	Description   string   `yaml:"description"`
}

// Blog is an article in the seed file.
type Blog struct {
	Title  string `yaml:"title"`
	Slug   string `yaml:"slug"`
	Author string `yaml:"author"`
	Image  string `yaml:"image"`
	Body   string `yaml:"body"`
}

// Load parses a seed file.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &f, nil
}

// Apply writes products and blogs into collections that are still empty.
// Collections that already hold data are left alone.
func Apply(ctx context.Context, f *File, store *repositories.Store) error {
	existing, err := store.Products.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		for _, p := range f.Products {
			product := p.toModel()
			if err := store.Products.Create(ctx, &product); err != nil {
				return fmt.Errorf("failed to seed product %s: %w", p.Name, err)
			}
			log.Printf("Seeded product: %s (ID: %s)", product.Name, product.ID)
		}
	}

	posts, err := store.Blogs.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		for _, b := range f.Blogs {
			post := b.toModel()
			if err := store.Blogs.Create(ctx, &post); err != nil {
				return fmt.Errorf("failed to seed blog %s: %w", b.Title, err)
			}
			log.Printf("Seeded blog post: %s", post.Title)
		}
	}
	return nil
}

func (p Product) toModel() models.Product {
	s := p.Slug
	if s == "" {
		s = slug.Make(p.Name)
	}
	return models.Product{
		Slug:          s,
		Name:          p.Name,
		Category:      p.Category,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		Images:        p.Images,
		Benefits:      p.Benefits,
		Dosage:        p.Dosage,
		Indication:    p.Indication,
		Description:   p.Description,
	}
}

func (b Blog) toModel() models.BlogPost {
	s := b.Slug
	if s == "" {
		s = slug.Make(b.Title)
	}
	return models.BlogPost{
		Slug:   s,
		Title:  b.Title,
		Body:   b.Body,
		Author: b.Author,
		Image:  b.Image,
	}
}
