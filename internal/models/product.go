package models

import (
	"math"
	"time"
)

// Product represents a product in the store.
type Product struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Slug          string    `json:"slug" gorm:"index;type:varchar(120)" bson:"slug"`
	Name          string    `json:"name" bson:"name" validate:"required,min=3,max=100"`
	Category      string    `json:"category" gorm:"index;type:varchar(60)" bson:"category" validate:"required,max=60"`
	Price         float64   `json:"price" bson:"price" validate:"required,gt=0"`
	OriginalPrice *float64  `json:"original_price,omitempty" bson:"original_price,omitempty" validate:"omitempty,gtefield=Price"`
	Rating        float64   `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	ReviewCount   int       `json:"review_count" bson:"review_count" validate:"gte=0"`
	Images        []string  `json:"images" gorm:"serializer:json" bson:"images" validate:"dive,required"`
	Benefits      []string  `json:"benefits" gorm:"serializer:json" bson:"benefits"`
	Dosage        string    `json:"dosage" bson:"dosage" validate:"max=500"`
	Indication    string    `json:"indication" bson:"indication" validate:"max=500"`
	Description   string    `json:"description" bson:"description" validate:"omitempty,max=2000"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// DiscountPercent returns the whole-number discount against OriginalPrice, or 0 when there is none.
func (p Product) DiscountPercent() int {
	if p.OriginalPrice == nil || *p.OriginalPrice <= p.Price || *p.OriginalPrice == 0 {
		return 0
	}
	return int(math.Round((*p.OriginalPrice - p.Price) / *p.OriginalPrice * 100))
}

// PrimaryImage is the image shown in listings and cart lines.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
