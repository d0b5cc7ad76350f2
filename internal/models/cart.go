package models

import (
	"errors"
	"math"
)

var (
	// ErrInvalidQuantity is returned when a cart mutation carries a quantity below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrItemNotFound is returned when a cart mutation targets a product that is not in the cart.
	ErrItemNotFound = errors.New("item not found in cart")
)

// CartItem is a product snapshot plus the quantity the shopper wants.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// LineTotal is price times quantity for this line.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Cart holds a shopper's pending selection for one session.
// At most one item exists per product and every quantity is at least 1.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
}

// NewCart returns an empty cart for the session.
func NewCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Items: []CartItem{}}
}

// Add merges qty into the existing line for the product or appends a new line.
func (c *Cart) Add(product Product, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].ProductID == product.ID {
			if qty > math.MaxInt-c.Items[i].Quantity {
				return ErrInvalidQuantity
			}
			c.Items[i].Quantity += qty
			return nil
		}
	}
	c.Items = append(c.Items, CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.PrimaryImage(),
		Quantity:  qty,
	})
	return nil
}

// Decrease lowers the quantity of a line by one, dropping the line when it reaches zero.
func (c *Cart) Decrease(productID string) error {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		c.Items[i].Quantity--
		if c.Items[i].Quantity < 1 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return nil
	}
	return ErrItemNotFound
}

// Remove deletes the line for the product if present.
func (c *Cart) Remove(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Total is the sum of every line total. It is derived on each call.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Snapshot copies the lines so callers cannot mutate the cart through the result.
func (c *Cart) Snapshot() []CartItem {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return items
}

// FreeGiftProgress describes how close a total is to the free gift threshold.
type FreeGiftProgress struct {
	Threshold float64 `json:"threshold"`
	Percent   float64 `json:"percent"`
	Remaining float64 `json:"remaining"`
	Unlocked  bool    `json:"unlocked"`
}

// FreeGift computes progress towards threshold for the current total.
func (c *Cart) FreeGift(threshold float64) FreeGiftProgress {
	return ComputeFreeGift(c.Total(), threshold)
}

// ComputeFreeGift derives progress = min(total/threshold, 100%) and remaining = max(0, threshold-total).
func ComputeFreeGift(total, threshold float64) FreeGiftProgress {
	if threshold <= 0 {
		return FreeGiftProgress{Threshold: threshold, Percent: 100, Unlocked: true}
	}
	percent := math.Min(total/threshold*100, 100)
	if percent < 0 {
		percent = 0
	}
	return FreeGiftProgress{
		Threshold: threshold,
		Percent:   percent,
		Remaining: math.Max(0, threshold-total),
		Unlocked:  total >= threshold,
	}
}
