package models

import "time"

// Order statuses. Admins toggle between the two.
const (
	OrderStatusPending   = "Pending"
	OrderStatusDelivered = "Delivered"
)

// Payment methods offered at checkout.
const (
	PaymentMethodOnline = "online"
	PaymentMethodCOD    = "cod"
)

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"` // Price at the time of order
}

// Customer is the contact captured during checkout.
type Customer struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone" bson:"phone"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
}

// Address is the shipping address captured during checkout.
type Address struct {
	Street     string `json:"street" bson:"street"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state" bson:"state"`
	PostalCode string `json:"postal_code" bson:"postal_code"`
	MapLink    string `json:"map_link,omitempty" bson:"map_link,omitempty"`
}

// Order represents a customer order.
type Order struct {
	ID               string      `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID           string      `json:"user_id,omitempty" gorm:"index;type:varchar(36)" bson:"user_id,omitempty"`
	SessionID        string      `json:"-" gorm:"index;type:varchar(36)" bson:"session_id,omitempty"`
	IdempotencyKey   string      `json:"idempotency_key" gorm:"uniqueIndex;type:varchar(128)" bson:"idempotency_key"`
	Customer         Customer    `json:"customer" gorm:"embedded;embeddedPrefix:customer_" bson:"customer"`
	Address          Address     `json:"address" gorm:"embedded;embeddedPrefix:address_" bson:"address"`
	Items            []OrderItem `json:"items" gorm:"serializer:json" bson:"items"`
	TotalAmount      float64     `json:"total_amount" bson:"total_amount"`
	PaymentMethod    string      `json:"payment_method" gorm:"type:varchar(16)" bson:"payment_method"`
	PaymentReference string      `json:"payment_reference,omitempty" bson:"payment_reference,omitempty"`
	Status           string      `json:"status" gorm:"index;type:varchar(16)" bson:"status"`
	CreatedAt        time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" bson:"updated_at"`
}

// ToggleOrderStatus flips between Pending and Delivered.
func ToggleOrderStatus(status string) string {
	if status == OrderStatusDelivered {
		return OrderStatusPending
	}
	return OrderStatusDelivered
}

// ValidOrderStatus reports whether status is one of the two order statuses.
func ValidOrderStatus(status string) bool {
	return status == OrderStatusPending || status == OrderStatusDelivered
}

// OrderItemsFromCart snapshots cart lines into order lines.
func OrderItemsFromCart(items []CartItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return out
}
