package models

import "time"

// CheckoutStep is a state of the checkout flow.
type CheckoutStep string

// Checkout steps in the order a shopper moves through them.
const (
	StepIdentify  CheckoutStep = "identify"
	StepAddress   CheckoutStep = "address"
	StepPayment   CheckoutStep = "payment"
	StepSubmitted CheckoutStep = "submitted"
)

// CheckoutSession accumulates the order form for one checkout attempt.
type CheckoutSession struct {
	SessionID      string       `json:"session_id"`
	Step           CheckoutStep `json:"step"`
	IdempotencyKey string       `json:"idempotency_key"`
	UserID         string       `json:"user_id,omitempty"`
	Customer       Customer     `json:"customer"`
	Address        Address      `json:"address"`
	PaymentMethod  string       `json:"payment_method,omitempty"`
	OrderID        string       `json:"order_id,omitempty"`
	StartedAt      time.Time    `json:"started_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
