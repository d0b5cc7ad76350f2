package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentRequest is what an authorizer needs to charge a checkout.
type PaymentRequest struct {
	IdempotencyKey string
	Amount         float64
	CustomerPhone  string
}

// PaymentAuthorizer charges online payments. It returns a provider reference.
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, req PaymentRequest) (string, error)
}

// SimulatedAuthorizer approves after a fixed delay. Decline, when set, refuses matching requests.
type SimulatedAuthorizer struct {
	Delay   time.Duration
	Decline func(PaymentRequest) bool
}

// NewSimulatedAuthorizer creates an authorizer that approves every request after delay.
func NewSimulatedAuthorizer(delay time.Duration) *SimulatedAuthorizer {
	return &SimulatedAuthorizer{Delay: delay}
}

func (a *SimulatedAuthorizer) Authorize(ctx context.Context, req PaymentRequest) (string, error) {
	if a.Delay > 0 {
		timer := time.NewTimer(a.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("payment authorization interrupted: %w", ctx.Err())
		case <-timer.C:
		}
	}
	if a.Decline != nil && a.Decline(req) {
		return "", fmt.Errorf("amount %.2f: %w", req.Amount, ErrPaymentDeclined)
	}
	return "SIM-" + uuid.New().String(), nil
}
