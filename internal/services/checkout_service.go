package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vaidya/internal/metrics"
	"vaidya/internal/models"
	"vaidya/internal/repositories"

	"github.com/google/uuid"
)

const maxClientKeyLength = 64

// IdentifyInput is the contact step of a guest checkout.
type IdentifyInput struct {
	Phone string `json:"phone" validate:"required,phone"`
	Email string `json:"email" validate:"omitempty,email"`
}

// AddressInput is the shipping step. City and state travel as one field in the form,
// so only City is required.
type AddressInput struct {
	Name       string `json:"name" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=12"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"max=100"`
	Street     string `json:"street" validate:"required,max=300"`
	MapLink    string `json:"map_link" validate:"omitempty,url"`
}

// PaymentInput selects how the order is paid.
type PaymentInput struct {
	Method string `json:"method" validate:"required,oneof=online cod"`
}

// CheckoutService drives a session through identify, address, payment and submitted.
type CheckoutService struct {
	checkouts repositories.CheckoutRepository
	carts     repositories.CartRepository
	users     repositories.UserRepository
	orders    *OrderService
	payments  PaymentAuthorizer
	metrics   *metrics.AppMetrics
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	checkouts repositories.CheckoutRepository,
	carts repositories.CartRepository,
	users repositories.UserRepository,
	orders *OrderService,
	payments PaymentAuthorizer,
	m *metrics.AppMetrics,
) *CheckoutService {
	return &CheckoutService{
		checkouts: checkouts,
		carts:     carts,
		users:     users,
		orders:    orders,
		payments:  payments,
		metrics:   m,
	}
}

// Begin starts or resumes the checkout of a session. A signed-in shopper skips the
// identify step with contact details taken from the account.
func (s *CheckoutService) Begin(ctx context.Context, sessionID, userID string) (*models.CheckoutSession, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for session %s: %w", sessionID, err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	checkout, err := s.checkouts.Get(ctx, sessionID)
	switch {
	case err == nil && checkout.Step != models.StepSubmitted:
		// resume the current attempt
	case err == nil || errors.Is(err, repositories.ErrNotFound):
		now := time.Now()
		checkout = &models.CheckoutSession{
			SessionID:      sessionID,
			Step:           models.StepIdentify,
			IdempotencyKey: uuid.New().String(),
			StartedAt:      now,
		}
	default:
		return nil, fmt.Errorf("failed to load checkout for session %s: %w", sessionID, err)
	}

	if userID != "" && checkout.UserID == "" {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user %s for checkout: %w", userID, err)
		}
		checkout.UserID = user.ID
		checkout.Customer = models.Customer{Name: user.Name, Phone: user.Phone, Email: user.Email}
		if checkout.Step == models.StepIdentify {
			checkout.Step = models.StepAddress
		}
	}

	if err := s.save(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

// Get returns the checkout state of a session.
func (s *CheckoutService) Get(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	checkout, err := s.checkouts.Get(ctx, sessionID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCheckoutNotStarted
	}
	return checkout, err
}

// Identify records the guest's phone number and moves to the address step.
func (s *CheckoutService) Identify(ctx context.Context, sessionID string, in IdentifyInput) (*models.CheckoutSession, error) {
	checkout, err := s.inStep(ctx, sessionID, models.StepIdentify)
	if err != nil {
		return nil, err
	}
	in.Phone = strings.TrimSpace(in.Phone)
	if err := Validate(in); err != nil {
		return nil, err
	}

	checkout.Customer.Phone = in.Phone
	if in.Email != "" {
		checkout.Customer.Email = strings.ToLower(in.Email)
	}
	checkout.Step = models.StepAddress
	if err := s.save(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

// SubmitAddress records the shipping address and moves to the payment step.
// It is accepted again from the payment step so the shopper can correct the address.
func (s *CheckoutService) SubmitAddress(ctx context.Context, sessionID string, in AddressInput) (*models.CheckoutSession, error) {
	checkout, err := s.inStep(ctx, sessionID, models.StepAddress, models.StepPayment)
	if err != nil {
		return nil, err
	}
	in = AddressInput{
		Name:       strings.TrimSpace(in.Name),
		PostalCode: strings.TrimSpace(in.PostalCode),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		Street:     strings.TrimSpace(in.Street),
		MapLink:    strings.TrimSpace(in.MapLink),
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	checkout.Customer.Name = in.Name
	checkout.Address = models.Address{
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		MapLink:    in.MapLink,
	}
	checkout.Step = models.StepPayment
	if err := s.save(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

// ConfirmPayment writes the order for the checkout attempt. Repeating the call for an
// attempt that already produced an order returns that order with created=false.
// On failure the checkout stays in the payment step.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, sessionID string, in PaymentInput, clientKey string) (*models.Order, bool, error) {
	checkout, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if checkout.Step == models.StepSubmitted && checkout.OrderID != "" {
		order, err := s.orders.GetOrderByID(ctx, checkout.OrderID)
		if err != nil {
			return nil, false, err
		}
		return order, false, nil
	}
	if checkout.Step != models.StepPayment {
		return nil, false, fmt.Errorf("confirm payment in step %s: %w", checkout.Step, ErrInvalidTransition)
	}
	if err := Validate(in); err != nil {
		return nil, false, err
	}

	key, err := attemptKey(checkout, clientKey)
	if err != nil {
		return nil, false, err
	}
	if existing, err := s.orders.FindByIdempotencyKey(ctx, key); err == nil {
		if existing.SessionID != checkout.SessionID {
			return nil, false, fmt.Errorf("order for key %q: %w", clientKey, ErrIdempotencyKeyInUse)
		}
		return existing, false, s.finish(ctx, checkout, existing)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load cart for session %s: %w", sessionID, err)
	}
	if cart.IsEmpty() {
		return nil, false, ErrEmptyCart
	}

	order := &models.Order{
		UserID:         checkout.UserID,
		SessionID:      checkout.SessionID,
		IdempotencyKey: key,
		Customer:       checkout.Customer,
		Address:        checkout.Address,
		Items:          models.OrderItemsFromCart(cart.Items),
		TotalAmount:    cart.Total(),
		PaymentMethod:  in.Method,
		Status:         models.OrderStatusPending,
	}

	if in.Method == models.PaymentMethodOnline {
		ref, err := s.payments.Authorize(ctx, PaymentRequest{
			IdempotencyKey: key,
			Amount:         order.TotalAmount,
			CustomerPhone:  order.Customer.Phone,
		})
		if err != nil {
			s.metrics.RecordPaymentFailure(ctx, in.Method)
			return nil, false, fmt.Errorf("payment authorization failed: %w", err)
		}
		order.PaymentReference = ref
	}

	placed, created, err := s.orders.PlaceOrder(ctx, order)
	if err != nil {
		return nil, false, err
	}
	if err := s.finish(ctx, checkout, placed); err != nil {
		return placed, created, err
	}
	return placed, created, nil
}

// attemptKey is the idempotency key of the order for this attempt. A client key is
// namespaced by the session so two sessions can never share an order.
func attemptKey(checkout *models.CheckoutSession, clientKey string) (string, error) {
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		return checkout.IdempotencyKey, nil
	}
	if len(clientKey) > maxClientKeyLength {
		return "", &ValidationError{Fields: map[string]string{
			"IdempotencyKey": "Field 'IdempotencyKey' failed on the 'max' tag",
		}}
	}
	return checkout.SessionID + ":" + clientKey, nil
}

// finish clears the cart and marks the attempt submitted.
func (s *CheckoutService) finish(ctx context.Context, checkout *models.CheckoutSession, order *models.Order) error {
	if err := s.carts.Delete(ctx, checkout.SessionID); err != nil {
		return fmt.Errorf("order %s placed but failed to clear cart: %w", order.ID, err)
	}
	checkout.Step = models.StepSubmitted
	checkout.OrderID = order.ID
	checkout.PaymentMethod = order.PaymentMethod
	return s.save(ctx, checkout)
}

func (s *CheckoutService) inStep(ctx context.Context, sessionID string, allowed ...models.CheckoutStep) (*models.CheckoutSession, error) {
	checkout, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, step := range allowed {
		if checkout.Step == step {
			return checkout, nil
		}
	}
	return nil, fmt.Errorf("step %s: %w", checkout.Step, ErrInvalidTransition)
}

func (s *CheckoutService) save(ctx context.Context, checkout *models.CheckoutSession) error {
	checkout.UpdatedAt = time.Now()
	if err := s.checkouts.Save(ctx, checkout); err != nil {
		return fmt.Errorf("failed to save checkout for session %s: %w", checkout.SessionID, err)
	}
	s.metrics.RecordCheckoutStep(ctx, string(checkout.Step))
	return nil
}
