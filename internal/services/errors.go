package services

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyCart is returned when checkout starts without items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCheckoutNotStarted is returned when a checkout step arrives before Begin.
	ErrCheckoutNotStarted = errors.New("checkout has not been started")
	// ErrInvalidTransition is returned when a step is submitted out of order.
	ErrInvalidTransition = errors.New("checkout step not allowed in current state")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidStatus is returned for a status outside the allowed set.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrIdempotencyKeyInUse is returned when an idempotency key belongs to another session's order.
	ErrIdempotencyKeyInUse = errors.New("idempotency key already used by another checkout")
	// ErrPaymentDeclined is returned when the payment authorizer refuses a charge.
	ErrPaymentDeclined = errors.New("payment declined")
)

var validate = newValidator()

var phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

// newValidator returns a validator with the storefront's custom tags registered.
// "phone" accepts 10 to 15 digits and nothing else.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidationError carries per-field messages for a rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed on %s", strings.Join(names, ", "))
}

// Validate runs struct validation and flattens failures into a *ValidationError.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &ValidationError{Fields: fields}
}
