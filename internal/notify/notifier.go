package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"vaidya/internal/models"
)

// Notifier composes the storefront's transactional e-mails.
type Notifier struct {
	mailer Mailer
}

// NewNotifier creates a notifier on top of a mailer.
func NewNotifier(mailer Mailer) *Notifier {
	return &Notifier{mailer: mailer}
}

// OrderConfirmation mails the customer a summary of a submitted order.
// Orders without a customer e-mail are skipped.
func (n *Notifier) OrderConfirmation(ctx context.Context, order models.Order) error {
	if order.Customer.Email == "" {
		return nil
	}

	var lines strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&lines, "<li>%s × %d, ₹%.2f</li>", html.EscapeString(item.Name), item.Quantity, item.Price*float64(item.Quantity))
	}
	body := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your order (ID: %s).<ul>%s</ul>Total Amount: <strong>₹%.2f</strong><br>Payment Method: <strong>%s</strong><br>Shipping to: %s, %s, %s %s",
		html.EscapeString(order.Customer.Name),
		order.ID,
		lines.String(),
		order.TotalAmount,
		paymentLabel(order.PaymentMethod),
		html.EscapeString(order.Address.Street),
		html.EscapeString(order.Address.City),
		html.EscapeString(order.Address.State),
		html.EscapeString(order.Address.PostalCode),
	)
	return n.mailer.Send(ctx, order.Customer.Email, "Order Confirmation", body)
}

// AppointmentReceived acknowledges a consultation request.
func (n *Notifier) AppointmentReceived(ctx context.Context, appointment models.Appointment) error {
	if appointment.Email == "" {
		return nil
	}
	body := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>We received your consultation request for <strong>%s</strong>. Our doctor will call you on %s to confirm the time.",
		html.EscapeString(appointment.PatientName),
		appointment.RequestedDate,
		html.EscapeString(appointment.Phone),
	)
	return n.mailer.Send(ctx, appointment.Email, "Consultation Request Received", body)
}

func paymentLabel(method string) string {
	if method == models.PaymentMethodCOD {
		return "Cash on Delivery"
	}
	return "Online"
}
