package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaidya/internal/config"
	"vaidya/internal/models"
)

type sentMail struct {
	to, subject, body string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.sent = append(m.sent, sentMail{to, subject, htmlBody})
	return m.err
}

func TestOrderConfirmation(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer)

	order := models.Order{
		ID:            "order-1",
		Customer:      models.Customer{Name: "Asha <script>", Email: "asha@example.com"},
		Address:       models.Address{Street: "12 MG Road", City: "Pune", State: "MH", PostalCode: "411001"},
		Items:         []models.OrderItem{{Name: "Arthovita Oil", Quantity: 2, Price: 499}},
		TotalAmount:   998,
		PaymentMethod: models.PaymentMethodCOD,
	}
	require.NoError(t, n.OrderConfirmation(context.Background(), order))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "asha@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "order-1")
	assert.Contains(t, mailer.sent[0].body, "₹998.00")
	assert.Contains(t, mailer.sent[0].body, "Cash on Delivery")
	assert.NotContains(t, mailer.sent[0].body, "<script>")
}

func TestOrderConfirmation_SkipsWithoutEmail(t *testing.T) {
	mailer := &recordingMailer{}
	require.NoError(t, NewNotifier(mailer).OrderConfirmation(context.Background(), models.Order{ID: "x"}))
	assert.Empty(t, mailer.sent)
}

func TestAppointmentReceived_PropagatesMailerError(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	err := NewNotifier(mailer).AppointmentReceived(context.Background(), models.Appointment{
		PatientName:   "Ravi",
		Email:         "ravi@example.com",
		Phone:         "9876543210",
		RequestedDate: "2026-11-02",
	})
	assert.Error(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].body, "2026-11-02")
}

func TestNewMailer_SelectsProvider(t *testing.T) {
	assert.IsType(t, LogMailer{}, NewMailer(&config.Config{MailProvider: "log"}))
	assert.IsType(t, &PostmarkMailer{}, NewMailer(&config.Config{MailProvider: "postmark", PostmarkAPIToken: "t"}))
	assert.IsType(t, &SendGridMailer{}, NewMailer(&config.Config{MailProvider: "sendgrid", SendGridAPIKey: "k"}))
}
