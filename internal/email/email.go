package email

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"text/template"

	"github.com/flyair/flyair-backend/internal/kafka"
)

// Sender renders notification events into transactional emails. The default
// implementation writes to the log; a real SMTP transport can be swapped in
// behind the same interface.
type Sender struct {
	from string
}

func NewSender(from string) *Sender {
	return &Sender{from: from}
}

var templates = map[string]*template.Template{
	kafka.EventBookingCreated: template.Must(template.New("booking_created").Parse(
		"Hello {{.Name}},\n\nYour booking {{.BookingReference}} on flight {{.FlightNumber}} departing {{.DepartureTime.Format \"Mon, 02 Jan 2006 15:04 MST\"}} is confirmed.\n")),
	kafka.EventBookingCancelled: template.Must(template.New("booking_cancelled").Parse(
		"Hello {{.Name}},\n\nYour booking {{.BookingReference}} has been cancelled. Any completed payment will be refunded.\n")),
	kafka.EventUserRegistered: template.Must(template.New("user_registered").Parse(
		"Welcome aboard, {{.Name}}!\n\nYour FlyAir account is ready.\n")),
	kafka.EventPasswordReset: template.Must(template.New("password_reset").Parse(
		"Hello {{.Name}},\n\nUse this token to reset your password: {{.ResetToken}}\nThe token expires in one hour.\n")),
}

var subjects = map[string]string{
	kafka.EventBookingCreated:   "Booking confirmation",
	kafka.EventBookingCancelled: "Booking cancelled",
	kafka.EventUserRegistered:   "Welcome to FlyAir",
	kafka.EventPasswordReset:    "Password reset",
}

func (s *Sender) Send(ctx context.Context, event kafka.NotificationEvent) error {
	tmpl, ok := templates[event.Type]
	if !ok {
		return fmt.Errorf("unknown notification type: %s", event.Type)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, event); err != nil {
		return fmt.Errorf("render %s email: %w", event.Type, err)
	}

	log.Printf("email from=%s to=%s subject=%q\n%s", s.from, event.Email, subjects[event.Type], body.String())
	return nil
}
