package kafka

import "time"

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventUserRegistered   = "user_registered"
	EventPasswordReset    = "password_reset"
)

// NotificationEvent is the payload published to the notifications topic and
// consumed by the worker, which renders and sends the matching email.
type NotificationEvent struct {
	Type             string    `json:"type"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	BookingReference string    `json:"booking_reference,omitempty"`
	FlightNumber     string    `json:"flight_number,omitempty"`
	DepartureTime    time.Time `json:"departure_time,omitempty"`
	ResetToken       string    `json:"reset_token,omitempty"`
}
