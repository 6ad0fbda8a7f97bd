package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type Booking struct {
	ID               int64
	BookingReference string
	UserID           int64
	FlightID         int64
	TotalAmountCents int64
	BookingStatus    BookingStatus
	PaymentStatus    PaymentStatus
	BookingDate      time.Time
	PaymentDate      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
