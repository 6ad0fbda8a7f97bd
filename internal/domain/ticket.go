package domain

import "time"

type TicketStatus string

const (
	TicketStatusIssued    TicketStatus = "ISSUED"
	TicketStatusCheckedIn TicketStatus = "CHECKED_IN"
	TicketStatusBoarded   TicketStatus = "BOARDED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
	TicketStatusNoShow    TicketStatus = "NO_SHOW"
)

type Ticket struct {
	ID             int64
	TicketNumber   string
	BookingID      int64
	FlightSeatID   int64
	PassengerName  string
	PassengerEmail string
	PassengerPhone string
	PassportNumber string
	TicketStatus   TicketStatus
	CheckInTime    *time.Time
	BoardingTime   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
