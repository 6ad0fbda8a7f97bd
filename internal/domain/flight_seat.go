package domain

import "time"

// FlightSeat is the bookable unit: one seat on one flight at a price.
// A seat can be sold only while IsAvailable && !IsOccupied.
type FlightSeat struct {
	ID          int64
	FlightID    int64
	SeatID      int64
	PriceCents  int64
	IsAvailable bool
	IsOccupied  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// SeatNumber and SeatClass are denormalized from the joined seat row on reads.
	SeatNumber string
	SeatClass  SeatClass
}
