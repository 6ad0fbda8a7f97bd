package domain

import "time"

type SeatClass string

const (
	SeatClassEconomy    SeatClass = "ECONOMY"
	SeatClassBusiness   SeatClass = "BUSINESS"
	SeatClassFirstClass SeatClass = "FIRST_CLASS"
)

func ValidSeatClass(c SeatClass) bool {
	switch c {
	case SeatClassEconomy, SeatClassBusiness, SeatClassFirstClass:
		return true
	}
	return false
}

type Seat struct {
	ID         int64
	SeatNumber string
	SeatClass  SeatClass
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
