package domain

import "time"

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "SCHEDULED"
	FlightStatusBoarding  FlightStatus = "BOARDING"
	FlightStatusDeparted  FlightStatus = "DEPARTED"
	FlightStatusInFlight  FlightStatus = "IN_FLIGHT"
	FlightStatusArrived   FlightStatus = "ARRIVED"
	FlightStatusDelayed   FlightStatus = "DELAYED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
)

// ValidFlightStatus reports whether s is one of the known flight statuses.
func ValidFlightStatus(s FlightStatus) bool {
	switch s {
	case FlightStatusScheduled, FlightStatusBoarding, FlightStatusDeparted,
		FlightStatusInFlight, FlightStatusArrived, FlightStatusDelayed, FlightStatusCancelled:
		return true
	}
	return false
}

type Flight struct {
	ID                 int64
	FlightNumber       string
	DepartureAirportID int64
	ArrivalAirportID   int64
	DepartureTime      time.Time
	ArrivalTime        time.Time
	DurationMinutes    int
	Status             FlightStatus
	GateNumber         string
	Terminal           string
	AircraftType       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
