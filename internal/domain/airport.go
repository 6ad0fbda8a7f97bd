package domain

import "time"

type Airport struct {
	ID          int64
	AirportCode string
	AirportName string
	City        string
	Country     string
	CountryCode string
	TimeZone    string
	Latitude    float64
	Longitude   float64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
