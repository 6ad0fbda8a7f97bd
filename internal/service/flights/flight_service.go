package flights

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
)

type FlightUseCase interface {
	Create(ctx context.Context, input FlightInput) (*domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error)
	List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Flight], error)
	Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Flight], error)
	FindByRoute(ctx context.Context, departureAirportID, arrivalAirportID int64, date time.Time, page repository.Page) (*repository.PageResult[domain.Flight], error)
	ListByStatus(ctx context.Context, status string, page repository.Page) (*repository.PageResult[domain.Flight], error)
	ListByDateRange(ctx context.Context, start, end time.Time, page repository.Page) (*repository.PageResult[domain.Flight], error)
	ListByAirport(ctx context.Context, airportID int64, page repository.Page) (*repository.PageResult[domain.Flight], error)
	Upcoming(ctx context.Context) ([]domain.Flight, error)
	Update(ctx context.Context, id int64, input FlightInput) (*domain.Flight, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) error
	MarkArrivedFlights(ctx context.Context) (int, error)
}

// Cache keeps the upcoming-flights listing out of the database on hot reads.
type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightInput struct {
	FlightNumber       string    `json:"flight_number"`
	DepartureAirportID int64     `json:"departure_airport_id"`
	ArrivalAirportID   int64     `json:"arrival_airport_id"`
	DepartureTime      time.Time `json:"departure_time"`
	ArrivalTime        time.Time `json:"arrival_time"`
	GateNumber         string    `json:"gate_number"`
	Terminal           string    `json:"terminal"`
	AircraftType       string    `json:"aircraft_type"`
}

type FlightService struct {
	flights  repository.FlightRepository
	airports repository.AirportRepository
	cache    Cache
}

var _ FlightUseCase = (*FlightService)(nil)

type FlightServiceOption func(*FlightService)

func WithCache(cache Cache) FlightServiceOption {
	return func(s *FlightService) { s.cache = cache }
}

func NewFlightService(flights repository.FlightRepository, airports repository.AirportRepository, opts ...FlightServiceOption) *FlightService {
	service := &FlightService{flights: flights, airports: airports}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *FlightService) Create(ctx context.Context, input FlightInput) (*domain.Flight, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	// only on create: updates to flights already in the past stay legal
	if !input.DepartureTime.After(time.Now()) {
		return nil, apperr.BadRequest("departure time must be in the future")
	}
	number := strings.ToUpper(strings.TrimSpace(input.FlightNumber))

	exists, err := s.flights.ExistsByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.BadRequest("flight with number %s already exists", number)
	}

	flight := &domain.Flight{
		FlightNumber:       number,
		DepartureAirportID: input.DepartureAirportID,
		ArrivalAirportID:   input.ArrivalAirportID,
		DepartureTime:      input.DepartureTime,
		ArrivalTime:        input.ArrivalTime,
		DurationMinutes:    int(input.ArrivalTime.Sub(input.DepartureTime).Minutes()),
		Status:             domain.FlightStatusScheduled,
		GateNumber:         input.GateNumber,
		Terminal:           input.Terminal,
		AircraftType:       input.AircraftType,
	}
	if err := s.flights.Create(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.flights.GetByID(ctx, id)
}

func (s *FlightService) GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	return s.flights.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(flightNumber)))
}

func (s *FlightService) List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Flight], error) {
	return s.flights.List(ctx, page)
}

func (s *FlightService) Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Flight], error) {
	return s.flights.Search(ctx, term, page)
}

func (s *FlightService) FindByRoute(ctx context.Context, departureAirportID, arrivalAirportID int64, date time.Time, page repository.Page) (*repository.PageResult[domain.Flight], error) {
	if departureAirportID == arrivalAirportID {
		return nil, apperr.BadRequest("departure and arrival airports must differ")
	}
	return s.flights.FindByRoute(ctx, departureAirportID, arrivalAirportID, date, page)
}

func (s *FlightService) ListByStatus(ctx context.Context, status string, page repository.Page) (*repository.PageResult[domain.Flight], error) {
	fs := domain.FlightStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !domain.ValidFlightStatus(fs) {
		return nil, apperr.BadRequest("unknown flight status: %s", status)
	}
	return s.flights.ListByStatus(ctx, fs, page)
}

func (s *FlightService) ListByDateRange(ctx context.Context, start, end time.Time, page repository.Page) (*repository.PageResult[domain.Flight], error) {
	if end.Before(start) {
		return nil, apperr.BadRequest("end date must not be before start date")
	}
	return s.flights.ListByDateRange(ctx, start, end, page)
}

func (s *FlightService) ListByAirport(ctx context.Context, airportID int64, page repository.Page) (*repository.PageResult[domain.Flight], error) {
	if _, err := s.airports.GetByID(ctx, airportID); err != nil {
		return nil, err
	}
	return s.flights.ListByAirport(ctx, airportID, page)
}

// Upcoming serves not-yet-departed flights, from cache when warm.
func (s *FlightService) Upcoming(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			log.Printf("WARNING: flights cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.flights.Upcoming(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			log.Printf("WARNING: flights cache write failed: %v", err)
		}
	}
	return flights, nil
}

func (s *FlightService) Update(ctx context.Context, id int64, input FlightInput) (*domain.Flight, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	number := strings.ToUpper(strings.TrimSpace(input.FlightNumber))
	if number != flight.FlightNumber {
		exists, err := s.flights.ExistsByNumber(ctx, number)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.BadRequest("flight with number %s already exists", number)
		}
	}

	flight.FlightNumber = number
	flight.DepartureAirportID = input.DepartureAirportID
	flight.ArrivalAirportID = input.ArrivalAirportID
	flight.DepartureTime = input.DepartureTime
	flight.ArrivalTime = input.ArrivalTime
	flight.DurationMinutes = int(input.ArrivalTime.Sub(input.DepartureTime).Minutes())
	flight.GateNumber = input.GateNumber
	flight.Terminal = input.Terminal
	flight.AircraftType = input.AircraftType

	if err := s.flights.Update(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Flight, error) {
	fs := domain.FlightStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !domain.ValidFlightStatus(fs) {
		return nil, apperr.BadRequest("unknown flight status: %s", status)
	}
	flight, err := s.flights.UpdateStatus(ctx, id, fs)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) Delete(ctx context.Context, id int64) error {
	if _, err := s.flights.GetByID(ctx, id); err != nil {
		return err
	}
	hasBookings, err := s.flights.HasBookings(ctx, id)
	if err != nil {
		return err
	}
	if hasBookings {
		return apperr.BadRequest("cannot delete flight with existing bookings")
	}
	if err := s.flights.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// MarkArrivedFlights flips flights past their arrival time to ARRIVED. The
// worker runs it on a timer.
func (s *FlightService) MarkArrivedFlights(ctx context.Context) (int, error) {
	arrived, err := s.flights.MarkArrivedBefore(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if len(arrived) > 0 {
		s.invalidate(ctx)
	}
	return len(arrived), nil
}

func (s *FlightService) validate(ctx context.Context, input FlightInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(input.FlightNumber) == "" {
		fields["flight_number"] = "must not be blank"
	}
	if input.DepartureTime.IsZero() {
		fields["departure_time"] = "must be set"
	}
	if input.ArrivalTime.IsZero() {
		fields["arrival_time"] = "must be set"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}

	if input.DepartureAirportID == input.ArrivalAirportID {
		return apperr.BadRequest("departure and arrival airports must differ")
	}
	if !input.ArrivalTime.After(input.DepartureTime) {
		return apperr.BadRequest("arrival time must be after departure time")
	}
	if _, err := s.airports.GetByID(ctx, input.DepartureAirportID); err != nil {
		return err
	}
	if _, err := s.airports.GetByID(ctx, input.ArrivalAirportID); err != nil {
		return err
	}
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		log.Printf("WARNING: flights cache invalidation failed: %v", err)
	}
}
