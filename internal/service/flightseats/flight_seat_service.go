package flightseats

import (
	"context"
	"strings"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
)

type FlightSeatUseCase interface {
	Create(ctx context.Context, input CreateInput) (*domain.FlightSeat, error)
	BulkCreate(ctx context.Context, input BulkCreateInput) (*BulkCreateResult, error)
	GetByID(ctx context.Context, id int64) (*domain.FlightSeat, error)
	ListAvailable(ctx context.Context, flightID int64, class string) ([]domain.FlightSeat, error)
	Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.FlightSeat], error)
	Update(ctx context.Context, id int64, input UpdateInput) (*domain.FlightSeat, error)
	Book(ctx context.Context, id int64) (*domain.FlightSeat, error)
	Release(ctx context.Context, id int64) error
}

type CreateInput struct {
	FlightID   int64 `json:"flight_id"`
	SeatID     int64 `json:"seat_id"`
	PriceCents int64 `json:"price_cents"`
}

// BulkSeatInput is one seat assignment in a bulk request. IsAvailable is
// optional and defaults to true when omitted.
type BulkSeatInput struct {
	SeatID      int64 `json:"seat_id"`
	PriceCents  int64 `json:"price_cents"`
	IsAvailable *bool `json:"is_available"`
}

type BulkCreateInput struct {
	FlightID int64           `json:"flight_id"`
	Seats    []BulkSeatInput `json:"seats"`
}

// BulkCreateResult reports which seats were assigned and which were skipped
// because they were already on the flight.
type BulkCreateResult struct {
	Created        []domain.FlightSeat `json:"created"`
	SkippedSeatIDs []int64             `json:"skipped_seat_ids"`
}

type UpdateInput struct {
	PriceCents  int64 `json:"price_cents"`
	IsAvailable bool  `json:"is_available"`
}

type FlightSeatService struct {
	flightSeats repository.FlightSeatRepository
	flights     repository.FlightRepository
	seats       repository.SeatRepository
}

var _ FlightSeatUseCase = (*FlightSeatService)(nil)

func NewFlightSeatService(
	flightSeats repository.FlightSeatRepository,
	flights repository.FlightRepository,
	seats repository.SeatRepository,
) *FlightSeatService {
	return &FlightSeatService{flightSeats: flightSeats, flights: flights, seats: seats}
}

func (s *FlightSeatService) Create(ctx context.Context, input CreateInput) (*domain.FlightSeat, error) {
	if input.PriceCents < 0 {
		return nil, apperr.BadRequest("price must not be negative")
	}
	if _, err := s.flights.GetByID(ctx, input.FlightID); err != nil {
		return nil, err
	}
	seat, err := s.seats.GetByID(ctx, input.SeatID)
	if err != nil {
		return nil, err
	}

	fs := &domain.FlightSeat{
		FlightID:    input.FlightID,
		SeatID:      input.SeatID,
		PriceCents:  input.PriceCents,
		IsAvailable: true,
	}
	if err := s.flightSeats.Create(ctx, fs); err != nil {
		return nil, err
	}
	fs.SeatNumber = seat.SeatNumber
	fs.SeatClass = seat.SeatClass
	return fs, nil
}

// BulkCreate assigns many seats to a flight in one call. Seats already on the
// flight are skipped, not errors, so the operation can be re-run safely.
func (s *FlightSeatService) BulkCreate(ctx context.Context, input BulkCreateInput) (*BulkCreateResult, error) {
	if len(input.Seats) == 0 {
		return nil, apperr.BadRequest("at least one seat is required")
	}
	for _, entry := range input.Seats {
		if entry.PriceCents < 0 {
			return nil, apperr.BadRequest("price must not be negative")
		}
	}
	if _, err := s.flights.GetByID(ctx, input.FlightID); err != nil {
		return nil, err
	}

	result := &BulkCreateResult{}
	for _, entry := range input.Seats {
		seat, err := s.seats.GetByID(ctx, entry.SeatID)
		if err != nil {
			return nil, err
		}

		exists, err := s.flightSeats.ExistsPair(ctx, input.FlightID, entry.SeatID)
		if err != nil {
			return nil, err
		}
		if exists {
			result.SkippedSeatIDs = append(result.SkippedSeatIDs, entry.SeatID)
			continue
		}

		available := entry.IsAvailable == nil || *entry.IsAvailable
		fs := &domain.FlightSeat{
			FlightID:    input.FlightID,
			SeatID:      entry.SeatID,
			PriceCents:  entry.PriceCents,
			IsAvailable: available,
		}
		if err := s.flightSeats.Create(ctx, fs); err != nil {
			return nil, err
		}
		fs.SeatNumber = seat.SeatNumber
		fs.SeatClass = seat.SeatClass
		result.Created = append(result.Created, *fs)
	}
	return result, nil
}

func (s *FlightSeatService) GetByID(ctx context.Context, id int64) (*domain.FlightSeat, error) {
	return s.flightSeats.GetByID(ctx, id)
}

func (s *FlightSeatService) ListAvailable(ctx context.Context, flightID int64, class string) ([]domain.FlightSeat, error) {
	if _, err := s.flights.GetByID(ctx, flightID); err != nil {
		return nil, err
	}
	if class == "" {
		return s.flightSeats.ListAvailableByFlight(ctx, flightID)
	}
	c := domain.SeatClass(strings.ToUpper(strings.TrimSpace(class)))
	if !domain.ValidSeatClass(c) {
		return nil, apperr.BadRequest("unknown seat class: %s", class)
	}
	return s.flightSeats.ListAvailableByFlightAndClass(ctx, flightID, c)
}

func (s *FlightSeatService) Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.FlightSeat], error) {
	return s.flightSeats.Search(ctx, term, page)
}

func (s *FlightSeatService) Update(ctx context.Context, id int64, input UpdateInput) (*domain.FlightSeat, error) {
	if input.PriceCents < 0 {
		return nil, apperr.BadRequest("price must not be negative")
	}
	fs, err := s.flightSeats.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fs.IsOccupied && input.IsAvailable {
		return nil, apperr.BadRequest("occupied seat cannot be made available")
	}

	fs.PriceCents = input.PriceCents
	fs.IsAvailable = input.IsAvailable
	if err := s.flightSeats.Update(ctx, fs); err != nil {
		return nil, err
	}
	return fs, nil
}

func (s *FlightSeatService) Book(ctx context.Context, id int64) (*domain.FlightSeat, error) {
	return s.flightSeats.Book(ctx, id)
}

func (s *FlightSeatService) Release(ctx context.Context, id int64) error {
	if _, err := s.flightSeats.GetByID(ctx, id); err != nil {
		return err
	}
	return s.flightSeats.Release(ctx, id)
}
