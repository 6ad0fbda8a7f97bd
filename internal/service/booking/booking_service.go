package booking

import (
	"context"
	"log"
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/kafka"
	"github.com/flyair/flyair-backend/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, username string, input CreateBookingInput) (*BookingDetails, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Booking], error)
	Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Booking], error)
	ListForUser(ctx context.Context, username string, page repository.Page) (*repository.PageResult[domain.Booking], error)
	CancelBooking(ctx context.Context, id int64) (*domain.Booking, error)
	Stats(ctx context.Context) (*BookingStats, error)
}

// Cache hands out short-lived seat holds while a booking request is in flight.
type Cache interface {
	AcquireSeatHold(ctx context.Context, flightSeatID int64, ttl time.Duration) (bool, error)
	ReleaseSeatHold(ctx context.Context, flightSeatID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type PassengerInput struct {
	Name           string `json:"passenger_name"`
	Email          string `json:"passenger_email"`
	Phone          string `json:"passenger_phone"`
	PassportNumber string `json:"passport_number"`
}

type CreateBookingInput struct {
	FlightID      int64            `json:"flight_id"`
	FlightSeatIDs []int64          `json:"flight_seat_ids"`
	Passengers    []PassengerInput `json:"passengers"`
}

// BookingDetails is the booking together with the tickets issued for it.
type BookingDetails struct {
	Booking domain.Booking
	Tickets []domain.Ticket
}

type BookingStats struct {
	TotalBookings         int64 `json:"total_bookings"`
	ConfirmedBookings     int64 `json:"confirmed_bookings"`
	PendingBookings       int64 `json:"pending_bookings"`
	CancelledBookings     int64 `json:"cancelled_bookings"`
	BookingsLast30Days    int64 `json:"bookings_last_30_days"`
	RevenueLastYearCents  int64 `json:"revenue_last_year_cents"`
	RevenueThisMonthCents int64 `json:"revenue_this_month_cents"`
}

type BookingService struct {
	bookings     repository.BookingRepository
	flights      repository.FlightRepository
	users        repository.UserRepository
	flightSeats  repository.FlightSeatRepository
	cache        Cache
	producer     Producer
	topic        string
	leadTime     time.Duration
	cancelCutoff time.Duration
	holdTTL      time.Duration
}

var _ BookingUseCase = (*BookingService)(nil)

type BookingServiceOption func(*BookingService)

func WithSeatHolds(cache Cache, holdTTL time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
		s.holdTTL = holdTTL
	}
}

func WithNotifications(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.topic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	users repository.UserRepository,
	flightSeats repository.FlightSeatRepository,
	leadTime, cancelCutoff time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		flights:      flights,
		users:        users,
		flightSeats:  flightSeats,
		leadTime:     leadTime,
		cancelCutoff: cancelCutoff,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, username string, input CreateBookingInput) (*BookingDetails, error) {
	if len(input.FlightSeatIDs) == 0 {
		return nil, apperr.BadRequest("at least one seat is required")
	}
	if len(input.Passengers) != len(input.FlightSeatIDs) {
		return nil, apperr.BadRequest("passenger count (%d) must match seat count (%d)",
			len(input.Passengers), len(input.FlightSeatIDs))
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if flight.Status != domain.FlightStatusScheduled {
		return nil, apperr.BadRequest("flight is not available for booking")
	}
	if flight.DepartureTime.Before(time.Now().Add(s.leadTime)) {
		return nil, apperr.BadRequest("cannot book flight less than %d hours before departure", int(s.leadTime.Hours()))
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	held, err := s.acquireHolds(ctx, input.FlightSeatIDs)
	if err != nil {
		return nil, err
	}
	defer s.releaseHolds(ctx, held)

	seats := make([]domain.FlightSeat, 0, len(input.FlightSeatIDs))
	var totalCents int64
	for _, seatID := range input.FlightSeatIDs {
		fs, err := s.flightSeats.GetByID(ctx, seatID)
		if err != nil {
			return nil, err
		}
		if !fs.IsAvailable || fs.IsOccupied {
			return nil, apperr.BadRequest("flight seat is not available: %s", fs.SeatNumber)
		}
		seats = append(seats, *fs)
		totalCents += fs.PriceCents
	}

	booking := &domain.Booking{
		BookingReference: domain.NewBookingReference(),
		UserID:           user.ID,
		FlightID:         flight.ID,
		TotalAmountCents: totalCents,
		BookingStatus:    domain.BookingStatusPending,
		PaymentStatus:    domain.PaymentStatusPending,
		BookingDate:      time.Now(),
	}

	tickets := make([]*domain.Ticket, 0, len(seats))
	for i, fs := range seats {
		p := input.Passengers[i]
		tickets = append(tickets, &domain.Ticket{
			TicketNumber:   domain.NewTicketNumber(),
			FlightSeatID:   fs.ID,
			PassengerName:  p.Name,
			PassengerEmail: p.Email,
			PassengerPhone: p.Phone,
			PassportNumber: p.PassportNumber,
			TicketStatus:   domain.TicketStatusIssued,
		})
	}

	if err := s.bookings.CreateWithTickets(ctx, booking, tickets); err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.NotificationEvent{
		Type:             kafka.EventBookingCreated,
		Email:            user.Email,
		Name:             user.FirstName,
		BookingReference: booking.BookingReference,
		FlightNumber:     flight.FlightNumber,
		DepartureTime:    flight.DepartureTime,
	})

	details := &BookingDetails{Booking: *booking}
	for _, t := range tickets {
		details.Tickets = append(details.Tickets, *t)
	}
	return details, nil
}

func (s *BookingService) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.bookings.GetByReference(ctx, reference)
}

func (s *BookingService) List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Booking], error) {
	return s.bookings.List(ctx, page)
}

func (s *BookingService) Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Booking], error) {
	return s.bookings.Search(ctx, term, page)
}

func (s *BookingService) ListForUser(ctx context.Context, username string, page repository.Page) (*repository.PageResult[domain.Booking], error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListByUser(ctx, user.ID, page)
}

func (s *BookingService) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.BookingStatus == domain.BookingStatusCancelled {
		return nil, apperr.BadRequest("booking is already cancelled")
	}
	if booking.BookingStatus == domain.BookingStatusCompleted {
		return nil, apperr.BadRequest("cannot cancel completed booking")
	}

	flight, err := s.flights.GetByID(ctx, booking.FlightID)
	if err != nil {
		return nil, err
	}
	if flight.DepartureTime.Before(time.Now().Add(s.cancelCutoff)) {
		return nil, apperr.BadRequest("cannot cancel booking less than %d hours before departure", int(s.cancelCutoff.Hours()))
	}

	refund := booking.PaymentStatus == domain.PaymentStatusPaid
	cancelled, _, err := s.bookings.Cancel(ctx, id, refund)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, cancelled.UserID)
	if err == nil {
		s.publish(ctx, kafka.NotificationEvent{
			Type:             kafka.EventBookingCancelled,
			Email:            user.Email,
			Name:             user.FirstName,
			BookingReference: cancelled.BookingReference,
			FlightNumber:     flight.FlightNumber,
			DepartureTime:    flight.DepartureTime,
		})
	}

	return cancelled, nil
}

func (s *BookingService) Stats(ctx context.Context) (*BookingStats, error) {
	now := time.Now()
	stats := &BookingStats{}

	var err error
	if stats.TotalBookings, err = s.bookings.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ConfirmedBookings, err = s.bookings.CountByStatus(ctx, domain.BookingStatusConfirmed); err != nil {
		return nil, err
	}
	if stats.PendingBookings, err = s.bookings.CountByStatus(ctx, domain.BookingStatusPending); err != nil {
		return nil, err
	}
	if stats.CancelledBookings, err = s.bookings.CountByStatus(ctx, domain.BookingStatusCancelled); err != nil {
		return nil, err
	}
	if stats.BookingsLast30Days, err = s.bookings.CountBookedBetween(ctx, now.AddDate(0, 0, -30), now); err != nil {
		return nil, err
	}
	if stats.RevenueLastYearCents, err = s.bookings.RevenueBetween(ctx, now.AddDate(-1, 0, 0), now); err != nil {
		return nil, err
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if stats.RevenueThisMonthCents, err = s.bookings.RevenueBetween(ctx, monthStart, now); err != nil {
		return nil, err
	}
	return stats, nil
}

// acquireHolds takes a redis hold on every requested seat, releasing any
// already-taken holds when one of them is contended.
func (s *BookingService) acquireHolds(ctx context.Context, seatIDs []int64) ([]int64, error) {
	if s.cache == nil {
		return nil, nil
	}
	held := make([]int64, 0, len(seatIDs))
	for _, id := range seatIDs {
		ok, err := s.cache.AcquireSeatHold(ctx, id, s.holdTTL)
		if err != nil {
			s.releaseHolds(ctx, held)
			return nil, err
		}
		if !ok {
			s.releaseHolds(ctx, held)
			return nil, apperr.Conflict("seat is held by another booking")
		}
		held = append(held, id)
	}
	return held, nil
}

func (s *BookingService) releaseHolds(ctx context.Context, seatIDs []int64) {
	if s.cache == nil {
		return
	}
	for _, id := range seatIDs {
		_ = s.cache.ReleaseSeatHold(ctx, id)
	}
}

func (s *BookingService) publish(ctx context.Context, event kafka.NotificationEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, event.BookingReference, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", event.Type, event.BookingReference, err)
	}
}
