package tickets

import (
	"context"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
)

type TicketUseCase interface {
	Issue(ctx context.Context, input IssueInput) (*domain.Ticket, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Ticket], error)
	Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Ticket], error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Ticket, error)
	ListForUser(ctx context.Context, username string) ([]domain.Ticket, error)
	CheckIn(ctx context.Context, id int64) (*domain.Ticket, error)
	Board(ctx context.Context, id int64) (*domain.Ticket, error)
	Cancel(ctx context.Context, id int64) (*domain.Ticket, error)
}

type IssueInput struct {
	BookingID      int64  `json:"booking_id"`
	FlightSeatID   int64  `json:"flight_seat_id"`
	PassengerName  string `json:"passenger_name"`
	PassengerEmail string `json:"passenger_email"`
	PassengerPhone string `json:"passenger_phone"`
	PassportNumber string `json:"passport_number"`
}

type TicketService struct {
	tickets     repository.TicketRepository
	bookings    repository.BookingRepository
	flightSeats repository.FlightSeatRepository
}

var _ TicketUseCase = (*TicketService)(nil)

func NewTicketService(
	tickets repository.TicketRepository,
	bookings repository.BookingRepository,
	flightSeats repository.FlightSeatRepository,
) *TicketService {
	return &TicketService{tickets: tickets, bookings: bookings, flightSeats: flightSeats}
}

// Issue adds a ticket to an existing booking, taking the seat atomically.
func (s *TicketService) Issue(ctx context.Context, input IssueInput) (*domain.Ticket, error) {
	if input.PassengerName == "" {
		return nil, apperr.Validation(map[string]string{"passenger_name": "must not be blank"})
	}
	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookingStatus == domain.BookingStatusCancelled {
		return nil, apperr.BadRequest("cannot add ticket to cancelled booking")
	}
	if _, err := s.flightSeats.GetByID(ctx, input.FlightSeatID); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		TicketNumber:   domain.NewTicketNumber(),
		BookingID:      booking.ID,
		FlightSeatID:   input.FlightSeatID,
		PassengerName:  input.PassengerName,
		PassengerEmail: input.PassengerEmail,
		PassengerPhone: input.PassengerPhone,
		PassportNumber: input.PassportNumber,
		TicketStatus:   domain.TicketStatusIssued,
	}
	if err := s.tickets.CreateIssued(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

func (s *TicketService) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	return s.tickets.GetByNumber(ctx, ticketNumber)
}

func (s *TicketService) List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Ticket], error) {
	return s.tickets.List(ctx, page)
}

func (s *TicketService) Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Ticket], error) {
	return s.tickets.Search(ctx, term, page)
}

func (s *TicketService) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Ticket, error) {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.tickets.ListByBooking(ctx, bookingID)
}

func (s *TicketService) ListForUser(ctx context.Context, username string) ([]domain.Ticket, error) {
	return s.tickets.ListByUsername(ctx, username)
}

func (s *TicketService) CheckIn(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.TicketStatus != domain.TicketStatusIssued {
		return nil, apperr.BadRequest("only issued tickets can be checked in")
	}
	return s.tickets.Transition(ctx, id, domain.TicketStatusIssued, domain.TicketStatusCheckedIn, "check_in_time")
}

func (s *TicketService) Board(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.TicketStatus != domain.TicketStatusCheckedIn {
		return nil, apperr.BadRequest("only checked-in tickets can board")
	}
	return s.tickets.Transition(ctx, id, domain.TicketStatusCheckedIn, domain.TicketStatusBoarded, "boarding_time")
}

func (s *TicketService) Cancel(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch ticket.TicketStatus {
	case domain.TicketStatusBoarded:
		return nil, apperr.BadRequest("cannot cancel boarded ticket")
	case domain.TicketStatusCancelled:
		return nil, apperr.BadRequest("ticket is already cancelled")
	}
	return s.tickets.CancelWithSeatRelease(ctx, id)
}
