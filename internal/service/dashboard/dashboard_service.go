package dashboard

import (
	"context"
	"time"

	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
)

type DashboardUseCase interface {
	Stats(ctx context.Context) (*Stats, error)
	GlobalSearch(ctx context.Context, term string, page repository.Page) (*SearchResult, error)
}

// Stats is the admin dashboard snapshot.
type Stats struct {
	TotalUsers            int64 `json:"total_users"`
	NewUsersLast30Days    int64 `json:"new_users_last_30_days"`
	TotalAirports         int64 `json:"total_airports"`
	TotalFlights          int64 `json:"total_flights"`
	ScheduledFlights      int64 `json:"scheduled_flights"`
	CancelledFlights      int64 `json:"cancelled_flights"`
	TotalBookings         int64 `json:"total_bookings"`
	ConfirmedBookings     int64 `json:"confirmed_bookings"`
	PendingBookings       int64 `json:"pending_bookings"`
	CancelledBookings     int64 `json:"cancelled_bookings"`
	BookingsLast30Days    int64 `json:"bookings_last_30_days"`
	TotalTickets          int64 `json:"total_tickets"`
	TotalRevenueCents     int64 `json:"total_revenue_cents"`
	RevenueThisMonthCents int64 `json:"revenue_this_month_cents"`
}

// SearchResult carries one page of matches per entity for a single term. The
// api layer maps it onto response DTOs before serialization.
type SearchResult struct {
	Airports []domain.Airport
	Flights  []domain.Flight
	Bookings []domain.Booking
	Users    []domain.User
	Tickets  []domain.Ticket
}

type DashboardService struct {
	users    repository.UserRepository
	airports repository.AirportRepository
	flights  repository.FlightRepository
	bookings repository.BookingRepository
	tickets  repository.TicketRepository
}

var _ DashboardUseCase = (*DashboardService)(nil)

func NewDashboardService(
	users repository.UserRepository,
	airports repository.AirportRepository,
	flights repository.FlightRepository,
	bookings repository.BookingRepository,
	tickets repository.TicketRepository,
) *DashboardService {
	return &DashboardService{
		users:    users,
		airports: airports,
		flights:  flights,
		bookings: bookings,
		tickets:  tickets,
	}
}

func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	stats := &Stats{}

	var err error
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.NewUsersLast30Days, err = s.users.CountCreatedBetween(ctx, now.AddDate(0, 0, -30), now); err != nil {
		return nil, err
	}
	if stats.TotalAirports, err = s.airports.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalFlights, err = s.flights.Count(ctx); err != nil {
		return nil, err
	}
	if stats.ScheduledFlights, err = s.flights.CountByStatus(ctx, domain.FlightStatusScheduled); err != nil {
		return nil, err
	}
	if stats.CancelledFlights, err = s.flights.CountByStatus(ctx, domain.FlightStatusCancelled); err != nil {
		return nil, err
	}
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
	if stats.TotalTickets, err = s.tickets.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalRevenueCents, err = s.bookings.RevenueBetween(ctx, time.Time{}, now); err != nil {
		return nil, err
	}
	if stats.RevenueThisMonthCents, err = s.bookings.RevenueBetween(ctx, monthStart, now); err != nil {
		return nil, err
	}
	return stats, nil
}

// GlobalSearch runs the per-entity searches with the same term and page. A
// failing leg fails the whole search rather than returning partial results.
func (s *DashboardService) GlobalSearch(ctx context.Context, term string, page repository.Page) (*SearchResult, error) {
	result := &SearchResult{}

	airports, err := s.airports.Search(ctx, term, page)
	if err != nil {
		return nil, err
	}
	result.Airports = airports.Items

	flights, err := s.flights.Search(ctx, term, page)
	if err != nil {
		return nil, err
	}
	result.Flights = flights.Items

	bookings, err := s.bookings.Search(ctx, term, page)
	if err != nil {
		return nil, err
	}
	result.Bookings = bookings.Items

	users, err := s.users.Search(ctx, term, page)
	if err != nil {
		return nil, err
	}
	result.Users = users.Items

	tickets, err := s.tickets.Search(ctx, term, page)
	if err != nil {
		return nil, err
	}
	result.Tickets = tickets.Items

	return result, nil
}
