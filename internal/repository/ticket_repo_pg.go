package repository

import (
	"context"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	// CreateIssued books the seat and inserts the ticket in one transaction.
	CreateIssued(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	List(ctx context.Context, page Page) (*PageResult[domain.Ticket], error)
	Search(ctx context.Context, term string, page Page) (*PageResult[domain.Ticket], error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Ticket, error)
	ListByUsername(ctx context.Context, username string) ([]domain.Ticket, error)
	// Transition moves the ticket from one status to another with a conditional
	// update; zero rows affected means the ticket left the expected state.
	Transition(ctx context.Context, id int64, from, to domain.TicketStatus, stampColumn string) (*domain.Ticket, error)
	// CancelWithSeatRelease cancels the ticket and frees its seat in one transaction.
	CancelWithSeatRelease(ctx context.Context, id int64) (*domain.Ticket, error)
	Count(ctx context.Context) (int64, error)
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `id, ticket_number, booking_id, flight_seat_id, passenger_name, passenger_email, passenger_phone, passport_number, ticket_status, check_in_time, boarding_time, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(&t.ID, &t.TicketNumber, &t.BookingID, &t.FlightSeatID,
		&t.PassengerName, &t.PassengerEmail, &t.PassengerPhone, &t.PassportNumber,
		&t.TicketStatus, &t.CheckInTime, &t.BoardingTime, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGTicketRepository) CreateIssued(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE flight_seats SET is_occupied=true, is_available=false, updated_at=now()
		WHERE id=$1 AND is_available AND NOT is_occupied`, ticket.FlightSeatID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.Conflict("seat is not available")
	}

	ticket.TicketStatus = domain.TicketStatusIssued
	if err := tx.QueryRow(ctx, `INSERT INTO tickets (ticket_number, booking_id, flight_seat_id, passenger_name, passenger_email, passenger_phone, passport_number, ticket_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		ticket.TicketNumber, ticket.BookingID, ticket.FlightSeatID, ticket.PassengerName,
		ticket.PassengerEmail, ticket.PassengerPhone, ticket.PassportNumber, ticket.TicketStatus).
		Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	t, err := scanTicket(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("ticket not found with id: %d", id)
	}
	return t, err
}

func (r *PGTicketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE ticket_number=$1`, ticketNumber)
	t, err := scanTicket(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("ticket not found with number: %s", ticketNumber)
	}
	return t, err
}

func (r *PGTicketRepository) List(ctx context.Context, page Page) (*PageResult[domain.Ticket], error) {
	return r.query(ctx, page, `WHERE true`, nil)
}

func (r *PGTicketRepository) Search(ctx context.Context, term string, page Page) (*PageResult[domain.Ticket], error) {
	pattern := "%" + term + "%"
	return r.query(ctx, page,
		`WHERE ticket_number ILIKE $1 OR passenger_name ILIKE $1 OR passenger_email ILIKE $1 OR passport_number ILIKE $1`,
		[]any{pattern})
}

func (r *PGTicketRepository) query(ctx context.Context, page Page, where string, args []any) (*PageResult[domain.Ticket], error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM tickets `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	listArgs := append(args, page.Limit(), page.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets `+where+
		` ORDER BY created_at DESC LIMIT $`+itoa(n+1)+` OFFSET $`+itoa(n+2), listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &PageResult[domain.Ticket]{Items: items, TotalCount: total, Number: page.Number, Size: page.Limit()}, nil
}

func (r *PGTicketRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Ticket, error) {
	return r.listAll(ctx, `WHERE booking_id=$1`, []any{bookingID})
}

func (r *PGTicketRepository) ListByUsername(ctx context.Context, username string) ([]domain.Ticket, error) {
	return r.listAll(ctx,
		`WHERE booking_id IN (SELECT b.id FROM bookings b JOIN users u ON u.id = b.user_id WHERE u.username=$1)`,
		[]any{username})
}

func (r *PGTicketRepository) listAll(ctx context.Context, where string, args []any) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets `+where+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (r *PGTicketRepository) Transition(ctx context.Context, id int64, from, to domain.TicketStatus, stampColumn string) (*domain.Ticket, error) {
	stamp := ""
	if stampColumn != "" {
		stamp = `, ` + stampColumn + `=now()`
	}
	row := r.db.QueryRow(ctx, `UPDATE tickets SET ticket_status=$1`+stamp+`, updated_at=now()
		WHERE id=$2 AND ticket_status=$3 RETURNING `+ticketColumns, to, id, from)
	t, err := scanTicket(row)
	if isNoRows(err) {
		return nil, apperr.Conflict("ticket is no longer in %s status", from)
	}
	return t, err
}

func (r *PGTicketRepository) CancelWithSeatRelease(ctx context.Context, id int64) (*domain.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE tickets SET ticket_status=$1, updated_at=now()
		WHERE id=$2 AND ticket_status NOT IN ($1, $3)
		RETURNING `+ticketColumns, domain.TicketStatusCancelled, id, domain.TicketStatusBoarded)
	ticket, err := scanTicket(row)
	if isNoRows(err) {
		return nil, apperr.Conflict("ticket cannot be cancelled")
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE flight_seats SET is_occupied=false, is_available=true, updated_at=now() WHERE id=$1`, ticket.FlightSeatID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *PGTicketRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM tickets`).Scan(&n)
	return n, err
}

var _ TicketRepository = (*PGTicketRepository)(nil)
