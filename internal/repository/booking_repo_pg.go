package repository

import (
	"context"
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// CreateWithTickets persists the booking and all of its tickets in one
	// transaction, flipping each bound seat with a conditional update. The
	// whole transaction rolls back if any seat was taken in the meantime.
	CreateWithTickets(ctx context.Context, booking *domain.Booking, tickets []*domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	List(ctx context.Context, page Page) (*PageResult[domain.Booking], error)
	Search(ctx context.Context, term string, page Page) (*PageResult[domain.Booking], error)
	ListByUser(ctx context.Context, userID int64, page Page) (*PageResult[domain.Booking], error)
	// Cancel sets the booking CANCELLED (refunding if requested), cancels its
	// non-cancelled tickets and releases their seats, all in one transaction.
	// It returns the updated booking and the tickets that were cancelled.
	Cancel(ctx context.Context, id int64, refund bool) (*domain.Booking, []domain.Ticket, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.BookingStatus) (int64, error)
	CountBookedBetween(ctx context.Context, start, end time.Time) (int64, error)
	RevenueBetween(ctx context.Context, start, end time.Time) (int64, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, booking_reference, user_id, flight_id, total_amount_cents, booking_status, payment_status, booking_date, payment_date, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.BookingReference, &b.UserID, &b.FlightID, &b.TotalAmountCents,
		&b.BookingStatus, &b.PaymentStatus, &b.BookingDate, &b.PaymentDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) CreateWithTickets(ctx context.Context, booking *domain.Booking, tickets []*domain.Ticket) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (booking_reference, user_id, flight_id, total_amount_cents, booking_status, payment_status, booking_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		booking.BookingReference, booking.UserID, booking.FlightID, booking.TotalAmountCents,
		booking.BookingStatus, booking.PaymentStatus, booking.BookingDate).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for _, t := range tickets {
		cmd, err := tx.Exec(ctx, `UPDATE flight_seats SET is_occupied=true, is_available=false, updated_at=now()
			WHERE id=$1 AND is_available AND NOT is_occupied`, t.FlightSeatID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return apperr.Conflict("seat is not available")
		}

		t.BookingID = booking.ID
		if err := tx.QueryRow(ctx, `INSERT INTO tickets (ticket_number, booking_id, flight_seat_id, passenger_name, passenger_email, passenger_phone, passport_number, ticket_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at`,
			t.TicketNumber, t.BookingID, t.FlightSeatID, t.PassengerName, t.PassengerEmail,
			t.PassengerPhone, t.PassportNumber, t.TicketStatus).
			Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("booking not found with id: %d", id)
	}
	return b, err
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_reference=$1`, reference)
	b, err := scanBooking(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("booking not found with reference: %s", reference)
	}
	return b, err
}

func (r *PGBookingRepository) List(ctx context.Context, page Page) (*PageResult[domain.Booking], error) {
	return r.query(ctx, page, `WHERE true`, nil)
}

func (r *PGBookingRepository) Search(ctx context.Context, term string, page Page) (*PageResult[domain.Booking], error) {
	pattern := "%" + term + "%"
	return r.query(ctx, page,
		`WHERE booking_reference ILIKE $1
			OR EXISTS (SELECT 1 FROM users u WHERE u.id = bookings.user_id AND (u.username ILIKE $1 OR u.email ILIKE $1))
			OR EXISTS (SELECT 1 FROM flights f WHERE f.id = bookings.flight_id AND f.flight_number ILIKE $1)`,
		[]any{pattern})
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64, page Page) (*PageResult[domain.Booking], error) {
	return r.query(ctx, page, `WHERE user_id=$1`, []any{userID})
}

func (r *PGBookingRepository) query(ctx context.Context, page Page, where string, args []any) (*PageResult[domain.Booking], error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	listArgs := append(args, page.Limit(), page.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings `+where+
		` ORDER BY booking_date DESC LIMIT $`+itoa(n+1)+` OFFSET $`+itoa(n+2), listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &PageResult[domain.Booking]{Items: items, TotalCount: total, Number: page.Number, Size: page.Limit()}, nil
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id int64, refund bool) (*domain.Booking, []domain.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	payment := ""
	if refund {
		payment = `, payment_status='REFUNDED'`
	}
	row := tx.QueryRow(ctx, `UPDATE bookings SET booking_status=$1`+payment+`, updated_at=now() WHERE id=$2 RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, id)
	booking, err := scanBooking(row)
	if isNoRows(err) {
		return nil, nil, apperr.NotFound("booking not found with id: %d", id)
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := tx.Query(ctx, `UPDATE tickets SET ticket_status=$1, updated_at=now()
		WHERE booking_id=$2 AND ticket_status <> $1
		RETURNING `+ticketColumns, domain.TicketStatusCancelled, id)
	if err != nil {
		return nil, nil, err
	}
	cancelled := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			rows.Close()
			return nil, nil, err
		}
		cancelled = append(cancelled, *t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	for _, t := range cancelled {
		if _, err := tx.Exec(ctx, `UPDATE flight_seats SET is_occupied=false, is_available=true, updated_at=now() WHERE id=$1`, t.FlightSeatID); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return booking, cancelled, nil
}

func (r *PGBookingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings`).Scan(&n)
	return n, err
}

func (r *PGBookingRepository) CountByStatus(ctx context.Context, status domain.BookingStatus) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE booking_status=$1`, status).Scan(&n)
	return n, err
}

func (r *PGBookingRepository) CountBookedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE booking_date BETWEEN $1 AND $2`, start, end).Scan(&n)
	return n, err
}

// RevenueBetween sums booking totals over the window, excluding cancelled bookings.
func (r *PGBookingRepository) RevenueBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var cents int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount_cents), 0) FROM bookings
		WHERE booking_date BETWEEN $1 AND $2 AND booking_status <> $3`,
		start, end, domain.BookingStatusCancelled).Scan(&cents)
	return cents, err
}

var _ BookingRepository = (*PGBookingRepository)(nil)
