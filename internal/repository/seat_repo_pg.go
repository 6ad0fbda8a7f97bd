package repository

import (
	"context"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SeatRepository interface {
	Create(ctx context.Context, seat *domain.Seat) error
	GetByID(ctx context.Context, id int64) (*domain.Seat, error)
	ExistsByNumber(ctx context.Context, seatNumber string) (bool, error)
	List(ctx context.Context, page Page) (*PageResult[domain.Seat], error)
	Search(ctx context.Context, term string, page Page) (*PageResult[domain.Seat], error)
	ListByClass(ctx context.Context, class domain.SeatClass, page Page) (*PageResult[domain.Seat], error)
	Update(ctx context.Context, seat *domain.Seat) error
	Delete(ctx context.Context, id int64) error
	HasFlightSeats(ctx context.Context, id int64) (bool, error)
}

type PGSeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{db: db}
}

const seatColumns = `id, seat_number, seat_class, created_at, updated_at`

func scanSeat(row interface{ Scan(...any) error }) (*domain.Seat, error) {
	var s domain.Seat
	if err := row.Scan(&s.ID, &s.SeatNumber, &s.SeatClass, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGSeatRepository) Create(ctx context.Context, seat *domain.Seat) error {
	err := r.db.QueryRow(ctx, `INSERT INTO seats (seat_number, seat_class) VALUES ($1, $2)
		RETURNING id, created_at, updated_at`, seat.SeatNumber, seat.SeatClass).
		Scan(&seat.ID, &seat.CreatedAt, &seat.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.BadRequest("seat number already exists: %s", seat.SeatNumber)
	}
	return err
}

func (r *PGSeatRepository) GetByID(ctx context.Context, id int64) (*domain.Seat, error) {
	row := r.db.QueryRow(ctx, `SELECT `+seatColumns+` FROM seats WHERE id=$1`, id)
	s, err := scanSeat(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("seat not found with id: %d", id)
	}
	return s, err
}

func (r *PGSeatRepository) ExistsByNumber(ctx context.Context, seatNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM seats WHERE seat_number=$1)`, seatNumber).Scan(&exists)
	return exists, err
}

func (r *PGSeatRepository) List(ctx context.Context, page Page) (*PageResult[domain.Seat], error) {
	return r.query(ctx, page, `WHERE true`, nil)
}

func (r *PGSeatRepository) Search(ctx context.Context, term string, page Page) (*PageResult[domain.Seat], error) {
	pattern := "%" + term + "%"
	return r.query(ctx, page, `WHERE seat_number ILIKE $1 OR seat_class::text ILIKE $1`, []any{pattern})
}

func (r *PGSeatRepository) ListByClass(ctx context.Context, class domain.SeatClass, page Page) (*PageResult[domain.Seat], error) {
	return r.query(ctx, page, `WHERE seat_class=$1`, []any{class})
}

func (r *PGSeatRepository) query(ctx context.Context, page Page, where string, args []any) (*PageResult[domain.Seat], error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM seats `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	listArgs := append(args, page.Limit(), page.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+seatColumns+` FROM seats `+where+
		` ORDER BY seat_number LIMIT $`+itoa(n+1)+` OFFSET $`+itoa(n+2), listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &PageResult[domain.Seat]{Items: items, TotalCount: total, Number: page.Number, Size: page.Limit()}, nil
}

func (r *PGSeatRepository) Update(ctx context.Context, seat *domain.Seat) error {
	err := r.db.QueryRow(ctx, `UPDATE seats SET seat_number=$1, seat_class=$2, updated_at=now() WHERE id=$3 RETURNING updated_at`,
		seat.SeatNumber, seat.SeatClass, seat.ID).Scan(&seat.UpdatedAt)
	if isNoRows(err) {
		return apperr.NotFound("seat not found with id: %d", seat.ID)
	}
	if isUniqueViolation(err) {
		return apperr.BadRequest("seat number already exists: %s", seat.SeatNumber)
	}
	return err
}

func (r *PGSeatRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM seats WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("seat not found with id: %d", id)
	}
	return nil
}

func (r *PGSeatRepository) HasFlightSeats(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flight_seats WHERE seat_id=$1)`, id).Scan(&exists)
	return exists, err
}

var _ SeatRepository = (*PGSeatRepository)(nil)
