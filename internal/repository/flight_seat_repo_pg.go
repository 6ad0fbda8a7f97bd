package repository

import (
	"context"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightSeatRepository interface {
	Create(ctx context.Context, fs *domain.FlightSeat) error
	GetByID(ctx context.Context, id int64) (*domain.FlightSeat, error)
	ExistsPair(ctx context.Context, flightID, seatID int64) (bool, error)
	ListAvailableByFlight(ctx context.Context, flightID int64) ([]domain.FlightSeat, error)
	ListAvailableByFlightAndClass(ctx context.Context, flightID int64, class domain.SeatClass) ([]domain.FlightSeat, error)
	Search(ctx context.Context, term string, page Page) (*PageResult[domain.FlightSeat], error)
	Update(ctx context.Context, fs *domain.FlightSeat) error
	Book(ctx context.Context, id int64) (*domain.FlightSeat, error)
	Release(ctx context.Context, id int64) error
}

type PGFlightSeatRepository struct {
	db *pgxpool.Pool
}

func NewFlightSeatRepository(db *pgxpool.Pool) FlightSeatRepository {
	return &PGFlightSeatRepository{db: db}
}

const flightSeatColumns = `fs.id, fs.flight_id, fs.seat_id, fs.price_cents, fs.is_available, fs.is_occupied, fs.created_at, fs.updated_at, s.seat_number, s.seat_class`

const flightSeatFrom = ` FROM flight_seats fs JOIN seats s ON s.id = fs.seat_id `

func scanFlightSeat(row interface{ Scan(...any) error }) (*domain.FlightSeat, error) {
	var fs domain.FlightSeat
	err := row.Scan(&fs.ID, &fs.FlightID, &fs.SeatID, &fs.PriceCents, &fs.IsAvailable, &fs.IsOccupied,
		&fs.CreatedAt, &fs.UpdatedAt, &fs.SeatNumber, &fs.SeatClass)
	if err != nil {
		return nil, err
	}
	return &fs, nil
}

func (r *PGFlightSeatRepository) Create(ctx context.Context, fs *domain.FlightSeat) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flight_seats (flight_id, seat_id, price_cents, is_available, is_occupied)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id, created_at, updated_at`,
		fs.FlightID, fs.SeatID, fs.PriceCents, fs.IsAvailable).
		Scan(&fs.ID, &fs.CreatedAt, &fs.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.BadRequest("this seat is already assigned to this flight")
	}
	return err
}

func (r *PGFlightSeatRepository) GetByID(ctx context.Context, id int64) (*domain.FlightSeat, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightSeatColumns+flightSeatFrom+`WHERE fs.id=$1`, id)
	fs, err := scanFlightSeat(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("flight seat not found with id: %d", id)
	}
	return fs, err
}

func (r *PGFlightSeatRepository) ExistsPair(ctx context.Context, flightID, seatID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flight_seats WHERE flight_id=$1 AND seat_id=$2)`, flightID, seatID).Scan(&exists)
	return exists, err
}

func (r *PGFlightSeatRepository) ListAvailableByFlight(ctx context.Context, flightID int64) ([]domain.FlightSeat, error) {
	return r.list(ctx, `WHERE fs.flight_id=$1 AND fs.is_available AND NOT fs.is_occupied`, []any{flightID})
}

func (r *PGFlightSeatRepository) ListAvailableByFlightAndClass(ctx context.Context, flightID int64, class domain.SeatClass) ([]domain.FlightSeat, error) {
	return r.list(ctx, `WHERE fs.flight_id=$1 AND fs.is_available AND NOT fs.is_occupied AND s.seat_class=$2`, []any{flightID, class})
}

func (r *PGFlightSeatRepository) list(ctx context.Context, where string, args []any) ([]domain.FlightSeat, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightSeatColumns+flightSeatFrom+where+` ORDER BY s.seat_number`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.FlightSeat, 0)
	for rows.Next() {
		fs, err := scanFlightSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *fs)
	}
	return seats, rows.Err()
}

func (r *PGFlightSeatRepository) Search(ctx context.Context, term string, page Page) (*PageResult[domain.FlightSeat], error) {
	pattern := "%" + term + "%"
	where := `WHERE s.seat_number ILIKE $1 OR s.seat_class::text ILIKE $1 OR EXISTS (SELECT 1 FROM flights f WHERE f.id = fs.flight_id AND f.flight_number ILIKE $1)`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*)`+flightSeatFrom+where, pattern).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+flightSeatColumns+flightSeatFrom+where+
		` ORDER BY fs.flight_id, s.seat_number LIMIT $2 OFFSET $3`, pattern, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.FlightSeat, 0)
	for rows.Next() {
		fs, err := scanFlightSeat(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *fs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &PageResult[domain.FlightSeat]{Items: items, TotalCount: total, Number: page.Number, Size: page.Limit()}, nil
}

func (r *PGFlightSeatRepository) Update(ctx context.Context, fs *domain.FlightSeat) error {
	err := r.db.QueryRow(ctx, `UPDATE flight_seats SET price_cents=$1, is_available=$2, updated_at=now() WHERE id=$3 RETURNING updated_at`,
		fs.PriceCents, fs.IsAvailable, fs.ID).Scan(&fs.UpdatedAt)
	if isNoRows(err) {
		return apperr.NotFound("flight seat not found with id: %d", fs.ID)
	}
	return err
}

// Book marks the seat occupied with a single conditional update. A row that
// exists but is no longer bookable yields Conflict, never a silent double sell.
func (r *PGFlightSeatRepository) Book(ctx context.Context, id int64) (*domain.FlightSeat, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE flight_seats SET is_occupied=true, is_available=false, updated_at=now()
		WHERE id=$1 AND is_available AND NOT is_occupied`, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flight_seats WHERE id=$1)`, id).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFound("flight seat not found with id: %d", id)
		}
		return nil, apperr.Conflict("seat is not available")
	}
	return r.GetByID(ctx, id)
}

func (r *PGFlightSeatRepository) Release(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE flight_seats SET is_occupied=false, is_available=true, updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("flight seat not found with id: %d", id)
	}
	return nil
}

var _ FlightSeatRepository = (*PGFlightSeatRepository)(nil)
