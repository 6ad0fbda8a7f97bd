package repository

import (
	"context"
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error)
	ExistsByNumber(ctx context.Context, flightNumber string) (bool, error)
	List(ctx context.Context, page Page) (*PageResult[domain.Flight], error)
	Search(ctx context.Context, term string, page Page) (*PageResult[domain.Flight], error)
	FindByRoute(ctx context.Context, departureAirportID, arrivalAirportID int64, date time.Time, page Page) (*PageResult[domain.Flight], error)
	ListByStatus(ctx context.Context, status domain.FlightStatus, page Page) (*PageResult[domain.Flight], error)
	ListByDateRange(ctx context.Context, start, end time.Time, page Page) (*PageResult[domain.Flight], error)
	ListByAirport(ctx context.Context, airportID int64, page Page) (*PageResult[domain.Flight], error)
	Upcoming(ctx context.Context, after time.Time) ([]domain.Flight, error)
	Update(ctx context.Context, flight *domain.Flight) error
	UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) error
	HasBookings(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.FlightStatus) (int64, error)
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
	MarkArrivedBefore(ctx context.Context, deadline time.Time) ([]domain.Flight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, departure_airport_id, arrival_airport_id, departure_time, arrival_time, duration_minutes, status, gate_number, terminal, aircraft_type, created_at, updated_at`

func scanFlight(row interface{ Scan(...any) error }) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.ID, &f.FlightNumber, &f.DepartureAirportID, &f.ArrivalAirportID,
		&f.DepartureTime, &f.ArrivalTime, &f.DurationMinutes, &f.Status,
		&f.GateNumber, &f.Terminal, &f.AircraftType, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, departure_airport_id, arrival_airport_id, departure_time, arrival_time, duration_minutes, status, gate_number, terminal, aircraft_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		flight.FlightNumber, flight.DepartureAirportID, flight.ArrivalAirportID,
		flight.DepartureTime, flight.ArrivalTime, flight.DurationMinutes, flight.Status,
		flight.GateNumber, flight.Terminal, flight.AircraftType).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.BadRequest("flight number already exists: %s", flight.FlightNumber)
	}
	return err
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	f, err := scanFlight(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("flight not found with id: %d", id)
	}
	return f, err
}

func (r *PGFlightRepository) GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_number=$1`, flightNumber)
	f, err := scanFlight(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("flight not found with number: %s", flightNumber)
	}
	return f, err
}

func (r *PGFlightRepository) ExistsByNumber(ctx context.Context, flightNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE flight_number=$1)`, flightNumber).Scan(&exists)
	return exists, err
}

func (r *PGFlightRepository) List(ctx context.Context, page Page) (*PageResult[domain.Flight], error) {
	return r.query(ctx, page, `WHERE true`, nil)
}

func (r *PGFlightRepository) Search(ctx context.Context, term string, page Page) (*PageResult[domain.Flight], error) {
	pattern := "%" + term + "%"
	return r.query(ctx, page,
		`WHERE flight_number ILIKE $1 OR gate_number ILIKE $1 OR terminal ILIKE $1 OR aircraft_type ILIKE $1 OR status::text ILIKE $1`,
		[]any{pattern})
}

func (r *PGFlightRepository) FindByRoute(ctx context.Context, departureAirportID, arrivalAirportID int64, date time.Time, page Page) (*PageResult[domain.Flight], error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	return r.query(ctx, page,
		`WHERE departure_airport_id=$1 AND arrival_airport_id=$2 AND departure_time >= $3 AND departure_time < $4`,
		[]any{departureAirportID, arrivalAirportID, dayStart, dayEnd})
}

func (r *PGFlightRepository) ListByStatus(ctx context.Context, status domain.FlightStatus, page Page) (*PageResult[domain.Flight], error) {
	return r.query(ctx, page, `WHERE status=$1`, []any{status})
}

func (r *PGFlightRepository) ListByDateRange(ctx context.Context, start, end time.Time, page Page) (*PageResult[domain.Flight], error) {
	return r.query(ctx, page, `WHERE departure_time BETWEEN $1 AND $2`, []any{start, end})
}

func (r *PGFlightRepository) ListByAirport(ctx context.Context, airportID int64, page Page) (*PageResult[domain.Flight], error) {
	return r.query(ctx, page, `WHERE departure_airport_id=$1 OR arrival_airport_id=$1`, []any{airportID})
}

func (r *PGFlightRepository) query(ctx context.Context, page Page, where string, args []any) (*PageResult[domain.Flight], error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM flights `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	listArgs := append(args, page.Limit(), page.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights `+where+
		` ORDER BY departure_time LIMIT $`+itoa(n+1)+` OFFSET $`+itoa(n+2), listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &PageResult[domain.Flight]{Items: items, TotalCount: total, Number: page.Number, Size: page.Limit()}, nil
}

func (r *PGFlightRepository) Upcoming(ctx context.Context, after time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights WHERE departure_time > $1 AND status=$2 ORDER BY departure_time`,
		after, domain.FlightStatusScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	err := r.db.QueryRow(ctx, `UPDATE flights SET flight_number=$1, departure_airport_id=$2, arrival_airport_id=$3, departure_time=$4, arrival_time=$5, duration_minutes=$6, gate_number=$7, terminal=$8, aircraft_type=$9, updated_at=now()
		WHERE id=$10 RETURNING updated_at`,
		flight.FlightNumber, flight.DepartureAirportID, flight.ArrivalAirportID,
		flight.DepartureTime, flight.ArrivalTime, flight.DurationMinutes,
		flight.GateNumber, flight.Terminal, flight.AircraftType, flight.ID).
		Scan(&flight.UpdatedAt)
	if isNoRows(err) {
		return apperr.NotFound("flight not found with id: %d", flight.ID)
	}
	if isUniqueViolation(err) {
		return apperr.BadRequest("flight number already exists: %s", flight.FlightNumber)
	}
	return err
}

func (r *PGFlightRepository) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `UPDATE flights SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+flightColumns, status, id)
	f, err := scanFlight(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("flight not found with id: %d", id)
	}
	return f, err
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("flight not found with id: %d", id)
	}
	return nil
}

func (r *PGFlightRepository) HasBookings(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE flight_id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *PGFlightRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM flights`).Scan(&n)
	return n, err
}

func (r *PGFlightRepository) CountByStatus(ctx context.Context, status domain.FlightStatus) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM flights WHERE status=$1`, status).Scan(&n)
	return n, err
}

func (r *PGFlightRepository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM flights WHERE created_at BETWEEN $1 AND $2`, start, end).Scan(&n)
	return n, err
}

// MarkArrivedBefore flips flights whose arrival time has passed into ARRIVED
// and returns the affected rows. Cancelled and already arrived flights are left alone.
func (r *PGFlightRepository) MarkArrivedBefore(ctx context.Context, deadline time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `UPDATE flights SET status=$1, updated_at=now()
		WHERE arrival_time <= $2 AND status NOT IN ($1, $3)
		RETURNING `+flightColumns, domain.FlightStatusArrived, deadline, domain.FlightStatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var arrived []domain.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		arrived = append(arrived, *f)
	}
	return arrived, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
