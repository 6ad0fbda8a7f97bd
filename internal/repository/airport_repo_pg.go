package repository

import (
	"context"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AirportRepository interface {
	Create(ctx context.Context, airport *domain.Airport) error
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
	GetByCode(ctx context.Context, code string) (*domain.Airport, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, page Page) (*PageResult[domain.Airport], error)
	Search(ctx context.Context, term string, page Page) (*PageResult[domain.Airport], error)
	ListByCountry(ctx context.Context, country string, page Page) (*PageResult[domain.Airport], error)
	Countries(ctx context.Context) ([]string, error)
	Update(ctx context.Context, airport *domain.Airport) error
	Delete(ctx context.Context, id int64) error
	HasFlights(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type PGAirportRepository struct {
	db *pgxpool.Pool
}

func NewAirportRepository(db *pgxpool.Pool) AirportRepository {
	return &PGAirportRepository{db: db}
}

const airportColumns = `id, airport_code, airport_name, city, country, country_code, time_zone, latitude, longitude, is_active, created_at, updated_at`

func scanAirport(row interface{ Scan(...any) error }) (*domain.Airport, error) {
	var a domain.Airport
	err := row.Scan(&a.ID, &a.AirportCode, &a.AirportName, &a.City, &a.Country, &a.CountryCode,
		&a.TimeZone, &a.Latitude, &a.Longitude, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGAirportRepository) Create(ctx context.Context, airport *domain.Airport) error {
	err := r.db.QueryRow(ctx, `INSERT INTO airports (airport_code, airport_name, city, country, country_code, time_zone, latitude, longitude, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		airport.AirportCode, airport.AirportName, airport.City, airport.Country, airport.CountryCode,
		airport.TimeZone, airport.Latitude, airport.Longitude, airport.IsActive).
		Scan(&airport.ID, &airport.CreatedAt, &airport.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.BadRequest("airport code already exists: %s", airport.AirportCode)
	}
	return err
}

func (r *PGAirportRepository) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	row := r.db.QueryRow(ctx, `SELECT `+airportColumns+` FROM airports WHERE id=$1`, id)
	a, err := scanAirport(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("airport not found with id: %d", id)
	}
	return a, err
}

func (r *PGAirportRepository) GetByCode(ctx context.Context, code string) (*domain.Airport, error) {
	row := r.db.QueryRow(ctx, `SELECT `+airportColumns+` FROM airports WHERE airport_code=$1`, code)
	a, err := scanAirport(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("airport not found with code: %s", code)
	}
	return a, err
}

func (r *PGAirportRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM airports WHERE airport_code=$1)`, code).Scan(&exists)
	return exists, err
}

func (r *PGAirportRepository) List(ctx context.Context, page Page) (*PageResult[domain.Airport], error) {
	return r.query(ctx, page, `WHERE true`, nil)
}

func (r *PGAirportRepository) Search(ctx context.Context, term string, page Page) (*PageResult[domain.Airport], error) {
	pattern := "%" + term + "%"
	return r.query(ctx, page,
		`WHERE airport_code ILIKE $1 OR airport_name ILIKE $1 OR city ILIKE $1 OR country ILIKE $1`,
		[]any{pattern})
}

func (r *PGAirportRepository) ListByCountry(ctx context.Context, country string, page Page) (*PageResult[domain.Airport], error) {
	return r.query(ctx, page, `WHERE country=$1`, []any{country})
}

func (r *PGAirportRepository) query(ctx context.Context, page Page, where string, args []any) (*PageResult[domain.Airport], error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM airports `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	listArgs := append(args, page.Limit(), page.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+airportColumns+` FROM airports `+where+
		` ORDER BY airport_code LIMIT $`+itoa(n+1)+` OFFSET $`+itoa(n+2), listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Airport, 0)
	for rows.Next() {
		a, err := scanAirport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &PageResult[domain.Airport]{Items: items, TotalCount: total, Number: page.Number, Size: page.Limit()}, nil
}

func (r *PGAirportRepository) Countries(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT country FROM airports ORDER BY country`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

func (r *PGAirportRepository) Update(ctx context.Context, airport *domain.Airport) error {
	err := r.db.QueryRow(ctx, `UPDATE airports SET airport_code=$1, airport_name=$2, city=$3, country=$4, country_code=$5, time_zone=$6, latitude=$7, longitude=$8, is_active=$9, updated_at=now()
		WHERE id=$10 RETURNING updated_at`,
		airport.AirportCode, airport.AirportName, airport.City, airport.Country, airport.CountryCode,
		airport.TimeZone, airport.Latitude, airport.Longitude, airport.IsActive, airport.ID).
		Scan(&airport.UpdatedAt)
	if isNoRows(err) {
		return apperr.NotFound("airport not found with id: %d", airport.ID)
	}
	if isUniqueViolation(err) {
		return apperr.BadRequest("airport code already exists: %s", airport.AirportCode)
	}
	return err
}

func (r *PGAirportRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM airports WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("airport not found with id: %d", id)
	}
	return nil
}

func (r *PGAirportRepository) HasFlights(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE departure_airport_id=$1 OR arrival_airport_id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *PGAirportRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM airports`).Scan(&n)
	return n, err
}

var _ AirportRepository = (*PGAirportRepository)(nil)
