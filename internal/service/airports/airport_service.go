package airports

import (
	"context"
	"strings"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
)

type AirportUseCase interface {
	Create(ctx context.Context, input AirportInput) (*domain.Airport, error)
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
	GetByCode(ctx context.Context, code string) (*domain.Airport, error)
	List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Airport], error)
	Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Airport], error)
	ListByCountry(ctx context.Context, country string, page repository.Page) (*repository.PageResult[domain.Airport], error)
	Countries(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id int64, input AirportInput) (*domain.Airport, error)
	Delete(ctx context.Context, id int64) error
}

type AirportInput struct {
	AirportCode string  `json:"airport_code"`
	AirportName string  `json:"airport_name"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	TimeZone    string  `json:"time_zone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type AirportService struct {
	airports repository.AirportRepository
}

var _ AirportUseCase = (*AirportService)(nil)

func NewAirportService(airports repository.AirportRepository) *AirportService {
	return &AirportService{airports: airports}
}

func (s *AirportService) Create(ctx context.Context, input AirportInput) (*domain.Airport, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(input.AirportCode))

	exists, err := s.airports.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.BadRequest("airport with code %s already exists", code)
	}

	airport := &domain.Airport{
		AirportCode: code,
		AirportName: input.AirportName,
		City:        input.City,
		Country:     input.Country,
		CountryCode: strings.ToUpper(input.CountryCode),
		TimeZone:    input.TimeZone,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		IsActive:    true,
	}
	if err := s.airports.Create(ctx, airport); err != nil {
		return nil, err
	}
	return airport, nil
}

func (s *AirportService) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	return s.airports.GetByID(ctx, id)
}

func (s *AirportService) GetByCode(ctx context.Context, code string) (*domain.Airport, error) {
	return s.airports.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

func (s *AirportService) List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Airport], error) {
	return s.airports.List(ctx, page)
}

func (s *AirportService) Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Airport], error) {
	return s.airports.Search(ctx, term, page)
}

func (s *AirportService) ListByCountry(ctx context.Context, country string, page repository.Page) (*repository.PageResult[domain.Airport], error) {
	return s.airports.ListByCountry(ctx, country, page)
}

func (s *AirportService) Countries(ctx context.Context) ([]string, error) {
	return s.airports.Countries(ctx)
}

func (s *AirportService) Update(ctx context.Context, id int64, input AirportInput) (*domain.Airport, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	airport, err := s.airports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(input.AirportCode))
	if code != airport.AirportCode {
		exists, err := s.airports.ExistsByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.BadRequest("airport with code %s already exists", code)
		}
	}

	airport.AirportCode = code
	airport.AirportName = input.AirportName
	airport.City = input.City
	airport.Country = input.Country
	airport.CountryCode = strings.ToUpper(input.CountryCode)
	airport.TimeZone = input.TimeZone
	airport.Latitude = input.Latitude
	airport.Longitude = input.Longitude

	if err := s.airports.Update(ctx, airport); err != nil {
		return nil, err
	}
	return airport, nil
}

func (s *AirportService) Delete(ctx context.Context, id int64) error {
	if _, err := s.airports.GetByID(ctx, id); err != nil {
		return err
	}
	hasFlights, err := s.airports.HasFlights(ctx, id)
	if err != nil {
		return err
	}
	if hasFlights {
		return apperr.BadRequest("cannot delete airport with existing flights")
	}
	return s.airports.Delete(ctx, id)
}

func validate(input AirportInput) error {
	fields := map[string]string{}
	code := strings.TrimSpace(input.AirportCode)
	if len(code) != 3 {
		fields["airport_code"] = "must be a 3-letter IATA code"
	}
	if strings.TrimSpace(input.AirportName) == "" {
		fields["airport_name"] = "must not be blank"
	}
	if strings.TrimSpace(input.City) == "" {
		fields["city"] = "must not be blank"
	}
	if strings.TrimSpace(input.Country) == "" {
		fields["country"] = "must not be blank"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
