package seats

import (
	"context"
	"strings"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
)

type SeatUseCase interface {
	Create(ctx context.Context, input SeatInput) (*domain.Seat, error)
	GetByID(ctx context.Context, id int64) (*domain.Seat, error)
	List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Seat], error)
	Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Seat], error)
	ListByClass(ctx context.Context, class string, page repository.Page) (*repository.PageResult[domain.Seat], error)
	Update(ctx context.Context, id int64, input SeatInput) (*domain.Seat, error)
	Delete(ctx context.Context, id int64) error
}

type SeatInput struct {
	SeatNumber string `json:"seat_number"`
	SeatClass  string `json:"seat_class"`
}

type SeatService struct {
	seats repository.SeatRepository
}

var _ SeatUseCase = (*SeatService)(nil)

func NewSeatService(seats repository.SeatRepository) *SeatService {
	return &SeatService{seats: seats}
}

func (s *SeatService) Create(ctx context.Context, input SeatInput) (*domain.Seat, error) {
	number, class, err := normalize(input)
	if err != nil {
		return nil, err
	}

	exists, err := s.seats.ExistsByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.BadRequest("seat with number %s already exists", number)
	}

	seat := &domain.Seat{SeatNumber: number, SeatClass: class}
	if err := s.seats.Create(ctx, seat); err != nil {
		return nil, err
	}
	return seat, nil
}

func (s *SeatService) GetByID(ctx context.Context, id int64) (*domain.Seat, error) {
	return s.seats.GetByID(ctx, id)
}

func (s *SeatService) List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Seat], error) {
	return s.seats.List(ctx, page)
}

func (s *SeatService) Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Seat], error) {
	return s.seats.Search(ctx, term, page)
}

func (s *SeatService) ListByClass(ctx context.Context, class string, page repository.Page) (*repository.PageResult[domain.Seat], error) {
	c := domain.SeatClass(strings.ToUpper(strings.TrimSpace(class)))
	if !domain.ValidSeatClass(c) {
		return nil, apperr.BadRequest("unknown seat class: %s", class)
	}
	return s.seats.ListByClass(ctx, c, page)
}

func (s *SeatService) Update(ctx context.Context, id int64, input SeatInput) (*domain.Seat, error) {
	number, class, err := normalize(input)
	if err != nil {
		return nil, err
	}

	seat, err := s.seats.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if number != seat.SeatNumber {
		exists, err := s.seats.ExistsByNumber(ctx, number)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.BadRequest("seat with number %s already exists", number)
		}
	}

	seat.SeatNumber = number
	seat.SeatClass = class
	if err := s.seats.Update(ctx, seat); err != nil {
		return nil, err
	}
	return seat, nil
}

func (s *SeatService) Delete(ctx context.Context, id int64) error {
	if _, err := s.seats.GetByID(ctx, id); err != nil {
		return err
	}
	inUse, err := s.seats.HasFlightSeats(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperr.BadRequest("cannot delete seat assigned to flights")
	}
	return s.seats.Delete(ctx, id)
}

func normalize(input SeatInput) (string, domain.SeatClass, error) {
	number := strings.ToUpper(strings.TrimSpace(input.SeatNumber))
	if number == "" {
		return "", "", apperr.Validation(map[string]string{"seat_number": "must not be blank"})
	}
	class := domain.SeatClass(strings.ToUpper(strings.TrimSpace(input.SeatClass)))
	if !domain.ValidSeatClass(class) {
		return "", "", apperr.BadRequest("unknown seat class: %s", input.SeatClass)
	}
	return number, class, nil
}
