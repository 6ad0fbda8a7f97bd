package seats

import (
	"context"
	"testing"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) Create(ctx context.Context, seat *domain.Seat) error {
	args := m.Called(ctx, seat)
	return args.Error(0)
}

func (m *MockSeatRepository) GetByID(ctx context.Context, id int64) (*domain.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

func (m *MockSeatRepository) ExistsByNumber(ctx context.Context, seatNumber string) (bool, error) {
	args := m.Called(ctx, seatNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatRepository) List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Seat], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[domain.Seat]), args.Error(1)
}

func (m *MockSeatRepository) Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Seat], error) {
	args := m.Called(ctx, term, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[domain.Seat]), args.Error(1)
}

func (m *MockSeatRepository) ListByClass(ctx context.Context, class domain.SeatClass, page repository.Page) (*repository.PageResult[domain.Seat], error) {
	args := m.Called(ctx, class, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[domain.Seat]), args.Error(1)
}

func (m *MockSeatRepository) Update(ctx context.Context, seat *domain.Seat) error {
	args := m.Called(ctx, seat)
	return args.Error(0)
}

func (m *MockSeatRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSeatRepository) HasFlightSeats(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestSeatService_Create_Success(t *testing.T) {
	mockSeats := &MockSeatRepository{}
	service := NewSeatService(mockSeats)

	ctx := context.Background()
	mockSeats.On("ExistsByNumber", ctx, "12A").Return(false, nil).Once()
	mockSeats.On("Create", ctx, mock.AnythingOfType("*domain.Seat")).Return(nil).Once()

	seat, err := service.Create(ctx, SeatInput{SeatNumber: "12a", SeatClass: "economy"})

	assert.NoError(t, err)
	assert.Equal(t, "12A", seat.SeatNumber)
	assert.Equal(t, domain.SeatClassEconomy, seat.SeatClass)
	mockSeats.AssertExpectations(t)
}

func TestSeatService_Create_UnknownClass(t *testing.T) {
	service := NewSeatService(&MockSeatRepository{})

	seat, err := service.Create(context.Background(), SeatInput{SeatNumber: "12A", SeatClass: "PREMIUM_PLUS"})

	assert.Error(t, err)
	assert.Nil(t, seat)
	assert.Contains(t, err.Error(), "unknown seat class")
}

func TestSeatService_Create_DuplicateNumber(t *testing.T) {
	mockSeats := &MockSeatRepository{}
	service := NewSeatService(mockSeats)

	ctx := context.Background()
	mockSeats.On("ExistsByNumber", ctx, "12A").Return(true, nil).Once()

	seat, err := service.Create(ctx, SeatInput{SeatNumber: "12A", SeatClass: "BUSINESS"})

	assert.Error(t, err)
	assert.Nil(t, seat)
	assert.True(t, apperr.IsCode(err, apperr.CodeBadRequest))
	mockSeats.AssertNotCalled(t, "Create")
}

func TestSeatService_ListByClass_InvalidClass(t *testing.T) {
	service := NewSeatService(&MockSeatRepository{})

	result, err := service.ListByClass(context.Background(), "COACH", repository.Page{})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperr.IsCode(err, apperr.CodeBadRequest))
}

func TestSeatService_Delete_SeatInUse(t *testing.T) {
	mockSeats := &MockSeatRepository{}
	service := NewSeatService(mockSeats)

	ctx := context.Background()
	mockSeats.On("GetByID", ctx, int64(5)).Return(&domain.Seat{ID: 5, SeatNumber: "12A"}, nil).Once()
	mockSeats.On("HasFlightSeats", ctx, int64(5)).Return(true, nil).Once()

	err := service.Delete(ctx, 5)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "assigned to flights")
	mockSeats.AssertNotCalled(t, "Delete")
}
