package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/auth"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/flyair/flyair-backend/internal/service/booking"
	"github.com/flyair/flyair-backend/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, username string, input booking.CreateBookingInput) (*booking.BookingDetails, error) {
	args := m.Called(ctx, username, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookingDetails), args.Error(1)
}

func (m *MockBookingUseCase) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.Booking], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[domain.Booking]), args.Error(1)
}

func (m *MockBookingUseCase) Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.Booking], error) {
	args := m.Called(ctx, term, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[domain.Booking]), args.Error(1)
}

func (m *MockBookingUseCase) ListForUser(ctx context.Context, username string, page repository.Page) (*repository.PageResult[domain.Booking], error) {
	args := m.Called(ctx, username, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[domain.Booking]), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Stats(ctx context.Context) (*booking.BookingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookingStats), args.Error(1)
}

// MockUserUseCase is a mock implementation of users.UserUseCase
type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) Register(ctx context.Context, input users.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUseCase) RegisterFirstAdmin(ctx context.Context, input users.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUseCase) CreateAdmin(ctx context.Context, input users.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUseCase) Login(ctx context.Context, input users.LoginInput) (*users.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.AuthResult), args.Error(1)
}

func (m *MockUserUseCase) VerifyTwoFactor(ctx context.Context, tempToken, code string) (*users.AuthResult, error) {
	args := m.Called(ctx, tempToken, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.AuthResult), args.Error(1)
}

func (m *MockUserUseCase) Refresh(ctx context.Context, refreshToken string) (*users.AuthResult, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.AuthResult), args.Error(1)
}

func (m *MockUserUseCase) SetupTwoFactor(ctx context.Context, username string) (*auth.TOTPProvisioning, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TOTPProvisioning), args.Error(1)
}

func (m *MockUserUseCase) EnableTwoFactor(ctx context.Context, username, code string) error {
	args := m.Called(ctx, username, code)
	return args.Error(0)
}

func (m *MockUserUseCase) DisableTwoFactor(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockUserUseCase) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	args := m.Called(ctx, username, currentPassword, newPassword)
	return args.Error(0)
}

func (m *MockUserUseCase) ForgotPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockUserUseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	args := m.Called(ctx, token, newPassword)
	return args.Error(0)
}

func (m *MockUserUseCase) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUseCase) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUseCase) List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.User], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[domain.User]), args.Error(1)
}

func (m *MockUserUseCase) Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.User], error) {
	args := m.Called(ctx, term, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[domain.User]), args.Error(1)
}

func (m *MockUserUseCase) UpdateProfile(ctx context.Context, username string, input users.ProfileInput) (*domain.User, error) {
	args := m.Called(ctx, username, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUseCase) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	args := m.Called(ctx, id, enabled)
	return args.Error(0)
}

func (m *MockUserUseCase) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type bookingEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    bookingResponse `json:"data"`
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockUsers := &MockUserUseCase{}
	handler := NewBookingHandler(mockService, mockUsers)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.CreateBookingInput{
		FlightID:      1,
		FlightSeatIDs: []int64{10},
		Passengers: []booking.PassengerInput{
			{Name: "Jane Doe", Email: "jane@example.com"},
		},
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(ctxUsername, "jane")
	c.Set(ctxRole, domain.RoleUser)

	details := &booking.BookingDetails{
		Booking: domain.Booking{
			ID:               1,
			BookingReference: "FLYA1B2C3D4",
			UserID:           7,
			FlightID:         1,
			TotalAmountCents: 25000,
			BookingStatus:    domain.BookingStatusConfirmed,
			PaymentStatus:    domain.PaymentStatusPaid,
			BookingDate:      time.Now(),
		},
		Tickets: []domain.Ticket{
			{ID: 1, TicketNumber: "TKT1234567890", BookingID: 1, FlightSeatID: 10, PassengerName: "Jane Doe", TicketStatus: domain.TicketStatusIssued},
		},
	}

	mockService.On("CreateBooking", c.Request.Context(), "jane", input).Return(details, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response bookingEnvelope
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response.Success)
	assert.Equal(t, "FLYA1B2C3D4", response.Data.BookingReference)
	assert.Equal(t, string(domain.BookingStatusConfirmed), response.Data.BookingStatus)
	assert.Len(t, response.Data.Tickets, 1)
	assert.Equal(t, "TKT1234567890", response.Data.Tickets[0].TicketNumber)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_SeatConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockUsers := &MockUserUseCase{}
	handler := NewBookingHandler(mockService, mockUsers)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.CreateBookingInput{
		FlightID:      1,
		FlightSeatIDs: []int64{10},
		Passengers: []booking.PassengerInput{
			{Name: "Jane Doe"},
		},
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(ctxUsername, "jane")

	mockService.On("CreateBooking", c.Request.Context(), "jane", input).
		Return(nil, apperr.Conflict("seat 12A is no longer available"))

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response bookingEnvelope
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.False(t, response.Success)
	assert.Equal(t, "seat 12A is no longer available", response.Message)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_Owner(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockUsers := &MockUserUseCase{}
	handler := NewBookingHandler(mockService, mockUsers)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Request = httptest.NewRequest("GET", "/bookings/5", nil)
	c.Set(ctxUsername, "jane")
	c.Set(ctxRole, domain.RoleUser)

	b := &domain.Booking{ID: 5, BookingReference: "FLYAAAA1111", UserID: 7, BookingStatus: domain.BookingStatusConfirmed, BookingDate: time.Now()}

	mockService.On("GetByID", c.Request.Context(), int64(5)).Return(b, nil)
	mockUsers.On("GetByUsername", c.Request.Context(), "jane").Return(&domain.User{ID: 7, Username: "jane"}, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingEnvelope
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), response.Data.ID)

	mockService.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestBookingHandler_get_ForbiddenForOtherUser(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockUsers := &MockUserUseCase{}
	handler := NewBookingHandler(mockService, mockUsers)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Request = httptest.NewRequest("GET", "/bookings/5", nil)
	c.Set(ctxUsername, "mallory")
	c.Set(ctxRole, domain.RoleUser)

	b := &domain.Booking{ID: 5, UserID: 7}

	mockService.On("GetByID", c.Request.Context(), int64(5)).Return(b, nil)
	mockUsers.On("GetByUsername", c.Request.Context(), "mallory").Return(&domain.User{ID: 9, Username: "mallory"}, nil)

	handler.get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)

	mockService.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestBookingHandler_get_AdminBypassesOwnership(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockUsers := &MockUserUseCase{}
	handler := NewBookingHandler(mockService, mockUsers)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Request = httptest.NewRequest("GET", "/bookings/5", nil)
	c.Set(ctxUsername, "admin")
	c.Set(ctxRole, domain.RoleAdmin)

	b := &domain.Booking{ID: 5, UserID: 7}

	mockService.On("GetByID", c.Request.Context(), int64(5)).Return(b, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	// no user lookup for admins
	mockUsers.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockUsers := &MockUserUseCase{}
	handler := NewBookingHandler(mockService, mockUsers)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Request = httptest.NewRequest("DELETE", "/bookings/5", nil)
	c.Set(ctxUsername, "jane")
	c.Set(ctxRole, domain.RoleUser)

	b := &domain.Booking{ID: 5, UserID: 7, BookingStatus: domain.BookingStatusConfirmed}
	cancelled := &domain.Booking{ID: 5, UserID: 7, BookingStatus: domain.BookingStatusCancelled, PaymentStatus: domain.PaymentStatusRefunded}

	mockService.On("GetByID", c.Request.Context(), int64(5)).Return(b, nil)
	mockUsers.On("GetByUsername", c.Request.Context(), "jane").Return(&domain.User{ID: 7, Username: "jane"}, nil)
	mockService.On("CancelBooking", c.Request.Context(), int64(5)).Return(cancelled, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingEnvelope
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusCancelled), response.Data.BookingStatus)
	assert.Equal(t, string(domain.PaymentStatusRefunded), response.Data.PaymentStatus)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_listMine(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockUsers := &MockUserUseCase{}
	handler := NewBookingHandler(mockService, mockUsers)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/bookings/my?page=1&size=10", nil)
	c.Set(ctxUsername, "jane")

	result := &repository.PageResult[domain.Booking]{
		Items:      []domain.Booking{{ID: 1, UserID: 7}, {ID: 2, UserID: 7}},
		TotalCount: 12,
		Number:     1,
		Size:       10,
	}

	mockService.On("ListForUser", c.Request.Context(), "jane", repository.Page{Number: 1, Size: 10}).Return(result, nil)

	handler.listMine(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Items      []bookingResponse `json:"items"`
			TotalCount int64             `json:"total_count"`
			Page       int               `json:"page"`
			Size       int               `json:"size"`
		} `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Data.Items, 2)
	assert.Equal(t, int64(12), response.Data.TotalCount)
	assert.Equal(t, 1, response.Data.Page)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_InvalidID(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockUsers := &MockUserUseCase{}
	handler := NewBookingHandler(mockService, mockUsers)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	c.Request = httptest.NewRequest("GET", "/bookings/abc", nil)

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestBookingHandler_stats(t *testing.T) {
	mockService := &MockBookingUseCase{}
	mockUsers := &MockUserUseCase{}
	handler := NewBookingHandler(mockService, mockUsers)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/bookings/stats", nil)
	c.Set(ctxRole, domain.RoleAdmin)

	stats := &booking.BookingStats{TotalBookings: 100, ConfirmedBookings: 80, RevenueLastYearCents: 1_500_000}

	mockService.On("Stats", c.Request.Context()).Return(stats, nil)

	handler.stats(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool                 `json:"success"`
		Data    booking.BookingStats `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), response.Data.TotalBookings)
	assert.Equal(t, int64(1_500_000), response.Data.RevenueLastYearCents)

	mockService.AssertExpectations(t)
}
