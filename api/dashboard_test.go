package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/flyair/flyair-backend/internal/service/dashboard"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockDashboardUseCase is a mock implementation of dashboard.DashboardUseCase
type MockDashboardUseCase struct {
	mock.Mock
}

func (m *MockDashboardUseCase) Stats(ctx context.Context) (*dashboard.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.Stats), args.Error(1)
}

func (m *MockDashboardUseCase) GlobalSearch(ctx context.Context, term string, page repository.Page) (*dashboard.SearchResult, error) {
	args := m.Called(ctx, term, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.SearchResult), args.Error(1)
}

func TestDashboardHandler_globalSearch_OmitsUserCredentials(t *testing.T) {
	mockService := &MockDashboardUseCase{}
	handler := NewDashboardHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/search?q=smith", nil)

	result := &dashboard.SearchResult{
		Users: []domain.User{{
			ID:               7,
			Username:         "jsmith",
			Email:            "jsmith@example.com",
			PasswordHash:     "$2a$10$secrethash",
			TwoFactorSecret:  "JBSWY3DPEHPK3PXP",
			ResetToken:       "f3a1b2c4",
			Role:             domain.RoleUser,
			IsEnabled:        true,
			TwoFactorEnabled: true,
			CreatedAt:        time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		}},
	}
	mockService.On("GlobalSearch", c.Request.Context(), "smith", repository.Page{Number: 0, Size: 20}).
		Return(result, nil)

	handler.globalSearch(c)

	assert.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.NotContains(t, body, "$2a$10$secrethash")
	assert.NotContains(t, body, "JBSWY3DPEHPK3PXP")
	assert.NotContains(t, body, "f3a1b2c4")
	assert.NotContains(t, body, "PasswordHash")

	var response struct {
		Success bool                 `json:"success"`
		Data    globalSearchResponse `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response.Success)
	assert.Len(t, response.Data.Users, 1)
	assert.Equal(t, "jsmith", response.Data.Users[0].Username)
	assert.True(t, response.Data.Users[0].TwoFactorEnabled)

	mockService.AssertExpectations(t)
}

func TestDashboardHandler_globalSearch_MissingQuery(t *testing.T) {
	mockService := &MockDashboardUseCase{}
	handler := NewDashboardHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/search", nil)

	handler.globalSearch(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GlobalSearch", mock.Anything, mock.Anything, mock.Anything)
}
