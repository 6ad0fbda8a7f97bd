package users

import (
	"context"
	"testing"
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/auth"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsernameOrEmail(ctx context.Context, login string) (*domain.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.User], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[domain.User]), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.User], error) {
	args := m.Called(ctx, term, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[domain.User]), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) SetTwoFactor(ctx context.Context, id int64, secret string, enabled bool) error {
	args := m.Called(ctx, id, secret, enabled)
	return args.Error(0)
}

func (m *MockUserRepository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	args := m.Called(ctx, id, enabled)
	return args.Error(0)
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, id int64, token string, expiry *time.Time) error {
	args := m.Called(ctx, id, token, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(int64), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTestService(users *MockUserRepository, producer *MockProducer) *UserService {
	return &UserService{
		users:    users,
		tokens:   auth.NewTokenIssuer("test-secret", 15*time.Minute, 24*time.Hour, 5*time.Minute),
		totp:     auth.NewTOTPService("FlyAir"),
		producer: producer,
		topic:    "notifications",
		bcrypt:   bcrypt.MinCost,
	}
}

func hashFor(t *testing.T, plain string) string {
	t.Helper()
	hash, err := auth.HashPassword(plain, bcrypt.MinCost)
	assert.NoError(t, err)
	return hash
}

func TestUserService_Register_Success(t *testing.T) {
	mockUsers := &MockUserRepository{}
	mockProducer := &MockProducer{}
	service := newTestService(mockUsers, mockProducer)

	ctx := context.Background()
	mockUsers.On("ExistsByUsername", ctx, "alice").Return(false, nil).Once()
	mockUsers.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil).Once()
	mockUsers.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()
	mockProducer.On("Publish", ctx, "notifications", mock.Anything, mock.Anything).Return(nil).Once()

	user, err := service.Register(ctx, RegisterInput{
		Username:  "Alice",
		Email:     "Alice@Example.com",
		Password:  "s3cret-password",
		FirstName: "Alice",
		LastName:  "Smith",
	})

	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, user.IsEnabled)
	assert.True(t, auth.VerifyPassword(user.PasswordHash, "s3cret-password"))

	mockUsers.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestUserService_Register_UsernameTaken(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	mockUsers.On("ExistsByUsername", ctx, "alice").Return(true, nil).Once()

	user, err := service.Register(ctx, RegisterInput{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "s3cret-password",
		FirstName: "Alice",
	})

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Contains(t, err.Error(), "username is already taken")
	mockUsers.AssertNotCalled(t, "Create")
}

func TestUserService_Register_ValidationErrors(t *testing.T) {
	service := newTestService(&MockUserRepository{}, &MockProducer{})

	user, err := service.Register(context.Background(), RegisterInput{
		Username: "al",
		Email:    "not-an-email",
		Password: "short",
	})

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestUserService_CreateAdmin_NoWelcomeEmail(t *testing.T) {
	mockUsers := &MockUserRepository{}
	mockProducer := &MockProducer{}
	service := newTestService(mockUsers, mockProducer)

	ctx := context.Background()
	mockUsers.On("ExistsByUsername", ctx, "root").Return(false, nil).Once()
	mockUsers.On("ExistsByEmail", ctx, "root@example.com").Return(false, nil).Once()
	mockUsers.On("Create", ctx, mock.Anything).Return(nil).Once()

	user, err := service.CreateAdmin(ctx, RegisterInput{
		Username:  "root",
		Email:     "root@example.com",
		Password:  "s3cret-password",
		FirstName: "Root",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestUserService_RegisterFirstAdmin_Success(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	mockUsers.On("CountByRole", ctx, domain.RoleAdmin).Return(int64(0), nil).Once()
	mockUsers.On("ExistsByUsername", ctx, "root").Return(false, nil).Once()
	mockUsers.On("ExistsByEmail", ctx, "root@example.com").Return(false, nil).Once()
	mockUsers.On("Create", ctx, mock.Anything).Return(nil).Once()

	user, err := service.RegisterFirstAdmin(ctx, RegisterInput{
		Username:  "root",
		Email:     "root@example.com",
		Password:  "s3cret-password",
		FirstName: "Root",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	mockUsers.AssertExpectations(t)
}

func TestUserService_RegisterFirstAdmin_AdminAlreadyExists(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	mockUsers.On("CountByRole", ctx, domain.RoleAdmin).Return(int64(1), nil).Once()

	_, err := service.RegisterFirstAdmin(ctx, RegisterInput{
		Username: "root",
		Email:    "root@example.com",
		Password: "s3cret-password",
	})

	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
	mockUsers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Login_Success(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	user := &domain.User{
		ID:                 7,
		Username:           "alice",
		PasswordHash:       hashFor(t, "s3cret-password"),
		Role:               domain.RoleUser,
		IsEnabled:          true,
		IsAccountNonLocked: true,
	}
	mockUsers.On("GetByUsernameOrEmail", ctx, "alice").Return(user, nil).Once()

	result, err := service.Login(ctx, LoginInput{Login: "alice", Password: "s3cret-password"})

	assert.NoError(t, err)
	assert.False(t, result.RequiresTwoFactor)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, int64(900), result.ExpiresInSeconds)

	claims, err := service.tokens.Parse(result.AccessToken, auth.TokenTypeAccess)
	assert.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	user := &domain.User{Username: "alice", PasswordHash: hashFor(t, "s3cret-password"), IsEnabled: true, IsAccountNonLocked: true}
	mockUsers.On("GetByUsernameOrEmail", ctx, "alice").Return(user, nil).Once()

	result, err := service.Login(ctx, LoginInput{Login: "alice", Password: "wrong"})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestUserService_Login_UnknownUserSameError(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	mockUsers.On("GetByUsernameOrEmail", ctx, "ghost").Return(nil, apperr.NotFound("user not found")).Once()

	result, err := service.Login(ctx, LoginInput{Login: "ghost", Password: "whatever"})

	assert.Error(t, err)
	assert.Nil(t, result)
	// Unknown logins must not be distinguishable from bad passwords.
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestUserService_Login_DisabledAccount(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	user := &domain.User{Username: "alice", PasswordHash: hashFor(t, "s3cret-password"), IsEnabled: false, IsAccountNonLocked: true}
	mockUsers.On("GetByUsernameOrEmail", ctx, "alice").Return(user, nil).Once()

	result, err := service.Login(ctx, LoginInput{Login: "alice", Password: "s3cret-password"})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "account is disabled")
}

func TestUserService_Login_TwoFactorFlow(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "FlyAir", AccountName: "alice@example.com"})
	assert.NoError(t, err)

	user := &domain.User{
		ID:                 7,
		Username:           "alice",
		PasswordHash:       hashFor(t, "s3cret-password"),
		Role:               domain.RoleUser,
		IsEnabled:          true,
		IsAccountNonLocked: true,
		TwoFactorEnabled:   true,
		TwoFactorSecret:    key.Secret(),
	}
	mockUsers.On("GetByUsernameOrEmail", ctx, "alice").Return(user, nil).Once()

	// Step 1: password alone yields only a temporary token.
	step1, err := service.Login(ctx, LoginInput{Login: "alice", Password: "s3cret-password"})
	assert.NoError(t, err)
	assert.True(t, step1.RequiresTwoFactor)
	assert.NotEmpty(t, step1.TemporaryToken)
	assert.Empty(t, step1.AccessToken)

	// The temporary token must not pass as an access token.
	_, err = service.tokens.Parse(step1.TemporaryToken, auth.TokenTypeAccess)
	assert.Error(t, err)

	// Step 2: a valid TOTP code completes the login.
	code, err := totp.GenerateCode(key.Secret(), time.Now())
	assert.NoError(t, err)
	mockUsers.On("GetByUsername", ctx, "alice").Return(user, nil).Once()

	step2, err := service.VerifyTwoFactor(ctx, step1.TemporaryToken, code)
	assert.NoError(t, err)
	assert.NotEmpty(t, step2.AccessToken)
	assert.False(t, step2.RequiresTwoFactor)
}

func TestUserService_VerifyTwoFactor_BadCode(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	user := &domain.User{ID: 7, Username: "alice", TwoFactorEnabled: true, TwoFactorSecret: "JBSWY3DPEHPK3PXP"}
	temp, err := service.tokens.TempToken(user)
	assert.NoError(t, err)
	mockUsers.On("GetByUsername", ctx, "alice").Return(user, nil).Once()

	result, err := service.VerifyTwoFactor(ctx, temp, "000000")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}

func TestUserService_Refresh_RejectsAccessToken(t *testing.T) {
	service := newTestService(&MockUserRepository{}, &MockProducer{})

	access, err := service.tokens.AccessToken(&domain.User{Username: "alice", Role: domain.RoleUser})
	assert.NoError(t, err)

	result, err := service.Refresh(context.Background(), access)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "invalid token type")
}

func TestUserService_EnableTwoFactor_Success(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "FlyAir", AccountName: "alice@example.com"})
	assert.NoError(t, err)
	user := &domain.User{ID: 7, Username: "alice", TwoFactorSecret: key.Secret()}

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	assert.NoError(t, err)

	mockUsers.On("GetByUsername", ctx, "alice").Return(user, nil).Once()
	mockUsers.On("SetTwoFactor", ctx, int64(7), key.Secret(), true).Return(nil).Once()

	err = service.EnableTwoFactor(ctx, "alice", code)

	assert.NoError(t, err)
	mockUsers.AssertExpectations(t)
}

func TestUserService_EnableTwoFactor_SetupNotStarted(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	mockUsers.On("GetByUsername", ctx, "alice").Return(&domain.User{ID: 7, Username: "alice"}, nil).Once()

	err := service.EnableTwoFactor(ctx, "alice", "123456")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "has not been started")
}

func TestUserService_ChangePassword_WrongCurrent(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	user := &domain.User{ID: 7, Username: "alice", PasswordHash: hashFor(t, "s3cret-password")}
	mockUsers.On("GetByUsername", ctx, "alice").Return(user, nil).Once()

	err := service.ChangePassword(ctx, "alice", "wrong", "new-password-123")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "current password is incorrect")
	mockUsers.AssertNotCalled(t, "UpdatePassword")
}

func TestUserService_ForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	mockUsers := &MockUserRepository{}
	mockProducer := &MockProducer{}
	service := newTestService(mockUsers, mockProducer)

	ctx := context.Background()
	mockUsers.On("GetByUsernameOrEmail", ctx, "ghost@example.com").Return(nil, apperr.NotFound("user not found")).Once()

	err := service.ForgotPassword(ctx, "ghost@example.com")

	assert.NoError(t, err)
	mockProducer.AssertNotCalled(t, "Publish")
	mockUsers.AssertNotCalled(t, "SetResetToken")
}

func TestUserService_ForgotPassword_IssuesToken(t *testing.T) {
	mockUsers := &MockUserRepository{}
	mockProducer := &MockProducer{}
	service := newTestService(mockUsers, mockProducer)

	ctx := context.Background()
	user := &domain.User{ID: 7, Username: "alice", Email: "alice@example.com", FirstName: "Alice"}
	mockUsers.On("GetByUsernameOrEmail", ctx, "alice@example.com").Return(user, nil).Once()
	mockUsers.On("SetResetToken", ctx, int64(7), mock.AnythingOfType("string"), mock.Anything).Return(nil).Once()
	mockProducer.On("Publish", ctx, "notifications", "alice@example.com", mock.Anything).Return(nil).Once()

	err := service.ForgotPassword(ctx, "alice@example.com")

	assert.NoError(t, err)
	mockUsers.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestUserService_ResetPassword_ExpiredToken(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	expired := time.Now().Add(-time.Minute)
	user := &domain.User{ID: 7, ResetToken: "tok", ResetTokenExpiry: &expired}
	mockUsers.On("GetByResetToken", ctx, "tok").Return(user, nil).Once()

	err := service.ResetPassword(ctx, "tok", "new-password-123")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired reset token")
	mockUsers.AssertNotCalled(t, "UpdatePassword")
}

func TestUserService_ResetPassword_Success(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	expiry := time.Now().Add(30 * time.Minute)
	user := &domain.User{ID: 7, ResetToken: "tok", ResetTokenExpiry: &expiry}
	mockUsers.On("GetByResetToken", ctx, "tok").Return(user, nil).Once()
	mockUsers.On("UpdatePassword", ctx, int64(7), mock.AnythingOfType("string")).Return(nil).Once()

	err := service.ResetPassword(ctx, "tok", "new-password-123")

	assert.NoError(t, err)
	mockUsers.AssertExpectations(t)
}

func TestUserService_Delete_LastAdmin(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newTestService(mockUsers, &MockProducer{})

	ctx := context.Background()
	mockUsers.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Role: domain.RoleAdmin}, nil).Once()
	mockUsers.On("CountByRole", ctx, domain.RoleAdmin).Return(int64(1), nil).Once()

	err := service.Delete(ctx, 1)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "last admin")
	mockUsers.AssertNotCalled(t, "Delete")
}
