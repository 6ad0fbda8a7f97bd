package users

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/auth"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/flyair/flyair-backend/internal/kafka"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/google/uuid"
)

const resetTokenTTL = time.Hour

type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	RegisterFirstAdmin(ctx context.Context, input RegisterInput) (*domain.User, error)
	CreateAdmin(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	VerifyTwoFactor(ctx context.Context, tempToken, code string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	SetupTwoFactor(ctx context.Context, username string) (*auth.TOTPProvisioning, error)
	EnableTwoFactor(ctx context.Context, username, code string) error
	DisableTwoFactor(ctx context.Context, username string) error
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.User], error)
	Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.User], error)
	UpdateProfile(ctx context.Context, username string, input ProfileInput) (*domain.User, error)
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	Delete(ctx context.Context, id int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

type LoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type ProfileInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// AuthResult is the outcome of a login step. When RequiresTwoFactor is set,
// only TemporaryToken is populated and the client must call VerifyTwoFactor.
type AuthResult struct {
	AccessToken       string       `json:"access_token,omitempty"`
	RefreshToken      string       `json:"refresh_token,omitempty"`
	ExpiresInSeconds  int64        `json:"expires_in_seconds,omitempty"`
	RequiresTwoFactor bool         `json:"requires_two_factor"`
	TemporaryToken    string       `json:"temporary_token,omitempty"`
	User              *domain.User `json:"-"`
}

type UserService struct {
	users    repository.UserRepository
	tokens   *auth.TokenIssuer
	totp     *auth.TOTPService
	producer Producer
	topic    string
	bcrypt   int
}

var _ UserUseCase = (*UserService)(nil)

type UserServiceOption func(*UserService)

func WithNotifications(producer Producer, topic string) UserServiceOption {
	return func(s *UserService) {
		s.producer = producer
		s.topic = topic
	}
}

func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenIssuer,
	totp *auth.TOTPService,
	bcryptCost int,
	opts ...UserServiceOption,
) *UserService {
	service := &UserService{
		users:  users,
		tokens: tokens,
		totp:   totp,
		bcrypt: bcryptCost,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.create(ctx, input, domain.RoleUser)
}

// RegisterFirstAdmin bootstraps the initial admin account. It is open only
// while no admin exists; afterwards admins are created by other admins.
func (s *UserService) RegisterFirstAdmin(ctx context.Context, input RegisterInput) (*domain.User, error) {
	admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if admins > 0 {
		return nil, apperr.Forbidden("an admin account already exists")
	}
	return s.create(ctx, input, domain.RoleAdmin)
}

func (s *UserService) CreateAdmin(ctx context.Context, input RegisterInput) (*domain.User, error) {
	return s.create(ctx, input, domain.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, input RegisterInput, role domain.Role) (*domain.User, error) {
	if err := validateRegistration(input); err != nil {
		return nil, err
	}
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.BadRequest("username is already taken")
	}
	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.BadRequest("email is already registered")
	}

	hash, err := auth.HashPassword(input.Password, s.bcrypt)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &domain.User{
		Username:           username,
		Email:              email,
		PasswordHash:       hash,
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		PhoneNumber:        input.PhoneNumber,
		Role:               role,
		IsEnabled:          true,
		IsAccountNonLocked: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if role == domain.RoleUser {
		s.publish(ctx, kafka.NotificationEvent{
			Type:  kafka.EventUserRegistered,
			Email: user.Email,
			Name:  user.FirstName,
		})
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.GetByUsernameOrEmail(ctx, strings.ToLower(strings.TrimSpace(input.Login)))
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, input.Password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if !user.IsEnabled {
		return nil, apperr.Unauthorized("account is disabled")
	}
	if !user.IsAccountNonLocked {
		return nil, apperr.Unauthorized("account is locked")
	}

	if user.TwoFactorEnabled {
		temp, err := s.tokens.TempToken(user)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return &AuthResult{RequiresTwoFactor: true, TemporaryToken: temp, User: user}, nil
	}
	return s.issueTokens(user)
}

func (s *UserService) VerifyTwoFactor(ctx context.Context, tempToken, code string) (*AuthResult, error) {
	claims, err := s.tokens.Parse(tempToken, auth.TokenTypeTemp)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.TwoFactorEnabled || !s.totp.VerifyCode(user.TwoFactorSecret, code) {
		return nil, apperr.Unauthorized("invalid verification code")
	}
	return s.issueTokens(user)
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.IsEnabled {
		return nil, apperr.Unauthorized("account is disabled")
	}
	return s.issueTokens(user)
}

func (s *UserService) SetupTwoFactor(ctx context.Context, username string) (*auth.TOTPProvisioning, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, apperr.BadRequest("two-factor authentication is already enabled")
	}

	prov, err := s.totp.GenerateSecret(user.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	// Stored disabled until the user proves they can produce a code.
	if err := s.users.SetTwoFactor(ctx, user.ID, prov.Secret, false); err != nil {
		return nil, err
	}
	return prov, nil
}

func (s *UserService) EnableTwoFactor(ctx context.Context, username, code string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.TwoFactorSecret == "" {
		return apperr.BadRequest("two-factor setup has not been started")
	}
	if !s.totp.VerifyCode(user.TwoFactorSecret, code) {
		return apperr.BadRequest("invalid verification code")
	}
	return s.users.SetTwoFactor(ctx, user.ID, user.TwoFactorSecret, true)
}

func (s *UserService) DisableTwoFactor(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.users.SetTwoFactor(ctx, user.ID, "", false)
}

func (s *UserService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperr.Validation(map[string]string{"new_password": "must be at least 8 characters"})
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(user.PasswordHash, currentPassword) {
		return apperr.BadRequest("current password is incorrect")
	}

	hash, err := auth.HashPassword(newPassword, s.bcrypt)
	if err != nil {
		return apperr.Internal(err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// ForgotPassword issues a reset token and emails it. An unknown email is not
// an error, so the endpoint does not reveal which addresses exist.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByUsernameOrEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expiry := time.Now().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, &expiry); err != nil {
		return err
	}

	s.publish(ctx, kafka.NotificationEvent{
		Type:       kafka.EventPasswordReset,
		Email:      user.Email,
		Name:       user.FirstName,
		ResetToken: token,
	})
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return apperr.Validation(map[string]string{"new_password": "must be at least 8 characters"})
	}
	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return apperr.BadRequest("invalid or expired reset token")
		}
		return err
	}
	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		return apperr.BadRequest("invalid or expired reset token")
	}

	hash, err := auth.HashPassword(newPassword, s.bcrypt)
	if err != nil {
		return apperr.Internal(err)
	}
	// UpdatePassword also clears the reset token, making it single-use.
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *UserService) List(ctx context.Context, page repository.Page) (*repository.PageResult[domain.User], error) {
	return s.users.List(ctx, page)
}

func (s *UserService) Search(ctx context.Context, term string, page repository.Page) (*repository.PageResult[domain.User], error) {
	return s.users.Search(ctx, term, page)
}

func (s *UserService) UpdateProfile(ctx context.Context, username string, input ProfileInput) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.PhoneNumber = input.PhoneNumber
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}
	return s.users.SetEnabled(ctx, id, enabled)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleAdmin {
		admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperr.BadRequest("cannot delete the last admin account")
		}
	}
	return s.users.Delete(ctx, id)
}

func (s *UserService) issueTokens(user *domain.User) (*AuthResult, error) {
	access, err := s.tokens.AccessToken(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refresh, err := s.tokens.RefreshToken(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResult{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresInSeconds: int64(s.tokens.AccessTTL().Seconds()),
		User:             user,
	}, nil
}

func (s *UserService) publish(ctx context.Context, event kafka.NotificationEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, event.Email, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for %s: %v", event.Type, event.Email, err)
	}
}

func validateRegistration(input RegisterInput) error {
	fields := map[string]string{}
	if len(strings.TrimSpace(input.Username)) < 3 {
		fields["username"] = "must be at least 3 characters"
	}
	if !strings.Contains(input.Email, "@") {
		fields["email"] = "must be a valid email address"
	}
	if len(input.Password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if strings.TrimSpace(input.FirstName) == "" {
		fields["first_name"] = "must not be blank"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
