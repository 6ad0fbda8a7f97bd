package repository

import (
	"context"
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, login string) (*domain.User, error)
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, page Page) (*PageResult[domain.User], error)
	Search(ctx context.Context, term string, page Page) (*PageResult[domain.User], error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetTwoFactor(ctx context.Context, id int64, secret string, enabled bool) error
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	SetResetToken(ctx context.Context, id int64, token string, expiry *time.Time) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, phone_number, role, is_enabled, is_account_non_locked, two_factor_secret, two_factor_enabled, reset_token, reset_token_expiry, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.PhoneNumber, &u.Role, &u.IsEnabled, &u.IsAccountNonLocked,
		&u.TwoFactorSecret, &u.TwoFactorEnabled, &u.ResetToken, &u.ResetTokenExpiry,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRow(ctx, `INSERT INTO users (username, email, password_hash, first_name, last_name, phone_number, role, is_enabled, is_account_non_locked, two_factor_secret, two_factor_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.PhoneNumber, user.Role, user.IsEnabled, user.IsAccountNonLocked,
		user.TwoFactorSecret, user.TwoFactorEnabled).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.BadRequest("username or email is already taken")
	}
	return err
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	u, err := scanUser(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("user not found with id: %d", id)
	}
	return u, err
}

func (r *PGUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	u, err := scanUser(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("user not found with username: %s", username)
	}
	return u, err
}

func (r *PGUserRepository) GetByUsernameOrEmail(ctx context.Context, login string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1 OR email=$1`, login)
	u, err := scanUser(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("user not found: %s", login)
	}
	return u, err
}

func (r *PGUserRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token=$1`, token)
	u, err := scanUser(row)
	if isNoRows(err) {
		return nil, apperr.NotFound("invalid reset token")
	}
	return u, err
}

func (r *PGUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username=$1)`, username).Scan(&exists)
	return exists, err
}

func (r *PGUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

func (r *PGUserRepository) List(ctx context.Context, page Page) (*PageResult[domain.User], error) {
	return r.query(ctx, page, `WHERE true`, nil)
}

func (r *PGUserRepository) Search(ctx context.Context, term string, page Page) (*PageResult[domain.User], error) {
	pattern := "%" + term + "%"
	return r.query(ctx, page,
		`WHERE username ILIKE $1 OR email ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1`,
		[]any{pattern})
}

func (r *PGUserRepository) query(ctx context.Context, page Page, where string, args []any) (*PageResult[domain.User], error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	listArgs := append(args, page.Limit(), page.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users `+where+
		` ORDER BY username LIMIT $`+itoa(n+1)+` OFFSET $`+itoa(n+2), listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &PageResult[domain.User]{Items: items, TotalCount: total, Number: page.Number, Size: page.Limit()}, nil
}

func (r *PGUserRepository) Update(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRow(ctx, `UPDATE users SET username=$1, email=$2, first_name=$3, last_name=$4, phone_number=$5, updated_at=now()
		WHERE id=$6 RETURNING updated_at`,
		user.Username, user.Email, user.FirstName, user.LastName, user.PhoneNumber, user.ID).
		Scan(&user.UpdatedAt)
	if isNoRows(err) {
		return apperr.NotFound("user not found with id: %d", user.ID)
	}
	if isUniqueViolation(err) {
		return apperr.BadRequest("username or email is already taken")
	}
	return err
}

func (r *PGUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET password_hash=$1, reset_token='', reset_token_expiry=NULL, updated_at=now() WHERE id=$2`, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("user not found with id: %d", id)
	}
	return nil
}

func (r *PGUserRepository) SetTwoFactor(ctx context.Context, id int64, secret string, enabled bool) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET two_factor_secret=$1, two_factor_enabled=$2, updated_at=now() WHERE id=$3`, secret, enabled, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("user not found with id: %d", id)
	}
	return nil
}

func (r *PGUserRepository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET is_enabled=$1, updated_at=now() WHERE id=$2`, enabled, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("user not found with id: %d", id)
	}
	return nil
}

func (r *PGUserRepository) SetResetToken(ctx context.Context, id int64, token string, expiry *time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET reset_token=$1, reset_token_expiry=$2, updated_at=now() WHERE id=$3`, token, expiry, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("user not found with id: %d", id)
	}
	return nil
}

func (r *PGUserRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("user not found with id: %d", id)
	}
	return nil
}

func (r *PGUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

func (r *PGUserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM users WHERE role=$1`, role).Scan(&n)
	return n, err
}

func (r *PGUserRepository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM users WHERE created_at BETWEEN $1 AND $2`, start, end).Scan(&n)
	return n, err
}

var _ UserRepository = (*PGUserRepository)(nil)
