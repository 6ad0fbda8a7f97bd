package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID                 int64
	Username           string
	Email              string
	PasswordHash       string
	FirstName          string
	LastName           string
	PhoneNumber        string
	Role               Role
	IsEnabled          bool
	IsAccountNonLocked bool
	TwoFactorSecret    string
	TwoFactorEnabled   bool
	ResetToken         string
	ResetTokenExpiry   *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
