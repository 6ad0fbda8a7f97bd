package auth

import (
	"time"

	"github.com/flyair/flyair-backend/internal/apperr"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	// TokenTypeTemp is the short-lived token issued between password and TOTP
	// verification during a two-factor login. It grants no API access.
	TokenTypeTemp = "temp"
)

type Claims struct {
	Role      domain.Role `json:"role"`
	TokenType string      `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 JWTs for the three token types.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	tempTTL    time.Duration
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL, tempTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		tempTTL:    tempTTL,
	}
}

func (i *TokenIssuer) AccessToken(user *domain.User) (string, error) {
	return i.sign(user, TokenTypeAccess, i.accessTTL)
}

func (i *TokenIssuer) RefreshToken(user *domain.User) (string, error) {
	return i.sign(user, TokenTypeRefresh, i.refreshTTL)
}

func (i *TokenIssuer) TempToken(user *domain.User) (string, error) {
	return i.sign(user, TokenTypeTemp, i.tempTTL)
}

func (i *TokenIssuer) AccessTTL() time.Duration { return i.accessTTL }

func (i *TokenIssuer) sign(user *domain.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse verifies the signature and expiry and checks the token carries the
// expected type, so a refresh or temp token cannot be used as an access token.
func (i *TokenIssuer) Parse(tokenString, expectedType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, apperr.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthorized("invalid token")
	}
	if claims.TokenType != expectedType {
		return nil, apperr.Unauthorized("invalid token type")
	}
	return claims, nil
}
