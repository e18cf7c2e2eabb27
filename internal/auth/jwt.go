package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingClaim = errors.New("token is missing user or role")
)

// Claims is the access token payload. Role decides which role room a
// realtime connection joins.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuedAt(),
		),
	}
}

// GenerateToken signs a token for userID. Production tokens come from the
// identity service; tests and tooling use this.
func (tm *TokenManager) GenerateToken(userID string, role domain.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry, then requires a user id
// and a known role.
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := tm.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return tm.secret, nil
	})
	switch {
	case err != nil:
		return nil, err
	case !token.Valid:
		return nil, ErrInvalidToken
	case claims.UserID == "" || !claims.Role.IsValid():
		return nil, ErrMissingClaim
	}
	return &claims, nil
}
