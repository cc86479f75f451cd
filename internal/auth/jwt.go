package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTManager issues and validates HS256 bearer tokens whose subject is the
// caller's account address.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Generate creates a signed token for caller.
func (m *JWTManager) Generate(caller domain.Address) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   caller.String(),
		Issuer:    m.issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and returns the caller address it was issued for.
func (m *JWTManager) Validate(tokenString string) (domain.Address, error) {
	if tokenString == "" {
		return domain.Address{}, fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Address{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return domain.Address{}, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}

	caller, err := domain.ParseAddress(claims.Subject)
	if err != nil {
		return domain.Address{}, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	if caller.IsZero() {
		return domain.Address{}, fmt.Errorf("%w: zero subject", ErrInvalidToken)
	}
	return caller, nil
}
