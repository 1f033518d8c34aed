package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parsakhaledi/paydar/internal/core/domain"
)

// tokenIssuer is baked into every token this API mints; tokens carrying any
// other issuer are rejected regardless of signature.
const tokenIssuer = "paydar"

const userLookupTimeout = 2 * time.Second

var ErrTokenInvalid = errors.New("invalid or expired token")

// TokenService mints and verifies the HS256 bearer tokens the API hands out
// at login. Validation also resolves the subject against the user store, so
// deleting an account revokes its outstanding tokens.
type TokenService struct {
	key   []byte
	ttl   time.Duration
	users domain.UserRepository
}

func NewTokenService(secret string, ttl time.Duration, users domain.UserRepository) *TokenService {
	return &TokenService{
		key:   []byte(secret),
		ttl:   ttl,
		users: users,
	}
}

func (s *TokenService) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken returns the user id a token was minted for, or
// ErrTokenInvalid when the signature, issuer, expiry or subject fails.
func (s *TokenService) ValidateToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	ctx, cancel := context.WithTimeout(context.Background(), userLookupTimeout)
	defer cancel()

	if _, err := s.users.GetByID(ctx, claims.Subject); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	return claims.Subject, nil
}
