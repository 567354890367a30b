// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fundoo/config"
	"fundoo/internal/domain/service"
)

const defaultAccessTTL = 15 * time.Minute

// jwtIssuer is a concrete implementation of the AccessTokenIssuer interface
// using HS256-signed JWTs. Only access tokens are JWTs; refresh tokens are
// opaque values held by the store.
type jwtIssuer struct {
	secret    string        // Secret key for signing access tokens.
	accessTTL time.Duration // Time-to-live for access tokens.
}

// NewJWTIssuer is the constructor for jwtIssuer.
func NewJWTIssuer(cfg *config.Config) (service.AccessTokenIssuer, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt access secret must be provided")
	}

	accessTTL := defaultAccessTTL
	if cfg.Auth != nil && cfg.Auth.AccessTokenTTL > 0 {
		accessTTL = cfg.Auth.AccessTokenTTL
	}

	return &jwtIssuer{
		secret:    cfg.SecretKey.Access,
		accessTTL: accessTTL,
	}, nil
}

// Issue creates a signed access token for the given account.
func (s *jwtIssuer) Issue(accountID int64, email string) (string, error) {
	now := time.Now()
	claims := &service.AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.secret))
}

// Validate checks a token string and returns its claims.
func (s *jwtIssuer) Validate(tokenString string) (*service.AccessClaims, error) {
	claims := &service.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	return claims, nil
}
