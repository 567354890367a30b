package service

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims defines the custom claims carried by access tokens.
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AccessTokenIssuer mints and validates the short-lived access tokens handed
// out next to a refresh token. Refresh tokens themselves are opaque random
// strings owned by the store, not JWTs, so they never pass through here.
type AccessTokenIssuer interface {
	// Issue creates a signed access token for the given account.
	Issue(accountID int64, email string) (string, error)

	// Validate checks a token string and returns its claims.
	Validate(tokenString string) (*AccessClaims, error)
}
