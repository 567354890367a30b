package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"fundoo/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// ContextKeyAccountID is where Authenticate stores the verified account id.
const ContextKeyAccountID = "accountID"

// AuthMiddleware provides middleware for JWT access-token authentication.
type AuthMiddleware struct {
	issuer service.AccessTokenIssuer
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(issuer service.AccessTokenIssuer) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer}
}

// Authenticate is the core middleware function that validates the JWT access token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format, must be Bearer token")
		}

		claims, err := m.issuer.Validate(tokenString)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid account ID format in token")
		}

		// Set identity on the context for handlers to use
		c.Set(ContextKeyAccountID, accountID)

		return next(c)
	}
}
