package service

// SecretSource produces the three secret classes the engine hands out.
// All three must come from a cryptographically secure source; none of them
// is derivable from account data.
type SecretSource interface {
	// NewOtp returns a 6-digit numeric verification code, uniformly
	// distributed over [100000, 999999].
	NewOtp() (string, error)

	// NewRefreshToken returns an opaque session token: 32 random bytes,
	// base64url encoded without padding.
	NewRefreshToken() (string, error)

	// NewResetToken returns a password-reset token: 16 random bytes,
	// lowercase hex encoded.
	NewResetToken() (string, error)
}
