package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/pkg/errors"

	"fundoo/internal/domain/service"
)

const (
	otpMin = 100000
	otpMax = 999999

	refreshTokenBytes = 32
	resetTokenBytes   = 16
)

// randomSecretSource implements SecretSource on crypto/rand.
type randomSecretSource struct{}

// NewRandomSecretSource is the constructor for randomSecretSource.
func NewRandomSecretSource() service.SecretSource {
	return &randomSecretSource{}
}

// NewOtp returns a 6-digit code, uniform over [100000, 999999].
func (s *randomSecretSource) NewOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", errors.Wrap(err, "failed to read random source")
	}

	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// NewRefreshToken returns 32 random bytes, base64url without padding (43 chars).
func (s *randomSecretSource) NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random source")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewResetToken returns 16 random bytes, lowercase hex (32 chars).
func (s *randomSecretSource) NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random source")
	}

	return hex.EncodeToString(buf), nil
}
