// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"
)

// Account is the sole entity of the authentication subsystem. It carries the
// login credential, the email-verification state and the three secret classes
// (verification code, reset token, refresh token). Each secret class holds at
// most one live value; issuing a new one always replaces the previous value.
type Account struct {
	ID           int64  // Surrogate key, assigned by the store.
	Name         string // Display name, validated at registration.
	Email        string // Unique login identifier, matched case-sensitively.
	PasswordHash string // bcrypt digest; never logged, only replaced wholesale.

	EmailVerified      bool       // False until the OTP flow completes.
	VerificationCode   *string    // Pending OTP, nil once verified.
	VerificationExpiry *time.Time // OTP deadline.

	ResetToken  *string    // Outstanding password-reset token, nil otherwise.
	ResetExpiry *time.Time // Reset token deadline.

	RefreshToken  *string    // The single live session token, nil when logged out.
	RefreshExpiry *time.Time // Refresh token deadline.

	FailedLoginCount int        // Consecutive failed password checks since last success.
	LockoutUntil     *time.Time // While set and in the future, login is refused outright.
	LastLoginAt      *time.Time // Timestamp of the last successful login.

	CreatedAt time.Time // Timestamp of when this account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this account.
}

// Locked reports whether the account is inside an active lockout window and,
// if so, how long the window still lasts.
func (a *Account) Locked(now time.Time) (time.Duration, bool) {
	if a.LockoutUntil == nil || !a.LockoutUntil.After(now) {
		return 0, false
	}

	return a.LockoutUntil.Sub(now), true
}

// ClearRefreshToken drops the live session token, forcing re-authentication.
func (a *Account) ClearRefreshToken() {
	a.RefreshToken = nil
	a.RefreshExpiry = nil
}

// ClearVerification drops the pending OTP state.
func (a *Account) ClearVerification() {
	a.VerificationCode = nil
	a.VerificationExpiry = nil
}

// ClearResetToken drops the outstanding password-reset state.
func (a *Account) ClearResetToken() {
	a.ResetToken = nil
	a.ResetExpiry = nil
}
