// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// VerifyOtpInput carries the email/code pair of the verification step.
type VerifyOtpInput struct {
	Email string
	Code  string
}

// LoginInput defines the data required to log in.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshSessionInput carries the refresh token being rotated.
type RefreshSessionInput struct {
	RefreshToken string
}

// ForgotPasswordInput carries the address asking for a reset token.
type ForgotPasswordInput struct {
	Email string
}

// ResetPasswordInput carries a reset token and the replacement password.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// --- Output DTOs ---

// RegisterOutput returns the new account id. The OTP itself travels only to
// the mailer, never back through the transport.
type RegisterOutput struct {
	AccountID int64
	Email     string
}

// SessionOutput returns the identity and fresh token pair after a successful
// login or refresh.
type SessionOutput struct {
	AccountID    int64
	Email        string
	RefreshToken string
	AccessToken  string
}

// AuthUsecase defines the interface for the account authentication and
// session-lifecycle operations. This is the contract the delivery layer
// depends on.
type AuthUsecase interface {
	// Register creates an unverified account and mails it a 6-digit OTP.
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)

	// VerifyOtp flips the account to verified when the code matches in time.
	VerifyOtp(ctx context.Context, input VerifyOtpInput) error

	// Login checks credentials under the lockout policy and starts a session.
	Login(ctx context.Context, input LoginInput) (*SessionOutput, error)

	// RefreshSession rotates a live refresh token for a new pair.
	RefreshSession(ctx context.Context, input RefreshSessionInput) (*SessionOutput, error)

	// ForgotPassword issues a reset token; silently succeeds on unknown email.
	ForgotPassword(ctx context.Context, input ForgotPasswordInput) error

	// ResetPassword consumes a reset token, replaces the password and ends
	// any live session.
	ResetPassword(ctx context.Context, input ResetPasswordInput) error

	// Logout drops the live refresh token for the given account.
	Logout(ctx context.Context, accountID int64) error
}
