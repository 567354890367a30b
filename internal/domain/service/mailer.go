package service

import "context"

// Mailer delivers the two transactional emails of the account lifecycle.
// The engine calls it only after the owning state transition has committed;
// a delivery failure is logged by the caller and never rolls anything back.
type Mailer interface {
	// SendOtp sends the email-verification code to a freshly registered address.
	SendOtp(ctx context.Context, email, name, code string) error

	// SendPasswordReset sends the reset token to an existing account's address.
	SendPasswordReset(ctx context.Context, email, name, token string) error
}
