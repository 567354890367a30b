// Package policy holds the pure rules of the authentication domain:
// credential shape validation and the login lockout policy. Nothing here
// touches storage, time sources are always passed in.
package policy

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"

	domainerrors "fundoo/internal/domain/errors"
)

const (
	nameMinLen     = 2
	nameMaxLen     = 100
	emailMaxLen    = 255
	passwordMinLen = 6
	passwordMaxLen = 100
)

var (
	// Letters plus the separators that appear in real names.
	namePattern = regexp.MustCompile(`^[A-Za-z .'-]+$`)

	// Single @, single dot in the domain part.
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+\.[A-Za-z]{2,}$`)
)

// ValidateName checks the display-name rules: 2-100 characters, letters,
// spaces, hyphens, apostrophes and periods only.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < nameMinLen || n > nameMaxLen {
		return domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("name must be between %d and %d characters", nameMinLen, nameMaxLen))
	}

	if !namePattern.MatchString(name) {
		return domainerrors.ErrValidationFailed.WithDetails(
			"name may only contain letters, spaces, hyphens, apostrophes and periods")
	}

	return nil
}

// ValidateEmail checks the address shape. Matching elsewhere in the system is
// case-sensitive, so no normalization happens here.
func ValidateEmail(email string) error {
	if email == "" || len(email) > emailMaxLen {
		return domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("email must be between 1 and %d characters", emailMaxLen))
	}

	if !emailPattern.MatchString(email) {
		return domainerrors.ErrValidationFailed.WithDetails("email address is not valid")
	}

	return nil
}

// ValidatePassword checks the password policy: 6-100 characters with at least
// one upper-case letter, one lower-case letter and one digit.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < passwordMinLen || n > passwordMaxLen {
		return domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("password must be between %d and %d characters", passwordMinLen, passwordMaxLen))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return domainerrors.ErrValidationFailed.WithDetails(
			"password must contain at least one upper-case letter, one lower-case letter and one digit")
	}

	return nil
}
