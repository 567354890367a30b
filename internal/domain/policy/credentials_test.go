package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "fundoo/internal/domain/errors"
	"fundoo/internal/errors"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple name", input: "Alice", wantErr: false},
		{name: "with space", input: "Alice Smith", wantErr: false},
		{name: "with hyphen", input: "Mary-Jane", wantErr: false},
		{name: "with apostrophe", input: "O'Brien", wantErr: false},
		{name: "with period", input: "J. R. Smith", wantErr: false},
		{name: "minimum length", input: "Al", wantErr: false},
		{name: "maximum length", input: strings.Repeat("a", 100), wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "single character", input: "A", wantErr: true},
		{name: "too long", input: strings.Repeat("a", 101), wantErr: true},
		{name: "digits rejected", input: "Alice2", wantErr: true},
		{name: "underscore rejected", input: "Alice_Smith", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateName(tt.input)
			if tt.wantErr {
				require.Error(t, err)

				var appErr domainerrors.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, domainerrors.ErrValidationFailed.ErrorCode(), appErr.ErrorCode())
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "plain address", input: "alice@example.com", wantErr: false},
		{name: "plus tag", input: "alice+notes@example.com", wantErr: false},
		{name: "dotted local part", input: "a.smith@example.org", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "no at sign", input: "alice.example.com", wantErr: true},
		{name: "two at signs", input: "alice@@example.com", wantErr: true},
		{name: "no domain dot", input: "alice@example", wantErr: true},
		{name: "two domain dots", input: "alice@mail.example.com", wantErr: true},
		{name: "over length limit", input: strings.Repeat("a", 250) + "@x.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateEmail(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "meets all classes", input: "Secret12", wantErr: false},
		{name: "minimum length", input: "Abc123", wantErr: false},
		{name: "maximum length", input: "Aa1" + strings.Repeat("x", 97), wantErr: false},
		{name: "too short", input: "Ab1", wantErr: true},
		{name: "too long", input: "Aa1" + strings.Repeat("x", 98), wantErr: true},
		{name: "no upper case", input: "secret12", wantErr: true},
		{name: "no lower case", input: "SECRET12", wantErr: true},
		{name: "no digit", input: "SecretPw", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePassword(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
