package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "fundoo/internal/domain/errors"
	"fundoo/internal/delivery/http/middleware"
	"fundoo/internal/delivery/http/validator"
	"fundoo/internal/usecase"
)

// stubUsecase lets each test script the engine's answer per operation.
type stubUsecase struct {
	registerFn       func(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error)
	verifyOtpFn      func(ctx context.Context, input usecase.VerifyOtpInput) error
	loginFn          func(ctx context.Context, input usecase.LoginInput) (*usecase.SessionOutput, error)
	refreshSessionFn func(ctx context.Context, input usecase.RefreshSessionInput) (*usecase.SessionOutput, error)
	forgotPasswordFn func(ctx context.Context, input usecase.ForgotPasswordInput) error
	resetPasswordFn  func(ctx context.Context, input usecase.ResetPasswordInput) error
	logoutFn         func(ctx context.Context, accountID int64) error
}

func (s *stubUsecase) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	return s.registerFn(ctx, input)
}

func (s *stubUsecase) VerifyOtp(ctx context.Context, input usecase.VerifyOtpInput) error {
	return s.verifyOtpFn(ctx, input)
}

func (s *stubUsecase) Login(ctx context.Context, input usecase.LoginInput) (*usecase.SessionOutput, error) {
	return s.loginFn(ctx, input)
}

func (s *stubUsecase) RefreshSession(ctx context.Context, input usecase.RefreshSessionInput) (*usecase.SessionOutput, error) {
	return s.refreshSessionFn(ctx, input)
}

func (s *stubUsecase) ForgotPassword(ctx context.Context, input usecase.ForgotPasswordInput) error {
	return s.forgotPasswordFn(ctx, input)
}

func (s *stubUsecase) ResetPassword(ctx context.Context, input usecase.ResetPasswordInput) error {
	return s.resetPasswordFn(ctx, input)
}

func (s *stubUsecase) Logout(ctx context.Context, accountID int64) error {
	return s.logoutFn(ctx, accountID)
}

// newTestEcho wires the real validator and error middleware so the responses
// match what clients see in production.
func newTestEcho() *echo.Echo {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError

	return e
}

func doJSON(e *echo.Echo, handlerFn echo.HandlerFunc, target, body string, setup func(echo.Context)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}

	if err := handlerFn(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	return rec
}

func TestAuthHandler_Register_Created(t *testing.T) {
	uc := &stubUsecase{
		registerFn: func(_ context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
			assert.Equal(t, "Alice", input.Name)

			return &usecase.RegisterOutput{AccountID: 7, Email: input.Email}, nil
		},
	}
	e := newTestEcho()
	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := doJSON(e, h.Register, "/auth/register",
		`{"name":"Alice","email":"alice@x.com","password":"Secret12"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"success":true`)
	assert.Contains(t, body, `"userId":7`)
	assert.Contains(t, body, `"email":"alice@x.com"`)
	// The verification code travels only by email.
	assert.NotContains(t, body, "otp")
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	uc := &stubUsecase{
		registerFn: func(context.Context, usecase.RegisterInput) (*usecase.RegisterOutput, error) {
			return nil, domainerrors.ErrEmailTaken
		},
	}
	e := newTestEcho()
	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := doJSON(e, h.Register, "/auth/register",
		`{"name":"Alice","email":"alice@x.com","password":"Secret12"}`, nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"EMAIL_TAKEN"`)
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubUsecase{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := doJSON(e, h.Register, "/auth/register", `{"name":"Alice"}`, nil)

	// Required-field misses fail before the usecase is ever called.
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestAuthHandler_Login_Locked(t *testing.T) {
	uc := &stubUsecase{
		loginFn: func(context.Context, usecase.LoginInput) (*usecase.SessionOutput, error) {
			return nil, domainerrors.ErrAccountLocked.WithDetails("account locked, retry in 15 minutes")
		},
	}
	e := newTestEcho()
	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := doJSON(e, h.Login, "/auth/login",
		`{"email":"alice@x.com","password":"Secret12"}`, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"code":"ACCOUNT_LOCKED"`)
	assert.Contains(t, body, "retry in 15 minutes")
}

func TestAuthHandler_Login_Success(t *testing.T) {
	uc := &stubUsecase{
		loginFn: func(_ context.Context, input usecase.LoginInput) (*usecase.SessionOutput, error) {
			return &usecase.SessionOutput{
				AccountID:    3,
				Email:        input.Email,
				RefreshToken: "refresh-abc",
				AccessToken:  "access-xyz",
			}, nil
		},
	}
	e := newTestEcho()
	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := doJSON(e, h.Login, "/auth/login",
		`{"email":"alice@x.com","password":"Secret12"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"refreshToken":"refresh-abc"`)
	assert.Contains(t, body, `"accessToken":"access-xyz"`)
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	uc := &stubUsecase{
		refreshSessionFn: func(context.Context, usecase.RefreshSessionInput) (*usecase.SessionOutput, error) {
			return nil, domainerrors.ErrRefreshTokenInvalid
		},
	}
	e := newTestEcho()
	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := doJSON(e, h.RefreshToken, "/auth/refresh-token",
		`{"refreshToken":"stale"}`, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"REFRESH_TOKEN_INVALID"`)
}

func TestAuthHandler_ForgotPassword_NeutralMessage(t *testing.T) {
	uc := &stubUsecase{
		forgotPasswordFn: func(context.Context, usecase.ForgotPasswordInput) error {
			return nil
		},
	}
	e := newTestEcho()
	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := doJSON(e, h.ForgotPassword, "/auth/forgot-password",
		`{"email":"ghost@x.com"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "If the email exists")
}

func TestAuthHandler_Logout(t *testing.T) {
	var gotID int64
	uc := &stubUsecase{
		logoutFn: func(_ context.Context, accountID int64) error {
			gotID = accountID

			return nil
		},
	}
	e := newTestEcho()
	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := doJSON(e, h.Logout, "/auth/logout", `{}`, func(c echo.Context) {
		c.Set(middleware.ContextKeyAccountID, int64(42))
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), gotID)
}

func TestAuthHandler_Logout_MissingIdentity(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubUsecase{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := doJSON(e, h.Logout, "/auth/logout", `{}`, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
