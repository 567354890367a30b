// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fundoo/config"
	deliverycontext "fundoo/internal/delivery/context"
	"fundoo/internal/domain/entity"
	domainerrors "fundoo/internal/domain/errors"
	"fundoo/internal/domain/policy"
	"fundoo/internal/domain/repository"
	"fundoo/internal/domain/service"
	"fundoo/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface. Every mutating flow runs
// inside a single transaction whose account lookups take a row lock, so two
// concurrent calls against the same account serialize instead of racing on
// the failure counter or the token fields.
type authService struct {
	txManager  repository.TransactionManager
	hasher     service.PasswordHasher
	issuer     service.AccessTokenIssuer
	mailer     service.Mailer
	secrets    service.SecretSource
	lockout    policy.LockoutPolicy
	otpTTL     time.Duration
	resetTTL   time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Hasher    service.PasswordHasher
	Issuer    service.AccessTokenIssuer
	Mailer    service.Mailer
	Secrets   service.SecretSource
	Config    *config.Config
	Logger    *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	lockout := policy.DefaultLockoutPolicy()
	otpTTL := policy.DefaultOtpTTL
	resetTTL := policy.DefaultResetTokenTTL
	refreshTTL := policy.DefaultRefreshTokenTTL

	if params.Config != nil && params.Config.Policy != nil {
		p := params.Config.Policy
		if p.LockoutThreshold > 0 {
			lockout.Threshold = p.LockoutThreshold
		}
		if p.LockoutDuration > 0 {
			lockout.LockDuration = p.LockoutDuration
		}
		if p.OtpTTL > 0 {
			otpTTL = p.OtpTTL
		}
		if p.ResetTokenTTL > 0 {
			resetTTL = p.ResetTokenTTL
		}
		if p.RefreshTokenTTL > 0 {
			refreshTTL = p.RefreshTokenTTL
		}
	}

	return &authService{
		txManager:  params.TxManager,
		hasher:     params.Hasher,
		issuer:     params.Issuer,
		mailer:     params.Mailer,
		secrets:    params.Secrets,
		lockout:    lockout,
		otpTTL:     otpTTL,
		resetTTL:   resetTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		logger:     params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates an unverified account and mails it a 6-digit OTP.
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if err := policy.ValidateName(input.Name); err != nil {
		return nil, err
	}
	if err := policy.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := policy.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	// Hashing is slow on purpose, keep it outside the transaction.
	hashed, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	otp, err := srv.secrets.NewOtp()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate verification code")
	}

	now := srv.now()
	expiry := now.Add(srv.otpTTL)
	account := &entity.Account{
		Name:               input.Name,
		Email:              input.Email,
		PasswordHash:       hashed,
		VerificationCode:   &otp,
		VerificationExpiry: &expiry,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.NewAccountRepository()

		_, err := accountRepo.FindByEmail(ctx, input.Email)
		if err == nil {
			return domainerrors.ErrEmailTaken.WrapMessage("registration failed")
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return errors.Wrap(err, "failed to check email availability")
		}

		if err := accountRepo.Create(ctx, account); err != nil {
			// The unique constraint may still fire under a concurrent register.
			if errors.Is(err, repository.ErrEmailTaken) {
				return domainerrors.ErrEmailTaken.WrapMessage("registration failed")
			}

			return errors.Wrap(err, "failed to create account")
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	// The account is committed; a lost email never undoes that.
	if err := srv.mailer.SendOtp(ctx, account.Email, account.Name, otp); err != nil {
		srv.log(ctx).Error("Failed to deliver verification email",
			slog.Int64("accountID", account.ID), slog.Any("error", err))
	}

	srv.log(ctx).Debug("Registration completed", slog.Int64("accountID", account.ID))

	return &usecase.RegisterOutput{AccountID: account.ID, Email: account.Email}, nil
}

// VerifyOtp flips the account to verified when the code matches in time.
func (srv *authService) VerifyOtp(ctx context.Context, input usecase.VerifyOtpInput) error {
	srv.log(ctx).Info("Starting OTP verification", slog.String("email", input.Email))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.NewAccountRepository()

		account, err := accountRepo.FindByEmail(ctx, input.Email)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domainerrors.ErrAccountNotFound.WrapMessage("OTP verification failed")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find account by email")
		}

		// A consumed or never-issued code fails the same way as a wrong one.
		if account.VerificationCode == nil || *account.VerificationCode != input.Code {
			return domainerrors.ErrInvalidOtp.WrapMessage("OTP verification failed")
		}
		if account.VerificationExpiry == nil || srv.now().After(*account.VerificationExpiry) {
			return domainerrors.ErrOtpExpired.WrapMessage("OTP verification failed")
		}

		account.EmailVerified = true
		account.ClearVerification()

		if err := accountRepo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to mark account verified")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute OTP verification transaction")
	}

	srv.log(ctx).Debug("OTP verification completed", slog.String("email", input.Email))

	return nil
}

// Login checks credentials under the lockout policy and starts a session.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.SessionOutput, error) {
	srv.log(ctx).Info("Starting login", slog.String("email", input.Email))

	var account *entity.Account
	var refreshToken string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.NewAccountRepository()

		found, err := accountRepo.FindByEmail(ctx, input.Email)
		if errors.Is(err, repository.ErrAccountNotFound) {
			// Unknown email and wrong password are indistinguishable.
			return domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find account by email")
		}

		now := srv.now()
		if remaining, locked := found.Locked(now); locked {
			return domainerrors.ErrAccountLocked.WithDetails(fmt.Sprintf(
				"account locked, retry in %d minutes", policy.RemainingMinutes(remaining))).
				WrapMessage("login refused while locked")
		}

		// The password check runs while the row lock is held so the failure
		// counter update is atomic with the check that caused it.
		if !srv.hasher.Check(input.Password, found.PasswordHash) {
			newCount, lockedUntil := srv.lockout.RecordFailure(found.FailedLoginCount, now)
			found.FailedLoginCount = newCount
			found.LockoutUntil = lockedUntil

			if err := accountRepo.Update(ctx, found); err != nil {
				return errors.Wrap(err, "failed to record login failure")
			}

			if lockedUntil != nil {
				return domainerrors.ErrTooManyAttempts.WrapMessage("login failed")
			}

			return domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		// Correct password on an unverified account leaves the counter alone.
		if !found.EmailVerified {
			return domainerrors.ErrEmailNotVerified.WrapMessage("login refused")
		}

		token, err := srv.secrets.NewRefreshToken()
		if err != nil {
			return errors.Wrap(err, "failed to generate refresh token")
		}

		expiry := now.Add(srv.refreshTTL)
		found.FailedLoginCount = 0
		found.LockoutUntil = nil
		found.LastLoginAt = &now
		found.RefreshToken = &token
		found.RefreshExpiry = &expiry

		if err := accountRepo.Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to persist session")
		}

		account = found
		refreshToken = token

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute login transaction")
	}

	accessToken, err := srv.issuer.Issue(account.ID, account.Email)
	if err != nil {
		srv.log(ctx).Error("Failed to issue access token after login",
			slog.Int64("accountID", account.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue access token")
	}

	srv.log(ctx).Debug("Login completed", slog.Int64("accountID", account.ID))

	return &usecase.SessionOutput{
		AccountID:    account.ID,
		Email:        account.Email,
		RefreshToken: refreshToken,
		AccessToken:  accessToken,
	}, nil
}

// RefreshSession rotates a live refresh token for a new pair. The store holds
// only the newest token value, so the one presented here stops working the
// moment the rotation commits.
func (srv *authService) RefreshSession(ctx context.Context, input usecase.RefreshSessionInput) (*usecase.SessionOutput, error) {
	srv.log(ctx).Info("Starting session refresh")

	var account *entity.Account
	var newToken string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.NewAccountRepository()

		found, err := accountRepo.FindByRefreshToken(ctx, input.RefreshToken)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domainerrors.ErrRefreshTokenInvalid.WrapMessage("session refresh failed")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find account by refresh token")
		}

		now := srv.now()
		if found.RefreshExpiry == nil || now.After(*found.RefreshExpiry) {
			return domainerrors.ErrRefreshTokenInvalid.WrapMessage("session refresh failed")
		}

		token, err := srv.secrets.NewRefreshToken()
		if err != nil {
			return errors.Wrap(err, "failed to generate refresh token")
		}

		expiry := now.Add(srv.refreshTTL)
		found.RefreshToken = &token
		found.RefreshExpiry = &expiry

		if err := accountRepo.Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to persist rotated session")
		}

		account = found
		newToken = token

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute session refresh transaction")
	}

	accessToken, err := srv.issuer.Issue(account.ID, account.Email)
	if err != nil {
		srv.log(ctx).Error("Failed to issue access token after refresh",
			slog.Int64("accountID", account.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue access token")
	}

	srv.log(ctx).Debug("Session refresh completed", slog.Int64("accountID", account.ID))

	return &usecase.SessionOutput{
		AccountID:    account.ID,
		Email:        account.Email,
		RefreshToken: newToken,
		AccessToken:  accessToken,
	}, nil
}

// ForgotPassword issues a reset token. An unknown email succeeds silently and
// must stay indistinguishable from the found case, so the token is generated
// before the lookup and no error ever leaves this path.
func (srv *authService) ForgotPassword(ctx context.Context, input usecase.ForgotPasswordInput) error {
	srv.log(ctx).Info("Starting password reset request", slog.String("email", input.Email))

	token, err := srv.secrets.NewResetToken()
	if err != nil {
		return errors.Wrap(err, "failed to generate reset token")
	}

	var account *entity.Account

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.NewAccountRepository()

		found, err := accountRepo.FindByEmail(ctx, input.Email)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to find account by email")
		}

		expiry := srv.now().Add(srv.resetTTL)
		found.ResetToken = &token
		found.ResetExpiry = &expiry

		if err := accountRepo.Update(ctx, found); err != nil {
			return errors.Wrap(err, "failed to persist reset token")
		}

		account = found

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute password reset request transaction")
	}

	if account != nil {
		if err := srv.mailer.SendPasswordReset(ctx, account.Email, account.Name, token); err != nil {
			srv.log(ctx).Error("Failed to deliver password reset email",
				slog.Int64("accountID", account.ID), slog.Any("error", err))
		}
	}

	srv.log(ctx).Debug("Password reset request completed")

	return nil
}

// ResetPassword consumes a reset token, replaces the password and ends any
// live session.
func (srv *authService) ResetPassword(ctx context.Context, input usecase.ResetPasswordInput) error {
	srv.log(ctx).Info("Starting password reset")

	if err := policy.ValidatePassword(input.NewPassword); err != nil {
		return err
	}

	hashed, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash replacement password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.NewAccountRepository()

		account, err := accountRepo.FindByResetToken(ctx, input.Token)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domainerrors.ErrResetTokenInvalid.WrapMessage("password reset failed")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find account by reset token")
		}

		if account.ResetExpiry == nil || srv.now().After(*account.ResetExpiry) {
			return domainerrors.ErrResetTokenInvalid.WrapMessage("password reset failed")
		}

		account.PasswordHash = hashed
		account.ClearResetToken()
		// Forced logout of every live session is part of the contract.
		account.ClearRefreshToken()

		if err := accountRepo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to persist new password")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute password reset transaction")
	}

	srv.log(ctx).Debug("Password reset completed")

	return nil
}

// Logout drops the live refresh token for the given account.
func (srv *authService) Logout(ctx context.Context, accountID int64) error {
	srv.log(ctx).Info("Starting logout", slog.Int64("accountID", accountID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.NewAccountRepository()

		account, err := accountRepo.FindByID(ctx, accountID)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domainerrors.ErrAccountNotFound.WrapMessage("logout failed")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find account by id")
		}

		account.ClearRefreshToken()

		if err := accountRepo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to clear session")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute logout transaction")
	}

	srv.log(ctx).Debug("Logout completed", slog.Int64("accountID", accountID))

	return nil
}
