package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"fundoo/config"
	"fundoo/internal/domain/entity"
	domainerrors "fundoo/internal/domain/errors"
	"fundoo/internal/domain/repository"
	"fundoo/internal/domain/service"
	"fundoo/internal/errors"
	infraauth "fundoo/internal/infra/auth"
	"fundoo/internal/usecase"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAccountRepository is an in-memory AccountRepository. It is shared by
// the fake factory across transactions, so state persists between engine
// calls the way a real database would.
type fakeAccountRepository struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*entity.Account
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{
		nextID:   1,
		accounts: make(map[int64]*entity.Account),
	}
}

func cloneAccount(a *entity.Account) *entity.Account {
	cp := *a

	return &cp
}

func (r *fakeAccountRepository) FindByID(_ context.Context, id int64) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}

	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccountRepository) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccountRepository) FindByRefreshToken(_ context.Context, token string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.RefreshToken != nil && *a.RefreshToken == token {
			return cloneAccount(a), nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccountRepository) FindByResetToken(_ context.Context, token string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.ResetToken != nil && *a.ResetToken == token {
			return cloneAccount(a), nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

func (r *fakeAccountRepository) Create(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == account.Email {
			return repository.ErrEmailTaken
		}
	}

	account.ID = r.nextID
	r.nextID++
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	r.accounts[account.ID] = cloneAccount(account)

	return nil
}

func (r *fakeAccountRepository) Update(_ context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; !ok {
		return repository.ErrAccountNotFound
	}

	account.UpdatedAt = time.Now()
	r.accounts[account.ID] = cloneAccount(account)

	return nil
}

// get returns the stored state of an account for assertions.
func (r *fakeAccountRepository) get(id int64) *entity.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a)
	}

	return nil
}

// fakeTxManager runs the closure directly against the shared repository.
type fakeTxManager struct {
	repo *fakeAccountRepository
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m)
}

func (m *fakeTxManager) NewAccountRepository() repository.AccountRepository {
	return m.repo
}

// fakeHasher keeps scenario tests fast; the real bcrypt hasher has its own tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// fakeIssuer mints predictable access tokens.
type fakeIssuer struct{}

func (fakeIssuer) Issue(_ int64, email string) (string, error) {
	return "access-token-for:" + email, nil
}

func (fakeIssuer) Validate(string) (*service.AccessClaims, error) {
	return nil, errors.New("not implemented")
}

// recordingMailer captures what the engine asked to send.
type recordingMailer struct {
	mu        sync.Mutex
	otps      []sentMail
	resets    []sentMail
	failSends bool
}

type sentMail struct {
	Email  string
	Name   string
	Secret string
}

func (m *recordingMailer) SendOtp(_ context.Context, email, name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSends {
		return errors.New("relay unavailable")
	}
	m.otps = append(m.otps, sentMail{Email: email, Name: name, Secret: code})

	return nil
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSends {
		return errors.New("relay unavailable")
	}
	m.resets = append(m.resets, sentMail{Email: email, Name: name, Secret: token})

	return nil
}

func (m *recordingMailer) lastOtp() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.otps) == 0 {
		return sentMail{}, false
	}

	return m.otps[len(m.otps)-1], true
}

func (m *recordingMailer) lastReset() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.resets) == 0 {
		return sentMail{}, false
	}

	return m.resets[len(m.resets)-1], true
}

// authServiceFixtures holds everything a scenario test touches.
type authServiceFixtures struct {
	service usecase.AuthUsecase
	engine  *authService
	repo    *fakeAccountRepository
	mailer  *recordingMailer
	clock   *fakeClock
}

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func createTestAuthService() authServiceFixtures {
	repo := newFakeAccountRepository()
	mailer := &recordingMailer{}
	clock := &fakeClock{now: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)}

	svc := NewAuthService(AuthServiceParams{
		TxManager: &fakeTxManager{repo: repo},
		Hasher:    fakeHasher{},
		Issuer:    fakeIssuer{},
		Mailer:    mailer,
		Secrets:   infraauth.NewRandomSecretSource(),
		Config:    &config.Config{},
		Logger:    newDiscardLogger(),
	})

	engine := svc.(*authService)
	engine.now = clock.Now

	return authServiceFixtures{
		service: svc,
		engine:  engine,
		repo:    repo,
		mailer:  mailer,
		clock:   clock,
	}
}

// register creates and verifies an account, returning its id.
func (f authServiceFixtures) registerVerified(ctx context.Context, name, email, password string) (int64, error) {
	out, err := f.service.Register(ctx, usecase.RegisterInput{Name: name, Email: email, Password: password})
	if err != nil {
		return 0, err
	}

	otp, ok := f.mailer.lastOtp()
	if !ok {
		return 0, errors.New("no OTP was mailed")
	}

	if err := f.service.VerifyOtp(ctx, usecase.VerifyOtpInput{Email: email, Code: otp.Secret}); err != nil {
		return 0, err
	}

	return out.AccountID, nil
}

// appErrorCode unwraps an engine error to its business error code.
func appErrorCode(err error) string {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.ErrorCode()
	}

	return ""
}
