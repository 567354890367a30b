package postgres

import (
	"context"

	"fundoo/internal/domain/entity"
	domainerrors "fundoo/internal/domain/errors"
	"fundoo/internal/domain/repository"
	"fundoo/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// accountRepository implements the domain.AccountRepository interface using GORM.
// With forUpdate set, every lookup takes a row lock; the transaction-bound
// variant uses this so concurrent mutations of one account serialize on the row.
type accountRepository struct {
	db        *gorm.DB
	forUpdate bool
}

// NewAccountRepository is the constructor for the plain, non-locking repository.
// It returns the repository as a domain interface, adhering to dependency inversion.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// newTxAccountRepository builds the locking variant handed out by the
// transaction factory.
func newTxAccountRepository(tx *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: tx, forUpdate: true}
}

func (repo *accountRepository) query(ctx context.Context) *gorm.DB {
	q := repo.db.WithContext(ctx)
	if repo.forUpdate {
		// Row lock plus pinning to the primary; a locked read cannot be
		// served by a replica.
		q = q.Clauses(clause.Locking{Strength: "UPDATE"}, dbresolver.Write)
	}

	return q
}

func (repo *accountRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Account, error) {
	var accountM model.AccountModel
	err := repo.query(ctx).Where(query, args...).First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account")
	}

	return toAccountDomain(&accountM), nil
}

// FindByID retrieves a single account by its unique ID.
func (repo *accountRepository) FindByID(ctx context.Context, id int64) (*entity.Account, error) {
	return repo.findOne(ctx, "id = ?", id)
}

// FindByEmail retrieves a single account by its email address. The column
// collation is case-sensitive, matching the lookup semantics of the domain.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return repo.findOne(ctx, "email = ?", email)
}

// FindByRefreshToken retrieves the account holding the given live refresh token.
func (repo *accountRepository) FindByRefreshToken(ctx context.Context, token string) (*entity.Account, error) {
	return repo.findOne(ctx, "refresh_token = ?", token)
}

// FindByResetToken retrieves the account holding the given outstanding reset token.
func (repo *accountRepository) FindByResetToken(ctx context.Context, token string) (*entity.Account, error) {
	return repo.findOne(ctx, "reset_token = ?", token)
}

// Create persists a new account and fills in its assigned ID and timestamps.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrEmailTaken
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "missing required account information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	account.ID = accountM.ID
	account.CreatedAt = accountM.CreatedAt
	account.UpdatedAt = accountM.UpdatedAt

	return nil
}

// Update modifies an existing account in the database. Save writes every
// column, so cleared token fields are persisted as NULL rather than skipped.
func (repo *accountRepository) Update(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Save(accountM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrEmailTaken
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update account")
	}

	account.UpdatedAt = accountM.UpdatedAt

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toAccountDomain converts a GORM AccountModel to a domain Account entity.
func toAccountDomain(data *model.AccountModel) *entity.Account {
	if data == nil {
		return nil
	}

	return &entity.Account{
		ID:                 data.ID,
		Name:               data.Name,
		Email:              data.Email,
		PasswordHash:       data.PasswordHash,
		EmailVerified:      data.EmailVerified,
		VerificationCode:   data.VerificationCode,
		VerificationExpiry: data.VerificationExpiry,
		ResetToken:         data.ResetToken,
		ResetExpiry:        data.ResetExpiry,
		RefreshToken:       data.RefreshToken,
		RefreshExpiry:      data.RefreshExpiry,
		FailedLoginCount:   data.FailedLoginCount,
		LockoutUntil:       data.LockoutUntil,
		LastLoginAt:        data.LastLoginAt,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}

// fromAccountDomain converts a domain Account entity to a GORM AccountModel for persistence.
func fromAccountDomain(data *entity.Account) *model.AccountModel {
	if data == nil {
		return nil
	}

	return &model.AccountModel{
		ID:                 data.ID,
		Name:               data.Name,
		Email:              data.Email,
		PasswordHash:       data.PasswordHash,
		EmailVerified:      data.EmailVerified,
		VerificationCode:   data.VerificationCode,
		VerificationExpiry: data.VerificationExpiry,
		ResetToken:         data.ResetToken,
		ResetExpiry:        data.ResetExpiry,
		RefreshToken:       data.RefreshToken,
		RefreshExpiry:      data.RefreshExpiry,
		FailedLoginCount:   data.FailedLoginCount,
		LockoutUntil:       data.LockoutUntil,
		LastLoginAt:        data.LastLoginAt,
		CreatedAt:          data.CreatedAt,
	}
}
