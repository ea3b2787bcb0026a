package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations of the chart of accounts.
type AccountReaderSvc interface {
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts returns every account ordered by account number.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// GetHierarchy derives the account forest from parent ids; roots have no parent.
	GetHierarchy(ctx context.Context) ([]*domain.AccountNode, error)

	// IsAccountNumberUnique reports whether number is free, ignoring excludeAccountID.
	IsAccountNumberUnique(ctx context.Context, number string, excludeAccountID string) (bool, error)

	// IsAccountNameUnique reports whether name is free, ignoring excludeAccountID.
	IsAccountNameUnique(ctx context.Context, name string, excludeAccountID string) (bool, error)

	// GetBalance returns the cached balance when asOf is nil, otherwise
	// Σdebit − Σcredit over posted lines dated on or before asOf.
	GetBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error)
}

// AccountWriterSvc defines write operations of the chart of accounts.
type AccountWriterSvc interface {
	CreateAccount(ctx context.Context, spec domain.AccountSpec, actorID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, accountID string, spec domain.AccountSpec, actorID string) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, accountID string, actorID string) error
	ReactivateAccount(ctx context.Context, accountID string, actorID string) error
	DeleteAccount(ctx context.Context, accountID string) error

	// RecalculateBalances rebuilds every cached balance from posted lines and
	// returns the accounts that had drifted.
	RecalculateBalances(ctx context.Context, actorID string) ([]domain.BalanceDrift, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
