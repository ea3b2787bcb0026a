package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByNumber retrieves an account by its account number.
	FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error)

	// FindAccountByName retrieves an account by its exact name.
	FindAccountByName(ctx context.Context, name string) (*domain.Account, error)

	// FindAccountBySubtypeAndName is used to locate control accounts.
	FindAccountBySubtypeAndName(ctx context.Context, subtype, name string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing ids are absent from the map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts returns every account ordered by account number.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// CountChildAccounts counts the direct children of parentID.
	CountChildAccounts(ctx context.Context, parentID string, activeOnly bool) (int, error)

	// LastAccountNumberWithPrefix returns the lexically greatest number of the shape
	// prefix followed by exactly width digits, or "" when none exists.
	LastAccountNumberWithPrefix(ctx context.Context, prefix string, width int) (string, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount overwrites the descriptive fields, type, parent and active flag.
	// The cached balance is not touched.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount removes an account row.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountBalanceWriter maintains the cached running balances.
type AccountBalanceWriter interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them for the rest of the unit of work.
	FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalances adds each delta to the account's current balance.
	UpdateAccountBalances(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error

	// SetAccountBalance overwrites the cached balance.
	SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountBalanceWriter
}
