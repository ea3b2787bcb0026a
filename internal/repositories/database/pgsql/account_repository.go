package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, account_number, name, account_type, subtype, normal_balance,
	parent_account_id, description, is_active, is_system, current_balance,
	created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.AccountID,
		&a.AccountNumber,
		&a.Name,
		&a.AccountType,
		&a.Subtype,
		&a.NormalBalance,
		&a.ParentAccountID,
		&a.Description,
		&a.IsActive,
		&a.IsSystem,
		&a.CurrentBalance,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	a.CreatedAt = a.CreatedAt.UTC()
	a.LastUpdatedAt = a.LastUpdatedAt.UTC()
	return a, err
}

func (r *PgxAccountRepository) findOne(ctx context.Context, what, where string, args ...any) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where + ` LIMIT 1;`
	a, err := scanAccount(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, what)
	}
	return &a, nil
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, "account "+accountID, "account_id = $1", accountID)
}

func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return r.findOne(ctx, "account number "+number, "account_number = $1", number)
}

func (r *PgxAccountRepository) FindAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	return r.findOne(ctx, "account name "+name, "name = $1", name)
}

func (r *PgxAccountRepository) FindAccountBySubtypeAndName(ctx context.Context, subtype, name string) (*domain.Account, error) {
	return r.findOne(ctx, fmt.Sprintf("account %s/%s", subtype, name), "subtype = $1 AND name = $2", subtype, name)
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, what, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, what)
	}
	accounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Account, error) {
		return scanAccount(row)
	})
	if err != nil {
		return nil, mapError(err, what)
	}
	return accounts, nil
}

func (r *PgxAccountRepository) findByIDs(ctx context.Context, accountIDs []string, suffix string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	// ORDER BY keeps lock acquisition order stable across concurrent postings.
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id` + suffix + `;`
	accounts, err := r.queryAccounts(ctx, "accounts by ids", query, accountIDs)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		out[a.AccountID] = a
	}
	return out, nil
}

func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return r.findByIDs(ctx, accountIDs, "")
}

// FindAccountsByIDsForUpdate locks the selected rows until the unit of work ends.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return r.findByIDs(ctx, accountIDs, r.forUpdate())
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return r.queryAccounts(ctx, "accounts", `SELECT `+accountColumns+` FROM accounts ORDER BY account_number, account_id;`)
}

func (r *PgxAccountRepository) CountChildAccounts(ctx context.Context, parentID string, activeOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE parent_account_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	var n int
	if err := r.db.QueryRow(ctx, query, parentID).Scan(&n); err != nil {
		return 0, mapError(err, "child accounts of "+parentID)
	}
	return n, nil
}

func (r *PgxAccountRepository) LastAccountNumberWithPrefix(ctx context.Context, prefix string, width int) (string, error) {
	pattern := fmt.Sprintf("^%s[0-9]{%d}$", regexpQuote(prefix), width)
	var last *string
	err := r.db.QueryRow(ctx, `SELECT MAX(account_number) FROM accounts WHERE account_number ~ $1;`, pattern).Scan(&last)
	if err != nil {
		return "", mapError(err, "account numbers")
	}
	if last == nil {
		return "", nil
	}
	return *last, nil
}

// regexpQuote escapes POSIX regex metacharacters; prefixes are digits in practice.
func regexpQuote(s string) string {
	var b strings.Builder
	for _, c := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, c) {
			b.WriteRune('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.db.Exec(ctx, query,
		account.AccountID,
		account.AccountNumber,
		account.Name,
		account.AccountType,
		account.Subtype,
		account.NormalBalance,
		account.ParentAccountID,
		account.Description,
		account.IsActive,
		account.IsSystem,
		account.CurrentBalance,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	return mapError(err, "account "+account.AccountNumber)
}

// UpdateAccount leaves current_balance and the created columns untouched.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET account_number = $2, name = $3, account_type = $4, subtype = $5, normal_balance = $6,
		    parent_account_id = $7, description = $8, is_active = $9, is_system = $10,
		    last_updated_at = $11, last_updated_by = $12
		WHERE account_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		account.AccountID,
		account.AccountNumber,
		account.Name,
		account.AccountType,
		account.Subtype,
		account.NormalBalance,
		account.ParentAccountID,
		account.Description,
		account.IsActive,
		account.IsSystem,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "account "+account.AccountID)
	}
	return expectRow(tag, "account "+account.AccountID)
}

func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		return mapError(err, "account "+accountID)
	}
	return expectRow(tag, "account "+accountID)
}

// UpdateAccountBalances applies every delta in one batch.
func (r *PgxAccountRepository) UpdateAccountBalances(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	query := `
		UPDATE accounts
		SET current_balance = current_balance + $1, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $4;
	`
	batch := &pgx.Batch{}
	ids := make([]string, 0, len(deltas))
	for id, delta := range deltas {
		ids = append(ids, id)
		batch.Queue(query, delta, now, userID, id)
	}
	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for _, id := range ids {
		tag, err := br.Exec()
		if err != nil {
			return mapError(err, "balance of account "+id)
		}
		if err := expectRow(tag, "account "+id); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgxAccountRepository) SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE accounts SET current_balance = $1, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $4;
	`
	tag, err := r.db.Exec(ctx, query, balance, now, userID, accountID)
	if err != nil {
		return mapError(err, "balance of account "+accountID)
	}
	return expectRow(tag, "account "+accountID)
}
