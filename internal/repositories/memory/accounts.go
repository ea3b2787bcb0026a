package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type accountRepository struct {
	db access
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func (r *accountRepository) findOne(ctx context.Context, desc string, match func(domain.Account) bool) (*domain.Account, error) {
	var found *domain.Account
	err := r.db.read(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if match(a) {
				acc := a
				found = &acc
				return nil
			}
		}
		return apperrors.NewNotFoundError(desc)
	})
	return found, err
}

func (r *accountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var found *domain.Account
	err := r.db.read(ctx, func(st *state) error {
		a, ok := st.accounts[accountID]
		if !ok {
			return apperrors.NewNotFoundError("account " + accountID)
		}
		found = &a
		return nil
	})
	return found, err
}

func (r *accountRepository) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return r.findOne(ctx, "account number "+number, func(a domain.Account) bool { return a.AccountNumber == number })
}

func (r *accountRepository) FindAccountByName(ctx context.Context, name string) (*domain.Account, error) {
	return r.findOne(ctx, "account name "+name, func(a domain.Account) bool { return a.Name == name })
}

func (r *accountRepository) FindAccountBySubtypeAndName(ctx context.Context, subtype, name string) (*domain.Account, error) {
	return r.findOne(ctx, fmt.Sprintf("account %s/%s", subtype, name), func(a domain.Account) bool {
		return a.Subtype == subtype && a.Name == name
	})
}

func (r *accountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	err := r.db.read(ctx, func(st *state) error {
		for _, id := range accountIDs {
			if a, ok := st.accounts[id]; ok {
				out[id] = a
			}
		}
		return nil
	})
	return out, err
}

// FindAccountsByIDsForUpdate needs no extra locking: a unit of work already owns the writer lock.
func (r *accountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return r.FindAccountsByIDs(ctx, accountIDs)
}

func (r *accountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var out []domain.Account
	err := r.db.read(ctx, func(st *state) error {
		out = make([]domain.Account, 0, len(st.accounts))
		for _, a := range st.accounts {
			out = append(out, a)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountNumber == out[j].AccountNumber {
			return out[i].AccountID < out[j].AccountID
		}
		return out[i].AccountNumber < out[j].AccountNumber
	})
	return out, err
}

func (r *accountRepository) CountChildAccounts(ctx context.Context, parentID string, activeOnly bool) (int, error) {
	n := 0
	err := r.db.read(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if a.ParentAccountID == nil || *a.ParentAccountID != parentID {
				continue
			}
			if activeOnly && !a.IsActive {
				continue
			}
			n++
		}
		return nil
	})
	return n, err
}

func (r *accountRepository) LastAccountNumberWithPrefix(ctx context.Context, prefix string, width int) (string, error) {
	last := ""
	err := r.db.read(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if !isPrefixedNumber(a.AccountNumber, prefix, width) {
				continue
			}
			if a.AccountNumber > last {
				last = a.AccountNumber
			}
		}
		return nil
	})
	return last, err
}

func isPrefixedNumber(number, prefix string, width int) bool {
	if !strings.HasPrefix(number, prefix) {
		return false
	}
	rest := number[len(prefix):]
	if len(rest) != width {
		return false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.accounts[account.AccountID]; ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
		}
		for _, a := range st.accounts {
			if a.AccountNumber == account.AccountNumber {
				return fmt.Errorf("%w: account number %s", apperrors.ErrDuplicate, account.AccountNumber)
			}
			if a.Name == account.Name {
				return fmt.Errorf("%w: account name %s", apperrors.ErrDuplicate, account.Name)
			}
		}
		st.accounts[account.AccountID] = account
		return nil
	})
}

func (r *accountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	return r.db.write(ctx, func(st *state) error {
		existing, ok := st.accounts[account.AccountID]
		if !ok {
			return apperrors.NewNotFoundError("account " + account.AccountID)
		}
		for id, a := range st.accounts {
			if id == account.AccountID {
				continue
			}
			if a.AccountNumber == account.AccountNumber || a.Name == account.Name {
				return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountNumber)
			}
		}
		account.CurrentBalance = existing.CurrentBalance
		account.CreatedAt = existing.CreatedAt
		account.CreatedBy = existing.CreatedBy
		st.accounts[account.AccountID] = account
		return nil
	})
}

func (r *accountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.accounts[accountID]; !ok {
			return apperrors.NewNotFoundError("account " + accountID)
		}
		delete(st.accounts, accountID)
		return nil
	})
}

func (r *accountRepository) UpdateAccountBalances(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	return r.db.write(ctx, func(st *state) error {
		for id := range deltas {
			if _, ok := st.accounts[id]; !ok {
				return apperrors.NewNotFoundError("account " + id)
			}
		}
		for id, delta := range deltas {
			a := st.accounts[id]
			a.CurrentBalance = a.CurrentBalance.Add(delta)
			a.Touch(userID, now)
			st.accounts[id] = a
		}
		return nil
	})
}

func (r *accountRepository) SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	return r.db.write(ctx, func(st *state) error {
		a, ok := st.accounts[accountID]
		if !ok {
			return apperrors.NewNotFoundError("account " + accountID)
		}
		a.CurrentBalance = balance
		a.Touch(userID, now)
		st.accounts[accountID] = a
		return nil
	})
}
