package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/utils/numbering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the chart of accounts registry.
type accountService struct {
	BaseService
	store portsrepo.Store
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountClock replaces the wall clock, mainly for tests.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.clock = now
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(store portsrepo.Store, opts ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func normalizeSpec(spec domain.AccountSpec) domain.AccountSpec {
	spec.Name = strings.TrimSpace(spec.Name)
	spec.AccountNumber = strings.TrimSpace(spec.AccountNumber)
	if spec.ParentAccountID != nil && strings.TrimSpace(*spec.ParentAccountID) == "" {
		spec.ParentAccountID = nil
	}
	return spec
}

func (s *accountService) CreateAccount(ctx context.Context, spec domain.AccountSpec, actorID string) (*domain.Account, error) {
	spec = normalizeSpec(spec)
	if err := validateStruct(spec); err != nil {
		s.LogWarn(ctx, err, "Invalid account spec")
		return nil, err
	}

	normal := spec.NormalBalance
	if normal == "" {
		normal = spec.AccountType.DefaultNormalBalance()
	}
	now := s.Now()

	account, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.Account, error) {
		repo := uow.Accounts()
		accountID := uuid.NewString()

		number := spec.AccountNumber
		if number == "" {
			prefix := spec.AccountType.NumberPrefix()
			last, err := repo.LastAccountNumberWithPrefix(ctx, prefix, numbering.SequenceWidth)
			if err != nil {
				return nil, fmt.Errorf("failed to read account numbers: %w", err)
			}
			number = numbering.Next(prefix, last)
		}
		if err := s.ensureUniqueNumberAndName(ctx, repo, number, spec.Name, accountID); err != nil {
			return nil, err
		}
		if spec.ParentAccountID != nil {
			if err := checkParent(ctx, repo, accountID, *spec.ParentAccountID); err != nil {
				return nil, err
			}
		}

		account := domain.Account{
			AccountID:       accountID,
			AccountNumber:   number,
			Name:            spec.Name,
			AccountType:     spec.AccountType,
			Subtype:         spec.Subtype,
			NormalBalance:   normal,
			ParentAccountID: spec.ParentAccountID,
			Description:     spec.Description,
			IsActive:        true,
			IsSystem:        spec.IsSystem,
			CurrentBalance:  decimal.Zero,
		}
		account.AuditFields.Stamp(actorID, now)

		if err := repo.SaveAccount(ctx, account); err != nil {
			return nil, err
		}
		return &account, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create account", slog.String("name", spec.Name))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("account_number", account.AccountNumber))
	return account, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, spec domain.AccountSpec, actorID string) (*domain.Account, error) {
	spec = normalizeSpec(spec)
	if err := validateStruct(spec); err != nil {
		s.LogWarn(ctx, err, "Invalid account spec", slog.String("account_id", accountID))
		return nil, err
	}
	now := s.Now()

	account, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.Account, error) {
		repo := uow.Accounts()
		existing, err := repo.FindAccountByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if existing.IsSystem {
			return nil, fmt.Errorf("%w: %s cannot be modified", apperrors.ErrProtectedAccount, existing.Name)
		}

		if spec.AccountType != existing.AccountType {
			count, err := uow.Journals().CountLinesByAccount(ctx, accountID)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, fmt.Errorf("%w: %w: account type of %s cannot change, it has %d journal lines",
					apperrors.ErrImmutableField, apperrors.ErrInvalidState, existing.AccountNumber, count)
			}
		}

		number := existing.AccountNumber
		if spec.AccountNumber != "" {
			number = spec.AccountNumber
		}
		if err := s.ensureUniqueNumberAndName(ctx, repo, number, spec.Name, accountID); err != nil {
			return nil, err
		}
		if spec.ParentAccountID != nil {
			if err := checkParent(ctx, repo, accountID, *spec.ParentAccountID); err != nil {
				return nil, err
			}
		}

		normal := spec.NormalBalance
		if normal == "" {
			normal = existing.NormalBalance
			if spec.AccountType != existing.AccountType {
				normal = spec.AccountType.DefaultNormalBalance()
			}
		}

		updated := *existing
		updated.AccountNumber = number
		updated.Name = spec.Name
		updated.AccountType = spec.AccountType
		updated.Subtype = spec.Subtype
		updated.NormalBalance = normal
		updated.ParentAccountID = spec.ParentAccountID
		updated.Description = spec.Description
		updated.AuditFields.Touch(actorID, now)

		if err := repo.UpdateAccount(ctx, updated); err != nil {
			return nil, err
		}
		return &updated, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return account, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, actorID string) error {
	return s.setActive(ctx, accountID, false, actorID)
}

func (s *accountService) ReactivateAccount(ctx context.Context, accountID string, actorID string) error {
	return s.setActive(ctx, accountID, true, actorID)
}

func (s *accountService) setActive(ctx context.Context, accountID string, active bool, actorID string) error {
	now := s.Now()
	_, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (struct{}, error) {
		repo := uow.Accounts()
		account, err := repo.FindAccountByID(ctx, accountID)
		if err != nil {
			return struct{}{}, err
		}
		if account.IsSystem {
			return struct{}{}, fmt.Errorf("%w: %s cannot be deactivated or reactivated", apperrors.ErrProtectedAccount, account.Name)
		}
		if account.IsActive == active {
			return struct{}{}, nil
		}
		account.IsActive = active
		account.AuditFields.Touch(actorID, now)
		return struct{}{}, repo.UpdateAccount(ctx, *account)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to change account status", slog.String("account_id", accountID), slog.Bool("active", active))
		return err
	}
	s.LogInfo(ctx, "Account status changed", slog.String("account_id", accountID), slog.Bool("active", active))
	return nil
}

// DeleteAccount removes an unreferenced account. Inactive children move up to its parent.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string) error {
	_, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (struct{}, error) {
		repo := uow.Accounts()
		account, err := repo.FindAccountByID(ctx, accountID)
		if err != nil {
			return struct{}{}, err
		}
		if account.IsSystem {
			return struct{}{}, fmt.Errorf("%w: %s cannot be deleted", apperrors.ErrProtectedAccount, account.Name)
		}

		activeChildren, err := repo.CountChildAccounts(ctx, accountID, true)
		if err != nil {
			return struct{}{}, err
		}
		if activeChildren > 0 {
			return struct{}{}, fmt.Errorf("%w: account %s has %d active child accounts", apperrors.ErrInvalidState, account.AccountNumber, activeChildren)
		}
		lines, err := uow.Journals().CountLinesByAccount(ctx, accountID)
		if err != nil {
			return struct{}{}, err
		}
		if lines > 0 {
			return struct{}{}, fmt.Errorf("%w: account %s has %d journal lines", apperrors.ErrInvalidState, account.AccountNumber, lines)
		}

		all, err := repo.ListAccounts(ctx)
		if err != nil {
			return struct{}{}, err
		}
		for _, child := range all {
			if child.ParentAccountID != nil && *child.ParentAccountID == accountID {
				child.ParentAccountID = account.ParentAccountID
				if err := repo.UpdateAccount(ctx, child); err != nil {
					return struct{}{}, err
				}
			}
		}
		return struct{}{}, repo.DeleteAccount(ctx, accountID)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID))
	return nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.store.Accounts().FindAccountByID(ctx, accountID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.store.Accounts().ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	s.LogDebug(ctx, "Accounts listed", slog.Int("count", len(accounts)))
	return accounts, nil
}

func (s *accountService) IsAccountNumberUnique(ctx context.Context, number string, excludeAccountID string) (bool, error) {
	found, err := s.store.Accounts().FindAccountByNumber(ctx, strings.TrimSpace(number))
	return isFree(found, err, excludeAccountID)
}

func (s *accountService) IsAccountNameUnique(ctx context.Context, name string, excludeAccountID string) (bool, error) {
	found, err := s.store.Accounts().FindAccountByName(ctx, strings.TrimSpace(name))
	return isFree(found, err, excludeAccountID)
}

// isFree turns a lookup result into a uniqueness answer; only store failures are errors.
func isFree(found *domain.Account, err error, excludeID string) (bool, error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return found.AccountID == excludeID, nil
}

func (s *accountService) ensureUniqueNumberAndName(ctx context.Context, repo portsrepo.AccountReader, number, name, accountID string) error {
	found, err := repo.FindAccountByNumber(ctx, number)
	free, err := isFree(found, err, accountID)
	if err != nil {
		return err
	}
	if !free {
		return fmt.Errorf("%w: account number %s", apperrors.ErrDuplicate, number)
	}
	found, err = repo.FindAccountByName(ctx, name)
	free, err = isFree(found, err, accountID)
	if err != nil {
		return err
	}
	if !free {
		return fmt.Errorf("%w: account name %q", apperrors.ErrDuplicate, name)
	}
	return nil
}

// checkParent walks the ancestor chain from parentID upward and rejects it when accountID is met.
func checkParent(ctx context.Context, repo portsrepo.AccountReader, accountID, parentID string) error {
	if parentID == accountID {
		return fmt.Errorf("%w: account cannot be its own parent", apperrors.ErrCycle)
	}
	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		return err
	}
	parents := make(map[string]*string, len(accounts))
	for _, a := range accounts {
		parents[a.AccountID] = a.ParentAccountID
	}
	if _, ok := parents[parentID]; !ok {
		return fmt.Errorf("%w: parent account %s", apperrors.ErrNotFound, parentID)
	}

	visited := make(map[string]bool)
	for current := parentID; current != ""; {
		if current == accountID {
			return fmt.Errorf("%w: account %s is an ancestor of %s", apperrors.ErrCycle, accountID, parentID)
		}
		if visited[current] {
			return fmt.Errorf("%w: existing hierarchy loops at %s", apperrors.ErrCycle, current)
		}
		visited[current] = true
		next := parents[current]
		if next == nil {
			break
		}
		current = *next
	}
	return nil
}

func (s *accountService) GetBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	account, err := s.store.Accounts().FindAccountByID(ctx, accountID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to get account for balance", slog.String("account_id", accountID))
		return decimal.Zero, err
	}
	if asOf == nil {
		return account.CurrentBalance, nil
	}
	balance, err := postedBalance(ctx, s.store.Journals(), accountID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum account lines", slog.String("account_id", accountID))
		return decimal.Zero, err
	}
	return balance, nil
}

// GetHierarchy derives child lists from the flat arena of accounts. Accounts whose parent
// is missing are treated as roots.
func (s *accountService) GetHierarchy(ctx context.Context) ([]*domain.AccountNode, error) {
	accounts, err := s.store.Accounts().ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for hierarchy")
		return nil, err
	}
	sort.SliceStable(accounts, func(i, j int) bool { return accounts[i].AccountNumber < accounts[j].AccountNumber })

	nodes := make(map[string]*domain.AccountNode, len(accounts))
	for _, a := range accounts {
		nodes[a.AccountID] = &domain.AccountNode{Account: a, Children: []*domain.AccountNode{}}
	}
	roots := make([]*domain.AccountNode, 0)
	for _, a := range accounts {
		node := nodes[a.AccountID]
		if a.ParentAccountID != nil {
			if parent, ok := nodes[*a.ParentAccountID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// RecalculateBalances rebuilds cached balances from posted lines, the source of truth.
func (s *accountService) RecalculateBalances(ctx context.Context, actorID string) ([]domain.BalanceDrift, error) {
	now := s.Now()
	drifts, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) ([]domain.BalanceDrift, error) {
		accounts, err := uow.Accounts().ListAccounts(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(accounts))
		for i, a := range accounts {
			ids[i] = a.AccountID
		}
		locked, err := uow.Accounts().FindAccountsByIDsForUpdate(ctx, ids)
		if err != nil {
			return nil, err
		}
		totals, err := uow.Journals().SumLinesByAccount(ctx, portsrepo.LineFilter{
			Statuses: []domain.JournalStatus{domain.StatusPosted},
		})
		if err != nil {
			return nil, err
		}
		actual := make(map[string]decimal.Decimal, len(totals))
		for _, t := range totals {
			actual[t.AccountID] = actual[t.AccountID].Add(t.Debit.Sub(t.Credit))
		}

		drifts := make([]domain.BalanceDrift, 0)
		for _, a := range accounts {
			cached := locked[a.AccountID].CurrentBalance
			want := actual[a.AccountID]
			if cached.Equal(want) {
				continue
			}
			if err := uow.Accounts().SetAccountBalance(ctx, a.AccountID, want, actorID, now); err != nil {
				return nil, err
			}
			drifts = append(drifts, domain.BalanceDrift{
				AccountID:     a.AccountID,
				AccountNumber: a.AccountNumber,
				Cached:        cached,
				Actual:        want,
			})
		}
		return drifts, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to recalculate balances")
		return nil, err
	}
	if len(drifts) > 0 {
		s.LogWarn(ctx, fmt.Errorf("%d drifted balances", len(drifts)), "Cached balances were out of date and have been rebuilt")
	} else {
		s.LogInfo(ctx, "Cached balances verified")
	}
	return drifts, nil
}
