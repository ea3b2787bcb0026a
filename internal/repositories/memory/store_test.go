package memory

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, s *Store, id, number string) {
	t.Helper()
	require.NoError(t, s.Accounts().SaveAccount(context.Background(), domain.Account{
		AccountID:     id,
		AccountNumber: number,
		Name:          "Account " + number,
		AccountType:   domain.Asset,
		NormalBalance: domain.NormalDebit,
		IsActive:      true,
	}))
}

func entry(id, number string, date time.Time, status domain.JournalStatus, debitAcc, creditAcc string, amount int64) domain.JournalEntry {
	amt := decimal.NewFromInt(amount)
	return domain.JournalEntry{
		JournalID:     id,
		JournalNumber: number,
		EntryDate:     date,
		Status:        status,
		Lines: []domain.JournalLine{
			{LineID: id + "-1", LineOrder: 1, AccountID: debitAcc, DebitAmount: amt, CreditAmount: decimal.Zero},
			{LineID: id + "-2", LineOrder: 2, AccountID: creditAcc, DebitAmount: decimal.Zero, CreditAmount: amt},
		},
	}
}

func TestUnitOfWorkRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Accounts().SaveAccount(ctx, domain.Account{AccountID: "a1", AccountNumber: "1000", Name: "Cash"}))
	require.NoError(t, uow.Rollback(ctx))

	_, err = s.Accounts().FindAccountByID(ctx, "a1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUnitOfWorkCommitPublishesWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Accounts().SaveAccount(ctx, domain.Account{AccountID: "a1", AccountNumber: "1000", Name: "Cash"}))
	require.NoError(t, uow.Commit(ctx))
	assert.NoError(t, uow.Rollback(ctx), "rollback after commit is a no-op")

	acc, err := s.Accounts().FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Cash", acc.Name)

	_, err = uow.Accounts().FindAccountByID(ctx, "a1")
	assert.ErrorIs(t, err, errTxDone)
}

func TestSaveAccountRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "a1", "1000")

	err := s.Accounts().SaveAccount(ctx, domain.Account{AccountID: "a2", AccountNumber: "1000", Name: "Other"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestLastAccountNumberWithPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "a1", "1000")
	seedAccount(t, s, "a2", "1010")
	seedAccount(t, s, "a3", "10100")
	seedAccount(t, s, "a4", "2000")

	last, err := s.Accounts().LastAccountNumberWithPrefix(ctx, "1", 3)
	require.NoError(t, err)
	assert.Equal(t, "1010", last)
}

func TestUpdateAccountBalancesKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "a1", "1000")
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Accounts().UpdateAccountBalances(ctx, map[string]decimal.Decimal{"a1": decimal.NewFromInt(5)}, "u1", now))
	require.NoError(t, s.Accounts().UpdateAccountBalances(ctx, map[string]decimal.Decimal{"a1": decimal.NewFromInt(-2)}, "u1", now))

	acc, err := s.Accounts().FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "u1", acc.LastUpdatedBy)

	err = s.Accounts().UpdateAccountBalances(ctx, map[string]decimal.Decimal{"missing": decimal.NewFromInt(1)}, "u1", now)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListJournalsPagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1000")
	seedAccount(t, s, "bank", "1010")

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, n := range []string{"JE20250001", "JE20250002", "JE20250003"} {
		e := entry(n, n, day.AddDate(0, 0, i/2), domain.StatusPosted, "cash", "bank", 10)
		require.NoError(t, s.Journals().SaveJournal(ctx, e))
	}

	page, next, err := s.Journals().ListJournals(ctx, portsrepo.JournalFilter{}, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "JE20250003", page[0].JournalNumber)
	assert.Equal(t, "JE20250002", page[1].JournalNumber)
	assert.Nil(t, page[0].Lines)
	require.NotNil(t, next)

	page, next, err = s.Journals().ListJournals(ctx, portsrepo.JournalFilter{}, 2, next)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "JE20250001", page[0].JournalNumber)
	assert.Nil(t, next)

	bad := "!!"
	_, _, err = s.Journals().ListJournals(ctx, portsrepo.JournalFilter{}, 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	token := pagination.EncodeToken(day.AddDate(1, 0, 0), "JE99999999")
	page, _, err = s.Journals().ListJournals(ctx, portsrepo.JournalFilter{}, 10, &token)
	require.NoError(t, err)
	assert.Len(t, page, 3)
}

func TestSumLinesByAccountFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1000")
	seedAccount(t, s, "bank", "1010")

	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Journals().SaveJournal(ctx, entry("j1", "JE20250001", jan, domain.StatusPosted, "cash", "bank", 100)))
	require.NoError(t, s.Journals().SaveJournal(ctx, entry("j2", "JE20250002", feb, domain.StatusPosted, "cash", "bank", 50)))
	require.NoError(t, s.Journals().SaveJournal(ctx, entry("j3", "JE20250003", jan, domain.StatusVoid, "cash", "bank", 7)))

	end := domain.EndOfDay(jan)
	totals, err := s.Journals().SumLinesByAccount(ctx, portsrepo.LineFilter{
		Statuses: []domain.JournalStatus{domain.StatusPosted},
		To:       &end,
	})
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "bank", totals[0].AccountID)
	assert.True(t, totals[0].Credit.Equal(decimal.NewFromInt(100)))
	assert.True(t, totals[1].Debit.Equal(decimal.NewFromInt(100)))
}

func TestSetLinesReconciliation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1000")
	seedAccount(t, s, "bank", "1010")
	require.NoError(t, s.Journals().SaveJournal(ctx, entry("j1", "JE20250001", time.Now().UTC(), domain.StatusPosted, "bank", "cash", 10)))

	rec := "r1"
	require.NoError(t, s.Journals().SetLinesReconciliation(ctx, []string{"j1-1"}, &rec, true))

	ids, err := s.Journals().ListLinesByReconciliation(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"j1-1"}, ids)

	lines, err := s.Journals().FindLinesByIDs(ctx, []string{"j1-1", "nope"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines["j1-1"].IsCleared)
	assert.Equal(t, "JE20250001", lines["j1-1"].JournalNumber)

	err = s.Journals().SetLinesReconciliation(ctx, []string{"nope"}, nil, false)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
