package pgsql

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/migrations"
	"github.com/SscSPs/ledger_engine/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to TEST_DATABASE_URL, applies migrations and empties every table.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, migrations.Up(url, slog.Default()))

	ctx := context.Background()
	pool, err := database.NewPgxPool(ctx, url, true)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE settings, payments, invoice_lines, invoices, journal_lines,
		bank_reconciliations, journal_entries, accounts CASCADE;`)
	require.NoError(t, err)
	return NewStore(pool)
}

func testAccount(number string, typ domain.AccountType) domain.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	a := domain.Account{
		AccountID:      uuid.NewString(),
		AccountNumber:  number,
		Name:           "Account " + number,
		AccountType:    typ,
		NormalBalance:  typ.DefaultNormalBalance(),
		IsActive:       true,
		CurrentBalance: decimal.Zero,
	}
	a.Stamp("tester", now)
	return a
}

func TestPgxStoreAccountsAndBalances(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cash := testAccount("1000", domain.Asset)
	require.NoError(t, s.Accounts().SaveAccount(ctx, cash))

	dup := testAccount("1000", domain.Asset)
	assert.ErrorIs(t, s.Accounts().SaveAccount(ctx, dup), apperrors.ErrDuplicate)

	_, err := s.Accounts().FindAccountByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	locked, err := uow.Accounts().FindAccountsByIDsForUpdate(ctx, []string{cash.AccountID})
	require.NoError(t, err)
	require.Contains(t, locked, cash.AccountID)
	require.NoError(t, uow.Accounts().UpdateAccountBalances(ctx, map[string]decimal.Decimal{
		cash.AccountID: decimal.RequireFromString("12.50"),
	}, "tester", time.Now().UTC()))
	require.NoError(t, uow.Commit(ctx))
	require.NoError(t, uow.Rollback(ctx))

	got, err := s.Accounts().FindAccountByID(ctx, cash.AccountID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(decimal.RequireFromString("12.50")))

	last, err := s.Accounts().LastAccountNumberWithPrefix(ctx, "1", 3)
	require.NoError(t, err)
	assert.Equal(t, "1000", last)
}

func TestPgxStoreJournalRoundTripAndRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cash := testAccount("1000", domain.Asset)
	sales := testAccount("4000", domain.Revenue)
	require.NoError(t, s.Accounts().SaveAccount(ctx, cash))
	require.NoError(t, s.Accounts().SaveAccount(ctx, sales))

	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.NewString()
	amount := decimal.RequireFromString("100.00")
	entry := domain.JournalEntry{
		JournalID:       id,
		JournalNumber:   "JE20250001",
		ReferenceNumber: "REF2025010001",
		EntryDate:       time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		EntryType:       domain.JournalGeneral,
		Status:          domain.StatusPosted,
		Amount:          amount,
		CurrencyID:      "USD",
		ExchangeRate:    decimal.NewFromInt(1),
		Lines: []domain.JournalLine{
			{LineID: uuid.NewString(), LineOrder: 1, AccountID: cash.AccountID, DebitAmount: amount, CreditAmount: decimal.Zero},
			{LineID: uuid.NewString(), LineOrder: 2, AccountID: sales.AccountID, DebitAmount: decimal.Zero, CreditAmount: amount},
		},
	}
	entry.Stamp("tester", now)

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	last, err := uow.Journals().LastJournalNumberWithPrefix(ctx, "JE2025")
	require.NoError(t, err)
	assert.Equal(t, "", last)
	require.NoError(t, uow.Journals().SaveJournal(ctx, entry))
	require.NoError(t, uow.Rollback(ctx))

	_, err = s.Journals().FindJournalByID(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, s.Journals().SaveJournal(ctx, entry))
	got, err := s.Journals().FindJournalByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, cash.AccountID, got.Lines[0].AccountID)
	assert.True(t, got.Lines[0].DebitAmount.Equal(amount))
	assert.Nil(t, got.Lines[0].ForeignDebitAmount)

	totals, err := s.Journals().SumLinesByAccount(ctx, portsrepo.LineFilter{
		Statuses: []domain.JournalStatus{domain.StatusPosted},
	})
	require.NoError(t, err)
	assert.Len(t, totals, 2)

	page, next, err := s.Journals().ListJournals(ctx, portsrepo.JournalFilter{AccountID: &sales.AccountID}, 10, nil)
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, page, 1)
	assert.Equal(t, "JE20250001", page[0].JournalNumber)

	require.NoError(t, s.Journals().DeleteJournal(ctx, id))
	n, err := s.Journals().CountLinesByAccount(ctx, cash.AccountID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPgxStoreSettingsUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Settings().GetSetting(ctx, domain.SettingBaseCurrency)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, s.Settings().UpsertSetting(ctx, domain.Setting{Key: domain.SettingBaseCurrency, Value: "USD", LastUpdatedAt: now, LastUpdatedBy: "a"}))
	require.NoError(t, s.Settings().UpsertSetting(ctx, domain.Setting{Key: domain.SettingBaseCurrency, Value: "EUR", LastUpdatedAt: now, LastUpdatedBy: "b"}))

	got, err := s.Settings().GetSetting(ctx, domain.SettingBaseCurrency)
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Value)
	assert.Equal(t, "b", got.LastUpdatedBy)
}
