package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/SscSPs/ledger_engine/internal/utils/numbering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// postingEngine holds the balance primitives shared by every writer of journal entries.
// All methods run inside a caller-owned unit of work.
type postingEngine struct{}

// prepareEntry assigns ids, normalizes dates to UTC, converts foreign amounts and
// recomputes the entry amount. Numbers are assigned later by insertEntry.
func (postingEngine) prepareEntry(entry *domain.JournalEntry, baseCurrency, actorID string, now time.Time) {
	entry.JournalID = uuid.NewString()
	if entry.EntryDate.IsZero() {
		entry.EntryDate = now
	}
	entry.EntryDate = entry.EntryDate.UTC()
	if entry.EntryType == "" {
		entry.EntryType = domain.JournalGeneral
	}
	if entry.CurrencyID == "" {
		entry.CurrencyID = baseCurrency
	}
	if entry.ExchangeRate.IsZero() {
		entry.ExchangeRate = decimal.NewFromInt(1)
	}
	entry.PostedBy, entry.PostedAt, entry.VoidedBy, entry.VoidedAt = nil, nil, nil, nil
	entry.Lines = prepareLines(entry.JournalID, entry.Lines)
	accounting.ApplyConversion(entry)
	entry.AuditFields.Stamp(actorID, now)
}

func prepareLines(journalID string, lines []domain.JournalLine) []domain.JournalLine {
	prepared := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		l.LineID = uuid.NewString()
		l.JournalID = journalID
		l.LineOrder = i + 1
		l.ReconciliationID = nil
		l.IsCleared = false
		prepared[i] = l
	}
	return prepared
}

// insertEntry numbers and persists a prepared entry. A POSTED entry is validated and
// its deltas applied before the insert; both land in the same unit of work.
func (p postingEngine) insertEntry(ctx context.Context, uow portsrepo.UnitOfWork, entry *domain.JournalEntry, actorID string, now time.Time) error {
	journals := uow.Journals()

	if entry.JournalNumber == "" {
		prefix := numbering.JournalPrefix(now)
		last, err := journals.LastJournalNumberWithPrefix(ctx, prefix)
		if err != nil {
			return fmt.Errorf("failed to read journal numbers: %w", err)
		}
		entry.JournalNumber = numbering.Next(prefix, last)
	} else {
		exists, err := journals.JournalNumberExists(ctx, entry.JournalNumber)
		if err != nil {
			return fmt.Errorf("failed to check journal number: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: journal number %s", apperrors.ErrDuplicate, entry.JournalNumber)
		}
	}
	if entry.ReferenceNumber == "" {
		prefix := numbering.ReferencePrefix(now)
		last, err := journals.LastReferenceNumberWithPrefix(ctx, prefix)
		if err != nil {
			return fmt.Errorf("failed to read reference numbers: %w", err)
		}
		entry.ReferenceNumber = numbering.Next(prefix, last)
	}

	if entry.Status == domain.StatusPosted {
		if err := p.applyEntry(ctx, uow, *entry, actorID, now); err != nil {
			return err
		}
		entry.PostedBy = &actorID
		entry.PostedAt = &now
	}

	if err := journals.SaveJournal(ctx, *entry); err != nil {
		return err
	}
	return nil
}

// applyEntry validates an entry for posting and adds (debit − credit) of every line
// to its account's balance.
func (p postingEngine) applyEntry(ctx context.Context, uow portsrepo.UnitOfWork, entry domain.JournalEntry, actorID string, now time.Time) error {
	if err := accounting.ValidateJournalBalance(entry.Lines); err != nil {
		return err
	}
	return p.applyDelta(ctx, uow, entry, 1, true, actorID, now)
}

// reverseEntry subtracts what applyEntry added. Inactive accounts are still reversed.
func (p postingEngine) reverseEntry(ctx context.Context, uow portsrepo.UnitOfWork, entry domain.JournalEntry, actorID string, now time.Time) error {
	return p.applyDelta(ctx, uow, entry, -1, false, actorID, now)
}

func (postingEngine) applyDelta(ctx context.Context, uow portsrepo.UnitOfWork, entry domain.JournalEntry, sign int64, requireActive bool, actorID string, now time.Time) error {
	ids := entry.AccountIDs()
	locked, err := uow.Accounts().FindAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	for _, id := range ids {
		acc, ok := locked[id]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if requireActive && !acc.IsActive {
			return fmt.Errorf("%w: account %s (%s) is inactive", apperrors.ErrValidation, acc.AccountNumber, acc.Name)
		}
	}

	deltas := accounting.BalanceDeltas(entry.Lines, sign)
	for id, d := range deltas {
		if d.IsZero() {
			delete(deltas, id)
		}
	}
	if len(deltas) == 0 {
		return nil
	}
	if err := uow.Accounts().UpdateAccountBalances(ctx, deltas, actorID, now); err != nil {
		return fmt.Errorf("failed to update account balances: %w", err)
	}
	return nil
}

// postedBalance is Σdebit − Σcredit over posted lines of one account, up to asOf inclusive.
func postedBalance(ctx context.Context, lines portsrepo.LineReader, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	filter := portsrepo.LineFilter{
		AccountIDs: []string{accountID},
		Statuses:   []domain.JournalStatus{domain.StatusPosted},
	}
	if asOf != nil {
		eod := domain.EndOfDay(*asOf)
		filter.To = &eod
	}
	totals, err := lines.SumLinesByAccount(ctx, filter)
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, t := range totals {
		if t.AccountID == accountID {
			balance = balance.Add(t.Debit.Sub(t.Credit))
		}
	}
	return balance, nil
}

// controlAccount finds the AR or AP account by subtype and name, then by its well-known number.
func controlAccount(ctx context.Context, accounts portsrepo.AccountReader, kind domain.InvoiceKind) (*domain.Account, error) {
	subtype, name, number := domain.SubtypeAccountsReceivable, "Accounts Receivable", "1100"
	if kind == domain.InvoicePurchase {
		subtype, name, number = domain.SubtypeAccountsPayable, "Accounts Payable", "2000"
	}

	acc, err := accounts.FindAccountBySubtypeAndName(ctx, subtype, name)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	acc, err = accounts.FindAccountByNumber(ctx, number)
	if err == nil {
		return acc, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: no %q account with subtype %s and no account numbered %s",
			apperrors.ErrMissingControlAccount, name, subtype, number)
	}
	return nil, err
}
