package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

// journalService drives the DRAFT → POSTED → VOID state machine.
type journalService struct {
	BaseService
	engine   postingEngine
	store    portsrepo.Store
	settings portssvc.SettingsSvcFacade
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithJournalClock replaces the wall clock, mainly for tests.
func WithJournalClock(now func() time.Time) JournalServiceOption {
	return func(s *journalService) {
		s.clock = now
	}
}

// NewJournalService creates a new JournalService. settings supplies the base
// currency of entries created without one.
func NewJournalService(store portsrepo.Store, settings portssvc.SettingsSvcFacade, opts ...JournalServiceOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		store:    store,
		settings: settings,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func (s *journalService) baseCurrency(ctx context.Context) (string, error) {
	if s.settings == nil {
		return domain.DefaultBaseCurrency, nil
	}
	return s.settings.BaseCurrency(ctx)
}

func (s *journalService) CreateJournal(ctx context.Context, entry domain.JournalEntry, actorID string) (*domain.JournalEntry, error) {
	if entry.Status == "" {
		entry.Status = domain.StatusDraft
	}
	if entry.Status != domain.StatusDraft && entry.Status != domain.StatusPosted {
		err := fmt.Errorf("%w: initial status must be DRAFT or POSTED, got %q", apperrors.ErrValidation, entry.Status)
		s.LogWarn(ctx, err, "Rejected journal creation")
		return nil, err
	}

	// Resolve settings before the unit of work begins.
	base, err := s.baseCurrency(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve base currency")
		return nil, err
	}

	now := s.Now()
	s.engine.prepareEntry(&entry, base, actorID, now)

	created, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.JournalEntry, error) {
		if err := s.engine.insertEntry(ctx, uow, &entry, actorID, now); err != nil {
			return nil, err
		}
		return &entry, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create journal", slog.String("status", string(entry.Status)))
		return nil, err
	}

	s.LogInfo(ctx, "Journal created",
		slog.String("journal_id", created.JournalID),
		slog.String("journal_number", created.JournalNumber),
		slog.String("status", string(created.Status)),
		slog.String("amount", created.Amount.String()))
	return created, nil
}

func (s *journalService) PostJournal(ctx context.Context, journalID string, actorID string) (*domain.JournalEntry, error) {
	now := s.Now()
	posted, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.JournalEntry, error) {
		entry, err := uow.Journals().FindJournalByIDForUpdate(ctx, journalID)
		if err != nil {
			return nil, err
		}
		if entry.Status != domain.StatusDraft {
			return nil, fmt.Errorf("%w: journal %s is %s and cannot be posted", apperrors.ErrInvalidState, entry.JournalNumber, entry.Status)
		}

		if err := s.engine.applyEntry(ctx, uow, *entry, actorID, now); err != nil {
			return nil, err
		}

		entry.Status = domain.StatusPosted
		entry.PostedBy = &actorID
		entry.PostedAt = &now
		entry.AuditFields.Touch(actorID, now)
		if err := uow.Journals().UpdateJournalHeader(ctx, *entry); err != nil {
			return nil, err
		}
		return entry, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to post journal", slog.String("journal_id", journalID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal posted", slog.String("journal_id", journalID), slog.String("journal_number", posted.JournalNumber))
	return posted, nil
}

func (s *journalService) VoidJournal(ctx context.Context, journalID string, actorID string) (*domain.JournalEntry, error) {
	now := s.Now()
	voided, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.JournalEntry, error) {
		entry, err := uow.Journals().FindJournalByIDForUpdate(ctx, journalID)
		if err != nil {
			return nil, err
		}
		if entry.Status == domain.StatusVoid {
			return nil, fmt.Errorf("%w: journal %s is already void", apperrors.ErrInvalidState, entry.JournalNumber)
		}
		if err := ensureUnreconciled(*entry); err != nil {
			return nil, err
		}

		// A DRAFT never touched balances, so only POSTED is reversed.
		if entry.Status == domain.StatusPosted {
			if err := s.engine.reverseEntry(ctx, uow, *entry, actorID, now); err != nil {
				return nil, err
			}
		}

		entry.Status = domain.StatusVoid
		entry.VoidedBy = &actorID
		entry.VoidedAt = &now
		entry.AuditFields.Touch(actorID, now)
		if err := uow.Journals().UpdateJournalHeader(ctx, *entry); err != nil {
			return nil, err
		}
		return entry, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to void journal", slog.String("journal_id", journalID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal voided", slog.String("journal_id", journalID), slog.String("journal_number", voided.JournalNumber))
	return voided, nil
}

// UpdateJournal reverses the persisted effect of a POSTED entry, replaces the header and
// optionally the lines, and reapplies when the result is POSTED. Zero-valued header fields
// of entry keep their persisted values; a nil Lines keeps the persisted lines.
func (s *journalService) UpdateJournal(ctx context.Context, entry domain.JournalEntry, actorID string) (*domain.JournalEntry, error) {
	now := s.Now()
	updated, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.JournalEntry, error) {
		journals := uow.Journals()
		existing, err := journals.FindJournalByIDForUpdate(ctx, entry.JournalID)
		if err != nil {
			return nil, err
		}
		if existing.Status == domain.StatusVoid {
			return nil, fmt.Errorf("%w: journal %s is void", apperrors.ErrInvalidState, existing.JournalNumber)
		}

		target := entry.Status
		if target == "" {
			target = existing.Status
		}
		switch {
		case target == domain.StatusVoid:
			return nil, fmt.Errorf("%w: use void to cancel journal %s", apperrors.ErrInvalidState, existing.JournalNumber)
		case !target.IsValid():
			return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, target)
		case existing.Status == domain.StatusPosted && target == domain.StatusDraft:
			return nil, fmt.Errorf("%w: posted journal %s cannot return to draft", apperrors.ErrInvalidState, existing.JournalNumber)
		}
		if entry.JournalNumber != "" && entry.JournalNumber != existing.JournalNumber {
			return nil, fmt.Errorf("%w: journal number", apperrors.ErrImmutableField)
		}
		next := *existing
		if !entry.EntryDate.IsZero() {
			next.EntryDate = entry.EntryDate.UTC()
		}
		if entry.ReferenceNumber != "" {
			next.ReferenceNumber = entry.ReferenceNumber
		}
		if entry.Description != "" {
			next.Description = entry.Description
		}
		if entry.EntryType != "" {
			next.EntryType = entry.EntryType
		}
		if entry.CurrencyID != "" {
			next.CurrencyID = entry.CurrencyID
		}
		if !entry.ExchangeRate.IsZero() {
			next.ExchangeRate = entry.ExchangeRate
		}
		if entry.SourceDocumentID != nil {
			next.SourceDocumentID = entry.SourceDocumentID
		}
		if entry.Lines != nil {
			next.Lines = prepareLines(next.JournalID, entry.Lines)
		} else {
			next.Lines = append([]domain.JournalLine(nil), existing.Lines...)
		}
		accounting.ApplyConversion(&next)

		// A rate change alters converted lines even when no new lines were supplied.
		replaceLines := entry.Lines != nil || linesChanged(existing.Lines, next.Lines)
		if replaceLines {
			if err := ensureUnreconciled(*existing); err != nil {
				return nil, err
			}
		}

		if existing.Status == domain.StatusPosted {
			if err := s.engine.reverseEntry(ctx, uow, *existing, actorID, now); err != nil {
				return nil, err
			}
		}

		if target == domain.StatusPosted {
			if err := s.engine.applyEntry(ctx, uow, next, actorID, now); err != nil {
				return nil, err
			}
			if existing.Status == domain.StatusDraft {
				next.PostedBy = &actorID
				next.PostedAt = &now
			}
		}
		next.Status = target
		next.AuditFields.Touch(actorID, now)

		if err := journals.UpdateJournalHeader(ctx, next); err != nil {
			return nil, err
		}
		if replaceLines {
			if err := journals.ReplaceJournalLines(ctx, next.JournalID, next.Lines); err != nil {
				return nil, err
			}
		}
		return &next, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to update journal", slog.String("journal_id", entry.JournalID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal updated",
		slog.String("journal_id", updated.JournalID),
		slog.String("status", string(updated.Status)),
		slog.String("amount", updated.Amount.String()))
	return updated, nil
}

func (s *journalService) DeleteJournal(ctx context.Context, journalID string) error {
	_, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (struct{}, error) {
		entry, err := uow.Journals().FindJournalByIDForUpdate(ctx, journalID)
		if err != nil {
			return struct{}{}, err
		}
		if entry.Status != domain.StatusDraft {
			return struct{}{}, fmt.Errorf("%w: only DRAFT journals can be deleted, %s is %s", apperrors.ErrInvalidState, entry.JournalNumber, entry.Status)
		}
		return struct{}{}, uow.Journals().DeleteJournal(ctx, journalID)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to delete journal", slog.String("journal_id", journalID))
		return err
	}
	s.LogInfo(ctx, "Journal deleted", slog.String("journal_id", journalID))
	return nil
}

func (s *journalService) GetJournal(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	entry, err := s.store.Journals().FindJournalByID(ctx, journalID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to get journal", slog.String("journal_id", journalID))
		return nil, err
	}
	s.LogDebug(ctx, "Journal retrieved", slog.String("journal_id", journalID))
	return entry, nil
}

func (s *journalService) ListJournals(ctx context.Context, filter portsrepo.JournalFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if nextToken != nil && *nextToken != "" {
		if _, _, err := pagination.DecodeToken(*nextToken); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}
	entries, next, err := s.store.Journals().ListJournals(ctx, filter, pagination.ClampLimit(limit), nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals")
		return nil, nil, err
	}
	s.LogDebug(ctx, "Journals listed", slog.Int("count", len(entries)))
	return entries, next, nil
}

// ensureUnreconciled rejects changes to entries whose lines are claimed by a reconciliation.
func ensureUnreconciled(entry domain.JournalEntry) error {
	for _, l := range entry.Lines {
		if l.ReconciliationID != nil {
			return fmt.Errorf("%w: line %d of journal %s is reconciled", apperrors.ErrInvalidState, l.LineOrder, entry.JournalNumber)
		}
	}
	return nil
}

func linesChanged(before, after []domain.JournalLine) bool {
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		if !before[i].DebitAmount.Equal(after[i].DebitAmount) || !before[i].CreditAmount.Equal(after[i].CreditAmount) {
			return true
		}
	}
	return false
}
