package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type reconciliationService struct {
	BaseService
	store portsrepo.Store
}

type ReconciliationServiceOption func(*reconciliationService)

func WithReconciliationClock(now func() time.Time) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		s.clock = now
	}
}

func NewReconciliationService(store portsrepo.Store, opts ...ReconciliationServiceOption) portssvc.ReconciliationSvcFacade {
	svc := &reconciliationService{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) CreateReconciliation(ctx context.Context, spec domain.ReconciliationSpec, actorID string) (*domain.BankReconciliation, error) {
	if err := validateStruct(spec); err != nil {
		s.LogWarn(ctx, err, "Invalid reconciliation spec")
		return nil, err
	}
	now := s.Now()

	rec, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.BankReconciliation, error) {
		account, err := uow.Accounts().FindAccountByID(ctx, spec.AccountID)
		if err != nil {
			return nil, err
		}
		if account.AccountType != domain.Asset {
			return nil, fmt.Errorf("%w: only asset accounts can be reconciled, %s is %s", apperrors.ErrValidation, account.AccountNumber, account.AccountType)
		}

		rec := domain.BankReconciliation{
			ReconciliationID: uuid.NewString(),
			AccountID:        spec.AccountID,
			StatementDate:    spec.StatementDate.UTC(),
			OpeningBalance:   spec.OpeningBalance,
			ClosingBalance:   spec.ClosingBalance,
			Status:           domain.ReconciliationDraft,
			LineIDs:          []string{},
		}
		rec.AuditFields.Stamp(actorID, now)
		if err := uow.Reconciliations().SaveReconciliation(ctx, rec); err != nil {
			return nil, err
		}
		return &rec, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create reconciliation", slog.String("account_id", spec.AccountID))
		return nil, err
	}
	s.LogInfo(ctx, "Reconciliation created", slog.String("reconciliation_id", rec.ReconciliationID))
	return rec, nil
}

func (s *reconciliationService) GetReconciliation(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error) {
	rec, err := s.store.Reconciliations().FindReconciliationByID(ctx, reconciliationID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to get reconciliation", slog.String("reconciliation_id", reconciliationID))
		return nil, err
	}
	ids, err := s.store.Journals().ListLinesByReconciliation(ctx, reconciliationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list reconciled lines", slog.String("reconciliation_id", reconciliationID))
		return nil, err
	}
	rec.LineIDs = ids
	return rec, nil
}

// SaveReconciliation makes lineIDs the exact cleared set: dropped lines are uncleared and
// new lines cleared in the same unit of work as the header update.
func (s *reconciliationService) SaveReconciliation(ctx context.Context, reconciliationID string, lineIDs []string, actorID string) (*domain.BankReconciliation, error) {
	now := s.Now()
	wanted := dedupe(lineIDs)

	rec, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.BankReconciliation, error) {
		rec, err := uow.Reconciliations().FindReconciliationByIDForUpdate(ctx, reconciliationID)
		if err != nil {
			return nil, err
		}
		if rec.Status != domain.ReconciliationDraft {
			return nil, fmt.Errorf("%w: reconciliation is %s", apperrors.ErrInvalidState, rec.Status)
		}

		journals := uow.Journals()
		lines, err := journals.FindLinesByIDs(ctx, wanted)
		if err != nil {
			return nil, err
		}
		for _, id := range wanted {
			line, ok := lines[id]
			switch {
			case !ok:
				return nil, fmt.Errorf("%w: journal line %s", apperrors.ErrNotFound, id)
			case line.AccountID != rec.AccountID:
				return nil, fmt.Errorf("%w: line %s is not on the reconciled account", apperrors.ErrValidation, id)
			case line.Status != domain.StatusPosted:
				return nil, fmt.Errorf("%w: line %s belongs to a %s journal", apperrors.ErrInvalidState, id, line.Status)
			case line.ReconciliationID != nil && *line.ReconciliationID != reconciliationID:
				return nil, fmt.Errorf("%w: line %s already belongs to reconciliation %s", apperrors.ErrInvalidState, id, *line.ReconciliationID)
			}
		}

		current, err := journals.ListLinesByReconciliation(ctx, reconciliationID)
		if err != nil {
			return nil, err
		}
		keep := make(map[string]bool, len(wanted))
		for _, id := range wanted {
			keep[id] = true
		}
		var removed []string
		for _, id := range current {
			if !keep[id] {
				removed = append(removed, id)
			}
		}
		if len(removed) > 0 {
			if err := journals.SetLinesReconciliation(ctx, removed, nil, false); err != nil {
				return nil, err
			}
		}
		if len(wanted) > 0 {
			if err := journals.SetLinesReconciliation(ctx, wanted, &reconciliationID, true); err != nil {
				return nil, err
			}
		}

		rec.AuditFields.Touch(actorID, now)
		if err := uow.Reconciliations().UpdateReconciliation(ctx, *rec); err != nil {
			return nil, err
		}
		rec.LineIDs = wanted
		return rec, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to save reconciliation", slog.String("reconciliation_id", reconciliationID))
		return nil, err
	}
	s.LogInfo(ctx, "Reconciliation saved", slog.String("reconciliation_id", reconciliationID), slog.Int("lines", len(rec.LineIDs)))
	return rec, nil
}

// CompleteReconciliation requires opening balance + Σ cleared (debit − credit) == closing balance.
func (s *reconciliationService) CompleteReconciliation(ctx context.Context, reconciliationID string, actorID string) (*domain.BankReconciliation, error) {
	now := s.Now()
	rec, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.BankReconciliation, error) {
		rec, err := uow.Reconciliations().FindReconciliationByIDForUpdate(ctx, reconciliationID)
		if err != nil {
			return nil, err
		}
		if rec.Status != domain.ReconciliationDraft {
			return nil, fmt.Errorf("%w: reconciliation is %s", apperrors.ErrInvalidState, rec.Status)
		}

		ids, err := uow.Journals().ListLinesByReconciliation(ctx, reconciliationID)
		if err != nil {
			return nil, err
		}
		lines, err := uow.Journals().FindLinesByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		cleared := decimal.Zero
		for _, l := range lines {
			cleared = cleared.Add(l.Net())
		}
		if expected := rec.OpeningBalance.Add(cleared); !expected.Equal(rec.ClosingBalance) {
			return nil, fmt.Errorf("%w: opening %s plus cleared %s is %s, statement closes at %s",
				apperrors.ErrUnbalancedEntry, rec.OpeningBalance, cleared, expected, rec.ClosingBalance)
		}

		rec.Status = domain.ReconciliationCompleted
		rec.CompletedBy = &actorID
		rec.CompletedAt = &now
		rec.AuditFields.Touch(actorID, now)
		if err := uow.Reconciliations().UpdateReconciliation(ctx, *rec); err != nil {
			return nil, err
		}
		rec.LineIDs = ids
		return rec, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to complete reconciliation", slog.String("reconciliation_id", reconciliationID))
		return nil, err
	}
	s.LogInfo(ctx, "Reconciliation completed", slog.String("reconciliation_id", reconciliationID))
	return rec, nil
}

// CancelReconciliation releases every claimed line.
func (s *reconciliationService) CancelReconciliation(ctx context.Context, reconciliationID string, actorID string) (*domain.BankReconciliation, error) {
	now := s.Now()
	rec, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.BankReconciliation, error) {
		rec, err := uow.Reconciliations().FindReconciliationByIDForUpdate(ctx, reconciliationID)
		if err != nil {
			return nil, err
		}
		if !rec.Status.IsActive() {
			return nil, fmt.Errorf("%w: reconciliation is already %s", apperrors.ErrInvalidState, rec.Status)
		}

		ids, err := uow.Journals().ListLinesByReconciliation(ctx, reconciliationID)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			if err := uow.Journals().SetLinesReconciliation(ctx, ids, nil, false); err != nil {
				return nil, err
			}
		}

		rec.Status = domain.ReconciliationCancelled
		rec.AuditFields.Touch(actorID, now)
		if err := uow.Reconciliations().UpdateReconciliation(ctx, *rec); err != nil {
			return nil, err
		}
		rec.LineIDs = []string{}
		return rec, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to cancel reconciliation", slog.String("reconciliation_id", reconciliationID))
		return nil, err
	}
	s.LogInfo(ctx, "Reconciliation cancelled", slog.String("reconciliation_id", reconciliationID))
	return rec, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
