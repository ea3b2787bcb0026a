package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

type reconciliationRepository struct {
	db access
}

var _ portsrepo.ReconciliationRepositoryFacade = (*reconciliationRepository)(nil)

func (r *reconciliationRepository) FindReconciliationByID(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error) {
	var found *domain.BankReconciliation
	err := r.db.read(ctx, func(st *state) error {
		rec, ok := st.reconciliations[reconciliationID]
		if !ok {
			return apperrors.NewNotFoundError("reconciliation " + reconciliationID)
		}
		rec.LineIDs = nil
		found = &rec
		return nil
	})
	return found, err
}

func (r *reconciliationRepository) FindReconciliationByIDForUpdate(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error) {
	return r.FindReconciliationByID(ctx, reconciliationID)
}

func (r *reconciliationRepository) SaveReconciliation(ctx context.Context, rec domain.BankReconciliation) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.reconciliations[rec.ReconciliationID]; ok {
			return fmt.Errorf("%w: reconciliation %s", apperrors.ErrDuplicate, rec.ReconciliationID)
		}
		if _, ok := st.accounts[rec.AccountID]; !ok {
			return apperrors.NewNotFoundError("account " + rec.AccountID)
		}
		rec.LineIDs = nil
		st.reconciliations[rec.ReconciliationID] = rec
		return nil
	})
}

func (r *reconciliationRepository) UpdateReconciliation(ctx context.Context, rec domain.BankReconciliation) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.reconciliations[rec.ReconciliationID]; !ok {
			return apperrors.NewNotFoundError("reconciliation " + rec.ReconciliationID)
		}
		rec.LineIDs = nil
		st.reconciliations[rec.ReconciliationID] = rec
		return nil
	})
}
