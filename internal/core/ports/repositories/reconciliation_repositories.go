package repositories

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ReconciliationRepositoryFacade persists reconciliation headers. The claimed lines are
// tracked on the journal lines themselves (see LineWriter).
type ReconciliationRepositoryFacade interface {
	// FindReconciliationByID returns the header; LineIDs is left empty.
	FindReconciliationByID(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error)
	FindReconciliationByIDForUpdate(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error)
	SaveReconciliation(ctx context.Context, rec domain.BankReconciliation) error
	UpdateReconciliation(ctx context.Context, rec domain.BankReconciliation) error
}
