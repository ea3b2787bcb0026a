package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

type ReconciliationSvcFacade interface {
	CreateReconciliation(ctx context.Context, spec domain.ReconciliationSpec, actorID string) (*domain.BankReconciliation, error)
	GetReconciliation(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error)

	// SaveReconciliation makes lineIDs the exact set of cleared lines of a DRAFT reconciliation.
	SaveReconciliation(ctx context.Context, reconciliationID string, lineIDs []string, actorID string) (*domain.BankReconciliation, error)

	CompleteReconciliation(ctx context.Context, reconciliationID string, actorID string) (*domain.BankReconciliation, error)
	CancelReconciliation(ctx context.Context, reconciliationID string, actorID string) (*domain.BankReconciliation, error)
}
