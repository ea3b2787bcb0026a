package pgsql

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

type PgxReconciliationRepository struct {
	BaseRepository
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

const reconciliationColumns = `reconciliation_id, account_id, statement_date, opening_balance, closing_balance,
	status, completed_by, completed_at, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxReconciliationRepository) find(ctx context.Context, id, suffix string) (*domain.BankReconciliation, error) {
	var rec domain.BankReconciliation
	err := r.db.QueryRow(ctx, `SELECT `+reconciliationColumns+` FROM bank_reconciliations WHERE reconciliation_id = $1`+suffix+`;`, id).Scan(
		&rec.ReconciliationID,
		&rec.AccountID,
		&rec.StatementDate,
		&rec.OpeningBalance,
		&rec.ClosingBalance,
		&rec.Status,
		&rec.CompletedBy,
		&rec.CompletedAt,
		&rec.CreatedAt,
		&rec.CreatedBy,
		&rec.LastUpdatedAt,
		&rec.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapError(err, "reconciliation "+id)
	}
	rec.StatementDate = rec.StatementDate.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.LastUpdatedAt = rec.LastUpdatedAt.UTC()
	return &rec, nil
}

func (r *PgxReconciliationRepository) FindReconciliationByID(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error) {
	return r.find(ctx, reconciliationID, "")
}

func (r *PgxReconciliationRepository) FindReconciliationByIDForUpdate(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error) {
	return r.find(ctx, reconciliationID, r.forUpdate())
}

func (r *PgxReconciliationRepository) SaveReconciliation(ctx context.Context, rec domain.BankReconciliation) error {
	query := `
		INSERT INTO bank_reconciliations (` + reconciliationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.Exec(ctx, query,
		rec.ReconciliationID,
		rec.AccountID,
		rec.StatementDate,
		rec.OpeningBalance,
		rec.ClosingBalance,
		rec.Status,
		rec.CompletedBy,
		rec.CompletedAt,
		rec.CreatedAt,
		rec.CreatedBy,
		rec.LastUpdatedAt,
		rec.LastUpdatedBy,
	)
	return mapError(err, "reconciliation "+rec.ReconciliationID)
}

func (r *PgxReconciliationRepository) UpdateReconciliation(ctx context.Context, rec domain.BankReconciliation) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bank_reconciliations
		SET statement_date = $2, opening_balance = $3, closing_balance = $4, status = $5,
		    completed_by = $6, completed_at = $7, last_updated_at = $8, last_updated_by = $9
		WHERE reconciliation_id = $1;`,
		rec.ReconciliationID,
		rec.StatementDate,
		rec.OpeningBalance,
		rec.ClosingBalance,
		rec.Status,
		rec.CompletedBy,
		rec.CompletedAt,
		rec.LastUpdatedAt,
		rec.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "reconciliation "+rec.ReconciliationID)
	}
	return expectRow(tag, "reconciliation "+rec.ReconciliationID)
}
