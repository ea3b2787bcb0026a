// Package pgsql implements the ledger store on PostgreSQL with pgx.
package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so one repository
// implementation serves autocommit reads and units of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides the query surface shared by all repositories.
type BaseRepository struct {
	db querier
	// lock is true inside a unit of work; FOR UPDATE is only meaningful there.
	lock bool
}

func (r BaseRepository) forUpdate() string {
	if r.lock {
		return " FOR UPDATE"
	}
	return ""
}

// Store is the pgx implementation of the ledger store.
type Store struct {
	Pool *pgxpool.Pool
}

var _ portsrepo.Store = (*Store)(nil)

// NewStore creates a store over an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func (s *Store) base() BaseRepository { return BaseRepository{db: s.Pool} }

// Begin starts a new database transaction
func (s *Store) Begin(ctx context.Context) (portsrepo.UnitOfWork, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return &unitOfWork{tx: tx}, nil
}

func (s *Store) Accounts() portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: s.base()}
}
func (s *Store) Journals() portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: s.base()}
}
func (s *Store) Invoices() portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository: s.base()}
}
func (s *Store) Reconciliations() portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{BaseRepository: s.base()}
}
func (s *Store) Settings() portsrepo.SettingsRepositoryFacade {
	return &PgxSettingsRepository{BaseRepository: s.base()}
}

type unitOfWork struct {
	tx pgx.Tx
}

var _ portsrepo.UnitOfWork = (*unitOfWork)(nil)

func (u *unitOfWork) base() BaseRepository { return BaseRepository{db: u.tx, lock: true} }

// Commit commits a transaction
func (u *unitOfWork) Commit(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

func (u *unitOfWork) Accounts() portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: u.base()}
}
func (u *unitOfWork) Journals() portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: u.base()}
}
func (u *unitOfWork) Invoices() portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository: u.base()}
}
func (u *unitOfWork) Reconciliations() portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{BaseRepository: u.base()}
}
func (u *unitOfWork) Settings() portsrepo.SettingsRepositoryFacade {
	return &PgxSettingsRepository{BaseRepository: u.base()}
}

// mapError turns driver errors into the application's error kinds.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s (%s)", apperrors.ErrDuplicate, what, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s references a missing row (%s)", apperrors.ErrNotFound, what, pgErr.ConstraintName)
		}
	}
	return apperrors.NewAppError(500, "database error on "+what, err)
}

// expectRow reports ErrNotFound when an update or delete touched nothing.
func expectRow(tag pgconn.CommandTag, what string) error {
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(what)
	}
	return nil
}
