package repositories

import (
	"context"
)

// RepositorySet exposes every repository of the ledger store.
type RepositorySet interface {
	Accounts() AccountRepositoryFacade
	Journals() JournalRepositoryFacade
	Invoices() InvoiceRepositoryFacade
	Reconciliations() ReconciliationRepositoryFacade
	Settings() SettingsRepositoryFacade
}

// UnitOfWork is one atomic transaction against the ledger store. Every repository
// obtained from it reads and writes inside that transaction.
type UnitOfWork interface {
	RepositorySet

	// Commit makes every write of the unit visible.
	Commit(ctx context.Context) error

	// Rollback discards every write. It is a no-op after Commit.
	Rollback(ctx context.Context) error
}

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// Begin starts a new unit of work.
	Begin(ctx context.Context) (UnitOfWork, error)
}

// Store is the persistence port of the engine. Its own repositories run in
// autocommit mode and serve reads.
type Store interface {
	TransactionManager
	RepositorySet
}
