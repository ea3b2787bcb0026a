package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// JournalReaderSvc defines read operations for journal entries.
type JournalReaderSvc interface {
	GetJournal(ctx context.Context, journalID string) (*domain.JournalEntry, error)
	ListJournals(ctx context.Context, filter repositories.JournalFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriterSvc drives the DRAFT → POSTED → VOID state machine.
type JournalWriterSvc interface {
	// CreateJournal persists a DRAFT or POSTED entry. A POSTED entry is validated and
	// its balances applied in the same unit of work.
	CreateJournal(ctx context.Context, entry domain.JournalEntry, actorID string) (*domain.JournalEntry, error)

	PostJournal(ctx context.Context, journalID string, actorID string) (*domain.JournalEntry, error)

	// VoidJournal reverses the balances of a POSTED entry; a DRAFT is voided without balance effect.
	VoidJournal(ctx context.Context, journalID string, actorID string) (*domain.JournalEntry, error)

	// UpdateJournal replaces header fields and, when entry.Lines is non-nil, all lines.
	UpdateJournal(ctx context.Context, entry domain.JournalEntry, actorID string) (*domain.JournalEntry, error)

	DeleteJournal(ctx context.Context, journalID string) error
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
