package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// JournalFilter narrows ListJournals. Nil fields do not filter.
type JournalFilter struct {
	Status    *domain.JournalStatus
	EntryType *domain.JournalType
	From      *time.Time
	To        *time.Time
	AccountID *string
}

// LineFilter narrows line scans. Dates compare against the entry date, both ends inclusive.
// An empty Statuses matches every status.
type LineFilter struct {
	AccountIDs []string
	ContactID  *string
	Statuses   []domain.JournalStatus
	From       *time.Time
	To         *time.Time
}

// JournalReader defines read operations for journal entries
type JournalReader interface {
	// FindJournalByID returns the header with its lines in line order.
	FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// FindJournalByIDForUpdate is FindJournalByID with a row lock on the header.
	FindJournalByIDForUpdate(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// ListJournals pages headers (without lines) newest first. The returned token is nil on the last page.
	ListJournals(ctx context.Context, filter JournalFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	JournalNumberExists(ctx context.Context, number string) (bool, error)

	// LastJournalNumberWithPrefix returns the lexically greatest journal number starting with prefix.
	LastJournalNumberWithPrefix(ctx context.Context, prefix string) (string, error)

	// LastReferenceNumberWithPrefix returns the lexically greatest reference number starting with prefix.
	LastReferenceNumberWithPrefix(ctx context.Context, prefix string) (string, error)
}

// JournalWriter defines write operations for journal entries
type JournalWriter interface {
	// SaveJournal inserts the header and all of its lines.
	SaveJournal(ctx context.Context, entry domain.JournalEntry) error

	// UpdateJournalHeader overwrites every header column.
	UpdateJournalHeader(ctx context.Context, entry domain.JournalEntry) error

	// ReplaceJournalLines deletes the entry's lines and inserts the given ones.
	ReplaceJournalLines(ctx context.Context, journalID string, lines []domain.JournalLine) error

	// DeleteJournal deletes the header and its lines.
	DeleteJournal(ctx context.Context, journalID string) error
}

// LineReader defines line-level queries used by the registry and the reports.
type LineReader interface {
	CountLinesByAccount(ctx context.Context, accountID string) (int, error)

	// ListLedgerLines returns matching lines joined with their header, ordered by entry date then journal number.
	ListLedgerLines(ctx context.Context, filter LineFilter) ([]domain.LedgerLine, error)

	// SumLinesByAccount aggregates debit and credit per account.
	SumLinesByAccount(ctx context.Context, filter LineFilter) ([]domain.AccountLineTotals, error)

	// FindLinesByIDs returns lines joined with their header. Missing ids are absent from the map.
	FindLinesByIDs(ctx context.Context, lineIDs []string) (map[string]domain.LedgerLine, error)

	// ListLinesByReconciliation returns the line ids claimed by a reconciliation.
	ListLinesByReconciliation(ctx context.Context, reconciliationID string) ([]string, error)
}

// LineWriter changes reconciliation bookkeeping on lines.
type LineWriter interface {
	// SetLinesReconciliation sets the reconciliation link and cleared flag of each line.
	SetLinesReconciliation(ctx context.Context, lineIDs []string, reconciliationID *string, cleared bool) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	LineReader
	LineWriter
}
