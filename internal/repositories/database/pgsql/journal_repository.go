package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

type PgxJournalRepository struct {
	BaseRepository
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const journalColumns = `journal_id, journal_number, reference_number, entry_date, description, entry_type,
	status, amount, currency_id, exchange_rate, source_document_id, posted_by, posted_at, voided_by,
	voided_at, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `l.line_id, l.journal_id, l.line_order, l.account_id, l.description, l.debit_amount,
	l.credit_amount, l.foreign_debit_amount, l.foreign_credit_amount, l.currency_id, l.exchange_rate,
	l.contact_id, l.cost_center, l.project_id, l.reconciliation_id, l.is_cleared`

func scanJournal(row pgx.Row) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(
		&e.JournalID,
		&e.JournalNumber,
		&e.ReferenceNumber,
		&e.EntryDate,
		&e.Description,
		&e.EntryType,
		&e.Status,
		&e.Amount,
		&e.CurrencyID,
		&e.ExchangeRate,
		&e.SourceDocumentID,
		&e.PostedBy,
		&e.PostedAt,
		&e.VoidedBy,
		&e.VoidedAt,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	e.EntryDate = e.EntryDate.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.LastUpdatedAt = e.LastUpdatedAt.UTC()
	return e, err
}

func lineDest(l *domain.JournalLine) []any {
	return []any{
		&l.LineID,
		&l.JournalID,
		&l.LineOrder,
		&l.AccountID,
		&l.Description,
		&l.DebitAmount,
		&l.CreditAmount,
		&l.ForeignDebitAmount,
		&l.ForeignCreditAmount,
		&l.CurrencyID,
		&l.ExchangeRate,
		&l.ContactID,
		&l.CostCenter,
		&l.ProjectID,
		&l.ReconciliationID,
		&l.IsCleared,
	}
}

func (r *PgxJournalRepository) findJournal(ctx context.Context, journalID, suffix string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE journal_id = $1` + suffix + `;`
	entry, err := scanJournal(r.db.QueryRow(ctx, query, journalID))
	if err != nil {
		return nil, mapError(err, "journal "+journalID)
	}

	rows, err := r.db.Query(ctx, `SELECT `+lineColumns+` FROM journal_lines l WHERE l.journal_id = $1 ORDER BY l.line_order;`, journalID)
	if err != nil {
		return nil, mapError(err, "lines of journal "+journalID)
	}
	entry.Lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.JournalLine, error) {
		var l domain.JournalLine
		err := row.Scan(lineDest(&l)...)
		return l, err
	})
	if err != nil {
		return nil, mapError(err, "lines of journal "+journalID)
	}
	return &entry, nil
}

func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	return r.findJournal(ctx, journalID, "")
}

func (r *PgxJournalRepository) FindJournalByIDForUpdate(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	return r.findJournal(ctx, journalID, r.forUpdate())
}

// where accumulates SQL conditions with numbered placeholders.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// ListJournals uses keyset pagination on (entry_date, journal_number), newest first.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, filter portsrepo.JournalFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	limit = pagination.ClampLimit(limit)
	w := &where{}
	if filter.Status != nil {
		w.add("status = ?", *filter.Status)
	}
	if filter.EntryType != nil {
		w.add("entry_type = ?", *filter.EntryType)
	}
	if filter.From != nil {
		w.add("entry_date >= ?", *filter.From)
	}
	if filter.To != nil {
		w.add("entry_date <= ?", *filter.To)
	}
	if filter.AccountID != nil {
		w.add("EXISTS (SELECT 1 FROM journal_lines l WHERE l.journal_id = journal_entries.journal_id AND l.account_id = ?)", *filter.AccountID)
	}
	if nextToken != nil && *nextToken != "" {
		date, number, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		w.add("(entry_date, journal_number) < (?, ?)", date, number)
	}

	// Fetch one extra row to know whether another page exists.
	query := `SELECT ` + journalColumns + ` FROM journal_entries` + w.String() +
		fmt.Sprintf(` ORDER BY entry_date DESC, journal_number DESC LIMIT %d;`, limit+1)
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, nil, mapError(err, "journals")
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.JournalEntry, error) {
		return scanJournal(row)
	})
	if err != nil {
		return nil, nil, mapError(err, "journals")
	}

	if len(entries) <= limit {
		return entries, nil, nil
	}
	entries = entries[:limit]
	last := entries[limit-1]
	token := pagination.EncodeToken(last.EntryDate, last.JournalNumber)
	return entries, &token, nil
}

func (r *PgxJournalRepository) JournalNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE journal_number = $1);`, number).Scan(&exists)
	if err != nil {
		return false, mapError(err, "journal number "+number)
	}
	return exists, nil
}

// lastWithPrefix serializes numbering per prefix with a transaction-scoped advisory lock;
// the unique index on journal_number remains the final guard.
func (r *PgxJournalRepository) lastWithPrefix(ctx context.Context, column, prefix string) (string, error) {
	if r.lock {
		if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, column+":"+prefix); err != nil {
			return "", mapError(err, "numbering lock "+prefix)
		}
	}
	query := fmt.Sprintf(`SELECT MAX(%[1]s) FROM journal_entries WHERE left(%[1]s, length($1)) = $1;`, column)
	var last *string
	if err := r.db.QueryRow(ctx, query, prefix).Scan(&last); err != nil {
		return "", mapError(err, "numbers with prefix "+prefix)
	}
	if last == nil {
		return "", nil
	}
	return *last, nil
}

func (r *PgxJournalRepository) LastJournalNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	return r.lastWithPrefix(ctx, "journal_number", prefix)
}

func (r *PgxJournalRepository) LastReferenceNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	return r.lastWithPrefix(ctx, "reference_number", prefix)
}

// SaveJournal inserts the header and its lines.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, entry domain.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := r.db.Exec(ctx, query, journalArgs(entry)...)
	if err != nil {
		return mapError(err, "journal "+entry.JournalNumber)
	}
	return r.insertLines(ctx, entry.JournalID, entry.Lines)
}

func journalArgs(e domain.JournalEntry) []any {
	return []any{
		e.JournalID,
		e.JournalNumber,
		e.ReferenceNumber,
		e.EntryDate,
		e.Description,
		e.EntryType,
		e.Status,
		e.Amount,
		e.CurrencyID,
		e.ExchangeRate,
		e.SourceDocumentID,
		e.PostedBy,
		e.PostedAt,
		e.VoidedBy,
		e.VoidedAt,
		e.CreatedAt,
		e.CreatedBy,
		e.LastUpdatedAt,
		e.LastUpdatedBy,
	}
}

func (r *PgxJournalRepository) insertLines(ctx context.Context, journalID string, lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO journal_lines (line_id, journal_id, line_order, account_id, description, debit_amount,
			credit_amount, foreign_debit_amount, foreign_credit_amount, currency_id, exchange_rate,
			contact_id, cost_center, project_id, reconciliation_id, is_cleared)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query,
			l.LineID,
			journalID,
			l.LineOrder,
			l.AccountID,
			l.Description,
			l.DebitAmount,
			l.CreditAmount,
			l.ForeignDebitAmount,
			l.ForeignCreditAmount,
			l.CurrencyID,
			l.ExchangeRate,
			l.ContactID,
			l.CostCenter,
			l.ProjectID,
			l.ReconciliationID,
			l.IsCleared,
		)
	}
	// Close reports the first failing statement of the batch.
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "lines of journal "+journalID)
	}
	return nil
}

func (r *PgxJournalRepository) UpdateJournalHeader(ctx context.Context, entry domain.JournalEntry) error {
	query := `
		UPDATE journal_entries
		SET journal_number = $2, reference_number = $3, entry_date = $4, description = $5, entry_type = $6,
		    status = $7, amount = $8, currency_id = $9, exchange_rate = $10, source_document_id = $11,
		    posted_by = $12, posted_at = $13, voided_by = $14, voided_at = $15,
		    created_at = $16, created_by = $17, last_updated_at = $18, last_updated_by = $19
		WHERE journal_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, journalArgs(entry)...)
	if err != nil {
		return mapError(err, "journal "+entry.JournalID)
	}
	return expectRow(tag, "journal "+entry.JournalID)
}

func (r *PgxJournalRepository) ReplaceJournalLines(ctx context.Context, journalID string, lines []domain.JournalLine) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM journal_lines WHERE journal_id = $1;`, journalID); err != nil {
		return mapError(err, "lines of journal "+journalID)
	}
	return r.insertLines(ctx, journalID, lines)
}

// DeleteJournal relies on ON DELETE CASCADE for the lines.
func (r *PgxJournalRepository) DeleteJournal(ctx context.Context, journalID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM journal_entries WHERE journal_id = $1;`, journalID)
	if err != nil {
		return mapError(err, "journal "+journalID)
	}
	return expectRow(tag, "journal "+journalID)
}

func (r *PgxJournalRepository) CountLinesByAccount(ctx context.Context, accountID string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_lines WHERE account_id = $1;`, accountID).Scan(&n); err != nil {
		return 0, mapError(err, "lines of account "+accountID)
	}
	return n, nil
}

func lineWhere(filter portsrepo.LineFilter) *where {
	w := &where{}
	if len(filter.AccountIDs) > 0 {
		w.add("l.account_id = ANY(?)", filter.AccountIDs)
	}
	if filter.ContactID != nil {
		w.add("l.contact_id = ?", *filter.ContactID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		w.add("j.status = ANY(?)", statuses)
	}
	if filter.From != nil {
		w.add("j.entry_date >= ?", *filter.From)
	}
	if filter.To != nil {
		w.add("j.entry_date <= ?", *filter.To)
	}
	return w
}

func scanLedgerLine(row pgx.Row) (domain.LedgerLine, error) {
	var ll domain.LedgerLine
	dest := append(lineDest(&ll.JournalLine), &ll.JournalNumber, &ll.EntryDate, &ll.Status)
	err := row.Scan(dest...)
	ll.EntryDate = ll.EntryDate.UTC()
	return ll, err
}

const ledgerSelect = `SELECT ` + lineColumns + `, j.journal_number, j.entry_date, j.status
	FROM journal_lines l JOIN journal_entries j ON j.journal_id = l.journal_id`

func (r *PgxJournalRepository) ListLedgerLines(ctx context.Context, filter portsrepo.LineFilter) ([]domain.LedgerLine, error) {
	w := lineWhere(filter)
	query := ledgerSelect + w.String() + ` ORDER BY j.entry_date, j.journal_number, l.line_order;`
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "ledger lines")
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LedgerLine, error) {
		return scanLedgerLine(row)
	})
	if err != nil {
		return nil, mapError(err, "ledger lines")
	}
	return lines, nil
}

func (r *PgxJournalRepository) SumLinesByAccount(ctx context.Context, filter portsrepo.LineFilter) ([]domain.AccountLineTotals, error) {
	w := lineWhere(filter)
	query := `SELECT l.account_id, COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
		FROM journal_lines l JOIN journal_entries j ON j.journal_id = l.journal_id` +
		w.String() + ` GROUP BY l.account_id ORDER BY l.account_id;`
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "line totals")
	}
	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AccountLineTotals, error) {
		var t domain.AccountLineTotals
		err := row.Scan(&t.AccountID, &t.Debit, &t.Credit)
		return t, err
	})
	if err != nil {
		return nil, mapError(err, "line totals")
	}
	return totals, nil
}

func (r *PgxJournalRepository) FindLinesByIDs(ctx context.Context, lineIDs []string) (map[string]domain.LedgerLine, error) {
	out := make(map[string]domain.LedgerLine, len(lineIDs))
	if len(lineIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, ledgerSelect+` WHERE l.line_id = ANY($1);`, lineIDs)
	if err != nil {
		return nil, mapError(err, "lines by ids")
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LedgerLine, error) {
		return scanLedgerLine(row)
	})
	if err != nil {
		return nil, mapError(err, "lines by ids")
	}
	for _, l := range lines {
		out[l.LineID] = l
	}
	return out, nil
}

func (r *PgxJournalRepository) ListLinesByReconciliation(ctx context.Context, reconciliationID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT line_id FROM journal_lines WHERE reconciliation_id = $1 ORDER BY line_id;`, reconciliationID)
	if err != nil {
		return nil, mapError(err, "lines of reconciliation "+reconciliationID)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapError(err, "lines of reconciliation "+reconciliationID)
	}
	return ids, nil
}

func (r *PgxJournalRepository) SetLinesReconciliation(ctx context.Context, lineIDs []string, reconciliationID *string, cleared bool) error {
	if len(lineIDs) == 0 {
		return nil
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE journal_lines SET reconciliation_id = $1, is_cleared = $2 WHERE line_id = ANY($3);`,
		reconciliationID, cleared, lineIDs)
	if err != nil {
		return mapError(err, "reconciliation of lines")
	}
	if int(tag.RowsAffected()) != len(dedupe(lineIDs)) {
		return apperrors.NewNotFoundError("one or more journal lines")
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
