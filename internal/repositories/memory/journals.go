package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

type journalRepository struct {
	db access
}

var _ portsrepo.JournalRepositoryFacade = (*journalRepository)(nil)

// linesOf returns the lines of one entry in line order.
func (st *state) linesOf(journalID string) []domain.JournalLine {
	var out []domain.JournalLine
	for _, l := range st.lines {
		if l.JournalID == journalID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineOrder < out[j].LineOrder })
	return out
}

func (r *journalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	var found *domain.JournalEntry
	err := r.db.read(ctx, func(st *state) error {
		h, ok := st.journals[journalID]
		if !ok {
			return apperrors.NewNotFoundError("journal " + journalID)
		}
		h.Lines = st.linesOf(journalID)
		found = &h
		return nil
	})
	return found, err
}

func (r *journalRepository) FindJournalByIDForUpdate(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	return r.FindJournalByID(ctx, journalID)
}

func (r *journalRepository) ListJournals(ctx context.Context, filter portsrepo.JournalFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	limit = pagination.ClampLimit(limit)
	var all []domain.JournalEntry
	err := r.db.read(ctx, func(st *state) error {
		var touched map[string]bool
		if filter.AccountID != nil {
			touched = make(map[string]bool)
			for _, l := range st.lines {
				if l.AccountID == *filter.AccountID {
					touched[l.JournalID] = true
				}
			}
		}
		for id, h := range st.journals {
			if filter.Status != nil && h.Status != *filter.Status {
				continue
			}
			if filter.EntryType != nil && h.EntryType != *filter.EntryType {
				continue
			}
			if filter.From != nil && h.EntryDate.Before(*filter.From) {
				continue
			}
			if filter.To != nil && h.EntryDate.After(*filter.To) {
				continue
			}
			if touched != nil && !touched[id] {
				continue
			}
			all = append(all, h)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// Newest first; journal numbers are unique so the order is total.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].EntryDate.Equal(all[j].EntryDate) {
			return all[i].EntryDate.After(all[j].EntryDate)
		}
		return all[i].JournalNumber > all[j].JournalNumber
	})

	start := 0
	if nextToken != nil && *nextToken != "" {
		date, number, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		start = len(all)
		for i, h := range all {
			if h.EntryDate.Before(date) || (h.EntryDate.Equal(date) && h.JournalNumber < number) {
				start = i
				break
			}
		}
	}

	end := start + limit
	if end >= len(all) {
		return all[start:], nil, nil
	}
	page := all[start:end]
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.EntryDate, last.JournalNumber)
	return page, &token, nil
}

func (r *journalRepository) JournalNumberExists(ctx context.Context, number string) (bool, error) {
	exists := false
	err := r.db.read(ctx, func(st *state) error {
		for _, h := range st.journals {
			if h.JournalNumber == number {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}

func (r *journalRepository) lastWithPrefix(ctx context.Context, prefix string, field func(domain.JournalEntry) string) (string, error) {
	last := ""
	err := r.db.read(ctx, func(st *state) error {
		for _, h := range st.journals {
			v := field(h)
			if strings.HasPrefix(v, prefix) && v > last {
				last = v
			}
		}
		return nil
	})
	return last, err
}

func (r *journalRepository) LastJournalNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	return r.lastWithPrefix(ctx, prefix, func(h domain.JournalEntry) string { return h.JournalNumber })
}

func (r *journalRepository) LastReferenceNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	return r.lastWithPrefix(ctx, prefix, func(h domain.JournalEntry) string { return h.ReferenceNumber })
}

func (r *journalRepository) SaveJournal(ctx context.Context, entry domain.JournalEntry) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.journals[entry.JournalID]; ok {
			return fmt.Errorf("%w: journal %s", apperrors.ErrDuplicate, entry.JournalID)
		}
		for _, h := range st.journals {
			if h.JournalNumber == entry.JournalNumber {
				return fmt.Errorf("%w: journal number %s", apperrors.ErrDuplicate, entry.JournalNumber)
			}
		}
		if err := st.insertLines(entry.JournalID, entry.Lines); err != nil {
			return err
		}
		entry.Lines = nil
		st.journals[entry.JournalID] = entry
		return nil
	})
}

func (st *state) insertLines(journalID string, lines []domain.JournalLine) error {
	for _, l := range lines {
		if _, ok := st.lines[l.LineID]; ok {
			return fmt.Errorf("%w: journal line %s", apperrors.ErrDuplicate, l.LineID)
		}
		if _, ok := st.accounts[l.AccountID]; !ok {
			return apperrors.NewNotFoundError("account " + l.AccountID)
		}
	}
	for _, l := range lines {
		l.JournalID = journalID
		st.lines[l.LineID] = l
	}
	return nil
}

func (r *journalRepository) UpdateJournalHeader(ctx context.Context, entry domain.JournalEntry) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.journals[entry.JournalID]; !ok {
			return apperrors.NewNotFoundError("journal " + entry.JournalID)
		}
		entry.Lines = nil
		st.journals[entry.JournalID] = entry
		return nil
	})
}

func (r *journalRepository) ReplaceJournalLines(ctx context.Context, journalID string, lines []domain.JournalLine) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.journals[journalID]; !ok {
			return apperrors.NewNotFoundError("journal " + journalID)
		}
		for id, l := range st.lines {
			if l.JournalID == journalID {
				delete(st.lines, id)
			}
		}
		return st.insertLines(journalID, lines)
	})
}

func (r *journalRepository) DeleteJournal(ctx context.Context, journalID string) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.journals[journalID]; !ok {
			return apperrors.NewNotFoundError("journal " + journalID)
		}
		for id, l := range st.lines {
			if l.JournalID == journalID {
				delete(st.lines, id)
			}
		}
		delete(st.journals, journalID)
		return nil
	})
}

func (r *journalRepository) CountLinesByAccount(ctx context.Context, accountID string) (int, error) {
	n := 0
	err := r.db.read(ctx, func(st *state) error {
		for _, l := range st.lines {
			if l.AccountID == accountID {
				n++
			}
		}
		return nil
	})
	return n, err
}

// scan calls fn for every line whose header satisfies filter.
func (st *state) scan(filter portsrepo.LineFilter, fn func(domain.LedgerLine)) {
	accounts := toSet(filter.AccountIDs)
	statuses := make(map[domain.JournalStatus]bool, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses[s] = true
	}
	for _, l := range st.lines {
		if accounts != nil && !accounts[l.AccountID] {
			continue
		}
		if filter.ContactID != nil && (l.ContactID == nil || *l.ContactID != *filter.ContactID) {
			continue
		}
		h := st.journals[l.JournalID]
		if len(statuses) > 0 && !statuses[h.Status] {
			continue
		}
		if filter.From != nil && h.EntryDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && h.EntryDate.After(*filter.To) {
			continue
		}
		fn(ledgerLine(h, l))
	}
}

func ledgerLine(h domain.JournalEntry, l domain.JournalLine) domain.LedgerLine {
	return domain.LedgerLine{
		JournalLine:   l,
		JournalNumber: h.JournalNumber,
		EntryDate:     h.EntryDate,
		Status:        h.Status,
	}
}

func toSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (r *journalRepository) ListLedgerLines(ctx context.Context, filter portsrepo.LineFilter) ([]domain.LedgerLine, error) {
	var out []domain.LedgerLine
	err := r.db.read(ctx, func(st *state) error {
		st.scan(filter, func(l domain.LedgerLine) { out = append(out, l) })
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.JournalNumber != b.JournalNumber {
			return a.JournalNumber < b.JournalNumber
		}
		return a.LineOrder < b.LineOrder
	})
	return out, err
}

func (r *journalRepository) SumLinesByAccount(ctx context.Context, filter portsrepo.LineFilter) ([]domain.AccountLineTotals, error) {
	sums := make(map[string]*domain.AccountLineTotals)
	err := r.db.read(ctx, func(st *state) error {
		st.scan(filter, func(l domain.LedgerLine) {
			t, ok := sums[l.AccountID]
			if !ok {
				t = &domain.AccountLineTotals{AccountID: l.AccountID}
				sums[l.AccountID] = t
			}
			t.Debit = t.Debit.Add(l.DebitAmount)
			t.Credit = t.Credit.Add(l.CreditAmount)
		})
		return nil
	})
	out := make([]domain.AccountLineTotals, 0, len(sums))
	for _, t := range sums {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, err
}

func (r *journalRepository) FindLinesByIDs(ctx context.Context, lineIDs []string) (map[string]domain.LedgerLine, error) {
	out := make(map[string]domain.LedgerLine, len(lineIDs))
	err := r.db.read(ctx, func(st *state) error {
		for _, id := range lineIDs {
			l, ok := st.lines[id]
			if !ok {
				continue
			}
			out[id] = ledgerLine(st.journals[l.JournalID], l)
		}
		return nil
	})
	return out, err
}

func (r *journalRepository) ListLinesByReconciliation(ctx context.Context, reconciliationID string) ([]string, error) {
	var out []string
	err := r.db.read(ctx, func(st *state) error {
		for id, l := range st.lines {
			if l.ReconciliationID != nil && *l.ReconciliationID == reconciliationID {
				out = append(out, id)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func (r *journalRepository) SetLinesReconciliation(ctx context.Context, lineIDs []string, reconciliationID *string, cleared bool) error {
	return r.db.write(ctx, func(st *state) error {
		for _, id := range lineIDs {
			if _, ok := st.lines[id]; !ok {
				return apperrors.NewNotFoundError("journal line " + id)
			}
		}
		for _, id := range lineIDs {
			l := st.lines[id]
			l.ReconciliationID = reconciliationID
			l.IsCleared = cleared
			st.lines[id] = l
		}
		return nil
	})
}
