package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one debit or credit leg. Foreign amounts, when given, are
// converted to the base amounts with the line or entry rate.
type JournalLineRequest struct {
	AccountID           string           `json:"accountID" binding:"required"`
	Description         string           `json:"description" binding:"max=500"`
	DebitAmount         decimal.Decimal  `json:"debitAmount"`
	CreditAmount        decimal.Decimal  `json:"creditAmount"`
	ForeignDebitAmount  *decimal.Decimal `json:"foreignDebitAmount"`
	ForeignCreditAmount *decimal.Decimal `json:"foreignCreditAmount"`
	CurrencyID          *string          `json:"currencyID" binding:"omitempty,len=3"`
	ExchangeRate        *decimal.Decimal `json:"exchangeRate"`
	ContactID           *string          `json:"contactID"`
	CostCenter          *string          `json:"costCenter"`
	ProjectID           *string          `json:"projectID"`
}

// CreateJournalRequest defines the data needed to create a journal entry.
// Status defaults to DRAFT; POSTED validates and applies balances immediately.
type CreateJournalRequest struct {
	JournalNumber    string               `json:"journalNumber" binding:"max=50"`
	ReferenceNumber  string               `json:"referenceNumber" binding:"max=50"`
	EntryDate        time.Time            `json:"entryDate"`
	Description      string               `json:"description" binding:"max=1000"`
	EntryType        domain.JournalType   `json:"entryType"`
	Status           domain.JournalStatus `json:"status" binding:"omitempty,oneof=DRAFT POSTED"`
	CurrencyID       string               `json:"currencyID" binding:"omitempty,len=3"`
	ExchangeRate     *decimal.Decimal     `json:"exchangeRate"`
	SourceDocumentID *string              `json:"sourceDocumentID"`
	Lines            []JournalLineRequest `json:"lines" binding:"required,dive"`
}

// UpdateJournalRequest replaces header fields. Omitted lines keep the persisted lines.
type UpdateJournalRequest struct {
	ReferenceNumber  string               `json:"referenceNumber" binding:"max=50"`
	EntryDate        time.Time            `json:"entryDate"`
	Description      string               `json:"description" binding:"max=1000"`
	EntryType        domain.JournalType   `json:"entryType"`
	Status           domain.JournalStatus `json:"status" binding:"omitempty,oneof=DRAFT POSTED"`
	CurrencyID       string               `json:"currencyID" binding:"omitempty,len=3"`
	ExchangeRate     *decimal.Decimal     `json:"exchangeRate"`
	SourceDocumentID *string              `json:"sourceDocumentID"`
	Lines            []JournalLineRequest `json:"lines" binding:"omitempty,dive"`
}

func toDomainLines(lines []JournalLineRequest) []domain.JournalLine {
	if lines == nil {
		return nil
	}
	out := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		out[i] = domain.JournalLine{
			AccountID:           l.AccountID,
			Description:         l.Description,
			DebitAmount:         l.DebitAmount,
			CreditAmount:        l.CreditAmount,
			ForeignDebitAmount:  l.ForeignDebitAmount,
			ForeignCreditAmount: l.ForeignCreditAmount,
			CurrencyID:          l.CurrencyID,
			ExchangeRate:        l.ExchangeRate,
			ContactID:           l.ContactID,
			CostCenter:          l.CostCenter,
			ProjectID:           l.ProjectID,
		}
	}
	return out
}

func rateOrZero(rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return *rate
}

// ToDomain converts the request to an unsaved entry.
func (r CreateJournalRequest) ToDomain() domain.JournalEntry {
	lines := toDomainLines(r.Lines)
	if lines == nil {
		lines = []domain.JournalLine{}
	}
	return domain.JournalEntry{
		JournalNumber:    r.JournalNumber,
		ReferenceNumber:  r.ReferenceNumber,
		EntryDate:        r.EntryDate,
		Description:      r.Description,
		EntryType:        r.EntryType,
		Status:           r.Status,
		CurrencyID:       r.CurrencyID,
		ExchangeRate:     rateOrZero(r.ExchangeRate),
		SourceDocumentID: r.SourceDocumentID,
		Lines:            lines,
	}
}

// ToDomain converts the request to the partial entry UpdateJournal expects.
func (r UpdateJournalRequest) ToDomain(journalID string) domain.JournalEntry {
	return domain.JournalEntry{
		JournalID:        journalID,
		ReferenceNumber:  r.ReferenceNumber,
		EntryDate:        r.EntryDate,
		Description:      r.Description,
		EntryType:        r.EntryType,
		Status:           r.Status,
		CurrencyID:       r.CurrencyID,
		ExchangeRate:     rateOrZero(r.ExchangeRate),
		SourceDocumentID: r.SourceDocumentID,
		Lines:            toDomainLines(r.Lines),
	}
}

// ListJournalsParams defines query parameters for listing journals.
type ListJournalsParams struct {
	Status    *domain.JournalStatus `form:"status" binding:"omitempty,oneof=DRAFT POSTED VOID"`
	EntryType *domain.JournalType   `form:"entryType"`
	From      *time.Time            `form:"from" time_format:"2006-01-02"`
	To        *time.Time            `form:"to" time_format:"2006-01-02"`
	AccountID *string               `form:"accountID"`
	Limit     int                   `form:"limit,default=20" binding:"min=0,max=100"`
	NextToken *string               `form:"nextToken"`
}

// Filter builds the repository filter; To covers the whole day.
func (p ListJournalsParams) Filter() portsrepo.JournalFilter {
	f := portsrepo.JournalFilter{
		Status:    p.Status,
		EntryType: p.EntryType,
		From:      p.From,
		AccountID: p.AccountID,
	}
	if p.To != nil {
		eod := domain.EndOfDay(*p.To)
		f.To = &eod
	}
	return f
}

// ListJournalsResponse is one page of journal headers.
type ListJournalsResponse struct {
	Journals  []domain.JournalEntry `json:"journals"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// FromTemplateRequest instantiates a registered template as a DRAFT entry.
type FromTemplateRequest struct {
	Name      string    `json:"name" binding:"required"`
	EntryDate time.Time `json:"entryDate" binding:"required"`
}
