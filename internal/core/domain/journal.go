package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	StatusDraft  JournalStatus = "DRAFT"
	StatusPosted JournalStatus = "POSTED"
	StatusVoid   JournalStatus = "VOID"
)

func (s JournalStatus) IsValid() bool {
	return s == StatusDraft || s == StatusPosted || s == StatusVoid
}

// JournalType records what produced an entry.
type JournalType string

const (
	JournalGeneral         JournalType = "GENERAL"
	JournalSalesInvoice    JournalType = "SALES_INVOICE"
	JournalPurchaseInvoice JournalType = "PURCHASE_INVOICE"
	JournalPaymentReceived JournalType = "PAYMENT_RECEIVED"
	JournalPaymentMade     JournalType = "PAYMENT_MADE"
	JournalTypeTemplate    JournalType = "TEMPLATE"
)

// JournalEntry is a single financial event composed of balanced lines.
type JournalEntry struct {
	JournalID        string          `json:"journalID"`
	JournalNumber    string          `json:"journalNumber"`
	ReferenceNumber  string          `json:"referenceNumber"`
	EntryDate        time.Time       `json:"entryDate"`
	Description      string          `json:"description"`
	EntryType        JournalType     `json:"entryType"`
	Status           JournalStatus   `json:"status"`
	Amount           decimal.Decimal `json:"amount"` // sum of line debits after conversion
	CurrencyID       string          `json:"currencyID"`
	ExchangeRate     decimal.Decimal `json:"exchangeRate"`
	SourceDocumentID *string         `json:"sourceDocumentID,omitempty"`
	PostedBy         *string         `json:"postedBy,omitempty"`
	PostedAt         *time.Time      `json:"postedAt,omitempty"`
	VoidedBy         *string         `json:"voidedBy,omitempty"`
	VoidedAt         *time.Time      `json:"voidedAt,omitempty"`
	Lines            []JournalLine   `json:"lines"`
	AuditFields
}

// TotalDebit sums the base debit amounts of all lines.
func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.DebitAmount)
	}
	return total
}

// TotalCredit sums the base credit amounts of all lines.
func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.CreditAmount)
	}
	return total
}

// IsBalanced is exact: no tolerance is applied.
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebit().Equal(e.TotalCredit())
}

// AccountIDs returns the distinct accounts referenced by the lines, sorted.
func (e *JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	ids := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	sort.Strings(ids)
	return ids
}

// JournalLine is one debit or credit leg of an entry.
type JournalLine struct {
	LineID              string           `json:"lineID"`
	JournalID           string           `json:"journalID"`
	LineOrder           int              `json:"lineOrder"`
	AccountID           string           `json:"accountID"`
	Description         string           `json:"description"`
	DebitAmount         decimal.Decimal  `json:"debitAmount"`
	CreditAmount        decimal.Decimal  `json:"creditAmount"`
	ForeignDebitAmount  *decimal.Decimal `json:"foreignDebitAmount,omitempty"`
	ForeignCreditAmount *decimal.Decimal `json:"foreignCreditAmount,omitempty"`
	CurrencyID          *string          `json:"currencyID,omitempty"`
	ExchangeRate        *decimal.Decimal `json:"exchangeRate,omitempty"`
	ContactID           *string          `json:"contactID,omitempty"`
	CostCenter          *string          `json:"costCenter,omitempty"`
	ProjectID           *string          `json:"projectID,omitempty"`
	ReconciliationID    *string          `json:"reconciliationID,omitempty"`
	IsCleared           bool             `json:"isCleared"`
}

// Net is debit minus credit.
func (l JournalLine) Net() decimal.Decimal {
	return l.DebitAmount.Sub(l.CreditAmount)
}

// LedgerLine is a journal line joined with the header fields reports need.
type LedgerLine struct {
	JournalLine
	JournalNumber string        `json:"journalNumber"`
	EntryDate     time.Time     `json:"entryDate"`
	Status        JournalStatus `json:"status"`
}

// AccountLineTotals aggregates the lines of one account.
type AccountLineTotals struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}
