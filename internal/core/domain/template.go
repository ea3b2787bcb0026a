package domain

import "github.com/shopspring/decimal"

// JournalTemplate is a named, reusable set of entry lines.
type JournalTemplate struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Lines       []LineTemplate `json:"lines"`
}

// LineTemplate carries exactly one non-zero side.
type LineTemplate struct {
	AccountID   string          `json:"accountID"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Reference   string          `json:"reference"`
}
