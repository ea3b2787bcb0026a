package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NumberPrefix is the leading digit used for generated account numbers.
func (t AccountType) NumberPrefix() string {
	switch t {
	case Asset:
		return "1"
	case Liability:
		return "2"
	case Equity:
		return "3"
	case Revenue:
		return "4"
	case Expense:
		return "5"
	}
	return ""
}

// DefaultNormalBalance returns DEBIT for assets and expenses, CREDIT otherwise.
func (t AccountType) DefaultNormalBalance() NormalBalance {
	if t == Asset || t == Expense {
		return NormalDebit
	}
	return NormalCredit
}

// NormalBalance is the side on which an account naturally increases.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

func (n NormalBalance) IsValid() bool {
	return n == NormalDebit || n == NormalCredit
}

// Well-known subtypes used to locate control accounts.
const (
	SubtypeAccountsReceivable = "ACCOUNTS_RECEIVABLE"
	SubtypeAccountsPayable    = "ACCOUNTS_PAYABLE"
	SubtypeBank               = "BANK"
)

// Account represents a ledger account in the chart of accounts.
type Account struct {
	AccountID       string          `json:"accountID"`
	AccountNumber   string          `json:"accountNumber"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	Subtype         string          `json:"subtype"`
	NormalBalance   NormalBalance   `json:"normalBalance"`
	ParentAccountID *string         `json:"parentAccountID,omitempty"`
	Description     string          `json:"description"`
	IsActive        bool            `json:"isActive"`
	IsSystem        bool            `json:"isSystem"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"` // cache; posted lines are the source of truth
	AuditFields
}

// AccountSpec is the caller-supplied shape for creating or updating an account.
type AccountSpec struct {
	AccountNumber   string        `json:"accountNumber" validate:"omitempty,numeric,max=20"`
	Name            string        `json:"name" validate:"required,max=200"`
	AccountType     AccountType   `json:"accountType" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Subtype         string        `json:"subtype" validate:"max=100"`
	NormalBalance   NormalBalance `json:"normalBalance" validate:"omitempty,oneof=DEBIT CREDIT"`
	ParentAccountID *string       `json:"parentAccountID,omitempty"`
	Description     string        `json:"description" validate:"max=1000"`
	IsSystem        bool          `json:"isSystem"`
}

// AccountNode is one vertex of a hierarchy view derived from the flat account list.
type AccountNode struct {
	Account  Account        `json:"account"`
	Children []*AccountNode `json:"children"`
}

// BalanceDrift reports an account whose cached balance disagreed with its posted lines.
type BalanceDrift struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	Cached        decimal.Decimal `json:"cached"`
	Actual        decimal.Decimal `json:"actual"`
}
