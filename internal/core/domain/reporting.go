package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceOptions narrows the lines a trial balance scans.
type TrialBalanceOptions struct {
	AsOf       *time.Time
	PostedOnly bool
}

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Net           decimal.Decimal `json:"net"`
}

// TrialBalance is a report-time assertion of ledger health; IsBalanced is exact.
type TrialBalance struct {
	AsOf        *time.Time        `json:"asOf,omitempty"`
	PostedOnly  bool              `json:"postedOnly"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	IsBalanced  bool              `json:"isBalanced"`
}

// AccountAmount represents an account with its net amount for financial reports
type AccountAmount struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	Name          string          `json:"name"`
	NetAmount     decimal.Decimal `json:"netAmount"`
}

// PAndLReport represents a profit and loss report
type PAndLReport struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Revenue   []AccountAmount `json:"revenue"`
	Expenses  []AccountAmount `json:"expenses"`
	NetProfit decimal.Decimal `json:"netProfit"`
}

// BalanceSheetReport represents a balance sheet report
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	RetainedEarnings decimal.Decimal `json:"retainedEarnings"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}

// AgingBucket names a day window of the aging report.
type AgingBucket string

const (
	Bucket0To30  AgingBucket = "0-30"
	Bucket31To60 AgingBucket = "31-60"
	Bucket61To90 AgingBucket = "61-90"
	BucketOver90 AgingBucket = "90+"
)

// BucketForAge maps an age in days onto its window. Negative ages fall into 0-30.
func BucketForAge(days int) AgingBucket {
	switch {
	case days <= 30:
		return Bucket0To30
	case days <= 60:
		return Bucket31To60
	case days <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

type AgingBuckets struct {
	Days0To30  decimal.Decimal `json:"days0To30"`
	Days31To60 decimal.Decimal `json:"days31To60"`
	Days61To90 decimal.Decimal `json:"days61To90"`
	Over90     decimal.Decimal `json:"over90"`
}

// Add accumulates amount into the bucket's column.
func (b *AgingBuckets) Add(bucket AgingBucket, amount decimal.Decimal) {
	switch bucket {
	case Bucket0To30:
		b.Days0To30 = b.Days0To30.Add(amount)
	case Bucket31To60:
		b.Days31To60 = b.Days31To60.Add(amount)
	case Bucket61To90:
		b.Days61To90 = b.Days61To90.Add(amount)
	case BucketOver90:
		b.Over90 = b.Over90.Add(amount)
	}
}

// Total sums all columns.
func (b AgingBuckets) Total() decimal.Decimal {
	return b.Days0To30.Add(b.Days31To60).Add(b.Days61To90).Add(b.Over90)
}

// AgingItem is the unpaid remainder of one invoice.
type AgingItem struct {
	InvoiceID         string          `json:"invoiceID"`
	InvoiceNumber     string          `json:"invoiceNumber"`
	InvoiceDate       time.Time       `json:"invoiceDate"`
	DueDate           time.Time       `json:"dueDate"`
	OriginalAmount    decimal.Decimal `json:"originalAmount"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	AgeDays           int             `json:"ageDays"`
	Bucket            AgingBucket     `json:"bucket"`
	IsOverdue         bool            `json:"isOverdue"`
}

type AgingReport struct {
	Kind              InvoiceKind     `json:"kind"`
	ContactID         string          `json:"contactID"`
	AsOf              time.Time       `json:"asOf"`
	Items             []AgingItem     `json:"items"`
	Buckets           AgingBuckets    `json:"buckets"`
	TotalOutstanding  decimal.Decimal `json:"totalOutstanding"`
	OverdueAmount     decimal.Decimal `json:"overdueAmount"`
	UnappliedPayments decimal.Decimal `json:"unappliedPayments"`
}

// DSOResult is the mean days between a receivable debit and the credits that settle it.
type DSOResult struct {
	ContactID string          `json:"contactID"`
	Days      decimal.Decimal `json:"days"`
	Samples   int             `json:"samples"`
}
