package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingSvcFacade builds read-only reports by scanning journal lines.
type ReportingSvcFacade interface {
	TrialBalance(ctx context.Context, opts domain.TrialBalanceOptions) (*domain.TrialBalance, error)

	// AccountBalance is Σdebit − Σcredit over the account's posted lines up to asOf inclusive.
	AccountBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error)

	// AgingReport allocates payments to invoices oldest first and buckets the remainders.
	AgingReport(ctx context.Context, kind domain.InvoiceKind, contactID string, today time.Time) (*domain.AgingReport, error)

	// AgingSummary runs AgingReport for every contact with posted invoices of kind.
	AgingSummary(ctx context.Context, kind domain.InvoiceKind, today time.Time) ([]domain.AgingReport, error)

	DaysSalesOutstanding(ctx context.Context, contactID string) (*domain.DSOResult, error)

	// ProfitAndLoss defaults from to the start of the fiscal year containing to.
	ProfitAndLoss(ctx context.Context, from *time.Time, to time.Time) (*domain.PAndLReport, error)

	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)
}
