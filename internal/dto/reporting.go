package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// TrialBalanceParams defines query parameters for the trial balance.
type TrialBalanceParams struct {
	AsOf       *time.Time `form:"asOf" time_format:"2006-01-02"`
	PostedOnly bool       `form:"postedOnly"`
}

type AgingParams struct {
	Kind      domain.InvoiceKind `form:"kind" binding:"required,oneof=SALES PURCHASE"`
	ContactID string             `form:"contactID"`
	Today     *time.Time         `form:"today" time_format:"2006-01-02"`
}

// PeriodParams bounds the P&L; From defaults to the fiscal year start.
type PeriodParams struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}
