package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

type CreateReconciliationRequest struct {
	AccountID      string          `json:"accountID" binding:"required"`
	StatementDate  time.Time       `json:"statementDate" binding:"required"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

func (r CreateReconciliationRequest) ToSpec() domain.ReconciliationSpec {
	return domain.ReconciliationSpec{
		AccountID:      r.AccountID,
		StatementDate:  r.StatementDate,
		OpeningBalance: r.OpeningBalance,
		ClosingBalance: r.ClosingBalance,
	}
}

// SaveReconciliationRequest is the complete set of lines cleared by a reconciliation.
type SaveReconciliationRequest struct {
	LineIDs []string `json:"lineIDs" binding:"required"`
}
