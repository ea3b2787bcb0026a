package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReconciliationStatus string

const (
	ReconciliationDraft     ReconciliationStatus = "DRAFT"
	ReconciliationCompleted ReconciliationStatus = "COMPLETED"
	ReconciliationCancelled ReconciliationStatus = "CANCELLED"
)

// IsActive reports whether the reconciliation still claims its lines.
func (s ReconciliationStatus) IsActive() bool {
	return s == ReconciliationDraft || s == ReconciliationCompleted
}

// BankReconciliation matches cleared ledger lines of a bank account against a statement.
type BankReconciliation struct {
	ReconciliationID string               `json:"reconciliationID"`
	AccountID        string               `json:"accountID"`
	StatementDate    time.Time            `json:"statementDate"`
	OpeningBalance   decimal.Decimal      `json:"openingBalance"`
	ClosingBalance   decimal.Decimal      `json:"closingBalance"`
	Status           ReconciliationStatus `json:"status"`
	LineIDs          []string             `json:"lineIDs"`
	CompletedBy      *string              `json:"completedBy,omitempty"`
	CompletedAt      *time.Time           `json:"completedAt,omitempty"`
	AuditFields
}

type ReconciliationSpec struct {
	AccountID      string          `json:"accountID" validate:"required"`
	StatementDate  time.Time       `json:"statementDate" validate:"required"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}
