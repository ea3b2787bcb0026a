package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceKind distinguishes customer invoices from vendor bills.
type InvoiceKind string

const (
	InvoiceSales    InvoiceKind = "SALES"
	InvoicePurchase InvoiceKind = "PURCHASE"
)

func (k InvoiceKind) IsValid() bool {
	return k == InvoiceSales || k == InvoicePurchase
}

// Invoice is a sales invoice or a purchase bill. Its status follows the journal states.
type Invoice struct {
	InvoiceID     string          `json:"invoiceID"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Kind          InvoiceKind     `json:"kind"`
	ContactID     string          `json:"contactID"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	DueDate       time.Time       `json:"dueDate"`
	CurrencyID    string          `json:"currencyID"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        JournalStatus   `json:"status"`
	JournalID     *string         `json:"journalID,omitempty"`
	Lines         []InvoiceLine   `json:"lines"`
	AuditFields
}

// InvoiceLine is one revenue (sales) or expense/asset (purchase) line.
type InvoiceLine struct {
	LineID      string          `json:"lineID"`
	InvoiceID   string          `json:"invoiceID"`
	LineOrder   int             `json:"lineOrder"`
	AccountID   string          `json:"accountID"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceSpec is the input for creating a draft invoice.
type InvoiceSpec struct {
	InvoiceNumber string            `json:"invoiceNumber" validate:"required,max=50"`
	Kind          InvoiceKind       `json:"kind" validate:"required,oneof=SALES PURCHASE"`
	ContactID     string            `json:"contactID" validate:"required"`
	InvoiceDate   time.Time         `json:"invoiceDate" validate:"required"`
	DueDate       time.Time         `json:"dueDate" validate:"required"`
	CurrencyID    string            `json:"currencyID" validate:"omitempty,len=3"`
	ExchangeRate  *decimal.Decimal  `json:"exchangeRate,omitempty"`
	Lines         []InvoiceLineSpec `json:"lines" validate:"required,min=1,dive"`
}

type InvoiceLineSpec struct {
	AccountID   string          `json:"accountID" validate:"required"`
	Description string          `json:"description" validate:"max=500"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentKind is RECEIVED for customer payments and MADE for vendor payments.
type PaymentKind string

const (
	PaymentReceived PaymentKind = "RECEIVED"
	PaymentMade     PaymentKind = "MADE"
)

// InvoiceKind returns the kind of invoice the payment settles.
func (k PaymentKind) InvoiceKind() InvoiceKind {
	if k == PaymentMade {
		return InvoicePurchase
	}
	return InvoiceSales
}

// Payment settles open invoices of a contact.
type Payment struct {
	PaymentID     string          `json:"paymentID"`
	Kind          PaymentKind     `json:"kind"`
	ContactID     string          `json:"contactID"`
	PaymentDate   time.Time       `json:"paymentDate"`
	Amount        decimal.Decimal `json:"amount"`
	BankAccountID string          `json:"bankAccountID"`
	Reference     string          `json:"reference"`
	JournalID     *string         `json:"journalID,omitempty"`
	AuditFields
}

type PaymentSpec struct {
	Kind          PaymentKind     `json:"kind" validate:"required,oneof=RECEIVED MADE"`
	ContactID     string          `json:"contactID" validate:"required"`
	PaymentDate   time.Time       `json:"paymentDate" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	BankAccountID string          `json:"bankAccountID" validate:"required"`
	Reference     string          `json:"reference" validate:"max=100"`
}
