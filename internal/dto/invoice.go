package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type InvoiceLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Description string          `json:"description" binding:"max=500"`
	Amount      decimal.Decimal `json:"amount"`
}

// CreateInvoiceRequest defines a draft sales invoice or purchase bill.
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoiceNumber" binding:"required,max=50"`
	Kind          domain.InvoiceKind   `json:"kind" binding:"required,oneof=SALES PURCHASE"`
	ContactID     string               `json:"contactID" binding:"required"`
	InvoiceDate   time.Time            `json:"invoiceDate" binding:"required"`
	DueDate       time.Time            `json:"dueDate" binding:"required"`
	CurrencyID    string               `json:"currencyID" binding:"omitempty,len=3"`
	ExchangeRate  *decimal.Decimal     `json:"exchangeRate"`
	Lines         []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (r CreateInvoiceRequest) ToSpec() domain.InvoiceSpec {
	lines := make([]domain.InvoiceLineSpec, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.InvoiceLineSpec{AccountID: l.AccountID, Description: l.Description, Amount: l.Amount}
	}
	return domain.InvoiceSpec{
		InvoiceNumber: r.InvoiceNumber,
		Kind:          r.Kind,
		ContactID:     r.ContactID,
		InvoiceDate:   r.InvoiceDate,
		DueDate:       r.DueDate,
		CurrencyID:    r.CurrencyID,
		ExchangeRate:  r.ExchangeRate,
		Lines:         lines,
	}
}

type ListInvoicesParams struct {
	Kind      domain.InvoiceKind    `form:"kind" binding:"omitempty,oneof=SALES PURCHASE"`
	ContactID string                `form:"contactID"`
	Status    *domain.JournalStatus `form:"status" binding:"omitempty,oneof=DRAFT POSTED VOID"`
}

func (p ListInvoicesParams) Filter() portsrepo.InvoiceFilter {
	return portsrepo.InvoiceFilter{Kind: p.Kind, ContactID: p.ContactID, Status: p.Status}
}

// RecordPaymentRequest settles open invoices of a contact from a bank account.
type RecordPaymentRequest struct {
	Kind          domain.PaymentKind `json:"kind" binding:"required,oneof=RECEIVED MADE"`
	ContactID     string             `json:"contactID" binding:"required"`
	PaymentDate   time.Time          `json:"paymentDate" binding:"required"`
	Amount        decimal.Decimal    `json:"amount"`
	BankAccountID string             `json:"bankAccountID" binding:"required"`
	Reference     string             `json:"reference" binding:"max=100"`
}

func (r RecordPaymentRequest) ToSpec() domain.PaymentSpec {
	return domain.PaymentSpec{
		Kind:          r.Kind,
		ContactID:     r.ContactID,
		PaymentDate:   r.PaymentDate,
		Amount:        r.Amount,
		BankAccountID: r.BankAccountID,
		Reference:     r.Reference,
	}
}
