package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// InvoiceFilter narrows ListInvoices. Empty fields do not filter.
type InvoiceFilter struct {
	Kind      domain.InvoiceKind
	ContactID string
	Status    *domain.JournalStatus
}

// PaymentFilter narrows ListPayments. Empty fields do not filter.
type PaymentFilter struct {
	Kind      domain.PaymentKind
	ContactID string
}

type InvoiceReader interface {
	// FindInvoiceByID returns the invoice with its lines.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// FindInvoiceByIDForUpdate is FindInvoiceByID with a row lock on the invoice.
	FindInvoiceByIDForUpdate(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	InvoiceNumberExists(ctx context.Context, kind domain.InvoiceKind, number string) (bool, error)

	// ListInvoices returns matching invoices with lines, ordered by invoice date then number.
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, error)

	// ListPayments returns matching payments ordered by payment date then creation time.
	ListPayments(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error)
}

type InvoiceWriter interface {
	// SaveInvoice inserts the invoice and its lines.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.JournalStatus, journalID *string, userID string, now time.Time) error

	SavePayment(ctx context.Context, payment domain.Payment) error
}

// InvoiceRepositoryFacade combines invoice and payment persistence.
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
