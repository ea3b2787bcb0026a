package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// InvoiceSvcFacade translates invoices and payments into journal entries.
type InvoiceSvcFacade interface {
	CreateInvoice(ctx context.Context, spec domain.InvoiceSpec, actorID string) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter repositories.InvoiceFilter) ([]domain.Invoice, error)

	// PostInvoice writes the balanced entry against the AR/AP control account and
	// flips the invoice to POSTED in one unit of work.
	PostInvoice(ctx context.Context, invoiceID string, actorID string) (*domain.Invoice, error)

	// RecordPayment persists the payment together with its POSTED entry.
	RecordPayment(ctx context.Context, spec domain.PaymentSpec, actorID string) (*domain.Payment, error)
}
