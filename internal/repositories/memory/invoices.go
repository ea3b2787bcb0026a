package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

type invoiceRepository struct {
	db access
}

var _ portsrepo.InvoiceRepositoryFacade = (*invoiceRepository)(nil)

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	inv.Lines = append([]domain.InvoiceLine(nil), inv.Lines...)
	return inv
}

func (r *invoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	var found *domain.Invoice
	err := r.db.read(ctx, func(st *state) error {
		inv, ok := st.invoices[invoiceID]
		if !ok {
			return apperrors.NewNotFoundError("invoice " + invoiceID)
		}
		inv = cloneInvoice(inv)
		found = &inv
		return nil
	})
	return found, err
}

func (r *invoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return r.FindInvoiceByID(ctx, invoiceID)
}

func (r *invoiceRepository) InvoiceNumberExists(ctx context.Context, kind domain.InvoiceKind, number string) (bool, error) {
	exists := false
	err := r.db.read(ctx, func(st *state) error {
		for _, inv := range st.invoices {
			if inv.Kind == kind && inv.InvoiceNumber == number {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r *invoiceRepository) ListInvoices(ctx context.Context, filter portsrepo.InvoiceFilter) ([]domain.Invoice, error) {
	var out []domain.Invoice
	err := r.db.read(ctx, func(st *state) error {
		for _, inv := range st.invoices {
			if filter.Kind != "" && inv.Kind != filter.Kind {
				continue
			}
			if filter.ContactID != "" && inv.ContactID != filter.ContactID {
				continue
			}
			if filter.Status != nil && inv.Status != *filter.Status {
				continue
			}
			out = append(out, cloneInvoice(inv))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].InvoiceDate.Equal(out[j].InvoiceDate) {
			return out[i].InvoiceDate.Before(out[j].InvoiceDate)
		}
		return out[i].InvoiceNumber < out[j].InvoiceNumber
	})
	return out, err
}

func (r *invoiceRepository) ListPayments(ctx context.Context, filter portsrepo.PaymentFilter) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.db.read(ctx, func(st *state) error {
		for _, p := range st.payments {
			if filter.Kind != "" && p.Kind != filter.Kind {
				continue
			}
			if filter.ContactID != "" && p.ContactID != filter.ContactID {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.Before(out[j].PaymentDate)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].PaymentID < out[j].PaymentID
	})
	return out, err
}

func (r *invoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.invoices[invoice.InvoiceID]; ok {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrDuplicate, invoice.InvoiceID)
		}
		for _, inv := range st.invoices {
			if inv.Kind == invoice.Kind && inv.InvoiceNumber == invoice.InvoiceNumber {
				return fmt.Errorf("%w: invoice number %s", apperrors.ErrDuplicate, invoice.InvoiceNumber)
			}
		}
		st.invoices[invoice.InvoiceID] = cloneInvoice(invoice)
		return nil
	})
}

func (r *invoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.JournalStatus, journalID *string, userID string, now time.Time) error {
	return r.db.write(ctx, func(st *state) error {
		inv, ok := st.invoices[invoiceID]
		if !ok {
			return apperrors.NewNotFoundError("invoice " + invoiceID)
		}
		inv.Status = status
		inv.JournalID = journalID
		inv.Touch(userID, now)
		st.invoices[invoiceID] = inv
		return nil
	})
}

func (r *invoiceRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	return r.db.write(ctx, func(st *state) error {
		if _, ok := st.payments[payment.PaymentID]; ok {
			return fmt.Errorf("%w: payment %s", apperrors.ErrDuplicate, payment.PaymentID)
		}
		st.payments[payment.PaymentID] = payment
		return nil
	})
}
