package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// invoiceService translates invoices and payments into balanced journal entries.
type invoiceService struct {
	BaseService
	engine   postingEngine
	store    portsrepo.Store
	settings portssvc.SettingsSvcFacade
}

type InvoiceServiceOption func(*invoiceService)

// WithInvoiceClock replaces the wall clock, mainly for tests.
func WithInvoiceClock(now func() time.Time) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.clock = now
	}
}

func NewInvoiceService(store portsrepo.Store, settings portssvc.SettingsSvcFacade, opts ...InvoiceServiceOption) portssvc.InvoiceSvcFacade {
	svc := &invoiceService{store: store, settings: settings}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

func (s *invoiceService) baseCurrency(ctx context.Context) (string, error) {
	if s.settings == nil {
		return domain.DefaultBaseCurrency, nil
	}
	return s.settings.BaseCurrency(ctx)
}

// validateAmount requires a positive amount with at most two decimal places.
func validateAmount(label string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be positive", apperrors.ErrValidation, label)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: %s has more than two decimal places", apperrors.ErrValidation, label)
	}
	return nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, spec domain.InvoiceSpec, actorID string) (*domain.Invoice, error) {
	spec.InvoiceNumber = strings.TrimSpace(spec.InvoiceNumber)
	if err := validateStruct(spec); err != nil {
		s.LogWarn(ctx, err, "Invalid invoice spec")
		return nil, err
	}
	if spec.DueDate.Before(spec.InvoiceDate) {
		err := fmt.Errorf("%w: due date precedes invoice date", apperrors.ErrValidation)
		s.LogWarn(ctx, err, "Invalid invoice spec")
		return nil, err
	}

	base, err := s.baseCurrency(ctx)
	if err != nil {
		return nil, err
	}
	rate := decimal.NewFromInt(1)
	if spec.ExchangeRate != nil {
		rate = *spec.ExchangeRate
	}
	if !rate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	currency := strings.ToUpper(spec.CurrencyID)
	if currency == "" {
		currency = base
	}

	now := s.Now()
	invoice := domain.Invoice{
		InvoiceID:     uuid.NewString(),
		InvoiceNumber: spec.InvoiceNumber,
		Kind:          spec.Kind,
		ContactID:     spec.ContactID,
		InvoiceDate:   spec.InvoiceDate.UTC(),
		DueDate:       spec.DueDate.UTC(),
		CurrencyID:    currency,
		ExchangeRate:  rate,
		TotalAmount:   decimal.Zero,
		Status:        domain.StatusDraft,
	}
	for i, l := range spec.Lines {
		if err := validateAmount(fmt.Sprintf("line %d amount", i+1), l.Amount); err != nil {
			return nil, err
		}
		invoice.Lines = append(invoice.Lines, domain.InvoiceLine{
			LineID:      uuid.NewString(),
			InvoiceID:   invoice.InvoiceID,
			LineOrder:   i + 1,
			AccountID:   l.AccountID,
			Description: l.Description,
			Amount:      l.Amount,
		})
		invoice.TotalAmount = invoice.TotalAmount.Add(l.Amount)
	}
	invoice.AuditFields.Stamp(actorID, now)

	created, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.Invoice, error) {
		exists, err := uow.Invoices().InvoiceNumberExists(ctx, invoice.Kind, invoice.InvoiceNumber)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s invoice number %s", apperrors.ErrDuplicate, strings.ToLower(string(invoice.Kind)), invoice.InvoiceNumber)
		}

		ids := make([]string, 0, len(invoice.Lines))
		for _, l := range invoice.Lines {
			ids = append(ids, l.AccountID)
		}
		accounts, err := uow.Accounts().FindAccountsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := accounts[id]; !ok {
				return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
			}
		}

		if err := uow.Invoices().SaveInvoice(ctx, invoice); err != nil {
			return nil, err
		}
		return &invoice, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create invoice", slog.String("invoice_number", spec.InvoiceNumber))
		return nil, err
	}

	s.LogInfo(ctx, "Invoice created",
		slog.String("invoice_id", created.InvoiceID),
		slog.String("kind", string(created.Kind)),
		slog.String("total", created.TotalAmount.String()))
	return created, nil
}

// PostInvoice writes one balanced POSTED entry for the invoice and flips the invoice
// status in the same unit of work.
func (s *invoiceService) PostInvoice(ctx context.Context, invoiceID string, actorID string) (*domain.Invoice, error) {
	base, err := s.baseCurrency(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now()

	posted, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.Invoice, error) {
		invoice, err := uow.Invoices().FindInvoiceByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return nil, err
		}
		if invoice.Status != domain.StatusDraft {
			return nil, fmt.Errorf("%w: invoice %s is %s", apperrors.ErrInvalidState, invoice.InvoiceNumber, invoice.Status)
		}

		control, err := controlAccount(ctx, uow.Accounts(), invoice.Kind)
		if err != nil {
			return nil, err
		}

		entry := invoiceEntry(*invoice, control.AccountID, base)
		s.engine.prepareEntry(&entry, base, actorID, now)
		if err := s.engine.insertEntry(ctx, uow, &entry, actorID, now); err != nil {
			return nil, err
		}

		if err := uow.Invoices().UpdateInvoiceStatus(ctx, invoice.InvoiceID, domain.StatusPosted, &entry.JournalID, actorID, now); err != nil {
			return nil, err
		}
		invoice.Status = domain.StatusPosted
		invoice.JournalID = &entry.JournalID
		invoice.AuditFields.Touch(actorID, now)
		return invoice, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to post invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}

	s.LogInfo(ctx, "Invoice posted",
		slog.String("invoice_id", posted.InvoiceID),
		slog.String("journal_id", *posted.JournalID))
	return posted, nil
}

// invoiceEntry builds the balanced entry of an invoice. Sales debit the control account
// and credit each line; purchases debit each line and credit the control account.
// Foreign mirrors (amount / rate) are attached when the invoice is not in the base currency.
func invoiceEntry(invoice domain.Invoice, controlAccountID, baseCurrency string) domain.JournalEntry {
	foreign := invoice.CurrencyID != baseCurrency
	mirror := func(amount decimal.Decimal) *decimal.Decimal {
		if !foreign {
			return nil
		}
		m := amount.Div(invoice.ExchangeRate)
		return &m
	}

	contactID := invoice.ContactID
	sales := invoice.Kind == domain.InvoiceSales
	lines := make([]domain.JournalLine, 0, len(invoice.Lines)+1)

	control := domain.JournalLine{
		AccountID:   controlAccountID,
		Description: invoice.InvoiceNumber,
		ContactID:   &contactID,
	}
	if sales {
		control.DebitAmount = invoice.TotalAmount
		control.ForeignDebitAmount = mirror(invoice.TotalAmount)
		lines = append(lines, control)
	}
	for _, l := range invoice.Lines {
		line := domain.JournalLine{AccountID: l.AccountID, Description: l.Description}
		if sales {
			line.CreditAmount = l.Amount
			line.ForeignCreditAmount = mirror(l.Amount)
		} else {
			line.DebitAmount = l.Amount
			line.ForeignDebitAmount = mirror(l.Amount)
		}
		lines = append(lines, line)
	}
	if !sales {
		control.CreditAmount = invoice.TotalAmount
		control.ForeignCreditAmount = mirror(invoice.TotalAmount)
		lines = append(lines, control)
	}

	entryType, label := domain.JournalSalesInvoice, "Sales invoice"
	if !sales {
		entryType, label = domain.JournalPurchaseInvoice, "Purchase invoice"
	}
	sourceID := invoice.InvoiceID
	return domain.JournalEntry{
		EntryDate:        invoice.InvoiceDate,
		Description:      fmt.Sprintf("%s %s", label, invoice.InvoiceNumber),
		EntryType:        entryType,
		Status:           domain.StatusPosted,
		CurrencyID:       invoice.CurrencyID,
		ExchangeRate:     invoice.ExchangeRate,
		SourceDocumentID: &sourceID,
		Lines:            lines,
	}
}

// RecordPayment persists a payment with its POSTED entry. Received payments debit the bank
// and credit AR; payments made debit AP and credit the bank. The control line carries the contact.
func (s *invoiceService) RecordPayment(ctx context.Context, spec domain.PaymentSpec, actorID string) (*domain.Payment, error) {
	if err := validateStruct(spec); err != nil {
		s.LogWarn(ctx, err, "Invalid payment spec")
		return nil, err
	}
	if err := validateAmount("payment amount", spec.Amount); err != nil {
		s.LogWarn(ctx, err, "Invalid payment spec")
		return nil, err
	}
	base, err := s.baseCurrency(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now()

	payment := domain.Payment{
		PaymentID:     uuid.NewString(),
		Kind:          spec.Kind,
		ContactID:     spec.ContactID,
		PaymentDate:   spec.PaymentDate.UTC(),
		Amount:        spec.Amount,
		BankAccountID: spec.BankAccountID,
		Reference:     spec.Reference,
	}
	payment.AuditFields.Stamp(actorID, now)

	recorded, err := WithTransaction(ctx, s.store, func(uow portsrepo.UnitOfWork) (*domain.Payment, error) {
		control, err := controlAccount(ctx, uow.Accounts(), payment.Kind.InvoiceKind())
		if err != nil {
			return nil, err
		}

		contactID := payment.ContactID
		controlLine := domain.JournalLine{AccountID: control.AccountID, Description: payment.Reference, ContactID: &contactID}
		bankLine := domain.JournalLine{AccountID: payment.BankAccountID, Description: payment.Reference}
		entryType, description := domain.JournalPaymentReceived, "Payment received from "+payment.ContactID
		var lines []domain.JournalLine
		if payment.Kind == domain.PaymentReceived {
			bankLine.DebitAmount = payment.Amount
			controlLine.CreditAmount = payment.Amount
			lines = []domain.JournalLine{bankLine, controlLine}
		} else {
			controlLine.DebitAmount = payment.Amount
			bankLine.CreditAmount = payment.Amount
			lines = []domain.JournalLine{controlLine, bankLine}
			entryType, description = domain.JournalPaymentMade, "Payment made to "+payment.ContactID
		}

		sourceID := payment.PaymentID
		entry := domain.JournalEntry{
			EntryDate:        payment.PaymentDate,
			Description:      description,
			EntryType:        entryType,
			Status:           domain.StatusPosted,
			SourceDocumentID: &sourceID,
			Lines:            lines,
		}
		s.engine.prepareEntry(&entry, base, actorID, now)
		if err := s.engine.insertEntry(ctx, uow, &entry, actorID, now); err != nil {
			return nil, err
		}

		payment.JournalID = &entry.JournalID
		if err := uow.Invoices().SavePayment(ctx, payment); err != nil {
			return nil, err
		}
		return &payment, nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to record payment", slog.String("contact_id", spec.ContactID))
		return nil, err
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("payment_id", recorded.PaymentID),
		slog.String("kind", string(recorded.Kind)),
		slog.String("amount", recorded.Amount.String()))
	return recorded, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.store.Invoices().FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to get invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter portsrepo.InvoiceFilter) ([]domain.Invoice, error) {
	invoices, err := s.store.Invoices().ListInvoices(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoices")
		return nil, err
	}
	return invoices, nil
}
