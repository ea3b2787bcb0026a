package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxInvoiceRepository struct {
	BaseRepository
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `invoice_id, invoice_number, kind, contact_id, invoice_date, due_date, currency_id,
	exchange_rate, total_amount, status, journal_id, created_at, created_by, last_updated_at, last_updated_by`

const paymentColumns = `payment_id, kind, contact_id, payment_date, amount, bank_account_id, reference,
	journal_id, created_at, created_by, last_updated_at, last_updated_by`

func scanInvoice(row pgx.Row) (domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.InvoiceID,
		&inv.InvoiceNumber,
		&inv.Kind,
		&inv.ContactID,
		&inv.InvoiceDate,
		&inv.DueDate,
		&inv.CurrencyID,
		&inv.ExchangeRate,
		&inv.TotalAmount,
		&inv.Status,
		&inv.JournalID,
		&inv.CreatedAt,
		&inv.CreatedBy,
		&inv.LastUpdatedAt,
		&inv.LastUpdatedBy,
	)
	inv.InvoiceDate = inv.InvoiceDate.UTC()
	inv.DueDate = inv.DueDate.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.LastUpdatedAt = inv.LastUpdatedAt.UTC()
	return inv, err
}

// loadLines fills Lines of every invoice with one query.
func (r *PgxInvoiceRepository) loadLines(ctx context.Context, invoices []domain.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	ids := make([]string, len(invoices))
	index := make(map[string]int, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.InvoiceID
		index[inv.InvoiceID] = i
	}
	rows, err := r.db.Query(ctx, `
		SELECT line_id, invoice_id, line_order, account_id, description, amount
		FROM invoice_lines WHERE invoice_id = ANY($1) ORDER BY invoice_id, line_order;`, ids)
	if err != nil {
		return mapError(err, "invoice lines")
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.InvoiceLine, error) {
		var l domain.InvoiceLine
		err := row.Scan(&l.LineID, &l.InvoiceID, &l.LineOrder, &l.AccountID, &l.Description, &l.Amount)
		return l, err
	})
	if err != nil {
		return mapError(err, "invoice lines")
	}
	for _, l := range lines {
		i := index[l.InvoiceID]
		invoices[i].Lines = append(invoices[i].Lines, l)
	}
	return nil
}

func (r *PgxInvoiceRepository) findInvoice(ctx context.Context, invoiceID, suffix string) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id = $1`+suffix+`;`, invoiceID))
	if err != nil {
		return nil, mapError(err, "invoice "+invoiceID)
	}
	list := []domain.Invoice{inv}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return r.findInvoice(ctx, invoiceID, "")
}

func (r *PgxInvoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return r.findInvoice(ctx, invoiceID, r.forUpdate())
}

func (r *PgxInvoiceRepository) InvoiceNumberExists(ctx context.Context, kind domain.InvoiceKind, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE kind = $1 AND invoice_number = $2);`, kind, number).Scan(&exists)
	if err != nil {
		return false, mapError(err, "invoice number "+number)
	}
	return exists, nil
}

func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, filter portsrepo.InvoiceFilter) ([]domain.Invoice, error) {
	w := &where{}
	if filter.Kind != "" {
		w.add("kind = ?", filter.Kind)
	}
	if filter.ContactID != "" {
		w.add("contact_id = ?", filter.ContactID)
	}
	if filter.Status != nil {
		w.add("status = ?", *filter.Status)
	}
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices`+w.String()+` ORDER BY invoice_date, invoice_number;`, w.args...)
	if err != nil {
		return nil, mapError(err, "invoices")
	}
	invoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Invoice, error) {
		return scanInvoice(row)
	})
	if err != nil {
		return nil, mapError(err, "invoices")
	}
	if err := r.loadLines(ctx, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *PgxInvoiceRepository) ListPayments(ctx context.Context, filter portsrepo.PaymentFilter) ([]domain.Payment, error) {
	w := &where{}
	if filter.Kind != "" {
		w.add("kind = ?", filter.Kind)
	}
	if filter.ContactID != "" {
		w.add("contact_id = ?", filter.ContactID)
	}
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments`+w.String()+` ORDER BY payment_date, created_at, payment_id;`, w.args...)
	if err != nil {
		return nil, mapError(err, "payments")
	}
	payments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Payment, error) {
		var p domain.Payment
		err := row.Scan(
			&p.PaymentID,
			&p.Kind,
			&p.ContactID,
			&p.PaymentDate,
			&p.Amount,
			&p.BankAccountID,
			&p.Reference,
			&p.JournalID,
			&p.CreatedAt,
			&p.CreatedBy,
			&p.LastUpdatedAt,
			&p.LastUpdatedBy,
		)
		p.PaymentDate = p.PaymentDate.UTC()
		p.CreatedAt = p.CreatedAt.UTC()
		p.LastUpdatedAt = p.LastUpdatedAt.UTC()
		return p, err
	})
	if err != nil {
		return nil, mapError(err, "payments")
	}
	return payments, nil
}

// SaveInvoice inserts the header and its lines.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.db.Exec(ctx, query,
		invoice.InvoiceID,
		invoice.InvoiceNumber,
		invoice.Kind,
		invoice.ContactID,
		invoice.InvoiceDate,
		invoice.DueDate,
		invoice.CurrencyID,
		invoice.ExchangeRate,
		invoice.TotalAmount,
		invoice.Status,
		invoice.JournalID,
		invoice.CreatedAt,
		invoice.CreatedBy,
		invoice.LastUpdatedAt,
		invoice.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "invoice "+invoice.InvoiceNumber)
	}
	if len(invoice.Lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, l := range invoice.Lines {
		batch.Queue(`
			INSERT INTO invoice_lines (line_id, invoice_id, line_order, account_id, description, amount)
			VALUES ($1, $2, $3, $4, $5, $6);`,
			l.LineID, invoice.InvoiceID, l.LineOrder, l.AccountID, l.Description, l.Amount)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "lines of invoice "+invoice.InvoiceNumber)
	}
	return nil
}

func (r *PgxInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.JournalStatus, journalID *string, userID string, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET status = $2, journal_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE invoice_id = $1;`,
		invoiceID, status, journalID, now, userID)
	if err != nil {
		return mapError(err, "invoice "+invoiceID)
	}
	return expectRow(tag, "invoice "+invoiceID)
}

func (r *PgxInvoiceRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.Exec(ctx, query,
		payment.PaymentID,
		payment.Kind,
		payment.ContactID,
		payment.PaymentDate,
		payment.Amount,
		payment.BankAccountID,
		payment.Reference,
		payment.JournalID,
		payment.CreatedAt,
		payment.CreatedBy,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	return mapError(err, "payment "+payment.PaymentID)
}
