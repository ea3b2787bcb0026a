package services

import (
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// daysBetween counts calendar days from a to b in UTC.
func daysBetween(a, b time.Time) int {
	return int(domain.StartOfDay(b).Sub(domain.StartOfDay(a)).Hours() / 24)
}

// buildAging allocates payments, oldest first, against invoices ordered by date and
// buckets what remains by today − invoiceDate. Payment amounts larger than the open
// total are reported as unapplied.
func buildAging(kind domain.InvoiceKind, contactID string, invoices []domain.Invoice, payments []domain.Payment, today time.Time) domain.AgingReport {
	invoices = append([]domain.Invoice(nil), invoices...)
	sort.SliceStable(invoices, func(i, j int) bool {
		if !invoices[i].InvoiceDate.Equal(invoices[j].InvoiceDate) {
			return invoices[i].InvoiceDate.Before(invoices[j].InvoiceDate)
		}
		return invoices[i].InvoiceNumber < invoices[j].InvoiceNumber
	})
	payments = append([]domain.Payment(nil), payments...)
	sort.SliceStable(payments, func(i, j int) bool { return payments[i].PaymentDate.Before(payments[j].PaymentDate) })

	remaining := make([]decimal.Decimal, len(invoices))
	for i, inv := range invoices {
		remaining[i] = inv.TotalAmount
	}

	unapplied := decimal.Zero
	next := 0
	for _, p := range payments {
		amount := p.Amount
		for amount.IsPositive() && next < len(invoices) {
			take := decimal.Min(amount, remaining[next])
			remaining[next] = remaining[next].Sub(take)
			amount = amount.Sub(take)
			if remaining[next].IsZero() {
				next++
			}
		}
		unapplied = unapplied.Add(amount)
	}

	report := domain.AgingReport{
		Kind:              kind,
		ContactID:         contactID,
		AsOf:              domain.StartOfDay(today),
		Items:             make([]domain.AgingItem, 0),
		TotalOutstanding:  decimal.Zero,
		OverdueAmount:     decimal.Zero,
		UnappliedPayments: unapplied,
	}
	for i, inv := range invoices {
		if !remaining[i].IsPositive() {
			continue
		}
		age := daysBetween(inv.InvoiceDate, today)
		item := domain.AgingItem{
			InvoiceID:         inv.InvoiceID,
			InvoiceNumber:     inv.InvoiceNumber,
			InvoiceDate:       inv.InvoiceDate,
			DueDate:           inv.DueDate,
			OriginalAmount:    inv.TotalAmount,
			OutstandingAmount: remaining[i],
			AgeDays:           age,
			Bucket:            domain.BucketForAge(age),
			IsOverdue:         domain.StartOfDay(inv.DueDate).Before(domain.StartOfDay(today)),
		}
		report.Items = append(report.Items, item)
		report.Buckets.Add(item.Bucket, item.OutstandingAmount)
		report.TotalOutstanding = report.TotalOutstanding.Add(item.OutstandingAmount)
		if item.IsOverdue {
			report.OverdueAmount = report.OverdueAmount.Add(item.OutstandingAmount)
		}
	}
	return report
}

// computeDSO pairs receivable credits with the oldest open debit remainders (FIFO) and
// averages the day gap of every pairing. Amounts do not weight the mean. Credits with no
// open debit (prepayments) are not paired.
func computeDSO(contactID string, lines []domain.LedgerLine) domain.DSOResult {
	lines = append([]domain.LedgerLine(nil), lines...)
	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].EntryDate.Equal(lines[j].EntryDate) {
			return lines[i].EntryDate.Before(lines[j].EntryDate)
		}
		// same day: debits first so a same-day settlement pairs at zero days
		return lines[i].DebitAmount.GreaterThan(lines[j].DebitAmount)
	})

	type openDebit struct {
		date      time.Time
		remaining decimal.Decimal
	}
	var queue []openDebit
	totalDays, samples := 0, 0

	for _, l := range lines {
		if l.DebitAmount.IsPositive() {
			queue = append(queue, openDebit{date: l.EntryDate, remaining: l.DebitAmount})
		}
		credit := l.CreditAmount
		for credit.IsPositive() && len(queue) > 0 {
			head := &queue[0]
			take := decimal.Min(credit, head.remaining)
			head.remaining = head.remaining.Sub(take)
			credit = credit.Sub(take)
			totalDays += daysBetween(head.date, l.EntryDate)
			samples++
			if head.remaining.IsZero() {
				queue = queue[1:]
			}
		}
	}

	result := domain.DSOResult{ContactID: contactID, Days: decimal.Zero, Samples: samples}
	if samples > 0 {
		result.Days = decimal.NewFromInt(int64(totalDays)).Div(decimal.NewFromInt(int64(samples))).Round(2)
	}
	return result
}
