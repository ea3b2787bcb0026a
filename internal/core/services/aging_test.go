package services

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refDay = time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return refDay.AddDate(0, 0, -n)
}

func agedInvoice(number string, age int, amount int64) domain.Invoice {
	return domain.Invoice{
		InvoiceID:     "id-" + number,
		InvoiceNumber: number,
		InvoiceDate:   daysAgo(age),
		DueDate:       daysAgo(age - 30),
		TotalAmount:   decimal.NewFromInt(amount),
	}
}

func TestBuildAgingAppliesPaymentsOldestFirst(t *testing.T) {
	invoices := []domain.Invoice{
		agedInvoice("INV-3", 10, 50),
		agedInvoice("INV-1", 100, 100),
		agedInvoice("INV-2", 45, 200),
	}
	payments := []domain.Payment{{Amount: decimal.NewFromInt(150), PaymentDate: daysAgo(5)}}

	report := buildAging(domain.InvoiceSales, "cust-1", invoices, payments, refDay)

	require.Len(t, report.Items, 2)
	assert.Equal(t, "INV-2", report.Items[0].InvoiceNumber)
	assert.True(t, report.Items[0].OutstandingAmount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, domain.Bucket31To60, report.Items[0].Bucket)
	assert.True(t, report.Items[0].IsOverdue)
	assert.Equal(t, "INV-3", report.Items[1].InvoiceNumber)
	assert.False(t, report.Items[1].IsOverdue)

	assert.True(t, report.Buckets.Days0To30.Equal(decimal.NewFromInt(50)))
	assert.True(t, report.Buckets.Days31To60.Equal(decimal.NewFromInt(150)))
	assert.True(t, report.Buckets.Over90.IsZero())
	assert.True(t, report.TotalOutstanding.Equal(report.Buckets.Total()))
	assert.True(t, report.OverdueAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, report.UnappliedPayments.IsZero())
}

func TestBuildAgingReportsOverpayment(t *testing.T) {
	invoices := []domain.Invoice{agedInvoice("INV-1", 20, 100), agedInvoice("INV-2", 95, 250)}
	payments := []domain.Payment{
		{Amount: decimal.NewFromInt(300), PaymentDate: daysAgo(3)},
		{Amount: decimal.NewFromInt(200), PaymentDate: daysAgo(1)},
	}

	report := buildAging(domain.InvoiceSales, "cust-1", invoices, payments, refDay)

	assert.Empty(t, report.Items)
	assert.True(t, report.TotalOutstanding.IsZero())
	assert.True(t, report.UnappliedPayments.Equal(decimal.NewFromInt(150)))
}

func agedLine(age int, debit, credit int64) domain.LedgerLine {
	return domain.LedgerLine{
		JournalLine: domain.JournalLine{
			DebitAmount:  decimal.NewFromInt(debit),
			CreditAmount: decimal.NewFromInt(credit),
		},
		EntryDate: daysAgo(age),
	}
}

func TestComputeDSO(t *testing.T) {
	t.Run("single settlement", func(t *testing.T) {
		res := computeDSO("c", []domain.LedgerLine{agedLine(30, 100, 0), agedLine(0, 0, 100)})
		assert.Equal(t, 1, res.Samples)
		assert.True(t, res.Days.Equal(decimal.NewFromInt(30)))
	})

	t.Run("partial credits pair with the oldest debit", func(t *testing.T) {
		res := computeDSO("c", []domain.LedgerLine{
			agedLine(10, 100, 0),
			agedLine(20, 100, 0),
			agedLine(0, 0, 150),
		})
		assert.Equal(t, 2, res.Samples)
		assert.True(t, res.Days.Equal(decimal.NewFromInt(15)))
	})

	t.Run("same day settlement", func(t *testing.T) {
		res := computeDSO("c", []domain.LedgerLine{agedLine(4, 0, 80), agedLine(4, 80, 0)})
		assert.Equal(t, 1, res.Samples)
		assert.True(t, res.Days.IsZero())
	})

	t.Run("prepayment is not paired", func(t *testing.T) {
		res := computeDSO("c", []domain.LedgerLine{agedLine(5, 0, 40)})
		assert.Equal(t, 0, res.Samples)
		assert.True(t, res.Days.IsZero())
	})
}
