package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestJournalEntryTotals(t *testing.T) {
	entry := JournalEntry{Lines: []JournalLine{
		{AccountID: "b", DebitAmount: decimal.RequireFromString("40.10")},
		{AccountID: "a", DebitAmount: decimal.RequireFromString("9.90")},
		{AccountID: "b", CreditAmount: decimal.RequireFromString("50")},
	}}

	assert.True(t, entry.TotalDebit().Equal(decimal.NewFromInt(50)))
	assert.True(t, entry.TotalCredit().Equal(decimal.NewFromInt(50)))
	assert.True(t, entry.IsBalanced())
	assert.Equal(t, []string{"a", "b"}, entry.AccountIDs())

	entry.Lines[0].DebitAmount = decimal.RequireFromString("40.11")
	assert.False(t, entry.IsBalanced())
}

func TestAccountTypeDefaults(t *testing.T) {
	assert.Equal(t, NormalDebit, Asset.DefaultNormalBalance())
	assert.Equal(t, NormalDebit, Expense.DefaultNormalBalance())
	assert.Equal(t, NormalCredit, Liability.DefaultNormalBalance())
	assert.Equal(t, NormalCredit, Equity.DefaultNormalBalance())
	assert.Equal(t, NormalCredit, Revenue.DefaultNormalBalance())

	assert.Equal(t, "4", Revenue.NumberPrefix())
	assert.False(t, AccountType("INCOME").IsValid())
}

func TestBucketForAge(t *testing.T) {
	assert.Equal(t, Bucket0To30, BucketForAge(0))
	assert.Equal(t, Bucket0To30, BucketForAge(30))
	assert.Equal(t, Bucket31To60, BucketForAge(31))
	assert.Equal(t, Bucket61To90, BucketForAge(90))
	assert.Equal(t, BucketOver90, BucketForAge(91))

	var b AgingBuckets
	b.Add(Bucket0To30, decimal.NewFromInt(5))
	b.Add(BucketOver90, decimal.NewFromInt(7))
	assert.True(t, b.Total().Equal(decimal.NewFromInt(12)))
}

func TestEndOfDayIsInclusive(t *testing.T) {
	day := StartOfDay(mustDate("2025-06-30"))
	eod := EndOfDay(day)
	assert.True(t, eod.After(day.Add(23*time.Hour)))
	assert.Equal(t, day.Day(), eod.Day())
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
