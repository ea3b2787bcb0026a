package accounting

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BasePlaces is the number of decimal places of base-currency amounts.
const BasePlaces = 2

// ConvertToBase converts a foreign amount with banker's rounding to BasePlaces.
func ConvertToBase(foreign, rate decimal.Decimal) decimal.Decimal {
	return foreign.Mul(rate).RoundBank(BasePlaces)
}

// EffectiveRate resolves the currency and rate of a line: the line's override,
// then the entry's values, then 1.0.
func EffectiveRate(line domain.JournalLine, entry domain.JournalEntry) (string, decimal.Decimal) {
	currency := entry.CurrencyID
	if line.CurrencyID != nil && *line.CurrencyID != "" {
		currency = *line.CurrencyID
	}

	rate := decimal.NewFromInt(1)
	if !entry.ExchangeRate.IsZero() {
		rate = entry.ExchangeRate
	}
	if line.ExchangeRate != nil && !line.ExchangeRate.IsZero() {
		rate = *line.ExchangeRate
	}
	return currency, rate
}

// ApplyConversion recomputes base amounts from foreign amounts for every line that carries one.
// Foreign-derived amounts always win over base amounts supplied directly. Line overrides
// are left as given so a later change of the entry rate still reaches inherited lines.
func ApplyConversion(entry *domain.JournalEntry) {
	for i := range entry.Lines {
		line := &entry.Lines[i]
		if line.ForeignDebitAmount == nil && line.ForeignCreditAmount == nil {
			continue
		}
		_, rate := EffectiveRate(*line, *entry)
		if line.ForeignDebitAmount != nil {
			line.DebitAmount = ConvertToBase(*line.ForeignDebitAmount, rate)
		}
		if line.ForeignCreditAmount != nil {
			line.CreditAmount = ConvertToBase(*line.ForeignCreditAmount, rate)
		}
	}
	entry.Amount = entry.TotalDebit()
}

// ValidateJournalBalance checks the posting preconditions that depend only on the lines:
// at least two lines, no negative amounts, Σdebits == Σcredits exactly and non-zero.
func ValidateJournalBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: journal must have at least two lines", apperrors.ErrUnbalancedEntry)
	}

	debits, credits := decimal.Zero, decimal.Zero
	for i, l := range lines {
		if l.AccountID == "" {
			return fmt.Errorf("%w: line %d has no account", apperrors.ErrValidation, i+1)
		}
		if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrValidation, i+1)
		}
		debits = debits.Add(l.DebitAmount)
		credits = credits.Add(l.CreditAmount)
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s do not equal credits %s", apperrors.ErrUnbalancedEntry, debits.String(), credits.String())
	}
	if debits.IsZero() {
		return fmt.Errorf("%w: journal total is zero", apperrors.ErrUnbalancedEntry)
	}
	return nil
}

// BalanceDeltas aggregates sign × (debit − credit) per account.
func BalanceDeltas(lines []domain.JournalLine, sign int64) map[string]decimal.Decimal {
	s := decimal.NewFromInt(sign)
	deltas := make(map[string]decimal.Decimal)
	for _, l := range lines {
		deltas[l.AccountID] = deltas[l.AccountID].Add(l.Net().Mul(s))
	}
	return deltas
}

// NormalSide presents a debit-minus-credit figure on the account's normal side.
func NormalSide(net decimal.Decimal, normal domain.NormalBalance) decimal.Decimal {
	if normal == domain.NormalCredit {
		return net.Neg()
	}
	return net
}
