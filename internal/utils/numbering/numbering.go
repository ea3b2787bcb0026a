// Package numbering generates the human-readable document numbers of the ledger:
// journal numbers JE{yyyy}{NNNN}, reference numbers REF{yyyy}{MM}{NNNN} and
// account numbers {typeDigit}{NNNN}.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SequenceWidth is the zero-padded width of every sequence suffix.
const SequenceWidth = 4

// JournalPrefix returns "JE" followed by the UTC year of t.
func JournalPrefix(t time.Time) string {
	return fmt.Sprintf("JE%04d", t.UTC().Year())
}

// ReferencePrefix returns "REF" followed by the UTC year and month of t.
func ReferencePrefix(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("REF%04d%02d", u.Year(), int(u.Month()))
}

// Next returns prefix followed by the successor of last's numeric suffix.
// An empty last, a foreign prefix or an unparsable suffix restarts at 1.
func Next(prefix, last string) string {
	seq := 1
	if strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(last[len(prefix):]); err == nil && n >= 0 {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, SequenceWidth, seq)
}

// Matches reports whether number is prefix followed by exactly SequenceWidth digits.
func Matches(prefix, number string) bool {
	if !strings.HasPrefix(number, prefix) {
		return false
	}
	suffix := number[len(prefix):]
	if len(suffix) != SequenceWidth {
		return false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
