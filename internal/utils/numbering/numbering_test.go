package numbering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrefixes(t *testing.T) {
	ts := time.Date(2025, time.March, 9, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "JE2025", JournalPrefix(ts))
	assert.Equal(t, "REF202503", ReferencePrefix(ts))

	// A local time past midnight UTC still belongs to the UTC day.
	east := time.Date(2026, time.January, 1, 2, 0, 0, 0, time.FixedZone("UTC+3", 3*60*60))
	assert.Equal(t, "JE2025", JournalPrefix(east))
	assert.Equal(t, "REF202512", ReferencePrefix(east))
}

func TestNext(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		last   string
		want   string
	}{
		{"no previous number", "JE2025", "", "JE20250001"},
		{"increments suffix", "JE2025", "JE20250041", "JE20250042"},
		{"unparsable suffix restarts", "JE2025", "JE2025ABCD", "JE20250001"},
		{"other prefix restarts", "JE2025", "JE20240099", "JE20250001"},
		{"account number", "4", "40012", "40013"},
		{"overflow widens", "1", "19999", "110000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.prefix, tt.last))
		})
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("1", "10001"))
	assert.False(t, Matches("1", "1100"))
	assert.False(t, Matches("1", "100001"))
	assert.False(t, Matches("1", "1000A"))
	assert.False(t, Matches("2", "10001"))
}
