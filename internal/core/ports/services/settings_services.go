package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// SettingsSvcFacade is a read-through cache over the settings table.
type SettingsSvcFacade interface {
	// Get returns the value and whether the key is set.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, actorID string) error
	ListSettings(ctx context.Context) ([]domain.Setting, error)

	// BaseCurrency returns the configured base currency, USD when unset.
	BaseCurrency(ctx context.Context) (string, error)

	// FiscalYearStart returns the first day of the fiscal year that begins in year.
	FiscalYearStart(ctx context.Context, year int) (time.Time, error)

	// Invalidate drops one cached key.
	Invalidate(ctx context.Context, key string) error

	// Reload drops the cache and repopulates it from the store.
	Reload(ctx context.Context) error
}
