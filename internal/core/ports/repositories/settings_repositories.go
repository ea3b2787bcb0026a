package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

type SettingsRepositoryFacade interface {
	// GetSetting returns apperrors.ErrNotFound when the key is unset.
	GetSetting(ctx context.Context, key string) (*domain.Setting, error)
	ListSettings(ctx context.Context) ([]domain.Setting, error)
	UpsertSetting(ctx context.Context, setting domain.Setting) error
}

// SettingsCache is the read-through cache in front of the settings table.
type SettingsCache interface {
	// Get reports a miss with ok == false.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Flush drops every cached setting.
	Flush(ctx context.Context) error
}
