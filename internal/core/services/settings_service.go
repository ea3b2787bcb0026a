package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

// DefaultSettingsTTL bounds how long a cached value may lag a write made by another process.
const DefaultSettingsTTL = 5 * time.Minute

const fiscalYearLayout = "01-02"

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// settingsService is a read-through cache over the settings table. It is an explicit
// instance handed to the services that need it; there is no process-wide cache.
type settingsService struct {
	BaseService
	store portsrepo.Store
	cache portsrepo.SettingsCache
	ttl   time.Duration
}

type SettingsServiceOption func(*settingsService)

// WithSettingsTTL overrides DefaultSettingsTTL.
func WithSettingsTTL(ttl time.Duration) SettingsServiceOption {
	return func(s *settingsService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSettingsClock replaces the wall clock, mainly for tests.
func WithSettingsClock(now func() time.Time) SettingsServiceOption {
	return func(s *settingsService) {
		s.clock = now
	}
}

func NewSettingsService(store portsrepo.Store, cache portsrepo.SettingsCache, opts ...SettingsServiceOption) portssvc.SettingsSvcFacade {
	svc := &settingsService{store: store, cache: cache, ttl: DefaultSettingsTTL}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

var _ portssvc.SettingsSvcFacade = (*settingsService)(nil)

// Get consults the cache first. Cache failures are logged and the store answers instead.
func (s *settingsService) Get(ctx context.Context, key string) (string, bool, error) {
	if s.cache != nil {
		value, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.LogWarn(ctx, err, "Settings cache read failed", slog.String("key", key))
		} else if ok {
			return value, true, nil
		}
	}

	setting, err := s.store.Settings().GetSetting(ctx, key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to read setting", slog.String("key", key))
		return "", false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, setting.Value, s.ttl); err != nil {
			s.LogWarn(ctx, err, "Settings cache write failed", slog.String("key", key))
		}
	}
	return setting.Value, true, nil
}

func (s *settingsService) Set(ctx context.Context, key, value string, actorID string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return fmt.Errorf("%w: setting key is required", apperrors.ErrValidation)
	}
	if err := validateSetting(key, value); err != nil {
		s.LogWarn(ctx, err, "Rejected setting", slog.String("key", key))
		return err
	}

	setting := domain.Setting{Key: key, Value: value, LastUpdatedAt: s.Now(), LastUpdatedBy: actorID}
	if err := s.store.Settings().UpsertSetting(ctx, setting); err != nil {
		s.LogError(ctx, err, "Failed to save setting", slog.String("key", key))
		return err
	}
	if err := s.Invalidate(ctx, key); err != nil {
		return err
	}
	s.LogInfo(ctx, "Setting saved", slog.String("key", key))
	return nil
}

func validateSetting(key, value string) error {
	switch key {
	case domain.SettingBaseCurrency:
		if !currencyCode.MatchString(value) {
			return fmt.Errorf("%w: base currency must be a three-letter upper-case code", apperrors.ErrValidation)
		}
	case domain.SettingFiscalYearStart:
		if _, err := time.Parse(fiscalYearLayout, value); err != nil {
			return fmt.Errorf("%w: fiscal year start must be MM-DD", apperrors.ErrValidation)
		}
	}
	return nil
}

func (s *settingsService) ListSettings(ctx context.Context) ([]domain.Setting, error) {
	settings, err := s.store.Settings().ListSettings(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list settings")
		return nil, err
	}
	return settings, nil
}

func (s *settingsService) BaseCurrency(ctx context.Context) (string, error) {
	value, ok, err := s.Get(ctx, domain.SettingBaseCurrency)
	if err != nil {
		return "", err
	}
	if !ok || value == "" {
		return domain.DefaultBaseCurrency, nil
	}
	return value, nil
}

// FiscalYearStart defaults to January 1st when unset.
func (s *settingsService) FiscalYearStart(ctx context.Context, year int) (time.Time, error) {
	value, ok, err := s.Get(ctx, domain.SettingFiscalYearStart)
	if err != nil {
		return time.Time{}, err
	}
	if !ok || value == "" {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
	md, err := time.Parse(fiscalYearLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: stored fiscal year start %q is not MM-DD", apperrors.ErrValidation, value)
	}
	return time.Date(year, md.Month(), md.Day(), 0, 0, 0, 0, time.UTC), nil
}

func (s *settingsService) Invalidate(ctx context.Context, key string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.LogError(ctx, err, "Failed to invalidate cached setting", slog.String("key", key))
		return err
	}
	return nil
}

// Reload flushes the cache and warms it with every stored setting.
func (s *settingsService) Reload(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Flush(ctx); err != nil {
		s.LogError(ctx, err, "Failed to flush settings cache")
		return err
	}
	settings, err := s.store.Settings().ListSettings(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list settings for reload")
		return err
	}
	for _, setting := range settings {
		if err := s.cache.Set(ctx, setting.Key, setting.Value, s.ttl); err != nil {
			s.LogError(ctx, err, "Failed to warm settings cache", slog.String("key", setting.Key))
			return err
		}
	}
	s.LogInfo(ctx, "Settings cache reloaded", slog.Int("count", len(settings)))
	return nil
}
