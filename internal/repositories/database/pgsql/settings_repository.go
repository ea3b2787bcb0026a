package pgsql

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxSettingsRepository struct {
	BaseRepository
}

var _ portsrepo.SettingsRepositoryFacade = (*PgxSettingsRepository)(nil)

func scanSetting(row pgx.Row) (domain.Setting, error) {
	var s domain.Setting
	err := row.Scan(&s.Key, &s.Value, &s.LastUpdatedAt, &s.LastUpdatedBy)
	s.LastUpdatedAt = s.LastUpdatedAt.UTC()
	return s, err
}

func (r *PgxSettingsRepository) GetSetting(ctx context.Context, key string) (*domain.Setting, error) {
	s, err := scanSetting(r.db.QueryRow(ctx, `SELECT key, value, last_updated_at, last_updated_by FROM settings WHERE key = $1;`, key))
	if err != nil {
		return nil, mapError(err, "setting "+key)
	}
	return &s, nil
}

func (r *PgxSettingsRepository) ListSettings(ctx context.Context) ([]domain.Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value, last_updated_at, last_updated_by FROM settings ORDER BY key;`)
	if err != nil {
		return nil, mapError(err, "settings")
	}
	settings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Setting, error) {
		return scanSetting(row)
	})
	if err != nil {
		return nil, mapError(err, "settings")
	}
	return settings, nil
}

func (r *PgxSettingsRepository) UpsertSetting(ctx context.Context, setting domain.Setting) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (key, value, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;`,
		setting.Key, setting.Value, setting.LastUpdatedAt, setting.LastUpdatedBy)
	return mapError(err, "setting "+setting.Key)
}
