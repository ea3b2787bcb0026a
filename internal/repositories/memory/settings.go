package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

type settingsRepository struct {
	db access
}

var _ portsrepo.SettingsRepositoryFacade = (*settingsRepository)(nil)

func (r *settingsRepository) GetSetting(ctx context.Context, key string) (*domain.Setting, error) {
	var found *domain.Setting
	err := r.db.read(ctx, func(st *state) error {
		s, ok := st.settings[key]
		if !ok {
			return apperrors.NewNotFoundError("setting " + key)
		}
		found = &s
		return nil
	})
	return found, err
}

func (r *settingsRepository) ListSettings(ctx context.Context) ([]domain.Setting, error) {
	var out []domain.Setting
	err := r.db.read(ctx, func(st *state) error {
		for _, s := range st.settings {
			out = append(out, s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, err
}

func (r *settingsRepository) UpsertSetting(ctx context.Context, setting domain.Setting) error {
	return r.db.write(ctx, func(st *state) error {
		st.settings[setting.Key] = setting
		return nil
	})
}
