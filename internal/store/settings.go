package store

import (
	"context"
	"fmt"
	"time"

	"intakedesk/internal/utils"
	"intakedesk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settingsTableName = "intakedesk.app_settings"

var settingsColumns = utils.StructTagValues(types.AppSettings{})

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Settings returns the single settings row, creating it on first access.
func (r *SettingsRepository) Settings(ctx context.Context) (*types.AppSettings, error) {

	query, args, err := psql().Select(settingsColumns...).From(settingsTableName).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate settings query: %w", err)
	}

	var settings = new(types.AppSettings)
	err = pgxscan.Get(ctx, r.pool, settings, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}

	if err != nil {
		settings = &types.AppSettings{MaintenanceMode: false}
		if err := r.createSettings(ctx, settings); err != nil {
			return nil, err
		}
	}

	return settings, nil

}

func (r *SettingsRepository) createSettings(ctx context.Context, settings *types.AppSettings) error {

	settings.ID = utils.NanoID()
	settings.UpdatedAt = time.Now()

	query, args, err := psql().Insert(settingsTableName).SetMap(utils.StructToMap(settings)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert settings query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create settings")

}

func (r *SettingsRepository) SetMaintenanceMode(ctx context.Context, enabled bool) (*types.AppSettings, error) {

	settings, err := r.Settings(ctx)
	if err != nil {
		return nil, err
	}

	settings.MaintenanceMode = enabled
	settings.UpdatedAt = time.Now()

	query, args, err := psql().Update(settingsTableName).
		SetMap(map[string]any{
			"maintenance_mode": enabled,
			"updated_at":       settings.UpdatedAt,
		}).
		Where(sq.Eq{"id": settings.ID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update settings query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return nil, utils.ErrorWrapOrNil(err, "failed to update settings")
	}

	return settings, nil

}
