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

const needTableName = "intakedesk.needs"

var needColumns = utils.StructTagValues(types.Need{})

type NeedRepository struct {
	pool *pgxpool.Pool
}

func NewNeedRepository(pool *pgxpool.Pool) *NeedRepository {
	return &NeedRepository{pool: pool}
}

func (r *NeedRepository) CreateNeed(ctx context.Context, need *types.Need) error {

	now := time.Now()
	need.ID = utils.NanoID()
	need.CreatedAt = now
	need.UpdatedAt = now

	needMap := utils.StructToMap(need)

	query, args, err := psql().Insert(needTableName).SetMap(needMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert need query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create need")

}

func (r *NeedRepository) Need(ctx context.Context, needID string) (*types.Need, error) {

	query, args, err := psql().Select(needColumns...).From(needTableName).
		Where(sq.Eq{"id": needID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate need query: %w", err)
	}

	var need = new(types.Need)
	err = pgxscan.Get(ctx, r.pool, need, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNeedNotFound
		}
		return nil, fmt.Errorf("failed to fetch need: %w", err)
	}

	return need, nil

}

// NeedWithFiles loads a need and its attachments in one call. This is the
// shape the assessment engine consumes.
func (r *NeedRepository) NeedWithFiles(ctx context.Context, needID string) (*types.Need, []types.NeedFile, error) {

	need, err := r.Need(ctx, needID)
	if err != nil {
		return nil, nil, err
	}

	query, args, err := psql().Select(needFileColumns...).From(needFileTableName).
		Where(sq.Eq{"need_id": needID}).
		OrderBy("created_at asc").
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate need files query: %w", err)
	}

	var files = make([]types.NeedFile, 0)
	if err := pgxscan.Select(ctx, r.pool, &files, query, args...); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch need files: %w", err)
	}

	return need, files, nil

}

// NeedFilter narrows the admin listing. Archived selects soft-deleted rows
// instead of live ones; Page is 1-based.
type NeedFilter struct {
	Status   *types.NeedStatus
	Archived bool
	Page     uint64
	Limit    uint64
}

func (f *NeedFilter) normalize() {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
}

func (r *NeedRepository) Needs(ctx context.Context, filter NeedFilter) ([]*types.Need, uint64, error) {

	filter.normalize()

	where := sq.And{}
	if filter.Archived {
		where = append(where, sq.NotEq{"deleted_at": nil})
	} else {
		where = append(where, sq.Eq{"deleted_at": nil})
	}
	if filter.Status != nil {
		where = append(where, sq.Eq{"status": *filter.Status})
	}

	query, args, err := psql().Select(needColumns...).From(needTableName).
		Where(where).
		OrderBy("created_at desc").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate needs query: %w", err)
	}

	var needs = make([]*types.Need, 0)
	if err := pgxscan.Select(ctx, r.pool, &needs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch needs: %w", err)
	}

	countQuery, countArgs, err := psql().Select("count(*)").From(needTableName).
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate needs count query: %w", err)
	}

	var total uint64
	if err := pgxscan.Get(ctx, r.pool, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count needs: %w", err)
	}

	return needs, total, nil

}

// UpdateNeed applies the staff-editable fields only. Nil means leave the
// column untouched.
func (r *NeedRepository) UpdateNeed(ctx context.Context, needID string, status *types.NeedStatus, internalNotes *string) error {

	setMap := map[string]any{
		"updated_at": time.Now(),
	}
	if status != nil {
		setMap["status"] = *status
	}
	if internalNotes != nil {
		setMap["internal_notes"] = *internalNotes
	}

	query, args, err := psql().Update(needTableName).SetMap(setMap).Where(sq.Eq{"id": needID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update need query for need %s: %w", needID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update need")

}

func (r *NeedRepository) ArchiveNeed(ctx context.Context, needID string) error {
	return r.setDeletedAt(ctx, needID, utils.TimePtr(time.Now()))
}

func (r *NeedRepository) RestoreNeed(ctx context.Context, needID string) error {
	return r.setDeletedAt(ctx, needID, nil)
}

func (r *NeedRepository) setDeletedAt(ctx context.Context, needID string, deletedAt *time.Time) error {

	query, args, err := psql().Update(needTableName).
		SetMap(map[string]any{
			"deleted_at": deletedAt,
			"updated_at": time.Now(),
		}).
		Where(sq.Eq{"id": needID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate archive need query for need %s: %w", needID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to archive need")

}
