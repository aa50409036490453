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

const needAnalysisTableName = "intakedesk.need_analyses"

var needAnalysisColumns = utils.StructTagValues(types.NeedAnalysis{})

type NeedAnalysisRepository struct {
	pool *pgxpool.Pool
}

func NewNeedAnalysisRepository(pool *pgxpool.Pool) *NeedAnalysisRepository {
	return &NeedAnalysisRepository{pool: pool}
}

// CreateAnalysis appends an analysis run. Rows are never mutated or deleted;
// the latest one wins for display.
func (r *NeedAnalysisRepository) CreateAnalysis(ctx context.Context, analysis *types.NeedAnalysis) error {

	analysis.ID = utils.NanoID()
	analysis.CreatedAt = time.Now()

	analysisMap := utils.StructToMap(analysis)

	query, args, err := psql().Insert(needAnalysisTableName).SetMap(analysisMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert analysis query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create analysis")

}

// LatestAnalysis returns the most recent run for a need, or nil when the
// need has not been analyzed yet.
func (r *NeedAnalysisRepository) LatestAnalysis(ctx context.Context, needID string) (*types.NeedAnalysis, error) {

	query, args, err := psql().Select(needAnalysisColumns...).From(needAnalysisTableName).
		Where(sq.Eq{"need_id": needID}).
		OrderBy("created_at desc").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate latest analysis query: %w", err)
	}

	var analysis = new(types.NeedAnalysis)
	err = pgxscan.Get(ctx, r.pool, analysis, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch latest analysis: %w", err)
	}

	return analysis, nil

}

func (r *NeedAnalysisRepository) AnalysesByNeedID(ctx context.Context, needID string) ([]*types.NeedAnalysis, error) {

	query, args, err := psql().Select(needAnalysisColumns...).From(needAnalysisTableName).
		Where(sq.Eq{"need_id": needID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate analyses query: %w", err)
	}

	var analyses = make([]*types.NeedAnalysis, 0)
	if err := pgxscan.Select(ctx, r.pool, &analyses, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch analyses: %w", err)
	}

	return analyses, nil

}
