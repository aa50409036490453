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

const needFileTableName = "intakedesk.need_files"

var needFileColumns = utils.StructTagValues(types.NeedFile{})

type NeedFileRepository struct {
	pool *pgxpool.Pool
}

func NewNeedFileRepository(pool *pgxpool.Pool) *NeedFileRepository {
	return &NeedFileRepository{pool: pool}
}

// CreateFile records attachment metadata. Rows are immutable after intake;
// there is no update path.
func (r *NeedFileRepository) CreateFile(ctx context.Context, file *types.NeedFile) error {

	file.ID = utils.NanoID()
	file.CreatedAt = time.Now()

	fileMap := utils.StructToMap(file)

	query, args, err := psql().Insert(needFileTableName).SetMap(fileMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert need file query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create need file")

}

func (r *NeedFileRepository) FilesByNeedID(ctx context.Context, needID string) ([]types.NeedFile, error) {

	query, args, err := psql().Select(needFileColumns...).From(needFileTableName).
		Where(sq.Eq{"need_id": needID}).
		OrderBy("created_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate need files query: %w", err)
	}

	var files = make([]types.NeedFile, 0)
	if err := pgxscan.Select(ctx, r.pool, &files, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch need files: %w", err)
	}

	return files, nil

}
