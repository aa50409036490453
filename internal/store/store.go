// Package store holds the PostgreSQL repositories. Queries are built with
// squirrel and scanned with pgxscan; column lists come from the db struct
// tags on pkg/types.
package store

import (
	sq "github.com/Masterminds/squirrel"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}
