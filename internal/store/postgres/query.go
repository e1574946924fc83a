package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryRepo runs ad-hoc warehouse queries with results flattened into
// generic rows. Keyword screening happens at the tool invoker, above this
// layer.
type QueryRepo struct {
	pool *pgxpool.Pool
}

func NewQueryRepo(pool *pgxpool.Pool) *QueryRepo {
	return &QueryRepo{pool: pool}
}

func (r *QueryRepo) Select(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("queryRepo.Select: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()

	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("queryRepo.Select: values: %w", err)
		}

		row := make(map[string]any, len(fields))
		for i, f := range fields {
			row[f.Name] = values[i]
		}
		out = append(out, row)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("queryRepo.Select: rows: %w", err)
	}

	return out, nil
}
