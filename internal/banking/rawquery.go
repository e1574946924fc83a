package banking

import (
	"context"
	"fmt"
)

// maxRawRows caps ad-hoc query results so a careless SELECT cannot flood
// the model context.
const maxRawRows = 100

// ExecuteQuery runs an ad-hoc read-only query against the warehouse. The
// tool is registered as administrative, so the invoker has already screened
// the query text for mutating keywords before this handler runs.
func (s *Service) ExecuteQuery(ctx context.Context, args map[string]any) (map[string]any, error) {
	query := argString(args, "query")

	rows, err := s.queries.Select(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("banking.Service.ExecuteQuery: %w", err)
	}

	truncated := false
	if len(rows) > maxRawRows {
		rows = rows[:maxRawRows]
		truncated = true
	}

	out := make([]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
	}

	return map[string]any{
		"rows":      out,
		"count":     len(out),
		"truncated": truncated,
	}, nil
}
