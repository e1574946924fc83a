package banking

import (
	"context"
	"fmt"
	"time"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
)

const dateLayout = "2006-01-02"

// RecentTransactions returns the user's newest ledger entries.
func (s *Service) RecentTransactions(ctx context.Context, args map[string]any) (map[string]any, error) {
	userID := argString(args, "user_id")

	txns, err := s.txns.Recent(ctx, userID, argInt(args, "limit", 10))
	if err != nil {
		return nil, fmt.Errorf("banking.Service.RecentTransactions: %w", err)
	}

	return map[string]any{
		"user_id":      userID,
		"transactions": transactionRows(txns),
		"count":        len(txns),
	}, nil
}

// QueryTransactions runs a filtered ledger query.
func (s *Service) QueryTransactions(ctx context.Context, args map[string]any) (map[string]any, error) {
	filter := domain.TransactionFilter{
		UserID:   argString(args, "user_id"),
		Category: argString(args, "category"),
		Limit:    argInt(args, "limit", 100),
	}

	if v := argString(args, "start_date"); v != "" {
		start, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("banking.Service.QueryTransactions: bad start_date %q: %w", v, err)
		}
		filter.Start = start
	}
	if v := argString(args, "end_date"); v != "" {
		end, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("banking.Service.QueryTransactions: bad end_date %q: %w", v, err)
		}
		// Inclusive end date from the caller's point of view.
		filter.End = end.AddDate(0, 0, 1)
	}
	if v, ok := args["min_amount"].(float64); ok {
		filter.MinAmount, filter.HasMin = v, true
	}
	if v, ok := args["max_amount"].(float64); ok {
		filter.MaxAmount, filter.HasMax = v, true
	}

	txns, err := s.txns.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("banking.Service.QueryTransactions: %w", err)
	}

	return map[string]any{
		"user_id":      filter.UserID,
		"transactions": transactionRows(txns),
		"count":        len(txns),
	}, nil
}

// AggregateSpending groups spend over a trailing window by time period or by
// category.
func (s *Service) AggregateSpending(ctx context.Context, args map[string]any) (map[string]any, error) {
	userID := argString(args, "user_id")
	groupBy := argString(args, "group_by")
	days := argInt(args, "period_days", 30)

	var rows []any
	if groupBy == "category" {
		aggs, err := s.txns.AggregateByCategory(ctx, userID, days)
		if err != nil {
			return nil, fmt.Errorf("banking.Service.AggregateSpending: %w", err)
		}
		for _, a := range aggs {
			rows = append(rows, map[string]any{
				"category":          a.Category,
				"total_amount":      round2(a.Total),
				"transaction_count": a.Count,
				"avg_amount":        round2(a.Average),
				"min_amount":        a.Min,
				"max_amount":        a.Max,
			})
		}
	} else {
		aggs, err := s.txns.AggregateByPeriod(ctx, userID, groupBy, days)
		if err != nil {
			return nil, fmt.Errorf("banking.Service.AggregateSpending: %w", err)
		}
		for _, a := range aggs {
			rows = append(rows, map[string]any{
				"period":            a.Period.Format(dateLayout),
				"total_amount":      round2(a.Total),
				"transaction_count": a.Count,
			})
		}
	}

	return map[string]any{
		"user_id":     userID,
		"group_by":    groupBy,
		"period_days": days,
		"aggregates":  rows,
	}, nil
}

// SearchMerchants summarizes the user's history with merchants matching a
// name pattern, or all merchants when no pattern is given.
func (s *Service) SearchMerchants(ctx context.Context, args map[string]any) (map[string]any, error) {
	userID := argString(args, "user_id")
	pattern := argString(args, "merchant_name")

	stats, err := s.txns.MerchantSummary(ctx, userID, pattern)
	if err != nil {
		return nil, fmt.Errorf("banking.Service.SearchMerchants: %w", err)
	}

	rows := make([]any, 0, len(stats))
	for _, m := range stats {
		rows = append(rows, map[string]any{
			"merchant":          m.Merchant,
			"transaction_count": m.Count,
			"total_spent":       round2(m.Total),
			"avg_transaction":   round2(m.Average),
			"first_transaction": m.First.Format(dateLayout),
			"last_transaction":  m.Last.Format(dateLayout),
		})
	}

	return map[string]any{
		"user_id":   userID,
		"pattern":   pattern,
		"merchants": rows,
		"count":     len(rows),
	}, nil
}

func transactionRows(txns []domain.Transaction) []any {
	rows := make([]any, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, map[string]any{
			"transaction_id": t.ID,
			"date":           t.Date.Format(dateLayout),
			"merchant":       t.Merchant,
			"category":       t.Category,
			"amount":         t.Amount,
			"description":    t.Description,
		})
	}
	return rows
}
