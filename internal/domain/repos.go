package domain

import (
	"context"
	"time"
)

// UserRepository reads account-holder rows from the warehouse.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*User, error)
}

// TransactionRepository reads ledger rows and aggregates from the warehouse.
// All queries are scoped to one user; the warehouse is treated as externally
// rate-limited and safe for concurrent reads.
type TransactionRepository interface {
	Recent(ctx context.Context, userID string, limit int) ([]Transaction, error)
	Query(ctx context.Context, filter TransactionFilter) ([]Transaction, error)

	// Window returns all transactions within the trailing number of days.
	Window(ctx context.Context, userID string, days int) ([]Transaction, error)

	AggregateByCategory(ctx context.Context, userID string, days int) ([]CategoryAggregate, error)
	AggregateByPeriod(ctx context.Context, userID, groupBy string, days int) ([]PeriodAggregate, error)

	// CategoryStats returns per-category mean/stddev over the trailing window.
	CategoryStats(ctx context.Context, userID string, days int) ([]CategoryStat, error)

	// AvgDailySpend returns the mean of daily spend totals over the trailing
	// window. Returns ErrInsufficientData when the window holds no rows.
	AvgDailySpend(ctx context.Context, userID string, days int) (float64, error)

	// Total sums spend in [start, end).
	Total(ctx context.Context, userID string, start, end time.Time) (float64, error)

	// MonthlyTotals returns the per-month spend totals across the user's
	// full history, for vs-average comparisons.
	MonthlyTotals(ctx context.Context, userID string) ([]float64, error)

	MerchantSummary(ctx context.Context, userID, pattern string) ([]MerchantStat, error)
}

// OfferRepository reads personalized offers.
type OfferRepository interface {
	ActiveTop(ctx context.Context, limit int) ([]Offer, error)
}

// ConversationRepository appends to the conversation log.
type ConversationRepository interface {
	Append(ctx context.Context, entry *ConversationEntry) error
}

// QueryExecutor runs a read-only ad-hoc SQL query against the warehouse.
// Mutation filtering happens above this boundary, at the tool invoker.
type QueryExecutor interface {
	Select(ctx context.Context, query string) ([]map[string]any, error)
}
