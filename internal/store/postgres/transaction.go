package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
)

type TransactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const txnColumns = `transaction_id, user_id, date, merchant, category, amount, description, status`

func (r *TransactionRepo) Recent(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txnColumns+`
		 FROM transactions WHERE user_id = $1
		 ORDER BY date DESC, transaction_id
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.Recent: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows, "transactionRepo.Recent")
}

func (r *TransactionRepo) Query(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error) {
	var (
		where = []string{"user_id = $1"}
		args  = []any{f.UserID}
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, clause+" $"+strconv.Itoa(len(args)))
	}

	if !f.Start.IsZero() {
		add("date >=", f.Start)
	}
	if !f.End.IsZero() {
		add("date <", f.End)
	}
	if f.Category != "" {
		add("category =", f.Category)
	}
	if f.HasMin {
		add("amount >=", f.MinAmount)
	}
	if f.HasMax {
		add("amount <=", f.MaxAmount)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	query := `SELECT ` + txnColumns + `
		 FROM transactions WHERE ` + strings.Join(where, " AND ") + `
		 ORDER BY date DESC, transaction_id
		 LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.Query: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows, "transactionRepo.Query")
}

func (r *TransactionRepo) Window(ctx context.Context, userID string, days int) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txnColumns+`
		 FROM transactions
		 WHERE user_id = $1 AND date >= now() - make_interval(days => $2)
		 ORDER BY date DESC, transaction_id`,
		userID, days,
	)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.Window: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows, "transactionRepo.Window")
}

func (r *TransactionRepo) AggregateByCategory(ctx context.Context, userID string, days int) ([]domain.CategoryAggregate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category, SUM(amount), COUNT(*), AVG(amount), MIN(amount), MAX(amount)
		 FROM transactions
		 WHERE user_id = $1 AND date >= now() - make_interval(days => $2)
		 GROUP BY category
		 ORDER BY SUM(amount) DESC`,
		userID, days,
	)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.AggregateByCategory: %w", err)
	}
	defer rows.Close()

	var aggs []domain.CategoryAggregate
	for rows.Next() {
		var a domain.CategoryAggregate
		err = rows.Scan(&a.Category, &a.Total, &a.Count, &a.Average, &a.Min, &a.Max)
		if err != nil {
			return nil, fmt.Errorf("transactionRepo.AggregateByCategory: scan: %w", err)
		}
		aggs = append(aggs, a)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.AggregateByCategory: rows: %w", err)
	}

	return aggs, nil
}

func (r *TransactionRepo) AggregateByPeriod(ctx context.Context, userID, groupBy string, days int) ([]domain.PeriodAggregate, error) {
	// groupBy comes from a closed enum validated upstream; reject anything
	// else rather than interpolating it.
	switch groupBy {
	case "day", "week", "month":
	default:
		return nil, fmt.Errorf("transactionRepo.AggregateByPeriod: bad group %q", groupBy)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT date_trunc($1, date) AS period, SUM(amount), COUNT(*)
		 FROM transactions
		 WHERE user_id = $2 AND date >= now() - make_interval(days => $3)
		 GROUP BY period
		 ORDER BY period`,
		groupBy, userID, days,
	)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.AggregateByPeriod: %w", err)
	}
	defer rows.Close()

	var aggs []domain.PeriodAggregate
	for rows.Next() {
		var a domain.PeriodAggregate
		err = rows.Scan(&a.Period, &a.Total, &a.Count)
		if err != nil {
			return nil, fmt.Errorf("transactionRepo.AggregateByPeriod: scan: %w", err)
		}
		aggs = append(aggs, a)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.AggregateByPeriod: rows: %w", err)
	}

	return aggs, nil
}

func (r *TransactionRepo) CategoryStats(ctx context.Context, userID string, days int) ([]domain.CategoryStat, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category, AVG(amount), COALESCE(STDDEV_SAMP(amount), 0)
		 FROM transactions
		 WHERE user_id = $1 AND date >= now() - make_interval(days => $2)
		 GROUP BY category`,
		userID, days,
	)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.CategoryStats: %w", err)
	}
	defer rows.Close()

	var stats []domain.CategoryStat
	for rows.Next() {
		var s domain.CategoryStat
		err = rows.Scan(&s.Category, &s.Mean, &s.StdDev)
		if err != nil {
			return nil, fmt.Errorf("transactionRepo.CategoryStats: scan: %w", err)
		}
		stats = append(stats, s)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.CategoryStats: rows: %w", err)
	}

	return stats, nil
}

func (r *TransactionRepo) AvgDailySpend(ctx context.Context, userID string, days int) (float64, error) {
	var avg *float64

	err := r.pool.QueryRow(ctx,
		`SELECT AVG(daily.total) FROM (
		     SELECT SUM(amount) AS total
		     FROM transactions
		     WHERE user_id = $1 AND date >= now() - make_interval(days => $2)
		     GROUP BY date_trunc('day', date)
		 ) daily`,
		userID, days,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("transactionRepo.AvgDailySpend: %w", err)
	}
	if avg == nil {
		return 0, fmt.Errorf("transactionRepo.AvgDailySpend: %w", domain.ErrInsufficientData)
	}

	return *avg, nil
}

func (r *TransactionRepo) Total(ctx context.Context, userID string, start, end time.Time) (float64, error) {
	var total float64

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM transactions
		 WHERE user_id = $1 AND date >= $2 AND date < $3`,
		userID, start, end,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("transactionRepo.Total: %w", err)
	}

	return total, nil
}

func (r *TransactionRepo) MonthlyTotals(ctx context.Context, userID string) ([]float64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT SUM(amount)
		 FROM transactions
		 WHERE user_id = $1
		 GROUP BY date_trunc('month', date)
		 ORDER BY date_trunc('month', date)`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.MonthlyTotals: %w", err)
	}
	defer rows.Close()

	var totals []float64
	for rows.Next() {
		var t float64
		err = rows.Scan(&t)
		if err != nil {
			return nil, fmt.Errorf("transactionRepo.MonthlyTotals: scan: %w", err)
		}
		totals = append(totals, t)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.MonthlyTotals: rows: %w", err)
	}

	return totals, nil
}

func (r *TransactionRepo) MerchantSummary(ctx context.Context, userID, pattern string) ([]domain.MerchantStat, error) {
	match := "%"
	if pattern != "" {
		match = "%" + pattern + "%"
	}

	rows, err := r.pool.Query(ctx,
		`SELECT merchant, COUNT(*), SUM(amount), AVG(amount), MIN(date), MAX(date)
		 FROM transactions
		 WHERE user_id = $1 AND merchant ILIKE $2
		 GROUP BY merchant
		 ORDER BY SUM(amount) DESC
		 LIMIT 50`,
		userID, match,
	)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.MerchantSummary: %w", err)
	}
	defer rows.Close()

	var stats []domain.MerchantStat
	for rows.Next() {
		var m domain.MerchantStat
		err = rows.Scan(&m.Merchant, &m.Count, &m.Total, &m.Average, &m.First, &m.Last)
		if err != nil {
			return nil, fmt.Errorf("transactionRepo.MerchantSummary: scan: %w", err)
		}
		stats = append(stats, m)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.MerchantSummary: rows: %w", err)
	}

	return stats, nil
}

func scanTransactions(rows pgx.Rows, op string) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var description *string

		err := rows.Scan(&t.ID, &t.UserID, &t.Date, &t.Merchant, &t.Category, &t.Amount, &description, &t.Status)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		t.Description = derefStr(description)
		txns = append(txns, t)
	}
	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return txns, nil
}
