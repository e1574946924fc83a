package banking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
)

func newRegistryForTest(t *testing.T, svc *Service) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	require.NoError(t, svc.Register(reg))
	return reg
}

type stubUserRepo struct {
	user *domain.User
	err  error
}

func (s *stubUserRepo) GetByID(context.Context, string) (*domain.User, error) {
	return s.user, s.err
}

type stubTxnRepo struct {
	recent     []domain.Transaction
	queried    []domain.Transaction
	window     []domain.Transaction
	byCategory []domain.CategoryAggregate
	byPeriod   []domain.PeriodAggregate
	stats      []domain.CategoryStat
	avgDaily   float64
	avgErr     error
	totals     []float64
	totalIdx   int
	monthly    []float64
}

func (s *stubTxnRepo) Recent(context.Context, string, int) ([]domain.Transaction, error) {
	return s.recent, nil
}

func (s *stubTxnRepo) Query(context.Context, domain.TransactionFilter) ([]domain.Transaction, error) {
	return s.queried, nil
}

func (s *stubTxnRepo) Window(context.Context, string, int) ([]domain.Transaction, error) {
	return s.window, nil
}

func (s *stubTxnRepo) AggregateByCategory(context.Context, string, int) ([]domain.CategoryAggregate, error) {
	return s.byCategory, nil
}

func (s *stubTxnRepo) AggregateByPeriod(context.Context, string, string, int) ([]domain.PeriodAggregate, error) {
	return s.byPeriod, nil
}

func (s *stubTxnRepo) CategoryStats(context.Context, string, int) ([]domain.CategoryStat, error) {
	return s.stats, nil
}

func (s *stubTxnRepo) AvgDailySpend(context.Context, string, int) (float64, error) {
	return s.avgDaily, s.avgErr
}

func (s *stubTxnRepo) Total(context.Context, string, time.Time, time.Time) (float64, error) {
	if s.totalIdx >= len(s.totals) {
		return 0, nil
	}
	v := s.totals[s.totalIdx]
	s.totalIdx++
	return v, nil
}

func (s *stubTxnRepo) MonthlyTotals(context.Context, string) ([]float64, error) {
	return s.monthly, nil
}

func (s *stubTxnRepo) MerchantSummary(context.Context, string, string) ([]domain.MerchantStat, error) {
	return nil, nil
}

type stubOfferRepo struct {
	offers []domain.Offer
}

func (s *stubOfferRepo) ActiveTop(context.Context, int) ([]domain.Offer, error) {
	return s.offers, nil
}

type stubQueryExecutor struct {
	rows []map[string]any
	err  error
}

func (s *stubQueryExecutor) Select(context.Context, string) ([]map[string]any, error) {
	return s.rows, s.err
}

func newTestService(users *stubUserRepo, txns *stubTxnRepo) *Service {
	if users == nil {
		users = &stubUserRepo{user: &domain.User{UserID: "demo_user", Name: "Alex", Balance: 5000}}
	}
	if txns == nil {
		txns = &stubTxnRepo{}
	}
	return &Service{
		users:   users,
		txns:    txns,
		offers:  &stubOfferRepo{},
		queries: &stubQueryExecutor{},
		now:     func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func TestPredictCashflow(t *testing.T) {
	t.Parallel()

	t.Run("negative projection reports risk", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(
			&stubUserRepo{user: &domain.User{UserID: "demo_user", Balance: 500}},
			&stubTxnRepo{avgDaily: 100},
		)

		out, err := svc.PredictCashflow(context.Background(), map[string]any{
			"user_id":       "demo_user",
			"forecast_days": 10,
		})

		require.NoError(t, err)
		assert.Equal(t, 100.0, out["avg_daily_spend"])
		assert.Equal(t, -500.0, out["projected_balance"])
		assert.Equal(t, "risk", out["status"])
	})

	t.Run("positive projection reports healthy", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(
			&stubUserRepo{user: &domain.User{UserID: "demo_user", Balance: 5000}},
			&stubTxnRepo{avgDaily: 40},
		)

		out, err := svc.PredictCashflow(context.Background(), map[string]any{
			"user_id":       "demo_user",
			"forecast_days": 30,
		})

		require.NoError(t, err)
		assert.Equal(t, "healthy", out["status"])
		assert.Equal(t, 3800.0, out["projected_balance"])
	})

	t.Run("empty history fails with insufficient data", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(nil, &stubTxnRepo{avgErr: domain.ErrInsufficientData})

		_, err := svc.PredictCashflow(context.Background(), map[string]any{"user_id": "demo_user"})

		assert.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}

func TestDetectAnomalies(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	txns := &stubTxnRepo{
		stats: []domain.CategoryStat{
			{Category: "Dining", Mean: 20, StdDev: 5},
		},
		window: []domain.Transaction{
			{ID: "t1", Date: day, Merchant: "Cafe", Category: "Dining", Amount: 25},
			{ID: "t2", Date: day, Merchant: "Steakhouse", Category: "Dining", Amount: 50},
			{ID: "t3", Date: day, Merchant: "Omakase", Category: "Dining", Amount: 120},
			{ID: "t4", Date: day, Merchant: "NewCorp", Category: "Unseen", Amount: 9999},
		},
	}
	svc := newTestService(nil, txns)

	out, err := svc.DetectAnomalies(context.Background(), map[string]any{
		"user_id":     "demo_user",
		"sensitivity": float64(5),
	})

	require.NoError(t, err)

	// Threshold is 3.0 - 5/10 = 2.5 deviations: t2 (z=6) and t3 (z=20)
	// qualify, t1 (z=1) does not, and t4 has no category baseline.
	anomalies := out["anomalies"].([]any)
	require.Len(t, anomalies, 2)

	first := anomalies[0].(map[string]any)
	second := anomalies[1].(map[string]any)
	assert.Equal(t, "t3", first["transaction_id"], "highest z-score first")
	assert.Equal(t, "high", first["severity"])
	assert.Equal(t, "t2", second["transaction_id"])
	assert.Equal(t, 6.0, second["z_score"])
}

func TestCompareSpending(t *testing.T) {
	t.Parallel()

	t.Run("month over month", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(nil, &stubTxnRepo{totals: []float64{1200, 1000}})

		out, err := svc.CompareSpending(context.Background(), map[string]any{
			"user_id":         "demo_user",
			"comparison_type": "month_over_month",
		})

		require.NoError(t, err)
		assert.Equal(t, 1200.0, out["current_period"])
		assert.Equal(t, 1000.0, out["comparison_period"])
		assert.Equal(t, 20.0, out["percent_change"])
		assert.Equal(t, "up", out["trend"])
	})

	t.Run("vs average uses monthly mean", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(nil, &stubTxnRepo{
			totals:  []float64{900},
			monthly: []float64{1000, 1100, 900},
		})

		out, err := svc.CompareSpending(context.Background(), map[string]any{
			"user_id":         "demo_user",
			"comparison_type": "vs_average",
		})

		require.NoError(t, err)
		assert.Equal(t, 900.0, out["current_period"])
		assert.Equal(t, 1000.0, out["comparison_period"])
		assert.Equal(t, "down", out["trend"])
	})

	t.Run("no prior spend fails with insufficient data", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(nil, &stubTxnRepo{totals: []float64{1200, 0}})

		_, err := svc.CompareSpending(context.Background(), map[string]any{
			"user_id":         "demo_user",
			"comparison_type": "month_over_month",
		})

		assert.ErrorIs(t, err, domain.ErrInsufficientData)
	})
}

func TestTransferFunds(t *testing.T) {
	t.Parallel()

	pinHash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &stubUserRepo{user: &domain.User{UserID: "demo_user", PINHash: string(pinHash)}}

	base := map[string]any{
		"user_id":      "demo_user",
		"from_account": "checking",
		"to_account":   "savings",
	}
	withArgs := func(extra map[string]any) map[string]any {
		args := make(map[string]any, len(base)+len(extra))
		for k, v := range base {
			args[k] = v
		}
		for k, v := range extra {
			args[k] = v
		}
		return args
	}

	t.Run("unconfirmed transfer is pending", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(users, nil)

		out, err := svc.TransferFunds(context.Background(), withArgs(map[string]any{
			"amount": 250.75, "confirmed": false,
		}))

		require.NoError(t, err)
		assert.Equal(t, "pending_confirmation", out["status"])
		assert.Equal(t, 250.75, out["amount"])
	})

	t.Run("confirmed small transfer completes without pin", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(users, nil)

		out, err := svc.TransferFunds(context.Background(), withArgs(map[string]any{
			"amount": 250.75, "confirmed": true,
		}))

		require.NoError(t, err)
		assert.Equal(t, "completed", out["status"])
		assert.Equal(t, 250.75, out["amount"])
		assert.NotEmpty(t, out["transaction_id"])
	})

	t.Run("high value transfer without pin fails", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(users, nil)

		out, err := svc.TransferFunds(context.Background(), withArgs(map[string]any{
			"amount": 5000.0, "confirmed": true,
		}))

		require.NoError(t, err)
		assert.Equal(t, "failed", out["status"])
		assert.Contains(t, out["error"], "PIN")
	})

	t.Run("high value transfer with wrong pin fails", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(users, nil)

		out, err := svc.TransferFunds(context.Background(), withArgs(map[string]any{
			"amount": 5000.0, "confirmed": true, "pin": "0000",
		}))

		require.NoError(t, err)
		assert.Equal(t, "failed", out["status"])
		assert.Contains(t, out["error"], "PIN")
	})

	t.Run("high value transfer with correct pin completes", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(users, nil)

		out, err := svc.TransferFunds(context.Background(), withArgs(map[string]any{
			"amount": 5000.0, "confirmed": true, "pin": "1234",
		}))

		require.NoError(t, err)
		assert.Equal(t, "completed", out["status"])
		assert.Equal(t, 5000.0, out["amount"])
	})

	t.Run("non-positive confirmed amount fails", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(users, nil)

		out, err := svc.TransferFunds(context.Background(), withArgs(map[string]any{
			"amount": -5.0, "confirmed": true,
		}))

		require.NoError(t, err)
		assert.Equal(t, "failed", out["status"])
	})

	t.Run("unconfirmed call is pending regardless of amount", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(users, nil)

		for _, amount := range []float64{-5.0, 0.0, 2500.0} {
			out, err := svc.TransferFunds(context.Background(), withArgs(map[string]any{
				"amount": amount, "confirmed": false,
			}))

			require.NoError(t, err)
			assert.Equal(t, "pending_confirmation", out["status"], "amount %v", amount)
		}
	})
}

func TestPayBill(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil, nil)
	args := map[string]any{
		"payee": "City Electric", "amount": 120.0, "account_id": "checking",
	}

	out, err := svc.PayBill(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, "pending_confirmation", out["status"])

	args["confirmed"] = true
	out, err = svc.PayBill(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, "completed", out["status"])
	assert.NotEmpty(t, out["payment_id"])
}

func TestCreditInsights_Bands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score  int
		rating string
	}{
		{810, "Excellent"},
		{750, "Excellent"},
		{700, "Good"},
		{670, "Good"},
		{640, "Fair"},
	}

	for _, tt := range tests {
		svc := newTestService(&stubUserRepo{user: &domain.User{UserID: "u", CreditScore: tt.score}}, nil)

		out, err := svc.CreditInsights(context.Background(), map[string]any{"user_id": "u"})

		require.NoError(t, err)
		assert.Equal(t, tt.rating, out["rating"], "score %d", tt.score)
		assert.NotEmpty(t, out["recommendations"])
	}
}

func TestRegister_AllToolsPresent(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil, nil)
	reg := newRegistryForTest(t, svc)

	descs := reg.Describe()
	names := make([]string, 0, len(descs))
	adminCount := 0
	for _, d := range descs {
		names = append(names, d.Name)
		if d.Administrative {
			adminCount++
		}
	}

	assert.Len(t, names, 15)
	assert.Contains(t, names, "get_account_balance")
	assert.Contains(t, names, "transfer_funds")
	assert.Contains(t, names, "execute_sql_query")
	assert.Equal(t, 1, adminCount, "only the raw query tool is administrative")
}
