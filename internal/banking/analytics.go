package banking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
)

// anomalyWindowDays is the trailing window scanned for outliers; the
// per-category baselines use a longer history so the baseline is stable.
const (
	anomalyWindowDays   = 30
	anomalyBaselineDays = 90
	anomalyResultLimit  = 20
)

// DetectAnomalies flags transactions whose amount deviates from the
// category baseline. Sensitivity 1-10 maps to a z-score threshold of
// 3.0 - sensitivity/10, so higher sensitivity flags smaller deviations.
func (s *Service) DetectAnomalies(ctx context.Context, args map[string]any) (map[string]any, error) {
	userID := argString(args, "user_id")
	sensitivity := argFloat(args, "sensitivity", 5)

	stats, err := s.txns.CategoryStats(ctx, userID, anomalyBaselineDays)
	if err != nil {
		return nil, fmt.Errorf("banking.Service.DetectAnomalies: %w", err)
	}
	baseline := make(map[string]domain.CategoryStat, len(stats))
	for _, st := range stats {
		baseline[st.Category] = st
	}

	window, err := s.txns.Window(ctx, userID, anomalyWindowDays)
	if err != nil {
		return nil, fmt.Errorf("banking.Service.DetectAnomalies: %w", err)
	}

	threshold := 3.0 - sensitivity/10

	type scored struct {
		row map[string]any
		z   float64
	}
	var found []scored
	for _, t := range window {
		st, ok := baseline[t.Category]
		if !ok || st.StdDev <= 0 {
			continue
		}
		deviation := math.Abs(t.Amount - st.Mean)
		if deviation <= st.StdDev*threshold {
			continue
		}
		z := deviation / st.StdDev
		severity := "medium"
		if z > 3 {
			severity = "high"
		}
		found = append(found, scored{z: z, row: map[string]any{
			"transaction_id": t.ID,
			"date":           t.Date.Format(dateLayout),
			"merchant":       t.Merchant,
			"category":       t.Category,
			"amount":         t.Amount,
			"category_avg":   round2(st.Mean),
			"z_score":        round2(z),
			"severity":       severity,
		}})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].z > found[j].z })
	if len(found) > anomalyResultLimit {
		found = found[:anomalyResultLimit]
	}

	rows := make([]any, 0, len(found))
	for _, f := range found {
		rows = append(rows, f.row)
	}

	return map[string]any{
		"user_id":     userID,
		"sensitivity": sensitivity,
		"anomalies":   rows,
		"count":       len(rows),
	}, nil
}

// CompareSpending contrasts the current period against the previous month,
// the same period last year, or the user's historical monthly average.
func (s *Service) CompareSpending(ctx context.Context, args map[string]any) (map[string]any, error) {
	userID := argString(args, "user_id")
	kind := argString(args, "comparison_type")
	now := s.now()

	var current, previous float64
	var err error

	switch kind {
	case "month_over_month":
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		prevStart := monthStart.AddDate(0, -1, 0)
		if current, err = s.txns.Total(ctx, userID, monthStart, now); err == nil {
			previous, err = s.txns.Total(ctx, userID, prevStart, monthStart)
		}
	case "year_over_year":
		start := now.AddDate(0, 0, -30)
		if current, err = s.txns.Total(ctx, userID, start, now); err == nil {
			previous, err = s.txns.Total(ctx, userID, start.AddDate(-1, 0, 0), now.AddDate(-1, 0, 0))
		}
	case "vs_average":
		if current, err = s.txns.Total(ctx, userID, now.AddDate(0, 0, -30), now); err == nil {
			var months []float64
			if months, err = s.txns.MonthlyTotals(ctx, userID); err == nil {
				previous = mean(months)
			}
		}
	default:
		return nil, fmt.Errorf("banking.Service.CompareSpending: unsupported comparison %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("banking.Service.CompareSpending: %w", err)
	}
	if previous == 0 {
		return nil, fmt.Errorf("banking.Service.CompareSpending: %w: no prior-period spend to compare against", domain.ErrInsufficientData)
	}

	change := (current - previous) / previous * 100
	trend := "flat"
	switch {
	case change > 1:
		trend = "up"
	case change < -1:
		trend = "down"
	}

	return map[string]any{
		"user_id":           userID,
		"comparison_type":   kind,
		"current_period":    round2(current),
		"comparison_period": round2(previous),
		"percent_change":    round2(change),
		"trend":             trend,
	}, nil
}

// PredictCashflow projects the balance forward from the trailing average
// daily spend. Status is "healthy" while the projected balance stays
// positive, "risk" otherwise.
func (s *Service) PredictCashflow(ctx context.Context, args map[string]any) (map[string]any, error) {
	userID := argString(args, "user_id")
	forecastDays := argInt(args, "forecast_days", 30)

	avgDaily, err := s.txns.AvgDailySpend(ctx, userID, 90)
	if err != nil {
		return nil, fmt.Errorf("banking.Service.PredictCashflow: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("banking.Service.PredictCashflow: %w", err)
	}

	predictedSpend := avgDaily * float64(forecastDays)
	projected := user.Balance - predictedSpend

	status := "healthy"
	if projected <= 0 {
		status = "risk"
	}

	return map[string]any{
		"user_id":           userID,
		"forecast_days":     forecastDays,
		"current_balance":   user.Balance,
		"avg_daily_spend":   round2(avgDaily),
		"predicted_spend":   round2(predictedSpend),
		"projected_balance": round2(projected),
		"status":            status,
	}, nil
}

// GenerateReport assembles a spending report over the window implied by the
// report type. PDF and CSV rendering are deferred to the caller; the payload
// always carries the structured data.
func (s *Service) GenerateReport(ctx context.Context, args map[string]any) (map[string]any, error) {
	userID := argString(args, "user_id")
	reportType := argString(args, "report_type")

	days := 30
	if reportType == "annual_review" || reportType == "tax_summary" {
		days = 365
	}

	byCategory, err := s.txns.AggregateByCategory(ctx, userID, days)
	if err != nil {
		return nil, fmt.Errorf("banking.Service.GenerateReport: %w", err)
	}

	var total float64
	summary := make([]any, 0, len(byCategory))
	for _, a := range byCategory {
		total += a.Total
		summary = append(summary, map[string]any{
			"category":          a.Category,
			"total_amount":      round2(a.Total),
			"transaction_count": a.Count,
		})
	}

	return map[string]any{
		"user_id":          userID,
		"report_type":      reportType,
		"format":           argString(args, "format"),
		"period_days":      days,
		"generated_at":     s.now().UTC().Format(time.RFC3339),
		"total_spend":      round2(total),
		"spending_summary": summary,
	}, nil
}

// PersonalizedInsights derives simple guidance from the user's aggregates.
func (s *Service) PersonalizedInsights(ctx context.Context, args map[string]any) (map[string]any, error) {
	userID := argString(args, "user_id")
	insightType := argString(args, "insight_type")

	out := map[string]any{
		"user_id":      userID,
		"insight_type": insightType,
	}

	switch insightType {
	case "savings_opportunities":
		byCategory, err := s.txns.AggregateByCategory(ctx, userID, 30)
		if err != nil {
			return nil, fmt.Errorf("banking.Service.PersonalizedInsights: %w", err)
		}
		sort.Slice(byCategory, func(i, j int) bool { return byCategory[i].Total > byCategory[j].Total })
		if len(byCategory) > 3 {
			byCategory = byCategory[:3]
		}
		insights := make([]any, 0, len(byCategory))
		for _, a := range byCategory {
			insights = append(insights, fmt.Sprintf(
				"You spent $%.2f on %s this month across %d transactions. Trimming 10%% would save $%.2f.",
				a.Total, a.Category, a.Count, a.Total*0.1))
		}
		out["insights"] = insights

	case "budget_recommendations":
		byCategory, err := s.txns.AggregateByCategory(ctx, userID, 30)
		if err != nil {
			return nil, fmt.Errorf("banking.Service.PersonalizedInsights: %w", err)
		}
		budgets := make([]any, 0, len(byCategory))
		var total float64
		for _, a := range byCategory {
			total += a.Total
			budgets = append(budgets, map[string]any{
				"category":         a.Category,
				"current_spend":    round2(a.Total),
				"suggested_budget": round2(a.Total * 0.9),
			})
		}
		out["total_monthly_spend"] = round2(total)
		out["budgets"] = budgets

	case "investment_suggestions":
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("banking.Service.PersonalizedInsights: %w", err)
		}
		investable := user.Balance * 0.2
		out["current_balance"] = user.Balance
		out["investable_amount"] = round2(investable)
		out["suggestion"] = fmt.Sprintf(
			"Keeping an emergency buffer, you could invest around $%.2f. Consider a diversified index fund or a high-yield savings account.",
			investable)

	default:
		return nil, fmt.Errorf("banking.Service.PersonalizedInsights: unsupported insight type %q", insightType)
	}

	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
