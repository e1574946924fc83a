// Package banking implements the warehouse-backed tool handlers the
// assistant can invoke: ledger queries, spend analytics, transfers, and the
// administrative raw-query escape hatch.
package banking

import (
	"fmt"
	"time"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
	"github.com/akashs101199/gcp-banking-personal-assistant/internal/tools"
)

// Service binds the tool handlers to the warehouse repositories.
type Service struct {
	users   domain.UserRepository
	txns    domain.TransactionRepository
	offers  domain.OfferRepository
	queries domain.QueryExecutor

	now func() time.Time
}

// New creates a Service over the warehouse repositories.
func New(users domain.UserRepository, txns domain.TransactionRepository, offers domain.OfferRepository, queries domain.QueryExecutor) *Service {
	return &Service{users: users, txns: txns, offers: offers, queries: queries, now: time.Now}
}

// Register adds every banking tool to the registry. The descriptor set is
// the capability contract advertised to the model and to the admin API.
func (s *Service) Register(reg *tools.Registry) error {
	userID := tools.Param{Type: tools.TypeString, Description: "The user's account ID", Required: true}

	for _, t := range []struct {
		desc    tools.Descriptor
		handler tools.Handler
	}{
		{
			desc: tools.Descriptor{
				Name:        "get_account_balance",
				Description: "Get the user's current account balance. Use this when the user asks how much money they have.",
				Params:      map[string]tools.Param{"user_id": userID},
			},
			handler: s.AccountBalance,
		},
		{
			desc: tools.Descriptor{
				Name:        "get_recent_transactions",
				Description: "Get the user's most recent transactions, newest first.",
				Params: map[string]tools.Param{
					"user_id": userID,
					"limit":   {Type: tools.TypeInteger, Description: "Number of transactions to retrieve", Default: 10},
				},
			},
			handler: s.RecentTransactions,
		},
		{
			desc: tools.Descriptor{
				Name:        "query_transactions",
				Description: "Query transaction data from the warehouse with filters.",
				Params: map[string]tools.Param{
					"user_id":    userID,
					"start_date": {Type: tools.TypeString, Description: "Start date in YYYY-MM-DD format"},
					"end_date":   {Type: tools.TypeString, Description: "End date in YYYY-MM-DD format"},
					"category":   {Type: tools.TypeString, Description: "Transaction category filter"},
					"min_amount": {Type: tools.TypeNumber, Description: "Minimum transaction amount"},
					"max_amount": {Type: tools.TypeNumber, Description: "Maximum transaction amount"},
					"limit":      {Type: tools.TypeInteger, Description: "Maximum number of results", Default: 100},
				},
			},
			handler: s.QueryTransactions,
		},
		{
			desc: tools.Descriptor{
				Name:        "aggregate_spending",
				Description: "Aggregate spending data by time period and category.",
				Params: map[string]tools.Param{
					"user_id":     userID,
					"group_by":    {Type: tools.TypeString, Description: "Grouping dimension", Required: true, Enum: []string{"day", "week", "month", "category"}},
					"period_days": {Type: tools.TypeInteger, Description: "Number of days to analyze", Default: 30},
				},
			},
			handler: s.AggregateSpending,
		},
		{
			desc: tools.Descriptor{
				Name:        "detect_anomalies",
				Description: "Detect unusual spending patterns or anomalous transactions.",
				Params: map[string]tools.Param{
					"user_id":     userID,
					"sensitivity": {Type: tools.TypeNumber, Description: "Anomaly detection sensitivity (1-10)", Default: float64(5)},
				},
			},
			handler: s.DetectAnomalies,
		},
		{
			desc: tools.Descriptor{
				Name:        "compare_spending",
				Description: "Compare user spending against average or previous periods.",
				Params: map[string]tools.Param{
					"user_id":         userID,
					"comparison_type": {Type: tools.TypeString, Description: "Type of comparison", Required: true, Enum: []string{"month_over_month", "year_over_year", "vs_average"}},
				},
			},
			handler: s.CompareSpending,
		},
		{
			desc: tools.Descriptor{
				Name:        "predict_cashflow",
				Description: "Predict future cashflow based on historical patterns.",
				Params: map[string]tools.Param{
					"user_id":       userID,
					"forecast_days": {Type: tools.TypeInteger, Description: "Number of days to forecast", Default: 30},
				},
			},
			handler: s.PredictCashflow,
		},
		{
			desc: tools.Descriptor{
				Name:        "search_merchants",
				Description: "Search and analyze merchant transaction patterns.",
				Params: map[string]tools.Param{
					"user_id":       userID,
					"merchant_name": {Type: tools.TypeString, Description: "Merchant name or pattern to search"},
				},
			},
			handler: s.SearchMerchants,
		},
		{
			desc: tools.Descriptor{
				Name:        "get_credit_insights",
				Description: "Get detailed credit score analysis and recommendations.",
				Params:      map[string]tools.Param{"user_id": userID},
			},
			handler: s.CreditInsights,
		},
		{
			desc: tools.Descriptor{
				Name:        "generate_report",
				Description: "Generate a comprehensive financial report.",
				Params: map[string]tools.Param{
					"user_id":     userID,
					"report_type": {Type: tools.TypeString, Description: "Type of report to generate", Required: true, Enum: []string{"monthly_summary", "annual_review", "spending_analysis", "tax_summary"}},
					"format":      {Type: tools.TypeString, Description: "Output format", Enum: []string{"json", "pdf", "csv"}, Default: "json"},
				},
			},
			handler: s.GenerateReport,
		},
		{
			desc: tools.Descriptor{
				Name:        "get_personalized_insights",
				Description: "Get AI-generated personalized financial insights.",
				Params: map[string]tools.Param{
					"user_id":      userID,
					"insight_type": {Type: tools.TypeString, Description: "Type of insight", Required: true, Enum: []string{"savings_opportunities", "budget_recommendations", "investment_suggestions"}},
				},
			},
			handler: s.PersonalizedInsights,
		},
		{
			desc: tools.Descriptor{
				Name:        "get_personalized_offers",
				Description: "Get personalized financial offers and recommendations for the user.",
				Params:      map[string]tools.Param{"user_id": userID},
			},
			handler: s.PersonalizedOffers,
		},
		{
			desc: tools.Descriptor{
				Name:        "transfer_funds",
				Description: "Transfer money between accounts. Requires user confirmation, and a PIN for high-value transfers.",
				Params: map[string]tools.Param{
					"user_id":      {Type: tools.TypeString, Description: "The user's account ID"},
					"from_account": {Type: tools.TypeString, Description: "Source account ID", Required: true},
					"to_account":   {Type: tools.TypeString, Description: "Destination account ID", Required: true},
					"amount":       {Type: tools.TypeNumber, Description: "Amount to transfer", Required: true},
					"confirmed":    {Type: tools.TypeBoolean, Description: "User confirmation flag", Default: false},
					"pin":          {Type: tools.TypeString, Description: "Security PIN for confirmation"},
				},
			},
			handler: s.TransferFunds,
		},
		{
			desc: tools.Descriptor{
				Name:        "pay_bill",
				Description: "Pay a bill to a named payee from one of the user's accounts.",
				Params: map[string]tools.Param{
					"payee":      {Type: tools.TypeString, Description: "Bill payee name", Required: true},
					"amount":     {Type: tools.TypeNumber, Description: "Payment amount", Required: true},
					"account_id": {Type: tools.TypeString, Description: "Account to pay from", Required: true},
					"confirmed":  {Type: tools.TypeBoolean, Description: "User confirmation flag", Default: false},
				},
			},
			handler: s.PayBill,
		},
		{
			desc: tools.Descriptor{
				Name:           "execute_sql_query",
				Description:    "Execute a custom read-only SQL query on the warehouse (admin only).",
				Administrative: true,
				Params: map[string]tools.Param{
					"query": {Type: tools.TypeString, Description: "SQL query to execute", Required: true},
				},
			},
			handler: s.ExecuteQuery,
		},
	} {
		if err := reg.Register(t.desc, t.handler); err != nil {
			return fmt.Errorf("banking.Service.Register: %w", err)
		}
	}

	return nil
}

// --- validated-argument accessors ---
//
// Arguments reach handlers after registry schema validation, so the type
// assertions below only guard against absent optional values.

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func argInt(args map[string]any, key string, fallback int) int {
	if n, ok := args[key].(int); ok {
		return n
	}
	return fallback
}

func argFloat(args map[string]any, key string, fallback float64) float64 {
	if f, ok := args[key].(float64); ok {
		return f
	}
	return fallback
}

func argBool(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}
