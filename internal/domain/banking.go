package domain

import "time"

// User is a warehouse account holder row.
type User struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	CreditScore int       `json:"credit_score"`
	Balance     float64   `json:"account_balance"`
	PINHash     string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Transaction is one ledger entry. Amounts are positive for spend.
type Transaction struct {
	ID          string    `json:"transaction_id"`
	UserID      string    `json:"user_id"`
	Date        time.Time `json:"date"`
	Merchant    string    `json:"merchant"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
}

// Offer is a personalized financial product recommendation.
type Offer struct {
	ID          string    `json:"offer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	MatchScore  float64   `json:"match_score"`
	ValidUntil  time.Time `json:"valid_until"`
}

// ConversationEntry is one logged exchange, written best-effort after a turn.
type ConversationEntry struct {
	ID        string    `json:"conversation_id"`
	UserID    string    `json:"user_id"`
	UserText  string    `json:"user_message"`
	ReplyText string    `json:"ai_response"`
	Intent    string    `json:"intent"`
	CreatedAt time.Time `json:"timestamp"`
}

// TransactionFilter narrows a warehouse transaction query.
// Zero values mean "no constraint".
type TransactionFilter struct {
	UserID    string
	Start     time.Time
	End       time.Time
	Category  string
	MinAmount float64
	MaxAmount float64
	HasMin    bool
	HasMax    bool
	Limit     int
}

// CategoryAggregate summarizes spend grouped by category.
type CategoryAggregate struct {
	Category string  `json:"category"`
	Total    float64 `json:"total_amount"`
	Count    int     `json:"transaction_count"`
	Average  float64 `json:"avg_amount"`
	Min      float64 `json:"min_amount"`
	Max      float64 `json:"max_amount"`
}

// PeriodAggregate summarizes spend grouped by day, week, or month.
type PeriodAggregate struct {
	Period time.Time `json:"period"`
	Total  float64   `json:"total_amount"`
	Count  int       `json:"transaction_count"`
}

// CategoryStat carries the mean and standard deviation of amounts within
// one category, used for z-score anomaly scoring.
type CategoryStat struct {
	Category string
	Mean     float64
	StdDev   float64
}

// MerchantStat summarizes a user's history with one merchant.
type MerchantStat struct {
	Merchant string    `json:"merchant"`
	Count    int       `json:"transaction_count"`
	Total    float64   `json:"total_spent"`
	Average  float64   `json:"avg_transaction"`
	First    time.Time `json:"first_transaction"`
	Last     time.Time `json:"last_transaction"`
}
