package assistant

import (
	"context"
	"fmt"
	"strings"
)

const genericFallback = "I'm sorry, I'm having trouble answering right now. Please try again in a moment."

// fallback assembles a best-effort reply from directly-available warehouse
// data when the model stream fails. Intent is keyed on simple keywords in
// the user's text; anything unrecognized gets the generic apology.
func (o *Orchestrator) fallback(ctx context.Context, userID, userText string) string {
	lower := strings.ToLower(userText)

	switch {
	case strings.Contains(lower, "balance"):
		user, err := o.users.GetByID(ctx, userID)
		if err == nil {
			return fmt.Sprintf("Your current balance is $%.2f.", user.Balance)
		}

	case strings.Contains(lower, "transaction"):
		txns, err := o.txns.Recent(ctx, userID, 3)
		if err == nil && len(txns) > 0 {
			parts := make([]string, 0, len(txns))
			for _, t := range txns {
				parts = append(parts, fmt.Sprintf("$%.2f at %s", t.Amount, t.Merchant))
			}
			return "Your latest transactions are " + strings.Join(parts, ", ") + "."
		}

	case strings.Contains(lower, "hello"), lower == "hi", strings.HasPrefix(lower, "hi "):
		return "Hello! I'm Nova, your banking assistant. How can I help you today?"
	}

	return genericFallback
}
