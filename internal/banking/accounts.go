package banking

import (
	"context"
	"fmt"
)

// AccountBalance returns the user's current balance.
func (s *Service) AccountBalance(ctx context.Context, args map[string]any) (map[string]any, error) {
	user, err := s.users.GetByID(ctx, argString(args, "user_id"))
	if err != nil {
		return nil, fmt.Errorf("banking.Service.AccountBalance: %w", err)
	}

	return map[string]any{
		"user_id":  user.UserID,
		"name":     user.Name,
		"balance":  user.Balance,
		"currency": "USD",
	}, nil
}

// CreditInsights bands the user's credit score and attaches improvement
// recommendations for the lower bands.
func (s *Service) CreditInsights(ctx context.Context, args map[string]any) (map[string]any, error) {
	user, err := s.users.GetByID(ctx, argString(args, "user_id"))
	if err != nil {
		return nil, fmt.Errorf("banking.Service.CreditInsights: %w", err)
	}

	rating, recommendations := creditBand(user.CreditScore)

	return map[string]any{
		"user_id":         user.UserID,
		"credit_score":    user.CreditScore,
		"rating":          rating,
		"recommendations": recommendations,
	}, nil
}

func creditBand(score int) (string, []string) {
	switch {
	case score >= 750:
		return "Excellent", []string{
			"You qualify for the best rates on loans and credit cards",
			"Consider premium rewards cards",
		}
	case score >= 670:
		return "Good", []string{
			"Keep credit utilization below 30%",
			"Continue making on-time payments to reach the excellent band",
		}
	default:
		return "Fair", []string{
			"Pay down existing balances to reduce utilization",
			"Set up automatic payments to avoid missed due dates",
			"Avoid opening multiple new accounts in a short period",
		}
	}
}

// PersonalizedOffers returns the top active offers for the user.
func (s *Service) PersonalizedOffers(ctx context.Context, args map[string]any) (map[string]any, error) {
	offers, err := s.offers.ActiveTop(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("banking.Service.PersonalizedOffers: %w", err)
	}

	out := make([]any, 0, len(offers))
	for _, o := range offers {
		out = append(out, map[string]any{
			"offer_id":    o.ID,
			"title":       o.Title,
			"description": o.Description,
			"category":    o.Category,
			"match_score": o.MatchScore,
		})
	}

	return map[string]any{
		"user_id": argString(args, "user_id"),
		"offers":  out,
		"count":   len(out),
	}, nil
}
