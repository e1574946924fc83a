package banking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// pinThreshold is the transfer amount above which a security PIN is
// required in addition to confirmation.
const pinThreshold = 1000.0

// TransferFunds moves money between accounts. The flow is two-phase: the
// first call comes back pending_confirmation, and only a confirmed call
// executes. High-value transfers additionally require the user's PIN.
// Status is always carried in the payload so the model can narrate it; a
// declined transfer is not a handler error.
func (s *Service) TransferFunds(ctx context.Context, args map[string]any) (map[string]any, error) {
	from := argString(args, "from_account")
	to := argString(args, "to_account")
	amount := argFloat(args, "amount", 0)

	// Confirmation is checked first: an unconfirmed call is always
	// pending_confirmation, whatever the amount.
	if !argBool(args, "confirmed") {
		return map[string]any{
			"status":       "pending_confirmation",
			"from_account": from,
			"to_account":   to,
			"amount":       amount,
			"message":      fmt.Sprintf("Please confirm the transfer of $%.2f from %s to %s.", amount, from, to),
		}, nil
	}

	if amount <= 0 {
		return map[string]any{
			"status": "failed",
			"error":  "transfer amount must be positive",
		}, nil
	}

	if amount > pinThreshold {
		if err := s.verifyPIN(ctx, argString(args, "user_id"), argString(args, "pin")); err != nil {
			return map[string]any{
				"status": "failed",
				"error":  "invalid or missing PIN for high-value transfer",
			}, nil
		}
	}

	return map[string]any{
		"status":         "completed",
		"transaction_id": uuid.NewString(),
		"from_account":   from,
		"to_account":     to,
		"amount":         amount,
		"message":        fmt.Sprintf("Transferred $%.2f from %s to %s.", amount, from, to),
	}, nil
}

func (s *Service) verifyPIN(ctx context.Context, userID, pin string) error {
	if pin == "" {
		return fmt.Errorf("banking.Service.verifyPIN: missing pin")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("banking.Service.verifyPIN: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)); err != nil {
		return fmt.Errorf("banking.Service.verifyPIN: %w", err)
	}
	return nil
}

// PayBill pays a named payee from one of the user's accounts. Like
// TransferFunds it requires an explicit confirmed call to execute.
func (s *Service) PayBill(_ context.Context, args map[string]any) (map[string]any, error) {
	payee := argString(args, "payee")
	amount := argFloat(args, "amount", 0)
	account := argString(args, "account_id")

	if !argBool(args, "confirmed") {
		return map[string]any{
			"status":  "pending_confirmation",
			"payee":   payee,
			"amount":  amount,
			"message": fmt.Sprintf("Please confirm the payment of $%.2f to %s from account %s.", amount, payee, account),
		}, nil
	}

	if amount <= 0 {
		return map[string]any{
			"status": "failed",
			"error":  "payment amount must be positive",
		}, nil
	}

	return map[string]any{
		"status":     "completed",
		"payment_id": uuid.NewString(),
		"payee":      payee,
		"account_id": account,
		"amount":     amount,
		"message":    fmt.Sprintf("Paid $%.2f to %s.", amount, payee),
	}, nil
}
