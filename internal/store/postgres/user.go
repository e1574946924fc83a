package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	var email, pinHash *string

	err := r.pool.QueryRow(ctx,
		`SELECT user_id, name, email, credit_score, balance, pin_hash, created_at
		 FROM users WHERE user_id = $1`,
		userID,
	).Scan(&u.UserID, &u.Name, &email, &u.CreditScore, &u.Balance, &pinHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("userRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}

	u.Email = derefStr(email)
	u.PINHash = derefStr(pinHash)

	return &u, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
