package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
)

type OfferRepo struct {
	pool *pgxpool.Pool
}

func NewOfferRepo(pool *pgxpool.Pool) *OfferRepo {
	return &OfferRepo{pool: pool}
}

func (r *OfferRepo) ActiveTop(ctx context.Context, limit int) ([]domain.Offer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT offer_id, title, description, category, match_score, valid_until
		 FROM offers
		 WHERE valid_until > now()
		 ORDER BY match_score DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("offerRepo.ActiveTop: %w", err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		var o domain.Offer
		err = rows.Scan(&o.ID, &o.Title, &o.Description, &o.Category, &o.MatchScore, &o.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("offerRepo.ActiveTop: scan: %w", err)
		}
		offers = append(offers, o)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("offerRepo.ActiveTop: rows: %w", err)
	}

	return offers, nil
}
