// Package postgres implements the warehouse repositories over a pgx pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
)

type Store struct {
	pool          *pgxpool.Pool
	users         *UserRepo
	transactions  *TransactionRepo
	offers        *OfferRepo
	conversations *ConversationRepo
	queries       *QueryRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:          pool,
		users:         NewUserRepo(pool),
		transactions:  NewTransactionRepo(pool),
		offers:        NewOfferRepo(pool),
		conversations: NewConversationRepo(pool),
		queries:       NewQueryRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Users() domain.UserRepository                 { return s.users }
func (s *Store) Transactions() domain.TransactionRepository   { return s.transactions }
func (s *Store) Offers() domain.OfferRepository               { return s.offers }
func (s *Store) Conversations() domain.ConversationRepository { return s.conversations }
func (s *Store) Queries() domain.QueryExecutor                { return s.queries }
