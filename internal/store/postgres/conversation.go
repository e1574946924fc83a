package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/domain"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

func (r *ConversationRepo) Append(ctx context.Context, entry *domain.ConversationEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO conversations (conversation_id, user_id, user_message, ai_response, intent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.UserID, entry.UserText, entry.ReplyText,
		nilIfEmpty(entry.Intent), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("conversationRepo.Append: %w", err)
	}

	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
