package repository

import (
	"context"
	"fmt"

	"stackpot/database"
	"stackpot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// ProcessedMessageRepository implements inbound message deduplication
type ProcessedMessageRepository struct {
	q Queryable
}

// NewProcessedMessageRepository creates a new processed message repository
func NewProcessedMessageRepository(db *database.DB) *ProcessedMessageRepository {
	return &ProcessedMessageRepository{q: db.Pool}
}

// NewProcessedMessageRepositoryScoped creates a new processed message repository bound to a transaction
func NewProcessedMessageRepositoryScoped(tx Queryable) *ProcessedMessageRepository {
	return &ProcessedMessageRepository{q: tx}
}

// Record stores the message id unless it is already present
func (r *ProcessedMessageRepository) Record(ctx context.Context, message *entities.ProcessedMessage) (bool, error) {
	query := `
		INSERT INTO processed_messages (message_id, source, block)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id) DO NOTHING
		RETURNING processed_at
	`

	err := r.q.QueryRow(ctx, query, message.ID, string(message.Source), message.Block).Scan(&message.ProcessedAt)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to record message %s: %w", message.ID, err)
	}

	return true, nil
}

// GetByID retrieves a recorded message
func (r *ProcessedMessageRepository) GetByID(ctx context.Context, id string) (*entities.ProcessedMessage, error) {
	query := `
		SELECT message_id, source, block, processed_at
		FROM processed_messages
		WHERE message_id = $1
	`

	var message entities.ProcessedMessage
	var source string
	err := r.q.QueryRow(ctx, query, id).Scan(&message.ID, &source, &message.Block, &message.ProcessedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	message.Source = entities.MessageSource(source)

	return &message, nil
}
