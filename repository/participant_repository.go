package repository

import (
	"context"
	"fmt"

	"stackpot/database"
	"stackpot/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ParticipantRepository implements participant data access
type ParticipantRepository struct {
	q Queryable
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *database.DB) *ParticipantRepository {
	return &ParticipantRepository{q: db.Pool}
}

// NewParticipantRepositoryScoped creates a new participant repository bound to a transaction
func NewParticipantRepositoryScoped(tx Queryable) *ParticipantRepository {
	return &ParticipantRepository{q: tx}
}

// GetAll returns every participant ordered by index
func (r *ParticipantRepository) GetAll(ctx context.Context) ([]*entities.Participant, error) {
	query := `
		SELECT idx, principal, balance, created_at, updated_at
		FROM participants
		ORDER BY idx
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []*entities.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return participants, nil
}

// GetByPrincipal retrieves a participant by principal
func (r *ParticipantRepository) GetByPrincipal(ctx context.Context, principal string) (*entities.Participant, error) {
	query := `
		SELECT idx, principal, balance, created_at, updated_at
		FROM participants
		WHERE principal = $1
	`

	p, err := scanParticipant(r.q.QueryRow(ctx, query, principal))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant %s: %w", principal, err)
	}

	return p, nil
}

// Upsert inserts a participant or updates its balance. The index of an
// existing principal never changes.
func (r *ParticipantRepository) Upsert(ctx context.Context, participant *entities.Participant) error {
	query := `
		INSERT INTO participants (idx, principal, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (idx) DO UPDATE
		SET balance = EXCLUDED.balance
		WHERE participants.principal = EXCLUDED.principal
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		participant.Index,
		participant.Principal,
		toNumeric(participant.Balance),
	).Scan(&participant.CreatedAt, &participant.UpdatedAt)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("participant index %d belongs to another principal", participant.Index)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert participant %s: %w", participant.Principal, err)
	}

	return nil
}

func scanParticipant(row pgx.Row) (*entities.Participant, error) {
	var p entities.Participant
	var balance pgtype.Numeric
	if err := row.Scan(&p.Index, &p.Principal, &balance, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	amount, err := fromNumeric(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance for participant %d: %w", p.Index, err)
	}
	p.Balance = amount
	return &p, nil
}
