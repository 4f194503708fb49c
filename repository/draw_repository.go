package repository

import (
	"context"
	"fmt"

	"stackpot/database"
	"stackpot/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// DrawRepository implements draw data access
type DrawRepository struct {
	q Queryable
}

// NewDrawRepository creates a new draw repository
func NewDrawRepository(db *database.DB) *DrawRepository {
	return &DrawRepository{q: db.Pool}
}

// NewDrawRepositoryScoped creates a new draw repository bound to a transaction
func NewDrawRepositoryScoped(tx Queryable) *DrawRepository {
	return &DrawRepository{q: tx}
}

const drawColumns = `
	id, draw_block, entropy_block, winner, winner_index, prize_amount,
	participants_count, active_participants, total_shares, winner_balance,
	seed, proof, claimed, claimed_at_block, prize_paid, created_at
`

// Create records an executed draw
func (r *DrawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	query := `
		INSERT INTO draws (
			id, draw_block, entropy_block, winner, winner_index, prize_amount,
			participants_count, active_participants, total_shares, winner_balance,
			seed, proof, claimed, claimed_at_block, prize_paid
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		draw.ID,
		draw.DrawBlock,
		draw.EntropyBlock,
		draw.Winner,
		draw.WinnerIndex,
		toNumeric(draw.PrizeAmount),
		draw.ParticipantsCount,
		draw.ActiveParticipants,
		toNumeric(draw.TotalShares),
		toNumeric(draw.WinnerBalance),
		draw.Seed[:],
		draw.Proof,
		draw.Claimed,
		draw.ClaimedAtBlock,
		optionalNumeric(draw.PrizePaid),
	).Scan(&draw.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draw %d: %w", draw.ID, err)
	}

	return nil
}

// GetByID retrieves a draw by its ID
func (r *DrawRepository) GetByID(ctx context.Context, id uint64) (*entities.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE id = $1`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw by ID %d: %w", id, err)
	}

	return draw, nil
}

// GetAll returns every draw ordered by ID
func (r *DrawRepository) GetAll(ctx context.Context) ([]*entities.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws ORDER BY id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws: %w", err)
	}
	defer rows.Close()

	var draws []*entities.Draw
	for rows.Next() {
		draw, err := scanDraw(rows)
		if err != nil {
			return nil, err
		}
		draws = append(draws, draw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draws: %w", err)
	}

	return draws, nil
}

// MarkClaimed flips the claim flag of an unclaimed draw and stores the payout
func (r *DrawRepository) MarkClaimed(ctx context.Context, id uint64, height uint64, paid entities.Amount) error {
	query := `
		UPDATE draws
		SET claimed = TRUE, claimed_at_block = $2, prize_paid = $3
		WHERE id = $1 AND NOT claimed
	`

	result, err := r.q.Exec(ctx, query, id, height, toNumeric(paid))
	if err != nil {
		return fmt.Errorf("failed to mark draw %d claimed: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("draw %d not found or already claimed", id)
	}

	return nil
}

func scanDraw(row pgx.Row) (*entities.Draw, error) {
	var draw entities.Draw
	var prize, totalShares, winnerBalance, paid pgtype.Numeric
	var seed []byte

	err := row.Scan(
		&draw.ID,
		&draw.DrawBlock,
		&draw.EntropyBlock,
		&draw.Winner,
		&draw.WinnerIndex,
		&prize,
		&draw.ParticipantsCount,
		&draw.ActiveParticipants,
		&totalShares,
		&winnerBalance,
		&seed,
		&draw.Proof,
		&draw.Claimed,
		&draw.ClaimedAtBlock,
		&paid,
		&draw.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(seed) != len(draw.Seed) {
		return nil, fmt.Errorf("draw %d has a %d byte seed", draw.ID, len(seed))
	}
	copy(draw.Seed[:], seed)

	if draw.PrizeAmount, err = fromNumeric(prize); err != nil {
		return nil, fmt.Errorf("invalid prize for draw %d: %w", draw.ID, err)
	}
	if draw.TotalShares, err = fromNumeric(totalShares); err != nil {
		return nil, fmt.Errorf("invalid total shares for draw %d: %w", draw.ID, err)
	}
	if draw.WinnerBalance, err = fromNumeric(winnerBalance); err != nil {
		return nil, fmt.Errorf("invalid winner balance for draw %d: %w", draw.ID, err)
	}
	if draw.PrizePaid, err = nullableAmount(paid); err != nil {
		return nil, fmt.Errorf("invalid prize paid for draw %d: %w", draw.ID, err)
	}

	return &draw, nil
}
