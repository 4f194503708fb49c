package repository

import (
	"context"
	"fmt"

	"stackpot/database"
	"stackpot/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// PoolStateRepository implements access to the singleton pool row
type PoolStateRepository struct {
	q Queryable
}

// NewPoolStateRepository creates a new pool state repository
func NewPoolStateRepository(db *database.DB) *PoolStateRepository {
	return &PoolStateRepository{q: db.Pool}
}

// NewPoolStateRepositoryScoped creates a new pool state repository bound to a transaction
func NewPoolStateRepositoryScoped(tx Queryable) *PoolStateRepository {
	return &PoolStateRepository{q: tx}
}

// Get returns the pool record, or nil if the pool was never created
func (r *PoolStateRepository) Get(ctx context.Context) (*entities.PoolStateRecord, error) {
	query := `
		SELECT owner, min_deposit, max_participants, instant_fee_bps, height, total_balance,
		       current_draw_id, last_draw_block, blocks_per_draw, total_prize_pool,
		       total_principal, staked_value, active_units, pending_units,
		       reserved_prizes, fees_paid, next_ticket_id, updated_at
		FROM pool_state
		WHERE id = 1
	`

	var rec entities.PoolStateRecord
	var minDeposit, totalBalance, prizePool pgtype.Numeric
	var principal, staked, active, pending, reserved, fees pgtype.Numeric

	err := r.q.QueryRow(ctx, query).Scan(
		&rec.Owner,
		&minDeposit,
		&rec.MaxParticipants,
		&rec.InstantFeeBps,
		&rec.Height,
		&totalBalance,
		&rec.Schedule.CurrentDrawID,
		&rec.Schedule.LastDrawBlock,
		&rec.Schedule.BlocksPerDraw,
		&prizePool,
		&principal,
		&staked,
		&active,
		&pending,
		&reserved,
		&fees,
		&rec.Position.NextTicketID,
		&rec.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool state: %w", err)
	}

	amounts := []struct {
		dst *entities.Amount
		src pgtype.Numeric
		col string
	}{
		{&rec.MinDeposit, minDeposit, "min_deposit"},
		{&rec.TotalBalance, totalBalance, "total_balance"},
		{&rec.Schedule.TotalPrizePool, prizePool, "total_prize_pool"},
		{&rec.Position.TotalPrincipal, principal, "total_principal"},
		{&rec.Position.StakedValue, staked, "staked_value"},
		{&rec.Position.ActiveUnits, active, "active_units"},
		{&rec.Position.PendingUnits, pending, "pending_units"},
		{&rec.Position.ReservedPrizes, reserved, "reserved_prizes"},
		{&rec.Position.FeesPaid, fees, "fees_paid"},
	}
	for _, a := range amounts {
		v, err := fromNumeric(a.src)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", a.col, err)
		}
		*a.dst = v
	}

	return &rec, nil
}

// Save writes the pool record, creating it on first use
func (r *PoolStateRepository) Save(ctx context.Context, rec *entities.PoolStateRecord) error {
	query := `
		INSERT INTO pool_state (
			id, owner, min_deposit, max_participants, instant_fee_bps, height, total_balance,
			current_draw_id, last_draw_block, blocks_per_draw, total_prize_pool,
			total_principal, staked_value, active_units, pending_units,
			reserved_prizes, fees_paid, next_ticket_id
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			height = EXCLUDED.height,
			total_balance = EXCLUDED.total_balance,
			current_draw_id = EXCLUDED.current_draw_id,
			last_draw_block = EXCLUDED.last_draw_block,
			blocks_per_draw = EXCLUDED.blocks_per_draw,
			total_prize_pool = EXCLUDED.total_prize_pool,
			total_principal = EXCLUDED.total_principal,
			staked_value = EXCLUDED.staked_value,
			active_units = EXCLUDED.active_units,
			pending_units = EXCLUDED.pending_units,
			reserved_prizes = EXCLUDED.reserved_prizes,
			fees_paid = EXCLUDED.fees_paid,
			next_ticket_id = EXCLUDED.next_ticket_id
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		rec.Owner,
		toNumeric(rec.MinDeposit),
		rec.MaxParticipants,
		rec.InstantFeeBps,
		rec.Height,
		toNumeric(rec.TotalBalance),
		rec.Schedule.CurrentDrawID,
		rec.Schedule.LastDrawBlock,
		rec.Schedule.BlocksPerDraw,
		toNumeric(rec.Schedule.TotalPrizePool),
		toNumeric(rec.Position.TotalPrincipal),
		toNumeric(rec.Position.StakedValue),
		toNumeric(rec.Position.ActiveUnits),
		toNumeric(rec.Position.PendingUnits),
		toNumeric(rec.Position.ReservedPrizes),
		toNumeric(rec.Position.FeesPaid),
		rec.Position.NextTicketID,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save pool state: %w", err)
	}

	return nil
}
