package repository

import (
	"context"
	"fmt"

	"stackpot/database"
	"stackpot/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// WithdrawalTicketRepository implements withdrawal ticket data access
type WithdrawalTicketRepository struct {
	q Queryable
}

// NewWithdrawalTicketRepository creates a new withdrawal ticket repository
func NewWithdrawalTicketRepository(db *database.DB) *WithdrawalTicketRepository {
	return &WithdrawalTicketRepository{q: db.Pool}
}

// NewWithdrawalTicketRepositoryScoped creates a new withdrawal ticket repository bound to a transaction
func NewWithdrawalTicketRepositoryScoped(tx Queryable) *WithdrawalTicketRepository {
	return &WithdrawalTicketRepository{q: tx}
}

const ticketColumns = `id, owner, units, status, created_block, completed_block, payout, created_at`

// Create records a newly issued ticket
func (r *WithdrawalTicketRepository) Create(ctx context.Context, ticket *entities.WithdrawalTicket) error {
	query := `
		INSERT INTO withdrawal_tickets (id, owner, units, status, created_block)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		ticket.ID,
		ticket.Owner,
		toNumeric(ticket.Units),
		string(ticket.Status),
		ticket.CreatedBlock,
	).Scan(&ticket.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal ticket %d: %w", ticket.ID, err)
	}

	return nil
}

// GetByID retrieves a ticket in any status
func (r *WithdrawalTicketRepository) GetByID(ctx context.Context, id uint64) (*entities.WithdrawalTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM withdrawal_tickets WHERE id = $1`

	ticket, err := scanTicket(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal ticket %d: %w", id, err)
	}

	return ticket, nil
}

// GetPending returns tickets that can still be completed
func (r *WithdrawalTicketRepository) GetPending(ctx context.Context) ([]*entities.WithdrawalTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM withdrawal_tickets WHERE status = 'pending' ORDER BY id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending withdrawal tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*entities.WithdrawalTicket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawal tickets: %w", err)
	}

	return tickets, nil
}

// Complete marks a pending ticket as redeemed with its payout
func (r *WithdrawalTicketRepository) Complete(ctx context.Context, id uint64, height uint64, payout entities.Amount) error {
	query := `
		UPDATE withdrawal_tickets
		SET status = 'completed', completed_block = $2, payout = $3, completed_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, id, height, toNumeric(payout))
	if err != nil {
		return fmt.Errorf("failed to complete withdrawal ticket %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal ticket %d is not pending", id)
	}

	return nil
}

func scanTicket(row pgx.Row) (*entities.WithdrawalTicket, error) {
	var ticket entities.WithdrawalTicket
	var units, payout pgtype.Numeric
	var status string

	err := row.Scan(
		&ticket.ID,
		&ticket.Owner,
		&units,
		&status,
		&ticket.CreatedBlock,
		&ticket.CompletedBlock,
		&payout,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	ticket.Status = entities.TicketStatus(status)

	if ticket.Units, err = fromNumeric(units); err != nil {
		return nil, fmt.Errorf("invalid units for ticket %d: %w", ticket.ID, err)
	}
	if ticket.Payout, err = nullableAmount(payout); err != nil {
		return nil, fmt.Errorf("invalid payout for ticket %d: %w", ticket.ID, err)
	}

	return &ticket, nil
}
