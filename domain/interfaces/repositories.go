package interfaces

import (
	"context"

	"stackpot/domain/entities"
)

// ParticipantRepository defines the interface for participant data access
type ParticipantRepository interface {
	// GetAll returns every participant ordered by index
	GetAll(ctx context.Context) ([]*entities.Participant, error)

	// GetByPrincipal retrieves a participant by principal
	GetByPrincipal(ctx context.Context, principal string) (*entities.Participant, error)

	// Upsert creates the participant at its index or updates its balance
	Upsert(ctx context.Context, participant *entities.Participant) error
}

// DrawRepository defines the interface for draw data access
type DrawRepository interface {
	// Create records an executed draw
	Create(ctx context.Context, draw *entities.Draw) error

	// GetByID retrieves a draw by id
	GetByID(ctx context.Context, id uint64) (*entities.Draw, error)

	// GetAll returns every draw ordered by id
	GetAll(ctx context.Context) ([]*entities.Draw, error)

	// MarkClaimed flips the claim flag of a draw and stores the amount paid
	MarkClaimed(ctx context.Context, id uint64, height uint64, paid entities.Amount) error
}

// WithdrawalTicketRepository defines the interface for withdrawal ticket data access
type WithdrawalTicketRepository interface {
	// Create records a newly issued ticket
	Create(ctx context.Context, ticket *entities.WithdrawalTicket) error

	// GetByID retrieves a ticket regardless of status
	GetByID(ctx context.Context, id uint64) (*entities.WithdrawalTicket, error)

	// GetPending returns all tickets that have not been completed
	GetPending(ctx context.Context) ([]*entities.WithdrawalTicket, error)

	// Complete marks a ticket completed with its payout
	Complete(ctx context.Context, id uint64, height uint64, payout entities.Amount) error
}

// PoolStateRepository defines the interface for the pool-wide singleton
type PoolStateRepository interface {
	// Get returns the persisted state, or nil if the pool was never saved
	Get(ctx context.Context) (*entities.PoolStateRecord, error)

	// Save writes the state
	Save(ctx context.Context, record *entities.PoolStateRecord) error
}

// LedgerEntryRepository defines the interface for the audit journal
type LedgerEntryRepository interface {
	// Record appends an entry
	Record(ctx context.Context, entry *entities.LedgerEntry) error

	// GetByPrincipal returns the most recent entries for a principal
	GetByPrincipal(ctx context.Context, principal string, limit int) ([]*entities.LedgerEntry, error)
}

// ProcessedMessageRepository defines the interface for inbound message deduplication
type ProcessedMessageRepository interface {
	// Record stores the message id; it returns false if the id was already recorded
	Record(ctx context.Context, message *entities.ProcessedMessage) (bool, error)

	// GetByID returns a recorded message, or nil if the id is unknown
	GetByID(ctx context.Context, id string) (*entities.ProcessedMessage, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	ParticipantRepository() ParticipantRepository
	DrawRepository() DrawRepository
	WithdrawalTicketRepository() WithdrawalTicketRepository
	PoolStateRepository() PoolStateRepository
	LedgerEntryRepository() LedgerEntryRepository
	ProcessedMessageRepository() ProcessedMessageRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
