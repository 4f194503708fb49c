package testhelpers

import (
	"context"

	"stackpot/domain/entities"
	"stackpot/domain/events"
	"stackpot/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockParticipantRepository is a mock implementation of ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) GetAll(ctx context.Context) ([]*entities.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetByPrincipal(ctx context.Context, principal string) (*entities.Participant, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Participant), args.Error(1)
}

func (m *MockParticipantRepository) Upsert(ctx context.Context, participant *entities.Participant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

// MockDrawRepository is a mock implementation of DrawRepository
type MockDrawRepository struct {
	mock.Mock
}

func (m *MockDrawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	args := m.Called(ctx, draw)
	return args.Error(0)
}

func (m *MockDrawRepository) GetByID(ctx context.Context, id uint64) (*entities.Draw, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetAll(ctx context.Context) ([]*entities.Draw, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) MarkClaimed(ctx context.Context, id uint64, height uint64, paid entities.Amount) error {
	args := m.Called(ctx, id, height, paid)
	return args.Error(0)
}

// MockWithdrawalTicketRepository is a mock implementation of WithdrawalTicketRepository
type MockWithdrawalTicketRepository struct {
	mock.Mock
}

func (m *MockWithdrawalTicketRepository) Create(ctx context.Context, ticket *entities.WithdrawalTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockWithdrawalTicketRepository) GetByID(ctx context.Context, id uint64) (*entities.WithdrawalTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawalTicket), args.Error(1)
}

func (m *MockWithdrawalTicketRepository) GetPending(ctx context.Context) ([]*entities.WithdrawalTicket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WithdrawalTicket), args.Error(1)
}

func (m *MockWithdrawalTicketRepository) Complete(ctx context.Context, id uint64, height uint64, payout entities.Amount) error {
	args := m.Called(ctx, id, height, payout)
	return args.Error(0)
}

// MockPoolStateRepository is a mock implementation of PoolStateRepository
type MockPoolStateRepository struct {
	mock.Mock
}

func (m *MockPoolStateRepository) Get(ctx context.Context) (*entities.PoolStateRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PoolStateRecord), args.Error(1)
}

func (m *MockPoolStateRepository) Save(ctx context.Context, record *entities.PoolStateRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockLedgerEntryRepository is a mock implementation of LedgerEntryRepository
type MockLedgerEntryRepository struct {
	mock.Mock
}

func (m *MockLedgerEntryRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) GetByPrincipal(ctx context.Context, principal string, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, principal, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockEntropySource is a mock implementation of EntropySource
type MockEntropySource struct {
	mock.Mock
}

func (m *MockEntropySource) Entropy(ctx context.Context, height uint64) (*entities.Entropy, error) {
	args := m.Called(ctx, height)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Entropy), args.Error(1)
}

// MockProcessedMessageRepository is a mock implementation of ProcessedMessageRepository
type MockProcessedMessageRepository struct {
	mock.Mock
}

func (m *MockProcessedMessageRepository) Record(ctx context.Context, message *entities.ProcessedMessage) (bool, error) {
	args := m.Called(ctx, message)
	return args.Bool(0), args.Error(1)
}

func (m *MockProcessedMessageRepository) GetByID(ctx context.Context, id string) (*entities.ProcessedMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ProcessedMessage), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork backed by mock repositories
type MockUnitOfWork struct {
	mock.Mock
	Participants *MockParticipantRepository
	Draws        *MockDrawRepository
	Tickets      *MockWithdrawalTicketRepository
	PoolState    *MockPoolStateRepository
	Ledger       *MockLedgerEntryRepository
	Messages     *MockProcessedMessageRepository
	Events       *MockEventPublisher
}

// NewMockUnitOfWork creates a MockUnitOfWork with fresh mock repositories
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Participants: new(MockParticipantRepository),
		Draws:        new(MockDrawRepository),
		Tickets:      new(MockWithdrawalTicketRepository),
		PoolState:    new(MockPoolStateRepository),
		Ledger:       new(MockLedgerEntryRepository),
		Messages:     new(MockProcessedMessageRepository),
		Events:       new(MockEventPublisher),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) ParticipantRepository() interfaces.ParticipantRepository {
	return m.Participants
}

func (m *MockUnitOfWork) DrawRepository() interfaces.DrawRepository {
	return m.Draws
}

func (m *MockUnitOfWork) WithdrawalTicketRepository() interfaces.WithdrawalTicketRepository {
	return m.Tickets
}

func (m *MockUnitOfWork) PoolStateRepository() interfaces.PoolStateRepository {
	return m.PoolState
}

func (m *MockUnitOfWork) LedgerEntryRepository() interfaces.LedgerEntryRepository {
	return m.Ledger
}

func (m *MockUnitOfWork) ProcessedMessageRepository() interfaces.ProcessedMessageRepository {
	return m.Messages
}

func (m *MockUnitOfWork) EventBus() interfaces.EventPublisher {
	return m.Events
}

// MockUnitOfWorkFactory always hands out the same MockUnitOfWork
type MockUnitOfWorkFactory struct {
	UoW *MockUnitOfWork
}

func (f *MockUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	return f.UoW
}
