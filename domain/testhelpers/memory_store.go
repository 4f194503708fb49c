package testhelpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"stackpot/domain/entities"
	"stackpot/domain/events"
	"stackpot/domain/interfaces"
)

// MemoryStore is an in-memory persistence fake with transactional semantics:
// a unit of work stages changes on a copy and only Commit makes them visible.
type MemoryStore struct {
	mu           sync.Mutex
	participants map[string]entities.Participant
	draws        map[uint64]entities.Draw
	tickets      map[uint64]entities.WithdrawalTicket
	state        *entities.PoolStateRecord
	entries      []entities.LedgerEntry
	messages     map[string]entities.ProcessedMessage
	published    []events.Event

	// FailNextCommit makes the next Commit return this error
	FailNextCommit error
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		participants: make(map[string]entities.Participant),
		draws:        make(map[uint64]entities.Draw),
		tickets:      make(map[uint64]entities.WithdrawalTicket),
		messages:     make(map[string]entities.ProcessedMessage),
	}
}

// Create implements UnitOfWorkFactory
func (s *MemoryStore) Create() interfaces.UnitOfWork {
	return &memoryUnitOfWork{store: s}
}

// Published returns the events flushed by committed units of work
func (s *MemoryStore) Published() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Event, len(s.published))
	copy(out, s.published)
	return out
}

// Entries returns the committed ledger journal
func (s *MemoryStore) Entries() []entities.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.LedgerEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// State returns the committed pool record
func (s *MemoryStore) State() *entities.PoolStateRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	rec := *s.state
	return &rec
}

// Ticket returns a committed ticket regardless of status
func (s *MemoryStore) Ticket(id uint64) (entities.WithdrawalTicket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	return t, ok
}

type memoryUnitOfWork struct {
	store   *MemoryStore
	staged  *MemoryStore
	pending []events.Event
	ctx     context.Context
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	if u.staged != nil {
		return fmt.Errorf("transaction already started")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	staged := NewMemoryStore()
	for k, v := range u.store.participants {
		staged.participants[k] = v
	}
	for k, v := range u.store.draws {
		staged.draws[k] = v
	}
	for k, v := range u.store.tickets {
		staged.tickets[k] = v
	}
	if u.store.state != nil {
		rec := *u.store.state
		staged.state = &rec
	}
	staged.entries = append(staged.entries, u.store.entries...)
	for k, v := range u.store.messages {
		staged.messages[k] = v
	}
	u.staged = staged
	u.ctx = ctx
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	if u.staged == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.store.mu.Lock()
	if err := u.store.FailNextCommit; err != nil {
		u.store.FailNextCommit = nil
		u.store.mu.Unlock()
		u.staged = nil
		u.pending = nil
		return err
	}
	u.store.participants = u.staged.participants
	u.store.draws = u.staged.draws
	u.store.tickets = u.staged.tickets
	u.store.state = u.staged.state
	u.store.entries = u.staged.entries
	u.store.messages = u.staged.messages
	u.store.published = append(u.store.published, u.pending...)
	u.store.mu.Unlock()

	u.staged = nil
	u.pending = nil
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	u.staged = nil
	u.pending = nil
	return nil
}

func (u *memoryUnitOfWork) mustStaged() *MemoryStore {
	if u.staged == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.staged
}

func (u *memoryUnitOfWork) ParticipantRepository() interfaces.ParticipantRepository {
	return memoryParticipants{u.mustStaged()}
}

func (u *memoryUnitOfWork) DrawRepository() interfaces.DrawRepository {
	return memoryDraws{u.mustStaged()}
}

func (u *memoryUnitOfWork) WithdrawalTicketRepository() interfaces.WithdrawalTicketRepository {
	return memoryTickets{u.mustStaged()}
}

func (u *memoryUnitOfWork) PoolStateRepository() interfaces.PoolStateRepository {
	return memoryPoolState{u.mustStaged()}
}

func (u *memoryUnitOfWork) LedgerEntryRepository() interfaces.LedgerEntryRepository {
	return memoryLedger{u.mustStaged()}
}

func (u *memoryUnitOfWork) ProcessedMessageRepository() interfaces.ProcessedMessageRepository {
	return memoryMessages{u.mustStaged()}
}

func (u *memoryUnitOfWork) EventBus() interfaces.EventPublisher {
	return memoryPublisher{u}
}

type memoryPublisher struct{ u *memoryUnitOfWork }

func (p memoryPublisher) Publish(event events.Event) error {
	p.u.pending = append(p.u.pending, event)
	return nil
}

type memoryParticipants struct{ s *MemoryStore }

func (r memoryParticipants) GetAll(ctx context.Context) ([]*entities.Participant, error) {
	out := make([]*entities.Participant, 0, len(r.s.participants))
	for _, p := range r.s.participants {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (r memoryParticipants) GetByPrincipal(ctx context.Context, principal string) (*entities.Participant, error) {
	p, ok := r.s.participants[principal]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memoryParticipants) Upsert(ctx context.Context, participant *entities.Participant) error {
	if existing, ok := r.s.participants[participant.Principal]; ok && existing.Index != participant.Index {
		return fmt.Errorf("participant %s already has index %d", participant.Principal, existing.Index)
	}
	r.s.participants[participant.Principal] = *participant
	return nil
}

type memoryDraws struct{ s *MemoryStore }

func (r memoryDraws) Create(ctx context.Context, draw *entities.Draw) error {
	if _, ok := r.s.draws[draw.ID]; ok {
		return fmt.Errorf("draw %d already exists", draw.ID)
	}
	r.s.draws[draw.ID] = *draw
	return nil
}

func (r memoryDraws) GetByID(ctx context.Context, id uint64) (*entities.Draw, error) {
	d, ok := r.s.draws[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r memoryDraws) GetAll(ctx context.Context) ([]*entities.Draw, error) {
	out := make([]*entities.Draw, 0, len(r.s.draws))
	for _, d := range r.s.draws {
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryDraws) MarkClaimed(ctx context.Context, id uint64, height uint64, paid entities.Amount) error {
	d, ok := r.s.draws[id]
	if !ok {
		return fmt.Errorf("draw %d not found", id)
	}
	if d.Claimed {
		return fmt.Errorf("draw %d already claimed", id)
	}
	d.MarkClaimed(height, paid)
	r.s.draws[id] = d
	return nil
}

type memoryTickets struct{ s *MemoryStore }

func (r memoryTickets) Create(ctx context.Context, ticket *entities.WithdrawalTicket) error {
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r memoryTickets) GetByID(ctx context.Context, id uint64) (*entities.WithdrawalTicket, error) {
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r memoryTickets) GetPending(ctx context.Context) ([]*entities.WithdrawalTicket, error) {
	out := make([]*entities.WithdrawalTicket, 0)
	for _, t := range r.s.tickets {
		if t.IsPending() {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryTickets) Complete(ctx context.Context, id uint64, height uint64, payout entities.Amount) error {
	t, ok := r.s.tickets[id]
	if !ok || !t.IsPending() {
		return fmt.Errorf("ticket %d is not pending", id)
	}
	t.Status = entities.TicketStatusCompleted
	t.CompletedBlock = &height
	t.Payout = &payout
	r.s.tickets[id] = t
	return nil
}

type memoryPoolState struct{ s *MemoryStore }

func (r memoryPoolState) Get(ctx context.Context) (*entities.PoolStateRecord, error) {
	if r.s.state == nil {
		return nil, nil
	}
	rec := *r.s.state
	return &rec, nil
}

func (r memoryPoolState) Save(ctx context.Context, record *entities.PoolStateRecord) error {
	rec := *record
	r.s.state = &rec
	return nil
}

type memoryLedger struct{ s *MemoryStore }

func (r memoryLedger) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	entry.ID = int64(len(r.s.entries) + 1)
	r.s.entries = append(r.s.entries, *entry)
	return nil
}

func (r memoryLedger) GetByPrincipal(ctx context.Context, principal string, limit int) ([]*entities.LedgerEntry, error) {
	out := make([]*entities.LedgerEntry, 0)
	for i := len(r.s.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if r.s.entries[i].Principal == principal {
			e := r.s.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

type memoryMessages struct{ s *MemoryStore }

func (r memoryMessages) Record(ctx context.Context, message *entities.ProcessedMessage) (bool, error) {
	if message.ID == "" {
		return false, fmt.Errorf("message id is required")
	}
	if _, ok := r.s.messages[message.ID]; ok {
		return false, nil
	}
	r.s.messages[message.ID] = *message
	return true, nil
}

func (r memoryMessages) GetByID(ctx context.Context, id string) (*entities.ProcessedMessage, error) {
	m, ok := r.s.messages[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}
