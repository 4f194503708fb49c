package services

import (
	"sort"

	"stackpot/domain/entities"
	"stackpot/domain/events"
)

// poolState is the one owned state of the pot: ledger, draw schedule and
// staking position together. Writers mutate a clone and publish it only after
// the clone has been persisted, so readers always see a committed state.
type poolState struct {
	cfg    entities.PoolConfig
	height uint64

	// ledger
	participants []entities.Participant
	index        map[string]int
	totalBalance entities.Amount

	// draw engine; Draw values are never mutated in place
	schedule entities.DrawSchedule
	draws    []*entities.Draw

	// staking adapter; only pending tickets are kept
	position entities.StakingPosition
	tickets  map[uint64]*entities.WithdrawalTicket
}

func newPoolState(cfg entities.PoolConfig) *poolState {
	return &poolState{
		cfg:          cfg,
		height:       cfg.GenesisHeight,
		participants: make([]entities.Participant, 0),
		index:        make(map[string]int),
		schedule: entities.DrawSchedule{
			LastDrawBlock: cfg.GenesisHeight,
			BlocksPerDraw: cfg.BlocksPerDraw,
		},
		draws:   make([]*entities.Draw, 0),
		tickets: make(map[uint64]*entities.WithdrawalTicket),
	}
}

func (s *poolState) clone() *poolState {
	next := *s
	next.participants = make([]entities.Participant, len(s.participants), len(s.participants)+1)
	copy(next.participants, s.participants)
	next.index = make(map[string]int, len(s.index))
	for k, v := range s.index {
		next.index[k] = v
	}
	next.draws = make([]*entities.Draw, len(s.draws), len(s.draws)+1)
	copy(next.draws, s.draws)
	next.tickets = make(map[uint64]*entities.WithdrawalTicket, len(s.tickets))
	for k, v := range s.tickets {
		next.tickets[k] = v
	}
	return &next
}

// record converts the pool-wide figures into their persisted form
func (s *poolState) record() *entities.PoolStateRecord {
	return &entities.PoolStateRecord{
		Owner:           s.cfg.Owner,
		MinDeposit:      s.cfg.MinDeposit,
		MaxParticipants: s.cfg.MaxParticipants,
		InstantFeeBps:   s.cfg.InstantFeeBps,
		Height:          s.height,
		TotalBalance:    s.totalBalance,
		Schedule:        s.schedule,
		Position:        s.position,
	}
}

func (s *poolState) participantCount() int {
	return len(s.participants)
}

func (s *poolState) activeParticipantCount() int {
	n := 0
	for i := range s.participants {
		if s.participants[i].IsActive() {
			n++
		}
	}
	return n
}

// completedTicket is a ticket redemption waiting to be persisted
type completedTicket struct {
	id     uint64
	payout entities.Amount
}

// changeSet lists what a single write touched, so only those rows are persisted
type changeSet struct {
	participants     []int
	newDraws         []uint64
	claimedDraws     []uint64
	newTickets       []uint64
	completedTickets []completedTicket
	entries          []*entities.LedgerEntry
	events           []events.Event
	message          *entities.ProcessedMessage
}

func (c *changeSet) touchParticipant(index int) {
	for _, i := range c.participants {
		if i == index {
			return
		}
	}
	c.participants = append(c.participants, index)
}

func (c *changeSet) journal(kind entities.LedgerEntryKind, principal string, amount entities.Amount, block uint64, metadata map[string]any) {
	c.entries = append(c.entries, &entities.LedgerEntry{
		Kind:      kind,
		Principal: principal,
		Amount:    amount,
		Block:     block,
		Metadata:  metadata,
	})
}

func (c *changeSet) emit(event events.Event) {
	c.events = append(c.events, event)
}

func sortTickets(tickets []*entities.WithdrawalTicket) {
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].ID < tickets[j].ID
	})
}
