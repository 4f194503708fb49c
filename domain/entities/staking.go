package entities

import "time"

// StakingPosition is the adapter's aggregate view of the staked pool.
// Outstanding units (active + pending) are backed by StakedValue.
type StakingPosition struct {
	TotalPrincipal Amount
	StakedValue    Amount
	ActiveUnits    Amount
	PendingUnits   Amount
	ReservedPrizes Amount // drawn but unclaimed prizes, still inside StakedValue
	FeesPaid       Amount
	NextTicketID   uint64
}

// OutstandingUnits returns active plus pending units
func (p *StakingPosition) OutstandingUnits() Amount {
	var z Amount
	z.Add(&p.ActiveUnits, &p.PendingUnits)
	return z
}

// RatioBps returns floor(staked value * 10000 / outstanding units), or 10000 with no units
func (p *StakingPosition) RatioBps() Amount {
	units := p.OutstandingUnits()
	if units.IsZero() {
		return NewAmount(BasisPoints)
	}
	ratio, err := MulDiv(p.StakedValue, NewAmount(BasisPoints), units)
	if err != nil {
		return NewAmount(BasisPoints)
	}
	return ratio
}

// TicketStatus is the state of a withdrawal ticket
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusCompleted TicketStatus = "completed"
)

// WithdrawalTicket is a deferred redemption claim issued by init-withdrawal
type WithdrawalTicket struct {
	ID             uint64       `db:"id"`
	Owner          string       `db:"owner"`
	Units          Amount       `db:"units"`
	Status         TicketStatus `db:"status"`
	CreatedBlock   uint64       `db:"created_block"`
	CompletedBlock *uint64      `db:"completed_block"`
	Payout         *Amount      `db:"payout"`
	CreatedAt      time.Time    `db:"created_at"`
}

// IsPending returns true while the ticket can still be completed
func (t *WithdrawalTicket) IsPending() bool {
	return t.Status == TicketStatusPending
}

// WithdrawalMode selects the redemption path for a ledger withdrawal
type WithdrawalMode string

const (
	WithdrawalModeDeferred WithdrawalMode = "deferred"
	WithdrawalModeInstant  WithdrawalMode = "instant"
)

// Valid reports whether the mode is known
func (m WithdrawalMode) Valid() bool {
	return m == WithdrawalModeDeferred || m == WithdrawalModeInstant
}
