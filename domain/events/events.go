package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDeposit                EventType = "deposit_recorded"
	EventTypeWithdrawal             EventType = "withdrawal_recorded"
	EventTypeWithdrawalTicketIssued EventType = "withdrawal_ticket_issued"
	EventTypeWithdrawalCompleted    EventType = "withdrawal_completed"
	EventTypeDrawExecuted           EventType = "draw_executed"
	EventTypePrizeClaimed           EventType = "prize_claimed"
	EventTypeYieldReported          EventType = "yield_reported"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// Amounts are carried as base-10 strings of micro-STX so that consumers in
// other languages never see a truncated number.

// DepositEvent is emitted after a deposit commits
type DepositEvent struct {
	Principal        string `json:"principal"`
	ParticipantIndex int    `json:"participant_index"`
	Amount           string `json:"amount"`
	NewBalance       string `json:"new_balance"`
	TotalPool        string `json:"total_pool"`
	UnitsMinted      string `json:"units_minted"`
	Block            uint64 `json:"block"`
}

func (e DepositEvent) Type() EventType {
	return EventTypeDeposit
}

// WithdrawalEvent is emitted after a ledger withdrawal commits
type WithdrawalEvent struct {
	Principal        string `json:"principal"`
	Amount           string `json:"amount"`
	RemainingBalance string `json:"remaining_balance"`
	TotalPool        string `json:"total_pool"`
	Mode             string `json:"mode"`
	Received         string `json:"received,omitempty"`
	Fee              string `json:"fee,omitempty"`
	Block            uint64 `json:"block"`
}

func (e WithdrawalEvent) Type() EventType {
	return EventTypeWithdrawal
}

// WithdrawalTicketIssuedEvent is emitted when a deferred withdrawal creates a ticket
type WithdrawalTicketIssuedEvent struct {
	TicketID uint64 `json:"ticket_id"`
	Owner    string `json:"owner"`
	Units    string `json:"units"`
	Block    uint64 `json:"block"`
}

func (e WithdrawalTicketIssuedEvent) Type() EventType {
	return EventTypeWithdrawalTicketIssued
}

// WithdrawalCompletedEvent is emitted when a ticket is redeemed
type WithdrawalCompletedEvent struct {
	TicketID uint64 `json:"ticket_id"`
	Owner    string `json:"owner"`
	Units    string `json:"units"`
	Received string `json:"received"`
	Block    uint64 `json:"block"`
}

func (e WithdrawalCompletedEvent) Type() EventType {
	return EventTypeWithdrawalCompleted
}

// DrawExecutedEvent is emitted when a draw selects a winner
type DrawExecutedEvent struct {
	DrawID            uint64 `json:"draw_id"`
	Winner            string `json:"winner"`
	PrizeAmount       string `json:"prize_amount"`
	TotalShares       string `json:"total_shares"`
	ParticipantsCount int    `json:"participants_count"`
	DrawBlock         uint64 `json:"draw_block"`
	EntropyBlock      uint64 `json:"entropy_block"`
	Seed              string `json:"seed"`
}

func (e DrawExecutedEvent) Type() EventType {
	return EventTypeDrawExecuted
}

// PrizeClaimedEvent is emitted when a winner claims a prize
type PrizeClaimedEvent struct {
	DrawID      uint64 `json:"draw_id"`
	Winner      string `json:"winner"`
	PrizeAmount string `json:"prize_amount"`
	Shortfall   string `json:"shortfall"`
	Block       uint64 `json:"block"`
}

func (e PrizeClaimedEvent) Type() EventType {
	return EventTypePrizeClaimed
}

// YieldReportedEvent is emitted when stacking rewards or a slash are applied
type YieldReportedEvent struct {
	Amount      string `json:"amount"`
	Slash       bool   `json:"slash"`
	StakedValue string `json:"staked_value"`
	RatioBps    string `json:"ratio_bps"`
	Block       uint64 `json:"block"`
}

func (e YieldReportedEvent) Type() EventType {
	return EventTypeYieldReported
}
