package interfaces

import (
	"context"

	"stackpot/domain/entities"
	"stackpot/domain/events"
)

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}

// EntropySource supplies the randomness a draw is bound to. The value for a
// height must be fixed once that block exists.
type EntropySource interface {
	Entropy(ctx context.Context, height uint64) (*entities.Entropy, error)
}

// MetricsRecorder receives pot-level measurements
type MetricsRecorder interface {
	RecordPotOperation(operation string, outcome string)
	RecordDraw(participants int)
	RecordPoolGauges(totalPool, stakedValue uint64, activeParticipants int)
}

// PotService is the single-writer surface over the pool ledger, draw engine and staking adapter
type PotService interface {
	// Load rebuilds the in-memory state from storage
	Load(ctx context.Context) error

	// Height returns the last observed block height
	Height() uint64

	// ObserveBlock advances the clock and runs any draw that became due
	ObserveBlock(ctx context.Context, height uint64) (*TriggerDrawResult, error)

	// Pool ledger
	Deposit(ctx context.Context, principal string, amount entities.Amount) (*DepositResult, error)
	Withdraw(ctx context.Context, principal string, amount entities.Amount, mode entities.WithdrawalMode) (*WithdrawResult, error)
	WithdrawAll(ctx context.Context, principal string, mode entities.WithdrawalMode) (*WithdrawResult, error)
	GetBalance(principal string) entities.Amount
	GetParticipant(index int) (*entities.Participant, bool)
	GetParticipantIndex(principal string) (int, bool)
	GetParticipantCount() int
	GetCumulativeShares(index int) (entities.Amount, bool)
	GetTotalShares() entities.Amount
	GetWinProbability(principal string) *WinProbability
	PreviewDeposit(principal string, amount entities.Amount) (*DepositPreview, error)
	GetPoolInfo() *PoolInfo
	GetUserDashboard(ctx context.Context, principal string) (*UserDashboard, error)

	// Draw engine
	CanTriggerDraw() bool
	TriggerDraw(ctx context.Context) (*TriggerDrawResult, error)
	ClaimPrize(ctx context.Context, principal string, drawID uint64) (*ClaimPrizeResult, error)
	GetDrawInfo(drawID uint64) (*entities.Draw, error)
	GetDrawWinner(drawID uint64) (string, error)
	IsPrizeClaimed(drawID uint64) (bool, error)
	GetDrawStatus(drawID uint64) entities.DrawStatus
	BlocksUntilNextDraw() uint64
	GetCurrentDrawInfo() *CurrentDrawInfo
	GetPrizePool() entities.Amount
	ListDraws(limit int) []*entities.Draw

	// Staking adapter
	CompleteWithdrawal(ctx context.Context, caller string, ticketID uint64) (*CompleteWithdrawalResult, error)
	RecordRewards(ctx context.Context, amount entities.Amount) (*AccumulatedYield, error)
	RecordSlash(ctx context.Context, amount entities.Amount) (*AccumulatedYield, error)
	PreviewStakingDeposit(amount entities.Amount) (*StakingDepositPreview, error)
	PreviewWithdrawal(units entities.Amount, instant bool) (*WithdrawalPreview, error)
	GetAccumulatedYield() *AccumulatedYield
	GetRatio() *Ratio
	GetWithdrawalTicket(ticketID uint64) (*entities.WithdrawalTicket, bool)
	GetWithdrawalTicketOwner(ticketID uint64) (string, bool)
	ListPendingTickets(owner string) []*entities.WithdrawalTicket
	GetStakingInfo() *StakingInfo
}
