package interfaces

import "stackpot/domain/entities"

// StakeReceipt is the result of deposit-to-stacking
type StakeReceipt struct {
	STXDeposited  entities.Amount
	STSTXReceived entities.Amount
}

// DepositResult is the result of a ledger deposit
type DepositResult struct {
	Deposited        entities.Amount
	NewBalance       entities.Amount
	TotalPool        entities.Amount
	ParticipantIndex int
	Staking          StakeReceipt
}

// InitWithdrawalResult is the result of a deferred withdrawal request
type InitWithdrawalResult struct {
	WithdrawalNFTID uint64
	STSTXAmount     entities.Amount
}

// InstantWithdrawalResult is the result of a fee-bearing redemption
type InstantWithdrawalResult struct {
	STSTXBurned entities.Amount
	STXReceived entities.Amount
	FeePaid     entities.Amount
}

// CompleteWithdrawalResult is the result of redeeming a ticket
type CompleteWithdrawalResult struct {
	NFTID       uint64
	STXReceived entities.Amount
}

// WithdrawResult is the result of a ledger withdrawal. Exactly one of
// Instant or Ticket is set, according to Mode.
type WithdrawResult struct {
	Withdrawn        entities.Amount
	RemainingBalance entities.Amount
	TotalPool        entities.Amount
	Mode             entities.WithdrawalMode
	Instant          *InstantWithdrawalResult
	Ticket           *InitWithdrawalResult
}

// StakingDepositPreview projects a deposit-to-stacking
type StakingDepositPreview struct {
	STXToDeposit   entities.Amount
	STSTXToReceive entities.Amount
}

// WithdrawalPreview projects a redemption of yield-bearing units
type WithdrawalPreview struct {
	STSTXToBurn  entities.Amount
	STXToReceive entities.Amount
	Fee          entities.Amount
	Instant      bool
}

// AccumulatedYield reports value growth over deposited principal. When the
// position is worth less than the principal, Yield is zero and Deficit holds
// the shortfall.
type AccumulatedYield struct {
	TotalDeposited entities.Amount
	CurrentValue   entities.Amount
	Yield          entities.Amount
	Deficit        entities.Amount
	InDeficit      bool
}

// Ratio is the principal/unit exchange ratio
type Ratio struct {
	STX              entities.Amount
	STSTX            entities.Amount
	RatioBasisPoints entities.Amount
}

// StakingInfo summarises the adapter
type StakingInfo struct {
	Owner            string
	TotalPrincipal   entities.Amount
	StakedValue      entities.Amount
	ActiveUnits      entities.Amount
	PendingUnits     entities.Amount
	ReservedPrizes   entities.Amount
	FeesPaid         entities.Amount
	NextWithdrawalID uint64
	InstantFeeBps    uint64
}

// TriggerDrawResult is the result of a successful draw
type TriggerDrawResult struct {
	DrawID      uint64
	Winner      string
	PrizeAmount entities.Amount
}

// ClaimPrizeResult is the result of a successful claim. PrizeAmount is what
// was paid; Shortfall is the part of the drawn prize lost to a slash.
type ClaimPrizeResult struct {
	DrawID      uint64
	PrizeAmount entities.Amount
	Shortfall   entities.Amount
}

// CurrentDrawInfo describes the upcoming draw
type CurrentDrawInfo struct {
	CurrentDrawID   uint64
	LastDrawBlock   uint64
	NextDrawBlock   uint64
	TotalPrizePool  entities.Amount
	BlocksUntilNext uint64
	Height          uint64
}

// WinProbability is a participant's chance in the next draw
type WinProbability struct {
	UserTickets    entities.Amount
	TotalTickets   entities.Amount
	ProbabilityBps uint64
}

// DepositPreview projects the effect of a deposit on win probability
type DepositPreview struct {
	CurrentProbabilityBps uint64
	NewProbabilityBps     uint64
	NewBalance            entities.Amount
	NewTotal              entities.Amount
}

// PoolInfo summarises the ledger
type PoolInfo struct {
	Owner              string
	MinDeposit         entities.Amount
	MaxParticipants    int
	ParticipantCount   int
	ActiveParticipants int
	TotalPool          entities.Amount
}

// UserDashboard aggregates everything a depositor needs to see
type UserDashboard struct {
	Principal        string
	Balance          entities.Amount
	ParticipantIndex int
	Registered       bool
	Probability      WinProbability
	DrawsWon         []*entities.Draw
	UnclaimedPrizes  entities.Amount
	PendingTickets   []*entities.WithdrawalTicket
	RecentActivity   []*entities.LedgerEntry
}
