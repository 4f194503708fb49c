package entities

import "time"

// PoolConfig holds the fixed parameters of a pool
type PoolConfig struct {
	Owner           string
	MinDeposit      Amount
	MaxParticipants int
	BlocksPerDraw   uint64
	InstantFeeBps   uint64
	GenesisHeight   uint64
}

// PoolStateRecord is the persisted singleton with the pool-wide figures that
// are not derivable from participants, draws and tickets.
type PoolStateRecord struct {
	Owner           string
	MinDeposit      Amount
	MaxParticipants int
	InstantFeeBps   uint64
	Height          uint64
	TotalBalance    Amount
	Schedule        DrawSchedule
	Position        StakingPosition
	UpdatedAt       time.Time
}

// Entropy is an opaque random value bound to a block height
type Entropy struct {
	Height uint64
	Value  [32]byte
	Proof  []byte
}
