package entities

import (
	"encoding/hex"
	"time"
)

// Draw represents one executed draw. Everything except the claim fields is
// fixed once the draw is recorded.
type Draw struct {
	ID                 uint64    `db:"id"`
	DrawBlock          uint64    `db:"draw_block"`    // Height observed when the draw ran
	EntropyBlock       uint64    `db:"entropy_block"` // Cadence boundary the entropy is bound to
	Winner             string    `db:"winner"`
	WinnerIndex        int       `db:"winner_index"`
	PrizeAmount        Amount    `db:"prize_amount"`
	ParticipantsCount  int       `db:"participants_count"`
	ActiveParticipants int       `db:"active_participants"`
	TotalShares        Amount    `db:"total_shares"`
	WinnerBalance      Amount    `db:"winner_balance"`
	Seed               [32]byte  `db:"seed"`
	Proof              []byte    `db:"proof"`
	Claimed            bool      `db:"claimed"`
	ClaimedAtBlock     *uint64   `db:"claimed_at_block"`
	PrizePaid          *Amount   `db:"prize_paid"` // Set on claim; below PrizeAmount when a slash ate the backing
	CreatedAt          time.Time `db:"created_at"`
}

// IsClaimed returns true once the winner has claimed the prize
func (d *Draw) IsClaimed() bool {
	return d.Claimed
}

// SeedHex returns the selection seed as hex
func (d *Draw) SeedHex() string {
	return hex.EncodeToString(d.Seed[:])
}

// MarkClaimed flips the claim flag and records what the winner received
func (d *Draw) MarkClaimed(height uint64, paid Amount) {
	d.Claimed = true
	d.ClaimedAtBlock = &height
	d.PrizePaid = &paid
}

// Shortfall is the part of the recorded prize that was not paid at claim time
func (d *Draw) Shortfall() Amount {
	if d.PrizePaid == nil {
		return Amount{}
	}
	return SaturatingSub(d.PrizeAmount, *d.PrizePaid)
}

// DrawSchedule tracks draw cadence and cumulative prizes
type DrawSchedule struct {
	CurrentDrawID  uint64
	LastDrawBlock  uint64
	BlocksPerDraw  uint64
	TotalPrizePool Amount
}

// CanTrigger reports whether the cadence has elapsed at the given height
func (s *DrawSchedule) CanTrigger(height uint64) bool {
	return height >= s.LastDrawBlock && height-s.LastDrawBlock >= s.BlocksPerDraw
}

// BlocksUntilNext returns the number of blocks before the next draw may run
func (s *DrawSchedule) BlocksUntilNext(height uint64) uint64 {
	next := s.NextBoundary()
	if height >= next {
		return 0
	}
	return next - height
}

// NextBoundary is the height at which the next draw becomes due. Its block is
// the one whose entropy selects the winner.
func (s *DrawSchedule) NextBoundary() uint64 {
	return s.LastDrawBlock + s.BlocksPerDraw
}

// DrawStatus is the lifecycle state of a draw id
type DrawStatus string

const (
	DrawStatusPending     DrawStatus = "pending"
	DrawStatusTriggerable DrawStatus = "triggerable"
	DrawStatusDrawn       DrawStatus = "drawn"
	DrawStatusClaimed     DrawStatus = "claimed"
)
