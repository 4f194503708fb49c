package entities

import "time"

// LedgerEntryKind is the type of journalled operation
type LedgerEntryKind string

const (
	LedgerEntryDeposit           LedgerEntryKind = "deposit"
	LedgerEntryWithdrawal        LedgerEntryKind = "withdrawal"
	LedgerEntryInstantRedemption LedgerEntryKind = "instant_redemption"
	LedgerEntryTicketIssued      LedgerEntryKind = "ticket_issued"
	LedgerEntryTicketCompleted   LedgerEntryKind = "ticket_completed"
	LedgerEntryDraw              LedgerEntryKind = "draw"
	LedgerEntryPrizeClaim        LedgerEntryKind = "prize_claim"
	LedgerEntryRewards           LedgerEntryKind = "rewards"
	LedgerEntrySlash             LedgerEntryKind = "slash"
)

// LedgerEntry is an append-only audit record of a committed operation
type LedgerEntry struct {
	ID        int64           `db:"id"`
	Kind      LedgerEntryKind `db:"kind"`
	Principal string          `db:"principal"`
	Amount    Amount          `db:"amount"`
	Block     uint64          `db:"block"`
	Metadata  map[string]any  `db:"metadata"`
	CreatedAt time.Time       `db:"created_at"`
}
