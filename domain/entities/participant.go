package entities

import "time"

// Participant is a depositor in the pool. Index is assigned on first deposit
// and never reused, even after the balance returns to zero.
type Participant struct {
	Index     int       `db:"idx"`
	Principal string    `db:"principal"`
	Balance   Amount    `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsActive reports whether the participant currently holds shares
func (p *Participant) IsActive() bool {
	return !p.Balance.IsZero()
}
