package dto

import (
	"time"

	"stackpot/domain/entities"
)

// PotCommandAction is the pot write a command requests
type PotCommandAction string

const (
	PotCommandDeposit            PotCommandAction = "deposit"
	PotCommandWithdraw           PotCommandAction = "withdraw"
	PotCommandWithdrawAll        PotCommandAction = "withdraw_all"
	PotCommandClaimPrize         PotCommandAction = "claim_prize"
	PotCommandCompleteWithdrawal PotCommandAction = "complete_withdrawal"
)

// Valid reports whether the action is one the pot understands
func (a PotCommandAction) Valid() bool {
	switch a {
	case PotCommandDeposit, PotCommandWithdraw, PotCommandWithdrawAll, PotCommandClaimPrize, PotCommandCompleteWithdrawal:
		return true
	}
	return false
}

// PotCommandDTO is a depositor's request relayed from the chain gateway.
// Only the fields of its action are meaningful.
type PotCommandDTO struct {
	CommandID string
	Action    PotCommandAction
	Principal string
	Amount    entities.Amount         // deposit, withdraw
	Mode      entities.WithdrawalMode // withdraw, withdraw_all
	DrawID    uint64                  // claim_prize
	TicketID  uint64                  // complete_withdrawal
	IssuedAt  time.Time
}
