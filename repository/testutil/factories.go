package testutil

import (
	"time"

	"stackpot/domain/entities"
)

// CreateTestParticipant creates a participant with a balance in whole STX
func CreateTestParticipant(index int, principal string, stx uint64) *entities.Participant {
	now := time.Now()
	return &entities.Participant{
		Index:     index,
		Principal: principal,
		Balance:   entities.STX(stx),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestDraw creates an unclaimed draw won by the given participant
func CreateTestDraw(id uint64, winner *entities.Participant, prize entities.Amount) *entities.Draw {
	draw := &entities.Draw{
		ID:                 id,
		DrawBlock:          (id + 1) * 10,
		EntropyBlock:       (id + 1) * 10,
		Winner:             winner.Principal,
		WinnerIndex:        winner.Index,
		PrizeAmount:        prize,
		ParticipantsCount:  1,
		ActiveParticipants: 1,
		TotalShares:        winner.Balance,
		WinnerBalance:      winner.Balance,
		Proof:              []byte{0x01, 0x02},
	}
	draw.Seed[0] = byte(id)
	draw.Seed[31] = 0xff
	return draw
}

// CreateTestTicket creates a pending withdrawal ticket
func CreateTestTicket(id uint64, owner string, units entities.Amount, block uint64) *entities.WithdrawalTicket {
	return &entities.WithdrawalTicket{
		ID:           id,
		Owner:        owner,
		Units:        units,
		Status:       entities.TicketStatusPending,
		CreatedBlock: block,
	}
}

// CreateTestPoolState creates a pool record with a funded staking position
func CreateTestPoolState(owner string, total entities.Amount) *entities.PoolStateRecord {
	return &entities.PoolStateRecord{
		Owner:           owner,
		MinDeposit:      entities.STX(1),
		MaxParticipants: 0,
		InstantFeeBps:   100,
		TotalBalance:    total,
		Schedule: entities.DrawSchedule{
			BlocksPerDraw: 10,
		},
		Position: entities.StakingPosition{
			TotalPrincipal: total,
			StakedValue:    total,
			ActiveUnits:    total,
		},
	}
}
