package services

import (
	"fmt"

	"stackpot/domain/entities"
	"stackpot/domain/events"
	"stackpot/domain/interfaces"
)

// deposit credits principal and forwards the amount to the staking adapter
func (s *poolState) deposit(principal string, amount entities.Amount, cs *changeSet) (*interfaces.DepositResult, error) {
	if amount.IsZero() || amount.Lt(&s.cfg.MinDeposit) {
		return nil, entities.ErrInvalidAmount.Withf("deposit %s is below minimum %s", amount.Dec(), s.cfg.MinDeposit.Dec())
	}

	idx, known := s.index[principal]
	if !known && s.cfg.MaxParticipants > 0 && len(s.participants) >= s.cfg.MaxParticipants {
		return nil, entities.ErrPoolFull.Withf("pool already has %d participants", len(s.participants))
	}

	var current entities.Amount
	if known {
		current = s.participants[idx].Balance
	}
	newBalance, err := entities.AddAmount(current, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}
	newTotal, err := entities.AddAmount(s.totalBalance, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit pool total: %w", err)
	}

	// the adapter validates before it mutates, so a failure here leaves no trace
	receipt, err := s.depositToStacking(amount)
	if err != nil {
		return nil, err
	}

	if !known {
		idx = len(s.participants)
		s.participants = append(s.participants, entities.Participant{Index: idx, Principal: principal})
		s.index[principal] = idx
	}
	s.participants[idx].Balance = newBalance
	s.totalBalance = newTotal

	cs.touchParticipant(idx)
	cs.journal(entities.LedgerEntryDeposit, principal, amount, s.height, map[string]any{
		"participant_index": idx,
		"units_minted":      receipt.STSTXReceived.Dec(),
		"new_balance":       newBalance.Dec(),
	})
	cs.emit(events.DepositEvent{
		Principal:        principal,
		ParticipantIndex: idx,
		Amount:           amount.Dec(),
		NewBalance:       newBalance.Dec(),
		TotalPool:        newTotal.Dec(),
		UnitsMinted:      receipt.STSTXReceived.Dec(),
		Block:            s.height,
	})

	return &interfaces.DepositResult{
		Deposited:        amount,
		NewBalance:       newBalance,
		TotalPool:        newTotal,
		ParticipantIndex: idx,
		Staking:          *receipt,
	}, nil
}

// withdraw debits principal and redeems it through the adapter
func (s *poolState) withdraw(principal string, amount entities.Amount, mode entities.WithdrawalMode, cs *changeSet) (*interfaces.WithdrawResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown withdrawal mode %q", mode)
	}
	if amount.IsZero() {
		return nil, entities.ErrInvalidAmount.Withf("withdrawal amount is zero")
	}
	idx, known := s.index[principal]
	var balance entities.Amount
	if known {
		balance = s.participants[idx].Balance
	}
	if amount.Gt(&balance) {
		return nil, entities.ErrInsufficientBalance.Withf("requested %s, balance %s", amount.Dec(), balance.Dec())
	}

	units, err := s.redemptionUnits(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute redemption units: %w", err)
	}

	result := &interfaces.WithdrawResult{Withdrawn: amount, Mode: mode}
	event := events.WithdrawalEvent{
		Principal: principal,
		Amount:    amount.Dec(),
		Mode:      string(mode),
		Block:     s.height,
	}

	switch mode {
	case entities.WithdrawalModeInstant:
		redemption, err := s.instantWithdrawal(units, amount)
		if err != nil {
			return nil, err
		}
		result.Instant = redemption
		event.Received = redemption.STXReceived.Dec()
		event.Fee = redemption.FeePaid.Dec()
		cs.journal(entities.LedgerEntryInstantRedemption, principal, redemption.STXReceived, s.height, map[string]any{
			"units_burned": units.Dec(),
			"fee_paid":     redemption.FeePaid.Dec(),
		})
	case entities.WithdrawalModeDeferred:
		ticket, err := s.initWithdrawal(principal, units, amount, cs)
		if err != nil {
			return nil, err
		}
		result.Ticket = ticket
		cs.journal(entities.LedgerEntryTicketIssued, principal, units, s.height, map[string]any{
			"ticket_id": ticket.WithdrawalNFTID,
		})
		cs.emit(events.WithdrawalTicketIssuedEvent{
			TicketID: ticket.WithdrawalNFTID,
			Owner:    principal,
			Units:    units.Dec(),
			Block:    s.height,
		})
	}

	s.participants[idx].Balance = entities.SaturatingSub(balance, amount)
	s.totalBalance = entities.SaturatingSub(s.totalBalance, amount)

	result.RemainingBalance = s.participants[idx].Balance
	result.TotalPool = s.totalBalance
	event.RemainingBalance = result.RemainingBalance.Dec()
	event.TotalPool = result.TotalPool.Dec()

	cs.touchParticipant(idx)
	cs.journal(entities.LedgerEntryWithdrawal, principal, amount, s.height, map[string]any{
		"mode":              string(mode),
		"remaining_balance": result.RemainingBalance.Dec(),
	})
	cs.emit(event)

	return result, nil
}

// withdrawAll withdraws the full balance
func (s *poolState) withdrawAll(principal string, mode entities.WithdrawalMode, cs *changeSet) (*interfaces.WithdrawResult, error) {
	balance := s.balanceOf(principal)
	if balance.IsZero() {
		return nil, entities.ErrInsufficientBalance.Withf("%s has no balance", principal)
	}
	return s.withdraw(principal, balance, mode, cs)
}

func (s *poolState) balanceOf(principal string) entities.Amount {
	idx, ok := s.index[principal]
	if !ok {
		return entities.Amount{}
	}
	return s.participants[idx].Balance
}

// participantAt returns the participant at index, or false if the index is
// unknown or the participant currently holds no balance
func (s *poolState) participantAt(index int) (entities.Participant, bool) {
	if index < 0 || index >= len(s.participants) {
		return entities.Participant{}, false
	}
	p := s.participants[index]
	if !p.IsActive() {
		return entities.Participant{}, false
	}
	return p, true
}

// cumulativeShares returns the sum of balances for indices 0..index
func (s *poolState) cumulativeShares(index int) (entities.Amount, bool) {
	if index < 0 || index >= len(s.participants) {
		return entities.Amount{}, false
	}
	var sum entities.Amount
	for i := 0; i <= index; i++ {
		sum.Add(&sum, &s.participants[i].Balance)
	}
	return sum, true
}

func (s *poolState) winProbability(principal string) *interfaces.WinProbability {
	balance := s.balanceOf(principal)
	return &interfaces.WinProbability{
		UserTickets:    balance,
		TotalTickets:   s.totalBalance,
		ProbabilityBps: probabilityBps(balance, s.totalBalance),
	}
}

func (s *poolState) previewDeposit(principal string, amount entities.Amount) (*interfaces.DepositPreview, error) {
	if amount.IsZero() || amount.Lt(&s.cfg.MinDeposit) {
		return nil, entities.ErrInvalidAmount.Withf("deposit %s is below minimum %s", amount.Dec(), s.cfg.MinDeposit.Dec())
	}
	balance := s.balanceOf(principal)
	newBalance, err := entities.AddAmount(balance, amount)
	if err != nil {
		return nil, err
	}
	newTotal, err := entities.AddAmount(s.totalBalance, amount)
	if err != nil {
		return nil, err
	}
	return &interfaces.DepositPreview{
		CurrentProbabilityBps: probabilityBps(balance, s.totalBalance),
		NewProbabilityBps:     probabilityBps(newBalance, newTotal),
		NewBalance:            newBalance,
		NewTotal:              newTotal,
	}, nil
}

func (s *poolState) poolInfo() *interfaces.PoolInfo {
	return &interfaces.PoolInfo{
		Owner:              s.cfg.Owner,
		MinDeposit:         s.cfg.MinDeposit,
		MaxParticipants:    s.cfg.MaxParticipants,
		ParticipantCount:   len(s.participants),
		ActiveParticipants: s.activeParticipantCount(),
		TotalPool:          s.totalBalance,
	}
}
