package services

import (
	"fmt"

	"stackpot/domain/entities"
	"stackpot/domain/interfaces"
)

var basisPoints = entities.NewAmount(entities.BasisPoints)

// unitsToValue converts yield-bearing units to principal at the current ratio
func (s *poolState) unitsToValue(units entities.Amount) (entities.Amount, error) {
	return entities.MulDiv(units, s.position.RatioBps(), basisPoints)
}

// valueToUnits converts principal to units at the current ratio, rounding down
func (s *poolState) valueToUnits(value entities.Amount) (entities.Amount, error) {
	ratio := s.position.RatioBps()
	if ratio.IsZero() {
		return entities.Amount{}, fmt.Errorf("staking position has no value")
	}
	return entities.MulDiv(value, basisPoints, ratio)
}

// unitsForPrincipal returns the units that redeem at least value, capped at the active units
func (s *poolState) unitsForPrincipal(value entities.Amount) (entities.Amount, error) {
	ratio := s.position.RatioBps()
	if ratio.IsZero() {
		return entities.Amount{}, fmt.Errorf("staking position has no value")
	}
	units, err := entities.MulDivCeil(value, basisPoints, ratio)
	if err != nil {
		return units, err
	}
	return entities.MinAmount(units, s.position.ActiveUnits), nil
}

// redemptionUnits returns the units leaving with amount of principal. In a
// deficit every depositor keeps a share of the active units pro rata to their
// principal, so the loss is not left to whoever withdraws last.
func (s *poolState) redemptionUnits(amount entities.Amount) (entities.Amount, error) {
	units, err := s.unitsForPrincipal(amount)
	if err != nil {
		return units, err
	}
	if !s.accumulatedYield().InDeficit || s.position.TotalPrincipal.IsZero() {
		return units, nil
	}
	share, err := entities.MulDiv(amount, s.position.ActiveUnits, s.position.TotalPrincipal)
	if err != nil {
		return entities.Amount{}, err
	}
	return entities.MinAmount(units, share), nil
}

func (s *poolState) instantFee(value entities.Amount) (entities.Amount, error) {
	return entities.MulDiv(value, entities.NewAmount(s.cfg.InstantFeeBps), basisPoints)
}

// depositToStacking mints units for amount
func (s *poolState) depositToStacking(amount entities.Amount) (*interfaces.StakeReceipt, error) {
	if amount.IsZero() {
		return nil, entities.ErrStakingInvalidAmount
	}
	units, err := s.valueToUnits(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute units: %w", err)
	}
	if units.IsZero() {
		return nil, entities.ErrStakingInvalidAmount.Withf("%s is too small to mint a unit", amount.Dec())
	}

	active, err := entities.AddAmount(s.position.ActiveUnits, units)
	if err != nil {
		return nil, err
	}
	staked, err := entities.AddAmount(s.position.StakedValue, amount)
	if err != nil {
		return nil, err
	}
	principal, err := entities.AddAmount(s.position.TotalPrincipal, amount)
	if err != nil {
		return nil, err
	}

	s.position.ActiveUnits = active
	s.position.StakedValue = staked
	s.position.TotalPrincipal = principal

	return &interfaces.StakeReceipt{STXDeposited: amount, STSTXReceived: units}, nil
}

// initWithdrawal moves units into a pending ticket. principal is the amount of
// deposited principal leaving with them.
func (s *poolState) initWithdrawal(owner string, units, principal entities.Amount, cs *changeSet) (*interfaces.InitWithdrawalResult, error) {
	if units.IsZero() {
		return nil, entities.ErrStakingInvalidAmount
	}
	if units.Gt(&s.position.ActiveUnits) {
		return nil, entities.ErrStakingInsufficientBal.Withf("requested %s units, %s active", units.Dec(), s.position.ActiveUnits.Dec())
	}

	pending, err := entities.AddAmount(s.position.PendingUnits, units)
	if err != nil {
		return nil, err
	}
	s.position.ActiveUnits = entities.SaturatingSub(s.position.ActiveUnits, units)
	s.position.PendingUnits = pending
	s.position.TotalPrincipal = entities.SaturatingSub(s.position.TotalPrincipal, principal)

	ticket := &entities.WithdrawalTicket{
		ID:           s.position.NextTicketID,
		Owner:        owner,
		Units:        units,
		Status:       entities.TicketStatusPending,
		CreatedBlock: s.height,
	}
	s.position.NextTicketID++
	s.tickets[ticket.ID] = ticket
	cs.newTickets = append(cs.newTickets, ticket.ID)

	return &interfaces.InitWithdrawalResult{WithdrawalNFTID: ticket.ID, STSTXAmount: units}, nil
}

// completeWithdrawal redeems a pending ticket at the current ratio
func (s *poolState) completeWithdrawal(caller string, ticketID uint64, cs *changeSet) (*entities.WithdrawalTicket, *interfaces.CompleteWithdrawalResult, error) {
	ticket, ok := s.tickets[ticketID]
	if !ok {
		return nil, nil, entities.ErrNoWithdrawalTicket.Withf("ticket %d", ticketID)
	}
	if ticket.Owner != caller {
		return nil, nil, entities.ErrNotAuthorized.Withf("ticket %d is not owned by %s", ticketID, caller)
	}

	payout, err := s.unitsToValue(ticket.Units)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to value ticket: %w", err)
	}
	// ratio is floored, so the payout never exceeds the backing
	payout = entities.MinAmount(payout, s.position.StakedValue)

	s.position.PendingUnits = entities.SaturatingSub(s.position.PendingUnits, ticket.Units)
	s.position.StakedValue = entities.SaturatingSub(s.position.StakedValue, payout)
	delete(s.tickets, ticketID)
	cs.completedTickets = append(cs.completedTickets, completedTicket{id: ticketID, payout: payout})

	return ticket, &interfaces.CompleteWithdrawalResult{NFTID: ticketID, STXReceived: payout}, nil
}

// instantWithdrawal burns units immediately and pays their value minus the fee
func (s *poolState) instantWithdrawal(units, principal entities.Amount) (*interfaces.InstantWithdrawalResult, error) {
	if units.IsZero() {
		return nil, entities.ErrStakingInvalidAmount
	}
	if units.Gt(&s.position.ActiveUnits) {
		return nil, entities.ErrStakingInsufficientBal.Withf("requested %s units, %s active", units.Dec(), s.position.ActiveUnits.Dec())
	}

	value, err := s.unitsToValue(units)
	if err != nil {
		return nil, fmt.Errorf("failed to value units: %w", err)
	}
	value = entities.MinAmount(value, s.position.StakedValue)
	fee, err := s.instantFee(value)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fee: %w", err)
	}
	feesPaid, err := entities.AddAmount(s.position.FeesPaid, fee)
	if err != nil {
		return nil, err
	}

	s.position.ActiveUnits = entities.SaturatingSub(s.position.ActiveUnits, units)
	s.position.StakedValue = entities.SaturatingSub(s.position.StakedValue, value)
	s.position.TotalPrincipal = entities.SaturatingSub(s.position.TotalPrincipal, principal)
	s.position.FeesPaid = feesPaid

	return &interfaces.InstantWithdrawalResult{
		STSTXBurned: units,
		STXReceived: entities.SaturatingSub(value, fee),
		FeePaid:     fee,
	}, nil
}

// previewStakingDeposit projects depositToStacking without mutating
func (s *poolState) previewStakingDeposit(amount entities.Amount) (*interfaces.StakingDepositPreview, error) {
	if amount.IsZero() {
		return nil, entities.ErrStakingInvalidAmount
	}
	units, err := s.valueToUnits(amount)
	if err != nil {
		return nil, err
	}
	return &interfaces.StakingDepositPreview{STXToDeposit: amount, STSTXToReceive: units}, nil
}

// previewWithdrawal projects a redemption of units without mutating
func (s *poolState) previewWithdrawal(units entities.Amount, instant bool) (*interfaces.WithdrawalPreview, error) {
	if units.IsZero() {
		return nil, entities.ErrStakingInvalidAmount
	}
	value, err := s.unitsToValue(units)
	if err != nil {
		return nil, err
	}
	preview := &interfaces.WithdrawalPreview{
		STSTXToBurn:  units,
		STXToReceive: value,
		Instant:      instant,
	}
	if instant {
		fee, err := s.instantFee(value)
		if err != nil {
			return nil, err
		}
		preview.Fee = fee
		preview.STXToReceive = entities.SaturatingSub(value, fee)
	}
	return preview, nil
}

// accumulatedYield compares the value of active units with deposited principal
func (s *poolState) accumulatedYield() *interfaces.AccumulatedYield {
	value, err := s.unitsToValue(s.position.ActiveUnits)
	if err != nil {
		value = entities.Amount{}
	}
	result := &interfaces.AccumulatedYield{
		TotalDeposited: s.position.TotalPrincipal,
		CurrentValue:   value,
	}
	if value.Lt(&s.position.TotalPrincipal) {
		result.InDeficit = true
		result.Deficit = entities.SaturatingSub(s.position.TotalPrincipal, value)
		return result
	}
	result.Yield = entities.SaturatingSub(value, s.position.TotalPrincipal)
	return result
}

// availablePrize is the yield not yet reserved by earlier draws
func (s *poolState) availablePrize() entities.Amount {
	y := s.accumulatedYield()
	if y.InDeficit {
		return entities.Amount{}
	}
	return entities.SaturatingSub(y.Yield, s.position.ReservedPrizes)
}

func (s *poolState) reservePrize(prize entities.Amount) error {
	reserved, err := entities.AddAmount(s.position.ReservedPrizes, prize)
	if err != nil {
		return err
	}
	s.position.ReservedPrizes = reserved
	return nil
}

// payPrize releases the reservation of prize and pays at most the backing
// above principal, so a slash between draw and claim shrinks the payout
// instead of the depositors' redemptions. It returns the amount paid.
func (s *poolState) payPrize(prize entities.Amount) (entities.Amount, error) {
	if prize.IsZero() {
		return entities.Amount{}, nil
	}
	paid := entities.MinAmount(prize, s.accumulatedYield().Yield)
	s.position.ReservedPrizes = entities.SaturatingSub(s.position.ReservedPrizes, prize)
	if paid.IsZero() {
		return paid, nil
	}

	burn, err := s.unitsForPrincipal(paid)
	if err != nil {
		return entities.Amount{}, fmt.Errorf("failed to compute prize units: %w", err)
	}
	s.position.ActiveUnits = entities.SaturatingSub(s.position.ActiveUnits, burn)
	s.position.StakedValue = entities.SaturatingSub(s.position.StakedValue, paid)
	return paid, nil
}

// recordRewards adds stacking rewards to the backing
func (s *poolState) recordRewards(amount entities.Amount) error {
	if amount.IsZero() {
		return entities.ErrStakingInvalidAmount
	}
	staked, err := entities.AddAmount(s.position.StakedValue, amount)
	if err != nil {
		return err
	}
	s.position.StakedValue = staked
	return nil
}

// recordSlash removes value from the backing
func (s *poolState) recordSlash(amount entities.Amount) error {
	if amount.IsZero() {
		return entities.ErrStakingInvalidAmount
	}
	if !amount.Lt(&s.position.StakedValue) {
		return entities.ErrStakingInvalidAmount.Withf("slash of %s must be below staked value %s", amount.Dec(), s.position.StakedValue.Dec())
	}
	s.position.StakedValue = entities.SaturatingSub(s.position.StakedValue, amount)
	return nil
}

func (s *poolState) ratio() *interfaces.Ratio {
	return &interfaces.Ratio{
		STX:              s.position.StakedValue,
		STSTX:            s.position.OutstandingUnits(),
		RatioBasisPoints: s.position.RatioBps(),
	}
}
