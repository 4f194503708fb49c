package services

import (
	"fmt"

	"stackpot/domain/entities"
	"stackpot/domain/events"
	"stackpot/domain/interfaces"
)

// canTriggerDraw reports whether the cadence has elapsed at the current height
func (s *poolState) canTriggerDraw() bool {
	return s.schedule.CanTrigger(s.height)
}

// validateTrigger checks everything a draw needs except the entropy, so the
// caller can fail fast before asking the beacon
func (s *poolState) validateTrigger() (weightedSet, error) {
	if !s.canTriggerDraw() {
		return weightedSet{}, entities.ErrDrawTooEarly.Withf("%d blocks until next draw", s.schedule.BlocksUntilNext(s.height))
	}
	ws := buildWeightedSet(s.participants)
	if ws.total.IsZero() {
		return weightedSet{}, entities.ErrNoParticipants
	}
	return ws, nil
}

// triggerDraw selects a winner weighted by shares and reserves the available
// yield as the prize. entropy must be the beacon value for the cadence boundary.
func (s *poolState) triggerDraw(entropy *entities.Entropy, cs *changeSet) (*entities.Draw, error) {
	ws, err := s.validateTrigger()
	if err != nil {
		return nil, err
	}
	boundary := s.schedule.NextBoundary()
	if entropy == nil || entropy.Height != boundary {
		return nil, fmt.Errorf("entropy must be bound to block %d", boundary)
	}

	drawID := s.schedule.CurrentDrawID
	seed := drawSeed(entropy.Value, drawID)
	r := reduceSeed(seed, ws.total)
	picked := ws.pick(r)
	winner := s.participants[picked.index]

	prize := s.availablePrize()
	if err := s.reservePrize(prize); err != nil {
		return nil, fmt.Errorf("failed to reserve prize: %w", err)
	}
	prizePool, err := entities.AddAmount(s.schedule.TotalPrizePool, prize)
	if err != nil {
		return nil, fmt.Errorf("failed to accumulate prize pool: %w", err)
	}

	draw := &entities.Draw{
		ID:                 drawID,
		DrawBlock:          s.height,
		EntropyBlock:       boundary,
		Winner:             winner.Principal,
		WinnerIndex:        winner.Index,
		PrizeAmount:        prize,
		ParticipantsCount:  len(s.participants),
		ActiveParticipants: len(ws.entries),
		TotalShares:        ws.total,
		WinnerBalance:      winner.Balance,
		Seed:               seed,
		Proof:              entropy.Proof,
	}

	s.draws = append(s.draws, draw)
	s.schedule.CurrentDrawID++
	s.schedule.TotalPrizePool = prizePool
	// stay on the cadence grid: missed periods are skipped, never replayed
	elapsed := s.height - s.schedule.LastDrawBlock
	s.schedule.LastDrawBlock += (elapsed / s.schedule.BlocksPerDraw) * s.schedule.BlocksPerDraw

	cs.newDraws = append(cs.newDraws, drawID)
	cs.journal(entities.LedgerEntryDraw, winner.Principal, prize, s.height, map[string]any{
		"draw_id":       drawID,
		"entropy_block": boundary,
		"total_shares":  ws.total.Dec(),
		"seed":          draw.SeedHex(),
	})
	cs.emit(events.DrawExecutedEvent{
		DrawID:            drawID,
		Winner:            winner.Principal,
		PrizeAmount:       prize.Dec(),
		TotalShares:       ws.total.Dec(),
		ParticipantsCount: draw.ParticipantsCount,
		DrawBlock:         s.height,
		EntropyBlock:      boundary,
		Seed:              draw.SeedHex(),
	})

	return draw, nil
}

// claimPrize marks a draw claimed by its winner and pays the prize out of the adapter
func (s *poolState) claimPrize(principal string, drawID uint64, cs *changeSet) (*interfaces.ClaimPrizeResult, error) {
	if drawID >= uint64(len(s.draws)) {
		return nil, entities.ErrInvalidDraw.Withf("draw %d does not exist", drawID)
	}
	draw := s.draws[drawID]
	if draw.Winner != principal {
		return nil, entities.ErrNotWinner.Withf("%s did not win draw %d", principal, drawID)
	}
	if draw.Claimed {
		return nil, entities.ErrAlreadyClaimed.Withf("draw %d", drawID)
	}

	paid, err := s.payPrize(draw.PrizeAmount)
	if err != nil {
		return nil, err
	}

	claimed := *draw
	claimed.MarkClaimed(s.height, paid)
	s.draws[drawID] = &claimed
	shortfall := claimed.Shortfall()

	cs.claimedDraws = append(cs.claimedDraws, drawID)
	cs.journal(entities.LedgerEntryPrizeClaim, principal, paid, s.height, map[string]any{
		"draw_id":      drawID,
		"prize_amount": draw.PrizeAmount.Dec(),
		"shortfall":    shortfall.Dec(),
	})
	cs.emit(events.PrizeClaimedEvent{
		DrawID:      drawID,
		Winner:      principal,
		PrizeAmount: paid.Dec(),
		Shortfall:   shortfall.Dec(),
		Block:       s.height,
	})

	return &interfaces.ClaimPrizeResult{DrawID: drawID, PrizeAmount: paid, Shortfall: shortfall}, nil
}

func (s *poolState) drawByID(drawID uint64) (*entities.Draw, error) {
	if drawID >= uint64(len(s.draws)) {
		return nil, entities.ErrInvalidDraw.Withf("draw %d does not exist", drawID)
	}
	d := *s.draws[drawID]
	return &d, nil
}

func (s *poolState) drawStatus(drawID uint64) entities.DrawStatus {
	if drawID < uint64(len(s.draws)) {
		if s.draws[drawID].Claimed {
			return entities.DrawStatusClaimed
		}
		return entities.DrawStatusDrawn
	}
	if drawID == s.schedule.CurrentDrawID && s.canTriggerDraw() && s.activeParticipantCount() > 0 {
		return entities.DrawStatusTriggerable
	}
	return entities.DrawStatusPending
}

func (s *poolState) currentDrawInfo() *interfaces.CurrentDrawInfo {
	return &interfaces.CurrentDrawInfo{
		CurrentDrawID:   s.schedule.CurrentDrawID,
		LastDrawBlock:   s.schedule.LastDrawBlock,
		NextDrawBlock:   s.schedule.NextBoundary(),
		TotalPrizePool:  s.schedule.TotalPrizePool,
		BlocksUntilNext: s.schedule.BlocksUntilNext(s.height),
		Height:          s.height,
	}
}
