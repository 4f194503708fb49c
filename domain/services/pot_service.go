package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"stackpot/domain/entities"
	"stackpot/domain/events"
	"stackpot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// potService serializes every write to the pool through one mutex. Each write
// mutates a clone of the committed state, persists the rows it touched in one
// unit of work and only then publishes the clone to readers.
type potService struct {
	mu         sync.Mutex
	state      atomic.Pointer[poolState]
	cfg        entities.PoolConfig
	uowFactory interfaces.UnitOfWorkFactory
	entropy    interfaces.EntropySource
	metrics    interfaces.MetricsRecorder
}

// NewPotService creates the pot over an empty state; call Load to restore a persisted pool
func NewPotService(
	cfg entities.PoolConfig,
	uowFactory interfaces.UnitOfWorkFactory,
	entropy interfaces.EntropySource,
	metrics interfaces.MetricsRecorder,
) interfaces.PotService {
	if cfg.BlocksPerDraw == 0 {
		cfg.BlocksPerDraw = 1
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	s := &potService{
		cfg:        cfg,
		uowFactory: uowFactory,
		entropy:    entropy,
		metrics:    metrics,
	}
	s.state.Store(newPoolState(cfg))
	return s
}

// Load rebuilds the state from storage, creating the pool record on first start
func (s *potService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	record, err := uow.PoolStateRepository().Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pool state: %w", err)
	}

	state := newPoolState(s.cfg)
	if record == nil {
		if err := uow.PoolStateRepository().Save(ctx, state.record()); err != nil {
			return fmt.Errorf("failed to create pool state: %w", err)
		}
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		s.state.Store(state)
		log.WithFields(log.Fields{
			"owner":           s.cfg.Owner,
			"genesisHeight":   s.cfg.GenesisHeight,
			"blocksPerDraw":   s.cfg.BlocksPerDraw,
			"minDeposit":      s.cfg.MinDeposit.Dec(),
			"maxParticipants": s.cfg.MaxParticipants,
		}).Info("Created new pool")
		return nil
	}

	state.height = record.Height
	state.totalBalance = record.TotalBalance
	state.schedule = record.Schedule
	state.schedule.BlocksPerDraw = s.cfg.BlocksPerDraw
	state.position = record.Position

	participants, err := uow.ParticipantRepository().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load participants: %w", err)
	}
	var sum entities.Amount
	for i, p := range participants {
		if p.Index != i {
			return fmt.Errorf("participant index gap: expected %d, got %d", i, p.Index)
		}
		state.participants = append(state.participants, *p)
		state.index[p.Principal] = p.Index
		sum.Add(&sum, &p.Balance)
	}
	if !sum.Eq(&state.totalBalance) {
		return fmt.Errorf("pool total %s does not match participant balances %s", state.totalBalance.Dec(), sum.Dec())
	}

	draws, err := uow.DrawRepository().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load draws: %w", err)
	}
	for i, d := range draws {
		if d.ID != uint64(i) {
			return fmt.Errorf("draw id gap: expected %d, got %d", i, d.ID)
		}
	}
	state.draws = append(state.draws, draws...)

	tickets, err := uow.WithdrawalTicketRepository().GetPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to load withdrawal tickets: %w", err)
	}
	for _, t := range tickets {
		state.tickets[t.ID] = t
	}

	s.state.Store(state)
	s.recordGauges(state)

	log.WithFields(log.Fields{
		"height":         state.height,
		"participants":   len(state.participants),
		"totalPool":      state.totalBalance.Dec(),
		"draws":          len(state.draws),
		"pendingTickets": len(state.tickets),
	}).Info("Loaded pool state")
	return nil
}

// commitLocked applies fn to a clone of the committed state and persists the
// result. The caller must hold s.mu. When ctx carries an inbound message, its
// id is recorded in the same transaction and a repeated id fails the commit.
func (s *potService) commitLocked(ctx context.Context, operation string, fn func(next *poolState, cs *changeSet) error) error {
	next := s.state.Load().clone()
	cs := &changeSet{}

	if err := fn(next, cs); err != nil {
		s.metrics.RecordPotOperation(operation, outcomeOf(err))
		return err
	}

	if msg, ok := interfaces.InboundMessageFrom(ctx); ok {
		cs.message = &entities.ProcessedMessage{ID: msg.ID, Source: msg.Source, Block: next.height}
	}

	if err := s.persist(ctx, next, cs); err != nil {
		s.metrics.RecordPotOperation(operation, outcomeOf(err))
		return err
	}

	s.state.Store(next)
	s.metrics.RecordPotOperation(operation, "ok")
	s.recordGauges(next)
	return nil
}

func (s *potService) persist(ctx context.Context, next *poolState, cs *changeSet) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if cs.message != nil {
		inserted, err := uow.ProcessedMessageRepository().Record(ctx, cs.message)
		if err != nil {
			return fmt.Errorf("failed to record message %s: %w", cs.message.ID, err)
		}
		if !inserted {
			return entities.ErrDuplicateMessage.Withf("%s message %s was already applied", cs.message.Source, cs.message.ID)
		}
	}

	for _, idx := range cs.participants {
		p := next.participants[idx]
		if err := uow.ParticipantRepository().Upsert(ctx, &p); err != nil {
			return fmt.Errorf("failed to save participant %d: %w", idx, err)
		}
	}
	for _, id := range cs.newDraws {
		if err := uow.DrawRepository().Create(ctx, next.draws[id]); err != nil {
			return fmt.Errorf("failed to save draw %d: %w", id, err)
		}
	}
	for _, id := range cs.claimedDraws {
		var paid entities.Amount
		if d := next.draws[id]; d.PrizePaid != nil {
			paid = *d.PrizePaid
		}
		if err := uow.DrawRepository().MarkClaimed(ctx, id, next.height, paid); err != nil {
			return fmt.Errorf("failed to mark draw %d claimed: %w", id, err)
		}
	}
	for _, id := range cs.newTickets {
		if err := uow.WithdrawalTicketRepository().Create(ctx, next.tickets[id]); err != nil {
			return fmt.Errorf("failed to save withdrawal ticket %d: %w", id, err)
		}
	}
	for _, ct := range cs.completedTickets {
		if err := uow.WithdrawalTicketRepository().Complete(ctx, ct.id, next.height, ct.payout); err != nil {
			return fmt.Errorf("failed to complete withdrawal ticket %d: %w", ct.id, err)
		}
	}
	for _, entry := range cs.entries {
		if err := uow.LedgerEntryRepository().Record(ctx, entry); err != nil {
			return fmt.Errorf("failed to record ledger entry: %w", err)
		}
	}
	if err := uow.PoolStateRepository().Save(ctx, next.record()); err != nil {
		return fmt.Errorf("failed to save pool state: %w", err)
	}
	for _, event := range cs.events {
		if err := uow.EventBus().Publish(event); err != nil {
			return fmt.Errorf("failed to publish %s event: %w", event.Type(), err)
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *potService) snapshot() *poolState {
	return s.state.Load()
}

// Height returns the last observed block height
func (s *potService) Height() uint64 {
	return s.snapshot().height
}

// ObserveBlock records a new block. A draw that became due is executed in the
// same commit, before any other write can observe the new height.
func (s *potService) ObserveBlock(ctx context.Context, height uint64) (*interfaces.TriggerDrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.snapshot()
	if height <= current.height {
		return nil, nil
	}

	var entropy *entities.Entropy
	atHeight := *current
	atHeight.height = height
	if _, err := atHeight.validateTrigger(); err == nil {
		entropy, err = s.fetchEntropy(ctx, atHeight.schedule.NextBoundary())
		if err != nil {
			return nil, err
		}
	}

	var result *interfaces.TriggerDrawResult
	err := s.commitLocked(ctx, "observe_block", func(next *poolState, cs *changeSet) error {
		next.height = height
		if entropy == nil {
			return nil
		}
		draw, err := next.triggerDraw(entropy, cs)
		if err != nil {
			return err
		}
		result = &interfaces.TriggerDrawResult{DrawID: draw.ID, Winner: draw.Winner, PrizeAmount: draw.PrizeAmount}
		s.logDraw(next, draw)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to observe block %d: %w", height, err)
	}
	return result, nil
}

func (s *potService) fetchEntropy(ctx context.Context, boundary uint64) (*entities.Entropy, error) {
	// one fetch per attempt; the value is never re-rolled
	entropy, err := s.entropy.Entropy(ctx, boundary)
	if err != nil {
		return nil, fmt.Errorf("failed to get entropy for block %d: %w", boundary, err)
	}
	return entropy, nil
}

func (s *potService) logDraw(next *poolState, draw *entities.Draw) {
	y := next.accumulatedYield()
	if y.InDeficit {
		log.WithFields(log.Fields{
			"drawId":  draw.ID,
			"deficit": y.Deficit.Dec(),
		}).Warn("Draw executed while staking position is in deficit, prize is zero")
	}
	s.metrics.RecordDraw(draw.ActiveParticipants)
	log.WithFields(log.Fields{
		"drawId":       draw.ID,
		"winner":       draw.Winner,
		"winnerIndex":  draw.WinnerIndex,
		"prize":        draw.PrizeAmount.Dec(),
		"totalShares":  draw.TotalShares.Dec(),
		"drawBlock":    draw.DrawBlock,
		"entropyBlock": draw.EntropyBlock,
	}).Info("Draw executed")
}

// Deposit credits principal to the ledger and stakes it
func (s *potService) Deposit(ctx context.Context, principal string, amount entities.Amount) (*interfaces.DepositResult, error) {
	if principal == "" {
		return nil, fmt.Errorf("principal is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *interfaces.DepositResult
	err := s.commitLocked(ctx, "deposit", func(next *poolState, cs *changeSet) error {
		var err error
		result, err = next.deposit(principal, amount, cs)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"principal":  principal,
		"amount":     amount.Dec(),
		"newBalance": result.NewBalance.Dec(),
		"totalPool":  result.TotalPool.Dec(),
	}).Info("Deposit recorded")
	return result, nil
}

// Withdraw debits principal and redeems it through the chosen path
func (s *potService) Withdraw(ctx context.Context, principal string, amount entities.Amount, mode entities.WithdrawalMode) (*interfaces.WithdrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *interfaces.WithdrawResult
	err := s.commitLocked(ctx, "withdraw_"+string(mode), func(next *poolState, cs *changeSet) error {
		var err error
		result, err = next.withdraw(principal, amount, mode, cs)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logWithdrawal(principal, result)
	return result, nil
}

// WithdrawAll withdraws the caller's full balance
func (s *potService) WithdrawAll(ctx context.Context, principal string, mode entities.WithdrawalMode) (*interfaces.WithdrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *interfaces.WithdrawResult
	err := s.commitLocked(ctx, "withdraw_all", func(next *poolState, cs *changeSet) error {
		var err error
		result, err = next.withdrawAll(principal, mode, cs)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logWithdrawal(principal, result)
	return result, nil
}

func (s *potService) logWithdrawal(principal string, result *interfaces.WithdrawResult) {
	fields := log.Fields{
		"principal":        principal,
		"amount":           result.Withdrawn.Dec(),
		"remainingBalance": result.RemainingBalance.Dec(),
		"mode":             result.Mode,
	}
	if result.Instant != nil {
		fields["received"] = result.Instant.STXReceived.Dec()
		fields["fee"] = result.Instant.FeePaid.Dec()
	}
	if result.Ticket != nil {
		fields["ticketId"] = result.Ticket.WithdrawalNFTID
	}
	log.WithFields(fields).Info("Withdrawal recorded")
}

// GetBalance returns the principal's ledger balance
func (s *potService) GetBalance(principal string) entities.Amount {
	return s.snapshot().balanceOf(principal)
}

// GetParticipant returns the participant at index, or false when it is unknown or inactive
func (s *potService) GetParticipant(index int) (*entities.Participant, bool) {
	p, ok := s.snapshot().participantAt(index)
	if !ok {
		return nil, false
	}
	return &p, true
}

// GetParticipantIndex returns the permanent index of a principal
func (s *potService) GetParticipantIndex(principal string) (int, bool) {
	idx, ok := s.snapshot().index[principal]
	return idx, ok
}

// GetParticipantCount returns how many principals hold an index, including those at zero balance
func (s *potService) GetParticipantCount() int {
	return len(s.snapshot().participants)
}

// GetCumulativeShares returns the sum of shares for indices 0..index
func (s *potService) GetCumulativeShares(index int) (entities.Amount, bool) {
	return s.snapshot().cumulativeShares(index)
}

// GetTotalShares returns the total shares, equal to the pool balance
func (s *potService) GetTotalShares() entities.Amount {
	return s.snapshot().totalBalance
}

func (s *potService) GetWinProbability(principal string) *interfaces.WinProbability {
	return s.snapshot().winProbability(principal)
}

func (s *potService) PreviewDeposit(principal string, amount entities.Amount) (*interfaces.DepositPreview, error) {
	return s.snapshot().previewDeposit(principal, amount)
}

func (s *potService) GetPoolInfo() *interfaces.PoolInfo {
	return s.snapshot().poolInfo()
}

// GetUserDashboard combines ledger, draw and ticket views for one principal
func (s *potService) GetUserDashboard(ctx context.Context, principal string) (*interfaces.UserDashboard, error) {
	state := s.snapshot()

	dashboard := &interfaces.UserDashboard{
		Principal:   principal,
		Balance:     state.balanceOf(principal),
		Probability: *state.winProbability(principal),
	}
	if idx, ok := state.index[principal]; ok {
		dashboard.ParticipantIndex = idx
		dashboard.Registered = true
	}
	for _, d := range state.draws {
		if d.Winner != principal {
			continue
		}
		draw := *d
		dashboard.DrawsWon = append(dashboard.DrawsWon, &draw)
		if !d.Claimed {
			dashboard.UnclaimedPrizes.Add(&dashboard.UnclaimedPrizes, &d.PrizeAmount)
		}
	}
	for _, t := range state.tickets {
		if t.Owner == principal {
			ticket := *t
			dashboard.PendingTickets = append(dashboard.PendingTickets, &ticket)
		}
	}
	sortTickets(dashboard.PendingTickets)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	activity, err := uow.LedgerEntryRepository().GetByPrincipal(ctx, principal, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent activity: %w", err)
	}
	dashboard.RecentActivity = activity

	return dashboard, nil
}

// CanTriggerDraw reports whether the cadence has elapsed
func (s *potService) CanTriggerDraw() bool {
	return s.snapshot().canTriggerDraw()
}

// TriggerDraw runs the due draw at the current height. The entropy is the
// beacon value of the cadence boundary block, so triggering later does not
// change the outcome.
func (s *potService) TriggerDraw(ctx context.Context) (*interfaces.TriggerDrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.snapshot()
	if _, err := current.validateTrigger(); err != nil {
		s.metrics.RecordPotOperation("trigger_draw", outcomeOf(err))
		return nil, err
	}
	entropy, err := s.fetchEntropy(ctx, current.schedule.NextBoundary())
	if err != nil {
		return nil, err
	}

	var result *interfaces.TriggerDrawResult
	err = s.commitLocked(ctx, "trigger_draw", func(next *poolState, cs *changeSet) error {
		draw, err := next.triggerDraw(entropy, cs)
		if err != nil {
			return err
		}
		result = &interfaces.TriggerDrawResult{DrawID: draw.ID, Winner: draw.Winner, PrizeAmount: draw.PrizeAmount}
		s.logDraw(next, draw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ClaimPrize pays a draw's prize to its winner, once
func (s *potService) ClaimPrize(ctx context.Context, principal string, drawID uint64) (*interfaces.ClaimPrizeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *interfaces.ClaimPrizeResult
	err := s.commitLocked(ctx, "claim_prize", func(next *poolState, cs *changeSet) error {
		var err error
		result, err = next.claimPrize(principal, drawID, cs)
		return err
	})
	if err != nil {
		return nil, err
	}

	fields := log.Fields{
		"drawId":    drawID,
		"principal": principal,
		"prize":     result.PrizeAmount.Dec(),
	}
	if !result.Shortfall.IsZero() {
		fields["shortfall"] = result.Shortfall.Dec()
		log.WithFields(fields).Warn("Prize claimed short, backing above principal did not cover it")
		return result, nil
	}
	log.WithFields(fields).Info("Prize claimed")
	return result, nil
}

func (s *potService) GetDrawInfo(drawID uint64) (*entities.Draw, error) {
	return s.snapshot().drawByID(drawID)
}

func (s *potService) GetDrawWinner(drawID uint64) (string, error) {
	d, err := s.snapshot().drawByID(drawID)
	if err != nil {
		return "", err
	}
	return d.Winner, nil
}

func (s *potService) IsPrizeClaimed(drawID uint64) (bool, error) {
	d, err := s.snapshot().drawByID(drawID)
	if err != nil {
		return false, err
	}
	return d.Claimed, nil
}

func (s *potService) GetDrawStatus(drawID uint64) entities.DrawStatus {
	return s.snapshot().drawStatus(drawID)
}

func (s *potService) BlocksUntilNextDraw() uint64 {
	state := s.snapshot()
	return state.schedule.BlocksUntilNext(state.height)
}

func (s *potService) GetCurrentDrawInfo() *interfaces.CurrentDrawInfo {
	return s.snapshot().currentDrawInfo()
}

func (s *potService) GetPrizePool() entities.Amount {
	return s.snapshot().schedule.TotalPrizePool
}

// ListDraws returns up to limit draws, newest first
func (s *potService) ListDraws(limit int) []*entities.Draw {
	state := s.snapshot()
	if limit <= 0 || limit > len(state.draws) {
		limit = len(state.draws)
	}
	draws := make([]*entities.Draw, 0, limit)
	for i := len(state.draws) - 1; i >= 0 && len(draws) < limit; i-- {
		d := *state.draws[i]
		draws = append(draws, &d)
	}
	return draws
}

// CompleteWithdrawal redeems a deferred withdrawal ticket
func (s *potService) CompleteWithdrawal(ctx context.Context, caller string, ticketID uint64) (*interfaces.CompleteWithdrawalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *interfaces.CompleteWithdrawalResult
	err := s.commitLocked(ctx, "complete_withdrawal", func(next *poolState, cs *changeSet) error {
		ticket, res, err := next.completeWithdrawal(caller, ticketID, cs)
		if err != nil {
			return err
		}
		result = res
		cs.journal(entities.LedgerEntryTicketCompleted, caller, res.STXReceived, next.height, map[string]any{
			"ticket_id": ticketID,
			"units":     ticket.Units.Dec(),
		})
		cs.emit(events.WithdrawalCompletedEvent{
			TicketID: ticketID,
			Owner:    caller,
			Units:    ticket.Units.Dec(),
			Received: res.STXReceived.Dec(),
			Block:    next.height,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"ticketId": ticketID,
		"owner":    caller,
		"received": result.STXReceived.Dec(),
	}).Info("Withdrawal ticket completed")
	return result, nil
}

// RecordRewards applies a stacking reward report
func (s *potService) RecordRewards(ctx context.Context, amount entities.Amount) (*interfaces.AccumulatedYield, error) {
	return s.applyYieldReport(ctx, amount, false)
}

// RecordSlash applies a loss of staked value
func (s *potService) RecordSlash(ctx context.Context, amount entities.Amount) (*interfaces.AccumulatedYield, error) {
	return s.applyYieldReport(ctx, amount, true)
}

func (s *potService) applyYieldReport(ctx context.Context, amount entities.Amount, slash bool) (*interfaces.AccumulatedYield, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	operation, kind := "record_rewards", entities.LedgerEntryRewards
	if slash {
		operation, kind = "record_slash", entities.LedgerEntrySlash
	}

	var result *interfaces.AccumulatedYield
	err := s.commitLocked(ctx, operation, func(next *poolState, cs *changeSet) error {
		var err error
		if slash {
			err = next.recordSlash(amount)
		} else {
			err = next.recordRewards(amount)
		}
		if err != nil {
			return err
		}
		result = next.accumulatedYield()
		ratio := next.position.RatioBps()
		cs.journal(kind, "", amount, next.height, map[string]any{
			"staked_value": next.position.StakedValue.Dec(),
			"ratio_bps":    ratio.Dec(),
		})
		cs.emit(events.YieldReportedEvent{
			Amount:      amount.Dec(),
			Slash:       slash,
			StakedValue: next.position.StakedValue.Dec(),
			RatioBps:    ratio.Dec(),
			Block:       next.height,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := log.Fields{
		"amount":       amount.Dec(),
		"slash":        slash,
		"currentValue": result.CurrentValue.Dec(),
		"yield":        result.Yield.Dec(),
	}
	if result.InDeficit {
		fields["deficit"] = result.Deficit.Dec()
		log.WithFields(fields).Warn("Staking position is below deposited principal")
	} else {
		log.WithFields(fields).Info("Yield report applied")
	}
	return result, nil
}

func (s *potService) PreviewStakingDeposit(amount entities.Amount) (*interfaces.StakingDepositPreview, error) {
	return s.snapshot().previewStakingDeposit(amount)
}

func (s *potService) PreviewWithdrawal(units entities.Amount, instant bool) (*interfaces.WithdrawalPreview, error) {
	return s.snapshot().previewWithdrawal(units, instant)
}

func (s *potService) GetAccumulatedYield() *interfaces.AccumulatedYield {
	return s.snapshot().accumulatedYield()
}

func (s *potService) GetRatio() *interfaces.Ratio {
	return s.snapshot().ratio()
}

// GetWithdrawalTicket returns a pending ticket
func (s *potService) GetWithdrawalTicket(ticketID uint64) (*entities.WithdrawalTicket, bool) {
	t, ok := s.snapshot().tickets[ticketID]
	if !ok {
		return nil, false
	}
	ticket := *t
	return &ticket, true
}

func (s *potService) GetWithdrawalTicketOwner(ticketID uint64) (string, bool) {
	t, ok := s.snapshot().tickets[ticketID]
	if !ok {
		return "", false
	}
	return t.Owner, true
}

// ListPendingTickets returns the owner's pending tickets by id, or every pending ticket when owner is empty
func (s *potService) ListPendingTickets(owner string) []*entities.WithdrawalTicket {
	state := s.snapshot()
	tickets := make([]*entities.WithdrawalTicket, 0)
	for _, t := range state.tickets {
		if owner != "" && t.Owner != owner {
			continue
		}
		ticket := *t
		tickets = append(tickets, &ticket)
	}
	sortTickets(tickets)
	return tickets
}

func (s *potService) GetStakingInfo() *interfaces.StakingInfo {
	state := s.snapshot()
	return &interfaces.StakingInfo{
		Owner:            state.cfg.Owner,
		TotalPrincipal:   state.position.TotalPrincipal,
		StakedValue:      state.position.StakedValue,
		ActiveUnits:      state.position.ActiveUnits,
		PendingUnits:     state.position.PendingUnits,
		ReservedPrizes:   state.position.ReservedPrizes,
		FeesPaid:         state.position.FeesPaid,
		NextWithdrawalID: state.position.NextTicketID,
		InstantFeeBps:    state.cfg.InstantFeeBps,
	}
}

func (s *potService) recordGauges(state *poolState) {
	total := uint64(0)
	if state.totalBalance.IsUint64() {
		total = state.totalBalance.Uint64()
	}
	staked := uint64(0)
	if state.position.StakedValue.IsUint64() {
		staked = state.position.StakedValue.Uint64()
	}
	s.metrics.RecordPoolGauges(total, staked, state.activeParticipantCount())
}

// outcomeOf labels an error for metrics
func outcomeOf(err error) string {
	var potErr *entities.PotError
	if errors.As(err, &potErr) {
		return string(potErr.Kind)
	}
	return "error"
}

type noopMetrics struct{}

func (noopMetrics) RecordPotOperation(string, string) {}

func (noopMetrics) RecordDraw(int) {}

func (noopMetrics) RecordPoolGauges(uint64, uint64, int) {}
