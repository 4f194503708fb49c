package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"stackpot/domain/entities"
	"stackpot/domain/events"
	"stackpot/domain/interfaces"
	"stackpot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	mu         sync.Mutex
	operations []string
	draws      int
}

func (m *recordingMetrics) RecordPotOperation(operation string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations = append(m.operations, operation+":"+outcome)
}

func (m *recordingMetrics) RecordDraw(participants int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draws++
}

func (m *recordingMetrics) RecordPoolGauges(totalPool, stakedValue uint64, activeParticipants int) {}

func TestPotService_Load_CreatesPoolRecord(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())

	record := f.Store.State()
	require.NotNil(t, record)
	assert.Equal(t, TestOwner, record.Owner)
	assert.Equal(t, uint64(10), record.Schedule.BlocksPerDraw)
	assert.Equal(t, uint64(0), f.Pot.Height())
}

func TestPotService_Load_RestoresCommittedState(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())
	f.Deposit(TestAlice, 100)
	f.Deposit(TestBob, 50)
	_, err := f.Pot.RecordRewards(f.Ctx, entities.STX(15))
	require.NoError(t, err)
	_, err = f.Pot.ObserveBlock(f.Ctx, 10)
	require.NoError(t, err)
	_, err = f.Pot.Withdraw(f.Ctx, TestBob, entities.STX(20), entities.WithdrawalModeDeferred)
	require.NoError(t, err)

	restored := NewPotService(testPoolConfig(), f.Store, f.Entropy, nil)
	require.NoError(t, restored.Load(f.Ctx))

	assert.Equal(t, f.Pot.Height(), restored.Height())
	assert.Equal(t, f.Pot.GetBalance(TestAlice), restored.GetBalance(TestAlice))
	assert.Equal(t, f.Pot.GetBalance(TestBob), restored.GetBalance(TestBob))
	assert.Equal(t, f.Pot.GetTotalShares(), restored.GetTotalShares())
	assert.Equal(t, f.Pot.ListDraws(0), restored.ListDraws(0))
	assert.Equal(t, f.Pot.GetStakingInfo(), restored.GetStakingInfo())
	assert.Equal(t, f.Pot.GetCurrentDrawInfo(), restored.GetCurrentDrawInfo())

	ticket, ok := restored.GetWithdrawalTicket(0)
	require.True(t, ok)
	assert.Equal(t, TestBob, ticket.Owner)

	idx, ok := restored.GetParticipantIndex(TestBob)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestPotService_Deposit_PublishesAndJournals(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())

	result, err := f.Pot.Deposit(f.Ctx, TestAlice, entities.STX(25))
	require.NoError(t, err)
	assert.Equal(t, entities.STX(25), result.TotalPool)

	published := f.Store.Published()
	require.Len(t, published, 1)
	deposit, ok := published[0].(events.DepositEvent)
	require.True(t, ok)
	assert.Equal(t, TestAlice, deposit.Principal)
	assert.Equal(t, "25000000", deposit.Amount)

	entries := f.Store.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, entities.LedgerEntryDeposit, entries[0].Kind)

	_, err = f.Pot.Deposit(f.Ctx, "", entities.STX(25))
	assert.Error(t, err)
}

func TestPotService_InstantWithdrawal(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())
	f.Deposit(TestAlice, 100)

	result, err := f.Pot.Withdraw(f.Ctx, TestAlice, entities.STX(10), entities.WithdrawalModeInstant)
	require.NoError(t, err)
	require.NotNil(t, result.Instant)
	assert.Equal(t, "9.9", entities.FormatSTX(result.Instant.STXReceived))
	assert.Equal(t, entities.STX(90), f.Pot.GetBalance(TestAlice))
	f.AssertLedgerConsistent()
}

func TestPotService_FailedCommitLeavesStateUnchanged(t *testing.T) {
	metrics := &recordingMetrics{}
	store := testhelpers.NewMemoryStore()
	pot := NewPotService(testPoolConfig(), store, testhelpers.NewHashEntropy("x"), metrics)
	ctx := context.Background()
	require.NoError(t, pot.Load(ctx))

	_, err := pot.Deposit(ctx, TestAlice, entities.STX(10))
	require.NoError(t, err)

	store.FailNextCommit = errors.New("disk full")
	_, err = pot.Deposit(ctx, TestBob, entities.STX(5))
	require.Error(t, err)

	bobBalance := pot.GetBalance(TestBob)
	assert.True(t, bobBalance.IsZero())
	assert.Equal(t, entities.STX(10), pot.GetTotalShares())
	_, known := pot.GetParticipantIndex(TestBob)
	assert.False(t, known)
	assert.Equal(t, 1, pot.GetParticipantCount())
	assert.Equal(t, entities.STX(10), pot.GetStakingInfo().StakedValue)
	assert.Len(t, store.Published(), 1)
	assert.Contains(t, metrics.operations, "deposit:error")

	// the next write starts from the committed state
	result, err := pot.Deposit(ctx, TestBob, entities.STX(5))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ParticipantIndex)
	assert.Equal(t, 2, pot.GetParticipantCount())
	assert.Equal(t, entities.STX(15), pot.GetTotalShares())
}

func TestPotService_InboundMessageAppliedOnce(t *testing.T) {
	metrics := &recordingMetrics{}
	store := testhelpers.NewMemoryStore()
	pot := NewPotService(testPoolConfig(), store, testhelpers.NewHashEntropy("x"), metrics)
	ctx := context.Background()
	require.NoError(t, pot.Load(ctx))

	msgCtx := interfaces.WithInboundMessage(ctx, entities.MessageSourceCommands, "cmd-1")
	_, err := pot.Deposit(msgCtx, TestAlice, entities.STX(10))
	require.NoError(t, err)

	_, err = pot.Deposit(msgCtx, TestAlice, entities.STX(10))
	assert.ErrorIs(t, err, entities.ErrDuplicateMessage)
	assert.Contains(t, metrics.operations, "deposit:duplicate_message")
	assert.Equal(t, entities.STX(10), pot.GetBalance(TestAlice))
	assert.Len(t, store.Published(), 1)

	// the id is stored with the write, so a restarted pot rejects it too
	restarted := NewPotService(testPoolConfig(), store, testhelpers.NewHashEntropy("x"), nil)
	require.NoError(t, restarted.Load(ctx))
	_, err = restarted.RecordRewards(interfaces.WithInboundMessage(ctx, entities.MessageSourceRewards, "cmd-1"), entities.STX(1))
	assert.ErrorIs(t, err, entities.ErrDuplicateMessage)
	y := restarted.GetAccumulatedYield()
	assert.True(t, y.Yield.IsZero())

	// writes without a message id are never deduplicated
	_, err = restarted.Deposit(ctx, TestAlice, entities.STX(10))
	require.NoError(t, err)
	_, err = restarted.Deposit(interfaces.WithInboundMessage(ctx, entities.MessageSourceCommands, ""), TestAlice, entities.STX(10))
	require.NoError(t, err)
	assert.Equal(t, entities.STX(30), restarted.GetBalance(TestAlice))
}

func TestPotService_RepositoryFailureRollsBack(t *testing.T) {
	uow := testhelpers.NewMockUnitOfWork()
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.Participants.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	pot := NewPotService(testPoolConfig(), &testhelpers.MockUnitOfWorkFactory{UoW: uow}, new(testhelpers.MockEntropySource), nil)

	_, err := pot.Deposit(context.Background(), TestAlice, entities.STX(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save participant")

	uow.AssertCalled(t, "Rollback")
	uow.AssertNotCalled(t, "Commit")
	totalShares := pot.GetTotalShares()
	assert.True(t, totalShares.IsZero())
}

func TestPotService_ValidationFailureNeverTouchesStorage(t *testing.T) {
	metrics := &recordingMetrics{}
	uow := testhelpers.NewMockUnitOfWork()
	pot := NewPotService(testPoolConfig(), &testhelpers.MockUnitOfWorkFactory{UoW: uow}, new(testhelpers.MockEntropySource), metrics)

	_, err := pot.Deposit(context.Background(), TestAlice, entities.NewAmount(500_000))
	assert.ErrorIs(t, err, entities.ErrInvalidAmount)

	_, err = pot.ClaimPrize(context.Background(), TestAlice, 0)
	assert.ErrorIs(t, err, entities.ErrInvalidDraw)

	uow.AssertNotCalled(t, "Begin", mock.Anything)
	assert.Equal(t, []string{"deposit:invalid_amount", "claim_prize:invalid_draw"}, metrics.operations)
}

func TestPotService_ObserveBlock_DrawUsesBoundaryEntropy(t *testing.T) {
	onTime := NewPotTestFixture(t, testPoolConfig())
	late := NewPotTestFixture(t, testPoolConfig())
	for _, f := range []*PotTestFixture{onTime, late} {
		f.Deposit(TestAlice, 10)
		f.Deposit(TestBob, 20)
		f.Deposit(TestCharlie, 30)
	}

	first, err := onTime.Pot.ObserveBlock(onTime.Ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := late.Pot.ObserveBlock(late.Ctx, 17)
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.Winner, second.Winner)
	assert.Equal(t, []uint64{10}, onTime.Entropy.Requests())
	assert.Equal(t, []uint64{10}, late.Entropy.Requests())

	draw, err := late.Pot.GetDrawInfo(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(17), draw.DrawBlock)
	assert.Equal(t, uint64(10), draw.EntropyBlock)
	assert.Equal(t, uint64(10), late.Pot.GetCurrentDrawInfo().LastDrawBlock)
}

func TestPotService_ObserveBlock_Clock(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())
	f.Deposit(TestAlice, 10)

	result, err := f.Pot.ObserveBlock(f.Ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, uint64(5), f.Pot.Height())
	assert.Equal(t, uint64(5), f.Pot.BlocksUntilNextDraw())

	// stale heights are ignored
	result, err = f.Pot.ObserveBlock(f.Ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, uint64(5), f.Pot.Height())

	result, err = f.Pot.ObserveBlock(f.Ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, TestAlice, result.Winner)

	// three periods elapse at once: one draw, schedule stays on the grid
	result, err = f.Pot.ObserveBlock(f.Ctx, 35)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint64(1), result.DrawID)

	info := f.Pot.GetCurrentDrawInfo()
	assert.Equal(t, uint64(2), info.CurrentDrawID)
	assert.Equal(t, uint64(30), info.LastDrawBlock)
	assert.Equal(t, uint64(40), info.NextDrawBlock)
	assert.Equal(t, []uint64{10, 20}, f.Entropy.Requests())
	assert.Equal(t, uint64(35), f.Store.State().Height)
}

func TestPotService_TriggerDraw_AfterEmptyBoundary(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())

	_, err := f.Pot.TriggerDraw(f.Ctx)
	assert.ErrorIs(t, err, entities.ErrDrawTooEarly)

	result, err := f.Pot.ObserveBlock(f.Ctx, 12)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.True(t, f.Pot.CanTriggerDraw())
	assert.Empty(t, f.Entropy.Requests())

	_, err = f.Pot.TriggerDraw(f.Ctx)
	assert.ErrorIs(t, err, entities.ErrNoParticipants)

	f.Deposit(TestAlice, 10)
	assert.Equal(t, entities.DrawStatusTriggerable, f.Pot.GetDrawStatus(0))

	drawn, err := f.Pot.TriggerDraw(f.Ctx)
	require.NoError(t, err)
	assert.Equal(t, TestAlice, drawn.Winner)
	assert.Equal(t, []uint64{10}, f.Entropy.Requests())
	assert.False(t, f.Pot.CanTriggerDraw())
	assert.Equal(t, entities.DrawStatusDrawn, f.Pot.GetDrawStatus(0))
}

func TestPotService_EntropyFailureAbortsBlock(t *testing.T) {
	entropy := new(testhelpers.MockEntropySource)
	entropy.On("Entropy", mock.Anything, uint64(10)).Return(nil, errors.New("beacon unavailable"))

	store := testhelpers.NewMemoryStore()
	pot := NewPotService(testPoolConfig(), store, entropy, nil)
	ctx := context.Background()
	require.NoError(t, pot.Load(ctx))
	_, err := pot.Deposit(ctx, TestAlice, entities.STX(10))
	require.NoError(t, err)

	_, err = pot.ObserveBlock(ctx, 10)
	require.Error(t, err)
	assert.Equal(t, uint64(0), pot.Height())
	assert.Empty(t, pot.ListDraws(0))
	entropy.AssertExpectations(t)
}

func TestPotService_ClaimPrize(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())
	f.Deposit(TestAlice, 100)
	_, err := f.Pot.RecordRewards(f.Ctx, entities.STX(10))
	require.NoError(t, err)

	drawn, err := f.Pot.ObserveBlock(f.Ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, drawn)
	assert.Equal(t, entities.STX(10), drawn.PrizeAmount)
	assert.Equal(t, entities.STX(10), f.Pot.GetPrizePool())

	winner, err := f.Pot.GetDrawWinner(0)
	require.NoError(t, err)
	assert.Equal(t, TestAlice, winner)

	_, err = f.Pot.ClaimPrize(f.Ctx, TestBob, 0)
	assert.ErrorIs(t, err, entities.ErrNotWinner)

	claimed, err := f.Pot.ClaimPrize(f.Ctx, TestAlice, 0)
	require.NoError(t, err)
	assert.Equal(t, entities.STX(10), claimed.PrizeAmount)

	isClaimed, err := f.Pot.IsPrizeClaimed(0)
	require.NoError(t, err)
	assert.True(t, isClaimed)
	assert.Equal(t, entities.DrawStatusClaimed, f.Pot.GetDrawStatus(0))

	_, err = f.Pot.ClaimPrize(f.Ctx, TestAlice, 0)
	assert.ErrorIs(t, err, entities.ErrAlreadyClaimed)

	_, err = f.Pot.IsPrizeClaimed(9)
	assert.ErrorIs(t, err, entities.ErrInvalidDraw)

	// principal is untouched by the prize payout
	assert.Equal(t, entities.STX(100), f.Pot.GetBalance(TestAlice))
	assert.Equal(t, entities.STX(100), f.Pot.GetStakingInfo().StakedValue)
	f.AssertLedgerConsistent()
}

func TestPotService_ClaimAfterSlashRecordsShortfall(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())
	f.Deposit(TestAlice, 100)
	f.Deposit(TestBob, 100)
	_, err := f.Pot.RecordRewards(f.Ctx, entities.STX(200))
	require.NoError(t, err)

	drawn, err := f.Pot.ObserveBlock(f.Ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, drawn)
	require.Equal(t, entities.STX(200), drawn.PrizeAmount)

	_, err = f.Pot.RecordSlash(f.Ctx, entities.STX(150))
	require.NoError(t, err)

	claimed, err := f.Pot.ClaimPrize(f.Ctx, drawn.Winner, drawn.DrawID)
	require.NoError(t, err)
	assert.Equal(t, entities.STX(50), claimed.PrizeAmount)
	assert.Equal(t, entities.STX(150), claimed.Shortfall)
	assert.False(t, f.Pot.GetAccumulatedYield().InDeficit)

	entries := f.Store.Entries()
	last := entries[len(entries)-1]
	assert.Equal(t, entities.LedgerEntryPrizeClaim, last.Kind)
	assert.Equal(t, entities.STX(50), last.Amount)

	// the payout survives a restart
	reloaded := NewPotService(testPoolConfig(), f.Store, f.Entropy, nil)
	require.NoError(t, reloaded.Load(f.Ctx))
	draw, err := reloaded.GetDrawInfo(drawn.DrawID)
	require.NoError(t, err)
	require.NotNil(t, draw.PrizePaid)
	assert.Equal(t, entities.STX(50), *draw.PrizePaid)
	assert.Equal(t, entities.STX(150), draw.Shortfall())

	for _, principal := range []string{TestAlice, TestBob} {
		out, err := reloaded.WithdrawAll(f.Ctx, principal, entities.WithdrawalModeInstant)
		require.NoError(t, err)
		assert.Equal(t, entities.STX(99), out.Instant.STXReceived)
	}
	info := reloaded.GetStakingInfo()
	assert.True(t, info.TotalPrincipal.IsZero())
	assert.True(t, info.ActiveUnits.IsZero())
}

func TestPotService_DeficitYieldsZeroPrize(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())
	f.Deposit(TestAlice, 100)

	_, err := f.Pot.RecordSlash(f.Ctx, entities.STX(100))
	assert.ErrorIs(t, err, entities.ErrStakingInvalidAmount)

	y, err := f.Pot.RecordSlash(f.Ctx, entities.STX(4))
	require.NoError(t, err)
	assert.True(t, y.InDeficit)
	assert.Equal(t, entities.STX(4), y.Deficit)
	assert.True(t, f.Pot.GetAccumulatedYield().InDeficit)
	assert.Equal(t, entities.NewAmount(9600), f.Pot.GetRatio().RatioBasisPoints)

	drawn, err := f.Pot.ObserveBlock(f.Ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, drawn)
	assert.True(t, drawn.PrizeAmount.IsZero())

	// rewards that cover the loss bring the pool back
	y, err = f.Pot.RecordRewards(f.Ctx, entities.STX(6))
	require.NoError(t, err)
	assert.False(t, y.InDeficit)
	assert.Equal(t, entities.STX(2), y.Yield)
}

func TestPotService_WithdrawalTicketRoundTrip(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())
	f.Deposit(TestAlice, 100)

	result, err := f.Pot.Withdraw(f.Ctx, TestAlice, entities.STX(40), entities.WithdrawalModeDeferred)
	require.NoError(t, err)
	require.NotNil(t, result.Ticket)
	ticketID := result.Ticket.WithdrawalNFTID

	owner, ok := f.Pot.GetWithdrawalTicketOwner(ticketID)
	require.True(t, ok)
	assert.Equal(t, TestAlice, owner)
	assert.Len(t, f.Pot.ListPendingTickets(TestAlice), 1)
	assert.Empty(t, f.Pot.ListPendingTickets(TestBob))

	_, err = f.Pot.RecordRewards(f.Ctx, entities.STX(10))
	require.NoError(t, err)

	_, err = f.Pot.CompleteWithdrawal(f.Ctx, TestBob, ticketID)
	assert.ErrorIs(t, err, entities.ErrNotAuthorized)

	completed, err := f.Pot.CompleteWithdrawal(f.Ctx, TestAlice, ticketID)
	require.NoError(t, err)
	assert.Equal(t, entities.STX(44), completed.STXReceived)

	_, ok = f.Pot.GetWithdrawalTicket(ticketID)
	assert.False(t, ok)
	assert.Empty(t, f.Pot.ListPendingTickets(""))
	stored, ok := f.Store.Ticket(ticketID)
	require.True(t, ok)
	assert.Equal(t, entities.TicketStatusCompleted, stored.Status)
	require.NotNil(t, stored.Payout)
	assert.Equal(t, entities.STX(44), *stored.Payout)

	_, err = f.Pot.CompleteWithdrawal(f.Ctx, TestAlice, ticketID)
	assert.ErrorIs(t, err, entities.ErrNoWithdrawalTicket)

	y := f.Pot.GetAccumulatedYield()
	assert.Equal(t, entities.STX(60), y.TotalDeposited)
	assert.Equal(t, entities.STX(6), y.Yield)
}

func TestPotService_UserDashboard(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())
	f.Deposit(TestAlice, 100)
	_, err := f.Pot.RecordRewards(f.Ctx, entities.STX(5))
	require.NoError(t, err)
	_, err = f.Pot.ObserveBlock(f.Ctx, 10)
	require.NoError(t, err)
	_, err = f.Pot.Withdraw(f.Ctx, TestAlice, entities.STX(30), entities.WithdrawalModeDeferred)
	require.NoError(t, err)

	dashboard, err := f.Pot.GetUserDashboard(f.Ctx, TestAlice)
	require.NoError(t, err)

	assert.True(t, dashboard.Registered)
	assert.Equal(t, 0, dashboard.ParticipantIndex)
	assert.Equal(t, entities.STX(70), dashboard.Balance)
	assert.Equal(t, uint64(10000), dashboard.Probability.ProbabilityBps)
	require.Len(t, dashboard.DrawsWon, 1)
	assert.Equal(t, entities.STX(5), dashboard.UnclaimedPrizes)
	require.Len(t, dashboard.PendingTickets, 1)
	require.NotEmpty(t, dashboard.RecentActivity)
	assert.Equal(t, entities.LedgerEntryWithdrawal, dashboard.RecentActivity[0].Kind)

	stranger, err := f.Pot.GetUserDashboard(f.Ctx, TestBob)
	require.NoError(t, err)
	assert.False(t, stranger.Registered)
	assert.Empty(t, stranger.RecentActivity)
}

func TestPotService_ConcurrentDepositsKeepLedgerConsistent(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.Pot.Deposit(f.Ctx, fmt.Sprintf("SP%02d", i), entities.STX(uint64(i+1)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, entities.STX(210), f.Pot.GetTotalShares())
	assert.Equal(t, 20, f.Pot.GetPoolInfo().ParticipantCount)

	seen := make(map[int]bool)
	for i := 0; i < 20; i++ {
		idx, ok := f.Pot.GetParticipantIndex(fmt.Sprintf("SP%02d", i))
		require.True(t, ok)
		assert.False(t, seen[idx])
		seen[idx] = true
	}
	f.AssertLedgerConsistent()
}

func TestPotService_ListDrawsNewestFirst(t *testing.T) {
	f := NewPotTestFixture(t, testPoolConfig())
	f.Deposit(TestAlice, 10)
	for _, h := range []uint64{10, 20, 30} {
		_, err := f.Pot.ObserveBlock(f.Ctx, h)
		require.NoError(t, err)
	}

	draws := f.Pot.ListDraws(2)
	require.Len(t, draws, 2)
	assert.Equal(t, uint64(2), draws[0].ID)
	assert.Equal(t, uint64(1), draws[1].ID)
	assert.Len(t, f.Pot.ListDraws(0), 3)
}
