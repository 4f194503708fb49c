package application

import (
	"context"
	"testing"
	"time"

	"stackpot/domain/entities"
	"stackpot/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("draw keeper did not stop")
	}
}

func TestDrawKeeperWorker_TriggersDueDraws(t *testing.T) {
	pot, store := newTestPot(t)
	ctx := context.Background()

	_, err := pot.Deposit(ctx, testAlice, entities.STX(100))
	require.NoError(t, err)
	_, err = pot.Deposit(ctx, testBob, entities.STX(50))
	require.NoError(t, err)

	var heights fixedBlocks
	for h := uint64(1); h <= 25; h++ {
		heights = append(heights, h)
	}

	stop, done := NewDrawKeeperWorker(pot, heights).Start(ctx)
	defer stop()
	waitDone(t, done)

	assert.Equal(t, uint64(25), pot.Height())
	draws := pot.ListDraws(10)
	require.Len(t, draws, 2)
	assert.Equal(t, uint64(20), draws[0].EntropyBlock)
	assert.Equal(t, uint64(10), draws[1].EntropyBlock)

	var executed int
	for _, e := range store.Published() {
		if e.Type() == events.EventTypeDrawExecuted {
			executed++
		}
	}
	assert.Equal(t, 2, executed)
}

func TestDrawKeeperWorker_EmptyPoolOnlyAdvancesClock(t *testing.T) {
	pot, _ := newTestPot(t)

	stop, done := NewDrawKeeperWorker(pot, fixedBlocks{5, 10, 15}).Start(context.Background())
	defer stop()
	waitDone(t, done)

	assert.Equal(t, uint64(15), pot.Height())
	assert.Empty(t, pot.ListDraws(10))
}

func TestDrawKeeperWorker_StopsOnCancel(t *testing.T) {
	pot, _ := newTestPot(t)

	stop, done := NewDrawKeeperWorker(pot, blockingBlocks{}).Start(context.Background())
	stop()
	waitDone(t, done)
}

// blockingBlocks never produces a height
type blockingBlocks struct{}

func (blockingBlocks) Heights(ctx context.Context) <-chan uint64 {
	return make(chan uint64)
}
