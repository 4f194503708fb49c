package application

import (
	"context"
	"testing"

	"stackpot/domain/entities"
	"stackpot/domain/interfaces"
	"stackpot/domain/services"
	"stackpot/domain/testhelpers"

	"github.com/stretchr/testify/require"
)

const (
	testAlice = "SP1ALICE"
	testBob   = "SP2BOB"
)

func newTestPot(t *testing.T) (interfaces.PotService, *testhelpers.MemoryStore) {
	t.Helper()
	store := testhelpers.NewMemoryStore()
	return loadTestPot(t, store), store
}

// loadTestPot starts a pot over store, as a restarted process would
func loadTestPot(t *testing.T, store *testhelpers.MemoryStore) interfaces.PotService {
	t.Helper()
	cfg := entities.PoolConfig{
		Owner:         "SP000OWNER",
		MinDeposit:    entities.STX(1),
		BlocksPerDraw: 10,
		InstantFeeBps: 100,
	}
	pot := services.NewPotService(cfg, store, testhelpers.NewHashEntropy("application"), nil)
	require.NoError(t, pot.Load(context.Background()))
	return pot
}

// fixedBlocks replays a fixed list of heights and then closes
type fixedBlocks []uint64

func (b fixedBlocks) Heights(ctx context.Context) <-chan uint64 {
	out := make(chan uint64, len(b))
	for _, h := range b {
		out <- h
	}
	close(out)
	return out
}
