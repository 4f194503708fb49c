package services

import (
	"context"
	"testing"

	"stackpot/domain/entities"
	"stackpot/domain/testhelpers"

	"github.com/stretchr/testify/require"
)

const (
	TestOwner   = "SP000OWNER"
	TestAlice   = "SP1ALICE"
	TestBob     = "SP2BOB"
	TestCharlie = "SP3CHARLIE"
)

func testPoolConfig() entities.PoolConfig {
	return entities.PoolConfig{
		Owner:           TestOwner,
		MinDeposit:      entities.STX(1),
		MaxParticipants: 100,
		BlocksPerDraw:   10,
		InstantFeeBps:   100,
	}
}

// PotTestFixture wires a pot service to an in-memory store and deterministic entropy
type PotTestFixture struct {
	T       *testing.T
	Ctx     context.Context
	Store   *testhelpers.MemoryStore
	Entropy *testhelpers.HashEntropy
	Pot     *potService
}

func NewPotTestFixture(t *testing.T, cfg entities.PoolConfig) *PotTestFixture {
	store := testhelpers.NewMemoryStore()
	entropy := testhelpers.NewHashEntropy("fixture")
	pot := NewPotService(cfg, store, entropy, nil).(*potService)
	require.NoError(t, pot.Load(context.Background()))

	return &PotTestFixture{
		T:       t,
		Ctx:     context.Background(),
		Store:   store,
		Entropy: entropy,
		Pot:     pot,
	}
}

func (f *PotTestFixture) Deposit(principal string, stx uint64) {
	_, err := f.Pot.Deposit(f.Ctx, principal, entities.STX(stx))
	require.NoError(f.T, err)
}

// AssertLedgerConsistent checks that the pool total equals the sum of balances
func (f *PotTestFixture) AssertLedgerConsistent() {
	state := f.Pot.snapshot()
	var sum entities.Amount
	for i := range state.participants {
		sum.Add(&sum, &state.participants[i].Balance)
	}
	require.Equal(f.T, state.totalBalance, sum, "pool total must equal the sum of balances")
}

// newTestState builds a bare pool state with the given balances deposited at genesis
func newTestState(t *testing.T, cfg entities.PoolConfig, deposits map[string]uint64, order ...string) *poolState {
	s := newPoolState(cfg)
	for _, principal := range order {
		_, err := s.deposit(principal, entities.STX(deposits[principal]), &changeSet{})
		require.NoError(t, err)
	}
	return s
}

func entropyAt(height uint64, value byte) *entities.Entropy {
	e := &entities.Entropy{Height: height}
	e.Value[0] = value
	return e
}
