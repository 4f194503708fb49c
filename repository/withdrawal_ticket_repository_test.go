package repository

import (
	"context"
	"testing"

	"stackpot/domain/entities"
	"stackpot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawalTicketRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWithdrawalTicketRepository(testDB.DB)
	ctx := context.Background()

	t.Run("ticket not found", func(t *testing.T) {
		ticket, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, ticket)
	})

	t.Run("create pending tickets", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestTicket(0, "SP_ALICE", entities.STX(10), 5)))
		require.NoError(t, repo.Create(ctx, testutil.CreateTestTicket(1, "SP_BOB", entities.STX(3), 6)))

		pending, err := repo.GetPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "SP_ALICE", pending[0].Owner)
		assert.Equal(t, entities.STX(10), pending[0].Units)
		assert.True(t, pending[0].IsPending())
		assert.Nil(t, pending[0].Payout)
	})

	t.Run("zero units rejected", func(t *testing.T) {
		assert.Error(t, repo.Create(ctx, testutil.CreateTestTicket(2, "SP_ALICE", entities.Amount{}, 7)))
	})

	t.Run("complete once", func(t *testing.T) {
		require.NoError(t, repo.Complete(ctx, 0, 20, entities.STX(11)))

		ticket, err := repo.GetByID(ctx, 0)
		require.NoError(t, err)
		require.NotNil(t, ticket)
		assert.Equal(t, entities.TicketStatusCompleted, ticket.Status)
		require.NotNil(t, ticket.CompletedBlock)
		assert.Equal(t, uint64(20), *ticket.CompletedBlock)
		require.NotNil(t, ticket.Payout)
		assert.Equal(t, entities.STX(11), *ticket.Payout)

		assert.Error(t, repo.Complete(ctx, 0, 21, entities.STX(11)))

		pending, err := repo.GetPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, uint64(1), pending[0].ID)
	})
}
