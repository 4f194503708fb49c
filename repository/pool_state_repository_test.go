package repository

import (
	"context"
	"testing"

	"stackpot/domain/entities"
	"stackpot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolStateRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPoolStateRepository(testDB.DB)
	ctx := context.Background()

	t.Run("pool not created", func(t *testing.T) {
		rec, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("save creates the singleton", func(t *testing.T) {
		rec := testutil.CreateTestPoolState("SP_OWNER", entities.STX(100))
		require.NoError(t, repo.Save(ctx, rec))
		assert.False(t, rec.UpdatedAt.IsZero())

		got, err := repo.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "SP_OWNER", got.Owner)
		assert.Equal(t, entities.STX(1), got.MinDeposit)
		assert.Equal(t, uint64(100), got.InstantFeeBps)
		assert.Equal(t, entities.STX(100), got.TotalBalance)
		assert.Equal(t, entities.STX(100), got.Position.ActiveUnits)
		assert.Equal(t, uint64(10), got.Schedule.BlocksPerDraw)
	})

	t.Run("save updates the moving figures", func(t *testing.T) {
		rec := testutil.CreateTestPoolState("SP_OWNER", entities.STX(100))
		rec.Height = 42
		rec.Schedule.CurrentDrawID = 3
		rec.Schedule.LastDrawBlock = 40
		rec.Schedule.TotalPrizePool = entities.STX(7)
		rec.Position.StakedValue = entities.STX(107)
		rec.Position.ReservedPrizes = entities.STX(2)
		rec.Position.NextTicketID = 5
		require.NoError(t, repo.Save(ctx, rec))

		got, err := repo.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, uint64(42), got.Height)
		assert.Equal(t, uint64(3), got.Schedule.CurrentDrawID)
		assert.Equal(t, uint64(40), got.Schedule.LastDrawBlock)
		assert.Equal(t, entities.STX(7), got.Schedule.TotalPrizePool)
		assert.Equal(t, entities.STX(107), got.Position.StakedValue)
		assert.Equal(t, entities.STX(2), got.Position.ReservedPrizes)
		assert.Equal(t, uint64(5), got.Position.NextTicketID)
	})
}
