package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurableName(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"staking.rewards", "stackpot-staking_rewards"},
		{"pot.commands", "stackpot-pot_commands"},
		{"pot.draw.*", "stackpot-pot_draw_wildcard"},
		{"pot.>", "stackpot-pot_all"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DurableName(tt.subject))
	}
}

func TestMergeSubjects(t *testing.T) {
	have := []string{"pot.ledger.deposit", "pot.draw.executed"}

	assert.True(t, containsAll(have, []string{"pot.draw.executed"}))
	assert.False(t, containsAll(have, []string{"pot.draw.prize_claimed"}))

	merged := mergeSubjects(have, []string{"pot.draw.executed", "pot.draw.prize_claimed"})
	assert.Equal(t, []string{"pot.ledger.deposit", "pot.draw.executed", "pot.draw.prize_claimed"}, merged)
	assert.Len(t, have, 2)
}

func TestNATSClient_RequiresConnection(t *testing.T) {
	client := NewNATSClient("nats://127.0.0.1:4222")

	assert.False(t, client.IsConnected())
	assert.ErrorContains(t, client.Publish(context.Background(), "pot.ledger.deposit", nil), "not connected")
	assert.ErrorContains(t, client.Subscribe("staking.rewards", func([]byte) error { return nil }), "not connected")
	assert.ErrorContains(t, client.EnsureRewardsStream("staking.rewards"), "not connected")
	assert.ErrorContains(t, client.EnsureCommandsStream("pot.commands"), "not connected")
	assert.NoError(t, client.Close())
}
