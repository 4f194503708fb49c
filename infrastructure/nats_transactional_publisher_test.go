package infrastructure

import (
	"context"
	"errors"
	"testing"

	"stackpot/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	PublishedEvents []events.Event
	PublishError    error
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, event)
	return nil
}

func TestNATSTransactionalPublisher_FlushInOrder(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	deposit := events.DepositEvent{Principal: "SP_ALICE", Amount: "1000000"}
	draw := events.DrawExecutedEvent{DrawID: 0, Winner: "SP_ALICE"}

	require.NoError(t, transPublisher.Publish(deposit))
	require.NoError(t, transPublisher.Publish(draw))

	assert.Equal(t, 2, transPublisher.Pending())
	assert.Empty(t, mockPublisher.PublishedEvents)

	require.NoError(t, transPublisher.Flush(context.Background()))

	require.Len(t, mockPublisher.PublishedEvents, 2)
	assert.Equal(t, deposit, mockPublisher.PublishedEvents[0])
	assert.Equal(t, draw, mockPublisher.PublishedEvents[1])
	assert.Zero(t, transPublisher.Pending())
}

func TestNATSTransactionalPublisher_Discard(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(events.PrizeClaimedEvent{DrawID: 3}))
	transPublisher.Discard()

	require.NoError(t, transPublisher.Flush(context.Background()))
	assert.Empty(t, mockPublisher.PublishedEvents)
}

func TestNATSTransactionalPublisher_FlushSurvivesPublishErrors(t *testing.T) {
	mockPublisher := &MockEventPublisher{PublishError: errors.New("nats down")}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)

	require.NoError(t, transPublisher.Publish(events.YieldReportedEvent{Amount: "5"}))
	require.NoError(t, transPublisher.Publish(events.DepositEvent{Principal: "SP_ALICE"}))

	err := transPublisher.Flush(context.Background())
	assert.ErrorContains(t, err, "nats down")
	assert.ErrorContains(t, err, string(events.EventTypeDeposit))
	assert.Zero(t, transPublisher.Pending())
}

func TestNATSTransactionalPublisher_FlushStopsOnCancelledContext(t *testing.T) {
	mockPublisher := &MockEventPublisher{}
	transPublisher := NewNATSTransactionalPublisher(mockPublisher)
	require.NoError(t, transPublisher.Publish(events.DepositEvent{}))
	require.NoError(t, transPublisher.Publish(events.DepositEvent{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := transPublisher.Flush(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorContains(t, err, "2 events not published")
	assert.Empty(t, mockPublisher.PublishedEvents)
	assert.Zero(t, transPublisher.Pending())
}
