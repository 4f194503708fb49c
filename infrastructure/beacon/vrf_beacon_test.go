package beacon

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMetrics struct {
	hits, misses int
}

func (m *countingMetrics) RecordEntropyRequest(cacheHit bool) {
	if cacheHit {
		m.hits++
	} else {
		m.misses++
	}
}

func newTestBeacon(t *testing.T, metrics Metrics) *VRFBeacon {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	b, err := NewVRFBeaconWithKey(key, 4, metrics)
	require.NoError(t, err)
	return b
}

func TestVRFBeacon_DeterministicPerHeight(t *testing.T) {
	metrics := &countingMetrics{}
	b := newTestBeacon(t, metrics)
	ctx := context.Background()

	first, err := b.Entropy(ctx, 100)
	require.NoError(t, err)
	again, err := b.Entropy(ctx, 100)
	require.NoError(t, err)
	other, err := b.Entropy(ctx, 101)
	require.NoError(t, err)

	assert.Equal(t, first.Value, again.Value)
	assert.NotEqual(t, first.Value, other.Value)
	assert.Equal(t, uint64(100), first.Height)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 2, metrics.misses)
}

func TestVRFBeacon_ProofVerifies(t *testing.T) {
	b := newTestBeacon(t, nil)

	entropy, err := b.Entropy(context.Background(), 144)
	require.NoError(t, err)
	require.NoError(t, Verify(b.PublicKey(), entropy))

	// a tampered value is rejected
	forged := *entropy
	forged.Value[0] ^= 0xff
	assert.Error(t, Verify(b.PublicKey(), &forged))

	// the proof is bound to its height
	moved := *entropy
	moved.Height = 145
	assert.Error(t, Verify(b.PublicKey(), &moved))

	// and to the key
	stranger := newTestBeacon(t, nil)
	assert.Error(t, Verify(stranger.PublicKey(), entropy))
}

func TestVRFBeacon_CacheCopies(t *testing.T) {
	b := newTestBeacon(t, nil)
	ctx := context.Background()

	e1, err := b.Entropy(ctx, 7)
	require.NoError(t, err)
	e1.Value[0] ^= 0xff

	e2, err := b.Entropy(ctx, 7)
	require.NoError(t, err)
	assert.NoError(t, Verify(b.PublicKey(), e2))
}

func TestNewVRFBeacon_FromHex(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := "0x" + hex.EncodeToString(crypto.FromECDSA(key))

	b, err := NewVRFBeacon(hexKey, 0, nil)
	require.NoError(t, err)
	assert.Zero(t, key.PublicKey.X.Cmp(b.PublicKey().X))

	_, err = NewVRFBeacon("not-a-key", 0, nil)
	assert.Error(t, err)
}

func TestVRFBeacon_CancelledContext(t *testing.T) {
	b := newTestBeacon(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Entropy(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAlpha(t *testing.T) {
	assert.NotEqual(t, Alpha(1), Alpha(2))
	assert.Len(t, Alpha(1), len(alphaDomain)+8)
}
