package testhelpers

import (
	"context"
	"encoding/binary"
	"sync"

	"stackpot/domain/entities"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
)

// HashEntropy derives deterministic entropy from a salt and the height.
// Different salts give independent sequences, which statistical tests use
// to simulate many unrelated chains.
type HashEntropy struct {
	Salt []byte

	mu       sync.Mutex
	requests []uint64
}

// NewHashEntropy creates a deterministic entropy source
func NewHashEntropy(salt string) *HashEntropy {
	return &HashEntropy{Salt: []byte(salt)}
}

func (h *HashEntropy) Entropy(ctx context.Context, height uint64) (*entities.Entropy, error) {
	h.mu.Lock()
	h.requests = append(h.requests, height)
	h.mu.Unlock()

	buf := make([]byte, 0, len(h.Salt)+8)
	buf = append(buf, h.Salt...)
	buf = binary.BigEndian.AppendUint64(buf, height)
	return &entities.Entropy{Height: height, Value: blake2b.Sum256(buf)}, nil
}

// Requests returns the heights entropy was requested for, in order
func (h *HashEntropy) Requests() []uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]uint64, len(h.requests))
	copy(out, h.requests)
	return out
}
