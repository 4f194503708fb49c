package services

import (
	"encoding/binary"
	"sort"

	"stackpot/domain/entities"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"github.com/holiman/uint256"
)

// weightEntry is one active participant in the selection space
type weightEntry struct {
	index      int
	cumulative entities.Amount
}

// weightedSet is a prefix-sum array over participants with a nonzero balance.
// Zero-balance participants keep their ledger index but take no slot here.
type weightedSet struct {
	entries []weightEntry
	total   entities.Amount
}

// buildWeightedSet rebuilds the prefix sums from the current balances
func buildWeightedSet(participants []entities.Participant) weightedSet {
	ws := weightedSet{entries: make([]weightEntry, 0, len(participants))}
	for i := range participants {
		p := &participants[i]
		if !p.IsActive() {
			continue
		}
		ws.total.Add(&ws.total, &p.Balance)
		ws.entries = append(ws.entries, weightEntry{index: p.Index, cumulative: ws.total})
	}
	return ws
}

// pick returns the first entry whose cumulative share exceeds r.
// r must already be reduced into [0, total).
func (ws weightedSet) pick(r entities.Amount) weightEntry {
	i := sort.Search(len(ws.entries), func(i int) bool {
		return ws.entries[i].cumulative.Gt(&r)
	})
	if i == len(ws.entries) {
		// unreachable for r < total, kept so a bad r still lands on a real participant
		i = len(ws.entries) - 1
	}
	return ws.entries[i]
}

// drawSeed derives the selection seed for a draw from the beacon output.
// Mixing in the draw id keeps two draws bound to the same block distinct.
func drawSeed(entropy [32]byte, drawID uint64) [32]byte {
	buf := make([]byte, 0, 40)
	buf = append(buf, entropy[:]...)
	buf = binary.BigEndian.AppendUint64(buf, drawID)
	return blake2b.Sum256(buf)
}

// reduceSeed maps a 256-bit seed into [0, total)
func reduceSeed(seed [32]byte, total entities.Amount) entities.Amount {
	var r uint256.Int
	r.SetBytes32(seed[:])
	r.Mod(&r, &total)
	return r
}

// probabilityBps returns floor(shares * 10000 / total), or 0 for an empty pool
func probabilityBps(shares, total entities.Amount) uint64 {
	if total.IsZero() {
		return 0
	}
	p, err := entities.MulDiv(shares, entities.NewAmount(entities.BasisPoints), total)
	if err != nil {
		return 0
	}
	return p.Uint64()
}
