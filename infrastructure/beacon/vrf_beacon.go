package beacon

import (
	"context"
	"crypto/ecdsa"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"stackpot/domain/entities"

	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
	"github.com/vechain/go-ecvrf"
)

const alphaDomain = "stackpot/draw-entropy/v1"

// Metrics receives beacon lookups
type Metrics interface {
	RecordEntropyRequest(cacheHit bool)
}

// VRFBeacon derives per-height draw entropy from an ECVRF proof over the block height.
// Anyone holding the public key can check that the value was not chosen by the operator.
type VRFBeacon struct {
	key     *ecdsa.PrivateKey
	cache   *lru.Cache[uint64, *entities.Entropy]
	metrics Metrics
}

// NewVRFBeacon creates a beacon from a hex-encoded secp256k1 private key
func NewVRFBeacon(privateKeyHex string, cacheSize int, metrics Metrics) (*VRFBeacon, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse VRF private key: %w", err)
	}
	return NewVRFBeaconWithKey(key, cacheSize, metrics)
}

// NewVRFBeaconWithKey creates a beacon from an existing key
func NewVRFBeaconWithKey(key *ecdsa.PrivateKey, cacheSize int, metrics Metrics) (*VRFBeacon, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[uint64, *entities.Entropy](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create entropy cache: %w", err)
	}

	b := &VRFBeacon{
		key:     key,
		cache:   cache,
		metrics: metrics,
	}

	log.WithField("publicKey", b.PublicKeyHex()).Info("VRF draw beacon ready")
	return b, nil
}

// Entropy returns the VRF output for the height. The same height always yields the same value.
func (b *VRFBeacon) Entropy(ctx context.Context, height uint64) (*entities.Entropy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cached, ok := b.cache.Get(height); ok {
		b.record(true)
		return copyEntropy(cached), nil
	}

	beta, proof, err := ecvrf.NewSecp256k1Sha256Tai().Prove(b.key, Alpha(height))
	if err != nil {
		return nil, fmt.Errorf("failed to prove entropy for height %d: %w", height, err)
	}
	if len(beta) != 32 {
		return nil, fmt.Errorf("unexpected VRF output length %d", len(beta))
	}

	entropy := &entities.Entropy{Height: height, Proof: proof}
	copy(entropy.Value[:], beta)
	b.cache.Add(height, entropy)
	b.record(false)

	log.WithFields(log.Fields{
		"height":  height,
		"entropy": hex.EncodeToString(entropy.Value[:]),
	}).Debug("Derived draw entropy")

	return copyEntropy(entropy), nil
}

// PublicKeyHex returns the uncompressed public key that verifies this beacon's proofs
func (b *VRFBeacon) PublicKeyHex() string {
	return hex.EncodeToString(crypto.FromECDSAPub(&b.key.PublicKey))
}

// PublicKey returns the verification key
func (b *VRFBeacon) PublicKey() *ecdsa.PublicKey {
	return &b.key.PublicKey
}

func (b *VRFBeacon) record(hit bool) {
	if b.metrics != nil {
		b.metrics.RecordEntropyRequest(hit)
	}
}

// Alpha is the VRF input for a height
func Alpha(height uint64) []byte {
	alpha := make([]byte, len(alphaDomain)+8)
	copy(alpha, alphaDomain)
	binary.BigEndian.PutUint64(alpha[len(alphaDomain):], height)
	return alpha
}

// Verify checks a published entropy value against the beacon's public key
func Verify(pub *ecdsa.PublicKey, entropy *entities.Entropy) error {
	beta, err := ecvrf.NewSecp256k1Sha256Tai().Verify(pub, Alpha(entropy.Height), entropy.Proof)
	if err != nil {
		return fmt.Errorf("invalid VRF proof for height %d: %w", entropy.Height, err)
	}
	if len(beta) != len(entropy.Value) || string(beta) != string(entropy.Value[:]) {
		return fmt.Errorf("entropy for height %d does not match its proof", entropy.Height)
	}
	return nil
}

func copyEntropy(e *entities.Entropy) *entities.Entropy {
	out := *e
	out.Proof = append([]byte(nil), e.Proof...)
	return &out
}
