package clients

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// PendingNonceReader source of the account's pending nonce
type PendingNonceReader interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// NonceManager serializes submissions per signer so concurrent disbursements
// never reuse a nonce. The pending nonce is read once per signer and then
// advanced locally; any failed send drops the cached value.
type NonceManager struct {
	reader    PendingNonceReader
	signers   map[common.Address]*signerNonce // signer -> nonce state
	lockMutex sync.RWMutex                    // guards signers
	logger    *logrus.Logger
}

type signerNonce struct {
	mu     sync.Mutex
	next   uint64
	loaded bool
}

// NewNonceManager creates a nonce manager backed by reader
func NewNonceManager(reader PendingNonceReader, logger *logrus.Logger) *NonceManager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NonceManager{
		reader:  reader,
		signers: make(map[common.Address]*signerNonce),
		logger:  logger,
	}
}

func (m *NonceManager) getOrCreate(signer common.Address) *signerNonce {
	m.lockMutex.RLock()
	state, exists := m.signers[signer]
	m.lockMutex.RUnlock()

	if exists {
		return state
	}

	m.lockMutex.Lock()
	defer m.lockMutex.Unlock()

	// double check
	if state, exists := m.signers[signer]; exists {
		return state
	}

	state = &signerNonce{}
	m.signers[signer] = state
	return state
}

// Send runs send with the next nonce for signer while holding the signer's
// lock. The nonce is consumed only if send succeeds.
func (m *NonceManager) Send(ctx context.Context, signer common.Address, send func(nonce uint64) error) (uint64, error) {
	state := m.getOrCreate(signer)
	state.mu.Lock()
	defer state.mu.Unlock()

	if !state.loaded {
		nonce, err := m.reader.PendingNonceAt(ctx, signer)
		if err != nil {
			return 0, fmt.Errorf("failed to get nonce: %w", err)
		}
		state.next = nonce
		state.loaded = true
	}

	nonce := state.next
	if err := send(nonce); err != nil {
		// the node may have seen it or not; refetch next time
		state.loaded = false
		m.logger.WithFields(logrus.Fields{
			"signer": signer.Hex(),
			"nonce":  nonce,
		}).WithError(err).Warn("Send failed, nonce cache reset")
		return nonce, err
	}

	state.next = nonce + 1
	return nonce, nil
}
