package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
)

// fakeChain in-memory ledger. SubmitTransfer moves the balance immediately.
type fakeChain struct {
	mu sync.Mutex

	network  models.NetworkIdentity
	signer   common.Address
	balances map[common.Address]*big.Int
	nonce    uint64

	suggested    *models.FeeQuote
	simulation   models.SimulationOutcome
	networkErr   error
	balanceErr   error
	feeErr       error
	submitErr    error
	inclusion    bool
	inclusionLag time.Duration
	panicOn      string

	calls         map[string]int
	submittedFees []models.FeeQuote
}

func newFakeChain(signer common.Address) *fakeChain {
	return &fakeChain{
		network:    models.NetworkIdentity{ChainID: 137, Name: "matic"},
		signer:     signer,
		balances:   make(map[common.Address]*big.Int),
		simulation: models.SimulationOutcome{OK: true},
		inclusion:  true,
		calls:      make(map[string]int),
	}
}

func (f *fakeChain) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	if f.panicOn == method {
		panic("fake chain: " + method)
	}
}

func (f *fakeChain) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeChain) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeChain) setBalance(holder common.Address, v int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[holder] = big.NewInt(v)
}

func (f *fakeChain) balance(holder common.Address) *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.balances[holder]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (f *fakeChain) NetworkIdentity(ctx context.Context) (*models.NetworkIdentity, error) {
	f.record("NetworkIdentity")
	if f.networkErr != nil {
		return nil, f.networkErr
	}
	n := f.network
	return &n, nil
}

func (f *fakeChain) BalanceOf(ctx context.Context, holder common.Address, tokenID *big.Int) (*big.Int, error) {
	f.record("BalanceOf")
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return f.balance(holder), nil
}

func (f *fakeChain) SignerAddress(ctx context.Context) (common.Address, error) {
	f.record("SignerAddress")
	return f.signer, nil
}

func (f *fakeChain) SuggestedFees(ctx context.Context) (*models.FeeQuote, error) {
	f.record("SuggestedFees")
	return f.suggested, f.feeErr
}

func (f *fakeChain) SimulateTransfer(ctx context.Context, from, to common.Address, tokenID, amount *big.Int) (*models.SimulationOutcome, error) {
	f.record("SimulateTransfer")
	out := f.simulation
	return &out, nil
}

func (f *fakeChain) SubmitTransfer(ctx context.Context, from, to common.Address, tokenID, amount *big.Int, fee models.FeeQuote) (*models.TransactionHandle, error) {
	f.record("SubmitTransfer")
	if f.submitErr != nil {
		return nil, f.submitErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submittedFees = append(f.submittedFees, fee)

	fromBal := f.balances[from]
	if fromBal == nil {
		fromBal = new(big.Int)
	}
	toBal := f.balances[to]
	if toBal == nil {
		toBal = new(big.Int)
	}
	f.balances[from] = new(big.Int).Sub(fromBal, amount)
	f.balances[to] = new(big.Int).Add(toBal, amount)

	handle := &models.TransactionHandle{
		Hash:  crypto.Keccak256Hash([]byte(fmt.Sprintf("%s-%d", to.Hex(), f.nonce))),
		Nonce: f.nonce,
	}
	f.nonce++
	return handle, nil
}

func (f *fakeChain) AwaitInclusion(ctx context.Context, handle models.TransactionHandle, confirmations uint64, deadline time.Duration) bool {
	f.record("AwaitInclusion")
	if f.inclusionLag > 0 {
		select {
		case <-time.After(f.inclusionLag):
		case <-ctx.Done():
			return false
		}
	}
	return f.inclusion
}

func (f *fakeChain) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	f.record("NativeBalance")
	// 2.5 POL
	return new(big.Int).Mul(big.NewInt(25), big.NewInt(1e17)), nil
}
