package clients

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/config"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/utils"
)

// erc1155ABI the subset of IERC1155 the dispenser calls
const erc1155ABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"},{"name":"id","type":"uint256"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"id","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"data","type":"bytes"}],
	 "outputs":[]}
]`

const (
	dialTimeout         = 10 * time.Second
	defaultPollInterval = 2 * time.Second
	gasEstimateFactor   = 2
)

// EthBackend the JSON-RPC surface used by ERC1155Client. *ethclient.Client
// satisfies it.
type EthBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// ERC1155Client talks to one ERC-1155 contract through a JSON-RPC node and
// signs with the configured key. It implements services.ChainClient.
type ERC1155Client struct {
	backend      EthBackend
	contractABI  abi.ABI
	contract     common.Address
	key          *ecdsa.PrivateKey
	signer       common.Address
	gasLimit     uint64 // 0 = estimate
	nonces       *NonceManager
	pollInterval time.Duration
	logger       *logrus.Logger

	chainMu sync.Mutex
	chainID *big.Int // last id the endpoint reported, used for signing
}

// DialERC1155Client connects to cfg.RPCEndpoint and verifies the endpoint answers
func DialERC1155Client(ctx context.Context, cfg *config.DispenserConfig, logger *logrus.Logger) (*ERC1155Client, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: dial failed: %w", models.ErrChainUnavailable, err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	chainID, err := client.ChainID(checkCtx)
	cancel()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: chain id check failed: %w", models.ErrChainUnavailable, err)
	}

	logger.WithFields(logrus.Fields{
		"chain_id": chainID.Uint64(),
		"network":  utils.EVMChainName(chainID.Uint64()),
	}).Info("Connected to RPC endpoint")

	c, err := NewERC1155Client(client, cfg, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	c.rememberChainID(chainID)
	return c, nil
}

// NewERC1155Client creates a client over an existing backend
func NewERC1155Client(backend EthBackend, cfg *config.DispenserConfig, logger *logrus.Logger) (*ERC1155Client, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	parsed, err := abi.JSON(strings.NewReader(erc1155ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC-1155 ABI: %w", err)
	}
	return &ERC1155Client{
		backend:      backend,
		contractABI:  parsed,
		contract:     cfg.ContractAddress,
		key:          cfg.PrivateKey,
		signer:       crypto.PubkeyToAddress(cfg.PrivateKey.PublicKey),
		gasLimit:     cfg.GasLimit,
		nonces:       NewNonceManager(backend, logger),
		pollInterval: defaultPollInterval,
		logger:       logger,
	}, nil
}

// SetPollInterval receipt polling interval used by AwaitInclusion
func (c *ERC1155Client) SetPollInterval(d time.Duration) {
	if d > 0 {
		c.pollInterval = d
	}
}

// Close releases the underlying connection if it has one
func (c *ERC1155Client) Close() {
	if closer, ok := c.backend.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (c *ERC1155Client) rememberChainID(id *big.Int) {
	c.chainMu.Lock()
	c.chainID = new(big.Int).Set(id)
	c.chainMu.Unlock()
}

// signingChainID chain id for EIP-155 signing. Fetched only when no id has
// been seen yet.
func (c *ERC1155Client) signingChainID(ctx context.Context) (*big.Int, error) {
	c.chainMu.Lock()
	cached := c.chainID
	c.chainMu.Unlock()
	if cached != nil {
		return new(big.Int).Set(cached), nil
	}

	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, unavailable("chain id", err)
	}
	c.rememberChainID(id)
	return id, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrChainUnavailable, op, err)
}

// NetworkIdentity chain id of the endpoint and its registry name
func (c *ERC1155Client) NetworkIdentity(ctx context.Context) (*models.NetworkIdentity, error) {
	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, unavailable("chain id", err)
	}
	c.rememberChainID(chainID)
	id := chainID.Uint64()
	return &models.NetworkIdentity{ChainID: id, Name: utils.EVMChainName(id)}, nil
}

// BalanceOf calls balanceOf(holder, tokenID) on the contract
func (c *ERC1155Client) BalanceOf(ctx context.Context, holder common.Address, tokenID *big.Int) (*big.Int, error) {
	data, err := c.contractABI.Pack("balanceOf", holder, tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf: %w", err)
	}
	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, unavailable("balanceOf", err)
	}
	values, err := c.contractABI.Unpack("balanceOf", out)
	if err != nil {
		// empty return usually means no contract at the address
		return nil, unavailable("decode balanceOf", err)
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, unavailable("decode balanceOf", fmt.Errorf("unexpected type %T", values[0]))
	}
	return balance, nil
}

// NativeBalance native coin balance of account, wei
func (c *ERC1155Client) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := c.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, unavailable("native balance", err)
	}
	return balance, nil
}

// SignerAddress address derived from the configured key
func (c *ERC1155Client) SignerAddress(ctx context.Context) (common.Address, error) {
	return c.signer, nil
}

// SuggestedFees collects whatever fee data the node offers: tip and base fee
// for EIP-1559 networks, gas price for legacy. The cap follows the common
// wallet rule of 2*baseFee + tip.
func (c *ERC1155Client) SuggestedFees(ctx context.Context) (*models.FeeQuote, error) {
	quote := &models.FeeQuote{Model: models.FeeModelLegacy}
	var errs []error

	if price, err := c.backend.SuggestGasPrice(ctx); err == nil {
		quote.GasPrice = price
	} else {
		errs = append(errs, fmt.Errorf("gas price: %w", err))
	}

	tip, tipErr := c.backend.SuggestGasTipCap(ctx)
	if tipErr != nil {
		errs = append(errs, fmt.Errorf("tip cap: %w", tipErr))
	}
	head, headErr := c.backend.HeaderByNumber(ctx, nil)
	if headErr != nil {
		errs = append(errs, fmt.Errorf("latest header: %w", headErr))
	}
	if tipErr == nil && headErr == nil && head.BaseFee != nil {
		quote.Model = models.FeeModelEIP1559
		quote.TipCap = tip
		quote.FeeCap = new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)
	}

	if quote.GasPrice == nil && quote.TipCap == nil {
		return nil, unavailable("fee data", errors.Join(errs...))
	}
	return quote, nil
}

// SimulateTransfer eth_call of safeTransferFrom from the treasury. A revert
// comes back as OK=false; only transport problems are errors.
func (c *ERC1155Client) SimulateTransfer(ctx context.Context, from, to common.Address, tokenID, amount *big.Int) (*models.SimulationOutcome, error) {
	data, err := c.transferData(from, to, tokenID, amount)
	if err != nil {
		return nil, err
	}

	_, err = c.backend.CallContract(ctx, ethereum.CallMsg{From: from, To: &c.contract, Data: data}, nil)
	if err == nil {
		return &models.SimulationOutcome{OK: true}, nil
	}
	if reason, reverted := RevertReason(err); reverted {
		return &models.SimulationOutcome{OK: false, Reason: reason}, nil
	}
	return nil, unavailable("simulate transfer", err)
}

// SubmitTransfer signs and broadcasts safeTransferFrom using the given fee terms
func (c *ERC1155Client) SubmitTransfer(ctx context.Context, from, to common.Address, tokenID, amount *big.Int, fee models.FeeQuote) (*models.TransactionHandle, error) {
	if from != c.signer {
		return nil, fmt.Errorf("%w: from %s is not the signer %s", models.ErrSubmissionRejected, from.Hex(), c.signer.Hex())
	}

	data, err := c.transferData(from, to, tokenID, amount)
	if err != nil {
		return nil, err
	}

	chainID, err := c.signingChainID(ctx)
	if err != nil {
		return nil, err
	}

	gasLimit := c.gasLimit
	if gasLimit == 0 {
		estimated, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &c.contract, Data: data})
		if err != nil {
			return nil, fmt.Errorf("%w: gas estimation failed: %w", models.ErrSubmissionRejected, err)
		}
		gasLimit = estimated * gasEstimateFactor
	}

	var signed *types.Transaction
	nonce, err := c.nonces.Send(ctx, from, func(nonce uint64) error {
		tx, err := c.buildTransaction(chainID, nonce, gasLimit, data, fee)
		if err != nil {
			return err
		}
		signed, err = types.SignTx(tx, types.LatestSignerForChainID(chainID), c.key)
		if err != nil {
			return fmt.Errorf("failed to sign transaction: %w", err)
		}
		return c.backend.SendTransaction(ctx, signed)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrSubmissionRejected, err)
	}

	c.logger.WithFields(logrus.Fields{
		"tx_hash":   signed.Hash().Hex(),
		"nonce":     nonce,
		"gas_limit": gasLimit,
		"to":        to.Hex(),
		"fee_model": fee.Model,
	}).Info("Transaction sent")

	return &models.TransactionHandle{Hash: signed.Hash(), Nonce: nonce}, nil
}

func (c *ERC1155Client) buildTransaction(chainID *big.Int, nonce, gasLimit uint64, data []byte, fee models.FeeQuote) (*types.Transaction, error) {
	switch fee.Model {
	case models.FeeModelEIP1559:
		if fee.TipCap == nil || fee.FeeCap == nil {
			return nil, fmt.Errorf("eip1559 fee quote missing tip or cap")
		}
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: fee.TipCap,
			GasFeeCap: fee.FeeCap,
			Gas:       gasLimit,
			To:        &c.contract,
			Value:     big.NewInt(0),
			Data:      data,
		}), nil
	case models.FeeModelLegacy:
		if fee.GasPrice == nil {
			return nil, fmt.Errorf("legacy fee quote missing gas price")
		}
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: fee.GasPrice,
			Gas:      gasLimit,
			To:       &c.contract,
			Value:    big.NewInt(0),
			Data:     data,
		}), nil
	default:
		return nil, fmt.Errorf("unknown fee model %q", fee.Model)
	}
}

func (c *ERC1155Client) transferData(from, to common.Address, tokenID, amount *big.Int) ([]byte, error) {
	data, err := c.contractABI.Pack("safeTransferFrom", from, to, tokenID, amount, []byte{})
	if err != nil {
		return nil, fmt.Errorf("failed to pack safeTransferFrom: %w", err)
	}
	return data, nil
}

// AwaitInclusion polls for the receipt until it has the requested
// confirmations, ctx ends, or deadline passes. A receipt with failed status
// counts as not confirmed.
func (c *ERC1155Client) AwaitInclusion(ctx context.Context, handle models.TransactionHandle, confirmations uint64, deadline time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	if confirmations == 0 {
		confirmations = 1
	}
	log := c.logger.WithField("tx_hash", handle.Hash.Hex())

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, handle.Hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				log.WithField("block", receipt.BlockNumber).Warn("Transaction included but reverted")
				return false
			}
			if c.hasConfirmations(ctx, receipt, confirmations) {
				log.WithField("block", receipt.BlockNumber).Info("Transaction confirmed")
				return true
			}
		case err != nil && !errors.Is(err, ethereum.NotFound):
			log.WithError(err).Debug("Receipt query failed, retrying")
		}

		select {
		case <-ctx.Done():
			log.Info("Inclusion not observed before deadline")
			return false
		case <-ticker.C:
		}
	}
}

func (c *ERC1155Client) hasConfirmations(ctx context.Context, receipt *types.Receipt, confirmations uint64) bool {
	if confirmations <= 1 {
		return true
	}
	head, err := c.backend.BlockNumber(ctx)
	if err != nil || receipt.BlockNumber == nil {
		return false
	}
	included := receipt.BlockNumber.Uint64()
	return head >= included && head-included+1 >= confirmations
}

// RevertReason reports whether err is an execution revert and extracts its
// reason. Error(string) payloads are decoded; other payloads are returned as
// hex so custom errors stay visible.
func RevertReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if raw, ok := dataErr.ErrorData().(string); ok && raw != "" {
			if data, decodeErr := hexutil.Decode(raw); decodeErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason, true
				}
				return "custom error " + raw, true
			}
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "execution reverted") {
		reason := strings.TrimPrefix(msg[strings.Index(msg, "execution reverted"):], "execution reverted")
		reason = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(reason), ":"))
		if reason == "" {
			reason = "execution reverted"
		}
		return reason, true
	}
	return "", false
}
