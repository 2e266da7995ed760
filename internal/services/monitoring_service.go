package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/sirupsen/logrus"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/config"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/metrics"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/utils"
)

const snapshotTimeout = 10 * time.Second

// TreasuryReader chain reads needed to inspect the treasury
type TreasuryReader interface {
	ChainClient
	NativeBalance(ctx context.Context, account common.Address) (*big.Int, error)
}

// MonitoringService periodically refreshes the treasury gauges and serves
// on-demand snapshots to the admin API
type MonitoringService struct {
	reader   TreasuryReader
	cfg      *config.DispenserConfig
	logger   *logrus.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	interval time.Duration
}

// NewMonitoringService creates the monitoring service
func NewMonitoringService(reader TreasuryReader, cfg *config.DispenserConfig, logger *logrus.Logger) *MonitoringService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MonitoringService{
		reader:   reader,
		cfg:      cfg,
		logger:   logger,
		stopCh:   make(chan struct{}),
		interval: cfg.MonitorInterval,
	}
}

// Start launches the balance monitor. A zero interval disables it.
func (m *MonitoringService) Start() {
	if m.interval <= 0 {
		m.logger.Info("Treasury monitoring disabled")
		return
	}
	m.logger.WithField("interval", m.interval).Info("Starting treasury monitoring")

	m.wg.Add(1)
	go m.monitorBalances()
}

// Stop stops the monitor and waits for it to exit
func (m *MonitoringService) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	m.wg.Wait()
	m.logger.Info("Treasury monitoring stopped")
}

func (m *MonitoringService) monitorBalances() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// run once immediately
	m.updateBalances()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.updateBalances()
		}
	}
}

func (m *MonitoringService) updateBalances() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	if _, err := m.Snapshot(ctx); err != nil {
		m.logger.WithError(err).Warn("Treasury balance refresh failed")
	}
}

// Snapshot reads the treasury state and updates the gauges as a side effect.
// Fee suggestion failure is not fatal; the floors are reported instead.
func (m *MonitoringService) Snapshot(ctx context.Context) (*models.TreasurySnapshot, error) {
	network, err := m.reader.NetworkIdentity(ctx)
	if err != nil {
		metrics.TreasuryMonitorErrors.WithLabelValues("network").Inc()
		return nil, fmt.Errorf("failed to read network: %w", err)
	}
	signer, err := m.reader.SignerAddress(ctx)
	if err != nil {
		metrics.TreasuryMonitorErrors.WithLabelValues("signer").Inc()
		return nil, fmt.Errorf("failed to read signer: %w", err)
	}

	treasury := m.cfg.TreasuryAddress
	native, err := m.reader.NativeBalance(ctx, treasury)
	if err != nil {
		metrics.TreasuryMonitorErrors.WithLabelValues("native_balance").Inc()
		return nil, fmt.Errorf("failed to read native balance: %w", err)
	}
	tokens, err := m.reader.BalanceOf(ctx, treasury, m.cfg.TokenID)
	if err != nil {
		metrics.TreasuryMonitorErrors.WithLabelValues("token_balance").Inc()
		return nil, fmt.Errorf("failed to read token balance: %w", err)
	}

	suggested, err := m.reader.SuggestedFees(ctx)
	if err != nil {
		metrics.TreasuryMonitorErrors.WithLabelValues("fees").Inc()
		suggested = nil
	}

	nativeEther := WeiToEther(native)
	chain := network.Name
	metrics.TreasuryNativeBalance.WithLabelValues(chain, treasury.Hex()).Set(nativeEther)
	tokenFloat, _ := new(big.Float).SetInt(tokens).Float64()
	metrics.TreasuryTokenBalance.WithLabelValues(chain, m.cfg.TokenID.String()).Set(tokenFloat)

	remaining := new(big.Int).Quo(tokens, m.cfg.AmountPerRecipient)

	return &models.TreasurySnapshot{
		Network:                network,
		Signer:                 signer.Hex(),
		Treasury:               treasury.Hex(),
		SignerMatchesTreasury:  signer == treasury,
		NativeSymbol:           utils.GlobalChainRegistry.NativeSymbol(network.ChainID),
		NativeBalanceWei:       native.String(),
		NativeBalance:          nativeEther,
		Contract:               m.cfg.ContractAddress.Hex(),
		TokenID:                m.cfg.TokenID.String(),
		TokenBalance:           tokens.String(),
		AmountPerRecipient:     m.cfg.AmountPerRecipient.String(),
		RemainingDisbursements: remaining.String(),
		SuggestedFees:          suggested,
		EffectiveFees:          QuoteFees(suggested, m.cfg.FeeFloors),
		CheckedAt:              time.Now().UTC(),
	}, nil
}

// WeiToEther converts wei to ether units as float64 (gauge precision)
func WeiToEther(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(params.Ether))
	v, _ := f.Float64()
	return v
}
