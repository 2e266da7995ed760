package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/clients"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/config"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/events"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/handlers"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/router"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/services"
)

// ServiceContainer owns every long-lived component of the server
type ServiceContainer struct {
	Config    *config.Config
	Dispenser *config.DispenserConfig
	Logger    *logrus.Logger

	// Chain access
	Chain services.TreasuryReader

	// Core Services
	DisbursementService *services.DisbursementService
	MonitoringService   *services.MonitoringService

	// Events (optional)
	NATSClient *clients.NATSClient
	Events     *events.DisbursementEvents

	// Admin (optional)
	AdminTokens *handlers.AdminTokens

	closers []func()
}

// InitializeContainer validates the configuration, dials the RPC endpoint and
// wires all services. Configuration errors are fatal; NATS is optional.
func InitializeContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*ServiceContainer, error) {
	dispenser, err := cfg.Dispenser.Validate()
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"contract":       dispenser.ContractAddress.Hex(),
		"treasury":       dispenser.TreasuryAddress.Hex(),
		"signer":         dispenser.SignerAddress().Hex(),
		"token_id":       dispenser.TokenID.String(),
		"amount":         dispenser.AmountPerRecipient.String(),
		"expected_chain": dispenser.ExpectedChainID,
		"fee_model":      dispenser.FeeFloors.Model,
		"policy":         dispenser.EligibilityPolicy,
	}).Info("Dispenser configuration validated")

	chain, err := clients.DialERC1155Client(ctx, dispenser, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	container, err := NewServiceContainer(cfg, dispenser, chain, logger)
	if err != nil {
		chain.Close()
		return nil, err
	}
	container.closers = append(container.closers, chain.Close)

	// Event services are optional, log but don't fail
	if err := container.initEventServices(); err != nil {
		logger.WithError(err).Warn("Event services initialization skipped or failed")
	}

	return container, nil
}

// NewServiceContainer wires services around an existing chain client
func NewServiceContainer(cfg *config.Config, dispenser *config.DispenserConfig, chain services.TreasuryReader, logger *logrus.Logger) (*ServiceContainer, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	c := &ServiceContainer{
		Config:    cfg,
		Dispenser: dispenser,
		Logger:    logger,
		Chain:     chain,
	}

	c.DisbursementService = services.NewDisbursementService(chain, dispenser, logger)
	c.MonitoringService = services.NewMonitoringService(chain, dispenser, logger)

	if cfg.Admin.JWTSecret != "" {
		tokens, err := handlers.NewAdminTokens(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize admin tokens: %w", err)
		}
		c.AdminTokens = tokens
	}

	return c, nil
}

// initEventServices connects to NATS when configured
func (c *ServiceContainer) initEventServices() error {
	if c.Config.NATS.URL == "" {
		c.Logger.Info("NATS not configured, skipping event publishing")
		return nil
	}

	client, err := clients.NewNATSClient(c.Config.NATS, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create NATS client: %w", err)
	}
	c.NATSClient = client
	c.closers = append(c.closers, client.Close)

	c.Events = events.NewDisbursementEvents(client, c.Config.NATS.SubjectPrefix, c.Logger)
	c.DisbursementService.SetPublisher(c.Events)

	c.Logger.WithField("prefix", c.Config.NATS.SubjectPrefix).Info("NATS event publishing initialized")
	return nil
}

// Router builds the HTTP engine over the container's services
func (c *ServiceContainer) Router() *gin.Engine {
	deps := router.Dependencies{
		Server:   c.Config.Server,
		CORS:     c.Config.CORS,
		Admin:    c.Config.Admin,
		Disburse: handlers.NewDisburseHandler(c.DisbursementService, c.Logger),
		Logger:   c.Logger,
	}
	if c.AdminTokens != nil {
		deps.Treasury = handlers.NewTreasuryHandler(c.MonitoringService, c.Logger)
		deps.AdminTokens = c.AdminTokens
	}
	return router.SetupRouter(deps)
}

// Start starts background services
func (c *ServiceContainer) Start() {
	c.MonitoringService.Start()
}

// Close stops background services and releases connections, last opened first
func (c *ServiceContainer) Close() {
	c.MonitoringService.Stop()
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
