package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/config"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/metrics"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/utils"
)

// DisbursementPublisher receives every terminal result. Implementations must
// not block and must not fail the run.
type DisbursementPublisher interface {
	PublishDisbursement(ctx context.Context, requestID string, result *models.DisbursementResult)
}

// DisbursementService issues one fixed token quantity per recipient from the
// treasury. Checks run cheapest and most decisive first; fee-spending steps
// come last.
type DisbursementService struct {
	client    ChainClient
	cfg       *config.DispenserConfig
	logger    *logrus.Logger
	publisher DisbursementPublisher // optional
}

// NewDisbursementService creates the disbursement service
func NewDisbursementService(client ChainClient, cfg *config.DispenserConfig, logger *logrus.Logger) *DisbursementService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DisbursementService{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// SetPublisher sets the event publisher
func (s *DisbursementService) SetPublisher(publisher DisbursementPublisher) {
	s.publisher = publisher
}

// Disburse runs one disbursement for rawRecipient. It never returns an error:
// every failure becomes a typed result carrying diagnostics.
func (s *DisbursementService) Disburse(ctx context.Context, rawRecipient string) (result *models.DisbursementResult) {
	requestID := RequestIDFromContext(ctx)
	run := &disbursementRun{
		stage:      models.StageValidating,
		stageStart: time.Now(),
		log: s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"input":      utils.TruncateInput(rawRecipient),
		}),
	}

	defer func() {
		if r := recover(); r != nil {
			run.log.WithField("panic", r).Error("Disbursement aborted by panic")
			result = s.chainUnavailable(run, nil, fmt.Errorf("internal error: %v", r))
		}
		run.observeStage()
		s.finish(ctx, requestID, run, result)
	}()

	return s.disburse(ctx, run, rawRecipient)
}

func (s *DisbursementService) disburse(ctx context.Context, run *disbursementRun, rawRecipient string) *models.DisbursementResult {
	recipient, err := utils.NormalizeEVMAddress(rawRecipient)
	if err != nil {
		res := models.NewDisbursementResult(models.DisbursementStatusInvalidInput, run.stage)
		res.Diagnostics["error"] = err.Error()
		res.Diagnostics["input"] = utils.TruncateInput(rawRecipient)
		return res
	}
	run.recipient = recipient
	run.log = run.log.WithField("recipient", recipient.Hex())

	run.enter(models.StageCheckingNetwork)
	network, err := s.client.NetworkIdentity(ctx)
	if err != nil {
		return s.chainUnavailable(run, nil, err)
	}
	if network.ChainID != s.cfg.ExpectedChainID {
		res := s.newResult(run, models.DisbursementStatusWrongNetwork, network)
		res.Diagnostics["error"] = "Wrong RPC network"
		res.Diagnostics["expectedChainId"] = s.cfg.ExpectedChainID
		res.Diagnostics["got"] = map[string]any{"chainId": network.ChainID, "name": network.Name}
		return res
	}

	run.enter(models.StageCheckingSigner)
	signer, err := s.client.SignerAddress(ctx)
	if err != nil {
		return s.chainUnavailable(run, network, err)
	}
	if signer != s.cfg.TreasuryAddress {
		res := s.newResult(run, models.DisbursementStatusSignerMismatch, network)
		res.Diagnostics["error"] = "Signer address does not match treasury address"
		res.Diagnostics["signerAddr"] = signer.Hex()
		res.Diagnostics["treasuryAddr"] = s.cfg.TreasuryAddress.Hex()
		return res
	}

	run.enter(models.StageCheckingEligibility)
	report, err := EvaluateEligibility(ctx, s.client, recipient, s.cfg.TreasuryAddress,
		s.cfg.TokenID, s.cfg.AmountPerRecipient, s.cfg.EligibilityPolicy)
	if err != nil {
		return s.chainUnavailable(run, network, err)
	}
	switch report.Decision {
	case models.EligibilityAlreadySatisfied:
		res := s.newResult(run, models.DisbursementStatusAlready, network)
		res.Diagnostics["message"] = "Recipient already holds this token"
		res.Diagnostics["recipientBalance"] = report.RecipientBalance.String()
		res.Diagnostics["policy"] = string(s.cfg.EligibilityPolicy)
		return res
	case models.EligibilityInsufficientSupply:
		res := s.newResult(run, models.DisbursementStatusNoneAvailable, network)
		res.Diagnostics["message"] = "Treasury holds insufficient token balance"
		res.Diagnostics["treasuryBalance"] = report.TreasuryBalance.String()
		res.Diagnostics["required"] = s.cfg.AmountPerRecipient.String()
		return res
	}

	run.enter(models.StageSimulating)
	outcome, err := s.client.SimulateTransfer(ctx, s.cfg.TreasuryAddress, recipient, s.cfg.TokenID, s.cfg.AmountPerRecipient)
	if err != nil {
		return s.chainUnavailable(run, network, err)
	}
	if !outcome.OK {
		res := s.newResult(run, models.DisbursementStatusWouldRevert, network)
		res.Diagnostics["error"] = "Transfer would revert"
		res.Diagnostics["reason"] = outcome.Reason
		return res
	}

	run.enter(models.StagePricing)
	suggested, err := s.client.SuggestedFees(ctx)
	if err != nil {
		run.log.WithError(err).Warn("Fee suggestion unavailable, using floors")
		suggested = nil
	}
	fees := QuoteFees(suggested, s.cfg.FeeFloors)

	run.enter(models.StageSubmitting)
	handle, err := s.client.SubmitTransfer(ctx, s.cfg.TreasuryAddress, recipient, s.cfg.TokenID, s.cfg.AmountPerRecipient, fees)
	if err != nil {
		res := s.newResult(run, models.DisbursementStatusSubmissionFailed, network)
		res.Fees = &fees
		res.Diagnostics["error"] = err.Error()
		return res
	}
	run.log = run.log.WithField("tx_hash", handle.Hash.Hex())
	run.log.WithField("nonce", handle.Nonce).Info("Transfer broadcast")

	run.enter(models.StageAwaitingInclusion)
	confirmed := s.awaitInclusion(ctx, *handle)
	metrics.InclusionConfirmedTotal.WithLabelValues(fmt.Sprintf("%t", confirmed)).Inc()

	run.enter(models.StageDone)
	res := s.newResult(run, models.DisbursementStatusSent, network)
	res.TxHash = handle.Hash.Hex()
	res.Confirmed = confirmed
	res.Fees = &fees
	res.Diagnostics["message"] = "Transaction broadcast"
	if url := utils.GlobalChainRegistry.TxURL(network.ChainID, res.TxHash); url != "" {
		res.Diagnostics["explorer"] = url
	}
	return res
}

// awaitInclusion waits at most InclusionDeadline. The wait runs detached from
// the caller's cancellation; if it outlives the deadline its answer is dropped.
func (s *DisbursementService) awaitInclusion(ctx context.Context, handle models.TransactionHandle) bool {
	deadline := s.cfg.InclusionDeadline
	done := make(chan bool, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.WithFields(logrus.Fields{
					"tx_hash": handle.Hash.Hex(),
					"panic":   r,
				}).Error("Inclusion wait aborted by panic")
				done <- false
			}
		}()

		waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deadline)
		defer cancel()
		done <- s.client.AwaitInclusion(waitCtx, handle, 1, deadline)
	}()

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case confirmed := <-done:
		return confirmed
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *DisbursementService) newResult(run *disbursementRun, status models.DisbursementStatus, network *models.NetworkIdentity) *models.DisbursementResult {
	res := models.NewDisbursementResult(status, run.stage)
	res.Recipient = run.recipient.Hex()
	res.Contract = s.cfg.ContractAddress.Hex()
	res.TokenID = s.cfg.TokenID.String()
	res.Amount = s.cfg.AmountPerRecipient.String()
	res.Network = network
	return res
}

func (s *DisbursementService) chainUnavailable(run *disbursementRun, network *models.NetworkIdentity, err error) *models.DisbursementResult {
	res := s.newResult(run, models.DisbursementStatusChainUnavailable, network)
	if run.recipient == (common.Address{}) {
		res.Recipient = ""
	}
	res.Diagnostics["error"] = err.Error()
	res.Diagnostics["stage"] = string(run.stage)
	if !errors.Is(err, models.ErrChainUnavailable) {
		run.log.WithError(err).Warn("Unclassified chain error treated as unavailable")
	}
	return res
}

func (s *DisbursementService) finish(ctx context.Context, requestID string, run *disbursementRun, result *models.DisbursementResult) {
	metrics.DisbursementsTotal.WithLabelValues(string(result.Status)).Inc()

	entry := run.log.WithFields(logrus.Fields{
		"status": result.Status,
		"stage":  result.Stage,
	})
	switch {
	case result.Status == models.DisbursementStatusSent:
		entry.WithField("confirmed", result.Confirmed).Info("Disbursement sent")
	case result.Status.IsFailure():
		entry.WithField("diagnostics", result.Diagnostics).Warn("Disbursement rejected")
	default:
		entry.Info("Disbursement skipped")
	}

	if s.publisher != nil {
		s.publisher.PublishDisbursement(ctx, requestID, result)
	}
}

// disbursementRun per-request state: current stage and its timer
type disbursementRun struct {
	stage      models.DisbursementStage
	stageStart time.Time
	recipient  common.Address
	log        *logrus.Entry
}

func (r *disbursementRun) enter(stage models.DisbursementStage) {
	r.observeStage()
	r.stage = stage
	r.stageStart = time.Now()
}

func (r *disbursementRun) observeStage() {
	metrics.DisbursementStageDuration.WithLabelValues(string(r.stage)).Observe(time.Since(r.stageStart).Seconds())
}
