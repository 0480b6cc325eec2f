package marketplace

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/core/datasources"
	"github.com/tradeforge-xyz/marketplace-engine/core/indexer"
	"github.com/tradeforge-xyz/marketplace-engine/core/types"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/adapters"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/logger"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/logger/slogx"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/reportingclient"
)

var _ indexer.Processor[*types.Block] = (*Processor)(nil)

type Processor struct {
	marketplaceDg   datagateway.MarketplaceDataGateway
	assets          adapters.AssetRegistry
	payments        adapters.PaymentLedger
	settler         adapters.SettlementExecutor
	datasource      datasources.Datasource[*types.Block]
	network         common.Network
	custodian       common.Address
	feeAdmin        common.Address
	firstBlock      int64
	reportingClient *reportingclient.ReportingClient
	cleanupFuncs    []func(context.Context) error

	// inFlight rejects nested entry into a settlement operation while
	// another one is mid-flight (defense-in-depth on top of the
	// checks-effects-interactions ordering).
	inFlight atomic.Bool
}

func NewProcessor(
	marketplaceDg datagateway.MarketplaceDataGateway,
	assets adapters.AssetRegistry,
	payments adapters.PaymentLedger,
	settler adapters.SettlementExecutor,
	datasource datasources.Datasource[*types.Block],
	network common.Network,
	custodian common.Address,
	feeAdmin common.Address,
	firstBlock int64,
	reportingClient *reportingclient.ReportingClient,
	cleanupFuncs []func(context.Context) error,
) *Processor {
	return &Processor{
		marketplaceDg:   marketplaceDg,
		assets:          assets,
		payments:        payments,
		settler:         settler,
		datasource:      datasource,
		network:         network,
		custodian:       custodian,
		feeAdmin:        feeAdmin,
		firstBlock:      firstBlock,
		reportingClient: reportingClient,
		cleanupFuncs:    cleanupFuncs,
	}
}

// Name implements indexer.Processor.
func (p *Processor) Name() string {
	return "marketplace"
}

// CurrentBlock implements indexer.Processor.
func (p *Processor) CurrentBlock(ctx context.Context) (types.BlockHeader, error) {
	block, err := p.marketplaceDg.GetLatestIndexedBlock(ctx)
	if err != nil {
		if !errors.Is(err, errs.NotFound) {
			return types.BlockHeader{}, errors.Wrap(err, "failed to get latest indexed block")
		}
		if p.firstBlock <= 0 {
			// start from genesis
			return types.BlockHeader{}, errors.WithStack(errs.NotFound)
		}
		header, err := p.datasource.GetBlockHeader(ctx, p.firstBlock-1)
		if err != nil {
			return types.BlockHeader{}, errors.Wrapf(err, "failed to get block header at first block height %d", p.firstBlock-1)
		}
		return header, nil
	}
	return types.BlockHeader{
		Hash:   block.Hash,
		Height: block.Height,
	}, nil
}

// GetIndexedBlock implements indexer.Processor.
func (p *Processor) GetIndexedBlock(ctx context.Context, height int64) (types.BlockHeader, error) {
	block, err := p.marketplaceDg.GetIndexedBlockByHeight(ctx, height)
	if err != nil {
		return types.BlockHeader{}, errors.Wrapf(err, "failed to get indexed block at height %d", height)
	}
	return types.BlockHeader{
		Hash:   block.Hash,
		Height: block.Height,
	}, nil
}

// Process implements indexer.Processor.
func (p *Processor) Process(ctx context.Context, inputs []*types.Block) error {
	for _, block := range inputs {
		if err := p.processBlock(ctx, block); err != nil {
			return errors.Wrapf(err, "failed to process block %d", block.Header.Height)
		}

		if p.reportingClient != nil {
			if err := p.reportingClient.SubmitBlockReport(ctx, reportingclient.SubmitBlockReportPayload{
				Type:          "marketplace",
				ClientVersion: Version,
				DBVersion:     DBVersion,
				Network:       p.network,
				BlockHeight:   uint64(block.Header.Height),
				BlockHash:     block.Header.Hash,
			}); err != nil {
				logger.WarnContext(ctx, "Failed to submit block report", slogx.Error(err))
			}
		}
	}
	return nil
}

func (p *Processor) processBlock(ctx context.Context, block *types.Block) error {
	events := p.parseTransactions(ctx, block.Transactions)

	qtx, err := p.marketplaceDg.BeginMarketplaceTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	for _, event := range events {
		if err := p.processInstruction(ctx, qtx, block, event); err != nil {
			return errors.WithStack(err)
		}
	}

	if err := qtx.CreateIndexedBlock(ctx, entity.IndexedBlock{
		Height: block.Header.Height,
		Hash:   block.Header.Hash,
	}); err != nil {
		return errors.Wrap(err, "failed to create indexed block")
	}

	if err := qtx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	logger.InfoContext(ctx, "Processed marketplace block",
		slogx.Int64("height", block.Header.Height),
		slogx.Stringer("hash", block.Header.Hash),
		slogx.Int("instructions", len(events)),
	)
	return nil
}

// processInstruction runs one instruction in its own nested store
// transaction so a failed operation rolls back alone, journals the
// outcome, and keeps going. Infrastructure errors abort the block.
func (p *Processor) processInstruction(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	opErr := p.applyInstruction(ctx, qtx, block, event)
	if opErr != nil && !isOperationError(opErr) {
		return errors.WithStack(opErr)
	}

	// A stale listing is purged even though the purchase fails; the
	// deletion lands on the enclosing block transaction so the nested
	// rollback cannot undo it.
	if errors.Is(opErr, errs.StaleState) {
		tokenId, err := uint128.FromString(event.instruction.TokenId)
		if err == nil {
			if err := qtx.DeleteListing(ctx, event.instruction.AssetContract, tokenId, block.Header.Height); err != nil && !errors.Is(err, errs.NotFound) {
				return errors.Wrap(err, "failed to delete stale listing")
			}
		}
	}

	reason := ""
	if opErr != nil {
		reason = opErr.Error()
	}
	if err := qtx.CreateEvent(ctx, entity.Event{
		TxHash:         event.transaction.Hash,
		TxIndex:        event.transaction.Index,
		Caller:         event.transaction.Sender,
		Action:         event.instruction.Op,
		Valid:          opErr == nil,
		Reason:         reason,
		Payload:        event.rawData,
		BlockHeight:    block.Header.Height,
		BlockHash:      block.Header.Hash,
		BlockTimestamp: block.Header.Timestamp,
	}); err != nil {
		return errors.Wrap(err, "failed to journal event")
	}
	return nil
}

// applyInstruction dispatches one instruction inside a nested store
// transaction guarded against reentrant entry.
func (p *Processor) applyInstruction(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	if !p.inFlight.CompareAndSwap(false, true) {
		return errors.Wrap(errs.ReentrancyDetected, "another operation is in flight")
	}
	defer p.inFlight.Store(false)

	optx, err := qtx.BeginMarketplaceTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin nested transaction")
	}
	defer func() {
		if err := optx.Rollback(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to rollback nested transaction", slogx.Error(err))
		}
	}()

	instruction := event.instruction
	var opErr error
	switch instruction.Op {
	case OpList:
		opErr = p.processList(ctx, optx, block, event)
	case OpCancelListing:
		opErr = p.processCancelListing(ctx, optx, block, event)
	case OpPurchase:
		opErr = p.processPurchase(ctx, optx, block, event)
	case OpMakeOffer:
		opErr = p.processMakeOffer(ctx, optx, block, event)
	case OpCancelOffer:
		opErr = p.processCancelOffer(ctx, optx, block, event)
	case OpAcceptOffer:
		opErr = p.processAcceptOffer(ctx, optx, block, event)
	case OpSubscribe:
		opErr = p.processSubscribe(ctx, optx, block, event)
	case OpSetFeeConfig:
		opErr = p.processSetFeeConfig(ctx, optx, block, event)
	case OpSetSubscriptionTier:
		opErr = p.processSetSubscriptionTier(ctx, optx, block, event)
	case OpSetRoyaltyConfig:
		opErr = p.processSetRoyaltyConfig(ctx, optx, block, event)
	default:
		opErr = errors.Wrapf(errs.Unsupported, "unknown op %q", instruction.Op)
	}
	if opErr != nil {
		return errors.WithStack(opErr)
	}

	if err := optx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit nested transaction")
	}
	return nil
}

// operationErrorKinds are instruction failures: journaled as invalid
// events without aborting the enclosing block.
var operationErrorKinds = []error{
	errs.NotFound,
	errs.Unauthorized,
	errs.Expired,
	errs.InvalidAmount,
	errs.StaleState,
	errs.InvalidConfiguration,
	errs.TransferFailure,
	errs.ReentrancyDetected,
	errs.InvalidArgument,
	errs.Unsupported,
	errs.Duplicate,
	errs.OverflowUint128,
}

func isOperationError(err error) bool {
	for _, kind := range operationErrorKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// RevertData implements indexer.Processor.
func (p *Processor) RevertData(ctx context.Context, from int64) error {
	qtx, err := p.marketplaceDg.BeginMarketplaceTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := qtx.Rollback(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to rollback transaction", slogx.Error(err))
		}
	}()

	blocksRemoved, err := qtx.DeleteIndexedBlocksSinceHeight(ctx, from)
	if err != nil {
		return errors.Wrap(err, "failed to delete indexed blocks")
	}
	if _, err := qtx.DeleteEventsSinceHeight(ctx, from); err != nil {
		return errors.Wrap(err, "failed to delete events")
	}
	if _, err := qtx.DeleteListingsSinceHeight(ctx, from); err != nil {
		return errors.Wrap(err, "failed to delete listings")
	}
	if _, err := qtx.UnmarkListingsDeletedSinceHeight(ctx, from); err != nil {
		return errors.Wrap(err, "failed to unmark deleted listings")
	}
	if _, err := qtx.DeleteOffersSinceHeight(ctx, from); err != nil {
		return errors.Wrap(err, "failed to delete offers")
	}
	if _, err := qtx.UnmarkOffersDeletedSinceHeight(ctx, from); err != nil {
		return errors.Wrap(err, "failed to unmark deleted offers")
	}
	if _, err := qtx.DeleteSubscriptionsSinceHeight(ctx, from); err != nil {
		return errors.Wrap(err, "failed to delete subscriptions")
	}
	if _, err := qtx.DeleteSubscriptionTiersSinceHeight(ctx, from); err != nil {
		return errors.Wrap(err, "failed to delete subscription tiers")
	}
	if _, err := qtx.DeleteFeeConfigsSinceHeight(ctx, from); err != nil {
		return errors.Wrap(err, "failed to delete fee configs")
	}
	if _, err := qtx.DeleteRoyaltyConfigsSinceHeight(ctx, from); err != nil {
		return errors.Wrap(err, "failed to delete royalty configs")
	}

	if err := qtx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	logger.InfoContext(ctx, "Reverted marketplace data",
		slogx.Int64("from", from),
		slogx.Int64("blocks_removed", blocksRemoved),
	)
	return nil
}

// VerifyStates implements indexer.Processor. It seeds a zero fee
// configuration on first boot so settlement never observes a missing
// config.
func (p *Processor) VerifyStates(ctx context.Context) error {
	if p.custodian.IsZero() {
		return errors.Wrap(errs.InvalidConfiguration, "custodian address is not configured")
	}
	if p.feeAdmin.IsZero() {
		logger.WarnContext(ctx, "Fee admin address is not configured, admin instructions will be rejected")
	}

	if _, err := p.marketplaceDg.GetFeeConfig(ctx); err != nil {
		if !errors.Is(err, errs.NotFound) {
			return errors.Wrap(err, "failed to get fee config")
		}
		// seeded below the first processed height so reorg reverts
		// never remove it
		if err := p.marketplaceDg.CreateFeeConfig(ctx, entity.FeeConfig{
			DefaultFeeBps:     0,
			FeeRecipient:      common.Address{},
			RoyaltiesDisabled: false,
			BlockHeight:       -1,
		}); err != nil {
			return errors.Wrap(err, "failed to seed fee config")
		}
		logger.InfoContext(ctx, "Seeded zero fee config")
	}
	return nil
}

// Shutdown implements indexer.Processor.
func (p *Processor) Shutdown(ctx context.Context) error {
	for _, cleanupFunc := range p.cleanupFuncs {
		if err := cleanupFunc(ctx); err != nil {
			return errors.Wrap(err, "cleanup function error")
		}
	}
	return nil
}
