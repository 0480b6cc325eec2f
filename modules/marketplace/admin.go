package marketplace

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/core/types"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

func (p *Processor) requireFeeAdmin(event marketplaceEvent) error {
	caller := event.transaction.Sender
	if p.feeAdmin.IsZero() || caller != p.feeAdmin {
		return errors.Wrapf(errs.Unauthorized, "caller %s is not the fee admin", caller)
	}
	return nil
}

func (p *Processor) processSetFeeConfig(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	if err := p.requireFeeAdmin(event); err != nil {
		return errors.WithStack(err)
	}
	instruction := event.instruction
	if instruction.DefaultFeeBps > maxBps {
		return errors.Wrapf(errs.InvalidConfiguration, "default fee %d bps exceeds 10000", instruction.DefaultFeeBps)
	}
	if instruction.DefaultFeeBps > 0 && instruction.FeeRecipient.IsZero() {
		return errors.Wrap(errs.InvalidConfiguration, "feeRecipient is required when defaultFeeBps is positive")
	}
	if err := qtx.CreateFeeConfig(ctx, entity.FeeConfig{
		DefaultFeeBps:     instruction.DefaultFeeBps,
		FeeRecipient:      instruction.FeeRecipient,
		RoyaltiesDisabled: instruction.RoyaltiesDisabled,
		BlockHeight:       block.Header.Height,
	}); err != nil {
		return errors.Wrap(err, "failed to create fee config")
	}
	return nil
}

func (p *Processor) processSetSubscriptionTier(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	if err := p.requireFeeAdmin(event); err != nil {
		return errors.WithStack(err)
	}
	instruction := event.instruction
	if instruction.FeeBps > maxBps {
		return errors.Wrapf(errs.InvalidConfiguration, "tier fee %d bps exceeds 10000", instruction.FeeBps)
	}
	if instruction.DurationSeconds <= 0 {
		return errors.Wrap(errs.InvalidArgument, "tier duration must be positive")
	}
	price, err := parseUint128("price", instruction.Price)
	if err != nil {
		return errors.WithStack(err)
	}

	// Only isActive and the price of future renewals may change once a
	// tier exists; the rate and duration of active subscribers never
	// change retroactively.
	existing, err := qtx.GetSubscriptionTier(ctx, instruction.TierId)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get subscription tier")
	}
	if existing != nil && (existing.FeeBps != instruction.FeeBps || existing.DurationSeconds != instruction.DurationSeconds) {
		return errors.Wrapf(errs.InvalidConfiguration, "feeBps and duration of tier %d cannot change once set", instruction.TierId)
	}

	if err := qtx.CreateSubscriptionTier(ctx, entity.SubscriptionTier{
		TierId:          instruction.TierId,
		DurationSeconds: instruction.DurationSeconds,
		Price:           price,
		PaymentToken:    instruction.PaymentToken,
		FeeBps:          instruction.FeeBps,
		IsActive:        instruction.IsActive,
		BlockHeight:     block.Header.Height,
	}); err != nil {
		return errors.Wrap(err, "failed to create subscription tier")
	}
	return nil
}

func (p *Processor) processSetRoyaltyConfig(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	if err := p.requireFeeAdmin(event); err != nil {
		return errors.WithStack(err)
	}
	instruction := event.instruction
	if instruction.AssetContract.IsZero() {
		return errors.Wrap(errs.InvalidArgument, "assetContract is required")
	}
	if instruction.RoyaltyBps > maxBps {
		return errors.Wrapf(errs.InvalidConfiguration, "royalty %d bps exceeds 10000", instruction.RoyaltyBps)
	}
	if err := qtx.CreateRoyaltyConfig(ctx, entity.RoyaltyConfig{
		AssetContract: instruction.AssetContract,
		Recipient:     instruction.Recipient,
		RoyaltyBps:    instruction.RoyaltyBps,
		BlockHeight:   block.Header.Height,
	}); err != nil {
		return errors.Wrap(err, "failed to create royalty config")
	}
	return nil
}
