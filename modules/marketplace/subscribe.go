package marketplace

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/core/types"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

// processSubscribe purchases a fee-tier subscription. Renewing before
// expiry stacks the new period on top of the remaining one.
func (p *Processor) processSubscribe(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	instruction := event.instruction
	caller := event.transaction.Sender
	now := block.Header.Timestamp

	tier, err := qtx.GetSubscriptionTier(ctx, instruction.TierId)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.Wrapf(errs.NotFound, "subscription tier %d does not exist", instruction.TierId)
		}
		return errors.Wrap(err, "failed to get subscription tier")
	}
	if !tier.IsActive {
		return errors.Wrapf(errs.Unsupported, "subscription tier %d is retired", instruction.TierId)
	}

	if tier.PaymentToken.IsZero() {
		if !event.transaction.Value.Equals(tier.Price) {
			return errors.Wrapf(errs.InvalidAmount, "attached value %s does not match tier price %s", event.transaction.Value, tier.Price)
		}
	} else {
		if !event.transaction.Value.IsZero() {
			return errors.Wrap(errs.InvalidAmount, "attached value must be zero for a token priced tier")
		}
		if !tier.Price.IsZero() {
			if err := p.checkTokenFunds(ctx, tier.PaymentToken, caller, tier.Price); err != nil {
				return errors.WithStack(err)
			}
		}
	}

	base := now
	current, err := qtx.GetSubscription(ctx, caller)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get subscription")
	}
	if current != nil && current.ExpiresAt.After(base) {
		base = current.ExpiresAt
	}

	if err := qtx.CreateSubscription(ctx, entity.Subscription{
		Account:     caller,
		TierId:      tier.TierId,
		ExpiresAt:   base.Add(time.Duration(tier.DurationSeconds) * time.Second),
		BlockHeight: block.Header.Height,
	}); err != nil {
		return errors.Wrap(err, "failed to create subscription")
	}

	if !tier.Price.IsZero() {
		feeConfig, err := qtx.GetFeeConfig(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to get fee config")
		}
		if !feeConfig.FeeRecipient.IsZero() {
			payer := caller
			if tier.PaymentToken.IsZero() {
				payer = p.custodian
			}
			if err := p.payments.Transfer(ctx, tier.PaymentToken, payer, feeConfig.FeeRecipient, tier.Price); err != nil {
				return wrapAdapterErr(err, "subscription payment failed")
			}
		}
	}
	return nil
}
