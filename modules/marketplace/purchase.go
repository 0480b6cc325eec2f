package marketplace

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/core/types"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
)

// processPurchase settles a listed sale atomically: all state checks
// run first, the listing is removed before the external interaction,
// and the asset plus every payment leg move in one settlement batch or
// not at all.
func (p *Processor) processPurchase(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	instruction := event.instruction
	buyer := event.transaction.Sender
	now := block.Header.Timestamp

	tokenId, err := parseUint128("tokenId", instruction.TokenId)
	if err != nil {
		return errors.WithStack(err)
	}
	listing, err := qtx.GetListing(ctx, instruction.AssetContract, tokenId)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.Wrap(errs.NotFound, "listing does not exist")
		}
		return errors.Wrap(err, "failed to get listing")
	}
	if listing.Expired(now) {
		return errors.Wrap(errs.Expired, "listing has expired")
	}
	if !listing.PrivateBuyer.IsZero() && listing.PrivateBuyer != buyer {
		return errors.Wrapf(errs.Unauthorized, "listing is reserved for %s", listing.PrivateBuyer)
	}

	// The seller may have transferred the asset or revoked approval
	// since listing. Such a listing is unfillable and gets purged by
	// the caller once this error surfaces.
	owner, err := p.assets.OwnerOf(ctx, listing.AssetContract, listing.TokenId)
	if err != nil {
		return wrapAdapterErr(err, "failed to resolve asset owner")
	}
	if owner != listing.Seller {
		return errors.Wrap(errs.StaleState, "seller no longer owns the asset")
	}
	approved, err := p.assets.IsApprovedForTransfer(ctx, listing.AssetContract, listing.TokenId, p.custodian)
	if err != nil {
		return wrapAdapterErr(err, "failed to check transfer approval")
	}
	if !approved {
		return errors.Wrap(errs.StaleState, "custody approval has been revoked")
	}

	if listing.PaymentToken.IsZero() {
		if !event.transaction.Value.Equals(listing.Price) {
			return errors.Wrapf(errs.InvalidAmount, "attached value %s does not match price %s", event.transaction.Value, listing.Price)
		}
	} else {
		if !event.transaction.Value.IsZero() {
			return errors.Wrap(errs.InvalidAmount, "attached value must be zero for a token payment")
		}
		if err := p.checkTokenFunds(ctx, listing.PaymentToken, buyer, listing.Price); err != nil {
			return errors.WithStack(err)
		}
	}

	split, feeRecipient, royaltyRecipient, err := p.computeSaleSplit(ctx, qtx, listing.Seller, listing.AssetContract, listing.Price, now)
	if err != nil {
		return errors.WithStack(err)
	}

	// State change before external calls.
	if err := qtx.DeleteListing(ctx, listing.AssetContract, listing.TokenId, block.Header.Height); err != nil {
		return errors.Wrap(err, "failed to delete listing")
	}

	payer := buyer
	if listing.PaymentToken.IsZero() {
		payer = p.custodian
	}
	legs := paymentLegs(listing.PaymentToken, payer, listing.Seller, feeRecipient, royaltyRecipient, split)
	if err := p.settleSale(ctx, listing.AssetContract, listing.TokenId, listing.Seller, buyer, legs); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
