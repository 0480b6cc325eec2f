package marketplace

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/core/types"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

func (p *Processor) processList(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	instruction := event.instruction
	caller := event.transaction.Sender
	now := block.Header.Timestamp

	tokenId, err := parseUint128("tokenId", instruction.TokenId)
	if err != nil {
		return errors.WithStack(err)
	}
	price, err := parseUint128("price", instruction.Price)
	if err != nil {
		return errors.WithStack(err)
	}
	if price.IsZero() {
		return errors.Wrap(errs.InvalidAmount, "listing price must be positive")
	}

	owner, err := p.assets.OwnerOf(ctx, instruction.AssetContract, tokenId)
	if err != nil {
		return wrapAdapterErr(err, "failed to resolve asset owner")
	}
	if owner != caller {
		return errors.Wrapf(errs.Unauthorized, "caller %s does not own the asset", caller)
	}
	approved, err := p.assets.IsApprovedForTransfer(ctx, instruction.AssetContract, tokenId, p.custodian)
	if err != nil {
		return wrapAdapterErr(err, "failed to check transfer approval")
	}
	if !approved {
		return errors.Wrap(errs.Unauthorized, "custody account is not approved to transfer the asset")
	}

	// Re-listing replaces any existing listing unconditionally.
	if err := qtx.DeleteListing(ctx, instruction.AssetContract, tokenId, block.Header.Height); err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to replace existing listing")
	}
	if err := qtx.CreateListing(ctx, entity.Listing{
		AssetContract: instruction.AssetContract,
		TokenId:       tokenId,
		Seller:        caller,
		Price:         price,
		PaymentToken:  instruction.PaymentToken,
		ListedAt:      now,
		ExpiresAt:     instructionExpiry(instruction.ExpiresAt),
		PrivateBuyer:  instruction.PrivateBuyer,
		BlockHeight:   block.Header.Height,
	}); err != nil {
		return errors.Wrap(err, "failed to create listing")
	}
	return nil
}

func (p *Processor) processCancelListing(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	instruction := event.instruction
	caller := event.transaction.Sender

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
	if listing.Seller != caller {
		return errors.Wrapf(errs.Unauthorized, "caller %s is not the seller", caller)
	}
	if err := qtx.DeleteListing(ctx, instruction.AssetContract, tokenId, block.Header.Height); err != nil {
		return errors.Wrap(err, "failed to delete listing")
	}
	return nil
}
