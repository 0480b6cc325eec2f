package marketplace

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/core/types"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

// processMakeOffer records a bid. Native offers escrow the attached
// value with the custody account, token offers rely on a standing
// allowance re-checked at accept time.
func (p *Processor) processMakeOffer(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	instruction := event.instruction
	buyer := event.transaction.Sender

	tokenId, err := parseUint128("tokenId", instruction.TokenId)
	if err != nil {
		return errors.WithStack(err)
	}
	price, err := parseUint128("price", instruction.Price)
	if err != nil {
		return errors.WithStack(err)
	}
	if price.IsZero() {
		return errors.Wrap(errs.InvalidAmount, "offer price must be positive")
	}

	escrowed := instruction.PaymentToken.IsZero()
	if escrowed {
		if !event.transaction.Value.Equals(price) {
			return errors.Wrapf(errs.InvalidAmount, "attached value %s does not match offer price %s", event.transaction.Value, price)
		}
	} else if !event.transaction.Value.IsZero() {
		return errors.Wrap(errs.InvalidAmount, "attached value must be zero for a token offer")
	}

	// Replacing an existing offer: store mutations first, refund of the
	// previous escrow last.
	previous, err := qtx.GetOffer(ctx, instruction.AssetContract, tokenId, buyer)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get existing offer")
	}
	if previous != nil {
		if err := qtx.DeleteOffer(ctx, instruction.AssetContract, tokenId, buyer, block.Header.Height); err != nil {
			return errors.Wrap(err, "failed to replace existing offer")
		}
	}
	if err := qtx.CreateOffer(ctx, entity.Offer{
		AssetContract: instruction.AssetContract,
		TokenId:       tokenId,
		Buyer:         buyer,
		Price:         price,
		PaymentToken:  instruction.PaymentToken,
		Escrowed:      escrowed,
		ExpiresAt:     instructionExpiry(instruction.ExpiresAt),
		BlockHeight:   block.Header.Height,
	}); err != nil {
		return errors.Wrap(err, "failed to create offer")
	}
	if previous != nil && previous.Escrowed {
		if err := p.payments.Transfer(ctx, previous.PaymentToken, p.custodian, buyer, previous.Price); err != nil {
			return wrapAdapterErr(err, "failed to refund previous escrow")
		}
	}
	return nil
}

func (p *Processor) processCancelOffer(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	instruction := event.instruction
	buyer := event.transaction.Sender

	tokenId, err := parseUint128("tokenId", instruction.TokenId)
	if err != nil {
		return errors.WithStack(err)
	}
	offer, err := qtx.GetOffer(ctx, instruction.AssetContract, tokenId, buyer)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.Wrap(errs.NotFound, "offer does not exist")
		}
		return errors.Wrap(err, "failed to get offer")
	}
	if err := qtx.DeleteOffer(ctx, instruction.AssetContract, tokenId, buyer, block.Header.Height); err != nil {
		return errors.Wrap(err, "failed to delete offer")
	}
	if offer.Escrowed {
		if err := p.payments.Transfer(ctx, offer.PaymentToken, p.custodian, buyer, offer.Price); err != nil {
			return wrapAdapterErr(err, "failed to refund escrow")
		}
	}
	return nil
}

// processAcceptOffer settles a bid chosen by the asset owner. Any
// active listing for the asset is cleared as part of the sale.
func (p *Processor) processAcceptOffer(ctx context.Context, qtx datagateway.MarketplaceDataGatewayWithTx, block *types.Block, event marketplaceEvent) error {
	instruction := event.instruction
	seller := event.transaction.Sender
	now := block.Header.Timestamp

	tokenId, err := parseUint128("tokenId", instruction.TokenId)
	if err != nil {
		return errors.WithStack(err)
	}
	if instruction.Buyer.IsZero() {
		return errors.Wrap(errs.InvalidArgument, "buyer is required")
	}
	offer, err := qtx.GetOffer(ctx, instruction.AssetContract, tokenId, instruction.Buyer)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.Wrap(errs.NotFound, "offer does not exist")
		}
		return errors.Wrap(err, "failed to get offer")
	}
	if offer.Expired(now) {
		return errors.Wrap(errs.Expired, "offer has expired")
	}

	owner, err := p.assets.OwnerOf(ctx, offer.AssetContract, offer.TokenId)
	if err != nil {
		return wrapAdapterErr(err, "failed to resolve asset owner")
	}
	if owner != seller {
		return errors.Wrapf(errs.Unauthorized, "caller %s does not own the asset", seller)
	}
	approved, err := p.assets.IsApprovedForTransfer(ctx, offer.AssetContract, offer.TokenId, p.custodian)
	if err != nil {
		return wrapAdapterErr(err, "failed to check transfer approval")
	}
	if !approved {
		return errors.Wrap(errs.Unauthorized, "custody account is not approved to transfer the asset")
	}

	if !offer.Escrowed {
		if err := p.checkTokenFunds(ctx, offer.PaymentToken, offer.Buyer, offer.Price); err != nil {
			return errors.WithStack(err)
		}
	}

	split, feeRecipient, royaltyRecipient, err := p.computeSaleSplit(ctx, qtx, seller, offer.AssetContract, offer.Price, now)
	if err != nil {
		return errors.WithStack(err)
	}

	// State changes before external calls.
	if err := qtx.DeleteOffer(ctx, offer.AssetContract, offer.TokenId, offer.Buyer, block.Header.Height); err != nil {
		return errors.Wrap(err, "failed to delete offer")
	}
	if err := qtx.DeleteListing(ctx, offer.AssetContract, offer.TokenId, block.Header.Height); err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to clear listing")
	}

	payer := offer.Buyer
	if offer.Escrowed {
		payer = p.custodian
	}
	legs := paymentLegs(offer.PaymentToken, payer, seller, feeRecipient, royaltyRecipient, split)
	if err := p.settleSale(ctx, offer.AssetContract, offer.TokenId, seller, offer.Buyer, legs); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
