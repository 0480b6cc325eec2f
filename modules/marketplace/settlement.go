package marketplace

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/adapters"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

func parseUint128(field, value string) (uint128.Uint128, error) {
	if value == "" {
		return uint128.Uint128{}, errors.Wrapf(errs.InvalidArgument, "%s is required", field)
	}
	parsed, err := uint128.FromString(value)
	if err != nil {
		return uint128.Uint128{}, errors.Wrapf(errs.InvalidArgument, "invalid %s %q", field, value)
	}
	return parsed, nil
}

// wrapAdapterErr turns a host-ledger adapter failure into an operation
// failure. Adapter errors must not abort block processing, a malformed
// instruction would otherwise stall the whole engine.
func wrapAdapterErr(err error, msg string) error {
	return errors.Wrapf(errs.TransferFailure, "%s: %v", msg, err)
}

// accountFeeBps resolves the marketplace fee rate for an account. An
// active subscription overrides the default rate with its tier's rate.
func (p *Processor) accountFeeBps(ctx context.Context, dg datagateway.MarketplaceDataGateway, account common.Address, feeConfig *entity.FeeConfig, now time.Time) (uint16, error) {
	sub, err := dg.GetSubscription(ctx, account)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return feeConfig.DefaultFeeBps, nil
		}
		return 0, errors.Wrap(err, "failed to get subscription")
	}
	if !sub.Active(now) {
		return feeConfig.DefaultFeeBps, nil
	}
	tier, err := dg.GetSubscriptionTier(ctx, sub.TierId)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return feeConfig.DefaultFeeBps, nil
		}
		return 0, errors.Wrap(err, "failed to get subscription tier")
	}
	return tier.FeeBps, nil
}

// assetRoyalty resolves the royalty recipient and rate registered for
// an asset contract. No registration means no royalty.
func (p *Processor) assetRoyalty(ctx context.Context, dg datagateway.MarketplaceDataGateway, assetContract common.Address) (common.Address, uint16, error) {
	royaltyConfig, err := dg.GetRoyaltyConfig(ctx, assetContract)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return common.Address{}, 0, nil
		}
		return common.Address{}, 0, errors.Wrap(err, "failed to get royalty config")
	}
	if royaltyConfig.Recipient.IsZero() {
		return common.Address{}, 0, nil
	}
	return royaltyConfig.Recipient, royaltyConfig.RoyaltyBps, nil
}

// computeSaleSplit resolves the fee and royalty rates for a sale and
// splits the price. The beneficiary is the account whose subscription
// determines the fee rate, always the party receiving the proceeds.
func (p *Processor) computeSaleSplit(ctx context.Context, dg datagateway.MarketplaceDataGateway, beneficiary, assetContract common.Address, price uint128.Uint128, now time.Time) (Split, common.Address, common.Address, error) {
	feeConfig, err := dg.GetFeeConfig(ctx)
	if err != nil {
		return Split{}, common.Address{}, common.Address{}, errors.Wrap(err, "failed to get fee config")
	}
	feeBps, err := p.accountFeeBps(ctx, dg, beneficiary, feeConfig, now)
	if err != nil {
		return Split{}, common.Address{}, common.Address{}, errors.WithStack(err)
	}
	if feeConfig.FeeRecipient.IsZero() {
		// no recipient configured, the fee share stays with the seller
		feeBps = 0
	}
	royaltyRecipient, royaltyBps, err := p.assetRoyalty(ctx, dg, assetContract)
	if err != nil {
		return Split{}, common.Address{}, common.Address{}, errors.WithStack(err)
	}
	split, err := ComputeSplit(price, feeBps, royaltyBps, feeConfig.RoyaltiesDisabled)
	if err != nil {
		return Split{}, common.Address{}, common.Address{}, errors.WithStack(err)
	}
	return split, feeConfig.FeeRecipient, royaltyRecipient, nil
}

// paymentLegs expands a sale split into settlement legs. Native
// payments flow from the custody account holding the attached value,
// token payments flow from the buyer under the engine's allowance.
// Zero shares and unset recipients produce no leg.
func paymentLegs(paymentToken, payer, seller, feeRecipient, royaltyRecipient common.Address, split Split) []adapters.PaymentLeg {
	shares := []struct {
		to     common.Address
		amount uint128.Uint128
	}{
		{seller, split.Seller},
		{feeRecipient, split.Fee},
		{royaltyRecipient, split.Royalty},
	}
	legs := make([]adapters.PaymentLeg, 0, len(shares))
	for _, share := range shares {
		if share.amount.IsZero() || share.to.IsZero() {
			continue
		}
		legs = append(legs, adapters.PaymentLeg{
			PaymentToken: paymentToken,
			From:         payer,
			To:           share.to,
			Amount:       share.amount,
		})
	}
	return legs
}

// settleSale executes the asset transfer and payment legs of a sale as
// one batch on the host ledger. A rejected leg fails the whole batch,
// so the buyer can never end up owning the asset with the seller
// unpaid.
func (p *Processor) settleSale(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, seller, buyer common.Address, legs []adapters.PaymentLeg) error {
	if err := p.settler.Settle(ctx, adapters.Settlement{
		AssetContract: assetContract,
		TokenId:       tokenId,
		From:          seller,
		To:            buyer,
		Payments:      legs,
	}); err != nil {
		return wrapAdapterErr(err, "settlement failed")
	}
	return nil
}

// checkTokenFunds verifies the payer can cover a token payment: enough
// balance and enough standing allowance for the custody account.
func (p *Processor) checkTokenFunds(ctx context.Context, paymentToken, payer common.Address, price uint128.Uint128) error {
	balance, err := p.payments.BalanceOf(ctx, paymentToken, payer)
	if err != nil {
		return wrapAdapterErr(err, "failed to get token balance")
	}
	if balance.Cmp(price) < 0 {
		return errors.Wrapf(errs.InvalidAmount, "insufficient token balance: have %s, need %s", balance, price)
	}
	allowance, err := p.payments.Allowance(ctx, paymentToken, payer, p.custodian)
	if err != nil {
		return wrapAdapterErr(err, "failed to get token allowance")
	}
	if allowance.Cmp(price) < 0 {
		return errors.Wrapf(errs.InvalidAmount, "insufficient token allowance: have %s, need %s", allowance, price)
	}
	return nil
}

func instructionExpiry(expiresAt int64) time.Time {
	if expiresAt <= 0 {
		return time.Time{}
	}
	return time.Unix(expiresAt, 0).UTC()
}
