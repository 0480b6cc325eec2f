package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

type Usecase struct {
	marketplaceDg datagateway.MarketplaceDataGateway
}

func New(marketplaceDg datagateway.MarketplaceDataGateway) *Usecase {
	return &Usecase{
		marketplaceDg: marketplaceDg,
	}
}

func (u *Usecase) GetLatestBlock(ctx context.Context) (*entity.IndexedBlock, error) {
	block, err := u.marketplaceDg.GetLatestIndexedBlock(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetLatestIndexedBlock")
	}
	return block, nil
}

func (u *Usecase) GetListing(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128) (*entity.Listing, error) {
	listing, err := u.marketplaceDg.GetListing(ctx, assetContract, tokenId)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetListing")
	}
	return listing, nil
}

func (u *Usecase) ListListings(ctx context.Context, params datagateway.ListListingsParams) ([]entity.Listing, error) {
	listings, err := u.marketplaceDg.ListListings(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "error during ListListings")
	}
	return listings, nil
}

func (u *Usecase) GetOffer(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, buyer common.Address) (*entity.Offer, error) {
	offer, err := u.marketplaceDg.GetOffer(ctx, assetContract, tokenId, buyer)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetOffer")
	}
	return offer, nil
}

func (u *Usecase) ListOffersByAsset(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128) ([]entity.Offer, error) {
	offers, err := u.marketplaceDg.ListOffersByAsset(ctx, assetContract, tokenId)
	if err != nil {
		return nil, errors.Wrap(err, "error during ListOffersByAsset")
	}
	return offers, nil
}

func (u *Usecase) GetSubscription(ctx context.Context, account common.Address) (*entity.Subscription, error) {
	subscription, err := u.marketplaceDg.GetSubscription(ctx, account)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetSubscription")
	}
	return subscription, nil
}

func (u *Usecase) GetSubscriptionTier(ctx context.Context, tierId uint64) (*entity.SubscriptionTier, error) {
	tier, err := u.marketplaceDg.GetSubscriptionTier(ctx, tierId)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetSubscriptionTier")
	}
	return tier, nil
}

func (u *Usecase) ListSubscriptionTiers(ctx context.Context) ([]entity.SubscriptionTier, error) {
	tiers, err := u.marketplaceDg.ListSubscriptionTiers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during ListSubscriptionTiers")
	}
	return tiers, nil
}

func (u *Usecase) GetFeeConfig(ctx context.Context) (*entity.FeeConfig, error) {
	feeConfig, err := u.marketplaceDg.GetFeeConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetFeeConfig")
	}
	return feeConfig, nil
}
