package datagateway

import (
	"context"

	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

// MarketplaceDataGateway is the persistent state store of the
// settlement engine. It is the sole owner of listing, offer,
// subscription and fee-configuration records; the engine holds no
// private copies across operations.
//
// Rows are history-versioned: mutations insert a new version at a
// block height or mark an existing version deleted at a height, so a
// chain reorg can be reverted precisely with the SinceHeight methods.
type MarketplaceDataGateway interface {
	Tx
	// BeginMarketplaceTx returns a gateway whose operations run inside
	// a new transaction. Calling it on a gateway that already has an
	// open transaction starts a nested transaction (savepoint), which
	// commits or rolls back independently of the outer one.
	BeginMarketplaceTx(ctx context.Context) (MarketplaceDataGatewayWithTx, error)

	// Blocks
	CreateIndexedBlock(ctx context.Context, block entity.IndexedBlock) error
	GetIndexedBlockByHeight(ctx context.Context, height int64) (*entity.IndexedBlock, error)
	GetLatestIndexedBlock(ctx context.Context) (*entity.IndexedBlock, error)
	DeleteIndexedBlocksSinceHeight(ctx context.Context, height int64) (int64, error)

	// Events
	CreateEvent(ctx context.Context, event entity.Event) error
	GetEventsByCaller(ctx context.Context, caller common.Address) ([]entity.Event, error)
	DeleteEventsSinceHeight(ctx context.Context, height int64) (int64, error)

	// Listings. Get/List return active rows only.
	GetListing(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128) (*entity.Listing, error)
	ListListings(ctx context.Context, params ListListingsParams) ([]entity.Listing, error)
	CreateListing(ctx context.Context, listing entity.Listing) error
	DeleteListing(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, atHeight int64) error
	DeleteListingsSinceHeight(ctx context.Context, height int64) (int64, error)
	UnmarkListingsDeletedSinceHeight(ctx context.Context, height int64) (int64, error)

	// Offers. Get/List return active rows only.
	GetOffer(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, buyer common.Address) (*entity.Offer, error)
	ListOffersByAsset(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128) ([]entity.Offer, error)
	CreateOffer(ctx context.Context, offer entity.Offer) error
	DeleteOffer(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, buyer common.Address, atHeight int64) error
	DeleteOffersSinceHeight(ctx context.Context, height int64) (int64, error)
	UnmarkOffersDeletedSinceHeight(ctx context.Context, height int64) (int64, error)

	// Subscriptions, append-only versions per account.
	GetSubscription(ctx context.Context, account common.Address) (*entity.Subscription, error)
	CreateSubscription(ctx context.Context, subscription entity.Subscription) error
	DeleteSubscriptionsSinceHeight(ctx context.Context, height int64) (int64, error)

	// Subscription tiers, append-only versions per tier id.
	GetSubscriptionTier(ctx context.Context, tierId uint64) (*entity.SubscriptionTier, error)
	ListSubscriptionTiers(ctx context.Context) ([]entity.SubscriptionTier, error)
	CreateSubscriptionTier(ctx context.Context, tier entity.SubscriptionTier) error
	DeleteSubscriptionTiersSinceHeight(ctx context.Context, height int64) (int64, error)

	// Fee configuration, append-only singleton versions.
	GetFeeConfig(ctx context.Context) (*entity.FeeConfig, error)
	CreateFeeConfig(ctx context.Context, config entity.FeeConfig) error
	DeleteFeeConfigsSinceHeight(ctx context.Context, height int64) (int64, error)

	// Royalty configuration, append-only versions per asset contract.
	GetRoyaltyConfig(ctx context.Context, assetContract common.Address) (*entity.RoyaltyConfig, error)
	CreateRoyaltyConfig(ctx context.Context, config entity.RoyaltyConfig) error
	DeleteRoyaltyConfigsSinceHeight(ctx context.Context, height int64) (int64, error)
}

type MarketplaceDataGatewayWithTx interface {
	MarketplaceDataGateway
	Tx
}

type ListListingsParams struct {
	Seller        *common.Address
	AssetContract *common.Address
	Limit         int32
	Offset        int32
}
