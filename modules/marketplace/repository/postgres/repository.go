package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/internal/postgres"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/repository/postgres/gen"
)

var _ datagateway.MarketplaceDataGateway = (*Repository)(nil)

type Repository struct {
	db      postgres.DB
	queries *gen.Queries
	tx      pgx.Tx
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db:      db,
		queries: gen.New(db),
	}
}

func (r *Repository) CreateIndexedBlock(ctx context.Context, block entity.IndexedBlock) error {
	err := r.queries.CreateIndexedBlock(ctx, gen.CreateIndexedBlockParams{
		Height: block.Height,
		Hash:   block.Hash.String(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create indexed block")
	}
	return nil
}

func (r *Repository) GetIndexedBlockByHeight(ctx context.Context, height int64) (*entity.IndexedBlock, error) {
	model, err := r.queries.GetIndexedBlockByHeight(ctx, height)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get indexed block")
	}
	return mapIndexedBlock(model)
}

func (r *Repository) GetLatestIndexedBlock(ctx context.Context) (*entity.IndexedBlock, error) {
	model, err := r.queries.GetLatestIndexedBlock(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get latest indexed block")
	}
	return mapIndexedBlock(model)
}

func mapIndexedBlock(model gen.MarketplaceIndexedBlock) (*entity.IndexedBlock, error) {
	hash, err := common.HashFromString(model.Hash)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &entity.IndexedBlock{
		Height: model.Height,
		Hash:   hash,
	}, nil
}

func (r *Repository) DeleteIndexedBlocksSinceHeight(ctx context.Context, height int64) (int64, error) {
	affected, err := r.queries.DeleteIndexedBlocksSinceHeight(ctx, height)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete indexed blocks")
	}
	return affected, nil
}

func (r *Repository) CreateEvent(ctx context.Context, event entity.Event) error {
	err := r.queries.CreateEvent(ctx, gen.CreateEventParams{
		TxHash:         event.TxHash.String(),
		TxIndex:        int32(event.TxIndex),
		Caller:         event.Caller.String(),
		Action:         event.Action,
		Valid:          event.Valid,
		Reason:         event.Reason,
		Payload:        event.Payload,
		BlockHeight:    event.BlockHeight,
		BlockHash:      event.BlockHash.String(),
		BlockTimestamp: timestampFromTime(event.BlockTimestamp),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create event")
	}
	return nil
}

func (r *Repository) GetEventsByCaller(ctx context.Context, caller common.Address) ([]entity.Event, error) {
	models, err := r.queries.GetEventsByCaller(ctx, caller.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get events by caller")
	}
	events := make([]entity.Event, 0, len(models))
	for _, model := range models {
		event, err := mapEventModelToType(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *Repository) DeleteEventsSinceHeight(ctx context.Context, height int64) (int64, error) {
	affected, err := r.queries.DeleteEventsSinceHeight(ctx, height)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete events")
	}
	return affected, nil
}

func (r *Repository) GetListing(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128) (*entity.Listing, error) {
	tokenIdNumeric, err := numericFromUint128(tokenId)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	model, err := r.queries.GetListing(ctx, gen.GetListingParams{
		AssetContract: assetContract.String(),
		TokenID:       tokenIdNumeric,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get listing")
	}
	listing, err := mapListingModelToType(model)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &listing, nil
}

func (r *Repository) ListListings(ctx context.Context, params datagateway.ListListingsParams) ([]entity.Listing, error) {
	seller := ""
	if params.Seller != nil {
		seller = params.Seller.String()
	}
	assetContract := ""
	if params.AssetContract != nil {
		assetContract = params.AssetContract.String()
	}
	models, err := r.queries.ListListings(ctx, gen.ListListingsParams{
		Seller:        seller,
		AssetContract: assetContract,
		Limit:         params.Limit,
		Offset:        params.Offset,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list listings")
	}
	listings := make([]entity.Listing, 0, len(models))
	for _, model := range models {
		listing, err := mapListingModelToType(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (r *Repository) CreateListing(ctx context.Context, listing entity.Listing) error {
	params, err := mapListingTypeToParams(listing)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := r.queries.CreateListing(ctx, params); err != nil {
		return errors.Wrap(err, "failed to create listing")
	}
	return nil
}

func (r *Repository) DeleteListing(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, atHeight int64) error {
	tokenIdNumeric, err := numericFromUint128(tokenId)
	if err != nil {
		return errors.WithStack(err)
	}
	affected, err := r.queries.MarkListingDeleted(ctx, gen.MarkListingDeletedParams{
		DeletedAtHeight: pgtype.Int8{Int64: atHeight, Valid: true},
		AssetContract:   assetContract.String(),
		TokenID:         tokenIdNumeric,
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete listing")
	}
	if affected == 0 {
		return errors.WithStack(errs.NotFound)
	}
	return nil
}

func (r *Repository) DeleteListingsSinceHeight(ctx context.Context, height int64) (int64, error) {
	affected, err := r.queries.DeleteListingsSinceHeight(ctx, height)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete listings")
	}
	return affected, nil
}

func (r *Repository) UnmarkListingsDeletedSinceHeight(ctx context.Context, height int64) (int64, error) {
	affected, err := r.queries.UnmarkListingsDeletedSinceHeight(ctx, pgtype.Int8{Int64: height, Valid: true})
	if err != nil {
		return 0, errors.Wrap(err, "failed to unmark deleted listings")
	}
	return affected, nil
}

func (r *Repository) GetOffer(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, buyer common.Address) (*entity.Offer, error) {
	tokenIdNumeric, err := numericFromUint128(tokenId)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	model, err := r.queries.GetOffer(ctx, gen.GetOfferParams{
		AssetContract: assetContract.String(),
		TokenID:       tokenIdNumeric,
		Buyer:         buyer.String(),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get offer")
	}
	offer, err := mapOfferModelToType(model)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &offer, nil
}

func (r *Repository) ListOffersByAsset(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128) ([]entity.Offer, error) {
	tokenIdNumeric, err := numericFromUint128(tokenId)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	models, err := r.queries.ListOffersByAsset(ctx, gen.ListOffersByAssetParams{
		AssetContract: assetContract.String(),
		TokenID:       tokenIdNumeric,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list offers")
	}
	offers := make([]entity.Offer, 0, len(models))
	for _, model := range models {
		offer, err := mapOfferModelToType(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func (r *Repository) CreateOffer(ctx context.Context, offer entity.Offer) error {
	params, err := mapOfferTypeToParams(offer)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := r.queries.CreateOffer(ctx, params); err != nil {
		return errors.Wrap(err, "failed to create offer")
	}
	return nil
}

func (r *Repository) DeleteOffer(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, buyer common.Address, atHeight int64) error {
	tokenIdNumeric, err := numericFromUint128(tokenId)
	if err != nil {
		return errors.WithStack(err)
	}
	affected, err := r.queries.MarkOfferDeleted(ctx, gen.MarkOfferDeletedParams{
		DeletedAtHeight: pgtype.Int8{Int64: atHeight, Valid: true},
		AssetContract:   assetContract.String(),
		TokenID:         tokenIdNumeric,
		Buyer:           buyer.String(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete offer")
	}
	if affected == 0 {
		return errors.WithStack(errs.NotFound)
	}
	return nil
}

func (r *Repository) DeleteOffersSinceHeight(ctx context.Context, height int64) (int64, error) {
	affected, err := r.queries.DeleteOffersSinceHeight(ctx, height)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete offers")
	}
	return affected, nil
}

func (r *Repository) UnmarkOffersDeletedSinceHeight(ctx context.Context, height int64) (int64, error) {
	affected, err := r.queries.UnmarkOffersDeletedSinceHeight(ctx, pgtype.Int8{Int64: height, Valid: true})
	if err != nil {
		return 0, errors.Wrap(err, "failed to unmark deleted offers")
	}
	return affected, nil
}

func (r *Repository) GetSubscription(ctx context.Context, account common.Address) (*entity.Subscription, error) {
	model, err := r.queries.GetLatestSubscriptionByAccount(ctx, account.String())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get subscription")
	}
	subscription, err := mapSubscriptionModelToType(model)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &subscription, nil
}

func (r *Repository) CreateSubscription(ctx context.Context, subscription entity.Subscription) error {
	err := r.queries.CreateSubscription(ctx, gen.CreateSubscriptionParams{
		Account:     subscription.Account.String(),
		TierID:      int64(subscription.TierId),
		ExpiresAt:   timestampFromTime(subscription.ExpiresAt),
		BlockHeight: subscription.BlockHeight,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create subscription")
	}
	return nil
}

func (r *Repository) DeleteSubscriptionsSinceHeight(ctx context.Context, height int64) (int64, error) {
	affected, err := r.queries.DeleteSubscriptionsSinceHeight(ctx, height)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete subscriptions")
	}
	return affected, nil
}

func (r *Repository) GetSubscriptionTier(ctx context.Context, tierId uint64) (*entity.SubscriptionTier, error) {
	model, err := r.queries.GetLatestSubscriptionTier(ctx, int64(tierId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get subscription tier")
	}
	tier, err := mapSubscriptionTierModelToType(model)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &tier, nil
}

func (r *Repository) ListSubscriptionTiers(ctx context.Context) ([]entity.SubscriptionTier, error) {
	models, err := r.queries.ListLatestSubscriptionTiers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list subscription tiers")
	}
	tiers := make([]entity.SubscriptionTier, 0, len(models))
	for _, model := range models {
		tier, err := mapSubscriptionTierModelToType(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}

func (r *Repository) CreateSubscriptionTier(ctx context.Context, tier entity.SubscriptionTier) error {
	price, err := numericFromUint128(tier.Price)
	if err != nil {
		return errors.WithStack(err)
	}
	err = r.queries.CreateSubscriptionTier(ctx, gen.CreateSubscriptionTierParams{
		TierID:          int64(tier.TierId),
		DurationSeconds: tier.DurationSeconds,
		Price:           price,
		PaymentToken:    tier.PaymentToken.String(),
		FeeBps:          int16(tier.FeeBps),
		IsActive:        tier.IsActive,
		BlockHeight:     tier.BlockHeight,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create subscription tier")
	}
	return nil
}

func (r *Repository) DeleteSubscriptionTiersSinceHeight(ctx context.Context, height int64) (int64, error) {
	affected, err := r.queries.DeleteSubscriptionTiersSinceHeight(ctx, height)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete subscription tiers")
	}
	return affected, nil
}

func (r *Repository) GetFeeConfig(ctx context.Context) (*entity.FeeConfig, error) {
	model, err := r.queries.GetLatestFeeConfig(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get fee config")
	}
	feeConfig, err := mapFeeConfigModelToType(model)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &feeConfig, nil
}

func (r *Repository) CreateFeeConfig(ctx context.Context, config entity.FeeConfig) error {
	err := r.queries.CreateFeeConfig(ctx, gen.CreateFeeConfigParams{
		DefaultFeeBps:     int16(config.DefaultFeeBps),
		FeeRecipient:      config.FeeRecipient.String(),
		RoyaltiesDisabled: config.RoyaltiesDisabled,
		BlockHeight:       config.BlockHeight,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create fee config")
	}
	return nil
}

func (r *Repository) DeleteFeeConfigsSinceHeight(ctx context.Context, height int64) (int64, error) {
	affected, err := r.queries.DeleteFeeConfigsSinceHeight(ctx, height)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete fee configs")
	}
	return affected, nil
}

func (r *Repository) GetRoyaltyConfig(ctx context.Context, assetContract common.Address) (*entity.RoyaltyConfig, error) {
	model, err := r.queries.GetLatestRoyaltyConfig(ctx, assetContract.String())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get royalty config")
	}
	royaltyConfig, err := mapRoyaltyConfigModelToType(model)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &royaltyConfig, nil
}

func (r *Repository) CreateRoyaltyConfig(ctx context.Context, config entity.RoyaltyConfig) error {
	err := r.queries.CreateRoyaltyConfig(ctx, gen.CreateRoyaltyConfigParams{
		AssetContract: config.AssetContract.String(),
		Recipient:     config.Recipient.String(),
		RoyaltyBps:    int16(config.RoyaltyBps),
		BlockHeight:   config.BlockHeight,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create royalty config")
	}
	return nil
}

func (r *Repository) DeleteRoyaltyConfigsSinceHeight(ctx context.Context, height int64) (int64, error) {
	affected, err := r.queries.DeleteRoyaltyConfigsSinceHeight(ctx, height)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete royalty configs")
	}
	return affected, nil
}
