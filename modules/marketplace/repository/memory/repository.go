// Package memory provides a MarketplaceDataGateway backed by process
// memory. It is used for tests and for running the engine without a
// database. Transactions are snapshot based: Begin deep-copies the
// state, Commit writes the copy back, Rollback discards it, which
// gives the same nesting semantics as savepoints.
package memory

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

var _ datagateway.MarketplaceDataGateway = (*Repository)(nil)

type listingRow struct {
	entity.Listing
	deletedAtHeight *int64
}

type offerRow struct {
	entity.Offer
	deletedAtHeight *int64
}

type state struct {
	blocks         []entity.IndexedBlock
	events         []entity.Event
	listings       []listingRow
	offers         []offerRow
	subscriptions  []entity.Subscription
	tiers          []entity.SubscriptionTier
	feeConfigs     []entity.FeeConfig
	royaltyConfigs []entity.RoyaltyConfig
}

func (s *state) clone() *state {
	clone := &state{
		blocks:         make([]entity.IndexedBlock, len(s.blocks)),
		events:         make([]entity.Event, len(s.events)),
		listings:       make([]listingRow, len(s.listings)),
		offers:         make([]offerRow, len(s.offers)),
		subscriptions:  make([]entity.Subscription, len(s.subscriptions)),
		tiers:          make([]entity.SubscriptionTier, len(s.tiers)),
		feeConfigs:     make([]entity.FeeConfig, len(s.feeConfigs)),
		royaltyConfigs: make([]entity.RoyaltyConfig, len(s.royaltyConfigs)),
	}
	copy(clone.blocks, s.blocks)
	copy(clone.events, s.events)
	copy(clone.listings, s.listings)
	copy(clone.offers, s.offers)
	copy(clone.subscriptions, s.subscriptions)
	copy(clone.tiers, s.tiers)
	copy(clone.feeConfigs, s.feeConfigs)
	copy(clone.royaltyConfigs, s.royaltyConfigs)
	return clone
}

type Repository struct {
	mu     *sync.Mutex
	state  *state
	parent *Repository
	done   bool
}

func NewRepository() *Repository {
	return &Repository{
		mu:    &sync.Mutex{},
		state: &state{},
	}
}

func (r *Repository) BeginMarketplaceTx(ctx context.Context) (datagateway.MarketplaceDataGatewayWithTx, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &Repository{
		mu:     r.mu,
		state:  r.state.clone(),
		parent: r,
	}, nil
}

func (r *Repository) Commit(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.parent == nil || r.done {
		return nil
	}
	r.parent.state = r.state
	r.done = true
	return nil
}

func (r *Repository) Rollback(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
	return nil
}

func (r *Repository) CreateIndexedBlock(ctx context.Context, block entity.IndexedBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.blocks = append(r.state.blocks, block)
	return nil
}

func (r *Repository) GetIndexedBlockByHeight(ctx context.Context, height int64) (*entity.IndexedBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.state.blocks) - 1; i >= 0; i-- {
		if r.state.blocks[i].Height == height {
			block := r.state.blocks[i]
			return &block, nil
		}
	}
	return nil, errors.WithStack(errs.NotFound)
}

func (r *Repository) GetLatestIndexedBlock(ctx context.Context) (*entity.IndexedBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.state.blocks) == 0 {
		return nil, errors.WithStack(errs.NotFound)
	}
	latest := r.state.blocks[0]
	for _, block := range r.state.blocks[1:] {
		if block.Height > latest.Height {
			latest = block
		}
	}
	return &latest, nil
}

func (r *Repository) DeleteIndexedBlocksSinceHeight(ctx context.Context, height int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.state.blocks[:0]
	var removed int64
	for _, block := range r.state.blocks {
		if block.Height >= height {
			removed++
			continue
		}
		kept = append(kept, block)
	}
	r.state.blocks = kept
	return removed, nil
}

func (r *Repository) CreateEvent(ctx context.Context, event entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.events = append(r.state.events, event)
	return nil
}

func (r *Repository) GetEventsByCaller(ctx context.Context, caller common.Address) ([]entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]entity.Event, 0)
	for i := len(r.state.events) - 1; i >= 0; i-- {
		if r.state.events[i].Caller == caller {
			events = append(events, r.state.events[i])
		}
	}
	return events, nil
}

func (r *Repository) DeleteEventsSinceHeight(ctx context.Context, height int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.state.events[:0]
	var removed int64
	for _, event := range r.state.events {
		if event.BlockHeight >= height {
			removed++
			continue
		}
		kept = append(kept, event)
	}
	r.state.events = kept
	return removed, nil
}

func (r *Repository) GetListing(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.state.listings) - 1; i >= 0; i-- {
		row := r.state.listings[i]
		if row.deletedAtHeight == nil && row.AssetContract == assetContract && row.TokenId.Equals(tokenId) {
			listing := row.Listing
			return &listing, nil
		}
	}
	return nil, errors.WithStack(errs.NotFound)
}

func (r *Repository) ListListings(ctx context.Context, params datagateway.ListListingsParams) ([]entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]entity.Listing, 0)
	for i := len(r.state.listings) - 1; i >= 0; i-- {
		row := r.state.listings[i]
		if row.deletedAtHeight != nil {
			continue
		}
		if params.Seller != nil && row.Seller != *params.Seller {
			continue
		}
		if params.AssetContract != nil && row.AssetContract != *params.AssetContract {
			continue
		}
		matched = append(matched, row.Listing)
	}
	if params.Offset > 0 {
		if int(params.Offset) >= len(matched) {
			return []entity.Listing{}, nil
		}
		matched = matched[params.Offset:]
	}
	if params.Limit > 0 && int(params.Limit) < len(matched) {
		matched = matched[:params.Limit]
	}
	return matched, nil
}

func (r *Repository) CreateListing(ctx context.Context, listing entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.listings = append(r.state.listings, listingRow{Listing: listing})
	return nil
}

func (r *Repository) DeleteListing(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, atHeight int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.state.listings) - 1; i >= 0; i-- {
		row := &r.state.listings[i]
		if row.deletedAtHeight == nil && row.AssetContract == assetContract && row.TokenId.Equals(tokenId) {
			height := atHeight
			row.deletedAtHeight = &height
			return nil
		}
	}
	return errors.WithStack(errs.NotFound)
}

func (r *Repository) DeleteListingsSinceHeight(ctx context.Context, height int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.state.listings[:0]
	var removed int64
	for _, row := range r.state.listings {
		if row.BlockHeight >= height {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	r.state.listings = kept
	return removed, nil
}

func (r *Repository) UnmarkListingsDeletedSinceHeight(ctx context.Context, height int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var restored int64
	for i := range r.state.listings {
		row := &r.state.listings[i]
		if row.deletedAtHeight != nil && *row.deletedAtHeight >= height {
			row.deletedAtHeight = nil
			restored++
		}
	}
	return restored, nil
}

func (r *Repository) GetOffer(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, buyer common.Address) (*entity.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.state.offers) - 1; i >= 0; i-- {
		row := r.state.offers[i]
		if row.deletedAtHeight == nil && row.AssetContract == assetContract && row.TokenId.Equals(tokenId) && row.Buyer == buyer {
			offer := row.Offer
			return &offer, nil
		}
	}
	return nil, errors.WithStack(errs.NotFound)
}

func (r *Repository) ListOffersByAsset(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128) ([]entity.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offers := make([]entity.Offer, 0)
	for _, row := range r.state.offers {
		if row.deletedAtHeight == nil && row.AssetContract == assetContract && row.TokenId.Equals(tokenId) {
			offers = append(offers, row.Offer)
		}
	}
	return offers, nil
}

func (r *Repository) CreateOffer(ctx context.Context, offer entity.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.offers = append(r.state.offers, offerRow{Offer: offer})
	return nil
}

func (r *Repository) DeleteOffer(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, buyer common.Address, atHeight int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.state.offers) - 1; i >= 0; i-- {
		row := &r.state.offers[i]
		if row.deletedAtHeight == nil && row.AssetContract == assetContract && row.TokenId.Equals(tokenId) && row.Buyer == buyer {
			height := atHeight
			row.deletedAtHeight = &height
			return nil
		}
	}
	return errors.WithStack(errs.NotFound)
}

func (r *Repository) DeleteOffersSinceHeight(ctx context.Context, height int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.state.offers[:0]
	var removed int64
	for _, row := range r.state.offers {
		if row.BlockHeight >= height {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	r.state.offers = kept
	return removed, nil
}

func (r *Repository) UnmarkOffersDeletedSinceHeight(ctx context.Context, height int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var restored int64
	for i := range r.state.offers {
		row := &r.state.offers[i]
		if row.deletedAtHeight != nil && *row.deletedAtHeight >= height {
			row.deletedAtHeight = nil
			restored++
		}
	}
	return restored, nil
}

func (r *Repository) GetSubscription(ctx context.Context, account common.Address) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.state.subscriptions) - 1; i >= 0; i-- {
		if r.state.subscriptions[i].Account == account {
			subscription := r.state.subscriptions[i]
			return &subscription, nil
		}
	}
	return nil, errors.WithStack(errs.NotFound)
}

func (r *Repository) CreateSubscription(ctx context.Context, subscription entity.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.subscriptions = append(r.state.subscriptions, subscription)
	return nil
}

func (r *Repository) DeleteSubscriptionsSinceHeight(ctx context.Context, height int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.state.subscriptions[:0]
	var removed int64
	for _, subscription := range r.state.subscriptions {
		if subscription.BlockHeight >= height {
			removed++
			continue
		}
		kept = append(kept, subscription)
	}
	r.state.subscriptions = kept
	return removed, nil
}

func (r *Repository) GetSubscriptionTier(ctx context.Context, tierId uint64) (*entity.SubscriptionTier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.state.tiers) - 1; i >= 0; i-- {
		if r.state.tiers[i].TierId == tierId {
			tier := r.state.tiers[i]
			return &tier, nil
		}
	}
	return nil, errors.WithStack(errs.NotFound)
}

func (r *Repository) ListSubscriptionTiers(ctx context.Context) ([]entity.SubscriptionTier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := make(map[uint64]entity.SubscriptionTier)
	order := make([]uint64, 0)
	for _, tier := range r.state.tiers {
		if _, seen := latest[tier.TierId]; !seen {
			order = append(order, tier.TierId)
		}
		latest[tier.TierId] = tier
	}
	tiers := make([]entity.SubscriptionTier, 0, len(latest))
	for _, tierId := range order {
		tiers = append(tiers, latest[tierId])
	}
	return tiers, nil
}

func (r *Repository) CreateSubscriptionTier(ctx context.Context, tier entity.SubscriptionTier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.tiers = append(r.state.tiers, tier)
	return nil
}

func (r *Repository) DeleteSubscriptionTiersSinceHeight(ctx context.Context, height int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.state.tiers[:0]
	var removed int64
	for _, tier := range r.state.tiers {
		if tier.BlockHeight >= height {
			removed++
			continue
		}
		kept = append(kept, tier)
	}
	r.state.tiers = kept
	return removed, nil
}

func (r *Repository) GetFeeConfig(ctx context.Context) (*entity.FeeConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.state.feeConfigs) == 0 {
		return nil, errors.WithStack(errs.NotFound)
	}
	feeConfig := r.state.feeConfigs[len(r.state.feeConfigs)-1]
	return &feeConfig, nil
}

func (r *Repository) CreateFeeConfig(ctx context.Context, config entity.FeeConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.feeConfigs = append(r.state.feeConfigs, config)
	return nil
}

func (r *Repository) DeleteFeeConfigsSinceHeight(ctx context.Context, height int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.state.feeConfigs[:0]
	var removed int64
	for _, config := range r.state.feeConfigs {
		if config.BlockHeight >= height {
			removed++
			continue
		}
		kept = append(kept, config)
	}
	r.state.feeConfigs = kept
	return removed, nil
}

func (r *Repository) GetRoyaltyConfig(ctx context.Context, assetContract common.Address) (*entity.RoyaltyConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.state.royaltyConfigs) - 1; i >= 0; i-- {
		if r.state.royaltyConfigs[i].AssetContract == assetContract {
			royaltyConfig := r.state.royaltyConfigs[i]
			return &royaltyConfig, nil
		}
	}
	return nil, errors.WithStack(errs.NotFound)
}

func (r *Repository) CreateRoyaltyConfig(ctx context.Context, config entity.RoyaltyConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.royaltyConfigs = append(r.state.royaltyConfigs, config)
	return nil
}

func (r *Repository) DeleteRoyaltyConfigsSinceHeight(ctx context.Context, height int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.state.royaltyConfigs[:0]
	var removed int64
	for _, config := range r.state.royaltyConfigs {
		if config.BlockHeight >= height {
			removed++
			continue
		}
		kept = append(kept, config)
	}
	r.state.royaltyConfigs = kept
	return removed, nil
}
