package memory

import (
	"context"
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/require"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

func testAddress(b byte) common.Address {
	var addr common.Address
	addr[common.AddressLength-1] = b
	return addr
}

func testListing(contract, seller common.Address, tokenId, price uint64, height int64) entity.Listing {
	return entity.Listing{
		AssetContract: contract,
		TokenId:       uint128.From64(tokenId),
		Seller:        seller,
		Price:         uint128.From64(price),
		BlockHeight:   height,
	}
}

func TestTransactionCommit(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	contract := testAddress(0x10)

	tx, err := repo.BeginMarketplaceTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateListing(ctx, testListing(contract, testAddress(1), 7, 1000, 100)))

	// invisible until commit
	_, err = repo.GetListing(ctx, contract, uint128.From64(7))
	require.ErrorIs(t, err, errs.NotFound)

	require.NoError(t, tx.Commit(ctx))
	listing, err := repo.GetListing(ctx, contract, uint128.From64(7))
	require.NoError(t, err)
	require.True(t, listing.Price.Equals(uint128.From64(1000)))

	// rollback after commit is a no-op
	require.NoError(t, tx.Rollback(ctx))
	_, err = repo.GetListing(ctx, contract, uint128.From64(7))
	require.NoError(t, err)
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	contract := testAddress(0x10)

	tx, err := repo.BeginMarketplaceTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateListing(ctx, testListing(contract, testAddress(1), 7, 1000, 100)))
	require.NoError(t, tx.Rollback(ctx))

	_, err = repo.GetListing(ctx, contract, uint128.From64(7))
	require.ErrorIs(t, err, errs.NotFound)
}

// Nested transactions behave like savepoints: an inner rollback keeps
// the outer writes, an outer rollback discards committed inner writes.
func TestNestedTransactions(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	contract := testAddress(0x10)

	outer, err := repo.BeginMarketplaceTx(ctx)
	require.NoError(t, err)
	require.NoError(t, outer.CreateListing(ctx, testListing(contract, testAddress(1), 1, 1000, 100)))

	inner, err := outer.BeginMarketplaceTx(ctx)
	require.NoError(t, err)
	require.NoError(t, inner.CreateListing(ctx, testListing(contract, testAddress(1), 2, 2000, 100)))
	require.NoError(t, inner.Rollback(ctx))

	inner2, err := outer.BeginMarketplaceTx(ctx)
	require.NoError(t, err)
	require.NoError(t, inner2.CreateListing(ctx, testListing(contract, testAddress(1), 3, 3000, 100)))
	require.NoError(t, inner2.Commit(ctx))

	require.NoError(t, outer.Commit(ctx))

	_, err = repo.GetListing(ctx, contract, uint128.From64(1))
	require.NoError(t, err)
	_, err = repo.GetListing(ctx, contract, uint128.From64(2))
	require.ErrorIs(t, err, errs.NotFound)
	_, err = repo.GetListing(ctx, contract, uint128.From64(3))
	require.NoError(t, err)
}

func TestOuterRollbackDiscardsInnerCommit(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	contract := testAddress(0x10)

	outer, err := repo.BeginMarketplaceTx(ctx)
	require.NoError(t, err)
	inner, err := outer.BeginMarketplaceTx(ctx)
	require.NoError(t, err)
	require.NoError(t, inner.CreateListing(ctx, testListing(contract, testAddress(1), 7, 1000, 100)))
	require.NoError(t, inner.Commit(ctx))
	require.NoError(t, outer.Rollback(ctx))

	_, err = repo.GetListing(ctx, contract, uint128.From64(7))
	require.ErrorIs(t, err, errs.NotFound)
}

func TestDeleteListingMarksNotRemoves(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	contract := testAddress(0x10)

	require.NoError(t, repo.CreateListing(ctx, testListing(contract, testAddress(1), 7, 1000, 100)))
	require.NoError(t, repo.DeleteListing(ctx, contract, uint128.From64(7), 105))

	_, err := repo.GetListing(ctx, contract, uint128.From64(7))
	require.ErrorIs(t, err, errs.NotFound)

	// deleting again fails, the row is already inactive
	err = repo.DeleteListing(ctx, contract, uint128.From64(7), 106)
	require.ErrorIs(t, err, errs.NotFound)

	// reorg revert: unmark restores the row
	restored, err := repo.UnmarkListingsDeletedSinceHeight(ctx, 105)
	require.NoError(t, err)
	require.EqualValues(t, 1, restored)
	_, err = repo.GetListing(ctx, contract, uint128.From64(7))
	require.NoError(t, err)
}

func TestUnmarkRespectsHeight(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	contract := testAddress(0x10)

	require.NoError(t, repo.CreateListing(ctx, testListing(contract, testAddress(1), 7, 1000, 100)))
	require.NoError(t, repo.DeleteListing(ctx, contract, uint128.From64(7), 105))

	restored, err := repo.UnmarkListingsDeletedSinceHeight(ctx, 106)
	require.NoError(t, err)
	require.EqualValues(t, 0, restored)
	_, err = repo.GetListing(ctx, contract, uint128.From64(7))
	require.ErrorIs(t, err, errs.NotFound)
}

func TestDeleteListingsSinceHeight(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	contract := testAddress(0x10)

	require.NoError(t, repo.CreateListing(ctx, testListing(contract, testAddress(1), 1, 1000, 100)))
	require.NoError(t, repo.CreateListing(ctx, testListing(contract, testAddress(1), 2, 2000, 105)))

	removed, err := repo.DeleteListingsSinceHeight(ctx, 105)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = repo.GetListing(ctx, contract, uint128.From64(1))
	require.NoError(t, err)
	_, err = repo.GetListing(ctx, contract, uint128.From64(2))
	require.ErrorIs(t, err, errs.NotFound)
}

func TestListListingsFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	contract := testAddress(0x10)
	alice := testAddress(1)
	bob := testAddress(2)

	require.NoError(t, repo.CreateListing(ctx, testListing(contract, alice, 1, 1000, 100)))
	require.NoError(t, repo.CreateListing(ctx, testListing(contract, bob, 2, 2000, 100)))
	require.NoError(t, repo.CreateListing(ctx, testListing(contract, alice, 3, 3000, 101)))

	byAlice, err := repo.ListListings(ctx, datagateway.ListListingsParams{Seller: &alice})
	require.NoError(t, err)
	require.Len(t, byAlice, 2)

	paged, err := repo.ListListings(ctx, datagateway.ListListingsParams{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)

	empty, err := repo.ListListings(ctx, datagateway.ListListingsParams{Offset: 10})
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestLatestVersionReads(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	require.NoError(t, repo.CreateFeeConfig(ctx, entity.FeeConfig{DefaultFeeBps: 100, BlockHeight: 100}))
	require.NoError(t, repo.CreateFeeConfig(ctx, entity.FeeConfig{DefaultFeeBps: 200, BlockHeight: 101}))
	feeConfig, err := repo.GetFeeConfig(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 200, feeConfig.DefaultFeeBps)

	require.NoError(t, repo.CreateSubscriptionTier(ctx, entity.SubscriptionTier{TierId: 1, FeeBps: 100, BlockHeight: 100}))
	require.NoError(t, repo.CreateSubscriptionTier(ctx, entity.SubscriptionTier{TierId: 2, FeeBps: 150, BlockHeight: 100}))
	require.NoError(t, repo.CreateSubscriptionTier(ctx, entity.SubscriptionTier{TierId: 1, FeeBps: 50, BlockHeight: 101}))

	tier, err := repo.GetSubscriptionTier(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 50, tier.FeeBps)

	tiers, err := repo.ListSubscriptionTiers(ctx)
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	require.EqualValues(t, 50, tiers[0].FeeBps)
	require.EqualValues(t, 150, tiers[1].FeeBps)

	account := testAddress(1)
	require.NoError(t, repo.CreateSubscription(ctx, entity.Subscription{Account: account, TierId: 1, BlockHeight: 100}))
	require.NoError(t, repo.CreateSubscription(ctx, entity.Subscription{Account: account, TierId: 2, BlockHeight: 101}))
	subscription, err := repo.GetSubscription(ctx, account)
	require.NoError(t, err)
	require.EqualValues(t, 2, subscription.TierId)
}

func TestIndexedBlocks(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, err := repo.GetLatestIndexedBlock(ctx)
	require.ErrorIs(t, err, errs.NotFound)

	require.NoError(t, repo.CreateIndexedBlock(ctx, entity.IndexedBlock{Height: 100}))
	require.NoError(t, repo.CreateIndexedBlock(ctx, entity.IndexedBlock{Height: 101}))

	latest, err := repo.GetLatestIndexedBlock(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 101, latest.Height)

	removed, err := repo.DeleteIndexedBlocksSinceHeight(ctx, 101)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
	latest, err = repo.GetLatestIndexedBlock(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 100, latest.Height)
}
