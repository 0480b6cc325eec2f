package marketplace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
)

func TestListCreatesListing(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	seller := testAddress(1)
	contract := testAddress(0x10)
	tokenId := u128(7)
	e.assets.put(contract, tokenId, seller)

	e.process(t, testBlock(100, instructionTx(seller, u128(0), Instruction{
		Op:            OpList,
		AssetContract: contract,
		TokenId:       "7",
		Price:         "1000",
	})))

	require.True(t, e.lastEvent(t, seller).Valid)
	listing, err := e.store.GetListing(ctx, contract, tokenId)
	require.NoError(t, err)
	require.Equal(t, seller, listing.Seller)
	require.True(t, listing.Price.Equals(u128(1000)))
	require.True(t, listing.PaymentToken.IsZero())
	require.True(t, listing.PrivateBuyer.IsZero())
	require.True(t, listing.ExpiresAt.IsZero())
	require.Equal(t, testTime(100), listing.ListedAt)
	require.EqualValues(t, 100, listing.BlockHeight)
}

func TestListZeroPriceRejected(t *testing.T) {
	e := newEngineTest(t)
	seller := testAddress(1)
	contract := testAddress(0x10)
	e.assets.put(contract, u128(7), seller)

	e.process(t, testBlock(100, instructionTx(seller, u128(0), Instruction{
		Op: OpList, AssetContract: contract, TokenId: "7", Price: "0",
	})))

	event := e.lastEvent(t, seller)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "price")
	_, err := e.store.GetListing(context.Background(), contract, u128(7))
	require.ErrorIs(t, err, errs.NotFound)
}

func TestListRequiresOwnership(t *testing.T) {
	e := newEngineTest(t)
	seller := testAddress(1)
	notOwner := testAddress(2)
	contract := testAddress(0x10)
	e.assets.put(contract, u128(7), seller)

	e.process(t, testBlock(100, instructionTx(notOwner, u128(0), Instruction{
		Op: OpList, AssetContract: contract, TokenId: "7", Price: "1000",
	})))

	event := e.lastEvent(t, notOwner)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "does not own")
}

func TestListRequiresCustodyApproval(t *testing.T) {
	e := newEngineTest(t)
	seller := testAddress(1)
	contract := testAddress(0x10)
	e.assets.put(contract, u128(7), seller)
	e.assets.approved[assetKey{contract, u128(7)}] = false

	e.process(t, testBlock(100, instructionTx(seller, u128(0), Instruction{
		Op: OpList, AssetContract: contract, TokenId: "7", Price: "1000",
	})))

	event := e.lastEvent(t, seller)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "not approved")
}

func TestRelistReplacesListing(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	seller := testAddress(1)
	contract := testAddress(0x10)
	tokenId := u128(7)
	e.assets.put(contract, tokenId, seller)

	e.process(t, testBlock(100, instructionTx(seller, u128(0), Instruction{
		Op: OpList, AssetContract: contract, TokenId: "7", Price: "1000",
	})))
	e.process(t, testBlock(101, instructionTx(seller, u128(0), Instruction{
		Op: OpList, AssetContract: contract, TokenId: "7", Price: "2000", ExpiresAt: testTime(200).Unix(),
	})))

	listing, err := e.store.GetListing(ctx, contract, tokenId)
	require.NoError(t, err)
	require.True(t, listing.Price.Equals(u128(2000)))
	require.Equal(t, testTime(200), listing.ExpiresAt)

	// only one active listing per asset
	listings, err := e.store.ListListings(ctx, listListingsByContract(contract))
	require.NoError(t, err)
	require.Len(t, listings, 1)
}

func TestCancelListing(t *testing.T) {
	e := newEngineTest(t)
	seller := testAddress(1)
	contract := testAddress(0x10)
	e.assets.put(contract, u128(7), seller)

	e.process(t, testBlock(100, instructionTx(seller, u128(0), Instruction{
		Op: OpList, AssetContract: contract, TokenId: "7", Price: "1000",
	})))
	e.process(t, testBlock(101, instructionTx(seller, u128(0), Instruction{
		Op: OpCancelListing, AssetContract: contract, TokenId: "7",
	})))

	require.True(t, e.lastEvent(t, seller).Valid)
	_, err := e.store.GetListing(context.Background(), contract, u128(7))
	require.ErrorIs(t, err, errs.NotFound)
}

func TestCancelListingOnlyBySeller(t *testing.T) {
	e := newEngineTest(t)
	seller := testAddress(1)
	other := testAddress(2)
	contract := testAddress(0x10)
	e.assets.put(contract, u128(7), seller)

	e.process(t, testBlock(100, instructionTx(seller, u128(0), Instruction{
		Op: OpList, AssetContract: contract, TokenId: "7", Price: "1000",
	})))
	e.process(t, testBlock(101, instructionTx(other, u128(0), Instruction{
		Op: OpCancelListing, AssetContract: contract, TokenId: "7",
	})))

	event := e.lastEvent(t, other)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "not the seller")

	listing, err := e.store.GetListing(context.Background(), contract, u128(7))
	require.NoError(t, err)
	require.Equal(t, seller, listing.Seller)
}

func TestCancelListingMissing(t *testing.T) {
	e := newEngineTest(t)
	caller := testAddress(1)

	e.process(t, testBlock(100, instructionTx(caller, u128(0), Instruction{
		Op: OpCancelListing, AssetContract: testAddress(0x10), TokenId: "7",
	})))

	event := e.lastEvent(t, caller)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "does not exist")
}
