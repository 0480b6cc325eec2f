package marketplace

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

var (
	testFeeRecipient     = testAddress(0xf1)
	testRoyaltyRecipient = testAddress(0xf2)
)

// listedAsset seeds a seller-owned asset with an active native listing
// at block 100 for price 10000.
func listedAsset(t *testing.T, e *engineTest, seller common.Address, instruction Instruction) {
	t.Helper()
	e.assets.put(instruction.AssetContract, u128(7), seller)
	instruction.Op = OpList
	instruction.TokenId = "7"
	if instruction.Price == "" {
		instruction.Price = "10000"
	}
	e.process(t, testBlock(100, instructionTx(seller, u128(0), instruction)))
	require.True(t, e.lastEvent(t, seller).Valid)
}

func TestPurchaseNative(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	e.seedFees(t, 250, testFeeRecipient)
	require.NoError(t, e.store.CreateRoyaltyConfig(ctx, entity.RoyaltyConfig{
		AssetContract: contract,
		Recipient:     testRoyaltyRecipient,
		RoyaltyBps:    500,
	}))
	listedAsset(t, e, seller, Instruction{AssetContract: contract})

	e.process(t, testBlock(101, instructionTx(buyer, u128(10000), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))

	require.True(t, e.lastEvent(t, buyer).Valid)

	// asset moved to the buyer
	owner, err := e.assets.OwnerOf(ctx, contract, u128(7))
	require.NoError(t, err)
	require.Equal(t, buyer, owner)

	// native value settles out of custody: seller leg first, then fee
	// and royalty
	require.Len(t, e.payments.transfers, 3)
	require.Equal(t, paymentTransfer{common.Address{}, testCustodian, seller, u128(9250)}, e.payments.transfers[0])
	require.Equal(t, paymentTransfer{common.Address{}, testCustodian, testFeeRecipient, u128(250)}, e.payments.transfers[1])
	require.Equal(t, paymentTransfer{common.Address{}, testCustodian, testRoyaltyRecipient, u128(500)}, e.payments.transfers[2])

	_, err = e.store.GetListing(ctx, contract, u128(7))
	require.ErrorIs(t, err, errs.NotFound)
}

func TestPurchaseWrongValue(t *testing.T) {
	e := newEngineTest(t)
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	listedAsset(t, e, seller, Instruction{AssetContract: contract})

	e.process(t, testBlock(101, instructionTx(buyer, u128(9999), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))

	event := e.lastEvent(t, buyer)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "does not match price")
	require.Empty(t, e.payments.transfers)
	require.Empty(t, e.assets.transfers)

	_, err := e.store.GetListing(context.Background(), contract, u128(7))
	require.NoError(t, err)
}

func TestPurchaseExpiredListing(t *testing.T) {
	e := newEngineTest(t)
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	// expires 5 seconds after block 100, before block 101
	listedAsset(t, e, seller, Instruction{AssetContract: contract, ExpiresAt: testTime(100).Unix() + 5})

	e.process(t, testBlock(101, instructionTx(buyer, u128(10000), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))

	event := e.lastEvent(t, buyer)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "expired")
}

func TestPurchasePrivateListing(t *testing.T) {
	e := newEngineTest(t)
	seller := testAddress(1)
	reserved := testAddress(2)
	other := testAddress(3)
	contract := testAddress(0x10)
	e.seedFees(t, 0, common.Address{})
	listedAsset(t, e, seller, Instruction{AssetContract: contract, PrivateBuyer: reserved})

	e.process(t, testBlock(101, instructionTx(other, u128(10000), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))
	event := e.lastEvent(t, other)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "reserved")

	e.process(t, testBlock(102, instructionTx(reserved, u128(10000), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))
	require.True(t, e.lastEvent(t, reserved).Valid)
}

// A listing whose seller moved the asset away is unfillable: the
// purchase fails but the stale listing is purged regardless, surviving
// the rollback of the failed operation.
func TestPurchaseStaleListingPurged(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	listedAsset(t, e, seller, Instruction{AssetContract: contract})

	// seller transfers the asset away out of band
	e.assets.owners[assetKey{contract, u128(7)}] = testAddress(9)

	e.process(t, testBlock(101, instructionTx(buyer, u128(10000), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))

	event := e.lastEvent(t, buyer)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "no longer owns")
	require.Empty(t, e.payments.transfers)

	_, err := e.store.GetListing(ctx, contract, u128(7))
	require.ErrorIs(t, err, errs.NotFound)
}

func TestPurchaseTokenPayment(t *testing.T) {
	e := newEngineTest(t)
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	token := testAddress(0x20)
	e.seedFees(t, 250, testFeeRecipient)
	listedAsset(t, e, seller, Instruction{AssetContract: contract, PaymentToken: token})
	e.payments.setBalance(token, buyer, u128(10000))
	e.payments.setAllowance(token, buyer, testCustodian, u128(10000))

	e.process(t, testBlock(101, instructionTx(buyer, u128(0), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))

	require.True(t, e.lastEvent(t, buyer).Valid)
	// token payments flow from the buyer, not custody
	require.Len(t, e.payments.transfers, 2)
	require.Equal(t, paymentTransfer{token, buyer, seller, u128(9750)}, e.payments.transfers[0])
	require.Equal(t, paymentTransfer{token, buyer, testFeeRecipient, u128(250)}, e.payments.transfers[1])
}

func TestPurchaseTokenInsufficientAllowance(t *testing.T) {
	e := newEngineTest(t)
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	token := testAddress(0x20)
	listedAsset(t, e, seller, Instruction{AssetContract: contract, PaymentToken: token})
	e.payments.setBalance(token, buyer, u128(10000))
	e.payments.setAllowance(token, buyer, testCustodian, u128(500))

	e.process(t, testBlock(101, instructionTx(buyer, u128(0), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))

	event := e.lastEvent(t, buyer)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "allowance")

	_, err := e.store.GetListing(context.Background(), contract, u128(7))
	require.NoError(t, err)
}

// An active subscription of the seller overrides the default fee rate
// with the tier rate.
func TestPurchaseSubscriptionFeeOverride(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	e.seedFees(t, 250, testFeeRecipient)
	require.NoError(t, e.store.CreateSubscriptionTier(ctx, entity.SubscriptionTier{
		TierId: 1, DurationSeconds: 86400, FeeBps: 100, IsActive: true,
	}))
	require.NoError(t, e.store.CreateSubscription(ctx, entity.Subscription{
		Account: seller, TierId: 1, ExpiresAt: testTime(200),
	}))
	listedAsset(t, e, seller, Instruction{AssetContract: contract})

	e.process(t, testBlock(101, instructionTx(buyer, u128(10000), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))

	require.True(t, e.lastEvent(t, buyer).Valid)
	require.Len(t, e.payments.transfers, 2)
	require.True(t, e.payments.transfers[0].amount.Equals(u128(9900)))
	require.True(t, e.payments.transfers[1].amount.Equals(u128(100)))
}

func TestPurchaseExpiredSubscriptionUsesDefaultFee(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	e.seedFees(t, 250, testFeeRecipient)
	require.NoError(t, e.store.CreateSubscriptionTier(ctx, entity.SubscriptionTier{
		TierId: 1, DurationSeconds: 86400, FeeBps: 100, IsActive: true,
	}))
	require.NoError(t, e.store.CreateSubscription(ctx, entity.Subscription{
		Account: seller, TierId: 1, ExpiresAt: testTime(50),
	}))
	listedAsset(t, e, seller, Instruction{AssetContract: contract})

	e.process(t, testBlock(101, instructionTx(buyer, u128(10000), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))

	require.True(t, e.lastEvent(t, buyer).Valid)
	require.True(t, e.payments.transfers[1].amount.Equals(u128(250)))
}

// A rejected settlement batch rolls the whole operation back: the
// listing stays active, the asset stays with the seller, no value
// moves, and the instruction journals as invalid.
func TestPurchaseSettlementFailureRollsBack(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	e.seedFees(t, 0, common.Address{})
	listedAsset(t, e, seller, Instruction{AssetContract: contract})
	e.settler.failNext = errors.New("ledger unavailable")

	e.process(t, testBlock(101, instructionTx(buyer, u128(10000), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))

	event := e.lastEvent(t, buyer)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "settlement failed")

	listing, err := e.store.GetListing(ctx, contract, u128(7))
	require.NoError(t, err)
	require.Equal(t, seller, listing.Seller)

	// ownership never moved and no leg was applied
	owner, err := e.assets.OwnerOf(ctx, contract, u128(7))
	require.NoError(t, err)
	require.Equal(t, seller, owner)
	require.Empty(t, e.assets.transfers)
	require.Empty(t, e.payments.transfers)
}

func TestPurchaseTokenRejectsAttachedValue(t *testing.T) {
	e := newEngineTest(t)
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	token := testAddress(0x20)
	listedAsset(t, e, seller, Instruction{AssetContract: contract, PaymentToken: token})
	e.payments.setBalance(token, buyer, u128(10000))
	e.payments.setAllowance(token, buyer, testCustodian, u128(10000))

	e.process(t, testBlock(101, instructionTx(buyer, u128(1), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))

	event := e.lastEvent(t, buyer)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "attached value must be zero")

	_, err := e.store.GetListing(context.Background(), contract, u128(7))
	require.NoError(t, err)
}

// A positive fee rate with no configured recipient folds the fee share
// into the seller leg instead of dropping it.
func TestPurchaseFeeWithoutRecipientStaysWithSeller(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	// fee config is the seeded one with a zero recipient; the tier rate
	// would otherwise carve out a fee share
	require.NoError(t, e.store.CreateSubscriptionTier(ctx, entity.SubscriptionTier{
		TierId: 1, DurationSeconds: 86400, FeeBps: 100, IsActive: true,
	}))
	require.NoError(t, e.store.CreateSubscription(ctx, entity.Subscription{
		Account: seller, TierId: 1, ExpiresAt: testTime(200),
	}))
	listedAsset(t, e, seller, Instruction{AssetContract: contract})

	e.process(t, testBlock(101, instructionTx(buyer, u128(10000), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	})))

	require.True(t, e.lastEvent(t, buyer).Valid)
	require.Len(t, e.payments.transfers, 1)
	require.Equal(t, paymentTransfer{common.Address{}, testCustodian, seller, u128(10000)}, e.payments.transfers[0])
}

func TestPurchaseMissingListing(t *testing.T) {
	e := newEngineTest(t)
	buyer := testAddress(2)

	e.process(t, testBlock(101, instructionTx(buyer, u128(10000), Instruction{
		Op: OpPurchase, AssetContract: testAddress(0x10), TokenId: "7",
	})))

	event := e.lastEvent(t, buyer)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "does not exist")
}
