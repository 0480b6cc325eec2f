package marketplace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
)

func TestSetFeeConfig(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()

	e.process(t, testBlock(100, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op:                OpSetFeeConfig,
		DefaultFeeBps:     250,
		FeeRecipient:      testFeeRecipient,
		RoyaltiesDisabled: true,
	})))

	require.True(t, e.lastEvent(t, testFeeAdmin).Valid)
	feeConfig, err := e.store.GetFeeConfig(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 250, feeConfig.DefaultFeeBps)
	require.Equal(t, testFeeRecipient, feeConfig.FeeRecipient)
	require.True(t, feeConfig.RoyaltiesDisabled)
	require.EqualValues(t, 100, feeConfig.BlockHeight)
}

func TestSetFeeConfigNonAdminRejected(t *testing.T) {
	e := newEngineTest(t)
	caller := testAddress(1)

	e.process(t, testBlock(100, instructionTx(caller, u128(0), Instruction{
		Op: OpSetFeeConfig, DefaultFeeBps: 250,
	})))

	event := e.lastEvent(t, caller)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "not the fee admin")

	// still the seeded zero config
	feeConfig, err := e.store.GetFeeConfig(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, feeConfig.DefaultFeeBps)
}

// Without a configured fee admin every admin instruction is rejected,
// including one sent from the zero address.
func TestAdminDisabledWhenUnconfigured(t *testing.T) {
	e := newEngineTestWithAdmin(t, common.Address{})

	e.process(t, testBlock(100, instructionTx(common.Address{}, u128(0), Instruction{
		Op: OpSetFeeConfig, DefaultFeeBps: 250,
	})))

	event := e.lastEvent(t, common.Address{})
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "not the fee admin")
}

func TestSetFeeConfigBpsTooHigh(t *testing.T) {
	e := newEngineTest(t)

	e.process(t, testBlock(100, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op: OpSetFeeConfig, DefaultFeeBps: 10001,
	})))

	event := e.lastEvent(t, testFeeAdmin)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "exceeds 10000")
}

func TestSetFeeConfigRequiresRecipient(t *testing.T) {
	e := newEngineTest(t)

	e.process(t, testBlock(100, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op: OpSetFeeConfig, DefaultFeeBps: 250,
	})))

	event := e.lastEvent(t, testFeeAdmin)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "feeRecipient is required")

	feeConfig, err := e.store.GetFeeConfig(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, feeConfig.DefaultFeeBps)
}

func TestSetSubscriptionTier(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()

	e.process(t, testBlock(100, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op:              OpSetSubscriptionTier,
		TierId:          1,
		DurationSeconds: 3600,
		Price:           "500",
		FeeBps:          100,
		IsActive:        true,
	})))

	require.True(t, e.lastEvent(t, testFeeAdmin).Valid)
	tier, err := e.store.GetSubscriptionTier(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 3600, tier.DurationSeconds)
	require.True(t, tier.Price.Equals(u128(500)))
	require.EqualValues(t, 100, tier.FeeBps)
	require.True(t, tier.IsActive)
}

// Tier updates append versions; the latest one wins.
func TestSetSubscriptionTierVersioned(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()

	e.process(t, testBlock(100, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op: OpSetSubscriptionTier, TierId: 1, DurationSeconds: 3600, Price: "500", FeeBps: 100, IsActive: true,
	})))
	e.process(t, testBlock(101, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op: OpSetSubscriptionTier, TierId: 1, DurationSeconds: 3600, Price: "500", FeeBps: 100, IsActive: false,
	})))

	tier, err := e.store.GetSubscriptionTier(ctx, 1)
	require.NoError(t, err)
	require.False(t, tier.IsActive)

	tiers, err := e.store.ListSubscriptionTiers(ctx)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
}

// Rate and duration are locked once a tier exists so an admin edit can
// never change what active subscribers already paid for. The isActive
// flag and the price of future renewals stay editable.
func TestSetSubscriptionTierRateImmutable(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()

	e.process(t, testBlock(100, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op: OpSetSubscriptionTier, TierId: 1, DurationSeconds: 3600, Price: "500", FeeBps: 100, IsActive: true,
	})))
	require.True(t, e.lastEvent(t, testFeeAdmin).Valid)

	e.process(t, testBlock(101, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op: OpSetSubscriptionTier, TierId: 1, DurationSeconds: 3600, Price: "500", FeeBps: 50, IsActive: true,
	})))
	event := e.lastEvent(t, testFeeAdmin)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "cannot change once set")

	e.process(t, testBlock(102, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op: OpSetSubscriptionTier, TierId: 1, DurationSeconds: 7200, Price: "500", FeeBps: 100, IsActive: true,
	})))
	event = e.lastEvent(t, testFeeAdmin)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "cannot change once set")

	// a price change for future renewals goes through
	e.process(t, testBlock(103, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op: OpSetSubscriptionTier, TierId: 1, DurationSeconds: 3600, Price: "600", FeeBps: 100, IsActive: true,
	})))
	require.True(t, e.lastEvent(t, testFeeAdmin).Valid)

	tier, err := e.store.GetSubscriptionTier(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 100, tier.FeeBps)
	require.EqualValues(t, 3600, tier.DurationSeconds)
	require.True(t, tier.Price.Equals(u128(600)))
}

func TestSetSubscriptionTierValidation(t *testing.T) {
	e := newEngineTest(t)

	e.process(t, testBlock(100, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op: OpSetSubscriptionTier, TierId: 1, DurationSeconds: 0, Price: "500",
	})))
	event := e.lastEvent(t, testFeeAdmin)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "duration must be positive")

	e.process(t, testBlock(101, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op: OpSetSubscriptionTier, TierId: 1, DurationSeconds: 3600, Price: "500", FeeBps: 10001,
	})))
	event = e.lastEvent(t, testFeeAdmin)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "exceeds 10000")

	_, err := e.store.GetSubscriptionTier(context.Background(), 1)
	require.ErrorIs(t, err, errs.NotFound)
}

func TestSetRoyaltyConfig(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	contract := testAddress(0x10)

	e.process(t, testBlock(100, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op:            OpSetRoyaltyConfig,
		AssetContract: contract,
		Recipient:     testRoyaltyRecipient,
		RoyaltyBps:    500,
	})))

	require.True(t, e.lastEvent(t, testFeeAdmin).Valid)
	royaltyConfig, err := e.store.GetRoyaltyConfig(ctx, contract)
	require.NoError(t, err)
	require.Equal(t, testRoyaltyRecipient, royaltyConfig.Recipient)
	require.EqualValues(t, 500, royaltyConfig.RoyaltyBps)
}

func TestSetRoyaltyConfigRequiresContract(t *testing.T) {
	e := newEngineTest(t)

	e.process(t, testBlock(100, instructionTx(testFeeAdmin, u128(0), Instruction{
		Op: OpSetRoyaltyConfig, Recipient: testRoyaltyRecipient, RoyaltyBps: 500,
	})))

	event := e.lastEvent(t, testFeeAdmin)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "assetContract is required")
}
