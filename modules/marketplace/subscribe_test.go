package marketplace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

func seedTier(t *testing.T, e *engineTest, tier entity.SubscriptionTier) {
	t.Helper()
	require.NoError(t, e.store.CreateSubscriptionTier(context.Background(), tier))
}

func TestSubscribeCreatesSubscription(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	account := testAddress(1)
	e.seedFees(t, 250, testFeeRecipient)
	seedTier(t, e, entity.SubscriptionTier{
		TierId: 1, DurationSeconds: 3600, Price: u128(500), FeeBps: 100, IsActive: true,
	})

	e.process(t, testBlock(100, instructionTx(account, u128(500), Instruction{
		Op: OpSubscribe, TierId: 1,
	})))

	require.True(t, e.lastEvent(t, account).Valid)
	subscription, err := e.store.GetSubscription(ctx, account)
	require.NoError(t, err)
	require.EqualValues(t, 1, subscription.TierId)
	require.Equal(t, testTime(100).Add(time.Hour), subscription.ExpiresAt)

	// tier price goes to the fee recipient out of custody
	require.Len(t, e.payments.transfers, 1)
	require.Equal(t, paymentTransfer{common.Address{}, testCustodian, testFeeRecipient, u128(500)}, e.payments.transfers[0])
}

func TestSubscribeWrongValue(t *testing.T) {
	e := newEngineTest(t)
	account := testAddress(1)
	seedTier(t, e, entity.SubscriptionTier{
		TierId: 1, DurationSeconds: 3600, Price: u128(500), IsActive: true,
	})

	e.process(t, testBlock(100, instructionTx(account, u128(400), Instruction{
		Op: OpSubscribe, TierId: 1,
	})))

	event := e.lastEvent(t, account)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "does not match tier price")
}

func TestSubscribeUnknownTier(t *testing.T) {
	e := newEngineTest(t)
	account := testAddress(1)

	e.process(t, testBlock(100, instructionTx(account, u128(0), Instruction{
		Op: OpSubscribe, TierId: 9,
	})))

	event := e.lastEvent(t, account)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "does not exist")
}

func TestSubscribeRetiredTier(t *testing.T) {
	e := newEngineTest(t)
	account := testAddress(1)
	seedTier(t, e, entity.SubscriptionTier{
		TierId: 1, DurationSeconds: 3600, Price: u128(500), IsActive: false,
	})

	e.process(t, testBlock(100, instructionTx(account, u128(500), Instruction{
		Op: OpSubscribe, TierId: 1,
	})))

	event := e.lastEvent(t, account)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "retired")
}

// Renewing before expiry stacks the new period onto the remaining one
// instead of starting over.
func TestSubscribeStacks(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	account := testAddress(1)
	e.seedFees(t, 0, common.Address{})
	seedTier(t, e, entity.SubscriptionTier{
		TierId: 1, DurationSeconds: 3600, Price: u128(500), IsActive: true,
	})

	e.process(t, testBlock(100, instructionTx(account, u128(500), Instruction{Op: OpSubscribe, TierId: 1})))
	e.process(t, testBlock(101, instructionTx(account, u128(500), Instruction{Op: OpSubscribe, TierId: 1})))

	subscription, err := e.store.GetSubscription(ctx, account)
	require.NoError(t, err)
	require.Equal(t, testTime(100).Add(2*time.Hour), subscription.ExpiresAt)
}

func TestSubscribeAfterExpiryStartsFresh(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	account := testAddress(1)
	e.seedFees(t, 0, common.Address{})
	seedTier(t, e, entity.SubscriptionTier{
		TierId: 1, DurationSeconds: 60, Price: u128(500), IsActive: true,
	})

	e.process(t, testBlock(100, instructionTx(account, u128(500), Instruction{Op: OpSubscribe, TierId: 1})))
	// block 200 is well past the one minute expiry
	e.process(t, testBlock(200, instructionTx(account, u128(500), Instruction{Op: OpSubscribe, TierId: 1})))

	subscription, err := e.store.GetSubscription(ctx, account)
	require.NoError(t, err)
	require.Equal(t, testTime(200).Add(time.Minute), subscription.ExpiresAt)
}

func TestSubscribeWithoutFeeRecipientSkipsPayment(t *testing.T) {
	e := newEngineTest(t)
	account := testAddress(1)
	// fee config seeded by VerifyStates has a zero recipient
	seedTier(t, e, entity.SubscriptionTier{
		TierId: 1, DurationSeconds: 3600, Price: u128(500), IsActive: true,
	})

	e.process(t, testBlock(100, instructionTx(account, u128(500), Instruction{Op: OpSubscribe, TierId: 1})))

	require.True(t, e.lastEvent(t, account).Valid)
	require.Empty(t, e.payments.transfers)
}

func TestSubscribeTokenRejectsAttachedValue(t *testing.T) {
	e := newEngineTest(t)
	account := testAddress(1)
	token := testAddress(0x20)
	seedTier(t, e, entity.SubscriptionTier{
		TierId: 1, DurationSeconds: 3600, Price: u128(500), PaymentToken: token, IsActive: true,
	})
	e.payments.setBalance(token, account, u128(500))
	e.payments.setAllowance(token, account, testCustodian, u128(500))

	e.process(t, testBlock(100, instructionTx(account, u128(1), Instruction{Op: OpSubscribe, TierId: 1})))

	event := e.lastEvent(t, account)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "attached value must be zero")
	require.Empty(t, e.payments.transfers)
}

func TestSubscribeTokenPriced(t *testing.T) {
	e := newEngineTest(t)
	account := testAddress(1)
	token := testAddress(0x20)
	e.seedFees(t, 0, testFeeRecipient)
	seedTier(t, e, entity.SubscriptionTier{
		TierId: 1, DurationSeconds: 3600, Price: u128(500), PaymentToken: token, IsActive: true,
	})
	e.payments.setBalance(token, account, u128(500))
	e.payments.setAllowance(token, account, testCustodian, u128(500))

	e.process(t, testBlock(100, instructionTx(account, u128(0), Instruction{Op: OpSubscribe, TierId: 1})))

	require.True(t, e.lastEvent(t, account).Valid)
	// token payments flow from the subscriber
	require.Len(t, e.payments.transfers, 1)
	require.Equal(t, paymentTransfer{token, account, testFeeRecipient, u128(500)}, e.payments.transfers[0])
}
