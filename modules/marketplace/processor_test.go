package marketplace

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/core/types"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/adapters"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/repository/memory"
)

var (
	testCustodian = testAddress(0xee)
	testFeeAdmin  = testAddress(0xad)
)

func testAddress(b byte) common.Address {
	var addr common.Address
	addr[common.AddressLength-1] = b
	return addr
}

func u128(v uint64) uint128.Uint128 {
	return uint128.From64(v)
}

// testTime pins block timestamps to a fixed epoch so expiry arithmetic
// in tests is deterministic.
func testTime(height int64) time.Time {
	return time.Unix(1700000000+height*10, 0).UTC()
}

func testBlock(height int64, txs ...*types.Transaction) *types.Block {
	var hash common.Hash
	hash[0] = 0xb0
	hash[common.HashLength-1] = byte(height)
	header := types.BlockHeader{
		Hash:      hash,
		Height:    height,
		Timestamp: testTime(height),
	}
	for i, tx := range txs {
		tx.BlockHash = header.Hash
		tx.BlockHeight = height
		tx.Index = uint32(i)
	}
	return &types.Block{Header: header, Transactions: txs}
}

var txSeq uint32

func instructionTx(sender common.Address, value uint128.Uint128, instruction Instruction) *types.Transaction {
	instruction.Protocol = protocolTag
	txSeq++
	var hash common.Hash
	hash[0] = 0x71
	hash[common.HashLength-1] = byte(txSeq)
	hash[common.HashLength-2] = byte(txSeq >> 8)
	return &types.Transaction{
		Hash:   hash,
		Sender: sender,
		Value:  value,
		Data:   lo.Must(json.Marshal(instruction)),
	}
}

type assetKey struct {
	contract common.Address
	tokenId  uint128.Uint128
}

type assetTransfer struct {
	contract common.Address
	tokenId  uint128.Uint128
	from     common.Address
	to       common.Address
}

type fakeAssetRegistry struct {
	owners      map[assetKey]common.Address
	approved    map[assetKey]bool
	transferErr error
	transfers   []assetTransfer
}

func newFakeAssetRegistry() *fakeAssetRegistry {
	return &fakeAssetRegistry{
		owners:   make(map[assetKey]common.Address),
		approved: make(map[assetKey]bool),
	}
}

func (f *fakeAssetRegistry) put(contract common.Address, tokenId uint128.Uint128, owner common.Address) {
	key := assetKey{contract, tokenId}
	f.owners[key] = owner
	f.approved[key] = true
}

func (f *fakeAssetRegistry) OwnerOf(_ context.Context, contract common.Address, tokenId uint128.Uint128) (common.Address, error) {
	return f.owners[assetKey{contract, tokenId}], nil
}

func (f *fakeAssetRegistry) IsApprovedForTransfer(_ context.Context, contract common.Address, tokenId uint128.Uint128, _ common.Address) (bool, error) {
	return f.approved[assetKey{contract, tokenId}], nil
}

func (f *fakeAssetRegistry) Transfer(_ context.Context, contract common.Address, tokenId uint128.Uint128, from, to common.Address) error {
	if f.transferErr != nil {
		return f.transferErr
	}
	key := assetKey{contract, tokenId}
	f.owners[key] = to
	f.transfers = append(f.transfers, assetTransfer{contract, tokenId, from, to})
	return nil
}

type tokenAccount struct {
	token   common.Address
	account common.Address
}

type tokenAllowance struct {
	token   common.Address
	owner   common.Address
	spender common.Address
}

type paymentTransfer struct {
	token  common.Address
	from   common.Address
	to     common.Address
	amount uint128.Uint128
}

type fakePaymentLedger struct {
	balances   map[tokenAccount]uint128.Uint128
	allowances map[tokenAllowance]uint128.Uint128
	transfers  []paymentTransfer
	failNext   error
}

func newFakePaymentLedger() *fakePaymentLedger {
	return &fakePaymentLedger{
		balances:   make(map[tokenAccount]uint128.Uint128),
		allowances: make(map[tokenAllowance]uint128.Uint128),
	}
}

func (f *fakePaymentLedger) setBalance(token, account common.Address, amount uint128.Uint128) {
	f.balances[tokenAccount{token, account}] = amount
}

func (f *fakePaymentLedger) setAllowance(token, owner, spender common.Address, amount uint128.Uint128) {
	f.allowances[tokenAllowance{token, owner, spender}] = amount
}

func (f *fakePaymentLedger) BalanceOf(_ context.Context, token, account common.Address) (uint128.Uint128, error) {
	return f.balances[tokenAccount{token, account}], nil
}

func (f *fakePaymentLedger) Allowance(_ context.Context, token, owner, spender common.Address) (uint128.Uint128, error) {
	return f.allowances[tokenAllowance{token, owner, spender}], nil
}

func (f *fakePaymentLedger) Transfer(_ context.Context, token, from, to common.Address, amount uint128.Uint128) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.transfers = append(f.transfers, paymentTransfer{token, from, to, amount})
	return nil
}

// fakeSettlementExecutor applies a settlement batch against the asset
// and payment fakes all-or-nothing: a configured failure rejects the
// batch before anything moves.
type fakeSettlementExecutor struct {
	assets   *fakeAssetRegistry
	payments *fakePaymentLedger
	failNext error
	onSettle func(settlement adapters.Settlement) error
}

func (f *fakeSettlementExecutor) Settle(ctx context.Context, settlement adapters.Settlement) error {
	if f.onSettle != nil {
		if err := f.onSettle(settlement); err != nil {
			return err
		}
	}
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	if err := f.assets.Transfer(ctx, settlement.AssetContract, settlement.TokenId, settlement.From, settlement.To); err != nil {
		return err
	}
	for _, leg := range settlement.Payments {
		if err := f.payments.Transfer(ctx, leg.PaymentToken, leg.From, leg.To, leg.Amount); err != nil {
			return err
		}
	}
	return nil
}

type engineTest struct {
	processor *Processor
	store     *memory.Repository
	assets    *fakeAssetRegistry
	payments  *fakePaymentLedger
	settler   *fakeSettlementExecutor
}

func newEngineTest(t *testing.T) *engineTest {
	t.Helper()
	return newEngineTestWithAdmin(t, testFeeAdmin)
}

func newEngineTestWithAdmin(t *testing.T, feeAdmin common.Address) *engineTest {
	t.Helper()
	store := memory.NewRepository()
	assets := newFakeAssetRegistry()
	payments := newFakePaymentLedger()
	settler := &fakeSettlementExecutor{assets: assets, payments: payments}
	processor := NewProcessor(store, assets, payments, settler, nil, common.NetworkMainnet, testCustodian, feeAdmin, 0, nil, nil)
	require.NoError(t, processor.VerifyStates(context.Background()))
	return &engineTest{
		processor: processor,
		store:     store,
		assets:    assets,
		payments:  payments,
		settler:   settler,
	}
}

func (e *engineTest) process(t *testing.T, block *types.Block) {
	t.Helper()
	require.NoError(t, e.processor.Process(context.Background(), []*types.Block{block}))
}

// lastEvent returns the most recent journaled event for a caller.
func (e *engineTest) lastEvent(t *testing.T, caller common.Address) entity.Event {
	t.Helper()
	events, err := e.store.GetEventsByCaller(context.Background(), caller)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	return events[0]
}

func listListingsByContract(contract common.Address) datagateway.ListListingsParams {
	return datagateway.ListListingsParams{AssetContract: &contract}
}

func (e *engineTest) seedFees(t *testing.T, defaultFeeBps uint16, feeRecipient common.Address) {
	t.Helper()
	require.NoError(t, e.store.CreateFeeConfig(context.Background(), entity.FeeConfig{
		DefaultFeeBps: defaultFeeBps,
		FeeRecipient:  feeRecipient,
		BlockHeight:   0,
	}))
}

func TestParseTransactionsFiltersPayloads(t *testing.T) {
	e := newEngineTest(t)
	sender := testAddress(1)

	noData := &types.Transaction{Sender: sender}
	notJSON := &types.Transaction{Sender: sender, Data: []byte("not json")}
	wrongProtocol := &types.Transaction{Sender: sender, Data: []byte(`{"p":"other","op":"list"}`)}
	missingOp := &types.Transaction{Sender: sender, Data: []byte(`{"p":"marketplace"}`)}
	valid := instructionTx(sender, u128(0), Instruction{Op: OpCancelListing, TokenId: "1"})
	block := testBlock(10, noData, notJSON, wrongProtocol, missingOp, valid)

	events := e.processor.parseTransactions(context.Background(), block.Transactions)
	require.Len(t, events, 1)
	require.Equal(t, OpCancelListing, events[0].instruction.Op)
}

func TestUnknownOpJournaledWithoutAbortingBlock(t *testing.T) {
	e := newEngineTest(t)
	caller := testAddress(1)

	e.process(t, testBlock(10, instructionTx(caller, u128(0), Instruction{Op: "bogus"})))

	event := e.lastEvent(t, caller)
	require.False(t, event.Valid)
	require.Contains(t, event.Reason, "unknown op")

	block, err := e.store.GetLatestIndexedBlock(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 10, block.Height)
}

func TestProcessIndexesBlocks(t *testing.T) {
	e := newEngineTest(t)

	e.process(t, testBlock(10))
	e.process(t, testBlock(11))

	latest, err := e.processor.CurrentBlock(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 11, latest.Height)

	indexed, err := e.processor.GetIndexedBlock(context.Background(), 10)
	require.NoError(t, err)
	require.EqualValues(t, 10, indexed.Height)
}

func TestCurrentBlockEmpty(t *testing.T) {
	e := newEngineTest(t)
	_, err := e.processor.CurrentBlock(context.Background())
	require.ErrorIs(t, err, errs.NotFound)
}

func TestVerifyStatesRequiresCustodian(t *testing.T) {
	store := memory.NewRepository()
	assets := newFakeAssetRegistry()
	payments := newFakePaymentLedger()
	settler := &fakeSettlementExecutor{assets: assets, payments: payments}
	processor := NewProcessor(store, assets, payments, settler, nil, common.NetworkMainnet, common.Address{}, testFeeAdmin, 0, nil, nil)
	require.ErrorIs(t, processor.VerifyStates(context.Background()), errs.InvalidConfiguration)
}

func TestVerifyStatesSeedsFeeConfig(t *testing.T) {
	e := newEngineTest(t)
	feeConfig, err := e.store.GetFeeConfig(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, feeConfig.DefaultFeeBps)
	require.True(t, feeConfig.FeeRecipient.IsZero())
	require.EqualValues(t, -1, feeConfig.BlockHeight)
}

func TestRevertDataRestoresDeletedListing(t *testing.T) {
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
		Op: OpCancelListing, AssetContract: contract, TokenId: "7",
	})))
	_, err := e.store.GetListing(ctx, contract, tokenId)
	require.ErrorIs(t, err, errs.NotFound)

	// Reverting the cancellation block restores the listing.
	require.NoError(t, e.processor.RevertData(ctx, 101))
	listing, err := e.store.GetListing(ctx, contract, tokenId)
	require.NoError(t, err)
	require.True(t, listing.Price.Equals(u128(1000)))
	latest, err := e.store.GetLatestIndexedBlock(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 100, latest.Height)

	// Reverting the listing block removes it entirely.
	require.NoError(t, e.processor.RevertData(ctx, 100))
	_, err = e.store.GetListing(ctx, contract, tokenId)
	require.ErrorIs(t, err, errs.NotFound)
	_, err = e.store.GetLatestIndexedBlock(ctx)
	require.ErrorIs(t, err, errs.NotFound)
}

func TestReentrantInstructionRejected(t *testing.T) {
	e := newEngineTest(t)
	ctx := context.Background()
	seller := testAddress(1)
	buyer := testAddress(2)
	contract := testAddress(0x10)
	tokenId := u128(7)
	e.assets.put(contract, tokenId, seller)
	e.seedFees(t, 0, common.Address{})

	e.process(t, testBlock(100, instructionTx(seller, u128(0), Instruction{
		Op: OpList, AssetContract: contract, TokenId: "7", Price: "1000",
	})))

	purchaseBlock := testBlock(101, instructionTx(buyer, u128(1000), Instruction{
		Op: OpPurchase, AssetContract: contract, TokenId: "7",
	}))

	// Re-enter the engine from inside the settlement call, the way a
	// malicious payment hook would.
	var reentrantErr error
	e.settler.onSettle = func(adapters.Settlement) error {
		e.settler.onSettle = nil
		qtx, err := e.store.BeginMarketplaceTx(ctx)
		require.NoError(t, err)
		defer func() { _ = qtx.Rollback(ctx) }()
		nested := instructionTx(buyer, u128(0), Instruction{Op: OpCancelOffer, AssetContract: contract, TokenId: "7"})
		reentrantErr = e.processor.applyInstruction(ctx, qtx, purchaseBlock, marketplaceEvent{
			transaction: nested,
			instruction: Instruction{Op: OpCancelOffer, AssetContract: contract, TokenId: "7"},
			rawData:     nested.Data,
		})
		return nil
	}

	e.process(t, purchaseBlock)

	require.ErrorIs(t, reentrantErr, errs.ReentrancyDetected)

	// The outer purchase still settles.
	require.True(t, e.lastEvent(t, buyer).Valid)
	_, err := e.store.GetListing(ctx, contract, tokenId)
	require.ErrorIs(t, err, errs.NotFound)
}
