package adapters

import (
	"context"

	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common"
)

// AssetRegistry is the capability interface to the external
// asset-ownership ledger. The engine never caches answers across
// operations; ownership and approval are re-checked at use time.
type AssetRegistry interface {
	OwnerOf(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128) (common.Address, error)
	IsApprovedForTransfer(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, operator common.Address) (bool, error)
	Transfer(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, from, to common.Address) error
}

// PaymentLedger is the capability interface for moving value. The zero
// payment token address denotes the native currency.
type PaymentLedger interface {
	BalanceOf(ctx context.Context, paymentToken, account common.Address) (uint128.Uint128, error)
	Allowance(ctx context.Context, paymentToken, owner, spender common.Address) (uint128.Uint128, error)
	Transfer(ctx context.Context, paymentToken, from, to common.Address, amount uint128.Uint128) error
}

// PaymentLeg is one value movement inside a settlement batch.
type PaymentLeg struct {
	PaymentToken common.Address
	From         common.Address
	To           common.Address
	Amount       uint128.Uint128
}

// Settlement bundles the asset transfer of a sale with its payment
// legs. The host ledger applies the whole batch atomically; a rejected
// leg leaves ownership and balances untouched.
type Settlement struct {
	AssetContract common.Address
	TokenId       uint128.Uint128
	From          common.Address
	To            common.Address
	Payments      []PaymentLeg
}

// SettlementExecutor executes settlement batches on the host ledger.
type SettlementExecutor interface {
	Settle(ctx context.Context, settlement Settlement) error
}
