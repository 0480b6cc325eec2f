package adapters

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/ledgerclient"
)

// Make sure to implement the adapter interfaces
var (
	_ AssetRegistry      = (*LedgerAssetRegistry)(nil)
	_ PaymentLedger      = (*LedgerPaymentLedger)(nil)
	_ SettlementExecutor = (*LedgerSettlementExecutor)(nil)
)

// LedgerAssetRegistry resolves asset ownership through the host
// ledger node.
type LedgerAssetRegistry struct {
	client *ledgerclient.Client
}

func NewLedgerAssetRegistry(client *ledgerclient.Client) *LedgerAssetRegistry {
	return &LedgerAssetRegistry{client: client}
}

func (r *LedgerAssetRegistry) OwnerOf(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128) (common.Address, error) {
	owner, err := r.client.OwnerOf(ctx, assetContract, tokenId)
	if err != nil {
		return common.Address{}, errors.WithStack(err)
	}
	return owner, nil
}

func (r *LedgerAssetRegistry) IsApprovedForTransfer(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, operator common.Address) (bool, error) {
	approved, err := r.client.IsApproved(ctx, assetContract, tokenId, operator)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return approved, nil
}

func (r *LedgerAssetRegistry) Transfer(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, from, to common.Address) error {
	if err := r.client.TransferAsset(ctx, assetContract, tokenId, from, to); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// LedgerPaymentLedger moves native currency and fungible tokens
// through the host ledger node.
type LedgerPaymentLedger struct {
	client *ledgerclient.Client
}

func NewLedgerPaymentLedger(client *ledgerclient.Client) *LedgerPaymentLedger {
	return &LedgerPaymentLedger{client: client}
}

func (p *LedgerPaymentLedger) BalanceOf(ctx context.Context, paymentToken, account common.Address) (uint128.Uint128, error) {
	balance, err := p.client.BalanceOf(ctx, paymentToken, account)
	if err != nil {
		return uint128.Uint128{}, errors.WithStack(err)
	}
	return balance, nil
}

func (p *LedgerPaymentLedger) Allowance(ctx context.Context, paymentToken, owner, spender common.Address) (uint128.Uint128, error) {
	allowance, err := p.client.Allowance(ctx, paymentToken, owner, spender)
	if err != nil {
		return uint128.Uint128{}, errors.WithStack(err)
	}
	return allowance, nil
}

func (p *LedgerPaymentLedger) Transfer(ctx context.Context, paymentToken, from, to common.Address, amount uint128.Uint128) error {
	if err := p.client.Transfer(ctx, paymentToken, from, to, amount); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// LedgerSettlementExecutor submits settlement batches to the host
// ledger node, which applies them atomically.
type LedgerSettlementExecutor struct {
	client *ledgerclient.Client
}

func NewLedgerSettlementExecutor(client *ledgerclient.Client) *LedgerSettlementExecutor {
	return &LedgerSettlementExecutor{client: client}
}

func (s *LedgerSettlementExecutor) Settle(ctx context.Context, settlement Settlement) error {
	legs := make([]ledgerclient.SettlementPaymentLeg, 0, len(settlement.Payments))
	for _, leg := range settlement.Payments {
		legs = append(legs, ledgerclient.SettlementPaymentLeg{
			PaymentToken: leg.PaymentToken,
			From:         leg.From,
			To:           leg.To,
			Amount:       leg.Amount.String(),
		})
	}
	if err := s.client.Settle(ctx, ledgerclient.SettlementRequest{
		Asset: ledgerclient.SettlementAssetLeg{
			AssetContract: settlement.AssetContract,
			TokenId:       settlement.TokenId.String(),
			From:          settlement.From,
			To:            settlement.To,
		},
		Payments: legs,
	}); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
