package ledgerclient

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common"
)

// OwnerOf returns the current owner of the asset.
func (c *Client) OwnerOf(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128) (common.Address, error) {
	var owner common.Address
	if err := c.call(ctx, "asset_ownerOf", []any{assetContract, tokenId.String()}, &owner); err != nil {
		return common.Address{}, errors.WithStack(err)
	}
	return owner, nil
}

// IsApproved reports whether the operator may transfer the asset on
// behalf of its owner.
func (c *Client) IsApproved(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, operator common.Address) (bool, error) {
	var approved bool
	if err := c.call(ctx, "asset_isApproved", []any{assetContract, tokenId.String(), operator}, &approved); err != nil {
		return false, errors.WithStack(err)
	}
	return approved, nil
}

// TransferAsset moves the asset from its current owner to the recipient.
func (c *Client) TransferAsset(ctx context.Context, assetContract common.Address, tokenId uint128.Uint128, from, to common.Address) error {
	if err := c.call(ctx, "asset_transfer", []any{assetContract, tokenId.String(), from, to}, nil); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// BalanceOf returns the payment token balance of an account. The zero
// token address queries the native currency balance.
func (c *Client) BalanceOf(ctx context.Context, paymentToken, account common.Address) (uint128.Uint128, error) {
	var raw string
	if err := c.call(ctx, "payment_balanceOf", []any{paymentToken, account}, &raw); err != nil {
		return uint128.Uint128{}, errors.WithStack(err)
	}
	balance, err := uint128.FromString(raw)
	if err != nil {
		return uint128.Uint128{}, errors.Wrapf(err, "invalid balance %q", raw)
	}
	return balance, nil
}

// Allowance returns how much of the owner's token balance the spender
// may pull.
func (c *Client) Allowance(ctx context.Context, paymentToken, owner, spender common.Address) (uint128.Uint128, error) {
	var raw string
	if err := c.call(ctx, "payment_allowance", []any{paymentToken, owner, spender}, &raw); err != nil {
		return uint128.Uint128{}, errors.WithStack(err)
	}
	allowance, err := uint128.FromString(raw)
	if err != nil {
		return uint128.Uint128{}, errors.Wrapf(err, "invalid allowance %q", raw)
	}
	return allowance, nil
}

// Transfer moves payment funds between accounts. The zero token
// address moves native currency.
func (c *Client) Transfer(ctx context.Context, paymentToken, from, to common.Address, amount uint128.Uint128) error {
	if err := c.call(ctx, "payment_transfer", []any{paymentToken, from, to, amount.String()}, nil); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
