package ledgerclient

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/tradeforge-xyz/marketplace-engine/common"
)

type SettlementAssetLeg struct {
	AssetContract common.Address `json:"assetContract"`
	TokenId       string         `json:"tokenId"`
	From          common.Address `json:"from"`
	To            common.Address `json:"to"`
}

type SettlementPaymentLeg struct {
	PaymentToken common.Address `json:"paymentToken"`
	From         common.Address `json:"from"`
	To           common.Address `json:"to"`
	Amount       string         `json:"amount"`
}

type SettlementRequest struct {
	Asset    SettlementAssetLeg     `json:"asset"`
	Payments []SettlementPaymentLeg `json:"payments"`
}

// Settle executes an asset transfer and its payment legs as one batch.
// The node applies every leg or rejects the whole request, so a
// partial settlement cannot occur.
func (c *Client) Settle(ctx context.Context, req SettlementRequest) error {
	if err := c.call(ctx, "settlement_execute", []any{req}, nil); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
