package marketplace

import (
	"context"
	"encoding/json"

	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/core/types"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/logger"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/logger/slogx"
)

// protocolTag identifies marketplace instructions among arbitrary
// transaction payloads.
const protocolTag = "marketplace"

const (
	OpList                = "list"
	OpCancelListing       = "cancel_listing"
	OpPurchase            = "purchase"
	OpMakeOffer           = "make_offer"
	OpCancelOffer         = "cancel_offer"
	OpAcceptOffer         = "accept_offer"
	OpSubscribe           = "subscribe"
	OpSetFeeConfig        = "set_fee_config"
	OpSetSubscriptionTier = "set_subscription_tier"
	OpSetRoyaltyConfig    = "set_royalty_config"
)

// Instruction is the JSON payload carried in a ledger transaction's
// data field. Amount fields are decimal uint128 strings. The
// transaction sender is the caller and the attached native value is
// the payment.
type Instruction struct {
	Protocol      string         `json:"p"`
	Op            string         `json:"op"`
	AssetContract common.Address `json:"assetContract,omitempty"`
	TokenId       string         `json:"tokenId,omitempty"`
	Price         string         `json:"price,omitempty"`
	PaymentToken  common.Address `json:"paymentToken,omitempty"`
	ExpiresAt     int64          `json:"expiresAt,omitempty"`
	PrivateBuyer  common.Address `json:"privateBuyer,omitempty"`
	Buyer         common.Address `json:"buyer,omitempty"`

	// Subscription fields
	TierId          uint64 `json:"tierId,omitempty"`
	DurationSeconds int64  `json:"durationSeconds,omitempty"`
	FeeBps          uint16 `json:"feeBps,omitempty"`
	IsActive        bool   `json:"isActive,omitempty"`

	// Admin fields
	DefaultFeeBps     uint16         `json:"defaultFeeBps,omitempty"`
	FeeRecipient      common.Address `json:"feeRecipient,omitempty"`
	RoyaltiesDisabled bool           `json:"royaltiesDisabled,omitempty"`
	Recipient         common.Address `json:"recipient,omitempty"`
	RoyaltyBps        uint16         `json:"royaltyBps,omitempty"`
}

// marketplaceEvent is one decoded instruction with its enclosing
// transaction.
type marketplaceEvent struct {
	transaction *types.Transaction
	instruction Instruction
	rawData     json.RawMessage
}

func (p *Processor) parseTransactions(ctx context.Context, transactions []*types.Transaction) []marketplaceEvent {
	events := make([]marketplaceEvent, 0)
	for _, t := range transactions {
		if len(t.Data) == 0 {
			continue
		}
		var instruction Instruction
		if err := json.Unmarshal(t.Data, &instruction); err != nil {
			continue
		}
		if instruction.Protocol != protocolTag {
			continue
		}
		if instruction.Op == "" {
			logger.DebugContext(ctx, "Skipping marketplace payload without op",
				slogx.Stringer("txHash", t.Hash),
				slogx.Int64("blockHeight", t.BlockHeight),
			)
			continue
		}
		events = append(events, marketplaceEvent{
			transaction: t,
			instruction: instruction,
			rawData:     json.RawMessage(t.Data),
		})
	}
	return events
}
