package entity

import (
	"encoding/json"
	"time"

	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common"
)

// Listing is a seller's standing offer to sell one asset at a fixed
// price. At most one active listing exists per (AssetContract, TokenId).
type Listing struct {
	AssetContract common.Address
	TokenId       uint128.Uint128
	Seller        common.Address
	Price         uint128.Uint128
	PaymentToken  common.Address // zero address = native currency
	ListedAt      time.Time
	ExpiresAt     time.Time      // zero = never expires
	PrivateBuyer  common.Address // zero address = public listing
	BlockHeight   int64
}

// Expired reports whether the listing is past its expiry at the given
// time. Listings with a zero ExpiresAt never expire.
func (l Listing) Expired(at time.Time) bool {
	return !l.ExpiresAt.IsZero() && l.ExpiresAt.Before(at)
}

// Offer is a buyer-initiated bid on an asset. Native-currency offers
// carry escrow held by the engine custody account; token offers rely on
// a standing allowance checked at accept time.
type Offer struct {
	AssetContract common.Address
	TokenId       uint128.Uint128
	Buyer         common.Address
	Price         uint128.Uint128
	PaymentToken  common.Address
	Escrowed      bool
	ExpiresAt     time.Time
	BlockHeight   int64
}

func (o Offer) Expired(at time.Time) bool {
	return !o.ExpiresAt.IsZero() && o.ExpiresAt.Before(at)
}

// SubscriptionTier is an admin-configured, purchasable fee-rate grant.
// Tier versions are append-only per id; the latest version is current.
type SubscriptionTier struct {
	TierId          uint64
	DurationSeconds int64
	Price           uint128.Uint128
	PaymentToken    common.Address
	FeeBps          uint16
	IsActive        bool
	BlockHeight     int64
}

// Subscription is an account's time-bounded fee-exemption grant.
// Versions are append-only per account; the latest version is current.
type Subscription struct {
	Account     common.Address
	TierId      uint64
	ExpiresAt   time.Time
	BlockHeight int64
}

func (s Subscription) Active(at time.Time) bool {
	return s.ExpiresAt.After(at)
}

// FeeConfig is the process-wide fee configuration. Versions are
// append-only; the latest version is current.
type FeeConfig struct {
	DefaultFeeBps     uint16
	FeeRecipient      common.Address
	RoyaltiesDisabled bool
	BlockHeight       int64
}

// RoyaltyConfig registers a per-collection royalty recipient. Versions
// are append-only per asset contract; the latest version is current.
type RoyaltyConfig struct {
	AssetContract common.Address
	Recipient     common.Address
	RoyaltyBps    uint16
	BlockHeight   int64
}

// IndexedBlock is a processed-block bookkeeping row.
type IndexedBlock struct {
	Height int64
	Hash   common.Hash
}

// Event is one journaled marketplace instruction, valid or not.
type Event struct {
	TxHash         common.Hash
	TxIndex        uint32
	Caller         common.Address
	Action         string
	Valid          bool
	Reason         string
	Payload        json.RawMessage
	BlockHeight    int64
	BlockHash      common.Hash
	BlockTimestamp time.Time
}
