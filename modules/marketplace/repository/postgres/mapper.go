package postgres

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/repository/postgres/gen"
)

func uint128FromNumeric(src pgtype.Numeric) (uint128.Uint128, error) {
	if !src.Valid {
		return uint128.Uint128{}, errors.New("numeric is null")
	}
	bytes, err := src.MarshalJSON()
	if err != nil {
		return uint128.Uint128{}, errors.WithStack(err)
	}
	result, err := uint128.FromString(string(bytes))
	if err != nil {
		return uint128.Uint128{}, errors.WithStack(err)
	}
	return result, nil
}

func numericFromUint128(src uint128.Uint128) (pgtype.Numeric, error) {
	var result pgtype.Numeric
	if err := result.UnmarshalJSON([]byte(src.String())); err != nil {
		return pgtype.Numeric{}, errors.WithStack(err)
	}
	return result, nil
}

// nullable timestamp mapping, zero time means unset
func timestampFromTime(src time.Time) pgtype.Timestamp {
	if src.IsZero() {
		return pgtype.Timestamp{}
	}
	return pgtype.Timestamp{Time: src.UTC(), Valid: true}
}

func timeFromTimestamp(src pgtype.Timestamp) time.Time {
	if !src.Valid {
		return time.Time{}
	}
	return src.Time.UTC()
}

func mapListingModelToType(src gen.MarketplaceListing) (entity.Listing, error) {
	assetContract, err := common.AddressFromString(src.AssetContract)
	if err != nil {
		return entity.Listing{}, errors.WithStack(err)
	}
	tokenId, err := uint128FromNumeric(src.TokenID)
	if err != nil {
		return entity.Listing{}, errors.Wrap(err, "invalid token id")
	}
	seller, err := common.AddressFromString(src.Seller)
	if err != nil {
		return entity.Listing{}, errors.WithStack(err)
	}
	price, err := uint128FromNumeric(src.Price)
	if err != nil {
		return entity.Listing{}, errors.Wrap(err, "invalid price")
	}
	paymentToken, err := common.AddressFromString(src.PaymentToken)
	if err != nil {
		return entity.Listing{}, errors.WithStack(err)
	}
	privateBuyer, err := common.AddressFromString(src.PrivateBuyer)
	if err != nil {
		return entity.Listing{}, errors.WithStack(err)
	}
	return entity.Listing{
		AssetContract: assetContract,
		TokenId:       tokenId,
		Seller:        seller,
		Price:         price,
		PaymentToken:  paymentToken,
		ListedAt:      timeFromTimestamp(src.ListedAt),
		ExpiresAt:     timeFromTimestamp(src.ExpiresAt),
		PrivateBuyer:  privateBuyer,
		BlockHeight:   src.BlockHeight,
	}, nil
}

func mapListingTypeToParams(src entity.Listing) (gen.CreateListingParams, error) {
	tokenId, err := numericFromUint128(src.TokenId)
	if err != nil {
		return gen.CreateListingParams{}, errors.Wrap(err, "invalid token id")
	}
	price, err := numericFromUint128(src.Price)
	if err != nil {
		return gen.CreateListingParams{}, errors.Wrap(err, "invalid price")
	}
	return gen.CreateListingParams{
		AssetContract: src.AssetContract.String(),
		TokenID:       tokenId,
		Seller:        src.Seller.String(),
		Price:         price,
		PaymentToken:  src.PaymentToken.String(),
		ListedAt:      timestampFromTime(src.ListedAt),
		ExpiresAt:     timestampFromTime(src.ExpiresAt),
		PrivateBuyer:  src.PrivateBuyer.String(),
		BlockHeight:   src.BlockHeight,
	}, nil
}

func mapOfferModelToType(src gen.MarketplaceOffer) (entity.Offer, error) {
	assetContract, err := common.AddressFromString(src.AssetContract)
	if err != nil {
		return entity.Offer{}, errors.WithStack(err)
	}
	tokenId, err := uint128FromNumeric(src.TokenID)
	if err != nil {
		return entity.Offer{}, errors.Wrap(err, "invalid token id")
	}
	buyer, err := common.AddressFromString(src.Buyer)
	if err != nil {
		return entity.Offer{}, errors.WithStack(err)
	}
	price, err := uint128FromNumeric(src.Price)
	if err != nil {
		return entity.Offer{}, errors.Wrap(err, "invalid price")
	}
	paymentToken, err := common.AddressFromString(src.PaymentToken)
	if err != nil {
		return entity.Offer{}, errors.WithStack(err)
	}
	return entity.Offer{
		AssetContract: assetContract,
		TokenId:       tokenId,
		Buyer:         buyer,
		Price:         price,
		PaymentToken:  paymentToken,
		Escrowed:      src.Escrowed,
		ExpiresAt:     timeFromTimestamp(src.ExpiresAt),
		BlockHeight:   src.BlockHeight,
	}, nil
}

func mapOfferTypeToParams(src entity.Offer) (gen.CreateOfferParams, error) {
	tokenId, err := numericFromUint128(src.TokenId)
	if err != nil {
		return gen.CreateOfferParams{}, errors.Wrap(err, "invalid token id")
	}
	price, err := numericFromUint128(src.Price)
	if err != nil {
		return gen.CreateOfferParams{}, errors.Wrap(err, "invalid price")
	}
	return gen.CreateOfferParams{
		AssetContract: src.AssetContract.String(),
		TokenID:       tokenId,
		Buyer:         src.Buyer.String(),
		Price:         price,
		PaymentToken:  src.PaymentToken.String(),
		Escrowed:      src.Escrowed,
		ExpiresAt:     timestampFromTime(src.ExpiresAt),
		BlockHeight:   src.BlockHeight,
	}, nil
}

func mapSubscriptionTierModelToType(src gen.MarketplaceSubscriptionTier) (entity.SubscriptionTier, error) {
	price, err := uint128FromNumeric(src.Price)
	if err != nil {
		return entity.SubscriptionTier{}, errors.Wrap(err, "invalid price")
	}
	paymentToken, err := common.AddressFromString(src.PaymentToken)
	if err != nil {
		return entity.SubscriptionTier{}, errors.WithStack(err)
	}
	return entity.SubscriptionTier{
		TierId:          uint64(src.TierID),
		DurationSeconds: src.DurationSeconds,
		Price:           price,
		PaymentToken:    paymentToken,
		FeeBps:          uint16(src.FeeBps),
		IsActive:        src.IsActive,
		BlockHeight:     src.BlockHeight,
	}, nil
}

func mapSubscriptionModelToType(src gen.MarketplaceSubscription) (entity.Subscription, error) {
	account, err := common.AddressFromString(src.Account)
	if err != nil {
		return entity.Subscription{}, errors.WithStack(err)
	}
	return entity.Subscription{
		Account:     account,
		TierId:      uint64(src.TierID),
		ExpiresAt:   timeFromTimestamp(src.ExpiresAt),
		BlockHeight: src.BlockHeight,
	}, nil
}

func mapFeeConfigModelToType(src gen.MarketplaceFeeConfig) (entity.FeeConfig, error) {
	feeRecipient, err := common.AddressFromString(src.FeeRecipient)
	if err != nil {
		return entity.FeeConfig{}, errors.WithStack(err)
	}
	return entity.FeeConfig{
		DefaultFeeBps:     uint16(src.DefaultFeeBps),
		FeeRecipient:      feeRecipient,
		RoyaltiesDisabled: src.RoyaltiesDisabled,
		BlockHeight:       src.BlockHeight,
	}, nil
}

func mapRoyaltyConfigModelToType(src gen.MarketplaceRoyaltyConfig) (entity.RoyaltyConfig, error) {
	assetContract, err := common.AddressFromString(src.AssetContract)
	if err != nil {
		return entity.RoyaltyConfig{}, errors.WithStack(err)
	}
	recipient, err := common.AddressFromString(src.Recipient)
	if err != nil {
		return entity.RoyaltyConfig{}, errors.WithStack(err)
	}
	return entity.RoyaltyConfig{
		AssetContract: assetContract,
		Recipient:     recipient,
		RoyaltyBps:    uint16(src.RoyaltyBps),
		BlockHeight:   src.BlockHeight,
	}, nil
}

func mapEventModelToType(src gen.MarketplaceEvent) (entity.Event, error) {
	txHash, err := common.HashFromString(src.TxHash)
	if err != nil {
		return entity.Event{}, errors.WithStack(err)
	}
	caller, err := common.AddressFromString(src.Caller)
	if err != nil {
		return entity.Event{}, errors.WithStack(err)
	}
	blockHash, err := common.HashFromString(src.BlockHash)
	if err != nil {
		return entity.Event{}, errors.WithStack(err)
	}
	return entity.Event{
		TxHash:         txHash,
		TxIndex:        uint32(src.TxIndex),
		Caller:         caller,
		Action:         src.Action,
		Valid:          src.Valid,
		Reason:         src.Reason,
		Payload:        src.Payload,
		BlockHeight:    src.BlockHeight,
		BlockHash:      blockHash,
		BlockTimestamp: timeFromTimestamp(src.BlockTimestamp),
	}, nil
}
