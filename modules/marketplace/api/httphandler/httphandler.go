package httphandler

import (
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/usecase"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/decimals"
)

// nativeDecimals is the divisibility of the host ledger's native
// currency, used for display amounts only.
const nativeDecimals = 18

type HttpHandler struct {
	usecase *usecase.Usecase
	network common.Network
}

func New(network common.Network, usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
		network: network,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

// decimalAmount renders a raw amount as a decimal string. Token
// divisibility is unknown to the engine, so only native amounts get a
// display value.
func decimalAmount(amount uint128.Uint128, paymentToken common.Address) *string {
	if !paymentToken.IsZero() {
		return nil
	}
	return lo.ToPtr(decimals.ToDecimal(amount, nativeDecimals).String())
}

type listingResult struct {
	AssetContract common.Address  `json:"assetContract"`
	TokenId       uint128.Uint128 `json:"tokenId"`
	Seller        common.Address  `json:"seller"`
	Price         uint128.Uint128 `json:"price"`
	PriceDecimal  *string         `json:"priceDecimal,omitempty"`
	PaymentToken  common.Address  `json:"paymentToken"`
	ListedAt      int64           `json:"listedAt"`
	ExpiresAt     *int64          `json:"expiresAt"`
	PrivateBuyer  *common.Address `json:"privateBuyer,omitempty"`
	BlockHeight   int64           `json:"blockHeight"`
}

func createListingResult(src entity.Listing) *listingResult {
	return &listingResult{
		AssetContract: src.AssetContract,
		TokenId:       src.TokenId,
		Seller:        src.Seller,
		Price:         src.Price,
		PriceDecimal:  decimalAmount(src.Price, src.PaymentToken),
		PaymentToken:  src.PaymentToken,
		ListedAt:      src.ListedAt.Unix(),
		ExpiresAt:     lo.Ternary(src.ExpiresAt.IsZero(), nil, lo.ToPtr(src.ExpiresAt.Unix())),
		PrivateBuyer:  lo.Ternary(src.PrivateBuyer.IsZero(), nil, lo.ToPtr(src.PrivateBuyer)),
		BlockHeight:   src.BlockHeight,
	}
}

type offerResult struct {
	AssetContract common.Address  `json:"assetContract"`
	TokenId       uint128.Uint128 `json:"tokenId"`
	Buyer         common.Address  `json:"buyer"`
	Price         uint128.Uint128 `json:"price"`
	PriceDecimal  *string         `json:"priceDecimal,omitempty"`
	PaymentToken  common.Address  `json:"paymentToken"`
	Escrowed      bool            `json:"escrowed"`
	ExpiresAt     *int64          `json:"expiresAt"`
	BlockHeight   int64           `json:"blockHeight"`
}

func createOfferResult(src entity.Offer) *offerResult {
	return &offerResult{
		AssetContract: src.AssetContract,
		TokenId:       src.TokenId,
		Buyer:         src.Buyer,
		Price:         src.Price,
		PriceDecimal:  decimalAmount(src.Price, src.PaymentToken),
		PaymentToken:  src.PaymentToken,
		Escrowed:      src.Escrowed,
		ExpiresAt:     lo.Ternary(src.ExpiresAt.IsZero(), nil, lo.ToPtr(src.ExpiresAt.Unix())),
		BlockHeight:   src.BlockHeight,
	}
}
