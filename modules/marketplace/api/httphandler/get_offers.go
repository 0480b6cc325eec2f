package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

type getOffersRequest struct {
	AssetContract string `params:"assetContract"`
	TokenId       string `params:"tokenId"`

	assetContract common.Address
	tokenId       uint128.Uint128
}

func (r *getOffersRequest) Validate() error {
	var errList []error
	assetContract, err := common.AddressFromString(r.AssetContract)
	if err != nil {
		errList = append(errList, errors.Errorf("assetContract '%s' is not a valid address", r.AssetContract))
	}
	r.assetContract = assetContract
	tokenId, err := uint128.FromString(r.TokenId)
	if err != nil {
		errList = append(errList, errors.Errorf("tokenId '%s' is not a valid uint128", r.TokenId))
	}
	r.tokenId = tokenId
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getOffersResult struct {
	List []*offerResult `json:"list"`
}
type getOffersResponse = HttpResponse[getOffersResult]

func (h *HttpHandler) GetOffers(ctx *fiber.Ctx) (err error) {
	var req getOffersRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	offers, err := h.usecase.ListOffersByAsset(ctx.UserContext(), req.assetContract, req.tokenId)
	if err != nil {
		return errors.Wrap(err, "error during ListOffersByAsset")
	}

	resp := getOffersResponse{
		Result: &getOffersResult{
			List: lo.Map(offers, func(offer entity.Offer, _ int) *offerResult {
				return createOfferResult(offer)
			}),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
