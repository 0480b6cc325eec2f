package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
)

type getOfferRequest struct {
	AssetContract string `params:"assetContract"`
	TokenId       string `params:"tokenId"`
	Buyer         string `params:"buyer"`

	assetContract common.Address
	tokenId       uint128.Uint128
	buyer         common.Address
}

func (r *getOfferRequest) Validate() error {
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
	buyer, err := common.AddressFromString(r.Buyer)
	if err != nil {
		errList = append(errList, errors.Errorf("buyer '%s' is not a valid address", r.Buyer))
	}
	r.buyer = buyer
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getOfferResponse = HttpResponse[offerResult]

func (h *HttpHandler) GetOffer(ctx *fiber.Ctx) (err error) {
	var req getOfferRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	offer, err := h.usecase.GetOffer(ctx.UserContext(), req.assetContract, req.tokenId, req.buyer)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("offer not found")
		}
		return errors.Wrap(err, "error during GetOffer")
	}

	resp := getOfferResponse{
		Result: createOfferResult(*offer),
	}
	return errors.WithStack(ctx.JSON(resp))
}
