package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
)

type getListingRequest struct {
	AssetContract string `params:"assetContract"`
	TokenId       string `params:"tokenId"`

	assetContract common.Address
	tokenId       uint128.Uint128
}

func (r *getListingRequest) Validate() error {
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

type getListingResponse = HttpResponse[listingResult]

func (h *HttpHandler) GetListing(ctx *fiber.Ctx) (err error) {
	var req getListingRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	listing, err := h.usecase.GetListing(ctx.UserContext(), req.assetContract, req.tokenId)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("listing not found")
		}
		return errors.Wrap(err, "error during GetListing")
	}

	resp := getListingResponse{
		Result: createListingResult(*listing),
	}
	return errors.WithStack(ctx.JSON(resp))
}
