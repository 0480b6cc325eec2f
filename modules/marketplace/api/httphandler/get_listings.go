package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/datagateway"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

const (
	getListingsDefaultLimit = 100
	getListingsMaxLimit     = 1000
)

type getListingsRequest struct {
	Seller        string `query:"seller"`
	AssetContract string `query:"assetContract"`
	Limit         int32  `query:"limit"`
	Offset        int32  `query:"offset"`

	seller        *common.Address
	assetContract *common.Address
}

func (r *getListingsRequest) Validate() error {
	var errList []error
	if r.Seller != "" {
		seller, err := common.AddressFromString(r.Seller)
		if err != nil {
			errList = append(errList, errors.Errorf("seller '%s' is not a valid address", r.Seller))
		}
		r.seller = &seller
	}
	if r.AssetContract != "" {
		assetContract, err := common.AddressFromString(r.AssetContract)
		if err != nil {
			errList = append(errList, errors.Errorf("assetContract '%s' is not a valid address", r.AssetContract))
		}
		r.assetContract = &assetContract
	}
	if r.Limit < 0 {
		errList = append(errList, errors.New("limit must not be negative"))
	}
	if r.Limit > getListingsMaxLimit {
		errList = append(errList, errors.Errorf("limit cannot exceed %d", getListingsMaxLimit))
	}
	if r.Limit == 0 {
		r.Limit = getListingsDefaultLimit
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("offset must not be negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getListingsResult struct {
	List []*listingResult `json:"list"`
}
type getListingsResponse = HttpResponse[getListingsResult]

func (h *HttpHandler) GetListings(ctx *fiber.Ctx) (err error) {
	var req getListingsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	listings, err := h.usecase.ListListings(ctx.UserContext(), datagateway.ListListingsParams{
		Seller:        req.seller,
		AssetContract: req.assetContract,
		Limit:         req.Limit,
		Offset:        req.Offset,
	})
	if err != nil {
		return errors.Wrap(err, "error during ListListings")
	}

	resp := getListingsResponse{
		Result: &getListingsResult{
			List: lo.Map(listings, func(listing entity.Listing, _ int) *listingResult {
				return createListingResult(listing)
			}),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
