package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"golang.org/x/sync/errgroup"
)

const getListingBatchMaxQueries = 100

type listingQuery struct {
	AssetContract string `json:"assetContract"`
	TokenId       string `json:"tokenId"`

	assetContract common.Address
	tokenId       uint128.Uint128
}

type getListingBatchRequest struct {
	Queries []listingQuery `json:"queries"`
}

func (r *getListingBatchRequest) Validate() error {
	var errList []error
	if len(r.Queries) == 0 {
		errList = append(errList, errors.New("queries cannot be empty"))
	}
	if len(r.Queries) > getListingBatchMaxQueries {
		errList = append(errList, errors.Errorf("cannot query more than %d listings", getListingBatchMaxQueries))
	}
	for i := range r.Queries {
		query := &r.Queries[i]
		assetContract, err := common.AddressFromString(query.AssetContract)
		if err != nil {
			errList = append(errList, errors.Errorf("queries[%d]: assetContract '%s' is not a valid address", i, query.AssetContract))
		}
		query.assetContract = assetContract
		tokenId, err := uint128.FromString(query.TokenId)
		if err != nil {
			errList = append(errList, errors.Errorf("queries[%d]: tokenId '%s' is not a valid uint128", i, query.TokenId))
		}
		query.tokenId = tokenId
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getListingBatchResult struct {
	// List is ordered as the request queries; missing listings are null.
	List []*listingResult `json:"list"`
}
type getListingBatchResponse = HttpResponse[getListingBatchResult]

func (h *HttpHandler) GetListingBatch(ctx *fiber.Ctx) (err error) {
	var req getListingBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	results := make([]*listingResult, len(req.Queries))
	g, gctx := errgroup.WithContext(ctx.UserContext())
	for i, query := range req.Queries {
		g.Go(func() error {
			listing, err := h.usecase.GetListing(gctx, query.assetContract, query.tokenId)
			if err != nil {
				if errors.Is(err, errs.NotFound) {
					return nil
				}
				return errors.Wrap(err, "error during GetListing")
			}
			results[i] = createListingResult(*listing)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.WithStack(err)
	}

	resp := getListingBatchResponse{
		Result: &getListingBatchResult{
			List: results,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
