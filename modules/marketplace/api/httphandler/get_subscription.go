package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
)

type getSubscriptionRequest struct {
	Account string `params:"account"`

	account common.Address
}

func (r *getSubscriptionRequest) Validate() error {
	var errList []error
	account, err := common.AddressFromString(r.Account)
	if err != nil {
		errList = append(errList, errors.Errorf("account '%s' is not a valid address", r.Account))
	}
	r.account = account
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getSubscriptionResult struct {
	Account   common.Address `json:"account"`
	TierId    uint64         `json:"tierId"`
	FeeBps    *uint16        `json:"feeBps,omitempty"`
	ExpiresAt int64          `json:"expiresAt"`
	Active    bool           `json:"active"`
}
type getSubscriptionResponse = HttpResponse[getSubscriptionResult]

func (h *HttpHandler) GetSubscription(ctx *fiber.Ctx) (err error) {
	var req getSubscriptionRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	subscription, err := h.usecase.GetSubscription(ctx.UserContext(), req.account)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("subscription not found")
		}
		return errors.Wrap(err, "error during GetSubscription")
	}

	var feeBps *uint16
	tier, err := h.usecase.GetSubscriptionTier(ctx.UserContext(), subscription.TierId)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "error during GetSubscriptionTier")
	}
	if tier != nil {
		feeBps = &tier.FeeBps
	}

	resp := getSubscriptionResponse{
		Result: &getSubscriptionResult{
			Account:   subscription.Account,
			TierId:    subscription.TierId,
			FeeBps:    feeBps,
			ExpiresAt: subscription.ExpiresAt.Unix(),
			Active:    subscription.Active(time.Now().UTC()),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
