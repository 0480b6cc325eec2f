package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/internal/entity"
)

type subscriptionTierResult struct {
	TierId          uint64          `json:"tierId"`
	DurationSeconds int64           `json:"durationSeconds"`
	Price           uint128.Uint128 `json:"price"`
	PriceDecimal    *string         `json:"priceDecimal,omitempty"`
	PaymentToken    common.Address  `json:"paymentToken"`
	FeeBps          uint16          `json:"feeBps"`
	IsActive        bool            `json:"isActive"`
}

type getSubscriptionTiersResult struct {
	List []*subscriptionTierResult `json:"list"`
}
type getSubscriptionTiersResponse = HttpResponse[getSubscriptionTiersResult]

func (h *HttpHandler) GetSubscriptionTiers(ctx *fiber.Ctx) (err error) {
	tiers, err := h.usecase.ListSubscriptionTiers(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during ListSubscriptionTiers")
	}

	resp := getSubscriptionTiersResponse{
		Result: &getSubscriptionTiersResult{
			List: lo.Map(tiers, func(tier entity.SubscriptionTier, _ int) *subscriptionTierResult {
				return &subscriptionTierResult{
					TierId:          tier.TierId,
					DurationSeconds: tier.DurationSeconds,
					Price:           tier.Price,
					PriceDecimal:    decimalAmount(tier.Price, tier.PaymentToken),
					PaymentToken:    tier.PaymentToken,
					FeeBps:          tier.FeeBps,
					IsActive:        tier.IsActive,
				}
			}),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
