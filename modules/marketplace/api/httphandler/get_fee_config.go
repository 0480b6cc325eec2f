package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
)

type getFeeConfigResult struct {
	DefaultFeeBps     uint16         `json:"defaultFeeBps"`
	FeeRecipient      common.Address `json:"feeRecipient"`
	RoyaltiesDisabled bool           `json:"royaltiesDisabled"`
	BlockHeight       int64          `json:"blockHeight"`
}
type getFeeConfigResponse = HttpResponse[getFeeConfigResult]

func (h *HttpHandler) GetFeeConfig(ctx *fiber.Ctx) (err error) {
	feeConfig, err := h.usecase.GetFeeConfig(ctx.UserContext())
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("fee config not found")
		}
		return errors.Wrap(err, "error during GetFeeConfig")
	}

	resp := getFeeConfigResponse{
		Result: &getFeeConfigResult{
			DefaultFeeBps:     feeConfig.DefaultFeeBps,
			FeeRecipient:      feeConfig.FeeRecipient,
			RoyaltiesDisabled: feeConfig.RoyaltiesDisabled,
			BlockHeight:       feeConfig.BlockHeight,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
