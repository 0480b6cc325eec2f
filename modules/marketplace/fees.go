package marketplace

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
)

// maxBps is 100% in basis points.
const maxBps = 10000

// Split is the settlement payment split of a sale price.
// Fee + Royalty + Seller always equals the price exactly.
type Split struct {
	Fee     uint128.Uint128
	Royalty uint128.Uint128
	Seller  uint128.Uint128
}

// ComputeSplit splits price into fee, royalty and seller shares.
// Shares truncate toward zero; the truncation remainder goes to the
// seller, so no value is created or destroyed.
//
// Returns errs.InvalidConfiguration if feeBps+royaltyBps exceeds 100%.
// The configuration error is surfaced, never silently clamped.
func ComputeSplit(price uint128.Uint128, feeBps, royaltyBps uint16, royaltiesDisabled bool) (Split, error) {
	if royaltiesDisabled {
		royaltyBps = 0
	}
	if uint32(feeBps)+uint32(royaltyBps) > maxBps {
		return Split{}, errors.Wrapf(errs.InvalidConfiguration, "fee %d bps + royalty %d bps exceeds 10000", feeBps, royaltyBps)
	}

	fee := bpsShare(price, feeBps)
	royalty := bpsShare(price, royaltyBps)
	seller := price.Sub(fee).Sub(royalty)
	return Split{
		Fee:     fee,
		Royalty: royalty,
		Seller:  seller,
	}, nil
}

// bpsShare computes price*bps/10000 without overflowing uint128.
// price = q*10000 + r, so the share is q*bps + r*bps/10000; both terms
// fit because bps <= 10000 and r < 10000.
func bpsShare(price uint128.Uint128, bps uint16) uint128.Uint128 {
	q, r := price.QuoRem64(maxBps)
	return q.Mul64(uint64(bps)).Add64(r * uint64(bps) / maxBps)
}
