package types

import (
	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common"
)

// Transaction is a single ledger transaction. Data carries the raw
// instruction payload addressed to an application module; transactions
// without a payload are ignored by processors.
type Transaction struct {
	Hash        common.Hash
	BlockHash   common.Hash
	BlockHeight int64
	Index       uint32
	Sender      common.Address
	Recipient   common.Address
	Value       uint128.Uint128
	Data        []byte
}
