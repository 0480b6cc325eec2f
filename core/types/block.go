package types

import (
	"time"

	"github.com/tradeforge-xyz/marketplace-engine/common"
)

// BlockHeader is the chain-linking portion of a ledger block.
type BlockHeader struct {
	Hash      common.Hash
	PrevBlock common.Hash
	Height    int64
	Timestamp time.Time
}

// Block is a fully fetched ledger block with its ordered transactions.
type Block struct {
	Header       BlockHeader
	Transactions []*Transaction
}

func (b Block) BlockHeader() BlockHeader {
	return b.Header
}
