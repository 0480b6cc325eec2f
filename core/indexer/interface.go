package indexer

import (
	"context"

	"github.com/tradeforge-xyz/marketplace-engine/core/types"
)

// Input is a datasource item consumable by an indexer processor.
type Input interface {
	BlockHeader() types.BlockHeader
}

// Processor applies fetched inputs to module state and answers the
// questions the polling worker needs for reorg handling.
type Processor[T Input] interface {
	// Name returns the processor name for logging and debugging.
	Name() string

	// Process processes a batch of ordered inputs atomically per block.
	Process(ctx context.Context, inputs []T) error

	// CurrentBlock returns the latest indexed block header.
	// Returns errs.NotFound if no block has been indexed yet.
	CurrentBlock(ctx context.Context) (types.BlockHeader, error)

	// GetIndexedBlock returns the indexed block header at the given height.
	GetIndexedBlock(ctx context.Context, height int64) (types.BlockHeader, error)

	// RevertData removes all indexed data from the given height onwards.
	RevertData(ctx context.Context, from int64) error

	// VerifyStates validates module states and runs pending migrations
	// before the worker starts polling.
	VerifyStates(ctx context.Context) error

	// Shutdown gracefully stops the processor.
	Shutdown(ctx context.Context) error
}

// IndexerWorker is a runnable, stoppable indexing loop.
type IndexerWorker interface {
	Run(ctx context.Context) error
	ShutdownWithContext(ctx context.Context) error
}
