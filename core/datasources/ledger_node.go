package datasources

import (
	"context"

	"github.com/cockroachdb/errors"
	cstream "github.com/planxnx/concurrent-stream"
	"github.com/samber/lo"
	"github.com/tradeforge-xyz/marketplace-engine/core/types"
	"github.com/tradeforge-xyz/marketplace-engine/internal/subscription"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/ledgerclient"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/logger"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/logger/slogx"
)

// Make sure to implement the Datasource interface
var _ Datasource[*types.Block] = (*LedgerNodeDatasource)(nil)

// LedgerNodeDatasource fetches blocks from a host ledger node.
type LedgerNodeDatasource struct {
	client *ledgerclient.Client
}

func NewLedgerNode(client *ledgerclient.Client) *LedgerNodeDatasource {
	return &LedgerNodeDatasource{
		client: client,
	}
}

func (d LedgerNodeDatasource) Name() string {
	return "LedgerNode"
}

// Fetch polling blocks from the ledger node
//
//   - from: block height to start fetching, if -1, it will start from genesis block
//   - to: block height to stop fetching, if -1, it will fetch until the latest block
func (d *LedgerNodeDatasource) Fetch(ctx context.Context, from, to int64) ([]*types.Block, error) {
	ch := make(chan []*types.Block)
	subscription, err := d.FetchAsync(ctx, from, to, ch)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer subscription.Unsubscribe()

	blocks := make([]*types.Block, 0)
	for {
		select {
		case b, ok := <-ch:
			if !ok {
				return blocks, nil
			}
			blocks = append(blocks, b...)
		case <-subscription.Done():
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "context done")
			}
			return blocks, nil
		case err := <-subscription.Err():
			if err != nil {
				return nil, errors.Wrap(err, "got error while fetch async")
			}
			return blocks, nil
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "context done")
		}
	}
}

// FetchAsync polling blocks from the ledger node asynchronously (non-blocking)
//
//   - from: block height to start fetching, if -1, it will start from genesis block
//   - to: block height to stop fetching, if -1, it will fetch until the latest block
func (d *LedgerNodeDatasource) FetchAsync(ctx context.Context, from, to int64, ch chan<- []*types.Block) (*subscription.ClientSubscription[[]*types.Block], error) {
	from, to, skip, err := d.prepareRange(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare fetch range")
	}

	subscription := subscription.NewSubscription(ch)
	if skip {
		if err := subscription.UnsubscribeWithContext(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to unsubscribe")
		}
		return subscription.Client(), nil
	}

	// Create parallel stream
	out := make(chan []*types.Block)
	stream := cstream.NewStream(ctx, 8, out)

	// create slice of block height to fetch
	blockHeights := make([]int64, 0, to-from+1)
	for i := from; i <= to; i++ {
		blockHeights = append(blockHeights, i)
	}

	// Wait for stream to finish and close out channel
	go func() {
		defer close(out)
		_ = stream.Wait()
	}()

	// Fan-out blocks to subscription channel
	go func() {
		defer subscription.Unsubscribe()
		for {
			select {
			case data, ok := <-out:
				// stream closed
				if !ok {
					return
				}

				// empty blocks
				if len(data) == 0 {
					continue
				}

				// send blocks to subscription channel
				if err := subscription.Send(ctx, data); err != nil {
					logger.ErrorContext(ctx, "failed while dispatch block",
						slogx.Error(err),
						slogx.Int64("start", data[0].Header.Height),
						slogx.Int64("end", data[len(data)-1].Header.Height),
					)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Parallel fetch blocks from the ledger node until complete all block heights
	// or subscription is done.
	go func() {
		defer stream.Close()
		done := subscription.Done()
		chunks := lo.Chunk(blockHeights, 100)
		for _, chunk := range chunks {
			chunk := chunk
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			default:
				if len(chunk) == 0 {
					continue
				}
				stream.Go(func() []*types.Block {
					blocks := make([]*types.Block, 0, len(chunk))
					for _, height := range chunk {
						block, err := d.client.GetBlock(ctx, height)
						if err != nil {
							logger.ErrorContext(ctx, "failed to get block",
								slogx.Error(err),
								slogx.Int64("height", height),
							)
							if err := subscription.SendError(ctx, errors.Wrapf(err, "failed to get block: height: %d", height)); err != nil {
								logger.ErrorContext(ctx, "failed to send error", slogx.Error(err))
							}
							return nil
						}
						blocks = append(blocks, block)
					}
					return blocks
				})
			}
		}
	}()

	return subscription.Client(), nil
}

func (d *LedgerNodeDatasource) GetBlockHeader(ctx context.Context, height int64) (types.BlockHeader, error) {
	header, err := d.client.GetBlockHeader(ctx, height)
	if err != nil {
		return types.BlockHeader{}, errors.WithStack(err)
	}
	return header, nil
}

func (d *LedgerNodeDatasource) prepareRange(ctx context.Context, fromHeight, toHeight int64) (start, end int64, skip bool, err error) {
	start = fromHeight
	end = toHeight

	// get current ledger tip height
	latestBlockHeight, err := d.client.GetBlockCount(ctx)
	if err != nil {
		return -1, -1, false, errors.Wrap(err, "failed to get block count")
	}

	// set start to genesis block height
	if start < 0 {
		start = 0
	}

	// set end to current tip height if
	// - end is -1
	// - end is greater than current tip height
	if end < 0 || end > latestBlockHeight {
		end = latestBlockHeight
	}

	// if start is greater than end, skip this round
	if start > end {
		return -1, -1, true, nil
	}

	return start, end, false, nil
}
