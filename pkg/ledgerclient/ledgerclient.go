package ledgerclient

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	"github.com/tradeforge-xyz/marketplace-engine/common/errs"
	"github.com/tradeforge-xyz/marketplace-engine/core/types"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/bufferpool"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/httpclient"
)

// Client talks JSON-RPC to a host ledger node. It serves two concerns:
// block polling for the indexing worker, and asset/payment calls made
// by the settlement engine while applying instructions.
type Client struct {
	httpClient *httpclient.Client
	requestId  atomic.Uint64
}

func New(nodeURL string) (*Client, error) {
	httpClient, err := httpclient.New(nodeURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client")
	}
	return &Client{httpClient: httpClient}, nil
}

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	Id      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	buf := bufferpool.Get()
	defer buf.Release()
	if err := json.NewEncoder(buf).Encode(rpcRequest{
		Jsonrpc: "2.0",
		Id:      c.requestId.Add(1),
		Method:  method,
		Params:  params,
	}); err != nil {
		return errors.Wrap(err, "can't marshal rpc request")
	}

	resp, err := c.httpClient.Post(ctx, "/", httpclient.RequestOptions{Body: buf.Bytes()})
	if err != nil {
		return errors.Wrapf(err, "rpc request failed, method: %s", method)
	}
	if resp.StatusCode() != 200 {
		return errors.Wrapf(errs.SomethingWentWrong, "rpc request failed, method: %s, status code: %d", method, resp.StatusCode())
	}

	var rpcResp rpcResponse
	if err := resp.UnmarshalBody(&rpcResp); err != nil {
		return errors.Wrap(err, "can't unmarshal rpc response")
	}
	if rpcResp.Error != nil {
		return errors.Wrapf(errs.SomethingWentWrong, "rpc error, method: %s, code: %d, message: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return errors.Wrapf(err, "can't unmarshal rpc result, method: %s", method)
		}
	}
	return nil
}

// GetBlockCount returns the height of the ledger tip.
func (c *Client) GetBlockCount(ctx context.Context) (int64, error) {
	var height int64
	if err := c.call(ctx, "ledger_blockCount", nil, &height); err != nil {
		return 0, errors.WithStack(err)
	}
	return height, nil
}

type blockHeaderResult struct {
	Hash      common.Hash `json:"hash"`
	PrevBlock common.Hash `json:"prevBlock"`
	Height    int64       `json:"height"`
	Timestamp int64       `json:"timestamp"`
}

func (r blockHeaderResult) toBlockHeader() types.BlockHeader {
	return types.BlockHeader{
		Hash:      r.Hash,
		PrevBlock: r.PrevBlock,
		Height:    r.Height,
		Timestamp: time.Unix(r.Timestamp, 0).UTC(),
	}
}

// GetBlockHeader returns the block header at the given height.
func (c *Client) GetBlockHeader(ctx context.Context, height int64) (types.BlockHeader, error) {
	var result blockHeaderResult
	if err := c.call(ctx, "ledger_blockHeader", []any{height}, &result); err != nil {
		return types.BlockHeader{}, errors.WithStack(err)
	}
	return result.toBlockHeader(), nil
}

type transactionResult struct {
	Hash      common.Hash    `json:"hash"`
	Index     uint32         `json:"index"`
	Sender    common.Address `json:"sender"`
	Recipient common.Address `json:"recipient"`
	Value     string         `json:"value"`
	Data      []byte         `json:"data"`
}

type blockResult struct {
	blockHeaderResult
	Transactions []transactionResult `json:"transactions"`
}

// GetBlock returns the full block at the given height, with its
// ordered transactions.
func (c *Client) GetBlock(ctx context.Context, height int64) (*types.Block, error) {
	var result blockResult
	if err := c.call(ctx, "ledger_blockByHeight", []any{height}, &result); err != nil {
		return nil, errors.WithStack(err)
	}

	header := result.toBlockHeader()
	txs := make([]*types.Transaction, 0, len(result.Transactions))
	for _, tx := range result.Transactions {
		value, err := uint128.FromString(tx.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid tx value, tx: %s", tx.Hash)
		}
		txs = append(txs, &types.Transaction{
			Hash:        tx.Hash,
			BlockHash:   header.Hash,
			BlockHeight: header.Height,
			Index:       tx.Index,
			Sender:      tx.Sender,
			Recipient:   tx.Recipient,
			Value:       value,
			Data:        tx.Data,
		})
	}
	return &types.Block{
		Header:       header,
		Transactions: txs,
	}, nil
}
