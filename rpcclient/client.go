// Package rpcclient is a minimal JSON-RPC 2.0 HTTP client for the
// handful of eth_ methods the agent polls: chain ID discovery, the
// latest block (with full transactions), the legacy gas price, and a
// configurable pending-block method. It mirrors the wire types the
// teacher's rpc package defines server-side, from the client's vantage.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gasnetwork/agent/chaintypes"
	"github.com/gasnetwork/agent/log"
)

var rpcLog = log.Default().Module("rpcclient")

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Client is a JSON-RPC HTTP client bound to a single endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	nextID   int
}

// New creates a Client with the given request timeout.
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// call issues a single JSON-RPC request and unmarshals the raw result
// into out (which should be a pointer), per spec.md §6's JSON-RPC
// client contract: a non-2xx response or an RPC error object is a hard
// error, never silently swallowed.
func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	c.nextID++
	reqBody, err := json.Marshal(Request{JSONRPC: "2.0", Method: method, Params: params, ID: c.nextID})
	if err != nil {
		return fmt.Errorf("rpcclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("rpcclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("rpcclient: %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rpcclient: %s: unexpected status %d", method, resp.StatusCode)
	}

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("rpcclient: %s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpcclient: %s: %w", method, rpcResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("rpcclient: %s: unmarshal result: %w", method, err)
	}
	return nil
}

// ChainID calls eth_chainId.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var hexStr string
	if err := c.call(ctx, "eth_chainId", nil, &hexStr); err != nil {
		return 0, err
	}
	var id uint64
	if _, err := fmt.Sscanf(hexStr, "0x%x", &id); err != nil {
		return 0, fmt.Errorf("rpcclient: eth_chainId: malformed result %q", hexStr)
	}
	return id, nil
}

// LatestBlock calls eth_getBlockByNumber("latest", true).
func (c *Client) LatestBlock(ctx context.Context) (*chaintypes.Block, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "eth_getBlockByNumber", []interface{}{"latest", true}, &raw); err != nil {
		return nil, err
	}
	return chaintypes.ParseBlock(raw)
}

// GasPrice calls eth_gasPrice, returning the legacy suggested price.
func (c *Client) GasPrice(ctx context.Context) (string, error) {
	var hexStr string
	if err := c.call(ctx, "eth_gasPrice", nil, &hexStr); err != nil {
		return "", err
	}
	return hexStr, nil
}

// PendingTransactions calls a configurable pending-block method (for
// example "eth_pendingTransactions" or a provider-specific equivalent),
// forwarding whatever params the chain's pending_block_data_source
// configured, and expects a bare transaction array in return.
func (c *Client) PendingTransactions(ctx context.Context, method string, params []interface{}) ([]chaintypes.Transaction, error) {
	var raw json.RawMessage
	if err := c.call(ctx, method, params, &raw); err != nil {
		return nil, err
	}
	return chaintypes.ParsePendingTransactions(raw)
}
