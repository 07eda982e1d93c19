package rpcclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	"multigofer/internal/jsonrpc"
	"multigofer/internal/multicall"
)

// Config for creating a Client.
type Config struct {
	URL            string
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// Client performs eth_call requests against one JSON-RPC endpoint, over
// HTTP or WebSocket depending on the URL scheme. It implements
// multicall.Caller.
type Client struct {
	url        string
	httpClient *http.Client
	ws         *wsConn
	logger     zerolog.Logger
	reqID      int64
}

// New creates a Client for the given endpoint. ws:// and wss:// endpoints
// are dialed immediately so a bad endpoint fails at startup.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}

	c := &Client{
		url:    cfg.URL,
		logger: cfg.Logger.With().Str("component", "rpcclient").Logger(),
	}

	switch u.Scheme {
	case "http", "https":
		transport := &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  true,
		}
		c.httpClient = &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		}
	case "ws", "wss":
		ws, err := dialWS(cfg.URL, c.logger)
		if err != nil {
			return nil, err
		}
		c.ws = ws
	default:
		return nil, fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}

	return c, nil
}

// Close releases the underlying connection, if any.
func (c *Client) Close() {
	if c.ws != nil {
		c.ws.Close()
	}
}

// callObject is the first eth_call parameter.
type callObject struct {
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Input hexutil.Bytes   `json:"input,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
}

// CallContract performs one eth_call and returns the raw result bytes.
// JSON-RPC level errors, including contract reverts, come back as errors.
func (c *Client) CallContract(ctx context.Context, msg multicall.Msg, block multicall.BlockRef, overrides multicall.StateOverride) ([]byte, error) {
	obj := callObject{To: &msg.To}
	switch msg.InputKind {
	case multicall.InputKindInput:
		obj.Input = msg.Data
	case multicall.InputKindBoth:
		obj.Data = msg.Data
		obj.Input = msg.Data
	default:
		obj.Data = msg.Data
	}
	if msg.Value != nil && msg.Value.Sign() != 0 {
		obj.Value = (*hexutil.Big)(msg.Value)
	}

	params := []interface{}{obj, block}
	if len(overrides) > 0 {
		params = append(params, overrides)
	}

	req, err := jsonrpc.NewRequest("eth_call", params, jsonrpc.NewIDInt(atomic.AddInt64(&c.reqID, 1)))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.HasError() {
		return nil, fmt.Errorf("eth_call failed: %w", resp.Error)
	}

	var out hexutil.Bytes
	if err := resp.GetResultAs(&out); err != nil {
		return nil, fmt.Errorf("failed to parse eth_call result: %w", err)
	}
	return out, nil
}

func (c *Client) execute(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	if c.ws != nil {
		return c.ws.SendRequest(ctx, req)
	}
	return c.executeHTTP(ctx, req)
}

// executeHTTP sends one JSON-RPC request via HTTP POST.
func (c *Client) executeHTTP(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	reqBytes, err := req.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	rpcResp, err := jsonrpc.ParseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return rpcResp, nil
}
