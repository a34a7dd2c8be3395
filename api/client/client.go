package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/api/common/errcode"
	"github.com/nknorg/powledger/block"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 2
	maxResponseSize   = 64 * 1024 * 1024
)

// HTTPError is a response with a non 2xx status.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       errcode.ErrCode
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http status %d", e.StatusCode)
}

// Client talks to the REST API of one node. Transport errors and 5xx
// responses are retried with exponential backoff, other failures are not.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	backOff    func() backoff.BackOff
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithMaxRetries(maxRetries uint64) Option {
	return func(c *Client) { c.maxRetries = maxRetries }
}

// WithInitialInterval sets the first retry delay.
func WithInitialInterval(d time.Duration) Option {
	return func(c *Client) {
		c.backOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = d
			return b
		}
	}
}

// NewClient creates a client for address, either a URL or a bare host:port
// which means http.
func NewClient(address string, opts ...Option) *Client {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	c := &Client{
		baseURL:    strings.TrimRight(address, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		backOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Address() string {
	return c.baseURL
}

func (c *Client) call(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	op := func() error {
		var r io.Reader
		if reqBody != nil {
			r = bytes.NewReader(reqBody)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
		if err != nil {
			return backoff.Permanent(err)
		}
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			httpErr := &HTTPError{StatusCode: resp.StatusCode}
			errResp := &common.ErrorResponse{}
			if json.Unmarshal(respBody, errResp) == nil {
				httpErr.Message = errResp.Message
				httpErr.Code = errResp.Error
			}
			if resp.StatusCode >= 500 {
				return httpErr
			}
			return backoff.Permanent(httpErr)
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return backoff.Permanent(fmt.Errorf("decode response of %s: %w", path, err))
			}
		}
		return nil
	}

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(c.backOff(), c.maxRetries), ctx))
}

func (c *Client) GetChain(ctx context.Context) (*common.ChainResponse, error) {
	resp := &common.ChainResponse{}
	if err := c.call(ctx, http.MethodGet, "/chain", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetFullChain returns the chain of the node and checks that the reported
// length matches the number of blocks.
func (c *Client) GetFullChain(ctx context.Context) ([]*block.Block, error) {
	resp, err := c.GetChain(ctx)
	if err != nil {
		return nil, err
	}
	if uint64(len(resp.Chain)) != resp.Length {
		return nil, fmt.Errorf("node reported length %d with %d blocks", resp.Length, len(resp.Chain))
	}
	return resp.Chain, nil
}

func (c *Client) Mine(ctx context.Context) (*common.BlockResponse, error) {
	resp := &common.BlockResponse{}
	if err := c.call(ctx, http.MethodGet, "/mine", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) NewTransaction(ctx context.Context, sender, recipient string, amount float64) (*common.MessageResponse, error) {
	req := &common.TransactionRequest{Sender: &sender, Recipient: &recipient, Amount: &amount}
	resp := &common.MessageResponse{}
	if err := c.call(ctx, http.MethodPost, "/transactions/new", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Nodes(ctx context.Context) (*common.NodesResponse, error) {
	resp := &common.NodesResponse{}
	if err := c.call(ctx, http.MethodGet, "/nodes", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) RegisterNodes(ctx context.Context, nodes []string) (*common.RegisterNodesResponse, error) {
	if nodes == nil {
		nodes = []string{}
	}
	resp := &common.RegisterNodesResponse{}
	if err := c.call(ctx, http.MethodPost, "/nodes/register", &common.RegisterNodesRequest{Nodes: nodes}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Resolve(ctx context.Context) (*common.ResolveResponse, error) {
	resp := &common.ResolveResponse{}
	if err := c.call(ctx, http.MethodGet, "/nodes/resolve", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetWork(ctx context.Context) (*common.WorkResponse, error) {
	resp := &common.WorkResponse{}
	if err := c.call(ctx, http.MethodGet, "/getwork", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetDifficulty(ctx context.Context) (*common.DifficultyResponse, error) {
	resp := &common.DifficultyResponse{}
	if err := c.call(ctx, http.MethodGet, "/getwork/difficulty", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) SetDifficulty(ctx context.Context, diff int) (*common.MessageResponse, error) {
	resp := &common.MessageResponse{}
	if err := c.call(ctx, http.MethodPost, "/setdiff", &common.SetDifficultyRequest{Diff: &diff}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SubmitWork posts a proof for the block after index. ok is false when the
// node ignored it because its head has moved on.
func (c *Client) SubmitWork(ctx context.Context, index, proof uint64, address string) (*common.BlockResponse, bool, error) {
	req := &common.SubmitWorkRequest{Index: &index, Proof: &proof, Address: &address}
	resp := &common.BlockResponse{}
	if err := c.call(ctx, http.MethodPost, "/submitwork", req, resp); err != nil {
		return nil, false, err
	}
	if resp.Message == "" {
		return nil, false, nil
	}
	return resp, true, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/", nil, nil)
}
