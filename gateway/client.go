// Package gateway is the client the public gateway uses to reach the subscription API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantonganh/newsletter"
	"github.com/quantonganh/newsletter/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Config locates the subscription API
type Config struct {
	Host     string
	Port     int
	Root     string
	Username string
	Token    string
	Timeout  time.Duration
}

// BaseURL returns <host>:<port>/<root>
func (c Config) BaseURL() string {
	host := strings.TrimRight(c.Host, "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	if c.Port > 0 {
		host = fmt.Sprintf("%s:%d", host, c.Port)
	}

	root := strings.Trim(c.Root, "/")
	if root == "" {
		return host
	}
	return host + "/" + root
}

// Client implements newsletter.SubscriptionAPI over HTTP
type Client struct {
	baseURL    string
	username   string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ newsletter.SubscriptionAPI = (*Client)(nil)

// NewClient returns new subscription API client
func NewClient(config Config, logger zerolog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:  config.BaseURL(),
		username: config.Username,
		token:    config.Token,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				// 302 means "already exists"
				return http.ErrUseLastResponse
			},
		},
		logger: logger.With().Str("component", "gateway").Logger(),
	}
}

// ResourceURL returns the URL of a single subscription
func (c *Client) ResourceURL(id int64) string {
	return c.baseURL + "/" + strconv.FormatInt(id, 10)
}

// List gets all subscriptions
func (c *Client) List(ctx context.Context) (*newsletter.APIResponse, error) {
	return c.do(ctx, "list", http.MethodGet, c.baseURL, nil)
}

// Get gets a subscription by id
func (c *Client) Get(ctx context.Context, id int64) (*newsletter.APIResponse, error) {
	return c.do(ctx, "get", http.MethodGet, c.ResourceURL(id), nil)
}

// Create creates a subscription
func (c *Client) Create(ctx context.Context, s *newsletter.Subscription) (*newsletter.APIResponse, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, unexpected("gateway.Create", err)
	}

	resp, err := c.do(ctx, "create", http.MethodPost, c.baseURL, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusFound {
		if _, ok := resp.Envelope.First(); !ok {
			return nil, unexpected("gateway.Create", fmt.Errorf("status %d without subscription", resp.StatusCode))
		}
	}

	return resp, nil
}

// Delete deletes a subscription by id
func (c *Client) Delete(ctx context.Context, id int64) (*newsletter.APIResponse, error) {
	return c.do(ctx, "delete", http.MethodDelete, c.ResourceURL(id), nil)
}

func (c *Client) do(ctx context.Context, op, method, url string, body []byte) (resp *newsletter.APIResponse, err error) {
	defer func() {
		metrics.GatewayUpstreamRequests.WithLabelValues(op, outcome(resp, err)).Inc()
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, unexpected("gateway."+op, err)
	}
	req.SetBasicAuth(c.username, c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if isConnectionError(err) {
			return nil, &newsletter.Error{
				Code:    newsletter.ErrConnection,
				Message: "Api cannot be reached",
				Op:      "gateway." + op,
				Err:     err,
			}
		}
		return nil, unexpected("gateway."+op, err)
	}
	defer httpResp.Body.Close()

	switch {
	case httpResp.StatusCode == http.StatusNotFound, httpResp.StatusCode == http.StatusUnauthorized:
		return &newsletter.APIResponse{StatusCode: httpResp.StatusCode}, nil
	case httpResp.StatusCode >= http.StatusBadRequest:
		c.logger.Warn().Str("op", op).Int("status", httpResp.StatusCode).Msg("subscription API failed")
		return &newsletter.APIResponse{StatusCode: http.StatusInternalServerError}, nil
	}

	var env newsletter.Envelope
	if err := json.NewDecoder(httpResp.Body).Decode(&env); err != nil {
		return nil, unexpected("gateway."+op, fmt.Errorf("decode response: %w", err))
	}

	return &newsletter.APIResponse{
		StatusCode: httpResp.StatusCode,
		Envelope:   env,
	}, nil
}

func unexpected(op string, err error) error {
	return &newsletter.Error{
		Code:    newsletter.ErrUnexpected,
		Message: "Api did not respond as expected",
		Op:      op,
		Err:     err,
	}
}

// isConnectionError reports whether the transport could not reach the host at all
func isConnectionError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func outcome(resp *newsletter.APIResponse, err error) string {
	if err != nil {
		return newsletter.ErrorCode(err)
	}
	return strconv.Itoa(resp.StatusCode)
}
