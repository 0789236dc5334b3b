package irisfast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// HeaderProvider supplies per-request headers (X-User-*, Authorization).
type HeaderProvider func() map[string]string

const userAgent = "chessroom-bot/1 (+irisfast)"

// Client is the Iris REST client. Only idempotent calls are retried.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	timeout  time.Duration
	attempts int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

// WithRetry sets the attempt budget for idempotent calls.
func WithRetry(attempts int) Option {
	return func(c *Client) { c.attempts = attempts }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			Name:            userAgent,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxConnsPerHost: 16,
		},
		timeout:  10 * time.Second,
		attempts: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.attempts <= 0 {
		c.attempts = 1
	}
	return c
}

// call describes one JSON round trip.
type call struct {
	method     string
	path       string
	in         any
	out        any
	idempotent bool
}

func (c *Client) GetConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := c.do(ctx, call{method: fasthttp.MethodGet, path: "/config", out: &cfg, idempotent: true}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) Decrypt(ctx context.Context, data string) (string, error) {
	var resp DecryptResponse
	err := c.do(ctx, call{method: fasthttp.MethodPost, path: "/decrypt", in: DecryptRequest{Data: data}, out: &resp, idempotent: true})
	if err != nil {
		return "", err
	}
	return resp.Decrypted, nil
}

// SendMessage posts a text reply to room. A replay would duplicate the
// message in the chat, so it is sent once.
func (c *Client) SendMessage(ctx context.Context, room, message string) error {
	return c.reply(ctx, ReplyRequest{Type: "text", Room: room, Data: message})
}

// SendImage posts a base64 PNG to room. Sent once, like SendMessage.
func (c *Client) SendImage(ctx context.Context, room, imageBase64 string) error {
	return c.reply(ctx, ImageReplyRequest{Type: "image", Room: room, Data: imageBase64})
}

func (c *Client) reply(ctx context.Context, body any) error {
	if err := c.do(ctx, call{method: fasthttp.MethodPost, path: "/reply", in: body}); err != nil {
		return fmt.Errorf("iris reply: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, cl call) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(cl.method)
	req.SetRequestURI(c.baseURL + cl.path)
	req.Header.SetContentType("application/json")
	req.Header.SetUserAgent(userAgent)
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
	if cl.in != nil {
		payload, err := json.Marshal(cl.in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if cl.idempotent {
		attempts = c.attempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, backoffDuration(attempt-1)); err != nil {
				return lastErr
			}
		}

		if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			lastErr = &APIError{Status: status, Body: truncate(string(resp.Body()), 512)}
			if !shouldRetryStatus(status) {
				return lastErr
			}
			continue
		}

		if cl.out != nil {
			if err := json.Unmarshal(resp.Body(), cl.out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("iris: no attempt made")
	}
	return lastErr
}

// deadline is the earlier of the context deadline and the client timeout.
func (c *Client) deadline(ctx context.Context) time.Time {
	own := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(own) {
		return dl
	}
	return own
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoffDuration doubles from 100ms and caps at 3.2s.
func backoffDuration(attempt int) time.Duration {
	attempt = min(max(attempt, 1), 6)
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case fasthttp.StatusInternalServerError, fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable, fasthttp.StatusGatewayTimeout,
		fasthttp.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
