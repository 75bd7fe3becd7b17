// Package supabase 托管后端的 REST 客户端：PostgREST、GoTrue、Storage 与 Realtime。
package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/tidwall/gjson"
)

type Config struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client 无状态 REST 客户端，用户令牌通过 SetAccessToken 注入
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu          sync.RWMutex
	accessToken string
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase url is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("supabase anon key is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }
func (c *Client) APIKey() string  { return c.apiKey }

// SetAccessToken 登录后替换 Authorization，空串恢复为匿名 key
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.accessToken != "" {
		return c.accessToken
	}
	return c.apiKey
}

// Response 原始响应
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

func (r *Response) Result() gjson.Result {
	return gjson.ParseBytes(r.Body)
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errs.Unknown("build request", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Network("backend is unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Network("read backend response", err)
	}
	out := &Response{StatusCode: resp.StatusCode, Body: body, Headers: resp.Header}
	if resp.StatusCode >= 400 {
		return out, parseError(resp.StatusCode, body)
	}
	return out, nil
}

// parseError 把后端错误体按状态码分类
func parseError(status int, body []byte) error {
	res := gjson.ParseBytes(body)
	msg := firstNonEmpty(
		res.Get("msg").String(),
		res.Get("message").String(),
		res.Get("error_description").String(),
		res.Get("error").String(),
	)
	if msg == "" {
		msg = http.StatusText(status)
	}
	cause := fmt.Errorf("supabase: status %d: %s", status, msg)
	code := res.Get("error_code").String()

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errs.Auth(msg, cause)
	case code == "invalid_credentials" || res.Get("error").String() == "invalid_grant":
		return errs.Auth(msg, cause)
	case status == http.StatusNotFound:
		return &errs.Error{Kind: errs.KindNotFound, Msg: msg, Err: cause}
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		return errs.Network(msg, cause)
	case status >= 400 && status < 500:
		return &errs.Error{Kind: errs.KindValidation, Msg: msg, Err: cause}
	}
	return errs.Unknown(msg, cause)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsTimeout 传输层超时
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
