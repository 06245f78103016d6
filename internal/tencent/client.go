package tencent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/symbol"
)

const feedBase = "http://qt.gtimg.cn/q="

type Client struct {
	hc   *http.Client
	base string
}

type Option func(*Client)

// WithBaseURL overrides the feed URL prefix, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.base = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		hc: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     30 * time.Second,
				// The feed endpoint misbehaves with HTTP/2 keep-alives.
				ForceAttemptHTTP2: false,
			},
			Timeout: 20 * time.Second,
		},
		base: feedBase,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch retrieves and decodes one realtime snapshot for a 6-digit code.
// One GET, single attempt, no session gating: the feed itself answers
// whether data exists.
func (c *Client) Fetch(ctx context.Context, code string) (Snapshot, error) {
	u := c.base + symbol.ForRealtimeFeed(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; AOCChecker/1.0)")

	resp, err := c.hc.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", quote.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("%w: http %d", quote.ErrNetwork, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: read body: %v", quote.ErrNetwork, err)
	}

	body, err := decodeGBK(b)
	if err != nil {
		// Garbled names beat a failed fetch; the numeric fields are ASCII.
		body = string(b)
	}
	return Decode(body, code, time.Now())
}

// decodeGBK transcodes the feed's GBK bytes to UTF-8.
func decodeGBK(b []byte) (string, error) {
	out, err := simplifiedchinese.GBK.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
