package szse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
)

const (
	defaultHistoricalURL = "https://www.szse.cn/api/report/ShowReport/data"
	defaultCurrentURL    = "https://www.szse.cn/api/market/ssjjhq/getTimeData"

	// The report API rejects requests without browser-looking headers.
	reportReferer   = "https://www.szse.cn/"
	reportUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	maxReportBody = 4 << 20
)

type Client struct {
	hc            *http.Client
	currentURL    string
	historicalURL string
}

type Option func(*Client)

// WithHTTPClient replaces the default tuned client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithEndpoints overrides both report endpoints, mainly for tests.
func WithEndpoints(current, historical string) Option {
	return func(c *Client) {
		c.currentURL = current
		c.historicalURL = historical
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		hc: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     30 * time.Second,
				// Some public endpoints occasionally misbehave with HTTP/2 and/or keep-alives.
				ForceAttemptHTTP2: false,
			},
			Timeout: 20 * time.Second,
		},
		currentURL:    defaultCurrentURL,
		historicalURL: defaultHistoricalURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCurrent retrieves the live time-data report for a padded code.
// One GET, no retries.
func (c *Client) FetchCurrent(ctx context.Context, code string) (quote.Quote, error) {
	q := url.Values{}
	q.Set("random", "0.123456")
	q.Set("marketId", "1")
	q.Set("code", code)
	q.Set("language", "EN")

	body, err := c.get(ctx, c.currentURL+"?"+q.Encode())
	if err != nil {
		return quote.Quote{}, err
	}
	return DecodeReport(body, code, CurrentReport)
}

// FetchHistorical retrieves the archived snapshot report for a padded
// code on a YYYY-MM-DD trade date. One GET, no retries.
func (c *Client) FetchHistorical(ctx context.Context, code, date string) (quote.Quote, error) {
	q := url.Values{}
	q.Set("SHOWTYPE", "JSON")
	q.Set("CATALOGID", "1394_stock_snapshot")
	q.Set("TABKEY", "tab1")
	q.Set("txtDMorJC", code)
	q.Set("txtDate", date)
	q.Set("archiveDate", date)
	q.Set("random", "0.123456")

	body, err := c.get(ctx, c.historicalURL+"?"+q.Encode())
	if err != nil {
		return quote.Quote{}, err
	}
	return DecodeReport(body, code, HistoricalReport)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", reportUserAgent)
	req.Header.Set("Referer", reportReferer)
	req.Header.Set("Accept", "application/json,text/plain,*/*")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", quote.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: http %d: %s", quote.ErrNetwork, resp.StatusCode, string(b))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", quote.ErrNetwork, err)
	}
	return body, nil
}
