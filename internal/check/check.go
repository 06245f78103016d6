// Package check drives one opening-price check end to end: session
// resolution, the single fetch the session calls for, and verdict
// reconciliation.
package check

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/config"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/market"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/recon"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/symbol"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/szse"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/tencent"
)

type Checker struct {
	cfg    config.Config
	feed   *tencent.Client
	report *szse.Client
	clock  market.Clock
}

type Option func(*Checker)

func WithFeedClient(fc *tencent.Client) Option {
	return func(c *Checker) { c.feed = fc }
}

func WithReportClient(rc *szse.Client) Option {
	return func(c *Checker) { c.report = rc }
}

func WithClock(clk market.Clock) Option {
	return func(c *Checker) { c.clock = clk }
}

func New(cfg config.Config, opts ...Option) *Checker {
	c := &Checker{
		cfg:    cfg,
		feed:   tencent.NewClient(),
		report: szse.NewClient(),
		clock:  market.ExchangeNow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckOne resolves the session for target and reconciles one symbol.
// Invalid dates fail before any network call; closed-market sessions
// produce a MarketClosed result without fetching. Exactly one GET is
// issued for tradeable sessions, with no retries.
func (c *Checker) CheckOne(ctx context.Context, sym string, expected *decimal.Decimal, target string) (recon.Result, error) {
	code, err := symbol.Pad(sym)
	if err != nil {
		return recon.Result{}, err
	}

	sess, err := market.Resolve(c.clock, target)
	if err != nil {
		return recon.Result{}, err
	}

	switch sess.Mode {
	case market.Invalid:
		return recon.Result{}, fmt.Errorf("%w: %s is in the future", quote.ErrInvalidDate, target)
	case market.ClosedWeekend, market.ClosedNow:
		return recon.Reconcile(code, nil, expected, sess.Reason), nil
	}

	var q quote.Quote
	switch sess.Mode {
	case market.Historical:
		q, err = c.report.FetchHistorical(ctx, code, sess.Date)
	default:
		q, err = c.report.FetchCurrent(ctx, code)
	}
	if err != nil {
		return recon.Result{}, err
	}
	return recon.Reconcile(code, &q, expected, ""), nil
}

// QuoteOne fetches one realtime snapshot. It resolves no session state
// and always attempts the fetch.
func (c *Checker) QuoteOne(ctx context.Context, sym string) (tencent.Snapshot, error) {
	code, err := symbol.Pad(sym)
	if err != nil {
		return tencent.Snapshot{}, err
	}
	return c.feed.Fetch(ctx, code)
}
