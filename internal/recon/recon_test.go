package recon_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/recon"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReconcileWithinTolerance(t *testing.T) {
	t.Parallel()

	q := &quote.Quote{Symbol: "000001", Name: "PING AN BANK", Open: dec("8.50"), Source: quote.CurrentReport}
	exp := dec("8.505")

	res := recon.Reconcile("000001", q, &exp, "")

	require.Equal(t, recon.Matched, res.Verdict)
	require.NotNil(t, res.Quote)
	require.Empty(t, res.ClosedReason)
}

func TestReconcileToleranceBoundary(t *testing.T) {
	t.Parallel()

	q := &quote.Quote{Symbol: "000001", Open: dec("8.50"), Source: quote.HistoricalReport}

	// Exactly 0.01 apart still matches.
	exp := dec("8.51")
	res := recon.Reconcile("000001", q, &exp, "")
	require.Equal(t, recon.Matched, res.Verdict)

	exp = dec("8.52")
	res = recon.Reconcile("000001", q, &exp, "")
	require.Equal(t, recon.NotMatched, res.Verdict)
}

func TestReconcileNoExpectedPrice(t *testing.T) {
	t.Parallel()

	q := &quote.Quote{Symbol: "600519", Name: "KWEICHOW MOUTAI", Open: dec("1650.00"), Source: quote.CurrentReport}

	res := recon.Reconcile("600519", q, nil, "")

	require.Equal(t, recon.NoExpectedPrice, res.Verdict)
	require.Nil(t, res.ExpectedOpen)
	require.NotNil(t, res.Quote)
}

func TestReconcileMarketClosed(t *testing.T) {
	t.Parallel()

	exp := dec("34.11")

	res := recon.Reconcile("300928", nil, &exp, "Weekend - Market Closed")
	require.Equal(t, recon.MarketClosed, res.Verdict)
	require.Nil(t, res.Quote)
	require.Equal(t, "Weekend - Market Closed", res.ClosedReason)

	// A decoded quote is dropped once the market is known closed.
	q := &quote.Quote{Symbol: "300928", Open: dec("34.11"), Source: quote.RealtimeFeed}
	res = recon.Reconcile("300928", q, &exp, "Outside Trading Hours")
	require.Equal(t, recon.MarketClosed, res.Verdict)
	require.Nil(t, res.Quote)
}

func TestReconcileFailedFetch(t *testing.T) {
	t.Parallel()

	exp := dec("8.50")

	res := recon.Reconcile("000001", nil, &exp, "")
	require.Equal(t, recon.NotMatched, res.Verdict)
	require.Nil(t, res.Quote)
}
