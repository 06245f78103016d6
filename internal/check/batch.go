package check

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/recon"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/tencent"
)

// Entry is one symbol to process in a batch run.
type Entry struct {
	Symbol   string
	Name     string
	Expected *decimal.Decimal
}

// RealtimeRow pairs a realtime snapshot with its reconciliation.
type RealtimeRow struct {
	Snapshot tencent.Snapshot
	Result   recon.Result
}

// RunBatch checks every entry sequentially with the configured pacing
// delay between requests. A symbol's failure is logged and the loop
// continues; the returned slice holds only symbols that produced a
// result.
func (c *Checker) RunBatch(ctx context.Context, entries []Entry, target string) []recon.Result {
	results := make([]recon.Result, 0, len(entries))
	for i, e := range entries {
		if i > 0 && !c.pause(ctx, time.Duration(c.cfg.Check.PaceMillis)*time.Millisecond) {
			return results
		}
		res, err := c.CheckOne(ctx, e.Symbol, e.Expected, target)
		if err != nil {
			log.Printf("check err symbol=%s: %v", e.Symbol, err)
			continue
		}
		results = append(results, res)
	}
	return results
}

// QuoteBatch fetches realtime snapshots for every entry and reconciles
// each open against the entry's expected price.
func (c *Checker) QuoteBatch(ctx context.Context, entries []Entry) []RealtimeRow {
	rows := make([]RealtimeRow, 0, len(entries))
	for i, e := range entries {
		if i > 0 && !c.pause(ctx, time.Duration(c.cfg.Realtime.PaceMillis)*time.Millisecond) {
			return rows
		}
		snap, err := c.QuoteOne(ctx, e.Symbol)
		if err != nil {
			log.Printf("realtime err symbol=%s: %v", e.Symbol, err)
			continue
		}
		q := snap.Quote()
		rows = append(rows, RealtimeRow{
			Snapshot: snap,
			Result:   recon.Reconcile(q.Symbol, &q, e.Expected, ""),
		})
	}
	return rows
}

func (c *Checker) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
