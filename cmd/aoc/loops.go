package main

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/check"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/config"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/export"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/market"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/memstore"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/recon"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/szse"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/tencent"
)

type cfgProvider interface {
	Get() config.Config
}

// runRealtime drives the rt subcommand: refresh the watchlist on a
// fixed interval, render to stdout, optionally write a snapshot file.
func runRealtime(ctx context.Context, cfg config.Config, db *sql.DB, ck *check.Checker, saver export.Saver) error {
	ticker := time.NewTicker(time.Duration(cfg.Realtime.IntervalSeconds) * time.Second)
	defer ticker.Stop()

	log.Printf("realtime started: interval=%ds watchlist=%d export=%v",
		cfg.Realtime.IntervalSeconds, len(cfg.Watchlist), saver != nil)

	for {
		if err := refreshOnce(ctx, cfg, db, ck, saver, os.Stdout); err != nil {
			log.Printf("realtime tick error: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func refreshOnce(ctx context.Context, cfg config.Config, db *sql.DB, ck *check.Checker, saver export.Saver, out io.Writer) error {
	if skipOutsideHours(cfg) {
		return nil
	}

	entries, err := mergedEntries(cfg, db)
	if err != nil {
		return err
	}
	rows := ck.QuoteBatch(ctx, entries)
	renderRealtime(out, rows)

	if saver != nil && len(rows) > 0 {
		recs := make([]export.Row, 0, len(rows))
		for _, r := range rows {
			recs = append(recs, exportRow(r))
		}
		path := filepath.Join(cfg.Export.Dir, export.Filename(time.Now(), saver.Extension()))
		if err := saver.Save(recs, path); err != nil {
			log.Printf("export err: %v", err)
		} else {
			log.Printf("export ok: %s (%d rows)", path, len(recs))
		}
	}
	return nil
}

func skipOutsideHours(cfg config.Config) bool {
	if cfg.Realtime.OnlyDuringHours != nil && !*cfg.Realtime.OnlyDuringHours {
		return false
	}
	now, err := market.ExchangeNow()
	if err != nil {
		return !market.FailOpen
	}
	return !market.InSession(now)
}

// runRefreshLoop feeds the in-memory store behind the web API. Config
// is re-read every cycle so watchlist and interval edits apply live.
func runRefreshLoop(ctx context.Context, cfgp cfgProvider, db *sql.DB, feed *tencent.Client, report *szse.Client, mem *memstore.Store) {
	var lastInterval int
	for {
		cfg := cfgp.Get()
		interval := cfg.Realtime.IntervalSeconds
		if interval <= 0 {
			interval = 10
		}
		if interval != lastInterval {
			log.Printf("refresh loop: interval=%ds", interval)
			lastInterval = interval
		}

		if !skipOutsideHours(cfg) {
			if entries, err := mergedEntries(cfg, db); err != nil {
				log.Printf("refresh err: %v", err)
			} else {
				ck := check.New(cfg, check.WithFeedClient(feed), check.WithReportClient(report))
				rows := ck.QuoteBatch(ctx, entries)
				quotes := make([]quote.Quote, 0, len(rows))
				results := make([]recon.Result, 0, len(rows))
				for _, r := range rows {
					quotes = append(quotes, r.Snapshot.Quote())
					results = append(results, r.Result)
				}
				now := time.Now().UTC()
				mem.SetQuotes(now, quotes)
				mem.SetCheck(now, results)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(interval) * time.Second):
		}
	}
}

func exportRow(r check.RealtimeRow) export.Row {
	s := r.Snapshot
	row := export.Row{
		Symbol:       s.Code,
		Name:         s.Name,
		CurrentPrice: s.Price.InexactFloat64(),
		Open:         s.Open.InexactFloat64(),
		MatchStatus:  r.Result.Verdict.String(),
		High:         s.High.InexactFloat64(),
		Low:          s.Low.InexactFloat64(),
		PrevClose:    s.PrevClose.InexactFloat64(),
		Change:       s.Change.InexactFloat64(),
		ChangePct:    s.ChangePct.InexactFloat64(),
		VolumeLots:   s.VolumeLots,
		Turnover:     s.Turnover.InexactFloat64(),
		LastUpdate:   s.FeedTime,
	}
	if r.Result.ExpectedOpen != nil {
		row.ExpectedOpen = r.Result.ExpectedOpen.InexactFloat64()
	}
	return row
}
