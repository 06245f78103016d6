package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/check"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/config"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/export"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/market"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/memstore"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/runtimecfg"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/store/sqlite"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/symbol"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/szse"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/tencent"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "init-db":
		fs := flag.NewFlagSet("init-db", flag.ExitOnError)
		cfgPath := fs.String("config", "configs/config.yaml", "config path (YAML)")
		_ = fs.Parse(os.Args[2:])

		cfg, err := config.Load(*cfgPath)
		fatalIf(err)
		db, err := sqlite.Open(cfg.DBPath)
		fatalIf(err)
		defer db.Close()
		fatalIf(sqlite.Migrate(db))

		rows := make([]sqlite.WatchRow, 0, len(cfg.Watchlist))
		for _, w := range cfg.Watchlist {
			code, err := symbol.Pad(w.Symbol)
			if err != nil {
				log.Printf("skip watchlist entry %q: %v", w.Symbol, err)
				continue
			}
			rows = append(rows, sqlite.WatchRow{Symbol: code, Name: w.Name, ExpectedOpen: w.ExpectedOpen})
		}
		fatalIf(sqlite.SeedWatchlist(db, time.Now().UTC(), rows))
		log.Printf("db initialized: %s (watchlist=%d)", cfg.DBPath, len(rows))
	case "check":
		fs := flag.NewFlagSet("check", flag.ExitOnError)
		cfgPath := fs.String("config", "configs/config.yaml", "config path (YAML)")
		dateStr := fs.String("date", "", "target date (YYYY-MM-DD), default: live session")
		_ = fs.Parse(os.Args[2:])

		cfg, err := config.Load(*cfgPath)
		fatalIf(err)
		market.FailOpen = failOpen(cfg)
		db, err := sqlite.Open(cfg.DBPath)
		fatalIf(err)
		defer db.Close()
		fatalIf(sqlite.Migrate(db))

		entries, err := mergedEntries(cfg, db)
		fatalIf(err)
		if len(entries) == 0 {
			log.Fatal("watchlist is empty: add symbols to the config or with `aoc watch -add`")
		}

		ck := check.New(cfg)
		results := ck.RunBatch(context.Background(), entries, *dateStr)
		renderResults(os.Stdout, results)
		if n := len(entries) - len(results); n > 0 {
			log.Printf("symbols with errors: %d", n)
		}
	case "rt":
		fs := flag.NewFlagSet("rt", flag.ExitOnError)
		cfgPath := fs.String("config", "configs/config.yaml", "config path (YAML)")
		doExport := fs.Bool("export", false, "write a snapshot file after each refresh")
		_ = fs.Parse(os.Args[2:])

		cfg, err := config.Load(*cfgPath)
		fatalIf(err)
		market.FailOpen = failOpen(cfg)
		db, err := sqlite.Open(cfg.DBPath)
		fatalIf(err)
		defer db.Close()
		fatalIf(sqlite.Migrate(db))

		var saver export.Saver
		if *doExport {
			saver = export.NewSaver(cfg.Export.Format)
			if saver == nil {
				log.Fatalf("unknown export format: %s", cfg.Export.Format)
			}
			fatalIf(os.MkdirAll(cfg.Export.Dir, 0o755))
		}

		ck := check.New(cfg)
		fatalIf(runRealtime(context.Background(), cfg, db, ck, saver))
	case "watch":
		fs := flag.NewFlagSet("watch", flag.ExitOnError)
		cfgPath := fs.String("config", "configs/config.yaml", "config path (YAML)")
		add := fs.String("add", "", "add or update an entry: SYMBOL[=EXPECTED_OPEN]")
		name := fs.String("name", "", "display name for -add")
		rm := fs.String("rm", "", "remove a stored symbol")
		list := fs.Bool("list", false, "print stored entries")
		_ = fs.Parse(os.Args[2:])

		cfg, err := config.Load(*cfgPath)
		fatalIf(err)
		db, err := sqlite.Open(cfg.DBPath)
		fatalIf(err)
		defer db.Close()
		fatalIf(sqlite.Migrate(db))

		did := false
		if *add != "" {
			did = true
			row, err := parseWatchArg(*add, *name)
			fatalIf(err)
			fatalIf(sqlite.UpsertWatch(db, time.Now().UTC(), row))
			log.Printf("watch upserted: %s expected_open=%q", row.Symbol, row.ExpectedOpen)
		}
		if *rm != "" {
			did = true
			code, err := symbol.Pad(*rm)
			fatalIf(err)
			removed, err := sqlite.DeleteWatch(db, code)
			fatalIf(err)
			if removed {
				log.Printf("watch removed: %s", code)
			} else {
				log.Printf("watch not found: %s", code)
			}
		}
		if *list {
			did = true
			rows, err := sqlite.ListWatch(db)
			fatalIf(err)
			renderWatchlist(os.Stdout, rows)
		}
		if !did {
			fs.Usage()
			os.Exit(2)
		}
	case "serve":
		fs := flag.NewFlagSet("serve", flag.ExitOnError)
		cfgPath := fs.String("config", "configs/config.yaml", "config path (YAML)")
		addr := fs.String("addr", "", "listen address, default from config http.addr")
		_ = fs.Parse(os.Args[2:])

		mgr, err := runtimecfg.Load(*cfgPath)
		fatalIf(err)
		cfg := mgr.Get()
		market.FailOpen = failOpen(cfg)
		db, err := sqlite.Open(cfg.DBPath)
		fatalIf(err)
		defer db.Close()
		fatalIf(sqlite.Migrate(db))

		feed := tencent.NewClient()
		report := szse.NewClient()
		mem := memstore.New()
		go runRefreshLoop(context.Background(), mgr, db, feed, report, mem)

		ck := check.New(cfg, check.WithFeedClient(feed), check.WithReportClient(report))
		h := newWebServer(mgr, db, mem, ck)
		listen := cfg.HTTP.Addr
		if *addr != "" {
			listen = *addr
		}
		log.Printf("serving on %s", listen)
		fatalIf(http.ListenAndServe(listen, h))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  aoc init-db -config configs/config.yaml")
	fmt.Fprintln(os.Stderr, "  aoc check   -config configs/config.yaml [-date YYYY-MM-DD]")
	fmt.Fprintln(os.Stderr, "  aoc rt      -config configs/config.yaml [-export]")
	fmt.Fprintln(os.Stderr, "  aoc watch   -config configs/config.yaml [-add SYMBOL[=PRICE] [-name NAME]] [-rm SYMBOL] [-list]")
	fmt.Fprintln(os.Stderr, "  aoc serve   -config configs/config.yaml [-addr :8090]")
}

func fatalIf(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func failOpen(cfg config.Config) bool {
	if cfg.Check.FailOpen != nil {
		return *cfg.Check.FailOpen
	}
	return true
}

// mergedEntries joins the YAML watchlist with the operator-managed
// SQLite rows. SQLite wins on symbol collisions.
func mergedEntries(cfg config.Config, db *sql.DB) ([]check.Entry, error) {
	bySym := make(map[string]check.Entry)
	var order []string
	put := func(sym, name string, expected *decimal.Decimal) {
		code, err := symbol.Pad(sym)
		if err != nil {
			log.Printf("skip watch entry %q: %v", sym, err)
			return
		}
		if _, ok := bySym[code]; !ok {
			order = append(order, code)
		}
		bySym[code] = check.Entry{Symbol: code, Name: name, Expected: expected}
	}

	for _, w := range cfg.Watchlist {
		put(w.Symbol, w.Name, w.Expected())
	}
	rows, err := sqlite.ListWatch(db)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		put(r.Symbol, r.Name, r.Expected())
	}

	out := make([]check.Entry, 0, len(order))
	for _, code := range order {
		out = append(out, bySym[code])
	}
	return out, nil
}

func parseWatchArg(arg, name string) (sqlite.WatchRow, error) {
	symPart, pricePart, hasPrice := strings.Cut(arg, "=")
	code, err := symbol.Pad(strings.TrimSpace(symPart))
	if err != nil {
		return sqlite.WatchRow{}, err
	}
	row := sqlite.WatchRow{Symbol: code, Name: name}
	if hasPrice {
		d, err := decimal.NewFromString(strings.TrimSpace(pricePart))
		if err != nil {
			return sqlite.WatchRow{}, fmt.Errorf("expected open %q is not a number", pricePart)
		}
		row.ExpectedOpen = d.String()
	}
	return row, nil
}
