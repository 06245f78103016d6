package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/check"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/config"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/memstore"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/runtimecfg"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/store/sqlite"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/symbol"
)

func newWebServer(mgr *runtimecfg.Manager, db *sql.DB, mem *memstore.Store, ck *check.Checker) http.Handler {
	if mem == nil {
		mem = memstore.New()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	// Latest refresh-loop output; empty until the first in-session cycle.
	mux.HandleFunc("/api/latest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, mem.SnapshotLatest())
	})

	// One-shot feed snapshot: GET /api/quote?symbol=000001
	mux.HandleFunc("/api/quote", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sym := r.URL.Query().Get("symbol")
		if sym == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "symbol is required"})
			return
		}
		snap, err := ck.QuoteOne(r.Context(), sym)
		if err != nil {
			writeJSON(w, statusFor(err), map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	// One-shot reconciliation: GET /api/check?symbol=000001&date=2026-02-02
	// The expected open comes from the stored watchlist unless the
	// expected query param overrides it.
	mux.HandleFunc("/api/check", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sym := r.URL.Query().Get("symbol")
		if sym == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "symbol is required"})
			return
		}
		code, err := symbol.Pad(sym)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}

		var expected *decimal.Decimal
		if s := r.URL.Query().Get("expected"); s != "" {
			d, err := decimal.NewFromString(s)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "expected is not a number"})
				return
			}
			expected = &d
		} else if row, ok, err := sqlite.GetWatch(db, code); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		} else if ok {
			expected = row.Expected()
		}

		res, err := ck.CheckOne(r.Context(), code, expected, r.URL.Query().Get("date"))
		if err != nil {
			writeJSON(w, statusFor(err), map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("/api/watchlist", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			rows, err := sqlite.ListWatch(db)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, rows)
		case http.MethodPost:
			body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			var in sqlite.WatchRow
			if err := json.Unmarshal(body, &in); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			code, err := symbol.Pad(in.Symbol)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			if in.ExpectedOpen != "" {
				if _, err := decimal.NewFromString(in.ExpectedOpen); err != nil {
					writeJSON(w, http.StatusBadRequest, map[string]any{"error": "expected_open is not a number"})
					return
				}
			}
			in.Symbol = code
			if err := sqlite.UpsertWatch(db, time.Now().UTC(), in); err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
				return
			}
			row, _, err := sqlite.GetWatch(db, code)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, row)
		case http.MethodDelete:
			sym := r.URL.Query().Get("symbol")
			if sym == "" {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "symbol is required"})
				return
			}
			code, err := symbol.Pad(sym)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			removed, err := sqlite.DeleteWatch(db, code)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"symbol": code, "removed": removed})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, toConfigView(mgr.Get()))
		case http.MethodPost:
			body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			var p runtimecfg.Patch
			if err := json.Unmarshal(body, &p); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			cfg, err := mgr.Update(p)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, toConfigView(cfg))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	return logRequests(mux)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, quote.ErrNetwork), errors.Is(err, quote.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, quote.ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

type configView struct {
	DBPath    string              `json:"db_path"`
	Watchlist []config.WatchEntry `json:"watchlist"`

	Check struct {
		PaceMillis int  `json:"pace_ms"`
		FailOpen   bool `json:"fail_open"`
	} `json:"check"`

	Realtime struct {
		IntervalSeconds        int  `json:"interval_seconds"`
		PaceMillis             int  `json:"pace_ms"`
		OnlyDuringTradingHours bool `json:"only_during_trading_hours"`
	} `json:"realtime"`

	Export struct {
		Format string `json:"format"`
		Dir    string `json:"dir"`
	} `json:"export"`

	HTTPAddr string `json:"http_addr"`
}

func toConfigView(cfg config.Config) configView {
	var v configView
	v.DBPath = cfg.DBPath
	v.Watchlist = cfg.Watchlist
	v.Check.PaceMillis = cfg.Check.PaceMillis
	v.Check.FailOpen = failOpen(cfg)
	v.Realtime.IntervalSeconds = cfg.Realtime.IntervalSeconds
	v.Realtime.PaceMillis = cfg.Realtime.PaceMillis
	if cfg.Realtime.OnlyDuringHours != nil {
		v.Realtime.OnlyDuringTradingHours = *cfg.Realtime.OnlyDuringHours
	} else {
		v.Realtime.OnlyDuringTradingHours = true
	}
	v.Export.Format = cfg.Export.Format
	v.Export.Dir = cfg.Export.Dir
	v.HTTPAddr = cfg.HTTP.Addr
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
