package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/check"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/config"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/memstore"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/runtimecfg"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/store/sqlite"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/szse"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/tencent"
)

func feedBody(code, name, open string) string {
	fields := make([]string, 33)
	for i := range fields {
		fields[i] = ""
	}
	fields[0] = "51"
	fields[1] = name
	fields[2] = code
	fields[3] = "11.52"
	fields[4] = "11.38"
	fields[5] = open
	return "v_x=\"" + strings.Join(fields, "~") + "\";"
}

// webFixture serves the API against fake upstreams and a scratch DB.
// The clock is pinned to a Monday inside the morning session.
func webFixture(t *testing.T) (http.Handler, *sql.DB, *memstore.Store) {
	t.Helper()

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		formatted := strings.TrimPrefix(r.URL.Path, "/q=")
		_, _ = w.Write([]byte(feedBody(formatted[2:], "PING AN", "11.40")))
	}))
	t.Cleanup(feedSrv.Close)

	reportSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cur":
			_, _ = w.Write([]byte(`{"data":{"name":"PING AN","open":"11.40"}}`))
		case "/hist":
			_, _ = w.Write([]byte(`[{"metadata":{}},{"zqjc":"PING AN","ks":"11.40"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(reportSrv.Close)

	var cfg config.Config
	cfg.DBPath = filepath.Join(t.TempDir(), "watch.db")
	require.NoError(t, config.NormalizeAndValidate(&cfg))

	db, err := sqlite.Open(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(db))

	clk := func() (time.Time, error) {
		return time.Date(2026, 2, 2, 10, 0, 0, 0, time.FixedZone("CST", 8*3600)), nil
	}
	ck := check.New(cfg,
		check.WithFeedClient(tencent.NewClient(tencent.WithBaseURL(feedSrv.URL+"/q="))),
		check.WithReportClient(szse.NewClient(szse.WithEndpoints(reportSrv.URL+"/cur", reportSrv.URL+"/hist"))),
		check.WithClock(clk))

	mem := memstore.New()
	return newWebServer(runtimecfg.NewStatic(cfg), db, mem, ck), db, mem
}

func TestWebHealth(t *testing.T) {
	h, _, _ := webFixture(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok": true}`, rec.Body.String())
}

func TestWebQuote(t *testing.T) {
	h, _, _ := webFixture(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quote?symbol=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var snap struct {
		Code string `json:"code"`
		Name string `json:"name"`
		Open string `json:"open"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Equal(t, "000001", snap.Code)
	require.Equal(t, "PING AN", snap.Name)
	require.Equal(t, "11.40", snap.Open)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quote", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebCheck(t *testing.T) {
	h, db, _ := webFixture(t)
	require.NoError(t, sqlite.UpsertWatch(db, time.Now().UTC(),
		sqlite.WatchRow{Symbol: "000001", ExpectedOpen: "11.40"}))

	var res struct {
		Symbol  string `json:"symbol"`
		Verdict string `json:"verdict"`
	}

	// Stored expected against the live session.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/check?symbol=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "000001", res.Symbol)
	require.Equal(t, "MATCHED", res.Verdict)

	// Query override beats the stored price.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/check?symbol=1&expected=99.99", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "NOT MATCHED", res.Verdict)

	// A past weekday routes through the historical report.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/check?symbol=1&date=2026-01-30", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, "MATCHED", res.Verdict)

	// Future dates are rejected.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/check?symbol=1&date=2026-02-03", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/check", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebWatchlist(t *testing.T) {
	h, _, _ := webFixture(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/watchlist",
		strings.NewReader(`{"symbol": "300928", "name": "华夏万卷", "expected_open": "24.80"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var row sqlite.WatchRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	require.Equal(t, "300928", row.Symbol)
	require.Equal(t, "24.80", row.ExpectedOpen)
	require.NotEmpty(t, row.UpdatedAt)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/watchlist", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []sqlite.WatchRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/watchlist?symbol=300928", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"removed": true`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/watchlist?symbol=300928", nil))
	require.Contains(t, rec.Body.String(), `"removed": false`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/watchlist",
		strings.NewReader(`{"symbol": "1", "expected_open": "abc"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebLatest(t *testing.T) {
	h, _, mem := webFixture(t)

	now := time.Now().UTC()
	at := now
	mem.SetQuotes(now, []quote.Quote{{
		Symbol:     "000001",
		Name:       "PING AN",
		Open:       decimal.RequireFromString("11.40"),
		Source:     quote.RealtimeFeed,
		CapturedAt: &at,
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var snap struct {
		Quotes []struct {
			Symbol string `json:"symbol"`
			Source string `json:"source"`
		} `json:"quotes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Quotes, 1)
	require.Equal(t, "000001", snap.Quotes[0].Symbol)
	require.Equal(t, "realtime", snap.Quotes[0].Source)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/latest", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWebConfig(t *testing.T) {
	h, _, _ := webFixture(t)

	var view struct {
		Check struct {
			PaceMillis int  `json:"pace_ms"`
			FailOpen   bool `json:"fail_open"`
		} `json:"check"`
		Realtime struct {
			IntervalSeconds int `json:"interval_seconds"`
		} `json:"realtime"`
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, 500, view.Check.PaceMillis)
	require.True(t, view.Check.FailOpen)
	require.Equal(t, 10, view.Realtime.IntervalSeconds)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config",
		strings.NewReader(`{"realtime_interval_seconds": 30}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, 30, view.Realtime.IntervalSeconds)

	// Invalid patches leave the config untouched.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config",
		strings.NewReader(`{"realtime_interval_seconds": -5}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, 30, view.Realtime.IntervalSeconds)
}
