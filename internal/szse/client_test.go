package szse_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/szse"
)

func TestClientFetchHistorical(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/hist", r.URL.Path)
		gotQuery = r.URL.Query()
		gotHeader = r.Header.Clone()
		_, _ = w.Write([]byte(`[{"metadata":{"n":1}},{"zqjc":"Vanke","ks":"8.50"}]`))
	}))
	defer srv.Close()

	c := szse.NewClient(szse.WithEndpoints(srv.URL+"/cur", srv.URL+"/hist"))
	q, err := c.FetchHistorical(context.Background(), "000002", "2025-12-01")
	require.NoError(t, err)

	require.Equal(t, "JSON", gotQuery.Get("SHOWTYPE"))
	require.Equal(t, "1394_stock_snapshot", gotQuery.Get("CATALOGID"))
	require.Equal(t, "tab1", gotQuery.Get("TABKEY"))
	require.Equal(t, "000002", gotQuery.Get("txtDMorJC"))
	require.Equal(t, "2025-12-01", gotQuery.Get("txtDate"))
	require.Equal(t, "2025-12-01", gotQuery.Get("archiveDate"))
	require.Equal(t, "https://www.szse.cn/", gotHeader.Get("Referer"))
	require.True(t, strings.HasPrefix(gotHeader.Get("User-Agent"), "Mozilla/5.0"))

	require.Equal(t, "Vanke", q.Name)
	require.True(t, q.Open.Equal(decimal.RequireFromString("8.50")), "open = %s", q.Open)
	require.Equal(t, quote.HistoricalReport, q.Source)
}

func TestClientFetchCurrent(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cur", r.URL.Path)
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"data":{"name":"Ping An","open":"8.61"}}`))
	}))
	defer srv.Close()

	c := szse.NewClient(szse.WithEndpoints(srv.URL+"/cur", srv.URL+"/hist"))
	q, err := c.FetchCurrent(context.Background(), "000001")
	require.NoError(t, err)

	require.Equal(t, "1", gotQuery.Get("marketId"))
	require.Equal(t, "000001", gotQuery.Get("code"))
	require.Equal(t, "EN", gotQuery.Get("language"))

	require.Equal(t, "Ping An", q.Name)
	require.True(t, q.Open.Equal(decimal.RequireFromString("8.61")), "open = %s", q.Open)
	require.Equal(t, quote.CurrentReport, q.Source)
}

func TestClientFetchHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := szse.NewClient(szse.WithEndpoints(srv.URL+"/cur", srv.URL+"/hist"))
	_, err := c.FetchCurrent(context.Background(), "000001")
	require.ErrorIs(t, err, quote.ErrNetwork)
}

func TestClientFetchConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := szse.NewClient(szse.WithEndpoints(srv.URL+"/cur", srv.URL+"/hist"))
	_, err := c.FetchHistorical(context.Background(), "000001", "2025-12-01")
	require.ErrorIs(t, err, quote.ErrNetwork)
}
