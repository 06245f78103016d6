package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/check"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/recon"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/store/sqlite"
)

func renderResults(w io.Writer, results []recon.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tOPEN\tEXPECTED\tSTATUS")

	counts := make(map[recon.Verdict]int)
	for _, res := range results {
		counts[res.Verdict]++
		name, open := "-", "-"
		if res.Quote != nil {
			name = res.Quote.Name
			open = res.Quote.Open.StringFixed(2)
		}
		expected := "-"
		if res.ExpectedOpen != nil {
			expected = res.ExpectedOpen.StringFixed(2)
		}
		status := res.Verdict.String()
		if res.ClosedReason != "" {
			status += " (" + res.ClosedReason + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", res.Symbol, name, open, expected, status)
	}
	tw.Flush()

	fmt.Fprintf(w, "checked=%d matched=%d not_matched=%d no_expected=%d closed=%d\n",
		len(results), counts[recon.Matched], counts[recon.NotMatched],
		counts[recon.NoExpectedPrice], counts[recon.MarketClosed])
}

func renderRealtime(w io.Writer, rows []check.RealtimeRow) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE\tOPEN\tHIGH\tLOW\tCHG%\tSTATUS")
	for _, r := range rows {
		s := r.Snapshot
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Code, s.Name, s.Price.StringFixed(2), s.Open.StringFixed(2),
			s.High.StringFixed(2), s.Low.StringFixed(2),
			s.ChangePct.StringFixed(2), r.Result.Verdict)
	}
	tw.Flush()
}

func renderWatchlist(w io.Writer, rows []sqlite.WatchRow) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tEXPECTED_OPEN\tUPDATED_AT")
	for _, r := range rows {
		expected := r.ExpectedOpen
		if expected == "" {
			expected = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Symbol, r.Name, expected, r.UpdatedAt)
	}
	tw.Flush()
}
