package tencent

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
)

// noMatchMarker appears in the body when the feed has no record for
// the requested code.
const noMatchMarker = "pv_none_match"

// Snapshot is one positional record of the realtime feed. Field
// meaning is fixed by index; consumers beyond Quote (table render,
// file export) rely on the same positional contract.
type Snapshot struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	PrevClose  decimal.Decimal `json:"prev_close"`
	Open       decimal.Decimal `json:"open"`
	VolumeLots int64           `json:"volume_lots"`
	Bid1       decimal.Decimal `json:"bid1"`
	Bid1Lots   int64           `json:"bid1_lots"`
	Ask1       decimal.Decimal `json:"ask1"`
	Ask1Lots   int64           `json:"ask1_lots"`
	FeedTime   string          `json:"feed_time"`
	Change     decimal.Decimal `json:"change"`
	ChangePct  decimal.Decimal `json:"change_pct"`
	High       decimal.Decimal `json:"high"`
	Low        decimal.Decimal `json:"low"`
	Turnover   decimal.Decimal `json:"turnover"`
	CapturedAt time.Time       `json:"captured_at"`
}

// Quote reduces the snapshot to the opening-price model.
func (s Snapshot) Quote() quote.Quote {
	at := s.CapturedAt
	return quote.Quote{
		Symbol:     s.Code,
		Name:       s.Name,
		Open:       s.Open,
		Source:     quote.RealtimeFeed,
		CapturedAt: &at,
	}
}

// Decode parses one feed response body for code. The record is strictly
// positional: fewer than 30 tilde-separated fields is never partially
// usable. Empty fields decode to zero values; only an unparsable open
// is fatal. The body must already be UTF-8 (the client transcodes the
// feed's GBK bytes).
func Decode(body, code string, now time.Time) (Snapshot, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || strings.Contains(trimmed, noMatchMarker) {
		return Snapshot{}, fmt.Errorf("%w: feed has no record for %s", quote.ErrNoData, code)
	}

	payload, ok := firstQuoted(trimmed)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: no quoted payload segment", quote.ErrMalformedResponse)
	}
	fields := strings.Split(payload, "~")
	if len(fields) < 30 {
		return Snapshot{}, fmt.Errorf("%w: %d fields, need 30", quote.ErrMalformedResponse, len(fields))
	}
	at := func(i int) string {
		if i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	open, err := strictDecimal(at(5))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: open %q", quote.ErrMalformedResponse, at(5))
	}

	snap := Snapshot{
		Name:       at(1),
		Code:       at(2),
		Price:      looseDecimal(at(3)),
		PrevClose:  looseDecimal(at(4)),
		Open:       open,
		VolumeLots: looseInt(at(6)),
		Bid1:       looseDecimal(at(9)),
		Bid1Lots:   looseInt(at(10)),
		Ask1:       looseDecimal(at(19)),
		Ask1Lots:   looseInt(at(20)),
		FeedTime:   at(30),
		Change:     looseDecimal(at(31)),
		ChangePct:  looseDecimal(at(32)),
		High:       looseDecimal(at(33)),
		Low:        looseDecimal(at(34)),
		Turnover:   looseDecimal(at(37)),
		CapturedAt: now,
	}
	if snap.Code == "" {
		snap.Code = code
	}
	return snap, nil
}

// firstQuoted returns the first double-quoted segment of s.
func firstQuoted(s string) (string, bool) {
	i := strings.IndexByte(s, '"')
	if i < 0 {
		return "", false
	}
	j := strings.IndexByte(s[i+1:], '"')
	if j < 0 {
		return "", false
	}
	return s[i+1 : i+1+j], true
}

func strictDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(s)
}

func looseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Decimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}
	}
	return d
}

func looseInt(s string) int64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.IntPart()
}
