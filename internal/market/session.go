package market

import (
	"fmt"
	"time"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
)

// FailOpen controls what a live-session check reports when the exchange
// clock cannot be read. The default keeps the market "open" so a check
// still goes out; set to false to treat an unreadable clock as closed.
var FailOpen = true

// Clock reports the current exchange-local time.
type Clock func() (time.Time, error)

// ExchangeNow is the default Clock. The exchange runs on UTC+8 with no
// DST; when the IANA zone is unavailable a fixed offset stands in.
func ExchangeNow() (time.Time, error) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	return time.Now().In(loc), nil
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// InSession checks A-share continuous auction sessions.
// 09:30-11:30 and 13:00-15:00, boundaries inclusive, weekdays only.
// This ignores exchange holidays; weekday and session hours are the
// only gates for a free data source.
func InSession(t time.Time) bool {
	if IsWeekend(t) {
		return false
	}
	hm := t.Hour()*60 + t.Minute()
	if hm >= 9*60+30 && hm <= 11*60+30 {
		return true
	}
	if hm >= 13*60 && hm <= 15*60 {
		return true
	}
	return false
}

// ParseDate parses a YYYY-MM-DD string. Malformed input wraps
// quote.ErrInvalidDate and is non-retryable.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", quote.ErrInvalidDate, s)
	}
	return t, nil
}
