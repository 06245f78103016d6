package market

import (
	"fmt"
	"time"
)

// Mode is the retrieval strategy resolved for one request.
type Mode int

const (
	Invalid Mode = iota
	ClosedWeekend
	ClosedNow
	Current
	Historical
)

func (m Mode) String() string {
	switch m {
	case Invalid:
		return "invalid"
	case ClosedWeekend:
		return "closed_weekend"
	case ClosedNow:
		return "closed_now"
	case Current:
		return "current"
	case Historical:
		return "historical"
	default:
		return "unknown"
	}
}

const (
	reasonWeekend = "Weekend - Market Closed"
	reasonHours   = "Outside Trading Hours"
)

// Session is the resolved mode for one request. Date carries the
// resolved YYYY-MM-DD day for report-sourced and closed modes; Reason
// is set only for the closed modes.
type Session struct {
	Mode   Mode
	Date   string
	Reason string
}

// Closed reports whether the session is a closed-market terminal mode.
func (s Session) Closed() bool {
	return s.Mode == ClosedWeekend || s.Mode == ClosedNow
}

// Resolve maps an optional target date to a retrieval mode. It is a
// pure function of the injected clock and its arguments; no state is
// kept between calls.
//
//   - empty target: live-session check, Current or ClosedNow.
//   - malformed target: error wrapping quote.ErrInvalidDate.
//   - target after today: Invalid.
//   - target today: same live-session check as empty.
//   - past weekend: ClosedWeekend; other past days: Historical.
func Resolve(clock Clock, target string) (Session, error) {
	if clock == nil {
		clock = ExchangeNow
	}
	now, clockErr := clock()

	if target == "" {
		return liveSession(now, clockErr), nil
	}

	day, err := ParseDate(target)
	if err != nil {
		return Session{Mode: Invalid}, err
	}
	if clockErr != nil {
		// Without a usable clock the target cannot be placed against
		// today; the symbol fails rather than guessing.
		return Session{}, fmt.Errorf("exchange clock: %w", clockErr)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case day.After(today):
		return Session{Mode: Invalid, Date: target}, nil
	case day.Equal(today):
		return liveSession(now, nil), nil
	}
	if IsWeekend(day) {
		return Session{Mode: ClosedWeekend, Date: target, Reason: reasonWeekend}, nil
	}
	return Session{Mode: Historical, Date: target}, nil
}

func liveSession(now time.Time, clockErr error) Session {
	var open bool
	var date string
	if clockErr != nil {
		open = FailOpen
	} else {
		open = InSession(now)
		date = now.Format("2006-01-02")
	}
	if open {
		return Session{Mode: Current, Date: date}
	}
	return Session{Mode: ClosedNow, Date: date, Reason: reasonHours}
}
