package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies which upstream produced a Quote.
type Source int

const (
	RealtimeFeed Source = iota
	CurrentReport
	HistoricalReport
)

func (s Source) String() string {
	switch s {
	case RealtimeFeed:
		return "realtime"
	case CurrentReport:
		return "current"
	case HistoricalReport:
		return "historical"
	default:
		return "unknown"
	}
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Quote is one decoded opening-price snapshot for a single security.
// Open of zero means "unknown/unavailable", not a traded price of zero.
// CapturedAt is set by the realtime feed decoder; report-sourced quotes
// leave it nil.
type Quote struct {
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Open       decimal.Decimal `json:"open"`
	Source     Source          `json:"source"`
	CapturedAt *time.Time      `json:"captured_at,omitempty"`
}
