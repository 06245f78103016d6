package recon

import (
	"github.com/shopspring/decimal"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
)

// Verdict classifies one symbol's opening-price comparison.
type Verdict int

const (
	Matched Verdict = iota
	NotMatched
	NoExpectedPrice
	MarketClosed
)

func (v Verdict) String() string {
	switch v {
	case Matched:
		return "MATCHED"
	case NotMatched:
		return "NOT MATCHED"
	case NoExpectedPrice:
		return "NO EXPECTED PRICE"
	case MarketClosed:
		return "MARKET CLOSED"
	default:
		return "UNKNOWN"
	}
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Tolerance is the absolute allowed deviation between reported and
// expected opening price for a Matched verdict.
var Tolerance = decimal.New(1, -2)

// Result is the terminal, immutable output of one symbol's processing.
// Quote is nil for closed-market results and failed fetches;
// ClosedReason is set only for MarketClosed.
type Result struct {
	Symbol       string           `json:"symbol"`
	ExpectedOpen *decimal.Decimal `json:"expected_open,omitempty"`
	Quote        *quote.Quote     `json:"quote,omitempty"`
	Verdict      Verdict          `json:"verdict"`
	ClosedReason string           `json:"closed_reason,omitempty"`
}

// Reconcile compares a decoded quote against an expected opening price.
// Pure function, no I/O. A non-empty closedReason wins over everything
// else: the verdict is MarketClosed and the quote is dropped.
func Reconcile(symbol string, q *quote.Quote, expected *decimal.Decimal, closedReason string) Result {
	if closedReason != "" {
		return Result{
			Symbol:       symbol,
			ExpectedOpen: expected,
			Verdict:      MarketClosed,
			ClosedReason: closedReason,
		}
	}
	if expected == nil {
		return Result{Symbol: symbol, Quote: q, Verdict: NoExpectedPrice}
	}
	out := Result{Symbol: symbol, ExpectedOpen: expected, Quote: q, Verdict: NotMatched}
	if q != nil && q.Open.Sub(*expected).Abs().Cmp(Tolerance) <= 0 {
		out.Verdict = Matched
	}
	return out
}
