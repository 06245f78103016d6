package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
	"github.com/pcdogyu/A-Stock-Open-Check/internal/recon"
)

// Store keeps the latest fetch and check results in memory. Results
// are never written to SQLite; the web layer serves whatever the most
// recent run produced.
type Store struct {
	mu sync.RWMutex

	quotes struct {
		tsUTC time.Time
		bySym map[string]quote.Quote
	}

	check struct {
		tsUTC   time.Time
		results []recon.Result
	}
}

func New() *Store {
	s := &Store{}
	s.quotes.bySym = make(map[string]quote.Quote)
	return s
}

func (s *Store) SetQuotes(tsUTC time.Time, rows []quote.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes.tsUTC = tsUTC
	if s.quotes.bySym == nil {
		s.quotes.bySym = make(map[string]quote.Quote)
	}
	for _, q := range rows {
		if q.Symbol != "" {
			s.quotes.bySym[q.Symbol] = q
		}
	}
}

func (s *Store) SetCheck(tsUTC time.Time, results []recon.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.check.tsUTC = tsUTC
	s.check.results = append([]recon.Result(nil), results...)
}

type Snapshot struct {
	QuotesTSUTC time.Time     `json:"quotes_ts_utc"`
	Quotes      []quote.Quote `json:"quotes"`

	CheckTSUTC time.Time      `json:"check_ts_utc"`
	Check      []recon.Result `json:"check"`
}

// SnapshotLatest copies the stored state, with quotes in symbol order.
func (s *Store) SnapshotLatest() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quotes := make([]quote.Quote, 0, len(s.quotes.bySym))
	for _, q := range s.quotes.bySym {
		quotes = append(quotes, q)
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Symbol < quotes[j].Symbol })

	return Snapshot{
		QuotesTSUTC: s.quotes.tsUTC,
		Quotes:      quotes,
		CheckTSUTC:  s.check.tsUTC,
		Check:       append([]recon.Result(nil), s.check.results...),
	}
}
