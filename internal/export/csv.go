package export

import (
	"encoding/csv"
	"os"
	"strconv"
)

// CSVSaver writes rows as comma-separated text with a header line.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

var csvHeader = []string{
	"symbol", "name", "current_price", "open", "expected_open",
	"match_status", "high", "low", "yesterday_close", "change",
	"change_percent", "volume", "turnover", "last_update",
}

func (CSVSaver) Save(rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (r Row) record() []string {
	return []string{
		r.Symbol,
		r.Name,
		formatFloat(r.CurrentPrice),
		formatFloat(r.Open),
		formatFloat(r.ExpectedOpen),
		r.MatchStatus,
		formatFloat(r.High),
		formatFloat(r.Low),
		formatFloat(r.PrevClose),
		formatFloat(r.Change),
		formatFloat(r.ChangePct),
		strconv.FormatInt(r.VolumeLots, 10),
		formatFloat(r.Turnover),
		r.LastUpdate,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
