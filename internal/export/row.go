// Package export writes snapshot batches to delimited or columnar
// files behind one Saver interface.
package export

import "time"

// Row is the flat DTO written by every saver. It stays independent of
// the wire packages; callers map their snapshots into it.
type Row struct {
	Symbol       string  `json:"symbol" parquet:"symbol"`
	Name         string  `json:"name" parquet:"name"`
	CurrentPrice float64 `json:"current_price" parquet:"current_price"`
	Open         float64 `json:"open" parquet:"open"`
	ExpectedOpen float64 `json:"expected_open,omitempty" parquet:"expected_open,optional"`
	MatchStatus  string  `json:"match_status" parquet:"match_status"`
	High         float64 `json:"high" parquet:"high"`
	Low          float64 `json:"low" parquet:"low"`
	PrevClose    float64 `json:"yesterday_close" parquet:"yesterday_close"`
	Change       float64 `json:"change" parquet:"change"`
	ChangePct    float64 `json:"change_percent" parquet:"change_percent"`
	VolumeLots   int64   `json:"volume" parquet:"volume"`
	Turnover     float64 `json:"turnover" parquet:"turnover"`
	LastUpdate   string  `json:"last_update" parquet:"last_update"`
}

// Filename returns the timestamped name for a snapshot batch:
// stock_data_YYYYMMDD_HHMMSS.ext.
func Filename(t time.Time, ext string) string {
	return "stock_data_" + t.Format("20060102_150405") + "." + ext
}
