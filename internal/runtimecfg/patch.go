package runtimecfg

import "github.com/pcdogyu/A-Stock-Open-Check/internal/config"

// Patch is a partial update for settings exposed over the web API.
// Fields are pointers so "not set" can be distinguished from zero values.
type Patch struct {
	Watchlist []config.WatchEntry `json:"watchlist,omitempty"`

	CheckPaceMillis *int  `json:"check_pace_ms,omitempty"`
	CheckFailOpen   *bool `json:"check_fail_open,omitempty"`

	RealtimeIntervalSeconds *int  `json:"realtime_interval_seconds,omitempty"`
	RealtimePaceMillis      *int  `json:"realtime_pace_ms,omitempty"`
	OnlyDuringTradingHours  *bool `json:"only_during_trading_hours,omitempty"`

	ExportFormat *string `json:"export_format,omitempty"`
	ExportDir    *string `json:"export_dir,omitempty"`
}

func (p Patch) Apply(cfg *config.Config) {
	if p.Watchlist != nil {
		cfg.Watchlist = p.Watchlist
	}
	if p.CheckPaceMillis != nil {
		cfg.Check.PaceMillis = *p.CheckPaceMillis
	}
	if p.CheckFailOpen != nil {
		cfg.Check.FailOpen = p.CheckFailOpen
	}
	if p.RealtimeIntervalSeconds != nil {
		cfg.Realtime.IntervalSeconds = *p.RealtimeIntervalSeconds
	}
	if p.RealtimePaceMillis != nil {
		cfg.Realtime.PaceMillis = *p.RealtimePaceMillis
	}
	if p.OnlyDuringTradingHours != nil {
		cfg.Realtime.OnlyDuringHours = p.OnlyDuringTradingHours
	}
	if p.ExportFormat != nil {
		cfg.Export.Format = *p.ExportFormat
	}
	if p.ExportDir != nil {
		cfg.Export.Dir = *p.ExportDir
	}
}
