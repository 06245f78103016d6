// Package szse decodes Shenzhen exchange report payloads. The report
// API has shipped several response shapes over time; normalization
// runs a fixed rule chain over the decoded body and the field tables
// absorb the key-name drift between report vintages.
package szse

import (
	"github.com/shopspring/decimal"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
)

// ReportKind selects which endpoint a body came from and therefore
// which extraction table applies.
type ReportKind int

const (
	CurrentReport ReportKind = iota
	HistoricalReport
)

func (k ReportKind) fields() recordFields {
	if k == HistoricalReport {
		return historicalFields
	}
	return currentFields
}

func (k ReportKind) source() quote.Source {
	if k == HistoricalReport {
		return quote.HistoricalReport
	}
	return quote.CurrentReport
}

// DecodeReport normalizes a report body and extracts the quote fields.
// Field-level oddities fall back to defaults; only an unrecognizable
// payload shape fails the decode.
func DecodeReport(body []byte, symbol string, kind ReportKind) (quote.Quote, error) {
	rec, err := normalize(body)
	if err != nil {
		return quote.Quote{}, err
	}
	f := kind.fields()
	return quote.Quote{
		Symbol: symbol,
		Name:   f.name.lookup(rec),
		Open:   coerceDecimal(f.open.lookup(rec), decimal.Decimal{}),
		Source: kind.source(),
	}, nil
}
