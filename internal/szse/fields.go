package szse

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// fieldSpec is one logical field of a report record: the accepted
// upstream keys in lookup order, and the default when every key is
// missing or blank.
type fieldSpec struct {
	keys []string
	def  string
}

// recordFields is the extraction table for one report flavor.
type recordFields struct {
	name fieldSpec
	open fieldSpec
}

// historicalFields covers the archived snapshot report. The archive
// mixes Chinese-pinyin and English key names across report vintages.
var historicalFields = recordFields{
	name: fieldSpec{keys: []string{"zqjc", "stockname", "name", "gsjc", "mc"}, def: "N/A"},
	open: fieldSpec{keys: []string{"ks", "kpjg", "open", "kaiPanJia"}, def: "0"},
}

// currentFields covers the live time-data endpoint.
var currentFields = recordFields{
	name: fieldSpec{keys: []string{"stockname", "name"}, def: "N/A"},
	open: fieldSpec{keys: []string{"open", "openPrice"}, def: "0"},
}

// lookup returns the first present, non-blank value among the field's
// keys, else the default.
func (f fieldSpec) lookup(rec map[string]any) string {
	for _, k := range f.keys {
		v, ok := rec[k]
		if !ok {
			continue
		}
		if s := strings.TrimSpace(asString(v)); s != "" {
			return s
		}
	}
	return f.def
}

// asString renders a record value for extraction. Nested structures
// and nulls count as blank.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// coerceDecimal applies the permissive numeric policy: thousands
// separators and inner whitespace are stripped, "" and "-" mean
// absent, and unparsable residue falls back to def.
func coerceDecimal(raw string, def decimal.Decimal) decimal.Decimal {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "-" {
		return def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return def
	}
	return d
}
