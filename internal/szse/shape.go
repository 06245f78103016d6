package szse

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pcdogyu/A-Stock-Open-Check/internal/quote"
)

// containerKeys are the known payload container keys of the report
// API, in lookup order.
var containerKeys = []string{"data", "result", "rows", "items", "records"}

// stockKeys identify an array element as a stock record rather than a
// header.
var stockKeys = []string{"zqdm", "stockcode", "code", "zqjc", "stockname"}

// document is a decoded report body plus the original top-level object
// key order, which Go maps do not preserve.
type document struct {
	value    any
	keyOrder []string
}

// shapeRule tries to pull candidate content out of a document. Rules
// are pure and return no-match rather than failing; they run in fixed
// priority order and the first match wins.
type shapeRule struct {
	name  string
	apply func(doc document) (any, bool)
}

var shapeRules = []shapeRule{
	{name: "object container key", apply: objectContainerKey},
	{name: "object first non-empty", apply: objectFirstNonEmpty},
	{name: "array payload element", apply: arrayPayloadElement},
	{name: "array data list", apply: arrayDataList},
	{name: "array secondary element", apply: arraySecondaryElement},
}

// normalize decodes a report body and reduces it to the single record
// the field tables read from.
func normalize(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty response body", quote.ErrNoData)
	}
	doc, err := decodeDocument(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", quote.ErrMalformedResponse, err)
	}

	var content any
	matched := false
	for _, rule := range shapeRules {
		if v, ok := rule.apply(doc); ok {
			content = v
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: no payload content recognized", quote.ErrNoData)
	}

	switch c := content.(type) {
	case []any:
		if len(c) == 0 {
			return nil, fmt.Errorf("%w: empty payload array", quote.ErrNoData)
		}
		rec, ok := c[0].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: payload element is not a record", quote.ErrMalformedResponse)
		}
		return rec, nil
	case map[string]any:
		return c, nil
	default:
		return nil, fmt.Errorf("%w: payload is not a record", quote.ErrMalformedResponse)
	}
}

func objectContainerKey(doc document) (any, bool) {
	obj, ok := doc.value.(map[string]any)
	if !ok {
		return nil, false
	}
	for _, k := range containerKeys {
		if v, present := obj[k]; present && !isEmpty(v) {
			return v, true
		}
	}
	return nil, false
}

func objectFirstNonEmpty(doc document) (any, bool) {
	obj, ok := doc.value.(map[string]any)
	if !ok {
		return nil, false
	}
	for _, k := range doc.keyOrder {
		if v, present := obj[k]; present && !isEmpty(v) {
			return v, true
		}
	}
	return nil, false
}

// arrayPayloadElement walks the array once. Elements carrying a
// metadata field are headers; the first element with a data field
// contributes that field's value, and a rich element (more than 3
// fields, or any stock-identifying key) stands in as the record
// itself. A null or empty data field yields to the later rules.
func arrayPayloadElement(doc document) (any, bool) {
	arr, ok := doc.value.([]any)
	if !ok {
		return nil, false
	}
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if _, meta := m["metadata"]; meta {
			continue
		}
		if inner, has := m["data"]; has {
			if isEmpty(inner) {
				return nil, false
			}
			return inner, true
		}
		if len(m) > 3 || hasAnyKey(m, stockKeys) {
			return m, true
		}
	}
	return nil, false
}

// arrayDataList rechecks every element, metadata wrappers included,
// for a data field holding an array of records.
func arrayDataList(doc document) (any, bool) {
	arr, ok := doc.value.([]any)
	if !ok {
		return nil, false
	}
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if list, ok := m["data"].([]any); ok && len(list) > 0 {
			return list, true
		}
	}
	return nil, false
}

func arraySecondaryElement(doc document) (any, bool) {
	arr, ok := doc.value.([]any)
	if !ok || len(arr) <= 1 {
		return nil, false
	}
	for _, el := range arr[1:] {
		if m, ok := el.(map[string]any); ok && len(m) > 1 {
			return m, true
		}
	}
	return nil, false
}

func decodeDocument(body []byte) (document, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return document{}, err
	}
	doc := document{value: v}
	if _, ok := v.(map[string]any); ok {
		doc.keyOrder = topLevelKeys(body)
	}
	return doc, nil
}

// topLevelKeys re-scans the body for first-level object keys in
// document order.
func topLevelKeys(body []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		k, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, k)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return keys
		}
	}
	return keys
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

func hasAnyKey(m map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}
