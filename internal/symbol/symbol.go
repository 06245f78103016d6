package symbol

import (
	"fmt"
	"strings"
)

// Pad left-pads a numeric ticker with zeros to the 6-digit exchange
// form: "1" => "000001".
func Pad(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("empty symbol")
	}
	if len(code) > 6 {
		return "", fmt.Errorf("symbol too long: %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("symbol must be numeric: %q", code)
		}
	}
	return strings.Repeat("0", 6-len(code)) + code, nil
}

// FeedPrefix maps a 6-digit code to the realtime feed's market prefix:
// - 300/000/002 => "sz" (ChiNext and Shenzhen main board)
// - 60/68 => "sh" (Shanghai main board and STAR)
// Unrecognized prefixes default to "sz".
func FeedPrefix(code string) string {
	switch {
	case strings.HasPrefix(code, "300"), strings.HasPrefix(code, "000"), strings.HasPrefix(code, "002"):
		return "sz"
	case strings.HasPrefix(code, "60"), strings.HasPrefix(code, "68"):
		return "sh"
	default:
		return "sz"
	}
}

// ForRealtimeFeed returns the prefixed form the delimited feed expects:
// "000001" => "sz000001".
func ForRealtimeFeed(code string) string {
	return FeedPrefix(code) + code
}
