package symbol

import "testing"

func TestPad(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "000001"},
		{"02", "000002"},
		{"300928", "300928"},
		{" 600519 ", "600519"},
	}
	for _, tc := range cases {
		got, err := Pad(tc.in)
		if err != nil {
			t.Fatalf("in=%q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("in=%q: got=%s want=%s", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "12345678", "600519.SH", "abc"} {
		if _, err := Pad(bad); err == nil {
			t.Fatalf("in=%q: expected error", bad)
		}
	}
}

func TestForRealtimeFeed(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"300928", "sz300928"},
		{"000001", "sz000001"},
		{"002594", "sz002594"},
		{"600519", "sh600519"},
		{"688981", "sh688981"},
		{"920152", "sz920152"}, // unrecognized prefix defaults to sz
	}
	for _, tc := range cases {
		if got := ForRealtimeFeed(tc.code); got != tc.want {
			t.Fatalf("code=%s: got=%s want=%s", tc.code, got, tc.want)
		}
	}
}
