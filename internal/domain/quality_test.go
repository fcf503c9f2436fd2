package domain

import (
	"errors"
	"strconv"
	"testing"
)

func TestParseQuality(t *testing.T) {
	cases := []struct {
		name          string
		raw           string
		present       bool
		wantQuality   int
		wantDefaulted bool
		wantMsg       string
	}{
		{name: "absent", present: false, wantQuality: 50, wantDefaulted: true},
		{name: "empty", raw: "", present: true, wantQuality: 50, wantDefaulted: true},
		{name: "not a number", raw: "abc", present: true, wantQuality: 50, wantDefaulted: true},
		{name: "decimal", raw: "12.5", present: true, wantQuality: 12},
		{name: "trailing junk", raw: "40abc", present: true, wantQuality: 40},
		{name: "plus sign", raw: "+70", present: true, wantQuality: 70},
		{name: "sign only", raw: "-", present: true, wantQuality: 50, wantDefaulted: true},
		{name: "leading junk", raw: "q40", present: true, wantQuality: 50, wantDefaulted: true},
		{name: "zero with junk", raw: "0.9", present: true, wantMsg: MsgQualityTooLow},
		{name: "negative decimal", raw: "-1.5", present: true, wantMsg: MsgQualityTooLow},
		{name: "overflow", raw: "99999999999999999999999", present: true, wantMsg: MsgQualityTooHigh},
		{name: "negative overflow", raw: "-99999999999999999999999", present: true, wantMsg: MsgQualityTooLow},
		{name: "min", raw: "1", present: true, wantQuality: 1},
		{name: "typical", raw: "80", present: true, wantQuality: 80},
		{name: "padded", raw: " 75 ", present: true, wantQuality: 75},
		{name: "max", raw: "100", present: true, wantQuality: 100},
		{name: "zero", raw: "0", present: true, wantMsg: MsgQualityTooLow},
		{name: "negative", raw: "-5", present: true, wantMsg: MsgQualityTooLow},
		{name: "too high", raw: "150", present: true, wantMsg: MsgQualityTooHigh},
		{name: "just over", raw: "101", present: true, wantMsg: MsgQualityTooHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, defaulted, err := ParseQuality(tc.raw, tc.present)
			if tc.wantMsg != "" {
				if err == nil {
					t.Fatalf("expected error %q, got quality=%d", tc.wantMsg, q)
				}
				if !errors.Is(err, ErrInvalidQuality) {
					t.Fatalf("expected invalid quality kind, got %v", err)
				}
				if err.Error() != tc.wantMsg {
					t.Fatalf("expected message %q, got %q", tc.wantMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q != tc.wantQuality {
				t.Fatalf("expected quality %d, got %d", tc.wantQuality, q)
			}
			if defaulted != tc.wantDefaulted {
				t.Fatalf("expected defaulted=%v, got %v", tc.wantDefaulted, defaulted)
			}
		})
	}
}

func TestParseQualityAlwaysInRange(t *testing.T) {
	for q := -300; q <= 300; q++ {
		got, _, err := ParseQuality(strconv.Itoa(q), true)
		if err != nil {
			continue
		}
		if got < 1 || got > 100 {
			t.Fatalf("quality %d normalised to out-of-range %d", q, got)
		}
	}
}
