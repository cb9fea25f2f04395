package numbering

import (
	"strings"
	"testing"
	"time"
)

func TestDisplayNumberShape(t *testing.T) {
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		gen    func(time.Time) string
		prefix string
	}{
		{name: "rfq", gen: NewRFQNumber, prefix: "RFQ-20260826-"},
		{name: "quote", gen: NewQuoteNumber, prefix: "QT-20260826-"},
		{name: "order", gen: NewOrderNumber, prefix: "ORD-20260826-"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			number := tc.gen(now)
			if !strings.HasPrefix(number, tc.prefix) {
				t.Fatalf("expected prefix %q, got %q", tc.prefix, number)
			}
			suffix := strings.TrimPrefix(number, tc.prefix)
			if len(suffix) != 6 {
				t.Fatalf("expected 6 char suffix, got %q", suffix)
			}
			if suffix != strings.ToUpper(suffix) {
				t.Fatalf("expected uppercase suffix, got %q", suffix)
			}
		})
	}
}

func TestDisplayNumbersVary(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		number := NewOrderNumber(now)
		if seen[number] {
			t.Fatalf("duplicate display number %q", number)
		}
		seen[number] = true
	}
}
