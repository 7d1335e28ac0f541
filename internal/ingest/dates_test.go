package ingest

import (
	"testing"
	"time"
)

func TestResolveDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"iso", "2025-08-31", "2025-08-31", true},
		{"iso single digit", "2025-3-5", "2025-03-05", true},
		{"rfc3339", "2025-08-31T17:00:00Z", "2025-08-31", true},
		{"slash day first", "31/08/2025", "2025-08-31", true},
		{"dash day first", "31-08-2025", "2025-08-31", true},
		{"dot day first", "31.08.2025", "2025-08-31", true},
		{"month first fallback", "08/31/2025", "2025-08-31", true},
		{"long form", "15 March 2026", "2026-03-15", true},
		{"long form short month", "15 Mar 2026", "2026-03-15", true},
		{"american form", "March 15, 2026", "2026-03-15", true},
		{"ordinal suffix", "3rd March 2026", "2026-03-03", true},
		{"ordinal in american form", "March 21st, 2026", "2026-03-21", true},
		{"label prefix", "Deadline: 30 June 2026", "2026-06-30", true},
		{"closing date prefix", "Closing date: 12/01/2026", "2026-01-12", true},
		{"en dash", "31–08–2025", "2025-08-31", true},
		{"embedded in prose", "applications close on 20 November 2025 at 5pm", "2025-11-20", true},
		{"far future still parses", "31/08/2099", "2099-08-31", true},
		{"empty", "", "", false},
		{"no date", "rolling basis", "", false},
		{"garbage numbers", "phone 98765 43210", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveDate(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ResolveDate(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolvePlausibleDate(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"upcoming", "31/10/2025", "2025-10-31", true},
		{"recently closed", "15 July 2025", "2025-07-15", true},
		{"too far past", "2024-01-01", "", false},
		{"too far future", "31/08/2099", "", false},
		{"window upper edge", "2027-08-22", "2027-08-22", true},
		{"just past upper edge", "2027-08-23", "", false},
		{"unparseable", "see website", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolvePlausibleDate(tt.in, now)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ResolvePlausibleDate(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestEarliestPlausible(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"picks earliest", []string{"2026-03-01", "2025-11-15", "2026-01-10"}, "2025-11-15"},
		{"drops implausible", []string{"2024-01-01", "2099-12-31", "2025-12-01"}, "2025-12-01"},
		{"all implausible", []string{"2019-05-05", "2098-01-01"}, ""},
		{"mixed formats", []string{"15 March 2026", "31/12/2025"}, "2025-12-31"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EarliestPlausible(tt.candidates, now); got != tt.want {
				t.Errorf("EarliestPlausible(%v) = %q, want %q", tt.candidates, got, tt.want)
			}
		})
	}
}
