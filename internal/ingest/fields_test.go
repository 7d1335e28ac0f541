package ingest

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func testExtractor() *Extractor {
	e := NewExtractor(DefaultLexicon())
	e.now = func() time.Time {
		return time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	}
	return e
}

func TestExtractDeadline(t *testing.T) {
	e := testExtractor()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"keyword window",
			"Call for proposals in biotechnology. Last date for submission: 15 November 2025. Contact us for details.",
			"2025-11-15",
		},
		{
			"earliest of several candidates",
			"Deadline: 30 December 2025. The programme launched on 10 October 2025.",
			"2025-10-10",
		},
		{
			"date outside keyword window ignored when another is anchored",
			"Closing date: 05/01/2026." + strings.Repeat(" filler", 40) + " 2025-10-01 was the launch.",
			"2026-01-05",
		},
		{
			"full text fallback",
			"Proposals are invited under this scheme. Workshop on 12 March 2026.",
			"2026-03-12",
		},
		{
			"implausible dates rejected",
			"Deadline: 31/08/2099. Archive from 2019-01-01.",
			"",
		},
		{
			"no dates at all",
			"Applications accepted on a rolling basis throughout the year.",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := e.Extract(tt.text)
			if fs.Deadline != tt.want {
				t.Errorf("Extract(...).Deadline = %q, want %q", fs.Deadline, tt.want)
			}
		})
	}
}

func TestExtractEligibilityAndBudget(t *testing.T) {
	e := testExtractor()

	text := "Eligibility: Indian citizens holding a PhD in science or engineering, below 45 years of age. " +
		"Grant amount: up to Rs. 30 lakh over three years including overheads."

	fs := e.Extract(text)

	wantEligibility := "Indian citizens holding a PhD in science or engineering, below 45 years of age."
	if fs.Eligibility != wantEligibility {
		t.Errorf("eligibility segment = %q, want %q", fs.Eligibility, wantEligibility)
	}
	wantBudget := "up to Rs. 30 lakh over three years including overheads."
	if fs.Budget != wantBudget {
		t.Errorf("budget segment = %q, want %q", fs.Budget, wantBudget)
	}
}

// Segments start after the keyword label and end at the next field label or
// sentence boundary; the label itself never leaks into the value.
func TestExtractSegmentsStopAtLabels(t *testing.T) {
	e := testExtractor()

	fs := e.Extract("Call for Proposals — Deadline: 15 August 2025. Eligibility: Early-career faculty. Budget: INR 5,00,000.")

	if fs.Deadline != "2025-08-15" {
		t.Errorf("deadline = %q, want %q", fs.Deadline, "2025-08-15")
	}
	if fs.Eligibility != "Early-career faculty." {
		t.Errorf("eligibility = %q, want %q", fs.Eligibility, "Early-career faculty.")
	}
	if fs.Budget != "INR 5,00,000." {
		t.Errorf("budget = %q, want %q", fs.Budget, "INR 5,00,000.")
	}
}

// Characters whose lower-case form has a different byte length (Ⱥ grows,
// İ shrinks) must not shift keyword positions or corrupt segments.
func TestExtractCaseFoldWidthChanges(t *testing.T) {
	e := testExtractor()

	tests := []struct {
		text string
		want string
	}{
		{strings.Repeat("Ⱥ", 40) + " eligibility: everyone", "everyone"},
		{strings.Repeat("İ", 40) + " Eligibility: open to all researchers", "open to all researchers"},
	}

	for _, tt := range tests {
		fs := e.Extract(tt.text)
		if fs.Eligibility != tt.want {
			t.Errorf("Extract(%q).Eligibility = %q, want %q", tt.text, fs.Eligibility, tt.want)
		}
		if !utf8.ValidString(fs.Eligibility) {
			t.Errorf("eligibility is not valid UTF-8: %q", fs.Eligibility)
		}
	}
}

func TestExtractBudgetCurrencyFallback(t *testing.T) {
	e := testExtractor()

	fs := e.Extract("Selected fellows receive ₹75,000 per month plus a research contingency.")
	if !strings.Contains(fs.Budget, "₹75,000 per month") {
		t.Errorf("currency fallback budget = %q", fs.Budget)
	}

	fs = e.Extract("No financial details are listed on this page.")
	if fs.Budget != "" {
		t.Errorf("expected empty budget, got %q", fs.Budget)
	}
}

func TestClassifyArea(t *testing.T) {
	e := testExtractor()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"medical", "clinical trials for infectious disease", "Medical Research"},
		{"medical beats engineering", "medical devices and engineering design", "Medical Research"},
		{"biotech", "genomics and biotechnology platforms", "Biotechnology"},
		{"engineering", "engineering and technology innovation", "Science & Technology"},
		{"generic research last", "fundamental research excellence", "Science & Innovation"},
		{"no markers", "annual report and accounts", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ClassifyArea(tt.text); got != tt.want {
				t.Errorf("ClassifyArea(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRecurringDetection(t *testing.T) {
	e := testExtractor()

	tests := []struct {
		text string
		want bool
	}{
		{"Applications are accepted on a rolling basis.", true},
		{"This call is always open.", true},
		{"Proposals may be submitted throughout the year.", true},
		{"This annual call opens each spring.", true},
		{"The scheme is advertised every year.", true},
		{"The deadline is 15 November 2025.", false},
		// Word boundary: "ongoing" inside a longer token must not match.
		{"See the prolongoingest archive.", false},
	}

	for _, tt := range tests {
		fs := e.Extract(tt.text)
		if fs.IsRecurring != tt.want {
			t.Errorf("Extract(%q).IsRecurring = %v, want %v", tt.text, fs.IsRecurring, tt.want)
		}
	}
}
