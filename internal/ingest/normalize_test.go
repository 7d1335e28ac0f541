package ingest

import "testing"

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		name          string
		title, agency string
		want          string
	}{
		{"plain", "Core Research Grant", "SERB", "core research grant|serb"},
		{"punctuation collapsed", "Core  Research -- Grant!", "S.E.R.B.", "core research grant|s e r b"},
		{"case insensitive", "CORE RESEARCH GRANT", "Serb", "core research grant|serb"},
		{"empty agency", "Some Call", "", "some call|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IdentityKey(tt.title, tt.agency); got != tt.want {
				t.Errorf("IdentityKey(%q, %q) = %q, want %q", tt.title, tt.agency, got, tt.want)
			}
		})
	}

	if IdentityKey("Core Research Grant", "SERB") != IdentityKey(" core—research—grant ", "serb") {
		t.Error("equivalent titles produced different keys")
	}
}

func TestStandardize(t *testing.T) {
	c := FundingCall{
		Title:    "  Quantum   Call\n2026 ",
		Agency:   " DST ",
		Deadline: "31st December 2025",
	}

	Standardize(&c)

	if c.Title != "Quantum Call 2026" {
		t.Errorf("title = %q", c.Title)
	}
	if c.Agency != "DST" {
		t.Errorf("agency = %q", c.Agency)
	}
	if c.Deadline != "2025-12-31" {
		t.Errorf("deadline = %q", c.Deadline)
	}
	if c.Country != "Global" {
		t.Errorf("country default = %q, want Global", c.Country)
	}

	// Second pass must be a no-op.
	before := c
	Standardize(&c)
	if c != before {
		t.Errorf("Standardize not idempotent:\n before=%+v\n after=%+v", before, c)
	}
}

func TestStandardizeClearsUnparseableDeadline(t *testing.T) {
	c := FundingCall{Title: "X", Deadline: "to be announced"}
	Standardize(&c)
	if c.Deadline != "" {
		t.Errorf("deadline = %q, want empty", c.Deadline)
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	got := TruncateText("abcdefghij", 8)
	if got != "abcde..." {
		t.Errorf("got %q, want abcde...", got)
	}
}

func TestHTMLToText(t *testing.T) {
	got := HTMLToText("<p>Hello&nbsp;<b>world</b></p>")
	if got != "Hello world" {
		t.Errorf("got %q, want %q", got, "Hello world")
	}
}
