package ingest

import "testing"

func TestIsCallLink(t *testing.T) {
	lc := NewLinkClassifier(DefaultLexicon())

	tests := []struct {
		name   string
		href   string
		anchor string
		rules  LinkRules
		want   bool
	}{
		{
			"keyword in href",
			"https://dst.gov.in/call-for-proposals/quantum-2026", "Read more",
			LinkRules{}, true,
		},
		{
			"keyword in anchor only",
			"https://dst.gov.in/node/9914", "Call for Proposals: Quantum Technologies",
			LinkRules{}, true,
		},
		{
			"no keyword anywhere",
			"https://dst.gov.in/about-us", "About the Department",
			LinkRules{}, false,
		},
		{
			"exclusion beats keyword",
			"https://dst.gov.in/grants/faq", "Grant FAQ",
			LinkRules{}, false,
		},
		{
			"exclusion in anchor text",
			"https://dst.gov.in/schemes/2026", "Results of the last call",
			LinkRules{}, false,
		},
		{
			"block path",
			"https://dst.gov.in/archive/call-2019", "Old call",
			LinkRules{BlockPaths: []string{"/archive/"}}, false,
		},
		{
			"must path satisfied",
			"https://serb.gov.in/page/funding_schemes/core-grant", "Core Research Grant",
			LinkRules{MustPaths: []string{"funding_schemes"}}, true,
		},
		{
			"must path missing",
			"https://serb.gov.in/news/core-grant-announced", "Core Research Grant call",
			LinkRules{MustPaths: []string{"funding_schemes"}}, false,
		},
		{
			"pdf accepted without keyword",
			"https://dst.gov.in/sites/default/files/advertisement_2026.pdf", "Advertisement",
			LinkRules{}, true,
		},
		{
			"pdf still subject to exclusions",
			"https://dst.gov.in/sites/default/files/results_2025.pdf", "List",
			LinkRules{}, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lc.IsCallLink(tt.href, tt.anchor, tt.rules); got != tt.want {
				t.Errorf("IsCallLink(%q, %q) = %v, want %v", tt.href, tt.anchor, got, tt.want)
			}
		})
	}
}

func TestIsPDFLink(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"https://example.org/doc.pdf", true},
		{"https://example.org/DOC.PDF", true},
		{"https://example.org/doc.pdf?download=1", true},
		{"https://example.org/doc.pdf#page=3", true},
		{"https://example.org/doc.pdfx", false},
		{"https://example.org/download?file=doc.pdf", false},
		{"https://example.org/page.html", false},
	}

	for _, tt := range tests {
		if got := IsPDFLink(tt.href); got != tt.want {
			t.Errorf("IsPDFLink(%q) = %v, want %v", tt.href, got, tt.want)
		}
	}
}

func TestLinkRulesMaxCandidates(t *testing.T) {
	if got := (LinkRules{}).maxCandidates(); got != DefaultMaxCandidates {
		t.Errorf("default cap = %d, want %d", got, DefaultMaxCandidates)
	}
	if got := (LinkRules{MaxCandidates: 25}).maxCandidates(); got != 25 {
		t.Errorf("explicit cap = %d, want 25", got)
	}
}
