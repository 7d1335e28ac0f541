package ingest

import "strings"

// DefaultMaxCandidates caps detail-page fetches per source when the
// registry does not set its own limit.
const DefaultMaxCandidates = 80

// LinkRules are the per-source overrides for link classification.
type LinkRules struct {
	MustPaths     []string `yaml:"must_paths"`
	BlockPaths    []string `yaml:"block_paths"`
	MaxCandidates int      `yaml:"max_candidates"`
}

// LinkClassifier decides which discovered anchors look like funding-call
// detail pages.
type LinkClassifier struct {
	lex Lexicon
}

func NewLinkClassifier(lex Lexicon) *LinkClassifier {
	return &LinkClassifier{lex: lex}
}

// IsCallLink applies the acceptance cascade: exclusion terms reject first,
// then per-source path rules, then PDFs pass unconditionally, and anything
// else needs a call keyword in the URL or anchor text.
func (lc *LinkClassifier) IsCallLink(href, anchorText string, rules LinkRules) bool {
	hrefLower := strings.ToLower(href)
	combined := hrefLower + " " + strings.ToLower(anchorText)

	for _, term := range lc.lex.LinkExclusions {
		if strings.Contains(combined, strings.ToLower(term)) {
			return false
		}
	}

	for _, frag := range rules.BlockPaths {
		if frag != "" && strings.Contains(hrefLower, strings.ToLower(frag)) {
			return false
		}
	}

	if len(rules.MustPaths) > 0 {
		ok := false
		for _, frag := range rules.MustPaths {
			if frag != "" && strings.Contains(hrefLower, strings.ToLower(frag)) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if IsPDFLink(href) {
		return true
	}

	for _, kw := range lc.lex.LinkKeywords {
		if strings.Contains(combined, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// IsPDFLink reports whether the URL path points at a PDF, ignoring query
// string and fragment.
func IsPDFLink(href string) bool {
	h := strings.ToLower(href)
	if i := strings.IndexAny(h, "?#"); i >= 0 {
		h = h[:i]
	}
	return strings.HasSuffix(h, ".pdf")
}

// maxCandidates resolves the per-source cap, falling back to the default.
func (r LinkRules) maxCandidates() int {
	if r.MaxCandidates > 0 {
		return r.MaxCandidates
	}
	return DefaultMaxCandidates
}
