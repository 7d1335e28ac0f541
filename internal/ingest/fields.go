package ingest

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Extraction caps: a short window after a deadline keyword keeps unrelated
// dates out; eligibility and budget segments are bounded so a single page
// cannot flood a record.
const (
	deadlineWindow = 120
	eligibilityCap = 600
	budgetCap      = 250
)

// sentenceEndRe marks a sentence boundary: terminal punctuation followed by
// a capitalized continuation. Requiring the capital letter keeps
// abbreviations like "Rs. 30 lakh" from ending a segment early.
var sentenceEndRe = regexp.MustCompile(`[.!?]\s+\p{Lu}`)

// FieldSet is the outcome of one extraction pass over one text. Empty
// strings mean the pass found nothing for that field.
type FieldSet struct {
	Title       string
	Deadline    string
	Eligibility string
	Budget      string
	Area        string
	IsRecurring bool
}

// Extractor runs the keyword-window heuristics over plain text. It is pure:
// same text and clock in, same fields out.
type Extractor struct {
	lex          Lexicon
	recurringRe  *regexp.Regexp
	deadlineRe   *regexp.Regexp
	eligRe       *regexp.Regexp
	eligStopRe   *regexp.Regexp
	budgetRe     *regexp.Regexp
	budgetStopRe *regexp.Regexp
	currencyRe   *regexp.Regexp
	now          func() time.Time
}

// NewExtractor builds an extractor over the given lexicon. Keyword lookups
// are case-insensitive matches against the original text, so positions are
// always valid offsets into it.
func NewExtractor(lex Lexicon) *Extractor {
	eligStops := append([]string{"area"}, lex.BudgetKeywords...)
	eligStops = append(eligStops, lex.DeadlineKeywords...)
	budgetStops := append([]string{"area"}, lex.EligibilityKeywords...)
	budgetStops = append(budgetStops, lex.DeadlineKeywords...)

	return &Extractor{
		lex:          lex,
		recurringRe:  compileMarkerRegexp(lex.RecurringMarkers),
		deadlineRe:   compileKeywordRegexp(lex.DeadlineKeywords),
		eligRe:       compileKeywordRegexp(lex.EligibilityKeywords),
		eligStopRe:   compileKeywordRegexp(eligStops),
		budgetRe:     compileKeywordRegexp(lex.BudgetKeywords),
		budgetStopRe: compileKeywordRegexp(budgetStops),
		currencyRe:   compileTokenRegexp(lex.CurrencyTokens),
		now:          time.Now,
	}
}

func compileMarkerRegexp(markers []string) *regexp.Regexp {
	if len(markers) == 0 {
		return regexp.MustCompile(`\b$^`) // never matches
	}
	quoted := make([]string, 0, len(markers))
	for _, m := range markers {
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(m)))
	}
	return regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
}

// compileKeywordRegexp builds a case-insensitive, word-bounded alternation
// over the keywords.
func compileKeywordRegexp(keywords []string) *regexp.Regexp {
	if len(keywords) == 0 {
		return regexp.MustCompile(`\b$^`) // never matches
	}
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// compileTokenRegexp is the unbounded variant for currency symbols, which
// sit next to digits rather than word boundaries.
func compileTokenRegexp(tokens []string) *regexp.Regexp {
	if len(tokens) == 0 {
		return regexp.MustCompile(`\b$^`) // never matches
	}
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		quoted = append(quoted, regexp.QuoteMeta(tok))
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`)
}

// Extract runs every field heuristic over the text.
func (e *Extractor) Extract(text string) FieldSet {
	text = cleanText(text)
	lower := strings.ToLower(text)

	return FieldSet{
		Deadline:    e.extractDeadline(text),
		Eligibility: e.extractSegment(text, e.eligRe, e.eligStopRe, eligibilityCap),
		Budget:      e.extractBudget(text),
		Area:        e.ClassifyArea(lower),
		IsRecurring: e.recurringRe.MatchString(lower),
	}
}

// extractDeadline collects date candidates from short windows following each
// deadline keyword, falling back to a full-text scan, and picks the earliest
// plausible one.
func (e *Extractor) extractDeadline(text string) string {
	var candidates []string
	for _, loc := range e.deadlineRe.FindAllStringIndex(text, -1) {
		start := loc[1]
		end := start + deadlineWindow
		if end > len(text) {
			end = len(text)
		}
		candidates = append(candidates, findDateCandidates(text[start:end])...)
	}

	if iso := EarliestPlausible(candidates, e.now()); iso != "" {
		return iso
	}

	// No keyword-anchored date; any plausible date on the page is better
	// than nothing.
	return EarliestPlausible(findDateCandidates(text), e.now())
}

// findDateCandidates returns every date-looking substring in s.
func findDateCandidates(s string) []string {
	s = stripOrdinals(s)
	var out []string
	for _, re := range []*regexp.Regexp{isoDateRe, slashDateRe, dayMonthRe, monthDayRe} {
		out = append(out, re.FindAllString(s, -1)...)
	}
	return out
}

// extractSegment returns the text following the first keyword match, cut at
// the next field label or sentence boundary and capped at maxLen bytes. The
// keyword label itself and its separator are not part of the segment.
func (e *Extractor) extractSegment(text string, keywordRe, stopRe *regexp.Regexp, maxLen int) string {
	loc := keywordRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	seg := strings.TrimLeft(text[loc[1]:], " \t:–—-")

	if stop := stopRe.FindStringIndex(seg); stop != nil {
		seg = seg[:stop[0]]
	}
	if end := sentenceEndRe.FindStringIndex(seg); end != nil {
		seg = seg[:end[0]+1]
	}
	return cleanText(truncateBytes(seg, maxLen))
}

// extractBudget prefers a budget-keyword segment; when no keyword appears it
// falls back to a snippet around the first currency token.
func (e *Extractor) extractBudget(text string) string {
	if seg := e.extractSegment(text, e.budgetRe, e.budgetStopRe, budgetCap); seg != "" {
		return seg
	}

	loc := e.currencyRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	start := loc[0] - 40
	if start < 0 {
		start = 0
	}
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	return cleanText(truncateBytes(text[start:], budgetCap))
}

// truncateBytes caps s at maxLen bytes without splitting a rune.
func truncateBytes(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen]
}

// ClassifyArea maps text to a research-area label via the ordered taxonomy;
// first rule with a marker hit wins.
func (e *Extractor) ClassifyArea(lower string) string {
	for _, rule := range e.lex.AreaRules {
		for _, marker := range rule.Markers {
			if strings.Contains(lower, strings.ToLower(marker)) {
				return rule.Label
			}
		}
	}
	return ""
}
