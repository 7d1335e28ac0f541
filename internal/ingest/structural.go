package ingest

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var jsonLDDeadlineKeys = []string{
	"deadline", "endDate", "validThrough", "dateDue", "applicationDeadline",
}

var jsonLDTitleKeys = []string{"name", "headline"}

// ExtractStructured reads machine-readable page structure: labelled table
// rows, definition lists, <time> elements, deadline metas and JSON-LD
// blocks. It reports what it found; precedence against the plain-text pass
// is the caller's concern.
func (e *Extractor) ExtractStructured(doc *goquery.Document) FieldSet {
	var fs FieldSet

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th, td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(cleanText(cells.First().Text()))
		value := cleanText(cells.Eq(1).Text())
		e.applyLabelled(&fs, label, value)
	})

	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		terms := dl.Find("dt")
		defs := dl.Find("dd")
		n := terms.Length()
		if defs.Length() < n {
			n = defs.Length()
		}
		for i := 0; i < n; i++ {
			label := strings.ToLower(cleanText(terms.Eq(i).Text()))
			value := cleanText(defs.Eq(i).Text())
			e.applyLabelled(&fs, label, value)
		}
	})

	doc.Find("time").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		raw, _ := el.Attr("datetime")
		if raw == "" {
			raw = el.Text()
		}
		if iso, ok := ResolvePlausibleDate(raw, e.now()); ok && fs.Deadline == "" {
			fs.Deadline = iso
			return false
		}
		return true
	})

	doc.Find(`meta[name="deadline"], meta[property="deadline"]`).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		content, _ := el.Attr("content")
		if iso, ok := ResolvePlausibleDate(content, e.now()); ok && fs.Deadline == "" {
			fs.Deadline = iso
			return false
		}
		return true
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, el *goquery.Selection) {
		e.applyJSONLD(&fs, el.Text())
	})

	return fs
}

// ExtractStructuredHTML is ExtractStructured over a raw HTML string.
func (e *Extractor) ExtractStructuredHTML(html string) FieldSet {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return FieldSet{}
	}
	return e.ExtractStructured(doc)
}

// applyLabelled routes one label/value pair from a table or definition list
// to the matching field. First hit per field wins.
func (e *Extractor) applyLabelled(fs *FieldSet, label, value string) {
	if value == "" {
		return
	}
	switch {
	case fs.Deadline == "" && containsAny(label, e.lex.DeadlineKeywords):
		if iso, ok := ResolvePlausibleDate(value, e.now()); ok {
			fs.Deadline = iso
		}
	case fs.Eligibility == "" && containsAny(label, e.lex.EligibilityKeywords):
		fs.Eligibility = TruncateText(value, eligibilityCap)
	case fs.Budget == "" && containsAny(label, e.lex.BudgetKeywords):
		fs.Budget = TruncateText(value, budgetCap)
	case fs.Area == "" && containsAny(label, []string{"area", "subject", "discipline", "field"}):
		if area := e.ClassifyArea(strings.ToLower(value)); area != "" {
			fs.Area = area
		} else {
			fs.Area = value
		}
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// applyJSONLD walks a JSON-LD payload for deadline and title keys. Arrays
// and nested objects are all visited; invalid JSON is ignored.
func (e *Extractor) applyJSONLD(fs *FieldSet, payload string) {
	var node interface{}
	if err := json.Unmarshal([]byte(payload), &node); err != nil {
		return
	}
	e.walkJSONLD(fs, node)
}

func (e *Extractor) walkJSONLD(fs *FieldSet, node interface{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for _, key := range jsonLDDeadlineKeys {
			if fs.Deadline != "" {
				break
			}
			if raw, ok := v[key].(string); ok {
				if iso, ok := ResolvePlausibleDate(raw, e.now()); ok {
					fs.Deadline = iso
				}
			}
		}
		for _, key := range jsonLDTitleKeys {
			if fs.Title != "" {
				break
			}
			if raw, ok := v[key].(string); ok && cleanText(raw) != "" {
				fs.Title = cleanText(raw)
			}
		}
		for _, child := range v {
			e.walkJSONLD(fs, child)
		}
	case []interface{}:
		for _, child := range v {
			e.walkJSONLD(fs, child)
		}
	}
}
