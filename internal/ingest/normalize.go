package ingest

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
	ordinalRe  = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
)

// normalizeSpace collapses runs of whitespace into single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanText normalizes whitespace (alias for normalizeSpace)
func cleanText(s string) string {
	return normalizeSpace(s)
}

// stripOrdinals removes English ordinal suffixes after digits, so
// "3rd March 2025" parses the same as "3 March 2025".
func stripOrdinals(s string) string {
	return ordinalRe.ReplaceAllString(s, "$1")
}

// IdentityKey builds the dedup key for a call: lowercase title and agency
// with every non-alphanumeric run collapsed to a single space. Records with
// equal keys are the same call regardless of punctuation, case or spacing.
func IdentityKey(title, agency string) string {
	t := nonAlnumRe.ReplaceAllString(strings.ToLower(title), " ")
	a := nonAlnumRe.ReplaceAllString(strings.ToLower(agency), " ")
	return strings.TrimSpace(t) + "|" + strings.TrimSpace(a)
}

// TruncateText cuts a string to max length, appending ellipsis if truncated.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen > 3 {
		return text[:maxLen-3] + "..."
	}
	return text[:maxLen]
}

// HTMLToText converts HTML to plain text, collapsing whitespace.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html // Fallback to original if parsing fails
	}
	return cleanText(doc.Text())
}

// Standardize cleans a call in place and applies defaults: whitespace
// normalization on every text field, deadline run through the resolver,
// and "Global" when no country is known. Idempotent.
func Standardize(c *FundingCall) {
	c.Title = cleanText(c.Title)
	c.Agency = cleanText(c.Agency)
	c.Eligibility = cleanText(c.Eligibility)
	c.Budget = cleanText(c.Budget)
	c.Area = cleanText(c.Area)
	c.Category = cleanText(c.Category)
	c.ResearchCategory = cleanText(c.ResearchCategory)
	c.Country = cleanText(c.Country)
	c.Summary = cleanText(c.Summary)

	if c.Deadline != "" {
		if iso, ok := ResolveDate(c.Deadline); ok {
			c.Deadline = iso
		} else {
			c.Deadline = ""
		}
	}
	if c.ExtendedDeadline != "" {
		if iso, ok := ResolveDate(c.ExtendedDeadline); ok {
			c.ExtendedDeadline = iso
		} else {
			c.ExtendedDeadline = ""
		}
	}

	if c.Country == "" {
		c.Country = "Global"
	}
}
