package ingest

import (
	"context"
	"io"
	"time"
)

// FundingCall is the canonical record produced by the pipeline. Every string
// field uses "" as the explicit unknown sentinel; fields are never omitted
// from serialized output.
type FundingCall struct {
	Title            string `json:"title" yaml:"title"`
	Agency           string `json:"agency" yaml:"agency"`
	Deadline         string `json:"deadline" yaml:"deadline,omitempty"` // ISO YYYY-MM-DD, or ""
	ExtendedDeadline string `json:"extendedDeadline" yaml:"extendedDeadline,omitempty"`
	Eligibility      string `json:"eligibility" yaml:"eligibility,omitempty"`
	Budget           string `json:"budget" yaml:"budget,omitempty"`
	Area             string `json:"area" yaml:"area,omitempty"`
	URL              string `json:"url" yaml:"url,omitempty"`
	Category         string `json:"category" yaml:"category,omitempty"`
	ResearchCategory string `json:"researchCategory" yaml:"researchCategory,omitempty"`
	Country          string `json:"country" yaml:"country,omitempty"`
	Summary          string `json:"summary" yaml:"summary,omitempty"`
	IsRecurring      bool   `json:"isRecurring" yaml:"isRecurring,omitempty"`
}

// Key returns the record's dedup identity: normalized title + agency.
func (c FundingCall) Key() string {
	return IdentityKey(c.Title, c.Agency)
}

// CompletenessScore counts the populated high-value fields
// (deadline, eligibility, budget, area). Used to pick the merge base
// among same-run duplicates.
func (c FundingCall) CompletenessScore() int {
	score := 0
	for _, v := range []string{c.Deadline, c.Eligibility, c.Budget, c.Area} {
		if v != "" {
			score++
		}
	}
	return score
}

// FetchedDocument represents the raw result of a fetch operation.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
	Headers     map[string][]string
}

// Fetcher retrieves raw content from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedDocument, error)
}

// TextEnricher is the optional AI capability used as a last-resort field
// extractor. A nil enricher disables enrichment; callers tolerate errors
// and keep the heuristic output.
type TextEnricher interface {
	ExtractCallFields(ctx context.Context, pageText string) (*EnrichedFields, error)
}

// EnrichedFields is the subset of call fields an enricher may fill in.
// Empty strings mean the enricher could not determine the value.
type EnrichedFields struct {
	Title       string `json:"title"`
	Deadline    string `json:"deadline"`
	Eligibility string `json:"eligibility"`
	Budget      string `json:"budget"`
	Area        string `json:"area"`
}
