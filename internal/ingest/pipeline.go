package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pgvector/pgvector-go"
)

const (
	maxHTMLBytes    = 5 * 1024 * 1024
	summaryLen      = 280
	minTitleLength  = 4
	enricherTextCap = 8000
)

// Embedder produces a vector for semantic search. Optional, like the
// enricher.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// IngestionStats summarizes one source's harvest.
type IngestionStats struct {
	SourceID        string `json:"source_id"`
	CandidatesFound int    `json:"candidates_found"`
	CallsExtracted  int    `json:"calls_extracted"`
	Errors          int    `json:"errors"`
}

// Pipeline wires discovery, extraction, reconciliation and persistence.
// DB, Enricher and Embedder are all optional: without a pool the pipeline
// is snapshot-only, without AI it is heuristics-only.
type Pipeline struct {
	DB           *pgxpool.Pool
	Fetcher      Fetcher
	Registry     *Registry
	Extractor    *Extractor
	Discoverer   *Discoverer
	Enricher     TextEnricher
	Embedder     Embedder
	SnapshotPath string
}

func NewPipeline(pool *pgxpool.Pool, fetcher Fetcher, registry *Registry, enricher TextEnricher, embedder Embedder) *Pipeline {
	if fetcher == nil {
		fetcher = NewRateLimitedFetcher(FetchConfig{
			TimeoutSeconds: 30,
			MaxRetries:     3,
			RateLimitRPS:   1.0,
		})
	}
	lex := DefaultLexicon()
	return &Pipeline{
		DB:           pool,
		Fetcher:      fetcher,
		Registry:     registry,
		Extractor:    NewExtractor(lex),
		Discoverer:   NewDiscoverer(lex),
		Enricher:     enricher,
		Embedder:     embedder,
		SnapshotPath: "data.json",
	}
}

// Run crawls every source, reconciles against the previous snapshot, writes
// the new snapshot and upserts into the database. Per-source failures are
// logged and do not stop the run.
func (p *Pipeline) Run(ctx context.Context) (map[string]IngestionStats, error) {
	snap, err := LoadSnapshot(p.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	results := make(map[string]IngestionStats)
	var fresh []FundingCall

	for _, src := range p.Registry.Sources {
		calls, stats := p.HarvestSource(ctx, src)
		results[src.ID] = stats
		fresh = append(fresh, calls...)
		if err := ctx.Err(); err != nil {
			return results, err
		}
	}

	for _, seed := range p.Registry.Seeds {
		seed.IsRecurring = true
		fresh = append(fresh, seed)
	}

	merged := Reconcile(snap.Calls, fresh)
	if err := SaveSnapshot(p.SnapshotPath, merged); err != nil {
		return results, fmt.Errorf("save snapshot: %w", err)
	}
	log.Printf("Snapshot written: %d calls (%d fresh)", len(merged), len(fresh))

	if p.DB != nil {
		saved := 0
		for _, call := range merged {
			if err := p.SaveCall(ctx, call); err != nil {
				log.Printf("Failed to save %q: %v", call.Title, err)
			} else {
				saved++
			}
		}
		log.Printf("Database upsert complete: %d/%d", saved, len(merged))
	}

	return results, nil
}

// IngestSource harvests one source and upserts its calls, recording an
// ingest_runs row when a database is attached.
func (p *Pipeline) IngestSource(ctx context.Context, sourceID string) (IngestionStats, error) {
	src, err := p.Registry.FindSource(sourceID)
	if err != nil {
		return IngestionStats{}, err
	}

	var runID string
	if p.DB != nil {
		if err := p.DB.QueryRow(ctx,
			"INSERT INTO ingest_runs (source_id, status) VALUES ($1, 'running') RETURNING run_id",
			sourceID).Scan(&runID); err != nil {
			log.Printf("[%s] failed to create ingest run: %v", sourceID, err)
		}
	}

	calls, stats := p.HarvestSource(ctx, *src)

	saved := 0
	if p.DB != nil {
		for _, call := range calls {
			if err := p.SaveCall(ctx, call); err != nil {
				log.Printf("[%s] failed to save %q: %v", sourceID, call.Title, err)
				stats.Errors++
			} else {
				saved++
			}
		}
	}

	if p.DB != nil && runID != "" {
		status := "completed"
		if stats.CallsExtracted == 0 && stats.Errors > 0 {
			status = "failed"
		}
		if _, err := p.DB.Exec(ctx,
			`UPDATE ingest_runs SET status = $1, items_found = $2, items_saved = $3, errors = $4, completed_at = NOW() WHERE run_id = $5`,
			status, stats.CandidatesFound, saved, stats.Errors, runID); err != nil {
			log.Printf("[%s] failed to update ingest run: %v", sourceID, err)
		}
	}

	return stats, nil
}

// IngestAll runs IngestSource for every registry entry, continuing past
// failures.
func (p *Pipeline) IngestAll(ctx context.Context) (map[string]IngestionStats, error) {
	results := make(map[string]IngestionStats)
	for _, src := range p.Registry.Sources {
		stats, err := p.IngestSource(ctx, src.ID)
		if err != nil {
			log.Printf("Error ingesting source %q: %v", src.ID, err)
			stats.Errors++
		}
		results[src.ID] = stats
	}
	return results, nil
}

// HarvestSource discovers candidates under one source and extracts a call
// from each. Candidate failures are counted and skipped.
func (p *Pipeline) HarvestSource(ctx context.Context, src SourceConfig) ([]FundingCall, IngestionStats) {
	stats := IngestionStats{SourceID: src.ID}

	if rl, ok := p.Fetcher.(*RateLimitedFetcher); ok {
		for _, d := range allowedDomains(src.StartURLs) {
			rl.SetDomainConfig(d, src.Fetch)
		}
	}

	candidates, err := p.Discoverer.Discover(ctx, src)
	if err != nil {
		log.Printf("[%s] discovery failed: %v", src.ID, err)
		stats.Errors++
		return nil, stats
	}
	stats.CandidatesFound = len(candidates)
	log.Printf("[%s] %d candidate links", src.ID, len(candidates))

	var calls []FundingCall
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			break
		}
		call, err := p.extractCall(ctx, src, cand)
		if err != nil {
			log.Printf("[%s] skipping %s: %v", src.ID, cand.URL, err)
			stats.Errors++
			continue
		}
		calls = append(calls, call)
	}
	stats.CallsExtracted = len(calls)
	return calls, stats
}

// extractCall turns one candidate URL into a standardized call, layering
// the extraction passes in trust order: page text, structural overlay,
// companion PDF, then the enricher.
func (p *Pipeline) extractCall(ctx context.Context, src SourceConfig, cand Candidate) (FundingCall, error) {
	call := FundingCall{
		Agency:           src.Agency,
		Country:          src.Country,
		Category:         src.Category,
		ResearchCategory: src.ResearchCategory,
		URL:              cand.URL,
		Title:            cand.AnchorText,
	}

	if cand.IsPDF {
		text, err := FetchPDFText(ctx, p.Fetcher, cand.URL)
		if err != nil {
			return FundingCall{}, err
		}
		applyFields(&call, p.Extractor.Extract(text))
		call.Summary = sanitizeUTF8(TruncateText(cleanText(text), summaryLen))
	} else {
		doc, err := p.fetchDocument(ctx, cand.URL)
		if err != nil {
			return FundingCall{}, err
		}

		if title := pickTitle(doc); title != "" {
			call.Title = title
		}
		pageText := extractPageText(doc)

		applyFields(&call, p.Extractor.Extract(pageText))
		applyFields(&call, p.Extractor.ExtractStructured(doc))

		if pdfURL := p.findCompanionPDF(doc, cand.URL, src.Links); pdfURL != "" {
			if text, err := FetchPDFText(ctx, p.Fetcher, pdfURL); err != nil {
				log.Printf("[%s] companion pdf %s: %v", src.ID, pdfURL, err)
			} else {
				applyFields(&call, p.Extractor.Extract(text))
			}
		}

		if p.Enricher != nil && (call.Deadline == "" || (call.Eligibility == "" && call.Budget == "")) {
			p.enrich(ctx, &call, pageText)
		}

		call.Summary = sanitizeUTF8(sanitizeHTML(TruncateText(pageText, summaryLen)))
	}

	call.Title = sanitizeUTF8(cleanText(call.Title))
	if utf8.RuneCountInString(call.Title) < minTitleLength {
		return FundingCall{}, fmt.Errorf("title too short: %q", call.Title)
	}

	Standardize(&call)
	return call, nil
}

func (p *Pipeline) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	fetched, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch error: %w", err)
	}
	defer fetched.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(fetched.Body, maxHTMLBytes))
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return doc, nil
}

// enrich asks the AI capability for the still-missing fields. Enricher
// output is the least trusted pass: it only fills gaps, and its deadline
// must survive the plausibility window.
func (p *Pipeline) enrich(ctx context.Context, call *FundingCall, pageText string) {
	if len(pageText) > enricherTextCap {
		pageText = pageText[:enricherTextCap]
	}
	extracted, err := p.Enricher.ExtractCallFields(ctx, pageText)
	if err != nil {
		log.Printf("Enrichment failed for %q: %v", call.Title, err)
		return
	}

	fs := FieldSet{
		Eligibility: cleanText(extracted.Eligibility),
		Budget:      cleanText(extracted.Budget),
	}
	if extracted.Area != "" {
		if area := p.Extractor.ClassifyArea(strings.ToLower(extracted.Area)); area != "" {
			fs.Area = area
		}
	}
	if extracted.Deadline != "" {
		if iso, ok := ResolvePlausibleDate(extracted.Deadline, time.Now()); ok {
			fs.Deadline = iso
		}
	}
	applyFields(call, fs)
}

// pickTitle prefers the first h1, then the document title.
func pickTitle(doc *goquery.Document) string {
	if h1 := cleanText(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return cleanText(doc.Find("title").First().Text())
}

// extractPageText flattens the page body, dropping boilerplate containers.
func extractPageText(doc *goquery.Document) string {
	clone := doc.Selection.Clone()
	clone.Find("script, style, noscript, nav, header, footer, aside").Remove()
	body := clone.Find("body")
	if body.Length() == 0 {
		return cleanText(clone.Text())
	}
	return cleanText(body.Text())
}

// findCompanionPDF returns the first PDF link on a detail page that passes
// the source's block rules.
func (p *Pipeline) findCompanionPDF(doc *goquery.Document, baseURL string, rules LinkRules) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		abs := resolveURL(baseURL, href)
		if abs == "" || !IsPDFLink(abs) {
			return true
		}
		for _, frag := range rules.BlockPaths {
			if frag != "" && strings.Contains(strings.ToLower(abs), strings.ToLower(frag)) {
				return true
			}
		}
		found = abs
		return false
	})
	return found
}

// SaveCall upserts one call. The conflict clause mirrors the in-memory
// merge rule: populated columns are kept, empty ones take the incoming
// value, is_recurring ORs.
func (p *Pipeline) SaveCall(ctx context.Context, call FundingCall) error {
	if p.DB == nil {
		return fmt.Errorf("no database attached")
	}

	Standardize(&call)
	if call.Title == "" {
		return fmt.Errorf("missing title (url=%s)", call.URL)
	}

	var embedding interface{}
	if p.Embedder != nil {
		text := call.Title + "\n" + call.Eligibility
		if len(text) > enricherTextCap {
			text = text[:enricherTextCap]
		}
		if vec, err := p.Embedder.GenerateEmbedding(ctx, text); err != nil {
			log.Printf("Failed to generate embedding for %q: %v", call.Title, err)
		} else if len(vec) > 0 {
			embedding = pgvector.NewVector(vec)
		}
	}

	query := `
		INSERT INTO funding_calls (
			identity_key, title, agency, deadline, extended_deadline,
			eligibility, budget, area, url, category,
			research_category, country, summary, is_recurring, embedding
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15
		)
		ON CONFLICT (identity_key) DO UPDATE SET
			updated_at = NOW(),
			title = EXCLUDED.title,
			deadline = COALESCE(funding_calls.deadline, EXCLUDED.deadline),
			extended_deadline = COALESCE(funding_calls.extended_deadline, EXCLUDED.extended_deadline),
			eligibility = COALESCE(NULLIF(funding_calls.eligibility, ''), EXCLUDED.eligibility),
			budget = COALESCE(NULLIF(funding_calls.budget, ''), EXCLUDED.budget),
			area = COALESCE(NULLIF(funding_calls.area, ''), EXCLUDED.area),
			url = COALESCE(NULLIF(funding_calls.url, ''), EXCLUDED.url),
			category = COALESCE(NULLIF(funding_calls.category, ''), EXCLUDED.category),
			research_category = COALESCE(NULLIF(funding_calls.research_category, ''), EXCLUDED.research_category),
			country = COALESCE(NULLIF(funding_calls.country, ''), EXCLUDED.country),
			summary = COALESCE(NULLIF(funding_calls.summary, ''), EXCLUDED.summary),
			is_recurring = funding_calls.is_recurring OR EXCLUDED.is_recurring,
			embedding = COALESCE(funding_calls.embedding, EXCLUDED.embedding)
	`

	_, err := p.DB.Exec(ctx, query,
		call.Key(),
		sanitizeUTF8(call.Title),
		sanitizeUTF8(call.Agency),
		dateOrNil(call.Deadline),
		dateOrNil(call.ExtendedDeadline),
		sanitizeUTF8(call.Eligibility),
		sanitizeUTF8(call.Budget),
		call.Area,
		call.URL,
		call.Category,
		call.ResearchCategory,
		call.Country,
		sanitizeUTF8(call.Summary),
		call.IsRecurring,
		embedding,
	)
	return err
}

// dateOrNil maps the empty deadline sentinel to NULL for date columns.
func dateOrNil(iso string) interface{} {
	if iso == "" {
		return nil
	}
	t, err := time.Parse(isoDate, iso)
	if err != nil {
		return nil
	}
	return t
}

// sanitizeUTF8 removes invalid UTF-8 byte sequences that cause PostgreSQL errors.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

var ugcPolicy = bluemonday.UGCPolicy()

// sanitizeHTML strips unsafe tags and attributes before a snippet is stored.
func sanitizeHTML(s string) string {
	return ugcPolicy.Sanitize(s)
}

func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return CanonicalizeURL(href)
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return CanonicalizeURL(b.ResolveReference(ref).String())
}
