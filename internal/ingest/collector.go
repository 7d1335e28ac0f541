package ingest

import (
	"context"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// Candidate is one anchor that survived link classification.
type Candidate struct {
	URL        string
	AnchorText string
	IsPDF      bool
}

// Discoverer walks a source's listing pages with colly and collects the
// anchors that look like call detail pages.
type Discoverer struct {
	classifier *LinkClassifier
}

func NewDiscoverer(lex Lexicon) *Discoverer {
	return &Discoverer{classifier: NewLinkClassifier(lex)}
}

// Discover visits every start URL of the source and returns the classified,
// deduplicated candidates, capped at the source's limit. Candidates are
// ordered by canonical URL so runs are deterministic.
func (d *Discoverer) Discover(ctx context.Context, src SourceConfig) ([]Candidate, error) {
	domains := allowedDomains(src.StartURLs)

	c := colly.NewCollector(
		colly.UserAgent(crawlerUserAgent),
		colly.AllowedDomains(domains...),
		colly.MaxDepth(1),
		colly.DetectCharset(),
		colly.AllowURLRevisit(),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		Delay:       rateDelay(src.Fetch),
		RandomDelay: rateDelay(src.Fetch) / 2,
	})
	if src.Fetch.TimeoutSeconds > 0 {
		c.SetRequestTimeout(time.Duration(src.Fetch.TimeoutSeconds) * time.Second)
	} else {
		c.SetRequestTimeout(30 * time.Second)
	}

	seen := make(map[string]Candidate)
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Request.AbsoluteURL(e.Attr("href"))
		if href == "" {
			return
		}
		canonical := CanonicalizeURL(href)
		if _, ok := seen[canonical]; ok {
			return
		}
		text := cleanText(e.Text)
		if !d.classifier.IsCallLink(canonical, text, src.Links) {
			return
		}
		seen[canonical] = Candidate{
			URL:        canonical,
			AnchorText: text,
			IsPDF:      IsPDFLink(canonical),
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		log.Printf("[%s] listing fetch error for %s: %v", src.ID, r.Request.URL, err)
	})

	for _, start := range src.StartURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.Visit(start); err != nil {
			log.Printf("[%s] visit %s: %v", src.ID, start, err)
		}
	}
	c.Wait()

	out := make([]Candidate, 0, len(seen))
	for _, cand := range seen {
		out = append(out, cand)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })

	if max := src.Links.maxCandidates(); len(out) > max {
		out = out[:max]
	}
	return out, nil
}

func allowedDomains(startURLs []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range startURLs {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		host := strings.ToLower(u.Host)
		for _, h := range []string{host, strings.TrimPrefix(host, "www."), "www." + strings.TrimPrefix(host, "www.")} {
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	return out
}

func rateDelay(cfg FetchConfig) time.Duration {
	if cfg.RateLimitRPS > 0 {
		return time.Duration(float64(time.Second) / cfg.RateLimitRPS)
	}
	return time.Second
}

// CanonicalizeURL strips tracking parameters and fragments and lowercases
// the host, so the same page fetched twice dedups to one candidate.
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)

	q := u.Query()
	for key := range q {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") || lower == "fbclid" || lower == "gclid" || lower == "ref" {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}
