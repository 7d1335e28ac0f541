package ingest

import "testing"

func TestExtractStructuredTable(t *testing.T) {
	e := testExtractor()

	html := `<html><body><table>
		<tr><th>Scheme</th><td>Core Research Grant</td></tr>
		<tr><th>Closing date</th><td>15 November 2025</td></tr>
		<tr><th>Eligibility</th><td>Faculty at recognized institutions</td></tr>
		<tr><th>Budget</th><td>Rs. 30 lakh per project</td></tr>
		<tr><th>Subject</th><td>Clinical medicine</td></tr>
	</table></body></html>`

	fs := e.ExtractStructuredHTML(html)

	if fs.Deadline != "2025-11-15" {
		t.Errorf("deadline = %q, want 2025-11-15", fs.Deadline)
	}
	if fs.Eligibility != "Faculty at recognized institutions" {
		t.Errorf("eligibility = %q", fs.Eligibility)
	}
	if fs.Budget != "Rs. 30 lakh per project" {
		t.Errorf("budget = %q", fs.Budget)
	}
	if fs.Area != "Medical Research" {
		t.Errorf("area = %q, want Medical Research", fs.Area)
	}
}

func TestExtractStructuredDefinitionList(t *testing.T) {
	e := testExtractor()

	html := `<html><body><dl>
		<dt>Deadline</dt><dd>31/12/2025</dd>
		<dt>Who can apply</dt><dd>Startups registered in India</dd>
	</dl></body></html>`

	fs := e.ExtractStructuredHTML(html)

	if fs.Deadline != "2025-12-31" {
		t.Errorf("deadline = %q, want 2025-12-31", fs.Deadline)
	}
	if fs.Eligibility != "Startups registered in India" {
		t.Errorf("eligibility = %q", fs.Eligibility)
	}
}

func TestExtractStructuredTimeElement(t *testing.T) {
	e := testExtractor()

	html := `<html><body>
		<p>Apply before <time datetime="2025-10-20">20 October</time>.</p>
	</body></html>`

	fs := e.ExtractStructuredHTML(html)
	if fs.Deadline != "2025-10-20" {
		t.Errorf("deadline = %q, want 2025-10-20", fs.Deadline)
	}
}

func TestExtractStructuredImplausibleTimeIgnored(t *testing.T) {
	e := testExtractor()

	html := `<html><body><time datetime="2019-01-01">old</time></body></html>`
	fs := e.ExtractStructuredHTML(html)
	if fs.Deadline != "" {
		t.Errorf("deadline = %q, want empty", fs.Deadline)
	}
}

func TestExtractStructuredJSONLD(t *testing.T) {
	e := testExtractor()

	html := `<html><head><script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "WebPage", "name": "Quantum Call 2026"},
			{"@type": "Event", "validThrough": "2026-02-28"}
		]
	}
	</script></head><body></body></html>`

	fs := e.ExtractStructuredHTML(html)

	if fs.Deadline != "2026-02-28" {
		t.Errorf("deadline = %q, want 2026-02-28", fs.Deadline)
	}
	if fs.Title != "Quantum Call 2026" {
		t.Errorf("title = %q, want Quantum Call 2026", fs.Title)
	}
}

func TestExtractStructuredMalformedJSONLD(t *testing.T) {
	e := testExtractor()

	html := `<html><head><script type="application/ld+json">{not json</script></head><body></body></html>`
	fs := e.ExtractStructuredHTML(html)
	if fs.Deadline != "" || fs.Title != "" {
		t.Errorf("expected empty field set, got %+v", fs)
	}
}
