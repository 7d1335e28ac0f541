package ingest

// AreaRule maps marker terms to a research-area label. Rules are checked in
// order and the first hit wins, so broader labels must come last.
type AreaRule struct {
	Label   string   `yaml:"label"`
	Markers []string `yaml:"markers"`
}

// Lexicon holds every term list the extractor and link classifier consult.
// It is plain data so deployments can tune it per corpus without touching
// the heuristics.
type Lexicon struct {
	// Link classification.
	LinkKeywords   []string `yaml:"link_keywords"`
	LinkExclusions []string `yaml:"link_exclusions"`

	// Field extraction.
	DeadlineKeywords    []string   `yaml:"deadline_keywords"`
	EligibilityKeywords []string   `yaml:"eligibility_keywords"`
	BudgetKeywords      []string   `yaml:"budget_keywords"`
	CurrencyTokens      []string   `yaml:"currency_tokens"`
	RecurringMarkers    []string   `yaml:"recurring_markers"`
	AreaRules           []AreaRule `yaml:"area_rules"`
}

// DefaultLexicon returns the built-in term lists. Sources can override
// parts of it through the registry.
func DefaultLexicon() Lexicon {
	return Lexicon{
		LinkKeywords: []string{
			"call", "grant", "fund", "funding", "proposal", "fellowship",
			"scheme", "programme", "opportunity", "apply",
		},
		LinkExclusions: []string{
			"faq", "form", "guideline", "tender", "result", "award",
		},
		DeadlineKeywords: []string{
			"deadline", "last date", "closing date", "apply by", "due date",
			"closes on", "submission by", "submit by",
		},
		EligibilityKeywords: []string{
			"eligibility", "eligible", "who can apply", "applicant",
		},
		BudgetKeywords: []string{
			"budget", "grant amount", "funding amount", "financial support",
			"outlay", "award amount",
		},
		CurrencyTokens: []string{
			"₹", "rs.", "rs ", "inr", "lakh", "crore",
			"$", "usd", "€", "eur", "£", "gbp", "million",
		},
		RecurringMarkers: []string{
			"annual", "every year", "rolling", "ongoing", "always open",
			"throughout the year", "year-round", "continuous", "anytime",
		},
		AreaRules: []AreaRule{
			{Label: "Medical Research", Markers: []string{"medical", "health", "biomedical", "clinical", "medicine", "disease"}},
			{Label: "Biotechnology", Markers: []string{"biotech", "biotechnology", "genomic", "gene therapy", "life science"}},
			{Label: "Physical Sciences", Markers: []string{"physics", "astronomy", "astrophysics", "space"}},
			{Label: "Chemical Sciences", Markers: []string{"chemistry", "chemical"}},
			{Label: "Science & Technology", Markers: []string{"engineering", "technology", "innovation", "science"}},
			{Label: "Advanced Materials", Markers: []string{"materials", "material science", "nano"}},
			{Label: "Science & Innovation", Markers: []string{"research"}},
		},
	}
}
