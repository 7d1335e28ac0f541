package ingest

// Merge folds incoming into base. A field already populated on base is
// never overwritten, empty fields take the incoming value, and IsRecurring
// is OR-combined. In particular a deadline, once set, survives every later
// merge.
func Merge(base, incoming FundingCall) FundingCall {
	out := base
	fill(&out.Title, incoming.Title)
	fill(&out.Agency, incoming.Agency)
	fill(&out.Deadline, incoming.Deadline)
	fill(&out.ExtendedDeadline, incoming.ExtendedDeadline)
	fill(&out.Eligibility, incoming.Eligibility)
	fill(&out.Budget, incoming.Budget)
	fill(&out.Area, incoming.Area)
	fill(&out.URL, incoming.URL)
	fill(&out.Category, incoming.Category)
	fill(&out.ResearchCategory, incoming.ResearchCategory)
	fill(&out.Country, incoming.Country)
	fill(&out.Summary, incoming.Summary)
	out.IsRecurring = out.IsRecurring || incoming.IsRecurring
	return out
}

func fill(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

// applyFields overlays one extraction pass onto a call, filling only fields
// the earlier passes left empty. Passes are applied in trust order, so the
// first pass to produce a value keeps it.
func applyFields(c *FundingCall, fs FieldSet) {
	fill(&c.Title, fs.Title)
	fill(&c.Deadline, fs.Deadline)
	fill(&c.Eligibility, fs.Eligibility)
	fill(&c.Budget, fs.Budget)
	fill(&c.Area, fs.Area)
	c.IsRecurring = c.IsRecurring || fs.IsRecurring
}
