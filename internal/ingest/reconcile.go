package ingest

import "sort"

// deadlineSentinel sorts undated calls after every dated one.
const deadlineSentinel = "9999-12-31"

// Reconcile folds a fresh batch into the existing call set and returns the
// deduplicated, ordered result. Matching is by identity key. An existing
// record is the merge base for anything the new run found for the same
// call, so a stored deadline never regresses. When the same key shows up
// twice within the fresh batch, the more complete record becomes the base.
// Reconcile(existing, nil) returns existing unchanged, so repeated runs
// converge.
func Reconcile(existing, fresh []FundingCall) []FundingCall {
	out := make([]FundingCall, 0, len(existing)+len(fresh))
	index := make(map[string]int, len(existing))
	freshKeys := make(map[string]bool, len(fresh))

	for _, c := range existing {
		Standardize(&c)
		if c.Title == "" {
			continue
		}
		key := c.Key()
		if i, ok := index[key]; ok {
			out[i] = Merge(out[i], c)
			continue
		}
		index[key] = len(out)
		out = append(out, c)
	}

	for _, c := range fresh {
		Standardize(&c)
		if c.Title == "" {
			continue
		}
		key := c.Key()
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			freshKeys[key] = true
			out = append(out, c)
			continue
		}
		if freshKeys[key] && c.CompletenessScore() > out[i].CompletenessScore() {
			out[i] = Merge(c, out[i])
		} else {
			out[i] = Merge(out[i], c)
		}
	}

	SortCalls(out)
	return out
}

// SortCalls orders calls by deadline ascending with undated calls last,
// breaking ties on normalized title.
func SortCalls(calls []FundingCall) {
	sort.SliceStable(calls, func(i, j int) bool {
		di, dj := sortDeadline(calls[i]), sortDeadline(calls[j])
		if di != dj {
			return di < dj
		}
		return calls[i].Key() < calls[j].Key()
	})
}

func sortDeadline(c FundingCall) string {
	if c.Deadline == "" {
		return deadlineSentinel
	}
	return c.Deadline
}
