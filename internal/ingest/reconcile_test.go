package ingest

import (
	"reflect"
	"testing"
)

func TestReconcileMergesByIdentityKey(t *testing.T) {
	existing := []FundingCall{
		{Title: "Core Research Grant", Agency: "SERB", Deadline: "2025-11-15"},
	}
	fresh := []FundingCall{
		// Same call, different punctuation and casing.
		{Title: "CORE RESEARCH GRANT!", Agency: "serb", Eligibility: "Faculty members", Deadline: "2026-01-10"},
		{Title: "New Fellowship", Agency: "DST", Deadline: "2025-10-01"},
	}

	got := Reconcile(existing, fresh)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}

	// Sorted by deadline: fellowship (Oct) before the grant (Nov).
	if got[0].Title != "New Fellowship" {
		t.Errorf("got[0] = %q, want New Fellowship", got[0].Title)
	}
	grant := got[1]
	if grant.Deadline != "2025-11-15" {
		t.Errorf("existing deadline regressed: %q", grant.Deadline)
	}
	if grant.Eligibility != "Faculty members" {
		t.Errorf("fresh eligibility not merged: %q", grant.Eligibility)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	calls := []FundingCall{
		{Title: "B Call", Agency: "DST", Deadline: "2025-12-01", Country: "India"},
		{Title: "A Call", Agency: "DST", Country: "India"},
		{Title: "C Call", Agency: "ICMR", Deadline: "2025-10-05", Country: "India"},
	}

	once := Reconcile(calls, nil)
	twice := Reconcile(once, nil)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("reconcile not idempotent:\n once=%+v\n twice=%+v", once, twice)
	}
}

func TestReconcileSameRunDuplicatesUseMostComplete(t *testing.T) {
	fresh := []FundingCall{
		{Title: "Quantum Call", Agency: "DST", Summary: "sparse listing row"},
		{Title: "Quantum Call", Agency: "DST", Deadline: "2026-02-01", Eligibility: "Startups", Budget: "₹50 lakh", Summary: "detail page"},
	}

	got := Reconcile(nil, fresh)

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	c := got[0]
	if c.Deadline != "2026-02-01" || c.Eligibility != "Startups" {
		t.Errorf("more complete record did not win: %+v", c)
	}
	if c.Summary != "detail page" {
		t.Errorf("base summary = %q, want the complete record's", c.Summary)
	}
}

func TestReconcileSkipsUntitled(t *testing.T) {
	fresh := []FundingCall{
		{Title: "", Agency: "DST", Deadline: "2026-02-01"},
		{Title: "Real Call", Agency: "DST"},
	}
	got := Reconcile(nil, fresh)
	if len(got) != 1 || got[0].Title != "Real Call" {
		t.Errorf("untitled record not skipped: %+v", got)
	}
}

func TestSortCallsUndatedLast(t *testing.T) {
	calls := []FundingCall{
		{Title: "Undated", Agency: "A"},
		{Title: "Late", Agency: "A", Deadline: "2026-05-01"},
		{Title: "Early", Agency: "A", Deadline: "2025-10-01"},
	}

	SortCalls(calls)

	want := []string{"Early", "Late", "Undated"}
	for i, w := range want {
		if calls[i].Title != w {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i].Title, w)
		}
	}
}
