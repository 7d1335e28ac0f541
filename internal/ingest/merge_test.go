package ingest

import (
	"reflect"
	"testing"
)

func TestMerge(t *testing.T) {
	base := FundingCall{
		Title:    "Core Research Grant",
		Agency:   "SERB",
		Deadline: "2025-11-15",
		Country:  "India",
	}
	incoming := FundingCall{
		Title:       "Core Research Grant (detail page)",
		Agency:      "SERB",
		Deadline:    "2026-01-01",
		Eligibility: "Faculty members",
		Budget:      "Rs. 30 lakh",
		IsRecurring: true,
	}

	got := Merge(base, incoming)

	if got.Title != "Core Research Grant" {
		t.Errorf("populated title overwritten: %q", got.Title)
	}
	if got.Deadline != "2025-11-15" {
		t.Errorf("populated deadline overwritten: %q", got.Deadline)
	}
	if got.Eligibility != "Faculty members" || got.Budget != "Rs. 30 lakh" {
		t.Errorf("empty fields not filled: %+v", got)
	}
	if !got.IsRecurring {
		t.Error("IsRecurring not OR-combined")
	}
}

func TestMergeDisjointFieldsCommutes(t *testing.T) {
	a := FundingCall{Title: "X", Agency: "A", Deadline: "2025-12-01", Country: "India"}
	b := FundingCall{Eligibility: "Anyone", Budget: "₹10 lakh", Summary: "short"}

	ab := Merge(a, b)
	ba := Merge(b, a)

	if !reflect.DeepEqual(ab, ba) {
		t.Errorf("disjoint merge not commutative:\n ab=%+v\n ba=%+v", ab, ba)
	}
}

func TestApplyFieldsTrustOrder(t *testing.T) {
	call := FundingCall{Title: "Kept", Deadline: "2025-10-01"}

	applyFields(&call, FieldSet{
		Title:       "Replaced?",
		Deadline:    "2026-06-06",
		Eligibility: "PhD holders",
		IsRecurring: true,
	})

	if call.Title != "Kept" || call.Deadline != "2025-10-01" {
		t.Errorf("earlier pass lost its values: %+v", call)
	}
	if call.Eligibility != "PhD holders" {
		t.Errorf("later pass did not fill empty field: %q", call.Eligibility)
	}
	if !call.IsRecurring {
		t.Error("IsRecurring not propagated")
	}
}
