package ingest

import "testing"

func TestLoadRegistryEmbedded(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	if len(reg.Sources) == 0 {
		t.Fatal("no sources in embedded registry")
	}

	dst, err := reg.FindSource("dst")
	if err != nil {
		t.Fatalf("FindSource(dst): %v", err)
	}
	if dst.Agency == "" || dst.Country != "India" {
		t.Errorf("dst config incomplete: %+v", dst)
	}
	if len(dst.StartURLs) == 0 {
		t.Error("dst has no start URLs")
	}
	if dst.Links.MaxCandidates != 60 {
		t.Errorf("dst max_candidates = %d, want 60", dst.Links.MaxCandidates)
	}
	if dst.Fetch.RateLimitRPS != 0.5 {
		t.Errorf("dst rate_limit_rps = %v, want 0.5", dst.Fetch.RateLimitRPS)
	}

	if _, err := reg.FindSource("nope"); err == nil {
		t.Error("FindSource must fail for unknown IDs")
	}
}

func TestLoadRegistrySeeds(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Seeds) == 0 {
		t.Fatal("no seeds in embedded registry")
	}

	for _, seed := range reg.Seeds {
		if seed.Title == "" || seed.Agency == "" {
			t.Errorf("seed missing identity fields: %+v", seed)
		}
		if !seed.IsRecurring {
			t.Errorf("seed %q not marked recurring", seed.Title)
		}
	}
}
