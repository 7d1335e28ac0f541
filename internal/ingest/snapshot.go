package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Snapshot is the on-disk JSON envelope for the reconciled call set. It is
// both the pipeline's output artifact and the prior state loaded at the
// start of the next run.
type Snapshot struct {
	UpdatedUTC string        `json:"updated_utc"`
	Calls      []FundingCall `json:"calls"`
}

// LoadSnapshot reads a snapshot file. A missing file is not an error: the
// first run starts from an empty state.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{Calls: []FundingCall{}}, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Calls == nil {
		snap.Calls = []FundingCall{}
	}
	return &snap, nil
}

// SaveSnapshot writes the call set with a fresh updated_utc stamp. The file
// is written to a temp sibling and renamed so readers never see a partial
// snapshot.
func SaveSnapshot(path string, calls []FundingCall) error {
	if calls == nil {
		calls = []FundingCall{}
	}
	snap := Snapshot{
		UpdatedUTC: time.Now().UTC().Format(time.RFC3339),
		Calls:      calls,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
