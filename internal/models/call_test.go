package models

import (
	"testing"
	"time"
)

func TestCallStatus(t *testing.T) {
	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		deadline  string
		recurring bool
		want      string
	}{
		{"recurring always open", "2020-01-01", true, "open"},
		{"recurring without deadline", "", true, "open"},
		{"no deadline", "", false, "undated"},
		{"garbage deadline", "soon", false, "undated"},
		{"past deadline", "2025-08-31", false, "closed"},
		{"same day counts as closing soon", "2025-09-01", false, "closing-soon"},
		{"within two weeks", "2025-09-10", false, "closing-soon"},
		{"comfortably ahead", "2025-12-01", false, "open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CallStatus(tt.deadline, tt.recurring, now); got != tt.want {
				t.Errorf("CallStatus(%q, %v) = %q, want %q", tt.deadline, tt.recurring, got, tt.want)
			}
		})
	}
}
