package models

import (
	"time"

	"github.com/google/uuid"
)

// FundingCall is the API-facing shape of a stored call. Deadline fields are
// ISO YYYY-MM-DD strings with "" meaning unknown, matching the snapshot
// format.
type FundingCall struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Agency           string    `json:"agency"`
	Deadline         string    `json:"deadline"`
	ExtendedDeadline string    `json:"extendedDeadline"`
	Eligibility      string    `json:"eligibility"`
	Budget           string    `json:"budget"`
	Area             string    `json:"area"`
	URL              string    `json:"url"`
	Category         string    `json:"category"`
	ResearchCategory string    `json:"researchCategory"`
	Country          string    `json:"country"`
	Summary          string    `json:"summary"`
	IsRecurring      bool      `json:"isRecurring"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CallStatus derives the presentation status of a call from its deadline.
// Recurring calls are always open; undated calls can't be judged.
func CallStatus(deadline string, isRecurring bool, now time.Time) string {
	if isRecurring {
		return "open"
	}
	if deadline == "" {
		return "undated"
	}
	t, err := time.Parse("2006-01-02", deadline)
	if err != nil {
		return "undated"
	}
	if t.Before(now.Truncate(24 * time.Hour)) {
		return "closed"
	}
	if t.Before(now.AddDate(0, 0, 14)) {
		return "closing-soon"
	}
	return "open"
}
