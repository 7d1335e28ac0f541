package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/cfp-radar/internal/db"
)

// Quick visual check of what the scraper actually persisted.
func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	var total, withDeadline, withEligibility, withBudget, recurring int
	err = pool.QueryRow(ctx, `
		SELECT
			count(*),
			count(deadline),
			count(NULLIF(eligibility, '')),
			count(NULLIF(budget, '')),
			count(*) FILTER (WHERE is_recurring)
		FROM funding_calls
	`).Scan(&total, &withDeadline, &withEligibility, &withBudget, &recurring)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	summary := table.NewWriter()
	summary.SetOutputMirror(os.Stdout)
	summary.AppendHeader(table.Row{"Total", "Deadline", "Eligibility", "Budget", "Recurring"})
	summary.AppendRow(table.Row{total, withDeadline, withEligibility, withBudget, recurring})
	summary.Render()

	rows, err := pool.Query(ctx, `
		SELECT title, agency, deadline, area, is_recurring
		FROM funding_calls
		ORDER BY deadline ASC NULLS LAST, title ASC
		LIMIT 20
	`)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Title", "Agency", "Deadline", "Area", "Recurring"})

	for rows.Next() {
		var title, agency, area string
		var deadline *time.Time
		var isRecurring bool
		if err := rows.Scan(&title, &agency, &deadline, &area, &isRecurring); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}

		due := ""
		if deadline != nil {
			due = deadline.Format("2006-01-02")
		}
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		t.AppendRow(table.Row{title, agency, due, area, isRecurring})
	}
	t.Render()
}
