package db

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/david/cfp-radar/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ListParams filters and pages the call listing. Deadline bounds are ISO
// YYYY-MM-DD strings.
type ListParams struct {
	Query          string
	QueryEmbedding []float32
	Agency         string
	Country        string
	Area           string
	Category       string
	Recurring      *bool
	DeadlineBefore string
	DeadlineAfter  string
	Status         string // "open", "closed", "" = all
	Limit          int
	Offset         int
}

type ListResult struct {
	Items  []models.FundingCall `json:"items"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// selectCols is the column list shared by every call query.
const selectCols = `id, title, agency, deadline, extended_deadline,
	eligibility, budget, area, url, category,
	research_category, country, summary, is_recurring, created_at, updated_at`

func scanCall(scan func(dest ...interface{}) error) (models.FundingCall, error) {
	var c models.FundingCall
	var deadline, extendedDeadline *time.Time

	err := scan(
		&c.ID, &c.Title, &c.Agency, &deadline, &extendedDeadline,
		&c.Eligibility, &c.Budget, &c.Area, &c.URL, &c.Category,
		&c.ResearchCategory, &c.Country, &c.Summary, &c.IsRecurring, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}

	if deadline != nil {
		c.Deadline = deadline.Format("2006-01-02")
	}
	if extendedDeadline != nil {
		c.ExtendedDeadline = extendedDeadline.Format("2006-01-02")
	}
	c.Status = models.CallStatus(c.Deadline, c.IsRecurring, time.Now().UTC())

	return c, nil
}

// ListCalls runs the filtered listing. Default order is deadline ascending
// with undated calls last; when a query embedding is supplied the result is
// ordered by vector distance instead.
func (s *Store) ListCalls(ctx context.Context, params ListParams) (*ListResult, error) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (title ILIKE '%%' || $%d || '%%' OR eligibility ILIKE '%%' || $%d || '%%' OR summary ILIKE '%%' || $%d || '%%')", argIdx, argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}
	if params.Agency != "" {
		where += fmt.Sprintf(" AND agency = $%d", argIdx)
		args = append(args, params.Agency)
		argIdx++
	}
	if params.Country != "" {
		where += fmt.Sprintf(" AND country = $%d", argIdx)
		args = append(args, params.Country)
		argIdx++
	}
	if params.Area != "" {
		where += fmt.Sprintf(" AND area = $%d", argIdx)
		args = append(args, params.Area)
		argIdx++
	}
	if params.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, params.Category)
		argIdx++
	}
	if params.Recurring != nil {
		where += fmt.Sprintf(" AND is_recurring = $%d", argIdx)
		args = append(args, *params.Recurring)
		argIdx++
	}
	if params.DeadlineBefore != "" {
		where += fmt.Sprintf(" AND deadline <= $%d", argIdx)
		args = append(args, params.DeadlineBefore)
		argIdx++
	}
	if params.DeadlineAfter != "" {
		where += fmt.Sprintf(" AND deadline >= $%d", argIdx)
		args = append(args, params.DeadlineAfter)
		argIdx++
	}

	switch params.Status {
	case "open":
		where += " AND (is_recurring = true OR deadline >= CURRENT_DATE)"
	case "closed":
		where += " AND is_recurring = false AND deadline < CURRENT_DATE"
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM funding_calls " + where
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM funding_calls %s", selectCols, where)

	if len(params.QueryEmbedding) > 0 {
		selectSQL += fmt.Sprintf(`
			ORDER BY
				CASE WHEN embedding IS NULL THEN 1 ELSE 0 END ASC,
				COALESCE(1 - (embedding <=> $%d), -1) DESC,
				deadline ASC NULLS LAST, title ASC
		`, argIdx)
		args = append(args, pgvector.NewVector(params.QueryEmbedding))
		argIdx++
	} else {
		selectSQL += " ORDER BY deadline ASC NULLS LAST, title ASC"
	}

	if params.Limit <= 0 {
		params.Limit = 50
	}
	selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var items []models.FundingCall
	for rows.Next() {
		c, err := scanCall(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	if items == nil {
		items = []models.FundingCall{}
	}

	return &ListResult{
		Items:  items,
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

func (s *Store) GetCall(ctx context.Context, id string) (*models.FundingCall, error) {
	sql := fmt.Sprintf("SELECT %s FROM funding_calls WHERE id = $1", selectCols)
	row := s.pool.QueryRow(ctx, sql, id)

	c, err := scanCall(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}
	return &c, nil
}

// GetAgencies lists the distinct agencies with stored calls.
func (s *Store) GetAgencies(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT agency FROM funding_calls WHERE agency != '' ORDER BY agency")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agencies []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err == nil {
			agencies = append(agencies, a)
		}
	}
	return agencies, nil
}

func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM funding_calls").Scan(&total)
	stats["total"] = total

	var agencies int
	s.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT agency) FROM funding_calls").Scan(&agencies)
	stats["agencies"] = agencies

	var recurring int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM funding_calls WHERE is_recurring = true").Scan(&recurring)
	stats["recurring"] = recurring

	var upcoming int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM funding_calls WHERE deadline >= CURRENT_DATE").Scan(&upcoming)
	stats["upcoming_deadlines"] = upcoming

	areaCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT COALESCE(NULLIF(area, ''), 'unclassified'), COUNT(*) FROM funding_calls GROUP BY 1")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var area string
			var count int
			if scanErr := rows.Scan(&area, &count); scanErr == nil {
				areaCounts[area] = count
			}
		}
	}
	stats["area_counts"] = areaCounts

	return stats, nil
}

var keyNonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

func identityKey(title, agency string) string {
	t := keyNonAlnumRe.ReplaceAllString(strings.ToLower(title), " ")
	a := keyNonAlnumRe.ReplaceAllString(strings.ToLower(agency), " ")
	return strings.TrimSpace(t) + "|" + strings.TrimSpace(a)
}

// DedupeCalls collapses rows whose recomputed identity keys collide, which
// can happen when the normalization rules change after rows were written.
// The most complete row of each group survives. Returns the number of rows
// removed.
func (s *Store) DedupeCalls(ctx context.Context) (int, error) {
	rows, err := s.pool.Query(ctx, "SELECT id::text, title, agency, deadline, eligibility, budget, area, created_at FROM funding_calls")
	if err != nil {
		return 0, fmt.Errorf("dedupe query failed: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		id        string
		score     int
		createdAt time.Time
	}
	groups := make(map[string][]candidate)

	for rows.Next() {
		var id, title, agency, eligibility, budget, area string
		var deadline *time.Time
		var createdAt time.Time
		if err := rows.Scan(&id, &title, &agency, &deadline, &eligibility, &budget, &area, &createdAt); err != nil {
			return 0, fmt.Errorf("dedupe scan failed: %w", err)
		}

		score := 0
		if deadline != nil {
			score++
		}
		for _, v := range []string{eligibility, budget, area} {
			if v != "" {
				score++
			}
		}
		key := identityKey(title, agency)
		groups[key] = append(groups[key], candidate{id: id, score: score, createdAt: createdAt})
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("dedupe iteration failed: %w", err)
	}

	removed := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		best := 0
		for i := 1; i < len(group); i++ {
			if group[i].score > group[best].score ||
				(group[i].score == group[best].score && group[i].createdAt.Before(group[best].createdAt)) {
				best = i
			}
		}
		for i, c := range group {
			if i == best {
				continue
			}
			if _, err := s.pool.Exec(ctx, "DELETE FROM funding_calls WHERE id = $1", c.id); err != nil {
				return removed, fmt.Errorf("dedupe delete failed: %w", err)
			}
			removed++
		}
	}

	return removed, nil
}
