package store

import (
	"database/sql"
	"fmt"
)

const engagementColumns = `date, mu, phi, sigma, quality_score, mu_before, phi_before, tier`

// UpsertEngagement inserts or replaces the rating row for r.Date.
func (q *Queries) UpsertEngagement(r *EngagementRecord) error {
	_, err := q.q.Exec(
		`INSERT INTO engagement_history (`+engagementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			mu = excluded.mu,
			phi = excluded.phi,
			sigma = excluded.sigma,
			quality_score = excluded.quality_score,
			mu_before = excluded.mu_before,
			phi_before = excluded.phi_before,
			tier = excluded.tier`,
		r.Date, r.Mu, r.Phi, r.Sigma, r.QualityScore, r.MuBefore, r.PhiBefore, r.Tier,
	)
	if err != nil {
		return fmt.Errorf("upserting engagement %s: %w", r.Date, err)
	}
	return nil
}

// LatestEngagementBefore returns the last rated day strictly before date,
// or nil if there is none. An empty date returns the latest row overall.
func (q *Queries) LatestEngagementBefore(date string) (*EngagementRecord, error) {
	if date == "" {
		date = "9999-12-31~"
	}
	row := q.q.QueryRow(
		`SELECT `+engagementColumns+` FROM engagement_history
		WHERE date < ? ORDER BY date DESC LIMIT 1`,
		date,
	)
	r, err := scanEngagement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// EngagementRange returns rated days in [start, end] ordered by date.
// Empty bounds are open.
func (q *Queries) EngagementRange(start, end string) ([]EngagementRecord, error) {
	if end == "" {
		end = "9999-12-31"
	}
	rows, err := q.q.Query(
		`SELECT `+engagementColumns+` FROM engagement_history
		WHERE date >= ? AND date <= ? ORDER BY date`,
		start, end,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []EngagementRecord
	for rows.Next() {
		r, err := scanEngagement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanEngagement(row rowScanner) (*EngagementRecord, error) {
	var r EngagementRecord
	if err := row.Scan(&r.Date, &r.Mu, &r.Phi, &r.Sigma, &r.QualityScore, &r.MuBefore, &r.PhiBefore, &r.Tier); err != nil {
		return nil, err
	}
	return &r, nil
}
