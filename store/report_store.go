// api/store/report_store.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"funnelpulse/api/models"
)

// ReportStore archives computed funnel report rows in Postgres so the
// dashboard can reload the latest analysis without recomputing. Rows are
// flat tabular values; each save is one insert batch, nothing more.
type ReportStore struct {
	db *sql.DB
}

// NewReportStore creates a new ReportStore instance.
func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// SaveFunnelReport inserts one computed report, one row per stage.
func (s *ReportStore) SaveFunnelReport(ctx context.Context, computedAt time.Time, rows []models.FunnelResult) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin report insert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO funnel_report_rows (computed_at, position, stage_label, session_count, conversion_rate, drop_rate)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for position, row := range rows {
		dropRate := sql.NullFloat64{}
		if row.DropRateToNext != nil {
			dropRate = sql.NullFloat64{Float64: *row.DropRateToNext, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, query,
			computedAt,
			position,
			row.StageLabel,
			int64(row.SessionCount),
			row.ConversionRateFromStart,
			dropRate,
		); err != nil {
			return fmt.Errorf("failed to insert report row %q: %w", row.StageLabel, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report insert: %w", err)
	}

	log.Printf("Funnel report archived: %d stages at %s", len(rows), computedAt.Format(time.RFC3339))
	return nil
}

// LatestFunnelReport returns the most recently archived report, or a zero
// time and nil rows when nothing has been archived yet.
func (s *ReportStore) LatestFunnelReport(ctx context.Context) (time.Time, []models.FunnelResult, error) {
	query := `
		SELECT computed_at, stage_label, session_count, conversion_rate, drop_rate
		FROM funnel_report_rows
		WHERE computed_at = (SELECT max(computed_at) FROM funnel_report_rows)
		ORDER BY position ASC;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("failed to load latest funnel report: %w", err)
	}
	defer rows.Close()

	var (
		computedAt time.Time
		results    []models.FunnelResult
	)
	for rows.Next() {
		var (
			row      models.FunnelResult
			count    int64
			dropRate sql.NullFloat64
		)
		if err := rows.Scan(&computedAt, &row.StageLabel, &count, &row.ConversionRateFromStart, &dropRate); err != nil {
			return time.Time{}, nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		row.SessionCount = uint64(count)
		if dropRate.Valid {
			v := dropRate.Float64
			row.DropRateToNext = &v
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return time.Time{}, nil, fmt.Errorf("row error during report query: %w", err)
	}

	return computedAt, results, nil
}
