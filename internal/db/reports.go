package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kube-rca/dependabot-report/internal/model"
)

// EnsureReportSchema - report_runs, critical_alerts, critical_alert_counts, advisory_dates 테이블 생성
func (db *Postgres) EnsureReportSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS report_runs (
			run_id TEXT PRIMARY KEY,
			organization TEXT NOT NULL DEFAULT '',
			generated_at TIMESTAMPTZ NOT NULL,
			total_open INTEGER NOT NULL DEFAULT 0,
			total_dismissed INTEGER NOT NULL DEFAULT 0,
			total_fixed INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS critical_alerts (
			run_id TEXT NOT NULL REFERENCES report_runs(run_id) ON DELETE CASCADE,
			repository TEXT NOT NULL,
			number INTEGER NOT NULL,
			state TEXT NOT NULL,
			created_at TIMESTAMPTZ,
			fixed_at TIMESTAMPTZ,
			dismissed_at TIMESTAMPTZ,
			dismissed_by TEXT NOT NULL DEFAULT '',
			dismissed_reason TEXT NOT NULL DEFAULT '',
			dismissed_comment TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			ghsa_id TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, repository, number)
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS critical_alert_counts (
			run_id TEXT NOT NULL REFERENCES report_runs(run_id) ON DELETE CASCADE,
			repository TEXT NOT NULL,
			open INTEGER NOT NULL DEFAULT 0,
			dismissed INTEGER NOT NULL DEFAULT 0,
			fixed INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, repository)
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS advisory_dates (
			run_id TEXT NOT NULL REFERENCES report_runs(run_id) ON DELETE CASCADE,
			ghsa_id TEXT NOT NULL,
			created_at TIMESTAMPTZ,
			PRIMARY KEY (run_id, ghsa_id)
		)
		`,
		`CREATE INDEX IF NOT EXISTS report_runs_generated_at_idx ON report_runs(generated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS critical_alerts_ghsa_id_idx ON critical_alerts(ghsa_id)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// SaveReport - 실행 1회의 집계 결과를 하나의 트랜잭션으로 저장
// 행 데이터는 COPY로 적재
func (db *Postgres) SaveReport(ctx context.Context, summary *model.ReportSummary) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO report_runs (run_id, organization, generated_at, total_open, total_dismissed, total_fixed)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		summary.RunID,
		summary.Organization,
		summary.GeneratedAt,
		summary.TotalOpen,
		summary.TotalDismissed,
		summary.TotalFixed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"critical_alerts"},
		[]string{"run_id", "repository", "number", "state", "created_at", "fixed_at", "dismissed_at",
			"dismissed_by", "dismissed_reason", "dismissed_comment", "summary", "ghsa_id", "url"},
		pgx.CopyFromRows(criticalAlertRows(summary)),
	); err != nil {
		return fmt.Errorf("failed to copy critical alerts: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"critical_alert_counts"},
		[]string{"run_id", "repository", "open", "dismissed", "fixed"},
		pgx.CopyFromRows(countRows(summary)),
	); err != nil {
		return fmt.Errorf("failed to copy alert counts: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"advisory_dates"},
		[]string{"run_id", "ghsa_id", "created_at"},
		pgx.CopyFromRows(advisoryRows(summary)),
	); err != nil {
		return fmt.Errorf("failed to copy advisory dates: %w", err)
	}

	return tx.Commit(ctx)
}

func criticalAlertRows(summary *model.ReportSummary) [][]any {
	rows := make([][]any, 0, len(summary.CriticalAlerts))
	for _, a := range summary.CriticalAlerts {
		rows = append(rows, []any{
			summary.RunID,
			a.Repository,
			a.Number,
			a.State,
			a.CreatedAt,
			a.FixedAt,
			a.DismissedAt,
			a.DismissedBy,
			a.DismissedReason,
			a.DismissedComment,
			a.Summary,
			a.GHSAID,
			a.URL,
		})
	}
	return rows
}

func countRows(summary *model.ReportSummary) [][]any {
	rows := make([][]any, 0, len(summary.Counts))
	for _, c := range summary.Counts {
		rows = append(rows, []any{summary.RunID, c.Repository, c.Open, c.Dismissed, c.Fixed})
	}
	return rows
}

func advisoryRows(summary *model.ReportSummary) [][]any {
	rows := make([][]any, 0, len(summary.Advisories))
	for _, d := range summary.Advisories {
		rows = append(rows, []any{summary.RunID, d.GHSAID, d.CreatedAt})
	}
	return rows
}
