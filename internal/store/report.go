package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gitgrok.app/api/core/db"
	"gitgrok.app/api/internal/model"
)

const reportColumns = `id, user_id, owner, repo, markdown, files_discovered, files_analyzed, completed_at`

type reportStore struct {
	q db.Querier
}

func newReportStore(q db.Querier) ReportStore {
	return &reportStore{q: q}
}

func (s *reportStore) Create(ctx context.Context, report *model.AnalysisReport) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO analysis_reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		report.ID, report.UserID, report.Owner, report.Repo, report.Markdown,
		report.FilesDiscovered, report.FilesAnalyzed, report.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting analysis report: %w", mapError(err))
	}
	return nil
}

func (s *reportStore) ListByUser(ctx context.Context, userID int64, limit int) ([]model.AnalysisReport, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+reportColumns+`
		FROM analysis_reports
		WHERE user_id = $1
		ORDER BY completed_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying analysis reports: %w", err)
	}
	defer rows.Close()

	var reports []model.AnalysisReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading analysis reports: %w", err)
	}
	return reports, nil
}

func scanReport(row pgx.Row) (*model.AnalysisReport, error) {
	var r model.AnalysisReport
	err := row.Scan(&r.ID, &r.UserID, &r.Owner, &r.Repo, &r.Markdown, &r.FilesDiscovered, &r.FilesAnalyzed, &r.CompletedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &r, nil
}
