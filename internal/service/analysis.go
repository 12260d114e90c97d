package service

import (
	"context"
	"fmt"
	"log/slog"

	"gitgrok.app/api/common/id"
	"gitgrok.app/api/internal/model"
	"gitgrok.app/api/internal/store"
)

const defaultReportListLimit = 20

// Analyzer produces a report for a repository URL. Implemented by analysis.Engine.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string) (*model.AnalysisReport, error)
}

type AnalysisService interface {
	Analyze(ctx context.Context, userID int64, repoURL string) (*model.AnalysisReport, error)
	List(ctx context.Context, userID int64, limit int) ([]model.AnalysisReport, error)
}

type analysisService struct {
	analyzer    Analyzer
	reportStore store.ReportStore
}

func NewAnalysisService(analyzer Analyzer, reportStore store.ReportStore) AnalysisService {
	return &analysisService{
		analyzer:    analyzer,
		reportStore: reportStore,
	}
}

// Analyze runs the analysis and stores the report. A storage failure is logged
// and does not fail the request.
func (s *analysisService) Analyze(ctx context.Context, userID int64, repoURL string) (*model.AnalysisReport, error) {
	if err := required("repoUrl", repoURL); err != nil {
		return nil, classify("analysis.analyze", err)
	}

	report, err := s.analyzer.Analyze(ctx, repoURL)
	if err != nil {
		return nil, classify("analysis.analyze", err)
	}

	report.ID = id.New()
	report.UserID = userID
	if err := s.reportStore.Create(ctx, report); err != nil {
		slog.ErrorContext(ctx, "failed to persist analysis report",
			"error", err,
			"user_id", userID,
			"owner", report.Owner,
			"repo", report.Repo,
		)
	}
	return report, nil
}

func (s *analysisService) List(ctx context.Context, userID int64, limit int) ([]model.AnalysisReport, error) {
	if limit <= 0 {
		limit = defaultReportListLimit
	}
	reports, err := s.reportStore.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, classify("analysis.list", fmt.Errorf("listing reports: %w", err))
	}
	return reports, nil
}
