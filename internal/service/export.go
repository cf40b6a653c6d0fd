package service

import (
	"context"
	"log/slog"

	"github.com/kube-rca/dependabot-report/internal/model"
)

// ReportRepository - 집계 결과 저장소 (db.Postgres)
type ReportRepository interface {
	EnsureReportSchema(ctx context.Context) error
	SaveReport(ctx context.Context, summary *model.ReportSummary) error
}

type ExportService struct {
	repo   ReportRepository
	logger *slog.Logger
}

func NewExportService(repo ReportRepository, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{repo: repo, logger: logger}
}

// Export - 스키마 확인 후 실행 결과를 저장
// 실패는 로그만 남김 (CSV 리포트는 이미 기록된 상태, Notify와 동일)
func (s *ExportService) Export(ctx context.Context, summary *model.ReportSummary) {
	if err := s.repo.EnsureReportSchema(ctx); err != nil {
		s.logger.Error("failed to ensure report schema", "error", err)
		return
	}
	if err := s.repo.SaveReport(ctx, summary); err != nil {
		s.logger.Error("failed to export report", "run_id", summary.RunID, "error", err)
		return
	}

	s.logger.Info("report exported",
		"run_id", summary.RunID,
		"critical_alerts", len(summary.CriticalAlerts),
		"repositories", len(summary.Counts),
	)
}
