// 집계 단계 (aggregate)
//
// raw 체크포인트만 입력으로 사용하며 매 실행마다 리포트 파일을 모두 덮어씀
//
// 처리 흐름:
//  1. raw_alerts.csv 로드 -> 고정 컬럼 projection, advisory 컬럼 이름 변경
//  2. dismissed_at이 있으면 state=dismissed
//  3. severity=critical만 남기고 severity 컬럼 제거 -> critical_alerts.csv
//  4. 저장소 x 상태 pivot -> <state>_critical_alert_count.csv, all_critical_alert_count.csv
//  5. open 알림의 Advisory별 최신 created_at -> alerts_by_date.csv

package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kube-rca/dependabot-report/internal/model"
	"github.com/kube-rca/dependabot-report/internal/table"
)

// ProcessedColumns - raw 테이블에서 projection할 컬럼 (순서 고정)
var ProcessedColumns = []string{
	"repository",
	"number",
	"state",
	"created_at",
	"fixed_at",
	"dismissed_at",
	"dismissed_by",
	"dismissed_reason",
	"dismissed_comment",
	"security_advisory.summary",
	"security_advisory.ghsa_id",
	"security_advisory.severity",
	"url",
}

var advisoryRenames = map[string]string{
	"security_advisory.summary":  "summary",
	"security_advisory.ghsa_id":  "ghsa_id",
	"security_advisory.severity": "severity",
}

type ReportOptions struct {
	Organization string
	OutputDir    string
}

type ReportService struct {
	opts   ReportOptions
	logger *slog.Logger
	now    func() time.Time
}

func NewReportService(opts ReportOptions, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{opts: opts, logger: logger, now: time.Now}
}

// Generate - 체크포인트에서 모든 리포트 파일을 생성하고 요약 반환
func (s *ReportService) Generate(ctx context.Context) (*model.ReportSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	alerts, err := s.loadAlerts()
	if err != nil {
		return nil, err
	}

	NormalizeDismissed(alerts)
	critical := FilterCritical(alerts)

	// 모두 critical이므로 severity 컬럼 제거
	if err := s.write(model.CriticalAlertsFile, processedTable(critical).Drop("severity")); err != nil {
		return nil, err
	}

	counts := CountByState(critical)
	for _, state := range model.CountedStates {
		if err := s.write(model.StateCountFile(state), stateCountTable(counts, state)); err != nil {
			return nil, err
		}
	}
	if err := s.write(model.AllCriticalCountFile, allCountTable(counts)); err != nil {
		return nil, err
	}

	advisories := AlertsByDate(critical)
	if err := s.write(model.AlertsByDateFile, alertsByDateTable(advisories)); err != nil {
		return nil, err
	}

	summary := &model.ReportSummary{
		RunID:          uuid.NewString(),
		Organization:   s.opts.Organization,
		GeneratedAt:    s.now().UTC(),
		CriticalAlerts: critical,
		Counts:         counts,
		Advisories:     advisories,
	}
	for _, count := range counts {
		summary.TotalOpen += count.Open
		summary.TotalDismissed += count.Dismissed
		summary.TotalFixed += count.Fixed
	}

	s.logger.Info("reports generated",
		"run_id", summary.RunID,
		"alerts", len(alerts),
		"critical", len(critical),
		"repositories", len(counts),
		"advisories", len(advisories),
	)
	return summary, nil
}

func (s *ReportService) loadAlerts() ([]model.ProcessedAlert, error) {
	raw, err := table.ReadFile(filepath.Join(s.opts.OutputDir, model.RawAlertsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	processed, err := raw.Project(ProcessedColumns...)
	if err != nil {
		return nil, fmt.Errorf("failed to project checkpoint: %w", err)
	}
	processed.Rename(advisoryRenames)

	// critical_alerts PK (run_id, repository, number)와 맞추기 위해 중복 행은 처음 것만 사용
	seen := make(map[string]struct{}, len(processed.Rows))
	alerts := make([]model.ProcessedAlert, 0, len(processed.Rows))
	for i, row := range processed.Rows {
		alert, err := parseProcessedRow(row)
		if err != nil {
			return nil, fmt.Errorf("checkpoint row %d: %w", i+1, err)
		}
		key := alert.Repository + "#" + strconv.Itoa(alert.Number)
		if _, dup := seen[key]; dup {
			s.logger.Warn("duplicate alert in checkpoint, skipping", "row", i+1, "repository", alert.Repository, "number", alert.Number)
			continue
		}
		seen[key] = struct{}{}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// row는 ProcessedColumns 순서
func parseProcessedRow(row []string) (model.ProcessedAlert, error) {
	number, err := strconv.Atoi(row[1])
	if err != nil {
		return model.ProcessedAlert{}, fmt.Errorf("invalid number %q", row[1])
	}

	var times [3]*time.Time
	for i, cell := range row[3:6] {
		if times[i], err = parseTime(cell); err != nil {
			return model.ProcessedAlert{}, err
		}
	}

	return model.ProcessedAlert{
		Repository:       row[0],
		Number:           number,
		State:            row[2],
		CreatedAt:        times[0],
		FixedAt:          times[1],
		DismissedAt:      times[2],
		DismissedBy:      row[6],
		DismissedReason:  row[7],
		DismissedComment: row[8],
		Summary:          row[9],
		GHSAID:           row[10],
		Severity:         row[11],
		URL:              row[12],
	}, nil
}

func (s *ReportService) write(name string, t *table.Table) error {
	path := filepath.Join(s.opts.OutputDir, name)
	if err := t.WriteFile(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	s.logger.Debug("report written", "path", path, "rows", len(t.Rows))
	return nil
}

// 이름 변경이 적용된 processed 컬럼 순서로 다시 테이블 구성
func processedTable(alerts []model.ProcessedAlert) *table.Table {
	columns := make([]string, 0, len(ProcessedColumns))
	for _, col := range ProcessedColumns {
		if renamed, ok := advisoryRenames[col]; ok {
			col = renamed
		}
		columns = append(columns, col)
	}

	t := table.New(columns...)
	for _, a := range alerts {
		t.Rows = append(t.Rows, []string{
			a.Repository,
			strconv.Itoa(a.Number),
			a.State,
			formatTime(a.CreatedAt),
			formatTime(a.FixedAt),
			formatTime(a.DismissedAt),
			a.DismissedBy,
			a.DismissedReason,
			a.DismissedComment,
			a.Summary,
			a.GHSAID,
			a.Severity,
			a.URL,
		})
	}
	return t
}

func stateCountTable(counts []model.StateCount, state string) *table.Table {
	t := table.New("repository", state)
	for _, count := range StateCounts(counts, state) {
		t.Rows = append(t.Rows, []string{count.Repository, strconv.Itoa(count.Get(state))})
	}
	return t
}

func allCountTable(counts []model.StateCount) *table.Table {
	t := table.New(append([]string{"repository"}, model.CountedStates...)...)
	for _, count := range counts {
		row := []string{count.Repository}
		for _, state := range model.CountedStates {
			row = append(row, strconv.Itoa(count.Get(state)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func alertsByDateTable(dates []model.AdvisoryDate) *table.Table {
	t := table.New("ghsa_id", "created_at")
	for _, d := range dates {
		t.Rows = append(t.Rows, []string{d.GHSAID, formatTime(d.CreatedAt)})
	}
	return t
}
