// Raw 추출 단계 (extract)
//
// 처리 흐름:
//  1. <output>/raw_alerts.csv가 이미 있으면 네트워크 호출 없이 종료 (체크포인트 존재 = 캐시 키)
//  2. Organization 저장소 목록 조회 (실패 시 아무 파일도 쓰지 않고 에러 반환)
//  3. 저장소별 Dependabot 알림을 순차 조회 (실패한 저장소는 로그 후 건너뜀)
//  4. 모든 알림을 고정 컬럼으로 평탄화하여 체크포인트를 원자적으로 기록

package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kube-rca/dependabot-report/internal/model"
)

// RepositoryLister - Organization의 archived가 아닌 저장소 이름 조회
type RepositoryLister interface {
	ListRepositories(ctx context.Context, org string) ([]string, error)
}

// AlertFetcher - 저장소의 모든 Dependabot 알림 조회
type AlertFetcher interface {
	ListDependabotAlerts(ctx context.Context, org, repo string) ([]model.Alert, error)
}

// ExtractOptions - extract 단계 설정
type ExtractOptions struct {
	Organization string
	OutputDir    string
	Force        bool // 기존 체크포인트가 있어도 다시 추출
}

// ExtractResult - extract 실행 결과
type ExtractResult struct {
	Path         string
	Skipped      bool
	Repositories int
	Alerts       int
	Failed       []string
}

type ExtractService struct {
	lister  RepositoryLister
	fetcher AlertFetcher
	opts    ExtractOptions
	logger  *slog.Logger
}

func NewExtractService(lister RepositoryLister, fetcher AlertFetcher, opts ExtractOptions, logger *slog.Logger) *ExtractService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractService{lister: lister, fetcher: fetcher, opts: opts, logger: logger}
}

func (s *ExtractService) Run(ctx context.Context) (ExtractResult, error) {
	path := filepath.Join(s.opts.OutputDir, model.RawAlertsFile)
	result := ExtractResult{Path: path}

	// Force: 존재 확인만 건너뜀, 기존 체크포인트는 새 파일 rename 시점에 교체
	// (실패한 강제 실행이 마지막 정상 체크포인트를 지우지 않음)
	if !s.opts.Force {
		_, err := os.Stat(path)
		if err == nil {
			s.logger.Info("checkpoint exists, skipping extraction", "path", path)
			result.Skipped = true
			return result, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return result, fmt.Errorf("failed to stat checkpoint: %w", err)
		}
	}

	if err := os.MkdirAll(s.opts.OutputDir, 0o755); err != nil {
		return result, fmt.Errorf("failed to create output directory: %w", err)
	}

	repos, err := s.lister.ListRepositories(ctx, s.opts.Organization)
	if err != nil {
		return result, fmt.Errorf("failed to list repositories: %w", err)
	}
	result.Repositories = len(repos)
	s.logger.Info("repositories listed", "organization", s.opts.Organization, "total", len(repos))

	var alerts []model.Alert
	for i, repo := range repos {
		// 중단된 실행은 체크포인트를 남기지 않음
		if err := ctx.Err(); err != nil {
			return result, err
		}

		repoAlerts, err := s.fetcher.ListDependabotAlerts(ctx, s.opts.Organization, repo)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			s.logger.Error("failed to fetch alerts",
				"index", i+1,
				"total", len(repos),
				"repository", repo,
				"error", err,
			)
			result.Failed = append(result.Failed, repo)
			continue
		}

		s.logger.Debug("alerts fetched", "index", i+1, "total", len(repos), "repository", repo, "alerts", len(repoAlerts))
		alerts = append(alerts, repoAlerts...)
	}
	result.Alerts = len(alerts)

	if err := FlattenAlerts(alerts).WriteFile(path); err != nil {
		return result, fmt.Errorf("failed to write checkpoint: %w", err)
	}

	s.logger.Info("extraction finished",
		"path", path,
		"repositories", result.Repositories,
		"alerts", result.Alerts,
		"failed", len(result.Failed),
	)
	return result, nil
}
