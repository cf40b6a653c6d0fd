package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kube-rca/dependabot-report/internal/model"
	"github.com/kube-rca/dependabot-report/internal/table"
)

// RawColumns - raw 체크포인트 컬럼 (중첩 필드는 "."으로 연결)
var RawColumns = []string{
	"repository",
	"number",
	"state",
	"url",
	"html_url",
	"created_at",
	"updated_at",
	"fixed_at",
	"dismissed_at",
	"dismissed_by",
	"dismissed_reason",
	"dismissed_comment",
	"auto_dismissed_at",
	"dependency.package.ecosystem",
	"dependency.package.name",
	"dependency.manifest_path",
	"dependency.scope",
	"security_advisory.ghsa_id",
	"security_advisory.cve_id",
	"security_advisory.summary",
	"security_advisory.severity",
	"security_vulnerability.vulnerable_version_range",
	"security_vulnerability.first_patched_version.identifier",
}

// FlattenAlerts - 알림 목록을 raw 체크포인트 테이블로 변환
// 알림이 없어도 헤더만 있는 테이블을 반환
// 같은 (repository, number)가 다시 나오면 처음 것만 유지 (페이지 사이에 알림이 밀린 경우)
func FlattenAlerts(alerts []model.Alert) *table.Table {
	type alertKey struct {
		repository string
		number     int
	}
	seen := make(map[alertKey]struct{}, len(alerts))

	t := table.New(RawColumns...)
	t.Rows = make([][]string, 0, len(alerts))
	for _, a := range alerts {
		key := alertKey{a.Repository, a.Number}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		t.Rows = append(t.Rows, []string{
			a.Repository,
			strconv.Itoa(a.Number),
			a.State,
			a.URL,
			a.HTMLURL,
			formatTime(a.CreatedAt),
			formatTime(a.UpdatedAt),
			formatTime(a.FixedAt),
			formatTime(a.DismissedAt),
			a.DismissedBy,
			a.DismissedReason,
			a.DismissedComment,
			formatTime(a.AutoDismissedAt),
			a.Dependency.Ecosystem,
			a.Dependency.Package,
			a.Dependency.ManifestPath,
			a.Dependency.Scope,
			a.SecurityAdvisory.GHSAID,
			a.SecurityAdvisory.CVEID,
			a.SecurityAdvisory.Summary,
			a.SecurityAdvisory.Severity,
			a.SecurityVulnerability.VulnerableVersionRange,
			a.SecurityVulnerability.FirstPatchedVersion,
		})
	}
	return t
}

// null 시각은 빈 셀
func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t = t.UTC()
	return &t, nil
}
