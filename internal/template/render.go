// Webhook body 템플릿 렌더링
//
// 문자열 변수는 JSON 문자열 내부 형식으로 escape되어 치환됨
//
// 지원하는 변수 형식:
//
//	{{run.id}}, {{run.organization}}, {{run.generated_at}}
//
//	{{report.open}}, {{report.dismissed}}, {{report.fixed}},
//	{{report.repositories}}, {{report.advisories}}
package template

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/kube-rca/dependabot-report/internal/model"
)

// RunData - 템플릿 렌더링에 사용할 실행 정보
type RunData struct {
	ID           string
	Organization string
	GeneratedAt  time.Time
}

// ReportData - 템플릿 렌더링에 사용할 집계 값
type ReportData struct {
	Open         int
	Dismissed    int
	Fixed        int
	Repositories int
	Advisories   int
}

// DataFromSummary - model.ReportSummary에서 RunData, ReportData 생성
func DataFromSummary(summary model.ReportSummary) (RunData, ReportData) {
	run := RunData{
		ID:           summary.RunID,
		Organization: summary.Organization,
		GeneratedAt:  summary.GeneratedAt,
	}
	report := ReportData{
		Open:         summary.TotalOpen,
		Dismissed:    summary.TotalDismissed,
		Fixed:        summary.TotalFixed,
		Repositories: len(summary.Counts),
		Advisories:   len(summary.Advisories),
	}
	return run, report
}

// RenderBody - webhook body 템플릿의 변수를 실제 값으로 치환
//
// nil로 전달된 항목의 변수는 빈 문자열(숫자 변수는 0)로 치환됩니다.
func RenderBody(body string, run *RunData, report *ReportData) string {
	pairs := make([]string, 0, 16)

	// --- Run 변수 ---
	if run != nil {
		generatedAt := ""
		if !run.GeneratedAt.IsZero() {
			generatedAt = run.GeneratedAt.UTC().Format(time.RFC3339)
		}
		pairs = append(pairs,
			"{{run.id}}", escapeJSON(run.ID),
			"{{run.organization}}", escapeJSON(run.Organization),
			"{{run.generated_at}}", generatedAt,
		)
	} else {
		pairs = append(pairs,
			"{{run.id}}", "",
			"{{run.organization}}", "",
			"{{run.generated_at}}", "",
		)
	}

	// --- Report 변수 ---
	// JSON body에 따옴표 없이 들어가므로 nil이어도 숫자로 치환
	var r ReportData
	if report != nil {
		r = *report
	}
	pairs = append(pairs,
		"{{report.open}}", strconv.Itoa(r.Open),
		"{{report.dismissed}}", strconv.Itoa(r.Dismissed),
		"{{report.fixed}}", strconv.Itoa(r.Fixed),
		"{{report.repositories}}", strconv.Itoa(r.Repositories),
		"{{report.advisories}}", strconv.Itoa(r.Advisories),
	)

	return strings.NewReplacer(pairs...).Replace(body)
}

// escapeJSON - 따옴표를 제외한 JSON 문자열 리터럴 본문
func escapeJSON(value string) string {
	quoted, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(quoted[1 : len(quoted)-1])
}
