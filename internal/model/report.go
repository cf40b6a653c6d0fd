package model

import "time"

// 출력 디렉토리 아래에 생성되는 파일 이름
const (
	RawAlertsFile          = "raw_alerts.csv"
	CriticalAlertsFile     = "critical_alerts.csv"
	AllCriticalCountFile   = "all_critical_alert_count.csv"
	AlertsByDateFile       = "alerts_by_date.csv"
	stateCriticalCountFile = "_critical_alert_count.csv"
)

// StateCountFile - 상태별 critical 알림 수 리포트 파일 이름 (예: open_critical_alert_count.csv)
func StateCountFile(state string) string {
	return state + stateCriticalCountFile
}

// ReportFiles - aggregate 단계가 생성하는 리포트 목록 (raw 체크포인트 포함)
func ReportFiles() []string {
	files := []string{RawAlertsFile, CriticalAlertsFile}
	for _, state := range CountedStates {
		files = append(files, StateCountFile(state))
	}
	return append(files, AllCriticalCountFile, AlertsByDateFile)
}

// ProcessedAlert - 고정 컬럼으로 projection된 알림
// dismissed_at이 있으면 State는 항상 dismissed
type ProcessedAlert struct {
	Repository       string
	Number           int
	State            string
	CreatedAt        *time.Time
	FixedAt          *time.Time
	DismissedAt      *time.Time
	DismissedBy      string
	DismissedReason  string
	DismissedComment string
	Summary          string
	GHSAID           string
	Severity         string
	URL              string
}

// StateCount - 저장소별 critical 알림 상태 집계 (pivot 결과)
type StateCount struct {
	Repository string `json:"repository"`
	Open       int    `json:"open"`
	Dismissed  int    `json:"dismissed"`
	Fixed      int    `json:"fixed"`
}

// Get - 상태 이름으로 카운트 조회 (집계 대상이 아니면 0)
func (c StateCount) Get(state string) int {
	switch state {
	case StateOpen:
		return c.Open
	case StateDismissed:
		return c.Dismissed
	case StateFixed:
		return c.Fixed
	default:
		return 0
	}
}

// AdvisoryDate - Advisory별 가장 최근 open 알림 생성 시각
type AdvisoryDate struct {
	GHSAID    string     `json:"ghsa_id"`
	CreatedAt *time.Time `json:"created_at"`
}

// ReportSummary - aggregate 실행 1회의 결과 요약
// export, Slack/webhook 알림에 사용
type ReportSummary struct {
	RunID          string           `json:"run_id"`
	Organization   string           `json:"organization"`
	GeneratedAt    time.Time        `json:"generated_at"`
	CriticalAlerts []ProcessedAlert `json:"-"`
	Counts         []StateCount     `json:"counts"`
	Advisories     []AdvisoryDate   `json:"advisories"`
	TotalOpen      int              `json:"total_open"`
	TotalDismissed int              `json:"total_dismissed"`
	TotalFixed     int              `json:"total_fixed"`
}
