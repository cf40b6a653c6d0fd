// Dependabot 알림 및 리포트 구조체 정의
// client, service, db, handler 레이어에서 공통으로 사용하기 때문에 model 레이어에 별도로 정의

package model

import "time"

// 알림 상태 값
const (
	StateOpen          = "open"
	StateDismissed     = "dismissed"
	StateFixed         = "fixed"
	StateAutoDismissed = "auto_dismissed"

	SeverityCritical = "critical"
)

// CountedStates - pivot 컬럼으로 사용하는 상태 (순서 고정)
var CountedStates = []string{StateOpen, StateDismissed, StateFixed}

// Alert - 개별 Dependabot 알림
// Repository는 API 응답에 없으므로 fetcher가 채움
type Alert struct {
	Repository string

	Number int
	State  string

	URL     string
	HTMLURL string

	CreatedAt       *time.Time
	UpdatedAt       *time.Time
	FixedAt         *time.Time
	DismissedAt     *time.Time
	AutoDismissedAt *time.Time

	// DismissedBy: dismiss 처리한 사용자 login
	DismissedBy      string
	DismissedReason  string
	DismissedComment string

	Dependency            Dependency
	SecurityAdvisory      Advisory
	SecurityVulnerability Vulnerability
}

// Dependency - 알림이 발생한 패키지 정보
type Dependency struct {
	Ecosystem    string
	Package      string
	ManifestPath string
	Scope        string
}

// Advisory - 알림이 참조하는 보안 권고
// 같은 Advisory를 여러 저장소의 알림이 참조할 수 있음
type Advisory struct {
	GHSAID   string
	CVEID    string
	Summary  string
	Severity string
}

// Vulnerability - 취약 버전 범위와 패치 버전
type Vulnerability struct {
	VulnerableVersionRange string
	FirstPatchedVersion    string
}
