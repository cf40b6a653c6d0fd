// GitHub REST API와 통신하는 클라이언트 정의
// Organization 저장소 목록과 저장소별 Dependabot 알림을 페이지 단위로 조회
//
// 환경변수:
//   - GITHUB_TOKEN: Personal Access Token (Bearer 헤더로 전송)
//   - GITHUB_API_URL: GitHub Enterprise Server 사용 시 API URL
//   - GITHUB_TIMEOUT: 요청 단위 타임아웃
//
// 페이지네이션 규칙:
//   - per_page=100, page=1부터 증가
//   - 빈 페이지를 받으면 종료 (N개 항목이면 마지막에 빈 페이지 요청 1회 추가)
//   - 재시도 없음: 한 페이지라도 실패하면 전체 조회 실패

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"
	"github.com/kube-rca/dependabot-report/internal/config"
	"github.com/kube-rca/dependabot-report/internal/model"
	"golang.org/x/oauth2"
)

// PerPage - GitHub API 페이지 크기 (최대값)
const PerPage = 100

// RequestError - GitHub API가 2xx 이외의 상태 코드를 반환한 경우
type RequestError struct {
	StatusCode int
	Reason     string
	URL        string
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("API call failed with status code %d, %s (%s)", e.StatusCode, e.Reason, e.URL)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// GitHubClient 구조체 정의
type GitHubClient struct {
	client *github.Client
}

// GitHubClient 객체 생성
// 토큰이 비어 있으면 인증 없이 요청 (첫 요청에서 401/404로 실패)
func NewGitHubClient(ctx context.Context, cfg config.GitHubConfig) (*GitHubClient, error) {
	httpClient := &http.Client{}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.Token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	client := github.NewClient(httpClient)

	if cfg.APIURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(cfg.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GITHUB_API_URL: %w", err)
		}
		client.BaseURL = baseURL
	}

	return &GitHubClient{client: client}, nil
}

// GET /orgs/{org}/repos - archived 저장소를 제외한 저장소 이름 목록 반환
func (c *GitHubClient) ListRepositories(ctx context.Context, org string) ([]string, error) {
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: PerPage},
	}

	var names []string
	for page := 1; ; page++ {
		opts.Page = page

		repos, resp, err := c.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, requestError(resp, err, fmt.Sprintf("list repositories of %s (page %d)", org, page))
		}
		if len(repos) == 0 {
			break
		}

		for _, repo := range repos {
			if repo.GetArchived() {
				continue
			}
			names = append(names, repo.GetName())
		}
	}

	return names, nil
}

// GET /repos/{org}/{repo}/dependabot/alerts - 저장소의 모든 알림 반환
// 각 알림에 Repository를 채워서 반환
func (c *GitHubClient) ListDependabotAlerts(ctx context.Context, org, repo string) ([]model.Alert, error) {
	opts := &github.ListAlertsOptions{
		ListOptions: github.ListOptions{PerPage: PerPage},
	}

	var alerts []model.Alert
	for page := 1; ; page++ {
		// ListCursorOptions도 Page 필드를 가지므로 ListOptions를 명시
		opts.ListOptions.Page = page

		pageAlerts, resp, err := c.client.Dependabot.ListRepoAlerts(ctx, org, repo, opts)
		if err != nil {
			return nil, requestError(resp, err, fmt.Sprintf("list dependabot alerts of %s/%s (page %d)", org, repo, page))
		}
		if len(pageAlerts) == 0 {
			break
		}

		for _, alert := range pageAlerts {
			alerts = append(alerts, toAlert(repo, alert))
		}
	}

	return alerts, nil
}

// go-github 에러를 RequestError로 변환 (상태 코드가 없으면 전송 실패로 감쌈)
func requestError(resp *github.Response, err error, action string) error {
	if resp != nil && resp.Response != nil {
		code := resp.StatusCode
		if code < 200 || code >= 300 {
			reqURL := ""
			if resp.Request != nil {
				reqURL = resp.Request.URL.String()
			}
			return &RequestError{
				StatusCode: code,
				Reason:     http.StatusText(code),
				URL:        reqURL,
				Err:        err,
			}
		}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// go-github 알림 구조체를 model.Alert로 변환
func toAlert(repo string, a *github.DependabotAlert) model.Alert {
	pkg := a.GetDependency().GetPackage()
	advisory := a.GetSecurityAdvisory()
	vulnerability := a.GetSecurityVulnerability()

	return model.Alert{
		Repository:       repo,
		Number:           a.GetNumber(),
		State:            a.GetState(),
		URL:              a.GetURL(),
		HTMLURL:          a.GetHTMLURL(),
		CreatedAt:        timestamp(a.CreatedAt),
		UpdatedAt:        timestamp(a.UpdatedAt),
		FixedAt:          timestamp(a.FixedAt),
		DismissedAt:      timestamp(a.DismissedAt),
		AutoDismissedAt:  timestamp(a.AutoDismissedAt),
		DismissedBy:      a.GetDismissedBy().GetLogin(),
		DismissedReason:  a.GetDismissedReason(),
		DismissedComment: a.GetDismissedComment(),
		Dependency: model.Dependency{
			Ecosystem:    pkg.GetEcosystem(),
			Package:      pkg.GetName(),
			ManifestPath: a.GetDependency().GetManifestPath(),
			Scope:        a.GetDependency().GetScope(),
		},
		SecurityAdvisory: model.Advisory{
			GHSAID:   advisory.GetGHSAID(),
			CVEID:    advisory.GetCVEID(),
			Summary:  advisory.GetSummary(),
			Severity: advisory.GetSeverity(),
		},
		SecurityVulnerability: model.Vulnerability{
			VulnerableVersionRange: vulnerability.GetVulnerableVersionRange(),
			FirstPatchedVersion:    vulnerability.GetFirstPatchedVersion().GetIdentifier(),
		},
	}
}

func timestamp(ts *github.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.UTC()
	return &t
}
