// 실행 설정 정의
// 프로세스 시작 시 한 번 생성하여 각 컴포넌트 생성자로 전달 (컴포넌트 내부에서 환경변수를 직접 읽지 않음)
//
// 환경변수 (.env 파일이 있으면 먼저 로드):
//   - GITHUB_TOKEN: GitHub Personal Access Token
//   - GITHUB_ORGANISATION (또는 GITHUB_ORGANIZATION): 대상 Organization
//   - GITHUB_API_URL: GitHub Enterprise Server API URL (선택)
//   - GITHUB_TIMEOUT: API 요청 타임아웃 (default: 30s)
//   - OUTPUT_DIR: 리포트 출력 디렉토리 (default: outputs)
//   - DATABASE_URL 또는 PGHOST/PGPORT/PGUSER/PGPASSWORD/PGDATABASE/PGSSLMODE
//   - SLACK_BOT_TOKEN, SLACK_CHANNEL_ID, SLACK_API_URL
//   - REPORT_WEBHOOK_URL, REPORT_WEBHOOK_METHOD, REPORT_WEBHOOK_BODY
//   - REPORT_WEBHOOK_HEADERS: 줄바꿈으로 구분한 "Key: Value" 목록 (값에 쉼표 허용)
//   - SERVER_ADDR, REPORT_API_TOKEN_HASH, ALLOWED_ORIGINS
//   - LOG_LEVEL (debug|info|warn|error), LOG_FORMAT (text|json)

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	GitHub   GitHubConfig
	Output   OutputConfig
	Postgres PostgresConfig
	Slack    SlackConfig
	Webhook  WebhookConfig
	Server   ServerConfig
	Log      LogConfig
}

type GitHubConfig struct {
	Token        string
	Organization string
	APIURL       string
	Timeout      time.Duration
}

type OutputConfig struct {
	Dir string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

// Enabled - DATABASE_URL 또는 PGUSER/PGDATABASE가 설정된 경우에만 export 수행
func (c PostgresConfig) Enabled() bool {
	return c.DatabaseURL != "" || (c.User != "" && c.Database != "")
}

type SlackConfig struct {
	BotToken  string
	ChannelID string
	APIURL    string
}

type WebhookConfig struct {
	URL     string
	Method  string
	Body    string
	Headers []string // "Key: Value" 형식
}

type ServerConfig struct {
	Addr           string
	TokenHash      string
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (Config, error) {
	// .env 파일이 없어도 에러로 취급하지 않음
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getenv("GITHUB_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid GITHUB_TIMEOUT: %w", err)
	}

	// 토큰/Organization 누락은 여기서 검증하지 않음 (첫 API 호출의 인증 실패로 드러남)
	return Config{
		GitHub: GitHubConfig{
			Token:        os.Getenv("GITHUB_TOKEN"),
			Organization: getenv("GITHUB_ORGANISATION", os.Getenv("GITHUB_ORGANIZATION")),
			APIURL:       os.Getenv("GITHUB_API_URL"),
			Timeout:      timeout,
		},
		Output: OutputConfig{
			Dir: getenv("OUTPUT_DIR", "outputs"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Slack: SlackConfig{
			BotToken:  os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
			APIURL:    getenv("SLACK_API_URL", "https://slack.com/api"),
		},
		Webhook: WebhookConfig{
			URL:     os.Getenv("REPORT_WEBHOOK_URL"),
			Method:  getenv("REPORT_WEBHOOK_METHOD", "POST"),
			Body:    os.Getenv("REPORT_WEBHOOK_BODY"),
			Headers: splitList(os.Getenv("REPORT_WEBHOOK_HEADERS"), "\n"),
		},
		Server: ServerConfig{
			Addr:           getenv("SERVER_ADDR", ":8080"),
			TokenHash:      os.Getenv("REPORT_API_TOKEN_HASH"),
			AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS"), ","),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "text"),
		},
	}, nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// splitList - sep으로 나누고 공백 제거, 빈 항목은 버림
func splitList(raw, sep string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(raw, sep) {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
