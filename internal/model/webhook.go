package model

// WebhookHeader - 헤더 키-값 쌍
type WebhookHeader struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// WebhookTarget - 리포트 요약을 전송할 webhook 설정
type WebhookTarget struct {
	URL     string          `json:"url"`
	Method  string          `json:"method"`
	Headers []WebhookHeader `json:"headers"`
	Body    string          `json:"body"`
}

// DefaultWebhookBody - REPORT_WEBHOOK_BODY 미설정 시 사용하는 JSON 템플릿
const DefaultWebhookBody = `{"run_id":"{{run.id}}","organization":"{{run.organization}}","generated_at":"{{run.generated_at}}","open":{{report.open}},"dismissed":{{report.dismissed}},"fixed":{{report.fixed}},"repositories":{{report.repositories}},"advisories":{{report.advisories}}}`
