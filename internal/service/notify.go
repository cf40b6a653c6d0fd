package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kube-rca/dependabot-report/internal/config"
	"github.com/kube-rca/dependabot-report/internal/model"
	tmpl "github.com/kube-rca/dependabot-report/internal/template"
)

// SlackNotifier - 리포트 요약을 Slack으로 전송 (client.SlackClient)
type SlackNotifier interface {
	IsConfigured() bool
	SendReportSummary(ctx context.Context, summary model.ReportSummary) error
}

// NotifyService - 집계 결과를 Slack과 webhook으로 전송하는 서비스
//
// 전송 실패는 로그만 남기고 실행을 실패시키지 않습니다.
type NotifyService struct {
	slack      SlackNotifier
	webhook    *model.WebhookTarget
	httpClient *http.Client
	logger     *slog.Logger
}

// NewNotifyService 생성자
// slack이 nil이거나 webhook URL이 비어 있으면 해당 채널은 건너뜀
func NewNotifyService(slack SlackNotifier, cfg config.WebhookConfig, logger *slog.Logger) *NotifyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifyService{
		slack:   slack,
		webhook: WebhookTargetFromConfig(cfg),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// WebhookTargetFromConfig - URL이 없으면 nil
func WebhookTargetFromConfig(cfg config.WebhookConfig) *model.WebhookTarget {
	if cfg.URL == "" {
		return nil
	}

	target := &model.WebhookTarget{
		URL:    cfg.URL,
		Method: strings.ToUpper(cfg.Method),
		Body:   cfg.Body,
	}
	if target.Method == "" {
		target.Method = http.MethodPost
	}
	if target.Body == "" {
		target.Body = model.DefaultWebhookBody
	}
	for _, raw := range cfg.Headers {
		key, value, ok := strings.Cut(raw, ":")
		if !ok {
			continue
		}
		target.Headers = append(target.Headers, model.WebhookHeader{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}
	return target
}

// Notify - 설정된 모든 채널로 요약 전송
func (s *NotifyService) Notify(ctx context.Context, summary *model.ReportSummary) {
	if summary == nil {
		return
	}

	if s.slack != nil && s.slack.IsConfigured() {
		if err := s.slack.SendReportSummary(ctx, *summary); err != nil {
			s.logger.Error("failed to send slack summary", "run_id", summary.RunID, "error", err)
		} else {
			s.logger.Info("slack summary sent", "run_id", summary.RunID)
		}
	}

	if s.webhook != nil {
		run, report := tmpl.DataFromSummary(*summary)
		rendered := tmpl.RenderBody(s.webhook.Body, &run, &report)

		if err := s.sendHTTP(ctx, *s.webhook, rendered); err != nil {
			s.logger.Error("failed to deliver webhook", "url", s.webhook.URL, "run_id", summary.RunID, "error", err)
		} else {
			s.logger.Info("webhook delivered", "url", s.webhook.URL, "run_id", summary.RunID)
		}
	}
}

// sendHTTP - 단일 webhook으로 HTTP 요청 전송
func (s *NotifyService) sendHTTP(ctx context.Context, target model.WebhookTarget, body string) error {
	req, err := http.NewRequestWithContext(ctx, target.Method, target.URL, bytes.NewBufferString(body))
	if err != nil {
		return err
	}

	// Content-Type 기본값 설정 (없으면 application/json)
	hasContentType := false
	for _, h := range target.Headers {
		if h.Key != "" {
			req.Header.Set(h.Key, h.Value)
		}
		if http.CanonicalHeaderKey(h.Key) == "Content-Type" {
			hasContentType = true
		}
	}
	if !hasContentType {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
