// Slack 리포트 요약 메시지 관련 메서드 정의

package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kube-rca/dependabot-report/internal/model"
)

// 메시지에 표시할 open 알림 상위 저장소 수
const slackTopRepositories = 5

// 리포트 요약을 Slack으로 전송
//
// 전체 open/dismissed/fixed 합계와 open 알림이 많은 저장소 상위 목록을 하나의 attachment로 구성
func (c *SlackClient) SendReportSummary(ctx context.Context, summary model.ReportSummary) error {
	if !c.IsConfigured() {
		return fmt.Errorf("slack bot token or channel ID not configured")
	}

	title := fmt.Sprintf("%s [%s] Dependabot critical alerts",
		c.getEmojiByOpen(summary.TotalOpen),
		summary.Organization,
	)

	fields := []SlackField{
		{Title: "Open", Value: strconv.Itoa(summary.TotalOpen), Short: true},
		{Title: "Dismissed", Value: strconv.Itoa(summary.TotalDismissed), Short: true},
		{Title: "Fixed", Value: strconv.Itoa(summary.TotalFixed), Short: true},
		{Title: "Advisories", Value: strconv.Itoa(len(summary.Advisories)), Short: true},
	}

	msg := SlackMessage{
		Channel: c.channelID,
		Attachments: []SlackAttachment{
			{
				Color:  c.getColorByOpen(summary.TotalOpen),
				Title:  title,
				Text:   topRepositoriesText(summary.Counts, slackTopRepositories),
				Fields: fields,
				Footer: "dependabot-report " + summary.RunID,
				Ts:     summary.GeneratedAt.Unix(),
			},
		},
	}

	_, err := c.send(ctx, msg)
	return err
}

// Counts는 open 내림차순으로 정렬되어 있다고 가정
func topRepositoriesText(counts []model.StateCount, limit int) string {
	var b strings.Builder
	for _, count := range counts {
		if limit == 0 || count.Open == 0 {
			break
		}
		fmt.Fprintf(&b, "• `%s`: %d open\n", count.Repository, count.Open)
		limit--
	}
	if b.Len() == 0 {
		return "No open critical alerts"
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// open 알림 유무에 따른 적절한 메시지 색상 반환
func (c *SlackClient) getColorByOpen(open int) string {
	if open == 0 {
		return "#36a64f" // green
	}
	return "#dc3545" // red
}

// open 알림 유무에 따른 적절한 메시지 이모지 반환
func (c *SlackClient) getEmojiByOpen(open int) string {
	if open == 0 {
		return "✅"
	}
	return "🔥"
}
