package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kube-rca/dependabot-report/internal/config"
	"github.com/kube-rca/dependabot-report/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlack struct {
	configured bool
	err        error
	sent       []model.ReportSummary
}

func (f *fakeSlack) IsConfigured() bool { return f.configured }

func (f *fakeSlack) SendReportSummary(ctx context.Context, summary model.ReportSummary) error {
	f.sent = append(f.sent, summary)
	return f.err
}

func sampleSummary() *model.ReportSummary {
	return &model.ReportSummary{
		RunID:        "run-1",
		Organization: "acme",
		GeneratedAt:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Counts:       []model.StateCount{{Repository: "api", Open: 2, Fixed: 1}},
		Advisories:   []model.AdvisoryDate{{GHSAID: "GHSA-1"}},
		TotalOpen:    2,
		TotalFixed:   1,
	}
}

func TestWebhookTargetFromConfig(t *testing.T) {
	assert.Nil(t, WebhookTargetFromConfig(config.WebhookConfig{}))

	target := WebhookTargetFromConfig(config.WebhookConfig{
		URL:     "http://hooks.local/report",
		Method:  "put",
		Headers: []string{"X-Token: abc", "invalid", " Content-Type : text/plain"},
	})
	require.NotNil(t, target)
	assert.Equal(t, http.MethodPut, target.Method)
	assert.Equal(t, model.DefaultWebhookBody, target.Body)
	assert.Equal(t, []model.WebhookHeader{
		{Key: "X-Token", Value: "abc"},
		{Key: "Content-Type", Value: "text/plain"},
	}, target.Headers)
}

func TestNotifyDeliversWebhook(t *testing.T) {
	var (
		mu      sync.Mutex
		method  string
		ctype   string
		payload map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method = r.Method
		ctype = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
	}))
	defer srv.Close()

	slack := &fakeSlack{configured: true}
	svc := NewNotifyService(slack, config.WebhookConfig{URL: srv.URL}, discardLogger())
	svc.Notify(context.Background(), sampleSummary())

	require.Len(t, slack.sent, 1)
	assert.Equal(t, "run-1", slack.sent[0].RunID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/json", ctype)
	assert.Equal(t, "run-1", payload["run_id"])
	assert.Equal(t, float64(2), payload["open"])
	assert.Equal(t, float64(1), payload["advisories"])
}

func TestNotifyIgnoresFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	slack := &fakeSlack{configured: true, err: errors.New("channel_not_found")}
	svc := NewNotifyService(slack, config.WebhookConfig{URL: srv.URL}, discardLogger())

	assert.NotPanics(t, func() { svc.Notify(context.Background(), sampleSummary()) })
	assert.Len(t, slack.sent, 1)

	err := svc.sendHTTP(context.Background(), *svc.webhook, "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNotifySkipsUnconfiguredSlack(t *testing.T) {
	slack := &fakeSlack{}
	NewNotifyService(slack, config.WebhookConfig{}, discardLogger()).Notify(context.Background(), sampleSummary())
	assert.Empty(t, slack.sent)
}

type fakeReportRepo struct {
	schemaErr error
	saveErr   error
	saved     []*model.ReportSummary
}

func (f *fakeReportRepo) EnsureReportSchema(ctx context.Context) error { return f.schemaErr }

func (f *fakeReportRepo) SaveReport(ctx context.Context, summary *model.ReportSummary) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, summary)
	return nil
}

func TestExport(t *testing.T) {
	repo := &fakeReportRepo{}
	NewExportService(repo, discardLogger()).Export(context.Background(), sampleSummary())
	assert.Len(t, repo.saved, 1)

	failing := &fakeReportRepo{schemaErr: errors.New("permission denied")}
	assert.NotPanics(t, func() {
		NewExportService(failing, discardLogger()).Export(context.Background(), sampleSummary())
	})
	assert.Empty(t, failing.saved)

	rejected := &fakeReportRepo{saveErr: errors.New("duplicate key")}
	assert.NotPanics(t, func() {
		NewExportService(rejected, discardLogger()).Export(context.Background(), sampleSummary())
	})
	assert.Empty(t, rejected.saved)
}
