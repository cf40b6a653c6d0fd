package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kube-rca/dependabot-report/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDismissed(t *testing.T) {
	alerts := []model.ProcessedAlert{
		{Number: 1, State: model.StateOpen, DismissedAt: ts("2024-01-02T00:00:00Z")},
		{Number: 2, State: model.StateFixed},
		{Number: 3, State: model.StateAutoDismissed, DismissedAt: ts("2024-01-03T00:00:00Z")},
	}
	NormalizeDismissed(alerts)

	assert.Equal(t, model.StateDismissed, alerts[0].State)
	assert.Equal(t, model.StateFixed, alerts[1].State)
	assert.Equal(t, model.StateDismissed, alerts[2].State)
}

func TestFilterCritical(t *testing.T) {
	alerts := []model.ProcessedAlert{
		{Number: 1, Severity: "critical"},
		{Number: 2, Severity: "high"},
		{Number: 3, Severity: ""},
		{Number: 4, Severity: "CRITICAL"},
	}

	critical := FilterCritical(alerts)
	require.Len(t, critical, 1)
	assert.Equal(t, 1, critical[0].Number)
}

func TestCountByState(t *testing.T) {
	var alerts []model.ProcessedAlert
	for range 3 {
		alerts = append(alerts, model.ProcessedAlert{Repository: "r", State: model.StateOpen})
	}
	for range 2 {
		alerts = append(alerts, model.ProcessedAlert{Repository: "r", State: model.StateFixed})
	}
	alerts = append(alerts,
		model.ProcessedAlert{Repository: "q", State: model.StateDismissed},
		model.ProcessedAlert{Repository: "p", State: model.StateDismissed},
		model.ProcessedAlert{Repository: "s", State: model.StateAutoDismissed},
	)

	counts := CountByState(alerts)
	assert.Equal(t, []model.StateCount{
		{Repository: "r", Open: 3, Fixed: 2},
		{Repository: "p", Dismissed: 1},
		{Repository: "q", Dismissed: 1},
		{Repository: "s"},
	}, counts)

	assert.Equal(t, []model.StateCount{{Repository: "r", Open: 3, Fixed: 2}}, StateCounts(counts, model.StateOpen))
	assert.Equal(t, []string{"p", "q"}, repositories(StateCounts(counts, model.StateDismissed)))
	assert.Empty(t, StateCounts(counts, "unknown"))
}

func repositories(counts []model.StateCount) []string {
	names := make([]string, 0, len(counts))
	for _, c := range counts {
		names = append(names, c.Repository)
	}
	return names
}

func TestAlertsByDate(t *testing.T) {
	alerts := []model.ProcessedAlert{
		{GHSAID: "GHSA-1", State: model.StateOpen, CreatedAt: ts("2024-01-01T00:00:00Z")},
		{GHSAID: "GHSA-1", State: model.StateOpen, CreatedAt: ts("2024-03-01T00:00:00Z")},
		{GHSAID: "GHSA-1", State: model.StateFixed, CreatedAt: ts("2024-06-01T00:00:00Z")},
		{GHSAID: "GHSA-2", State: model.StateOpen, CreatedAt: ts("2024-02-01T00:00:00Z")},
		{GHSAID: "GHSA-3", State: model.StateDismissed, CreatedAt: ts("2024-05-01T00:00:00Z")},
		{GHSAID: "GHSA-4", State: model.StateOpen},
		{GHSAID: "", State: model.StateOpen, CreatedAt: ts("2024-07-01T00:00:00Z")},
	}

	dates := AlertsByDate(alerts)
	require.Len(t, dates, 3)
	assert.Equal(t, "GHSA-1", dates[0].GHSAID)
	assert.True(t, dates[0].CreatedAt.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "GHSA-2", dates[1].GHSAID)
	assert.Equal(t, "GHSA-4", dates[2].GHSAID)
	assert.Nil(t, dates[2].CreatedAt)
}

const rawHeader = "repository,number,state,url,html_url,created_at,updated_at,fixed_at," +
	"dismissed_at,dismissed_by,dismissed_reason,dismissed_comment,auto_dismissed_at," +
	"dependency.package.ecosystem,dependency.package.name,dependency.manifest_path,dependency.scope," +
	"security_advisory.ghsa_id,security_advisory.cve_id,security_advisory.summary,security_advisory.severity," +
	"security_vulnerability.vulnerable_version_range,security_vulnerability.first_patched_version.identifier\n"

func rawRow(repo, number, state, createdAt, dismissedAt, ghsa, severity string) string {
	cells := make([]string, len(RawColumns))
	cells[0], cells[1], cells[2] = repo, number, state
	cells[5], cells[8] = createdAt, dismissedAt
	cells[17], cells[19], cells[20] = ghsa, "summary of "+ghsa, severity
	return strings.Join(cells, ",") + "\n"
}

func writeRaw(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, model.RawAlertsFile), []byte(content), 0o644))
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func newReport(dir string) *ReportService {
	s := NewReportService(ReportOptions{Organization: "acme", OutputDir: dir}, discardLogger())
	s.now = func() time.Time { return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestGenerateReports(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, rawHeader+
		rawRow("r", "1", "open", "2024-01-01T00:00:00Z", "", "GHSA-1", "critical")+
		rawRow("r", "2", "open", "2024-02-01T00:00:00Z", "", "GHSA-1", "critical")+
		rawRow("r", "3", "open", "2024-01-15T00:00:00Z", "2024-03-01T00:00:00Z", "GHSA-2", "critical")+
		rawRow("r", "4", "fixed", "2024-01-01T00:00:00Z", "", "GHSA-3", "critical")+
		rawRow("q", "1", "fixed", "2024-01-01T00:00:00Z", "", "GHSA-3", "critical")+
		rawRow("q", "2", "open", "2024-01-01T00:00:00Z", "", "GHSA-4", "high")+
		rawRow("p", "1", "open", "2024-01-01T00:00:00Z", "", "GHSA-5", ""))

	summary, err := newReport(dir).Generate(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, "acme", summary.Organization)
	assert.Len(t, summary.CriticalAlerts, 5)
	assert.Equal(t, 2, summary.TotalOpen)
	assert.Equal(t, 1, summary.TotalDismissed)
	assert.Equal(t, 2, summary.TotalFixed)

	critical := readOutput(t, dir, model.CriticalAlertsFile)
	assert.True(t, strings.HasPrefix(critical,
		"repository,number,state,created_at,fixed_at,dismissed_at,dismissed_by,dismissed_reason,dismissed_comment,summary,ghsa_id,url\n"))
	assert.NotContains(t, critical, "severity")
	assert.Contains(t, critical, "r,3,dismissed,2024-01-15T00:00:00Z,,2024-03-01T00:00:00Z,")
	assert.Equal(t, 6, strings.Count(critical, "\n"))

	assert.Equal(t, "repository,open,dismissed,fixed\nr,2,1,1\nq,0,0,1\n",
		readOutput(t, dir, model.AllCriticalCountFile))
	assert.Equal(t, "repository,open\nr,2\n", readOutput(t, dir, model.StateCountFile(model.StateOpen)))
	assert.Equal(t, "repository,dismissed\nr,1\n", readOutput(t, dir, model.StateCountFile(model.StateDismissed)))
	assert.Equal(t, "repository,fixed\nq,1\nr,1\n", readOutput(t, dir, model.StateCountFile(model.StateFixed)))
	assert.Equal(t, "ghsa_id,created_at\nGHSA-1,2024-02-01T00:00:00Z\n", readOutput(t, dir, model.AlertsByDateFile))
}

func TestGenerateEmptyCheckpoint(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, rawHeader)

	summary, err := newReport(dir).Generate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Counts)

	assert.Equal(t, "repository,open,dismissed,fixed\n", readOutput(t, dir, model.AllCriticalCountFile))
	assert.Equal(t, "ghsa_id,created_at\n", readOutput(t, dir, model.AlertsByDateFile))
	assert.Equal(t,
		"repository,number,state,created_at,fixed_at,dismissed_at,dismissed_by,dismissed_reason,dismissed_comment,summary,ghsa_id,url\n",
		readOutput(t, dir, model.CriticalAlertsFile))
}

func TestGenerateMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "repository,number,state\napi,1,open\n")

	_, err := newReport(dir).Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestGenerateMissingCheckpoint(t *testing.T) {
	_, err := newReport(t.TempDir()).Generate(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerateInvalidRow(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, rawHeader+rawRow("r", "one", "open", "", "", "GHSA-1", "critical"))

	_, err := newReport(dir).Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestGenerateIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, rawHeader+rawRow("r", "1", "open", "2024-01-01T00:00:00Z", "", "GHSA-1", "critical"))

	s := newReport(dir)
	_, err := s.Generate(context.Background())
	require.NoError(t, err)
	first := readOutput(t, dir, model.AllCriticalCountFile)

	_, err = s.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, readOutput(t, dir, model.AllCriticalCountFile))
}

func TestGenerateSkipsDuplicateCheckpointRows(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, rawHeader+
		rawRow("r", "1", "open", "2024-01-01T00:00:00Z", "", "GHSA-1", "critical")+
		rawRow("r", "1", "fixed", "2024-01-01T00:00:00Z", "", "GHSA-1", "critical")+
		rawRow("q", "1", "open", "2024-01-01T00:00:00Z", "", "GHSA-1", "critical"))

	summary, err := newReport(dir).Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.CriticalAlerts, 2)
	assert.Equal(t, model.StateOpen, summary.CriticalAlerts[0].State)
	assert.Equal(t, 2, summary.TotalOpen)
	assert.Zero(t, summary.TotalFixed)
}
