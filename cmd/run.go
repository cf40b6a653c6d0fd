package cmd

import (
	"context"
	"fmt"

	"github.com/kube-rca/dependabot-report/internal/client"
	"github.com/kube-rca/dependabot-report/internal/db"
	"github.com/kube-rca/dependabot-report/internal/model"
	"github.com/kube-rca/dependabot-report/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	force  bool
	export bool
	notify bool
)

// Run - 체크포인트가 없으면 추출 후 리포트 생성
var Run = &cobra.Command{
	Use:   "run",
	Short: "Extract alerts (unless the checkpoint exists) and generate reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd.Context())
	},
}

// Extract - raw 체크포인트만 생성
var Extract = &cobra.Command{
	Use:   "extract",
	Short: "Fetch all Dependabot alerts of the organization into the raw checkpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runExtract(cmd.Context())
		return err
	},
}

// Aggregate - 기존 체크포인트로 리포트만 생성
var Aggregate = &cobra.Command{
	Use:   "aggregate",
	Short: "Generate critical alert reports from the raw checkpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAggregate(cmd.Context())
	},
}

func ExtractFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&force, "force", false, "Fetch again even if the raw checkpoint exists (replaced only on success)")
}

func ReportFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&export, "export", true, "Export the run to PostgreSQL when DATABASE_URL or PGUSER/PGDATABASE is set")
	flags.BoolVar(&notify, "notify", true, "Send the summary to Slack and the report webhook when configured")
}

func init() {
	PipelineFlags(Run.Flags())
	ExtractFlags(Extract.Flags())
	ReportFlags(Aggregate.Flags())
}

func runPipeline(ctx context.Context) error {
	if _, err := runExtract(ctx); err != nil {
		return err
	}
	return runAggregate(ctx)
}

func runExtract(ctx context.Context) (service.ExtractResult, error) {
	gh, err := client.NewGitHubClient(ctx, cfg.GitHub)
	if err != nil {
		return service.ExtractResult{}, err
	}

	svc := service.NewExtractService(gh, gh, service.ExtractOptions{
		Organization: cfg.GitHub.Organization,
		OutputDir:    cfg.Output.Dir,
		Force:        force,
	}, logger)

	result, err := svc.Run(ctx)
	if err != nil {
		return result, fmt.Errorf("extract: %w", err)
	}
	if len(result.Failed) > 0 {
		logger.Warn("some repositories were not extracted", "failed", result.Failed)
	}
	return result, nil
}

func runAggregate(ctx context.Context) error {
	svc := service.NewReportService(service.ReportOptions{
		Organization: cfg.GitHub.Organization,
		OutputDir:    cfg.Output.Dir,
	}, logger)

	summary, err := svc.Generate(ctx)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	exportReport(ctx, summary)
	notifyReport(ctx, summary)
	return nil
}

// export 실패는 로그만 남김
func exportReport(ctx context.Context, summary *model.ReportSummary) {
	if !export || !cfg.Postgres.Enabled() {
		logger.Debug("skipping postgres export")
		return
	}

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		return
	}
	defer pool.Close()

	service.NewExportService(&db.Postgres{Pool: pool}, logger).Export(ctx, summary)
}

func notifyReport(ctx context.Context, summary *model.ReportSummary) {
	if !notify {
		return
	}
	service.NewNotifyService(client.NewSlackClient(cfg.Slack), cfg.Webhook, logger).Notify(ctx, summary)
}
