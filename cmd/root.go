package cmd

import (
	"context"
	"log/slog"

	"github.com/kube-rca/dependabot-report/internal/config"
	"github.com/kube-rca/dependabot-report/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	cfg    config.Config
	logger *slog.Logger

	outputDir string
	logLevel  string
	logFormat string
)

// Root - 하위 명령 없이 실행하면 전체 파이프라인 수행
var Root = &cobra.Command{
	Use:           "dependabot-report",
	Short:         "Extract Dependabot alerts of a GitHub organization and build critical alert reports",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}

		// 플래그가 환경변수보다 우선
		if outputDir != "" {
			cfg.Output.Dir = outputDir
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if logFormat != "" {
			cfg.Log.Format = logFormat
		}

		logger = logging.New(cfg.Log)
		slog.SetDefault(logger)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd.Context())
	},
}

// Execute - root 명령 실행 (ctx는 SIGINT/SIGTERM 시 main에서 취소)
func Execute(ctx context.Context) error {
	return Root.ExecuteContext(ctx)
}

func init() {
	flags := Root.PersistentFlags()
	flags.StringVar(&outputDir, "output-dir", "", "Directory for the checkpoint and reports (default $OUTPUT_DIR or outputs)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL or info)")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text or json (default $LOG_FORMAT or text)")

	PipelineFlags(Root.Flags())

	Root.AddCommand(Run, Extract, Aggregate, Serve)
}

// PipelineFlags - root와 run 명령이 공유하는 플래그 등록
func PipelineFlags(flags *pflag.FlagSet) {
	ExtractFlags(flags)
	ReportFlags(flags)
}
