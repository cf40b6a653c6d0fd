package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/dependabot-report/internal/handler"
	"github.com/spf13/cobra"
)

var serverAddr string

// Serve - 생성된 리포트를 HTTP로 제공
var Serve = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generated reports over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serverAddr != "" {
			cfg.Server.Addr = serverAddr
		}
		return serve(cmd.Context())
	},
}

func init() {
	Serve.Flags().StringVar(&serverAddr, "addr", "", "Listen address (default $SERVER_ADDR or :8080)")
}

func serve(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.NewRouter(cfg.Server, cfg.Output.Dir, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("report server listening", "addr", srv.Addr, "output_dir", cfg.Output.Dir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down report server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
