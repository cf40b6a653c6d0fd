// 프로세스 전역 slog 로거 생성 (LogConfig 기반)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kube-rca/dependabot-report/internal/config"
)

func New(cfg config.LogConfig) *slog.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

func NewWithWriter(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", "dependabot-report")
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
