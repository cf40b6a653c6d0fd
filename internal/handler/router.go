package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/dependabot-report/internal/config"
)

// NewRouter - 리포트 조회 API 라우터 구성
//
//	GET /ping, GET /
//	GET /api/v1/reports
//	GET /api/v1/reports/:name
//	GET /api/v1/reports/:name/csv
func NewRouter(cfg config.ServerConfig, outputDir string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger), CORSMiddleware(cfg.AllowedOrigins, false))

	router.GET("/ping", Ping)
	router.GET("/", Root)

	reports := NewReportHandler(outputDir)
	api := router.Group("/api/v1", AuthMiddleware(cfg.TokenHash))
	api.GET("/reports", reports.ListReports)
	api.GET("/reports/:name", reports.GetReport)
	api.GET("/reports/:name/csv", reports.DownloadReport)

	return router
}
