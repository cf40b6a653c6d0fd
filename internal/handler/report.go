package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/dependabot-report/internal/model"
	"github.com/kube-rca/dependabot-report/internal/table"
)

// ReportHandler - 출력 디렉토리의 리포트 파일을 조회하는 핸들러
// model.ReportFiles()에 있는 이름만 허용 (경로 조작 방지)
type ReportHandler struct {
	dir string
}

func NewReportHandler(dir string) *ReportHandler {
	return &ReportHandler{dir: dir}
}

// ListReports godoc
// @Summary List report files
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.ReportListResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	files := model.ReportFiles()
	data := make([]model.ReportFileInfo, 0, len(files))

	for _, name := range files {
		info := model.ReportFileInfo{Name: name}

		stat, err := os.Stat(filepath.Join(h.dir, name))
		switch {
		case err == nil:
			modified := stat.ModTime().UTC()
			info.Exists = true
			info.Size = stat.Size()
			info.ModifiedAt = &modified
		case errors.Is(err, fs.ErrNotExist):
		default:
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
			return
		}
		data = append(data, info)
	}

	c.JSON(http.StatusOK, model.ReportListResponse{Status: "success", Data: data})
}

// GetReport godoc
// @Summary Get report rows
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param name path string true "Report file name"
// @Success 200 {object} model.ReportDataResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/reports/{name} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	path, ok := h.reportPath(c)
	if !ok {
		return
	}

	t, err := table.ReadFile(path)
	if err != nil {
		h.fileError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ReportDataResponse{
		Status:  "success",
		Name:    c.Param("name"),
		Columns: t.Columns,
		Rows:    t.Records(),
	})
}

// DownloadReport godoc
// @Summary Download report as CSV
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param name path string true "Report file name"
// @Success 200 {file} file
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/reports/{name}/csv [get]
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	path, ok := h.reportPath(c)
	if !ok {
		return
	}

	if _, err := os.Stat(path); err != nil {
		h.fileError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.FileAttachment(path, c.Param("name"))
}

func (h *ReportHandler) reportPath(c *gin.Context) (string, bool) {
	name := c.Param("name")
	if !slices.Contains(model.ReportFiles(), name) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "unknown report: " + name})
		return "", false
	}
	return filepath.Join(h.dir, name), true
}

func (h *ReportHandler) fileError(c *gin.Context, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "report not generated yet"})
		return
	}
	c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
}
