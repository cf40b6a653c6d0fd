package model

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReportFileInfo - 리포트 목록 조회 응답 항목
type ReportFileInfo struct {
	Name       string     `json:"name"`
	Exists     bool       `json:"exists"`
	Size       int64      `json:"size"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

type ReportListResponse struct {
	Status string           `json:"status"`
	Data   []ReportFileInfo `json:"data"`
}

// ReportDataResponse - 리포트 내용 조회 응답 (CSV 행을 컬럼명 기준 객체로 변환)
type ReportDataResponse struct {
	Status  string              `json:"status"`
	Name    string              `json:"name"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}
