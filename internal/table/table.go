// CSV 테이블 (extract/aggregate 단계 간 교환 형식)
//
// 빈 셀은 null로 취급
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var ErrMissingHeader = errors.New("table has no header row")

type Table struct {
	Columns []string
	Rows    [][]string
}

func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Index - col의 위치 반환 (없으면 -1)
func (t *Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Project - cols만 지정한 순서대로 가진 새 테이블 반환
func (t *Table) Project(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, col := range cols {
		if idx[i] = t.Index(col); idx[i] < 0 {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	out := New(cols...)
	out.Rows = make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		projected := make([]string, len(idx))
		for i, j := range idx {
			projected[i] = row[j]
		}
		out.Rows = append(out.Rows, projected)
	}
	return out, nil
}

// Rename - 컬럼 이름을 제자리에서 변경 (없는 이름은 무시)
func (t *Table) Rename(names map[string]string) *Table {
	for i, col := range t.Columns {
		if renamed, ok := names[col]; ok {
			t.Columns[i] = renamed
		}
	}
	return t
}

// Drop - cols를 제외한 새 테이블 반환 (없는 컬럼은 무시)
func (t *Table) Drop(cols ...string) *Table {
	drop := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		drop[col] = struct{}{}
	}

	var keep []int
	for i, col := range t.Columns {
		if _, ok := drop[col]; !ok {
			keep = append(keep, i)
		}
	}

	out := New()
	for _, i := range keep {
		out.Columns = append(out.Columns, t.Columns[i])
	}
	out.Rows = make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		kept := make([]string, len(keep))
		for j, i := range keep {
			kept[j] = row[i]
		}
		out.Rows = append(out.Rows, kept)
	}
	return out
}

// Records - 컬럼 이름을 키로 하는 행 목록
func (t *Table) Records() []map[string]string {
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			record[col] = row[i]
		}
		records = append(records, record)
	}
	return records
}

func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := New(header...)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (t *Table) Write(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// WriteFile - 같은 디렉터리의 임시 파일에 쓴 뒤 rename으로 교체
// (읽는 쪽은 부분적으로 쓰인 테이블을 보지 않음)
func (t *Table) WriteFile(path string) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := t.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
