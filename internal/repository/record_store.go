package repository

import (
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/monitoring"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RecordStore 每种记录一个 CSV 文件，只追加不修改
//
// 追加时读出整个文件、加一行、写临时文件后原子替换。
// 同一进程内按记录类型串行化写入；多个进程共享同一目录时不做协调。
type RecordStore struct {
	dir   string
	mu    sync.Mutex
	locks map[model.RecordKind]*sync.RWMutex
}

// encoding/csv 读取时会把引号内的 \r\n 折叠成 \n，\r 落盘前转义
var (
	fieldEscaper   = strings.NewReplacer(`\`, `\\`, "\r", `\r`)
	fieldUnescaper = strings.NewReplacer(`\\`, `\`, `\r`, "\r")
)

func NewRecordStore(dir string) (*RecordStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create records dir: %w", err)
	}
	return &RecordStore{
		dir:   dir,
		locks: make(map[model.RecordKind]*sync.RWMutex),
	}, nil
}

func (s *RecordStore) Dir() string {
	return s.dir
}

func (s *RecordStore) Path(kind model.RecordKind) string {
	return filepath.Join(s.dir, kind.FileName())
}

func (s *RecordStore) lock(kind model.RecordKind) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[kind]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[kind] = l
	}
	return l
}

// Append 追加一行；不在 schema 中的列直接拒绝，缺失的列写空值
func (s *RecordStore) Append(kind model.RecordKind, row model.Row) error {
	schema, ok := model.SchemaFor(kind)
	if !ok {
		return fmt.Errorf("%w: %s", util.ErrUnknownRecordKind, kind)
	}
	for col := range row {
		if !schema.Has(col) {
			return fmt.Errorf("%w: %s.%s", util.ErrUnknownColumn, kind, col)
		}
	}

	l := s.lock(kind)
	l.Lock()
	defer l.Unlock()

	header, rows, err := s.readFile(kind)
	if err != nil {
		return err
	}

	columns := mergeColumns(schema.Columns, header)
	rows = append(rows, row)

	if err := s.writeFile(kind, columns, rows); err != nil {
		return err
	}

	monitoring.RecordAppendCounter.WithLabelValues(string(kind)).Inc()
	return nil
}

// ReadAll 文件不存在时返回空切片；每行都补齐 schema 中的列
func (s *RecordStore) ReadAll(kind model.RecordKind) ([]model.Row, error) {
	schema, ok := model.SchemaFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrUnknownRecordKind, kind)
	}

	l := s.lock(kind)
	l.RLock()
	defer l.RUnlock()

	_, rows, err := s.readFile(kind)
	if err != nil {
		return nil, err
	}

	result := make([]model.Row, 0, len(rows))
	for _, row := range rows {
		for _, col := range schema.Columns {
			if _, ok := row[col]; !ok {
				row[col] = ""
			}
		}
		result = append(result, row)
	}
	return result, nil
}

// ReadFile 返回记录文件的原始内容，文件不存在时 exists 为 false
func (s *RecordStore) ReadFile(kind model.RecordKind) (data []byte, exists bool, err error) {
	l := s.lock(kind)
	l.RLock()
	defer l.RUnlock()

	data, err = os.ReadFile(s.Path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *RecordStore) readFile(kind model.RecordKind) ([]string, []model.Row, error) {
	f, err := os.Open(s.Path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// 旧文件的列数可能不一致
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", kind.FileName(), err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	header := records[0]
	rows := make([]model.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(model.Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = fieldUnescaper.Replace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func (s *RecordStore) writeFile(kind model.RecordKind, columns []string, rows []model.Row) error {
	tmp, err := os.CreateTemp(s.dir, string(kind)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		tmp.Close()
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = fieldEscaper.Replace(row[col])
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, s.Path(kind))
}

// mergeColumns schema 列在前，旧文件中额外的列保留在后面，避免丢数据
func mergeColumns(schema, existing []string) []string {
	columns := make([]string, 0, len(schema)+len(existing))
	seen := make(map[string]bool, len(schema)+len(existing))
	for _, c := range schema {
		columns = append(columns, c)
		seen[c] = true
	}
	for _, c := range existing {
		if !seen[c] {
			columns = append(columns, c)
			seen[c] = true
		}
	}
	return columns
}
