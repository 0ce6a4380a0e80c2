package service

import (
	"archive/zip"
	"bytes"
	"context"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/repository"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	sheetSummary     = "Summary"
	sheetReflections = "Reflections"
	sheetGlossary    = "Glossary"
	manifestName     = "manifest.json"
)

type ExportService struct {
	store   *repository.RecordStore
	log     *LearningLogService
	storage *StorageService
	now     func() time.Time
}

func NewExportService(store *repository.RecordStore, log *LearningLogService, storage *StorageService) *ExportService {
	return &ExportService{store: store, log: log, storage: storage, now: time.Now}
}

// SessionSummary 当前会话的学习记录工作簿
func (s *ExportService) SessionSummary(sess *model.Session) (*bytes.Buffer, string, error) {
	reflections, err := s.log.SessionReflections(sess.ID)
	if err != nil {
		return nil, "", err
	}
	glossary, err := s.log.SessionGlossary(sess.ID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetSummary)
	f.NewSheet(sheetReflections)
	f.NewSheet(sheetGlossary)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})

	summary := [][]interface{}{
		{"Field", "Value"},
		{"Session", sess.ID},
		{"Student", sess.Student},
		{"Group", sess.Group},
		{"Role", string(sess.Role)},
		{"Direction", fmt.Sprintf("%s → %s", sess.Settings.SourceLang, sess.Settings.TargetLang)},
		{"CEFR", sess.Settings.CEFR},
		{"Style", sess.Settings.Style},
		{"Tone", sess.Settings.Tone},
		{"Domain", sess.Settings.Domain},
		{"Reflections", len(reflections)},
		{"Glossary entries", len(glossary)},
	}
	if wf := sess.Workflow; wf != nil {
		summary = append(summary,
			[]interface{}{"Assignment", wf.Assignment.Code + " " + wf.Assignment.Title},
			[]interface{}{"Assignment state", string(wf.State)},
		)
	}
	if q := sess.Quiz; q != nil {
		summary = append(summary, []interface{}{"Quiz", fmt.Sprintf("%s: %d/%d", q.Target, q.Score, q.Total)})
	}
	summary = append(summary, []interface{}{"Generated", model.FormatTimestamp(s.now())})
	writeRows(f, sheetSummary, summary, headerStyle)

	rows := [][]interface{}{{"timestamp", "source_lang", "target_lang", "domain", "tone", "text", "reflection"}}
	for _, r := range reflections {
		rows = append(rows, []interface{}{
			model.FormatTimestamp(r.Timestamp), string(r.SourceLang), string(r.TargetLang), r.Domain, r.Tone, r.Text, r.Reflection,
		})
	}
	writeRows(f, sheetReflections, rows, headerStyle)

	rows = [][]interface{}{{"timestamp", "lemma", "notes"}}
	for _, g := range glossary {
		rows = append(rows, []interface{}{model.FormatTimestamp(g.Timestamp), g.Lemma, g.Notes})
	}
	writeRows(f, sheetGlossary, rows, headerStyle)

	f.SetColWidth(sheetSummary, "A", "A", 18)
	f.SetColWidth(sheetSummary, "B", "B", 48)
	f.SetColWidth(sheetReflections, "F", "G", 60)
	f.SetColWidth(sheetGlossary, "B", "C", 40)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		logger.Log.Error("failed to write summary workbook", zap.Error(err))
		return nil, "", err
	}
	return buf, fmt.Sprintf("session_%s_summary.xlsx", sess.ID), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) {
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		f.SetSheetRow(sheet, cell, &r)
	}
	if len(rows) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
		f.SetCellStyle(sheet, "A1", last, headerStyle)
	}
}

type manifestEntry struct {
	Kind    model.RecordKind `json:"kind"`
	File    string           `json:"file"`
	Version int              `json:"version"`
	Columns []string         `json:"columns"`
	Present bool             `json:"present"`
}

type manifest struct {
	GeneratedAt string          `json:"generatedAt"`
	Records     []manifestEntry `json:"records"`
}

// Bundle 打包全部已存在的记录文件，附带 schema 版本清单
func (s *ExportService) Bundle() (*bytes.Buffer, string, error) {
	now := s.now()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	m := manifest{GeneratedAt: model.FormatTimestamp(now)}
	for _, kind := range model.RecordKinds() {
		schema, _ := model.SchemaFor(kind)
		entry := manifestEntry{Kind: kind, File: kind.FileName(), Version: schema.Version, Columns: schema.Columns}

		data, ok, err := s.store.ReadFile(kind)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", kind, err)
		}
		if ok {
			entry.Present = true
			w, err := zw.CreateHeader(&zip.FileHeader{Name: kind.FileName(), Method: zip.Deflate, Modified: now})
			if err != nil {
				return nil, "", err
			}
			if _, err := w.Write(data); err != nil {
				return nil, "", err
			}
		}
		m.Records = append(m.Records, entry)
	}

	w, err := zw.Create(manifestName)
	if err != nil {
		return nil, "", err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, "", err
	}
	if err := zw.Close(); err != nil {
		return nil, "", err
	}

	return buf, fmt.Sprintf("edu_translator_%s.zip", now.Format("20060102_150405")), nil
}

const archivePrefix = "bundles/"

var archiveNamePattern = regexp.MustCompile(`^edu_translator_\d{8}_\d{6}\.zip$`)

type ArchiveResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int    `json:"size"`
}

// Archive 生成打包文件并上传到配置的存储
func (s *ExportService) Archive(ctx context.Context) (*ArchiveResult, error) {
	if s.storage == nil || s.storage.Provider == nil {
		return nil, util.ErrStorageNotConfigured
	}
	buf, name, err := s.Bundle()
	if err != nil {
		return nil, err
	}

	key := archivePrefix + name
	size := buf.Len()
	url, err := s.storage.Put(ctx, key, buf, int64(size), util.MimeZip)
	if err != nil {
		return nil, fmt.Errorf("upload bundle: %w", err)
	}
	logger.FromContext(ctx).Info("bundle archived", zap.String("key", key), zap.Int("size", size))
	return &ArchiveResult{Key: key, URL: url, Size: size}, nil
}

// DeleteArchive 删除一个已上传的打包文件；只接受 Archive 生成的文件名
func (s *ExportService) DeleteArchive(ctx context.Context, name string) error {
	if !archiveNamePattern.MatchString(name) {
		return util.ErrArchiveNameInvalid
	}
	if err := s.storage.Remove(ctx, archivePrefix+name); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("bundle archive removed", zap.String("key", archivePrefix+name))
	return nil
}
