package service

import (
	"archive/zip"
	"bytes"
	"context"
	"edu_translator_backend/internal/config"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/util"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func setupExport(t *testing.T, storage *StorageService) (*ExportService, *LearningLogService, *testRepos) {
	t.Helper()
	repos := newTestRepos(t)
	log := NewLearningLogService(repos.reflections, repos.glossary, repos.translations)
	svc := NewExportService(repos.store, log, storage)
	svc.now = func() time.Time { return time.Date(2025, 3, 3, 12, 0, 0, 0, time.Local) }
	return svc, log, repos
}

// ── Bundle 测试 ──

func TestExportService_Bundle(t *testing.T) {
	svc, _, repos := setupExport(t, nil)
	_ = repos.submissions.Create(&model.Submission{Code: "A-1", FinalText: "done"})
	_ = repos.glossary.Create(&model.GlossaryEntry{Lemma: "x"})

	buf, name, err := svc.Bundle()
	if err != nil {
		t.Fatalf("打包失败: %v", err)
	}
	if name != "edu_translator_20250303_120000.zip" {
		t.Errorf("文件名不正确: %s", name)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("读取压缩包失败: %v", err)
	}
	files := make(map[string]*zip.File)
	for _, f := range zr.File {
		files[f.Name] = f
	}
	if _, ok := files["submissions.csv"]; !ok {
		t.Errorf("压缩包应包含 submissions.csv")
	}
	if _, ok := files["reflections.csv"]; ok {
		t.Errorf("不存在的记录文件不应打包")
	}

	rc, err := files[manifestName].Open()
	if err != nil {
		t.Fatalf("缺少清单文件: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("清单格式错误: %v", err)
	}
	if len(m.Records) != len(model.RecordKinds()) {
		t.Fatalf("清单应列出全部记录类型，实际 %d", len(m.Records))
	}
	for _, r := range m.Records {
		schema, _ := model.SchemaFor(r.Kind)
		if r.Version != schema.Version {
			t.Errorf("%s 版本应为 %d，实际 %d", r.Kind, schema.Version, r.Version)
		}
		wantPresent := r.Kind == model.KindSubmissions || r.Kind == model.KindGlossary
		if r.Present != wantPresent {
			t.Errorf("%s present 应为 %v", r.Kind, wantPresent)
		}
	}
}

// ── SessionSummary 测试 ──

func TestExportService_SessionSummary(t *testing.T) {
	svc, log, _ := setupExport(t, nil)
	sess := newStudent("G1")
	other := newStudent("G1")
	_, _ = log.SaveReflection(sess, SaveReflectionRequest{Text: "hello", Reflection: "r1"})
	_, _ = log.SaveReflection(other, SaveReflectionRequest{Text: "not mine"})
	_, _ = log.SaveGlossary(sess, SaveGlossaryRequest{Lemma: "ubiquitous"})

	buf, name, err := svc.SessionSummary(sess)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if !strings.HasSuffix(name, ".xlsx") || !strings.Contains(name, sess.ID) {
		t.Errorf("文件名不正确: %s", name)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开工作簿失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetReflections)
	if err != nil {
		t.Fatalf("读取 Reflections 失败: %v", err)
	}
	if len(rows) != 2 || rows[1][5] != "hello" {
		t.Errorf("只应导出本会话的反思，实际: %v", rows)
	}
	glossary, _ := f.GetRows(sheetGlossary)
	if len(glossary) != 2 || glossary[1][1] != "ubiquitous" {
		t.Errorf("词汇表不正确: %v", glossary)
	}
	student, _ := f.GetCellValue(sheetSummary, "B3")
	if student != "Lina" {
		t.Errorf("汇总页学生姓名不正确: %q", student)
	}
}

// ── Archive 测试 ──

func TestExportService_Archive_Local(t *testing.T) {
	root := t.TempDir()
	storage := NewStorageService(context.Background(), &config.StorageConfig{Type: util.StorageLocal, LocalPath: root})
	svc, _, repos := setupExport(t, storage)
	_ = repos.submissions.Create(&model.Submission{Code: "A-1"})

	result, err := svc.Archive(context.Background())
	if err != nil {
		t.Fatalf("归档失败: %v", err)
	}
	if result.URL != "/api/teacher/archives/"+result.Key {
		t.Errorf("本地归档地址应在教师路由下，实际 %s", result.URL)
	}
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(result.Key)))
	if err != nil || info.Size() != int64(result.Size) {
		t.Errorf("归档文件未正确写入: %v", err)
	}
}

func TestExportService_DeleteArchive(t *testing.T) {
	root := t.TempDir()
	storage := NewStorageService(context.Background(), &config.StorageConfig{Type: util.StorageLocal, LocalPath: root})
	svc, _, _ := setupExport(t, storage)

	result, err := svc.Archive(context.Background())
	if err != nil {
		t.Fatalf("归档失败: %v", err)
	}
	name := strings.TrimPrefix(result.Key, archivePrefix)

	for _, bad := range []string{"../submissions.csv", "submissions.csv", "edu_translator_x.zip"} {
		if err := svc.DeleteArchive(context.Background(), bad); !errors.Is(err, util.ErrArchiveNameInvalid) {
			t.Errorf("%q 期望 ErrArchiveNameInvalid，实际: %v", bad, err)
		}
	}

	if err := svc.DeleteArchive(context.Background(), name); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(result.Key))); !os.IsNotExist(err) {
		t.Errorf("归档文件应已删除")
	}
	if err := svc.DeleteArchive(context.Background(), name); !errors.Is(err, util.ErrArchiveNotFound) {
		t.Errorf("重复删除期望 ErrArchiveNotFound，实际: %v", err)
	}
}

func TestExportService_Archive_NotConfigured(t *testing.T) {
	storage := NewStorageService(context.Background(), &config.StorageConfig{Type: util.StorageLocal})
	svc, _, _ := setupExport(t, storage)

	if _, err := svc.Archive(context.Background()); !errors.Is(err, util.ErrStorageNotConfigured) {
		t.Errorf("期望 ErrStorageNotConfigured，实际: %v", err)
	}
}

func TestStorageService_FallbackToLocal(t *testing.T) {
	root := t.TempDir()
	// 缺少 endpoint 时 minio 客户端创建失败，回退到本地目录
	storage := NewStorageService(context.Background(), &config.StorageConfig{Type: util.StorageMinio, LocalPath: root})

	if _, ok := storage.Provider.(*LocalStorageProvider); !ok {
		t.Fatalf("远端不可用时应回退到本地存储，实际 %T", storage.Provider)
	}
	if _, err := storage.Put(context.Background(), "a/b.txt", strings.NewReader("x"), 1, "text/plain"); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	if err := storage.Remove(context.Background(), "a/b.txt"); err != nil {
		t.Errorf("删除失败: %v", err)
	}
}
