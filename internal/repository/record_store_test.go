package repository

import (
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/util"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ── 测试辅助 ──

func newTestStore(t *testing.T) *RecordStore {
	t.Helper()
	store, err := NewRecordStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建记录存储失败: %v", err)
	}
	return store
}

func writeLegacyFile(t *testing.T, store *RecordStore, kind model.RecordKind, content string) {
	t.Helper()
	if err := os.WriteFile(store.Path(kind), []byte(content), 0644); err != nil {
		t.Fatalf("写入旧文件失败: %v", err)
	}
}

// ── Append / ReadAll 测试 ──

func TestRecordStore_ReadAll_MissingFile(t *testing.T) {
	store := newTestStore(t)

	rows, err := store.ReadAll(model.KindSubmissions)
	if err != nil {
		t.Fatalf("文件不存在时不应报错: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("期望空结果，实际 %d 行", len(rows))
	}
}

func TestRecordStore_Append_LastRowMatches(t *testing.T) {
	store := newTestStore(t)

	for _, code := range []string{"A-1", "A-2", "A-3"} {
		if err := store.Append(model.KindSubmissions, model.Row{"code": code, "student": "Lina"}); err != nil {
			t.Fatalf("追加失败: %v", err)
		}
	}

	rows, err := store.ReadAll(model.KindSubmissions)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望 3 行，实际 %d", len(rows))
	}
	if rows[2]["code"] != "A-3" {
		t.Errorf("最后一行应为刚追加的记录，实际 code=%q", rows[2]["code"])
	}
	// 缺失的列补空值
	if v, ok := rows[2]["feedback"]; !ok || v != "" {
		t.Errorf("缺失列应补为空字符串，实际 %q (存在=%v)", v, ok)
	}
}

func TestRecordStore_ReadAll_Idempotent(t *testing.T) {
	store := newTestStore(t)
	_ = store.Append(model.KindGlossary, model.Row{"lemma": "ubiquitous", "notes": "everywhere"})

	first, _ := store.ReadAll(model.KindGlossary)
	second, _ := store.ReadAll(model.KindGlossary)
	if len(first) != len(second) || first[0]["lemma"] != second[0]["lemma"] {
		t.Errorf("连续两次读取结果应一致: %v vs %v", first, second)
	}
}

func TestRecordStore_Append_SpecialCharacters(t *testing.T) {
	store := newTestStore(t)
	text := "first line, with comma\nsecond \"quoted\" line\nالسلام عليكم"

	if err := store.Append(model.KindReflections, model.Row{"text": text, "reflection": "a,b"}); err != nil {
		t.Fatalf("追加失败: %v", err)
	}

	rows, err := store.ReadAll(model.KindReflections)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if rows[0]["text"] != text {
		t.Errorf("含分隔符、引号、换行的字段应原样读回\n期望: %q\n实际: %q", text, rows[0]["text"])
	}
	if rows[0]["reflection"] != "a,b" {
		t.Errorf("期望 %q，实际 %q", "a,b", rows[0]["reflection"])
	}
}

func TestRecordStore_Append_CarriageReturns(t *testing.T) {
	store := newTestStore(t)
	cases := []string{
		"Dear Sir,\r\nThank you.\rEnd",
		"lone\r",
		`C:\records\new`,
		`literal \r stays literal`,
		"mixed \\\r\n end",
	}

	for _, text := range cases {
		if err := store.Append(model.KindSubmissions, model.Row{"final": text}); err != nil {
			t.Fatalf("追加失败: %v", err)
		}
	}

	rows, err := store.ReadAll(model.KindSubmissions)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(rows) != len(cases) {
		t.Fatalf("期望 %d 行，实际 %d", len(cases), len(rows))
	}
	for i, text := range cases {
		if rows[i]["final"] != text {
			t.Errorf("第 %d 行应原样读回\n期望: %q\n实际: %q", i, text, rows[i]["final"])
		}
	}

	// 再追加一次，已有行经过重写后仍保持原值
	_ = store.Append(model.KindSubmissions, model.Row{"final": "x"})
	rows, _ = store.ReadAll(model.KindSubmissions)
	if rows[0]["final"] != cases[0] {
		t.Errorf("重写后期望 %q，实际 %q", cases[0], rows[0]["final"])
	}
}

func TestRecordStore_Append_UnknownColumn(t *testing.T) {
	store := newTestStore(t)

	err := store.Append(model.KindGlossary, model.Row{"lemma": "x", "favourite_colour": "blue"})
	if !errors.Is(err, util.ErrUnknownColumn) {
		t.Fatalf("期望 ErrUnknownColumn，实际: %v", err)
	}
	if _, statErr := os.Stat(store.Path(model.KindGlossary)); !os.IsNotExist(statErr) {
		t.Errorf("被拒绝的追加不应创建文件")
	}
}

func TestRecordStore_Append_UnknownKind(t *testing.T) {
	store := newTestStore(t)

	err := store.Append(model.RecordKind("grades"), model.Row{"x": "1"})
	if !errors.Is(err, util.ErrUnknownRecordKind) {
		t.Errorf("期望 ErrUnknownRecordKind，实际: %v", err)
	}
}

func TestRecordStore_LegacyHeader(t *testing.T) {
	store := newTestStore(t)
	// 旧版作业文件：没有 group 与 mt_draft 列，另有一个已废弃的列
	writeLegacyFile(t, store, model.KindAssignments,
		"timestamp,code,title,mode,text,instructor,legacy_flag\n"+
			"2024-03-01 10:00:00,OLD-0001,Old one,Post-edit given MT,Hello,Dr. K,yes\n")

	rows, err := store.ReadAll(model.KindAssignments)
	if err != nil {
		t.Fatalf("读取旧文件失败: %v", err)
	}
	if rows[0]["group"] != "" {
		t.Errorf("旧记录缺少的 group 列应为空，实际 %q", rows[0]["group"])
	}

	if err := store.Append(model.KindAssignments, model.Row{"code": "NEW-0001", "group": "G1"}); err != nil {
		t.Fatalf("向旧文件追加失败: %v", err)
	}

	data, _ := os.ReadFile(store.Path(model.KindAssignments))
	header := strings.SplitN(string(data), "\n", 2)[0]
	if !strings.HasPrefix(header, "timestamp,code,title,mode") || !strings.HasSuffix(header, "legacy_flag") {
		t.Errorf("新表头应为 schema 列加旧文件额外列，实际: %s", header)
	}

	rows, _ = store.ReadAll(model.KindAssignments)
	if len(rows) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(rows))
	}
	if rows[0]["legacy_flag"] != "yes" {
		t.Errorf("旧数据的额外列不应丢失，实际 %q", rows[0]["legacy_flag"])
	}
	if rows[1]["group"] != "G1" {
		t.Errorf("新记录 group 应为 G1，实际 %q", rows[1]["group"])
	}
}

func TestRecordStore_ReadFile(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.ReadFile(model.KindSubmissions)
	if err != nil || ok {
		t.Fatalf("文件不存在时应返回 ok=false，实际 ok=%v err=%v", ok, err)
	}

	_ = store.Append(model.KindSubmissions, model.Row{"code": "A-1"})
	data, ok, err := store.ReadFile(model.KindSubmissions)
	if err != nil || !ok {
		t.Fatalf("读取原文件失败: ok=%v err=%v", ok, err)
	}
	if !strings.HasPrefix(string(data), "timestamp,code,title") {
		t.Errorf("原文件应以表头开始，实际: %s", data)
	}
}

func TestRecordStore_NoTempFilesLeft(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		_ = store.Append(model.KindTranslations, model.Row{"text": "hi"})
	}

	matches, _ := filepath.Glob(filepath.Join(store.Dir(), "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("追加完成后不应残留临时文件: %v", matches)
	}
}

// ── 仓储测试 ──

func TestAssignmentRepository_FindByGroup(t *testing.T) {
	store := newTestStore(t)
	repo := NewAssignmentRepository(store)
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.Local)

	_ = repo.Create(&model.Assignment{Code: "G1-0001", Title: "A", Group: "G1", Mode: model.TranslateFirst, CreatedAt: now})
	_ = repo.Create(&model.Assignment{Code: "G2-0001", Title: "B", Group: "G2", Mode: model.PostEditMT, CreatedAt: now})
	_ = repo.Create(&model.Assignment{Code: "G1-0002", Title: "C", Group: "g1", Mode: model.TranslateFirst, CreatedAt: now})

	list, err := repo.FindByGroup("G1")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 1 || list[0].Code != "G1-0001" {
		t.Errorf("组号应精确匹配（区分大小写），实际: %+v", list)
	}
	if !list[0].CreatedAt.Equal(now) {
		t.Errorf("时间戳应按秒精度读回，期望 %v，实际 %v", now, list[0].CreatedAt)
	}

	recent, _ := repo.Recent(2)
	if len(recent) != 2 || recent[1].Code != "G1-0002" {
		t.Errorf("Recent 应返回最后写入的两条，实际: %+v", recent)
	}
}

func TestSubmissionRepository_FindByCode(t *testing.T) {
	store := newTestStore(t)
	repo := NewSubmissionRepository(store)

	_ = repo.Create(&model.Submission{Code: "A-1", Student: "Lina", FinalText: "done"})
	_ = repo.Create(&model.Submission{Code: "A-2", Student: "Omar"})
	_ = repo.Create(&model.Submission{Code: "A-1", Student: "Omar"})

	list, err := repo.FindByCode("A-1")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("同一作业允许多次提交，期望 2 条，实际 %d", len(list))
	}
	if list[0].FinalText != "done" {
		t.Errorf("期望 final=done，实际 %q", list[0].FinalText)
	}
}

func TestLearningLogRepositories(t *testing.T) {
	store := newTestStore(t)
	reflections := NewReflectionRepository(store)
	glossary := NewGlossaryRepository(store)
	translations := NewTranslationLogRepository(store)

	_ = reflections.Create(&model.Reflection{Session: "s1", Text: "t", Reflection: "r"})
	_ = reflections.Create(&model.Reflection{Session: "s2", Text: "t2"})
	_ = glossary.Create(&model.GlossaryEntry{Session: "s1", Lemma: "break the ice (idiom)"})
	_ = translations.Create(&model.TranslationEvent{Session: "s1", SourceLang: model.Arabic, TargetLang: model.English, Text: "مرحبا"})

	refs, _ := reflections.FindBySession("s1")
	if len(refs) != 1 || refs[0].Reflection != "r" {
		t.Errorf("期望会话 s1 的一条反思，实际: %+v", refs)
	}
	entries, _ := glossary.FindBySession("s1")
	if len(entries) != 1 || entries[0].Lemma != "break the ice (idiom)" {
		t.Errorf("期望一条词汇，实际: %+v", entries)
	}
	events, _ := translations.FindAll()
	if len(events) != 1 || events[0].SourceLang != model.Arabic || events[0].Text != "مرحبا" {
		t.Errorf("翻译事件读回不一致: %+v", events)
	}
}
