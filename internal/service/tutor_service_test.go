package service

import (
	"context"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/util"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func setupTutor(t *testing.T, llm *fakeLLM) (*TutorService, *LearningLogService, *testRepos) {
	t.Helper()
	repos := newTestRepos(t)
	log := NewLearningLogService(repos.reflections, repos.glossary, repos.translations)
	return NewTutorService(llm, log), log, repos
}

// ── Translate 测试 ──

func TestTutorService_Translate_Structured(t *testing.T) {
	llm := &fakeLLM{replies: []string{`{"literal":"lit","natural":"nat","key_choices":["a"],"hints":["h"]}`}}
	tutor, _, repos := setupTutor(t, llm)
	sess := newStudent("G1")

	result, err := tutor.Translate(context.Background(), sess, "مرحبا بكم")
	if err != nil {
		t.Fatalf("翻译失败: %v", err)
	}
	if result.SourceLang != model.Arabic || result.TargetLang != model.English {
		t.Errorf("应自动检测为 Arabic→English，实际 %s→%s", result.SourceLang, result.TargetLang)
	}
	if !result.Structured() || result.Literal != "lit" || result.Natural != "nat" || result.Raw != "" {
		t.Errorf("结构化结果不正确: %+v", result)
	}

	events, _ := repos.translations.FindAll()
	if len(events) != 1 || events[0].Session != sess.ID || events[0].SourceLang != model.Arabic {
		t.Errorf("每次翻译应记录一条事件，实际: %+v", events)
	}
}

func TestTutorService_Translate_RawFallback(t *testing.T) {
	tutor, _, _ := setupTutor(t, &fakeLLM{replies: []string{"Literal: ... Natural: ..."}})

	result, err := tutor.Translate(context.Background(), newStudent("G1"), "hello")
	if err != nil {
		t.Fatalf("翻译失败: %v", err)
	}
	if result.Structured() || result.Raw != "Literal: ... Natural: ..." || result.Warning == "" {
		t.Errorf("解析失败时应回退为原文，实际: %+v", result)
	}
}

func TestTutorService_Translate_FailureStillLogged(t *testing.T) {
	tutor, _, repos := setupTutor(t, &fakeLLM{err: errors.New("down")})

	result, err := tutor.Translate(context.Background(), newStudent("G1"), "hello")
	if err != nil || !IsPlaceholder(result.Raw) {
		t.Errorf("失败时应返回占位文本，实际 %+v, %v", result, err)
	}
	events, _ := repos.translations.FindAll()
	if len(events) != 1 {
		t.Errorf("失败的翻译也应记录事件，实际 %d", len(events))
	}
}

func TestTutorService_Translate_LongTextTruncated(t *testing.T) {
	tutor, _, repos := setupTutor(t, &fakeLLM{replies: []string{"{}"}})
	long := strings.Repeat("ب", util.MaxLoggedTextLen+100)

	_, _ = tutor.Translate(context.Background(), newStudent("G1"), long)
	events, _ := repos.translations.FindAll()
	if n := utf8.RuneCountInString(events[0].Text); n != util.MaxLoggedTextLen {
		t.Errorf("事件中的原文应截断为 %d 个字符，实际 %d", util.MaxLoggedTextLen, n)
	}
}

func TestTutorService_EmptyInput(t *testing.T) {
	llm := &fakeLLM{}
	tutor, _, _ := setupTutor(t, llm)
	sess := newStudent("G1")
	ctx := context.Background()

	if _, err := tutor.Translate(ctx, sess, "  "); !errors.Is(err, util.ErrEmptyText) {
		t.Errorf("Translate 期望 ErrEmptyText，实际: %v", err)
	}
	if _, err := tutor.Explain(ctx, sess, ""); !errors.Is(err, util.ErrEmptyText) {
		t.Errorf("Explain 期望 ErrEmptyText，实际: %v", err)
	}
	if _, err := tutor.Collocations(ctx, sess, CollocationRequest{}); !errors.Is(err, util.ErrEmptyText) {
		t.Errorf("Collocations 期望 ErrEmptyText，实际: %v", err)
	}
	if _, err := tutor.DetectErrors(ctx, DetectErrorsRequest{Text: "x"}); !errors.Is(err, util.ErrEmptyText) {
		t.Errorf("DetectErrors 缺少译文时期望 ErrEmptyText，实际: %v", err)
	}
	if llm.calls() != 0 {
		t.Errorf("输入为空时不应调用生成服务")
	}
}

// ── 其他工具测试 ──

func TestTutorService_BackTranslate(t *testing.T) {
	llm := &fakeLLM{replies: []string{"مرحبا", "Hello there"}}
	tutor, _, _ := setupTutor(t, llm)

	out, err := tutor.BackTranslate(context.Background(), newStudent("G1"), "Hello")
	if err != nil {
		t.Fatalf("回译失败: %v", err)
	}
	if out.Natural != "مرحبا" || out.BackTranslation != "Hello there" {
		t.Errorf("回译结果不正确: %+v", out)
	}
	if !strings.Contains(llm.prompts[1], "into English") {
		t.Errorf("回译应译回源语言，实际提示词: %s", llm.prompts[1])
	}
}

func TestTutorService_BackTranslate_FailureSkipsSecondCall(t *testing.T) {
	llm := &fakeLLM{err: errors.New("down")}
	tutor, _, _ := setupTutor(t, llm)

	out, _ := tutor.BackTranslate(context.Background(), newStudent("G1"), "Hello")
	if !IsPlaceholder(out.BackTranslation) || llm.calls() != 1 {
		t.Errorf("第一步失败时不应再回译，调用 %d 次", llm.calls())
	}
}

func TestTutorService_Collocations_Idiom(t *testing.T) {
	llm := &fakeLLM{replies: []string{"explanation"}}
	tutor, _, _ := setupTutor(t, llm)

	text, _ := tutor.Collocations(context.Background(), newStudent("G1"), CollocationRequest{Key: "break the ice", Idiom: true})
	if text != "explanation" || !strings.Contains(llm.prompts[0], "idiom/fixed expression 'break the ice'") {
		t.Errorf("习语模式提示词不正确: %s", llm.prompts[0])
	}
}

func TestTutorService_ExplainStream(t *testing.T) {
	tutor, _, _ := setupTutor(t, &fakeLLM{chunks: []string{"part one ", "part two"}})

	out, errChan, err := tutor.ExplainStream(context.Background(), newStudent("G1"), "ubiquitous")
	if err != nil {
		t.Fatalf("流式讲解失败: %v", err)
	}
	var b strings.Builder
	for chunk := range out {
		b.WriteString(chunk)
	}
	if err := <-errChan; err != nil {
		t.Errorf("不应有错误: %v", err)
	}
	if b.String() != "part one part two" {
		t.Errorf("流式内容不正确: %q", b.String())
	}
}

// ── 学习日志测试 ──

func TestLearningLogService_SaveGlossaryIdiom(t *testing.T) {
	_, log, _ := setupTutor(t, &fakeLLM{})
	sess := newStudent("G1")

	e, err := log.SaveGlossary(sess, SaveGlossaryRequest{Lemma: " break the ice ", Notes: "start talking", Idiom: true})
	if err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if e.Lemma != "break the ice (idiom)" {
		t.Errorf("习语应加标记，实际 %q", e.Lemma)
	}

	entries, _ := log.SessionGlossary(sess.ID)
	if len(entries) != 1 {
		t.Errorf("期望一条词汇，实际 %d", len(entries))
	}
}

func TestLearningLogService_SaveReflection(t *testing.T) {
	_, log, _ := setupTutor(t, &fakeLLM{})
	sess := newStudent("G1")

	if _, err := log.SaveReflection(sess, SaveReflectionRequest{Text: ""}); !errors.Is(err, util.ErrEmptyText) {
		t.Errorf("期望 ErrEmptyText，实际: %v", err)
	}
	r, err := log.SaveReflection(sess, SaveReflectionRequest{Text: "Good morning", Reflection: "literal sounded odd"})
	if err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if r.SourceLang != model.English || r.Group != "G1" {
		t.Errorf("反思记录不正确: %+v", r)
	}
}
