package model

import (
	"testing"
	"time"
)

func TestParseAssignmentMode(t *testing.T) {
	cases := []struct {
		in   string
		want AssignmentMode
	}{
		{"post_edit_mt", PostEditMT},
		{"Post-edit given MT (show MT draft after first draft)", PostEditMT},
		{"post-edit", PostEditMT},
		{"translate_first", TranslateFirst},
		{"Translate first (no MT shown)", TranslateFirst},
		{"", TranslateFirst},
		{"something else", TranslateFirst},
	}
	for _, tc := range cases {
		if got := ParseAssignmentMode(tc.in); got != tc.want {
			t.Errorf("ParseAssignmentMode(%q) 期望 %s，实际 %s", tc.in, tc.want, got)
		}
	}
}

func TestAssignmentFromRow_LegacyDefaults(t *testing.T) {
	a := AssignmentFromRow(Row{"code": "OLD-1", "title": "Old", "timestamp": "not a time"})

	if a.SourceLang != English || a.TargetLang != Arabic {
		t.Errorf("缺少语言列时应默认 English→Arabic，实际 %s→%s", a.SourceLang, a.TargetLang)
	}
	if a.Mode != TranslateFirst {
		t.Errorf("缺少 mode 列时应为 translate_first，实际 %s", a.Mode)
	}
	if !a.CreatedAt.IsZero() {
		t.Errorf("无法解析的时间戳应为零值，实际 %v", a.CreatedAt)
	}
}

func TestSettingsDirection(t *testing.T) {
	s := DefaultSettings()

	src, tgt := s.Direction("مرحبا بالعالم")
	if src != Arabic || tgt != English {
		t.Errorf("阿拉伯文应检测为 Arabic→English，实际 %s→%s", src, tgt)
	}
	src, tgt = s.Direction("hello world")
	if src != English || tgt != Arabic {
		t.Errorf("英文应检测为 English→Arabic，实际 %s→%s", src, tgt)
	}

	s.AutoDetect = false
	s.SourceLang, s.TargetLang = English, Arabic
	src, tgt = s.Direction("مرحبا")
	if src != English || tgt != Arabic {
		t.Errorf("关闭自动检测时应使用设置中的方向，实际 %s→%s", src, tgt)
	}
}

func TestSettingsNormalize(t *testing.T) {
	s := Settings{SourceLang: "French", TargetLang: Arabic, CEFR: "Z9", Style: "Teacherly", Tone: "", Domain: "Legal"}
	n := s.Normalize()

	if n.SourceLang != English && n.SourceLang != Arabic {
		t.Errorf("非法语言应回退为默认值，实际 %s", n.SourceLang)
	}
	if n.CEFR != "B1" || n.Tone != "Neutral" {
		t.Errorf("非法取值应回退为默认值，实际 CEFR=%s Tone=%s", n.CEFR, n.Tone)
	}
	if n.Style != "Teacherly" || n.Domain != "Legal" {
		t.Errorf("合法取值应保留，实际 Style=%s Domain=%s", n.Style, n.Domain)
	}
}

func TestQuizItemIsCorrect(t *testing.T) {
	mcq := QuizItem{Type: QuizItemMCQ, Options: []string{"make", "do", "take", "give"}, Answer: "B"}
	if !mcq.IsCorrect("do") {
		t.Errorf("答案为字母时，选项文本也应判对")
	}
	if !mcq.IsCorrect("b") {
		t.Errorf("选项字母应忽略大小写")
	}
	if mcq.IsCorrect("make") {
		t.Errorf("错误选项不应判对")
	}

	mcqText := QuizItem{Type: QuizItemMCQ, Options: []string{"make", "do"}, Answer: "do"}
	if !mcqText.IsCorrect("B") {
		t.Errorf("答案为文本时，选项字母也应判对")
	}

	fitb := QuizItem{Type: QuizItemFITB, Answer: "Heavy rain"}
	if !fitb.IsCorrect("  heavy RAIN ") {
		t.Errorf("填空题应忽略大小写与首尾空白")
	}
	if fitb.IsCorrect("") {
		t.Errorf("空答案不应判对")
	}
}

func TestQuizStateView_HidesUncheckedAnswers(t *testing.T) {
	q := NewQuizState("rain", []QuizItem{
		{Type: QuizItemFITB, Question: "q1", Answer: "a1", Explain: "e1"},
		{Type: QuizItemFITB, Question: "q2", Answer: "a2", Explain: "e2"},
	})
	q.Checked[1] = true

	v := q.View()
	if v.Items[0].Answer != "" || v.Items[0].Explain != "" {
		t.Errorf("未检查的题目不应返回答案，实际 %+v", v.Items[0])
	}
	if v.Items[1].Answer != "a2" {
		t.Errorf("已检查的题目应返回答案，实际 %+v", v.Items[1])
	}
	if q.Items[0].Answer != "a1" {
		t.Errorf("View 不应修改原状态")
	}
}

func TestWorkflowView_HidesMachineDraftBeforeFirstDraft(t *testing.T) {
	a := Assignment{Code: "X-1", Mode: PostEditMT, MachineDraft: "mt text"}
	wf := NewWorkflow(a, time.Now())

	if wf.View().Assignment.MachineDraft != "" {
		t.Errorf("写出初稿之前不应暴露机器译稿")
	}
	wf.FirstDraft = "my draft"
	if wf.View().Assignment.MachineDraft != "mt text" {
		t.Errorf("写出初稿后应可见机器译稿")
	}
	if wf.Assignment.MachineDraft != "mt text" {
		t.Errorf("View 不应修改原流程")
	}
}

func TestWorkflowHasFeedback(t *testing.T) {
	wf := &Workflow{}
	if wf.HasFeedback() {
		t.Errorf("没有反馈时应为 false")
	}
	wf.Feedback = &Feedback{Text: "⚠️ failed", Degraded: true}
	if wf.HasFeedback() {
		t.Errorf("占位反馈不应计为已有反馈")
	}
	wf.Feedback = &Feedback{Text: "ok"}
	if !wf.HasFeedback() {
		t.Errorf("成功的反馈应计为已有反馈")
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2025, 2, 3, 4, 5, 6, 0, time.Local)
	if got := ParseTimestamp(FormatTimestamp(ts)); !got.Equal(ts) {
		t.Errorf("期望 %v，实际 %v", ts, got)
	}
	if FormatTimestamp(time.Time{}) != "" {
		t.Errorf("零值应格式化为空字符串")
	}
}
