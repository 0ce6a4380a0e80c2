package service

import (
	"context"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/pkg/logger"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FeedbackService 错误分析与机器译稿；生成服务失败时返回占位文本，不向上抛错
type FeedbackService struct {
	llm ChatCompleter
	now func() time.Time
}

func NewFeedbackService(llm ChatCompleter) *FeedbackService {
	return &FeedbackService{llm: llm, now: time.Now}
}

const classifySystem = "You are a rigorous translation assessor. Reply with a single JSON object only."

func classifyPrompt(sourceText, studentText string, targetLang model.Language) string {
	return fmt.Sprintf(`Source: %s
Student translation: %s
Classify errors into: %s.
For each error give the category, the concrete example from the student text and a brief fix.
Then propose 4 short practice items targeting the student's specific weaknesses (mix mcq / fill-in / rewrite).
Return JSON with this schema:
{"findings": [{"category": "...", "example": "...", "fix": "..."}],
 "practice": [{"type": "mcq|fitb|rewrite", "prompt": "...", "answer": "..."}],
 "summary": "..."}
Write all explanations in %s.`, sourceText, studentText, strings.Join(model.ErrorCategories, ", "), targetLang)
}

// Classify 对学生译文做错误分类；结构化解析失败时回退为原文展示
func (s *FeedbackService) Classify(ctx context.Context, sourceText, studentText string, targetLang model.Language) model.Feedback {
	raw, err := s.llm.Chat(ctx, conversation(classifySystem, classifyPrompt(sourceText, studentText, targetLang)), ChatOptions{JSON: true})
	if err != nil {
		logger.FromContext(ctx).Warn("classify call failed", zap.Error(err))
		return model.Feedback{
			Text:        placeholder(err),
			Degraded:    true,
			GeneratedAt: s.now(),
		}
	}

	fb := model.Feedback{GeneratedAt: s.now()}
	var report model.ErrorReport
	if err := decodeJSON(raw, &report); err != nil || (len(report.Findings) == 0 && len(report.Practice) == 0 && report.Summary == "") {
		fb.Text = raw
		fb.Warning = "Structured feedback could not be parsed; showing raw output."
		return fb
	}

	fb.Report = &report
	fb.Text = renderReport(&report)
	return fb
}

// Translate 单次翻译；第二个返回值为 false 表示结果是占位文本
func (s *FeedbackService) Translate(ctx context.Context, sourceText string, sourceLang, targetLang model.Language) (string, bool) {
	out, err := s.llm.Chat(ctx, conversation(
		"You are a translator.",
		fmt.Sprintf("Translate from %s to %s: %s", sourceLang, targetLang, sourceText),
	), ChatOptions{})
	if err != nil {
		logger.FromContext(ctx).Warn("translate call failed", zap.Error(err))
		return placeholder(err), false
	}
	return out, true
}

// renderReport 把结构化报告转成可直接展示、也适合写入 CSV 的 Markdown
func renderReport(r *model.ErrorReport) string {
	var b strings.Builder
	byCategory := make(map[string][]model.ErrorFinding)
	var order []string
	for _, f := range r.Findings {
		cat := strings.ToUpper(strings.TrimSpace(f.Category))
		if _, ok := byCategory[cat]; !ok {
			order = append(order, cat)
		}
		byCategory[cat] = append(byCategory[cat], f)
	}

	for _, cat := range order {
		fmt.Fprintf(&b, "### %s\n", cat)
		for _, f := range byCategory[cat] {
			fmt.Fprintf(&b, "- %s → %s\n", f.Example, f.Fix)
		}
		b.WriteString("\n")
	}

	if len(r.Practice) > 0 {
		b.WriteString("### Practice\n")
		for i, p := range r.Practice {
			fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, p.Type, p.Prompt)
		}
		b.WriteString("\n")
	}

	if r.Summary != "" {
		b.WriteString(r.Summary)
	}
	return strings.TrimSpace(b.String())
}
