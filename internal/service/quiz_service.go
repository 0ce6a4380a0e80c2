package service

import (
	"context"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/logger"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// QuizService 针对单个词或短语生成小测，并在会话内判分
type QuizService struct {
	llm ChatCompleter
}

func NewQuizService(llm ChatCompleter) *QuizService {
	return &QuizService{llm: llm}
}

const quizTemperature = 0.2

type quizJSON struct {
	Items []model.QuizItem `json:"items"`
}

// QuizResult 生成结果；Raw 非空表示结构化解析失败
type QuizResult struct {
	Quiz    *model.QuizState `json:"quiz,omitempty"`
	Raw     string           `json:"raw,omitempty"`
	Warning string           `json:"warning,omitempty"`
}

// Generate 生成 6 道题（四道选择两道填空）。解析失败时只返回原文，不替换会话中已有的小测
func (s *QuizService) Generate(ctx context.Context, sess *model.Session, target string) (*QuizResult, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, util.ErrEmptyText
	}

	prompt := fmt.Sprintf(`Create a 6-item quiz for '%s' in %s for a %s learner.
Return one JSON object: {"items": [...]} where each item is
{"type": "mcq"|"fitb", "question": "...", "options": ["..."] (mcq only), "answer": "...", "explain": "..."}.
Use four mcq items with 4 options each and two fitb items.`, target, sess.Settings.TargetLang, sess.Settings.CEFR)

	raw, err := s.llm.Chat(ctx, conversation("You generate short quizzes. Reply with JSON only.", prompt),
		ChatOptions{Temperature: quizTemperature, JSON: true})
	if err != nil {
		logger.FromContext(ctx).Warn("quiz call failed", zap.Error(err))
		text := placeholder(err)
		return &QuizResult{Raw: text, Warning: text}, nil
	}

	var parsed quizJSON
	if err := decodeJSON(raw, &parsed); err != nil || len(parsed.Items) == 0 {
		return &QuizResult{Raw: raw, Warning: "Quiz could not be parsed; showing raw output."}, nil
	}

	items := make([]model.QuizItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if strings.TrimSpace(it.Question) == "" {
			continue
		}
		if it.Type != model.QuizItemMCQ {
			it.Type = model.QuizItemFITB
			it.Options = nil
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return &QuizResult{Raw: raw, Warning: "Quiz could not be parsed; showing raw output."}, nil
	}

	sess.Quiz = model.NewQuizState(target, items)
	return &QuizResult{Quiz: sess.Quiz}, nil
}

type QuizCheck struct {
	Index   int    `json:"index"`
	Correct bool   `json:"correct"`
	Answer  string `json:"answer"`
	Explain string `json:"explain"`
	Score   int    `json:"score"`
	Total   int    `json:"total"`
}

// Check 判分；同一题只在第一次检查时计分
func (s *QuizService) Check(sess *model.Session, index int, answer string) (*QuizCheck, error) {
	q := sess.Quiz
	if q == nil {
		return nil, util.ErrNoQuiz
	}
	if index < 0 || index >= len(q.Items) {
		return nil, util.ErrQuizItemOutOfRange
	}

	item := q.Items[index]
	correct := item.IsCorrect(answer)
	if !q.Checked[index] {
		q.Checked[index] = true
		if correct {
			q.Score++
		}
	}

	return &QuizCheck{
		Index:   index,
		Correct: correct,
		Answer:  item.Answer,
		Explain: item.Explain,
		Score:   q.Score,
		Total:   q.Total,
	}, nil
}
