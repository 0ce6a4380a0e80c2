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

// TutorService 翻译课堂的即时工具：直译/意译对比、回译、词语讲解、搭配与习语、小挑战
type TutorService struct {
	llm LLMClient
	log *LearningLogService
}

func NewTutorService(llm LLMClient, log *LearningLogService) *TutorService {
	return &TutorService{llm: llm, log: log}
}

const tutorSystem = "You are a bilingual English–Arabic translation tutor. Provide helpful, concise explanations."

type translationJSON struct {
	Literal    string   `json:"literal"`
	Natural    string   `json:"natural"`
	KeyChoices []string `json:"key_choices"`
	Hints      []string `json:"hints"`
}

// Translate 直译与意译对比。请求结构化 JSON，解析失败时回退为原始文本
func (s *TutorService) Translate(ctx context.Context, sess *model.Session, text string) (*model.TranslationAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, util.ErrEmptyText
	}
	src, tgt := sess.Settings.Direction(text)

	prompt := fmt.Sprintf(`Source language: %s. Target language: %s.
Domain/context: %s.

Text:
%s

Tasks:
1) Provide two translations: "literal" (close to source syntax) and "natural" (idiomatic, tone: %s).
2) List 3-5 key choices (word sense, grammar, culture, collocations) as "key_choices".
3) Give contrastive hints for Arabic<->English learners (likely pitfalls) as "hints".
Return one JSON object: {"literal": "...", "natural": "...", "key_choices": ["..."], "hints": ["..."]}`,
		src, tgt, sess.Settings.Domain, text, sess.Settings.Tone)

	result := &model.TranslationAnalysis{SourceLang: src, TargetLang: tgt}
	raw, err := s.llm.Chat(ctx, conversation(tutorSystem, prompt), ChatOptions{JSON: true})
	s.log.LogTranslation(sess, text, src, tgt)
	if err != nil {
		logger.FromContext(ctx).Warn("translate call failed", zap.Error(err))
		result.Raw = placeholder(err)
		result.Warning = result.Raw
		return result, nil
	}

	var parsed translationJSON
	if err := decodeJSON(raw, &parsed); err != nil || (parsed.Literal == "" && parsed.Natural == "") {
		result.Raw = raw
		result.Warning = "Structured translation could not be parsed; showing raw output."
		return result, nil
	}

	result.Literal = parsed.Literal
	result.Natural = parsed.Natural
	result.KeyChoices = parsed.KeyChoices
	result.Hints = parsed.Hints
	return result, nil
}

type DetectErrorsRequest struct {
	Text    string `json:"text"`
	Literal string `json:"literal"`
	Natural string `json:"natural"`
}

// DetectErrors 比较直译与意译，标注主要错误类型
func (s *TutorService) DetectErrors(ctx context.Context, req DetectErrorsRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" || (strings.TrimSpace(req.Literal) == "" && strings.TrimSpace(req.Natural) == "") {
		return "", util.ErrEmptyText
	}
	prompt := fmt.Sprintf(`Label the main error TYPES visible when comparing translations.
Categories to use: %s.
Input source: %s
Literal translation: %s
Natural translation: %s
Output: bullet list with category labels (ALL-CAPS) and one-sentence justification each.`,
		strings.Join(model.ErrorCategories, ", "), req.Text, req.Literal, req.Natural)
	return s.complete(ctx, "You are a translation QA coach.", prompt, ChatOptions{}), nil
}

type BackTranslation struct {
	SourceLang      model.Language `json:"sourceLang"`
	TargetLang      model.Language `json:"targetLang"`
	Natural         string         `json:"natural"`
	BackTranslation string         `json:"backTranslation"`
}

// BackTranslate 先意译，再把译文回译成源语言
func (s *TutorService) BackTranslate(ctx context.Context, sess *model.Session, text string) (*BackTranslation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, util.ErrEmptyText
	}
	src, tgt := sess.Settings.Direction(text)

	natural := s.complete(ctx, "You are a bilingual translator.",
		fmt.Sprintf("Translate from %s to %s. Tone: %s. Domain: %s. Text: %s", src, tgt, sess.Settings.Tone, sess.Settings.Domain, text),
		ChatOptions{})

	out := &BackTranslation{SourceLang: src, TargetLang: tgt, Natural: natural}
	if IsPlaceholder(natural) {
		out.BackTranslation = natural
		return out, nil
	}

	out.BackTranslation = s.complete(ctx, "You are a careful back-translator.",
		fmt.Sprintf("Back-translate this %s text into %s, preserving meaning rather than word order: %s", tgt, src, natural),
		ChatOptions{})
	return out, nil
}

func explainPrompt(sess *model.Session, lemma string) string {
	return fmt.Sprintf(`Explain '%s' for a %s learner. Style: %s.
Output language: %s.
Include:
- Part of speech & short CEFR-friendly definition.
- 2 example sentences with brief glosses.
- Register notes (formal/informal; academic/spoken).
- Common patterns & collocations (verb+object, adj+noun, prepositions).
- Typical pitfalls for %s speakers (contrastive notes).
Keep it compact and scannable.`,
		lemma, sess.Settings.CEFR, sess.Settings.Style, sess.Settings.TargetLang, sess.Settings.SourceLang)
}

const explainSystem = "You are a bilingual English–Arabic tutor."

// Explain CEFR 分级的词语讲解
func (s *TutorService) Explain(ctx context.Context, sess *model.Session, lemma string) (string, error) {
	if strings.TrimSpace(lemma) == "" {
		return "", util.ErrEmptyText
	}
	return s.complete(ctx, explainSystem, explainPrompt(sess, lemma), ChatOptions{}), nil
}

// ExplainStream 与 Explain 相同，逐段返回
func (s *TutorService) ExplainStream(ctx context.Context, sess *model.Session, lemma string) (<-chan string, <-chan error, error) {
	if strings.TrimSpace(lemma) == "" {
		return nil, nil, util.ErrEmptyText
	}
	out, errChan := s.llm.ChatStream(ctx, conversation(explainSystem, explainPrompt(sess, lemma)), ChatOptions{})
	return out, errChan, nil
}

type CollocationRequest struct {
	Key   string `json:"key"`
	Idiom bool   `json:"idiom"`
}

// Collocations 常用搭配，或习语/固定表达的讲解
func (s *TutorService) Collocations(ctx context.Context, sess *model.Session, req CollocationRequest) (string, error) {
	if strings.TrimSpace(req.Key) == "" {
		return "", util.ErrEmptyText
	}
	tgt, src := sess.Settings.TargetLang, sess.Settings.SourceLang

	var prompt string
	if req.Idiom {
		prompt = fmt.Sprintf(`Explain the idiom/fixed expression '%s' in %s for a %s learner.
Give: meaning, usage conditions, 1 example, one near-synonym and the difference,
and any register/cultural notes. Add a short memory tip.`, req.Key, tgt, sess.Settings.CEFR)
	} else {
		prompt = fmt.Sprintf(`List the 6 most useful collocations for '%s' in %s.
Mix patterns (adj+noun, verb+noun, noun+prep, verb+prep). For each: one example.
Add 3 brief 'watch-outs' for %s learners (false friends, word order, prepositions).`, req.Key, tgt, src)
	}
	return s.complete(ctx, "You are a helpful collocation/idiom tutor.", prompt, ChatOptions{}), nil
}

// Challenge 生成 40–50 词的翻译小挑战
func (s *TutorService) Challenge(ctx context.Context, sess *model.Session, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", util.ErrEmptyText
	}
	prompt := fmt.Sprintf("Write a short %s→%s translation challenge (40–50 words) about %s.",
		sess.Settings.SourceLang, sess.Settings.TargetLang, topic)
	return s.complete(ctx, "You are a creative teacher.", prompt, ChatOptions{}), nil
}

// complete 调用失败时返回占位文本
func (s *TutorService) complete(ctx context.Context, system, prompt string, opts ChatOptions) string {
	out, err := s.llm.Chat(ctx, conversation(system, prompt), opts)
	if err != nil {
		logger.FromContext(ctx).Warn("tutor call failed", zap.Error(err))
		return placeholder(err)
	}
	return out
}
