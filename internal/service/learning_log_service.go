package service

import (
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/repository"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LearningLogService 学习日志：反思、词汇表、翻译事件
type LearningLogService struct {
	reflections  *repository.ReflectionRepository
	glossary     *repository.GlossaryRepository
	translations *repository.TranslationLogRepository
	now          func() time.Time
}

func NewLearningLogService(
	reflections *repository.ReflectionRepository,
	glossary *repository.GlossaryRepository,
	translations *repository.TranslationLogRepository,
) *LearningLogService {
	return &LearningLogService{
		reflections:  reflections,
		glossary:     glossary,
		translations: translations,
		now:          time.Now,
	}
}

type SaveReflectionRequest struct {
	Text       string `json:"text"`
	Reflection string `json:"reflection"`
}

func (s *LearningLogService) SaveReflection(sess *model.Session, req SaveReflectionRequest) (*model.Reflection, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, util.ErrEmptyText
	}
	src, tgt := sess.Settings.Direction(req.Text)
	r := &model.Reflection{
		Student:    sess.Student,
		Group:      sess.Group,
		Session:    sess.ID,
		SourceLang: src,
		TargetLang: tgt,
		Domain:     sess.Settings.Domain,
		Tone:       sess.Settings.Tone,
		Text:       req.Text,
		Reflection: req.Reflection,
		Timestamp:  s.now(),
	}
	if err := s.reflections.Create(r); err != nil {
		return nil, err
	}
	return r, nil
}

type SaveGlossaryRequest struct {
	Lemma string `json:"lemma"`
	Notes string `json:"notes"`
	Idiom bool   `json:"idiom"`
}

func (s *LearningLogService) SaveGlossary(sess *model.Session, req SaveGlossaryRequest) (*model.GlossaryEntry, error) {
	lemma := strings.TrimSpace(req.Lemma)
	if lemma == "" {
		return nil, util.ErrEmptyText
	}
	if req.Idiom {
		lemma += " (idiom)"
	}
	e := &model.GlossaryEntry{
		Student:   sess.Student,
		Group:     sess.Group,
		Session:   sess.ID,
		Lemma:     lemma,
		Notes:     req.Notes,
		Timestamp: s.now(),
	}
	if err := s.glossary.Create(e); err != nil {
		return nil, err
	}
	return e, nil
}

// LogTranslation 记录翻译事件；写入失败只记日志，不影响翻译结果
func (s *LearningLogService) LogTranslation(sess *model.Session, text string, src, tgt model.Language) {
	if r := []rune(text); len(r) > util.MaxLoggedTextLen {
		text = string(r[:util.MaxLoggedTextLen])
	}
	e := &model.TranslationEvent{
		Student:    sess.Student,
		Group:      sess.Group,
		Session:    sess.ID,
		SourceLang: src,
		TargetLang: tgt,
		Domain:     sess.Settings.Domain,
		Tone:       sess.Settings.Tone,
		Text:       text,
		Timestamp:  s.now(),
	}
	if err := s.translations.Create(e); err != nil {
		logger.Log.Error("failed to log translation event", zap.Error(err), zap.String("session", sess.ID))
	}
}

func (s *LearningLogService) SessionReflections(sessionID string) ([]model.Reflection, error) {
	return s.reflections.FindBySession(sessionID)
}

func (s *LearningLogService) SessionGlossary(sessionID string) ([]model.GlossaryEntry, error) {
	return s.glossary.FindBySession(sessionID)
}
