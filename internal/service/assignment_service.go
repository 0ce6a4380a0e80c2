package service

import (
	"context"
	"edu_translator_backend/internal/model"
	"edu_translator_backend/internal/repository"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/logger"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AssignmentService struct {
	repo     *repository.AssignmentRepository
	feedback *FeedbackService
	now      func() time.Time
}

func NewAssignmentService(repo *repository.AssignmentRepository, feedback *FeedbackService) *AssignmentService {
	return &AssignmentService{repo: repo, feedback: feedback, now: time.Now}
}

type CreateAssignmentRequest struct {
	Title      string               `json:"title"`
	SourceText string               `json:"sourceText"`
	Mode       model.AssignmentMode `json:"mode"`
	Deadline   string               `json:"deadline"`
	// 译后编辑模式下是否立即生成机器译稿，缺省为 true
	GenerateDraft *bool `json:"generateDraft"`
}

type CreateAssignmentResult struct {
	Assignment *model.Assignment `json:"assignment"`
	Warning    string            `json:"warning,omitempty"`
}

// NewAssignmentCode 组号首个单词的前 6 个字符大写 + "-" + 4 位随机十六进制
func NewAssignmentCode(group string) string {
	base := "ASSGN"
	if fields := strings.Fields(group); len(fields) > 0 {
		r := []rune(fields[0])
		if len(r) > 6 {
			r = r[:6]
		}
		base = strings.ToUpper(string(r))
	}
	return base + "-" + strings.ToUpper(uuid.New().String()[:4])
}

// Create 教师创建作业，作业对当前会话的组号可见
func (s *AssignmentService) Create(ctx context.Context, sess *model.Session, req CreateAssignmentRequest) (*CreateAssignmentResult, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.SourceText) == "" {
		return nil, util.ErrAssignmentInvalid
	}

	mode := model.ParseAssignmentMode(string(req.Mode))
	a := &model.Assignment{
		Code:       NewAssignmentCode(sess.Group),
		Title:      req.Title,
		Group:      sess.Group,
		SourceText: req.SourceText,
		Mode:       mode,
		SourceLang: sess.Settings.SourceLang,
		TargetLang: sess.Settings.TargetLang,
		Domain:     sess.Settings.Domain,
		Tone:       sess.Settings.Tone,
		Deadline:   req.Deadline,
		Creator:    sess.Student,
		CreatedAt:  s.now(),
	}

	result := &CreateAssignmentResult{Assignment: a}
	generate := req.GenerateDraft == nil || *req.GenerateDraft
	if a.IsPostEdit() && generate {
		draft, ok := s.feedback.Translate(ctx, a.SourceText, a.SourceLang, a.TargetLang)
		if ok {
			a.MachineDraft = draft
		} else {
			// 失败时不保存占位文本，学生打开作业时再按需生成
			result.Warning = draft
		}
	}

	if strings.TrimSpace(a.Group) == "" {
		logger.FromContext(ctx).Warn("assignment created without group, no student will see it", zap.String("code", a.Code))
	}

	if err := s.repo.Create(a); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("assignment created",
		zap.String("code", a.Code),
		zap.String("group", a.Group),
		zap.String("mode", string(a.Mode)),
	)
	return result, nil
}

// ListFor 组内可见的作业，按创建时间升序；组号为空时返回空列表
func (s *AssignmentService) ListFor(group string) ([]model.Assignment, error) {
	if strings.TrimSpace(group) == "" {
		return []model.Assignment{}, nil
	}

	assignments, err := s.repo.FindByGroup(group)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(assignments, func(i, j int) bool {
		return assignments[i].CreatedAt.Before(assignments[j].CreatedAt)
	})
	return assignments, nil
}

// Default 组内最新的作业
func (s *AssignmentService) Default(group string) (*model.Assignment, error) {
	list, err := s.ListFor(group)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	a := list[len(list)-1]
	return &a, nil
}

// Find 按作业码查找，只在组内可见范围内查
func (s *AssignmentService) Find(group, code string) (*model.Assignment, error) {
	list, err := s.ListFor(group)
	if err != nil {
		return nil, err
	}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Code == code {
			a := list[i]
			return &a, nil
		}
	}
	return nil, util.ErrAssignmentNotFound
}

// Recent 教师端最近创建的作业
func (s *AssignmentService) Recent(n int) ([]model.Assignment, error) {
	return s.repo.Recent(n)
}
